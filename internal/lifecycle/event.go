package lifecycle

import "fmt"

// Kind tags an Event.
type Kind string

const (
	KindCreated Kind = "created"
	KindRenamed Kind = "renamed"
	KindDeleted Kind = "deleted"
	KindOpened  Kind = "opened"
)

// Event is a host notification about a path. The concrete types are
// Created, Renamed, Deleted and Opened.
type Event interface {
	Kind() Kind
	event()
}

// Created reports a new filesystem entry. Trackable is the host's decision
// whether the entry is a note worth tracking (directories are not).
type Created struct {
	Path      string
	Trackable bool
}

// Renamed reports that OldPath now lives at NewPath.
type Renamed struct {
	OldPath string
	NewPath string
}

// Deleted reports that Path no longer exists. When Path was a directory,
// everything below it is gone too.
type Deleted struct {
	Path string
}

// Opened reports that the user opened Path.
type Opened struct {
	Path string
}

func (Created) Kind() Kind { return KindCreated }
func (Renamed) Kind() Kind { return KindRenamed }
func (Deleted) Kind() Kind { return KindDeleted }
func (Opened) Kind() Kind  { return KindOpened }

func (Created) event() {}
func (Renamed) event() {}
func (Deleted) event() {}
func (Opened) event()  {}

// Parse builds an Event from its wire form. newPath is only used by renames.
func Parse(kind, path, newPath string, trackable bool) (Event, error) {
	if path == "" {
		return nil, fmt.Errorf("%s event: path required", kind)
	}
	switch Kind(kind) {
	case KindCreated:
		return Created{Path: path, Trackable: trackable}, nil
	case KindRenamed:
		if newPath == "" {
			return nil, fmt.Errorf("renamed event: new path required")
		}
		return Renamed{OldPath: path, NewPath: newPath}, nil
	case KindDeleted:
		return Deleted{Path: path}, nil
	case KindOpened:
		return Opened{Path: path}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", kind)
	}
}
