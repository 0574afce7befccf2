package hooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lazypower/revisit/internal/lifecycle"
)

// HookInput is the JSON an editor hook sends on stdin. Paths are relative
// to the workspace root. OldPath is only set for renames.
type HookInput struct {
	Path    string `json:"path"`
	OldPath string `json:"old_path,omitempty"`
	IsDir   bool   `json:"is_dir,omitempty"`
}

// EventRequest is the body of POST /api/events.
type EventRequest struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	OldPath   string `json:"old_path,omitempty"`
	Trackable bool   `json:"trackable,omitempty"`
}

var eventAliases = map[string]lifecycle.Kind{
	"create":  lifecycle.KindCreated,
	"created": lifecycle.KindCreated,
	"rename":  lifecycle.KindRenamed,
	"renamed": lifecycle.KindRenamed,
	"move":    lifecycle.KindRenamed,
	"delete":  lifecycle.KindDeleted,
	"deleted": lifecycle.KindDeleted,
	"open":    lifecycle.KindOpened,
	"opened":  lifecycle.KindOpened,
}

// EventKind resolves a hook event name (created, create, ...) to its kind.
func EventKind(name string) (lifecycle.Kind, error) {
	kind, ok := eventAliases[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("unknown hook event: %s", name)
	}
	return kind, nil
}

// ReadInput builds the hook input from positional args when present
// (`path` or, for renames, `old_path new_path`), otherwise from stdin.
func ReadInput(kind lifecycle.Kind, args []string, stdin io.Reader) (HookInput, error) {
	if len(args) > 0 {
		if kind == lifecycle.KindRenamed {
			if len(args) != 2 {
				return HookInput{}, fmt.Errorf("rename needs old and new path, got %d args", len(args))
			}
			return HookInput{OldPath: args[0], Path: args[1]}, nil
		}
		return HookInput{Path: args[0]}, nil
	}

	var input HookInput
	if err := json.NewDecoder(stdin).Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return HookInput{}, fmt.Errorf("no path given on stdin or as argument")
		}
		return HookInput{}, fmt.Errorf("decode stdin: %w", err)
	}
	return input, nil
}

func (h HookInput) normalize(fn func(string) (string, error)) (HookInput, error) {
	var err error
	if h.Path != "" {
		if h.Path, err = fn(h.Path); err != nil {
			return h, err
		}
	}
	if h.OldPath != "" {
		if h.OldPath, err = fn(h.OldPath); err != nil {
			return h, err
		}
	}
	return h, nil
}

// Request converts the input into the wire form, deciding trackability for
// creations with trackable.
func (h HookInput) Request(kind lifecycle.Kind, trackable func(rel string, isDir bool) bool) EventRequest {
	req := EventRequest{Type: string(kind), Path: h.Path, OldPath: h.OldPath}
	if kind == lifecycle.KindCreated && trackable != nil {
		req.Trackable = trackable(h.Path, h.IsDir)
	}
	return req
}

// Event converts the wire form into a lifecycle event.
func (r EventRequest) Event() (lifecycle.Event, error) {
	if lifecycle.Kind(r.Type) == lifecycle.KindRenamed {
		return lifecycle.Parse(r.Type, r.OldPath, r.Path, false)
	}
	return lifecycle.Parse(r.Type, r.Path, "", r.Trackable)
}
