// Package record holds the per-item usage records and the in-memory store
// that maps each tracked path to its record. It performs no I/O.
package record

import "fmt"

// Record is the usage record of one tracked item.
type Record struct {
	Path         string     `json:"filename"`
	Ignored      bool       `json:"ignored"`
	LastAccessed AccessTime `json:"lastAccessed"`
}

// State is the lifecycle state of a tracked record.
type State int

const (
	NeverAccessed State = iota + 1 // active, lastAccessed unset
	Accessed                       // active, lastAccessed set
	Ignored                        // excluded from scheduling
)

var stateNames = [...]string{NeverAccessed: "never-accessed", Accessed: "accessed", Ignored: "ignored"}

// String returns the state name, or "State(n)" for invalid values.
func (s State) String() string {
	if s >= NeverAccessed && s <= Ignored {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// New returns a never-accessed, active record for path.
func New(path string) Record {
	return Record{Path: path}
}

// State derives the lifecycle state from the record's fields.
func (r Record) State() State {
	switch {
	case r.Ignored:
		return Ignored
	case r.LastAccessed.IsSet():
		return Accessed
	default:
		return NeverAccessed
	}
}

// Settings are the user-editable scheduling parameters persisted with the store.
type Settings struct {
	UnusedDaysLimit   int `json:"unusedDaysLimit"`
	WeeklyReviewCount int `json:"weeklyReviewCount"`
}

// DefaultSettings returns the settings used to seed a first-run snapshot.
func DefaultSettings() Settings {
	return Settings{
		UnusedDaysLimit:   90,
		WeeklyReviewCount: 7,
	}
}

// Validate rejects settings the review engine cannot work with.
func (s Settings) Validate() error {
	if s.UnusedDaysLimit < 0 {
		return fmt.Errorf("%w: unused days limit %d must not be negative", ErrInvalidSettings, s.UnusedDaysLimit)
	}
	if s.WeeklyReviewCount <= 0 {
		return fmt.Errorf("%w: weekly review count %d must be positive", ErrInvalidSettings, s.WeeklyReviewCount)
	}
	return nil
}

// Snapshot is the unit of persistence: settings plus every record.
type Snapshot struct {
	Settings Settings `json:"settings"`
	Records  Store    `json:"records"`
}

// NewSnapshot returns an empty snapshot with the given settings.
func NewSnapshot(settings Settings) *Snapshot {
	return &Snapshot{Settings: settings, Records: NewStore()}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		Settings: s.Settings,
		Records:  s.Records.Clone(),
	}
}
