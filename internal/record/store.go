package record

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Store maps each tracked path to its usage record. Keys are unique and the
// map itself carries no ordering; see the review package for orderings.
//
// A Store is not safe for concurrent use.
type Store map[string]Record

// NewStore returns an empty store.
func NewStore() Store {
	return make(Store)
}

// Get returns the record for path.
func (s Store) Get(path string) (Record, bool) {
	r, ok := s[path]
	return r, ok
}

// Has reports whether path is tracked.
func (s Store) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Upsert inserts rec under path unless the path is already tracked, in which
// case the existing record and its history are kept. It reports whether a
// record was inserted.
func (s Store) Upsert(path string, rec Record) bool {
	if _, ok := s[path]; ok {
		return false
	}
	rec.Path = path
	s[path] = rec
	return true
}

// Remove deletes path. Removing an untracked path is a no-op.
func (s Store) Remove(path string) bool {
	if _, ok := s[path]; !ok {
		return false
	}
	delete(s, path)
	return true
}

// RemoveUnder deletes every record below dir, as when a directory is
// deleted or leaves the workspace. It returns the removed paths in byte
// order.
func (s Store) RemoveUnder(dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var removed []string
	for _, p := range s.Paths() {
		if strings.HasPrefix(p, prefix) {
			delete(s, p)
			removed = append(removed, p)
		}
	}
	return removed
}

// Rename moves the record at oldPath to newPath, keeping its ignored flag and
// last access. A record already tracked under newPath is replaced, matching a
// filesystem rename onto an existing file.
func (s Store) Rename(oldPath, newPath string) error {
	rec, ok := s[oldPath]
	if !ok {
		return fmt.Errorf("rename %q: %w", oldPath, ErrNotFound)
	}
	if oldPath == newPath {
		return nil
	}
	rec.Path = newPath
	s[newPath] = rec
	delete(s, oldPath)
	return nil
}

// SetIgnored sets the ignored flag of path.
func (s Store) SetIgnored(path string, ignored bool) error {
	rec, ok := s[path]
	if !ok {
		return fmt.Errorf("set ignored %q: %w", path, ErrNotFound)
	}
	rec.Ignored = ignored
	s[path] = rec
	return nil
}

// SetLastAccessed records an access for path.
func (s Store) SetLastAccessed(path string, at AccessTime) error {
	rec, ok := s[path]
	if !ok {
		return fmt.Errorf("set last accessed %q: %w", path, ErrNotFound)
	}
	rec.LastAccessed = at
	s[path] = rec
	return nil
}

// ResetLastAccessed clears the last access of path back to Unset.
func (s Store) ResetLastAccessed(path string) error {
	rec, ok := s[path]
	if !ok {
		return fmt.Errorf("reset last accessed %q: %w", path, ErrNotFound)
	}
	rec.LastAccessed = Unset
	s[path] = rec
	return nil
}

// Len returns the number of tracked paths.
func (s Store) Len() int {
	return len(s)
}

// Clone returns an independent copy. Records are values, so a shallow map
// copy is a deep copy.
func (s Store) Clone() Store {
	if s == nil {
		return NewStore()
	}
	return maps.Clone(s)
}

// Records returns every record in unspecified order.
func (s Store) Records() []Record {
	return slices.Collect(maps.Values(s))
}

// Paths returns every tracked path in byte order.
func (s Store) Paths() []string {
	return slices.Sorted(maps.Keys(s))
}

// UnmarshalJSON decodes the path-keyed object form and re-keys each record so
// that Record.Path always matches its key, whatever "filename" said.
func (s *Store) UnmarshalJSON(data []byte) error {
	var raw map[string]Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Store, len(raw))
	for path, rec := range raw {
		rec.Path = path
		out[path] = rec
	}
	*s = out
	return nil
}
