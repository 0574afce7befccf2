// Package vault adapts a workspace directory on disk into the facts the
// lifecycle handler needs: which paths are trackable notes, what exists on
// first run, and what changes while running.
//
// Paths handed out by this package are relative to the workspace root and
// always use '/' separators.
package vault

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher decides whether a path is a trackable note.
type Matcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewMatcher compiles include and exclude patterns. Patterns use '/' as the
// separator, so '*' stays within a path segment and '**' crosses them.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range include {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile include pattern %q: %w", p, err)
		}
		m.include = append(m.include, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern %q: %w", p, err)
		}
		m.exclude = append(m.exclude, g)
	}
	return m, nil
}

// Trackable reports whether rel names a note worth tracking. Directories
// never are.
func (m *Matcher) Trackable(rel string, isDir bool) bool {
	if isDir || rel == "" {
		return false
	}
	if m.Excluded(rel) {
		return false
	}
	for _, g := range m.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Excluded reports whether rel matches an exclude pattern. Excluded
// directories are not descended into or watched.
func (m *Matcher) Excluded(rel string) bool {
	for _, g := range m.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Rel converts an absolute or root-relative filesystem path into the
// slash-separated form used as record keys.
func Rel(root, path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside workspace %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}
