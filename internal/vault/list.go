package vault

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// List walks root and returns every trackable path, for seeding a first-run
// snapshot.
func List(root string, m *Matcher) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if m.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if m.Trackable(rel, false) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	return paths, nil
}
