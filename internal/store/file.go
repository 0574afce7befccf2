package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lazypower/revisit/internal/record"
)

// File persists snapshots as a single JSON document, the layout used by
// the original editor plugin's data file. It is an alternative to DB for
// workspaces synced between devices as plain files.
type File struct {
	Path string
}

// NewFile returns a File persister at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// LoadSnapshot reads the data file. A missing file is ErrNoSnapshot; an
// unreadable or invalid one wraps ErrCorrupt.
func (f *File) LoadSnapshot(ctx context.Context) (*record.Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	snap, err := DecodeSnapshot(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", f.Path, err)
	}
	return snap, nil
}

// SaveSnapshot writes to a temporary file in the same directory and renames
// it over the data file, so readers never see a partial write.
func (f *File) SaveSnapshot(ctx context.Context, snap *record.Snapshot) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".revisit-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeSnapshot(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}
	return nil
}
