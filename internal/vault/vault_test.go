package vault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/revisit/internal/lifecycle"
	"github.com/lazypower/revisit/internal/record"
)

func defaultMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher([]string{"**.md"}, []string{".**", "**/.**"})
	require.NoError(t, err)
	return m
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("# note\n"), 0644))
}

func TestMatcherTrackable(t *testing.T) {
	m := defaultMatcher(t)

	tests := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{"a.md", false, true},
		{"projects/2024/plan.md", false, true},
		{"image.png", false, false},
		{"projects", true, false},
		{"notes.md", true, false},
		{".obsidian/workspace.md", false, false},
		{"projects/.trash/old.md", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Trackable(tt.rel, tt.isDir), "%q dir=%v", tt.rel, tt.isDir)
	}
}

func TestMatcherBadPattern(t *testing.T) {
	_, err := NewMatcher([]string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestRel(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "vault")

	rel, err := Rel(root, filepath.Join(root, "sub", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "sub/a.md", rel)

	rel, err = Rel(root, "sub/a.md")
	require.NoError(t, err)
	assert.Equal(t, "sub/a.md", rel)

	_, err = Rel(root, filepath.Join(string(filepath.Separator), "elsewhere", "a.md"))
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.md"))
	touch(t, filepath.Join(root, "sub", "b.md"))
	touch(t, filepath.Join(root, "sub", "c.txt"))
	touch(t, filepath.Join(root, ".obsidian", "d.md"))

	got, err := List(root, defaultMatcher(t))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.md", "sub/b.md"}, got)
}

func TestListMissingRoot(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "missing"), defaultMatcher(t))
	assert.Error(t, err)
}

func startWatcher(t *testing.T, root string) <-chan lifecycle.Event {
	t.Helper()
	events := make(chan lifecycle.Event, 64)
	w, err := NewWatcher(WatcherConfig{
		Root:         root,
		Matcher:      defaultMatcher(t),
		RenameWindow: 100 * time.Millisecond,
		Sink:         func(ev lifecycle.Event) { events <- ev },
		Logger:       zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return events
}

func next(t *testing.T, events <-chan lifecycle.Event) lifecycle.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestWatcherCreateRenameDelete(t *testing.T) {
	root := t.TempDir()
	events := startWatcher(t, root)

	touch(t, filepath.Join(root, "a.md"))
	assert.Equal(t, lifecycle.Created{Path: "a.md", Trackable: true}, next(t, events))

	require.NoError(t, os.Rename(filepath.Join(root, "a.md"), filepath.Join(root, "b.md")))
	assert.Equal(t, lifecycle.Renamed{OldPath: "a.md", NewPath: "b.md"}, next(t, events))
	assert.Equal(t, lifecycle.Created{Path: "b.md", Trackable: true}, next(t, events))

	require.NoError(t, os.Remove(filepath.Join(root, "b.md")))
	assert.Equal(t, lifecycle.Deleted{Path: "b.md"}, next(t, events))
}

func TestWatcherUntrackableCreate(t *testing.T) {
	root := t.TempDir()
	events := startWatcher(t, root)

	touch(t, filepath.Join(root, "photo.png"))
	assert.Equal(t, lifecycle.Created{Path: "photo.png", Trackable: false}, next(t, events))
}

func TestWatcherRenameOutOfWorkspaceIsDelete(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	touch(t, filepath.Join(root, "a.md"))
	events := startWatcher(t, root)

	require.NoError(t, os.Rename(filepath.Join(root, "a.md"), filepath.Join(outside, "a.md")))
	assert.Equal(t, lifecycle.Deleted{Path: "a.md"}, next(t, events))
}

func TestWatcherIgnoresWritesAndDotDirs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.md"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".obsidian"), 0755))
	events := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("edited"), 0644))
	touch(t, filepath.Join(root, ".obsidian", "cache.md"))
	touch(t, filepath.Join(root, "z.md"))

	// The first event seen must be the create of z.md.
	assert.Equal(t, lifecycle.Created{Path: "z.md", Trackable: true}, next(t, events))
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(WatcherConfig{
		Root:    t.TempDir(),
		Matcher: defaultMatcher(t),
		Sink:    func(lifecycle.Event) {},
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestNewWatcherRequiresSink(t *testing.T) {
	_, err := NewWatcher(WatcherConfig{Root: t.TempDir(), Matcher: defaultMatcher(t)})
	assert.Error(t, err)
}

func TestWatcherRenameIntoNote(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "draft.txt"))
	events := startWatcher(t, root)

	require.NoError(t, os.Rename(filepath.Join(root, "draft.txt"), filepath.Join(root, "draft.md")))
	assert.Equal(t, lifecycle.Created{Path: "draft.md", Trackable: true}, next(t, events))
}

func TestWatcherRenameToNonNote(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.md"))
	events := startWatcher(t, root)

	require.NoError(t, os.Rename(filepath.Join(root, "a.md"), filepath.Join(root, "a.txt")))
	assert.Equal(t, lifecycle.Deleted{Path: "a.md"}, next(t, events))
}

type memPersister struct {
	snap *record.Snapshot
}

func (m *memPersister) LoadSnapshot(ctx context.Context) (*record.Snapshot, error) {
	return m.snap.Clone(), nil
}

func (m *memPersister) SaveSnapshot(ctx context.Context, snap *record.Snapshot) error {
	m.snap = snap.Clone()
	return nil
}

func newHandler(paths ...string) *lifecycle.Handler {
	snap := record.NewSnapshot(record.DefaultSettings())
	for _, p := range paths {
		snap.Records.Upsert(p, record.New(p))
	}
	return lifecycle.New(&memPersister{snap: snap.Clone()}, snap)
}

// applyUntil feeds watcher events to h until done reports true.
func applyUntil(t *testing.T, h *lifecycle.Handler, events <-chan lifecycle.Event, done func(record.Store) bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for !done(h.Snapshot().Records) {
		select {
		case ev := <-events:
			_, _ = h.Handle(context.Background(), ev)
		case <-deadline:
			t.Fatalf("records never settled: %v", h.Snapshot().Records.Paths())
		}
	}
}

func TestWatcherDirectoryLeavesWorkspace(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	touch(t, filepath.Join(root, "proj", "a.md"))
	touch(t, filepath.Join(root, "proj", "sub", "b.md"))
	touch(t, filepath.Join(root, "keep.md"))
	h := newHandler("proj/a.md", "proj/sub/b.md", "keep.md")
	events := startWatcher(t, root)

	require.NoError(t, os.Rename(filepath.Join(root, "proj"), filepath.Join(outside, "proj")))

	applyUntil(t, h, events, func(s record.Store) bool { return s.Len() == 1 })
	assert.Equal(t, []string{"keep.md"}, h.Snapshot().Records.Paths())
}

func TestWatcherDirectoryRenameKeepsHistory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "proj", "a.md"))
	h := newHandler("proj/a.md")
	_, err := h.ToggleIgnore(context.Background(), "proj/a.md")
	require.NoError(t, err)
	events := startWatcher(t, root)

	require.NoError(t, os.Rename(filepath.Join(root, "proj"), filepath.Join(root, "archive")))

	applyUntil(t, h, events, func(s record.Store) bool {
		_, moved := s.Get("archive/a.md")
		return moved
	})
	rec, _ := h.Record("archive/a.md")
	assert.True(t, rec.Ignored, "rename keeps the ignored flag")
	for _, p := range h.Snapshot().Records.Paths() {
		assert.False(t, strings.HasPrefix(p, "proj/"), "stale record %s", p)
	}
}
