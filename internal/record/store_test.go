package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 16, 9, 30, 0, 0, time.UTC)

func TestUpsertKeepsExisting(t *testing.T) {
	s := NewStore()
	require.True(t, s.Upsert("a.md", New("a.md")))
	require.NoError(t, s.SetLastAccessed("a.md", At(t0)))

	assert.False(t, s.Upsert("a.md", New("a.md")), "second upsert must not insert")

	got, ok := s.Get("a.md")
	require.True(t, ok)
	assert.True(t, got.LastAccessed.Equal(At(t0)), "history must survive idempotent create")
}

func TestUpsertRekeysPath(t *testing.T) {
	s := NewStore()
	s.Upsert("notes/a.md", Record{Path: "wrong.md"})

	got, _ := s.Get("notes/a.md")
	assert.Equal(t, "notes/a.md", got.Path)
}

func TestMissingPathOperations(t *testing.T) {
	s := NewStore()

	ops := map[string]func() error{
		"rename":       func() error { return s.Rename("nope.md", "other.md") },
		"set ignored":  func() error { return s.SetIgnored("nope.md", true) },
		"set accessed": func() error { return s.SetLastAccessed("nope.md", At(t0)) },
		"reset":        func() error { return s.ResetLastAccessed("nope.md") },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Equal(t, 0, s.Len(), "missing-path operation must not create a record")
		})
	}
}

func TestRemove(t *testing.T) {
	s := NewStore()
	s.Upsert("a.md", New("a.md"))

	assert.True(t, s.Remove("a.md"))
	assert.False(t, s.Remove("a.md"))
	assert.False(t, s.Has("a.md"))
}

func TestRemoveUnder(t *testing.T) {
	s := NewStore()
	for _, p := range []string{"proj/a.md", "proj/sub/b.md", "project.md", "projects/c.md", "z.md"} {
		s.Upsert(p, New(p))
	}

	assert.Equal(t, []string{"proj/a.md", "proj/sub/b.md"}, s.RemoveUnder("proj"))
	assert.Equal(t, []string{"project.md", "projects/c.md", "z.md"}, s.Paths())
	assert.Empty(t, s.RemoveUnder("proj/"))
	assert.Empty(t, s.RemoveUnder("z.md"))
}

func TestRenameMovesPayload(t *testing.T) {
	s := NewStore()
	s.Upsert("a.md", New("a.md"))
	require.NoError(t, s.SetIgnored("a.md", true))
	require.NoError(t, s.SetLastAccessed("a.md", At(t0)))

	require.NoError(t, s.Rename("a.md", "b.md"))

	assert.False(t, s.Has("a.md"))
	got, ok := s.Get("b.md")
	require.True(t, ok)
	assert.Equal(t, "b.md", got.Path)
	assert.True(t, got.Ignored)
	assert.True(t, got.LastAccessed.Equal(At(t0)))
}

func TestRenameRoundTrip(t *testing.T) {
	s := NewStore()
	s.Upsert("a.md", New("a.md"))
	require.NoError(t, s.SetLastAccessed("a.md", At(t0)))
	before, _ := s.Get("a.md")

	require.NoError(t, s.Rename("a.md", "b.md"))
	require.NoError(t, s.Rename("b.md", "a.md"))

	after, ok := s.Get("a.md")
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, s.Len())
}

func TestRenameOntoExistingReplaces(t *testing.T) {
	s := NewStore()
	s.Upsert("a.md", New("a.md"))
	s.Upsert("b.md", New("b.md"))
	require.NoError(t, s.SetLastAccessed("a.md", At(t0)))

	require.NoError(t, s.Rename("a.md", "b.md"))

	assert.Equal(t, 1, s.Len())
	got, _ := s.Get("b.md")
	assert.True(t, got.LastAccessed.Equal(At(t0)))
}

func TestToggleIgnoreTwiceIsIdentity(t *testing.T) {
	s := NewStore()
	s.Upsert("a.md", New("a.md"))
	require.NoError(t, s.SetLastAccessed("a.md", At(t0)))
	before, _ := s.Get("a.md")

	for range 2 {
		cur, _ := s.Get("a.md")
		require.NoError(t, s.SetIgnored("a.md", !cur.Ignored))
	}

	after, _ := s.Get("a.md")
	assert.Equal(t, before, after)
}

func TestResetLastAccessed(t *testing.T) {
	s := NewStore()
	s.Upsert("a.md", New("a.md"))
	require.NoError(t, s.SetLastAccessed("a.md", At(t0)))
	require.NoError(t, s.ResetLastAccessed("a.md"))

	got, _ := s.Get("a.md")
	assert.Equal(t, NeverAccessed, got.State())
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewStore()
	s.Upsert("a.md", New("a.md"))

	c := s.Clone()
	require.NoError(t, c.SetIgnored("a.md", true))
	c.Upsert("b.md", New("b.md"))

	orig, _ := s.Get("a.md")
	assert.False(t, orig.Ignored)
	assert.Equal(t, 1, s.Len())
}

func TestStoreJSONShape(t *testing.T) {
	snap := NewSnapshot(DefaultSettings())
	snap.Records.Upsert("a.md", New("a.md"))
	snap.Records.Upsert("b.md", Record{LastAccessed: At(t0)})

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"settings": {"unusedDaysLimit": 90, "weeklyReviewCount": 7},
		"records": {
			"a.md": {"filename": "a.md", "ignored": false, "lastAccessed": null},
			"b.md": {"filename": "b.md", "ignored": false, "lastAccessed": "2025-06-16T09:30:00Z"}
		}
	}`, string(data))
}

func TestStoreUnmarshalRekeys(t *testing.T) {
	var s Store
	err := json.Unmarshal([]byte(`{"x.md": {"filename": "stale-name.md", "ignored": true, "lastAccessed": 0}}`), &s)
	require.NoError(t, err)

	got, ok := s.Get("x.md")
	require.True(t, ok)
	assert.Equal(t, "x.md", got.Path)
	assert.True(t, got.Ignored)
	assert.Equal(t, Ignored, got.State())
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())
	assert.ErrorIs(t, Settings{UnusedDaysLimit: 90}.Validate(), ErrInvalidSettings)
	assert.ErrorIs(t, Settings{UnusedDaysLimit: -1, WeeklyReviewCount: 7}.Validate(), ErrInvalidSettings)
}
