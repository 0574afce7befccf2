package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	db := testDB(t)
	assert.Equal(t, ":memory:", db.Path)
}

func TestSchemaVersion(t *testing.T) {
	db := testDB(t)

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestTablesExist(t *testing.T) {
	db := testDB(t)

	for _, table := range []string{"schema_versions", "records", "settings"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %q", table)
	}
}

func TestRecordsConstraints(t *testing.T) {
	db := testDB(t)

	_, err := db.Exec(`INSERT INTO records (path, ignored, last_accessed) VALUES ('a.md', 0, NULL)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO records (path, ignored) VALUES ('a.md', 1)`)
	assert.Error(t, err, "duplicate path")

	_, err = db.Exec(`INSERT INTO records (path, ignored) VALUES ('b.md', 2)`)
	assert.Error(t, err, "ignored flag out of range")
}

func TestSettingsSingleRow(t *testing.T) {
	db := testDB(t)

	_, err := db.Exec(`INSERT INTO settings (id, unused_days_limit, weekly_review_count, updated_at) VALUES (2, 90, 7, 0)`)
	assert.Error(t, err, "second settings row")

	_, err = db.Exec(`INSERT INTO settings (id, unused_days_limit, weekly_review_count, updated_at) VALUES (1, -1, 7, 0)`)
	assert.Error(t, err, "negative unused_days_limit")
}

func TestMigrationsIdempotent(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.migrate(), "second migrate")

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestOpenFile(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "revisit.db"))
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}
