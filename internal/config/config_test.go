package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/revisit/internal/record"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "127.0.0.1:37778", cfg.ListenAddr())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 90, cfg.Review.UnusedDaysLimit)
	assert.Equal(t, 7, cfg.Review.WeeklyReviewCount)
	assert.Equal(t, 10, cfg.Review.RecentLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("REVISIT_DB", "")
	t.Setenv("REVISIT_ROOT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	t.Setenv("REVISIT_DB", "")
	t.Setenv("REVISIT_ROOT", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  driver: json
review:
  unused_days_limit: 30
workspace:
  include: ["**.md", "**.txt"]
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Bind, "unset keys keep defaults")
	assert.Equal(t, "json", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Review.UnusedDaysLimit)
	assert.Equal(t, 7, cfg.Review.WeeklyReviewCount)
	assert.Equal(t, []string{"**.md", "**.txt"}, cfg.Workspace.Include)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REVISIT_DB", "/tmp/custom.db")
	t.Setenv("REVISIT_ROOT", "/notes")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.DatabasePath())
	assert.Equal(t, "/notes", cfg.Workspace.Root)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [1, 2"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	driver := filepath.Join(dir, "driver.yaml")
	require.NoError(t, os.WriteFile(driver, []byte("database:\n  driver: postgres\n"), 0644))
	_, err = Load(driver)
	assert.ErrorContains(t, err, "database.driver")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("REVISIT_DB", "")
	t.Setenv("REVISIT_ROOT", "")
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Review.Reminder = ""
	cfg.Workspace.Root = "/vault"
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDatabasePathDefaults(t *testing.T) {
	t.Setenv("REVISIT_HOME", "/home/test/.revisit")

	cfg := Default()
	assert.Equal(t, "/home/test/.revisit/revisit.db", cfg.DatabasePath())

	cfg.Database.Driver = "json"
	assert.Equal(t, "/home/test/.revisit/data.json", cfg.DatabasePath())
}

func TestLoadRejectsInvalidReviewDefaults(t *testing.T) {
	t.Setenv("REVISIT_DB", "")
	t.Setenv("REVISIT_ROOT", "")
	dir := t.TempDir()

	for name, body := range map[string]string{
		"zero weekly":   "review:\n  weekly_review_count: 0\n",
		"negative days": "review:\n  unused_days_limit: -1\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := Load(path)
			assert.ErrorIs(t, err, record.ErrInvalidSettings)
			assert.ErrorContains(t, err, "review")
		})
	}
}
