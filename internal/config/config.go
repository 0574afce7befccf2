package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lazypower/revisit/internal/record"
)

// Config holds all revisit configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Review    ReviewConfig    `yaml:"review"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "json"
	Path   string `yaml:"path"`   // resolved at runtime when empty
}

type WorkspaceConfig struct {
	Root       string   `yaml:"root"`
	Include    []string `yaml:"include"` // glob patterns, '/' separated, relative to root
	Exclude    []string `yaml:"exclude"`
	DebounceMs int      `yaml:"debounce_ms"`
}

// ReviewConfig seeds the first-run settings. Once a snapshot exists the
// persisted settings win; edit them with `revisit settings`.
type ReviewConfig struct {
	UnusedDaysLimit   int    `yaml:"unused_days_limit"`
	WeeklyReviewCount int    `yaml:"weekly_review_count"`
	RecentLimit       int    `yaml:"recent_limit"`
	Reminder          string `yaml:"reminder"` // cron expression, empty disables
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
	File   string `yaml:"file"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	defaults := record.DefaultSettings()
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		Workspace: WorkspaceConfig{
			Root:       ".",
			Include:    []string{"**.md"},
			Exclude:    []string{".**", "**/.**"},
			DebounceMs: 150,
		},
		Review: ReviewConfig{
			UnusedDaysLimit:   defaults.UnusedDaysLimit,
			WeeklyReviewCount: defaults.WeeklyReviewCount,
			RecentLimit:       10,
			Reminder:          "0 20 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Home returns the revisit home directory, respecting REVISIT_HOME.
func Home() string {
	if h := os.Getenv("REVISIT_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".revisit")
	}
	return filepath.Join(home, ".revisit")
}

// DefaultPath returns $REVISIT_HOME/config.yaml.
func DefaultPath() string {
	return filepath.Join(Home(), "config.yaml")
}

// Load reads the YAML config at path over the defaults. A missing file
// yields the defaults. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("REVISIT_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("REVISIT_ROOT"); v != "" {
		c.Workspace.Root = v
	}
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "json":
	default:
		return fmt.Errorf("database.driver %q: want sqlite or json", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// DatabasePath returns the configured store path, or the default for the
// driver under Home().
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	if c.Database.Driver == "json" {
		return filepath.Join(Home(), "data.json")
	}
	return filepath.Join(Home(), "revisit.db")
}

// Settings returns the first-run settings.
func (c *Config) Settings() record.Settings {
	return record.Settings{
		UnusedDaysLimit:   c.Review.UnusedDaysLimit,
		WeeklyReviewCount: c.Review.WeeklyReviewCount,
	}
}
