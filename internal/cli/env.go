package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lazypower/revisit/internal/config"
	"github.com/lazypower/revisit/internal/engine"
	"github.com/lazypower/revisit/internal/lifecycle"
	"github.com/lazypower/revisit/internal/logger"
	"github.com/lazypower/revisit/internal/store"
	"github.com/lazypower/revisit/internal/vault"
)

// env is what every command needs: config, logger, workspace and store.
type env struct {
	cfg     config.Config
	log     zerolog.Logger
	root    string
	matcher *vault.Matcher
	closers []io.Closer
}

// loadEnv reads config and builds the logger. Commands other than serve
// log at warn unless --log-level says otherwise, so their stdout stays
// clean and stderr quiet.
func loadEnv(server bool) (*env, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagRoot != "" {
		cfg.Workspace.Root = flagRoot
	}

	logCfg := logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty, File: cfg.Logging.File}
	if !server {
		logCfg.Level = "warn"
	}
	if flagLogLevel != "" {
		logCfg.Level = flagLogLevel
	}
	log, closer, err := logger.New(logCfg)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(cfg.Workspace.Root)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	m, err := vault.NewMatcher(cfg.Workspace.Include, cfg.Workspace.Exclude)
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &env{
		cfg:     cfg,
		log:     log,
		root:    root,
		matcher: m,
		closers: []io.Closer{closer},
	}, nil
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
}

// openPersister opens the store selected by database.driver.
func (e *env) openPersister() (lifecycle.Persister, error) {
	path := e.cfg.DatabasePath()
	switch e.cfg.Database.Driver {
	case "json":
		return store.NewFile(path), nil
	default:
		db, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		e.closers = append(e.closers, db)
		return db, nil
	}
}

// seed lists the workspace for a first-run snapshot.
func (e *env) seed() ([]string, error) {
	return vault.List(e.root, e.matcher)
}

// openEngine opens the store and the engine over it, seeding from the
// workspace on first run. It reports whether it seeded.
func (e *env) openEngine(ctx context.Context) (*engine.Engine, bool, error) {
	p, err := e.openPersister()
	if err != nil {
		return nil, false, err
	}
	eng := engine.New(p, engine.Config{
		Defaults:    e.cfg.Settings(),
		RecentLimit: e.cfg.Review.RecentLimit,
		Logger:      e.log,
	})
	seeded, err := eng.Open(ctx, e.seed)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			return nil, false, fmt.Errorf("%w (restore it or point database.path elsewhere; it was not modified)", err)
		}
		return nil, false, err
	}
	return eng, seeded, nil
}

// withEngine loads env and engine for a one-shot command.
func withEngine(fn func(ctx context.Context, e *env, eng *engine.Engine) error) error {
	e, err := loadEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	eng, _, err := e.openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Stop()
	return fn(ctx, e, eng)
}

// relPath converts a user-supplied path into a record key. Relative paths
// are taken as relative to the workspace root.
func (e *env) relPath(path string) (string, error) {
	return vault.Rel(e.root, path)
}
