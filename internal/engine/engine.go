// Package engine ties the review core to durable storage: it opens (or
// seeds) the snapshot, serializes lifecycle events, and builds review
// sessions from freshly loaded state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lazypower/revisit/internal/lifecycle"
	"github.com/lazypower/revisit/internal/record"
	"github.com/lazypower/revisit/internal/review"
	"github.com/lazypower/revisit/internal/store"
)

// ErrNotOpen is returned by operations called before Open.
var ErrNotOpen = errors.New("engine: not open")

// Config configures an Engine. Zero fields take defaults.
type Config struct {
	Defaults    record.Settings // settings for a first-run snapshot
	RecentLimit int
	Now         func() time.Time
	Source      rand.Source
	Logger      zerolog.Logger
}

// Engine serializes access to the review state. All methods are safe for
// concurrent use.
type Engine struct {
	mu          sync.Mutex
	persister   lifecycle.Persister
	handler     *lifecycle.Handler
	selector    *review.Selector
	defaults    record.Settings
	recentLimit int
	now         func() time.Time
	log         zerolog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates an Engine over p. Call Open before anything else.
func New(p lifecycle.Persister, cfg Config) *Engine {
	if cfg.Defaults == (record.Settings{}) {
		cfg.Defaults = record.DefaultSettings()
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = review.DefaultRecentLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		persister:   p,
		selector:    review.NewSelector(cfg.Source),
		defaults:    cfg.Defaults,
		recentLimit: cfg.RecentLimit,
		now:         cfg.Now,
		log:         cfg.Logger,
		stopCh:      make(chan struct{}),
	}
}

// Open loads the persisted snapshot. On first run (no snapshot yet) every
// path returned by seed is recorded as never accessed, under the default
// settings, and the result is persisted. It reports whether it seeded.
// Invalid default settings fail the first run before anything is written.
//
// Load failures other than a missing snapshot are returned as is; the
// engine never replaces unreadable state with an empty one.
func (e *Engine) Open(ctx context.Context, seed func() ([]string, error)) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := e.persister.LoadSnapshot(ctx)
	if err == nil {
		e.handler = e.newHandler(snap)
		e.log.Info().Int("records", snap.Records.Len()).Msg("snapshot loaded")
		return false, nil
	}
	if !errors.Is(err, store.ErrNoSnapshot) {
		return false, fmt.Errorf("load snapshot: %w", err)
	}

	if err := e.defaults.Validate(); err != nil {
		return false, fmt.Errorf("first-run settings: %w", err)
	}
	fresh := record.NewSnapshot(e.defaults)
	if seed != nil {
		paths, err := seed()
		if err != nil {
			return false, fmt.Errorf("list workspace: %w", err)
		}
		for _, p := range paths {
			fresh.Records.Upsert(p, record.New(p))
		}
	}

	h := e.newHandler(nil)
	if err := h.Replace(ctx, fresh); err != nil {
		return false, fmt.Errorf("seed snapshot: %w", err)
	}
	e.handler = h
	e.log.Info().Int("records", fresh.Records.Len()).Msg("first run, snapshot seeded")
	return true, nil
}

func (e *Engine) newHandler(snap *record.Snapshot) *lifecycle.Handler {
	return lifecycle.New(e.persister, snap,
		lifecycle.WithClock(e.now),
		lifecycle.WithLogger(e.log),
	)
}

// sync reloads persisted state so changes written by other processes (a
// hook applying an event locally) are not overwritten. Callers hold mu.
func (e *Engine) sync(ctx context.Context) error {
	if e.handler == nil {
		return ErrNotOpen
	}
	return e.handler.Reload(ctx)
}

// Session reloads the snapshot and builds a review session. A goal
// configuration error is returned along with the session.
func (e *Engine) Session(ctx context.Context) (*review.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session(ctx)
}

func (e *Engine) session(ctx context.Context) (*review.Session, error) {
	if err := e.sync(ctx); err != nil {
		return nil, err
	}
	return review.BuildSession(e.handler.Snapshot(), e.now(), e.recentLimit)
}

// Pick opens a session and selects one due record, favoring the staler
// part of the list. It returns review.ErrNothingDue when caught up.
func (e *Engine) Pick(ctx context.Context) (*review.Session, record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.session(ctx)
	if sess == nil {
		return nil, record.Record{}, err
	}
	if err != nil {
		// Goals do not affect selection.
		e.log.Warn().Err(err).Msg("review goals unavailable")
	}
	rec, err := e.selector.Pick(sess.Due)
	if err != nil {
		return sess, record.Record{}, err
	}
	e.log.Debug().Str("path", rec.Path).Int("due", sess.TotalDue).Msg("picked")
	return sess, rec, nil
}

// Handle applies one host event and reports whether the store changed.
func (e *Engine) Handle(ctx context.Context, ev lifecycle.Event) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.sync(ctx); err != nil {
		return false, err
	}
	return e.handler.Handle(ctx, ev)
}

// ToggleIgnore flips whether path is excluded from review.
func (e *Engine) ToggleIgnore(ctx context.Context, path string) (record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.sync(ctx); err != nil {
		return record.Record{}, err
	}
	return e.handler.ToggleIgnore(ctx, path)
}

// ResetUsage makes an accessed record due again.
func (e *Engine) ResetUsage(ctx context.Context, path string) (record.Record, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.sync(ctx); err != nil {
		return record.Record{}, false, err
	}
	return e.handler.ResetUsage(ctx, path)
}

// UpdateSettings validates and persists settings.
func (e *Engine) UpdateSettings(ctx context.Context, settings record.Settings) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.sync(ctx); err != nil {
		return err
	}
	return e.handler.UpdateSettings(ctx, settings)
}

// Settings returns the persisted settings.
func (e *Engine) Settings(ctx context.Context) (record.Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.sync(ctx); err != nil {
		return record.Settings{}, err
	}
	return e.handler.Settings(), nil
}

// Record returns the record for path, or an error wrapping
// record.ErrNotFound.
func (e *Engine) Record(ctx context.Context, path string) (record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.sync(ctx); err != nil {
		return record.Record{}, err
	}
	rec, ok := e.handler.Record(path)
	if !ok {
		return record.Record{}, fmt.Errorf("record %q: %w", path, record.ErrNotFound)
	}
	return rec, nil
}

// Export returns a copy of the persisted snapshot.
func (e *Engine) Export(ctx context.Context) (*record.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.sync(ctx); err != nil {
		return nil, err
	}
	return e.handler.Snapshot(), nil
}

// Import replaces the whole state with snap after validating its settings.
func (e *Engine) Import(ctx context.Context, snap *record.Snapshot) error {
	if err := snap.Settings.Validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handler == nil {
		return ErrNotOpen
	}
	if err := e.handler.Replace(ctx, snap); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	e.log.Info().Int("records", snap.Records.Len()).Msg("snapshot imported")
	return nil
}

// Stop shuts down the engine's background goroutines.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}
