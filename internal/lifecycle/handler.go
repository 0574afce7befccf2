// Package lifecycle keeps usage records consistent with what happens to the
// underlying files: creation, renames, deletion, opens, and the user's
// ignore / reset-usage actions.
//
// Every change is applied to a copy of the current snapshot and persisted
// before it becomes visible, so a failed write leaves both the in-memory
// store and durable storage untouched.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lazypower/revisit/internal/record"
)

// Persister reads and writes whole snapshots.
type Persister interface {
	LoadSnapshot(ctx context.Context) (*record.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap *record.Snapshot) error
}

// Handler applies lifecycle events to a snapshot. It is not safe for
// concurrent use; callers deliver events one at a time.
type Handler struct {
	persister Persister
	snap      *record.Snapshot
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithLogger sets the logger used for not-found reports and mutations.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// New returns a Handler over snap. A nil snap starts empty with default settings.
func New(p Persister, snap *record.Snapshot, opts ...Option) *Handler {
	if snap == nil {
		snap = record.NewSnapshot(record.DefaultSettings())
	}
	h := &Handler{
		persister: p,
		snap:      snap,
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Snapshot returns a copy of the current snapshot.
func (h *Handler) Snapshot() *record.Snapshot {
	return h.snap.Clone()
}

// Record returns the current record for path.
func (h *Handler) Record(path string) (record.Record, bool) {
	return h.snap.Records.Get(path)
}

// Settings returns the current settings.
func (h *Handler) Settings() record.Settings {
	return h.snap.Settings
}

// Reload replaces the in-memory snapshot with the persisted one.
func (h *Handler) Reload(ctx context.Context) error {
	snap, err := h.persister.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("reload snapshot: %w", err)
	}
	h.snap = snap
	return nil
}

// Replace persists snap as the whole new state.
func (h *Handler) Replace(ctx context.Context, snap *record.Snapshot) error {
	next := snap.Clone()
	if err := h.persister.SaveSnapshot(ctx, next); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	h.snap = next
	return nil
}

// Handle dispatches a host event. It reports whether the store changed.
// Renames and opens of untracked paths return an error wrapping
// record.ErrNotFound and leave the store as it was.
func (h *Handler) Handle(ctx context.Context, ev Event) (bool, error) {
	switch e := ev.(type) {
	case Created:
		return h.create(ctx, e)
	case Renamed:
		return h.rename(ctx, e)
	case Deleted:
		return h.delete(ctx, e)
	case Opened:
		return h.open(ctx, e)
	default:
		return false, fmt.Errorf("unsupported event %T", ev)
	}
}

func (h *Handler) create(ctx context.Context, e Created) (bool, error) {
	if !e.Trackable {
		return false, nil
	}
	return h.apply(ctx, "create", e.Path, func(s record.Store) (bool, error) {
		return s.Upsert(e.Path, record.New(e.Path)), nil
	})
}

func (h *Handler) rename(ctx context.Context, e Renamed) (bool, error) {
	return h.apply(ctx, "rename", e.OldPath, func(s record.Store) (bool, error) {
		if e.OldPath != e.NewPath && s.Has(e.OldPath) && s.Has(e.NewPath) {
			h.log.Info().Str("from", e.OldPath).Str("to", e.NewPath).Msg("rename replaces existing record")
		}
		if err := s.Rename(e.OldPath, e.NewPath); err != nil {
			return false, err
		}
		return e.OldPath != e.NewPath, nil
	})
}

// delete removes the record at the path and, when the path was a
// directory, every record below it.
func (h *Handler) delete(ctx context.Context, e Deleted) (bool, error) {
	return h.apply(ctx, "delete", e.Path, func(s record.Store) (bool, error) {
		removed := s.Remove(e.Path)
		if under := s.RemoveUnder(e.Path); len(under) > 0 {
			h.log.Debug().Str("dir", e.Path).Strs("paths", under).Msg("directory records removed")
			removed = true
		}
		return removed, nil
	})
}

func (h *Handler) open(ctx context.Context, e Opened) (bool, error) {
	at := record.At(h.now())
	return h.apply(ctx, "open", e.Path, func(s record.Store) (bool, error) {
		rec, ok := s.Get(e.Path)
		if !ok {
			return false, fmt.Errorf("open %q: %w", e.Path, record.ErrNotFound)
		}
		if rec.Ignored {
			return false, nil
		}
		return true, s.SetLastAccessed(e.Path, at)
	})
}

// ToggleIgnore flips the ignored flag of path, keeping its last access.
func (h *Handler) ToggleIgnore(ctx context.Context, path string) (record.Record, error) {
	_, err := h.apply(ctx, "toggle ignore", path, func(s record.Store) (bool, error) {
		rec, ok := s.Get(path)
		if !ok {
			return false, fmt.Errorf("toggle ignore %q: %w", path, record.ErrNotFound)
		}
		return true, s.SetIgnored(path, !rec.Ignored)
	})
	if err != nil {
		return record.Record{}, err
	}
	rec, _ := h.Record(path)
	return rec, nil
}

// ResetUsage clears the last access of an active, accessed record so it
// becomes due again. Ignored and never-accessed records are left alone.
// It reports whether the record changed.
func (h *Handler) ResetUsage(ctx context.Context, path string) (record.Record, bool, error) {
	changed, err := h.apply(ctx, "reset usage", path, func(s record.Store) (bool, error) {
		rec, ok := s.Get(path)
		if !ok {
			return false, fmt.Errorf("reset usage %q: %w", path, record.ErrNotFound)
		}
		if rec.State() != record.Accessed {
			return false, nil
		}
		return true, s.ResetLastAccessed(path)
	})
	if err != nil {
		return record.Record{}, false, err
	}
	rec, _ := h.Record(path)
	return rec, changed, nil
}

// UpdateSettings validates and persists new settings.
func (h *Handler) UpdateSettings(ctx context.Context, settings record.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if settings == h.snap.Settings {
		return nil
	}
	next := h.snap.Clone()
	next.Settings = settings
	if err := h.persister.SaveSnapshot(ctx, next); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	h.snap = next
	h.log.Info().
		Int("unused_days_limit", settings.UnusedDaysLimit).
		Int("weekly_review_count", settings.WeeklyReviewCount).
		Msg("settings updated")
	return nil
}

// apply runs fn on a copy of the store and, if it changed anything,
// persists the copy before installing it.
func (h *Handler) apply(ctx context.Context, op, path string, fn func(record.Store) (bool, error)) (bool, error) {
	next := h.snap.Clone()
	changed, err := fn(next.Records)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			h.log.Warn().Str("op", op).Str("path", path).Msg("record not found")
		}
		return false, err
	}
	if !changed {
		return false, nil
	}

	if err := h.persister.SaveSnapshot(ctx, next); err != nil {
		h.log.Error().Err(err).Str("op", op).Str("path", path).Msg("persist failed, change discarded")
		return false, fmt.Errorf("%s %q: save snapshot: %w", op, path, err)
	}
	h.snap = next
	h.log.Debug().Str("op", op).Str("path", path).Int("records", next.Records.Len()).Msg("record updated")
	return true, nil
}
