package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lazypower/revisit/internal/record"
)

var (
	// ErrNoSnapshot means nothing has been persisted yet (first run).
	ErrNoSnapshot = errors.New("store: no snapshot")
	// ErrCorrupt means persisted state exists but cannot be read back.
	ErrCorrupt = errors.New("store: corrupt snapshot")
)

// LoadSnapshot reads settings and every record. It returns ErrNoSnapshot
// when no snapshot was ever saved.
func (db *DB) LoadSnapshot(ctx context.Context) (*record.Snapshot, error) {
	var settings record.Settings
	err := db.QueryRowContext(ctx, `
		SELECT unused_days_limit, weekly_review_count FROM settings WHERE id = 1
	`).Scan(&settings.UnusedDaysLimit, &settings.WeeklyReviewCount)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT path, ignored, last_accessed FROM records`)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	snap := record.NewSnapshot(settings)
	for rows.Next() {
		var (
			rec     record.Record
			ignored int
			last    sql.NullInt64
		)
		if err := rows.Scan(&rec.Path, &ignored, &last); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Ignored = ignored != 0
		if last.Valid {
			rec.LastAccessed = record.FromUnixMilli(last.Int64)
		}
		snap.Records[rec.Path] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return snap, nil
}

// SaveSnapshot replaces the persisted state with snap in one transaction.
// Readers see either the previous snapshot or this one, never a mix.
func (db *DB) SaveSnapshot(ctx context.Context, snap *record.Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settings (id, unused_days_limit, weekly_review_count, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			unused_days_limit = excluded.unused_days_limit,
			weekly_review_count = excluded.weekly_review_count,
			updated_at = excluded.updated_at
	`, snap.Settings.UnusedDaysLimit, snap.Settings.WeeklyReviewCount, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (path, ignored, last_accessed) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for path, rec := range snap.Records {
		var last sql.NullInt64
		if rec.LastAccessed.IsSet() {
			last = sql.NullInt64{Int64: rec.LastAccessed.UnixMilli(), Valid: true}
		}
		ignored := 0
		if rec.Ignored {
			ignored = 1
		}
		if _, err := stmt.ExecContext(ctx, path, ignored, last); err != nil {
			return fmt.Errorf("insert record %q: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
