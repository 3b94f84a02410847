package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	// Registers the "sqlite" migrate driver (pure Go).
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/ablomov/remindd/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteRepo implements Repo on an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the database at path, applies PRAGMAs,
// runs migrations and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := runMigrations(path); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single-writer engine; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	return &SQLiteRepo{db: db}, nil
}

func runMigrations(path string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+path)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error { return r.db.Close() }

// LoadPreferences returns the stored snapshot for userID, or
// domain.ErrNotFound when the user has never saved preferences.
func (r *SQLiteRepo) LoadPreferences(ctx context.Context, userID string) (domain.Preferences, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT schema_version, timezone, enabled_json, times_json,
		       quiet_from_m, quiet_to_m
		FROM preferences
		WHERE user_id = ?`,
		userID,
	)

	var (
		version        int
		tz             string
		enabledJSON    string
		timesJSON      string
		quietF, quietT sql.NullInt64
	)
	if err := row.Scan(&version, &tz, &enabledJSON, &timesJSON, &quietF, &quietT); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Preferences{}, domain.ErrNotFound
		}
		return domain.Preferences{}, fmt.Errorf("%w: load preferences: %v", domain.ErrStorageUnavailable, err)
	}

	enabled, err := decodeEnabled(enabledJSON)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("%w: decode enabled: %v", domain.ErrStorageUnavailable, err)
	}
	times, err := decodeTimes(timesJSON)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("%w: decode times: %v", domain.ErrStorageUnavailable, err)
	}

	return domain.Preferences{
		UserID:         userID,
		SchemaVersion:  version,
		Enabled:        enabled,
		PreferredTimes: times,
		QuietHours:     quietFromNull(quietF, quietT),
		Timezone:       tz,
	}, nil
}

// SavePreferences upserts the snapshot in a single statement, so a
// concurrent load observes either the old or the new row, never a mix.
func (r *SQLiteRepo) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	enabledJSON, err := encodeEnabled(prefs.Enabled)
	if err != nil {
		return fmt.Errorf("%w: encode enabled: %v", domain.ErrStorageUnavailable, err)
	}
	timesJSON, err := encodeTimes(prefs.PreferredTimes)
	if err != nil {
		return fmt.Errorf("%w: encode times: %v", domain.ErrStorageUnavailable, err)
	}
	quietF, quietT := quietToNull(prefs.QuietHours)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO preferences (
			user_id, schema_version, timezone, enabled_json, times_json,
			quiet_from_m, quiet_to_m, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			schema_version = excluded.schema_version,
			timezone       = excluded.timezone,
			enabled_json   = excluded.enabled_json,
			times_json     = excluded.times_json,
			quiet_from_m   = excluded.quiet_from_m,
			quiet_to_m     = excluded.quiet_to_m,
			updated_at     = excluded.updated_at`,
		prefs.UserID, prefs.SchemaVersion, prefs.Timezone, enabledJSON, timesJSON,
		quietF, quietT, time.Now().UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: save preferences: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// LoadCommitted returns the persisted committed schedule for userID,
// ordered by fire instant.
func (r *SQLiteRepo) LoadCommitted(ctx context.Context, userID string) ([]domain.Trigger, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sequence_id, category, fire_at
		FROM committed_triggers
		WHERE user_id = ?
		ORDER BY fire_at ASC, sequence_id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load committed: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []domain.Trigger
	for rows.Next() {
		var (
			seq    string
			cat    string
			fireAt int64
		)
		if err := rows.Scan(&seq, &cat, &fireAt); err != nil {
			return nil, fmt.Errorf("%w: scan committed: %v", domain.ErrStorageUnavailable, err)
		}
		out = append(out, domain.Trigger{
			Category:   domain.Category(cat),
			At:         time.Unix(fireAt, 0).UTC(),
			SequenceID: domain.SequenceID(seq),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load committed: %v", domain.ErrStorageUnavailable, err)
	}
	return out, nil
}

// ReplaceCommitted swaps the persisted committed schedule in one
// transaction.
func (r *SQLiteRepo) ReplaceCommitted(ctx context.Context, userID string, triggers []domain.Trigger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStorageUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM committed_triggers WHERE user_id = ?`, userID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: clear committed: %v", domain.ErrStorageUnavailable, err)
	}
	for _, t := range triggers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO committed_triggers (user_id, sequence_id, category, fire_at, schema_version)
			VALUES (?, ?, ?, ?, ?)`,
			userID, string(t.SequenceID), string(t.Category), t.At.UTC().Unix(),
			domain.PreferencesSchemaVersion,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: insert committed: %v", domain.ErrStorageUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// ClearCommitted drops the persisted committed schedule (logout path).
func (r *SQLiteRepo) ClearCommitted(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM committed_triggers WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("%w: clear committed: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
