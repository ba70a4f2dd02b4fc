// ABOUTME: Versioned schema migrator with a pluggable version tracker.
// ABOUTME: A run commits as one transaction; a failing step leaves the prior version.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/tradejournal/internal/logging"
	"github.com/rs/zerolog"
)

// Execer is the subset of *sql.DB and *sql.Tx a migration step runs against.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Migration is one numbered schema step.
type Migration struct {
	Version int
	Name    string
	Apply   func(ctx context.Context, ex Execer) error
}

// VersionTracker reads and records the applied schema version. Set runs inside the
// migration transaction, so a tracker that keeps the version outside the database
// does not roll back with it.
type VersionTracker interface {
	Current(ctx context.Context, ex Execer) (int, error)
	Set(ctx context.Context, ex Execer, version int) error
}

// tableTracker keeps the version in the single-row schema_version table.
type tableTracker struct{}

func (tableTracker) Current(ctx context.Context, ex Execer) (int, error) {
	var n int
	err := ex.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("check schema_version: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	var v int
	err = ex.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return v, nil
}

func (tableTracker) Set(ctx context.Context, ex Execer, version int) error {
	if _, err := ex.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	if _, err := ex.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
		return fmt.Errorf("clear schema_version: %w", err)
	}
	if _, err := ex.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
		return fmt.Errorf("write schema_version: %w", err)
	}
	return nil
}

// Migrator applies an ordered list of migrations.
type Migrator struct {
	db      *sql.DB
	steps   []Migration
	tracker VersionTracker
	log     zerolog.Logger
}

// NewMigrator creates a migrator over steps, which must be numbered 1..N in order.
func NewMigrator(db *sql.DB, steps []Migration, log zerolog.Logger) *Migrator {
	return &Migrator{
		db:      db,
		steps:   steps,
		tracker: tableTracker{},
		log:     logging.Component(log, "migrator"),
	}
}

// WithTracker replaces the version tracker.
func (m *Migrator) WithTracker(t VersionTracker) *Migrator {
	m.tracker = t
	return m
}

// Latest returns the highest known schema version.
func (m *Migrator) Latest() int {
	if len(m.steps) == 0 {
		return 0
	}
	return m.steps[len(m.steps)-1].Version
}

// Version returns the schema version recorded in the database.
func (m *Migrator) Version(ctx context.Context) (int, error) {
	return m.tracker.Current(ctx, m.db)
}

// Pending returns the steps not yet applied, in order.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	current, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, step := range m.steps {
		if step.Version > current {
			out = append(out, step)
		}
	}
	return out, nil
}

// Migrate brings the database to the latest version and returns it.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	return m.MigrateTo(ctx, m.Latest())
}

// MigrateTo applies pending steps up to and including target.
// It never moves backwards; a database already at or past target is left unchanged.
func (m *Migrator) MigrateTo(ctx context.Context, target int) (int, error) {
	if err := m.validate(); err != nil {
		return 0, err
	}
	if target < 0 || target > m.Latest() {
		return 0, fmt.Errorf("%w: target version %d outside 0..%d", ErrInvalid, target, m.Latest())
	}

	current, err := m.Version(ctx)
	if err != nil {
		return 0, err
	}
	if current > m.Latest() {
		return current, fmt.Errorf("database schema version %d is newer than supported %d", current, m.Latest())
	}

	if current >= target {
		return current, nil
	}

	reached, err := m.run(ctx, current, target)
	if err != nil {
		return current, err
	}
	return reached, nil
}

// run applies the steps in (from, target] in one transaction. The marker is written
// after each step, and any failure rolls the whole run back.
func (m *Migrator) run(ctx context.Context, from, target int) (int, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return from, fmt.Errorf("begin transaction: %w", err)
	}

	current := from
	for _, step := range m.steps {
		if step.Version <= from || step.Version > target {
			continue
		}
		err := step.Apply(ctx, tx)
		if err == nil {
			err = m.tracker.Set(ctx, tx, step.Version)
		}
		if err != nil {
			_ = tx.Rollback()
			m.log.Error().Err(err).Int("version", step.Version).Str("step", step.Name).
				Int("kept_version", from).Msg("migration failed, rolled back")
			return from, fmt.Errorf("migration %d (%s): %w", step.Version, step.Name, err)
		}
		current = step.Version
		m.log.Debug().Int("version", step.Version).Str("step", step.Name).Msg("migration applied")
	}

	if err := tx.Commit(); err != nil {
		return from, fmt.Errorf("commit migrations: %w", err)
	}
	return current, nil
}

func (m *Migrator) validate() error {
	for i, step := range m.steps {
		if step.Version != i+1 {
			return fmt.Errorf("migration list out of order: position %d has version %d", i+1, step.Version)
		}
		if step.Apply == nil {
			return fmt.Errorf("migration %d has no apply function", step.Version)
		}
	}
	return nil
}
