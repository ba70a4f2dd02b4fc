// ABOUTME: SQLite database connection and lifecycle management.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required) and migrates on open.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harperreed/tradejournal/internal/logging"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DefaultLegacyTimezone is assumed for trades recorded before timezones were tracked.
const DefaultLegacyTimezone = "Asia/Tehran"

// Options configures Open.
type Options struct {
	// Logger receives store diagnostics. Nil disables logging.
	Logger *zerolog.Logger
	// LegacyTimezone backfills original_timezone on historical rows during migration.
	LegacyTimezone string
	// DefaultTimezone seeds the default_timezone setting when the settings table is created.
	DefaultTimezone string
	// SkipMigrate opens the file without bringing the schema up to date.
	SkipMigrate bool
}

// DB wraps the SQLite database connection.
type DB struct {
	db       *sql.DB
	dbPath   string
	log      zerolog.Logger
	migrator *Migrator
}

// Open opens or creates a SQLite database at the given path and migrates it to the latest schema.
func Open(dbPath string, opts Options) (*DB, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes every unit of work and keeps pragmas in effect.
	db.SetMaxOpenConns(1)

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = logging.Component(*opts.Logger, "storage")
	}

	d := &DB{db: db, dbPath: dbPath, log: log}

	// Configure pragmas for better performance
	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	// Set file permissions
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	legacy := opts.LegacyTimezone
	if legacy == "" {
		legacy = DefaultLegacyTimezone
	}
	seed := opts.DefaultTimezone
	if seed == "" {
		seed = legacy
	}
	d.migrator = NewMigrator(db, Migrations(legacy, seed), log)

	if !opts.SkipMigrate {
		if _, err := d.migrator.Migrate(context.Background()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate schema: %w", err)
		}
	}

	return d, nil
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tradejournal")
}

// DefaultDBPath returns the default database path following XDG spec.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "journal.db")
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.dbPath
}

// Migrator exposes the schema migrator bound to this database.
func (d *DB) Migrator() *Migrator {
	return d.migrator
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// configurePragmas sets up SQLite for a single local writer.
func (d *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// withTx runs fn in a transaction, committing on success.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
