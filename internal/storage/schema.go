// ABOUTME: SQLite schema history as an ordered list of migrations.
// ABOUTME: Steps 1-9 reproduce the historical layout; 10-11 move tags into a join table.
package storage

import (
	"context"
	"fmt"

	"github.com/harperreed/tradejournal/internal/models"
)

// SettingDefaultTimezone and SettingRFThreshold are the known settings keys.
const (
	SettingDefaultTimezone = "default_timezone"
	SettingRFThreshold     = "rf_threshold"
)

// Migrations returns the schema ladder. legacyTZ backfills original_timezone on rows
// that predate it; defaultTZ seeds the default_timezone setting.
func Migrations(legacyTZ, defaultTZ string) []Migration {
	return []Migration{
		{Version: 1, Name: "create trades", Apply: execAll(`
			CREATE TABLE IF NOT EXISTS trades (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				date TEXT NOT NULL,
				time TEXT NOT NULL,
				symbol TEXT NOT NULL,
				entry REAL,
				exit REAL,
				profit TEXT NOT NULL,
				errors TEXT
			)`)},
		{Version: 2, Name: "create error tags", Apply: execAll(`
			CREATE TABLE IF NOT EXISTS errors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				error TEXT NOT NULL UNIQUE
			)`)},
		{Version: 3, Name: "add size", Apply: execAll(
			`ALTER TABLE trades ADD COLUMN size REAL DEFAULT 0.0`)},
		{Version: 4, Name: "add position id", Apply: execAll(
			`ALTER TABLE trades ADD COLUMN position_id TEXT`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_trades_position_id ON trades(position_id) WHERE position_id IS NOT NULL`)},
		{Version: 5, Name: "add direction", Apply: execAll(
			`ALTER TABLE trades ADD COLUMN type TEXT`)},
		{Version: 6, Name: "add volume", Apply: execAll(
			`ALTER TABLE trades ADD COLUMN volume REAL`)},
		{Version: 7, Name: "drop volume", Apply: execAll(
			`ALTER TABLE trades DROP COLUMN volume`)},
		{Version: 8, Name: "decimal text columns", Apply: execAll(
			`CREATE TABLE trades_new (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				date TEXT NOT NULL,
				time TEXT NOT NULL,
				symbol TEXT NOT NULL,
				entry TEXT,
				exit TEXT,
				profit TEXT NOT NULL,
				errors TEXT,
				size TEXT DEFAULT '0.0',
				position_id TEXT,
				type TEXT
			)`,
			`INSERT INTO trades_new (id, date, time, symbol, entry, exit, profit, errors, size, position_id, type)
			SELECT id, date, time, symbol,
				CAST(entry AS TEXT), CAST(exit AS TEXT), profit, errors,
				COALESCE(CAST(size AS TEXT), '0.0'), position_id, type
			FROM trades`,
			`DROP TABLE trades`,
			`ALTER TABLE trades_new RENAME TO trades`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_trades_position_id ON trades(position_id) WHERE position_id IS NOT NULL`)},
		{Version: 9, Name: "settings and original timezone", Apply: func(ctx context.Context, ex Execer) error {
			if err := execAll(
				`CREATE TABLE IF NOT EXISTS settings (
					key TEXT PRIMARY KEY,
					value TEXT NOT NULL
				)`,
				`ALTER TABLE trades ADD COLUMN original_timezone TEXT`,
			)(ctx, ex); err != nil {
				return err
			}
			if _, err := ex.ExecContext(ctx,
				`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, SettingDefaultTimezone, defaultTZ); err != nil {
				return fmt.Errorf("seed default timezone: %w", err)
			}
			if _, err := ex.ExecContext(ctx,
				`UPDATE trades SET original_timezone = ? WHERE original_timezone IS NULL`, legacyTZ); err != nil {
				return fmt.Errorf("backfill original timezone: %w", err)
			}
			return nil
		}},
		{Version: 10, Name: "trade error join table", Apply: func(ctx context.Context, ex Execer) error {
			if err := execAll(
				`CREATE TABLE IF NOT EXISTS trade_errors (
					trade_id INTEGER NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
					error_id INTEGER NOT NULL REFERENCES errors(id) ON DELETE RESTRICT,
					PRIMARY KEY (trade_id, error_id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_trade_errors_error ON trade_errors(error_id)`,
				`CREATE INDEX IF NOT EXISTS idx_trades_date_time ON trades(date, time)`,
			)(ctx, ex); err != nil {
				return err
			}
			return backfillTradeErrors(ctx, ex)
		}},
		{Version: 11, Name: "drop legacy errors column", Apply: execAll(
			`ALTER TABLE trades DROP COLUMN errors`)},
	}
}

// execAll returns a step that runs each statement in order.
func execAll(stmts ...string) func(context.Context, Execer) error {
	return func(ctx context.Context, ex Execer) error {
		for _, stmt := range stmts {
			if _, err := ex.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
}

// backfillTradeErrors links each trade to the tags named in its legacy errors column.
func backfillTradeErrors(ctx context.Context, ex Execer) error {
	type legacyRow struct {
		id   int64
		tags []string
	}

	rows, err := ex.QueryContext(ctx, `SELECT id, errors FROM trades WHERE errors IS NOT NULL AND errors != ''`)
	if err != nil {
		return fmt.Errorf("read legacy errors: %w", err)
	}
	var pending []legacyRow
	for rows.Next() {
		var r legacyRow
		var raw string
		if err := rows.Scan(&r.id, &raw); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan legacy errors: %w", err)
		}
		r.tags = models.ParseTags(raw)
		pending = append(pending, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, r := range pending {
		if err := linkTags(ctx, ex, r.id, r.tags); err != nil {
			return err
		}
	}
	return nil
}

// linkTags attaches tags to a trade, creating any tag that does not exist yet.
func linkTags(ctx context.Context, ex Execer, tradeID int64, tags []string) error {
	for _, name := range tags {
		if err := checkTagName(name); err != nil {
			return err
		}
		if _, err := ex.ExecContext(ctx, `INSERT OR IGNORE INTO errors (error) VALUES (?)`, name); err != nil {
			return fmt.Errorf("create tag %q: %w", name, err)
		}
		var tagID int64
		if err := ex.QueryRowContext(ctx, `SELECT id FROM errors WHERE error = ?`, name).Scan(&tagID); err != nil {
			return fmt.Errorf("find tag %q: %w", name, err)
		}
		if _, err := ex.ExecContext(ctx,
			`INSERT OR IGNORE INTO trade_errors (trade_id, error_id) VALUES (?, ?)`, tradeID, tagID); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}
