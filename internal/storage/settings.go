// ABOUTME: Key/value settings persistence with typed accessors.
// ABOUTME: Holds the display timezone default and the risk-free P/L threshold.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/tradejournal/internal/tz"
	"github.com/shopspring/decimal"
)

// GetSetting returns the stored value for key, or def when absent.
func (d *DB) GetSetting(ctx context.Context, key, def string) (string, error) {
	var v string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("get setting %s: %w", key, err)
	}
	return v, nil
}

// SetSetting inserts or overwrites a setting.
func (d *DB) SetSetting(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: setting key is required", ErrInvalid)
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// AllSettings returns every stored setting.
func (d *DB) AllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// DefaultTimezone returns the display timezone name, UTC when unset.
func (d *DB) DefaultTimezone(ctx context.Context) (string, error) {
	return d.GetSetting(ctx, SettingDefaultTimezone, "UTC")
}

// SetDefaultTimezone stores the display timezone after checking it resolves.
func (d *DB) SetDefaultTimezone(ctx context.Context, name string) error {
	loc, err := tz.Load(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return d.SetSetting(ctx, SettingDefaultTimezone, loc.String())
}

// RFThreshold returns the absolute P/L band treated as risk-free. Zero when unset or malformed.
func (d *DB) RFThreshold(ctx context.Context) (decimal.Decimal, error) {
	v, err := d.GetSetting(ctx, SettingRFThreshold, "0")
	if err != nil {
		return decimal.Zero, err
	}
	th, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		d.log.Warn().Str("value", v).Msg("malformed rf_threshold setting")
		return decimal.Zero, nil
	}
	return th, nil
}

// SetRFThreshold stores a non-negative risk-free threshold.
func (d *DB) SetRFThreshold(ctx context.Context, v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: rf threshold must not be negative", ErrInvalid)
	}
	return d.SetSetting(ctx, SettingRFThreshold, v.String())
}
