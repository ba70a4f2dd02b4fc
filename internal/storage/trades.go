// ABOUTME: Trade CRUD operations for SQLite storage.
// ABOUTME: Timestamps are written as UTC date/time strings; prices and size as decimal text.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/tradejournal/internal/models"
	"github.com/harperreed/tradejournal/internal/tz"
	"github.com/shopspring/decimal"
)

const tradeColumns = `id, date, time, symbol, entry, exit, profit, size, position_id, type, original_timezone`

// AddTrade inserts a trade and links its error tags, creating missing tags.
// It returns ErrDuplicate when position_id or the (date, time) slot is already taken.
func (d *DB) AddTrade(ctx context.Context, t *models.Trade) (int64, error) {
	if err := validateTrade(t); err != nil {
		return 0, err
	}

	date, clock := tz.SplitUTC(t.OpenedAt)
	origTZ := t.OriginalTimezone
	if origTZ == "" {
		origTZ = t.OpenedAt.Location().String()
	}

	var id int64
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if t.PositionID != nil {
			exists, err := positionExists(ctx, tx, *t.PositionID)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: position %s already recorded", ErrDuplicate, *t.PositionID)
			}
		}

		var clash int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM trades
			WHERE date = ? AND time = ? AND (? IS NULL OR position_id IS NULL)`,
			date, clock, nullString(t.PositionID)).Scan(&clash)
		if err != nil {
			return fmt.Errorf("check time slot: %w", err)
		}
		if clash > 0 {
			return fmt.Errorf("%w: trade already recorded at %s %s UTC", ErrDuplicate, date, clock)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO trades (date, time, symbol, entry, exit, profit, size, position_id, type, original_timezone)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			date, clock, t.Symbol,
			decimalText(t.Entry), decimalText(t.Exit),
			string(t.Outcome), sizeText(t.Size),
			nullString(t.PositionID), nullIfEmpty(string(t.Direction)), origTZ,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %v", ErrDuplicate, err)
			}
			return fmt.Errorf("insert trade: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read trade id: %w", err)
		}
		return linkTags(ctx, tx, id, models.NormalizeTags(t.Errors))
	})
	if err != nil {
		d.log.Warn().Err(err).Str("symbol", t.Symbol).Str("date", date).Str("time", clock).Msg("add trade failed")
		return 0, fmt.Errorf("add trade: %w", err)
	}

	t.ID = id
	return id, nil
}

// TradeExists reports whether a trade with the given position id is stored.
func (d *DB) TradeExists(ctx context.Context, positionID string) (bool, error) {
	return positionExists(ctx, d.db, positionID)
}

// TradeExistsAt reports whether a trade is stored at the UTC minute of t.
func (d *DB) TradeExistsAt(ctx context.Context, t time.Time) (bool, error) {
	date, clock := tz.SplitUTC(t)
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trades WHERE date = ? AND time = ?`, date, clock).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check trade time: %w", err)
	}
	return n > 0, nil
}

// GetTrade retrieves a trade by id, projected into loc.
func (d *DB) GetTrade(ctx context.Context, id int64, loc *time.Location) (*models.Trade, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	t, err := d.scanTrade(row, loc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trade %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get trade: %w", err)
	}
	if err := d.attachTags(ctx, []*models.Trade{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTrade removes a trade and its tag links.
func (d *DB) DeleteTrade(ctx context.Context, id int64) error {
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM trade_errors WHERE trade_id = ?`, id); err != nil {
			return fmt.Errorf("unlink tags: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete trade: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("trade %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		d.log.Warn().Err(err).Int64("id", id).Msg("delete trade failed")
	}
	return err
}

// ListTrades returns every trade in ascending stored UTC date and time order, projected into loc.
func (d *DB) ListTrades(ctx context.Context, loc *time.Location) ([]*models.Trade, error) {
	return d.queryTrades(ctx, loc, `SELECT `+tradeColumns+` FROM trades ORDER BY date, time, id`)
}

// SetTradeErrors replaces the tag set of every listed trade.
func (d *DB) SetTradeErrors(ctx context.Context, ids []int64, tags []string) error {
	if len(ids) == 0 {
		return nil
	}
	tags = models.NormalizeTags(tags)

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			var n int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades WHERE id = ?`, id).Scan(&n); err != nil {
				return fmt.Errorf("check trade %d: %w", id, err)
			}
			if n == 0 {
				return fmt.Errorf("trade %d: %w", id, ErrNotFound)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM trade_errors WHERE trade_id = ?`, id); err != nil {
				return fmt.Errorf("clear tags for trade %d: %w", id, err)
			}
			if err := linkTags(ctx, tx, id, tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		d.log.Warn().Err(err).Int("trades", len(ids)).Msg("set trade errors failed")
		return fmt.Errorf("set trade errors: %w", err)
	}
	return nil
}

// queryTrades runs a trade select, then attaches tags once the rows are closed.
func (d *DB) queryTrades(ctx context.Context, loc *time.Location, query string, args ...any) ([]*models.Trade, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}

	var trades []*models.Trade
	for rows.Next() {
		t, err := d.scanTrade(rows, loc)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if err := d.attachTags(ctx, trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// attachTags loads the tag names of each trade in link order.
func (d *DB) attachTags(ctx context.Context, trades []*models.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Trade, len(trades))
	for _, t := range trades {
		byID[t.ID] = t
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT te.trade_id, e.error
		FROM trade_errors te
		JOIN errors e ON e.id = te.error_id
		ORDER BY te.trade_id, te.rowid`)
	if err != nil {
		return fmt.Errorf("query trade tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("scan trade tag: %w", err)
		}
		if t, ok := byID[id]; ok {
			t.Errors = append(t.Errors, name)
		}
	}
	return rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (d *DB) scanTrade(s scanner, loc *time.Location) (*models.Trade, error) {
	var (
		t                              models.Trade
		date, clock, outcome           string
		entry, exit, size              sql.NullString
		positionID, direction, origTZN sql.NullString
	)
	err := s.Scan(&t.ID, &date, &clock, &t.Symbol, &entry, &exit, &outcome, &size, &positionID, &direction, &origTZN)
	if err != nil {
		return nil, err
	}

	opened, err := tz.JoinUTC(date, clock)
	if err != nil {
		return nil, fmt.Errorf("trade %d timestamp: %w", t.ID, err)
	}
	t.OpenedAt = tz.Project(opened, loc)
	t.Outcome = models.Outcome(outcome)
	t.Entry = d.parseNullDecimal(t.ID, "entry", entry)
	t.Exit = d.parseNullDecimal(t.ID, "exit", exit)
	t.Size = decimal.Zero
	if size.Valid && strings.TrimSpace(size.String) != "" {
		v, err := decimal.NewFromString(strings.TrimSpace(size.String))
		if err != nil {
			d.log.Warn().Int64("id", t.ID).Str("field", "size").Str("value", size.String).Msg("malformed decimal")
		} else {
			t.Size = v
		}
	}
	if positionID.Valid {
		p := positionID.String
		t.PositionID = &p
	}
	t.Direction = models.Direction(direction.String)
	t.OriginalTimezone = origTZN.String
	return &t, nil
}

func (d *DB) parseNullDecimal(id int64, field string, s sql.NullString) decimal.NullDecimal {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return decimal.NullDecimal{}
	}
	v, err := decimal.NewFromString(strings.TrimSpace(s.String))
	if err != nil {
		d.log.Warn().Int64("id", id).Str("field", field).Str("value", s.String).Msg("malformed decimal")
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(v)
}

func positionExists(ctx context.Context, ex Execer, positionID string) (bool, error) {
	var n int
	err := ex.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades WHERE position_id = ?`, positionID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check position id: %w", err)
	}
	return n > 0, nil
}

func validateTrade(t *models.Trade) error {
	if t == nil {
		return fmt.Errorf("%w: nil trade", ErrInvalid)
	}
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalid)
	}
	if !t.Outcome.IsValid() {
		return fmt.Errorf("%w: outcome %q", ErrInvalid, t.Outcome)
	}
	if t.OpenedAt.IsZero() {
		return fmt.Errorf("%w: opening time is required", ErrInvalid)
	}
	if t.Size.IsNegative() {
		return fmt.Errorf("%w: size must not be negative", ErrInvalid)
	}
	if t.OriginalTimezone == "Local" || (t.OriginalTimezone == "" && t.OpenedAt.Location().String() == "Local") {
		return fmt.Errorf("%w: opening time must carry a named timezone, not Local", ErrInvalid)
	}
	return nil
}

func decimalText(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func sizeText(d decimal.Decimal) string {
	if d.IsZero() {
		return "0.0"
	}
	return d.String()
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
