// ABOUTME: Aggregate counts and filtered trade retrieval.
// ABOUTME: Column filters run in SQL; time-of-day filters run after display projection.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/tradejournal/internal/models"
)

// Counts holds trade totals by outcome.
type Counts struct {
	Total  int `json:"total"`
	Profit int `json:"profit"`
	Loss   int `json:"loss"`
	RF     int `json:"rf"`
}

// CountTrades returns the number of stored trades.
func (d *DB) CountTrades(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trades: %w", err)
	}
	return n, nil
}

// CountByOutcome returns the number of trades with the given outcome.
func (d *DB) CountByOutcome(ctx context.Context, outcome models.Outcome) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades WHERE profit = ?`, string(outcome)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s trades: %w", outcome, err)
	}
	return n, nil
}

// Counts returns total, profit, loss and RF counts in one pass.
func (d *DB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN profit = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN profit = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN profit = ? THEN 1 ELSE 0 END), 0)
		FROM trades`,
		string(models.OutcomeProfit), string(models.OutcomeLoss), string(models.OutcomeRF),
	).Scan(&c.Total, &c.Profit, &c.Loss, &c.RF)
	if err != nil {
		return Counts{}, fmt.Errorf("count trades: %w", err)
	}
	return c, nil
}

// FilterTrades returns trades matching f, projected into loc, in stored UTC order.
func (d *DB) FilterTrades(ctx context.Context, loc *time.Location, f models.Filter) ([]*models.Trade, error) {
	var where []string
	var args []any

	if len(f.Symbols) > 0 {
		where = append(where, "UPPER(symbol) IN ("+placeholders(len(f.Symbols))+")")
		for _, s := range f.Symbols {
			args = append(args, strings.ToUpper(strings.TrimSpace(s)))
		}
	}
	if len(f.Directions) > 0 {
		where = append(where, "LOWER(type) IN ("+placeholders(len(f.Directions))+")")
		for _, dir := range f.Directions {
			args = append(args, strings.ToLower(string(dir)))
		}
	}
	if len(f.Outcomes) > 0 {
		where = append(where, "profit IN ("+placeholders(len(f.Outcomes))+")")
		for _, o := range f.Outcomes {
			args = append(args, string(o))
		}
	}

	query := `SELECT ` + tradeColumns + ` FROM trades`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, time, id"

	trades, err := d.queryTrades(ctx, loc, query, args...)
	if err != nil {
		return nil, err
	}

	out := trades[:0]
	for _, t := range trades {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
