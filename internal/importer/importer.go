// ABOUTME: Parses MetaTrader 5 "Positions" report exports into journal trades.
// ABOUTME: Reads .xlsx through excelize and .csv through encoding/csv.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/tradejournal/internal/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrNoHeader is returned when no positions header row is present.
var ErrNoHeader = errors.New("positions header not found")

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// timeLayouts are the opening-time formats seen in MT5 exports.
var timeLayouts = []string{
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// sectionMarkers end the positions table.
var sectionMarkers = map[string]bool{
	"orders":         true,
	"deals":          true,
	"results":        true,
	"working orders": true,
}

// Options controls how report rows become trades.
type Options struct {
	// Location is the timezone the report's timestamps are written in. Nil means UTC.
	Location *time.Location
	// RFThreshold is the absolute profit band recorded as RF.
	RFThreshold decimal.Decimal
	// Comma is the CSV field separator. Zero means ','.
	Comma rune
}

// RowError describes a report row that could not be converted.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Batch is the result of parsing a report.
type Batch struct {
	Trades   []*models.Trade
	Rejected []RowError
}

// ReadFile parses a report, choosing the reader by file extension.
func ReadFile(path string, opts Options) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(f, opts)
	case ".csv":
		return ReadCSV(f, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadXLSX parses the first sheet containing a positions table.
func ReadXLSX(r io.Reader, opts Options) (*Batch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		batch, err := ParseRows(rows, opts)
		if errors.Is(err, ErrNoHeader) {
			continue
		}
		return batch, err
	}
	return nil, ErrNoHeader
}

// ReadCSV parses a CSV export of the positions table.
func ReadCSV(r io.Reader, opts Options) (*Batch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseRows(rows, opts)
}

// columns maps header names to cell indexes.
type columns struct {
	openTime, position, symbol, kind, volume, openPrice, closePrice, profit int
}

func findHeader(row []string) (columns, bool) {
	c := columns{openTime: -1, position: -1, symbol: -1, kind: -1, volume: -1, openPrice: -1, closePrice: -1, profit: -1}
	for i, cell := range row {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "time":
			if c.openTime < 0 {
				c.openTime = i
			}
		case "position":
			c.position = i
		case "symbol":
			c.symbol = i
		case "type":
			c.kind = i
		case "volume":
			c.volume = i
		case "price":
			if c.openPrice < 0 {
				c.openPrice = i
			} else if c.closePrice < 0 {
				c.closePrice = i
			}
		case "profit":
			c.profit = i
		}
	}
	ok := c.openTime >= 0 && c.position >= 0 && c.symbol >= 0 && c.kind >= 0 && c.profit >= 0
	return c, ok
}

// ParseRows converts a positions table. Rows before the header are ignored and the
// table ends at the first blank row or section marker.
func ParseRows(rows [][]string, opts Options) (*Batch, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	start := -1
	var cols columns
	for i, row := range rows {
		if c, ok := findHeader(row); ok {
			cols, start = c, i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoHeader
	}

	batch := &Batch{}
	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) || sectionMarkers[strings.ToLower(cell(row, 0))] {
			break
		}

		dir, err := models.ParseDirection(cell(row, cols.kind))
		if err != nil || dir == "" {
			// Balance and credit lines carry no direction.
			continue
		}

		t, err := toTrade(row, cols, dir, loc, opts.RFThreshold)
		if err != nil {
			batch.Rejected = append(batch.Rejected, RowError{Row: i + 1, Err: err})
			continue
		}
		batch.Trades = append(batch.Trades, t)
	}
	return batch, nil
}

func toTrade(row []string, c columns, dir models.Direction, loc *time.Location, rf decimal.Decimal) (*models.Trade, error) {
	opened, err := parseTime(cell(row, c.openTime), loc)
	if err != nil {
		return nil, err
	}

	symbol := cell(row, c.symbol)
	if symbol == "" {
		return nil, errors.New("missing symbol")
	}

	profit, err := parseNumber(cell(row, c.profit))
	if err != nil {
		return nil, fmt.Errorf("profit: %w", err)
	}

	t := models.NewTrade(symbol, opened, outcomeFor(profit, rf)).
		WithDirection(dir).
		WithPositionID(cell(row, c.position))

	if v := cell(row, c.volume); v != "" {
		size, err := parseNumber(v)
		if err != nil {
			return nil, fmt.Errorf("volume: %w", err)
		}
		t.WithSize(size.Abs())
	}
	if v := cell(row, c.openPrice); v != "" {
		entry, err := parseNumber(v)
		if err != nil {
			return nil, fmt.Errorf("open price: %w", err)
		}
		t.WithEntry(entry)
	}
	if v := cell(row, c.closePrice); c.closePrice >= 0 && v != "" {
		exit, err := parseNumber(v)
		if err != nil {
			return nil, fmt.Errorf("close price: %w", err)
		}
		t.WithExit(exit)
	}
	return t, nil
}

// outcomeFor tags a P/L figure. Values within the RF band count as risk-free.
func outcomeFor(profit, rf decimal.Decimal) models.Outcome {
	switch {
	case profit.Abs().LessThanOrEqual(rf.Abs()):
		return models.OutcomeRF
	case profit.IsPositive():
		return models.OutcomeProfit
	default:
		return models.OutcomeLoss
	}
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Truncate(time.Minute), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// parseNumber reads report numbers, which may use space thousands separators
// and "a / b" pairs for partially filled volumes.
func parseNumber(s string) (decimal.Decimal, error) {
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\u202f' {
			return -1
		}
		return r
	}, s)
	return decimal.NewFromString(s)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
