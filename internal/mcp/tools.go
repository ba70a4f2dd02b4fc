// ABOUTME: MCP tool implementations for the trade journal.
// ABOUTME: Provides trade entry, listing, statistics, and error-tag management.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/tradejournal/internal/models"
	"github.com/harperreed/tradejournal/internal/report"
	"github.com/harperreed/tradejournal/internal/tz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_trade",
		Description: "Record a trade opened at a local date and time",
	}, s.handleAddTrade)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_trades",
		Description: "List trades, optionally filtered by date range, symbol, outcome or error tag",
	}, s.handleListTrades)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_trade",
		Description: "Delete a trade by ID",
	}, s.handleDeleteTrade)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "trade_stats",
		Description: "Win/loss/RF counts, win rate and most frequent mistakes",
	}, s.handleTradeStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_tags",
		Description: "List error tags with their usage counts",
	}, s.handleListTags)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_tag",
		Description: "Register a new error tag",
	}, s.handleAddTag)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "rename_tag",
		Description: "Rename an error tag; every trade using it follows the new name",
	}, s.handleRenameTag)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_tag",
		Description: "Delete an unused error tag",
	}, s.handleDeleteTag)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_trade_tags",
		Description: "Replace the error tags on one or more trades",
	}, s.handleSetTradeTags)
}

// Tool input/output types

type addTradeInput struct {
	Date       string   `json:"date" jsonschema:"Opening date as YYYY-MM-DD"`
	Time       string   `json:"time" jsonschema:"Opening time as HH:MM"`
	Timezone   string   `json:"timezone,omitempty" jsonschema:"IANA timezone of date and time, defaults to the journal display timezone"`
	Symbol     string   `json:"symbol" jsonschema:"Instrument, e.g. EURUSD"`
	Outcome    string   `json:"outcome" jsonschema:"Profit, Loss or RF"`
	Direction  string   `json:"direction,omitempty" jsonschema:"buy or sell"`
	Entry      string   `json:"entry,omitempty" jsonschema:"Entry price as a decimal string"`
	Exit       string   `json:"exit,omitempty" jsonschema:"Exit price as a decimal string"`
	Size       string   `json:"size,omitempty" jsonschema:"Position size as a decimal string"`
	PositionID string   `json:"position_id,omitempty" jsonschema:"Broker position id"`
	Errors     []string `json:"errors,omitempty" jsonschema:"Mistake tags"`
}

type tradeOutput struct {
	ID               int64    `json:"id"`
	Date             string   `json:"date"`
	Time             string   `json:"time"`
	Symbol           string   `json:"symbol"`
	Outcome          string   `json:"outcome"`
	Direction        string   `json:"direction,omitempty"`
	Entry            string   `json:"entry,omitempty"`
	Exit             string   `json:"exit,omitempty"`
	Size             string   `json:"size"`
	PositionID       string   `json:"position_id,omitempty"`
	Errors           []string `json:"errors,omitempty"`
	OriginalTimezone string   `json:"original_timezone,omitempty"`
}

type addTradeOutput struct {
	Trade   tradeOutput `json:"trade"`
	Message string      `json:"message"`
}

type listTradesInput struct {
	From    string `json:"from,omitempty" jsonschema:"First date to include, YYYY-MM-DD in the display timezone"`
	To      string `json:"to,omitempty" jsonschema:"Last date to include, YYYY-MM-DD in the display timezone"`
	Symbol  string `json:"symbol,omitempty" jsonschema:"Only this symbol"`
	Outcome string `json:"outcome,omitempty" jsonschema:"Only this outcome (Profit, Loss, RF)"`
	Tag     string `json:"tag,omitempty" jsonschema:"Only trades carrying this error tag"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Most recent N trades (default 50)"`
}

type listTradesOutput struct {
	Timezone string        `json:"timezone"`
	Count    int           `json:"count"`
	Trades   []tradeOutput `json:"trades"`
}

type idInput struct {
	ID int64 `json:"id" jsonschema:"Numeric ID"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type statsInput struct {
	From string `json:"from,omitempty" jsonschema:"First date to include, YYYY-MM-DD"`
	To   string `json:"to,omitempty" jsonschema:"Last date to include, YYYY-MM-DD"`
}

type tagCountOutput struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type statsOutput struct {
	Total     int              `json:"total"`
	Wins      int              `json:"wins"`
	Losses    int              `json:"losses"`
	RF        int              `json:"rf"`
	WinRate   string           `json:"win_rate"`
	TopErrors []tagCountOutput `json:"top_errors"`
}

type emptyInput struct{}

type listTagsOutput struct {
	Tags []tagCountOutput `json:"tags"`
}

type tagNameInput struct {
	Name string `json:"name" jsonschema:"Tag name"`
}

type renameTagInput struct {
	ID   int64  `json:"id" jsonschema:"Tag ID"`
	Name string `json:"name" jsonschema:"New tag name"`
}

type setTradeTagsInput struct {
	IDs  []int64  `json:"ids" jsonschema:"Trade IDs"`
	Tags []string `json:"tags" jsonschema:"Replacement tag set, empty clears all tags"`
}

// Tool handlers

func (s *Server) handleAddTrade(ctx context.Context, req *mcp.CallToolRequest, input addTradeInput) (*mcp.CallToolResult, addTradeOutput, error) {
	loc := s.loc
	if input.Timezone != "" {
		l, err := tz.Load(input.Timezone)
		if err != nil {
			return nil, addTradeOutput{}, err
		}
		loc = l
	}

	opened, err := tz.ParseLocal(input.Date, input.Time, loc)
	if err != nil {
		return nil, addTradeOutput{}, err
	}
	outcome, err := models.ParseOutcome(input.Outcome)
	if err != nil {
		return nil, addTradeOutput{}, err
	}
	dir, err := models.ParseDirection(input.Direction)
	if err != nil {
		return nil, addTradeOutput{}, err
	}

	t := models.NewTrade(input.Symbol, opened, outcome).
		WithDirection(dir).
		WithPositionID(input.PositionID).
		WithErrors(input.Errors...)

	for _, f := range []struct {
		name  string
		value string
		set   func(decimal.Decimal) *models.Trade
	}{
		{"entry", input.Entry, t.WithEntry},
		{"exit", input.Exit, t.WithExit},
		{"size", input.Size, t.WithSize},
	} {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		d, err := decimal.NewFromString(strings.TrimSpace(f.value))
		if err != nil {
			return nil, addTradeOutput{}, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		f.set(d)
	}

	id, err := s.repo.AddTrade(ctx, t)
	if err != nil {
		return nil, addTradeOutput{}, err
	}

	stored, err := s.repo.GetTrade(ctx, id, s.loc)
	if err != nil {
		return nil, addTradeOutput{}, err
	}

	return nil, addTradeOutput{
		Trade:   toTradeOutput(stored),
		Message: fmt.Sprintf("Recorded %s %s trade #%d", stored.Symbol, stored.Outcome, id),
	}, nil
}

func (s *Server) handleListTrades(ctx context.Context, req *mcp.CallToolRequest, input listTradesInput) (*mcp.CallToolResult, listTradesOutput, error) {
	f, err := s.dateFilter(input.From, input.To)
	if err != nil {
		return nil, listTradesOutput{}, err
	}
	if input.Symbol != "" {
		f.Symbols = []string{input.Symbol}
	}
	if input.Outcome != "" {
		o, err := models.ParseOutcome(input.Outcome)
		if err != nil {
			return nil, listTradesOutput{}, err
		}
		f.Outcomes = []models.Outcome{o}
	}
	if input.Tag != "" {
		f.Tags = []string{input.Tag}
	}

	trades, err := s.repo.FilterTrades(ctx, s.loc, f)
	if err != nil {
		return nil, listTradesOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}

	out := listTradesOutput{
		Timezone: s.loc.String(),
		Count:    len(trades),
		Trades:   make([]tradeOutput, 0, len(trades)),
	}
	for _, t := range trades {
		out.Trades = append(out.Trades, toTradeOutput(t))
	}
	return nil, out, nil
}

func (s *Server) handleDeleteTrade(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteTrade(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted trade #%d", input.ID)}, nil
}

func (s *Server) handleTradeStats(ctx context.Context, req *mcp.CallToolRequest, input statsInput) (*mcp.CallToolResult, statsOutput, error) {
	f, err := s.dateFilter(input.From, input.To)
	if err != nil {
		return nil, statsOutput{}, err
	}
	trades, err := s.repo.FilterTrades(ctx, s.loc, f)
	if err != nil {
		return nil, statsOutput{}, err
	}
	return nil, buildStats(trades), nil
}

func (s *Server) handleListTags(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, listTagsOutput, error) {
	usage, err := s.repo.TagUsage(ctx)
	if err != nil {
		return nil, listTagsOutput{}, err
	}
	out := listTagsOutput{Tags: make([]tagCountOutput, 0, len(usage))}
	for _, u := range usage {
		out.Tags = append(out.Tags, tagCountOutput{ID: u.ID, Name: u.Name, Count: u.Count})
	}
	return nil, out, nil
}

func (s *Server) handleAddTag(ctx context.Context, req *mcp.CallToolRequest, input tagNameInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.AddTag(ctx, input.Name); err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Tag %q is registered", strings.TrimSpace(input.Name))}, nil
}

func (s *Server) handleRenameTag(ctx context.Context, req *mcp.CallToolRequest, input renameTagInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.RenameTag(ctx, input.ID, input.Name); err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Renamed tag #%d to %q", input.ID, strings.TrimSpace(input.Name))}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteTag(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted tag #%d", input.ID)}, nil
}

func (s *Server) handleSetTradeTags(ctx context.Context, req *mcp.CallToolRequest, input setTradeTagsInput) (*mcp.CallToolResult, simpleOutput, error) {
	if len(input.IDs) == 0 {
		return nil, simpleOutput{}, fmt.Errorf("at least one trade id is required")
	}
	if err := s.repo.SetTradeErrors(ctx, input.IDs, input.Tags); err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Updated tags on %d trade(s)", len(input.IDs))}, nil
}

// dateFilter builds a filter from optional YYYY-MM-DD bounds in the display timezone.
func (s *Server) dateFilter(from, to string) (models.Filter, error) {
	var f models.Filter
	if from != "" {
		t, err := time.ParseInLocation(tz.DateLayout, from, s.loc)
		if err != nil {
			return f, fmt.Errorf("invalid from date: %w", err)
		}
		f.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(tz.DateLayout, to, s.loc)
		if err != nil {
			return f, fmt.Errorf("invalid to date: %w", err)
		}
		f.To = t
	}
	return f, nil
}

func buildStats(trades []*models.Trade) statsOutput {
	sum := report.Summarize(trades)
	out := statsOutput{
		Total:     sum.Total,
		Wins:      sum.Wins,
		Losses:    sum.Losses,
		RF:        sum.RF,
		WinRate:   fmt.Sprintf("%.1f%%", sum.WinRate()),
		TopErrors: make([]tagCountOutput, 0),
	}
	freq := report.ErrorFrequency(trades)
	if len(freq) > 5 {
		freq = freq[:5]
	}
	for _, tc := range freq {
		out.TopErrors = append(out.TopErrors, tagCountOutput{Name: tc.Name, Count: tc.Count})
	}
	return out
}

func toTradeOutput(t *models.Trade) tradeOutput {
	out := tradeOutput{
		ID:               t.ID,
		Date:             t.Date(),
		Time:             t.Clock(),
		Symbol:           t.Symbol,
		Outcome:          string(t.Outcome),
		Direction:        string(t.Direction),
		Size:             t.Size.String(),
		PositionID:       t.PositionIDString(),
		Errors:           t.Errors,
		OriginalTimezone: t.OriginalTimezone,
	}
	if t.Entry.Valid {
		out.Entry = t.Entry.Decimal.String()
	}
	if t.Exit.Valid {
		out.Exit = t.Exit.Decimal.String()
	}
	return out
}
