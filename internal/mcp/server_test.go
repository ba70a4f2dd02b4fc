// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/tradejournal/internal/models"
	"github.com/harperreed/tradejournal/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "journal.db")
	db, err := storage.Open(dbPath, storage.Options{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func setupServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db := setupTestDB(t)
	loc, err := time.LoadLocation("Asia/Tehran")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}
	server, err := NewServer(db, loc)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, db
}

func addTestTrade(t *testing.T, db *storage.DB, ts, symbol string, outcome models.Outcome, tags ...string) int64 {
	t.Helper()
	opened, err := time.Parse("2006-01-02 15:04", ts)
	if err != nil {
		t.Fatalf("bad time %q: %v", ts, err)
	}
	id, err := db.AddTrade(context.Background(), models.NewTrade(symbol, opened, outcome).WithErrors(tags...))
	if err != nil {
		t.Fatalf("AddTrade failed: %v", err)
	}
	return id
}

func TestNewServer(t *testing.T) {
	db := setupTestDB(t)

	server, err := NewServer(db, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if server == nil {
		t.Fatal("Expected non-nil server")
	}
	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.repo == nil {
		t.Error("Expected non-nil repo")
	}
	if server.loc != time.UTC {
		t.Errorf("loc = %v, want UTC", server.loc)
	}
}

func TestHandleAddTrade(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     addTradeInput
		wantErr   bool
		errSubstr string
		wantDate  string
		wantTime  string
	}{
		{
			name: "minimal trade in display timezone",
			input: addTradeInput{
				Date:    "2025-03-01",
				Time:    "12:30",
				Symbol:  "EURUSD",
				Outcome: "Profit",
			},
			wantDate: "2025-03-01",
			wantTime: "12:30",
		},
		{
			name: "trade entered in another timezone is projected",
			input: addTradeInput{
				Date:     "2025-03-01",
				Time:     "23:00",
				Timezone: "UTC",
				Symbol:   "XAUUSD",
				Outcome:  "loss",
				Entry:    "2890.55",
				Exit:     "2885.10",
				Size:     "0.5",
				Errors:   []string{"FOMO", "No SL"},
			},
			wantDate: "2025-03-02",
			wantTime: "02:30",
		},
		{
			name: "invalid outcome",
			input: addTradeInput{
				Date:    "2025-03-01",
				Time:    "12:30",
				Symbol:  "EURUSD",
				Outcome: "maybe",
			},
			wantErr:   true,
			errSubstr: "unknown outcome",
		},
		{
			name: "invalid price",
			input: addTradeInput{
				Date:    "2025-03-01",
				Time:    "13:30",
				Symbol:  "EURUSD",
				Outcome: "RF",
				Entry:   "abc",
			},
			wantErr:   true,
			errSubstr: "invalid entry",
		},
		{
			name: "invalid timezone",
			input: addTradeInput{
				Date:     "2025-03-01",
				Time:     "14:30",
				Timezone: "Mars/Olympus",
				Symbol:   "EURUSD",
				Outcome:  "RF",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleAddTrade(ctx, &mcp.CallToolRequest{}, tt.input)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if tt.errSubstr != "" && !contains(err.Error(), tt.errSubstr) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if output.Trade.ID == 0 {
				t.Error("Expected non-zero ID")
			}
			if output.Trade.Date != tt.wantDate || output.Trade.Time != tt.wantTime {
				t.Errorf("opened = %s %s, want %s %s", output.Trade.Date, output.Trade.Time, tt.wantDate, tt.wantTime)
			}
			if tt.input.Entry != "" && output.Trade.Entry != tt.input.Entry {
				t.Errorf("Entry = %s, want %s", output.Trade.Entry, tt.input.Entry)
			}
			if len(output.Trade.Errors) != len(tt.input.Errors) {
				t.Errorf("Errors = %v, want %v", output.Trade.Errors, tt.input.Errors)
			}
			if output.Message == "" {
				t.Error("Expected non-empty Message")
			}
		})
	}
}

func TestHandleAddTradeDuplicateSlot(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	input := addTradeInput{Date: "2025-03-01", Time: "09:00", Symbol: "EURUSD", Outcome: "Profit"}
	if _, _, err := server.handleAddTrade(ctx, &mcp.CallToolRequest{}, input); err != nil {
		t.Fatalf("first add failed: %v", err)
	}

	_, _, err := server.handleAddTrade(ctx, &mcp.CallToolRequest{}, input)
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestHandleListTrades(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	addTestTrade(t, db, "2025-03-01 06:00", "EURUSD", models.OutcomeProfit)
	addTestTrade(t, db, "2025-03-02 06:00", "GBPUSD", models.OutcomeLoss, "FOMO")
	addTestTrade(t, db, "2025-03-03 06:00", "EURUSD", models.OutcomeRF)

	tests := []struct {
		name      string
		input     listTradesInput
		wantCount int
	}{
		{name: "list all trades", input: listTradesInput{}, wantCount: 3},
		{name: "limit keeps most recent", input: listTradesInput{Limit: 2}, wantCount: 2},
		{name: "filter by symbol", input: listTradesInput{Symbol: "eurusd"}, wantCount: 2},
		{name: "filter by outcome", input: listTradesInput{Outcome: "loss"}, wantCount: 1},
		{name: "filter by tag", input: listTradesInput{Tag: "FOMO"}, wantCount: 1},
		{name: "filter by date range", input: listTradesInput{From: "2025-03-02", To: "2025-03-02"}, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleListTrades(ctx, &mcp.CallToolRequest{}, tt.input)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if output.Count != tt.wantCount {
				t.Errorf("Count = %d, want %d", output.Count, tt.wantCount)
			}
			if output.Timezone != "Asia/Tehran" {
				t.Errorf("Timezone = %s, want Asia/Tehran", output.Timezone)
			}
		})
	}

	_, output, _ := server.handleListTrades(ctx, &mcp.CallToolRequest{}, listTradesInput{Limit: 1})
	if len(output.Trades) != 1 || output.Trades[0].Date != "2025-03-03" {
		t.Errorf("Expected latest trade only, got %+v", output.Trades)
	}
}

func TestHandleListTradesEmpty(t *testing.T) {
	server, _ := setupServer(t)

	_, output, err := server.handleListTrades(context.Background(), &mcp.CallToolRequest{}, listTradesInput{})
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if output.Trades == nil {
		t.Error("Expected empty, non-nil trades slice")
	}
}

func TestHandleListTradesBadDate(t *testing.T) {
	server, _ := setupServer(t)

	_, _, err := server.handleListTrades(context.Background(), &mcp.CallToolRequest{}, listTradesInput{From: "03/01/2025"})
	if err == nil {
		t.Error("Expected error for malformed date")
	}
}

func TestHandleDeleteTrade(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	id := addTestTrade(t, db, "2025-03-01 06:00", "EURUSD", models.OutcomeProfit, "FOMO")

	_, output, err := server.handleDeleteTrade(ctx, &mcp.CallToolRequest{}, idInput{ID: id})
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if output.Message == "" {
		t.Error("Expected non-empty message")
	}

	if _, err := db.GetTrade(ctx, id, nil); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected trade to be deleted, got %v", err)
	}
}

func TestHandleDeleteTradeNotFound(t *testing.T) {
	server, _ := setupServer(t)

	_, _, err := server.handleDeleteTrade(context.Background(), &mcp.CallToolRequest{}, idInput{ID: 999})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHandleTradeStats(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	addTestTrade(t, db, "2025-03-01 06:00", "EURUSD", models.OutcomeProfit)
	addTestTrade(t, db, "2025-03-01 07:00", "EURUSD", models.OutcomeProfit)
	addTestTrade(t, db, "2025-03-01 08:00", "EURUSD", models.OutcomeProfit, "Early exit")
	addTestTrade(t, db, "2025-03-01 09:00", "EURUSD", models.OutcomeLoss, "FOMO", "Early exit")
	addTestTrade(t, db, "2025-03-01 10:00", "EURUSD", models.OutcomeRF)

	_, output, err := server.handleTradeStats(ctx, &mcp.CallToolRequest{}, statsInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if output.Total != 5 || output.Wins != 3 || output.Losses != 1 || output.RF != 1 {
		t.Errorf("counts = %+v", output)
	}
	if output.WinRate != "75.0%" {
		t.Errorf("WinRate = %s, want 75.0%%", output.WinRate)
	}
	if len(output.TopErrors) != 2 || output.TopErrors[0].Name != "Early exit" || output.TopErrors[0].Count != 2 {
		t.Errorf("TopErrors = %+v", output.TopErrors)
	}
}

func TestHandleTagLifecycle(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	if _, _, err := server.handleAddTag(ctx, req, tagNameInput{Name: "Overtrading"}); err != nil {
		t.Fatalf("add_tag failed: %v", err)
	}
	id := addTestTrade(t, db, "2025-03-01 06:00", "EURUSD", models.OutcomeLoss, "FOMO")

	_, listed, err := server.handleListTags(ctx, req, emptyInput{})
	if err != nil {
		t.Fatalf("list_tags failed: %v", err)
	}
	counts := map[string]int{}
	ids := map[string]int64{}
	for _, tag := range listed.Tags {
		counts[tag.Name] = tag.Count
		ids[tag.Name] = tag.ID
	}
	if counts["FOMO"] != 1 || counts["Overtrading"] != 0 {
		t.Errorf("usage = %v", counts)
	}

	if _, _, err := server.handleRenameTag(ctx, req, renameTagInput{ID: ids["FOMO"], Name: "Chasing"}); err != nil {
		t.Fatalf("rename_tag failed: %v", err)
	}
	trade, err := db.GetTrade(ctx, id, nil)
	if err != nil {
		t.Fatalf("GetTrade failed: %v", err)
	}
	if !trade.HasError("Chasing") {
		t.Errorf("Errors = %v, want rename to follow", trade.Errors)
	}

	_, _, err = server.handleDeleteTag(ctx, req, idInput{ID: ids["FOMO"]})
	if !errors.Is(err, storage.ErrTagInUse) {
		t.Errorf("Expected ErrTagInUse, got %v", err)
	}

	if _, _, err := server.handleDeleteTag(ctx, req, idInput{ID: ids["Overtrading"]}); err != nil {
		t.Errorf("delete unused tag failed: %v", err)
	}
}

func TestHandleSetTradeTags(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	a := addTestTrade(t, db, "2025-03-01 06:00", "EURUSD", models.OutcomeLoss, "FOMO")
	b := addTestTrade(t, db, "2025-03-01 07:00", "EURUSD", models.OutcomeLoss)

	if _, _, err := server.handleSetTradeTags(ctx, req, setTradeTagsInput{IDs: []int64{a, b}, Tags: []string{"No SL"}}); err != nil {
		t.Fatalf("set_trade_tags failed: %v", err)
	}
	for _, id := range []int64{a, b} {
		trade, _ := db.GetTrade(ctx, id, nil)
		if len(trade.Errors) != 1 || trade.Errors[0] != "No SL" {
			t.Errorf("trade %d Errors = %v", id, trade.Errors)
		}
	}

	if _, _, err := server.handleSetTradeTags(ctx, req, setTradeTagsInput{}); err == nil {
		t.Error("Expected error with no ids")
	}

	_, _, err := server.handleSetTradeTags(ctx, req, setTradeTagsInput{IDs: []int64{a, 999}, Tags: []string{"Late"}})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHandleRecentResource(t *testing.T) {
	server, db := setupServer(t)

	for i := 0; i < 12; i++ {
		addTestTrade(t, db, time.Date(2025, 3, 1, i, 0, 0, 0, time.UTC).Format("2006-01-02 15:04"), "EURUSD", models.OutcomeProfit)
	}

	result, err := server.handleRecentResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("Expected 1 content, got %d", len(result.Contents))
	}
	if result.Contents[0].URI != "journal://recent" {
		t.Errorf("URI = %s, want journal://recent", result.Contents[0].URI)
	}

	var payload struct {
		Timezone string        `json:"timezone"`
		Trades   []tradeOutput `json:"trades"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(payload.Trades) != recentLimit {
		t.Errorf("trades = %d, want %d", len(payload.Trades), recentLimit)
	}
}

func TestHandleSummaryResource(t *testing.T) {
	server, db := setupServer(t)
	addTestTrade(t, db, "2025-03-01 06:00", "EURUSD", models.OutcomeProfit)

	result, err := server.handleSummaryResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	text := result.Contents[0].Text
	for _, want := range []string{`"stats"`, `"win_rate"`, `"settings"`, `"default_timezone"`} {
		if !contains(text, want) {
			t.Errorf("summary missing %s: %s", want, text)
		}
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
