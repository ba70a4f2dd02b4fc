// ABOUTME: MCP resource implementations for the trade journal.
// ABOUTME: Provides journal://recent and journal://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const recentLimit = 10

func (s *Server) registerResources() {
	// journal://recent - Last 10 trades in the display timezone
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "journal://recent",
		Name:        "Recent Trades",
		Description: "Last 10 trades in the display timezone",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// journal://summary - Outcome counts, win rate, top mistakes and settings
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "journal://summary",
		Name:        "Trade Journal Summary",
		Description: "Outcome counts, win rate, most frequent mistakes and journal settings",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	trades, err := s.repo.ListTrades(ctx, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	if len(trades) > recentLimit {
		trades = trades[len(trades)-recentLimit:]
	}

	out := make([]tradeOutput, 0, len(trades))
	for _, t := range trades {
		out = append(out, toTradeOutput(t))
	}

	result := map[string]interface{}{
		"timezone": s.loc.String(),
		"trades":   out,
	}

	return jsonResource("journal://recent", result)
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	trades, err := s.repo.ListTrades(ctx, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}

	settings, err := s.repo.AllSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	tags, err := s.repo.TagNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	result := map[string]interface{}{
		"timezone": s.loc.String(),
		"stats":    buildStats(trades),
		"tags":     tags,
		"settings": settings,
	}

	return jsonResource("journal://summary", result)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
