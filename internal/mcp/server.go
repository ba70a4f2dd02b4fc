// ABOUTME: MCP server setup for the trade journal store.
// ABOUTME: Wraps MCP server with storage Repository connection and display timezone.
package mcp

import (
	"context"
	"time"

	"github.com/harperreed/tradejournal/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	loc       *time.Location
}

// NewServer creates a new MCP server with the given storage. Trade times are
// read and written in loc; nil means UTC.
func NewServer(repo storage.Repository, loc *time.Location) (*Server, error) {
	if loc == nil {
		loc = time.UTC
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "tradejournal",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		loc:       loc,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
