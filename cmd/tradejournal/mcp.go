// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/tradejournal/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to read and write your trading journal
through a standardized protocol. The server communicates via stdin/stdout.
Dates and times are exchanged in the display timezone.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "tradejournal": {
        "command": "tradejournal",
        "args": ["mcp"]
      }
    }
  }

  On macOS, the config is at:
    ~/Library/Application Support/Claude/claude_desktop_config.json

AVAILABLE TOOLS:

  add_trade        Record a trade
  list_trades      List trades with filters
  delete_trade     Delete a trade by ID
  trade_stats      Win rate and top mistakes
  list_tags        Mistake tags with usage counts
  add_tag          Register a mistake tag
  rename_tag       Rename a tag on every trade
  delete_tag       Delete an unused tag
  set_trade_tags   Replace tags on trades

AVAILABLE RESOURCES:

  journal://recent     Last 10 trades
  journal://summary    Counts, win rate, top mistakes and settings`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(store, displayLoc)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
