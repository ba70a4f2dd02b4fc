// ABOUTME: Root Cobra command for tradejournal CLI.
// ABOUTME: Handles config, logger and journal lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"time"

	"github.com/harperreed/tradejournal/internal/config"
	"github.com/harperreed/tradejournal/internal/logging"
	"github.com/harperreed/tradejournal/internal/storage"
	"github.com/harperreed/tradejournal/internal/tz"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfg        *config.Config
	store      *storage.DB
	logger     = zerolog.Nop()
	displayLoc = time.UTC

	dbFlag       string
	tzFlag       string
	logLevelFlag string
)

// storeless commands never open the journal.
var storeless = map[string]bool{
	"help":          true,
	"version":       true,
	"completion":    true,
	"install-skill": true,
}

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "Personal trading journal",
	Long: `Tradejournal is a CLI tool for keeping a trading journal.

WHAT IT TRACKS:

  Trades       symbol, open date/time, direction, entry/exit, size, result
  Results      Profit, Loss, RF (risk-free / breakeven)
  Mistakes     reusable error tags such as "FOMO" or "No SL"

QUICK START:

  $ tradejournal add EURUSD profit --entry 1.0842 --exit 1.0861
  $ tradejournal add XAUUSD loss --errors "FOMO, No SL"
  $ tradejournal list                       # Recent trades
  $ tradejournal stats                      # Win rate and top mistakes
  $ tradejournal report sessions            # Results per market session

IMPORT:

  $ tradejournal import ReportHistory.xlsx  # MetaTrader 5 positions report

TIMEZONES:

  Trades are stored in UTC and shown in the display timezone. It comes from
  --tz, then TRADEJOURNAL_TZ or the config file, then the journal's
  default_timezone setting ('tradejournal settings timezone').

MCP INTEGRATION:

  Run 'tradejournal mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "tradejournal": { "command": "tradejournal", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Trades are stored in SQLite at ~/.local/share/tradejournal/journal.db.
  Override with --db, TRADEJOURNAL_DB or db_path in
  ~/.config/tradejournal/config.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		for c := cmd; c != nil; c = c.Parent() {
			if storeless[c.Name()] {
				return nil
			}
		}
		return openJournal(cmd, cmd.Name() == "migrate")
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeJournal()
	},
}

// openJournal loads configuration, builds the logger and opens the store.
// skipMigrate leaves the schema as found.
func openJournal(cmd *cobra.Command, skipMigrate bool) error {
	// A failed RunE skips PersistentPostRunE, so a previous handle may still be open.
	_ = closeJournal()
	config.LoadDotEnv()

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if tzFlag != "" {
		cfg.Timezone = tzFlag
	}

	logger = logging.New(cfg.GetLogLevel(), cmd.ErrOrStderr())

	store, err = cfg.OpenStorage(&logger, skipMigrate)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	name := cfg.Timezone
	if name == "" && !skipMigrate {
		name, err = store.DefaultTimezone(cmd.Context())
		if err != nil {
			_ = closeJournal()
			return fmt.Errorf("failed to read default timezone: %w", err)
		}
	}
	displayLoc, err = tz.Load(name)
	if err != nil {
		_ = closeJournal()
		return err
	}
	return nil
}

func closeJournal() error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "journal database file")
	rootCmd.PersistentFlags().StringVar(&tzFlag, "tz", "", "display timezone (IANA name, e.g. Europe/London)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")
}
