// ABOUTME: CLI command for bringing the journal schema up to date.
// ABOUTME: Shows pending steps and can stop at an intermediate version.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	migrateTo     int
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade the journal database schema",
	Long: `Upgrade the journal database to the latest schema version.

Every other command migrates automatically when it opens the journal. This
command shows what is pending and lets you stop at a given version, which
is useful for inspecting an old journal file before converting it.

Each step runs in its own transaction. If a step fails, the database stays
at the last successful version.

USAGE:

  tradejournal migrate --dry-run              # Show current version and pending steps
  tradejournal migrate                        # Migrate to the latest version
  tradejournal --db old.db migrate --to 9     # Stop after version 9

LEGACY TRADES:

  Trades recorded before timezones were tracked are assumed to be in
  Asia/Tehran. Set TRADEJOURNAL_LEGACY_TZ or legacy_timezone in the config
  file before migrating to change that.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		m := store.Migrator()

		current, err := m.Version(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Fprintf(out, "Schema version %d (latest %d)\n", current, m.Latest())

		pending, err := m.Pending(ctx)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Fprintln(out, color.GreenString("✓ Up to date"))
			return nil
		}

		if migrateDryRun {
			color.New(color.FgYellow).Fprintln(out, "Dry run mode - no changes will be made")
			for _, step := range pending {
				fmt.Fprintf(out, "  %2d  %s\n", step.Version, step.Name)
			}
			return nil
		}

		target := m.Latest()
		if cmd.Flags().Changed("to") {
			target = migrateTo
		}

		reached, err := m.MigrateTo(ctx, target)
		if err != nil {
			return fmt.Errorf("migration stopped at version %d: %w", reached, err)
		}
		fmt.Fprintln(out, color.GreenString("✓ Migrated to version %d", reached))
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateTo, "to", 0, "stop at this schema version")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "show pending steps without applying them")
	rootCmd.AddCommand(migrateCmd)
}
