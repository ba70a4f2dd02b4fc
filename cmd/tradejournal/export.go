// ABOUTME: CLI commands for exporting and restoring journal data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/tradejournal/internal/tz"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export journal data",
	Long: `Export journal data in various formats. Times are in the display timezone.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown tables (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include trades since this date (YYYY-MM-DD, markdown only)

EXAMPLES:

  tradejournal export json                        # Export all data as JSON
  tradejournal export json -o backup.json         # Save to file
  tradejournal export yaml                        # Export as YAML
  tradejournal export markdown --since 2025-01-01 # Export trades from 2025 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = store.ExportJSON(ctx, displayLoc)
		case "yaml":
			data, err = store.ExportYAML(ctx, displayLoc)
		case "markdown", "md":
			var since *time.Time
			if exportSince != "" {
				t, err := time.ParseInLocation(tz.DateLayout, exportSince, displayLoc)
				if err != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			md, err := store.ExportMarkdown(ctx, displayLoc, since)
			if err != nil {
				return err
			}
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Fprintln(out, color.GreenString("✓ Exported to %s", exportOutput))
		} else {
			fmt.Fprintln(out, string(data))
		}

		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore journal data from a JSON export",
	Long: `Restore trades, tags and settings from a JSON file written by
'tradejournal export json'.

Trades that collide with trades already in the journal (same position id or
same opening minute) are skipped, so restoring the same file twice is safe.

EXAMPLES:

  tradejournal restore backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		summary, err := store.ImportJSON(cmd.Context(), data)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Restored from %s", filename))
		fmt.Fprintf(out, "  %d trade(s), %d skipped, %d tag(s), %d setting(s)\n",
			summary.Trades, summary.Skipped, summary.Tags, summary.Settings)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include trades since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(restoreCmd)
}
