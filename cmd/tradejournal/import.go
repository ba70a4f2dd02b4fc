// ABOUTME: CLI command for importing MetaTrader 5 position reports.
// ABOUTME: Already imported positions are skipped, so re-importing a report is safe.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/tradejournal/internal/importer"
	"github.com/harperreed/tradejournal/internal/tz"
	"github.com/spf13/cobra"
)

var (
	importSourceTZ string
	importComma    string
	importDryRun   bool
)

var importCmd = &cobra.Command{
	Use:   "import <report>",
	Short: "Import trades from an MT5 positions report",
	Long: `Import trades from a MetaTrader 5 history report saved as .xlsx or .csv.

Only the Positions table is read. Each position becomes a trade with its
position id, so positions that are already in the journal are skipped.
The result is Profit or Loss from the sign of the profit column, or RF when
|profit| is within the RF threshold ('tradejournal settings rf').

Report times are in the broker's server timezone; pass it with --source-tz.
It defaults to the display timezone.

EXAMPLES:

  tradejournal import ReportHistory.xlsx
  tradejournal import ReportHistory.xlsx --source-tz Europe/Athens
  tradejournal import report.csv --comma ';' --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		loc := displayLoc
		if importSourceTZ != "" {
			var err error
			if loc, err = tz.Load(importSourceTZ); err != nil {
				return err
			}
		}

		rf, err := store.RFThreshold(ctx)
		if err != nil {
			return err
		}

		opts := importer.Options{Location: loc, RFThreshold: rf}
		if importComma != "" {
			r := []rune(importComma)
			if len(r) != 1 {
				return fmt.Errorf("--comma must be a single character")
			}
			opts.Comma = r[0]
		}

		batch, err := importer.ReadFile(args[0], opts)
		if err != nil {
			return fmt.Errorf("failed to read report: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, re := range batch.Rejected {
			fmt.Fprintln(out, color.YellowString("! skipped %v", re))
		}

		if importDryRun {
			fmt.Fprintf(out, "Dry run: %d trade(s) parsed, %d row(s) rejected\n", len(batch.Trades), len(batch.Rejected))
			for _, t := range batch.Trades {
				fmt.Fprintf(out, "  %s\n", formatTrade(t))
			}
			return nil
		}

		res := importer.Run(ctx, store, batch.Trades, logger)
		for _, e := range res.Errors {
			fmt.Fprintln(out, color.RedString("✗ %v", e))
		}
		fmt.Fprintln(out, color.GreenString("✓ Imported %d trade(s)", res.Added))
		fmt.Fprintf(out, "  %d already in journal, %d failed\n", res.Skipped, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d trade(s) failed to import", res.Failed)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSourceTZ, "source-tz", "", "timezone of the report's timestamps (default display timezone)")
	importCmd.Flags().StringVar(&importComma, "comma", "", "CSV field separator (default ',')")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse the report without adding trades")
	rootCmd.AddCommand(importCmd)
}
