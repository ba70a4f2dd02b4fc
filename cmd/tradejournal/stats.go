// ABOUTME: CLI commands for journal statistics and breakdown reports.
// ABOUTME: stats prints the overall summary; report prints per-bucket tables.
package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harperreed/tradejournal/internal/models"
	"github.com/harperreed/tradejournal/internal/report"
	"github.com/spf13/cobra"
)

var (
	statsFilter  filterFlags
	statsTop     int
	reportFilter filterFlags
	reportAll    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show win/loss statistics",
	Long: `Show outcome counts, win rate and the most frequent mistakes.

The win rate is wins / (wins + losses); RF trades are not counted as decided.
All filters from 'tradejournal list' are accepted.

EXAMPLES:

  tradejournal stats
  tradejournal stats --from 2025-01-01 -s XAUUSD
  tradejournal stats --session "new york" --top 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		trades, err := filteredTrades(cmd.Context(), &statsFilter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sum := report.Summarize(trades)
		bold := color.New(color.Bold)

		fmt.Fprintln(out, bold.Sprintf("Trades: %d", sum.Total))
		fmt.Fprintf(out, "  %s %d\n", color.GreenString(padRight("Profit", 8)), sum.Wins)
		fmt.Fprintf(out, "  %s %d\n", color.RedString(padRight("Loss", 8)), sum.Losses)
		fmt.Fprintf(out, "  %s %d\n", color.YellowString(padRight("RF", 8)), sum.RF)
		fmt.Fprintf(out, "  %s %.1f%%\n", padRight("Win rate", 8), sum.WinRate())

		freq := report.ErrorFrequency(trades)
		if len(freq) == 0 {
			return nil
		}
		if statsTop > 0 && len(freq) > statsTop {
			freq = freq[:statsTop]
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, bold.Sprint("Top mistakes:"))
		for _, tc := range freq {
			fmt.Fprintf(out, "  %s %d\n", padRight(truncate(tc.Name, 28), 28), tc.Count)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Break results down by hour, weekday, session, symbol or mistake",
	Long: `Break trade results down into buckets.

Hours, weekdays and sessions use the opening time in the display timezone.
Sessions overlap, so one trade can count in two sessions.

SUBCOMMANDS:

  hours      results per opening hour
  weekdays   results per weekday, Monday first
  sessions   results per market session (Sydney, Tokyo, London, New York)
  symbols    results per symbol, busiest first
  errors     mistake frequency

EXAMPLES:

  tradejournal report sessions
  tradejournal report hours --from 2025-01-01 --all
  tradejournal report errors --outcome loss`,
}

var reportHoursCmd = &cobra.Command{
	Use:   "hours",
	Short: "Results per opening hour",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBucketReport(cmd, "Hour", report.ByHour)
	},
}

var reportWeekdaysCmd = &cobra.Command{
	Use:   "weekdays",
	Short: "Results per weekday",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBucketReport(cmd, "Weekday", report.ByWeekday)
	},
}

var reportSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Results per market session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBucketReport(cmd, "Session", func(trades []*models.Trade) []report.Bucket {
			return report.BySession(trades, nil)
		})
	},
}

var reportSymbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Results per symbol",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBucketReport(cmd, "Symbol", report.BySymbol)
	},
}

var reportErrorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Mistake frequency",
	RunE: func(cmd *cobra.Command, args []string) error {
		trades, err := filteredTrades(cmd.Context(), &reportFilter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		freq := report.ErrorFrequency(trades)
		if len(freq) == 0 {
			fmt.Fprintln(out, "No mistakes recorded.")
			return nil
		}

		fmt.Fprintln(out, color.New(color.Bold).Sprintf("%s %s", padRight("Mistake", 28), "Trades"))
		for _, tc := range freq {
			fmt.Fprintf(out, "%s %d\n", padRight(truncate(tc.Name, 28), 28), tc.Count)
		}
		return nil
	},
}

func filteredTrades(ctx context.Context, flags *filterFlags) ([]*models.Trade, error) {
	f, err := flags.build(displayLoc)
	if err != nil {
		return nil, err
	}
	trades, err := store.FilterTrades(ctx, displayLoc, f)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	return trades, nil
}

func runBucketReport(cmd *cobra.Command, title string, bucketize func([]*models.Trade) []report.Bucket) error {
	trades, err := filteredTrades(cmd.Context(), &reportFilter)
	if err != nil {
		return err
	}
	printBuckets(cmd.OutOrStdout(), title, bucketize(trades), reportAll)
	return nil
}

func printBuckets(out io.Writer, title string, buckets []report.Bucket, all bool) {
	fmt.Fprintln(out, color.New(color.Bold).Sprintf("%s %6s %6s %6s %6s %8s",
		padRight(title, 12), "Trades", "Profit", "Loss", "RF", "Win%"))
	for _, b := range buckets {
		if b.Total == 0 && !all {
			continue
		}
		fmt.Fprintf(out, "%s %6d %6d %6d %6d %7.1f%%\n",
			padRight(b.Label, 12), b.Total, b.Wins, b.Losses, b.RF, b.WinRate())
	}
}

func init() {
	statsFilter.register(statsCmd, false)
	statsCmd.Flags().IntVar(&statsTop, "top", 5, "number of mistakes to show (0 for all)")
	rootCmd.AddCommand(statsCmd)

	reportFilter.register(reportCmd, true)
	reportCmd.PersistentFlags().BoolVar(&reportAll, "all", false, "include empty buckets")
	reportCmd.AddCommand(reportHoursCmd, reportWeekdaysCmd, reportSessionsCmd, reportSymbolsCmd, reportErrorsCmd)
	rootCmd.AddCommand(reportCmd)
}
