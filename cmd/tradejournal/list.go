// ABOUTME: CLI command for listing journal trades.
// ABOUTME: Supports the shared filters and limiting results.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/tradejournal/internal/models"
	"github.com/spf13/cobra"
)

var (
	listFilter filterFlags
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List trades",
	Long: `List trades from your journal, oldest first, in the display timezone.

OUTPUT FORMAT:

  Each line shows: #ID  DATE TIME  SYMBOL  TYPE  RESULT  ENTRY → EXIT  SIZE  [ERRORS]

  The ID is used with delete and retag.

FILTERING:

  --from, --to     date range (YYYY-MM-DD, inclusive)
  --symbol, -s     symbols
  --outcome        profit, loss, rf
  --tag            error tags
  --type           buy, sell
  --weekday        mon ... sun
  --hour           opening hours 0-23
  --session        sydney, tokyo, london, "new york"

EXAMPLES:

  tradejournal list                          # Last 20 trades
  tradejournal list -s EURUSD --outcome loss # Losing EURUSD trades
  tradejournal list --tag FOMO -n 50         # Last 50 FOMO trades
  tradejournal list --session london`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := listFilter.build(displayLoc)
		if err != nil {
			return err
		}

		trades, err := store.FilterTrades(cmd.Context(), displayLoc, f)
		if err != nil {
			return fmt.Errorf("failed to list trades: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(trades) == 0 {
			fmt.Fprintln(out, "No trades found.")
			return nil
		}

		if listLimit > 0 && len(trades) > listLimit {
			trades = trades[len(trades)-listLimit:]
		}

		for _, t := range trades {
			fmt.Fprintln(out, formatTrade(t))
		}
		return nil
	},
}

// formatTrade renders a trade on one line.
func formatTrade(t *models.Trade) string {
	faint := color.New(color.Faint)

	prices := ""
	if t.Entry.Valid || t.Exit.Valid {
		prices = fmt.Sprintf("%s → %s", decimalOrDash(t.Entry.Valid, t.Entry.Decimal.String()),
			decimalOrDash(t.Exit.Valid, t.Exit.Decimal.String()))
	}

	errs := ""
	if len(t.Errors) > 0 {
		errs = faint.Sprintf(" [%s]", t.ErrorsString())
	}

	return fmt.Sprintf("%s %s %s %s %s %s %s%s",
		faint.Sprint(padRight(fmt.Sprintf("#%d", t.ID), 6)),
		faint.Sprint(t.Date()+" "+t.Clock()),
		padRight(t.Symbol, 10),
		padRight(string(t.Direction), 4),
		outcomeColor(t.Outcome).Sprint(padRight(string(t.Outcome), 6)),
		padRight(prices, 24),
		t.Size.String(),
		errs)
}

func outcomeColor(o models.Outcome) *color.Color {
	switch o {
	case models.OutcomeProfit:
		return color.New(color.FgGreen)
	case models.OutcomeLoss:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func decimalOrDash(valid bool, s string) string {
	if !valid {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listFilter.register(listCmd, false)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results (0 for all)")
	rootCmd.AddCommand(listCmd)
}
