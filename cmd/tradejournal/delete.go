// ABOUTME: CLI command for deleting trades.
// ABOUTME: Removes the trade and its error-tag links.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a trade",
	Long: `Delete a trade by its numeric ID.

The ID is shown in the first column of 'tradejournal list' output.

EXAMPLES:

  tradejournal delete 42
  tradejournal rm 42

CAUTION:

  This permanently deletes the trade. There is no undo.
  Error tags stay registered even when no trade uses them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		// First, get the trade to show what we're deleting
		t, err := store.GetTrade(cmd.Context(), id, displayLoc)
		if err != nil {
			return fmt.Errorf("trade not found: %s", args[0])
		}

		if err := store.DeleteTrade(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete trade: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.YellowString("✗ Deleted %s %s", t.Symbol, t.Outcome))
		fmt.Fprintf(out, "  %s\n", formatTrade(t))
		return nil
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
