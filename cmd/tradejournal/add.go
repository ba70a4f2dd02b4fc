// ABOUTME: CLI command for adding trades to the journal.
// ABOUTME: Date and time are read in the display timezone unless --zone is given.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/tradejournal/internal/models"
	"github.com/harperreed/tradejournal/internal/tz"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	addDate     string
	addTime     string
	addZone     string
	addEntry    string
	addExit     string
	addSize     string
	addType     string
	addPosition string
	addErrors   string
)

var addCmd = &cobra.Command{
	Use:     "add <symbol> <result>",
	Aliases: []string{"a"},
	Short:   "Add a trade",
	Long: `Add a trade to the journal. The result is Profit, Loss or RF.

The opening date and time default to now and are read in the display
timezone. Use --zone when the trade was taken in another timezone.

Examples:
  tradejournal add EURUSD profit
  tradejournal add XAUUSD loss --date 2025-03-01 --time 14:05 --type sell
  tradejournal add GBPUSD rf --entry 1.2650 --exit 1.2650 --size 0.5
  tradejournal add EURUSD loss --errors "FOMO, No SL"
  tradejournal add US30 profit --time 09:31 --zone America/New_York`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := models.ParseOutcome(args[1])
		if err != nil {
			return err
		}

		loc := displayLoc
		if addZone != "" {
			if loc, err = tz.Load(addZone); err != nil {
				return err
			}
		}

		opened, err := openingTime(addDate, addTime, loc)
		if err != nil {
			return err
		}

		dir, err := models.ParseDirection(addType)
		if err != nil {
			return err
		}

		t := models.NewTrade(args[0], opened, outcome).
			WithDirection(dir).
			WithPositionID(addPosition).
			WithErrors(models.ParseTags(addErrors)...)

		if addEntry != "" {
			d, err := parseDecimal("entry", addEntry)
			if err != nil {
				return err
			}
			t.WithEntry(d)
		}
		if addExit != "" {
			d, err := parseDecimal("exit", addExit)
			if err != nil {
				return err
			}
			t.WithExit(d)
		}
		if addSize != "" {
			d, err := parseDecimal("size", addSize)
			if err != nil {
				return err
			}
			t.WithSize(d)
		}

		id, err := store.AddTrade(cmd.Context(), t)
		if err != nil {
			return fmt.Errorf("failed to add trade: %w", err)
		}

		stored, err := store.GetTrade(cmd.Context(), id, displayLoc)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Added %s %s", stored.Symbol, stored.Outcome))
		fmt.Fprintf(out, "  %s\n", formatTrade(stored))
		return nil
	},
}

// openingTime combines optional date and time flags with the current time in loc.
func openingTime(date, clock string, loc *time.Location) (time.Time, error) {
	now := time.Now().In(loc)
	if date == "" {
		date = now.Format(tz.DateLayout)
	}
	if clock == "" {
		clock = now.Format(tz.ClockLayout)
	}
	t, err := tz.ParseLocal(date, clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time: %s %s (use YYYY-MM-DD and HH:MM)", date, clock)
	}
	return t, nil
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", name, s)
	}
	return d, nil
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "opening date (YYYY-MM-DD, default today)")
	addCmd.Flags().StringVar(&addTime, "time", "", "opening time (HH:MM, default now)")
	addCmd.Flags().StringVar(&addZone, "zone", "", "timezone the date and time are in (default display timezone)")
	addCmd.Flags().StringVar(&addEntry, "entry", "", "entry price")
	addCmd.Flags().StringVar(&addExit, "exit", "", "exit price")
	addCmd.Flags().StringVar(&addSize, "size", "", "position size")
	addCmd.Flags().StringVarP(&addType, "type", "t", "", "direction (buy or sell)")
	addCmd.Flags().StringVar(&addPosition, "position", "", "broker position id")
	addCmd.Flags().StringVarP(&addErrors, "errors", "e", "", "mistake tags (\"FOMO, No SL\")")
	rootCmd.AddCommand(addCmd)
}
