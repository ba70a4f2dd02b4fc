// ABOUTME: Shared trade filter flags for list, stats and report commands.
// ABOUTME: Dates are read in the display timezone.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/tradejournal/internal/models"
	"github.com/harperreed/tradejournal/internal/tz"
	"github.com/spf13/cobra"
)

type filterFlags struct {
	from     string
	to       string
	symbols  []string
	outcomes []string
	tags     []string
	types    []string
	weekdays []string
	hours    []string
	sessions []string
}

func (f *filterFlags) register(cmd *cobra.Command, persistent bool) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	fs.StringVar(&f.from, "from", "", "first date to include (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "", "last date to include (YYYY-MM-DD)")
	fs.StringSliceVarP(&f.symbols, "symbol", "s", nil, "only these symbols")
	fs.StringSliceVar(&f.outcomes, "outcome", nil, "only these results (profit, loss, rf)")
	fs.StringSliceVar(&f.tags, "tag", nil, "only trades carrying one of these error tags")
	fs.StringSliceVar(&f.types, "type", nil, "only these directions (buy, sell)")
	fs.StringSliceVar(&f.weekdays, "weekday", nil, "only these weekdays (mon, tue, ...)")
	fs.StringSliceVar(&f.hours, "hour", nil, "only these opening hours (0-23)")
	fs.StringSliceVar(&f.sessions, "session", nil, "only these sessions (sydney, tokyo, london, \"new york\")")
}

func (f *filterFlags) reset() {
	*f = filterFlags{}
}

// build converts the flag values into a filter evaluated in loc.
func (f *filterFlags) build(loc *time.Location) (models.Filter, error) {
	var out models.Filter
	var err error

	if f.from != "" {
		if out.From, err = time.ParseInLocation(tz.DateLayout, f.from, loc); err != nil {
			return out, fmt.Errorf("invalid --from date: %s (use YYYY-MM-DD)", f.from)
		}
	}
	if f.to != "" {
		if out.To, err = time.ParseInLocation(tz.DateLayout, f.to, loc); err != nil {
			return out, fmt.Errorf("invalid --to date: %s (use YYYY-MM-DD)", f.to)
		}
	}

	out.Symbols = f.symbols
	out.Tags = f.tags

	for _, s := range f.outcomes {
		o, err := models.ParseOutcome(s)
		if err != nil {
			return out, err
		}
		out.Outcomes = append(out.Outcomes, o)
	}
	for _, s := range f.types {
		d, err := models.ParseDirection(s)
		if err != nil {
			return out, err
		}
		if d != "" {
			out.Directions = append(out.Directions, d)
		}
	}
	for _, s := range f.weekdays {
		wd, ok := models.ParseWeekday(s)
		if !ok {
			return out, fmt.Errorf("unknown weekday: %s", s)
		}
		out.Weekdays = append(out.Weekdays, wd)
	}
	for _, s := range f.hours {
		h, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || h < 0 || h > 23 {
			return out, fmt.Errorf("invalid hour: %s (use 0-23)", s)
		}
		out.Hours = append(out.Hours, h)
	}
	for _, s := range f.sessions {
		sess, ok := models.SessionByName(s)
		if !ok {
			return out, fmt.Errorf("unknown session: %s", s)
		}
		out.Sessions = append(out.Sessions, sess)
	}

	return out, nil
}
