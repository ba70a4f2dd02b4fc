// ABOUTME: Timezone conversion between local wall-clock input, UTC storage and display.
// ABOUTME: Timestamps are kept at minute granularity as YYYY-MM-DD and HH:MM strings.
package tz

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	// DateLayout is the stored and displayed date format.
	DateLayout = "2006-01-02"
	// ClockLayout is the stored and displayed time-of-day format.
	ClockLayout = "15:04"
)

// ErrLocalZone is returned for "Local", which names no zone that can be stored.
var ErrLocalZone = errors.New(`"Local" is not an IANA timezone name`)

// Load resolves an IANA timezone name. An empty name means UTC.
func Load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "utc") {
		return time.UTC, nil
	}
	if strings.EqualFold(name, "local") {
		return nil, fmt.Errorf("%w: use a name like Europe/London", ErrLocalZone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// ParseLocal interprets date and clock as a wall-clock time in loc.
// Seconds in clock ("15:04:05") are accepted and dropped.
func ParseLocal(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	clock = strings.TrimSpace(clock)
	layout := DateLayout + " " + ClockLayout
	if strings.Count(clock, ":") == 2 {
		layout += ":05"
	}
	t, err := time.ParseInLocation(layout, strings.TrimSpace(date)+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s %s: %w", date, clock, err)
	}
	return t.Truncate(time.Minute), nil
}

// ToUTC converts a wall-clock time to UTC at minute granularity.
func ToUTC(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// SplitUTC returns the stored date and time strings for t.
func SplitUTC(t time.Time) (date, clock string) {
	u := ToUTC(t)
	return u.Format(DateLayout), u.Format(ClockLayout)
}

// JoinUTC parses stored date and time strings as a UTC instant.
func JoinUTC(date, clock string) (time.Time, error) {
	return ParseLocal(date, clock, time.UTC)
}

// Project re-expresses t in the display location. A nil location means UTC.
func Project(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc)
}
