// ABOUTME: Trade filter criteria and trading session windows.
// ABOUTME: Time-based criteria apply to trades already projected into the display timezone.
package models

import (
	"strings"
	"time"
)

// Session is a named window of hours of the day. EndHour is exclusive and a window
// with EndHour < StartHour wraps past midnight. Equal bounds make an empty window.
type Session struct {
	Name      string `json:"name"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
}

// Contains reports whether hour (0-23) falls inside the session.
func (s Session) Contains(hour int) bool {
	if s.StartHour == s.EndHour {
		return false
	}
	if s.StartHour < s.EndHour {
		return hour >= s.StartHour && hour < s.EndHour
	}
	return hour >= s.StartHour || hour < s.EndHour
}

// DefaultSessions are the major market sessions, in hours of the display timezone.
var DefaultSessions = []Session{
	{Name: "Sydney", StartHour: 22, EndHour: 7},
	{Name: "Tokyo", StartHour: 0, EndHour: 9},
	{Name: "London", StartHour: 8, EndHour: 17},
	{Name: "New York", StartHour: 13, EndHour: 22},
}

// SessionByName finds a default session ignoring case.
func SessionByName(name string) (Session, bool) {
	for _, s := range DefaultSessions {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Session{}, false
}

// Filter selects trades. Zero values match everything.
type Filter struct {
	// From and To are inclusive calendar dates compared in the trade's location.
	From       time.Time
	To         time.Time
	Symbols    []string
	Directions []Direction
	Outcomes   []Outcome
	Tags       []string
	Weekdays   []time.Weekday
	Hours      []int
	Sessions   []Session
}

// Match reports whether a projected trade satisfies every criterion.
func (f Filter) Match(t *Trade) bool {
	day := t.OpenedAt.Format("2006-01-02")
	if !f.From.IsZero() && day < f.From.Format("2006-01-02") {
		return false
	}
	if !f.To.IsZero() && day > f.To.Format("2006-01-02") {
		return false
	}
	if len(f.Symbols) > 0 && !containsFold(f.Symbols, t.Symbol) {
		return false
	}
	if len(f.Directions) > 0 {
		dirs := make([]string, len(f.Directions))
		for i, d := range f.Directions {
			dirs[i] = string(d)
		}
		if !containsFold(dirs, string(t.Direction)) {
			return false
		}
	}
	if len(f.Outcomes) > 0 {
		ok := false
		for _, o := range f.Outcomes {
			if o == t.Outcome {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Tags) > 0 {
		ok := false
		for _, tag := range f.Tags {
			if t.HasError(tag) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Weekdays) > 0 {
		ok := false
		for _, wd := range f.Weekdays {
			if t.OpenedAt.Weekday() == wd {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	hour := t.OpenedAt.Hour()
	if len(f.Hours) > 0 {
		ok := false
		for _, h := range f.Hours {
			if h == hour {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Sessions) > 0 {
		ok := false
		for _, s := range f.Sessions {
			if s.Contains(hour) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// ParseWeekday accepts full or three-letter English weekday names.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return d, true
		}
	}
	return 0, false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
