// ABOUTME: Aggregate statistics over trades projected into the display timezone.
// ABOUTME: Hour, weekday and session buckets use the projected wall clock.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/tradejournal/internal/models"
)

// Summary holds outcome counts for a set of trades.
type Summary struct {
	Total  int `json:"total"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	RF     int `json:"rf"`
}

// WinRate is the share of decided trades (wins plus losses) that were wins, in percent.
// RF trades are excluded. Zero when nothing was decided.
func (s Summary) WinRate() float64 {
	decided := s.Wins + s.Losses
	if decided == 0 {
		return 0
	}
	return float64(s.Wins) * 100 / float64(decided)
}

func (s *Summary) add(t *models.Trade) {
	s.Total++
	switch t.Outcome {
	case models.OutcomeProfit:
		s.Wins++
	case models.OutcomeLoss:
		s.Losses++
	case models.OutcomeRF:
		s.RF++
	}
}

// Bucket is a labelled summary.
type Bucket struct {
	Label string `json:"label"`
	Summary
}

// TagCount is a mistake tag with its number of occurrences.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summarize counts outcomes.
func Summarize(trades []*models.Trade) Summary {
	var s Summary
	for _, t := range trades {
		s.add(t)
	}
	return s
}

// ByHour returns 24 buckets, one per hour of the projected opening time.
func ByHour(trades []*models.Trade) []Bucket {
	buckets := make([]Bucket, 24)
	for h := range buckets {
		buckets[h].Label = fmt.Sprintf("%02d:00", h)
	}
	for _, t := range trades {
		buckets[t.OpenedAt.Hour()].add(t)
	}
	return buckets
}

// weekOrder starts the trading week on Monday.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// ByWeekday returns seven buckets, Monday through Sunday.
func ByWeekday(trades []*models.Trade) []Bucket {
	buckets := make([]Bucket, len(weekOrder))
	index := make(map[time.Weekday]int, len(weekOrder))
	for i, d := range weekOrder {
		buckets[i].Label = d.String()
		index[d] = i
	}
	for _, t := range trades {
		buckets[index[t.OpenedAt.Weekday()]].add(t)
	}
	return buckets
}

// BySession returns one bucket per session. Sessions overlap, so a trade may count
// in more than one bucket. Nil sessions means the default market sessions.
func BySession(trades []*models.Trade, sessions []models.Session) []Bucket {
	if sessions == nil {
		sessions = models.DefaultSessions
	}
	buckets := make([]Bucket, len(sessions))
	for i, s := range sessions {
		buckets[i].Label = s.Name
	}
	for _, t := range trades {
		hour := t.OpenedAt.Hour()
		for i, s := range sessions {
			if s.Contains(hour) {
				buckets[i].add(t)
			}
		}
	}
	return buckets
}

// BySymbol returns one bucket per symbol, busiest first.
func BySymbol(trades []*models.Trade) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, t := range trades {
		i, ok := index[t.Symbol]
		if !ok {
			i = len(buckets)
			index[t.Symbol] = i
			buckets = append(buckets, Bucket{Label: t.Symbol})
		}
		buckets[i].add(t)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Total != buckets[j].Total {
			return buckets[i].Total > buckets[j].Total
		}
		return buckets[i].Label < buckets[j].Label
	})
	return buckets
}

// ErrorFrequency counts mistake tags across trades, most frequent first.
func ErrorFrequency(trades []*models.Trade) []TagCount {
	counts := make(map[string]int)
	for _, t := range trades {
		for _, tag := range t.Errors {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TagCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
