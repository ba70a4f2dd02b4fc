// ABOUTME: Trade model with Outcome and Direction enums for journal entries.
// ABOUTME: Prices and sizes are exact decimals; OpenedAt carries the wall-clock location.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the result tag recorded for a trade.
type Outcome string

const (
	OutcomeProfit Outcome = "Profit"
	OutcomeLoss   Outcome = "Loss"
	// OutcomeRF marks a risk-free (breakeven) close.
	OutcomeRF Outcome = "RF"
)

// AllOutcomes returns all valid outcomes.
var AllOutcomes = []Outcome{OutcomeProfit, OutcomeLoss, OutcomeRF}

// ParseOutcome converts user input into an Outcome, ignoring case.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "profit", "win", "p":
		return OutcomeProfit, nil
	case "loss", "l":
		return OutcomeLoss, nil
	case "rf", "risk-free", "riskfree", "breakeven", "be":
		return OutcomeRF, nil
	}
	return "", fmt.Errorf("unknown outcome: %q (use Profit, Loss or RF)", s)
}

// IsValid reports whether o is one of the known outcomes.
func (o Outcome) IsValid() bool {
	for _, v := range AllOutcomes {
		if o == v {
			return true
		}
	}
	return false
}

// Direction is the trade side. Stored as free text; buy and sell are the known values.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// ParseDirection normalizes a trade side.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long", "b":
		return DirectionBuy, nil
	case "sell", "short", "s":
		return DirectionSell, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unknown direction: %q (use buy or sell)", s)
}

// Trade represents a single journal entry.
type Trade struct {
	ID               int64               `json:"id"`
	OpenedAt         time.Time           `json:"opened_at"`
	Symbol           string              `json:"symbol"`
	Entry            decimal.NullDecimal `json:"entry"`
	Exit             decimal.NullDecimal `json:"exit"`
	Outcome          Outcome             `json:"profit"`
	Errors           []string            `json:"errors"`
	Size             decimal.Decimal     `json:"size"`
	PositionID       *string             `json:"position_id,omitempty"`
	Direction        Direction           `json:"type,omitempty"`
	OriginalTimezone string              `json:"original_timezone,omitempty"`
}

// NewTrade creates a Trade opened at the given wall-clock time.
// OriginalTimezone is taken from the time's location.
func NewTrade(symbol string, openedAt time.Time, outcome Outcome) *Trade {
	return &Trade{
		OpenedAt:         openedAt,
		Symbol:           strings.TrimSpace(symbol),
		Outcome:          outcome,
		Size:             decimal.Zero,
		OriginalTimezone: openedAt.Location().String(),
	}
}

// WithEntry sets the entry price.
func (t *Trade) WithEntry(d decimal.Decimal) *Trade {
	t.Entry = decimal.NewNullDecimal(d)
	return t
}

// WithExit sets the exit price.
func (t *Trade) WithExit(d decimal.Decimal) *Trade {
	t.Exit = decimal.NewNullDecimal(d)
	return t
}

// WithSize sets the position size.
func (t *Trade) WithSize(d decimal.Decimal) *Trade {
	t.Size = d
	return t
}

// WithPositionID sets the broker position id. An empty id clears it.
func (t *Trade) WithPositionID(id string) *Trade {
	id = strings.TrimSpace(id)
	if id == "" {
		t.PositionID = nil
		return t
	}
	t.PositionID = &id
	return t
}

// WithDirection sets the trade side.
func (t *Trade) WithDirection(d Direction) *Trade {
	t.Direction = d
	return t
}

// WithErrors sets the mistake tags.
func (t *Trade) WithErrors(tags ...string) *Trade {
	t.Errors = NormalizeTags(tags)
	return t
}

// Date returns the opening date in the trade's current location.
func (t *Trade) Date() string {
	return t.OpenedAt.Format("2006-01-02")
}

// Clock returns the opening time of day (HH:MM) in the trade's current location.
func (t *Trade) Clock() string {
	return t.OpenedAt.Format("15:04")
}

// PositionIDString returns the position id or an empty string.
func (t *Trade) PositionIDString() string {
	if t.PositionID == nil {
		return ""
	}
	return *t.PositionID
}

// ErrorsString returns the tags in their "a, b" list form.
func (t *Trade) ErrorsString() string {
	return JoinTags(t.Errors)
}

// HasError reports whether the trade carries the given tag.
func (t *Trade) HasError(tag string) bool {
	for _, e := range t.Errors {
		if e == tag {
			return true
		}
	}
	return false
}
