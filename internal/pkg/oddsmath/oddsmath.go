// Package oddsmath holds the price conversions shared by both feeds.
package oddsmath

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
)

// ESTLayout is the reference feed start-time format, in America/New_York.
const ESTLayout = "2006-01-02, 03:04 PM"

var (
	ErrZeroAmericanOdds = errors.New("american odds cannot be zero")
	ErrZeroReference    = errors.New("reference odds must be positive")

	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// AmericanToDecimal converts American odds to decimal odds rounded to two places.
// +150 becomes 2.50 and -200 becomes 1.50.
func AmericanToDecimal(american float64) (float64, error) {
	if american == 0 {
		return 0, ErrZeroAmericanOdds
	}
	a := decimal.NewFromFloat(american)
	var d decimal.Decimal
	if american > 0 {
		d = a.Div(hundred).Add(one)
	} else {
		d = hundred.Div(a.Abs()).Add(one)
	}
	f, _ := d.Round(2).Float64()
	return f, nil
}

// Edge returns (target-reference)/reference*100 rounded to two places.
func Edge(target, reference float64) (float64, error) {
	if reference <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrZeroReference, reference)
	}
	t := decimal.NewFromFloat(target)
	r := decimal.NewFromFloat(reference)
	f, _ := t.Sub(r).Div(r).Mul(hundred).Round(2).Float64()
	return f, nil
}

var eastern = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("oddsmath: failed to load %s: %v", name, err))
	}
	return loc
}

// ESTToUTC parses "YYYY-MM-DD, HH:MM AM/PM" as New York local time and returns it in UTC.
func ESTToUTC(s string) (time.Time, error) {
	t, err := time.ParseInLocation(ESTLayout, strings.ToUpper(strings.TrimSpace(s)), eastern)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse start time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Window is an inclusive decimal-odds range.
type Window struct {
	Min float64
	Max float64
}

// Contains reports whether odds lies inside the window.
func (w Window) Contains(odds float64) bool {
	return odds >= w.Min && odds <= w.Max
}
