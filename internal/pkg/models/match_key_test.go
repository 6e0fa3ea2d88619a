package models

import (
	"errors"
	"testing"
	"time"
)

func TestEventKeySlug(t *testing.T) {
	start := time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		key  EventKey
		want string
	}{
		{"plain", NewEventKey("Football", "Arsenal", "Chelsea", start), "football|arsenal|chelsea|2025-01-01T18:00:00Z"},
		{"whitespace collapsed", NewEventKey(" football ", "Arsenal   FC", "Chelsea FC", start), "football|arsenal fc|chelsea fc|2025-01-01T18:00:00Z"},
		{"pipe stripped", NewEventKey("football", "A|B", "C", start), "football|a b|c|2025-01-01T18:00:00Z"},
		{"non-utc start", NewEventKey("football", "a", "b", start.In(time.FixedZone("EST", -5*3600))), "football|a|b|2025-01-01T18:00:00Z"},
		{"no start", NewEventKey("football", "a", "b", time.Time{}), "football|a|b|unknown-time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Slug(); got != tt.want {
				t.Errorf("Slug() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompositeKey(t *testing.T) {
	start := time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)
	q := Quote{
		Event:           NewEventKey("football", "arsenal", "chelsea", start),
		Outcome:         Outcome{Code: "home"},
		CanonicalMarket: "ML HT",
	}
	if got, want := q.CompositeKey(), "football|arsenal|chelsea|2025-01-01T18:00:00Z-home-ML_HT"; got != want {
		t.Errorf("CompositeKey() = %q, want %q", got, want)
	}

	q.Line = Line(0.25)
	if got, want := q.CompositeKey(), "football|arsenal|chelsea|2025-01-01T18:00:00Z-home-ML_HT-0.25"; got != want {
		t.Errorf("CompositeKey() with line = %q, want %q", got, want)
	}

	other := q
	other.Line = Line(0.5)
	if q.CompositeKey() == other.CompositeKey() {
		t.Errorf("different lines must give different keys: %q", q.CompositeKey())
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in      string
		want    Selection
		wantErr bool
	}{
		{"home", SelectionHome, false},
		{"AWAY", SelectionAway, false},
		{" Draw ", SelectionDraw, false},
		{"O", SelectionOver, false},
		{"u", SelectionUnder, false},
		{"yes", SelectionYes, false},
		{"chelsea", SelectionUnknown, true},
		{"", SelectionUnknown, true},
	}
	for _, tt := range tests {
		got, err := ParseSelection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSelection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnresolvedSelection) {
			t.Errorf("ParseSelection(%q) error = %v, want ErrUnresolvedSelection", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseSelection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLinesEqual(t *testing.T) {
	if !LinesEqual(nil, nil) {
		t.Error("nil lines should be equal")
	}
	if LinesEqual(Line(0.5), nil) || LinesEqual(nil, Line(0.5)) {
		t.Error("present and absent lines should differ")
	}
	if LinesEqual(Line(0.25), Line(0.5)) {
		t.Error("0.25 and 0.5 must not be interchangeable")
	}
	if !LinesEqual(Line(1.5), Line(1.5)) {
		t.Error("equal lines should match")
	}
}
