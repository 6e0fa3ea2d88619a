package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedSelection is returned when an outcome cannot be mapped to a canonical side.
var ErrUnresolvedSelection = errors.New("unresolved selection")

// Selection is the canonical side of a priced outcome.
type Selection string

const (
	SelectionUnknown Selection = ""
	SelectionHome    Selection = "home"
	SelectionAway    Selection = "away"
	SelectionDraw    Selection = "draw"
	SelectionOver    Selection = "over"
	SelectionUnder   Selection = "under"
	SelectionYes     Selection = "yes"
	SelectionNo      Selection = "no"
)

var selectionByCode = map[string]Selection{
	"home":  SelectionHome,
	"away":  SelectionAway,
	"draw":  SelectionDraw,
	"over":  SelectionOver,
	"under": SelectionUnder,
	"yes":   SelectionYes,
	"no":    SelectionNo,
	// letter codes used by over/under feeds
	"o": SelectionOver,
	"u": SelectionUnder,
}

// ParseSelection maps a word or letter code (case-insensitive) to a Selection.
func ParseSelection(code string) (Selection, error) {
	s, ok := selectionByCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return SelectionUnknown, fmt.Errorf("%w: %q", ErrUnresolvedSelection, code)
	}
	return s, nil
}

func (s Selection) String() string {
	if s == SelectionUnknown {
		return "unknown"
	}
	return string(s)
}

// Outcome is the raw encoding a feed uses for the side of a quote.
// Code carries a direct word or letter code (home, over, "O"); Target carries a
// literal team name or "draw" that must be resolved against the event's teams.
type Outcome struct {
	Code   string `json:"code,omitempty"`
	Target string `json:"target,omitempty"`
}

// Token is the feed-level selection token used in composite keys.
func (o Outcome) Token() string {
	if o.Code != "" {
		return strings.ToLower(strings.TrimSpace(o.Code))
	}
	return strings.ToLower(strings.TrimSpace(o.Target))
}
