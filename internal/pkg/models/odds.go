package models

import (
	"strconv"
	"strings"
	"time"
)

// Quote is one priced outcome from one feed at one instant.
type Quote struct {
	Source    string    `json:"source"`
	EventID   string    `json:"event_id"`
	Event     EventKey  `json:"event"`
	League    string    `json:"league"`
	Market    string    `json:"market"`    // feed-native market name
	Outcome   Outcome   `json:"outcome"`   // feed-native side encoding
	Selection Selection `json:"selection"` // set at ingestion when the feed encodes the side directly
	Line      *float64  `json:"line,omitempty"`
	Odds      float64   `json:"odds"`
	UpdatedAt time.Time `json:"updated_at"`

	// CanonicalMarket is the mapped market name used in the composite key.
	CanonicalMarket string `json:"canonical_market"`
}

// CompositeKey identifies this priced outcome within one feed.
// Format: event_slug-selection-Canonical_Market[-line]
func (q Quote) CompositeKey() string {
	return CompositeKey(q.Event.Slug(), q.Outcome.Token(), q.CanonicalMarket, q.Line)
}

// CompositeKey builds the composite key from its parts.
func CompositeKey(eventSlug, selection, canonicalMarket string, line *float64) string {
	var b strings.Builder
	b.WriteString(eventSlug)
	b.WriteByte('-')
	b.WriteString(selection)
	b.WriteByte('-')
	b.WriteString(strings.ReplaceAll(strings.TrimSpace(canonicalMarket), " ", "_"))
	if line != nil {
		b.WriteByte('-')
		b.WriteString(FormatLine(line))
	}
	return b.String()
}

// FormatLine renders a handicap/total line without trailing zeros; nil renders as "".
func FormatLine(line *float64) string {
	if line == nil {
		return ""
	}
	return strconv.FormatFloat(*line, 'f', -1, 64)
}

// LinesEqual reports whether two optional lines are both absent or exactly equal.
func LinesEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Line returns a pointer to v, for building quotes.
func Line(v float64) *float64 {
	return &v
}
