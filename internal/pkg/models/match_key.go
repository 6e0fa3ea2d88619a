package models

import (
	"errors"
	"strings"
	"time"
)

// ErrMalformedSlug is returned when a slug does not split into sport|home|away|date.
var ErrMalformedSlug = errors.New("malformed event slug")

// SlugTimeLayout is the start-time layout used inside event slugs.
const SlugTimeLayout = "2006-01-02T15:04:05Z"

// EventKey identifies one real-world event inside a single feed.
type EventKey struct {
	Sport     string    `json:"sport"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime time.Time `json:"start_time"`
}

// NewEventKey builds an EventKey from raw feed data. Only feed parsers should call it.
func NewEventKey(sport, homeTeam, awayTeam string, startTime time.Time) EventKey {
	return EventKey{
		Sport:     NormalizeName(sport),
		HomeTeam:  NormalizeName(homeTeam),
		AwayTeam:  NormalizeName(awayTeam),
		StartTime: startTime.UTC(),
	}
}

// Slug renders the key as "sport|home|away|start".
// Format: football|arsenal|chelsea|2025-01-01T18:00:00Z (lowercased by the matcher's cleaner).
func (k EventKey) Slug() string {
	ts := "unknown-time"
	if !k.StartTime.IsZero() {
		ts = k.StartTime.UTC().Format(SlugTimeLayout)
	}
	return k.Sport + "|" + k.HomeTeam + "|" + k.AwayTeam + "|" + ts
}

// Started reports whether the event start time is at or before now.
func (k EventKey) Started(now time.Time) bool {
	return !k.StartTime.IsZero() && !k.StartTime.After(now)
}

// NormalizeName lowercases s, turns slug separators into spaces and collapses whitespace.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	// pipes are the slug separator
	s = strings.ReplaceAll(s, "|", " ")
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "\\", " ")
	return strings.Join(strings.Fields(s), " ")
}
