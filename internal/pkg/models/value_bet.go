package models

import (
	"time"

	"github.com/google/uuid"
)

// Unknown is the placeholder value used when event details could not be fetched.
const Unknown = "Unknown"

// EventDetails is what the enrichment collaborator knows about one event.
type EventDetails struct {
	ID        string    `json:"id"`
	Sport     string    `json:"sport"`
	League    string    `json:"league"`
	HomeTeam  string    `json:"home"`
	AwayTeam  string    `json:"away"`
	StartTime time.Time `json:"date"`
}

// UnknownEventDetails is the sentinel returned after enrichment retries are exhausted.
func UnknownEventDetails(id string) EventDetails {
	return EventDetails{ID: id, Sport: Unknown, League: Unknown, HomeTeam: Unknown, AwayTeam: Unknown}
}

// IsUnknown reports whether d is the enrichment sentinel.
func (d EventDetails) IsUnknown() bool {
	return d.HomeTeam == Unknown || d.AwayTeam == Unknown || d.StartTime.IsZero()
}

// MatchResult is the Event Matcher verdict for one slug pair.
type MatchResult struct {
	Matched       bool   `json:"matched"`
	ResolvedSport string `json:"resolved_sport"`
	Cached        bool   `json:"cached"` // rejected from the failed-match cache
}

// ValueBetCandidate is an actionable pricing edge of the target feed over the reference feed.
type ValueBetCandidate struct {
	ID string `json:"id"`

	Sport     string    `json:"sport"`
	League    string    `json:"league"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime time.Time `json:"start_time"`

	Market    string    `json:"market"` // canonical market
	Selection Selection `json:"selection"`
	Line      *float64  `json:"line,omitempty"`

	TargetOdds    float64 `json:"target_odds"`
	ReferenceOdds float64 `json:"reference_odds"`
	EdgePercent   float64 `json:"edge_percent"`

	Target    Quote `json:"target"`
	Reference Quote `json:"reference"`

	DiscoveredAt time.Time `json:"discovered_at"`
}

// NewValueBetCandidate assembles a candidate from an aligned quote pair.
// Teams, league and start time come from the target quote.
func NewValueBetCandidate(target, reference Quote, market string, selection Selection, edge float64, now time.Time) ValueBetCandidate {
	return ValueBetCandidate{
		ID:            uuid.NewString(),
		Sport:         target.Event.Sport,
		League:        target.League,
		HomeTeam:      target.Event.HomeTeam,
		AwayTeam:      target.Event.AwayTeam,
		StartTime:     target.Event.StartTime,
		Market:        market,
		Selection:     selection,
		Line:          target.Line,
		TargetOdds:    target.Odds,
		ReferenceOdds: reference.Odds,
		EdgePercent:   edge,
		Target:        target,
		Reference:     reference,
		DiscoveredAt:  now.UTC(),
	}
}

// EventSlug is the target-feed event this candidate belongs to.
func (c ValueBetCandidate) EventSlug() string {
	return c.Target.Event.Slug()
}

// MatchName renders "home vs away".
func (c ValueBetCandidate) MatchName() string {
	return c.HomeTeam + " vs " + c.AwayTeam
}
