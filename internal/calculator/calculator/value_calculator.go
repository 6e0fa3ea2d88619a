package calculator

import (
	"strings"
	"sync"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/oddsmath"
)

// DefaultMinValuePercent is the minimum edge for an actionable candidate.
const DefaultMinValuePercent = 1.0

// DefaultMinLead is the minimum time left before kickoff for a candidate, per
// sport slug. Unlisted sports only need to be before kickoff.
var DefaultMinLead = map[string]time.Duration{
	"tennis":            45 * time.Minute,
	"football":          2 * time.Minute,
	"basketball":        2 * time.Minute,
	"baseball":          2 * time.Minute,
	"american-football": 2 * time.Minute,
	"ice-hockey":        2 * time.Minute,
	"esports":           2 * time.Minute,
	"handball":          2 * time.Minute,
	"rugby":             2 * time.Minute,
	"volleyball":        2 * time.Minute,
}

// ValueCalculator computes the edge of a target price over a reference price
// and remembers which events already produced a candidate.
type ValueCalculator struct {
	minValuePercent float64
	minLead         map[string]time.Duration

	mu        sync.Mutex
	processed map[string]time.Time
}

// ValueOption customizes a ValueCalculator.
type ValueOption func(*ValueCalculator)

// WithMinLead replaces the per-sport kickoff lead. Keys are sport slugs.
func WithMinLead(lead map[string]time.Duration) ValueOption {
	return func(v *ValueCalculator) {
		v.minLead = make(map[string]time.Duration, len(lead))
		for sport, d := range lead {
			v.minLead[strings.ToLower(strings.TrimSpace(sport))] = d
		}
	}
}

func NewValueCalculator(minValuePercent float64, opts ...ValueOption) *ValueCalculator {
	v := &ValueCalculator{
		minValuePercent: minValuePercent,
		minLead:         DefaultMinLead,
		processed:       make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ComputeEdge returns (target-reference)/reference*100 rounded to two places.
func (v *ValueCalculator) ComputeEdge(target, reference float64) (float64, error) {
	return oddsmath.Edge(target, reference)
}

// Actionable reports whether edge clears the minimum value percent.
func (v *ValueCalculator) Actionable(edge float64) bool {
	return edge >= v.minValuePercent
}

// MinValuePercent returns the configured gate.
func (v *ValueCalculator) MinValuePercent() float64 {
	return v.minValuePercent
}

// BeforeKickoff reports whether an event of sport starting at start is still
// far enough from kickoff at now to act on. The lead must be strictly exceeded.
func (v *ValueCalculator) BeforeKickoff(sport string, start, now time.Time) bool {
	if start.IsZero() {
		return false
	}
	return start.Sub(now) > v.minLead[strings.ToLower(strings.TrimSpace(sport))]
}

// Processed reports whether a candidate was already emitted for the event.
func (v *ValueCalculator) Processed(eventSlug string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.processed[eventSlug]
	return ok
}

// MarkProcessed records that the event produced a candidate.
func (v *ValueCalculator) MarkProcessed(eventSlug string, at time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.processed[eventSlug]; !ok {
		v.processed[eventSlug] = at
	}
}

// ProcessedCount returns the number of handled events.
func (v *ValueCalculator) ProcessedCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.processed)
}
