package calculator

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/slug"
)

const (
	DefaultMatchThreshold = 65
	DefaultHorizon        = 24 * time.Hour
)

// cleanedSlugTimeLayout is models.SlugTimeLayout after slug.CleanSlug.
const cleanedSlugTimeLayout = "2006-01-02t150405z"

type slugPair struct {
	target    string
	reference string
}

// EventMatcher decides whether a target-feed slug and a reference-feed slug
// name the same real-world event. Rejected pairs are remembered for the
// lifetime of the matcher. Pairs must always be passed target first.
type EventMatcher struct {
	normalizer *slug.Normalizer
	similarity slug.Similarity
	threshold  int
	horizon    time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu     sync.RWMutex
	failed map[slugPair]struct{}
}

// MatcherOption customizes an EventMatcher.
type MatcherOption func(*EventMatcher)

// WithMatchThreshold sets the minimum home and away score (0-100).
func WithMatchThreshold(threshold int) MatcherOption {
	return func(m *EventMatcher) { m.threshold = threshold }
}

// WithHorizon sets how far ahead an event may start and still match.
func WithHorizon(horizon time.Duration) MatcherOption {
	return func(m *EventMatcher) { m.horizon = horizon }
}

// WithSimilarity replaces the team-name scorer.
func WithSimilarity(sim slug.Similarity) MatcherOption {
	return func(m *EventMatcher) { m.similarity = sim }
}

// WithNormalizer replaces the team-name normalizer.
func WithNormalizer(n *slug.Normalizer) MatcherOption {
	return func(m *EventMatcher) { m.normalizer = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MatcherOption {
	return func(m *EventMatcher) { m.now = now }
}

// WithMatcherLogger sets the logger.
func WithMatcherLogger(logger *slog.Logger) MatcherOption {
	return func(m *EventMatcher) { m.logger = logger }
}

func NewEventMatcher(opts ...MatcherOption) *EventMatcher {
	m := &EventMatcher{
		similarity: slug.TokenSortRatio,
		threshold:  DefaultMatchThreshold,
		horizon:    DefaultHorizon,
		now:        time.Now,
		logger:     slog.Default(),
		failed:     make(map[slugPair]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.normalizer == nil {
		m.normalizer = slug.NewNormalizer()
	}
	m.logger = m.logger.With("component", "matcher")
	return m
}

// Match runs the structural, temporal and fuzzy checks in order and stops at
// the first failing one. A non-empty expectedSport must equal the target sport.
func (m *EventMatcher) Match(targetSlug, referenceSlug, expectedSport string) models.MatchResult {
	pair := slugPair{target: targetSlug, reference: referenceSlug}
	if m.isFailed(pair) {
		return models.MatchResult{Cached: true}
	}

	a, err := slug.SplitSlug(slug.CleanSlug(targetSlug))
	if err != nil {
		m.logger.Debug("Skipping malformed target slug", "slug", targetSlug, "error", err)
		return models.MatchResult{}
	}
	b, err := slug.SplitSlug(slug.CleanSlug(referenceSlug))
	if err != nil {
		m.logger.Debug("Skipping malformed reference slug", "slug", referenceSlug, "error", err)
		return models.MatchResult{}
	}

	if a.Date != b.Date {
		return m.reject(pair)
	}

	start, err := time.Parse(cleanedSlugTimeLayout, a.Date)
	if err != nil {
		return m.reject(pair)
	}
	until := start.Sub(m.now())
	if until <= 0 {
		// Already started; it can only get older.
		return m.reject(pair)
	}
	if until > m.horizon {
		// Too far ahead for now. Not cached since it enters the horizon later.
		return models.MatchResult{}
	}

	if a.Sport == "" || b.Sport == "" || a.Sport != b.Sport {
		return m.reject(pair)
	}
	if expected := slug.CleanSlug(expectedSport); expected != "" && expected != a.Sport {
		return m.reject(pair)
	}

	homeA, homeB := m.normalizer.NormalizeTeam(a.Home), m.normalizer.NormalizeTeam(b.Home)
	awayA, awayB := m.normalizer.NormalizeTeam(a.Away), m.normalizer.NormalizeTeam(b.Away)
	homeScore := m.similarity.Score(homeA, homeB)
	awayScore := m.similarity.Score(awayA, awayB)

	if homeScore < m.threshold || awayScore < m.threshold {
		m.logger.Debug("Team names below threshold",
			"target", targetSlug, "reference", referenceSlug,
			"home_score", homeScore, "away_score", awayScore)
		return m.reject(pair)
	}

	m.logger.Debug("Events matched",
		"target", targetSlug, "reference", referenceSlug,
		"home_score", homeScore, "away_score", awayScore)
	return models.MatchResult{Matched: true, ResolvedSport: a.Sport}
}

// FailedPairs returns the size of the failed-match cache.
func (m *EventMatcher) FailedPairs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.failed)
}

func (m *EventMatcher) isFailed(p slugPair) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.failed[p]
	return ok
}

func (m *EventMatcher) reject(p slugPair) models.MatchResult {
	m.mu.Lock()
	m.failed[p] = struct{}{}
	m.mu.Unlock()
	return models.MatchResult{}
}
