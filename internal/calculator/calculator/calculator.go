package calculator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/retry"
)

// LoopConfig controls correlation loop timing.
type LoopConfig struct {
	Interval     time.Duration
	ErrorBackoff time.Duration
	Warmup       time.Duration
}

// CorrelationLoop periodically joins the target and reference quote stores,
// matching events, aligning markets and emitting value-bet candidates.
type CorrelationLoop struct {
	target    QuoteSource
	reference QuoteSource
	matcher   *EventMatcher
	mapper    *MarketMapper
	values    *ValueCalculator
	sink      Sink
	cfg       LoopConfig
	now       func() time.Time
	logger    *slog.Logger

	state atomic.Int32

	statsMu sync.RWMutex
	stats   Stats

	// unresolved composite keys already warned about; loop goroutine only
	warned map[string]struct{}
}

// LoopOption customizes a CorrelationLoop.
type LoopOption func(*CorrelationLoop)

// WithLoopClock replaces time.Now.
func WithLoopClock(now func() time.Time) LoopOption {
	return func(l *CorrelationLoop) { l.now = now }
}

// WithLoopLogger sets the logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *CorrelationLoop) { l.logger = logger }
}

func NewCorrelationLoop(target, reference QuoteSource, matcher *EventMatcher, mapper *MarketMapper,
	values *ValueCalculator, sink Sink, cfg LoopConfig, opts ...LoopOption) *CorrelationLoop {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = 5 * time.Second
	}
	l := &CorrelationLoop{
		target:    target,
		reference: reference,
		matcher:   matcher,
		mapper:    mapper,
		values:    values,
		sink:      sink,
		cfg:       cfg,
		now:       time.Now,
		logger:    slog.Default(),
		warned:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "correlator")
	return l
}

// Run waits for the warm-up, then scans, emits and sleeps until ctx is cancelled.
// A failed pass is logged and followed by the longer error backoff.
func (l *CorrelationLoop) Run(ctx context.Context) error {
	l.logger.Info("Correlation loop starting", "warmup", l.cfg.Warmup, "interval", l.cfg.Interval)
	if err := retry.Sleep(ctx, l.cfg.Warmup); err != nil {
		return nil
	}

	for {
		wait := l.cfg.Interval
		if _, err := l.Pass(ctx); err != nil {
			l.logger.Error("Correlation pass failed", "pass", l.Stats().Passes, "error", err)
			wait = l.cfg.ErrorBackoff
		}

		l.setState(StateSleeping)
		if err := retry.Sleep(ctx, wait); err != nil {
			l.setState(StateIdle)
			l.logger.Info("Correlation loop stopped")
			return nil
		}
		l.setState(StateIdle)
	}
}

// Pass runs one scan and emits its candidates. It returns how many were emitted.
func (l *CorrelationLoop) Pass(ctx context.Context) (int, error) {
	l.setState(StateScanning)
	started := l.now()

	candidates, pass, err := l.scanSafely()

	l.setState(StateSleeping)
	if err == nil {
		for _, c := range candidates {
			l.values.MarkProcessed(c.EventSlug(), c.DiscoveredAt)
			if emitErr := l.sink.Emit(ctx, c); emitErr != nil {
				l.logger.Warn("Value bet sink failed", "id", c.ID, "sink", l.sink.Name(), "error", emitErr)
			}
		}
	}

	l.statsMu.Lock()
	l.stats.Passes++
	l.stats.LastPassAt = started
	l.stats.LastPassDuration = l.now().Sub(started)
	l.stats.FailedMatchPairs = l.matcher.FailedPairs()
	l.stats.ProcessedEvents = l.values.ProcessedCount()
	if err != nil {
		l.stats.FailedPasses++
		l.stats.LastError = err.Error()
	} else {
		pass.Candidates = len(candidates)
		l.stats.TargetQuotes = pass.TargetQuotes
		l.stats.ReferenceQuotes = pass.ReferenceQuotes
		l.stats.TargetEvents = pass.TargetEvents
		l.stats.ReferenceEvents = pass.ReferenceEvents
		l.stats.MatchedPairs = pass.MatchedPairs
		l.stats.NearKickoff = pass.NearKickoff
		l.stats.Candidates = pass.Candidates
		l.stats.TotalEmitted += uint64(len(candidates))
		l.stats.LastError = ""
	}
	passNo := l.stats.Passes
	l.statsMu.Unlock()

	if err != nil {
		return 0, err
	}
	l.logger.Debug("Correlation pass done",
		"pass", passNo,
		"target_events", pass.TargetEvents,
		"reference_events", pass.ReferenceEvents,
		"matched_pairs", pass.MatchedPairs,
		"candidates", len(candidates))
	return len(candidates), nil
}

// Stats returns a copy of the latest pass statistics.
func (l *CorrelationLoop) Stats() Stats {
	l.statsMu.RLock()
	defer l.statsMu.RUnlock()
	s := l.stats
	s.State = l.State().String()
	return s
}

// State returns the current loop phase.
func (l *CorrelationLoop) State() LoopState {
	return LoopState(l.state.Load())
}

func (l *CorrelationLoop) setState(s LoopState) {
	l.state.Store(int32(s))
}

func (l *CorrelationLoop) scanSafely() (candidates []models.ValueBetCandidate, pass Stats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during scan: %v\n%s", r, debug.Stack())
		}
	}()
	return l.scan()
}

// eventGroup is every quote of one event from one feed.
type eventGroup struct {
	slug   string
	sport  string
	start  time.Time
	quotes []models.Quote

	aligned    []AlignedQuote
	alignedSet bool
}

func groupByEvent(quotes []models.Quote) []*eventGroup {
	var groups []*eventGroup
	bySlug := make(map[string]*eventGroup)
	for _, q := range quotes {
		s := q.Event.Slug()
		g, ok := bySlug[s]
		if !ok {
			g = &eventGroup{slug: s, sport: q.Event.Sport, start: q.Event.StartTime}
			bySlug[s] = g
			groups = append(groups, g)
		}
		g.quotes = append(g.quotes, q)
	}
	return groups
}

type scored struct {
	target    AlignedQuote
	reference AlignedQuote
	edge      float64
	sport     string
}

func (l *CorrelationLoop) scan() ([]models.ValueBetCandidate, Stats, error) {
	now := l.now()
	started := func(q models.Quote) bool { return q.Event.Started(now) }
	l.target.Prune(started)
	l.reference.Prune(started)

	targetGroups := groupByEvent(l.target.Snapshot())
	referenceGroups := groupByEvent(l.reference.Snapshot())

	pass := Stats{
		TargetEvents:    len(targetGroups),
		ReferenceEvents: len(referenceGroups),
	}
	for _, g := range targetGroups {
		pass.TargetQuotes += len(g.quotes)
	}
	for _, g := range referenceGroups {
		pass.ReferenceQuotes += len(g.quotes)
	}

	var candidates []models.ValueBetCandidate
	for _, tg := range targetGroups {
		if l.values.Processed(tg.slug) {
			continue
		}
		if !l.values.BeforeKickoff(tg.sport, tg.start, now) {
			pass.NearKickoff++
			continue
		}

		var best *scored
		for _, rg := range referenceGroups {
			res := l.matcher.Match(tg.slug, rg.slug, tg.sport)
			if !res.Matched {
				continue
			}
			pass.MatchedPairs++

			if s := l.bestPair(l.align(tg), l.align(rg)); s != nil && (best == nil || s.edge > best.edge) {
				s.sport = res.ResolvedSport
				best = s
			}
		}
		if best == nil {
			continue
		}

		c := models.NewValueBetCandidate(best.target.Quote, best.reference.Quote,
			best.target.Market, best.target.Selection, best.edge, now)
		if best.sport != "" {
			c.Sport = best.sport
		}
		l.logger.Info("Value bet found",
			"id", c.ID,
			"sport", c.Sport,
			"league", c.League,
			"home", c.HomeTeam,
			"away", c.AwayTeam,
			"market", c.Market,
			"selection", c.Selection.String(),
			"line", models.FormatLine(c.Line),
			"target_odds", c.TargetOdds,
			"reference_odds", c.ReferenceOdds,
			"edge_percent", c.EdgePercent,
			"start_time", c.StartTime,
		)
		candidates = append(candidates, c)
	}
	return candidates, pass, nil
}

// bestPair returns the highest actionable edge across comparable quotes.
func (l *CorrelationLoop) bestPair(targets, references []AlignedQuote) *scored {
	var best *scored
	for _, t := range targets {
		for _, r := range references {
			if !Comparable(t, r) {
				continue
			}
			edge, err := l.values.ComputeEdge(t.Quote.Odds, r.Quote.Odds)
			if err != nil {
				l.logger.Debug("Skipping pair with invalid odds", "target", t.Quote.CompositeKey(), "error", err)
				continue
			}
			if !l.values.Actionable(edge) {
				continue
			}
			if best == nil || edge > best.edge {
				best = &scored{target: t, reference: r, edge: edge}
			}
		}
	}
	return best
}

// align maps every quote of g once per pass; unresolved quotes are dropped.
func (l *CorrelationLoop) align(g *eventGroup) []AlignedQuote {
	if g.alignedSet {
		return g.aligned
	}
	g.alignedSet = true
	for _, q := range g.quotes {
		a, err := l.mapper.Align(q)
		if err != nil {
			key := q.Source + ":" + q.CompositeKey()
			if _, seen := l.warned[key]; !seen {
				l.warned[key] = struct{}{}
				l.logger.Warn("Dropping quote with unresolved selection", "source", q.Source, "key", q.CompositeKey(), "error", err)
			}
			continue
		}
		g.aligned = append(g.aligned, a)
	}
	return g.aligned
}
