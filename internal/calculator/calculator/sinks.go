package calculator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/storage"
)

// MultiSink fans a candidate out to every sink. A failing sink does not stop the others.
type MultiSink struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewMultiSink(logger *slog.Logger, sinks ...Sink) *MultiSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiSink{sinks: sinks, logger: logger}
}

func (m *MultiSink) Name() string { return "multi" }

// Add appends a sink.
func (m *MultiSink) Add(s Sink) {
	m.sinks = append(m.sinks, s)
}

// Names lists the configured sinks.
func (m *MultiSink) Names() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return names
}

func (m *MultiSink) Emit(ctx context.Context, c models.ValueBetCandidate) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, c); err != nil {
			m.logger.Error("Sink failed", "sink", s.Name(), "id", c.ID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// LogSink writes every candidate as a structured record.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "valuebets")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Emit(_ context.Context, c models.ValueBetCandidate) error {
	s.logger.Info("Value bet emitted",
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
		"discovered_at", c.DiscoveredAt,
	)
	return nil
}

// RecentSink keeps the last N candidates in memory, newest first on read.
type RecentSink struct {
	mu    sync.RWMutex
	ring  []models.ValueBetCandidate
	next  int
	count int
}

func NewRecentSink(capacity int) *RecentSink {
	if capacity <= 0 {
		capacity = 100
	}
	return &RecentSink{ring: make([]models.ValueBetCandidate, capacity)}
}

func (s *RecentSink) Name() string { return "recent" }

func (s *RecentSink) Emit(_ context.Context, c models.ValueBetCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring[s.next] = c
	s.next = (s.next + 1) % len(s.ring)
	if s.count < len(s.ring) {
		s.count++
	}
	return nil
}

// Recent returns the stored candidates, newest first.
func (s *RecentSink) Recent() []models.ValueBetCandidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ValueBetCandidate, 0, s.count)
	for i := 1; i <= s.count; i++ {
		out = append(out, s.ring[(s.next-i+len(s.ring))%len(s.ring)])
	}
	return out
}

// StorageSink persists candidates.
type StorageSink struct {
	storage storage.ValueBetStorage
}

func NewStorageSink(st storage.ValueBetStorage) *StorageSink {
	return &StorageSink{storage: st}
}

func (s *StorageSink) Name() string { return "postgres" }

func (s *StorageSink) Emit(ctx context.Context, c models.ValueBetCandidate) error {
	_, err := s.storage.StoreValueBet(ctx, &c)
	return err
}

// PublisherSink forwards candidates to a stream or topic.
type PublisherSink struct {
	name      string
	publisher storage.ValueBetPublisher
}

func NewPublisherSink(name string, p storage.ValueBetPublisher) *PublisherSink {
	return &PublisherSink{name: name, publisher: p}
}

func (s *PublisherSink) Name() string { return s.name }

func (s *PublisherSink) Emit(ctx context.Context, c models.ValueBetCandidate) error {
	return s.publisher.PublishValueBet(ctx, &c)
}
