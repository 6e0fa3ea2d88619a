package storage

import (
	"context"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

// ValueBetStorage persists emitted value-bet candidates.
type ValueBetStorage interface {
	// StoreValueBet saves a candidate.
	// Returns true if the record was newly inserted, false if it already existed.
	StoreValueBet(ctx context.Context, c *models.ValueBetCandidate) (bool, error)

	// GetRecentValueBets returns the newest candidates first, at most limit.
	GetRecentValueBets(ctx context.Context, limit int) ([]models.ValueBetCandidate, error)

	Close() error
}

// ValueBetPublisher hands candidates to a downstream transport (stream, topic).
type ValueBetPublisher interface {
	PublishValueBet(ctx context.Context, c *models.ValueBetCandidate) error
	Close() error
}

// EventDetailsCache caches enrichment results across restarts.
type EventDetailsCache interface {
	// GetEventDetails returns ok=false on a cache miss.
	GetEventDetails(ctx context.Context, id string) (details models.EventDetails, ok bool, err error)
	SetEventDetails(ctx context.Context, details models.EventDetails) error
}
