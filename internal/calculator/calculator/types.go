package calculator

import (
	"context"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

// QuoteSource is the read side of a feed's quote store.
type QuoteSource interface {
	Snapshot() []models.Quote
	Prune(drop func(models.Quote) bool) int
	Len() int
}

// Sink receives emitted value-bet candidates (execution, logging, alerting).
type Sink interface {
	Name() string
	Emit(ctx context.Context, c models.ValueBetCandidate) error
}

// LoopState is the correlation loop phase.
type LoopState int32

const (
	StateIdle LoopState = iota
	StateScanning
	StateSleeping
)

func (s LoopState) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateSleeping:
		return "sleeping"
	default:
		return "idle"
	}
}

// Stats describes the most recent correlation pass.
type Stats struct {
	State            string        `json:"state"`
	Passes           uint64        `json:"passes"`
	FailedPasses     uint64        `json:"failed_passes"`
	TargetQuotes     int           `json:"target_quotes"`
	ReferenceQuotes  int           `json:"reference_quotes"`
	TargetEvents     int           `json:"target_events"`
	ReferenceEvents  int           `json:"reference_events"`
	MatchedPairs     int           `json:"matched_pairs"`
	NearKickoff      int           `json:"near_kickoff"`
	Candidates       int           `json:"candidates"`
	TotalEmitted     uint64        `json:"total_emitted"`
	FailedMatchPairs int           `json:"failed_match_pairs"`
	ProcessedEvents  int           `json:"processed_events"`
	LastPassAt       time.Time     `json:"last_pass_at"`
	LastPassDuration time.Duration `json:"last_pass_duration"`
	LastError        string        `json:"last_error,omitempty"`
}
