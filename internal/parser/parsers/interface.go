package parsers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/slug"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/storage"
)

// Parser is one feed ingestion activity writing into its own Quote Store.
type Parser interface {
	Start(ctx context.Context) error
	Stop() error
	GetName() string
}

// Deps are the shared collaborators handed to every parser factory.
type Deps struct {
	Store      *storage.QuoteStore
	Normalizer *slug.Normalizer

	// Details is an optional shared event-details cache (Redis).
	Details storage.EventDetailsCache

	// Markets maps feed-native market names to canonical ones; nil keeps names as sent.
	Markets MarketMapper

	Logger *slog.Logger
}

// MarketMapper resolves a feed-native market name.
type MarketMapper interface {
	MapMarket(name string) string
}

// MapMarket applies d.Markets, falling back to the trimmed name.
func (d Deps) MapMarket(name string) string {
	if d.Markets == nil {
		return strings.TrimSpace(name)
	}
	return d.Markets.MapMarket(name)
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// ComponentLogger returns the deps logger tagged with the parser component.
func (d Deps) ComponentLogger(component string) *slog.Logger {
	return d.logger().With("component", component)
}
