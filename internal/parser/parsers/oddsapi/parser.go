package oddsapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/parser/parsers"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/config"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/oddsmath"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/storage"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/wsclient"
)

func init() {
	parsers.Register("oddsapi", func(cfg *config.Config, deps parsers.Deps) (parsers.Parser, error) {
		return NewParser(cfg, deps)
	})
}

// Parser ingests the target feed: it keeps the upcoming-event catalog fresh
// and turns stream messages into quotes.
type Parser struct {
	cfg    config.OddsAPIConfig
	store  *storage.QuoteStore
	client *Client
	ws     *wsclient.Client
	logger *slog.Logger

	bookmakers map[string]bool
	markets    map[string]bool
	window     oddsmath.Window
	horizon    time.Duration
	now        func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewParser(cfg *config.Config, deps parsers.Deps) (*Parser, error) {
	feed := cfg.Feeds.OddsAPI
	if feed.APIKey == "" {
		return nil, fmt.Errorf("oddsapi: api key is not set")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("oddsapi: quote store is required")
	}
	logger := deps.ComponentLogger(Source)

	p := &Parser{
		cfg:        feed,
		store:      deps.Store,
		client:     NewClient(&feed, &cfg.Enrichment, deps.Details, logger),
		logger:     logger,
		bookmakers: lowerSet(feed.Bookmakers),
		markets:    make(map[string]bool, len(feed.Markets)),
		window:     oddsmath.Window{Min: cfg.ValueCalculator.MinBetOdds, Max: cfg.ValueCalculator.MaxBetOdds},
		horizon:    cfg.Matcher.Horizon,
		now:        time.Now,
	}
	for _, m := range feed.Markets {
		p.markets[m] = true
	}

	wsURL, err := streamURL(feed.WSURL, feed.APIKey)
	if err != nil {
		return nil, err
	}
	p.ws = wsclient.New(wsclient.DefaultConfig(wsURL), p, logger)
	return p, nil
}

func streamURL(raw, apiKey string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("oddsapi: invalid ws url: %w", err)
	}
	q := u.Query()
	q.Set("apiKey", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func lowerSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return out
}

func (p *Parser) GetName() string { return "OddsAPI" }

// Start loads the catalog, then streams until ctx ends or Stop is called.
func (p *Parser) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	if err := p.RefreshCatalog(ctx); err != nil {
		p.logger.Error("Initial catalog refresh failed", "error", err)
	}
	go p.refreshLoop(ctx)

	err := p.ws.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (p *Parser) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

func (p *Parser) refreshLoop(ctx context.Context) {
	interval := p.cfg.RefreshInterval
	if interval <= 0 {
		interval = 2 * time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := p.RefreshCatalog(ctx); err != nil {
				p.logger.Error("Catalog refresh failed", "error", err)
			}
		}
	}
}

// RefreshCatalog fetches every configured sport and remembers upcoming events.
// A failing sport is logged and does not stop the others.
func (p *Parser) RefreshCatalog(ctx context.Context) error {
	var total, upcoming, failed int
	for _, sport := range p.cfg.Sports {
		events, err := p.client.Events(ctx, sport)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			p.logger.Warn("Failed to fetch sport catalog", "sport", sport, "error", err)
			continue
		}
		for _, ev := range events {
			total++
			d, err := ev.Details()
			if err != nil {
				p.logger.Debug("Skipping catalog event", "event_id", ev.ID, "error", err)
				continue
			}
			if !p.upcoming(d.StartTime) {
				continue
			}
			upcoming++
			p.client.Remember(d)
		}
	}
	p.logger.Info("Event catalog refreshed", "events", total, "upcoming", upcoming, "failed_sports", failed)
	if failed > 0 && failed == len(p.cfg.Sports) {
		return fmt.Errorf("all %d sport catalogs failed", failed)
	}
	return nil
}

// OnConnect implements wsclient.Handler; the stream needs no subscription frame.
func (p *Parser) OnConnect(context.Context) error {
	p.logger.Info("Odds stream connected", "bookmakers", p.cfg.Bookmakers, "markets", len(p.markets))
	return nil
}

// OnMessage implements wsclient.Handler.
func (p *Parser) OnMessage(ctx context.Context, frame []byte) {
	p.handleFrame(ctx, frame)
}
