package boltodds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/parser/parsers"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/config"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/slug"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/storage"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/wsclient"
)

func init() {
	parsers.Register("boltodds", func(cfg *config.Config, deps parsers.Deps) (parsers.Parser, error) {
		return NewParser(cfg, deps)
	})
}

// writer is the part of wsclient.Client the subscription needs.
type writer interface {
	WriteJSON(v any) error
}

// Parser ingests the reference feed.
type Parser struct {
	cfg        config.BoltOddsConfig
	store      *storage.QuoteStore
	normalizer *slug.Normalizer
	deps       parsers.Deps
	ws         *wsclient.Client
	out        writer
	logger     *slog.Logger
	now        func() time.Time

	// subscribed is reset on every connect; the first frame is the server ack.
	subscribed atomic.Bool

	warnMu sync.Mutex
	warned map[string]struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewParser(cfg *config.Config, deps parsers.Deps) (*Parser, error) {
	feed := cfg.Feeds.BoltOdds
	if feed.APIKey == "" {
		return nil, fmt.Errorf("boltodds: api key is not set")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("boltodds: quote store is required")
	}
	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = slug.NewNormalizer(slug.WithThreshold(cfg.Matcher.NormalizeThreshold))
	}
	logger := deps.ComponentLogger(Source)

	u, err := url.Parse(feed.WSURL)
	if err != nil {
		return nil, fmt.Errorf("boltodds: invalid ws url: %w", err)
	}
	q := u.Query()
	q.Set("key", feed.APIKey)
	u.RawQuery = q.Encode()

	p := &Parser{
		cfg:        feed,
		store:      deps.Store,
		normalizer: normalizer,
		deps:       deps,
		logger:     logger,
		now:        time.Now,
		warned:     make(map[string]struct{}),
	}
	p.ws = wsclient.New(wsclient.DefaultConfig(u.String()), p, logger)
	p.out = p.ws
	return p, nil
}

func (p *Parser) GetName() string { return "BoltOdds" }

// Start streams until ctx ends or Stop is called.
func (p *Parser) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

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

// OnConnect implements wsclient.Handler.
func (p *Parser) OnConnect(context.Context) error {
	p.subscribed.Store(false)
	return nil
}

// OnMessage implements wsclient.Handler.
func (p *Parser) OnMessage(_ context.Context, msg []byte) {
	if !p.subscribed.Load() {
		p.logger.Info("Ack message", "message", truncate(string(msg), 200))
		if err := p.subscribe(); err != nil {
			p.logger.Error("Failed to subscribe", "error", err)
			return
		}
		p.subscribed.Store(true)
		return
	}

	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		p.logger.Debug("Failed to parse frame", "preview", truncate(string(msg), 100), "error", err)
		return
	}
	switch f.Action {
	case ActionPing:
	case ActionLineUpdate:
		if _, err := p.handleLineUpdate(f.Data); err != nil {
			p.logger.Warn("Failed to process line update", "error", err)
		}
	default:
		p.logger.Debug("Ignoring frame", "action", f.Action)
	}
}

func (p *Parser) subscribe() error {
	msg := subscribeMessage{
		Action: "subscribe",
		Filters: subscribeFilters{
			Sportsbooks: p.cfg.Sportsbooks,
			Markets:     p.cfg.Markets,
		},
	}
	if err := p.out.WriteJSON(msg); err != nil {
		return err
	}
	p.logger.Info("Subscribed", "sportsbooks", p.cfg.Sportsbooks, "markets", len(p.cfg.Markets))
	return nil
}

func (p *Parser) warnOnce(key, msg string, args ...any) {
	p.warnMu.Lock()
	_, seen := p.warned[key]
	if !seen {
		p.warned[key] = struct{}{}
	}
	p.warnMu.Unlock()
	if !seen {
		p.logger.Warn(msg, args...)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
