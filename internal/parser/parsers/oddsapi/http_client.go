package oddsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/config"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/retry"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/storage"
)

// ErrRateLimited is returned for HTTP 429 responses; the request is retried.
var ErrRateLimited = errors.New("odds-api rate limited")

// Client talks to the odds-api REST endpoints and enriches stream messages
// with event details.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	policy     retry.Policy
	remote     storage.EventDetailsCache
	logger     *slog.Logger

	mu      sync.RWMutex
	details map[string]models.EventDetails
}

func NewClient(feed *config.OddsAPIConfig, enrichment *config.EnrichmentConfig, remote storage.EventDetailsCache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := enrichment.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(feed.APIURL, "/"),
		apiKey:     feed.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		policy:     retry.NewPolicy(enrichment.MaxRetries, enrichment.InitialDelay, enrichment.MaxDelay),
		remote:     remote,
		logger:     logger,
		details:    make(map[string]models.EventDetails),
	}
}

// Events returns the catalog for one sport.
func (c *Client) Events(ctx context.Context, sport string) ([]Event, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("sport", sport)

	var out []Event
	if err := c.getJSON(ctx, "/events?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("failed to list %s events: %w", sport, err)
	}
	return out, nil
}

// Remember seeds the in-process details cache, typically from the catalog.
func (c *Client) Remember(d models.EventDetails) {
	if d.IsUnknown() {
		return
	}
	c.mu.Lock()
	c.details[d.ID] = d
	c.mu.Unlock()
}

// Cached returns details already known in-process.
func (c *Client) Cached(id string) (models.EventDetails, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.details[id]
	return d, ok
}

// EventDetails never fails: once retries are exhausted it returns
// models.UnknownEventDetails, which is not cached.
func (c *Client) EventDetails(ctx context.Context, id string) models.EventDetails {
	if d, ok := c.Cached(id); ok {
		return d
	}

	if c.remote != nil {
		d, ok, err := c.remote.GetEventDetails(ctx, id)
		if err != nil {
			c.logger.Warn("Event details cache lookup failed", "event_id", id, "error", err)
		} else if ok {
			c.Remember(d)
			return d
		}
	}

	var ev Event
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		q := url.Values{}
		q.Set("apiKey", c.apiKey)
		err := c.getJSON(ctx, "/events/"+url.PathEscape(id)+"?"+q.Encode(), &ev)
		if errors.Is(err, ErrRateLimited) {
			c.logger.Warn("Event details rate limited, backing off", "event_id", id)
		}
		return err
	})
	if err != nil {
		c.logger.Error("Failed to fetch event details", "event_id", id, "error", err)
		return models.UnknownEventDetails(id)
	}

	d, err := ev.Details()
	if err != nil {
		c.logger.Warn("Event details unusable", "event_id", id, "error", err)
		return models.UnknownEventDetails(id)
	}
	if d.ID == "" {
		d.ID = id
	}
	c.Remember(d)
	if c.remote != nil {
		if err := c.remote.SetEventDetails(ctx, d); err != nil {
			c.logger.Warn("Failed to cache event details", "event_id", id, "error", err)
		}
	}
	return d
}

// getJSON retries on 429 and transport errors; other statuses are permanent.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return retry.Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
