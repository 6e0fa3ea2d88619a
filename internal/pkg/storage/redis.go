package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/config"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

const (
	defaultStream     = "valuebets"
	defaultDetailsTTL = 6 * time.Hour
	streamMaxLen      = 10000
)

var (
	_ ValueBetPublisher = (*RedisClient)(nil)
	_ EventDetailsCache = (*RedisClient)(nil)
)

// redisCommands is the part of *redis.Client the value-bet stream and details cache use.
type redisCommands interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisClient publishes candidates to a Redis stream and caches event details.
type RedisClient struct {
	client     redisCommands
	stream     string
	detailsTTL time.Duration
}

func NewRedisClient(cfg *config.RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisClient(client, cfg.Stream, cfg.DetailsTTL), nil
}

func newRedisClient(client redisCommands, stream string, detailsTTL time.Duration) *RedisClient {
	r := &RedisClient{client: client, stream: stream, detailsTTL: detailsTTL}
	if r.stream == "" {
		r.stream = defaultStream
	}
	if r.detailsTTL <= 0 {
		r.detailsTTL = defaultDetailsTTL
	}
	return r
}

// PublishValueBet appends c to the value-bet stream.
func (r *RedisClient) PublishValueBet(ctx context.Context, c *models.ValueBetCandidate) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal value bet: %w", err)
	}

	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":   string(data),
			"id":     c.ID,
			"event":  c.EventSlug(),
			"market": c.Market,
			"edge":   c.EdgePercent,
		},
	}).Err()
}

// GetEventDetails reads cached enrichment for id.
func (r *RedisClient) GetEventDetails(ctx context.Context, id string) (models.EventDetails, bool, error) {
	data, err := r.client.Get(ctx, eventDetailsKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.EventDetails{}, false, nil
	}
	if err != nil {
		return models.EventDetails{}, false, fmt.Errorf("failed to get event details: %w", err)
	}

	var d models.EventDetails
	if err := json.Unmarshal(data, &d); err != nil {
		return models.EventDetails{}, false, fmt.Errorf("failed to unmarshal event details: %w", err)
	}
	return d, true, nil
}

// SetEventDetails caches d with the configured TTL. Unknown details are never cached.
func (r *RedisClient) SetEventDetails(ctx context.Context, d models.EventDetails) error {
	if d.IsUnknown() {
		return nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal event details: %w", err)
	}
	return r.client.Set(ctx, eventDetailsKey(d.ID), data, r.detailsTTL).Err()
}

// Close closes connection with Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}

func eventDetailsKey(id string) string {
	return "event_details:" + id
}
