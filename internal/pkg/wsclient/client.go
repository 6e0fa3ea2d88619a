// Package wsclient keeps a WebSocket feed connected, redialing with
// exponential backoff until its context ends.
package wsclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/retry"
)

// ErrNotConnected is returned by writes while no connection is up.
var ErrNotConnected = errors.New("websocket not connected")

// Config holds tunable parameters for a Client.
type Config struct {
	URL    string
	Header http.Header

	// ReadTimeout closes a silent connection; zero disables it.
	ReadTimeout time.Duration

	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// DefaultConfig reconnects after 1s, doubling up to 60s.
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		ReadTimeout:    90 * time.Second,
		BackoffInitial: time.Second,
		BackoffMax:     60 * time.Second,
	}
}

// Handler receives feed frames. OnConnect runs after every successful dial,
// before the first frame is read.
type Handler interface {
	OnConnect(ctx context.Context) error
	OnMessage(ctx context.Context, msg []byte)
}

// Client is a reconnecting WebSocket reader.
type Client struct {
	cfg     Config
	handler Handler
	logger  *slog.Logger
	dialer  *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn

	connects int
}

func New(cfg Config, handler Handler, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = time.Second
	}
	if cfg.BackoffMax < cfg.BackoffInitial {
		cfg.BackoffMax = cfg.BackoffInitial
	}
	return &Client{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   64 * 1024,
			WriteBufferSize:  4096,
		},
	}
}

// Run connects and reads until ctx is cancelled. Connection failures are
// logged and retried; the only returned error is ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	backoff := retry.NewPolicy(0, c.cfg.BackoffInitial, c.cfg.BackoffMax)
	delay := c.cfg.BackoffInitial

	for {
		connected, err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			delay = c.cfg.BackoffInitial
		}
		c.logger.Warn("WebSocket disconnected, reconnecting", "error", err, "retry_in", delay)

		if err := retry.Sleep(ctx, delay); err != nil {
			return err
		}
		delay = backoff.Next(delay)
	}
}

// Connects returns how many connections have been established.
func (c *Client) Connects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects
}

// WriteJSON sends v on the current connection.
func (c *Client) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	return c.conn.WriteJSON(v)
}

// Close drops the current connection; Run will redial unless its context ended.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) runOnce(ctx context.Context) (connected bool, err error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.URL, c.cfg.Header)
	if err != nil {
		if resp != nil {
			return false, fmt.Errorf("failed to dial: %w (status %d)", err, resp.StatusCode)
		}
		return false, fmt.Errorf("failed to dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connects++
	c.mu.Unlock()
	c.logger.Info("WebSocket connected")

	done := make(chan struct{})
	defer func() {
		close(done)
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()
	// Unblock ReadMessage on shutdown.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if err := c.handler.OnConnect(ctx); err != nil {
		return true, fmt.Errorf("connect hook failed: %w", err)
	}

	for {
		if c.cfg.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("failed to read: %w", err)
		}
		c.handler.OnMessage(ctx, msg)
	}
}
