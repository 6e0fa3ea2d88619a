package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/config"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

// Ensure PostgresValueBetStorage implements ValueBetStorage
var _ ValueBetStorage = (*PostgresValueBetStorage)(nil)

// PostgresValueBetStorage logs emitted candidates in PostgreSQL.
type PostgresValueBetStorage struct {
	db *sql.DB
}

// NewPostgresValueBetStorage opens the connection and creates the table if needed.
func NewPostgresValueBetStorage(cfg *config.PostgresConfig) (*PostgresValueBetStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresValueBetStorage{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL value bet storage initialized")
	return s, nil
}

func (s *PostgresValueBetStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS value_bets (
		id SERIAL PRIMARY KEY,
		candidate_id UUID NOT NULL UNIQUE,
		event_slug VARCHAR(500) NOT NULL,
		sport VARCHAR(100) NOT NULL,
		league VARCHAR(200) NOT NULL,
		home_team VARCHAR(200) NOT NULL,
		away_team VARCHAR(200) NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		market VARCHAR(100) NOT NULL,
		selection VARCHAR(20) NOT NULL,
		line DECIMAL(10, 4),
		target_odds DECIMAL(10, 4) NOT NULL,
		reference_odds DECIMAL(10, 4) NOT NULL,
		edge_percent DECIMAL(10, 4) NOT NULL,
		payload JSONB NOT NULL,
		discovered_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_value_bets_event_slug ON value_bets(event_slug);
	CREATE INDEX IF NOT EXISTS idx_value_bets_discovered_at ON value_bets(discovered_at DESC);
	CREATE INDEX IF NOT EXISTS idx_value_bets_edge_percent ON value_bets(edge_percent DESC);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// StoreValueBet inserts c unless a row with the same candidate id exists.
func (s *PostgresValueBetStorage) StoreValueBet(ctx context.Context, c *models.ValueBetCandidate) (bool, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return false, fmt.Errorf("failed to marshal value bet: %w", err)
	}

	var line sql.NullFloat64
	if c.Line != nil {
		line = sql.NullFloat64{Float64: *c.Line, Valid: true}
	}

	query := `
	INSERT INTO value_bets (
		candidate_id, event_slug, sport, league, home_team, away_team, start_time,
		market, selection, line, target_odds, reference_odds, edge_percent,
		payload, discovered_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (candidate_id) DO NOTHING
	RETURNING id
	`

	var id int
	err = s.db.QueryRowContext(ctx, query,
		c.ID,
		c.EventSlug(),
		c.Sport,
		c.League,
		c.HomeTeam,
		c.AwayTeam,
		c.StartTime,
		c.Market,
		string(c.Selection),
		line,
		c.TargetOdds,
		c.ReferenceOdds,
		c.EdgePercent,
		payload,
		c.DiscoveredAt,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to store value bet: %w", err)
	}
	return true, nil
}

// GetRecentValueBets returns the last stored candidates, newest first.
func (s *PostgresValueBetStorage) GetRecentValueBets(ctx context.Context, limit int) ([]models.ValueBetCandidate, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM value_bets ORDER BY discovered_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query value bets: %w", err)
	}
	defer rows.Close()

	var out []models.ValueBetCandidate
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan value bet: %w", err)
		}
		var c models.ValueBetCandidate
		if err := json.Unmarshal(payload, &c); err != nil {
			slog.Warn("Skipping undecodable value bet row", "error", err)
			continue
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate value bets: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *PostgresValueBetStorage) Close() error {
	return s.db.Close()
}
