package oddsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/oddsmath"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/storage"
)

// Source tags quotes ingested from odds-api.
const Source = "oddsapi"

// handleFrame splits a frame into newline-delimited messages.
func (p *Parser) handleFrame(ctx context.Context, frame []byte) {
	for _, line := range bytes.Split(frame, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			p.logger.Debug("Failed to parse odds message", "preview", truncate(string(line), 100), "error", err)
			continue
		}
		p.handleMessage(ctx, msg)
	}
}

// handleMessage applies one stream message to the store and reports how many
// quotes were inserted or updated.
func (p *Parser) handleMessage(ctx context.Context, msg Message) int {
	id := msg.ID.String()
	if id == "" {
		p.logger.Debug("Odds message without event id", "type", msg.Type)
		return 0
	}
	if !p.bookmakers[strings.ToLower(msg.Bookie)] {
		return 0
	}

	switch msg.Type {
	case MessageCreated, MessageUpdated:
	case MessageDeleted:
		if n := p.store.DeleteEventID(id); n > 0 {
			p.logger.Debug("Event deleted", "event_id", id, "quotes", n)
		}
		return 0
	default:
		return 0
	}

	details := p.client.EventDetails(ctx, id)
	if details.IsUnknown() {
		p.logger.Debug("Dropping message for unknown event", "event_id", id)
		return 0
	}
	if !p.upcoming(details.StartTime) {
		return 0
	}

	changed := 0
	for _, q := range buildQuotes(msg, details, p.markets, p.window, p.now()) {
		if p.store.Upsert(q) != storage.Unchanged {
			changed++
		}
	}
	return changed
}

// upcoming reports whether start lies within the ingestion horizon.
func (p *Parser) upcoming(start time.Time) bool {
	until := start.Sub(p.now())
	return until > 0 && until <= p.horizon
}

// buildQuotes flattens a message into quotes. Markets outside the whitelist
// and prices outside window are skipped one entry at a time.
func buildQuotes(msg Message, d models.EventDetails, markets map[string]bool, window oddsmath.Window, now time.Time) []models.Quote {
	event := models.NewEventKey(d.Sport, d.HomeTeam, d.AwayTeam, d.StartTime)

	var out []models.Quote
	for _, m := range msg.Markets {
		if !markets[m.Name] {
			continue
		}
		for _, entry := range m.Odds {
			line := entry.Hdp.Ptr()
			for _, ps := range entry.prices() {
				if !ps.price.Valid || !window.Contains(ps.price.Value) {
					continue
				}
				out = append(out, models.Quote{
					Source:          Source,
					EventID:         d.ID,
					Event:           event,
					League:          d.League,
					Market:          m.Name,
					CanonicalMarket: m.Name,
					Outcome:         models.Outcome{Code: string(ps.selection)},
					Selection:       ps.selection,
					Line:            line,
					Odds:            ps.price.Value,
					UpdatedAt:       now,
				})
			}
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
