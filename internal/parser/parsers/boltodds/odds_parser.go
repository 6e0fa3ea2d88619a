package boltodds

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/oddsmath"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/storage"
)

// Source tags quotes ingested from boltodds.
const Source = "boltodds"

// handleLineUpdate stores every outcome of one update and returns how many
// quotes were inserted or updated.
func (p *Parser) handleLineUpdate(raw json.RawMessage) (int, error) {
	var u LineUpdate
	if err := json.Unmarshal(raw, &u); err != nil {
		return 0, fmt.Errorf("failed to decode line_update: %w", err)
	}

	league := p.normalizer.NormalizeLeague(u.Sport)
	sport, ok := p.normalizer.SportForLeague(league)
	if !ok {
		p.warnOnce("league:"+league, "Dropping update for unmapped league", "league", u.Sport, "normalized", league)
		return 0, nil
	}

	start, err := oddsmath.ESTToUTC(u.Info.When)
	if err != nil {
		return 0, fmt.Errorf("failed to parse start time for %s vs %s: %w", u.HomeTeam, u.AwayTeam, err)
	}
	if u.HomeTeam == "" || u.AwayTeam == "" {
		return 0, fmt.Errorf("line_update without teams")
	}

	event := models.NewEventKey(sport, u.HomeTeam, u.AwayTeam, start)
	now := p.now()

	// Stable order keeps store positions deterministic.
	keys := make([]string, 0, len(u.Outcomes))
	for k := range u.Outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	changed := 0
	for _, k := range keys {
		q, err := p.buildQuote(u, event, u.Outcomes[k], now)
		if err != nil {
			p.logger.Debug("Skipping outcome", "outcome", k, "error", err)
			continue
		}
		if p.store.Upsert(q) != storage.Unchanged {
			changed++
		}
	}
	return changed, nil
}

func (p *Parser) buildQuote(u LineUpdate, event models.EventKey, o Outcome, now time.Time) (models.Quote, error) {
	if !o.Odds.Valid {
		return models.Quote{}, fmt.Errorf("missing odds")
	}
	odds, err := oddsmath.AmericanToDecimal(o.Odds.Value)
	if err != nil {
		return models.Quote{}, err
	}
	outcome := models.Outcome{Target: strings.TrimSpace(o.Target)}
	if ou := strings.TrimSpace(o.OverUnder); ou != "" {
		outcome = models.Outcome{Code: ou, Target: outcome.Target}
	}
	if outcome.Token() == "" {
		return models.Quote{}, fmt.Errorf("outcome has neither side nor target")
	}

	return models.Quote{
		Source:          Source,
		Event:           event,
		League:          u.Sport,
		Market:          o.Name,
		CanonicalMarket: p.deps.MapMarket(o.Name),
		Outcome:         outcome,
		Line:            o.Line.Ptr(),
		Odds:            odds,
		UpdatedAt:       now,
	}, nil
}
