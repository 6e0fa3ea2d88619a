package boltodds

import (
	"encoding/json"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/parserutil"
)

// Frame actions.
const (
	ActionPing       = "ping"
	ActionLineUpdate = "line_update"
)

// Frame is the envelope of every stream message.
type Frame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// LineUpdate carries every outcome of one game. Sport holds the league name.
type LineUpdate struct {
	Sport      string             `json:"sport"`
	Sportsbook string             `json:"sportsbook"`
	HomeTeam   string             `json:"home_team"`
	AwayTeam   string             `json:"away_team"`
	Info       GameInfo           `json:"info"`
	Outcomes   map[string]Outcome `json:"outcomes"`
}

type GameInfo struct {
	// When is "YYYY-MM-DD, HH:MM AM/PM" in America/New_York.
	When string `json:"when"`
}

type Outcome struct {
	Odds      parserutil.Number `json:"odds"` // American
	Name      string            `json:"outcome_name"`
	Line      parserutil.Number `json:"outcome_line"`
	OverUnder string            `json:"outcome_over_under"`
	Target    string            `json:"outcome_target"`
}

type subscribeFilters struct {
	Sportsbooks []string `json:"sportsbooks"`
	Markets     []string `json:"markets"`
}

type subscribeMessage struct {
	Action  string           `json:"action"`
	Filters subscribeFilters `json:"filters"`
}
