package oddsapi

import (
	"fmt"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/parserutil"
)

// Event is one catalog entry of GET /events and GET /events/{id}.
type Event struct {
	ID   parserutil.ID `json:"id"`
	Home string        `json:"home"`
	Away string        `json:"away"`
	Date string        `json:"date"`

	Sport  Slugged `json:"sport"`
	League Slugged `json:"league"`
}

type Slugged struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (e Event) Details() (models.EventDetails, error) {
	start, err := time.Parse(time.RFC3339, e.Date)
	if err != nil {
		return models.EventDetails{}, fmt.Errorf("failed to parse event %s date %q: %w", e.ID, e.Date, err)
	}
	return models.EventDetails{
		ID:        e.ID.String(),
		Sport:     e.Sport.Slug,
		League:    e.League.Slug,
		HomeTeam:  e.Home,
		AwayTeam:  e.Away,
		StartTime: start.UTC(),
	}, nil
}

// Message types pushed on the odds stream.
const (
	MessageCreated = "created"
	MessageUpdated = "updated"
	MessageDeleted = "deleted"
)

// Message is one line of the odds stream.
type Message struct {
	ID      parserutil.ID `json:"id"`
	Bookie  string        `json:"bookie"`
	Type    string        `json:"type"`
	Markets []Market      `json:"markets"`
}

type Market struct {
	Name string      `json:"name"`
	Odds []OddsEntry `json:"odds"`
}

// OddsEntry is one priced line of a market; hdp is the handicap or total.
type OddsEntry struct {
	Hdp   parserutil.Number `json:"hdp"`
	Home  parserutil.Number `json:"home"`
	Away  parserutil.Number `json:"away"`
	Draw  parserutil.Number `json:"draw"`
	Over  parserutil.Number `json:"over"`
	Under parserutil.Number `json:"under"`
}

type pricedSelection struct {
	selection models.Selection
	price     parserutil.Number
}

func (e OddsEntry) prices() []pricedSelection {
	return []pricedSelection{
		{models.SelectionHome, e.Home},
		{models.SelectionAway, e.Away},
		{models.SelectionDraw, e.Draw},
		{models.SelectionOver, e.Over},
		{models.SelectionUnder, e.Under},
	}
}
