package calculator

import (
	"fmt"
	"strings"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

// DefaultMarketMap translates reference-feed market names into the target
// feed's taxonomy. Names absent from the map already use target naming.
var DefaultMarketMap = map[string]string{
	"Moneyline":             "ML",
	"3 Way":                 "ML",
	"Spread":                "Spread",
	"1st Half Spread":       "Spread HT",
	"1st Half Moneyline":    "ML HT",
	"Total Goals":           "Totals",
	"Total":                 "Totals",
	"Total Points":          "Totals",
	"1st Half Total Goals":  "Totals HT",
	"1st Half Total":        "Totals HT",
	"1st Half Total Points": "Totals HT",
	"1st Half Asian Spread": "Asian Handicap HT",
	"Asian Spread":          "Asian Handicap",
}

// MarketMapper aligns market names and selections of both feeds.
type MarketMapper struct {
	markets map[string]string
}

// NewMarketMapper uses DefaultMarketMap when markets is nil.
func NewMarketMapper(markets map[string]string) *MarketMapper {
	if markets == nil {
		markets = DefaultMarketMap
	}
	return &MarketMapper{markets: markets}
}

// MapMarket returns the canonical name for a feed market, or the trimmed
// input when the name is unknown.
func (m *MarketMapper) MapMarket(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := m.markets[name]; ok {
		return canonical
	}
	return name
}

// ResolveSelection turns a feed outcome encoding into a canonical side.
// Direct codes (home, over, "O") map as-is; literal team names and "draw" are
// compared case-insensitively against the event's home and away names.
func ResolveSelection(o models.Outcome, home, away string) (models.Selection, error) {
	if o.Code != "" {
		return models.ParseSelection(o.Code)
	}

	target := models.NormalizeName(o.Target)
	switch {
	case target == "":
		return models.SelectionUnknown, fmt.Errorf("%w: empty outcome", models.ErrUnresolvedSelection)
	case target == "draw":
		return models.SelectionDraw, nil
	case target == models.NormalizeName(home):
		return models.SelectionHome, nil
	case target == models.NormalizeName(away):
		return models.SelectionAway, nil
	default:
		return models.SelectionUnknown, fmt.Errorf("%w: %q is neither %q nor %q",
			models.ErrUnresolvedSelection, o.Target, home, away)
	}
}

// AlignedQuote is a quote translated into the canonical schema.
type AlignedQuote struct {
	Quote     models.Quote
	Market    string
	Selection models.Selection
}

// Align maps q's market and resolves its selection against its own event teams.
func (m *MarketMapper) Align(q models.Quote) (AlignedQuote, error) {
	sel := q.Selection
	if sel == models.SelectionUnknown {
		var err error
		sel, err = ResolveSelection(q.Outcome, q.Event.HomeTeam, q.Event.AwayTeam)
		if err != nil {
			return AlignedQuote{}, err
		}
	}
	return AlignedQuote{Quote: q, Market: m.MapMarket(q.Market), Selection: sel}, nil
}

// Comparable reports whether two aligned quotes price the same outcome:
// equal canonical market (case-insensitive), equal selection and exactly equal lines.
func Comparable(a, b AlignedQuote) bool {
	return strings.EqualFold(a.Market, b.Market) &&
		a.Selection == b.Selection &&
		models.LinesEqual(a.Quote.Line, b.Quote.Line)
}
