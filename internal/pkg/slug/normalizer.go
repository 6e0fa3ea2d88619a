// Package slug canonicalizes free-text league, team and event identifiers so
// that two feeds naming the same thing differently produce comparable tokens.
package slug

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

// DefaultThreshold is the minimum fuzzy score accepted by dictionary lookups.
const DefaultThreshold = 70

var (
	slugStrip     = regexp.MustCompile(`[^a-z0-9\s\-|]`)
	nameStrip     = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaces        = regexp.MustCompile(`\s+`)
	hyphens       = regexp.MustCompile(`-+`)
	hyphenPipe    = regexp.MustCompile(`-\|`)
	pipeHyphen    = regexp.MustCompile(`\|-`)
	leagueMarkers = strings.NewReplacer("(m)", "men", "(w)", "women", "tennis", "", "international clubs", "")
)

// CleanSlug lowercases raw, keeps only alphanumerics, whitespace, hyphens and
// pipes, turns whitespace runs into single hyphens and drops hyphens next to
// pipes. Leading and trailing hyphens are trimmed, so padded input such as
// "  Real Madrid " yields "real-madrid".
func CleanSlug(raw string) string {
	s := strings.ToLower(raw)
	s = slugStrip.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " ", "-")
	s = hyphens.ReplaceAllString(s, "-")
	s = hyphenPipe.ReplaceAllString(s, "|")
	s = pipeHyphen.ReplaceAllString(s, "|")
	return strings.Trim(s, "-")
}

// SlugParts is a cleaned slug split into its four fields.
type SlugParts struct {
	Sport string
	Home  string
	Away  string
	Date  string
}

// SplitSlug splits a cleaned slug into exactly four pipe-delimited fields.
func SplitSlug(cleaned string) (SlugParts, error) {
	fields := strings.Split(cleaned, "|")
	if len(fields) != 4 {
		return SlugParts{}, fmt.Errorf("%w: %q has %d fields", models.ErrMalformedSlug, cleaned, len(fields))
	}
	return SlugParts{Sport: fields[0], Home: fields[1], Away: fields[2], Date: fields[3]}, nil
}

func cleanName(s string) string {
	s = nameStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	return strings.ReplaceAll(s, " ", "-")
}

// Normalizer canonicalizes league and team names with an exact lookup followed
// by a fuzzy fallback. It is safe for concurrent use once constructed.
type Normalizer struct {
	leagues       map[string]string
	teams         map[string]string
	sportByLeague map[string]string
	leagueKeys    []string
	teamKeys      []string
	threshold     int
	similarity    Similarity
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithThreshold sets the minimum fuzzy score (0-100) for dictionary fallbacks.
func WithThreshold(threshold int) Option {
	return func(n *Normalizer) { n.threshold = threshold }
}

// WithSimilarity replaces the fuzzy scorer.
func WithSimilarity(sim Similarity) Option {
	return func(n *Normalizer) { n.similarity = sim }
}

// WithLeagueMap replaces the league dictionary.
func WithLeagueMap(m map[string]string) Option {
	return func(n *Normalizer) { n.leagues = m }
}

// WithTeamMap replaces the team dictionary.
func WithTeamMap(m map[string]string) Option {
	return func(n *Normalizer) { n.teams = m }
}

// WithSportByLeague replaces the league to sport dictionary.
func WithSportByLeague(m map[string]string) Option {
	return func(n *Normalizer) { n.sportByLeague = m }
}

// NewNormalizer builds a Normalizer over the default dictionaries.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		leagues:       DefaultLeagueMap,
		teams:         DefaultTeamMap,
		sportByLeague: DefaultSportByLeague,
		threshold:     DefaultThreshold,
		similarity:    TokenSortRatio,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.leagueKeys = keys(n.leagues)
	n.teamKeys = keys(n.teams)
	return n
}

// NormalizeLeague returns the canonical league slug for raw, or the cleaned
// input when neither lookup succeeds.
func (n *Normalizer) NormalizeLeague(raw string) string {
	s := leagueMarkers.Replace(strings.ToLower(raw))
	return n.lookup(cleanName(s), n.leagues, n.leagueKeys)
}

// NormalizeTeam returns the canonical team slug for raw, or the cleaned input
// when neither lookup succeeds.
func (n *Normalizer) NormalizeTeam(raw string) string {
	if raw == "" {
		return ""
	}
	return n.lookup(cleanName(strings.ToLower(raw)), n.teams, n.teamKeys)
}

// SportForLeague maps a canonical league slug to its sport slug.
func (n *Normalizer) SportForLeague(league string) (string, bool) {
	sport, ok := n.sportByLeague[strings.ToLower(strings.TrimSpace(league))]
	return sport, ok
}

func (n *Normalizer) lookup(cleaned string, dict map[string]string, dictKeys []string) string {
	if cleaned == "" {
		return ""
	}
	if v, ok := dict[cleaned]; ok {
		return v
	}
	if best, score, ok := BestMatch(n.similarity, cleaned, dictKeys); ok && score >= n.threshold {
		return dict[best]
	}
	return cleaned
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
