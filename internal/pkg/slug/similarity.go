package slug

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two strings in [0,100].
type Similarity interface {
	Score(a, b string) int
}

// SimilarityFunc adapts a function to Similarity.
type SimilarityFunc func(a, b string) int

func (f SimilarityFunc) Score(a, b string) int { return f(a, b) }

// TokenSortRatio is the default similarity: both strings are split into
// alphanumeric tokens, sorted, re-joined and scored by normalized Indel
// distance, 200*LCS/(len(a)+len(b)) rounded down. Token order does not affect
// the score and a missing suffix ("man united" vs "manchester united") costs
// only its own length.
var TokenSortRatio Similarity = SimilarityFunc(tokenSortRatio)

// LevenshteinRatio scores sorted tokens by 1-distance/maxLen. It is stricter
// than TokenSortRatio on names that differ in length.
var LevenshteinRatio Similarity = SimilarityFunc(levenshteinRatio)

// SimilarityByName resolves a configured scorer name. Empty selects TokenSortRatio.
func SimilarityByName(name string) (Similarity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "token_sort":
		return TokenSortRatio, nil
	case "levenshtein":
		return LevenshteinRatio, nil
	default:
		return nil, fmt.Errorf("unknown similarity %q", name)
	}
}

func tokenSortRatio(a, b string) int {
	return indelRatio(sortedTokens(a), sortedTokens(b))
}

func levenshteinRatio(a, b string) int {
	a, b = sortedTokens(a), sortedTokens(b)
	if a == "" && b == "" {
		return 100
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(maxLen))))
}

func sortedTokens(s string) string {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func indelRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 200 * lcsLength(ra, rb) / total
}

// lcsLength returns the longest common subsequence length using two rows.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// BestMatch returns the choice with the highest score against query.
// Ties resolve to the lexically smallest choice; ok is false when choices is empty.
func BestMatch(sim Similarity, query string, choices []string) (best string, score int, ok bool) {
	sorted := append([]string(nil), choices...)
	sort.Strings(sorted)
	score = -1
	for _, c := range sorted {
		if s := sim.Score(query, c); s > score {
			best, score = c, s
		}
	}
	return best, score, score >= 0
}
