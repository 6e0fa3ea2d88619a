package storage

import (
	"sync"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

// UpsertResult reports what Upsert did with a quote.
type UpsertResult int

const (
	Unchanged UpsertResult = iota
	Inserted
	Updated
)

func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// QuoteStore holds the latest quote per composite key for one feed.
// Entries keep their insertion position; an update rewrites the entry in place.
type QuoteStore struct {
	source string

	mu     sync.Mutex
	quotes []models.Quote
	index  map[string]int
}

// NewQuoteStore creates an empty store for the given feed.
func NewQuoteStore(source string) *QuoteStore {
	return &QuoteStore{
		source: source,
		index:  make(map[string]int),
	}
}

// Source is the feed name this store belongs to.
func (s *QuoteStore) Source() string {
	return s.source
}

// Upsert inserts q or, when its composite key is already present, replaces the
// stored price and mutable fields without moving the entry.
func (s *QuoteStore) Upsert(q models.Quote) UpsertResult {
	key := q.CompositeKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[key]
	if !ok {
		s.index[key] = len(s.quotes)
		s.quotes = append(s.quotes, q)
		return Inserted
	}

	prev := s.quotes[i]
	s.quotes[i] = q
	if prev.Odds == q.Odds {
		return Unchanged
	}
	return Updated
}

// Get returns the quote stored under key.
func (s *QuoteStore) Get(key string) (models.Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[key]
	if !ok {
		return models.Quote{}, false
	}
	return s.quotes[i], true
}

// Snapshot returns a copy of all quotes in insertion order.
func (s *QuoteStore) Snapshot() []models.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Quote, len(s.quotes))
	copy(out, s.quotes)
	return out
}

// Len returns the number of live quotes.
func (s *QuoteStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}

// DeleteEvent removes every quote of the event with the given slug.
func (s *QuoteStore) DeleteEvent(eventSlug string) int {
	return s.Prune(func(q models.Quote) bool {
		return q.Event.Slug() == eventSlug
	})
}

// DeleteEventID removes every quote carrying the feed-native event id.
func (s *QuoteStore) DeleteEventID(eventID string) int {
	return s.Prune(func(q models.Quote) bool {
		return q.EventID == eventID
	})
}

// Prune removes every quote for which drop returns true and returns how many were removed.
func (s *QuoteStore) Prune(drop func(models.Quote) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.quotes[:0]
	removed := 0
	for _, q := range s.quotes {
		if drop(q) {
			removed++
			continue
		}
		kept = append(kept, q)
	}
	if removed == 0 {
		return 0
	}
	// Zero the tail so dropped quotes can be collected.
	for i := len(kept); i < len(s.quotes); i++ {
		s.quotes[i] = models.Quote{}
	}
	s.quotes = kept

	s.index = make(map[string]int, len(kept))
	for i, q := range kept {
		s.index[q.CompositeKey()] = i
	}
	return removed
}
