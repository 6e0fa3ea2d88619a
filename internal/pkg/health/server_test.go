package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/health/handlers"
	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPingAndHealth(t *testing.T) {
	r := NewRouter("valuebet", handlers.Providers{})

	if rec := get(t, r, "/ping"); rec.Code != http.StatusOK || rec.Body.String() != "pong\n" {
		t.Errorf("/ping = %d %q", rec.Code, rec.Body.String())
	}

	rec := get(t, r, "/health")
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || body["status"] != "ok" || body["service"] != "valuebet" {
		t.Errorf("/health = %d %v", rec.Code, body)
	}
}

func TestMetrics(t *testing.T) {
	r := NewRouter("valuebet", handlers.Providers{
		Stats:        func() any { return map[string]int{"passes": 7} },
		StoreSizes:   func() map[string]int { return map[string]int{"oddsapi": 3, "boltodds": 5} },
		QueueLengths: func() map[string]int { return map[string]int{"telegram": 2} },
	})
	rec := get(t, r, "/metrics")
	var body struct {
		Correlation map[string]int `json:"correlation"`
		Stores      map[string]int `json:"stores"`
		Queues      map[string]int `json:"queues"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Correlation["passes"] != 7 || body.Stores["boltodds"] != 5 || body.Queues["telegram"] != 2 {
		t.Errorf("/metrics = %s", rec.Body.String())
	}
}

func TestValueBets(t *testing.T) {
	var gotLimit int
	r := NewRouter("valuebet", handlers.Providers{
		RecentValueBets: func(_ context.Context, limit int) ([]models.ValueBetCandidate, error) {
			gotLimit = limit
			return []models.ValueBetCandidate{{ID: "b"}, {ID: "a"}}, nil
		},
	})

	rec := get(t, r, "/value-bets?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("/value-bets = %d", rec.Code)
	}
	var body struct {
		Count     int                        `json:"count"`
		ValueBets []models.ValueBetCandidate `json:"value_bets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if gotLimit != 1 || body.Count != 1 || body.ValueBets[0].ID != "b" {
		t.Errorf("limit = %d, body = %+v", gotLimit, body)
	}

	if rec := get(t, r, "/value-bets?limit=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("/value-bets?limit=abc = %d, want 400", rec.Code)
	}
	get(t, r, "/value-bets?limit=100000")
	if gotLimit != 500 {
		t.Errorf("limit capped to %d, want 500", gotLimit)
	}
}

func TestValueBetsErrors(t *testing.T) {
	r := NewRouter("valuebet", handlers.Providers{})
	if rec := get(t, r, "/value-bets"); rec.Code != http.StatusNotImplemented {
		t.Errorf("/value-bets without provider = %d, want 501", rec.Code)
	}

	r = NewRouter("valuebet", handlers.Providers{
		RecentValueBets: func(context.Context, int) ([]models.ValueBetCandidate, error) {
			return nil, errors.New("db down")
		},
	})
	rec := get(t, r, "/value-bets")
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "db down") {
		t.Errorf("/value-bets = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRunRequiresAddr(t *testing.T) {
	if err := Run(context.Background(), "", "valuebet", handlers.Providers{}, 0); err == nil {
		t.Error("Run() error = nil without addr")
	}
}
