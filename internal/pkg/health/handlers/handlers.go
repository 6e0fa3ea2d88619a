package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/models"
)

// Providers supplies the live state the endpoints report. Nil funcs are skipped.
type Providers struct {
	// Stats returns the correlation loop statistics.
	Stats func() any
	// StoreSizes returns quote counts keyed by feed.
	StoreSizes func() map[string]int
	// QueueLengths returns pending messages keyed by notifier.
	QueueLengths func() map[string]int
	// RecentValueBets returns the newest emitted candidates first.
	RecentValueBets func(ctx context.Context, limit int) ([]models.ValueBetCandidate, error)
}

const maxValueBetLimit = 500

type Handler struct {
	service string
	started time.Time
	p       Providers
}

func New(service string, p Providers) *Handler {
	return &Handler{service: service, started: time.Now(), p: p}
}

// HandlePing handles /ping endpoint
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong\n"))
}

// HandleHealth handles /health endpoint
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        h.service,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"timestamp":      time.Now().UTC(),
	})
}

// HandleMetrics handles /metrics endpoint
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{}
	if h.p.Stats != nil {
		out["correlation"] = h.p.Stats()
	}
	if h.p.StoreSizes != nil {
		out["stores"] = h.p.StoreSizes()
	}
	if h.p.QueueLengths != nil {
		out["queues"] = h.p.QueueLengths()
	}
	respondJSON(w, http.StatusOK, out)
}

// HandleValueBets handles /value-bets; query param limit (default 100).
func (h *Handler) HandleValueBets(w http.ResponseWriter, r *http.Request) {
	if h.p.RecentValueBets == nil {
		respondError(w, http.StatusNotImplemented, "value bets are not available", nil)
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = min(n, maxValueBetLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	bets, err := h.p.RecentValueBets(ctx, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load value bets", err)
		return
	}
	if len(bets) > limit {
		bets = bets[:limit]
	}
	if bets == nil {
		bets = []models.ValueBetCandidate{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":      len(bets),
		"value_bets": bets,
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

func respondError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]string{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	respondJSON(w, status, body)
}
