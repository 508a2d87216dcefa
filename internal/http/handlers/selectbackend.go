package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"mediagen/internal/backend"
)

type selectRequest struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Priority        string  `json:"priority"`
}

type selectResponse struct {
	Backend              string  `json:"backend"`
	Justification        string  `json:"justification"`
	EstimatedTimeSeconds float64 `json:"estimated_time_seconds"`
	EstimatedCostUSD     float64 `json:"estimated_cost_usd"`
	Priority             string  `json:"priority"`
}

// SelectBackend resolves the video backend for a duration and priority
// without starting a generation.
func (a *App) SelectBackend(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.DurationSeconds < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "duration_seconds must not be negative")
		return
	}
	priority := backend.NormalizePriority(req.Priority)
	sel := backend.Select(time.Duration(req.DurationSeconds*float64(time.Second)), priority)
	a.json(w, http.StatusOK, selectResponse{
		Backend:              string(sel.Backend),
		Justification:        sel.Justification,
		EstimatedTimeSeconds: sel.EstimatedTime.Seconds(),
		EstimatedCostUSD:     sel.EstimatedCost,
		Priority:             string(priority),
	})
}
