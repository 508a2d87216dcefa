package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"mediagen/internal/backend"
	"mediagen/internal/domain"
	"mediagen/internal/middleware"
	"mediagen/internal/providers/plan"
)

type planGenerateRequest struct {
	Brief           string  `json:"brief"`
	DurationSeconds float64 `json:"duration_seconds"`
	Priority        string  `json:"priority"`
	Locale          string  `json:"locale"`
}

// PlansGenerate expands a brief into a structured generation plan.
func (a *App) PlansGenerate(w http.ResponseWriter, r *http.Request) {
	if a.Planner == nil {
		a.error(w, http.StatusServiceUnavailable, "backend_unavailable", "planner is not wired")
		return
	}
	var req planGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Brief) == "" {
		a.error(w, http.StatusBadRequest, "invalid_prompt", "brief is required")
		return
	}
	locale := req.Locale
	if locale == "" {
		locale = middleware.LocaleFromContext(r.Context())
	}

	result, err := a.Planner.Plan(r.Context(), plan.Request{
		Brief:    req.Brief,
		Duration: time.Duration(req.DurationSeconds * float64(time.Second)),
		Priority: backend.NormalizePriority(req.Priority),
		Locale:   locale,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPrompt) {
			a.error(w, http.StatusBadRequest, "invalid_prompt", "brief is required")
			return
		}
		a.Logger.Error().Err(err).Msg("planning failed")
		a.error(w, http.StatusBadGateway, "provider_failed", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"plan":     result,
		"provider": result.Provider,
	})
}
