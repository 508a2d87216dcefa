package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mediagen/internal/backend"
	"mediagen/internal/middleware"
	"mediagen/internal/providers/video"
)

const defaultVideoDuration = 8 * time.Second

type videoGenerateRequest struct {
	Prompt          string  `json:"prompt"`
	DurationSeconds float64 `json:"duration_seconds"`
	Priority        string  `json:"priority"`
	Backend         string  `json:"backend"`
}

// VideosGenerate submits an asynchronous video generation. When the request
// names no backend, one is selected from the priority and duration; the
// selection is echoed so the routing stays visible to the caller.
func (a *App) VideosGenerate(w http.ResponseWriter, r *http.Request) {
	var req videoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "invalid_prompt", "prompt is required")
		return
	}
	if req.DurationSeconds < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "duration_seconds must not be negative")
		return
	}
	duration := time.Duration(req.DurationSeconds * float64(time.Second))
	if duration == 0 {
		duration = defaultVideoDuration
	}

	var chosen backend.VideoBackend
	var selection *backend.Selection
	if req.Backend != "" {
		spec, ok := backend.Lookup(req.Backend)
		if !ok || spec.Kind != backend.KindVideo {
			a.error(w, http.StatusBadRequest, "bad_request", "unsupported video backend")
			return
		}
		chosen = backend.VideoBackend(req.Backend)
	} else {
		sel := backend.Select(duration, backend.NormalizePriority(req.Priority))
		selection = &sel
		chosen = sel.Backend
	}

	provider, ok := a.Videos[chosen]
	if !ok {
		a.error(w, http.StatusServiceUnavailable, "backend_unavailable", "video backend is not wired")
		return
	}

	task, err := provider.Submit(r.Context(), video.SubmitRequest{
		Prompt:    req.Prompt,
		Duration:  duration,
		Backend:   chosen,
		RequestID: middleware.RequestIDFromContext(r.Context()),
		Locale:    middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("backend", string(chosen)).Msg("video submission failed")
		a.error(w, http.StatusBadGateway, "provider_failed", err.Error())
		return
	}
	a.Tasks.Register(task, provider)

	resp := map[string]any{"task": task}
	if selection != nil {
		resp["selection"] = selection
	}
	a.json(w, http.StatusAccepted, resp)
}
