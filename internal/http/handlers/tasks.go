package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediagen/internal/domain"
)

// TaskStatus reports the current state of one submitted task, polling the
// owning provider once when the task is still running.
func (a *App) TaskStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "task id required")
		return
	}
	task, err := a.Tasks.Refresh(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "task not found")
			return
		}
		a.Logger.Error().Err(err).Str("task_id", id).Msg("task refresh failed")
		a.error(w, http.StatusBadGateway, "provider_failed", err.Error())
		return
	}

	resp := map[string]any{"task": task}
	if task.Status.Terminal() {
		if result, err := task.ToResult(); err == nil {
			resp["result"] = result
		}
	}
	a.json(w, http.StatusOK, resp)
}

// TaskList returns all tasks known to this process, newest first.
func (a *App) TaskList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.Tasks.List()})
}
