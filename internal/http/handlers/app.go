// Package handlers implements the HTTP API surface of the assistant.
package handlers

import (
	"encoding/json"
	"net/http"

	"mediagen/internal/backend"
	"mediagen/internal/infra"
	"mediagen/internal/providers/image"
	"mediagen/internal/providers/plan"
	"mediagen/internal/providers/video"
	"mediagen/internal/storage"
)

// App bundles the wired providers behind the HTTP handlers.
type App struct {
	Config  *infra.Config
	Logger  infra.Logger
	Images  map[backend.ImageBackend]image.Generator
	Videos  map[backend.VideoBackend]video.Provider
	Planner plan.Planner
	Tasks   *TaskRegistry
	Store   *storage.FileStore
}

// NewApp constructs the handler container with an empty task registry.
func NewApp(cfg *infra.Config, logger infra.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger,
		Images: make(map[backend.ImageBackend]image.Generator),
		Videos: make(map[backend.VideoBackend]video.Provider),
		Tasks:  NewTaskRegistry(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
