package handlers

import (
	"net/http"

	"mediagen/internal/backend"
)

// Backends lists the static catalog of image and video backends.
func (a *App) Backends(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"images": backend.ImageBackends(),
		"videos": backend.VideoBackends(),
	})
}
