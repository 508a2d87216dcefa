// Package httpapi assembles the chi router for the public API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mediagen/internal/http/handlers"
	"mediagen/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSOrigins),
		middleware.I18N(app.Config.DefaultLocale),
	)
	if app.Config.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute, app.Logger))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/backends", app.Backends)
	r.Post("/v1/select", app.SelectBackend)
	r.Post("/v1/images", app.ImagesGenerate)
	r.Post("/v1/videos", app.VideosGenerate)
	r.Get("/v1/tasks", app.TaskList)
	r.Get("/v1/tasks/{id}", app.TaskStatus)
	r.Post("/v1/plans", app.PlansGenerate)

	if app.Config.StoragePath != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(app.Config.StoragePath)))
		r.Handle("/static/*", fs)
	}

	return r
}
