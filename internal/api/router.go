// Package api exposes an optional HTTP surface over the extraction
// pipeline: a synchronous extraction endpoint and the three-tier health
// checks every service in this stack carries.
package api

import (
	"net/http"

	"github.com/chapterforge/chapterforge/internal/health"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router wiring the extraction and health
// handlers together.
func NewRouter(extract *ExtractHandler, healthHandler *health.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/health", healthHandler.HealthHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", extract.ServeHTTP)
	})

	return r
}
