package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates the HTTP router with all API endpoints. A nil metrics
// handler leaves /metrics unrouted.
func NewRouter(h *Handler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)
	r.Use(PrivateSubnetOnly)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(JSONContentType)

		r.Get("/status", h.GetStatus)
		r.Post("/refresh", h.Refresh)
		r.Get("/messages", h.GetMessages)
		r.Get("/health", h.CheckHealth)
	})

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, r.URL.Path)
	})

	return r
}
