package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/phishguard/internal/delivery/http/handler"
	"github.com/user/phishguard/internal/delivery/http/middleware"
	"go.uber.org/zap"
)

// New builds the API router. Submission is rate limited per caller. Everything
// except key issuance, health and metrics requires an API key.
func New(h *handler.Handler, auth middleware.Authenticator, limiter *middleware.RateLimiter, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/key", h.HandleIssueAPIKey)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKey(auth, logger))

			r.With(limiter.Middleware).Put("/urls", h.HandleSubmitURLs)
			r.Get("/stats", h.HandleStats)

			r.Route("/debug", func(r chi.Router) {
				r.Get("/pending", h.HandlePending)
				r.Get("/registry", h.HandleRecentRegistry)
				r.Post("/cycle", h.HandleTriggerCycle)
			})
		})
	})

	return r
}
