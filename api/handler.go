// Package api wires the HTTP surface: health, metrics and the subscription
// endpoints the web layer calls.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isirwatch/backend/api/controllers"
	"github.com/isirwatch/backend/api/handlers"
	"github.com/isirwatch/backend/api/middleware"
	"github.com/isirwatch/backend/internal/subscriptions"
	"github.com/isirwatch/backend/pkg/config"
	"github.com/isirwatch/backend/pkg/logger"
)

// NewHandler returns the HTTP handler that cmd/api wires into its server.
func NewHandler(cfg *config.Config, logg *logger.Logger, subs *subscriptions.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/healthz", handlers.Healthz(cfg, logg))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1/subscriptions", func(r chi.Router) {
		r.Get("/", controllers.SubscriptionsList(subs, logg))
		r.Post("/", controllers.SubscriptionsCreate(subs, logg))
		r.Post("/import", controllers.SubscriptionsImport(subs, logg))
		r.Get("/{id}", controllers.SubscriptionsGet(subs, logg))
		r.Delete("/{id}", controllers.SubscriptionsDelete(subs, logg))
	})

	return r
}

// NewOpsHandler returns the minimal handler the background workers expose:
// liveness and Prometheus metrics only.
func NewOpsHandler(cfg *config.Config, logg *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))

	r.Get("/healthz", handlers.Healthz(cfg, logg))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
