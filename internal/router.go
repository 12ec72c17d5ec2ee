package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/jobq/middlewares"
	"github.com/dmitrymomot/jobq/pkg/health"
)

// routerConfig holds what newRouter mounts.
type routerConfig struct {
	queue          Queue
	logger         *slog.Logger
	metrics        http.Handler
	checks         health.Checks
	bodyLimit      int64
	requestTimeout time.Duration
	healthTimeout  time.Duration
}

// newRouter builds the HTTP surface: the queue API, health probes and,
// when configured, the metrics endpoint.
func newRouter(cfg routerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middlewares.RequestID(),
		middlewares.RequestLogger(cfg.logger),
		middlewares.Recover(cfg.logger),
	)

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(cfg.checks,
		health.WithTimeout(cfg.healthTimeout),
		health.WithLogger(cfg.logger),
	))

	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	if cfg.queue != nil {
		r.Group(func(r chi.Router) {
			r.Use(
				middlewares.BodyLimit(cfg.bodyLimit),
				middlewares.Timeout(cfg.requestTimeout),
			)
			newAPI(cfg.queue, cfg.logger).Routes(r)
		})
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return r
}
