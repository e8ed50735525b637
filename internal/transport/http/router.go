package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"chocoapi/internal/handler"
	"chocoapi/internal/metrics"
	"chocoapi/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	RegisterHandler *handler.RegisterHandler
	// RateLimiter guards /register; nil disables limiting
	RateLimiter *middleware.RateLimiter
	// Metrics enables request metrics and /metrics; may be nil
	Metrics *metrics.Metrics
}

// NewRouter creates and configures a new Chi router
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
		r.Method("GET", "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/health_check", handler.HealthCheck)

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		r.Post("/register", cfg.RegisterHandler.Register)
	})

	return r
}
