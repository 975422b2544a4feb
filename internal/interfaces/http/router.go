// Package http assembles the REST API: the chi route tree and the server
// that runs it.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/LabelScan-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil handlers leave their routes unregistered.
type RouterConfig struct {
	ScanHandler    *handlers.ScanHandler
	CatalogHandler *handlers.CatalogHandler
	HealthHandler  *handlers.HealthHandler

	Auth        *middleware.AuthMiddleware
	CORS        *middleware.CORSConfig
	RateLimiter middleware.RateLimiter
	Recorder    middleware.RequestRecorder

	// Metrics is served at MetricsPath (default /metrics) when set.
	Metrics     http.Handler
	MetricsPath string

	Logger logging.Logger
}

// NewRouter constructs the HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(log, middleware.DefaultLoggingConfig(), cfg.Recorder))

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.Metrics)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.Auth != nil {
			api.Use(cfg.Auth.Authenticate())
		}
		if cfg.RateLimiter != nil {
			api.Use(middleware.RateLimit(cfg.RateLimiter, middleware.RateLimitConfig{}, log))
		}

		registerScanRoutes(api, cfg.ScanHandler)
		registerCatalogRoutes(api, cfg.CatalogHandler)
	})

	return r
}

func registerScanRoutes(r chi.Router, h *handlers.ScanHandler) {
	if h == nil {
		return
	}
	r.Post("/evaluate", h.Evaluate)
	r.Route("/scans", func(sr chi.Router) {
		sr.Get("/", h.List)
		sr.Post("/", h.Create)

		sr.Route("/{id}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Delete("/", h.Delete)
			item.Patch("/frequency", h.UpdateFrequency)
			item.Get("/image", h.ImageURL)
		})
	})
}

func registerCatalogRoutes(r chi.Router, h *handlers.CatalogHandler) {
	if h == nil {
		return
	}
	r.Get("/catalog", h.Get)
}

//Personal.AI order the ending
