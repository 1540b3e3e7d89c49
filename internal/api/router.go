// Package api exposes the analysis service over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/api/handlers"
	apimiddleware "github.com/mikey/scam-guard/internal/api/middleware"
	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
	"github.com/mikey/scam-guard/internal/metrics"
)

// Router holds dependencies for the API router
type Router struct {
	cfg      config.ServerConfig
	handlers *handlers.Handlers
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.ServerConfig, service *core.AnalysisService, m *metrics.Metrics, logger *zap.Logger) *Router {
	return &Router{
		cfg:      cfg,
		handlers: handlers.NewHandlers(service, logger),
		metrics:  m,
		logger:   logger.Named("http"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	if r.cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(r.cfg.RequestTimeout))
	}
	if r.cfg.MaxBodyBytes > 0 {
		router.Use(middleware.RequestSize(r.cfg.MaxBodyBytes))
	}
	router.Use(apimiddleware.Metrics(r.metrics))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: r.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", handlers.UserIDHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{handlers.PathHeader},
		MaxAge:         300,
	}))

	if r.cfg.RateLimit.Enabled {
		limiter := apimiddleware.NewClientLimiter(r.cfg.RateLimit.RequestsPerSecond, r.cfg.RateLimit.Burst)
		router.Use(apimiddleware.RateLimiter(limiter))
	}

	h := r.handlers
	router.Get("/", h.Info.Home)
	router.Get("/metrics", r.metrics.Handler().ServeHTTP)
	router.Get("/examples", h.Info.Examples)

	router.Route("/api", func(api chi.Router) {
		api.Get("/health", h.Info.Health)
		api.Get("/stats", h.Info.Stats)
		api.Get("/examples", h.Info.Examples)

		api.Route("/analyze", func(analyze chi.Router) {
			analyze.Post("/email", h.Analyze.Email)
			analyze.Post("/text", h.Analyze.Text)
			analyze.Post("/call", h.Analyze.Call)
			analyze.Post("/website", h.Analyze.Website)
			analyze.Post("/image", h.Analyze.Image)
		})
	})

	router.Post("/analyze", h.Freeform.Analyze)
	router.Get("/history", h.History.List)

	return router
}
