// Package api provides the HTTP API for RunwayReady.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/runwayready/runwayready/internal/api/handler"
	"github.com/runwayready/runwayready/internal/api/middleware"
	"github.com/runwayready/runwayready/internal/api/models"
	"github.com/runwayready/runwayready/internal/recommend"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Engine computes arrival recommendations. Required.
	Engine *recommend.Engine

	// Busyness supplies the optional traffic factor for risk scoring.
	Busyness handler.BusynessService

	// ProviderStatus reports upstream source health for /v1/ops/status.
	ProviderStatus func() []models.ProviderStatus
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "runwayready-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ProviderStatus)
	metadataHandler := handler.NewMetadataHandler()
	recommendHandler := handler.NewRecommendHandler(cfg.Engine, cfg.Logger)
	riskHandler := handler.NewRiskHandler(cfg.Busyness, cfg.Logger)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Metadata endpoints (public) - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/airlines", metadataHandler.ListAirlines)
			r.Get("/airports", metadataHandler.ListAirports)
		})

		// Recommendation endpoint - may hit live wait sources, strict rate limiting
		r.With(expensiveRateLimit).Post("/recommendations:compute", recommendHandler.Compute)

		// Risk endpoint - table-driven scoring, standard rate limiting
		r.With(standardRateLimit).Post("/risk:assess", riskHandler.Assess)
	})

	return r
}
