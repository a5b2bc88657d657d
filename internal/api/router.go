// Package api provides the HTTP transport for statuswatch.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/statuswatch/statuswatch/internal/api/handler"
	"github.com/statuswatch/statuswatch/internal/api/middleware"
	"github.com/statuswatch/statuswatch/internal/mcp"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics
	Handler   *mcp.Handler
	RateLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS)
	r.Use(middleware.ContentTypeJSON)

	rateLimit := cfg.RateLimit
	if rateLimit.RequestLimit == 0 {
		rateLimit = middleware.DefaultRPCRateLimit
	}

	metaHandler := handler.NewMetaHandler(cfg.Version, cfg.BuildTime)
	rpcHandler := handler.NewRPCHandler(cfg.Handler)

	r.Get("/", metaHandler.Describe)
	r.Get("/health", metaHandler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.With(middleware.RateLimitByIP(rateLimit)).Post("/mcp", rpcHandler.ServeRPC)

	return r
}
