// Package main provides the entrypoint for the statuswatch HTTP server.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/statuswatch/statuswatch/internal/api"
	"github.com/statuswatch/statuswatch/internal/api/middleware"
	"github.com/statuswatch/statuswatch/internal/config"
	"github.com/statuswatch/statuswatch/internal/mcp"
	"github.com/statuswatch/statuswatch/internal/provider/traced"
	"github.com/statuswatch/statuswatch/internal/secrets"
	"github.com/statuswatch/statuswatch/internal/status"
	"github.com/statuswatch/statuswatch/internal/status/statusgator"
	"github.com/statuswatch/statuswatch/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "statuswatch"

	configPath := flag.String("config", os.Getenv("STATUSWATCH_CONFIG"), "path to YAML config file")
	flag.Parse()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		log = log.Level(level)
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("addr", cfg.Server.Addr).
		Msg("starting statuswatch")

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Telemetry.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// One traced client is shared by every upstream binding; the credential
	// varies per request, the transport does not.
	httpClient := traced.NewClient(traced.ClientConfig{
		Name:    statusgator.ProviderName,
		Timeout: cfg.Upstream.Timeout,
		Logger:  log,
	})

	factory := func(apiKey string) *status.Service {
		gw := statusgator.NewClient(statusgator.ClientConfig{
			APIKey:     apiKey,
			BaseURL:    cfg.Upstream.BaseURL,
			HTTPClient: httpClient,
			Logger:     log,
		})
		return status.NewService(status.ServiceConfig{
			Gateway: gw,
			Logger:  log,
		})
	}

	handler := mcp.NewHandler(mcp.HandlerConfig{
		Dispatcher: mcp.NewDispatcher(factory, log),
		Secrets:    secrets.NewLoader(secrets.LoaderConfig{}),
		Logger:     log,
		Version:    Version,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Logger:    log,
		Metrics:   metrics,
		Handler:   handler,
		RateLimit: middleware.RateLimitConfig{
			RequestLimit: cfg.RateLimit.RequestLimit,
			WindowLength: cfg.RateLimit.Window,
		},
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
