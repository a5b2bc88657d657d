// Package main provides the stdio MCP entrypoint for statuswatch.
// Stdout carries the protocol, so logs go to stderr.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/statuswatch/statuswatch/internal/config"
	"github.com/statuswatch/statuswatch/internal/mcp"
	"github.com/statuswatch/statuswatch/internal/provider/traced"
	"github.com/statuswatch/statuswatch/internal/secrets"
	"github.com/statuswatch/statuswatch/internal/status"
	"github.com/statuswatch/statuswatch/internal/status/statusgator"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	const serviceName = "statuswatch-stdio"

	configPath := flag.String("config", os.Getenv("STATUSWATCH_CONFIG"), "path to YAML config file")
	flag.Parse()

	log := zerolog.New(os.Stderr).
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewStdioServer(handler, log)
	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("stdio server error")
	}
}
