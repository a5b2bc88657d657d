// Package config loads application configuration from an optional YAML file
// and STATUSWATCH_-prefixed environment variables, environment winning.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/statuswatch/statuswatch/internal/provider/traced"
)

// envPrefix namespaces the environment variables read by Load.
const envPrefix = "STATUSWATCH_"

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// UpstreamConfig configures the StatusGator client.
type UpstreamConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	Environment  string `koanf:"environment"`
}

// RateLimitConfig configures inbound rate limiting on the RPC endpoint.
type RateLimitConfig struct {
	RequestLimit int           `koanf:"request_limit"`
	Window       time.Duration `koanf:"window"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `koanf:"level"`
}

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Upstream  UpstreamConfig  `koanf:"upstream"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Log       LogConfig       `koanf:"log"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Upstream: UpstreamConfig{
			Timeout: traced.DefaultTimeout,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			Environment:  "development",
		},
		RateLimit: RateLimitConfig{
			RequestLimit: 100,
			Window:       time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and the
// environment. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// STATUSWATCH_SERVER_ADDR → server.addr, etc. Nested keys keep a single
	// underscore-separated leaf, so only the first segment becomes a level.
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}
