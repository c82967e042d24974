// Package config loads environment-based configuration for the proxy
// server and the CLI client. A .env file in the working directory is
// honored when present.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Proxy holds the proxy server configuration.
type Proxy struct {
	// Port the HTTP server listens on.
	Port string

	// WAQIToken is the upstream API token. Required; it is the secret
	// the proxy exists to keep off the client.
	WAQIToken string

	// WAQIBaseURL overrides the upstream base URL (tests, mirrors).
	WAQIBaseURL string

	// NominatimBaseURL overrides the geocoder base URL.
	NominatimBaseURL string

	// Environment is the deployment environment name.
	Environment string

	// OTLPEndpoint receives traces and metrics when telemetry is on.
	OTLPEndpoint string

	// TelemetryEnabled toggles OpenTelemetry export.
	TelemetryEnabled bool
}

// LoadProxy reads the proxy configuration from the environment.
func LoadProxy() (*Proxy, error) {
	_ = godotenv.Load()

	cfg := &Proxy{
		Port:             getEnv("APP_PORT", "8080"),
		WAQIToken:        os.Getenv("WAQI_TOKEN"),
		WAQIBaseURL:      os.Getenv("WAQI_BASE_URL"),
		NominatimBaseURL: os.Getenv("NOMINATIM_BASE_URL"),
		Environment:      getEnv("APP_ENV", "development"),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
	}

	if cfg.WAQIToken == "" {
		return nil, errors.New("WAQI_TOKEN is required")
	}
	return cfg, nil
}

// CLI holds the client configuration.
type CLI struct {
	// ProxyURL is the base URL of the proxy server.
	ProxyURL string

	// StatePath is the SQLite database path for local state.
	StatePath string

	// RefreshSchedule is the cron expression for the favorites
	// refresher daemon.
	RefreshSchedule string

	// DefaultCity is looked up when no query is given and there is no
	// lookup history yet.
	DefaultCity string
}

// LoadCLI reads the client configuration from the environment.
func LoadCLI() (*CLI, error) {
	_ = godotenv.Load()

	statePath := os.Getenv("AQIPRO_STATE_PATH")
	if statePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		statePath = filepath.Join(home, ".aqipro", "state.db")
	}

	return &CLI{
		ProxyURL:        getEnv("AQIPRO_PROXY_URL", "http://localhost:8080"),
		StatePath:       statePath,
		RefreshSchedule: os.Getenv("AQIPRO_REFRESH_SCHEDULE"),
		DefaultCity:     getEnv("AQIPRO_DEFAULT_CITY", "Pune"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
