package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	// PersistSync saves the comparison before responding; a failed save
	// fails the request.
	PersistSync = "sync"
	// PersistAsync responds as soon as the models settle and saves in the
	// background, logging failures.
	PersistAsync = "async"
)

type Config struct {
	// Server
	Port string // default: 8080

	// Database
	PostgresDSN string

	// Cache (optional; comparison lookups skip Redis when unset)
	RedisAddr string

	// AI gateway
	GatewayURL    string
	GatewayAPIKey string

	// Persistence mode: "sync" or "async"
	PersistMode string

	// Observability
	OTELExporterType     string // "stdout" or "otlp"
	OTELExporterEndpoint string // default: "localhost:4317"
	OTELServiceVersion   string // reported on every span, default: "0.1.0"
}

func Load() (*Config, error) {
	// Load .env file if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		PostgresDSN:          os.Getenv("POSTGRES_DSN"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		GatewayURL:           getEnv("AI_GATEWAY_URL", "https://ai-gateway.vercel.sh/v1/chat/completions"),
		GatewayAPIKey:        os.Getenv("AI_GATEWAY_API_KEY"),
		PersistMode:          getEnv("PERSIST_MODE", PersistAsync),
		OTELExporterType:     getEnv("OTEL_EXPORTER_TYPE", "stdout"),
		OTELExporterEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
		OTELServiceVersion:   getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
	}

	// Validation
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	if cfg.GatewayAPIKey == "" {
		return nil, fmt.Errorf("AI_GATEWAY_API_KEY is required")
	}
	if cfg.PersistMode != PersistSync && cfg.PersistMode != PersistAsync {
		return nil, fmt.Errorf("invalid PERSIST_MODE %q (want %q or %q)", cfg.PersistMode, PersistSync, PersistAsync)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
