package config

import (
	"fmt"
	"os"
	"time"
)

// ServerConfig is the deployment-provided runtime configuration.
type ServerConfig struct {
	Port        string
	Environment string // "production" or "development"

	// StorageBackend selects "memory" or "postgres".
	StorageBackend string
	DatabaseURL    string

	// Identity provider admin API. When unset, identity metadata sync runs
	// against the in-memory fake (local development).
	IDPAdminURL   string
	IDPServiceKey string

	// CompletionWebhookURL receives "profile completed" events. When unset,
	// events go to the in-memory fake.
	CompletionWebhookURL string

	// PropagationTimeout bounds each best-effort propagation target.
	PropagationTimeout time.Duration
}

func LoadServerConfigFromEnv() (ServerConfig, error) {
	cfg := ServerConfig{
		Port:                 getenv("PORT", "8080"),
		Environment:          getenv("ENVIRONMENT", "production"),
		StorageBackend:       getenv("STORAGE_BACKEND", "memory"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		IDPAdminURL:          os.Getenv("IDP_ADMIN_URL"),
		IDPServiceKey:        os.Getenv("IDP_SERVICE_KEY"),
		CompletionWebhookURL: os.Getenv("COMPLETION_WEBHOOK_URL"),
		PropagationTimeout:   5 * time.Second,
	}

	if raw := os.Getenv("PROPAGATION_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("invalid PROPAGATION_TIMEOUT: %w", err)
		}
		cfg.PropagationTimeout = d
	}

	switch cfg.StorageBackend {
	case "memory", "postgres":
	default:
		return ServerConfig{}, fmt.Errorf("invalid STORAGE_BACKEND %q (want memory or postgres)", cfg.StorageBackend)
	}
	if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
		return ServerConfig{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
	}
	if cfg.IDPAdminURL != "" && cfg.IDPServiceKey == "" {
		return ServerConfig{}, fmt.Errorf("IDP_SERVICE_KEY is required when IDP_ADMIN_URL is set")
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
