/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection for the settings/temp-queue structured store.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	BaseURL     string // Public base URL (e.g., http://192.168.195.6:8080)

	DBBackend DatabaseBackend
	DBDSN     string

	JWTSigningKey  string
	AttachTokenTTL time.Duration

	MetricsBind string

	// Catalog backend: "memory" is self-contained (used for local/dev runs
	// and tests); "http" delegates to a remote catalog/queue service.
	CatalogMode    string
	CatalogBaseURL string
	StreamBaseURL  string

	// Redis-backed settings KV cache (fast path reads/writes, falls back to
	// the structured store on miss or circuit-open).
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Object storage for structured settings/temp-queue snapshots when the
	// structured store is S3 rather than the relational DB.
	ObjectStorageURL string
	S3AccessKeyID    string
	S3SecretAccessKey string
	S3Region         string
	S3Bucket         string
	S3Endpoint       string // For S3-compatible services (MinIO, etc.)
	S3PublicBaseURL  string
	S3UsePathStyle   bool

	// Cross-instance event bus (NATS JetStream), used when more than one
	// engine process shares listeners via sticky sessions behind a
	// load balancer.
	NATSURL          string
	NATSStreamName   string
	EventBusDisabled bool

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	InstanceID string

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnvAny([]string{"AUDIOENGINE_ENV", "RLM_ENV"}, "development"),
		HTTPBind:    getEnvAny([]string{"AUDIOENGINE_HTTP_BIND", "RLM_HTTP_BIND"}, "0.0.0.0"),
		HTTPPort:    getEnvIntAny([]string{"AUDIOENGINE_HTTP_PORT", "RLM_HTTP_PORT"}, 8080),
		BaseURL:     getEnvAny([]string{"AUDIOENGINE_BASE_URL", "RLM_BASE_URL"}, ""),

		DBBackend: DatabaseBackend(getEnvAny([]string{"AUDIOENGINE_DB_BACKEND", "RLM_DB_BACKEND"}, string(DatabaseSQLite))),
		DBDSN:     getEnvAny([]string{"AUDIOENGINE_DB_DSN", "RLM_DB_DSN"}, "./audioengine.db"),

		JWTSigningKey:  getEnvAny([]string{"AUDIOENGINE_JWT_SIGNING_KEY", "RLM_JWT_SIGNING_KEY"}, ""),
		AttachTokenTTL: time.Duration(getEnvIntAny([]string{"AUDIOENGINE_ATTACH_TOKEN_TTL_HOURS"}, 24)) * time.Hour,

		MetricsBind: getEnvAny([]string{"AUDIOENGINE_METRICS_BIND", "RLM_METRICS_BIND"}, "127.0.0.1:9000"),

		CatalogMode:    getEnvAny([]string{"AUDIOENGINE_CATALOG_MODE"}, "memory"),
		CatalogBaseURL: getEnvAny([]string{"AUDIOENGINE_CATALOG_BASE_URL"}, ""),
		StreamBaseURL:  getEnvAny([]string{"AUDIOENGINE_STREAM_BASE_URL"}, "http://localhost:8080/stream"),

		RedisAddr:     getEnvAny([]string{"AUDIOENGINE_REDIS_ADDR", "RLM_REDIS_ADDR"}, "localhost:6379"),
		RedisPassword: getEnvAny([]string{"AUDIOENGINE_REDIS_PASSWORD", "RLM_REDIS_PASSWORD"}, ""),
		RedisDB:       getEnvIntAny([]string{"AUDIOENGINE_REDIS_DB", "RLM_REDIS_DB"}, 0),

		ObjectStorageURL:  getEnvAny([]string{"AUDIOENGINE_OBJECT_STORAGE_URL", "RLM_OBJECT_STORAGE_URL"}, ""),
		S3AccessKeyID:     getEnvAny([]string{"AUDIOENGINE_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, ""),
		S3SecretAccessKey: getEnvAny([]string{"AUDIOENGINE_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, ""),
		S3Region:          getEnvAny([]string{"AUDIOENGINE_S3_REGION", "AWS_REGION"}, "us-east-1"),
		S3Bucket:          getEnvAny([]string{"AUDIOENGINE_S3_BUCKET", "S3_BUCKET"}, ""),
		S3Endpoint:        getEnvAny([]string{"AUDIOENGINE_S3_ENDPOINT", "S3_ENDPOINT"}, ""),
		S3PublicBaseURL:   getEnvAny([]string{"AUDIOENGINE_S3_PUBLIC_BASE_URL", "S3_PUBLIC_BASE_URL"}, ""),
		S3UsePathStyle:    getEnvBoolAny([]string{"AUDIOENGINE_S3_USE_PATH_STYLE", "S3_USE_PATH_STYLE"}, false),

		NATSURL:          getEnvAny([]string{"AUDIOENGINE_NATS_URL", "RLM_NATS_URL"}, "nats://localhost:4222"),
		NATSStreamName:   getEnvAny([]string{"AUDIOENGINE_NATS_STREAM", "RLM_NATS_STREAM"}, "AUDIOENGINE_EVENTS"),
		EventBusDisabled: getEnvBoolAny([]string{"AUDIOENGINE_EVENTBUS_DISABLED"}, false),

		TracingEnabled:    getEnvBoolAny([]string{"AUDIOENGINE_TRACING_ENABLED", "RLM_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"AUDIOENGINE_OTLP_ENDPOINT", "RLM_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"AUDIOENGINE_TRACING_SAMPLE_RATE", "RLM_TRACING_SAMPLE_RATE"}, 1.0),

		InstanceID: getEnvAny([]string{"AUDIOENGINE_INSTANCE_ID", "RLM_INSTANCE_ID"}, ""),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("AUDIOENGINE_DB_DSN or RLM_DB_DSN must be provided")
	}

	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("AUDIOENGINE_JWT_SIGNING_KEY or RLM_JWT_SIGNING_KEY must be provided")
	}

	if cfg.CatalogMode != "memory" && cfg.CatalogMode != "http" {
		return nil, fmt.Errorf("unsupported catalog mode %q", cfg.CatalogMode)
	}
	if cfg.CatalogMode == "http" && cfg.CatalogBaseURL == "" {
		return nil, fmt.Errorf("AUDIOENGINE_CATALOG_BASE_URL must be set when AUDIOENGINE_CATALOG_MODE=http")
	}

	if strings.EqualFold(cfg.Environment, "production") && len(cfg.JWTSigningKey) < 32 {
		return nil, fmt.Errorf("AUDIOENGINE_JWT_SIGNING_KEY must be at least 32 bytes in production")
	}

	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"ENVIRONMENT":         "use AUDIOENGINE_ENV (or RLM_ENV)",
		"JWT_SIGNING_KEY":     "use AUDIOENGINE_JWT_SIGNING_KEY (or RLM_JWT_SIGNING_KEY)",
		"TRACING_ENABLED":     "use AUDIOENGINE_TRACING_ENABLED (or RLM_TRACING_ENABLED)",
		"OTLP_ENDPOINT":       "use AUDIOENGINE_OTLP_ENDPOINT (or RLM_OTLP_ENDPOINT)",
		"TRACING_SAMPLE_RATE": "use AUDIOENGINE_TRACING_SAMPLE_RATE (or RLM_TRACING_SAMPLE_RATE)",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
