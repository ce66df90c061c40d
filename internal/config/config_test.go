package config

import "testing"

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	t.Setenv("AUDIOENGINE_DB_DSN", "./test.db")
	t.Setenv("AUDIOENGINE_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("AUDIOENGINE_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBDSN == "" {
		t.Fatal("expected DB DSN to be set")
	}
	if cfg.JWTSigningKey != "supersecret" {
		t.Fatalf("unexpected jwt signing key: %q", cfg.JWTSigningKey)
	}
}

func TestLoadReportsLegacyEnvWarnings(t *testing.T) {
	t.Setenv("AUDIOENGINE_DB_DSN", "./test.db")
	t.Setenv("AUDIOENGINE_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("JWT_SIGNING_KEY", "legacy")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.LegacyEnvWarnings) == 0 {
		t.Fatal("expected legacy env warnings")
	}
}

func TestLoadRejectsUnsupportedDatabaseBackend(t *testing.T) {
	t.Setenv("AUDIOENGINE_DB_DSN", "./test.db")
	t.Setenv("AUDIOENGINE_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("AUDIOENGINE_DB_BACKEND", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to reject unsupported database backend")
	}
}

func TestLoadProductionRequiresLongSigningKey(t *testing.T) {
	t.Setenv("AUDIOENGINE_DB_DSN", "./test.db")
	t.Setenv("AUDIOENGINE_ENV", "production")
	t.Setenv("AUDIOENGINE_JWT_SIGNING_KEY", "short")

	if _, err := Load(); err == nil {
		t.Fatal("expected production config load to fail with short signing key")
	}

	t.Setenv("AUDIOENGINE_JWT_SIGNING_KEY", "this-is-a-sufficiently-long-signing-key-value")
	if _, err := Load(); err != nil {
		t.Fatalf("expected production config load with long signing key to succeed: %v", err)
	}
}

func TestLoadRejectsHTTPCatalogWithoutBaseURL(t *testing.T) {
	t.Setenv("AUDIOENGINE_DB_DSN", "./test.db")
	t.Setenv("AUDIOENGINE_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("AUDIOENGINE_CATALOG_MODE", "http")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to reject http catalog mode without a base URL")
	}

	t.Setenv("AUDIOENGINE_CATALOG_BASE_URL", "https://catalog.example.com")
	if _, err := Load(); err != nil {
		t.Fatalf("expected http catalog mode with base URL to succeed: %v", err)
	}
}
