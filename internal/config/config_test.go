package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "SESSION_TTL", "CORS_ALLOWED_ORIGINS", "OTEL_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("env: got %q want dev", cfg.Env)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port: got %d want 8080", cfg.Port)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("session ttl: got %s", cfg.SessionTTL)
	}
	if cfg.AllowedOrigins != nil {
		t.Fatalf("expected no allowed origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.OtelEnabled {
		t.Fatalf("otel should be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Fatalf("port: got %d want 9090", cfg.Port)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Fatalf("session ttl: got %s", cfg.SessionTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("origins: got %v", cfg.AllowedOrigins)
	}
	if !cfg.OtelEnabled {
		t.Fatalf("otel should be enabled")
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("SESSION_TTL", "-1s")
	t.Setenv("OTEL_ENABLED", "maybe")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Fatalf("port: got %d want fallback 8080", cfg.Port)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("session ttl: got %s want fallback", cfg.SessionTTL)
	}
	if cfg.OtelEnabled {
		t.Fatalf("invalid bool should fall back to false")
	}
}
