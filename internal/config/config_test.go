package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "LEAD_STORE", "EMAIL_PROVIDER", "CORS_ALLOWED_ORIGINS", "NOTIFY_TIMEOUT"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LeadStore != "memory" {
		t.Fatalf("expected memory lead store, got %s", cfg.LeadStore)
	}
	if cfg.EmailProvider != "stub" {
		t.Fatalf("expected stub email provider, got %s", cfg.EmailProvider)
	}
	if cfg.NotifyTimeout != 10*time.Second {
		t.Fatalf("expected default notify timeout, got %s", cfg.NotifyTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected default origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.IsProduction() {
		t.Fatalf("development config reported as production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "Production")
	t.Setenv("LEAD_STORE", " Postgres ")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("EMAIL_PROVIDER", "SES")
	t.Setenv("NOTIFY_TIMEOUT", "3s")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.LeadStore != "postgres" {
		t.Fatalf("expected normalized lead store, got %q", cfg.LeadStore)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRequests != 5 || cfg.RateLimitWindow != 30*time.Second {
		t.Fatalf("unexpected rate limit: %d per %s", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.EmailProvider != "ses" {
		t.Fatalf("expected ses provider, got %s", cfg.EmailProvider)
	}
	if cfg.NotifyTimeout != 3*time.Second {
		t.Fatalf("expected notify timeout override, got %s", cfg.NotifyTimeout)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "lots")
	t.Setenv("NOTIFY_TIMEOUT", "soon")
	t.Setenv("REDIS_TLS", "maybe")
	cfg := Load()
	if cfg.RateLimitRequests != 30 {
		t.Fatalf("expected default rate limit, got %d", cfg.RateLimitRequests)
	}
	if cfg.NotifyTimeout != 10*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.NotifyTimeout)
	}
	if cfg.RedisTLS {
		t.Fatalf("expected redis tls disabled")
	}
}
