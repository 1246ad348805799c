package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != ":5175" {
		t.Errorf("addr = %q, want :5175", cfg.Addr())
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("session ttl = %s, want 24h", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" || cfg.RequestTimeout != 3*time.Second || !cfg.CookieSecure {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.AdminPasswordHash != "$2a$10$abc" {
		t.Errorf("admin hash = %q", cfg.AdminPasswordHash)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "0s")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero session ttl")
	}
}
