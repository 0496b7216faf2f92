package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()

	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("HTTPAddr=%q", cfg.HTTPAddr)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("SessionTTL=%s", cfg.SessionTTL)
	}
	if cfg.SMTP.Port != 465 {
		t.Fatalf("invalid SMTP_PORT should fall back to 465, got %d", cfg.SMTP.Port)
	}
	if cfg.HealthEvery != 10*time.Second {
		t.Fatalf("HealthEvery=%s", cfg.HealthEvery)
	}
	if cfg.FinanceEmail != "finance@example.com" {
		t.Fatalf("FinanceEmail=%q", cfg.FinanceEmail)
	}
}
