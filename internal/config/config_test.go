package config

import (
	"testing"

	"github.com/noah-isme/backend-tour/internal/money"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"APP_ENV":  "",
		"PORT":     "",
		"TAX_RATE": "",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppEnv != "development" {
		t.Errorf("AppEnv = %q, want development", cfg.AppEnv)
	}
	if got := cfg.HTTPAddr(); got != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", got)
	}
	if cfg.TaxRate != money.ZeroRate {
		t.Errorf("TaxRate = %v, want zero", cfg.TaxRate)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Errorf("RateLimitPerMinute = %d, want 120", cfg.RateLimitPerMinute)
	}
}

func TestLoadParsesTaxRateAndOrigins(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"TAX_RATE":             "0.07",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"PORT":                 "9090",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TaxRate != money.MustRate("0.07") {
		t.Errorf("TaxRate = %v, want 0.07", cfg.TaxRate)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("origins = %v, want two entries", cfg.CORSAllowedOrigins)
	}
	if got := cfg.HTTPAddr(); got != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090", got)
	}
}

func TestLoadRejectsMalformedTaxRate(t *testing.T) {
	if _, err := LoadForTests(map[string]string{"TAX_RATE": "seven percent"}); err == nil {
		t.Fatal("expected error for malformed TAX_RATE")
	}
}
