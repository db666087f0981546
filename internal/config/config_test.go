package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Addr)
	}
	if cfg.Production() {
		t.Error("expected non-production by default")
	}
	if cfg.SSOEnabled() {
		t.Error("expected SSO disabled by default")
	}
}

func TestLoadIncompleteOIDC(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "https://issuer.example.com")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for partial OIDC configuration")
	}
}

func TestProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.Production() {
		t.Error("expected production mode")
	}
}
