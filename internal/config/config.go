// Package config provides environment-based configuration.
package config

import (
	"fmt"
	"os"
)

// Config holds the runtime configuration, loaded from the environment.
type Config struct {
	AppEnv      string
	Addr        string
	WebDir      string
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	// Optional OIDC single sign-on. All four must be set together.
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
}

// Load reads the configuration from the environment. DATABASE_URL is
// optional: when empty the server runs on the in-memory store.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Addr:             getEnv("ADDR", ":8080"),
		WebDir:           getEnv("WEB_DIR", "web"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", ""),
	}

	if cfg.SSOEnabled() {
		if cfg.OIDCIssuer == "" {
			return nil, fmt.Errorf("OIDC_ISSUER is required when OIDC is configured")
		}
		if cfg.OIDCClientID == "" {
			return nil, fmt.Errorf("OIDC_CLIENT_ID is required when OIDC is configured")
		}
		if cfg.OIDCClientSecret == "" {
			return nil, fmt.Errorf("OIDC_CLIENT_SECRET is required when OIDC is configured")
		}
		if cfg.OIDCRedirectURL == "" {
			return nil, fmt.Errorf("OIDC_REDIRECT_URL is required when OIDC is configured")
		}
	}

	return cfg, nil
}

// SSOEnabled reports whether any OIDC setting is present.
func (c *Config) SSOEnabled() bool {
	return c.OIDCIssuer != "" || c.OIDCClientID != "" || c.OIDCClientSecret != "" || c.OIDCRedirectURL != ""
}

// Production reports whether the server runs in production mode.
// Session cookies are marked Secure only in production.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
