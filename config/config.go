package config

import (
	"log/slog"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - client.go: API client and demo-mode configuration
//   - store.go: Credential store and Redis configuration
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// LogLevel sets the slog level: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// API client configuration
	API  APIConfig  `envPrefix:"API_"`
	Demo DemoConfig `envPrefix:"DEMO_"`

	// Credential store configuration
	Store StoreConfig `envPrefix:"STORE_"`
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Demo.Sanitize()
	c.Store.Sanitize()
	c.Observability.Sanitize()

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if _, ok := parseLevel(c.LogLevel); !ok {
		c.LogLevel = "info"
	}

	c.detectDevMode()
}

// SlogLevel maps the configured level string onto a slog.Level. Dev mode
// lowers the info default to debug; a stricter LOG_LEVEL still applies.
func (c *AppConfig) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	if c.IsDev && level == slog.LevelInfo {
		return slog.LevelDebug
	}
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
