package config

import (
	"strings"
	"time"
)

// APIConfig contains backend API client configuration.
type APIConfig struct {
	// BaseURL is the backend API root, e.g. https://api.careconnect.example/api.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:5000/api"`

	// Timeout bounds each request attempt.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// UserAgent sent with every request.
	UserAgent string `env:"USER_AGENT" envDefault:"careconnect-go/1.0"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	c.UserAgent = strings.TrimSpace(c.UserAgent)
}

// DemoConfig contains demo-mode (offline resolver) configuration.
type DemoConfig struct {
	// Latency is the simulated response delay for demo responses.
	// Negative disables the delay.
	Latency time.Duration `env:"LATENCY" envDefault:"150ms"`
}

// Sanitize enforces a sane upper bound on the simulated latency.
func (c *DemoConfig) Sanitize() {
	if c.Latency > 5*time.Second {
		c.Latency = 5 * time.Second
	}
}
