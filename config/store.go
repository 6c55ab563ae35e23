package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Store backends.
const (
	StoreBackendFile   = "file"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// StoreConfig selects and configures the credential store backend.
type StoreConfig struct {
	// Backend is one of file, redis, memory.
	Backend string `env:"BACKEND" envDefault:"file"`

	// Path is the credential file location for the file backend.
	// Defaults to ~/.careconnect/credentials.json.
	Path string `env:"PATH"`
}

// Sanitize normalises the backend name and resolves the default file path.
func (c *StoreConfig) Sanitize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case StoreBackendFile, StoreBackendRedis, StoreBackendMemory:
	default:
		c.Backend = StoreBackendFile
	}

	c.Path = strings.TrimSpace(c.Path)
	if c.Path == "" && c.Backend == StoreBackendFile {
		if home, err := os.UserHomeDir(); err == nil {
			c.Path = filepath.Join(home, ".careconnect", "credentials.json")
		} else {
			c.Path = filepath.Join(".", ".careconnect-credentials.json")
		}
	}
}

// RedisConfig contains Redis configuration for the redis store backend.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelPort       string   `env:"SENTINEL_PORT"        envDefault:"26379"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
