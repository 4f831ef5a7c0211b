package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Engine    EngineConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8400"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig bounds inbound instruction throughput per connection.
type RateLimitConfig struct {
	InstructionsPerSecond int  `envconfig:"RATE_LIMIT_IPS" default:"5000"`
	Burst                 int  `envconfig:"RATE_LIMIT_BURST" default:"10000"`
	Enabled               bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// EngineConfig bounds protocol payload sizes accepted by the dispatcher.
type EngineConfig struct {
	MaxStyleBatch int `envconfig:"MAX_STYLE_BATCH" default:"4096"`
	MaxChildOps   int `envconfig:"MAX_CHILD_OPS" default:"65536"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return &Config{
			Server:    ServerConfig{Port: "8400", Host: "0.0.0.0"},
			Logging:   LogConfig{Level: "info"},
			RateLimit: RateLimitConfig{InstructionsPerSecond: 5000, Burst: 10000, Enabled: true},
			Engine:    EngineConfig{MaxStyleBatch: 4096, MaxChildOps: 65536},
		}
	}
	return cfg
}
