// Package config loads the verifier daemon's configuration from a YAML
// file, with environment-variable overrides, following the same layering
// the teacher microservice used for its HTTP service.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the verifier daemon's full configuration.
type Config struct {
	RPC       RPCConfig       `yaml:"rpc"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Group     GroupConfig     `yaml:"group"`
	Reaper    ReaperConfig    `yaml:"reaper"`
}

// RPCConfig addresses the length-prefixed JSON protocol listener.
type RPCConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Workers         int           `yaml:"workers"`
}

// MetricsConfig addresses the side-channel HTTP listener for /health,
// /ready and /metrics.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RateLimitConfig bounds how often a single identifier may create a new
// authentication challenge.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// GroupConfig selects which zkp parameter profile the daemon runs with:
// "prod", "test", or "tiny".
type GroupConfig struct {
	Profile string `yaml:"profile"`
}

// ReaperConfig controls the optional pending-challenge TTL sweep.
type ReaperConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	MaxAge   time.Duration `yaml:"max_age"`
}

// Load reads config from path and applies environment-variable
// overrides, then validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if addr := os.Getenv("ZKPAUTH_RPC_ADDR"); addr != "" {
		cfg.RPC.Addr = addr
	}
	if addr := os.Getenv("ZKPAUTH_METRICS_ADDR"); addr != "" {
		cfg.Metrics.Addr = addr
	}
	if profile := os.Getenv("ZKPAUTH_GROUP_PROFILE"); profile != "" {
		cfg.Group.Profile = profile
	}
	if level := os.Getenv("ZKPAUTH_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks required fields and fills in sensible defaults for
// anything the file omitted.
func (c *Config) Validate() error {
	if c.RPC.Addr == "" {
		return fmt.Errorf("rpc.addr is required")
	}
	if c.Group.Profile == "" {
		c.Group.Profile = "prod"
	}
	if c.RPC.Workers <= 0 {
		c.RPC.Workers = 8
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 10
	}
	return nil
}
