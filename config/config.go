// Package config loads go-reqproc settings from YAML with defaults and
// validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Queue     QueueConfig     `yaml:"queue"`
	Batch     BatchConfig     `yaml:"batch"`
	Fetch     FetchConfig     `yaml:"fetch"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Pool      PoolConfig      `yaml:"pool"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// QueueConfig configures the task queue.
type QueueConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// BatchConfig configures the batch processor.
type BatchConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	Timeout       time.Duration `yaml:"timeout"`
}

// FetchConfig configures the parallel fetcher.
type FetchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// RateLimitConfig configures admission control.
type RateLimitConfig struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// CacheConfig configures the cache layer.
type CacheConfig struct {
	// Backend is "redis" or "memory".
	Backend string        `yaml:"backend"`
	Addr    string        `yaml:"addr"`
	DB      int           `yaml:"db"`
	TTL     time.Duration `yaml:"ttl"`
}

// PoolConfig configures connection pools.
type PoolConfig struct {
	Size       int `yaml:"size"`
	MaxRetries int `yaml:"max_retries"`
}

// MetricsConfig configures Prometheus exposure.
type MetricsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Namespace    string        `yaml:"namespace"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Queue.MaxConcurrent == 0 {
		cfg.Queue.MaxConcurrent = 20
	}
	if cfg.Batch.BatchSize == 0 {
		cfg.Batch.BatchSize = 100
	}
	if cfg.Batch.MaxConcurrent == 0 {
		cfg.Batch.MaxConcurrent = 5
	}
	if cfg.Batch.Timeout == 0 {
		cfg.Batch.Timeout = 5 * time.Minute
	}
	if cfg.Fetch.MaxConcurrent == 0 {
		cfg.Fetch.MaxConcurrent = 10
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = 100
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = "localhost:6379"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Pool.Size == 0 {
		cfg.Pool.Size = 10
	}
	if cfg.Pool.MaxRetries == 0 {
		cfg.Pool.MaxRetries = 3
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "reqproc"
	}
	if cfg.Metrics.PollInterval == 0 {
		cfg.Metrics.PollInterval = time.Second
	}
}

// Validate rejects configurations that cannot work.
func Validate(cfg *Config) error {
	if cfg.Queue.MaxConcurrent < 1 {
		return fmt.Errorf("config: queue.max_concurrent must be at least 1, got %d", cfg.Queue.MaxConcurrent)
	}
	if cfg.Batch.BatchSize < 1 {
		return fmt.Errorf("config: batch.batch_size must be at least 1, got %d", cfg.Batch.BatchSize)
	}
	if cfg.Batch.MaxConcurrent < 1 {
		return fmt.Errorf("config: batch.max_concurrent must be at least 1, got %d", cfg.Batch.MaxConcurrent)
	}
	if cfg.Batch.Timeout <= 0 {
		return fmt.Errorf("config: batch.timeout must be positive, got %s", cfg.Batch.Timeout)
	}
	if cfg.Fetch.MaxConcurrent < 1 {
		return fmt.Errorf("config: fetch.max_concurrent must be at least 1, got %d", cfg.Fetch.MaxConcurrent)
	}
	if cfg.RateLimit.MaxRequests < 1 {
		return fmt.Errorf("config: rate_limit.max_requests must be at least 1, got %d", cfg.RateLimit.MaxRequests)
	}
	if cfg.RateLimit.Window <= 0 {
		return fmt.Errorf("config: rate_limit.window must be positive, got %s", cfg.RateLimit.Window)
	}
	switch cfg.Cache.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: cache.backend must be %q or %q, got %q", "redis", "memory", cfg.Cache.Backend)
	}
	if cfg.Pool.Size < 1 {
		return fmt.Errorf("config: pool.size must be at least 1, got %d", cfg.Pool.Size)
	}
	if cfg.Pool.MaxRetries < 0 {
		return fmt.Errorf("config: pool.max_retries must not be negative, got %d", cfg.Pool.MaxRetries)
	}
	return nil
}

// Load reads a YAML file, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
