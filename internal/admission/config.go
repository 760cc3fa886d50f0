package admission

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds admission controller configuration
type Config struct {
	// TokenCapacity is the token bucket capacity
	// Default: 15
	TokenCapacity int

	// RefillPerSecond is the token bucket refill rate
	// Default: 3
	RefillPerSecond float64

	// DefaultCooldown applies to priority classes no rule covers
	// Default: 10s
	DefaultCooldown time.Duration

	// CacheTTL is how long cached analyses stay valid
	// Default: 30m
	CacheTTL time.Duration

	// SweepInterval is how often expired cache entries are purged
	// Default: 5m
	SweepInterval time.Duration

	// DrainInterval is how often the queue dispatches one request
	// Default: 1s
	DrainInterval time.Duration
}

// DefaultConfig returns default admission controller configuration
func DefaultConfig() Config {
	return Config{
		TokenCapacity:   15,
		RefillPerSecond: 3,
		DefaultCooldown: 10 * time.Second,
		CacheTTL:        30 * time.Minute,
		SweepInterval:   5 * time.Minute,
		DrainInterval:   time.Second,
	}
}

// Validate checks the configuration for construction-time errors
func (c Config) Validate() error {
	if c.TokenCapacity <= 0 {
		return fmt.Errorf("token capacity must be positive (got %d)", c.TokenCapacity)
	}
	if c.RefillPerSecond <= 0 {
		return fmt.Errorf("refill rate must be positive (got %g)", c.RefillPerSecond)
	}
	if c.DefaultCooldown <= 0 {
		return fmt.Errorf("default cooldown must be positive (got %v)", c.DefaultCooldown)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive (got %v)", c.CacheTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive (got %v)", c.SweepInterval)
	}
	if c.DrainInterval <= 0 {
		return fmt.Errorf("drain interval must be positive (got %v)", c.DrainInterval)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override default values.
// Prefix: MENTOR_
func LoadFromEnv() Config {
	cfg := DefaultConfig()

	if val := os.Getenv("MENTOR_TOKEN_CAPACITY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.TokenCapacity = n
		}
	}

	if val := os.Getenv("MENTOR_REFILL_PER_SECOND"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
			cfg.RefillPerSecond = f
		}
	}

	if val := os.Getenv("MENTOR_DEFAULT_COOLDOWN"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			cfg.DefaultCooldown = d
		}
	}

	if val := os.Getenv("MENTOR_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			cfg.CacheTTL = d
		}
	}

	if val := os.Getenv("MENTOR_SWEEP_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}

	if val := os.Getenv("MENTOR_DRAIN_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			cfg.DrainInterval = d
		}
	}

	return cfg
}
