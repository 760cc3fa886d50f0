// Package ratelimit provides the token-bucket gate that caps total
// analysis call volume regardless of priority class.
package ratelimit

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/steveyegge/mentor/internal/types"
)

// Config holds token bucket configuration
type Config struct {
	// Capacity is the maximum number of tokens the bucket holds
	// Default: 15
	Capacity int

	// RefillPerSecond is how many tokens are restored per second
	// Default: 3
	RefillPerSecond float64
}

// DefaultConfig returns default token bucket configuration
func DefaultConfig() Config {
	return Config{
		Capacity:        15,
		RefillPerSecond: 3,
	}
}

// Validate checks the configuration for construction-time errors
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive (got %d)", c.Capacity)
	}
	if c.RefillPerSecond <= 0 {
		return fmt.Errorf("refill rate must be positive (got %g)", c.RefillPerSecond)
	}
	return nil
}

// Bucket is a lazily-refilled token bucket. Refill happens inside the
// limiter at the moment of each call, so there is no background timer and
// the observed token count is always consistent at the point of use.
type Bucket struct {
	limiter  *rate.Limiter
	capacity int

	// now is the clock; tests replace it
	now func() time.Time
}

// NewBucket creates a token bucket. The bucket starts full.
func NewBucket(cfg Config) (*Bucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Bucket{
		limiter:  rate.NewLimiter(rate.Limit(cfg.RefillPerSecond), cfg.Capacity),
		capacity: cfg.Capacity,
		now:      time.Now,
	}, nil
}

// TryConsume attempts to take priority.Cost() tokens. It returns false,
// leaving the bucket unchanged, when not enough tokens have accumulated.
func (b *Bucket) TryConsume(priority types.Priority) bool {
	return b.limiter.AllowN(b.now(), priority.Cost())
}

// Status returns the current token count (rounded down) and capacity
// without consuming anything.
func (b *Bucket) Status() (tokens, capacity int) {
	t := int(b.limiter.TokensAt(b.now()))
	if t < 0 {
		t = 0
	}
	if t > b.capacity {
		t = b.capacity
	}
	return t, b.capacity
}

// SetClock replaces the bucket's clock. Test hook.
func (b *Bucket) SetClock(now func() time.Time) {
	b.now = now
}
