package ratelimit

import (
	"testing"
	"time"

	"github.com/steveyegge/mentor/internal/types"
)

// fakeClock returns a clock function and a way to advance it
func fakeClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestBucketStartsFull(t *testing.T) {
	b, err := NewBucket(DefaultConfig())
	if err != nil {
		t.Fatalf("NewBucket failed: %v", err)
	}

	tokens, capacity := b.Status()
	if capacity != 15 {
		t.Errorf("expected capacity 15, got %d", capacity)
	}
	if tokens != 15 {
		t.Errorf("expected a full bucket, got %d tokens", tokens)
	}
}

func TestCostWeighting(t *testing.T) {
	b, err := NewBucket(DefaultConfig())
	if err != nil {
		t.Fatalf("NewBucket failed: %v", err)
	}
	clock, _ := fakeClock(time.Now())
	b.SetClock(clock)

	// Low priority costs 4: 15 tokens allow exactly 3 consumptions
	for i := 0; i < 3; i++ {
		if !b.TryConsume(types.PriorityLow) {
			t.Fatalf("low consume %d should succeed", i+1)
		}
	}
	if b.TryConsume(types.PriorityLow) {
		t.Error("4th low consume should fail with 3 tokens left")
	}
	// Medium costs exactly the 3 remaining tokens
	if !b.TryConsume(types.PriorityMedium) {
		t.Error("medium (cost 3) should succeed with 3 tokens left")
	}
	if b.TryConsume(types.PriorityImmediate) {
		t.Error("immediate (cost 1) should fail with 0 tokens left")
	}
}

func TestTokensNeverNegativeOrAboveCapacity(t *testing.T) {
	b, err := NewBucket(Config{Capacity: 5, RefillPerSecond: 2})
	if err != nil {
		t.Fatalf("NewBucket failed: %v", err)
	}
	clock, advance := fakeClock(time.Now())
	b.SetClock(clock)

	// Drain, then interleave consumption attempts and waits
	for i := 0; i < 20; i++ {
		b.TryConsume(types.PriorityLow)
		tokens, capacity := b.Status()
		if tokens < 0 || tokens > capacity {
			t.Fatalf("token invariant violated: %d not in [0, %d]", tokens, capacity)
		}
		advance(300 * time.Millisecond)
	}

	// A long wait caps at capacity
	advance(time.Hour)
	tokens, _ := b.Status()
	if tokens != 5 {
		t.Errorf("expected refill capped at capacity 5, got %d", tokens)
	}
}

func TestLazyRefill(t *testing.T) {
	b, err := NewBucket(DefaultConfig())
	if err != nil {
		t.Fatalf("NewBucket failed: %v", err)
	}
	clock, advance := fakeClock(time.Now())
	b.SetClock(clock)

	// Consume all 15 tokens one at a time
	for i := 0; i < 15; i++ {
		if !b.TryConsume(types.PriorityImmediate) {
			t.Fatalf("consume %d should succeed", i+1)
		}
	}
	if b.TryConsume(types.PriorityImmediate) {
		t.Fatal("bucket should be empty")
	}

	tests := []struct {
		wait   time.Duration
		expect int
	}{
		{1 * time.Second, 3},
		{1 * time.Second, 6},   // cumulative 2s of refill
		{2 * time.Second, 12},  // cumulative 4s
		{10 * time.Second, 15}, // capped at capacity
	}
	for _, tt := range tests {
		advance(tt.wait)
		tokens, _ := b.Status()
		if tokens != tt.expect {
			t.Errorf("after wait %v: expected %d tokens, got %d", tt.wait, tt.expect, tokens)
		}
	}
}

func TestFailedConsumeLeavesTokensUnchanged(t *testing.T) {
	b, err := NewBucket(Config{Capacity: 3, RefillPerSecond: 1})
	if err != nil {
		t.Fatalf("NewBucket failed: %v", err)
	}
	clock, _ := fakeClock(time.Now())
	b.SetClock(clock)

	if b.TryConsume(types.PriorityLow) { // cost 4 > 3
		t.Fatal("consume should fail")
	}
	tokens, _ := b.Status()
	if tokens != 3 {
		t.Errorf("failed consume should not change tokens, got %d", tokens)
	}
}

func TestStatusHasNoSideEffects(t *testing.T) {
	b, err := NewBucket(DefaultConfig())
	if err != nil {
		t.Fatalf("NewBucket failed: %v", err)
	}
	clock, _ := fakeClock(time.Now())
	b.SetClock(clock)

	for i := 0; i < 10; i++ {
		tokens, _ := b.Status()
		if tokens != 15 {
			t.Fatalf("status call %d changed tokens: %d", i, tokens)
		}
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Capacity: 15, RefillPerSecond: 3}, false},
		{"zero capacity", Config{Capacity: 0, RefillPerSecond: 3}, true},
		{"negative capacity", Config{Capacity: -1, RefillPerSecond: 3}, true},
		{"zero refill", Config{Capacity: 15, RefillPerSecond: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBucket(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBucket(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			}
		})
	}
}
