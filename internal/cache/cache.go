// Package cache holds previously computed analysis results so that
// near-identical edits inside the TTL window never cost a second call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/steveyegge/mentor/internal/types"
)

// DefaultTTL is how long a cached analysis stays valid.
const DefaultTTL = 30 * time.Minute

// keyPrefixLen is how much of the change content feeds the cache key.
// Matches the signature prefix so rapid re-edits of the same region hit.
const keyPrefixLen = 200

// Entry is one cached analysis result
type Entry struct {
	// Result is the stored analysis payload
	Result types.AnalysisResult
	// SessionID is the mentor session that produced the result
	SessionID string
	// StoredAt is when the entry was written
	StoredAt time.Time
	// ExpiresAt is when the entry stops being served
	ExpiresAt time.Time
}

// Cache is a content-keyed TTL cache of analysis results. Expired entries
// are never returned; the periodic sweep removes them so memory stays
// bounded even when nothing reads the stale keys.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration

	now func() time.Time
}

// New creates a cache. A non-positive ttl uses DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key derives the cache key for a change within a session. Cross-session
// collisions are possible but harmless for an advisory cache: the worst
// case is serving a stale suggestion, never a wrong admission decision.
func Key(change types.CodeChange, sessionID string) string {
	prefix := change.Content
	if len(prefix) > keyPrefixLen {
		prefix = prefix[:keyPrefixLen]
	}
	inner := sha256.Sum256([]byte(prefix + sessionID))
	outer := sha256.Sum256(append([]byte(change.Language+":"), inner[:]...))
	return hex.EncodeToString(outer[:16])
}

// Get returns the cached result for the change, or ok=false when the key
// is missing or the entry has expired.
func (c *Cache) Get(change types.CodeChange, sessionID string) (types.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[Key(change, sessionID)]
	if !ok || c.now().After(entry.ExpiresAt) {
		return types.AnalysisResult{}, false
	}
	return entry.Result, true
}

// Put stores an analysis result for the change, valid for the cache TTL.
func (c *Cache) Put(change types.CodeChange, result types.AnalysisResult, sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[Key(change, sessionID)] = Entry{
		Result:    result,
		SessionID: sessionID,
		StoredAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
}

// Sweep removes all expired entries and returns how many were purged.
// Runs on a periodic tick independent of read traffic.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	purged := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			purged++
		}
	}
	return purged
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SetClock replaces the cache's clock. Test hook.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
