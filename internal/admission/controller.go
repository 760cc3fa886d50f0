// Package admission decides, for every incoming code change, whether an
// expensive analysis call runs now, is served from cache, or is
// suppressed — and queues the admitted ones for asynchronous dispatch.
package admission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/steveyegge/mentor/internal/cache"
	"github.com/steveyegge/mentor/internal/cooldown"
	"github.com/steveyegge/mentor/internal/queue"
	"github.com/steveyegge/mentor/internal/ratelimit"
	"github.com/steveyegge/mentor/internal/rules"
	"github.com/steveyegge/mentor/internal/types"
)

// Decision reasons surfaced to callers. These are diagnostic text, not
// error states: a false Trigger is the throttle working as intended.
const (
	ReasonCritical    = "critical issue detected"
	ReasonCached      = "using cached analysis"
	ReasonCooldown    = "in cooldown period"
	ReasonRateLimited = "rate limit exceeded"
	ReasonApproved    = "analysis approved"
)

// Decision is re-exported for callers that only import this package.
type Decision = types.Decision

// Dispatcher hands a drained request to the external analysis
// collaborator. Implementations build the prompt, call the provider, and
// parse the response; none of that lives in this package.
type Dispatcher interface {
	Analyze(ctx context.Context, req *types.AnalysisRequest) (*types.AnalysisResult, error)
}

// Status is a point-in-time snapshot for diagnostics
type Status struct {
	Tokens        int      `json:"tokens"`
	TokenCapacity int      `json:"token_capacity"`
	QueueSize     int      `json:"queue_size"`
	CacheSize     int      `json:"cache_size"`
	ActiveRuleIDs []string `json:"active_rule_ids"`
}

// Controller orchestrates the classifier, cache, cooldown tracker, token
// bucket, and priority queue. All mutable state is owned by one instance;
// the decision mutex makes ShouldTrigger a single atomic transaction even
// though the drain and sweep loops run on their own goroutines.
type Controller struct {
	// mu guards the whole admit decision, not individual components
	mu sync.Mutex

	table      *rules.Table
	bucket     *ratelimit.Bucket
	cooldowns  *cooldown.Tracker
	cache      *cache.Cache
	queue      *queue.Queue
	dispatcher Dispatcher
	metrics    *Metrics
	logger     *slog.Logger
	cfg        Config

	// now is the clock; tests replace it via SetClock
	now func() time.Time
}

// Option configures optional controller collaborators
type Option func(*Controller)

// WithDispatcher injects the analysis dispatcher used by the queue drain.
// Without one, drained requests are logged and discarded.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Controller) { c.dispatcher = d }
}

// WithMetrics attaches Prometheus metrics to the controller
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates an admission controller over the given rule table.
// A nil table uses the built-in defaults. Misconfiguration is reported
// here rather than surfacing at decision time.
func NewController(cfg Config, table *rules.Table, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if table == nil {
		table = rules.DefaultTable()
	}

	bucket, err := ratelimit.NewBucket(ratelimit.Config{
		Capacity:        cfg.TokenCapacity,
		RefillPerSecond: cfg.RefillPerSecond,
	})
	if err != nil {
		return nil, err
	}

	c := &Controller{
		table:     table,
		bucket:    bucket,
		cooldowns: cooldown.NewTracker(table, cfg.DefaultCooldown),
		cache:     cache.New(cfg.CacheTTL),
		queue:     queue.New(),
		logger:    slog.Default(),
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ShouldTrigger answers whether the change warrants an analysis call right
// now. The check order is deliberate: the cache avoids recomputation
// before any budget is spent, the cooldown guards against repeats of the
// same issue class, and the token bucket is the last, coarsest gate on
// total call volume. Never returns an error; every branch is a decision.
func (c *Controller) ShouldTrigger(change types.CodeChange, sessionID string) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	priority := c.table.Classify(change)

	// Critical findings are never throttled: no cache, no cooldown, no
	// token cost. The caller dispatches these directly.
	if priority == types.PriorityImmediate {
		return c.decided(Decision{
			Trigger:  true,
			Priority: priority,
			Reason:   ReasonCritical,
		})
	}

	if _, ok := c.cache.Get(change, sessionID); ok {
		return c.decided(Decision{
			Priority: priority,
			Reason:   ReasonCached,
			UseCache: true,
		})
	}

	if c.cooldowns.InCooldown(priority) {
		return c.decided(Decision{
			Priority: priority,
			Reason:   ReasonCooldown,
		})
	}

	if !c.bucket.TryConsume(priority) {
		return c.decided(Decision{
			Priority: priority,
			Reason:   ReasonRateLimited,
		})
	}

	c.cooldowns.MarkTriggered(priority)
	return c.decided(Decision{
		Trigger:  true,
		Priority: priority,
		Reason:   ReasonApproved,
	})
}

// decided records the decision in metrics and returns it unchanged.
// Must be called with mu held.
func (c *Controller) decided(d Decision) Decision {
	c.metrics.recordDecision(d)
	return d
}

// EnqueueAnalysis places an admitted change on the priority queue for the
// periodic drain, returning the created request.
func (c *Controller) EnqueueAnalysis(change types.CodeChange, priority types.Priority, sessionID string) *types.AnalysisRequest {
	req := types.NewAnalysisRequest(change, priority, sessionID, c.now())
	c.queue.Enqueue(req)
	return req
}

// GetCachedAnalysis returns the cached result for the change, if any.
func (c *Controller) GetCachedAnalysis(change types.CodeChange, sessionID string) (types.AnalysisResult, bool) {
	return c.cache.Get(change, sessionID)
}

// SetCachedAnalysis stores an analysis result for later reuse.
func (c *Controller) SetCachedAnalysis(change types.CodeChange, result types.AnalysisResult, sessionID string) {
	c.cache.Put(change, result, sessionID)
}

// AdjustCooldown feeds user feedback into the named rule's cooldown.
// Helpful suggestions make the rule fire more often; dismissed ones
// progressively silence it.
func (c *Controller) AdjustCooldown(ruleID string, wasHelpful bool) error {
	return c.table.AdjustCooldown(ruleID, wasHelpful)
}

// Status returns a diagnostics snapshot
func (c *Controller) Status() Status {
	tokens, capacity := c.bucket.Status()
	s := Status{
		Tokens:        tokens,
		TokenCapacity: capacity,
		QueueSize:     c.queue.Len(),
		CacheSize:     c.cache.Len(),
		ActiveRuleIDs: c.table.ActiveRuleIDs(),
	}
	c.metrics.observe(s)
	return s
}

// Rules returns a snapshot of the active rule table.
func (c *Controller) Rules() []rules.Rule {
	return c.table.Rules()
}

// SetClock replaces the clock on the controller and every timed component.
// Test hook.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	c.bucket.SetClock(now)
	c.cooldowns.SetClock(now)
	c.cache.SetClock(now)
}
