package admission

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Run starts the periodic queue-drain and cache-sweep loops and blocks
// until ctx is cancelled. The drain dispatches at most one request per
// tick and calls the dispatcher synchronously, so a slow external call
// simply delays the next dequeue instead of stacking in-flight work.
func (c *Controller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.drainLoop(ctx) })
	g.Go(func() error { return c.sweepLoop(ctx) })
	return g.Wait()
}

func (c *Controller) drainLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.drainOnce(ctx)
		}
	}
}

// drainOnce dequeues at most one request and hands it to the dispatcher.
// Dispatcher failures are logged and the request dropped; the loop itself
// never dies with it.
func (c *Controller) drainOnce(ctx context.Context) {
	req := c.queue.Dequeue()
	if req == nil {
		return
	}

	if c.dispatcher == nil {
		c.logger.Warn("no dispatcher configured, dropping request",
			"request_id", req.ID,
			"priority", req.Priority.String(),
			"file", req.Change.FilePath)
		return
	}

	result, err := c.dispatcher.Analyze(ctx, req)
	c.metrics.recordDispatch(err != nil)
	if err != nil {
		c.logger.Error("analysis dispatch failed, dropping request",
			"request_id", req.ID,
			"priority", req.Priority.String(),
			"file", req.Change.FilePath,
			"error", err)
		return
	}

	c.cache.Put(req.Change, *result, req.SessionID)
	c.logger.Info("analysis dispatched",
		"request_id", req.ID,
		"priority", req.Priority.String(),
		"file", req.Change.FilePath,
		"waited", c.now().Sub(req.Timestamp).Round(time.Millisecond))
}

func (c *Controller) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if purged := c.cache.Sweep(); purged > 0 {
				c.logger.Debug("cache sweep", "purged", purged, "remaining", c.cache.Len())
			}
		}
	}
}
