package patterncache

import (
	"context"
	"time"

	"github.com/arcflare/patterncache/internal/metrics"
)

// runDeferredSweeper periodically scans the deferred-release queue for
// entries whose last matcher has since let go of them, and releases their
// engine handles (spec.md §4.5, "Deferred-release queue").
func (c *Cache) runDeferredSweeper(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.DeferredCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.drainDeferred()
		}
	}
}

func (c *Cache) drainDeferred() {
	for _, e := range c.deferredQ.releasable() {
		c.deferredQ.remove(e)
		c.releaseNow(e)
		c.sink.IncrementCounter(metrics.CounterEvictionsDeferredTotal)
		c.deferredReleases.Add(1)
	}
}
