package patterncache

import (
	"context"
	"time"

	"github.com/arcflare/patterncache/internal/metrics"
)

// runIdleSweeper periodically evicts entries that have not been touched
// within IdleTTL (spec.md §4.5, "Idle sweeper"), independent of the LRU
// sweeper and its size-based trigger.
func (c *Cache) runIdleSweeper(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.IdleScanPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweepIdle()
		}
	}
}

func (c *Cache) sweepIdle() {
	now := time.Now().UnixNano()
	ttl := c.cfg.IdleTTL.Nanoseconds()
	if ttl <= 0 {
		return // idle_ttl=0 disables age-based eviction
	}

	var stale []struct {
		key   string
		entry *Entry
	}

	c.index.Range(func(k, v interface{}) bool {
		e := v.(*Entry)
		if now-e.LastAccess() > ttl {
			stale = append(stale, struct {
				key   string
				entry *Entry
			}{k.(string), e})
		}
		return true
	})

	for _, s := range stale {
		if c.index.CompareAndDelete(s.key, s.entry) {
			c.size.Add(-1)
			c.evictEntry(s.entry)
			c.sink.IncrementCounter(metrics.CounterEvictionsIdleTotal)
			c.idleEvictions.Add(1)
		}
	}
}
