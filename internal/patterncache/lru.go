package patterncache

import (
	"context"

	"github.com/arcflare/patterncache/internal/metrics"
)

// runLRUWorker waits for requestTrim signals and runs a sample-based LRU
// pass each time, instead of polling on a fixed tick — the index only needs
// trimming right after an insertion pushes it over max_entries (spec.md
// §4.5, "LRU sweeper").
func (c *Cache) runLRUWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.trimRequested:
			c.trimOnce()
		}
	}
}

// trimOnce samples up to LRUSampleSize entries from the index, evicts the
// single oldest one outside the eviction-protection window, and re-requests
// a trim if the index is still over budget.
func (c *Cache) trimOnce() {
	if c.size.Load() <= int64(c.cfg.MaxEntries) {
		return
	}

	type candidate struct {
		key   string
		entry *Entry
	}

	var oldest *candidate
	sampled := 0

	c.index.Range(func(k, v interface{}) bool {
		if sampled >= c.cfg.LRUSampleSize {
			return false
		}
		sampled++

		e := v.(*Entry)
		if e.Age() < c.cfg.EvictionProtection {
			return true // too young to evict, protects thundering recompiles
		}
		if oldest == nil || e.LastAccess() < oldest.entry.LastAccess() {
			oldest = &candidate{key: k.(string), entry: e}
		}
		return true
	})

	if oldest == nil {
		return
	}

	if c.index.CompareAndDelete(oldest.key, oldest.entry) {
		c.size.Add(-1)
		c.evictEntry(oldest.entry)
		c.sink.IncrementCounter(metrics.CounterEvictionsLRUTotal)
		c.lruEvictions.Add(1)
	}

	if c.size.Load() > int64(c.cfg.MaxEntries) {
		c.requestTrim()
	}
}
