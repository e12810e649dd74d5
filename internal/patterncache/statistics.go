package patterncache

// Statistics is a point-in-time snapshot of the cache's counters and
// gauges (spec.md §4.5, "Statistics snapshot"). Each field is read via an
// independent atomic load, so the snapshot is not a single consistent
// transaction — fine for an operational dashboard, not for billing.
type Statistics struct {
	Hits              int64
	Misses            int64
	InvalidRecompiled int64
	CompilationFailed int64

	EvictionsLRU      int64
	EvictionsIdle     int64
	EvictionsDeferred int64

	CurrentSize int64
	MaxSize     int

	CurrentNativeBytes int64
	PeakNativeBytes    int64

	DeferredCurrentCount int64
	DeferredPeakCount    int64
	DeferredCurrentBytes int64
	DeferredPeakBytes    int64

	ActiveHandles  int64
	ActiveMatchers int64

	// HitRatio is hits / (hits + misses), 0 when there have been no
	// lookups yet. Not part of the original counter taxonomy — supplements
	// it as a derived convenience (spec_full.md §12).
	HitRatio float64
}

// Statistics returns a snapshot of the cache's current counters and
// gauges.
func (c *Cache) Statistics() Statistics {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return Statistics{
		Hits:              hits,
		Misses:            misses,
		InvalidRecompiled: c.invalidRecompiled.Load(),
		CompilationFailed: c.compilationFailed.Load(),

		EvictionsLRU:      c.lruEvictions.Load(),
		EvictionsIdle:     c.idleEvictions.Load(),
		EvictionsDeferred: c.deferredReleases.Load(),

		CurrentSize: c.size.Load(),
		MaxSize:     c.cfg.MaxEntries,

		CurrentNativeBytes: c.currentBytes.Load(),
		PeakNativeBytes:    c.peakBytes.Load(),

		DeferredCurrentCount: c.deferredQ.currentCount.Load(),
		DeferredPeakCount:    c.deferredQ.peakCount.Load(),
		DeferredCurrentBytes: c.deferredQ.currentBytes.Load(),
		DeferredPeakBytes:    c.deferredQ.peakBytes.Load(),

		ActiveHandles:  c.tracker.ActiveHandles(),
		ActiveMatchers: c.tracker.ActiveMatchers(),

		HitRatio: ratio,
	}
}

// Clear empties the cache in two passes: first it removes every entry from
// the index (so no new lookup can find it), then it marks each one evicted
// and either releases or defers it exactly as the sweepers would. Entries still referenced by an open match
// executor are deferred, not force-released.
func (c *Cache) Clear() {
	var evicted []*Entry

	c.index.Range(func(k, v interface{}) bool {
		e := v.(*Entry)
		if c.index.CompareAndDelete(k, e) {
			c.size.Add(-1)
			evicted = append(evicted, e)
		}
		return true
	})

	for _, e := range evicted {
		c.evictEntry(e)
	}
}

// Reconfigure is a test-only escape hatch (spec.md §4.5) that validates a
// new configuration and swaps it in; it does not retroactively change caps
// already captured by in-flight acquires. The spec's full reconfigure
// operation — build a replacement cache, clear the old one, re-point the
// global reference — is implemented one layer up, in
// pkg/patterncache.Cache.Reconfigure, since only that layer owns "the
// global reference" being re-pointed.
func (c *Cache) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// Reset clears the cache, zeroes its cumulative counters and resets its
// peak gauges (spec.md §4.7: "clear + reset peaks and counters — test-only").
// Unlike Clear alone, Reset also zeroes patterns.cache.{hits,misses} and
// sets the native-memory/deferred peak gauges to their current values; it
// does not touch the cache's resource tracker, whose counters reflect real
// outstanding allocations rather than cumulative history.
func (c *Cache) Reset() {
	c.Clear()

	c.hits.Store(0)
	c.misses.Store(0)
	c.lruEvictions.Store(0)
	c.idleEvictions.Store(0)
	c.deferredReleases.Store(0)
	c.invalidRecompiled.Store(0)
	c.compilationFailed.Store(0)

	c.peakBytes.Store(c.currentBytes.Load())
	c.deferredQ.peakCount.Store(c.deferredQ.currentCount.Load())
	c.deferredQ.peakBytes.Store(c.deferredQ.currentBytes.Load())
}
