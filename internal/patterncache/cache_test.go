package patterncache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcflare/patterncache/internal/engine"
)

func newTestCache(t *testing.T, mutate func(*Config)) *Cache {
	t.Helper()
	cfg := DefaultConfig()
	cfg.IdleScanPeriod = time.Hour
	cfg.DeferredCleanupPeriod = 20 * time.Millisecond
	cfg.EvictionProtection = 0
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg, engine.NewStdlibEngine(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// S1: hit after miss.
func TestGetOrCompile_HitAfterMiss(t *testing.T) {
	c := newTestCache(t, nil)
	fp := Fingerprint{Text: `\d+`, CaseSensitive: true}

	e1, err := c.GetOrCompile(fp)
	require.NoError(t, err)
	e1.Release()

	e2, err := c.GetOrCompile(fp)
	require.NoError(t, err)
	e2.Release()

	assert.Same(t, e1, e2)
	stats := c.Statistics()
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.CurrentSize)
}

// S2: case sensitivity discriminates the cache key.
func TestGetOrCompile_CaseSensitivityDiscriminates(t *testing.T) {
	c := newTestCache(t, nil)

	sensitive, err := c.GetOrCompile(Fingerprint{Text: "abc", CaseSensitive: true})
	require.NoError(t, err)
	defer sensitive.Release()

	insensitive, err := c.GetOrCompile(Fingerprint{Text: "abc", CaseSensitive: false})
	require.NoError(t, err)
	defer insensitive.Release()

	assert.NotSame(t, sensitive, insensitive)
	assert.EqualValues(t, 2, c.Statistics().Misses)
}

func TestGetOrCompile_EmptyPatternFails(t *testing.T) {
	c := newTestCache(t, nil)
	_, err := c.GetOrCompile(Fingerprint{Text: "", CaseSensitive: true})
	require.Error(t, err)
	var pcErr *Error
	require.ErrorAs(t, err, &pcErr)
	assert.Equal(t, KindCompilationFailed, pcErr.Kind)
}

// S3: LRU eviction under pressure, oldest entry goes first.
func TestLRU_EvictsOldestBeyondMaxEntries(t *testing.T) {
	c := newTestCache(t, func(cfg *Config) { cfg.MaxEntries = 2; cfg.LRUTrimSlack = 0 })

	e1, err := c.GetOrCompile(Fingerprint{Text: "p1", CaseSensitive: true})
	require.NoError(t, err)
	e1.Release()
	time.Sleep(2 * time.Millisecond)

	e2, err := c.GetOrCompile(Fingerprint{Text: "p2", CaseSensitive: true})
	require.NoError(t, err)
	e2.Release()
	time.Sleep(2 * time.Millisecond)

	e3, err := c.GetOrCompile(Fingerprint{Text: "p3", CaseSensitive: true})
	require.NoError(t, err)
	e3.Release()

	c.trimOnce() // deterministic trim instead of waiting on the channel signal

	assert.Eventually(t, func() bool {
		return c.Statistics().EvictionsLRU >= 1
	}, time.Second, 5*time.Millisecond)

	_, stillCached := c.index.Load(Fingerprint{Text: "p1", CaseSensitive: true}.key())
	assert.False(t, stillCached, "oldest entry should have been evicted")
}

// S4: deferred eviction while an entry is still actively referenced.
func TestDeferredQueue_HoldsEntryUntilReleased(t *testing.T) {
	c := newTestCache(t, func(cfg *Config) { cfg.MaxEntries = 1; cfg.LRUTrimSlack = 0 })

	p1, err := c.GetOrCompile(Fingerprint{Text: "p1", CaseSensitive: true})
	require.NoError(t, err)

	// Simulate an open match executor by acquiring a second reference.
	require.NoError(t, p1.TryAcquire(c.cfg.MaxMatchersPerEntry))
	p1.Release() // release the compile()-level reference; the "executor" ref remains

	time.Sleep(2 * time.Millisecond)
	p2, err := c.GetOrCompile(Fingerprint{Text: "p2", CaseSensitive: true})
	require.NoError(t, err)
	p2.Release()

	c.trimOnce()

	assert.Eventually(t, func() bool {
		return p1.Evicted()
	}, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, p1.RefCount())
	assert.EqualValues(t, 1, c.deferredQ.len())

	p1.Release() // the executor releases its hold
	c.drainDeferred()

	assert.EqualValues(t, 0, c.deferredQ.len())
}

// S5: idle eviction.
func TestIdleSweeper_EvictsStaleEntries(t *testing.T) {
	c := newTestCache(t, func(cfg *Config) { cfg.IdleTTL = 10 * time.Millisecond })

	e, err := c.GetOrCompile(Fingerprint{Text: "idle", CaseSensitive: true})
	require.NoError(t, err)
	e.Release()

	time.Sleep(20 * time.Millisecond)
	c.sweepIdle()

	assert.Eventually(t, func() bool {
		return c.Statistics().EvictionsIdle >= 1
	}, time.Second, 5*time.Millisecond)
}

// S6: concurrent single-flight compilation of the same pattern.
func TestGetOrCompile_ConcurrentSingleFlight(t *testing.T) {
	c := newTestCache(t, nil)
	fp := Fingerprint{Text: `[a-z]+\d*`, CaseSensitive: true}

	const workers = 100
	var wg sync.WaitGroup
	entries := make([]*Entry, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := c.GetOrCompile(fp)
			entries[i] = e
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
		assert.Same(t, entries[0], entries[i])
		entries[i].Release()
	}

	stats := c.Statistics()
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, workers-1, stats.Hits)
}

func TestClear_RemovesAllEntries(t *testing.T) {
	c := newTestCache(t, nil)
	for _, p := range []string{"p1", "p2", "p3"} {
		e, err := c.GetOrCompile(Fingerprint{Text: p, CaseSensitive: true})
		require.NoError(t, err)
		e.Release()
	}
	require.EqualValues(t, 3, c.Statistics().CurrentSize)

	c.Clear()

	assert.EqualValues(t, 0, c.Statistics().CurrentSize)
}

func TestValidateOnHit_RecompilesCorruptedEntry(t *testing.T) {
	c := newTestCache(t, nil)
	fp := Fingerprint{Text: "heal-me", CaseSensitive: true}

	e, err := c.GetOrCompile(fp)
	require.NoError(t, err)
	c.engine.Release(e.Handle) // corrupt the handle behind the cache's back
	e.Release()

	e2, err := c.GetOrCompile(fp)
	require.NoError(t, err)
	defer e2.Release()

	assert.NotSame(t, e, e2)
	assert.EqualValues(t, 1, c.Statistics().InvalidRecompiled)
}

func TestMaxMatchersPerEntry_EnforcesCap(t *testing.T) {
	c := newTestCache(t, func(cfg *Config) { cfg.MaxMatchersPerEntry = 2 })
	fp := Fingerprint{Text: "capped", CaseSensitive: true}

	e, err := c.GetOrCompile(fp)
	require.NoError(t, err)
	e.Release() // back to ref_count 0, so the cap test below starts clean

	require.NoError(t, e.TryAcquire(c.cfg.MaxMatchersPerEntry))
	require.NoError(t, e.TryAcquire(c.cfg.MaxMatchersPerEntry))
	err = e.TryAcquire(c.cfg.MaxMatchersPerEntry)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceExhausted)
}
