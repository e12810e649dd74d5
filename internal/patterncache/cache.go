// Package patterncache implements the concurrent pattern cache and
// handle-lifecycle manager: the coordination layer between callers and an
// externally supplied regex engine (spec.md §§2-5).
package patterncache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/arcflare/patterncache/internal/engine"
	"github.com/arcflare/patterncache/internal/metrics"
	"github.com/arcflare/patterncache/internal/resource"
)

// Cache is the heart of the system: a concurrent fingerprint→entry index
// with single-flight compilation, sample-based LRU eviction, idle-age
// eviction, and a deferred-release queue (spec.md §4.5).
type Cache struct {
	cfg    Config
	engine engine.Matcher
	sink   metrics.Sink
	logger *slog.Logger

	tracker *resource.Tracker

	index sync.Map // string fingerprint key -> *Entry
	size  atomic.Int64
	sf    singleflight.Group

	deferredQ *deferredQueue

	currentBytes atomic.Int64
	peakBytes    atomic.Int64

	hits              atomic.Int64
	misses            atomic.Int64
	lruEvictions      atomic.Int64
	idleEvictions     atomic.Int64
	deferredReleases  atomic.Int64
	invalidRecompiled atomic.Int64
	compilationFailed atomic.Int64

	trimRequested chan struct{}

	group  *errgroup.Group
	cancel context.CancelFunc
}

// New constructs a Cache, validates cfg, registers gauges with cfg's
// metrics sink, and starts the three background sweepers (spec.md §5).
// Call Close to stop them.
func New(cfg Config, eng engine.Matcher, logger *slog.Logger) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	sink := cfg.sink()
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	c := &Cache{
		cfg:           cfg,
		engine:        eng,
		sink:          sink,
		logger:        logger,
		tracker:       resource.New(sink),
		deferredQ:     newDeferredQueue(),
		trimRequested: make(chan struct{}, 1),
		group:         group,
		cancel:        cancel,
	}

	c.registerGauges()

	group.Go(func() error { c.runIdleSweeper(ctx); return nil })
	group.Go(func() error { c.runDeferredSweeper(ctx); return nil })
	group.Go(func() error { c.runLRUWorker(ctx); return nil })

	return c, nil
}

func (c *Cache) registerGauges() {
	c.sink.RegisterGauge(metrics.GaugePatternsCurrent, func() float64 { return float64(c.size.Load()) })
	c.sink.RegisterGauge(metrics.GaugeNativeMemoryCurrent, func() float64 { return float64(c.currentBytes.Load()) })
	c.sink.RegisterGauge(metrics.GaugeNativeMemoryPeak, func() float64 { return float64(c.peakBytes.Load()) })
	c.sink.RegisterGauge(metrics.GaugeDeferredPatternsCurrent, func() float64 { return float64(c.deferredQ.currentCount.Load()) })
	c.sink.RegisterGauge(metrics.GaugeDeferredPatternsPeak, func() float64 { return float64(c.deferredQ.peakCount.Load()) })
	c.sink.RegisterGauge(metrics.GaugeDeferredNativeMemoryCurrent, func() float64 { return float64(c.deferredQ.currentBytes.Load()) })
	c.sink.RegisterGauge(metrics.GaugeDeferredNativeMemoryPeak, func() float64 { return float64(c.deferredQ.peakBytes.Load()) })
}

// Tracker exposes the cache's resource tracker so a wrapping package (see
// pkg/patterncache) can open match executors against the same handle/matcher
// accounting the cache itself uses, instead of standing up a second
// tracker that would double-register the same gauge names.
func (c *Cache) Tracker() *resource.Tracker { return c.tracker }

// Engine exposes the cache's engine adapter for the same reason Tracker
// does: a match executor must invoke the identical adapter instance that
// compiled the handle.
func (c *Cache) Engine() engine.Matcher { return c.engine }

// Sink exposes the cache's metrics sink.
func (c *Cache) Sink() metrics.Sink { return c.sink }

// Close cancels the background sweepers and waits for them to return. It
// does not release cached handles — use Clear first if that is desired.
func (c *Cache) Close() error {
	c.cancel()
	return c.group.Wait()
}

// GetOrCompile is the heart of the cache: probe, validate-on-hit, acquire,
// or single-flight compile (spec.md §4.5). The returned Entry carries one
// acquired reference that the caller must eventually Release.
func (c *Cache) GetOrCompile(fp Fingerprint) (*Entry, error) {
	if !c.cfg.CacheEnabled {
		return c.compileBypassed(fp)
	}

	key := fp.key()

	if v, ok := c.index.Load(key); ok {
		entry := v.(*Entry)
		if c.cfg.ValidateOnHit && !c.engine.IsOK(entry.Handle) {
			c.invalidateAndEvict(key, entry)
			c.sink.IncrementCounter(metrics.CounterInvalidRecompiledTotal)
			c.invalidRecompiled.Add(1)
			// fall through to single-flight recompile below
		} else if err := entry.TryAcquire(c.cfg.MaxMatchersPerEntry); err != nil {
			c.sink.IncrementCounter(metrics.CounterResourceExhaustedTotal)
			return nil, err
		} else {
			entry.Touch()
			c.sink.IncrementCounter(metrics.CounterCacheHitsTotal)
			c.hits.Add(1)
			return entry, nil
		}
	}

	return c.singleFlightCompile(fp, key)
}

func (c *Cache) singleFlightCompile(fp Fingerprint, key string) (*Entry, error) {
	// Only the caller whose closure Do actually runs acquires inside it;
	// callers that joined an in-flight Do acquire their own reference below.
	ran := false
	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		ran = true
		// Re-probe: a previous single-flight round for this key may have
		// published an entry while this caller waited to enter Do.
		if existing, ok := c.index.Load(key); ok {
			entry := existing.(*Entry)
			if acqErr := entry.TryAcquire(c.cfg.MaxMatchersPerEntry); acqErr == nil {
				entry.Touch()
				c.sink.IncrementCounter(metrics.CounterCacheHitsTotal)
				c.hits.Add(1)
				return entry, nil
			}
			// Cap reached even on the re-probed entry: surface directly,
			// no compilation needed.
			c.sink.IncrementCounter(metrics.CounterResourceExhaustedTotal)
			return nil, newResourceExhausted("matcher cap reached for entry", nil)
		}

		if allocErr := c.tracker.TrackHandleAllocated(c.cfg.MaxActiveHandles); allocErr != nil {
			c.sink.IncrementCounter(metrics.CounterResourceExhaustedTotal)
			return nil, newResourceExhausted("active handle cap reached", allocErr)
		}

		start := time.Now()
		h, compileErr := c.engine.Compile(fp.Text, fp.CaseSensitive)
		c.sink.RecordLatency(metrics.LatencyCompilation, time.Since(start).Nanoseconds())

		if compileErr != nil {
			c.tracker.TrackHandleReleased() // roll back the allocation
			c.sink.IncrementCounter(metrics.CounterCompilationFailedTotal)
			c.compilationFailed.Add(1)
			return nil, newCompilationFailed(fp.Text, "engine rejected pattern", compileErr)
		}

		byteCost := int64(c.engine.MemoryBytes(h))
		entry := newEntry(fp, h, byteCost, true)
		c.index.Store(key, entry)
		c.size.Add(1)

		current := c.currentBytes.Add(byteCost)
		casMax(&c.peakBytes, current)

		c.sink.IncrementCounter(metrics.CounterPatternsCompiledTotal)
		c.sink.IncrementCounter(metrics.CounterCacheMissesTotal)
		c.misses.Add(1)

		if c.size.Load() > int64(c.cfg.MaxEntries+c.cfg.LRUTrimSlack) {
			c.requestTrim()
		}

		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	entry := v.(*Entry)
	if !ran {
		if acqErr := entry.TryAcquire(c.cfg.MaxMatchersPerEntry); acqErr != nil {
			c.sink.IncrementCounter(metrics.CounterResourceExhaustedTotal)
			return nil, acqErr
		}
		entry.Touch()
		c.sink.IncrementCounter(metrics.CounterCacheHitsTotal)
		c.hits.Add(1)
	}
	return entry, nil
}

// compileBypassed implements cache_enabled=false: every call invokes the
// engine directly and hands ownership to the caller (spec.md §4.5 "Bypass
// mode").
func (c *Cache) compileBypassed(fp Fingerprint) (*Entry, error) {
	if err := c.tracker.TrackHandleAllocated(c.cfg.MaxActiveHandles); err != nil {
		c.sink.IncrementCounter(metrics.CounterResourceExhaustedTotal)
		return nil, newResourceExhausted("active handle cap reached", err)
	}

	start := time.Now()
	h, err := c.engine.Compile(fp.Text, fp.CaseSensitive)
	c.sink.RecordLatency(metrics.LatencyCompilation, time.Since(start).Nanoseconds())
	if err != nil {
		c.tracker.TrackHandleReleased()
		c.sink.IncrementCounter(metrics.CounterCompilationFailedTotal)
		return nil, newCompilationFailed(fp.Text, "engine rejected pattern", err)
	}

	c.sink.IncrementCounter(metrics.CounterPatternsCompiledTotal)
	byteCost := int64(c.engine.MemoryBytes(h))
	return newEntry(fp, h, byteCost, false), nil
}

// CompileUncached compiles fp on the bypass path regardless of
// cache_enabled; release the result with ReleaseBypassed.
func (c *Cache) CompileUncached(fp Fingerprint) (*Entry, error) {
	return c.compileBypassed(fp)
}

// ReleaseBypassed releases an entry obtained from compileBypassed directly
// against the engine; it never touches the index or deferred queue.
func (c *Cache) ReleaseBypassed(e *Entry) {
	c.engine.Release(e.Handle)
	c.tracker.TrackHandleReleased()
}

// invalidateAndEvict removes a bad entry discovered on validate-on-hit from
// the index and hands it to the same evict-or-defer path LRU/idle use.
func (c *Cache) invalidateAndEvict(key string, e *Entry) {
	if c.index.CompareAndDelete(key, e) {
		c.size.Add(-1)
		c.evictEntry(e)
	}
}

// evictEntry performs the shared "remove from accounting, release now or
// defer" sequence used by LRU eviction, idle eviction, invalidation, and
// Clear. Callers must have already removed e from the index.
func (c *Cache) evictEntry(e *Entry) {
	if !e.MarkEvicted() {
		return // another sweeper already won the race on this entry
	}

	c.currentBytes.Add(-e.ByteCost)

	if e.RefCount() == 0 {
		c.releaseNow(e)
	} else {
		c.deferredQ.push(e)
	}
}

func (c *Cache) releaseNow(e *Entry) {
	c.engine.Release(e.Handle)
	c.tracker.TrackHandleReleased()
}

func (c *Cache) requestTrim() {
	select {
	case c.trimRequested <- struct{}{}:
	default:
	}
}
