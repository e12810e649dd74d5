// Package patterncache is the public surface of the pattern cache (spec.md
// §4.7): compile, compile_uncached, matches, statistics, clear, and the
// test-only reset/reconfigure pair. It wires the internal cache, engine
// adapter, resource tracker, and match executor together behind a small,
// stable API.
package patterncache

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/arcflare/patterncache/internal/engine"
	"github.com/arcflare/patterncache/internal/matcher"
	"github.com/arcflare/patterncache/internal/patterncache"
)

// Config mirrors internal/patterncache.Config; re-exported so callers never
// need to import the internal package directly.
type Config = patterncache.Config

// Statistics mirrors internal/patterncache.Statistics.
type Statistics = patterncache.Statistics

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config { return patterncache.DefaultConfig() }

// Cache is a pattern cache instance. The zero value is not usable; build
// one with New. Most applications use the package-level default instance
// instead (Compile, CompileUncached, Matches, GlobalStatistics and Reset in
// default.go).
type Cache struct {
	mu     sync.RWMutex
	core   *patterncache.Cache
	logger *slog.Logger
	cfg    Config

	// retired holds cores displaced by Reconfigure. Their background
	// sweepers keep running so entries still referenced by an in-flight
	// match drain through the deferred queue exactly as they would have
	// on the live cache (spec.md §4.5, "Reconfigure").
	retired []*patterncache.Cache
}

// New constructs a Cache backed by the standard-library engine adapter. A
// future native engine would be wired in here without changing any other
// exported symbol in this package.
func New(cfg Config, logger *slog.Logger) (*Cache, error) {
	core, err := patterncache.New(cfg, engine.NewStdlibEngine(), logger)
	if err != nil {
		return nil, err
	}
	return &Cache{core: core, logger: logger, cfg: cfg}, nil
}

// Close stops the cache's background sweepers, including any retired by a
// prior Reconfigure.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.core.Close()
	for _, r := range c.retired {
		if rErr := r.Close(); rErr != nil && err == nil {
			err = rErr
		}
	}
	return err
}

// PatternHandle is the cached-entry handle compile() returns. Close is
// optional for handles obtained from Compile (the underlying entry lives in
// the index regardless of whether the caller closes it; closing only drops
// this caller's own pin) but mandatory for handles obtained from
// CompileUncached (closing is the only thing that frees the engine
// resource at all). Close is idempotent: only the first call releases.
type PatternHandle struct {
	entry    *patterncache.Entry
	core     *patterncache.Cache
	cfg      Config
	uncached bool

	closed atomic.Bool
}

// Compile returns a cached entry handle for (text, caseSensitive). Pattern
// text is taken verbatim — no escaping, no trimming.
func (c *Cache) Compile(text string, caseSensitive bool) (*PatternHandle, error) {
	c.mu.RLock()
	core, cfg := c.core, c.cfg
	c.mu.RUnlock()

	entry, err := core.GetOrCompile(patterncache.Fingerprint{Text: text, CaseSensitive: caseSensitive})
	if err != nil {
		return nil, err
	}
	return &PatternHandle{entry: entry, core: core, cfg: cfg}, nil
}

// CompileUncached compiles text without consulting or populating the
// cache. The returned handle is caller-owned: it must be closed to release
// the underlying engine resource.
func (c *Cache) CompileUncached(text string, caseSensitive bool) (*PatternHandle, error) {
	c.mu.RLock()
	core, cfg := c.core, c.cfg
	c.mu.RUnlock()

	entry, err := core.CompileUncached(patterncache.Fingerprint{Text: text, CaseSensitive: caseSensitive})
	if err != nil {
		return nil, err
	}
	return &PatternHandle{entry: entry, core: core, cfg: cfg, uncached: true}, nil
}

// Close releases this handle's reference. For a cached handle this merely
// drops the caller's own pin; for an uncached handle it also releases the
// engine's native resources. Both paths release against the core the
// handle was compiled from, even if Reconfigure has since retired it
// (retired cores keep their sweepers running for exactly this reason).
func (h *PatternHandle) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	if h.uncached {
		h.core.ReleaseBypassed(h.entry)
		return
	}
	h.entry.Release()
}

// Executor opens a match executor bound to this handle, enforcing
// max_matchers_per_entry for the lifetime of the returned executor. The
// executor is opened against the same tracker and engine the handle's
// originating core uses internally, so handle compilation and match
// execution share one consistent set of resource-accounting gauges.
func (h *PatternHandle) Executor() (*matcher.Executor, error) {
	return matcher.Open(h.entry, h.core.Engine(), h.core.Tracker(), h.core.Sink(), h.cfg.MaxMatchersPerEntry, 0)
}

// FullMatch is a convenience that opens and closes an executor for a
// single full-match call.
func (h *PatternHandle) FullMatch(input []byte) (bool, error) {
	x, err := h.Executor()
	if err != nil {
		return false, err
	}
	defer x.Close()
	return x.FullMatch(input)
}

// PartialMatch is a convenience that opens and closes an executor for a
// single partial-match call.
func (h *PatternHandle) PartialMatch(input []byte) (bool, error) {
	x, err := h.Executor()
	if err != nil {
		return false, err
	}
	defer x.Close()
	return x.PartialMatch(input)
}

// Matches composes compile, match-executor open, full match, and close
// into a single call — the common case for a caller that does not need to
// hold the compiled pattern across multiple inputs.
func (c *Cache) Matches(text string, caseSensitive bool, input []byte) (bool, error) {
	h, err := c.Compile(text, caseSensitive)
	if err != nil {
		return false, err
	}
	defer h.Close()
	return h.FullMatch(input)
}

// Statistics returns a snapshot of the live core's counters and gauges.
// Retired cores from a prior Reconfigure are not included.
func (c *Cache) Statistics() Statistics {
	c.mu.RLock()
	core := c.core
	c.mu.RUnlock()
	return core.Statistics()
}

// Clear evicts every entry in the live core, deferring release of any
// still referenced by an open executor.
func (c *Cache) Clear() {
	c.mu.RLock()
	core := c.core
	c.mu.RUnlock()
	core.Clear()
}

// Reset clears the live core, zeroes its cumulative counters and resets its
// peak gauges to their current values (spec.md §4.7, "reset() — test-only").
func (c *Cache) Reset() {
	c.mu.RLock()
	core := c.core
	c.mu.RUnlock()
	core.Reset()
}

// Reconfigure performs a full reconfigure operation (spec.md §4.5): it
// builds a replacement core from cfg, clears the displaced core
// so it stops growing, retires it so its sweepers keep draining entries
// still referenced by in-flight handles, and re-points the live core to
// the replacement. Handles already issued against the displaced core keep
// working — PatternHandle remembers the core it was compiled from — but
// new calls to Compile/Matches/Statistics/Clear see the new configuration
// immediately. Production callers should not call this on a cache serving
// traffic except as part of a deliberate config reload.
func (c *Cache) Reconfigure(cfg Config) error {
	next, err := patterncache.New(cfg, engine.NewStdlibEngine(), c.logger)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.core
	old.Clear()

	c.retired = append(c.retired, old)
	c.core = next
	c.cfg = cfg
	return nil
}

// IsValid reports whether a handle's underlying engine program is still
// usable, delegating to the handle's originating core's engine adapter
// directly (spec.md §4.7).
func (c *Cache) IsValid(h *PatternHandle) bool {
	return h.core.Engine().IsOK(h.entry.Handle)
}
