// Package matcher implements the match executor: a short-lived object
// bound to one cached entry and one input, through which callers actually
// run full or partial matches (spec.md §4.6).
package matcher

import (
	"sync/atomic"
	"time"

	"github.com/arcflare/patterncache/internal/engine"
	"github.com/arcflare/patterncache/internal/metrics"
	"github.com/arcflare/patterncache/internal/patterncache"
	"github.com/arcflare/patterncache/internal/resource"
)

// Executor binds one cached entry to one matching session. Constructing it
// acquires a reference on the entry (bounded by maxPerEntry) and bumps the
// process-wide active-matchers gauge; Close releases both, exactly once.
type Executor struct {
	entry   *patterncache.Entry
	engine  engine.Matcher
	tracker *resource.Tracker
	sink    metrics.Sink

	closed atomic.Bool
}

// Open constructs an Executor against entry. maxPerEntry mirrors
// Config.MaxMatchersPerEntry; matcherCap mirrors the process-wide soft cap
// the resource tracker enforces for concurrently open executors.
func Open(entry *patterncache.Entry, eng engine.Matcher, tracker *resource.Tracker, sink metrics.Sink, maxPerEntry int32, matcherCap int64) (*Executor, error) {
	if err := entry.TryAcquire(maxPerEntry); err != nil {
		return nil, err
	}
	if err := tracker.TrackMatcherAllocated(matcherCap); err != nil {
		entry.Release()
		return nil, patterncache.NewResourceExhaustedError("active matcher cap reached", err)
	}

	return &Executor{entry: entry, engine: eng, tracker: tracker, sink: sink}, nil
}

// FullMatch anchors the match at both ends of the input.
func (x *Executor) FullMatch(input []byte) (bool, error) {
	start := time.Now()
	ok, err := x.engine.FullMatch(x.entry.Handle, input)
	x.sink.RecordLatency(metrics.LatencyFullMatch, time.Since(start).Nanoseconds())
	x.sink.IncrementCounter(metrics.CounterMatchingOperationsTotal)
	if err != nil {
		x.sink.IncrementCounter(metrics.CounterNativeLibraryErrorsTotal)
	}
	return ok, err
}

// PartialMatch allows the pattern to match anywhere within the input.
func (x *Executor) PartialMatch(input []byte) (bool, error) {
	start := time.Now()
	ok, err := x.engine.PartialMatch(x.entry.Handle, input)
	x.sink.RecordLatency(metrics.LatencyPartialMatch, time.Since(start).Nanoseconds())
	x.sink.IncrementCounter(metrics.CounterMatchingOperationsTotal)
	if err != nil {
		x.sink.IncrementCounter(metrics.CounterNativeLibraryErrorsTotal)
	}
	return ok, err
}

// Close releases the executor's reference on the entry and decrements the
// active-matchers gauge. Idempotent: a second call is a no-op, since a
// double release here would under-count the entry's ref_count.
func (x *Executor) Close() {
	if !x.closed.CompareAndSwap(false, true) {
		return
	}
	x.entry.Release()
	x.tracker.TrackMatcherReleased()
}
