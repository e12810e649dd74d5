// Package resource implements the process-wide counters that bound
// simultaneous active handles and per-pattern active matchers (spec.md
// §4.2), and publishes them to a metrics.Sink.
package resource

import (
	"sync/atomic"

	"github.com/arcflare/patterncache/internal/metrics"
)

// Tracker holds the two process-scoped atomic counters: active handles and
// active matchers. Both are compared against a configured soft cap at
// increment; a breach rolls the increment back and returns *ExhaustedError.
// Soft caps may be briefly exceeded under concurrency (spec.md §5) — this
// tracker enforces them with a single CAS-free increment-then-check-and-
// rollback, which is exactly that kind of best-effort cap.
type Tracker struct {
	activeHandles  atomic.Int64
	activeMatchers atomic.Int64
	handlesFreed   atomic.Int64
	matchersFreed  atomic.Int64

	sink metrics.Sink
}

// New constructs a Tracker and registers its two gauges (active handles,
// active matchers) with sink; the two freed counters are incremented on
// release. A nil sink is replaced by metrics.Default, the no-op sink.
func New(sink metrics.Sink) *Tracker {
	if sink == nil {
		sink = metrics.Default
	}
	t := &Tracker{sink: sink}

	sink.RegisterGauge(metrics.GaugePatternsActiveCurrent, func() float64 {
		return float64(t.activeHandles.Load())
	})
	sink.RegisterGauge(metrics.GaugeMatchersActiveCurrent, func() float64 {
		return float64(t.activeMatchers.Load())
	})

	return t
}

// TrackHandleAllocated increments the active-handle counter, failing with
// *ExhaustedError (and leaving the counter unchanged) if doing so would
// exceed cap. A cap <= 0 means unbounded.
func (t *Tracker) TrackHandleAllocated(cap int64) error {
	return trackIncrement(&t.activeHandles, cap, "active_handles")
}

// TrackHandleReleased decrements the active-handle counter and bumps the
// cumulative freed counter.
func (t *Tracker) TrackHandleReleased() {
	t.activeHandles.Add(-1)
	t.handlesFreed.Add(1)
	t.sink.IncrementCounter(metrics.CounterPatternsFreedTotal)
}

// TrackMatcherAllocated is the matcher-side counterpart of
// TrackHandleAllocated.
func (t *Tracker) TrackMatcherAllocated(cap int64) error {
	return trackIncrement(&t.activeMatchers, cap, "active_matchers")
}

// TrackMatcherReleased is the matcher-side counterpart of
// TrackHandleReleased.
func (t *Tracker) TrackMatcherReleased() {
	t.activeMatchers.Add(-1)
	t.matchersFreed.Add(1)
	t.sink.IncrementCounter(metrics.CounterMatchersFreedTotal)
}

// ActiveHandles returns the current active-handle count (test/introspection).
func (t *Tracker) ActiveHandles() int64 { return t.activeHandles.Load() }

// ActiveMatchers returns the current active-matcher count (test/introspection).
func (t *Tracker) ActiveMatchers() int64 { return t.activeMatchers.Load() }

// HandlesFreed returns the cumulative number of handles released.
func (t *Tracker) HandlesFreed() int64 { return t.handlesFreed.Load() }

// MatchersFreed returns the cumulative number of matchers released.
func (t *Tracker) MatchersFreed() int64 { return t.matchersFreed.Load() }

func trackIncrement(counter *atomic.Int64, cap int64, resourceName string) error {
	v := counter.Add(1)
	if cap > 0 && v > cap {
		counter.Add(-1)
		return &ExhaustedError{Resource: resourceName, Cap: cap}
	}
	return nil
}
