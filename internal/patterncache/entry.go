package patterncache

import (
	"sync/atomic"
	"time"

	"github.com/arcflare/patterncache/internal/engine"
)

// Entry is the cached record pairing a fingerprint with an engine handle
// and its accounting fields (spec.md §3). Every mutable field is atomic;
// no lock is ever taken on an entry on the hot path.
type Entry struct {
	Fingerprint Fingerprint
	Handle      engine.Handle
	ByteCost    int64
	CreatedAt   int64 // wall-clock Unix nanoseconds at insertion

	lastAccess int64        // atomic wall-clock Unix nanoseconds, CAS-max updated
	refCount   atomic.Int32 // 0 means "no active matchers"
	evicted    atomic.Bool  // once true, unreachable through the main index

	// fromCache is false for entries returned by compile_uncached; such
	// entries never enter the index or the deferred queue; the caller
	// releases the handle directly on close.
	fromCache bool
}

// newEntry constructs an Entry with ref_count=1, matching the single-flight
// winner's initial reference (spec.md §4.5 step 4).
func newEntry(fp Fingerprint, h engine.Handle, byteCost int64, fromCache bool) *Entry {
	now := time.Now().UnixNano()
	e := &Entry{
		Fingerprint: fp,
		Handle:      h,
		ByteCost:    byteCost,
		CreatedAt:   now,
		lastAccess:  now,
		fromCache:   fromCache,
	}
	e.refCount.Store(1)
	return e
}

// TryAcquire CAS-increments the reference count iff the result would not
// exceed max. max <= 0 means unbounded.
func (e *Entry) TryAcquire(max int32) error {
	for {
		cur := e.refCount.Load()
		next := cur + 1
		if max > 0 && next > max {
			return newResourceExhausted("matcher cap reached for entry", nil)
		}
		if e.refCount.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

// Release decrements the reference count; it never goes negative.
func (e *Entry) Release() {
	for {
		cur := e.refCount.Load()
		if cur <= 0 {
			return
		}
		if e.refCount.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// RefCount returns the current reference count.
func (e *Entry) RefCount() int32 { return e.refCount.Load() }

// Touch CAS-max-updates last_access_nanos to now, so concurrent accesses
// never move the timestamp backwards (spec.md §5: "monotone per entry").
func (e *Entry) Touch() {
	now := time.Now().UnixNano()
	for {
		cur := atomic.LoadInt64(&e.lastAccess)
		if now <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(&e.lastAccess, cur, now) {
			return
		}
	}
}

// LastAccess returns the last-access timestamp in wall-clock Unix nanoseconds.
func (e *Entry) LastAccess() int64 { return atomic.LoadInt64(&e.lastAccess) }

// MarkEvicted flips evicted from false to true exactly once, returning
// whether this call performed the transition. Only the winner of this CAS
// may move the entry to the deferred queue — a concurrent LRU sweep and
// idle sweep racing on the same entry must not both hand it off.
func (e *Entry) MarkEvicted() bool {
	return e.evicted.CompareAndSwap(false, true)
}

// Evicted reports whether the entry has left the main index.
func (e *Entry) Evicted() bool { return e.evicted.Load() }

// Age returns how long ago the entry was created.
func (e *Entry) Age() time.Duration {
	return time.Duration(time.Now().UnixNano() - e.CreatedAt)
}
