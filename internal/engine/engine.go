// Package engine defines the narrow contract the pattern cache consumes from
// a linear-time regular-expression engine, and ships one concrete
// implementation (StdlibEngine) built on the standard library's regexp
// package. A future native engine, reached over cgo or another FFI boundary,
// would implement the same Matcher interface without requiring any change
// above this package.
package engine

import "errors"

// Handle is an opaque reference to an engine-compiled regex program. Only
// this package may dereference it; callers (the pattern cache, the match
// executor) pass it through without inspecting its contents. The zero value
// is the null handle; Release on a null handle is a no-op.
type Handle = *program

type program struct {
	re            matchable
	caseSensitive bool
	// byteCost is captured once at compile time and never recomputed;
	// MemoryBytes is documented as O(1) and cacheable.
	byteCost int
	released bool
}

// matchable is the minimal surface StdlibEngine needs from a compiled
// regexp.Regexp; kept as an interface so tests can substitute a fake engine
// without depending on the regexp package.
type matchable interface {
	Match(b []byte) bool
	FindIndex(b []byte) []int
}

// ErrEmptyPattern is returned when the caller presents an empty pattern
// text; the engine contract rejects it as a compilation failure rather than
// silently matching everything.
var ErrEmptyPattern = errors.New("engine: empty pattern text")

// CompileError carries the engine's rejection of a pattern. The pattern
// text is NOT truncated here — that is a presentation concern of the
// caller (see patterncache.errors), not the adapter's.
type CompileError struct {
	Pattern string
	Message string
}

func (e *CompileError) Error() string {
	return "engine: compile failed: " + e.Message
}

// Matcher is the total contract the cache consumes from a regex engine:
// compile, validity/size introspection, the two match modes, and release.
// Implementations must be safe for concurrent invocation on distinct
// handles; the cache never issues two concurrent operations on the same
// handle except the two match operations, which the engine is assumed to
// support concurrently on a single compiled program.
type Matcher interface {
	// Compile builds a new handle for (text, caseSensitive). Returns a
	// *CompileError (wrapped) on rejection; never returns a partial handle.
	Compile(text string, caseSensitive bool) (Handle, error)

	// IsOK reports whether a handle is still a valid, usable program. Used
	// by the cache's validate-on-hit path to auto-heal a corrupted entry.
	IsOK(h Handle) bool

	// MemoryBytes returns the engine-reported footprint of a handle. O(1).
	MemoryBytes(h Handle) int

	// FullMatch anchors the match at both ends of input.
	FullMatch(h Handle, input []byte) (bool, error)

	// PartialMatch allows the pattern to match anywhere within input.
	PartialMatch(h Handle, input []byte) (bool, error)

	// Release returns the handle's engine-side resources. Release on a nil
	// handle, or a handle already released, is a no-op — a double-release
	// observed here indicates a bug upstream (the deferred queue failed to
	// enforce release-exactly-once), but the adapter itself must not panic.
	Release(h Handle)
}
