package engine

import (
	"regexp"
	"strings"
	"sync/atomic"
)

// StdlibEngine implements Matcher on top of the standard library's regexp
// package, whose RE2-derived automata already give the linear-time
// execution guarantee spec.md assumes of the engine. It is the default,
// always-available engine; a native/cgo engine would implement the same
// Matcher interface and slot in at the pattern cache's construction site
// without any other package needing to change.
type StdlibEngine struct {
	compiled atomic.Int64 // cumulative compile attempts, diagnostic only
}

// NewStdlibEngine constructs the default engine adapter.
func NewStdlibEngine() *StdlibEngine {
	return &StdlibEngine{}
}

func (e *StdlibEngine) Compile(text string, caseSensitive bool) (Handle, error) {
	e.compiled.Add(1)

	if text == "" {
		return nil, &CompileError{Pattern: text, Message: ErrEmptyPattern.Error()}
	}

	pattern := text
	if !caseSensitive {
		pattern = "(?i)" + text
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &CompileError{Pattern: text, Message: err.Error()}
	}
	// Leftmost-longest semantics make FindIndex report a match spanning the
	// whole input whenever one exists, which FullMatch relies on.
	re.Longest()

	return &program{
		re:            re,
		caseSensitive: caseSensitive,
		byteCost:      estimateByteCost(re),
	}, nil
}

func (e *StdlibEngine) IsOK(h Handle) bool {
	if h == nil {
		return false
	}
	return !h.released && h.re != nil
}

func (e *StdlibEngine) MemoryBytes(h Handle) int {
	if h == nil {
		return 0
	}
	return h.byteCost
}

func (e *StdlibEngine) FullMatch(h Handle, input []byte) (bool, error) {
	if h == nil || h.released {
		return false, errReleasedHandle
	}
	loc := h.re.FindIndex(input)
	return loc != nil && loc[0] == 0 && loc[1] == len(input), nil
}

func (e *StdlibEngine) PartialMatch(h Handle, input []byte) (bool, error) {
	if h == nil || h.released {
		return false, errReleasedHandle
	}
	return h.re.Match(input), nil
}

func (e *StdlibEngine) Release(h Handle) {
	if h == nil {
		return
	}
	h.released = true
	h.re = nil
}

var errReleasedHandle = &CompileError{Message: "operation on a released handle"}

// estimateByteCost approximates the engine-reported memory footprint of a
// compiled program. The standard library does not expose this directly, so
// the adapter derives a stand-in from the compiled program's string form —
// proportional to automaton size, monotone in pattern complexity, and O(1)
// once computed, which is all spec.md §4.1 requires of memory_bytes.
func estimateByteCost(re *regexp.Regexp) int {
	const baseOverhead = 256 // fixed per-program bookkeeping estimate
	return baseOverhead + len(re.String())*8 + strings.Count(re.String(), "|")*32
}
