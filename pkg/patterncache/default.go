package patterncache

import "sync"

// The process-wide default cache instance, used by the package-level
// functions below, is what most callers should use instead of constructing
// their own. It is lazily built on first use with
// DefaultConfig(); call SetDefault during startup to install a configured
// instance before any caller touches the default (spec_full.md §9, "global
// mutable state").
var (
	defaultOnce sync.Once
	defaultInst *Cache
	defaultErr  error
)

func defaultCache() *Cache {
	defaultOnce.Do(func() {
		defaultInst, defaultErr = New(DefaultConfig(), nil)
	})
	if defaultErr != nil {
		panic("patterncache: default cache failed to initialize: " + defaultErr.Error())
	}
	return defaultInst
}

// SetDefault installs cache as the process-wide default. It must be called
// before any of the package-level convenience functions (Compile, Matches,
// ...) are first invoked — once the default has been lazily created, this
// is a no-op, matching sync.Once semantics.
func SetDefault(cache *Cache) {
	defaultOnce.Do(func() {
		defaultInst = cache
	})
}

// Compile delegates to the process-wide default cache.
func Compile(text string, caseSensitive bool) (*PatternHandle, error) {
	return defaultCache().Compile(text, caseSensitive)
}

// CompileUncached delegates to the process-wide default cache.
func CompileUncached(text string, caseSensitive bool) (*PatternHandle, error) {
	return defaultCache().CompileUncached(text, caseSensitive)
}

// Matches delegates to the process-wide default cache.
func Matches(text string, caseSensitive bool, input []byte) (bool, error) {
	return defaultCache().Matches(text, caseSensitive, input)
}

// GlobalStatistics delegates to the process-wide default cache.
func GlobalStatistics() Statistics {
	return defaultCache().Statistics()
}

// Reset clears the process-wide default cache, zeroes its cumulative
// counters and resets its peak gauges to their current values. Test-only.
func Reset() {
	defaultCache().Reset()
}
