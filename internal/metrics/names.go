package metrics

// Names published by the pattern cache. This set is closed and documented;
// the cache never emits a counter, latency series, or gauge name outside
// it.
const (
	// Counters.
	CounterPatternsCompiledTotal       = "patterns.compiled.total.count"
	CounterCacheHitsTotal              = "patterns.cache.hits.total.count"
	CounterCacheMissesTotal            = "patterns.cache.misses.total.count"
	CounterInvalidRecompiledTotal      = "patterns.invalid.recompiled.total.count"
	CounterEvictionsLRUTotal           = "cache.evictions.lru.total.count"
	CounterEvictionsIdleTotal          = "cache.evictions.idle.total.count"
	CounterEvictionsDeferredTotal      = "cache.evictions.deferred.total.count"
	CounterMatchingOperationsTotal     = "matching.operations.total.count"
	CounterCompilationFailedTotal      = "errors.compilation.failed.total.count"
	CounterResourceExhaustedTotal      = "errors.resource.exhausted.total.count"
	CounterNativeLibraryErrorsTotal    = "errors.native_library.total.count"
	CounterPatternsFreedTotal          = "resources.patterns.freed.total.count"
	CounterMatchersFreedTotal          = "resources.matchers.freed.total.count"

	// Latencies (nanoseconds).
	LatencyCompilation   = "patterns.compilation.latency"
	LatencyFullMatch     = "matching.full_match.latency"
	LatencyPartialMatch  = "matching.partial_match.latency"

	// Gauges.
	GaugePatternsCurrent             = "cache.patterns.current.count"
	GaugeNativeMemoryCurrent         = "cache.native_memory.current.bytes"
	GaugeNativeMemoryPeak            = "cache.native_memory.peak.bytes"
	GaugeDeferredPatternsCurrent     = "cache.deferred.patterns.current.count"
	GaugeDeferredPatternsPeak        = "cache.deferred.patterns.peak.count"
	GaugeDeferredNativeMemoryCurrent = "cache.deferred.native_memory.current.bytes"
	GaugeDeferredNativeMemoryPeak    = "cache.deferred.native_memory.peak.bytes"
	GaugePatternsActiveCurrent       = "resources.patterns.active.current.count"
	GaugeMatchersActiveCurrent       = "resources.matchers.active.current.count"
)
