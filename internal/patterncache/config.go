package patterncache

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/arcflare/patterncache/internal/metrics"
)

// Config is the cache's configuration (spec.md §3). It is built once and
// validated at construction. The public pkg/patterncache Reconfigure
// (test-only) swaps in a whole new Cache; this package's Cache.Reconfigure
// replaces the Config of an existing Cache in place.
type Config struct {
	CacheEnabled bool `mapstructure:"cache_enabled" validate:"-"`

	MaxEntries int `mapstructure:"max_entries" validate:"gte=0"`

	IdleTTL        time.Duration `mapstructure:"idle_ttl" validate:"gte=0"`
	IdleScanPeriod time.Duration `mapstructure:"idle_scan_period" validate:"gt=0"`

	DeferredCleanupPeriod time.Duration `mapstructure:"deferred_cleanup_period" validate:"gt=0"`

	MaxActiveHandles     int64 `mapstructure:"max_active_handles" validate:"gte=0"`
	MaxMatchersPerEntry  int32 `mapstructure:"max_matchers_per_entry" validate:"gte=0"`

	ValidateOnHit bool `mapstructure:"validate_on_hit" validate:"-"`

	EvictionProtection time.Duration `mapstructure:"eviction_protection" validate:"gte=0"`

	// LRUSampleSize bounds the sample-based LRU scan (spec.md §4.5, §9).
	LRUSampleSize int `mapstructure:"lru_sample_size" validate:"gt=0"`

	// LRUTrimSlack is how far over MaxEntries the index may grow before an
	// async trim is scheduled (spec.md §4.5: "breach max_entries by some
	// slack").
	LRUTrimSlack int `mapstructure:"lru_trim_slack" validate:"gte=0"`

	MetricsSink metrics.Sink `mapstructure:"-" validate:"-"`
}

// DefaultConfig returns the documented defaults from spec.md §3/§9: caching
// on, validation-on-hit on (resolving the open question toward "safe by
// default"), a 500-entry LRU sample.
func DefaultConfig() Config {
	return Config{
		CacheEnabled:          true,
		MaxEntries:            10_000,
		IdleTTL:               10 * time.Minute,
		IdleScanPeriod:        30 * time.Second,
		DeferredCleanupPeriod: 5 * time.Second,
		MaxActiveHandles:      50_000,
		MaxMatchersPerEntry:   256,
		ValidateOnHit:         true,
		EvictionProtection:    1 * time.Second,
		LRUSampleSize:         500,
		LRUTrimSlack:          64,
		MetricsSink:           metrics.Default,
	}
}

var validate = validator.New()

// Validate rejects an unusable configuration at construction time, the way
// pkg/history/cache.Config.Validate and the internal/config validator-tag
// structs do. Unknown options are rejected earlier, at the
// viper-unmarshal boundary (internal/config), not here — this only checks
// the values of known fields.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return newInvariantViolation("invalid configuration: " + err.Error())
	}
	return nil
}

func (c Config) sink() metrics.Sink {
	if c.MetricsSink == nil {
		return metrics.Default
	}
	return c.MetricsSink
}
