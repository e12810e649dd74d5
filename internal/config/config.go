// Package config loads the application's top-level configuration: the
// pattern cache's tuning knobs and the logger's output settings, from a
// YAML file and environment variable overrides, the way
// internal/config.LoadConfig does elsewhere in this codebase family
// (github.com/spf13/viper + github.com/go-playground/validator/v10).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/arcflare/patterncache/internal/logging"
	"github.com/arcflare/patterncache/internal/patterncache"
)

// Config is the whole application's configuration surface.
type Config struct {
	Cache CacheConfig `mapstructure:"cache"`
	Log   LogConfig   `mapstructure:"log"`
}

// CacheConfig mirrors patterncache.Config field-for-field with mapstructure
// tags, since the cache's own Config carries a non-serializable
// MetricsSink field that has no place in a config file.
type CacheConfig struct {
	CacheEnabled          bool          `mapstructure:"cache_enabled"`
	MaxEntries            int           `mapstructure:"max_entries"`
	IdleTTL               time.Duration `mapstructure:"idle_ttl"`
	IdleScanPeriod        time.Duration `mapstructure:"idle_scan_period"`
	DeferredCleanupPeriod time.Duration `mapstructure:"deferred_cleanup_period"`
	MaxActiveHandles      int64         `mapstructure:"max_active_handles"`
	MaxMatchersPerEntry   int32         `mapstructure:"max_matchers_per_entry"`
	ValidateOnHit         bool          `mapstructure:"validate_on_hit"`
	EvictionProtection    time.Duration `mapstructure:"eviction_protection"`
	LRUSampleSize         int           `mapstructure:"lru_sample_size"`
	LRUTrimSlack          int           `mapstructure:"lru_trim_slack"`
}

// ToPatternCacheConfig builds an internal/patterncache.Config from the
// loaded values. MetricsSink is left nil, so the cache publishes to the
// no-op sink unless the caller sets one; cmd/patterncachectl does not set
// one.
func (c CacheConfig) ToPatternCacheConfig() patterncache.Config {
	return patterncache.Config{
		CacheEnabled:          c.CacheEnabled,
		MaxEntries:            c.MaxEntries,
		IdleTTL:               c.IdleTTL,
		IdleScanPeriod:        c.IdleScanPeriod,
		DeferredCleanupPeriod: c.DeferredCleanupPeriod,
		MaxActiveHandles:      c.MaxActiveHandles,
		MaxMatchersPerEntry:   c.MaxMatchersPerEntry,
		ValidateOnHit:         c.ValidateOnHit,
		EvictionProtection:    c.EvictionProtection,
		LRUSampleSize:         c.LRUSampleSize,
		LRUTrimSlack:          c.LRUTrimSlack,
	}
}

// LogConfig mirrors internal/logging.Config with mapstructure tags.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggingConfig builds an internal/logging.Config from the loaded values.
func (c LogConfig) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		Filename:   c.Filename,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

// Load reads configuration from configPath (if non-empty and present) and
// PATTERNCACHE_-prefixed environment variables, applying defaults first.
// This uses an isolated viper.New() instance rather than a package-level
// viper singleton, so repeated calls (as in tests) never see state left
// over from a previous call.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("patterncache")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: read %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	// UnmarshalExact rejects unknown keys, catching typos in operator YAML
	// at load time instead of silently ignoring them.
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.ToPatternCacheConfig().Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := patterncache.DefaultConfig()

	v.SetDefault("cache.cache_enabled", def.CacheEnabled)
	v.SetDefault("cache.max_entries", def.MaxEntries)
	v.SetDefault("cache.idle_ttl", def.IdleTTL)
	v.SetDefault("cache.idle_scan_period", def.IdleScanPeriod)
	v.SetDefault("cache.deferred_cleanup_period", def.DeferredCleanupPeriod)
	v.SetDefault("cache.max_active_handles", def.MaxActiveHandles)
	v.SetDefault("cache.max_matchers_per_entry", def.MaxMatchersPerEntry)
	v.SetDefault("cache.validate_on_hit", def.ValidateOnHit)
	v.SetDefault("cache.eviction_protection", def.EvictionProtection)
	v.SetDefault("cache.lru_sample_size", def.LRUSampleSize)
	v.SetDefault("cache.lru_trim_slack", def.LRUTrimSlack)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", true)
}
