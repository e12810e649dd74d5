package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Cache.CacheEnabled)
	assert.Equal(t, 10_000, cfg.Cache.MaxEntries)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("cache:\n  max_entries: 42\n  idle_ttl: 5m\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Cache.MaxEntries)
	assert.Equal(t, 5*time.Minute, cfg.Cache.IdleTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("cache:\n  not_a_real_field: true\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PATTERNCACHE_CACHE_MAX_ENTRIES", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Cache.MaxEntries)
}

func TestCacheConfig_ToPatternCacheConfigValidates(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Cache.ToPatternCacheConfig().Validate())
}
