package matcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcflare/patterncache/internal/engine"
	"github.com/arcflare/patterncache/internal/metrics"
	"github.com/arcflare/patterncache/internal/patterncache"
	"github.com/arcflare/patterncache/internal/resource"
)

func TestExecutor_FullAndPartialMatch(t *testing.T) {
	eng := engine.NewStdlibEngine()
	cache, err := patterncache.New(patterncache.DefaultConfig(), eng, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	entry, err := cache.GetOrCompile(patterncache.Fingerprint{Text: `\d+`, CaseSensitive: true})
	require.NoError(t, err)
	defer entry.Release()

	tracker := resource.New(metrics.Default)
	x, err := Open(entry, eng, tracker, metrics.Default, 256, 0)
	require.NoError(t, err)

	full, err := x.FullMatch([]byte("123"))
	require.NoError(t, err)
	assert.True(t, full)

	partial, err := x.PartialMatch([]byte("a123b"))
	require.NoError(t, err)
	assert.True(t, partial)

	// One reference from GetOrCompile (released by the defer above) plus
	// the executor's own.
	assert.EqualValues(t, 2, entry.RefCount())
	x.Close()
	assert.EqualValues(t, 1, entry.RefCount())

	x.Close() // idempotent
	assert.EqualValues(t, 1, entry.RefCount())
}

func TestExecutor_ConstructionEnforcesPerEntryCap(t *testing.T) {
	eng := engine.NewStdlibEngine()
	cache, err := patterncache.New(patterncache.DefaultConfig(), eng, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	entry, err := cache.GetOrCompile(patterncache.Fingerprint{Text: "capped", CaseSensitive: true})
	require.NoError(t, err)
	entry.Release() // start with ref_count 0

	tracker := resource.New(metrics.Default)

	x1, err := Open(entry, eng, tracker, metrics.Default, 1, 0)
	require.NoError(t, err)
	defer x1.Close()

	_, err = Open(entry, eng, tracker, metrics.Default, 1, 0)
	require.Error(t, err)
}

func TestExecutor_ConstructionEnforcesMatcherCapAsClosedError(t *testing.T) {
	eng := engine.NewStdlibEngine()
	cache, err := patterncache.New(patterncache.DefaultConfig(), eng, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	entry, err := cache.GetOrCompile(patterncache.Fingerprint{Text: "matcher-capped", CaseSensitive: true})
	require.NoError(t, err)
	entry.Release()

	tracker := resource.New(metrics.Default)

	x1, err := Open(entry, eng, tracker, metrics.Default, 0, 1)
	require.NoError(t, err)
	defer x1.Close()

	_, err = Open(entry, eng, tracker, metrics.Default, 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, patterncache.ErrResourceExhausted),
		"a matcher-cap breach must surface as the same closed error type other resource-exhaustion paths use")
}
