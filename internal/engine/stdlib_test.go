package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdlibEngine_CompileAndMatch(t *testing.T) {
	e := NewStdlibEngine()

	h, err := e.Compile(`\d+`, true)
	require.NoError(t, err)
	require.True(t, e.IsOK(h))

	full, err := e.FullMatch(h, []byte("123"))
	require.NoError(t, err)
	assert.True(t, full)

	full, err = e.FullMatch(h, []byte("a123"))
	require.NoError(t, err)
	assert.False(t, full)

	partial, err := e.PartialMatch(h, []byte("a123b"))
	require.NoError(t, err)
	assert.True(t, partial)
}

func TestStdlibEngine_CaseSensitivity(t *testing.T) {
	e := NewStdlibEngine()

	sensitive, err := e.Compile("abc", true)
	require.NoError(t, err)
	insensitive, err := e.Compile("abc", false)
	require.NoError(t, err)

	match, _ := e.PartialMatch(sensitive, []byte("ABC"))
	assert.False(t, match)

	match, _ = e.PartialMatch(insensitive, []byte("ABC"))
	assert.True(t, match)
}

func TestStdlibEngine_EmptyPatternRejected(t *testing.T) {
	e := NewStdlibEngine()

	h, err := e.Compile("", true)
	require.Error(t, err)
	assert.Nil(t, h)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
}

func TestStdlibEngine_InvalidPatternRejected(t *testing.T) {
	e := NewStdlibEngine()

	h, err := e.Compile("(unclosed", true)
	require.Error(t, err)
	assert.Nil(t, h)
}

func TestStdlibEngine_ReleaseIsIdempotentAndNilSafe(t *testing.T) {
	e := NewStdlibEngine()

	e.Release(nil) // must not panic

	h, err := e.Compile("x", true)
	require.NoError(t, err)

	e.Release(h)
	assert.False(t, e.IsOK(h))

	e.Release(h) // second release must not panic
	assert.False(t, e.IsOK(h))
}

func TestStdlibEngine_MemoryBytesIsPositiveAndStable(t *testing.T) {
	e := NewStdlibEngine()

	h, err := e.Compile(`[a-z]+(foo|bar|baz)`, true)
	require.NoError(t, err)

	first := e.MemoryBytes(h)
	second := e.MemoryBytes(h)
	assert.Positive(t, first)
	assert.Equal(t, first, second)
}

func TestStdlibEngine_OperationsOnReleasedHandleFail(t *testing.T) {
	e := NewStdlibEngine()

	h, err := e.Compile("x", true)
	require.NoError(t, err)
	e.Release(h)

	_, err = e.FullMatch(h, []byte("x"))
	assert.Error(t, err)

	_, err = e.PartialMatch(h, []byte("x"))
	assert.Error(t, err)
}
