package resource

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_HandleCapEnforced(t *testing.T) {
	tr := New(nil)

	require.NoError(t, tr.TrackHandleAllocated(2))
	require.NoError(t, tr.TrackHandleAllocated(2))

	err := tr.TrackHandleAllocated(2)
	require.Error(t, err)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "active_handles", exhausted.Resource)

	// A failed increment must not leak into the counter.
	assert.Equal(t, int64(2), tr.ActiveHandles())
}

func TestTracker_ZeroCapIsUnbounded(t *testing.T) {
	tr := New(nil)
	for i := 0; i < 100; i++ {
		require.NoError(t, tr.TrackHandleAllocated(0))
	}
	assert.Equal(t, int64(100), tr.ActiveHandles())
}

func TestTracker_ReleaseDecrementsAndCountsCumulative(t *testing.T) {
	tr := New(nil)
	require.NoError(t, tr.TrackHandleAllocated(10))
	require.NoError(t, tr.TrackHandleAllocated(10))

	tr.TrackHandleReleased()
	assert.Equal(t, int64(1), tr.ActiveHandles())
	assert.Equal(t, int64(1), tr.HandlesFreed())
}

func TestTracker_ConcurrentIncrementsNoLostUpdates(t *testing.T) {
	tr := New(nil)
	const n = 500
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = tr.TrackMatcherAllocated(0)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(n), tr.ActiveMatchers())
}

func TestTracker_MatcherCapEnforced(t *testing.T) {
	tr := New(nil)
	require.NoError(t, tr.TrackMatcherAllocated(1))
	err := tr.TrackMatcherAllocated(1)
	require.Error(t, err)
	assert.Equal(t, int64(1), tr.ActiveMatchers())
}
