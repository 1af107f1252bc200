package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockStore_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewLockStore()
	s.nowFunc = func() time.Time { return now }

	tok, ok, err := s.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, tok)

	_, ok, _ = s.AcquireOrderLock(ctx, "o1", 10*time.Second)
	assert.False(t, ok, "held lock must not be re-acquired")

	_, ok, _ = s.AcquireOrderLock(ctx, "o2", 10*time.Second)
	assert.True(t, ok, "other orders do not contend")

	require.NoError(t, s.ReleaseOrderLock(ctx, "o1", tok))
	_, ok, _ = s.AcquireOrderLock(ctx, "o1", 10*time.Second)
	assert.True(t, ok)

	// Expired locks are reclaimable.
	now = now.Add(11 * time.Second)
	_, ok, _ = s.AcquireOrderLock(ctx, "o2", 10*time.Second)
	assert.True(t, ok)
}

func TestLockStore_LateReleaseKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewLockStore()
	s.nowFunc = func() time.Time { return now }

	first, ok, err := s.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(11 * time.Second)
	second, ok, err := s.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.ReleaseOrderLock(ctx, "o1", first))
	_, ok, _ = s.AcquireOrderLock(ctx, "o1", 10*time.Second)
	assert.False(t, ok, "expired holder must not free the current lock")

	require.NoError(t, s.ReleaseOrderLock(ctx, "o1", second))
	_, ok, _ = s.AcquireOrderLock(ctx, "o1", 10*time.Second)
	assert.True(t, ok)
}
