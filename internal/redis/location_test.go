package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLocationStore_UpdateAndGet(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	store := NewLocationStore(client)

	loc, err := store.GetLocation(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, loc)

	_, err = store.UpdateLocation(ctx, "r1", domain.Place{Latitude: 14.5995, Longitude: 120.9842, Address: "Makati CBD"})
	require.NoError(t, err)
	_, err = store.UpdateLocation(ctx, "r1", domain.Place{Latitude: 14.6042, Longitude: 121.0122, Address: "BGC"})
	require.NoError(t, err)

	loc, err = store.GetLocation(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "BGC", loc.Address)
	assert.Equal(t, 14.6042, loc.Latitude)
	assert.Equal(t, 121.0122, loc.Longitude)
}

func TestLocationStore_RepeatedUpdateKeepsRecord(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	store := NewLocationStore(client)

	calls := 0
	store.nowFunc = func() time.Time {
		calls++
		return time.Date(2025, 1, 1, 0, 0, calls, 0, time.UTC)
	}

	place := domain.Place{Latitude: 14.6, Longitude: 121.0, Address: "C5 Road"}
	first, err := store.UpdateLocation(ctx, "r1", place)
	require.NoError(t, err)
	second, err := store.UpdateLocation(ctx, "r1", place)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestLocationStore_InvalidLocation(t *testing.T) {
	_, client := newTestClient(t)
	store := NewLocationStore(client)

	_, err := store.UpdateLocation(context.Background(), "r1", domain.Place{Latitude: 0, Longitude: 190})
	require.ErrorIs(t, err, domain.ErrInvalidLocation)
}

func TestLocationStore_FindNearbyRiders(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	store := NewLocationStore(client)

	_, _ = store.UpdateLocation(ctx, "far", domain.Place{Latitude: 14.6042, Longitude: 121.0122})
	_, _ = store.UpdateLocation(ctx, "near", domain.Place{Latitude: 14.5550, Longitude: 121.0250})
	_, _ = store.UpdateLocation(ctx, "cebu", domain.Place{Latitude: 10.3157, Longitude: 123.8854})

	ids, err := store.FindNearbyRiders(ctx, 14.5547, 121.0244, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "far"}, ids)

	// Moving a rider moves it in the index too.
	_, err = store.UpdateLocation(ctx, "cebu", domain.Place{Latitude: 14.5548, Longitude: 121.0245})
	require.NoError(t, err)
	ids, err = store.FindNearbyRiders(ctx, 14.5547, 121.0244, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"cebu", "near", "far"}, ids)
}

func TestLockStore_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	locks := NewLockStore(client)

	tok, ok, err := locks.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, tok)

	_, ok, err = locks.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(11 * time.Second)
	tok, ok, err = locks.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock is reclaimable")

	require.NoError(t, locks.ReleaseOrderLock(ctx, "o1", tok))
	_, ok, _ = locks.AcquireOrderLock(ctx, "o1", 10*time.Second)
	assert.True(t, ok)
}

func TestLockStore_ReleaseLeavesForeignLock(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	a := NewLockStore(client)
	b := NewLockStore(client)

	tokA, ok, err := a.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(11 * time.Second)
	tokB, ok, err := b.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// a's lock expired; releasing it must not free b's.
	require.NoError(t, a.ReleaseOrderLock(ctx, "o1", tokA))
	assert.True(t, mr.Exists(orderLockKey("o1")))

	require.NoError(t, b.ReleaseOrderLock(ctx, "o1", tokB))
	assert.False(t, mr.Exists(orderLockKey("o1")))
}

func TestLockStore_LateReleaseOnSameStore(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	locks := NewLockStore(client)

	first, ok, err := locks.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(11 * time.Second)
	second, ok, err := locks.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// The first pass overran its TTL; its release must leave the second pass's lock.
	require.NoError(t, locks.ReleaseOrderLock(ctx, "o1", first))
	_, ok, err = locks.AcquireOrderLock(ctx, "o1", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locks.ReleaseOrderLock(ctx, "o1", second))
	assert.False(t, mr.Exists(orderLockKey("o1")))
}
