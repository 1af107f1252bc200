package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds the caller's token,
// so an expired lock re-acquired by another pass is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles the distributed dispatch lock in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func orderLockKey(orderID string) string {
	return fmt.Sprintf("lock:dispatch:order:%s", orderID)
}

// AcquireOrderLock attempts to take the dispatch lock for the order.
// Returns the holder's token and true if the lock was acquired, false if already held.
func (s *LockStore) AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, orderLockKey(orderID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseOrderLock releases the dispatch lock for the order if token still holds it.
func (s *LockStore) ReleaseOrderLock(ctx context.Context, orderID, token string) error {
	if token == "" {
		return nil
	}
	return releaseScript.Run(ctx, s.client, []string{orderLockKey(orderID)}, token).Err()
}
