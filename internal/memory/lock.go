package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type heldLock struct {
	token  string
	expiry time.Time
}

// LockStore is a process-local stand-in for the Redis dispatch lock.
type LockStore struct {
	mu      sync.Mutex
	held    map[string]heldLock // order id -> current holder
	nowFunc func() time.Time
}

// NewLockStore creates a new LockStore.
func NewLockStore() *LockStore {
	return &LockStore{
		held:    make(map[string]heldLock),
		nowFunc: time.Now,
	}
}

// AcquireOrderLock takes the dispatch lock for the order unless someone else holds
// an unexpired one.
func (s *LockStore) AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	if h, ok := s.held[orderID]; ok && now.Before(h.expiry) {
		return "", false, nil
	}
	token := uuid.NewString()
	s.held[orderID] = heldLock{token: token, expiry: now.Add(ttl)}
	return token, true, nil
}

// ReleaseOrderLock drops the dispatch lock for the order if token still holds it.
func (s *LockStore) ReleaseOrderLock(ctx context.Context, orderID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.held[orderID]; ok && h.token == token {
		delete(s.held, orderID)
	}
	return nil
}
