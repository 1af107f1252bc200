package memory

import (
	"context"
	"sync"

	"dispatch/internal/domain"
)

// OrderJournal keeps order event history in process memory. It stands in for
// the PostgreSQL journal when no database is configured.
type OrderJournal struct {
	mu     sync.RWMutex
	events map[string][]domain.OrderEvent // order id -> events, oldest first
}

// NewOrderJournal creates an empty OrderJournal.
func NewOrderJournal() *OrderJournal {
	return &OrderJournal{events: make(map[string][]domain.OrderEvent)}
}

// Append records one committed transition.
func (j *OrderJournal) Append(ctx context.Context, ev domain.OrderEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events[ev.OrderID] = append(j.events[ev.OrderID], ev)
	return nil
}

// ListByOrder returns the transitions of an order, oldest first.
func (j *OrderJournal) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]domain.OrderEvent(nil), j.events[orderID]...), nil
}

// Name implements service.EventSink.
func (j *OrderJournal) Name() string { return "memory_journal" }

// Handle implements service.EventSink.
func (j *OrderJournal) Handle(ctx context.Context, ev domain.OrderEvent) error {
	return j.Append(ctx, ev)
}
