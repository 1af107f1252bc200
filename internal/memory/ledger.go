package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"dispatch/internal/domain"
)

type orderEntry struct {
	mu    sync.Mutex
	order domain.Order
}

// OrderLedger owns the lifecycle of orders.
//
// Every committed transition is published to subscribers while the order's
// lock is held, so subscribers see the events of one order in commit order.
// Subscribers must return quickly and must not call back into the ledger.
type OrderLedger struct {
	mu     sync.RWMutex
	orders map[string]*orderEntry
	seq    uint64

	subMu       sync.RWMutex
	subscribers []func(domain.OrderEvent)

	nowFunc func() time.Time
}

// NewOrderLedger creates an empty OrderLedger.
func NewOrderLedger() *OrderLedger {
	return &OrderLedger{
		orders:  make(map[string]*orderEntry),
		nowFunc: time.Now,
	}
}

// Subscribe registers fn to receive every order event.
func (l *OrderLedger) Subscribe(fn func(domain.OrderEvent)) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

func (l *OrderLedger) publish(ev domain.OrderEvent) {
	l.subMu.RLock()
	subs := l.subscribers
	l.subMu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Create stores a new order in the created status.
func (l *OrderLedger) Create(order domain.Order) (domain.Order, error) {
	if err := order.RestaurantLocation.Validate(); err != nil {
		return domain.Order{}, fmt.Errorf("restaurant location: %w", err)
	}
	if err := order.DeliveryAddress.Validate(); err != nil {
		return domain.Order{}, fmt.Errorf("delivery address: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.orders[order.ID]; ok {
		return domain.Order{}, fmt.Errorf("%w: order %s", domain.ErrAlreadyExists, order.ID)
	}

	now := l.nowFunc().UTC()
	l.seq++
	order.Seq = l.seq
	order.Status = domain.OrderStatusCreated
	order.RiderID = ""
	order.CreatedAt = now
	order.UpdatedAt = now
	l.orders[order.ID] = &orderEntry{order: order}
	return order, nil
}

func (l *OrderLedger) entry(id string) (*orderEntry, error) {
	l.mu.RLock()
	e, ok := l.orders[id]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return e, nil
}

// Get returns a copy of the order.
func (l *OrderLedger) Get(id string) (domain.Order, error) {
	e, err := l.entry(id)
	if err != nil {
		return domain.Order{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.order, nil
}

// Transition moves the order to next. Moving into rider_assigned goes through
// AssignRider, because it needs a rider id.
func (l *OrderLedger) Transition(id string, next domain.OrderStatus) (domain.Order, error) {
	e, err := l.entry(id)
	if err != nil {
		return domain.Order{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.order.Status
	if next == domain.OrderStatusRiderAssigned || !cur.CanTransitionTo(next) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, cur, next)
	}

	// The cancel event still names the rider that held the order.
	rider := e.order.RiderID
	e.order.Status = next
	if next == domain.OrderStatusCancelled {
		e.order.RiderID = ""
	}
	return l.commit(e, cur, rider), nil
}

// AssignRider moves a ready_for_pickup order to rider_assigned.
func (l *OrderLedger) AssignRider(id, riderID string) (domain.Order, error) {
	e, err := l.entry(id)
	if err != nil {
		return domain.Order{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.order.Status
	if riderID == "" || cur != domain.OrderStatusReadyForPickup {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, cur, domain.OrderStatusRiderAssigned)
	}

	e.order.Status = domain.OrderStatusRiderAssigned
	e.order.RiderID = riderID
	return l.commit(e, cur, riderID), nil
}

// commit stamps the entry and publishes the event. The caller holds e.mu.
func (l *OrderLedger) commit(e *orderEntry, from domain.OrderStatus, riderID string) domain.Order {
	now := l.nowFunc().UTC()
	e.order.UpdatedAt = now

	l.publish(domain.OrderEvent{
		OrderID:    e.order.ID,
		CustomerID: e.order.CustomerID,
		From:       from,
		To:         e.order.Status,
		RiderID:    riderID,
		OccurredAt: now,
	})
	return e.order
}

// ListByStatus returns orders in the given status, oldest first.
func (l *OrderLedger) ListByStatus(status domain.OrderStatus) []domain.Order {
	l.mu.RLock()
	entries := make([]*orderEntry, 0, len(l.orders))
	for _, e := range l.orders {
		entries = append(entries, e)
	}
	l.mu.RUnlock()

	var orders []domain.Order
	for _, e := range entries {
		e.mu.Lock()
		if e.order.Status == status {
			orders = append(orders, e.order)
		}
		e.mu.Unlock()
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].Seq < orders[j].Seq })
	return orders
}
