package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/domain"
	"dispatch/internal/memory"
	"dispatch/internal/service"
)

type recordingSink struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	err    error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Handle(ctx context.Context, ev domain.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) Statuses() []domain.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.OrderStatus, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.To)
	}
	return out
}

func TestEventRelay_DeliversInCommitOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ledger := memory.NewOrderLedger()
	failing := &recordingSink{err: errors.New("broker down")}
	sink := &recordingSink{}
	relay := service.NewEventRelay(ledger, 16, time.Second, discardLogger(), failing, sink)
	go relay.Run(ctx)

	_, err := ledger.Create(domain.Order{ID: "o1", CustomerID: "c1", RestaurantLocation: restaurant, DeliveryAddress: customerDrop})
	require.NoError(t, err)
	_, err = ledger.Transition("o1", domain.OrderStatusReadyForPickup)
	require.NoError(t, err)
	_, err = ledger.AssignRider("o1", "r1")
	require.NoError(t, err)
	_, err = ledger.Transition("o1", domain.OrderStatusCancelled)
	require.NoError(t, err)

	want := []domain.OrderStatus{
		domain.OrderStatusReadyForPickup,
		domain.OrderStatusRiderAssigned,
		domain.OrderStatusCancelled,
	}
	require.Eventually(t, func() bool {
		return len(sink.Statuses()) == len(want)
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, want, sink.Statuses())
	assert.Equal(t, want, failing.Statuses(), "a failing sink still sees every event")
	assert.Zero(t, relay.Dropped())
}

func TestEventRelay_DropsWhenBufferFull(t *testing.T) {
	ledger := memory.NewOrderLedger()
	sink := &recordingSink{}
	relay := service.NewEventRelay(ledger, 1, time.Second, discardLogger(), sink)

	_, err := ledger.Create(domain.Order{ID: "o1", CustomerID: "c1", RestaurantLocation: restaurant, DeliveryAddress: customerDrop})
	require.NoError(t, err)
	_, err = ledger.Transition("o1", domain.OrderStatusReadyForPickup)
	require.NoError(t, err)
	_, err = ledger.AssignRider("o1", "r1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), relay.Dropped())

	// Cancelled before start: Run drains what was buffered and returns.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	relay.Run(ctx)
	assert.Equal(t, []domain.OrderStatus{domain.OrderStatusReadyForPickup}, sink.Statuses())
}

func TestNotificationService_Build(t *testing.T) {
	svc := service.NewNotificationService(discardLogger())

	assigned := svc.Build(domain.OrderEvent{
		OrderID: "o1", CustomerID: "c1", RiderID: "r1",
		From: domain.OrderStatusReadyForPickup, To: domain.OrderStatusRiderAssigned,
	})
	require.Len(t, assigned, 2)
	assert.Equal(t, "c1", assigned[0].RecipientID)
	assert.Equal(t, "r1", assigned[1].RecipientID)
	assert.Equal(t, service.NotificationRiderAssigned, assigned[0].Type)

	assert.Empty(t, svc.Build(domain.OrderEvent{OrderID: "o1", CustomerID: "c1", To: domain.OrderStatusCreated}))

	cancelled := svc.Build(domain.OrderEvent{OrderID: "o1", CustomerID: "c1", To: domain.OrderStatusCancelled})
	require.Len(t, cancelled, 1)
	assert.Equal(t, service.NotificationOrderCancelled, cancelled[0].Type)

	require.NoError(t, svc.Handle(context.Background(), domain.OrderEvent{OrderID: "o1", CustomerID: "c1", To: domain.OrderStatusDelivered}))
}
