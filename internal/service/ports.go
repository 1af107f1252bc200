package service

import (
	"context"
	"time"

	"dispatch/internal/domain"
)

// LocationStore holds the latest position per rider.
type LocationStore interface {
	UpdateLocation(ctx context.Context, riderID string, place domain.Place) (domain.Location, error)
	GetLocation(ctx context.Context, riderID string) (*domain.Location, error)
}

// NearbyLocator is implemented by location stores with a spatial index.
type NearbyLocator interface {
	FindNearbyRiders(ctx context.Context, lat, lng, radiusKm float64) ([]string, error)
}

// DispatchLocker serialises dispatch passes over the same order. Acquire
// returns a token identifying this holder; Release frees the lock only while
// that token still holds it.
type DispatchLocker interface {
	AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseOrderLock(ctx context.Context, orderID, token string) error
}

// RiderReader is the read side of the rider registry.
type RiderReader interface {
	Get(id string) (domain.Rider, error)
	ListAvailable() []string
}

// RiderRegistry owns rider availability and assignment.
type RiderRegistry interface {
	RiderReader
	Register(rider domain.Rider) (domain.Rider, error)
	SetAvailability(id string, available bool) error
	Assign(id, orderID string) error
	Release(id string) error
	ReleaseOrder(id, orderID string) (bool, error)
	ReleaseByOrder(orderID string) (string, bool)
}

// OrderReader is the read side of the order ledger.
type OrderReader interface {
	Get(id string) (domain.Order, error)
	ListByStatus(status domain.OrderStatus) []domain.Order
}

// OrderLedger owns the order lifecycle.
type OrderLedger interface {
	OrderReader
	Create(order domain.Order) (domain.Order, error)
	Transition(id string, next domain.OrderStatus) (domain.Order, error)
	AssignRider(id, riderID string) (domain.Order, error)
	Subscribe(fn func(domain.OrderEvent))
}

// Rescanner re-runs dispatch for orders still waiting for a rider.
type Rescanner interface {
	Rescan(ctx context.Context)
}

// EventSink receives committed order events from the relay.
type EventSink interface {
	Name() string
	Handle(ctx context.Context, ev domain.OrderEvent) error
}
