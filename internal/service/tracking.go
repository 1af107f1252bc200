package service

import (
	"context"

	"dispatch/internal/domain"
)

// TrackingSnapshot is what a customer sees about the rider carrying an order.
type TrackingSnapshot struct {
	OrderID       string             `json:"order_id"`
	Status        domain.OrderStatus `json:"status"`
	RiderAssigned bool               `json:"rider_assigned"`
	RiderID       string             `json:"rider_id,omitempty"`
	RiderName     string             `json:"rider_name,omitempty"`
	RiderPhone    string             `json:"rider_phone,omitempty"`
	Location      *domain.Location   `json:"location,omitempty"`
}

// TrackingGateway joins the ledger, registry and location store into a
// customer-facing snapshot. It only reads.
type TrackingGateway struct {
	orders    OrderReader
	riders    RiderReader
	locations LocationStore
}

// NewTrackingGateway creates a new TrackingGateway.
func NewTrackingGateway(orders OrderReader, riders RiderReader, locations LocationStore) *TrackingGateway {
	return &TrackingGateway{
		orders:    orders,
		riders:    riders,
		locations: locations,
	}
}

// Snapshot returns the tracking view of an order. An assigned rider without a
// reported location yields a snapshot with no location.
func (g *TrackingGateway) Snapshot(ctx context.Context, orderID string) (*TrackingSnapshot, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := g.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	return g.snapshot(ctx, order)
}

// SnapshotFor is Snapshot restricted to the customer who placed the order.
func (g *TrackingGateway) SnapshotFor(ctx context.Context, orderID, customerID string) (*TrackingSnapshot, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}

	order, err := g.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrNotOrderOwner
	}
	return g.snapshot(ctx, order)
}

func (g *TrackingGateway) snapshot(ctx context.Context, order domain.Order) (*TrackingSnapshot, error) {
	snap := &TrackingSnapshot{
		OrderID: order.ID,
		Status:  order.Status,
	}
	if order.RiderID == "" {
		return snap, nil
	}

	rider, err := g.riders.Get(order.RiderID)
	if err != nil {
		return nil, err
	}
	loc, err := g.locations.GetLocation(ctx, order.RiderID)
	if err != nil {
		return nil, err
	}

	snap.RiderAssigned = true
	snap.RiderID = rider.ID
	snap.RiderName = rider.Name
	snap.RiderPhone = rider.Phone
	snap.Location = loc
	return snap, nil
}
