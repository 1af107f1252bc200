package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
//
//	created -> ready_for_pickup -> rider_assigned -> picked_up -> out_for_delivery -> delivered
//	   \______________\_______________\_______________\______________\-> cancelled
type OrderStatus string

const (
	OrderStatusCreated        OrderStatus = "created"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusRiderAssigned  OrderStatus = "rider_assigned"
	OrderStatusPickedUp       OrderStatus = "picked_up"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// nextStatus is the linear happy path.
var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusCreated:        OrderStatusReadyForPickup,
	OrderStatusReadyForPickup: OrderStatusRiderAssigned,
	OrderStatusRiderAssigned:  OrderStatusPickedUp,
	OrderStatusPickedUp:       OrderStatusOutForDelivery,
	OrderStatusOutForDelivery: OrderStatusDelivered,
}

// IsValid reports whether s is a known status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusReadyForPickup, OrderStatusRiderAssigned,
		OrderStatusPickedUp, OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// HasRider reports whether an order in this status must carry a rider id.
func (s OrderStatus) HasRider() bool {
	switch s {
	case OrderStatusRiderAssigned, OrderStatusPickedUp, OrderStatusOutForDelivery, OrderStatusDelivered:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return nextStatus[s] == next
}

func (s OrderStatus) String() string {
	return string(s)
}

// Order is a customer order as tracked by the order ledger.
type Order struct {
	ID                 string      `json:"id"`
	CustomerID         string      `json:"customer_id"`
	RestaurantID       string      `json:"restaurant_id"`
	Status             OrderStatus `json:"status"`
	RestaurantLocation Place       `json:"restaurant_location"`
	DeliveryAddress    Place       `json:"delivery_address"`
	RiderID            string      `json:"rider_id,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`

	// Seq is the creation order, used to re-scan pending orders oldest first.
	Seq uint64 `json:"-"`
}

// OrderEvent records one committed status transition.
type OrderEvent struct {
	OrderID    string      `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	RiderID    string      `json:"rider_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}
