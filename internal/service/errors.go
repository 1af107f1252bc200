package service

import "errors"

var (
	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidOrderID is returned when order ID is empty.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrInvalidCustomerID is returned when customer ID is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidOrderStatus is returned for a status value that does not exist.
	ErrInvalidOrderStatus = errors.New("invalid order status")

	// ErrInvalidRiderProfile is returned when a rider registers without name or phone.
	ErrInvalidRiderProfile = errors.New("rider name and phone are required")

	// ErrNotOrderOwner is returned when a customer asks about someone else's order.
	ErrNotOrderOwner = errors.New("order belongs to another customer")
)
