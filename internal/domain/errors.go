package domain

import "errors"

var (
	// ErrNotFound is returned when a rider or order id is unknown.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when registering an id that is already taken.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidLocation is returned when coordinates are malformed or out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrRiderBusy is returned when a rider holding an order tries to become available.
	ErrRiderBusy = errors.New("rider is busy with an order")

	// ErrRiderUnavailable is returned when assigning an order to a rider who cannot take it.
	ErrRiderUnavailable = errors.New("rider unavailable")

	// ErrInvalidTransition is returned for an illegal order status move.
	ErrInvalidTransition = errors.New("invalid order status transition")
)
