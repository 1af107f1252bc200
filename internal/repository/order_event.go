package repository

import (
	"context"

	"dispatch/internal/domain"
)

// OrderEventRepository is the append-only journal of order transitions.
type OrderEventRepository interface {
	// Append records one committed transition.
	Append(ctx context.Context, ev domain.OrderEvent) error

	// ListByOrder returns the transitions of an order, oldest first.
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderEvent, error)
}
