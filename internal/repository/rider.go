package repository

import (
	"context"

	"dispatch/internal/domain"
)

// RiderRepository defines the persistence operations for rider profiles.
// Availability and assignment are runtime state and are not stored.
type RiderRepository interface {
	// Create adds a new rider profile.
	Create(ctx context.Context, rider *domain.Rider) error

	// GetAll retrieves all rider profiles in registration order.
	GetAll(ctx context.Context) ([]*domain.Rider, error)
}
