package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"dispatch/internal/domain"
)

// RiderRepository is a PostgreSQL implementation of repository.RiderRepository.
type RiderRepository struct {
	q Querier
}

// NewRiderRepository creates a new PostgreSQL rider repository.
func NewRiderRepository(db *sql.DB) *RiderRepository {
	return &RiderRepository{q: db}
}

// Create adds a new rider profile.
func (r *RiderRepository) Create(ctx context.Context, rider *domain.Rider) error {
	query := `INSERT INTO riders (id, name, phone) VALUES ($1, $2, $3)`
	_, err := r.q.ExecContext(ctx, query, rider.ID, rider.Name, rider.Phone)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: rider %s", domain.ErrAlreadyExists, rider.ID)
	}
	return err
}

// GetAll retrieves all rider profiles in registration order.
func (r *RiderRepository) GetAll(ctx context.Context) ([]*domain.Rider, error) {
	query := `SELECT id, name, phone FROM riders ORDER BY created_at, id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var riders []*domain.Rider
	for rows.Next() {
		var rider domain.Rider
		if err := rows.Scan(&rider.ID, &rider.Name, &rider.Phone); err != nil {
			return nil, err
		}
		riders = append(riders, &rider)
	}
	return riders, rows.Err()
}
