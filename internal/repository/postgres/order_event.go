package postgres

import (
	"context"
	"database/sql"

	"dispatch/internal/domain"
)

// OrderEventRepository is a PostgreSQL implementation of
// repository.OrderEventRepository. It also serves as an event relay sink.
type OrderEventRepository struct {
	q Querier
}

// NewOrderEventRepository creates a new PostgreSQL order event repository.
func NewOrderEventRepository(db *sql.DB) *OrderEventRepository {
	return &OrderEventRepository{q: db}
}

// Append records one committed transition.
func (r *OrderEventRepository) Append(ctx context.Context, ev domain.OrderEvent) error {
	query := `
		INSERT INTO order_events (order_id, customer_id, from_status, to_status, rider_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var riderID sql.NullString
	if ev.RiderID != "" {
		riderID = sql.NullString{String: ev.RiderID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ev.OrderID,
		ev.CustomerID,
		ev.From,
		ev.To,
		riderID,
		ev.OccurredAt,
	)
	return err
}

// ListByOrder returns the transitions of an order, oldest first.
func (r *OrderEventRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	query := `
		SELECT order_id, customer_id, from_status, to_status, COALESCE(rider_id, ''), occurred_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.OrderEvent
	for rows.Next() {
		var ev domain.OrderEvent
		if err := rows.Scan(&ev.OrderID, &ev.CustomerID, &ev.From, &ev.To, &ev.RiderID, &ev.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Name implements service.EventSink.
func (r *OrderEventRepository) Name() string { return "postgres_journal" }

// Handle implements service.EventSink.
func (r *OrderEventRepository) Handle(ctx context.Context, ev domain.OrderEvent) error {
	return r.Append(ctx, ev)
}
