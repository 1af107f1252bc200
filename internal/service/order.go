package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// OrderService handles order operations.
type OrderService struct {
	ledger    OrderLedger
	registry  RiderRegistry
	rescanner Rescanner
	journal   repository.OrderEventRepository
	logger    *slog.Logger
}

// NewOrderService creates a new OrderService. journal may be nil, in which
// case order history is always empty.
func NewOrderService(
	ledger OrderLedger,
	registry RiderRegistry,
	rescanner Rescanner,
	journal repository.OrderEventRepository,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		ledger:    ledger,
		registry:  registry,
		rescanner: rescanner,
		journal:   journal,
		logger:    logger.With("component", "order_service"),
	}
}

// CreateOrderRequest contains the parameters for creating an order.
type CreateOrderRequest struct {
	CustomerID         string
	RestaurantID       string
	RestaurantLocation domain.Place
	DeliveryAddress    domain.Place
}

// Create places a new order in the created status.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	if req.CustomerID == "" {
		return domain.Order{}, ErrInvalidCustomerID
	}

	return s.ledger.Create(domain.Order{
		ID:                 uuid.New().String(),
		CustomerID:         req.CustomerID,
		RestaurantID:       req.RestaurantID,
		RestaurantLocation: req.RestaurantLocation,
		DeliveryAddress:    req.DeliveryAddress,
	})
}

// Get retrieves an order by ID.
func (s *OrderService) Get(ctx context.Context, orderID string) (domain.Order, error) {
	if orderID == "" {
		return domain.Order{}, ErrInvalidOrderID
	}
	return s.ledger.Get(orderID)
}

// History returns the recorded transitions of the order, oldest first. Events
// reach the journal through the relay, so the latest one may lag the ledger.
func (s *OrderService) History(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	if _, err := s.ledger.Get(orderID); err != nil {
		return nil, err
	}
	if s.journal == nil {
		return []domain.OrderEvent{}, nil
	}

	events, err := s.journal.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.OrderEvent{}
	}
	return events, nil
}

// Transition moves the order to status. Reaching delivered or cancelled frees
// the rider holding the order, which re-scans pending orders.
func (s *OrderService) Transition(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if orderID == "" {
		return domain.Order{}, ErrInvalidOrderID
	}
	if !status.IsValid() {
		return domain.Order{}, ErrInvalidOrderStatus
	}

	order, err := s.ledger.Transition(orderID, status)
	if err != nil {
		return domain.Order{}, err
	}

	if order.Status.IsTerminal() {
		s.releaseRider(ctx, order)
	}
	return order, nil
}

func (s *OrderService) releaseRider(ctx context.Context, order domain.Order) {
	var (
		riderID  string
		released bool
	)

	if order.RiderID != "" {
		ok, err := s.registry.ReleaseOrder(order.RiderID, order.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "release rider", "order_id", order.ID, "rider_id", order.RiderID, "error", err)
			return
		}
		riderID, released = order.RiderID, ok
	} else {
		// Cancellation clears the order's rider; find it from the registry side.
		riderID, released = s.registry.ReleaseByOrder(order.ID)
	}

	if released {
		s.logger.InfoContext(ctx, "rider released", "order_id", order.ID, "rider_id", riderID, "status", order.Status)
		s.rescanner.Rescan(ctx)
	}
}
