package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// RiderService handles rider operations.
type RiderService struct {
	registry  RiderRegistry
	locations LocationStore
	orders    OrderReader
	rescanner Rescanner
	directory repository.RiderRepository
	logger    *slog.Logger
}

// NewRiderService creates a new RiderService. directory may be nil when rider
// profiles are not persisted.
func NewRiderService(
	registry RiderRegistry,
	locations LocationStore,
	orders OrderReader,
	rescanner Rescanner,
	directory repository.RiderRepository,
	logger *slog.Logger,
) *RiderService {
	return &RiderService{
		registry:  registry,
		locations: locations,
		orders:    orders,
		rescanner: rescanner,
		directory: directory,
		logger:    logger.With("component", "rider_service"),
	}
}

// RegisterRiderRequest contains the parameters for registering a rider.
type RegisterRiderRequest struct {
	ID    string // Optional: generated when empty
	Name  string
	Phone string
}

// Register adds a rider to the registry and, if configured, the directory.
func (s *RiderService) Register(ctx context.Context, req RegisterRiderRequest) (domain.Rider, error) {
	if req.Name == "" || req.Phone == "" {
		return domain.Rider{}, ErrInvalidRiderProfile
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}

	rider, err := s.registry.Register(domain.Rider{ID: id, Name: req.Name, Phone: req.Phone})
	if err != nil {
		return domain.Rider{}, err
	}

	if s.directory != nil {
		if err := s.directory.Create(ctx, &rider); err != nil {
			// The registry is authoritative; a missing profile row is repaired on next registration.
			s.logger.ErrorContext(ctx, "persist rider profile", "rider_id", id, "error", err)
		}
	}
	return rider, nil
}

// LoadDirectory registers every rider persisted in the directory.
func (s *RiderService) LoadDirectory(ctx context.Context) (int, error) {
	if s.directory == nil {
		return 0, nil
	}

	riders, err := s.directory.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, r := range riders {
		if _, err := s.registry.Register(domain.Rider{ID: r.ID, Name: r.Name, Phone: r.Phone}); err != nil {
			s.logger.WarnContext(ctx, "skip rider from directory", "rider_id", r.ID, "error", err)
			continue
		}
		loaded++
	}
	return loaded, nil
}

// UpdateLocationRequest contains the parameters for updating rider location.
type UpdateLocationRequest struct {
	RiderID   string
	Latitude  float64
	Longitude float64
	Address   string
}

// UpdateLocation records the rider's latest position.
func (s *RiderService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) (domain.Location, error) {
	if req.RiderID == "" {
		return domain.Location{}, ErrInvalidRiderID
	}
	if _, err := s.registry.Get(req.RiderID); err != nil {
		return domain.Location{}, err
	}

	return s.locations.UpdateLocation(ctx, req.RiderID, domain.Place{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	})
}

// SetAvailability toggles the rider's availability. Becoming available
// re-scans orders waiting for a rider.
func (s *RiderService) SetAvailability(ctx context.Context, riderID string, available bool) error {
	if riderID == "" {
		return ErrInvalidRiderID
	}
	if err := s.registry.SetAvailability(riderID, available); err != nil {
		return err
	}

	if available {
		s.rescanner.Rescan(ctx)
	}
	return nil
}

// RiderProfile is a rider's registry state with their last known location.
type RiderProfile struct {
	domain.Rider
	Location *domain.Location `json:"current_location"`
}

// Profile returns the rider's registry state and last known location.
func (s *RiderService) Profile(ctx context.Context, riderID string) (RiderProfile, error) {
	if riderID == "" {
		return RiderProfile{}, ErrInvalidRiderID
	}

	rider, err := s.registry.Get(riderID)
	if err != nil {
		return RiderProfile{}, err
	}
	loc, err := s.locations.GetLocation(ctx, riderID)
	if err != nil {
		return RiderProfile{}, err
	}
	return RiderProfile{Rider: rider, Location: loc}, nil
}

// CurrentOrder returns the order the rider is carrying, or nil if none.
func (s *RiderService) CurrentOrder(ctx context.Context, riderID string) (*domain.Order, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}

	rider, err := s.registry.Get(riderID)
	if err != nil {
		return nil, err
	}
	if !rider.HasOrder() {
		return nil, nil
	}

	order, err := s.orders.Get(rider.CurrentOrderID)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
