package memory

import (
	"context"
	"sync"
	"time"

	"dispatch/internal/domain"
)

// LocationStore keeps the latest position of every rider in process memory.
// Writes for one rider never contend with writes for another.
type LocationStore struct {
	locations sync.Map // rider id -> domain.Location
	nowFunc   func() time.Time
}

// NewLocationStore creates an empty LocationStore.
func NewLocationStore() *LocationStore {
	return &LocationStore{nowFunc: time.Now}
}

// UpdateLocation overwrites the rider's position. An update that repeats the
// stored place keeps the stored entry untouched.
func (s *LocationStore) UpdateLocation(ctx context.Context, riderID string, place domain.Place) (domain.Location, error) {
	if err := place.Validate(); err != nil {
		return domain.Location{}, err
	}

	if prev, ok := s.locations.Load(riderID); ok {
		if loc := prev.(domain.Location); loc.Place() == place {
			return loc, nil
		}
	}

	loc := domain.Location{
		RiderID:   riderID,
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
		Address:   place.Address,
		UpdatedAt: s.nowFunc().UTC(),
	}
	s.locations.Store(riderID, loc)
	return loc, nil
}

// GetLocation returns the rider's last known position, or nil if none was reported.
func (s *LocationStore) GetLocation(ctx context.Context, riderID string) (*domain.Location, error) {
	v, ok := s.locations.Load(riderID)
	if !ok {
		return nil, nil
	}
	loc := v.(domain.Location)
	return &loc, nil
}
