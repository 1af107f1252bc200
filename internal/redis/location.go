package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"dispatch/internal/domain"
)

const (
	riderLocationKey     = "riders:locations"
	riderLocationMetaKey = "riders:locations:meta"
)

// LocationStore keeps rider positions in Redis: a GEO index for spatial queries
// and a hash holding the full location record per rider.
type LocationStore struct {
	client  *redis.Client
	nowFunc func() time.Time
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client, nowFunc: time.Now}
}

// UpdateLocation stores a rider's location using GEOADD and HSET in one transaction.
// Repeating the stored place leaves the record untouched.
func (s *LocationStore) UpdateLocation(ctx context.Context, riderID string, place domain.Place) (domain.Location, error) {
	if err := place.Validate(); err != nil {
		return domain.Location{}, err
	}

	prev, err := s.GetLocation(ctx, riderID)
	if err != nil {
		return domain.Location{}, err
	}
	if prev != nil && prev.Place() == place {
		return *prev, nil
	}

	loc := domain.Location{
		RiderID:   riderID,
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
		Address:   place.Address,
		UpdatedAt: s.nowFunc().UTC(),
	}
	data, err := json.Marshal(loc)
	if err != nil {
		return domain.Location{}, err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.GeoAdd(ctx, riderLocationKey, &redis.GeoLocation{
			Name:      riderID,
			Longitude: place.Longitude,
			Latitude:  place.Latitude,
		})
		pipe.HSet(ctx, riderLocationMetaKey, riderID, data)
		return nil
	})
	if err != nil {
		return domain.Location{}, err
	}
	return loc, nil
}

// GetLocation returns the rider's last known location, or nil if none is stored.
func (s *LocationStore) GetLocation(ctx context.Context, riderID string) (*domain.Location, error) {
	data, err := s.client.HGet(ctx, riderLocationMetaKey, riderID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var loc domain.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// FindNearbyRiders returns rider ids within radiusKm of the point, nearest first.
func (s *LocationStore) FindNearbyRiders(ctx context.Context, lat, lng, radiusKm float64) ([]string, error) {
	results, err := s.client.GeoRadius(ctx, riderLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius: radiusKm,
		Unit:   "km",
		Sort:   "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Name)
	}
	return ids, nil
}
