package domain

import (
	"math"
	"time"
)

// Place is a geographic point with a human readable label.
type Place struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// Validate checks that the coordinates are on the globe.
func (p Place) Validate() error {
	if !IsValidLatitude(p.Latitude) || !IsValidLongitude(p.Longitude) {
		return ErrInvalidLocation
	}
	return nil
}

// Location is the latest known position of a rider.
type Location struct {
	RiderID   string    `json:"rider_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Place returns the location without rider identity and timestamp.
func (l Location) Place() Place {
	return Place{Latitude: l.Latitude, Longitude: l.Longitude, Address: l.Address}
}

// IsValidLatitude reports whether lat is a number in [-90, 90].
func IsValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// IsValidLongitude reports whether lng is a number in [-180, 180].
func IsValidLongitude(lng float64) bool {
	return !math.IsNaN(lng) && lng >= -180 && lng <= 180
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}
