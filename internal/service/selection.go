package service

import "dispatch/internal/domain"

// Candidate is an available rider considered for an order, with the rider's
// last known location if any.
type Candidate struct {
	RiderID  string
	Location *domain.Location
}

// SelectNearest picks the candidate closest to origin by haversine distance.
// Candidates without a location rank below every located candidate, and ties
// go to the earlier candidate, so callers pass candidates in registration order.
// It reports false only when candidates is empty.
func SelectNearest(origin domain.Place, candidates []Candidate) (string, bool) {
	best := -1
	bestDist := 0.0

	for i, c := range candidates {
		if c.Location == nil {
			if best == -1 {
				best = i
			}
			continue
		}

		dist := domain.HaversineKm(origin.Latitude, origin.Longitude, c.Location.Latitude, c.Location.Longitude)
		if best == -1 || candidates[best].Location == nil || dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	if best == -1 {
		return "", false
	}
	return candidates[best].RiderID, true
}
