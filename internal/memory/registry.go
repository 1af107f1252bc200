package memory

import (
	"fmt"
	"sort"
	"sync"

	"dispatch/internal/domain"
)

type riderEntry struct {
	mu    sync.Mutex
	rider domain.Rider
}

// RiderRegistry owns rider availability and order assignment.
// The map lock only guards membership; each rider has its own lock.
type RiderRegistry struct {
	mu     sync.RWMutex
	riders map[string]*riderEntry
	seq    uint64
}

// NewRiderRegistry creates an empty RiderRegistry.
func NewRiderRegistry() *RiderRegistry {
	return &RiderRegistry{riders: make(map[string]*riderEntry)}
}

// Register adds a rider. New riders start unavailable with no order.
func (r *RiderRegistry) Register(rider domain.Rider) (domain.Rider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.riders[rider.ID]; ok {
		return domain.Rider{}, fmt.Errorf("%w: rider %s", domain.ErrAlreadyExists, rider.ID)
	}

	r.seq++
	rider.Seq = r.seq
	rider.Available = false
	rider.CurrentOrderID = ""
	r.riders[rider.ID] = &riderEntry{rider: rider}
	return rider, nil
}

func (r *RiderRegistry) entry(id string) (*riderEntry, error) {
	r.mu.RLock()
	e, ok := r.riders[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: rider %s", domain.ErrNotFound, id)
	}
	return e, nil
}

// Get returns a copy of the rider.
func (r *RiderRegistry) Get(id string) (domain.Rider, error) {
	e, err := r.entry(id)
	if err != nil {
		return domain.Rider{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rider, nil
}

// SetAvailability toggles whether the rider accepts new orders.
// A rider holding an order cannot become available.
func (r *RiderRegistry) SetAvailability(id string, available bool) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if available && e.rider.HasOrder() {
		return fmt.Errorf("%w: rider %s holds order %s", domain.ErrRiderBusy, id, e.rider.CurrentOrderID)
	}
	e.rider.Available = available
	return nil
}

// Assign gives the order to the rider if, and only if, the rider is free.
func (r *RiderRegistry) Assign(id, orderID string) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.rider.Available || e.rider.HasOrder() {
		return fmt.Errorf("%w: rider %s", domain.ErrRiderUnavailable, id)
	}
	e.rider.Available = false
	e.rider.CurrentOrderID = orderID
	return nil
}

// Release clears the rider's order and makes the rider available again.
func (r *RiderRegistry) Release(id string) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rider.CurrentOrderID = ""
	e.rider.Available = true
	return nil
}

// ReleaseOrder releases the rider only while it still holds orderID.
// It reports whether a release happened.
func (r *RiderRegistry) ReleaseOrder(id, orderID string) (bool, error) {
	e, err := r.entry(id)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rider.CurrentOrderID != orderID {
		return false, nil
	}
	e.rider.CurrentOrderID = ""
	e.rider.Available = true
	return true, nil
}

// ReleaseByOrder releases whichever rider holds orderID and returns its id.
func (r *RiderRegistry) ReleaseByOrder(orderID string) (string, bool) {
	r.mu.RLock()
	entries := make([]*riderEntry, 0, len(r.riders))
	for _, e := range r.riders {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		if orderID != "" && e.rider.CurrentOrderID == orderID {
			e.rider.CurrentOrderID = ""
			e.rider.Available = true
			id := e.rider.ID
			e.mu.Unlock()
			return id, true
		}
		e.mu.Unlock()
	}
	return "", false
}

// ListAvailable returns the ids of available riders in registration order.
func (r *RiderRegistry) ListAvailable() []string {
	r.mu.RLock()
	entries := make([]*riderEntry, 0, len(r.riders))
	for _, e := range r.riders {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	available := make([]domain.Rider, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.rider.Available {
			available = append(available, e.rider)
		}
		e.mu.Unlock()
	}

	sort.Slice(available, func(i, j int) bool { return available[i].Seq < available[j].Seq })

	ids := make([]string, len(available))
	for i, rider := range available {
		ids[i] = rider.ID
	}
	return ids
}

// All returns every registered rider in registration order.
func (r *RiderRegistry) All() []domain.Rider {
	r.mu.RLock()
	entries := make([]*riderEntry, 0, len(r.riders))
	for _, e := range r.riders {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	riders := make([]domain.Rider, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		riders = append(riders, e.rider)
		e.mu.Unlock()
	}
	sort.Slice(riders, func(i, j int) bool { return riders[i].Seq < riders[j].Seq })
	return riders
}
