package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/domain"
)

const (
	defaultMaxAttempts = 3
	defaultQueueSize   = 256
	defaultLockTTL     = 10 * time.Second
)

// DispatcherConfig tunes the dispatcher. Zero values fall back to defaults.
// SearchRadiusKm only applies when the location store implements
// NearbyLocator; zero disables the spatial pre-filter.
type DispatcherConfig struct {
	MaxAttempts    int
	QueueSize      int
	LockTTL        time.Duration
	SearchRadiusKm float64
}

// DispatchResult describes the outcome of one dispatch pass.
type DispatchResult struct {
	OrderID  string
	RiderID  string
	Assigned bool
	Order    domain.Order
}

// Dispatcher assigns ready orders to the nearest available rider.
type Dispatcher struct {
	ledger    OrderLedger
	registry  RiderRegistry
	locations LocationStore
	locker    DispatchLocker
	cfg       DispatcherConfig
	triggers  chan string
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher and subscribes it to the ledger's
// ready_for_pickup events. Call Run to start consuming them.
func NewDispatcher(
	ledger OrderLedger,
	registry RiderRegistry,
	locations LocationStore,
	locker DispatchLocker,
	cfg DispatcherConfig,
	logger *slog.Logger,
) *Dispatcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}

	d := &Dispatcher{
		ledger:    ledger,
		registry:  registry,
		locations: locations,
		locker:    locker,
		cfg:       cfg,
		triggers:  make(chan string, cfg.QueueSize),
		logger:    logger.With("component", "dispatcher"),
	}
	ledger.Subscribe(d.onOrderEvent)
	return d
}

func (d *Dispatcher) onOrderEvent(ev domain.OrderEvent) {
	if ev.To == domain.OrderStatusReadyForPickup {
		d.enqueue(ev.OrderID)
	}
}

// enqueue never blocks; a dropped trigger is picked up by the next re-scan.
func (d *Dispatcher) enqueue(orderID string) {
	select {
	case d.triggers <- orderID:
	default:
		d.logger.Warn("dispatch queue full, trigger dropped", "order_id", orderID)
	}
}

// Rescan queues every order still waiting for a rider.
func (d *Dispatcher) Rescan(ctx context.Context) {
	for _, o := range d.ledger.ListByStatus(domain.OrderStatusReadyForPickup) {
		d.enqueue(o.ID)
	}
}

// Run consumes dispatch triggers until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case orderID := <-d.triggers:
			if _, err := d.Dispatch(ctx, orderID); err != nil {
				d.logger.ErrorContext(ctx, "dispatch failed", "order_id", orderID, "error", err)
			}
		}
	}
}

// DispatchPending runs a dispatch pass over every ready order, oldest first,
// and returns how many got a rider.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	assigned := 0
	for _, o := range d.ledger.ListByStatus(domain.OrderStatusReadyForPickup) {
		if len(d.registry.ListAvailable()) == 0 {
			break
		}
		res, err := d.Dispatch(ctx, o.ID)
		if err != nil {
			return assigned, err
		}
		if res.Assigned {
			assigned++
		}
	}
	return assigned, nil
}

// Dispatch tries to give the order to the nearest available rider.
//
// The order lock keeps concurrent passes off the same order; the registry's
// per-rider Assign is the commit point for the rider. When another pass claims
// the chosen rider first, selection is repeated against the refreshed set, up
// to MaxAttempts. An order that finds no rider stays in ready_for_pickup; that
// is reported as an unassigned result, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, orderID string) (*DispatchResult, error) {
	result := &DispatchResult{OrderID: orderID}

	token, locked, err := d.locker.AcquireOrderLock(ctx, orderID, d.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		// Another pass is handling this order.
		return result, nil
	}
	defer func() {
		if err := d.locker.ReleaseOrderLock(context.WithoutCancel(ctx), orderID, token); err != nil {
			d.logger.WarnContext(ctx, "release dispatch lock", "order_id", orderID, "error", err)
		}
	}()

	order, err := d.ledger.Get(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusReadyForPickup {
		return result, nil
	}

	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		candidates, err := d.candidates(ctx, order.RestaurantLocation)
		if err != nil {
			return nil, err
		}

		riderID, ok := SelectNearest(order.RestaurantLocation, candidates)
		if !ok {
			d.logger.InfoContext(ctx, "no rider available, order stays pending", "order_id", orderID)
			return result, nil
		}

		if err := d.registry.Assign(riderID, orderID); err != nil {
			if errors.Is(err, domain.ErrRiderUnavailable) || errors.Is(err, domain.ErrNotFound) {
				d.logger.DebugContext(ctx, "rider claimed concurrently, reselecting",
					"order_id", orderID, "rider_id", riderID, "attempt", attempt)
				continue
			}
			return nil, err
		}

		updated, err := d.ledger.AssignRider(orderID, riderID)
		if err != nil {
			// The order moved on while the rider was held; hand the rider back.
			if _, relErr := d.registry.ReleaseOrder(riderID, orderID); relErr != nil {
				d.logger.ErrorContext(ctx, "release rider after failed assignment",
					"order_id", orderID, "rider_id", riderID, "error", relErr)
			}
			if errors.Is(err, domain.ErrInvalidTransition) {
				return result, nil
			}
			return nil, err
		}

		d.logger.InfoContext(ctx, "rider assigned", "order_id", orderID, "rider_id", riderID, "attempt", attempt)
		result.RiderID = riderID
		result.Assigned = true
		result.Order = updated
		return result, nil
	}

	d.logger.WarnContext(ctx, "dispatch retries exhausted, order stays pending",
		"order_id", orderID, "attempts", d.cfg.MaxAttempts)
	return result, nil
}

// candidates snapshots the available riders with their locations, in registration order.
func (d *Dispatcher) candidates(ctx context.Context, origin domain.Place) ([]Candidate, error) {
	ids := d.registry.ListAvailable()
	if len(ids) == 0 {
		return nil, nil
	}

	nearby, err := d.nearby(ctx, origin, ids)
	if err != nil {
		return nil, err
	}
	if len(nearby) > 0 {
		ids = nearby
	}

	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		loc, err := d.locations.GetLocation(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, Candidate{RiderID: id, Location: loc})
	}
	return out, nil
}

// nearby narrows available to the riders the spatial index places within the
// search radius of origin, keeping registration order. Every rider outside the
// radius is farther than any rider inside it, so the nearest pick is unchanged.
// An empty result means the whole available set has to be scanned.
func (d *Dispatcher) nearby(ctx context.Context, origin domain.Place, available []string) ([]string, error) {
	locator, ok := d.locations.(NearbyLocator)
	if !ok || d.cfg.SearchRadiusKm <= 0 {
		return nil, nil
	}

	ids, err := locator.FindNearbyRiders(ctx, origin.Latitude, origin.Longitude, d.cfg.SearchRadiusKm)
	if err != nil {
		return nil, err
	}
	within := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		within[id] = struct{}{}
	}

	out := make([]string, 0, len(within))
	for _, id := range available {
		if _, ok := within[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}
