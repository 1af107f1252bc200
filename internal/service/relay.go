package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"dispatch/internal/domain"
)

const (
	defaultRelayBuffer = 1024
	defaultSinkTimeout = 5 * time.Second
)

// EventRelay forwards committed order events to sinks outside the ledger.
// Events are delivered one at a time, in the order the ledger published them.
type EventRelay struct {
	sinks   []EventSink
	events  chan domain.OrderEvent
	timeout time.Duration
	dropped atomic.Int64
	logger  *slog.Logger
}

// NewEventRelay creates an EventRelay subscribed to the ledger.
func NewEventRelay(ledger OrderLedger, buffer int, timeout time.Duration, logger *slog.Logger, sinks ...EventSink) *EventRelay {
	if buffer <= 0 {
		buffer = defaultRelayBuffer
	}
	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}

	r := &EventRelay{
		sinks:   sinks,
		events:  make(chan domain.OrderEvent, buffer),
		timeout: timeout,
		logger:  logger.With("component", "event_relay"),
	}
	ledger.Subscribe(r.onOrderEvent)
	return r
}

func (r *EventRelay) onOrderEvent(ev domain.OrderEvent) {
	select {
	case r.events <- ev:
	default:
		r.dropped.Add(1)
		r.logger.Warn("event relay buffer full, event dropped",
			"order_id", ev.OrderID, "to", ev.To)
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (r *EventRelay) Dropped() int64 {
	return r.dropped.Load()
}

// Run delivers events until ctx is cancelled, then drains what is buffered.
func (r *EventRelay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drain(context.WithoutCancel(ctx))
			return
		case ev := <-r.events:
			r.deliver(ctx, ev)
		}
	}
}

func (r *EventRelay) drain(ctx context.Context) {
	for {
		select {
		case ev := <-r.events:
			r.deliver(ctx, ev)
		default:
			return
		}
	}
}

func (r *EventRelay) deliver(ctx context.Context, ev domain.OrderEvent) {
	for _, sink := range r.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := sink.Handle(sinkCtx, ev)
		cancel()
		if err != nil {
			r.logger.ErrorContext(ctx, "event sink failed",
				"sink", sink.Name(), "order_id", ev.OrderID, "to", ev.To, "error", err)
		}
	}
}
