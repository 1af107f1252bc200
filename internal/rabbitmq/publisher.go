package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"dispatch/internal/domain"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// ChannelSource hands out the current channel.
type ChannelSource interface {
	PublishChannel() (Channel, error)
}

// EventPublisher publishes order events to the order.events exchange with
// routing key order.<status>.
type EventPublisher struct {
	source ChannelSource
	logger *slog.Logger
}

// NewEventPublisher creates an EventPublisher.
func NewEventPublisher(source ChannelSource, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		source: source,
		logger: logger.With("component", "event_publisher"),
	}
}

// RoutingKey returns the routing key for an event.
func RoutingKey(ev domain.OrderEvent) string {
	return "order." + string(ev.To)
}

// Name implements service.EventSink.
func (p *EventPublisher) Name() string { return "rabbitmq" }

// Handle implements service.EventSink.
func (p *EventPublisher) Handle(ctx context.Context, ev domain.OrderEvent) error {
	ch, err := p.source.PublishChannel()
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	key := RoutingKey(ev)
	if err := ch.PublishWithContext(ctx,
		ExchangeOrderEvents,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("%s:%s", ev.OrderID, ev.To),
			Timestamp:    ev.OccurredAt,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	p.logger.DebugContext(ctx, "order event published", "order_id", ev.OrderID, "routing_key", key)
	return nil
}
