package rabbitmq

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"dispatch/internal/service"
)

var (
	_ Channel           = (*amqp.Channel)(nil)
	_ ChannelSource     = (*Connection)(nil)
	_ service.EventSink = (*EventPublisher)(nil)
)
