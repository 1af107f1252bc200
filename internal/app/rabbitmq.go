package app

import (
	"context"
	"log/slog"

	"dispatch/internal/config"
	"dispatch/internal/rabbitmq"
)

// NewRabbitMQ connects to the broker. The connection redials in the
// background until ctx is cancelled.
func NewRabbitMQ(ctx context.Context, cfg config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Connection, error) {
	conn := rabbitmq.NewConnection(cfg.URL, logger)
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}
