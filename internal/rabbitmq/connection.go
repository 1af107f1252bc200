package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeOrderEvents is the topic exchange order transitions are published to.
const ExchangeOrderEvents = "order.events"

const reconnectInterval = 4 * time.Second

// ErrChannelUnavailable is returned while the broker connection is down.
var ErrChannelUnavailable = errors.New("rabbitmq channel not available")

// Connection owns one AMQP connection and channel and redials when the broker
// drops it.
type Connection struct {
	url    string
	logger *slog.Logger

	mu    sync.RWMutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	alive bool
}

// NewConnection creates a Connection. Call Connect to dial.
func NewConnection(url string, logger *slog.Logger) *Connection {
	return &Connection{
		url:    url,
		logger: logger.With("component", "rabbitmq"),
	}
}

// Connect dials the broker, declares the exchange and keeps reconnecting in
// the background until ctx is cancelled.
func (c *Connection) Connect(ctx context.Context) error {
	if err := c.connectOnce(); err != nil {
		return err
	}
	go c.reconnectLoop(ctx)
	return nil
}

func (c *Connection) connectOnce() error {
	conn, err := amqp.DialConfig(c.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeOrderEvents, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	c.mu.Lock()
	c.conn, c.ch = conn, ch
	c.alive = true
	c.mu.Unlock()

	c.logger.Info("connected to rabbitmq", "exchange", ExchangeOrderEvents)
	return nil
}

func (c *Connection) reconnectLoop(ctx context.Context) {
	for {
		c.mu.RLock()
		closed := c.conn.NotifyClose(make(chan *amqp.Error, 1))
		c.mu.RUnlock()

		select {
		case <-ctx.Done():
			return
		case err := <-closed:
			c.mu.Lock()
			c.alive = false
			c.mu.Unlock()
			if err != nil {
				c.logger.Error("rabbitmq connection closed", "error", err)
			}
		}

		ticker := time.NewTicker(reconnectInterval)
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
			}
			if err := c.connectOnce(); err != nil {
				c.logger.Warn("rabbitmq reconnect failed", "error", err)
				continue
			}
			break
		}
		ticker.Stop()
	}
}

// PublishChannel returns the live channel.
func (c *Connection) PublishChannel() (Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.alive || c.ch == nil {
		return nil, ErrChannelUnavailable
	}
	return c.ch, nil
}

// Close closes the channel and connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.alive = false
}
