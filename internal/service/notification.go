package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationOrderReady     NotificationType = "ORDER_READY"
	NotificationRiderAssigned  NotificationType = "RIDER_ASSIGNED"
	NotificationOrderPickedUp  NotificationType = "ORDER_PICKED_UP"
	NotificationOutForDelivery NotificationType = "OUT_FOR_DELIVERY"
	NotificationOrderDelivered NotificationType = "ORDER_DELIVERED"
	NotificationOrderCancelled NotificationType = "ORDER_CANCELLED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string // Customer or rider ID
	Title       string
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
}

// NotificationService turns order events into customer and rider notifications.
// Delivery is a structured log line; push/SMS channels are not wired.
type NotificationService struct {
	logger *slog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(logger *slog.Logger) *NotificationService {
	return &NotificationService{logger: logger.With("component", "notifications")}
}

// Name implements EventSink.
func (s *NotificationService) Name() string { return "notifications" }

// Handle implements EventSink.
func (s *NotificationService) Handle(ctx context.Context, ev domain.OrderEvent) error {
	for _, n := range s.Build(ev) {
		s.send(ctx, n)
	}
	return nil
}

// Build returns the notifications an event produces. Events nobody cares
// about, such as order creation, produce none.
func (s *NotificationService) Build(ev domain.OrderEvent) []Notification {
	data := map[string]any{
		"order_id": ev.OrderID,
		"status":   string(ev.To),
	}

	switch ev.To {
	case domain.OrderStatusReadyForPickup:
		return []Notification{{
			Type:        NotificationOrderReady,
			RecipientID: ev.CustomerID,
			Title:       "Order Ready",
			Message:     "Your order is ready and we are finding a rider.",
			Data:        data,
			CreatedAt:   ev.OccurredAt,
		}}
	case domain.OrderStatusRiderAssigned:
		data["rider_id"] = ev.RiderID
		return []Notification{
			{
				Type:        NotificationRiderAssigned,
				RecipientID: ev.CustomerID,
				Title:       "Rider Assigned",
				Message:     "A rider has been assigned to your order.",
				Data:        data,
				CreatedAt:   ev.OccurredAt,
			},
			{
				Type:        NotificationRiderAssigned,
				RecipientID: ev.RiderID,
				Title:       "New Delivery",
				Message:     fmt.Sprintf("You have been assigned order %s.", ev.OrderID),
				Data:        data,
				CreatedAt:   ev.OccurredAt,
			},
		}
	case domain.OrderStatusPickedUp:
		return []Notification{{
			Type:        NotificationOrderPickedUp,
			RecipientID: ev.CustomerID,
			Title:       "Order Picked Up",
			Message:     "Your rider has picked up your order.",
			Data:        data,
			CreatedAt:   ev.OccurredAt,
		}}
	case domain.OrderStatusOutForDelivery:
		return []Notification{{
			Type:        NotificationOutForDelivery,
			RecipientID: ev.CustomerID,
			Title:       "On The Way",
			Message:     "Your order is out for delivery.",
			Data:        data,
			CreatedAt:   ev.OccurredAt,
		}}
	case domain.OrderStatusDelivered:
		return []Notification{{
			Type:        NotificationOrderDelivered,
			RecipientID: ev.CustomerID,
			Title:       "Delivered",
			Message:     "Your order has been delivered. Enjoy!",
			Data:        data,
			CreatedAt:   ev.OccurredAt,
		}}
	case domain.OrderStatusCancelled:
		out := []Notification{{
			Type:        NotificationOrderCancelled,
			RecipientID: ev.CustomerID,
			Title:       "Order Cancelled",
			Message:     "Your order has been cancelled.",
			Data:        data,
			CreatedAt:   ev.OccurredAt,
		}}
		if ev.RiderID != "" {
			out = append(out, Notification{
				Type:        NotificationOrderCancelled,
				RecipientID: ev.RiderID,
				Title:       "Delivery Cancelled",
				Message:     fmt.Sprintf("Order %s was cancelled.", ev.OrderID),
				Data:        data,
				CreatedAt:   ev.OccurredAt,
			})
		}
		return out
	}
	return nil
}

func (s *NotificationService) send(ctx context.Context, n Notification) {
	if n.RecipientID == "" {
		return
	}
	s.logger.InfoContext(ctx, n.Title,
		"type", n.Type,
		"recipient_id", n.RecipientID,
		"message", n.Message,
		"order_id", n.Data["order_id"],
	)
}
