package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dispatch/internal/domain"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from domain.OrderStatus
		to   domain.OrderStatus
		want bool
	}{
		{"created to ready", domain.OrderStatusCreated, domain.OrderStatusReadyForPickup, true},
		{"ready to assigned", domain.OrderStatusReadyForPickup, domain.OrderStatusRiderAssigned, true},
		{"assigned to picked up", domain.OrderStatusRiderAssigned, domain.OrderStatusPickedUp, true},
		{"picked up to out for delivery", domain.OrderStatusPickedUp, domain.OrderStatusOutForDelivery, true},
		{"out for delivery to delivered", domain.OrderStatusOutForDelivery, domain.OrderStatusDelivered, true},
		{"created to cancelled", domain.OrderStatusCreated, domain.OrderStatusCancelled, true},
		{"out for delivery to cancelled", domain.OrderStatusOutForDelivery, domain.OrderStatusCancelled, true},
		{"skip a step", domain.OrderStatusCreated, domain.OrderStatusRiderAssigned, false},
		{"backwards", domain.OrderStatusPickedUp, domain.OrderStatusRiderAssigned, false},
		{"same status", domain.OrderStatusCreated, domain.OrderStatusCreated, false},
		{"delivered is terminal", domain.OrderStatusDelivered, domain.OrderStatusReadyForPickup, false},
		{"delivered cannot cancel", domain.OrderStatusDelivered, domain.OrderStatusCancelled, false},
		{"cancelled is terminal", domain.OrderStatusCancelled, domain.OrderStatusCreated, false},
		{"unknown target", domain.OrderStatusCreated, domain.OrderStatus("teleported"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_HasRider(t *testing.T) {
	withRider := []domain.OrderStatus{
		domain.OrderStatusRiderAssigned,
		domain.OrderStatusPickedUp,
		domain.OrderStatusOutForDelivery,
		domain.OrderStatusDelivered,
	}
	withoutRider := []domain.OrderStatus{
		domain.OrderStatusCreated,
		domain.OrderStatusReadyForPickup,
		domain.OrderStatusCancelled,
	}

	for _, s := range withRider {
		assert.True(t, s.HasRider(), s.String())
	}
	for _, s := range withoutRider {
		assert.False(t, s.HasRider(), s.String())
	}
}
