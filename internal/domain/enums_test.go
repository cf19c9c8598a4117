package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusIsValid(t *testing.T) {
	valid := []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, OrderStatus("unknown").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusProcessing))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusDelivered))

	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatusProcessing.CanTransitionTo(OrderStatusPending))

	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusCancelled))

	// Terminal states
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusPending))
}

func TestPaymentStatusIsValid(t *testing.T) {
	for _, s := range []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded} {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, PaymentStatus("settled").IsValid())
}

func TestStockInfoHasIssue(t *testing.T) {
	assert.False(t, StockInfo{CurrentStock: 5}.HasIssue())
	assert.True(t, StockInfo{IsOutOfStock: true}.HasIssue())
	assert.True(t, StockInfo{ExceedsStock: true}.HasIssue())
}
