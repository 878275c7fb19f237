package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPlaced, StatusConfirmed, true},
		{StatusPlaced, StatusCancelled, true},
		{StatusPlaced, StatusRejected, true},
		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusRejected, false},
		{StatusInProgress, StatusReady, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusReady, StatusOutForDelivery, true},
		{StatusReady, StatusDelivered, true},
		{StatusOutForDelivery, StatusDelivered, true},

		// forward moves may skip intermediate steps
		{StatusPlaced, StatusReady, true},
		{StatusConfirmed, StatusDelivered, true},
		{StatusInProgress, StatusOutForDelivery, true},

		// same-state is never legal
		{StatusPlaced, StatusPlaced, false},
		{StatusConfirmed, StatusConfirmed, false},

		// backward moves are never legal
		{StatusReady, StatusInProgress, false},
		{StatusConfirmed, StatusPlaced, false},

		// terminal states have no exits
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPlaced, false},
		{StatusRejected, StatusConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusRejected.Terminal())

	assert.False(t, StatusPlaced.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.False(t, StatusReady.Terminal())
	assert.False(t, StatusOutForDelivery.Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("out_for_delivery")
	require.NoError(t, err)
	assert.Equal(t, StatusOutForDelivery, st)

	_, err = ParseOrderStatus("shipped")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Your order has been confirmed by Aruzhan!",
		StatusMessage(StatusConfirmed, "Aruzhan"))
	assert.Equal(t, "Your order is being prepared in the kitchen.",
		StatusMessage(StatusInProgress, "Aruzhan"))
	assert.Equal(t, "Your order is ready for pickup/delivery!",
		StatusMessage(StatusReady, ""))
	assert.Equal(t, "Your order is on the way!",
		StatusMessage(StatusOutForDelivery, ""))
	assert.Equal(t, "Your order has been delivered. Enjoy your meal!",
		StatusMessage(StatusDelivered, ""))
	assert.Equal(t, "Your order has been cancelled.",
		StatusMessage(StatusCancelled, ""))
	assert.Equal(t, "Sorry, your order was rejected by the chef.",
		StatusMessage(StatusRejected, ""))

	// statuses without a table entry fall back to the generic text
	assert.Equal(t, "Order status updated to placed",
		StatusMessage(StatusPlaced, ""))
}
