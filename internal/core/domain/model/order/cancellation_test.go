package order_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
)

func TestCanCancel(t *testing.T) {
	accepted := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	window := 30 * time.Second

	testCases := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{name: "right after acceptance", now: accepted, expected: true},
		{name: "29 seconds later", now: accepted.Add(29 * time.Second), expected: true},
		{name: "just before the boundary", now: accepted.Add(window - time.Millisecond), expected: true},
		{name: "exactly on the boundary", now: accepted.Add(window), expected: false},
		{name: "31 seconds later", now: accepted.Add(31 * time.Second), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, order.CanCancel(tc.now, &accepted, window))
		})
	}

	t.Run("never accepted", func(t *testing.T) {
		assert.False(t, order.CanCancel(accepted, nil, window))
	})
}

func TestCancelTimeRemaining(t *testing.T) {
	accepted := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	window := 30 * time.Second

	assert.Equal(t, 30*time.Second, order.CancelTimeRemaining(accepted, &accepted, window))
	assert.Equal(t, 18*time.Second, order.CancelTimeRemaining(accepted.Add(12*time.Second), &accepted, window))
	assert.Equal(t, time.Duration(0), order.CancelTimeRemaining(accepted.Add(window), &accepted, window))
	assert.Equal(t, time.Duration(0), order.CancelTimeRemaining(accepted.Add(time.Hour), &accepted, window))
	assert.Equal(t, window, order.CancelTimeRemaining(accepted.Add(-5*time.Second), &accepted, window))
	assert.Equal(t, time.Duration(0), order.CancelTimeRemaining(accepted, nil, window))
}
