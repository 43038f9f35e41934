package services_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteFilter_IsOnRoute(t *testing.T) {
	filter := services.NewRouteFilter()
	active := activeAt(t, 41.3000, 69.2000)

	t.Run("nearby candidate is on route", func(t *testing.T) {
		assert.True(t, filter.IsOnRoute(pendingAt(t, 41.3010, 69.2005), []*order.Order{active}))
	})

	t.Run("distant candidate is not on route", func(t *testing.T) {
		assert.False(t, filter.IsOnRoute(pendingAt(t, 41.4000, 69.3000), []*order.Order{active}))
	})

	t.Run("threshold is inclusive on the rounded distance", func(t *testing.T) {
		// 2.0015 km rounds to 2.0
		assert.True(t, filter.IsOnRoute(pendingAt(t, 41.318, 69.2), []*order.Order{active}))
		// 2.057 km rounds to 2.1
		assert.False(t, filter.IsOnRoute(pendingAt(t, 41.3185, 69.2), []*order.Order{active}))
	})

	t.Run("empty active set", func(t *testing.T) {
		candidate := pendingAt(t, 41.3, 69.2)

		assert.False(t, filter.IsOnRoute(candidate, nil))
		assert.False(t, filter.IsOnRoute(candidate, []*order.Order{}))
	})

	t.Run("nil candidate", func(t *testing.T) {
		assert.False(t, filter.IsOnRoute(nil, []*order.Order{active}))
	})

	t.Run("candidate without location", func(t *testing.T) {
		assert.False(t, filter.IsOnRoute(pendingWith(t, kernel.Location{}), []*order.Order{active}))
	})

	t.Run("active orders without location are skipped", func(t *testing.T) {
		unknown := pendingWith(t, kernel.Location{})
		candidate := pendingAt(t, 41.3010, 69.2005)

		assert.False(t, filter.IsOnRoute(candidate, []*order.Order{unknown, nil}))
		assert.True(t, filter.IsOnRoute(candidate, []*order.Order{unknown, nil, active}))
	})

	t.Run("any active order within range is enough", func(t *testing.T) {
		far := activeAt(t, 40.0, 65.0)
		candidate := pendingAt(t, 41.3010, 69.2005)

		assert.True(t, filter.IsOnRoute(candidate, []*order.Order{far, active}))
	})
}

func TestNewRouteFilterWithDistance(t *testing.T) {
	filter, err := services.NewRouteFilterWithDistance(15)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, filter.MaxDistanceKm(), 1e-9)
	assert.True(t, filter.IsOnRoute(pendingAt(t, 41.4, 69.3), []*order.Order{activeAt(t, 41.3, 69.2)}))

	_, err = services.NewRouteFilterWithDistance(0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	assert.InDelta(t, services.DefaultMaxRouteDistanceKm, services.RouteFilter{}.MaxDistanceKm(), 1e-9)
}
