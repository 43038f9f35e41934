package services_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var acceptedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func pendingAt(t *testing.T, lat, long float64) *order.Order {
	t.Helper()

	loc, err := kernel.NewLocation(lat, long)
	require.NoError(t, err)
	return pendingWith(t, loc)
}

func pendingWith(t *testing.T, loc kernel.Location) *order.Order {
	t.Helper()

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), loc, order.Prices{}, nil)
	require.NoError(t, err)
	return o
}

func activeAt(t *testing.T, lat, long float64) *order.Order {
	t.Helper()

	o := pendingAt(t, lat, long)
	require.NoError(t, o.Claim(kernel.MustPhoneNumber("+998900000001"), acceptedAt))
	return o
}

func onlineCourier(t *testing.T, phone string) *courier.Courier {
	t.Helper()

	loc, _ := kernel.NewLocation(41.3, 69.2)
	c, err := courier.RestoreCourier(kernel.MustPhoneNumber(phone), loc, &acceptedAt, true)
	require.NoError(t, err)
	return c
}
