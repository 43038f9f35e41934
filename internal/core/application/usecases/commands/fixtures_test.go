package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/retry"

	"github.com/stretchr/testify/require"
)

var (
	now          = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	courierPhone = kernel.MustPhoneNumber("+998901234567")
	otherPhone   = kernel.MustPhoneNumber("+998907654321")
	fastRetry    = retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
)

func newPendingOrder(t *testing.T, lat, long float64) *order.Order {
	t.Helper()

	loc, err := kernel.NewLocation(lat, long)
	require.NoError(t, err)
	line, err := order.NewProductLine("plov", 1)
	require.NoError(t, err)

	deliveryPrice, _ := kernel.MoneyFromInt(3000)
	price, _ := kernel.MoneyFromInt(32000)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), loc, order.Prices{
		Price:         price,
		DeliveryPrice: deliveryPrice,
	}, []order.ProductLine{line})
	require.NoError(t, err)
	return o
}

func newClaimedOrder(t *testing.T, by kernel.PhoneNumber, at time.Time) *order.Order {
	t.Helper()

	o := newPendingOrder(t, 41.3, 69.2)
	require.NoError(t, o.Claim(by, at))
	return o
}

func newOnlineCourier(t *testing.T, phone kernel.PhoneNumber, reportedAt time.Time) *courier.Courier {
	t.Helper()

	loc, err := kernel.NewLocation(41.3, 69.2)
	require.NoError(t, err)
	c, err := courier.RestoreCourier(phone, loc, &reportedAt, true)
	require.NoError(t, err)
	return c
}
