package queries_test

import (
	"testing"
	"time"

	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/require"
)

var (
	now          = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	courierPhone = kernel.MustPhoneNumber("+998901234567")
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time {
	return c.now
}

type storeRepositories struct{ f *memory.UnitOfWorkFactory }

func (s storeRepositories) Create() queries.Repositories {
	return s.f.Create()
}

func newStore() (storeRepositories, ports.UnitOfWork) {
	f := memory.NewUnitOfWorkFactory(memory.NewStore())
	return storeRepositories{f: f}, f.Create()
}

func money(t *testing.T, v int64) kernel.Money {
	t.Helper()
	m, err := kernel.MoneyFromInt(v)
	require.NoError(t, err)
	return m
}

func location(t *testing.T, lat, long float64) kernel.Location {
	t.Helper()
	l, err := kernel.NewLocation(lat, long)
	require.NoError(t, err)
	return l
}

func addOrder(t *testing.T, uow ports.UnitOfWork, restaurantID kernel.UUID, loc kernel.Location, lines ...order.ProductLine) *order.Order {
	t.Helper()

	if len(lines) == 0 {
		line, err := order.NewProductLine("plov", 1)
		require.NoError(t, err)
		lines = []order.ProductLine{line}
	}
	o, err := order.NewOrder(kernel.NewUUID(), restaurantID, loc, order.Prices{
		Price:         money(t, 30000),
		ServicePrice:  money(t, 2000),
		DeliveryPrice: money(t, 5000),
	}, lines)
	require.NoError(t, err)
	require.NoError(t, uow.OrderRepository().Add(t.Context(), o))
	return o
}

func claim(t *testing.T, uow ports.UnitOfWork, o *order.Order, at time.Time) {
	t.Helper()
	require.NoError(t, o.Claim(courierPhone, at))
	require.NoError(t, uow.OrderRepository().UpdateIfStatus(t.Context(), o, order.SearchCourier))
}
