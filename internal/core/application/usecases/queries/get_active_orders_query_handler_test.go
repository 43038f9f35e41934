package queries_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetActiveOrdersQueryHandler_Handle(t *testing.T) {
	repos, uow := newStore()
	restaurantID := kernel.NewUUID()

	fresh := addOrder(t, uow, restaurantID, location(t, 41.31, 69.28))
	old := addOrder(t, uow, restaurantID, location(t, 41.32, 69.28))
	addOrder(t, uow, restaurantID, location(t, 41.33, 69.28))

	claim(t, uow, old, now.Add(-time.Minute))
	claim(t, uow, fresh, now.Add(-10*time.Second-500*time.Millisecond))

	query, err := queries.NewGetActiveOrdersQuery(courierPhone)
	require.NoError(t, err)
	handler := queries.NewGetActiveOrdersQueryHandler(repos, fixedClock{now: now}, 0)

	views, err := handler.Handle(t.Context(), query)

	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.True(t, views[0].Order.IsEqual(old))
	assert.False(t, views[0].Cancelable)
	assert.Zero(t, views[0].CancelSecondsRemaining)

	assert.True(t, views[1].Order.IsEqual(fresh))
	assert.True(t, views[1].Cancelable)
	assert.Equal(t, 20, views[1].CancelSecondsRemaining)
}

func TestGetActiveOrdersQuery_NotConstructed(t *testing.T) {
	require.ErrorIs(t, queries.GetActiveOrdersQuery{}.Validate(), queries.ErrGetActiveOrdersQueryIsNotConstructed)
}
