package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewUpdateCourierLocationCommand(t *testing.T) {
	loc, err := kernel.NewLocation(41.3, 69.2)
	require.NoError(t, err)

	_, err = commands.NewUpdateCourierLocationCommand(courierPhone, kernel.Location{})
	require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)

	_, err = commands.NewUpdateCourierLocationCommand(kernel.PhoneNumber{}, loc)
	require.ErrorIs(t, err, kernel.ErrPhoneNumberIsEmpty)

	cmd, err := commands.NewUpdateCourierLocationCommand(courierPhone, loc)
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	require.ErrorIs(t, commands.UpdateCourierLocationCommand{}.Validate(), commands.ErrUpdateCourierLocationCommandIsNotConstructed)
}

func TestUpdateCourierLocationCommandHandler_Handle(t *testing.T) {
	loc, err := kernel.NewLocation(41.32, 69.25)
	require.NoError(t, err)
	cmd, err := commands.NewUpdateCourierLocationCommand(courierPhone, loc)
	require.NoError(t, err)

	t.Run("first report creates an online courier", func(t *testing.T) {
		uow := new(MockUoW)
		repo := new(MockCourierRepository)
		uow.On("CourierRepository").Return(repo)
		uow.On("Begin", mock.Anything).Return(nil).Once()
		uow.On("Rollback", mock.Anything).Return(nil).Maybe()
		repo.On("Get", mock.Anything, courierPhone).Return(nil, errs.NewObjectNotFoundError("courier", courierPhone.String())).Once()
		repo.On("Upsert", mock.Anything, mock.AnythingOfType("*courier.Courier")).Return(nil).Once()
		uow.On("Commit", mock.Anything).Return(nil).Once()

		handler := commands.NewUpdateCourierLocationCommandHandler(courierUoWFactory{uow: uow}, fixedClock{now: now})
		c, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.True(t, c.IsOnline())
		assert.True(t, c.Phone().IsEqual(courierPhone))
		require.NotNil(t, c.LocationUpdatedAt())
		assert.Equal(t, now, *c.LocationUpdatedAt())
		uow.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("later report refreshes an offline courier", func(t *testing.T) {
		existing := newOnlineCourier(t, courierPhone, now.Add(-time.Hour))
		existing.GoOffline()

		uow := new(MockUoW)
		repo := new(MockCourierRepository)
		uow.On("CourierRepository").Return(repo)
		uow.On("Begin", mock.Anything).Return(nil).Once()
		uow.On("Rollback", mock.Anything).Return(nil).Maybe()
		repo.On("Get", mock.Anything, courierPhone).Return(existing, nil).Once()
		repo.On("Upsert", mock.Anything, existing).Return(nil).Once()
		uow.On("Commit", mock.Anything).Return(nil).Once()

		handler := commands.NewUpdateCourierLocationCommandHandler(courierUoWFactory{uow: uow}, fixedClock{now: now})
		c, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.True(t, c.IsOnline())
		ok, err := c.Location().IsEqual(loc)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, now, *c.LocationUpdatedAt())
		repo.AssertExpectations(t)
	})
}
