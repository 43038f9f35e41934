package guard_test

import (
	"errors"
	"testing"

	"dispatch/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("ClaimOrderCommand must be created via NewClaimOrderCommand")

	testCases := []struct {
		name     string
		guard    guard.ConstructorGuard
		inputErr error
		expected error
	}{
		{
			name:     "constructed guard ignores custom error",
			guard:    guard.NewConstructorGuard(),
			inputErr: errNotConstructed,
		},
		{
			name:  "constructed guard ignores nil error",
			guard: guard.NewConstructorGuard(),
		},
		{
			name:     "zero guard returns custom error",
			inputErr: errNotConstructed,
			expected: errNotConstructed,
		},
		{
			name:     "zero guard falls back to default error",
			expected: guard.ErrDefaultConstructorGuard,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.guard.Validate(tc.inputErr)

			if tc.expected == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.expected, err)
		})
	}
}

func TestConstructorGuard_EmbeddedInCommand(t *testing.T) {
	type cancelCommand struct {
		orderID string
		guard   guard.ConstructorGuard
	}

	errCancelNotConstructed := errors.New("cancel command must be created via its constructor")

	newCancelCommand := func(orderID string) (cancelCommand, error) {
		if orderID == "" {
			return cancelCommand{}, errors.New("order id is required")
		}
		return cancelCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructor output validates", func(t *testing.T) {
		cmd, err := newCancelCommand("order-1")

		require.NoError(t, err)
		require.NoError(t, cmd.guard.Validate(errCancelNotConstructed))
		assert.Equal(t, "order-1", cmd.orderID)
	})

	t.Run("struct literal fails validation", func(t *testing.T) {
		cmd := cancelCommand{orderID: "order-1"}

		require.ErrorIs(t, cmd.guard.Validate(errCancelNotConstructed), errCancelNotConstructed)
	})

	t.Run("failed constructor returns zero value", func(t *testing.T) {
		cmd, err := newCancelCommand("")

		require.Error(t, err)
		require.Error(t, cmd.guard.Validate(nil))
	})
}

func TestErrDefaultConstructorGuard(t *testing.T) {
	assert.Equal(t, "object must be created via its constructor", guard.ErrDefaultConstructorGuard.Error())
}
