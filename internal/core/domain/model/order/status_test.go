package order_test

import (
	"fmt"
	"testing"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	assert.Equal(t, 0, int(order.Unknown))
	assert.Equal(t, 1, int(order.SearchCourier))
	assert.Equal(t, 2, int(order.Courier))
	assert.Equal(t, 3, int(order.Delivering))
	assert.Equal(t, 4, int(order.Delivered))
}

func TestStatus_StringAndParse(t *testing.T) {
	for _, status := range []order.Status{order.SearchCourier, order.Courier, order.Delivering, order.Delivered} {
		t.Run(status.String(), func(t *testing.T) {
			parsed, err := order.ParseStatus(status.String())

			require.NoError(t, err)
			assert.Equal(t, status, parsed)
			require.NoError(t, status.Validate())
		})
	}

	t.Run("unknown names are rejected", func(t *testing.T) {
		for _, name := range []string{"", "unknown", "Courier", "cancelled"} {
			s, err := order.ParseStatus(name)

			require.ErrorIs(t, err, errs.ErrValueIsInvalid, name)
			assert.Equal(t, order.Unknown, s)
		}
	})

	t.Run("invalid values render as unknown", func(t *testing.T) {
		assert.Equal(t, "unknown", order.Status(42).String())
		require.Error(t, order.Status(42).Validate())
		require.Error(t, order.Unknown.Validate())
	})
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, order.SearchCourier.IsPending())
	assert.False(t, order.Courier.IsPending())

	assert.False(t, order.SearchCourier.IsActive())
	assert.True(t, order.Courier.IsActive())
	assert.True(t, order.Delivering.IsActive())
	assert.False(t, order.Delivered.IsActive())
}

func TestStatus_ValidateCanHaveCourier(t *testing.T) {
	testCases := []struct {
		status  order.Status
		courier bool
		valid   bool
	}{
		{order.SearchCourier, false, true},
		{order.SearchCourier, true, false},
		{order.Courier, true, true},
		{order.Courier, false, false},
		{order.Delivering, true, true},
		{order.Delivering, false, false},
		{order.Delivered, true, true},
		{order.Delivered, false, false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s courier=%t", tc.status, tc.courier), func(t *testing.T) {
			err := tc.status.ValidateCanHaveCourier(tc.courier)
			if tc.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		})
	}
}

func TestStatus_Transitions(t *testing.T) {
	type transition func(order.Status) (order.Status, error)

	transitions := map[string]struct {
		fn   transition
		from order.Status
		to   order.Status
	}{
		"claim":            {fn: order.Status.Claim, from: order.SearchCourier, to: order.Courier},
		"start delivering": {fn: order.Status.StartDelivering, from: order.Courier, to: order.Delivering},
		"deliver":          {fn: order.Status.Deliver, from: order.Delivering, to: order.Delivered},
		"cancel":           {fn: order.Status.Cancel, from: order.Courier, to: order.SearchCourier},
	}

	all := []order.Status{order.Unknown, order.SearchCourier, order.Courier, order.Delivering, order.Delivered}

	for name, tr := range transitions {
		for _, from := range all {
			t.Run(fmt.Sprintf("%s from %s", name, from), func(t *testing.T) {
				to, err := tr.fn(from)

				if from == tr.from {
					require.NoError(t, err)
					assert.Equal(t, tr.to, to)
					return
				}
				require.ErrorIs(t, err, errs.ErrInvalidTransition)
				assert.Equal(t, order.Unknown, to)
			})
		}
	}
}
