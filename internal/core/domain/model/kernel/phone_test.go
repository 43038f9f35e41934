package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneNumber(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
		err      error
	}{
		{name: "international", raw: "+998901234567", expected: "+998901234567"},
		{name: "formatted", raw: " +998 (90) 123-45-67 ", expected: "+998901234567"},
		{name: "local digits", raw: "9012345", expected: "9012345"},
		{name: "empty", raw: "   ", err: errs.ErrValueIsRequired},
		{name: "too short", raw: "12345", err: errs.ErrValueIsInvalid},
		{name: "letters", raw: "+99890abc4567", err: errs.ErrValueIsInvalid},
		{name: "too long", raw: "+1234567890123456", err: errs.ErrValueIsInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			phone, err := kernel.NewPhoneNumber(tc.raw)

			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.True(t, phone.IsEmpty())
				return
			}
			require.NoError(t, err)
			require.NoError(t, phone.Validate())
			assert.Equal(t, tc.expected, phone.String())
		})
	}
}

func TestPhoneNumber_IsEqual(t *testing.T) {
	a := kernel.MustPhoneNumber("+998 90 123 45 67")
	b := kernel.MustPhoneNumber("+998901234567")

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(kernel.MustPhoneNumber("+998901234568")))
}

func TestPhoneNumber_ZeroValue(t *testing.T) {
	var phone kernel.PhoneNumber

	require.ErrorIs(t, phone.Validate(), kernel.ErrPhoneNumberIsEmpty)
	assert.Panics(t, func() { kernel.MustPhoneNumber("") })
}
