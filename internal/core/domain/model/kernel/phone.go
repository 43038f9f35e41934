package kernel

import (
	"regexp"
	"strings"

	"dispatch/internal/pkg/errs"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ErrPhoneNumberIsEmpty is returned by Validate on the zero PhoneNumber.
var ErrPhoneNumberIsEmpty = errs.NewValueIsRequiredError("phone number")

// PhoneNumber identifies a courier. Spaces, dashes and parentheses are stripped
// on construction, so "+998 (90) 123-45-67" and "+998901234567" are equal.
type PhoneNumber struct {
	value string
}

func NewPhoneNumber(raw string) (PhoneNumber, error) {
	normalized := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if normalized == "" {
		return PhoneNumber{}, ErrPhoneNumberIsEmpty
	}
	if !phonePattern.MatchString(normalized) {
		return PhoneNumber{}, errs.NewValueIsInvalidError("phone number")
	}

	return PhoneNumber{value: normalized}, nil
}

// MustPhoneNumber panics on invalid input. Use only with literals.
func MustPhoneNumber(raw string) PhoneNumber {
	p, err := NewPhoneNumber(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p PhoneNumber) String() string {
	return p.value
}

func (p PhoneNumber) IsEqual(other PhoneNumber) bool {
	return p.value == other.value
}

func (p PhoneNumber) IsEmpty() bool {
	return p.value == ""
}

func (p PhoneNumber) Validate() error {
	if p.IsEmpty() {
		return ErrPhoneNumberIsEmpty
	}
	return nil
}
