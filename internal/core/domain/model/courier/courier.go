package courier

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	// ErrLocationIsRequired is returned when a location update carries no coordinate.
	ErrLocationIsRequired = errs.NewValueIsRequiredError("location")
)

// Courier is the presence record of a courier: who they are, where they were last
// seen and whether they are online.
//
// Business rules:
//   - A courier is identified by phone number
//   - Every location update marks the courier online and stamps the update time
//   - A location older than the allowed age is not usable for claims
//
// Example usage:
//
//	c, _ := courier.NewCourier(kernel.MustPhoneNumber("+998901234567"))
//	loc, _ := kernel.NewLocation(41.3111, 69.2797)
//	_ = c.UpdateLocation(loc, time.Now())
//	pos, err := c.CurrentPosition(time.Now(), 2*time.Minute)
type Courier struct {
	phone             kernel.PhoneNumber
	location          kernel.Location
	locationUpdatedAt *time.Time
	online            bool
	guard             guard.ConstructorGuard
}

// NewCourier creates an offline courier with no known location.
func NewCourier(phone kernel.PhoneNumber) (*Courier, error) {
	if err := phone.Validate(); err != nil {
		return nil, err
	}
	return &Courier{phone: phone, guard: guard.NewConstructorGuard()}, nil
}

// RestoreCourier rebuilds a courier from persisted state.
// An online courier without a location is accepted; it simply cannot claim.
func RestoreCourier(
	phone kernel.PhoneNumber,
	location kernel.Location,
	locationUpdatedAt *time.Time,
	online bool,
) (*Courier, error) {
	c, err := NewCourier(phone)
	if err != nil {
		return nil, err
	}

	c.location = location
	if locationUpdatedAt != nil {
		t := *locationUpdatedAt
		c.locationUpdatedAt = &t
	}
	c.online = online
	return c, nil
}

// IsEqual compares two couriers by phone number.
func (c *Courier) IsEqual(other *Courier) bool {
	if other == nil {
		return false
	}
	return c.phone.IsEqual(other.phone)
}

// Validate ensures the courier was created through a constructor.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

func (c *Courier) Phone() kernel.PhoneNumber {
	return c.phone
}

// Location returns the last reported location, the zero Location if none.
func (c *Courier) Location() kernel.Location {
	return c.location
}

func (c *Courier) LocationUpdatedAt() *time.Time {
	if c.locationUpdatedAt == nil {
		return nil
	}
	t := *c.locationUpdatedAt
	return &t
}

func (c *Courier) IsOnline() bool {
	return c.online
}

// UpdateLocation records a fresh position reported at now and marks the courier online.
func (c *Courier) UpdateLocation(location kernel.Location, now time.Time) error {
	if !location.IsKnown() {
		return ErrLocationIsRequired
	}

	c.location = location
	c.locationUpdatedAt = &now
	c.online = true
	return nil
}

// GoOffline hides the courier from new order alerts. The last location is kept.
func (c *Courier) GoOffline() {
	c.online = false
}

// CurrentPosition returns the courier's location if it is usable for a claim at now.
//
// Returns *errs.LocationUnavailableError when the courier is offline, has never
// reported a location, or the last report is older than maxAge. A non-positive
// maxAge disables the age check.
func (c *Courier) CurrentPosition(now time.Time, maxAge time.Duration) (kernel.Location, error) {
	phone := c.phone.String()

	if !c.online {
		return kernel.Location{}, errs.NewLocationUnavailableError(phone, "courier is offline")
	}
	if !c.location.IsKnown() || c.locationUpdatedAt == nil {
		return kernel.Location{}, errs.NewLocationUnavailableError(phone, "no location reported")
	}
	if maxAge > 0 {
		if age := now.Sub(*c.locationUpdatedAt); age > maxAge {
			return kernel.Location{}, errs.NewLocationUnavailableError(
				phone, fmt.Sprintf("location is %s old, limit is %s", age.Truncate(time.Second), maxAge),
			)
		}
	}
	return c.location, nil
}

// IsStale reports whether an online courier has not reported a location within maxAge.
// Offline couriers are never stale.
func (c *Courier) IsStale(now time.Time, maxAge time.Duration) bool {
	if !c.online {
		return false
	}
	if c.locationUpdatedAt == nil {
		return true
	}
	return now.Sub(*c.locationUpdatedAt) > maxAge
}
