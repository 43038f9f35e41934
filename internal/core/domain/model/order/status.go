package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// State transitions:
//
//	SearchCourier ──claim──> Courier ──start──> Delivering ──deliver──> Delivered
//	      ^                     │
//	      └──────cancel─────────┘
//	     (only inside the cancellation window)
//
// Statuses are persisted and exchanged by their wire names
// ("search_courier", "courier", "delivering", "delivered").
type Status int

const (
	// Unknown catches uninitialised values and unparseable wire names.
	Unknown Status = iota

	// SearchCourier is the pending state: the order waits for a courier.
	SearchCourier

	// Courier means a courier has claimed the order and is heading to the restaurant.
	Courier

	// Delivering means the courier picked the order up.
	Delivering

	// Delivered is terminal.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:       "unknown",
		SearchCourier: "search_courier",
		Courier:       "courier",
		Delivering:    "delivering",
		Delivered:     "delivered",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		SearchCourier: "search_courier",
		Courier:       "courier",
		Delivering:    "delivering",
		Delivered:     "delivered",
	}
}

// ParseStatus maps a wire name to a Status.
//
// Example:
//
//	s, err := order.ParseStatus("search_courier") // order.SearchCourier, nil
func ParseStatus(name string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", name))
}

// Validate returns an error for Unknown and out of range values.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name, or "unknown" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsPending reports whether the order is waiting for a courier.
func (s Status) IsPending() bool {
	return s == SearchCourier
}

// IsActive reports whether the order belongs to a courier's active set.
// Delivered orders are not active.
func (s Status) IsActive() bool {
	return s == Courier || s == Delivering
}

// ValidateCanHaveCourier enforces the courier invariant:
//   - SearchCourier orders have no courier
//   - Courier, Delivering and Delivered orders have exactly one
func (s Status) ValidateCanHaveCourier(courier bool) error {
	if courier && s == SearchCourier {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a courier", s.String()),
		)
	}

	if !courier && s != SearchCourier {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no courier", s.String()),
		)
	}

	return nil
}

// Claim transitions SearchCourier to Courier. Any other source status means
// another courier got there first.
func (s Status) Claim() (Status, error) {
	if s != SearchCourier {
		return Unknown, errs.NewInvalidTransitionError("claim", s.String())
	}
	return Courier, nil
}

// StartDelivering transitions Courier to Delivering.
func (s Status) StartDelivering() (Status, error) {
	if s != Courier {
		return Unknown, errs.NewInvalidTransitionError("start delivering", s.String())
	}
	return Delivering, nil
}

// Deliver transitions Delivering to Delivered.
func (s Status) Deliver() (Status, error) {
	if s != Delivering {
		return Unknown, errs.NewInvalidTransitionError("mark delivered", s.String())
	}
	return Delivered, nil
}

// Cancel transitions Courier back to SearchCourier. The time window is checked by Order.Cancel.
func (s Status) Cancel() (Status, error) {
	if s != Courier {
		return Unknown, errs.NewInvalidTransitionError("cancel", s.String())
	}
	return SearchCourier, nil
}
