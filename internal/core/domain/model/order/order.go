package order

import (
	"errors"
	"slices"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrCancellationWindowElapsed is the cause attached to a cancel attempted too late.
	ErrCancellationWindowElapsed = errors.New("cancellation window has elapsed")
)

// Prices groups the three amounts an order carries.
// Price is the menu total, ServicePrice the platform fee, DeliveryPrice what the courier earns.
type Prices struct {
	Price         kernel.Money
	ServicePrice  kernel.Money
	DeliveryPrice kernel.Money
}

// Order is the aggregate root of the dispatch domain. It owns the lifecycle
// search_courier → courier → delivering → delivered, plus the cancel edge
// courier → search_courier.
//
// Order follows these invariants:
//   - Must have a valid identifier and restaurant identifier
//   - Has a courier if and only if status is not SearchCourier
//   - acceptedAt is set by Claim and cleared by Cancel
//   - Every product line has a positive count
//
// The delivery location may be unknown. Such orders are still listed and claimable,
// they only drop out of route comparisons.
type Order struct {
	id           kernel.UUID
	restaurantID kernel.UUID

	// courier is nil while the order is pending
	courier *kernel.PhoneNumber

	location   kernel.Location
	prices     Prices
	products   []ProductLine
	status     Status
	acceptedAt *time.Time

	isConstructed bool
}

// NewOrder creates a pending order.
//
// Parameters:
//   - id: order identifier
//   - restaurantID: identifier of the restaurant preparing the order
//   - location: delivery destination, the zero Location when unknown
//   - prices: order amounts
//   - products: ordered product lines
//
// Returns:
//   - *Order: the order in SearchCourier status without a courier
//   - error: joined validation errors
//
// Example:
//
//	loc, _ := kernel.NewLocation(41.3111, 69.2797)
//	o, err := order.NewOrder(kernel.NewUUID(), restaurantID, loc, prices, lines)
func NewOrder(
	id kernel.UUID,
	restaurantID kernel.UUID,
	location kernel.Location,
	prices Prices,
	products []ProductLine,
) (*Order, error) {
	order := &Order{
		location:      location,
		prices:        prices,
		status:        SearchCourier,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setRestaurantID(restaurantID),
		order.setProducts(products),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder rebuilds an order from persisted state and re-checks the courier invariant.
// Repositories use it; application code uses NewOrder.
func RestoreOrder(
	id kernel.UUID,
	restaurantID kernel.UUID,
	location kernel.Location,
	prices Prices,
	products []ProductLine,
	status Status,
	courier *kernel.PhoneNumber,
	acceptedAt *time.Time,
) (*Order, error) {
	order, err := NewOrder(id, restaurantID, location, prices, products)
	if err != nil {
		return nil, err
	}

	if err = status.Validate(); err != nil {
		return nil, err
	}
	if courier != nil {
		if err = courier.Validate(); err != nil {
			return nil, err
		}
	}
	if err = status.ValidateCanHaveCourier(courier != nil); err != nil {
		return nil, err
	}

	order.status = status
	order.courier = courier
	order.acceptedAt = copyTime(acceptedAt)

	return order, nil
}

// Validate ensures the Order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) RestaurantID() kernel.UUID {
	return o.restaurantID
}

// Location returns the delivery destination. Check IsKnown before using it.
func (o *Order) Location() kernel.Location {
	return o.location
}

func (o *Order) Status() Status {
	return o.status
}

// Courier returns the owning courier, nil while pending.
func (o *Order) Courier() *kernel.PhoneNumber {
	if o.courier == nil {
		return nil
	}
	c := *o.courier
	return &c
}

// AcceptedAt returns when the current courier claimed the order, nil if unclaimed.
func (o *Order) AcceptedAt() *time.Time {
	return copyTime(o.acceptedAt)
}

func (o *Order) Prices() Prices {
	return o.prices
}

func (o *Order) Products() []ProductLine {
	return slices.Clone(o.products)
}

// ItemsTotal is price plus service fee, the amount collected for the food.
func (o *Order) ItemsTotal() kernel.Money {
	return o.prices.Price.Add(o.prices.ServicePrice)
}

// Total is price plus service fee plus delivery price.
func (o *Order) Total() kernel.Money {
	return o.ItemsTotal().Add(o.prices.DeliveryPrice)
}

// IsOwnedBy reports whether courier currently owns the order.
func (o *Order) IsOwnedBy(courier kernel.PhoneNumber) bool {
	return o.courier != nil && o.courier.IsEqual(courier)
}

// Claim assigns the order to courier and records the acceptance time.
//
// Returns:
//   - nil on success; status becomes Courier
//   - *errs.AlreadyClaimedError if the order is not pending
//   - a validation error for an empty phone number
//
// The caller persists the result with a write conditioned on the order still being pending.
func (o *Order) Claim(courier kernel.PhoneNumber, now time.Time) error {
	if err := courier.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.Claim()
	if err != nil {
		return errs.NewAlreadyClaimedError(o.id.String(), o.status.String())
	}

	accepted := now
	o.status = newStatus
	o.courier = &courier
	o.acceptedAt = &accepted
	return nil
}

// StartDelivering marks the order as picked up. Allowed from Courier only.
func (o *Order) StartDelivering() error {
	newStatus, err := o.status.StartDelivering()
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

// MarkDelivered completes the order. Allowed from Delivering only; a second call fails
// and leaves the order unchanged.
func (o *Order) MarkDelivered() error {
	newStatus, err := o.status.Deliver()
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

// Cancel hands the order back to the pending pool while the cancellation window is open.
// The courier and acceptance time are cleared.
//
// Example:
//
//	if err := o.Cancel(clock.Now(), order.DefaultCancellationWindow); err != nil {
//	    // errors.Is(err, errs.ErrInvalidTransition)
//	}
func (o *Order) Cancel(now time.Time, window time.Duration) error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}
	if !CanCancel(now, o.acceptedAt, window) {
		return errs.NewInvalidTransitionErrorWithCause("cancel", o.status.String(), ErrCancellationWindowElapsed)
	}

	o.status = newStatus
	o.courier = nil
	o.acceptedAt = nil
	return nil
}

// CanCancel reports whether Cancel would succeed at now.
func (o *Order) CanCancel(now time.Time, window time.Duration) bool {
	return o.status == Courier && CanCancel(now, o.acceptedAt, window)
}

// CancelTimeRemaining is zero unless the order is in Courier status inside its window.
func (o *Order) CancelTimeRemaining(now time.Time, window time.Duration) time.Duration {
	if o.status != Courier {
		return 0
	}
	return CancelTimeRemaining(now, o.acceptedAt, window)
}

// Clone returns a deep copy. Stores hand out clones so callers never share state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.courier = o.Courier()
	c.acceptedAt = copyTime(o.acceptedAt)
	c.products = slices.Clone(o.products)
	return &c
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurant id", err)
	}
	o.restaurantID = id
	return nil
}

func (o *Order) setProducts(products []ProductLine) error {
	for _, p := range products {
		if p.count <= 0 || p.productID == "" {
			return errs.NewValueIsInvalidError("product line must be created via NewProductLine")
		}
	}
	o.products = slices.Clone(products)
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
