package services

import (
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// ErrOrderIsNotPending is returned when asked to dispatch an order that already has a courier.
var ErrOrderIsNotPending = errors.New("order is not waiting for a courier")

// CourierWorkload is an online courier together with the result of reading their
// active orders. ActiveErr is set when that read failed.
type CourierWorkload struct {
	Courier   *courier.Courier
	Active    []*order.Order
	ActiveErr error
}

// Alert tells one courier about a pending order.
type Alert struct {
	Courier kernel.PhoneNumber
	OnRoute bool
}

// OrderDispatcher decides which couriers should be alerted about a new pending order.
//
// Business rules:
//   - Only pending orders are dispatched
//   - Offline couriers are never alerted
//   - A courier without active orders is always alerted
//   - A busy courier is alerted only when the order is on their route
//   - A courier whose active orders could not be read is alerted anyway
//
// Example usage:
//
//	dispatcher := services.NewOrderDispatcher(services.NewRouteFilter())
//	alerts, err := dispatcher.Dispatch(o, workloads)
//	for _, a := range alerts {
//	    publisher.PublishCourierAlert(ctx, a.Courier, o.ID(), a.OnRoute)
//	}
type OrderDispatcher struct {
	filter RouteFilter
}

func NewOrderDispatcher(filter RouteFilter) OrderDispatcher {
	return OrderDispatcher{filter: filter}
}

// Dispatch returns the alerts to send for o, in the order couriers were given.
//
// Returns:
//   - []Alert: possibly empty
//   - error: ErrOrderIsNotPending, or a validation error for an unconstructed order or courier
func (d OrderDispatcher) Dispatch(o *order.Order, couriers []CourierWorkload) ([]Alert, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if !o.Status().IsPending() {
		return nil, errs.NewInvalidTransitionErrorWithCause("dispatch", o.Status().String(), ErrOrderIsNotPending)
	}

	alerts := make([]Alert, 0, len(couriers))
	for _, w := range couriers {
		if err := w.Courier.Validate(); err != nil {
			return nil, err
		}
		if !w.Courier.IsOnline() {
			continue
		}

		switch {
		case w.ActiveErr != nil:
			alerts = append(alerts, Alert{Courier: w.Courier.Phone()})
		case len(w.Active) == 0:
			alerts = append(alerts, Alert{Courier: w.Courier.Phone()})
		case d.filter.IsOnRoute(o, w.Active):
			alerts = append(alerts, Alert{Courier: w.Courier.Phone(), OnRoute: true})
		}
	}

	return alerts, nil
}
