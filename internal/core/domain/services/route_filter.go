package services

import (
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// DefaultMaxRouteDistanceKm is the largest customer-to-customer distance, in kilometres,
// at which a pending order still counts as on the way.
const DefaultMaxRouteDistanceKm = 2.0

// RouteFilter decides whether a pending order lies along a courier's current route.
//
// A candidate is on route when its delivery location is within MaxDistanceKm of the
// delivery location of at least one active order. Distances are compared after
// rounding to 0.1 km and the bound is inclusive, so 2.0 km is on route and 2.1 km is not.
// Orders with an unknown location never take part in a comparison.
//
// Example usage:
//
//	filter := services.NewRouteFilter()
//	if filter.IsOnRoute(pending, courierActiveOrders) {
//	    // show the order, ring the alert
//	}
type RouteFilter struct {
	maxDistanceKm float64
}

// NewRouteFilter returns a filter with DefaultMaxRouteDistanceKm.
func NewRouteFilter() RouteFilter {
	return RouteFilter{maxDistanceKm: DefaultMaxRouteDistanceKm}
}

// NewRouteFilterWithDistance returns a filter with a custom threshold, which must be positive.
func NewRouteFilterWithDistance(maxDistanceKm float64) (RouteFilter, error) {
	if maxDistanceKm <= 0 {
		return RouteFilter{}, errs.NewValueIsOutOfRangeError("maxDistanceKm", maxDistanceKm, 0.1, "+inf")
	}
	return RouteFilter{maxDistanceKm: maxDistanceKm}, nil
}

func (f RouteFilter) MaxDistanceKm() float64 {
	if f.maxDistanceKm <= 0 {
		return DefaultMaxRouteDistanceKm
	}
	return f.maxDistanceKm
}

// IsOnRoute reports whether candidate is within the threshold of any active order.
// It returns false for a nil candidate, a candidate without a known location, or an
// empty active set, and never panics on malformed entries.
func (f RouteFilter) IsOnRoute(candidate *order.Order, active []*order.Order) bool {
	if candidate == nil || len(active) == 0 {
		return false
	}

	target := candidate.Location()
	if !target.IsKnown() {
		return false
	}

	limit := f.MaxDistanceKm()
	for _, a := range active {
		if a == nil {
			continue
		}
		d, ok := a.Location().DistanceTo(target)
		if !ok {
			continue
		}
		if d <= limit {
			return true
		}
	}
	return false
}
