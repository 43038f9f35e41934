package services

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// ProjectionOptions tunes ProjectFeed.
type ProjectionOptions struct {
	// ShowAllWhenNoneOnRoute falls back to every pending order when the courier has
	// active orders but none of the pending ones is on route. Debug only.
	ShowAllWhenNoneOnRoute bool
}

// Projection is the list of orders a courier is offered, plus a per-order
// annotation. OnRoute is informational; Orders is authoritative.
type Projection struct {
	Orders  []*order.Order
	OnRoute map[kernel.UUID]bool
}

// ProjectFeed computes the visible order list from scratch.
//
//   - No active orders: every pending order, none annotated on route.
//   - Active orders: only pending orders that are on route, in the order received.
//   - Active orders and nothing on route: an empty list, or every pending order
//     when opts.ShowAllWhenNoneOnRoute is set.
//
// Pending entries that are not in SearchCourier status, or that already appear in
// active, are skipped, so a pending list older than the active one can never offer
// a claimed order.
func ProjectFeed(filter RouteFilter, pending, active []*order.Order, opts ProjectionOptions) Projection {
	taken := make(map[kernel.UUID]struct{}, len(active))
	for _, o := range active {
		taken[o.ID()] = struct{}{}
	}

	candidates := make([]*order.Order, 0, len(pending))
	for _, o := range pending {
		if o == nil || !o.Status().IsPending() {
			continue
		}
		if _, ok := taken[o.ID()]; ok {
			continue
		}
		candidates = append(candidates, o)
	}

	onRoute := make(map[kernel.UUID]bool, len(candidates))
	for _, o := range candidates {
		onRoute[o.ID()] = false
	}

	if len(active) == 0 {
		return Projection{Orders: candidates, OnRoute: onRoute}
	}

	visible := make([]*order.Order, 0, len(candidates))
	for _, o := range candidates {
		if filter.IsOnRoute(o, active) {
			onRoute[o.ID()] = true
			visible = append(visible, o)
		}
	}

	if len(visible) == 0 && opts.ShowAllWhenNoneOnRoute {
		return Projection{Orders: candidates, OnRoute: onRoute}
	}

	return Projection{Orders: visible, OnRoute: onRoute}
}
