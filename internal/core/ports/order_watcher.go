package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderSet is the full current result of a watched query. Revision grows with
// every delivered set of the same watch.
type OrderSet struct {
	Orders   []*order.Order
	Revision uint64
}

// OrderWatch is a live query. The first value on Events is the initial result;
// every later value replaces it entirely. Events is closed after Close, after
// the watch context ends, or after a failure reported by Err.
type OrderWatch interface {
	Events() <-chan OrderSet
	Err() error
	Close() error
}

// OrderWatcher opens live queries over the order store.
type OrderWatcher interface {
	// WatchPending follows every order in search_courier status.
	WatchPending(ctx context.Context) (OrderWatch, error)

	// WatchActive follows the courier's orders in courier or delivering status.
	WatchActive(ctx context.Context, courier kernel.PhoneNumber) (OrderWatch, error)
}
