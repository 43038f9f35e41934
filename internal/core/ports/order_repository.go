package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Errors:
//   - *errs.ObjectNotFoundError when the order does not exist
//   - *errs.StatusPreconditionError when a conditional write finds a different status
//   - *errs.StoreUnavailableError for connectivity and driver failures
//   - context errors are returned unchanged
type OrderRepository interface {
	// Add persists a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order without locking it.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order and locks it until the surrounding
	// transaction ends. Outside a transaction it behaves like Get.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateIfStatus writes status, courier and acceptedAt of aggregate as one write,
	// but only if the stored status still equals expected.
	UpdateIfStatus(ctx context.Context, aggregate *order.Order, expected order.Status) error

	// FindPending returns every order in search_courier status, oldest first.
	FindPending(ctx context.Context) ([]*order.Order, error)

	// FindActiveByCourier returns the courier's orders in courier or delivering status,
	// oldest acceptance first.
	FindActiveByCourier(ctx context.Context, courier kernel.PhoneNumber) ([]*order.Order, error)
}
