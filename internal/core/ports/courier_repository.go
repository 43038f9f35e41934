// Package ports defines the contracts between the dispatch core and its adapters:
// repositories, the unit of work, live order watches, the event bus, the clock
// and metrics.
package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier presence records.
type CourierRepository interface {
	// Get retrieves a courier by phone number.
	// Returns *errs.ObjectNotFoundError when the courier never reported.
	Get(ctx context.Context, phone kernel.PhoneNumber) (*courier.Courier, error)

	// Upsert inserts or replaces the courier record.
	Upsert(ctx context.Context, courier *courier.Courier) error

	// FindOnline returns every courier flagged online.
	FindOnline(ctx context.Context) ([]*courier.Courier, error)

	// FindStale returns online couriers whose last location update is older than
	// olderThan, or who never reported one.
	FindStale(ctx context.Context, olderThan time.Time) ([]*courier.Courier, error)
}
