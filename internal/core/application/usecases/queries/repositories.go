// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Single-read queries use the repositories directly; a query that combines several
// reads opens a read-only transaction so they all see one committed state.
package queries

import (
	"context"

	"dispatch/internal/core/ports"
)

type (
	// Repositories gives read access to the store. ports.UnitOfWork satisfies it.
	Repositories interface {
		BeginReadOnly(ctx context.Context) error
		Rollback(ctx context.Context) error

		OrderRepository() ports.OrderRepository
		CourierRepository() ports.CourierRepository
		RestaurantRepository() ports.RestaurantRepository
	}

	// RepositoriesFactory creates repositories bound to the main connection.
	RepositoriesFactory interface {
		Create() Repositories
	}
)
