package ports

import (
	"context"
)

type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one transaction over the dispatch store. Repositories obtained from
// it read committed state before Begin and join the transaction after it, so
// queries can use a UnitOfWork without ever beginning one.
//
// BeginReadOnly opens a transaction in which every read sees the same committed
// state; writes are rejected. End it with Rollback.
//
// Rollback after a successful Commit returns an error and changes nothing.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	BeginReadOnly(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	CourierRepository() CourierRepository
	RestaurantRepository() RestaurantRepository
}
