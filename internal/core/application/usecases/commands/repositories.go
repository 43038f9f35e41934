// Package commands contains the operations that change dispatch state: order ingestion,
// claims, lifecycle transitions and courier presence.
//
// Every handler validates its command, opens a unit of work, does its reads and
// conditional writes inside it and commits. A context that runs out mid-operation
// surfaces as errs.ErrTimeout.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// TxManager is the transaction half of a unit of work.
type TxManager interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type OrderRepoFactory interface {
	OrderRepository() ports.OrderRepository
}

type CourierRepoFactory interface {
	CourierRepository() ports.CourierRepository
}

// OrderUoW is used by ingestion and the lifecycle transitions, which touch a single order.
type OrderUoW interface {
	TxManager
	OrderRepoFactory
}

type OrderUoWFactory interface {
	Create() OrderUoW
}

// CourierUoW is used by location reports and the presence sweep.
type CourierUoW interface {
	TxManager
	CourierRepoFactory
}

type CourierUoWFactory interface {
	Create() CourierUoW
}

// UoW sees orders and couriers in one transaction. A claim checks the courier's
// location and locks the order; notification reads online couriers with their
// active orders.
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//		return err
//	}
//	defer rollback(ctx, uow)
//
//	c, err := uow.CourierRepository().Get(ctx, phone)
//	o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
//	...
//	return uow.Commit(ctx)
type UoW interface {
	TxManager
	CourierRepoFactory
	OrderRepoFactory
}

type UoWFactory interface {
	Create() UoW
}
