package memory

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

type orderRepository struct {
	uow *UnitOfWork
}

func (r *orderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := r.current(aggregate.ID()); exists {
		return errs.ErrDuplicateKey
	}
	return r.uow.write(func(c *changes) {
		c.putOrder(orderWrite{order: aggregate.Clone(), insert: true})
	})
}

func (r *orderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o, ok := r.current(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return o, nil
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := r.uow.lockForUpdate(ctx, id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *orderRepository) UpdateIfStatus(ctx context.Context, aggregate *order.Order, expected order.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored, ok := r.current(aggregate.ID())
	if !ok {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	if stored.Status() != expected {
		return errs.NewStatusPreconditionError(aggregate.ID().String(), expected.String())
	}
	return r.uow.write(func(c *changes) {
		c.putOrder(orderWrite{order: aggregate.Clone(), expected: &expected})
	})
}

func (r *orderRepository) FindPending(ctx context.Context) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.uow.store.selectOrders(r.uow.staged, pendingQuery, false), nil
}

func (r *orderRepository) FindActiveByCourier(ctx context.Context, courier kernel.PhoneNumber) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.uow.store.selectOrders(r.uow.staged, activeQuery(courier), true), nil
}

// current returns the staged version of the order if the transaction wrote one.
func (r *orderRepository) current(id kernel.UUID) (*order.Order, bool) {
	if r.uow.inTx() {
		if w, ok := r.uow.staged.orders[id]; ok {
			return w.order.Clone(), true
		}
	}
	return r.uow.store.getOrder(id)
}
