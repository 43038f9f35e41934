package memory

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/restaurant"
	"dispatch/internal/core/ports"
)

var (
	// ErrNoTransaction is returned by Commit and Rollback outside Begin.
	ErrNoTransaction = errors.New("no active transaction")
	// ErrReadOnlyTransaction is returned by writes after BeginReadOnly.
	ErrReadOnlyTransaction = errors.New("transaction is read-only")
)

type orderWrite struct {
	order    *order.Order
	insert   bool
	expected *order.Status
}

type changes struct {
	orders      map[kernel.UUID]orderWrite
	orderSeq    []kernel.UUID
	couriers    map[string]*courier.Courier
	restaurants map[kernel.UUID]*restaurant.Restaurant
}

func newChanges() *changes {
	return &changes{
		orders:      make(map[kernel.UUID]orderWrite),
		couriers:    make(map[string]*courier.Courier),
		restaurants: make(map[kernel.UUID]*restaurant.Restaurant),
	}
}

func (c *changes) putOrder(w orderWrite) {
	id := w.order.ID()
	prev, seen := c.orders[id]
	if !seen {
		c.orderSeq = append(c.orderSeq, id)
	} else {
		// keep the earliest precondition and the insert flag of the first write
		w.insert = w.insert || prev.insert
		if prev.expected != nil {
			w.expected = prev.expected
		}
		if prev.insert {
			w.expected = nil
		}
	}
	c.orders[id] = w
}

// UnitOfWork is not safe for concurrent use; create one per operation.
//
// A read-only transaction swaps store for a frozen copy taken at BeginReadOnly and
// restores origin when it ends.
type UnitOfWork struct {
	store    *Store
	origin   *Store
	staged   *changes
	readOnly bool
	held     map[kernel.UUID]struct{}
}

func newUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store, origin: store, held: make(map[kernel.UUID]struct{})}
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.staged == nil {
		u.staged = newChanges()
	}
	return nil
}

func (u *UnitOfWork) BeginReadOnly(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.staged != nil {
		return nil
	}
	u.staged = newChanges()
	u.readOnly = true
	u.store = u.origin.snapshot()
	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.staged == nil {
		return ErrNoTransaction
	}
	defer u.end()

	if u.readOnly {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return u.store.apply(u.staged)
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.staged == nil {
		return ErrNoTransaction
	}
	u.end()
	return nil
}

func (u *UnitOfWork) end() {
	u.staged = nil
	for id := range u.held {
		u.store.unlockRow(id)
		delete(u.held, id)
	}
	u.store = u.origin
	u.readOnly = false
}

func (u *UnitOfWork) inTx() bool {
	return u.staged != nil
}

// write stages c inside a transaction, or applies it at once outside of one.
func (u *UnitOfWork) write(fn func(c *changes)) error {
	if u.readOnly {
		return ErrReadOnlyTransaction
	}
	if u.inTx() {
		fn(u.staged)
		return nil
	}
	c := newChanges()
	fn(c)
	return u.store.apply(c)
}

func (u *UnitOfWork) lockForUpdate(ctx context.Context, id kernel.UUID) error {
	if !u.inTx() || u.readOnly {
		return nil
	}
	if _, ok := u.held[id]; ok {
		return nil
	}
	if err := u.store.lockRow(ctx, id); err != nil {
		return err
	}
	u.held[id] = struct{}{}
	return nil
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &orderRepository{uow: u}
}

func (u *UnitOfWork) CourierRepository() ports.CourierRepository {
	return &courierRepository{uow: u}
}

func (u *UnitOfWork) RestaurantRepository() ports.RestaurantRepository {
	return &restaurantRepository{uow: u}
}
