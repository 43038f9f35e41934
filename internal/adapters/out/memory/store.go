// Package memory is an in-process implementation of the dispatch store: unit of work,
// repositories and live order watches. It backs local development and concurrency tests.
//
// Transactions stage their writes and apply them atomically on Commit. GetForUpdate takes
// a per-order lock that is held until the unit of work ends, so two claimants of the same
// order are serialized the way a row lock serializes them in PostgreSQL. Repositories used
// without Begin write through immediately.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/restaurant"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

type orderRecord struct {
	order *order.Order
	seq   uint64
}

// Store holds all records. The zero value is not usable; call NewStore.
type Store struct {
	mu          sync.Mutex
	seq         uint64
	orders      map[kernel.UUID]orderRecord
	couriers    map[string]*courier.Courier
	restaurants map[kernel.UUID]*restaurant.Restaurant
	rowLocks    map[kernel.UUID]chan struct{}
	watches     map[*watch]struct{}
}

func NewStore() *Store {
	return &Store{
		orders:      make(map[kernel.UUID]orderRecord),
		couriers:    make(map[string]*courier.Courier),
		restaurants: make(map[kernel.UUID]*restaurant.Restaurant),
		rowLocks:    make(map[kernel.UUID]chan struct{}),
		watches:     make(map[*watch]struct{}),
	}
}

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return newUnitOfWork(f.store)
}

// snapshot copies the committed state into a detached Store without watches.
// Stored orders and couriers are replaced on write, never mutated, so the copy
// shares them.
func (s *Store) snapshot() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	frozen := NewStore()
	frozen.seq = s.seq
	maps.Copy(frozen.orders, s.orders)
	maps.Copy(frozen.couriers, s.couriers)
	maps.Copy(frozen.restaurants, s.restaurants)
	return frozen
}

func (s *Store) lockRow(ctx context.Context, id kernel.UUID) error {
	s.mu.Lock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.rowLocks[id] = l
	}
	s.mu.Unlock()

	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlockRow(id kernel.UUID) {
	s.mu.Lock()
	l := s.rowLocks[id]
	s.mu.Unlock()
	<-l
}

// apply commits staged changes. Conditional order writes are re-checked against
// the stored status; a mismatch rejects the whole change set.
func (s *Store) apply(c *changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range c.orders {
		rec, exists := s.orders[id]
		switch {
		case w.insert && exists:
			return errs.ErrDuplicateKey
		case w.expected != nil && !exists:
			return errs.NewObjectNotFoundError("order", id.String())
		case w.expected != nil && rec.order.Status() != *w.expected:
			return errs.NewStatusPreconditionError(id.String(), w.expected.String())
		}
	}

	for _, id := range c.orderSeq {
		w := c.orders[id]
		rec, exists := s.orders[id]
		if !exists {
			s.seq++
			rec.seq = s.seq
		}
		rec.order = w.order.Clone()
		s.orders[id] = rec
	}
	for phone, cr := range c.couriers {
		s.couriers[phone] = cr
	}
	for id, r := range c.restaurants {
		s.restaurants[id] = r
	}

	if len(c.orders) > 0 {
		s.broadcastLocked()
	}
	return nil
}

func (s *Store) getOrder(id kernel.UUID) (*order.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	return rec.order.Clone(), true
}

func pendingQuery(o *order.Order) bool {
	return o.Status().IsPending()
}

func activeQuery(phone kernel.PhoneNumber) func(o *order.Order) bool {
	return func(o *order.Order) bool {
		return o.Status().IsActive() && o.IsOwnedBy(phone)
	}
}

// selectOrders returns clones of matching orders with staged writes laid over the
// stored ones. Results are in insertion order, or by acceptance time when byAcceptedAt is set.
func (s *Store) selectOrders(staged *changes, match func(o *order.Order) bool, byAcceptedAt bool) []*order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(staged, match, byAcceptedAt)
}

func (s *Store) selectLocked(staged *changes, match func(o *order.Order) bool, byAcceptedAt bool) []*order.Order {
	recs := make([]orderRecord, 0)
	for id, rec := range s.orders {
		if staged != nil {
			if w, ok := staged.orders[id]; ok {
				rec.order = w.order
			}
		}
		if match(rec.order) {
			recs = append(recs, rec)
		}
	}
	if staged != nil {
		next := s.seq
		for _, id := range staged.orderSeq {
			if _, stored := s.orders[id]; stored {
				continue
			}
			next++
			if o := staged.orders[id].order; match(o) {
				recs = append(recs, orderRecord{order: o, seq: next})
			}
		}
	}

	slices.SortFunc(recs, func(a, b orderRecord) int {
		if byAcceptedAt {
			at, bt := a.order.AcceptedAt(), b.order.AcceptedAt()
			if at != nil && bt != nil && !at.Equal(*bt) {
				return at.Compare(*bt)
			}
		}
		return cmp.Compare(a.seq, b.seq)
	})

	out := make([]*order.Order, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.order.Clone())
	}
	return out
}

func cloneCourier(c *courier.Courier) (*courier.Courier, error) {
	return courier.RestoreCourier(c.Phone(), c.Location(), c.LocationUpdatedAt(), c.IsOnline())
}
