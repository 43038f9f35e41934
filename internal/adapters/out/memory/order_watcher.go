package memory

import (
	"context"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// watch re-runs its query after every committed order change and keeps only the
// newest undelivered result in its channel.
type watch struct {
	store    *Store
	query    func(o *order.Order) bool
	byAccept bool

	mu       sync.Mutex
	events   chan ports.OrderSet
	revision uint64
	closed   bool
	stop     func() bool
}

func (s *Store) WatchPending(ctx context.Context) (ports.OrderWatch, error) {
	return s.openWatch(ctx, pendingQuery, false)
}

func (s *Store) WatchActive(ctx context.Context, courier kernel.PhoneNumber) (ports.OrderWatch, error) {
	return s.openWatch(ctx, activeQuery(courier), true)
}

func (s *Store) openWatch(ctx context.Context, query func(o *order.Order) bool, byAccept bool) (*watch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := &watch{
		store:    s,
		query:    query,
		byAccept: byAccept,
		events:   make(chan ports.OrderSet, 1),
	}

	s.mu.Lock()
	s.watches[w] = struct{}{}
	w.deliver(s.selectLocked(nil, query, byAccept))
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = w.Close() })
	w.mu.Lock()
	w.stop = stop
	w.mu.Unlock()
	return w, nil
}

// broadcastLocked must be called with s.mu held.
func (s *Store) broadcastLocked() {
	for w := range s.watches {
		w.deliver(s.selectLocked(nil, w.query, w.byAccept))
	}
}

func (w *watch) deliver(orders []*order.Order) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.revision++
	set := ports.OrderSet{Orders: orders, Revision: w.revision}

	select {
	case w.events <- set:
		return
	default:
	}
	// replace the stale set nobody has read yet
	select {
	case <-w.events:
	default:
	}
	w.events <- set
}

func (w *watch) Events() <-chan ports.OrderSet {
	return w.events
}

// Err is always nil; the in-process store has no failure mode for watches.
func (w *watch) Err() error {
	return nil
}

func (w *watch) Close() error {
	w.store.mu.Lock()
	delete(w.store.watches, w)
	w.store.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.stop != nil {
		w.stop()
	}
	close(w.events)
	return nil
}
