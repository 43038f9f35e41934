package orderwatch

import (
	"context"
	"slices"
	"sync"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

type queryFunc func(ctx context.Context, repo ports.OrderRepository) ([]*order.Order, error)

type watch struct {
	owner   *Watcher
	query   queryFunc
	cancel  context.CancelFunc
	trigger chan struct{}
	done    chan struct{}

	mu       sync.Mutex
	events   chan ports.OrderSet
	revision uint64
	last     []orderState
	closed   bool
	err      error
}

// orderState is the part of an order a feed depends on.
type orderState struct {
	id         string
	status     order.Status
	courier    string
	acceptedAt int64
}

func (wt *watch) run(ctx context.Context) {
	defer close(wt.done)
	defer wt.owner.unregister(wt)

	for {
		select {
		case <-ctx.Done():
			wt.fail(nil)
			return
		case <-wt.trigger:
		}

		orders, err := wt.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				wt.fail(nil)
			} else {
				wt.owner.logger.ErrorContext(ctx, "order watch failed", "error", err)
				wt.fail(err)
			}
			return
		}
		wt.publish(orders)
	}
}

func (wt *watch) fetch(ctx context.Context) ([]*order.Order, error) {
	return wt.owner.runQuery(ctx, wt.query)
}

// poke schedules a refresh; pending refreshes coalesce.
func (wt *watch) poke() {
	select {
	case wt.trigger <- struct{}{}:
	default:
	}
}

func (wt *watch) publish(orders []*order.Order) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	if wt.closed {
		return
	}
	state := snapshotState(orders)
	if wt.revision > 0 && slices.Equal(state, wt.last) {
		return
	}
	wt.last = state
	wt.revision++
	set := ports.OrderSet{Orders: orders, Revision: wt.revision}

	select {
	case wt.events <- set:
		return
	default:
	}
	select {
	case <-wt.events:
	default:
	}
	wt.events <- set
}

// fail closes the event stream. A nil err is a normal close.
func (wt *watch) fail(err error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	if wt.closed {
		return
	}
	wt.closed = true
	wt.err = err
	wt.cancel()
	close(wt.events)
}

func (wt *watch) Events() <-chan ports.OrderSet {
	return wt.events
}

func (wt *watch) Err() error {
	wt.mu.Lock()
	defer wt.mu.Unlock()
	return wt.err
}

// Close stops the watch and waits for its refresh loop to exit.
func (wt *watch) Close() error {
	wt.fail(nil)
	<-wt.done
	return nil
}

func snapshotState(orders []*order.Order) []orderState {
	state := make([]orderState, 0, len(orders))
	for _, o := range orders {
		s := orderState{id: o.ID().String(), status: o.Status()}
		if phone := o.Courier(); phone != nil {
			s.courier = phone.String()
		}
		if at := o.AcceptedAt(); at != nil {
			s.acceptedAt = at.UnixNano()
		}
		state = append(state, s)
	}
	return state
}
