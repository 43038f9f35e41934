// Package orderwatch implements live order queries over Postgres LISTEN/NOTIFY.
//
// One lib/pq listener follows the orders_changed channel. Every notification, and every
// reconnect of the listener, re-runs the query of each open watch; a watch delivers the
// new result only when it differs from the previous one.
package orderwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/retry"

	"github.com/lib/pq"
)

const (
	minReconnectInterval = 100 * time.Millisecond
	maxReconnectInterval = 30 * time.Second
	pingInterval         = 90 * time.Second
)

// ErrWatcherStopped is reported by watches that were open when the watcher stopped.
var ErrWatcherStopped = errors.New("order watcher stopped")

// Listener is the subset of *pq.Listener the watcher relies on.
type Listener interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// Watcher implements ports.OrderWatcher.
type Watcher struct {
	uowFactory ports.UnitOfWorkFactory
	listener   Listener
	policy     retry.Policy
	logger     *slog.Logger

	mu      sync.Mutex
	watches map[*watch]struct{}
	stopped bool
}

// NewListener opens a lib/pq listener on dsn that logs its connection state changes.
func NewListener(dsn string, logger *slog.Logger) *pq.Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("order listener connection attempt failed", "error", err)
		case pq.ListenerEventDisconnected:
			logger.Warn("order listener disconnected", "error", err)
		case pq.ListenerEventReconnected:
			logger.Info("order listener reconnected")
		}
	})
}

func NewWatcher(uowFactory ports.UnitOfWorkFactory, listener Listener, policy retry.Policy, logger *slog.Logger) (*Watcher, error) {
	if uowFactory == nil {
		return nil, errors.New("uowFactory is required")
	}
	if listener == nil {
		return nil, errors.New("listener is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		uowFactory: uowFactory,
		listener:   listener,
		policy:     policy,
		logger:     logger.With("component", "order_watcher"),
		watches:    make(map[*watch]struct{}),
	}, nil
}

// Run listens for order changes until ctx is done or the listener fails. Open watches
// are closed on return; when the listener failed they report its error.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.listener.Listen(postgres.OrdersChangedChannel); err != nil {
		err = fmt.Errorf("listen %s: %w", postgres.OrdersChangedChannel, err)
		w.stop(err)
		return err
	}
	w.logger.InfoContext(ctx, "listening for order changes", "channel", postgres.OrdersChangedChannel)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	notifications := w.listener.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			w.stop(ErrWatcherStopped)
			return w.listener.Close()

		case n, ok := <-notifications:
			if !ok {
				w.stop(ErrWatcherStopped)
				return ErrWatcherStopped
			}
			// a nil notification follows a reconnect; changes may have been missed
			if n == nil {
				w.logger.InfoContext(ctx, "refreshing watches after reconnect")
			}
			w.triggerAll()

		case <-ticker.C:
			go func() {
				if err := w.listener.Ping(); err != nil {
					w.logger.WarnContext(ctx, "order listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (w *Watcher) WatchPending(ctx context.Context) (ports.OrderWatch, error) {
	return w.open(ctx, func(ctx context.Context, repo ports.OrderRepository) ([]*order.Order, error) {
		return repo.FindPending(ctx)
	})
}

func (w *Watcher) WatchActive(ctx context.Context, courier kernel.PhoneNumber) (ports.OrderWatch, error) {
	if err := courier.Validate(); err != nil {
		return nil, err
	}
	return w.open(ctx, func(ctx context.Context, repo ports.OrderRepository) ([]*order.Order, error) {
		return repo.FindActiveByCourier(ctx, courier)
	})
}

func (w *Watcher) open(ctx context.Context, query queryFunc) (*watch, error) {
	ctx, cancel := context.WithCancel(ctx)
	wt := &watch{
		owner:   w,
		query:   query,
		cancel:  cancel,
		trigger: make(chan struct{}, 1),
		events:  make(chan ports.OrderSet, 1),
		done:    make(chan struct{}),
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		cancel()
		return nil, ErrWatcherStopped
	}
	w.watches[wt] = struct{}{}
	w.mu.Unlock()

	// registered before the first query so a change racing with it still triggers a refresh
	orders, err := wt.fetch(ctx)
	if err != nil {
		w.unregister(wt)
		cancel()
		return nil, err
	}
	wt.publish(orders)

	go wt.run(ctx)
	return wt, nil
}

func (w *Watcher) triggerAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for wt := range w.watches {
		wt.poke()
	}
}

func (w *Watcher) stop(reason error) {
	w.mu.Lock()
	w.stopped = true
	watches := make([]*watch, 0, len(w.watches))
	for wt := range w.watches {
		watches = append(watches, wt)
	}
	w.watches = make(map[*watch]struct{})
	w.mu.Unlock()

	for _, wt := range watches {
		wt.fail(reason)
	}
}

func (w *Watcher) unregister(wt *watch) {
	w.mu.Lock()
	delete(w.watches, wt)
	w.mu.Unlock()
}

func (w *Watcher) runQuery(ctx context.Context, query queryFunc) ([]*order.Order, error) {
	var orders []*order.Order
	err := w.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		orders, err = query(ctx, w.uowFactory.Create().OrderRepository())
		return err
	}, func(err error, wait time.Duration) {
		w.logger.WarnContext(ctx, "order watch query failed, retrying", "error", err, "wait", wait)
	})
	return orders, err
}
