// Package feed keeps a live, per-courier projection of the orders the courier is offered.
//
// A Subscription follows two store watches, the pending set and the courier's active
// set, and recomputes the projection from scratch whenever either changes. Each result
// is published as an immutable Snapshot with a strictly increasing Version.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// ErrWatchClosed is reported when a store watch ends without an error of its own.
var ErrWatchClosed = errors.New("order watch closed unexpectedly")

// Snapshot is one projection cycle. Orders and ActiveOrders must not be modified.
type Snapshot struct {
	Version         uint64
	CourierPhone    kernel.PhoneNumber
	Orders          []*order.Order
	OnRoute         map[kernel.UUID]bool
	ActiveOrders    []*order.Order
	PendingRevision uint64
	ActiveRevision  uint64
	ComputedAt      time.Time
}

// Projector opens subscriptions. It is safe for concurrent use.
type Projector struct {
	watcher ports.OrderWatcher
	filter  services.RouteFilter
	options services.ProjectionOptions
	clock   ports.Clock
	metrics ports.Metrics
	logger  *slog.Logger
}

func NewProjector(
	watcher ports.OrderWatcher,
	filter services.RouteFilter,
	options services.ProjectionOptions,
	clock ports.Clock,
	metrics ports.Metrics,
	logger *slog.Logger,
) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{
		watcher: watcher,
		filter:  filter,
		options: options,
		clock:   clock,
		metrics: metrics,
		logger:  logger.With("component", "feed-projector"),
	}
}

// Subscribe starts following the feed of courier. The subscription ends when ctx is
// cancelled, when Close is called, or when a watch fails.
func (p *Projector) Subscribe(ctx context.Context, courier kernel.PhoneNumber) (*Subscription, error) {
	if err := courier.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)

	pending, err := p.watcher.WatchPending(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	active, err := p.watcher.WatchActive(ctx, courier)
	if err != nil {
		_ = pending.Close()
		cancel()
		return nil, err
	}

	s := &Subscription{
		projector: p,
		courier:   courier,
		cancel:    cancel,
		updates:   make(chan Snapshot, 1),
		done:      make(chan struct{}),
	}
	go s.run(ctx, pending, active)

	p.logger.DebugContext(ctx, "feed subscription opened", "courier", courier.String())
	return s, nil
}

// Subscription is a live feed handle. Updates delivers the newest snapshot; a
// snapshot nobody read yet is replaced by the next one.
type Subscription struct {
	projector *Projector
	courier   kernel.PhoneNumber
	cancel    context.CancelFunc
	updates   chan Snapshot
	done      chan struct{}

	mu  sync.Mutex
	err error
}

func (s *Subscription) Updates() <-chan Snapshot {
	return s.updates
}

// Err returns the watch failure that ended the subscription, or nil.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close releases both watches and closes Updates. It returns once the
// subscription goroutine has exited and may be called more than once.
func (s *Subscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *Subscription) run(ctx context.Context, pending, active ports.OrderWatch) {
	defer close(s.done)
	defer close(s.updates)
	defer func() {
		_ = pending.Close()
		_ = active.Close()
		s.cancel()
	}()

	var (
		version    uint64
		pendingSet *ports.OrderSet
		activeSet  *ports.OrderSet
	)

	for {
		select {
		case <-ctx.Done():
			return
		case set, ok := <-pending.Events():
			if !ok {
				s.fail(ctx, pending)
				return
			}
			pendingSet = &set
		case set, ok := <-active.Events():
			if !ok {
				s.fail(ctx, active)
				return
			}
			activeSet = &set
		}

		if pendingSet == nil || activeSet == nil {
			continue
		}

		version++
		s.publish(s.project(version, *pendingSet, *activeSet))
	}
}

func (s *Subscription) project(version uint64, pending, active ports.OrderSet) Snapshot {
	p := s.projector
	projection := services.ProjectFeed(p.filter, pending.Orders, active.Orders, p.options)
	if p.metrics != nil {
		p.metrics.IncFeedRecompute(len(active.Orders) > 0)
	}

	return Snapshot{
		Version:         version,
		CourierPhone:    s.courier,
		Orders:          projection.Orders,
		OnRoute:         projection.OnRoute,
		ActiveOrders:    active.Orders,
		PendingRevision: pending.Revision,
		ActiveRevision:  active.Revision,
		ComputedAt:      p.clock.Now(),
	}
}

// publish never blocks; run is the only sender.
func (s *Subscription) publish(snap Snapshot) {
	select {
	case s.updates <- snap:
		return
	default:
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- snap
}

func (s *Subscription) fail(ctx context.Context, w ports.OrderWatch) {
	if ctx.Err() != nil {
		return
	}

	err := w.Err()
	if err == nil {
		err = ErrWatchClosed
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	s.projector.logger.WarnContext(ctx, "feed subscription ended",
		"courier", s.courier.String(),
		"error", err)
}
