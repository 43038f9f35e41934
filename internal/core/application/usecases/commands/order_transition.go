package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTransitionTimeout bounds one lifecycle transition, transaction included.
const DefaultTransitionTimeout = 15 * time.Second

// Transition names reported to metrics and errors.
const (
	TransitionStartDelivering = "start_delivering"
	TransitionMarkDelivered   = "mark_delivered"
	TransitionCancel          = "cancel"
)

// ErrNotOrderOwner is the cause attached when a courier acts on someone else's order.
var ErrNotOrderOwner = errors.New("order belongs to another courier")

// TransitionSettings tunes the lifecycle handlers.
type TransitionSettings struct {
	Timeout            time.Duration
	CancellationWindow time.Duration
}

func DefaultTransitionSettings() TransitionSettings {
	return TransitionSettings{
		Timeout:            DefaultTransitionTimeout,
		CancellationWindow: order.DefaultCancellationWindow,
	}
}

// orderTransition runs one status change as read, mutate, conditional write.
// The write only lands if the stored status still equals the status that was read,
// so a writer working from a stale read gets *errs.InvalidTransitionError.
type orderTransition struct {
	name       string
	uowFactory OrderUoWFactory
	clock      ports.Clock
	settings   TransitionSettings
	metrics    ports.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

func newOrderTransition(
	name string,
	uowFactory OrderUoWFactory,
	clock ports.Clock,
	settings TransitionSettings,
	metrics ports.Metrics,
	logger *slog.Logger,
) orderTransition {
	defaults := DefaultTransitionSettings()
	if settings.Timeout <= 0 {
		settings.Timeout = defaults.Timeout
	}
	if settings.CancellationWindow <= 0 {
		settings.CancellationWindow = defaults.CancellationWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return orderTransition{
		name:       name,
		uowFactory: uowFactory,
		clock:      clock,
		settings:   settings,
		metrics:    metricsOrNop(metrics),
		logger:     logger.With("component", "order-lifecycle"),
		tracer:     otel.Tracer(tracerName),
	}
}

func (t orderTransition) run(
	ctx context.Context,
	orderID kernel.UUID,
	courier *kernel.PhoneNumber,
	mutate func(o *order.Order, now time.Time) error,
) (*order.Order, error) {
	ctx, span := t.tracer.Start(ctx, "OrderTransition", trace.WithAttributes(
		attribute.String("order.id", orderID.String()),
		attribute.String("order.transition", t.name),
	))
	defer span.End()

	o, err := t.apply(ctx, orderID, courier, mutate)
	t.metrics.IncTransition(t.name, outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, t.name)
		return nil, err
	}

	t.logger.InfoContext(ctx, "order status changed",
		"order_id", orderID.String(),
		"transition", t.name,
		"status", o.Status().String())
	return o, nil
}

func (t orderTransition) apply(
	ctx context.Context,
	orderID kernel.UUID,
	courier *kernel.PhoneNumber,
	mutate func(o *order.Order, now time.Time) error,
) (*order.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, t.settings.Timeout)
	defer cancel()

	uow := t.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, timeoutError(ctx, "begin "+t.name, err)
	}
	defer rollback(ctx, uow)

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, timeoutError(ctx, "load order", err)
	}

	if courier != nil && !o.IsOwnedBy(*courier) {
		return nil, errs.NewInvalidTransitionErrorWithCause(t.name, o.Status().String(), ErrNotOrderOwner)
	}

	from := o.Status()
	if err = mutate(o, t.clock.Now()); err != nil {
		return nil, err
	}

	err = orderRepo.UpdateIfStatus(ctx, o, from)
	if err != nil {
		return nil, timeoutError(ctx, "write "+t.name, conditionalWriteError(err, func() error {
			return errs.NewInvalidTransitionErrorWithCause(t.name, from.String(), err)
		}))
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, timeoutError(ctx, "commit "+t.name, err)
	}

	return o, nil
}
