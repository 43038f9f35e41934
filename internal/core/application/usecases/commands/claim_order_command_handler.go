package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/retry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultClaimTimeout bounds one claim attempt, transaction included.
	DefaultClaimTimeout = 15 * time.Second
	// DefaultLocationMaxAge is how old a courier location may be for the courier to claim.
	DefaultLocationMaxAge = 2 * time.Minute

	tracerName = "dispatch/commands"
)

// Claim outcome labels reported to metrics.
const (
	ClaimOutcomeSuccess             = "success"
	ClaimOutcomeAlreadyClaimed      = "already_claimed"
	ClaimOutcomeNotFound            = "not_found"
	ClaimOutcomeTimeout             = "timeout"
	ClaimOutcomeLocationUnavailable = "location_unavailable"
	ClaimOutcomeStoreUnavailable    = "store_unavailable"
	ClaimOutcomeFailure             = "failure"
)

// ClaimSettings tunes ClaimOrderCommandHandler.
type ClaimSettings struct {
	Timeout        time.Duration
	LocationMaxAge time.Duration
	Retry          retry.Policy
}

// DefaultClaimSettings returns a 15s timeout, a 2 minute location age limit and the default retry policy.
func DefaultClaimSettings() ClaimSettings {
	return ClaimSettings{
		Timeout:        DefaultClaimTimeout,
		LocationMaxAge: DefaultLocationMaxAge,
		Retry:          retry.DefaultPolicy(),
	}
}

// ClaimOrderCommandHandler assigns a pending order to exactly one courier.
//
// The courier must be online with a fresh location. The order is then read under
// a row lock, moved to courier status and written back with a write conditioned on
// the order still being pending, all inside one transaction bounded by
// ClaimSettings.Timeout. Of two concurrent claims on one order, one commits and the
// other gets *errs.AlreadyClaimedError.
//
// Timeouts and store failures are retried per ClaimSettings.Retry. If a retry finds
// the order already owned by the same courier, the earlier attempt committed and the
// claim succeeds.
//
// Example:
//
//	claimed, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrAlreadyClaimed):
//	    // refresh the feed
//	case errors.Is(err, errs.ErrLocationUnavailable):
//	    // ask the courier to enable location
//	}
type ClaimOrderCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	settings   ClaimSettings
	metrics    ports.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewClaimOrderCommandHandler creates the handler. A nil metrics disables metrics.
func NewClaimOrderCommandHandler(
	uowFactory UoWFactory,
	clock ports.Clock,
	settings ClaimSettings,
	metrics ports.Metrics,
	logger *slog.Logger,
) ClaimOrderCommandHandler {
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultClaimTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return ClaimOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		settings:   settings,
		metrics:    metricsOrNop(metrics),
		logger:     logger.With("component", "claim-order"),
		tracer:     otel.Tracer(tracerName),
	}
}

// Handle claims the order and returns it in courier status.
func (h ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := h.tracer.Start(ctx, "ClaimOrder", trace.WithAttributes(
		attribute.String("order.id", cmd.OrderID().String()),
		attribute.String("courier.phone", cmd.Courier().String()),
	))
	defer span.End()

	started := time.Now()
	claimed, err := h.handle(ctx, cmd)
	result := claimOutcome(err)

	h.metrics.ObserveClaim(result, time.Since(started))
	span.SetAttributes(attribute.String("claim.outcome", result))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		return nil, err
	}

	h.logger.InfoContext(ctx, "order claimed",
		"order_id", claimed.ID().String(),
		"courier", cmd.Courier().String())
	return claimed, nil
}

func (h ClaimOrderCommandHandler) handle(ctx context.Context, cmd ClaimOrderCommand) (*order.Order, error) {
	if err := h.checkCourierLocation(ctx, cmd); err != nil {
		return nil, err
	}

	var (
		claimed  *order.Order
		attempts int
	)

	err := h.settings.Retry.Do(ctx, func(ctx context.Context) error {
		attempts++
		o, err := h.claimOnce(ctx, cmd, attempts > 1)
		if err != nil {
			return err
		}
		claimed = o
		return nil
	}, func(err error, wait time.Duration) {
		h.logger.WarnContext(ctx, "retrying order claim",
			"order_id", cmd.OrderID().String(),
			"attempt", attempts,
			"wait", wait,
			"error", err)
	})
	if err != nil {
		return nil, err
	}

	return claimed, nil
}

func (h ClaimOrderCommandHandler) checkCourierLocation(ctx context.Context, cmd ClaimOrderCommand) error {
	ctx, cancel := context.WithTimeout(ctx, h.settings.Timeout)
	defer cancel()

	c, err := h.uowFactory.Create().CourierRepository().Get(ctx, cmd.Courier())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return errs.NewLocationUnavailableError(cmd.Courier().String(), "courier has never reported a location")
	}
	if err != nil {
		return timeoutError(ctx, "load courier", err)
	}

	_, err = c.CurrentPosition(h.clock.Now(), h.settings.LocationMaxAge)
	return err
}

func (h ClaimOrderCommandHandler) claimOnce(ctx context.Context, cmd ClaimOrderCommand, retried bool) (*order.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, h.settings.Timeout)
	defer cancel()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, timeoutError(ctx, "begin claim", err)
	}
	defer rollback(ctx, uow)

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, timeoutError(ctx, "load order", err)
	}

	if retried && o.Status() == order.Courier && o.IsOwnedBy(cmd.Courier()) {
		return o, nil
	}

	if err = o.Claim(cmd.Courier(), h.clock.Now()); err != nil {
		return nil, err
	}

	err = orderRepo.UpdateIfStatus(ctx, o, order.SearchCourier)
	if err != nil {
		return nil, timeoutError(ctx, "write claim", conditionalWriteError(err, func() error {
			return errs.NewAlreadyClaimedError(cmd.OrderID().String(), "changed concurrently")
		}))
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, timeoutError(ctx, "commit claim", err)
	}

	return o, nil
}

func claimOutcome(err error) string {
	switch {
	case err == nil:
		return ClaimOutcomeSuccess
	case errors.Is(err, errs.ErrAlreadyClaimed):
		return ClaimOutcomeAlreadyClaimed
	case errors.Is(err, errs.ErrObjectNotFound):
		return ClaimOutcomeNotFound
	case errors.Is(err, errs.ErrTimeout):
		return ClaimOutcomeTimeout
	case errors.Is(err, errs.ErrLocationUnavailable):
		return ClaimOutcomeLocationUnavailable
	case errors.Is(err, errs.ErrStoreUnavailable):
		return ClaimOutcomeStoreUnavailable
	default:
		return ClaimOutcomeFailure
	}
}
