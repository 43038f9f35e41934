package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// CancelOrderCommandHandler performs courier -> search_courier while the
// cancellation window is open. The window is checked against the server clock
// inside the transaction. A cancelled order is announced again on the bus.
//
// Example:
//
//	o, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrInvalidTransition) {
//	    // too late, or not in courier status
//	}
type CancelOrderCommandHandler struct {
	transition orderTransition
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewCancelOrderCommandHandler creates the handler. A nil publisher skips the re-announcement.
func NewCancelOrderCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	clock ports.Clock,
	settings TransitionSettings,
	metrics ports.Metrics,
	logger *slog.Logger,
) CancelOrderCommandHandler {
	t := newOrderTransition(TransitionCancel, uowFactory, clock, settings, metrics, logger)
	return CancelOrderCommandHandler{
		transition: t,
		publisher:  publisher,
		logger:     t.logger,
	}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	window := h.transition.settings.CancellationWindow
	o, err := h.transition.run(ctx, cmd.OrderID(), cmd.Courier(), func(o *order.Order, now time.Time) error {
		return o.Cancel(now, window)
	})
	if err != nil {
		return nil, err
	}

	if h.publisher != nil {
		if pubErr := h.publisher.PublishNewOrder(ctx, NewOrderSignalFor(o)); pubErr != nil {
			// the order is pending again either way; couriers still see it in their feeds
			h.logger.WarnContext(ctx, "failed to announce cancelled order",
				"order_id", o.ID().String(),
				"error", pubErr)
		}
	}

	return o, nil
}
