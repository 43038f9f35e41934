package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// MarkDeliveredCommandHandler performs delivering -> delivered. Delivered is terminal,
// so a repeated call fails with *errs.InvalidTransitionError and changes nothing.
type MarkDeliveredCommandHandler struct {
	transition orderTransition
}

func NewMarkDeliveredCommandHandler(
	uowFactory OrderUoWFactory,
	clock ports.Clock,
	settings TransitionSettings,
	metrics ports.Metrics,
	logger *slog.Logger,
) MarkDeliveredCommandHandler {
	return MarkDeliveredCommandHandler{
		transition: newOrderTransition(TransitionMarkDelivered, uowFactory, clock, settings, metrics, logger),
	}
}

func (h MarkDeliveredCommandHandler) Handle(ctx context.Context, cmd MarkDeliveredCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.transition.run(ctx, cmd.OrderID(), cmd.Courier(), func(o *order.Order, _ time.Time) error {
		return o.MarkDelivered()
	})
}
