package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// AdvanceToDeliveringCommandHandler performs courier -> delivering.
type AdvanceToDeliveringCommandHandler struct {
	transition orderTransition
}

func NewAdvanceToDeliveringCommandHandler(
	uowFactory OrderUoWFactory,
	clock ports.Clock,
	settings TransitionSettings,
	metrics ports.Metrics,
	logger *slog.Logger,
) AdvanceToDeliveringCommandHandler {
	return AdvanceToDeliveringCommandHandler{
		transition: newOrderTransition(TransitionStartDelivering, uowFactory, clock, settings, metrics, logger),
	}
}

// Handle returns *errs.InvalidTransitionError unless the order is in courier status.
func (h AdvanceToDeliveringCommandHandler) Handle(ctx context.Context, cmd AdvanceToDeliveringCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.transition.run(ctx, cmd.OrderID(), cmd.Courier(), func(o *order.Order, _ time.Time) error {
		return o.StartDelivering()
	})
}
