// Package logbus is the event publisher used when no message bus is configured.
// Signals are written to the log and dropped.
package logbus

import (
	"context"
	"log/slog"

	"dispatch/internal/core/ports"
)

type Publisher struct {
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{logger: logger.With("component", "log_bus")}
}

func (p *Publisher) PublishNewOrder(ctx context.Context, signal ports.NewOrderSignal) error {
	p.logger.InfoContext(ctx, "new order signal",
		"order_id", signal.OrderID.String(),
		"status", signal.Status.String(),
		"announced_delivery_price", signal.AnnouncedDeliveryPrice.String())
	return nil
}

func (p *Publisher) PublishCourierAlert(ctx context.Context, alert ports.CourierAlert) error {
	p.logger.InfoContext(ctx, "courier alert",
		"courier", alert.CourierPhone.String(),
		"order_id", alert.OrderID.String(),
		"on_route", alert.OnRoute)
	return nil
}
