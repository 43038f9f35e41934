package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// NotifyCouriersCommandHandler turns a new pending order into per-courier alerts.
// Every online courier is considered; services.OrderDispatcher decides who is alerted.
//
// Example:
//
//	handler := NewNotifyCouriersCommandHandler(uowFactory, publisher, dispatcher, metrics, logger)
//	sent, err := handler.Handle(ctx, cmd)
type NotifyCouriersCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
	dispatcher services.OrderDispatcher
	metrics    ports.Metrics
	logger     *slog.Logger
}

func NewNotifyCouriersCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	dispatcher services.OrderDispatcher,
	metrics ports.Metrics,
	logger *slog.Logger,
) NotifyCouriersCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return NotifyCouriersCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		dispatcher: dispatcher,
		metrics:    metricsOrNop(metrics),
		logger:     logger.With("component", "notify-couriers"),
	}
}

// Handle returns the number of alerts published.
//
// Signals for non-pending statuses, unknown orders and orders claimed in the meantime
// end processing without error. Publish failures are joined into the returned error
// after every alert was attempted.
func (h NotifyCouriersCommandHandler) Handle(ctx context.Context, cmd NotifyCouriersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	if !cmd.Status().IsPending() {
		return 0, nil
	}

	uow := h.uowFactory.Create()
	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.InfoContext(ctx, "signalled order does not exist", "order_id", cmd.OrderID().String())
		return 0, nil
	}
	if err != nil {
		return 0, timeoutError(ctx, "load order", err)
	}
	if !o.Status().IsPending() {
		return 0, nil
	}

	couriers, err := uow.CourierRepository().FindOnline(ctx)
	if err != nil {
		return 0, timeoutError(ctx, "find online couriers", err)
	}

	workloads := make([]services.CourierWorkload, 0, len(couriers))
	for _, c := range couriers {
		active, activeErr := orderRepo.FindActiveByCourier(ctx, c.Phone())
		if activeErr != nil {
			h.logger.WarnContext(ctx, "could not read active orders, alerting anyway",
				"courier", c.Phone().String(),
				"error", activeErr)
		}
		workloads = append(workloads, services.CourierWorkload{Courier: c, Active: active, ActiveErr: activeErr})
	}

	alerts, err := h.dispatcher.Dispatch(o, workloads)
	if err != nil {
		return 0, err
	}

	var (
		sent       int
		publishErr error
	)
	for _, a := range alerts {
		err = h.publisher.PublishCourierAlert(ctx, ports.CourierAlert{
			CourierPhone: a.Courier,
			OrderID:      o.ID(),
			OnRoute:      a.OnRoute,
		})
		if err != nil {
			publishErr = errors.Join(publishErr, err)
			continue
		}
		h.metrics.AddCourierAlerts(a.OnRoute, 1)
		sent++
	}

	h.logger.InfoContext(ctx, "couriers notified",
		"order_id", o.ID().String(),
		"online", len(couriers),
		"alerted", sent)

	return sent, publishErr
}
