package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// MinAnnouncedDeliveryPrice is the floor of the delivery price shown in new order signals.
const MinAnnouncedDeliveryPrice = 4000

// ErrOrderAlreadyExists is returned when an order with the same id was already ingested.
var ErrOrderAlreadyExists = errors.New("order already exists")

// NewOrderSignalFor builds the announcement for a pending order. The announced
// delivery price never drops below MinAnnouncedDeliveryPrice.
func NewOrderSignalFor(o *order.Order) ports.NewOrderSignal {
	floor, _ := kernel.MoneyFromInt(MinAnnouncedDeliveryPrice)
	prices := o.Prices()
	return ports.NewOrderSignal{
		OrderID:                o.ID(),
		Status:                 o.Status(),
		DeliveryPrice:          prices.DeliveryPrice,
		Price:                  prices.Price,
		ServicePrice:           prices.ServicePrice,
		AnnouncedDeliveryPrice: prices.DeliveryPrice.Max(floor),
	}
}

// CreateOrderCommandHandler stores a new pending order and announces it.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, publisher, logger)
//	o, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrOrderAlreadyExists) {
//	    // duplicate delivery from the bus
//	}
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewCreateOrderCommandHandler creates the handler. A nil publisher skips announcements.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "create-order"),
	}
}

// Handle persists the order in search_courier status, then publishes a NewOrderSignal.
// A publish failure is logged and does not fail the command.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.RestaurantID(), cmd.Location(), cmd.Prices(), cmd.Products())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, timeoutError(ctx, "begin create order", err)
	}
	defer rollback(ctx, uow)

	orderRepo := uow.OrderRepository()

	_, err = orderRepo.Get(ctx, o.ID())
	switch {
	case err == nil:
		return nil, ErrOrderAlreadyExists
	case !errors.Is(err, errs.ErrObjectNotFound):
		return nil, timeoutError(ctx, "check order", err)
	}

	// a concurrent ingest of the same id can slip past the Get above; the store
	// rejects the second insert either on Add or on Commit
	if err = orderRepo.Add(ctx, o); err != nil {
		return nil, insertError(ctx, "add order", err)
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, insertError(ctx, "commit create order", err)
	}

	h.logger.InfoContext(ctx, "order created", "order_id", o.ID().String())

	if h.publisher != nil {
		if err = h.publisher.PublishNewOrder(ctx, NewOrderSignalFor(o)); err != nil {
			h.logger.WarnContext(ctx, "failed to announce new order",
				"order_id", o.ID().String(),
				"error", err)
		}
	}

	return o, nil
}

func insertError(ctx context.Context, op string, err error) error {
	if errors.Is(err, errs.ErrDuplicateKey) {
		return ErrOrderAlreadyExists
	}
	return timeoutError(ctx, op, err)
}
