package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// NewOrderSignal announces that an order is waiting for a courier.
// AnnouncedDeliveryPrice is what couriers are told they will earn.
type NewOrderSignal struct {
	OrderID                kernel.UUID
	Status                 order.Status
	DeliveryPrice          kernel.Money
	Price                  kernel.Money
	ServicePrice           kernel.Money
	AnnouncedDeliveryPrice kernel.Money
}

// CourierAlert asks one courier's device to ring for an order.
type CourierAlert struct {
	CourierPhone kernel.PhoneNumber
	OrderID      kernel.UUID
	OnRoute      bool
}

// EventPublisher delivers dispatch signals to the message bus.
type EventPublisher interface {
	PublishNewOrder(ctx context.Context, signal NewOrderSignal) error
	PublishCourierAlert(ctx context.Context, alert CourierAlert) error
}
