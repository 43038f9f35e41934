package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrNotifyCouriersCommandIsNotConstructed = errors.New(
	"NotifyCouriersCommand must be created via NewNotifyCouriersCommand constructor",
)

// NotifyCouriersCommand reacts to a NewOrderSignal read from the bus.
type NotifyCouriersCommand struct {
	orderID kernel.UUID
	status  order.Status
	guard   guard.ConstructorGuard
}

// NewNotifyCouriersCommand accepts any valid status; non-pending signals are ignored by the handler.
func NewNotifyCouriersCommand(orderID kernel.UUID, status order.Status) (NotifyCouriersCommand, error) {
	if err := errors.Join(orderID.Validate(), status.Validate()); err != nil {
		return NotifyCouriersCommand{}, err
	}
	return NotifyCouriersCommand{orderID: orderID, status: status, guard: guard.NewConstructorGuard()}, nil
}

func (c NotifyCouriersCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c NotifyCouriersCommand) Status() order.Status {
	return c.status
}

func (c NotifyCouriersCommand) Validate() error {
	return c.guard.Validate(ErrNotifyCouriersCommandIsNotConstructed)
}
