package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrMarkDeliveredCommandIsNotConstructed = errors.New(
	"MarkDeliveredCommand must be created via NewMarkDeliveredCommand constructor",
)

// MarkDeliveredCommand completes an order that is being delivered.
// Courier is optional; when set, only the owning courier may act.
type MarkDeliveredCommand struct {
	orderID kernel.UUID
	courier *kernel.PhoneNumber
	guard   guard.ConstructorGuard
}

func NewMarkDeliveredCommand(orderID kernel.UUID, courier *kernel.PhoneNumber) (MarkDeliveredCommand, error) {
	if err := orderID.Validate(); err != nil {
		return MarkDeliveredCommand{}, err
	}
	if courier != nil {
		if err := courier.Validate(); err != nil {
			return MarkDeliveredCommand{}, err
		}
		c := *courier
		courier = &c
	}
	return MarkDeliveredCommand{orderID: orderID, courier: courier, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkDeliveredCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c MarkDeliveredCommand) Courier() *kernel.PhoneNumber {
	return c.courier
}

func (c MarkDeliveredCommand) Validate() error {
	return c.guard.Validate(ErrMarkDeliveredCommandIsNotConstructed)
}
