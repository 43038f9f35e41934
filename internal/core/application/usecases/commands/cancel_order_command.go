package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand hands a claimed order back to the pending pool.
// Courier is optional; when set, only the owning courier may act.
type CancelOrderCommand struct {
	orderID kernel.UUID
	courier *kernel.PhoneNumber
	guard   guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID kernel.UUID, courier *kernel.PhoneNumber) (CancelOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CancelOrderCommand{}, err
	}
	if courier != nil {
		if err := courier.Validate(); err != nil {
			return CancelOrderCommand{}, err
		}
		c := *courier
		courier = &c
	}
	return CancelOrderCommand{orderID: orderID, courier: courier, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CancelOrderCommand) Courier() *kernel.PhoneNumber {
	return c.courier
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}
