package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAdvanceToDeliveringCommandIsNotConstructed = errors.New(
	"AdvanceToDeliveringCommand must be created via NewAdvanceToDeliveringCommand constructor",
)

// AdvanceToDeliveringCommand moves a claimed order to delivering once the courier picked it up.
// Courier is optional; when set, only the owning courier may act.
type AdvanceToDeliveringCommand struct {
	orderID kernel.UUID
	courier *kernel.PhoneNumber
	guard   guard.ConstructorGuard
}

func NewAdvanceToDeliveringCommand(orderID kernel.UUID, courier *kernel.PhoneNumber) (AdvanceToDeliveringCommand, error) {
	if err := orderID.Validate(); err != nil {
		return AdvanceToDeliveringCommand{}, err
	}
	if courier != nil {
		if err := courier.Validate(); err != nil {
			return AdvanceToDeliveringCommand{}, err
		}
		c := *courier
		courier = &c
	}
	return AdvanceToDeliveringCommand{orderID: orderID, courier: courier, guard: guard.NewConstructorGuard()}, nil
}

func (c AdvanceToDeliveringCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AdvanceToDeliveringCommand) Courier() *kernel.PhoneNumber {
	return c.courier
}

func (c AdvanceToDeliveringCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceToDeliveringCommandIsNotConstructed)
}
