package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrClaimOrderCommandIsNotConstructed = errors.New(
	"ClaimOrderCommand must be created via NewClaimOrderCommand constructor",
)

// ClaimOrderCommand asks to assign a pending order to a courier.
//
// Example:
//
//	cmd, err := NewClaimOrderCommand(orderID, kernel.MustPhoneNumber("+998901234567"))
//	if err != nil {
//	    return err
//	}
//	claimed, err := handler.Handle(ctx, cmd)
type ClaimOrderCommand struct {
	orderID kernel.UUID
	courier kernel.PhoneNumber
	guard   guard.ConstructorGuard
}

// NewClaimOrderCommand validates both identifiers.
func NewClaimOrderCommand(orderID kernel.UUID, courier kernel.PhoneNumber) (ClaimOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), courier.Validate()); err != nil {
		return ClaimOrderCommand{}, err
	}
	return ClaimOrderCommand{orderID: orderID, courier: courier, guard: guard.NewConstructorGuard()}, nil
}

func (c ClaimOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ClaimOrderCommand) Courier() kernel.PhoneNumber {
	return c.courier
}

// Validate ensures the command was created through the constructor.
func (c ClaimOrderCommand) Validate() error {
	return c.guard.Validate(ErrClaimOrderCommandIsNotConstructed)
}
