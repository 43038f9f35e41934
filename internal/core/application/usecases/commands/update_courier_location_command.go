package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateCourierLocationCommandIsNotConstructed = errors.New(
	"UpdateCourierLocationCommand must be created via NewUpdateCourierLocationCommand constructor",
)

// UpdateCourierLocationCommand is a periodic location report from a courier device.
//
// Example:
//
//	loc, _ := kernel.NewLocation(41.3111, 69.2797)
//	cmd, err := NewUpdateCourierLocationCommand(phone, loc)
type UpdateCourierLocationCommand struct { //nolint:recvcheck //using for validation
	courier  kernel.PhoneNumber
	location kernel.Location

	guard guard.ConstructorGuard
}

func NewUpdateCourierLocationCommand(courier kernel.PhoneNumber, location kernel.Location) (UpdateCourierLocationCommand, error) {
	cmd := UpdateCourierLocationCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setCourier(courier),
		cmd.setLocation(location),
	); err != nil {
		return UpdateCourierLocationCommand{}, err
	}

	return cmd, nil
}

func (c UpdateCourierLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierLocationCommandIsNotConstructed)
}

func (c UpdateCourierLocationCommand) Courier() kernel.PhoneNumber {
	return c.courier
}

func (c UpdateCourierLocationCommand) Location() kernel.Location {
	return c.location
}

func (c *UpdateCourierLocationCommand) setCourier(courier kernel.PhoneNumber) error {
	if err := courier.Validate(); err != nil {
		return err
	}
	c.courier = courier
	return nil
}

func (c *UpdateCourierLocationCommand) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = location
	return nil
}
