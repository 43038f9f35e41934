package commands

import (
	"errors"
	"slices"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrProductsAreRequired = errors.New("at least one product line is required")
)

// CreateOrderCommand ingests an order placed by a customer. The delivery location
// may be the zero Location when the customer did not share one.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(orderID, restaurantID, loc, prices, lines)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	o, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	restaurantID kernel.UUID
	location     kernel.Location
	prices       order.Prices
	products     []order.ProductLine

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates identifiers and requires at least one product line.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	restaurantID kernel.UUID,
	location kernel.Location,
	prices order.Prices,
	products []order.ProductLine,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		location: location,
		prices:   prices,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setRestaurantID(restaurantID),
		cmd.setProducts(products),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

func (c CreateOrderCommand) Location() kernel.Location {
	return c.location
}

func (c CreateOrderCommand) Prices() order.Prices {
	return c.prices
}

func (c CreateOrderCommand) Products() []order.ProductLine {
	return slices.Clone(c.products)
}

func (c *CreateOrderCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *CreateOrderCommand) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.restaurantID = id
	return nil
}

func (c *CreateOrderCommand) setProducts(products []order.ProductLine) error {
	if len(products) == 0 {
		return ErrProductsAreRequired
	}
	c.products = slices.Clone(products)
	return nil
}
