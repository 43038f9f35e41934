// Package message defines the JSON payloads exchanged over the message bus and their
// conversion to and from the dispatch core.
package message

import (
	"errors"
	"fmt"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Bus topics. RabbitMQ publishers use them as routing keys.
const (
	TopicOrdersCreated = "orders.created"
	TopicOrdersNew     = "orders.new"
	TopicCourierAlerts = "couriers.alerts"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Location struct {
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Long float64 `json:"long" validate:"gte=-180,lte=180"`
}

type ProductLine struct {
	ID    string `json:"id" validate:"required"`
	Count int    `json:"count" validate:"gt=0"`
}

// OrderCreated is published by the ordering system when a customer places an order.
type OrderCreated struct {
	ID            string          `json:"id" validate:"required,uuid"`
	RestaurantID  string          `json:"restaurantId" validate:"required,uuid"`
	Location      *Location       `json:"location,omitempty"`
	Price         decimal.Decimal `json:"price"`
	ServicePrice  decimal.Decimal `json:"servicePrice"`
	DeliveryPrice decimal.Decimal `json:"deliveryPrice"`
	Products      []ProductLine   `json:"products" validate:"required,min=1,dive"`
}

func (m OrderCreated) Validate() error {
	return validate.Struct(m)
}

// ToCommand converts the payload into a CreateOrderCommand.
func (m OrderCreated) ToCommand() (commands.CreateOrderCommand, error) {
	if err := m.Validate(); err != nil {
		return commands.CreateOrderCommand{}, err
	}

	id, err := kernel.UUIDFromString(m.ID)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	restaurantID, err := kernel.UUIDFromString(m.RestaurantID)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	var loc kernel.Location
	if m.Location != nil {
		if loc, err = kernel.NewLocation(m.Location.Lat, m.Location.Long); err != nil {
			return commands.CreateOrderCommand{}, err
		}
	}

	prices, err := PricesFromDecimals(m.Price, m.ServicePrice, m.DeliveryPrice)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	lines := make([]order.ProductLine, 0, len(m.Products))
	for _, p := range m.Products {
		line, lineErr := order.NewProductLine(p.ID, p.Count)
		if lineErr != nil {
			return commands.CreateOrderCommand{}, lineErr
		}
		lines = append(lines, line)
	}

	return commands.NewCreateOrderCommand(id, restaurantID, loc, prices, lines)
}

// PricesFromDecimals builds order prices, rejecting negative amounts.
func PricesFromDecimals(price, service, delivery decimal.Decimal) (order.Prices, error) {
	p, pErr := kernel.NewMoney(price)
	s, sErr := kernel.NewMoney(service)
	d, dErr := kernel.NewMoney(delivery)
	if err := errors.Join(pErr, sErr, dErr); err != nil {
		return order.Prices{}, err
	}
	return order.Prices{Price: p, ServicePrice: s, DeliveryPrice: d}, nil
}

// NewOrder announces that an order is waiting for a courier.
type NewOrder struct {
	OrderID                string          `json:"orderId" validate:"required,uuid"`
	Status                 string          `json:"status" validate:"required"`
	DeliveryPrice          decimal.Decimal `json:"deliveryPrice"`
	Price                  decimal.Decimal `json:"price"`
	ServicePrice           decimal.Decimal `json:"servicePrice"`
	AnnouncedDeliveryPrice decimal.Decimal `json:"announcedDeliveryPrice"`
}

func NewOrderFromSignal(signal ports.NewOrderSignal) NewOrder {
	return NewOrder{
		OrderID:                signal.OrderID.String(),
		Status:                 signal.Status.String(),
		DeliveryPrice:          signal.DeliveryPrice.Decimal(),
		Price:                  signal.Price.Decimal(),
		ServicePrice:           signal.ServicePrice.Decimal(),
		AnnouncedDeliveryPrice: signal.AnnouncedDeliveryPrice.Decimal(),
	}
}

func (m NewOrder) Validate() error {
	return validate.Struct(m)
}

// ToCommand converts the signal into a NotifyCouriersCommand.
func (m NewOrder) ToCommand() (commands.NotifyCouriersCommand, error) {
	if err := m.Validate(); err != nil {
		return commands.NotifyCouriersCommand{}, err
	}

	id, err := kernel.UUIDFromString(m.OrderID)
	if err != nil {
		return commands.NotifyCouriersCommand{}, err
	}
	status, err := order.ParseStatus(m.Status)
	if err != nil {
		return commands.NotifyCouriersCommand{}, fmt.Errorf("status %q: %w", m.Status, err)
	}

	return commands.NewNotifyCouriersCommand(id, status)
}

// CourierAlert asks one courier's device to ring.
type CourierAlert struct {
	CourierPhone string `json:"courierPhone"`
	OrderID      string `json:"orderId"`
	OnRoute      bool   `json:"onRoute"`
}

func CourierAlertFrom(alert ports.CourierAlert) CourierAlert {
	return CourierAlert{
		CourierPhone: alert.CourierPhone.String(),
		OrderID:      alert.OrderID.String(),
		OnRoute:      alert.OnRoute,
	}
}
