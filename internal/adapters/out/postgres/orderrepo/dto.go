// Package orderrepo persists order aggregates with GORM. Products are stored as a
// JSON document, prices as numeric columns, and an unknown delivery location as
// NULL coordinates.
package orderrepo

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RestaurantID  uuid.UUID       `gorm:"type:uuid;not null"`
	Status        string          `gorm:"type:varchar(32);not null;index"`
	CourierPhone  *string         `gorm:"type:varchar(16);index"`
	Location      LocationDTO     `gorm:"embedded;embeddedPrefix:location_"`
	Price         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ServicePrice  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DeliveryPrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Products      ProductsDTO     `gorm:"type:jsonb;not null"`
	AcceptedAt    *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// LocationDTO is the delivery destination. Both columns are NULL when unknown.
type LocationDTO struct {
	Lat  *float64
	Long *float64
}

type ProductLineDTO struct {
	ProductID string `json:"id"`
	Count     int    `json:"count"`
}

// ProductsDTO is stored as jsonb.
type ProductsDTO []ProductLineDTO

func (p ProductsDTO) Value() (driver.Value, error) {
	if p == nil {
		p = ProductsDTO{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *ProductsDTO) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = ProductsDTO{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported products column type %T", src)
	}
	return json.Unmarshal(raw, p)
}

func locationFromDomain(loc kernel.Location) LocationDTO {
	if !loc.IsKnown() {
		return LocationDTO{}
	}
	lat, long := loc.Lat(), loc.Long()
	return LocationDTO{Lat: &lat, Long: &long}
}

func locationToDomain(dto LocationDTO) (kernel.Location, error) {
	if dto.Lat == nil || dto.Long == nil {
		return kernel.Location{}, nil
	}
	return kernel.NewLocation(*dto.Lat, *dto.Long)
}

func fromDomain(o *order.Order) OrderDTO {
	var courierPhone *string
	if c := o.Courier(); c != nil {
		s := c.String()
		courierPhone = &s
	}

	lines := o.Products()
	products := make(ProductsDTO, 0, len(lines))
	for _, line := range lines {
		products = append(products, ProductLineDTO{ProductID: line.ProductID(), Count: line.Count()})
	}

	prices := o.Prices()
	return OrderDTO{
		ID:            o.ID().Bytes(),
		RestaurantID:  o.RestaurantID().Bytes(),
		Status:        o.Status().String(),
		CourierPhone:  courierPhone,
		Location:      locationFromDomain(o.Location()),
		Price:         prices.Price.Decimal(),
		ServicePrice:  prices.ServicePrice.Decimal(),
		DeliveryPrice: prices.DeliveryPrice.Decimal(),
		Products:      products,
		AcceptedAt:    o.AcceptedAt(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	loc, err := locationToDomain(dto.Location)
	if err != nil {
		return nil, err
	}

	var courier *kernel.PhoneNumber
	if dto.CourierPhone != nil {
		phone, phoneErr := kernel.NewPhoneNumber(*dto.CourierPhone)
		if phoneErr != nil {
			return nil, phoneErr
		}
		courier = &phone
	}

	prices, err := pricesToDomain(dto)
	if err != nil {
		return nil, err
	}

	lines := make([]order.ProductLine, 0, len(dto.Products))
	for _, p := range dto.Products {
		line, lineErr := order.NewProductLine(p.ProductID, p.Count)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return order.RestoreOrder(id, restaurantID, loc, prices, lines, status, courier, dto.AcceptedAt)
}

func pricesToDomain(dto OrderDTO) (order.Prices, error) {
	price, priceErr := kernel.NewMoney(dto.Price)
	service, serviceErr := kernel.NewMoney(dto.ServicePrice)
	delivery, deliveryErr := kernel.NewMoney(dto.DeliveryPrice)
	if err := errors.Join(priceErr, serviceErr, deliveryErr); err != nil {
		return order.Prices{}, err
	}
	return order.Prices{Price: price, ServicePrice: service, DeliveryPrice: delivery}, nil
}
