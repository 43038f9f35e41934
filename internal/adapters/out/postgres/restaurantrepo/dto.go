// Package restaurantrepo stores restaurants and their menus. The menu is a jsonb document.
package restaurantrepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/restaurant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RestaurantDTO struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(255);not null"`
	Lat  *float64
	Long *float64
	Menu MenuDTO `gorm:"type:jsonb;not null"`
}

func (RestaurantDTO) TableName() string {
	return "restaurants"
}

type MenuItemDTO struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Img      string          `json:"img,omitempty"`
	Category string          `json:"category,omitempty"`
}

type MenuDTO []MenuItemDTO

func (m MenuDTO) Value() (driver.Value, error) {
	if m == nil {
		m = MenuDTO{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *MenuDTO) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = MenuDTO{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported menu column type %T", src)
	}
}

func fromDomain(r *restaurant.Restaurant) RestaurantDTO {
	dto := RestaurantDTO{
		ID:   r.ID().Bytes(),
		Name: r.Name(),
	}
	if loc := r.Location(); loc.IsKnown() {
		lat, long := loc.Lat(), loc.Long()
		dto.Lat, dto.Long = &lat, &long
	}
	for _, item := range r.Menu() {
		dto.Menu = append(dto.Menu, MenuItemDTO{
			ID:       item.ID,
			Title:    item.Title,
			Price:    item.Price.Decimal(),
			Img:      item.Img,
			Category: item.Category,
		})
	}
	return dto
}

func toDomain(dto RestaurantDTO) (*restaurant.Restaurant, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var loc kernel.Location
	if dto.Lat != nil && dto.Long != nil {
		if loc, err = kernel.NewLocation(*dto.Lat, *dto.Long); err != nil {
			return nil, err
		}
	}

	menu := make([]restaurant.MenuItem, 0, len(dto.Menu))
	for _, item := range dto.Menu {
		price, priceErr := kernel.NewMoney(item.Price)
		if priceErr != nil {
			return nil, priceErr
		}
		menu = append(menu, restaurant.MenuItem{
			ID:       item.ID,
			Title:    item.Title,
			Price:    price,
			Img:      item.Img,
			Category: item.Category,
		})
	}

	return restaurant.NewRestaurant(id, dto.Name, loc, menu)
}
