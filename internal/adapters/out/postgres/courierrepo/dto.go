// Package courierrepo persists courier presence records with GORM. The phone number
// is the primary key; an unknown location is stored as NULL coordinates.
package courierrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierDTO represents the database structure for persisting courier aggregates.
type CourierDTO struct {
	Phone             string      `gorm:"type:varchar(16);primaryKey"`
	Location          LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	LocationUpdatedAt *time.Time  `gorm:"index"`
	Online            bool        `gorm:"not null;default:false;index"`
}

// TableName specifies the database table name for courier entities.
func (CourierDTO) TableName() string {
	return "couriers"
}

type LocationDTO struct {
	Lat  *float64
	Long *float64
}

func fromDomain(c *courier.Courier) CourierDTO {
	dto := CourierDTO{
		Phone:             c.Phone().String(),
		LocationUpdatedAt: c.LocationUpdatedAt(),
		Online:            c.IsOnline(),
	}
	if loc := c.Location(); loc.IsKnown() {
		lat, long := loc.Lat(), loc.Long()
		dto.Location = LocationDTO{Lat: &lat, Long: &long}
	}
	return dto
}

func toDomain(dto CourierDTO) (*courier.Courier, error) {
	phone, err := kernel.NewPhoneNumber(dto.Phone)
	if err != nil {
		return nil, err
	}

	var loc kernel.Location
	if dto.Location.Lat != nil && dto.Location.Long != nil {
		loc, err = kernel.NewLocation(*dto.Location.Lat, *dto.Location.Long)
		if err != nil {
			return nil, err
		}
	}

	return courier.RestoreCourier(phone, loc, dto.LocationUpdatedAt, dto.Online)
}
