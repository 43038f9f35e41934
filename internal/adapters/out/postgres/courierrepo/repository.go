package courierrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCourierRepository implements CourierRepository using GORM.
type GormCourierRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(ctx context.Context, key string, aggregate any) error
}

// NewGormCourierRepository creates a new GORM courier repository.
func NewGormCourierRepository(db *gorm.DB, tracker aggregateTracker) *GormCourierRepository {
	return &GormCourierRepository{
		db:      db,
		tracker: tracker,
	}
}

// Get retrieves a courier by phone number.
func (r *GormCourierRepository) Get(ctx context.Context, phone kernel.PhoneNumber) (*courier.Courier, error) {
	if err := phone.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	if err := r.db.WithContext(ctx).First(&dto, "phone = ?", phone.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier", phone.String())
		}
		return nil, pgerr.Wrap("get courier", err)
	}

	return toDomain(dto)
}

// Upsert inserts the courier or overwrites every column of the existing row.
func (r *GormCourierRepository) Upsert(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
	if err != nil {
		return pgerr.Wrap("upsert courier", err)
	}

	return r.tracker.TrackAggregate(ctx, dto.Phone, aggregate)
}

// FindOnline returns online couriers ordered by phone.
func (r *GormCourierRepository) FindOnline(ctx context.Context) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	if err := r.db.WithContext(ctx).Where("online = ?", true).Order("phone").Find(&dtos).Error; err != nil {
		return nil, pgerr.Wrap("find online couriers", err)
	}
	return toDomainList(dtos)
}

// FindStale returns online couriers that never reported a location or last
// reported it before olderThan.
func (r *GormCourierRepository) FindStale(ctx context.Context, olderThan time.Time) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	err := r.db.WithContext(ctx).
		Where("online = ?", true).
		Where(r.db.Where("location_updated_at IS NULL").Or("location_updated_at < ?", olderThan)).
		Order("phone").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Wrap("find stale couriers", err)
	}
	return toDomainList(dtos)
}

func toDomainList(dtos []CourierDTO) ([]*courier.Courier, error) {
	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}
	return couriers, nil
}
