package orderrepo

import (
	"context"
	"errors"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var columns = []string{
	"id", "restaurant_id", "status", "courier_phone", "location_lat", "location_long",
	"price", "service_price", "delivery_price", "products", "accepted_at", "created_at",
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(ctx context.Context, key string, aggregate any) error
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Wrap("add order", err)
	}

	return r.tracker.TrackAggregate(ctx, aggregate.ID().String(), aggregate)
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves an order with SELECT ... FOR UPDATE.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormOrderRepository) get(db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, pgerr.Wrap("get order", err)
	}

	return toDomain(dto)
}

// UpdateIfStatus writes status, courier and accepted_at in one statement guarded by
// the expected status. Zero affected rows means the order is gone or moved on.
func (r *GormOrderRepository) UpdateIfStatus(ctx context.Context, aggregate *order.Order, expected order.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&OrderDTO{}).
		Where("id = ? AND status = ?", dto.ID, expected.String()).
		Updates(map[string]any{
			"status":        dto.Status,
			"courier_phone": dto.CourierPhone,
			"accepted_at":   dto.AcceptedAt,
		})
	if result.Error != nil {
		return pgerr.Wrap("update order", result.Error)
	}

	if result.RowsAffected == 0 {
		var n int64
		if err := db.Model(&OrderDTO{}).Where("id = ?", dto.ID).Count(&n).Error; err != nil {
			return pgerr.Wrap("check order", err)
		}
		if n == 0 {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		return errs.NewStatusPreconditionError(aggregate.ID().String(), expected.String())
	}

	return r.tracker.TrackAggregate(ctx, aggregate.ID().String(), aggregate)
}

// FindPending returns orders in search_courier status, oldest first.
func (r *GormOrderRepository) FindPending(ctx context.Context) ([]*order.Order, error) {
	query := sq.Select(columns...).
		From("orders").
		Where(sq.Eq{"status": order.SearchCourier.String()}).
		OrderBy("created_at", "id")

	return r.find(ctx, "find pending orders", query)
}

// FindActiveByCourier returns the courier's orders in courier or delivering status,
// oldest acceptance first.
func (r *GormOrderRepository) FindActiveByCourier(ctx context.Context, courier kernel.PhoneNumber) ([]*order.Order, error) {
	query := sq.Select(columns...).
		From("orders").
		Where(sq.Eq{
			"courier_phone": courier.String(),
			"status":        []string{order.Courier.String(), order.Delivering.String()},
		}).
		OrderBy("accepted_at", "created_at", "id")

	return r.find(ctx, "find active orders", query)
}

func (r *GormOrderRepository) find(ctx context.Context, op string, query sq.SelectBuilder) ([]*order.Order, error) {
	// gorm rebinds "?" placeholders for the dialect
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var dtos []OrderDTO
	if err = r.db.WithContext(ctx).Raw(sql, args...).Scan(&dtos).Error; err != nil {
		return nil, pgerr.Wrap(op, err)
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}
