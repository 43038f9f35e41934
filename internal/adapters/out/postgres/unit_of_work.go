// Package postgres provides the GORM-based Unit of Work and schema for the dispatch store.
//
// A unit of work wraps one database transaction shared by the order, courier and
// restaurant repositories. Every order written through it is announced on the
// orders_changed notification channel so live order watches can refresh:
//
//   - inside a transaction the notifications are queued with pg_notify right before
//     COMMIT, so Postgres delivers them only if the transaction commits
//   - outside a transaction the write is already durable and the notification is sent at once
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	current, err := uow.OrderRepository().GetForUpdate(ctx, id)
//	...
//	if err := uow.OrderRepository().UpdateIfStatus(ctx, claimed, order.SearchCourier); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Each UnitOfWork instance serves a single goroutine. Concurrent operations create
// their own instance from the factory.
package postgres

import (
	"context"
	"database/sql"

	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/adapters/out/postgres/restaurantrepo"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"gorm.io/gorm"
)

// OrdersChangedChannel is the LISTEN/NOTIFY channel carrying ids of changed orders.
const OrdersChangedChannel = "orders_changed"

// trackedAggregate represents an aggregate modified during the unit of work.
type trackedAggregate struct {
	Key       string
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork with its own transaction state and tracked aggregates.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates a database transaction and tracks the aggregates
// written during it.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin starts a transaction. Calling Begin again while a transaction is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	return uow.begin(ctx)
}

// BeginReadOnly starts a READ ONLY transaction at REPEATABLE READ, so all its
// statements run against one snapshot.
func (uow *GormUnitOfWork) BeginReadOnly(ctx context.Context) error {
	return uow.begin(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

func (uow *GormUnitOfWork) begin(ctx context.Context, opts ...*sql.TxOptions) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin(opts...)
	if tx.Error != nil {
		return pgerr.Wrap("begin", tx.Error)
	}

	uow.tx = tx
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Commit queues change notifications for every tracked order and commits.
// The transaction is closed afterwards whatever the outcome.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}
	tx := uow.tx
	uow.tx = nil

	for _, key := range uow.changedOrderKeys() {
		if err := notifyOrderChanged(tx, key); err != nil {
			_ = tx.Rollback()
			return pgerr.Wrap("notify", err)
		}
	}

	return pgerr.Wrap("commit", tx.Commit().Error)
}

// Rollback discards the transaction together with its pending notifications.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// CourierRepository returns a courier repository bound to the open transaction,
// or to the pool when no transaction is open.
func (uow *GormUnitOfWork) CourierRepository() ports.CourierRepository {
	return courierrepo.NewGormCourierRepository(uow.conn(), uow)
}

// OrderRepository returns an order repository bound to the open transaction,
// or to the pool when no transaction is open.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) RestaurantRepository() ports.RestaurantRepository {
	return restaurantrepo.NewGormRestaurantRepository(uow.conn())
}

// TrackAggregate registers an aggregate written by a repository. Repositories call it
// after every successful write. Orders written outside a transaction are announced
// immediately.
func (uow *GormUnitOfWork) TrackAggregate(ctx context.Context, key string, aggregate any) error {
	if uow.tx != nil {
		uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
			Key:       key,
			Aggregate: aggregate,
		})
		return nil
	}

	if _, ok := aggregate.(*order.Order); !ok {
		return nil
	}
	return pgerr.Wrap("notify", notifyOrderChanged(uow.db.WithContext(ctx), key))
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// changedOrderKeys returns the distinct ids of tracked orders in write order.
func (uow *GormUnitOfWork) changedOrderKeys() []string {
	seen := make(map[string]struct{}, len(uow.trackedAggregates))
	keys := make([]string, 0, len(uow.trackedAggregates))
	for _, tracked := range uow.trackedAggregates {
		if _, ok := tracked.Aggregate.(*order.Order); !ok {
			continue
		}
		if _, dup := seen[tracked.Key]; dup {
			continue
		}
		seen[tracked.Key] = struct{}{}
		keys = append(keys, tracked.Key)
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return keys
}

func notifyOrderChanged(db *gorm.DB, key string) error {
	return db.Exec("SELECT pg_notify(?, ?)", OrdersChangedChannel, key).Error
}
