package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/orderwatch"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/restaurant"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/retry"

	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var courierPhone = kernel.MustPhoneNumber("+998901234567")

// UnitOfWorkIntegrationTestSuite runs the GORM unit of work, its change notifications
// and the order watcher against a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	dsn       string
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)
	suite.dsn = dsn

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, couriers, restaurants").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "commit without begin")
	suite.Require().Error(uow.Rollback(ctx), "rollback without begin")

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "nested begin is a no-op")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsWrites() {
	ctx := context.Background()
	o := suite.createOrder()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_SpansRepositories() {
	ctx := context.Background()
	o := suite.createOrder()
	c, err := courier.NewCourier(courierPhone)
	suite.Require().NoError(err)
	suite.Require().NoError(c.UpdateLocation(suite.location(41.3, 69.2), time.Now()))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.CourierRepository().Upsert(ctx, c))

	_, err = suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound, "uncommitted order must be invisible")

	suite.Require().NoError(uow.Commit(ctx))

	reader := suite.factory.Create()
	_, err = reader.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	got, err := reader.CourierRepository().Get(ctx, courierPhone)
	suite.Require().NoError(err)
	suite.True(got.IsOnline())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestBeginReadOnly_ReadsOneSnapshot() {
	ctx := context.Background()
	o := suite.createOrder()
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, o))

	reader := suite.factory.Create()
	suite.Require().NoError(reader.BeginReadOnly(ctx))
	defer func() { _ = reader.Rollback(ctx) }()

	pending, err := reader.OrderRepository().FindPending(ctx)
	suite.Require().NoError(err)
	suite.Require().True(containsOrder(pending, o.ID()))

	claimed := o.Clone()
	suite.Require().NoError(claimed.Claim(courierPhone, time.Now()))
	suite.Require().NoError(suite.factory.Create().OrderRepository().UpdateIfStatus(ctx, claimed, order.SearchCourier))

	active, err := reader.OrderRepository().FindActiveByCourier(ctx, courierPhone)
	suite.Require().NoError(err)
	suite.Empty(active, "a claim committed after the snapshot must stay invisible")

	err = reader.OrderRepository().Add(ctx, suite.createOrder())
	suite.Require().Error(err, "read-only transaction rejects writes")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRestaurantRepository_RoundTrip() {
	ctx := context.Background()
	price, err := kernel.MoneyFromInt(26000)
	suite.Require().NoError(err)

	r, err := restaurant.NewRestaurant(kernel.NewUUID(), "Besh Qozon", suite.location(41.33, 69.28), []restaurant.MenuItem{
		{ID: "plov", Title: "Plov", Price: price, Img: "plov.png", Category: "main"},
	})
	suite.Require().NoError(err)

	repo := suite.factory.Create().RestaurantRepository()
	suite.Require().NoError(repo.Save(ctx, r))
	suite.Require().NoError(repo.Save(ctx, r), "save replaces an existing restaurant")

	got, err := repo.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal("Besh Qozon", got.Name())
	item, ok := got.FindMenuItem("plov")
	suite.Require().True(ok)
	suite.True(price.IsEqual(item.Price))
	suite.Equal("main", item.Category)

	_, err = repo.Get(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_NotifiesOrderChanges() {
	ctx := context.Background()
	connected := make(chan struct{})
	var once sync.Once
	listener := pq.NewListener(suite.dsn, 10*time.Millisecond, time.Second, func(ev pq.ListenerEventType, _ error) {
		if ev == pq.ListenerEventConnected {
			once.Do(func() { close(connected) })
		}
	})
	defer listener.Close()
	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		suite.FailNow("listener did not connect")
	}
	suite.Require().NoError(listener.Listen(postgres_adapter.OrdersChangedChannel))

	o := suite.createOrder()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	select {
	case n := <-listener.Notify:
		suite.Failf("notification before commit", "%v", n)
	case <-time.After(200 * time.Millisecond):
	}

	suite.Require().NoError(uow.Commit(ctx))
	suite.Equal(o.ID().String(), suite.nextNotification(listener))

	// writes outside a transaction notify immediately
	claimed := o.Clone()
	suite.Require().NoError(claimed.Claim(courierPhone, time.Now()))
	suite.Require().NoError(suite.factory.Create().OrderRepository().UpdateIfStatus(ctx, claimed, order.SearchCourier))
	suite.Equal(o.ID().String(), suite.nextNotification(listener))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOrderWatcher_FollowsCommits() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := orderwatch.NewWatcher(suite.factory, orderwatch.NewListener(suite.dsn, nil), retry.NoRetry(), nil)
	suite.Require().NoError(err)
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	pending, err := watcher.WatchPending(ctx)
	suite.Require().NoError(err)
	active, err := watcher.WatchActive(ctx, courierPhone)
	suite.Require().NoError(err)

	suite.Empty(suite.nextSet(pending).Orders)
	suite.Empty(suite.nextSet(active).Orders)

	// the listener may still be connecting; keep adding until the watch reacts
	o := suite.createOrder()
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, o))
	suite.Require().Eventually(func() bool {
		select {
		case set := <-pending.Events():
			return len(set.Orders) == 1
		default:
			suite.Require().NoError(suite.db.Exec("SELECT pg_notify(?, ?)", postgres_adapter.OrdersChangedChannel, "").Error)
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	current, err := uow.OrderRepository().GetForUpdate(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(current.Claim(courierPhone, time.Now()))
	suite.Require().NoError(uow.OrderRepository().UpdateIfStatus(ctx, current, order.SearchCourier))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Empty(suite.nextSet(pending).Orders)
	activeSet := suite.nextSet(active)
	suite.Require().Len(activeSet.Orders, 1)
	suite.Equal(order.Courier, activeSet.Orders[0].Status())

	cancel()
	suite.Require().NoError(<-done)
}

func (suite *UnitOfWorkIntegrationTestSuite) nextNotification(listener *pq.Listener) string {
	select {
	case n := <-listener.Notify:
		suite.Require().NotNil(n)
		return n.Extra
	case <-time.After(5 * time.Second):
		suite.FailNow("no notification received")
		return ""
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) nextSet(w ports.OrderWatch) ports.OrderSet {
	select {
	case set, ok := <-w.Events():
		suite.Require().True(ok, "watch closed: %v", w.Err())
		return set
	case <-time.After(5 * time.Second):
		suite.FailNow("no order set delivered")
		return ports.OrderSet{}
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) createOrder() *order.Order {
	line, err := order.NewProductLine("plov", 1)
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), suite.location(41.31, 69.27), order.Prices{},
		[]order.ProductLine{line})
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) location(lat, long float64) kernel.Location {
	loc, err := kernel.NewLocation(lat, long)
	suite.Require().NoError(err)
	return loc
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}

func containsOrder(orders []*order.Order, id kernel.UUID) bool {
	for _, o := range orders {
		if o.ID().IsEqual(id) {
			return true
		}
	}
	return false
}
