package cmd

import (
	"log/slog"

	httpin "dispatch/internal/adapters/in/http"
	kafkain "dispatch/internal/adapters/in/kafka"
	rabbitin "dispatch/internal/adapters/in/rabbitmq"
	"dispatch/internal/adapters/out/metrics"
	"dispatch/internal/core/application/feed"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"
)

// Store is the persistence selected by Config.StoreDriver.
type Store struct {
	UoWFactory ports.UnitOfWorkFactory
	Watcher    ports.OrderWatcher
}

type CompositionRoot struct {
	cfg       Config
	store     Store
	publisher ports.EventPublisher
	metrics   *metrics.Prometheus
	filter    services.RouteFilter
	clock     ports.Clock
	logger    *slog.Logger
}

func NewCompositionRoot(
	cfg Config,
	store Store,
	publisher ports.EventPublisher,
	m *metrics.Prometheus,
	logger *slog.Logger,
) (CompositionRoot, error) {
	if store.UoWFactory == nil {
		return CompositionRoot{}, errs.NewValueIsRequiredError("store.UoWFactory")
	}
	if store.Watcher == nil {
		return CompositionRoot{}, errs.NewValueIsRequiredError("store.Watcher")
	}
	if publisher == nil {
		return CompositionRoot{}, errs.NewValueIsRequiredError("publisher")
	}
	if m == nil {
		return CompositionRoot{}, errs.NewValueIsRequiredError("metrics")
	}
	if logger == nil {
		logger = slog.Default()
	}

	filter, err := services.NewRouteFilterWithDistance(cfg.Dispatch.RouteDistanceKm)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		metrics:   m,
		filter:    filter,
		clock:     clock.System{},
		logger:    logger,
	}, nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateNotifyCouriersCommandHandler() commands.NotifyCouriersCommandHandler {
	return commands.NewNotifyCouriersCommandHandler(
		c.uowFactory(), c.publisher, services.NewOrderDispatcher(c.filter), c.metrics, c.logger)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	settings := commands.ClaimSettings{
		Timeout:        c.cfg.Dispatch.ClaimTimeout,
		LocationMaxAge: c.cfg.Dispatch.LocationMaxAge,
		Retry:          c.cfg.RetryPolicy(),
	}
	return commands.NewClaimOrderCommandHandler(c.uowFactory(), c.clock, settings, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateAdvanceToDeliveringCommandHandler() commands.AdvanceToDeliveringCommandHandler {
	return commands.NewAdvanceToDeliveringCommandHandler(
		c.orderUoWFactory(), c.clock, c.transitionSettings(), c.metrics, c.logger)
}

func (c *CompositionRoot) CreateMarkDeliveredCommandHandler() commands.MarkDeliveredCommandHandler {
	return commands.NewMarkDeliveredCommandHandler(
		c.orderUoWFactory(), c.clock, c.transitionSettings(), c.metrics, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(
		c.orderUoWFactory(), c.publisher, c.clock, c.transitionSettings(), c.metrics, c.logger)
}

func (c *CompositionRoot) CreateUpdateCourierLocationCommandHandler() commands.UpdateCourierLocationCommandHandler {
	return commands.NewUpdateCourierLocationCommandHandler(c.courierUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateMarkStaleCouriersOfflineCommandHandler() commands.MarkStaleCouriersOfflineCommandHandler {
	return commands.NewMarkStaleCouriersOfflineCommandHandler(c.courierUoWFactory(), c.clock, c.metrics)
}

func (c *CompositionRoot) CreateGetVisibleOrdersQueryHandler() queries.GetVisibleOrdersQueryHandler {
	return queries.NewGetVisibleOrdersQueryHandler(c.repositoriesFactory(), c.filter, c.projectionOptions())
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.repositoriesFactory(), c.clock, c.cfg.Dispatch.CancellationWindow)
}

func (c *CompositionRoot) CreateGetOrderDetailsQueryHandler() queries.GetOrderDetailsQueryHandler {
	return queries.NewGetOrderDetailsQueryHandler(c.repositoriesFactory(), c.clock, c.cfg.Dispatch.CancellationWindow)
}

func (c *CompositionRoot) CreateGetOnlineCouriersQueryHandler() queries.GetOnlineCouriersQueryHandler {
	return queries.NewGetOnlineCouriersQueryHandler(c.repositoriesFactory())
}

func (c *CompositionRoot) CreateFeedProjector() *feed.Projector {
	return feed.NewProjector(c.store.Watcher, c.filter, c.projectionOptions(), c.clock, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	handlers := httpin.Handlers{
		CreateOrder:       c.CreateCreateOrderCommandHandler(),
		ClaimOrder:        c.CreateClaimOrderCommandHandler(),
		StartDelivering:   c.CreateAdvanceToDeliveringCommandHandler(),
		MarkDelivered:     c.CreateMarkDeliveredCommandHandler(),
		CancelOrder:       c.CreateCancelOrderCommandHandler(),
		UpdateLocation:    c.CreateUpdateCourierLocationCommandHandler(),
		GetVisibleOrders:  c.CreateGetVisibleOrdersQueryHandler(),
		GetActiveOrders:   c.CreateGetActiveOrdersQueryHandler(),
		GetOrderDetails:   c.CreateGetOrderDetailsQueryHandler(),
		GetOnlineCouriers: c.CreateGetOnlineCouriersQueryHandler(),
	}
	return httpin.NewServer(handlers, c.CreateFeedProjector(), c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateMarkStaleCouriersOfflineCommandHandler(), jobs.PresenceSettings{
		Schedule: c.cfg.Dispatch.PresenceSchedule,
		MaxAge:   c.cfg.Dispatch.LocationMaxAge,
	}, c.logger)
}

func (c *CompositionRoot) CreateKafkaConsumer(reader kafkain.MessageReader, dlq kafkain.MessageWriter) (*kafkain.Consumer, error) {
	return kafkain.NewConsumer(
		reader,
		dlq,
		c.CreateCreateOrderCommandHandler(),
		c.CreateNotifyCouriersCommandHandler(),
		c.cfg.RetryPolicy(),
		c.metrics,
		c.logger,
	)
}

func (c *CompositionRoot) CreateRabbitMQConsumer(ch rabbitin.Channel) (*rabbitin.Consumer, error) {
	return rabbitin.NewConsumer(
		ch,
		rabbitin.Config{
			Exchange: c.cfg.RabbitMQ.Exchange,
			Queue:    c.cfg.RabbitMQ.Queue,
			Prefetch: c.cfg.RabbitMQ.Prefetch,
		},
		c.CreateNotifyCouriersCommandHandler(),
		c.cfg.RetryPolicy(),
		c.metrics,
		c.logger,
	)
}

func (c *CompositionRoot) transitionSettings() commands.TransitionSettings {
	return commands.TransitionSettings{
		Timeout:            c.cfg.Dispatch.TransitionTimeout,
		CancellationWindow: c.cfg.Dispatch.CancellationWindow,
	}
}

func (c *CompositionRoot) projectionOptions() services.ProjectionOptions {
	return services.ProjectionOptions{ShowAllWhenNoneOnRoute: c.cfg.Dispatch.ShowAllWhenNoneOnRoute}
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.store.UoWFactory.Create()
	})
}

func (c *CompositionRoot) courierUoWFactory() commands.CourierUoWFactory {
	return FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.store.UoWFactory.Create()
	})
}

func (c *CompositionRoot) uowFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.store.UoWFactory.Create()
	})
}

func (c *CompositionRoot) repositoriesFactory() queries.RepositoriesFactory {
	return FuncRepositoriesFactory(func() queries.Repositories {
		return c.store.UoWFactory.Create()
	})
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncRepositoriesFactory func() queries.Repositories

func (f FuncRepositoriesFactory) Create() queries.Repositories {
	return f()
}
