package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	kafkain "dispatch/internal/adapters/in/kafka"
	rabbitin "dispatch/internal/adapters/in/rabbitmq"
	kafkaout "dispatch/internal/adapters/out/kafka"
	"dispatch/internal/adapters/out/logbus"
	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/adapters/out/metrics"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/orderwatch"
	"dispatch/internal/adapters/out/rabbitmq"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

const gracefulShutdownTimeout = 10 * time.Second

func main() {
	conf, err := cmd.LoadConfig(".env")
	panicIfErr("failed to load config", err)
	panicIfErr("invalid config", conf.Validate())

	logger := newLogger(conf)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err = run(ctx, conf, logger); err != nil {
		logger.Error("dispatch stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("dispatch stopped")
}

func run(ctx context.Context, conf cmd.Config, logger *slog.Logger) error {
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ExporterEndpoint: conf.Tracing.Endpoint,
		ServiceName:      conf.Tracing.ServiceName,
		Environment:      conf.Env,
		SampleRate:       conf.Tracing.SampleRate,
		Insecure:         conf.Tracing.Insecure,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	store, closeStore, err := openStore(ctx, g, conf, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := openPublisher(conf, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := cmd.NewCompositionRoot(conf, store, publisher, metrics.NewPrometheus(registry), logger)
	if err != nil {
		return fmt.Errorf("build composition root: %w", err)
	}

	router, err := httpin.NewRouter(ctx, app.CreateHTTPServer(), httpin.RouterConfig{
		Registry: registry,
		LogLevel: conf.SlogLevel(),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}
	// open feed streams end with the process context
	router.Server.BaseContext = func(net.Listener) context.Context { return ctx }

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	if conf.BusDriver == cmd.BusDriverKafka {
		consumer, err := app.CreateKafkaConsumer(
			kafkain.NewReader(kafkain.ReaderConfig{
				Brokers: conf.Kafka.Brokers,
				GroupID: conf.Kafka.GroupID,
				Topics:  conf.Kafka.Topics,
				MaxWait: conf.Kafka.ReaderMaxWait,
			}),
			kafkaout.NewWriter(conf.Kafka.Brokers, conf.Kafka.BatchTimeout),
		)
		if err != nil {
			return fmt.Errorf("build kafka consumer: %w", err)
		}
		defer closeQuietly(logger, "kafka consumer", consumer)
		g.Go(func() error { return consumer.Run(ctx) })
	}

	if conf.BusDriver == cmd.BusDriverRabbitMQ {
		ch, err := rabbitin.Dial(conf.RabbitMQ.URL)
		if err != nil {
			return err
		}
		consumer, err := app.CreateRabbitMQConsumer(ch)
		if err != nil {
			_ = ch.Close()
			return fmt.Errorf("build rabbitmq consumer: %w", err)
		}
		defer closeQuietly(logger, "rabbitmq consumer", consumer)
		g.Go(func() error { return consumer.Run(ctx) })
	}

	g.Go(func() error {
		addr := net.JoinHostPort(conf.HTTP.Host, conf.HTTP.Port)
		logger.Info("starting http server", "addr", addr)
		if err := router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})

	logger.Info("dispatch started", "store", conf.StoreDriver, "bus", conf.BusDriver)
	return g.Wait()
}

// openStore connects the configured store. For postgres the order watcher runs in g.
func openStore(ctx context.Context, g *errgroup.Group, conf cmd.Config, logger *slog.Logger) (cmd.Store, func(), error) {
	if conf.StoreDriver == cmd.StoreDriverMemory {
		store := memory.NewStore()
		logger.Warn("using in-memory store, state is lost on restart")
		return cmd.Store{UoWFactory: memory.NewUnitOfWorkFactory(store), Watcher: store}, func() {}, nil
	}

	dsn := conf.Postgres.DSN()
	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Warn),
	})
	if err != nil {
		return cmd.Store{}, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return cmd.Store{}, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(conf.Postgres.MaxOpenConns)
	sqlDB.SetMaxIdleConns(conf.Postgres.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(conf.Postgres.ConnMaxLifetime)

	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return cmd.Store{}, nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err = postgres.Migrate(db); err != nil {
		_ = sqlDB.Close()
		return cmd.Store{}, nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("postgres connected")

	uowFactory := postgres.NewGormUnitOfWorkFactory(db)
	watcher, err := orderwatch.NewWatcher(uowFactory, orderwatch.NewListener(dsn, logger), conf.RetryPolicy(), logger)
	if err != nil {
		_ = sqlDB.Close()
		return cmd.Store{}, nil, err
	}
	g.Go(func() error {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("order watcher: %w", err)
		}
		return nil
	})

	return cmd.Store{UoWFactory: uowFactory, Watcher: watcher}, func() {
		closeQuietly(logger, "postgres", sqlDB)
	}, nil
}

func openPublisher(conf cmd.Config, logger *slog.Logger) (ports.EventPublisher, func(), error) {
	switch conf.BusDriver {
	case cmd.BusDriverKafka:
		publisher := kafkaout.NewPublisher(kafkaout.NewWriter(conf.Kafka.Brokers, conf.Kafka.BatchTimeout))
		return publisher, func() { closeQuietly(logger, "kafka publisher", publisher) }, nil
	case cmd.BusDriverRabbitMQ:
		publisher, err := rabbitmq.Dial(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		return publisher, func() { closeQuietly(logger, "rabbitmq publisher", publisher) }, nil
	default:
		return logbus.NewPublisher(logger), func() {}, nil
	}
}

func newLogger(conf cmd.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: conf.SlogLevel()}
	switch conf.Env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
}

func closeQuietly(logger *slog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close "+name, "error", err)
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
