// Package rabbitmq consumes new order signals from the dispatch topic exchange and
// turns them into NotifyCouriers commands.
//
// Deliveries are acknowledged manually. A signal that cannot be decoded, or whose
// handling still fails after retries, is rejected without requeue. A delivery
// interrupted by shutdown is requeued.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/adapters/message"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/pkg/retry"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consume outcomes reported to Metrics.
const (
	OutcomeProcessed = "processed"
	OutcomeRejected  = "rejected"
	OutcomeRequeued  = "requeued"
)

// ErrDeliveriesClosed is returned by Run when the broker closes the delivery channel.
var ErrDeliveriesClosed = errors.New("rabbitmq delivery channel closed")

// Channel is the subset of *amqp.Channel the consumer uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

type CourierNotifier interface {
	Handle(ctx context.Context, cmd commands.NotifyCouriersCommand) (int, error)
}

type Metrics interface {
	IncConsumed(topic, outcome string)
}

type Config struct {
	Exchange string
	Queue    string
	Prefetch int
}

type Consumer struct {
	channel  Channel
	cfg      Config
	notifier CourierNotifier
	policy   retry.Policy
	metrics  Metrics
	logger   *slog.Logger
}

type connChannel struct {
	*amqp.Channel
	conn *amqp.Connection
}

func (c connChannel) Close() error {
	return errors.Join(c.Channel.Close(), c.conn.Close())
}

// Dial opens a dedicated connection for the consumer. Closing the returned
// channel closes the connection too.
func Dial(url string) (Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return connChannel{Channel: ch, conn: conn}, nil
}

func NewConsumer(
	ch Channel,
	cfg Config,
	notifier CourierNotifier,
	policy retry.Policy,
	metrics Metrics,
	logger *slog.Logger,
) (*Consumer, error) {
	if ch == nil {
		return nil, errors.New("channel is required")
	}
	if cfg.Exchange == "" {
		return nil, errors.New("exchange is required")
	}
	if cfg.Queue == "" {
		return nil, errors.New("queue is required")
	}
	if notifier == nil {
		return nil, errors.New("courier notifier is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		channel:  ch,
		cfg:      cfg,
		notifier: notifier,
		policy:   policy,
		metrics:  metrics,
		logger:   logger.With("component", "rabbitmq_consumer"),
	}, nil
}

// Run declares the topology and handles deliveries until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.subscribe()
	if err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "rabbitmq consumer started", "queue", c.cfg.Queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "rabbitmq consumer stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveriesClosed
			}
			outcome := c.handle(ctx, d)
			if c.metrics != nil {
				c.metrics.IncConsumed(message.TopicOrdersNew, outcome)
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}

func (c *Consumer) subscribe() (<-chan amqp.Delivery, error) {
	err := c.channel.ExchangeDeclare(
		c.cfg.Exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", c.cfg.Exchange, err)
	}

	q, err := c.channel.QueueDeclare(
		c.cfg.Queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}

	if err = c.channel.QueueBind(q.Name, message.TopicOrdersNew, c.cfg.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue %s: %w", q.Name, err)
	}

	if c.cfg.Prefetch > 0 {
		if err = c.channel.Qos(c.cfg.Prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("set prefetch: %w", err)
		}
	}

	deliveries, err := c.channel.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", q.Name, err)
	}
	return deliveries, nil
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) string {
	err := c.notify(ctx, d.Body)
	switch {
	case err == nil:
		c.settle(ctx, d.Ack(false))
		return OutcomeProcessed
	case ctx.Err() != nil:
		c.settle(ctx, d.Nack(false, true))
		return OutcomeRequeued
	default:
		c.logger.ErrorContext(ctx, "failed to handle signal", "message_id", d.MessageId, "error", err)
		c.settle(ctx, d.Reject(false))
		return OutcomeRejected
	}
}

func (c *Consumer) notify(ctx context.Context, body []byte) error {
	var payload message.NewOrder
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal signal: %w", err)
	}

	cmd, err := payload.ToCommand()
	if err != nil {
		return fmt.Errorf("invalid signal: %w", err)
	}

	return c.policy.Do(ctx, func(ctx context.Context) error {
		sent, err := c.notifier.Handle(ctx, cmd)
		if err == nil {
			c.logger.DebugContext(ctx, "couriers alerted", "order_id", payload.OrderID, "alerts", sent)
		}
		return err
	}, func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "signal handling failed, retrying", "error", err, "wait", wait)
	})
}

func (c *Consumer) settle(ctx context.Context, err error) {
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to settle delivery", "error", err)
	}
}
