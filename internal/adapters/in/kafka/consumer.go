// Package kafka consumes order events from Kafka and feeds them to the dispatch commands.
//
// orders.created messages become CreateOrder commands and orders.new messages become
// NotifyCouriers commands. A message that cannot be decoded or validated, or whose
// handling still fails after retries, is copied to "<topic>-dlq" before its offset is
// committed.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"dispatch/internal/adapters/message"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/retry"

	"github.com/segmentio/kafka-go"
)

// Consume outcomes reported to Metrics.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeDLQ       = "dlq"
)

// ErrUnknownTopic is returned for messages from a topic the consumer does not handle.
var ErrUnknownTopic = errors.New("unknown topic")

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
}

type CourierNotifier interface {
	Handle(ctx context.Context, cmd commands.NotifyCouriersCommand) (int, error)
}

type Metrics interface {
	IncConsumed(topic, outcome string)
}

// ReaderConfig configures the consumer group reader.
type ReaderConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
	MaxWait time.Duration
}

func NewReader(cfg ReaderConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MaxWait:     cfg.MaxWait,
	})
}

type Consumer struct {
	reader   MessageReader
	dlq      MessageWriter
	creator  OrderCreator
	notifier CourierNotifier
	policy   retry.Policy
	metrics  Metrics
	logger   *slog.Logger
}

func NewConsumer(
	reader MessageReader,
	dlq MessageWriter,
	creator OrderCreator,
	notifier CourierNotifier,
	policy retry.Policy,
	metrics Metrics,
	logger *slog.Logger,
) (*Consumer, error) {
	if reader == nil {
		return nil, errors.New("reader is required")
	}
	if dlq == nil {
		return nil, errors.New("dlq writer is required")
	}
	if creator == nil {
		return nil, errors.New("order creator is required")
	}
	if notifier == nil {
		return nil, errors.New("courier notifier is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		reader:   reader,
		dlq:      dlq,
		creator:  creator,
		notifier: notifier,
		policy:   policy,
		metrics:  metrics,
		logger:   logger.With("component", "kafka_consumer"),
	}, nil
}

// Run fetches messages until ctx is done or the reader is closed.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "kafka consumer started")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				c.logger.InfoContext(ctx, "kafka consumer stopped")
				return nil
			}
			c.logger.ErrorContext(ctx, "failed to fetch message", "error", err)
			continue
		}

		outcome, err := c.handle(ctx, m)
		if err != nil {
			if ctx.Err() != nil {
				// leave the offset uncommitted; the message is redelivered after restart
				return nil
			}
			outcome = c.deadLetter(ctx, m, err)
		}

		if c.metrics != nil {
			c.metrics.IncConsumed(m.Topic, outcome)
		}

		if err = c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.ErrorContext(ctx, "failed to commit message", "topic", m.Topic, "offset", m.Offset, "error", err)
		}
	}
}

func (c *Consumer) Close() error {
	return errors.Join(c.reader.Close(), c.dlq.Close())
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) (string, error) {
	switch m.Topic {
	case message.TopicOrdersCreated:
		return c.handleOrderCreated(ctx, m)
	case message.TopicOrdersNew:
		return OutcomeProcessed, c.handleNewOrder(ctx, m)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTopic, m.Topic)
	}
}

func (c *Consumer) handleOrderCreated(ctx context.Context, m kafka.Message) (string, error) {
	var payload message.OrderCreated
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal order: %w", err)
	}

	cmd, err := payload.ToCommand()
	if err != nil {
		return "", fmt.Errorf("invalid order data: %w", err)
	}

	err = c.withRetry(ctx, func(ctx context.Context) error {
		_, err := c.creator.Handle(ctx, cmd)
		return err
	})
	if errors.Is(err, commands.ErrOrderAlreadyExists) {
		c.logger.InfoContext(ctx, "order already ingested", "order_id", payload.ID)
		return OutcomeDuplicate, nil
	}
	return OutcomeProcessed, err
}

func (c *Consumer) handleNewOrder(ctx context.Context, m kafka.Message) error {
	var payload message.NewOrder
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal signal: %w", err)
	}

	cmd, err := payload.ToCommand()
	if err != nil {
		return fmt.Errorf("invalid signal: %w", err)
	}

	return c.withRetry(ctx, func(ctx context.Context) error {
		sent, err := c.notifier.Handle(ctx, cmd)
		if err == nil {
			c.logger.DebugContext(ctx, "couriers alerted", "order_id", payload.OrderID, "alerts", sent)
		}
		return err
	})
}

func (c *Consumer) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	return c.policy.Do(ctx, op, func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "message handling failed, retrying", "error", err, "wait", wait)
	})
}

func (c *Consumer) deadLetter(ctx context.Context, m kafka.Message, cause error) string {
	c.logger.ErrorContext(ctx, "failed to handle message", "topic", m.Topic, "offset", m.Offset, "error", cause)

	dead := kafka.Message{
		Topic: m.Topic + "-dlq",
		Key:   m.Key,
		Value: m.Value,
		Headers: append(slices.Clone(m.Headers), kafka.Header{
			Key:   "error",
			Value: []byte(cause.Error()),
		}),
	}
	if err := c.dlq.WriteMessages(ctx, dead); err != nil {
		c.logger.ErrorContext(ctx, "failed to write message to DLQ", "topic", m.Topic, "error", err)
	}
	return OutcomeDLQ
}
