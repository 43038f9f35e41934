// Package kafka publishes dispatch signals to Kafka with segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/adapters/message"
	"dispatch/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter returns a writer without a default topic; every message names its own.
func NewWriter(brokers []string, batchTimeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// Publisher implements ports.EventPublisher. New order signals are keyed by order id
// and alerts by courier phone, so each key keeps its order within a partition.
type Publisher struct {
	writer MessageWriter
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

func (p *Publisher) PublishNewOrder(ctx context.Context, signal ports.NewOrderSignal) error {
	return p.write(ctx, message.TopicOrdersNew, signal.OrderID.String(), message.NewOrderFromSignal(signal))
}

func (p *Publisher) PublishCourierAlert(ctx context.Context, alert ports.CourierAlert) error {
	return p.write(ctx, message.TopicCourierAlerts, alert.CourierPhone.String(), message.CourierAlertFrom(alert))
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) write(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", topic, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write %s message: %w", topic, err)
	}
	return nil
}
