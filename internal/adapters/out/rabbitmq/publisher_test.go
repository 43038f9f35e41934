package rabbitmq_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"dispatch/internal/adapters/message"
	"dispatch/internal/adapters/out/rabbitmq"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func TestNewPublisher(t *testing.T) {
	t.Run("declares a durable topic exchange", func(t *testing.T) {
		ch := new(MockChannel)
		ch.On("ExchangeDeclare", "dispatch", "topic", true, false, false, false, amqp.Table(nil)).Return(nil).Once()

		p, err := rabbitmq.NewPublisher(ch, "dispatch")
		require.NoError(t, err)
		assert.NotNil(t, p)
		ch.AssertExpectations(t)
	})

	t.Run("declare failure", func(t *testing.T) {
		ch := new(MockChannel)
		ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
			mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access refused")).Once()

		_, err := rabbitmq.NewPublisher(ch, "dispatch")
		require.Error(t, err)
	})

	t.Run("missing arguments", func(t *testing.T) {
		_, err := rabbitmq.NewPublisher(nil, "dispatch")
		require.Error(t, err)
		_, err = rabbitmq.NewPublisher(new(MockChannel), "")
		require.Error(t, err)
	})
}

func TestPublisher_Publish(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(nil)
	p, err := rabbitmq.NewPublisher(ch, "dispatch")
	require.NoError(t, err)

	id := kernel.NewUUID()
	phone := kernel.MustPhoneNumber("+998901234567")

	var published []amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, "dispatch", message.TopicOrdersNew, false, false, mock.Anything).
		Run(func(args mock.Arguments) { published = append(published, args.Get(5).(amqp.Publishing)) }).
		Return(nil).Once()
	ch.On("PublishWithContext", mock.Anything, "dispatch", message.TopicCourierAlerts, false, false, mock.Anything).
		Run(func(args mock.Arguments) { published = append(published, args.Get(5).(amqp.Publishing)) }).
		Return(nil).Once()

	require.NoError(t, p.PublishNewOrder(t.Context(), ports.NewOrderSignal{OrderID: id, Status: order.SearchCourier}))
	require.NoError(t, p.PublishCourierAlert(t.Context(), ports.CourierAlert{CourierPhone: phone, OrderID: id}))

	require.Len(t, published, 2)
	assert.Equal(t, "application/json", published[0].ContentType)
	assert.Equal(t, amqp.Persistent, published[0].DeliveryMode)
	assert.Equal(t, id.String(), published[0].MessageId)

	var alert message.CourierAlert
	require.NoError(t, json.Unmarshal(published[1].Body, &alert))
	assert.Equal(t, phone.String(), alert.CourierPhone)
	assert.Equal(t, phone.String(), published[1].MessageId)
	ch.AssertExpectations(t)
}
