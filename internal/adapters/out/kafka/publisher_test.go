package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"dispatch/internal/adapters/message"
	kafkapub "dispatch/internal/adapters/out/kafka"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessageWriter struct {
	mock.Mock
}

func (m *MockMessageWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockMessageWriter) Close() error {
	return m.Called().Error(0)
}

func TestPublisher_PublishNewOrder(t *testing.T) {
	writer := new(MockMessageWriter)
	publisher := kafkapub.NewPublisher(writer)

	id := kernel.NewUUID()
	announced, err := kernel.MoneyFromInt(4000)
	require.NoError(t, err)

	var sent []kafka.Message
	writer.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]kafka.Message) }).
		Return(nil).Once()

	err = publisher.PublishNewOrder(t.Context(), ports.NewOrderSignal{
		OrderID:                id,
		Status:                 order.SearchCourier,
		AnnouncedDeliveryPrice: announced,
	})
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, message.TopicOrdersNew, sent[0].Topic)
	assert.Equal(t, id.String(), string(sent[0].Key))

	var payload message.NewOrder
	require.NoError(t, json.Unmarshal(sent[0].Value, &payload))
	assert.Equal(t, id.String(), payload.OrderID)
	assert.Equal(t, "search_courier", payload.Status)
	assert.Equal(t, "4000", payload.AnnouncedDeliveryPrice.String())
	writer.AssertExpectations(t)
}

func TestPublisher_PublishCourierAlert(t *testing.T) {
	writer := new(MockMessageWriter)
	publisher := kafkapub.NewPublisher(writer)
	phone := kernel.MustPhoneNumber("+998901234567")

	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 &&
			msgs[0].Topic == message.TopicCourierAlerts &&
			string(msgs[0].Key) == phone.String()
	})).Return(nil).Once()

	err := publisher.PublishCourierAlert(t.Context(), ports.CourierAlert{
		CourierPhone: phone,
		OrderID:      kernel.NewUUID(),
		OnRoute:      true,
	})
	require.NoError(t, err)
	writer.AssertExpectations(t)
}

func TestPublisher_WriteFailure(t *testing.T) {
	writer := new(MockMessageWriter)
	publisher := kafkapub.NewPublisher(writer)
	brokerErr := errors.New("leader not available")

	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(brokerErr).Once()
	writer.On("Close").Return(nil).Once()

	err := publisher.PublishNewOrder(t.Context(), ports.NewOrderSignal{OrderID: kernel.NewUUID(), Status: order.SearchCourier})
	require.ErrorIs(t, err, brokerErr)
	require.NoError(t, publisher.Close())
	writer.AssertExpectations(t)
}
