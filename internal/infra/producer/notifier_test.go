package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model/event"
	mock_producer "github.com/RoyceAzure/lab/roundsale/internal/infra/producer/mock"
	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testOrderCreated() *event.OrderCreated {
	order := &model.Order{
		ID:          "order-1",
		Code:        "LX1-ABCDEF",
		ShopID:      "shop-1",
		TotalAmount: decimal.NewFromInt(500),
		GrandTotal:  decimal.NewFromInt(550),
		Items: []model.OrderItem{
			{Name: "Mango", Quantity: 2, Price: decimal.NewFromInt(250)},
		},
	}
	return event.NewOrderCreated(&model.Shop{Name: "Fruit"}, order, &model.Customer{Name: "Alice", Phone: "0900"})
}

func TestKafkaNotifierWritesKeyedMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	writer := mock_producer.NewMockWriter(ctrl)

	var written kafka.Message
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, msgs ...kafka.Message) error {
			require.Len(t, msgs, 1)
			written = msgs[0]
			return nil
		}).Times(1)

	notifier := NewKafkaNotifier(writer, "orders", 2)
	require.NoError(t, notifier.NotifyOrderCreated(context.Background(), testOrderCreated()))

	require.Equal(t, "LX1-ABCDEF", string(written.Key))
	var decoded event.OrderCreated
	require.NoError(t, json.Unmarshal(written.Value, &decoded))
	require.Equal(t, "Fruit", decoded.ShopName)
	require.Equal(t, event.OrderCreatedEventName, decoded.EventType)
	require.Len(t, decoded.Items, 1)
	require.Equal(t, "event_type", written.Headers[0].Key)
}

func TestKafkaNotifierRetriesTemporaryErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	writer := mock_producer.NewMockWriter(ctrl)

	gomock.InOrder(
		writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(kafka.LeaderNotAvailable),
		writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("temporary failed")),
		writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil),
	)

	notifier := NewKafkaNotifier(writer, "orders", 2)
	require.NoError(t, notifier.NotifyOrderCreated(context.Background(), testOrderCreated()))
}

func TestKafkaNotifierStopsOnFatalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	writer := mock_producer.NewMockWriter(ctrl)

	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(kafka.TopicAuthorizationFailed).Times(1)

	notifier := NewKafkaNotifier(writer, "orders", 5)
	err := notifier.NotifyOrderCreated(context.Background(), testOrderCreated())
	require.Error(t, err)
	var kafkaErr *KafkaError
	require.ErrorAs(t, err, &kafkaErr)
	require.Equal(t, "orders", kafkaErr.Topic)
	require.ErrorIs(t, err, kafka.TopicAuthorizationFailed)
}

func TestKafkaNotifierClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	writer := mock_producer.NewMockWriter(ctrl)
	writer.EXPECT().Close().Return(nil).Times(1)

	notifier := NewKafkaNotifier(writer, "orders", 1)
	require.NoError(t, notifier.Close())
	require.NoError(t, notifier.Close())

	evt := event.NewOrderStatusChanged(&model.Order{Code: "X", Status: model.OrderStatusConfirmed}, model.OrderStatusPending)
	require.ErrorIs(t, notifier.NotifyOrderStatusChanged(context.Background(), evt), ErrProducerClosed)
}
