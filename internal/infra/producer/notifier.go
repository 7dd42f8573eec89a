package producer

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model/event"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Notifier 訂單通知，投遞失敗只回傳錯誤，由呼叫端決定是否記錄
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, evt *event.OrderCreated) error
	NotifyOrderStatusChanged(ctx context.Context, evt *event.OrderStatusChanged) error
	Close() error
}

// KafkaNotifier key 為訂單代碼，同一訂單的事件落在同一個 partition
type KafkaNotifier struct {
	writer        Writer
	topic         string
	retryAttempts int
	closed        atomic.Bool
}

func NewKafkaNotifier(writer Writer, topic string, retryAttempts int) *KafkaNotifier {
	return &KafkaNotifier{writer: writer, topic: topic, retryAttempts: retryAttempts}
}

func (n *KafkaNotifier) NotifyOrderCreated(ctx context.Context, evt *event.OrderCreated) error {
	return n.produce(ctx, evt)
}

func (n *KafkaNotifier) NotifyOrderStatusChanged(ctx context.Context, evt *event.OrderStatusChanged) error {
	return n.produce(ctx, evt)
}

func (n *KafkaNotifier) produce(ctx context.Context, evt event.Event) error {
	if n.closed.Load() {
		return ErrProducerClosed
	}

	msg, err := convertToMessage(evt)
	if err != nil {
		return NewKafkaError("Produce", n.topic, err)
	}

	for attempt := 0; attempt <= n.retryAttempts; attempt++ {
		if ctx.Err() != nil {
			return NewKafkaError("Produce", n.topic, ctx.Err())
		}
		err = n.writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}
		if !IsTemporaryError(err) {
			break
		}
	}
	return NewKafkaError("Produce", n.topic, err)
}

func (n *KafkaNotifier) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	return n.writer.Close()
}

func convertToMessage(evt event.Event) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(evt.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type())},
			{Key: "event_id", Value: []byte(evt.GetID())},
		},
	}, nil
}

// LogNotifier 沒有設定 broker 時使用，只寫 log
type LogNotifier struct {
	logger *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyOrderCreated(ctx context.Context, evt *event.OrderCreated) error {
	n.logger.Info().
		Str("shop_id", evt.ShopID).
		Str("order_code", evt.OrderCode).
		Str("customer", evt.CustomerName).
		Str("grand_total", evt.GrandTotal.String()).
		Int("items", len(evt.Items)).
		Msg("order created")
	return nil
}

func (n *LogNotifier) NotifyOrderStatusChanged(ctx context.Context, evt *event.OrderStatusChanged) error {
	n.logger.Info().
		Str("order_code", evt.OrderCode).
		Str("from", string(evt.FromStatus)).
		Str("to", string(evt.ToStatus)).
		Msg("order status changed")
	return nil
}

func (n *LogNotifier) Close() error {
	return nil
}

var (
	_ Notifier = (*KafkaNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)
