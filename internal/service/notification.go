package service

import (
	"context"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/infra/producer"
	"github.com/rs/zerolog"
)

// notificationDispatcher 交易 commit 後才送出，失敗只記 log
type notificationDispatcher struct {
	notifier producer.Notifier
	timeout  time.Duration
	logger   *zerolog.Logger
	wg       sync.WaitGroup
}

func newNotificationDispatcher(notifier producer.Notifier, timeout time.Duration, logger *zerolog.Logger) *notificationDispatcher {
	return &notificationDispatcher{notifier: notifier, timeout: timeout, logger: logger}
}

func (d *notificationDispatcher) dispatch(name, orderCode string, fn func(ctx context.Context, n producer.Notifier) error) {
	if d == nil || d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx, d.notifier); err != nil {
			d.logger.Warn().Err(err).Str("notification", name).Str("order_code", orderCode).Msg("notification failed")
		}
	}()
}

// Wait 關機時等待尚未送出的通知
func (d *notificationDispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
