package service

import (
	"context"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model/event"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/producer"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
	"github.com/rs/zerolog"
)

// TransitionPayload 狀態異動附帶資料
type TransitionPayload struct {
	TrackingCode   string
	PaymentSlipURL string
}

type transitionRule struct {
	requiresTrackingCode bool
	requiresPaymentSlip  bool
	// customerOnly 只能由顧客上傳付款證明觸發
	customerOnly bool
}

// orderTransitions 不在表中的 (from, to) 一律拒絕
//
//	PENDING      -> PAID_WAITING (僅限顧客上傳付款證明)
//	PENDING      -> CONFIRMED | CANCELLED
//	PAID_WAITING -> CONFIRMED | CANCELLED
//	CONFIRMED    -> SHIPPED (需物流單號) | CANCELLED
//	SHIPPED      -> COMPLETED
var orderTransitions = map[model.OrderStatus]map[model.OrderStatus]transitionRule{
	model.OrderStatusPending: {
		model.OrderStatusPaidWaiting: {requiresPaymentSlip: true, customerOnly: true},
		model.OrderStatusConfirmed:   {},
		model.OrderStatusCancelled:   {},
	},
	model.OrderStatusPaidWaiting: {
		model.OrderStatusConfirmed: {},
		model.OrderStatusCancelled: {},
	},
	model.OrderStatusConfirmed: {
		model.OrderStatusShipped:   {requiresTrackingCode: true},
		model.OrderStatusCancelled: {},
	},
	model.OrderStatusShipped: {
		model.OrderStatusCompleted: {},
	},
}

// CanTransition 只看狀態表，不檢查附帶資料與觸發者
func CanTransition(from, to model.OrderStatus) bool {
	_, ok := orderTransitions[from][to]
	return ok
}

// checkTransition 回傳要一併寫入的欄位
func checkTransition(from, to model.OrderStatus, byCustomer bool, payload TransitionPayload) (map[string]any, error) {
	rule, ok := orderTransitions[from][to]
	if !ok {
		return nil, &TransitionError{From: from, To: to}
	}
	if rule.customerOnly != byCustomer {
		return nil, &TransitionError{From: from, To: to, Reason: "not allowed for this trigger"}
	}

	fields := map[string]any{}
	if rule.requiresTrackingCode {
		code := strings.TrimSpace(payload.TrackingCode)
		if code == "" {
			return nil, &TransitionError{From: from, To: to, Reason: "tracking code is required"}
		}
		fields["tracking_code"] = code
	}
	if rule.requiresPaymentSlip {
		slip := strings.TrimSpace(payload.PaymentSlipURL)
		if slip == "" {
			return nil, &TransitionError{From: from, To: to, Reason: "payment slip is required"}
		}
		fields["payment_slip_url"] = slip
	}
	return fields, nil
}

type IOrderStateMachine interface {
	Transition(ctx context.Context, orderID string, target model.OrderStatus, payload TransitionPayload) (*model.Order, error)
	AttachPaymentSlip(ctx context.Context, orderCode, slipURL string) (*model.Order, error)
}

// OrderStateMachine 以 UPDATE ... WHERE status = <from> 做樂觀鎖
// 同一訂單同時有兩個異動時，後寫入者會收到 InvalidTransition
type OrderStateMachine struct {
	store     db.UnifiedDB
	inventory IInventoryService
	notify    *notificationDispatcher
	logger    *zerolog.Logger
}

func NewOrderStateMachine(store db.UnifiedDB, inventory IInventoryService, notifier producer.Notifier, notifyTimeout time.Duration, logger *zerolog.Logger) *OrderStateMachine {
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	return &OrderStateMachine{
		store:     store,
		inventory: inventory,
		notify:    newNotificationDispatcher(notifier, notifyTimeout, logger),
		logger:    logger,
	}
}

// Transition 商家操作的狀態異動，PAID_WAITING 只能經由 AttachPaymentSlip
func (m *OrderStateMachine) Transition(ctx context.Context, orderID string, target model.OrderStatus, payload TransitionPayload) (*model.Order, error) {
	order, err := m.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, persistenceErr(err, "order")
	}
	return m.apply(ctx, order, target, false, payload)
}

// AttachPaymentSlip 顧客上傳付款證明，PENDING -> PAID_WAITING，不會自動確認
func (m *OrderStateMachine) AttachPaymentSlip(ctx context.Context, orderCode, slipURL string) (*model.Order, error) {
	order, err := m.store.GetOrderByCode(ctx, orderCode)
	if err != nil {
		return nil, persistenceErr(err, "order")
	}
	return m.apply(ctx, order, model.OrderStatusPaidWaiting, true, TransitionPayload{PaymentSlipURL: slipURL})
}

func (m *OrderStateMachine) apply(ctx context.Context, order *model.Order, target model.OrderStatus, byCustomer bool, payload TransitionPayload) (*model.Order, error) {
	from := order.Status
	fields, err := checkTransition(from, target, byCustomer, payload)
	if err != nil {
		return nil, err
	}

	ok, err := m.store.UpdateOrderStatus(ctx, order.ID, from, target, fields)
	if err != nil {
		return nil, persistenceErr(err, "order status")
	}
	if !ok {
		current := from
		if latest, err := m.store.GetOrderByID(ctx, order.ID); err == nil {
			current = latest.Status
		}
		return nil, &TransitionError{From: current, To: target, Reason: "order status changed concurrently"}
	}

	order.Status = target
	if v, ok := fields["tracking_code"]; ok {
		order.TrackingCode = v.(string)
	}
	if v, ok := fields["payment_slip_url"]; ok {
		order.PaymentSlipURL = v.(string)
	}

	// 已取消訂單不再計入已售數量
	if target == model.OrderStatusCancelled {
		m.inventory.Invalidate(ctx, order.RoundID)
	}

	evt := event.NewOrderStatusChanged(order, from)
	m.notify.dispatch("order_status_changed", order.Code, func(ctx context.Context, n producer.Notifier) error {
		return n.NotifyOrderStatusChanged(ctx, evt)
	})

	m.logger.Info().
		Str("order_code", order.Code).
		Str("from", string(from)).
		Str("to", string(target)).
		Msg("order status changed")
	return order, nil
}

func (m *OrderStateMachine) Wait() {
	m.notify.Wait()
}

var _ IOrderStateMachine = (*OrderStateMachine)(nil)
