package service

import (
	"context"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
	"github.com/shopspring/decimal"
)

type IOrderService interface {
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetOrderByCode(ctx context.Context, code string) (*model.Order, error)
	ListRoundOrders(ctx context.Context, roundID string, status model.OrderStatus) ([]model.Order, error)
	ApplyDiscount(ctx context.Context, orderID string, discount decimal.Decimal) (*model.Order, error)
}

// OrderService 訂單查詢與折扣，狀態異動走 OrderStateMachine
type OrderService struct {
	store db.UnifiedDB
}

func NewOrderService(store db.UnifiedDB) *OrderService {
	return &OrderService{store: store}
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, persistenceErr(err, "order")
	}
	return order, nil
}

func (s *OrderService) GetOrderByCode(ctx context.Context, code string) (*model.Order, error) {
	order, err := s.store.GetOrderByCode(ctx, code)
	if err != nil {
		return nil, persistenceErr(err, "order")
	}
	return order, nil
}

// ListRoundOrders status 為空字串時不過濾
func (s *OrderService) ListRoundOrders(ctx context.Context, roundID string, status model.OrderStatus) ([]model.Order, error) {
	if status != "" && !status.IsValid() {
		return nil, newValidationError("status", "unknown order status")
	}
	if _, err := s.store.GetRoundByID(ctx, roundID); err != nil {
		return nil, persistenceErr(err, "round")
	}
	orders, err := s.store.ListOrdersByRoundID(ctx, roundID, status)
	if err != nil {
		return nil, persistenceErr(err, "orders")
	}
	return orders, nil
}

// ApplyDiscount 單筆固定金額折扣，只能在商家確認前調整
// 折扣不可超過商品金額加運費，grandTotal 重新計算
func (s *OrderService) ApplyDiscount(ctx context.Context, orderID string, discount decimal.Decimal) (*model.Order, error) {
	if discount.IsNegative() {
		return nil, newValidationError("discount", "must not be negative")
	}
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, persistenceErr(err, "order")
	}
	if order.Status != model.OrderStatusPending && order.Status != model.OrderStatusPaidWaiting {
		return nil, ErrDiscountNotAllowed
	}
	if discount.GreaterThan(order.TotalAmount.Add(order.ShippingCost)) {
		return nil, newValidationError("discount", "exceeds order total")
	}

	order.Discount = discount
	order.RecalculateGrandTotal()
	ok, err := s.store.UpdateOrderDiscount(ctx, order.ID, order.Status, order.Discount, order.GrandTotal)
	if err != nil {
		return nil, persistenceErr(err, "order discount")
	}
	if !ok {
		return nil, ErrDiscountNotAllowed
	}
	return order, nil
}

var _ IOrderService = (*OrderService)(nil)
