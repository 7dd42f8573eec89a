package db

import (
	"context"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/shopspring/decimal"
)

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrder 同一個 statement 批次寫入 Items，Customer 需事先建立
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Omit("Customer").Create(order).Error
}

func (s *OrderRepo) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("Items").Preload("Customer").First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderRepo) GetOrderByCode(ctx context.Context, code string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("Items").Preload("Customer").First(&order, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersByRoundID status 為空時回傳全部
func (s *OrderRepo) ListOrdersByRoundID(ctx context.Context, roundID string, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	query := s.db.WithContext(ctx).Preload("Items").Preload("Customer").Where("round_id = ?", roundID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at ASC").Find(&orders).Error
	return orders, err
}

func (s *OrderRepo) CountOrdersByRoundID(ctx context.Context, roundID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Order{}).Where("round_id = ?", roundID).Count(&count).Error
	return count, err
}

// UpdateOrderStatus compare-and-swap，狀態已被其他請求改變時回傳 false
// fields 為一併寫入的欄位，例如 tracking_code、payment_slip_url
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateOrderDiscount 只在 status 仍為 expected 時更新，grandTotal 由呼叫端重新計算
func (s *OrderRepo) UpdateOrderDiscount(ctx context.Context, id string, expected model.OrderStatus, discount, grandTotal decimal.Decimal) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]any{"discount": discount, "grand_total": grandTotal})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
