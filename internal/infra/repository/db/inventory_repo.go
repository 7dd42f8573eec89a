package db

import (
	"context"
	"sort"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// InventoryRepo 已售數量一律由 order_items 即時加總，不另存計數器
// round_product_locks 只用來序列化同一 (round, product) 的結帳
type InventoryRepo struct {
	db *DbDao
}

func NewInventoryRepo(db *DbDao) *InventoryRepo {
	return &InventoryRepo{db: db}
}

// LockRoundProducts 必須在交易中呼叫
// 依 product id 排序加鎖，避免兩筆結帳互相等待
func (s *InventoryRepo) LockRoundProducts(ctx context.Context, roundID string, productIDs []string) error {
	ids := append([]string(nil), productIDs...)
	sort.Strings(ids)

	for i, pid := range ids {
		if i > 0 && ids[i-1] == pid {
			continue
		}
		lock := model.RoundProductLock{RoundID: roundID, ProductID: pid}
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&lock).Error; err != nil {
			return err
		}
		var locked model.RoundProductLock
		err := s.db.withLock(s.db.WithContext(ctx), lockStrengthUpdate).
			Where("round_id = ? AND product_id = ?", roundID, pid).
			First(&locked).Error
		if err != nil {
			return err
		}
	}
	return nil
}

type soldRow struct {
	ProductID string
	Sold      int
}

// GetSoldQuantities 不含已取消訂單，沒有賣出的商品不會出現在 map 中
// productIDs 為空時回傳整個開團
func (s *InventoryRepo) GetSoldQuantities(ctx context.Context, roundID string, productIDs []string) (map[string]int, error) {
	var rows []soldRow
	query := s.db.WithContext(ctx).Table("order_items AS oi").
		Select("oi.product_id AS product_id, COALESCE(SUM(oi.quantity), 0) AS sold").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.round_id = ? AND o.status <> ?", roundID, model.OrderStatusCancelled)
	if len(productIDs) > 0 {
		query = query.Where("oi.product_id IN ?", productIDs)
	}
	if err := query.Group("oi.product_id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	sold := make(map[string]int, len(rows))
	for _, r := range rows {
		sold[r.ProductID] = r.Sold
	}
	return sold, nil
}

type salesRow struct {
	ProductID string
	Sold      int
	Revenue   decimal.Decimal
}

// GetRoundSalesSummary 每個商品的已售數量與營收，不含已取消訂單
func (s *InventoryRepo) GetRoundSalesSummary(ctx context.Context, roundID string) ([]model.ProductSales, error) {
	var rows []salesRow
	err := s.db.WithContext(ctx).Table("order_items AS oi").
		Select("oi.product_id AS product_id, COALESCE(SUM(oi.quantity), 0) AS sold, COALESCE(SUM(oi.total_price), 0) AS revenue").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.round_id = ? AND o.status <> ?", roundID, model.OrderStatusCancelled).
		Group("oi.product_id").
		Order("oi.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sales := make([]model.ProductSales, 0, len(rows))
	for _, r := range rows {
		sales = append(sales, model.ProductSales{ProductID: r.ProductID, Sold: r.Sold, Revenue: r.Revenue.Round(2)})
	}
	return sales, nil
}
