package service

import (
	"context"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// AvailabilityCache 前台剩餘數量快取
type AvailabilityCache interface {
	Get(ctx context.Context, roundID string) ([]model.ProductAvailability, bool, error)
	Set(ctx context.Context, roundID string, items []model.ProductAvailability) error
	Invalidate(ctx context.Context, roundID string) error
}

type IInventoryService interface {
	Remaining(ctx context.Context, roundID string, product *model.Product) (*int, error)
	IsInStock(ctx context.Context, roundID string, product *model.Product) (bool, error)
	RoundAvailability(ctx context.Context, roundID string) ([]model.ProductAvailability, error)
	Invalidate(ctx context.Context, roundID string)
}

// InventoryService 開團剩餘數量 = limitPerRound - 未取消訂單的已售數量
// cache 只服務前台顯示，結帳時在交易內重新計算
type InventoryService struct {
	store  db.UnifiedDB
	cache  AvailabilityCache
	group  singleflight.Group
	logger *zerolog.Logger
}

// NewInventoryService cache 可為 nil
func NewInventoryService(store db.UnifiedDB, cache AvailabilityCache, logger *zerolog.Logger) *InventoryService {
	return &InventoryService{store: store, cache: cache, logger: logger}
}

// RemainingOf nil 代表不限量，結果不會小於 0
func RemainingOf(limit *int, sold int) *int {
	if limit == nil {
		return nil
	}
	remaining := *limit - sold
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

func inStock(remaining *int) bool {
	return remaining == nil || *remaining > 0
}

func (s *InventoryService) Remaining(ctx context.Context, roundID string, product *model.Product) (*int, error) {
	if product.LimitPerRound == nil {
		return nil, nil
	}
	sold, err := s.store.GetSoldQuantities(ctx, roundID, []string{product.ID})
	if err != nil {
		return nil, persistenceErr(err, "sold quantities")
	}
	return RemainingOf(product.LimitPerRound, sold[product.ID]), nil
}

func (s *InventoryService) IsInStock(ctx context.Context, roundID string, product *model.Product) (bool, error) {
	remaining, err := s.Remaining(ctx, roundID, product)
	if err != nil {
		return false, err
	}
	return inStock(remaining), nil
}

// RoundAvailability 開團中所有上架商品的剩餘數量
func (s *InventoryService) RoundAvailability(ctx context.Context, roundID string) ([]model.ProductAvailability, error) {
	if s.cache != nil {
		items, ok, err := s.cache.Get(ctx, roundID)
		if err != nil {
			s.logger.Warn().Err(err).Str("round_id", roundID).Msg("availability cache read failed")
		} else if ok {
			return items, nil
		}
	}

	v, err, _ := s.group.Do(roundID, func() (interface{}, error) {
		items, err := s.loadAvailability(ctx, roundID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, roundID, items); err != nil {
				s.logger.Warn().Err(err).Str("round_id", roundID).Msg("availability cache write failed")
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.ProductAvailability), nil
}

func (s *InventoryService) loadAvailability(ctx context.Context, roundID string) ([]model.ProductAvailability, error) {
	round, err := s.store.GetRoundByID(ctx, roundID)
	if err != nil {
		return nil, persistenceErr(err, "round")
	}
	products, err := s.store.ListProductsByShopID(ctx, round.ShopID, true)
	if err != nil {
		return nil, persistenceErr(err, "products")
	}
	sold, err := s.store.GetSoldQuantities(ctx, roundID, nil)
	if err != nil {
		return nil, persistenceErr(err, "sold quantities")
	}

	items := make([]model.ProductAvailability, 0, len(products))
	for _, p := range products {
		remaining := RemainingOf(p.LimitPerRound, sold[p.ID])
		items = append(items, model.ProductAvailability{
			ProductID:     p.ID,
			Name:          p.Name,
			Price:         p.Price,
			LimitPerRound: p.LimitPerRound,
			Sold:          sold[p.ID],
			Remaining:     remaining,
			InStock:       inStock(remaining),
		})
	}
	return items, nil
}

// Invalidate 結帳或取消後呼叫，失敗只記 log，快取會在 TTL 後過期
func (s *InventoryService) Invalidate(ctx context.Context, roundID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, roundID); err != nil {
		s.logger.Warn().Err(err).Str("round_id", roundID).Msg("availability cache invalidate failed")
	}
}

var _ IInventoryService = (*InventoryService)(nil)
