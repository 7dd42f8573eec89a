package db

import (
	"context"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
)

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *ProductRepo) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs 找不到的 id 不會回傳錯誤，由呼叫端比對
func (s *ProductRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (s *ProductRepo) ListProductsByShopID(ctx context.Context, shopID string, onlyAvailable bool) ([]model.Product, error) {
	var products []model.Product
	query := s.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if onlyAvailable {
		query = query.Where("is_available = ?", true)
	}
	err := query.Order("created_at ASC").Find(&products).Error
	return products, err
}

// UpdateProduct 只更新可由商家修改的欄位
func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", product.ID).
		Select("name", "description", "image_url", "price", "cost_price", "limit_per_round", "is_available", "options").
		Updates(product).Error
}
