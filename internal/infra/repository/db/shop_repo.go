package db

import (
	"context"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
)

type ShopRepo struct {
	db *DbDao
}

func NewShopRepo(db *DbDao) *ShopRepo {
	return &ShopRepo{db: db}
}

func (s *ShopRepo) CreateShop(ctx context.Context, shop *model.Shop) error {
	return s.db.WithContext(ctx).Create(shop).Error
}

func (s *ShopRepo) GetShopByID(ctx context.Context, id string) (*model.Shop, error) {
	var shop model.Shop
	err := s.db.WithContext(ctx).First(&shop, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (s *ShopRepo) GetShopBySlug(ctx context.Context, slug string) (*model.Shop, error) {
	var shop model.Shop
	err := s.db.WithContext(ctx).First(&shop, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (s *ShopRepo) UpdateShop(ctx context.Context, shop *model.Shop) error {
	return s.db.WithContext(ctx).Save(shop).Error
}
