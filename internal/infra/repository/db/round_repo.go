package db

import (
	"context"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
)

type RoundRepo struct {
	db *DbDao
}

func NewRoundRepo(db *DbDao) *RoundRepo {
	return &RoundRepo{db: db}
}

func (s *RoundRepo) CreateRound(ctx context.Context, round *model.Round) error {
	return s.db.WithContext(ctx).Create(round).Error
}

func (s *RoundRepo) GetRoundByID(ctx context.Context, id string) (*model.Round, error) {
	var round model.Round
	err := s.db.WithContext(ctx).First(&round, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetRoundByIDForShare 結帳時使用，阻擋同時進行的關團或刪除
func (s *RoundRepo) GetRoundByIDForShare(ctx context.Context, id string) (*model.Round, error) {
	var round model.Round
	err := s.db.withLock(s.db.WithContext(ctx), lockStrengthShare).First(&round, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (s *RoundRepo) GetRoundByIDForUpdate(ctx context.Context, id string) (*model.Round, error) {
	var round model.Round
	err := s.db.withLock(s.db.WithContext(ctx), lockStrengthUpdate).First(&round, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (s *RoundRepo) ListRoundsByShopID(ctx context.Context, shopID string) ([]model.Round, error) {
	var rounds []model.Round
	err := s.db.WithContext(ctx).Where("shop_id = ?", shopID).Order("opens_at DESC").Find(&rounds).Error
	return rounds, err
}

func (s *RoundRepo) UpdateRoundStatus(ctx context.Context, id string, status model.RoundStatus) error {
	return s.db.WithContext(ctx).Model(&model.Round{}).Where("id = ?", id).Update("status", status).Error
}

// DeleteRound 連同鎖定列一起刪除，呼叫端需先確認沒有訂單
func (s *RoundRepo) DeleteRound(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("round_id = ?", id).Delete(&model.RoundProductLock{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Round{}).Error
}
