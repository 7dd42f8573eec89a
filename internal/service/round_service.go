package service

import (
	"context"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CreateRoundInput struct {
	Name          string
	OpensAt       time.Time
	ClosesAt      time.Time
	ShippingStart *time.Time
	PickupDate    *time.Time
	ShippingRates []byte
}

type IRoundService interface {
	CreateRound(ctx context.Context, shopID string, in CreateRoundInput) (*model.Round, error)
	GetRound(ctx context.Context, roundID string) (*model.Round, error)
	ListRounds(ctx context.Context, shopID string) ([]model.Round, error)
	UpdateStatus(ctx context.Context, roundID string, status model.RoundStatus) (*model.Round, error)
	DeleteRound(ctx context.Context, roundID string) error
	SalesSummary(ctx context.Context, roundID string) ([]model.ProductSales, error)
}

// 開團狀態由商家手動切換，FULFILLED 為終態
var roundTransitions = map[model.RoundStatus][]model.RoundStatus{
	model.RoundStatusOpen:   {model.RoundStatusClosed, model.RoundStatusFulfilled},
	model.RoundStatusClosed: {model.RoundStatusOpen, model.RoundStatusFulfilled},
}

type RoundService struct {
	store  db.UnifiedDB
	logger *zerolog.Logger
}

func NewRoundService(store db.UnifiedDB, logger *zerolog.Logger) *RoundService {
	return &RoundService{store: store, logger: logger}
}

func (s *RoundService) CreateRound(ctx context.Context, shopID string, in CreateRoundInput) (*model.Round, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, newValidationError("name", "required")
	}
	if !in.OpensAt.Before(in.ClosesAt) {
		return nil, newValidationError("closes_at", "must be after opens_at")
	}
	if len(in.ShippingRates) > 0 {
		if _, err := model.ParseShippingRates(in.ShippingRates); err != nil {
			return nil, newValidationError("shipping_rates", err.Error())
		}
	}
	if _, err := s.store.GetShopByID(ctx, shopID); err != nil {
		return nil, persistenceErr(err, "shop")
	}

	round := &model.Round{
		ID:            uuid.NewString(),
		ShopID:        shopID,
		Name:          strings.TrimSpace(in.Name),
		OpensAt:       in.OpensAt,
		ClosesAt:      in.ClosesAt,
		ShippingStart: in.ShippingStart,
		PickupDate:    in.PickupDate,
		Status:        model.RoundStatusOpen,
		ShippingRates: in.ShippingRates,
	}
	if err := s.store.CreateRound(ctx, round); err != nil {
		return nil, persistenceErr(err, "round")
	}
	return round, nil
}

func (s *RoundService) GetRound(ctx context.Context, roundID string) (*model.Round, error) {
	round, err := s.store.GetRoundByID(ctx, roundID)
	if err != nil {
		return nil, persistenceErr(err, "round")
	}
	return round, nil
}

func (s *RoundService) ListRounds(ctx context.Context, shopID string) ([]model.Round, error) {
	rounds, err := s.store.ListRoundsByShopID(ctx, shopID)
	if err != nil {
		return nil, persistenceErr(err, "rounds")
	}
	return rounds, nil
}

// UpdateStatus 相同狀態視為成功
func (s *RoundService) UpdateStatus(ctx context.Context, roundID string, status model.RoundStatus) (*model.Round, error) {
	if !status.IsValid() {
		return nil, newValidationError("status", "unknown round status")
	}

	var round *model.Round
	err := s.store.ExecTx(ctx, func(tx db.UnifiedDB) error {
		r, err := tx.GetRoundByIDForUpdate(ctx, roundID)
		if err != nil {
			return persistenceErr(err, "round")
		}
		round = r
		if r.Status == status {
			return nil
		}
		if !canTransitionRound(r.Status, status) {
			return ErrInvalidRoundStatus
		}
		if err := tx.UpdateRoundStatus(ctx, roundID, status); err != nil {
			return persistenceErr(err, "round status")
		}
		round.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

func canTransitionRound(from, to model.RoundStatus) bool {
	for _, allowed := range roundTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// DeleteRound 只允許刪除沒有任何訂單的開團，包含已取消的訂單
func (s *RoundService) DeleteRound(ctx context.Context, roundID string) error {
	return s.store.ExecTx(ctx, func(tx db.UnifiedDB) error {
		if _, err := tx.GetRoundByIDForUpdate(ctx, roundID); err != nil {
			return persistenceErr(err, "round")
		}
		count, err := tx.CountOrdersByRoundID(ctx, roundID)
		if err != nil {
			return persistenceErr(err, "orders")
		}
		if count > 0 {
			return ErrRoundHasOrders
		}
		if err := tx.DeleteRound(ctx, roundID); err != nil {
			return persistenceErr(err, "round")
		}
		return nil
	})
}

// SalesSummary 每個商品已售數量與營收，不含已取消訂單
func (s *RoundService) SalesSummary(ctx context.Context, roundID string) ([]model.ProductSales, error) {
	round, err := s.store.GetRoundByID(ctx, roundID)
	if err != nil {
		return nil, persistenceErr(err, "round")
	}
	sales, err := s.store.GetRoundSalesSummary(ctx, round.ID)
	if err != nil {
		return nil, persistenceErr(err, "sales summary")
	}

	ids := make([]string, 0, len(sales))
	for _, row := range sales {
		ids = append(ids, row.ProductID)
	}
	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, persistenceErr(err, "products")
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	for i := range sales {
		sales[i].Name = names[sales[i].ProductID]
	}
	return sales, nil
}

var _ IRoundService = (*RoundService)(nil)
