package service

import (
	"context"
	"strings"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateShopInput struct {
	Slug          string
	Name          string
	ShippingRates []byte
	BankName      string
	BankAccount   string
	AccountName   string
	PromptPayID   string
}

type ProductInput struct {
	Name          string
	Description   string
	ImageURL      string
	Price         decimal.Decimal
	CostPrice     *decimal.Decimal
	LimitPerRound *int
	IsAvailable   bool
	Options       []byte
}

type ICatalogService interface {
	CreateShop(ctx context.Context, in CreateShopInput) (*model.Shop, error)
	GetShop(ctx context.Context, shopID string) (*model.Shop, error)
	CreateProduct(ctx context.Context, shopID string, in ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, shopID, productID string, in ProductInput) (*model.Product, error)
	ListProducts(ctx context.Context, shopID string, onlyAvailable bool) ([]model.Product, error)
}

type CatalogService struct {
	store db.UnifiedDB
}

func NewCatalogService(store db.UnifiedDB) *CatalogService {
	return &CatalogService{store: store}
}

// CreateShop 運費設定寫入前先驗證，讀取時才能安全地退回預設值
func (s *CatalogService) CreateShop(ctx context.Context, in CreateShopInput) (*model.Shop, error) {
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug == "" {
		return nil, newValidationError("slug", "required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, newValidationError("name", "required")
	}
	if len(in.ShippingRates) > 0 {
		if _, err := model.ParseShippingRates(in.ShippingRates); err != nil {
			return nil, newValidationError("shipping_rates", err.Error())
		}
	}

	shop := &model.Shop{
		ID:            uuid.NewString(),
		Slug:          slug,
		Name:          strings.TrimSpace(in.Name),
		ShippingRates: in.ShippingRates,
		BankName:      in.BankName,
		BankAccount:   in.BankAccount,
		AccountName:   in.AccountName,
		PromptPayID:   in.PromptPayID,
	}
	if err := s.store.CreateShop(ctx, shop); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, newValidationError("slug", "already taken")
		}
		return nil, persistenceErr(err, "shop")
	}
	return shop, nil
}

func (s *CatalogService) GetShop(ctx context.Context, shopID string) (*model.Shop, error) {
	shop, err := s.store.GetShopByID(ctx, shopID)
	if err != nil {
		return nil, persistenceErr(err, "shop")
	}
	return shop, nil
}

func validateProductInput(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return newValidationError("name", "required")
	}
	if in.Price.IsNegative() {
		return newValidationError("price", "must not be negative")
	}
	if in.CostPrice != nil && in.CostPrice.IsNegative() {
		return newValidationError("cost_price", "must not be negative")
	}
	if in.LimitPerRound != nil && *in.LimitPerRound < 0 {
		return newValidationError("limit_per_round", "must not be negative")
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, shopID string, in ProductInput) (*model.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	if _, err := s.store.GetShopByID(ctx, shopID); err != nil {
		return nil, persistenceErr(err, "shop")
	}

	product := &model.Product{
		ID:            uuid.NewString(),
		ShopID:        shopID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		Price:         in.Price,
		CostPrice:     in.CostPrice,
		LimitPerRound: in.LimitPerRound,
		IsAvailable:   in.IsAvailable,
		Options:       in.Options,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, persistenceErr(err, "product")
	}
	return product, nil
}

// UpdateProduct 已成立訂單的明細是快照，不受影響
func (s *CatalogService) UpdateProduct(ctx context.Context, shopID, productID string, in ProductInput) (*model.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, persistenceErr(err, "product")
	}
	if product.ShopID != shopID {
		return nil, persistenceErr(db.ErrRecordNotFound, "product")
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Description = in.Description
	product.ImageURL = in.ImageURL
	product.Price = in.Price
	product.CostPrice = in.CostPrice
	product.LimitPerRound = in.LimitPerRound
	product.IsAvailable = in.IsAvailable
	product.Options = in.Options
	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, persistenceErr(err, "product")
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, shopID string, onlyAvailable bool) ([]model.Product, error) {
	products, err := s.store.ListProductsByShopID(ctx, shopID, onlyAvailable)
	if err != nil {
		return nil, persistenceErr(err, "products")
	}
	return products, nil
}

var _ ICatalogService = (*CatalogService)(nil)
