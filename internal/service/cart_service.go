package service

import (
	"context"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
)

type AddCartItemInput struct {
	ShopID          string
	RoundID         string
	ProductID       string
	Quantity        int
	SelectedOptions map[string]string
}

type ICartService interface {
	GetCart(ctx context.Context, sessionID string) (*model.Cart, error)
	AddItem(ctx context.Context, sessionID string, in AddCartItemInput) (*model.Cart, error)
	SetQuantity(ctx context.Context, sessionID, lineKey string, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, sessionID, lineKey string) (*model.Cart, error)
	SwitchRound(ctx context.Context, sessionID, shopID, roundID string) (*model.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// CartService 加入購物車時記錄當下的商品名稱與價格
type CartService struct {
	store db.UnifiedDB
	carts CartStore
}

func NewCartService(store db.UnifiedDB, carts CartStore) *CartService {
	return &CartService{store: store, carts: carts}
}

func (s *CartService) GetCart(ctx context.Context, sessionID string) (*model.Cart, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, persistenceErr(err, "cart")
	}
	return cart, nil
}

// AddItem 購物車已屬於其他開團時回傳 ErrCartScopeMismatch，需先 SwitchRound
func (s *CartService) AddItem(ctx context.Context, sessionID string, in AddCartItemInput) (*model.Cart, error) {
	if in.Quantity <= 0 || in.Quantity > model.MaxLineQuantity {
		return nil, newValidationError("quantity", model.ErrInvalidQuantity.Error())
	}
	round, err := s.store.GetRoundByID(ctx, in.RoundID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrRoundClosed
		}
		return nil, persistenceErr(err, "round")
	}
	if round.ShopID != in.ShopID {
		return nil, ErrRoundClosed
	}
	product, err := s.store.GetProductByID(ctx, in.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, &productUnavailableError{productID: in.ProductID}
		}
		return nil, persistenceErr(err, "product")
	}
	if product.ShopID != in.ShopID || !product.IsAvailable {
		return nil, &productUnavailableError{productID: in.ProductID}
	}

	line := model.CartLine{
		ProductID:       product.ID,
		Name:            product.Name,
		Price:           product.Price,
		Quantity:        in.Quantity,
		SelectedOptions: in.SelectedOptions,
	}
	return s.carts.Update(ctx, sessionID, func(cart *model.Cart) error {
		return cart.AddItem(in.ShopID, in.RoundID, line)
	})
}

func (s *CartService) SetQuantity(ctx context.Context, sessionID, lineKey string, quantity int) (*model.Cart, error) {
	return s.carts.Update(ctx, sessionID, func(cart *model.Cart) error {
		return cart.SetQuantity(lineKey, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, lineKey string) (*model.Cart, error) {
	return s.carts.Update(ctx, sessionID, func(cart *model.Cart) error {
		return cart.RemoveItem(lineKey)
	})
}

// SwitchRound 明確清空購物車並改綁開團
func (s *CartService) SwitchRound(ctx context.Context, sessionID, shopID, roundID string) (*model.Cart, error) {
	return s.carts.Update(ctx, sessionID, func(cart *model.Cart) error {
		cart.Switch(shopID, roundID)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.carts.Delete(ctx, sessionID)
}

var _ ICartService = (*CartService)(nil)
