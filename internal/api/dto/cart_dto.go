package dto

import (
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/shopspring/decimal"
)

type AddCartItemDTO struct {
	ShopID          string            `json:"shop_id"`
	RoundID         string            `json:"round_id"`
	ProductID       string            `json:"product_id"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}

type CartQuantityDTO struct {
	Quantity int `json:"quantity"`
}

type SwitchCartDTO struct {
	ShopID  string `json:"shop_id"`
	RoundID string `json:"round_id"`
}

type CartLineDTO struct {
	Key             string            `json:"key"`
	ProductID       string            `json:"product_id"`
	Name            string            `json:"name"`
	Price           decimal.Decimal   `json:"price"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
	LineTotal       decimal.Decimal   `json:"line_total"`
}

type CartDTO struct {
	SessionID     string          `json:"session_id"`
	ShopID        string          `json:"shop_id"`
	RoundID       string          `json:"round_id"`
	Lines         []CartLineDTO   `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalQuantity int             `json:"total_quantity"`
}

func ConvertCart(cart *model.Cart) CartDTO {
	lines := make([]CartLineDTO, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, CartLineDTO{
			Key:             l.Key(),
			ProductID:       l.ProductID,
			Name:            l.Name,
			Price:           l.Price,
			Quantity:        l.Quantity,
			SelectedOptions: l.SelectedOptions,
			LineTotal:       l.LineTotal(),
		})
	}
	return CartDTO{
		SessionID:     cart.SessionID,
		ShopID:        cart.ShopID,
		RoundID:       cart.RoundID,
		Lines:         lines,
		Subtotal:      cart.Subtotal(),
		TotalQuantity: cart.TotalQuantity(),
	}
}
