package dto

import (
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/shopspring/decimal"
)

type CheckoutItemDTO struct {
	ProductID       string            `json:"product_id"`
	Name            string            `json:"name"`
	Price           decimal.Decimal   `json:"price"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}

type CustomerDTO struct {
	Name     string          `json:"name"`
	Phone    string          `json:"phone,omitempty"`
	LineID   string          `json:"line_id,omitempty"`
	Address  string          `json:"address"`
	Note     string          `json:"note,omitempty"`
	Location *model.GeoPoint `json:"location,omitempty"`
}

// CheckoutDTO 帶 session_id 且沒有 items 時使用 redis 中的購物車
// shipping_cost 僅供參考，以伺服器計算為準
type CheckoutDTO struct {
	SessionID    string            `json:"session_id,omitempty"`
	ShopID       string            `json:"shop_id"`
	RoundID      string            `json:"round_id"`
	Items        []CheckoutItemDTO `json:"items"`
	Customer     CustomerDTO       `json:"customer"`
	ShippingCost *decimal.Decimal  `json:"shipping_cost,omitempty"`
}

type ShippingPreviewDTO struct {
	RoundID string            `json:"round_id"`
	Items   []CheckoutItemDTO `json:"items"`
}

type ShippingPreviewResponse struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalQuantity int             `json:"total_quantity"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}
