package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type CreateShopDTO struct {
	Slug          string          `json:"slug"`
	Name          string          `json:"name"`
	ShippingRates json.RawMessage `json:"shipping_rates,omitempty"`
	BankName      string          `json:"bank_name,omitempty"`
	BankAccount   string          `json:"bank_account,omitempty"`
	AccountName   string          `json:"account_name,omitempty"`
	PromptPayID   string          `json:"prompt_pay_id,omitempty"`
}

// ProductDTO is_available 未帶時預設上架
type ProductDTO struct {
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	ImageURL      string           `json:"image_url,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	LimitPerRound *int             `json:"limit_per_round"`
	IsAvailable   *bool            `json:"is_available,omitempty"`
	Options       json.RawMessage  `json:"options,omitempty"`
}

type CreateRoundDTO struct {
	Name          string          `json:"name"`
	OpensAt       time.Time       `json:"opens_at"`
	ClosesAt      time.Time       `json:"closes_at"`
	ShippingStart *time.Time      `json:"shipping_start,omitempty"`
	PickupDate    *time.Time      `json:"pickup_date,omitempty"`
	ShippingRates json.RawMessage `json:"shipping_rates,omitempty"`
}

type RoundStatusDTO struct {
	Status string `json:"status"`
}
