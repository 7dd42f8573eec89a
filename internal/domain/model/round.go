package model

import (
	"time"

	"gorm.io/datatypes"
)

type RoundStatus string

const (
	RoundStatusOpen      RoundStatus = "OPEN"
	RoundStatusClosed    RoundStatus = "CLOSED"
	RoundStatusFulfilled RoundStatus = "FULFILLED"
)

func (s RoundStatus) IsValid() bool {
	switch s {
	case RoundStatusOpen, RoundStatusClosed, RoundStatusFulfilled:
		return true
	default:
		return false
	}
}

// Round 限時開團
// 狀態不會因為時間到期而自動改變，判斷能否下單必須同時檢查 Status 與 ClosesAt
type Round struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ShopID        string         `gorm:"type:varchar(36);not null;index" json:"shop_id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	OpensAt       time.Time      `gorm:"not null" json:"opens_at"`
	ClosesAt      time.Time      `gorm:"not null" json:"closes_at"`
	ShippingStart *time.Time     `json:"shipping_start,omitempty"`
	PickupDate    *time.Time     `json:"pickup_date,omitempty"`
	Status        RoundStatus    `gorm:"type:varchar(16);not null;default:'OPEN'" json:"status"`
	ShippingRates datatypes.JSON `json:"shipping_rates,omitempty"` // 覆寫商家運費設定
	BaseModel
}

func (Round) TableName() string {
	return "rounds"
}

// AcceptsOrders status == OPEN 且 now < closesAt
func (r *Round) AcceptsOrders(now time.Time) bool {
	return r.Status == RoundStatusOpen && now.Before(r.ClosesAt)
}

// EffectiveRates 開團有自己的運費設定時優先使用，否則沿用商家設定
func (r *Round) EffectiveRates(shop *Shop) ShippingRates {
	if len(r.ShippingRates) > 0 {
		if rates := ShippingRatesOrUnset(r.ShippingRates); !IsUnset(rates) {
			return rates
		}
	}
	if shop == nil {
		return UnsetRates{}
	}
	return shop.Rates()
}
