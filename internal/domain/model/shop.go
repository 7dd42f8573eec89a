package model

import (
	"gorm.io/datatypes"
)

// Shop 商家，擁有 Round 與 Product
type Shop struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Slug          string         `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	ShippingRates datatypes.JSON `json:"shipping_rates,omitempty"`
	// 轉帳資訊，僅供顧客付款時顯示
	BankName    string `gorm:"type:varchar(100)" json:"bank_name,omitempty"`
	BankAccount string `gorm:"type:varchar(100)" json:"bank_account,omitempty"`
	AccountName string `gorm:"type:varchar(255)" json:"account_name,omitempty"`
	PromptPayID string `gorm:"type:varchar(50)" json:"prompt_pay_id,omitempty"`
	BaseModel
}

func (Shop) TableName() string {
	return "shops"
}

// Rates 解析商家的運費設定，格式錯誤時視為未設定
func (s *Shop) Rates() ShippingRates {
	return ShippingRatesOrUnset(s.ShippingRates)
}
