package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Product struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ShopID      string           `gorm:"type:varchar(36);not null;index" json:"shop_id"`
	Name        string           `gorm:"type:varchar(255);not null" json:"name"`
	Description string           `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string           `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	Price       decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"price"`
	CostPrice   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"cost_price,omitempty"`
	// nil 代表不限量
	LimitPerRound *int           `json:"limit_per_round"`
	IsAvailable   bool           `gorm:"not null" json:"is_available"`
	Options       datatypes.JSON `json:"options,omitempty"`
	BaseModel
}

func (Product) TableName() string {
	return "products"
}

// ProductAvailability 商品在某開團中的剩餘可售數量
type ProductAvailability struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	LimitPerRound *int            `json:"limit_per_round"`
	Sold          int             `json:"sold"`
	Remaining     *int            `json:"remaining"`
	InStock       bool            `json:"in_stock"`
}

// ProductSales 開團銷售統計，不含已取消訂單
type ProductSales struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Sold      int             `json:"sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// RoundProductLock 每個 (round, product) 一列，結帳時以 SELECT ... FOR UPDATE 序列化庫存檢查
type RoundProductLock struct {
	RoundID   string `gorm:"primaryKey;type:varchar(36)"`
	ProductID string `gorm:"primaryKey;type:varchar(36)"`
}

func (RoundProductLock) TableName() string {
	return "round_product_locks"
}
