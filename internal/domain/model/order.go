package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "PENDING"      // 待付款
	OrderStatusPaidWaiting OrderStatus = "PAID_WAITING" // 已上傳付款證明，待商家確認
	OrderStatusConfirmed   OrderStatus = "CONFIRMED"    // 已確認
	OrderStatusShipped     OrderStatus = "SHIPPED"      // 已出貨
	OrderStatusCompleted   OrderStatus = "COMPLETED"    // 已完成
	OrderStatusCancelled   OrderStatus = "CANCELLED"    // 已取消
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaidWaiting, OrderStatusConfirmed,
		OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ParseOrderStatus 不分大小寫，無法辨識時回傳錯誤
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return status, nil
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ShippingAddress struct {
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`
	Location *GeoPoint `json:"location,omitempty"`
	Note     string    `json:"note,omitempty"`
}

// Order 訂單建立後 RoundID 不可變更，狀態只能透過 OrderStateMachine 異動
type Order struct {
	ID              string                              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Code            string                              `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	ShopID          string                              `gorm:"type:varchar(36);not null;index" json:"shop_id"`
	RoundID         string                              `gorm:"type:varchar(36);not null;index" json:"round_id"`
	CustomerID      string                              `gorm:"type:varchar(36);not null;index" json:"customer_id"`
	Customer        *Customer                           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items           []OrderItem                         `gorm:"foreignKey:OrderID" json:"items"`
	TotalAmount     decimal.Decimal                     `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	ShippingCost    decimal.Decimal                     `gorm:"type:decimal(12,2);not null" json:"shipping_cost"`
	Discount        decimal.Decimal                     `gorm:"type:decimal(12,2);not null" json:"discount"`
	GrandTotal      decimal.Decimal                     `gorm:"type:decimal(12,2);not null" json:"grand_total"`
	Status          OrderStatus                         `gorm:"type:varchar(16);not null;index" json:"status"`
	TrackingCode    string                              `gorm:"type:varchar(100)" json:"tracking_code,omitempty"`
	PaymentSlipURL  string                              `gorm:"type:varchar(512)" json:"payment_slip_url,omitempty"`
	ShippingAddress datatypes.JSONType[ShippingAddress] `json:"shipping_address"`
	Note            string                              `gorm:"type:text" json:"note,omitempty"`
	BaseModel
}

func (Order) TableName() string {
	return "orders"
}

// RecalculateGrandTotal grandTotal = totalAmount + shippingCost - discount
func (o *Order) RecalculateGrandTotal() {
	o.GrandTotal = o.TotalAmount.Add(o.ShippingCost).Sub(o.Discount)
}

// OrderItem 下單當下的商品快照，寫入後不再修改
type OrderItem struct {
	ID              string                                `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID         string                                `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID       string                                `gorm:"type:varchar(36);not null;index" json:"product_id"`
	Name            string                                `gorm:"type:varchar(255);not null" json:"name"`
	Price           decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity        int                                   `gorm:"not null" json:"quantity"`
	SelectedOptions datatypes.JSONType[map[string]string] `json:"selected_options"`
	TotalPrice      decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"total_price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
