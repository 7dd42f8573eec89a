package event

import (
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/shopspring/decimal"
)

// LineItem 通知只需要名稱、數量、單價
type LineItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderCreated struct {
	BaseEvent
	ShopID        string          `json:"shop_id"`
	ShopName      string          `json:"shop_name"`
	RoundID       string          `json:"round_id"`
	OrderCode     string          `json:"order_code"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	Discount      decimal.Decimal `json:"discount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Items         []LineItem      `json:"items"`
}

func (e *OrderCreated) Type() EventType {
	return OrderCreatedEventName
}

func (e *OrderCreated) Key() string {
	return e.OrderCode
}

// NewOrderCreated order 必須已帶 Items
func NewOrderCreated(shop *model.Shop, order *model.Order, customer *model.Customer) *OrderCreated {
	e := &OrderCreated{
		BaseEvent:    newBaseEvent(order.ID, OrderCreatedEventName),
		ShopID:       order.ShopID,
		RoundID:      order.RoundID,
		OrderCode:    order.Code,
		TotalAmount:  order.TotalAmount,
		ShippingCost: order.ShippingCost,
		Discount:     order.Discount,
		GrandTotal:   order.GrandTotal,
		Items:        make([]LineItem, 0, len(order.Items)),
	}
	if shop != nil {
		e.ShopName = shop.Name
	}
	if customer != nil {
		e.CustomerName = customer.Name
		e.CustomerPhone = customer.Phone
	}
	for _, item := range order.Items {
		e.Items = append(e.Items, LineItem{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}
	return e
}

type OrderStatusChanged struct {
	BaseEvent
	ShopID       string            `json:"shop_id"`
	OrderCode    string            `json:"order_code"`
	FromStatus   model.OrderStatus `json:"from_status"`
	ToStatus     model.OrderStatus `json:"to_status"`
	TrackingCode string            `json:"tracking_code,omitempty"`
}

func (e *OrderStatusChanged) Type() EventType {
	return OrderStatusChangedEventName
}

func (e *OrderStatusChanged) Key() string {
	return e.OrderCode
}

func NewOrderStatusChanged(order *model.Order, from model.OrderStatus) *OrderStatusChanged {
	return &OrderStatusChanged{
		BaseEvent:    newBaseEvent(order.ID, OrderStatusChangedEventName),
		ShopID:       order.ShopID,
		OrderCode:    order.Code,
		FromStatus:   from,
		ToStatus:     order.Status,
		TrackingCode: order.TrackingCode,
	}
}
