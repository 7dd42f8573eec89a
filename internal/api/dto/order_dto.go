package dto

import (
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/shopspring/decimal"
)

// OrderStatusDTO 付款證明由顧客經 /track/{code}/slip 上傳
type OrderStatusDTO struct {
	Status       string `json:"status"`
	TrackingCode string `json:"tracking_code,omitempty"`
}

type DiscountDTO struct {
	Discount decimal.Decimal `json:"discount"`
}

type PaymentSlipDTO struct {
	SlipURL string `json:"slip_url"`
}

type TrackItemDTO struct {
	Name            string            `json:"name"`
	Price           decimal.Decimal   `json:"price"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
}

// TrackOrderDTO 公開查詢用，不含顧客聯絡資料
type TrackOrderDTO struct {
	Code         string            `json:"code"`
	Status       model.OrderStatus `json:"status"`
	TrackingCode string            `json:"tracking_code,omitempty"`
	HasSlip      bool              `json:"has_payment_slip"`
	Items        []TrackItemDTO    `json:"items"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	ShippingCost decimal.Decimal   `json:"shipping_cost"`
	Discount     decimal.Decimal   `json:"discount"`
	GrandTotal   decimal.Decimal   `json:"grand_total"`
	CreatedAt    time.Time         `json:"created_at"`
}

func ConvertTrackOrder(order *model.Order) TrackOrderDTO {
	items := make([]TrackItemDTO, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, TrackItemDTO{
			Name:            it.Name,
			Price:           it.Price,
			Quantity:        it.Quantity,
			SelectedOptions: it.SelectedOptions.Data(),
			TotalPrice:      it.TotalPrice,
		})
	}
	return TrackOrderDTO{
		Code:         order.Code,
		Status:       order.Status,
		TrackingCode: order.TrackingCode,
		HasSlip:      order.PaymentSlipURL != "",
		Items:        items,
		TotalAmount:  order.TotalAmount,
		ShippingCost: order.ShippingCost,
		Discount:     order.Discount,
		GrandTotal:   order.GrandTotal,
		CreatedAt:    order.CreatedAt,
	}
}
