package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/roundsale/internal/api/dto"
	"github.com/RoyceAzure/lab/roundsale/internal/constants"
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/api"
	"github.com/RoyceAzure/lab/roundsale/internal/service"
	"github.com/shopspring/decimal"
)

// CheckoutObserver 記錄結帳結果，nil 時不記錄
type CheckoutObserver interface {
	ObserveCheckout(outcome string)
}

type CheckoutHandler struct {
	checkoutService service.ICheckoutService
	observer        CheckoutObserver
}

func NewCheckoutHandler(checkoutService service.ICheckoutService, observer CheckoutObserver) *CheckoutHandler {
	if checkoutService == nil {
		panic("checkoutService cannot be nil")
	}
	return &CheckoutHandler{checkoutService: checkoutService, observer: observer}
}

func buildCart(shopID, roundID string, items []dto.CheckoutItemDTO) (*model.Cart, error) {
	cart := model.NewCart("", shopID, roundID)
	for i, it := range items {
		err := cart.AddItem(shopID, roundID, model.CartLine{
			ProductID:       it.ProductID,
			Name:            it.Name,
			Price:           it.Price,
			Quantity:        it.Quantity,
			SelectedOptions: it.SelectedOptions,
		})
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return cart, nil
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.observe(constants.CheckoutOutcomeInvalid)
		api.BadRequest(w, err)
		return
	}

	in := service.CheckoutInput{
		Customer: service.CustomerInfo{
			Name:     req.Customer.Name,
			Phone:    req.Customer.Phone,
			LineID:   req.Customer.LineID,
			Address:  req.Customer.Address,
			Note:     req.Customer.Note,
			Location: req.Customer.Location,
		},
		ShopID:             req.ShopID,
		RoundID:            req.RoundID,
		ClientShippingCost: req.ShippingCost,
	}

	var (
		order *model.Order
		err   error
	)
	if req.SessionID != "" && len(req.Items) == 0 {
		order, err = h.checkoutService.SubmitSessionCart(r.Context(), req.SessionID, in)
	} else {
		in.Cart, err = buildCart(req.ShopID, req.RoundID, req.Items)
		if err == nil {
			order, err = h.checkoutService.Submit(r.Context(), in)
		}
	}
	if err != nil {
		h.observe(checkoutOutcome(err))
		ServiceErrorJSON(w, err)
		return
	}

	h.observe(constants.CheckoutOutcomeOK)
	api.CreatedJSON(w, order)
}

func (h *CheckoutHandler) PreviewShipping(w http.ResponseWriter, r *http.Request) {
	var req dto.ShippingPreviewDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	summary := model.CartSummary{Subtotal: decimal.Zero}
	for i, it := range req.Items {
		if it.Quantity <= 0 || it.Price.IsNegative() {
			api.BadRequest(w, fmt.Errorf("items[%d]: invalid quantity or price", i))
			return
		}
		summary.Subtotal = summary.Subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		summary.TotalQuantity += it.Quantity
	}

	cost, err := h.checkoutService.PreviewShipping(r.Context(), req.RoundID, summary)
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, dto.ShippingPreviewResponse{
		Subtotal:      summary.Subtotal,
		TotalQuantity: summary.TotalQuantity,
		ShippingCost:  cost,
		GrandTotal:    summary.Subtotal.Add(cost),
	}, nil)
}

func (h *CheckoutHandler) observe(outcome string) {
	if h.observer != nil {
		h.observer.ObserveCheckout(outcome)
	}
}

func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrRoundClosed):
		return constants.CheckoutOutcomeRoundClosed
	case errors.Is(err, service.ErrStockExceeded):
		return constants.CheckoutOutcomeStockExceeded
	case errors.Is(err, service.ErrProductUnavailable):
		return constants.CheckoutOutcomeUnavailable
	case errors.Is(err, service.ErrPersistence):
		return constants.CheckoutOutcomePersistenceErr
	default:
		return constants.CheckoutOutcomeInvalid
	}
}
