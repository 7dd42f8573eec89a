package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/roundsale/internal/api/dto"
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/api"
	"github.com/RoyceAzure/lab/roundsale/internal/service"
)

type OrderHandler struct {
	orderService service.IOrderService
	stateMachine service.IOrderStateMachine
}

func NewOrderHandler(orderService service.IOrderService, stateMachine service.IOrderStateMachine) *OrderHandler {
	if orderService == nil || stateMachine == nil {
		panic("order handler dependencies cannot be nil")
	}
	return &OrderHandler{orderService: orderService, stateMachine: stateMachine}
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), pathParam(r, "orderID"))
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}

// UpdateStatus 狀態字串不合法時直接回 400，不進入狀態機
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderStatusDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	target, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		api.BadRequest(w, err)
		return
	}

	order, err := h.stateMachine.Transition(r.Context(), pathParam(r, "orderID"), target, service.TransitionPayload{
		TrackingCode: req.TrackingCode,
	})
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}

func (h *OrderHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req dto.DiscountDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	order, err := h.orderService.ApplyDiscount(r.Context(), pathParam(r, "orderID"), req.Discount)
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}

func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrderByCode(r.Context(), pathParam(r, "code"))
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertTrackOrder(order), nil)
}

// AttachPaymentSlip 顧客上傳付款證明
func (h *OrderHandler) AttachPaymentSlip(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentSlipDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	order, err := h.stateMachine.AttachPaymentSlip(r.Context(), pathParam(r, "code"), req.SlipURL)
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertTrackOrder(order), nil)
}
