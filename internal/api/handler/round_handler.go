package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/roundsale/internal/api/dto"
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/api"
	"github.com/RoyceAzure/lab/roundsale/internal/service"
)

type RoundHandler struct {
	roundService     service.IRoundService
	inventoryService service.IInventoryService
	orderService     service.IOrderService
}

func NewRoundHandler(roundService service.IRoundService, inventoryService service.IInventoryService, orderService service.IOrderService) *RoundHandler {
	if roundService == nil || inventoryService == nil || orderService == nil {
		panic("round handler dependencies cannot be nil")
	}
	return &RoundHandler{
		roundService:     roundService,
		inventoryService: inventoryService,
		orderService:     orderService,
	}
}

func (h *RoundHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoundDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	round, err := h.roundService.CreateRound(r.Context(), pathParam(r, "shopID"), service.CreateRoundInput{
		Name:          req.Name,
		OpensAt:       req.OpensAt,
		ClosesAt:      req.ClosesAt,
		ShippingStart: req.ShippingStart,
		PickupDate:    req.PickupDate,
		ShippingRates: req.ShippingRates,
	})
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.CreatedJSON(w, round)
}

func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.roundService.ListRounds(r.Context(), pathParam(r, "shopID"))
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, rounds, nil)
}

func (h *RoundHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.RoundStatusDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	status := model.RoundStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.IsValid() {
		api.BadRequest(w, fmt.Errorf("unknown round status %q", req.Status))
		return
	}
	round, err := h.roundService.UpdateStatus(r.Context(), pathParam(r, "roundID"), status)
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, round, nil)
}

func (h *RoundHandler) DeleteRound(w http.ResponseWriter, r *http.Request) {
	if err := h.roundService.DeleteRound(r.Context(), pathParam(r, "roundID")); err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) Availability(w http.ResponseWriter, r *http.Request) {
	roundID := pathParam(r, "roundID")
	if _, err := h.roundService.GetRound(r.Context(), roundID); err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	items, err := h.inventoryService.RoundAvailability(r.Context(), roundID)
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, items, nil)
}

func (h *RoundHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	sales, err := h.roundService.SalesSummary(r.Context(), pathParam(r, "roundID"))
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, sales, nil)
}

// ListOrders ?status= 先驗證狀態字串
func (h *RoundHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status model.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := model.ParseOrderStatus(raw)
		if err != nil {
			api.BadRequest(w, err)
			return
		}
		status = parsed
	}
	orders, err := h.orderService.ListRoundOrders(r.Context(), pathParam(r, "roundID"), status)
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, orders, nil)
}
