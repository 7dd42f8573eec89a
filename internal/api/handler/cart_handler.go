package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/roundsale/internal/api/dto"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/api"
	"github.com/RoyceAzure/lab/roundsale/internal/service"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.GetCart(r.Context(), pathParam(r, "sessionID"))
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertCart(cart), nil)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	cart, err := h.cartService.AddItem(r.Context(), pathParam(r, "sessionID"), service.AddCartItemInput{
		ShopID:          req.ShopID,
		RoundID:         req.RoundID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		SelectedOptions: req.SelectedOptions,
	})
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertCart(cart), nil)
}

// SetQuantity 數量 <= 0 等同移除
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req dto.CartQuantityDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	cart, err := h.cartService.SetQuantity(r.Context(), pathParam(r, "sessionID"), pathParam(r, "lineKey"), req.Quantity)
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertCart(cart), nil)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.RemoveItem(r.Context(), pathParam(r, "sessionID"), pathParam(r, "lineKey"))
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertCart(cart), nil)
}

// SwitchRound 清空購物車並改綁其他開團
func (h *CartHandler) SwitchRound(w http.ResponseWriter, r *http.Request) {
	var req dto.SwitchCartDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	cart, err := h.cartService.SwitchRound(r.Context(), pathParam(r, "sessionID"), req.ShopID, req.RoundID)
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertCart(cart), nil)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.Clear(r.Context(), pathParam(r, "sessionID")); err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
