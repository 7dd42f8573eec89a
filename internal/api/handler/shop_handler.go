package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/roundsale/internal/api/dto"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/api"
	"github.com/RoyceAzure/lab/roundsale/internal/service"
)

type ShopHandler struct {
	catalogService service.ICatalogService
}

func NewShopHandler(catalogService service.ICatalogService) *ShopHandler {
	if catalogService == nil {
		panic("catalogService cannot be nil")
	}
	return &ShopHandler{catalogService: catalogService}
}

func (h *ShopHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateShopDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}

	shop, err := h.catalogService.CreateShop(r.Context(), service.CreateShopInput{
		Slug:          req.Slug,
		Name:          req.Name,
		ShippingRates: req.ShippingRates,
		BankName:      req.BankName,
		BankAccount:   req.BankAccount,
		AccountName:   req.AccountName,
		PromptPayID:   req.PromptPayID,
	})
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.CreatedJSON(w, shop)
}

func (h *ShopHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	shop, err := h.catalogService.GetShop(r.Context(), pathParam(r, "shopID"))
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, shop, nil)
}

func toProductInput(req dto.ProductDTO) service.ProductInput {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	return service.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		LimitPerRound: req.LimitPerRound,
		IsAvailable:   available,
		Options:       req.Options,
	}
}

func (h *ShopHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	product, err := h.catalogService.CreateProduct(r.Context(), pathParam(r, "shopID"), toProductInput(req))
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.CreatedJSON(w, product)
}

func (h *ShopHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductDTO
	if err := decodeJSON(w, r, &req); err != nil {
		api.BadRequest(w, err)
		return
	}
	product, err := h.catalogService.UpdateProduct(r.Context(), pathParam(r, "shopID"), pathParam(r, "productID"), toProductInput(req))
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, product, nil)
}

// ListProducts ?available=true 只列出上架中的商品
func (h *ShopHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	onlyAvailable := r.URL.Query().Get("available") == "true"
	products, err := h.catalogService.ListProducts(r.Context(), pathParam(r, "shopID"), onlyAvailable)
	if err != nil {
		ServiceErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, products, nil)
}
