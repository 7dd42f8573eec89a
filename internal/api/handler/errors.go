package handler

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/api"
	"github.com/RoyceAzure/lab/roundsale/internal/service"
)

// StatusOf service 錯誤對應的 http status
func StatusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, model.ErrInvalidQuantity),
		errors.Is(err, model.ErrInvalidPrice):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, model.ErrCartLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRoundClosed),
		errors.Is(err, service.ErrStockExceeded),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrRoundHasOrders),
		errors.Is(err, model.ErrCartScopeMismatch),
		errors.Is(err, redis_repo.ErrCartConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidRoundStatus),
		errors.Is(err, service.ErrDiscountNotAllowed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ServiceErrorJSON 超賣與狀態異動錯誤會附上明細
func ServiceErrorJSON(w http.ResponseWriter, err error) {
	code := StatusOf(err)
	body := api.ResponseError{Code: code, Message: http.StatusText(code)}

	var stockErr *service.StockExceededError
	var transErr *service.TransitionError
	switch {
	case errors.As(err, &stockErr):
		body.Data = map[string]any{
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"remaining":  stockErr.Remaining,
		}
	case errors.As(err, &transErr):
		body.Data = map[string]any{
			"from": transErr.From,
			"to":   transErr.To,
		}
	}

	// 內部錯誤不回傳細節
	if code >= http.StatusInternalServerError {
		body.Error = "internal error"
		if code == http.StatusServiceUnavailable {
			body.Error = service.ErrPersistence.Error()
		}
	} else {
		body.Error = err.Error()
	}
	api.WriteJSON(w, code, body)
}
