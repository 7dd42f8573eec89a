package service

import (
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
)

var (
	ErrRoundClosed        = errors.New("round is closed")
	ErrStockExceeded      = errors.New("stock exceeded")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrPersistence        = errors.New("persistence failure")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrRoundHasOrders     = errors.New("round has orders")
	ErrInvalidRoundStatus = errors.New("invalid round status transition")
	ErrDiscountNotAllowed = errors.New("discount can only change before confirmation")
)

// StockExceededError 要求數量超過開團剩餘數量
type StockExceededError struct {
	ProductID string
	Requested int
	Remaining int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("stock exceeded for product %s: requested %d, remaining %d", e.ProductID, e.Requested, e.Remaining)
}

func (e *StockExceededError) Unwrap() error {
	return ErrStockExceeded
}

// TransitionError 訂單狀態不變
type TransitionError struct {
	From   model.OrderStatus
	To     model.OrderStatus
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot transition order from %s to %s: %s", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// persistenceErr 找不到資料轉成 ErrNotFound，其餘視為可重試的儲存錯誤
func persistenceErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if db.IsNotFound(err) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, what, err)
}
