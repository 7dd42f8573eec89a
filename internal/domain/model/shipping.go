package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type ShippingMode string

const (
	ShippingModePerOrder ShippingMode = "PER_ORDER"
	ShippingModePerPiece ShippingMode = "PER_PIECE"
)

var ErrInvalidShippingRates = errors.New("invalid shipping rates")

// ShippingRates 運費設定，只有以下四種型別
//   - PerOrderRates: 每筆訂單固定運費
//   - PerPieceRates: 每件運費 * 總件數
//   - LegacyDistanceRates: 舊格式 {basePrice, freeShippingOver}
//   - UnsetRates: 未設定，使用系統預設運費
type ShippingRates interface {
	isShippingRates()
}

type PerOrderRates struct {
	Rate decimal.Decimal
}

type PerPieceRates struct {
	Rate decimal.Decimal
}

type LegacyDistanceRates struct {
	BasePrice        decimal.Decimal
	FreeShippingOver decimal.Decimal
}

type UnsetRates struct{}

func (PerOrderRates) isShippingRates()       {}
func (PerPieceRates) isShippingRates()       {}
func (LegacyDistanceRates) isShippingRates() {}
func (UnsetRates) isShippingRates()          {}

func IsUnset(r ShippingRates) bool {
	if r == nil {
		return true
	}
	_, ok := r.(UnsetRates)
	return ok
}

// 儲存在 DB 的 JSON 形狀，新舊格式共用
type shippingRatesJSON struct {
	Mode             ShippingMode     `json:"mode,omitempty"`
	PerOrderRate     *decimal.Decimal `json:"perOrderRate,omitempty"`
	PerPieceRate     *decimal.Decimal `json:"perPieceRate,omitempty"`
	BasePrice        *decimal.Decimal `json:"basePrice,omitempty"`
	FreeShippingOver *decimal.Decimal `json:"freeShippingOver,omitempty"`
}

// ParseShippingRates 只在邊界做一次格式判斷，之後一律以型別處理
// 空值或 null 回傳 UnsetRates；無法辨識的形狀也回傳 UnsetRates
// JSON 格式錯誤或金額為負數時回傳 ErrInvalidShippingRates
func ParseShippingRates(raw []byte) (ShippingRates, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return UnsetRates{}, nil
	}

	var v shippingRatesJSON
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShippingRates, err)
	}

	for _, d := range []*decimal.Decimal{v.PerOrderRate, v.PerPieceRate, v.BasePrice, v.FreeShippingOver} {
		if d != nil && d.IsNegative() {
			return nil, fmt.Errorf("%w: negative amount %s", ErrInvalidShippingRates, d.String())
		}
	}

	switch v.Mode {
	case ShippingModePerOrder:
		if v.PerOrderRate == nil {
			return UnsetRates{}, nil
		}
		return PerOrderRates{Rate: *v.PerOrderRate}, nil
	case ShippingModePerPiece:
		if v.PerPieceRate == nil {
			return UnsetRates{}, nil
		}
		return PerPieceRates{Rate: *v.PerPieceRate}, nil
	case "":
		if v.BasePrice != nil {
			legacy := LegacyDistanceRates{BasePrice: *v.BasePrice}
			if v.FreeShippingOver != nil {
				legacy.FreeShippingOver = *v.FreeShippingOver
			}
			return legacy, nil
		}
		return UnsetRates{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidShippingRates, v.Mode)
	}
}

// ShippingRatesOrUnset 讀取路徑使用，設定有問題時不能阻擋結帳
func ShippingRatesOrUnset(raw []byte) ShippingRates {
	rates, err := ParseShippingRates(raw)
	if err != nil {
		return UnsetRates{}
	}
	return rates
}

// EncodeShippingRates 寫回新格式，UnsetRates 回傳 nil
func EncodeShippingRates(r ShippingRates) ([]byte, error) {
	var v shippingRatesJSON
	switch rates := r.(type) {
	case PerOrderRates:
		v.Mode = ShippingModePerOrder
		v.PerOrderRate = &rates.Rate
	case PerPieceRates:
		v.Mode = ShippingModePerPiece
		v.PerPieceRate = &rates.Rate
	case LegacyDistanceRates:
		v.BasePrice = &rates.BasePrice
		v.FreeShippingOver = &rates.FreeShippingOver
	case UnsetRates, nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidShippingRates, r)
	}
	return json.Marshal(v)
}
