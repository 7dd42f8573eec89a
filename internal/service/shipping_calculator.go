package service

import (
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/shopspring/decimal"
)

var DefaultShippingCost = decimal.NewFromInt(50)

// ShippingCalculator 無副作用，前台預覽與結帳共用同一個計算
type ShippingCalculator struct {
	defaultCost decimal.Decimal
}

func NewShippingCalculator(defaultCost decimal.Decimal) *ShippingCalculator {
	if defaultCost.IsNegative() {
		defaultCost = DefaultShippingCost
	}
	return &ShippingCalculator{defaultCost: defaultCost}
}

// Cost 回傳值不會是負數
func (c *ShippingCalculator) Cost(rates model.ShippingRates, cart model.CartSummary) decimal.Decimal {
	var cost decimal.Decimal

	switch r := rates.(type) {
	case model.PerOrderRates:
		cost = r.Rate
	case model.PerPieceRates:
		cost = r.Rate.Mul(decimal.NewFromInt(int64(cart.TotalQuantity)))
	case model.LegacyDistanceRates:
		if r.FreeShippingOver.IsPositive() && cart.Subtotal.GreaterThanOrEqual(r.FreeShippingOver) {
			cost = decimal.Zero
		} else {
			cost = r.BasePrice
		}
	case model.UnsetRates, nil:
		cost = c.defaultCost
	default:
		cost = c.defaultCost
	}

	if cost.IsNegative() {
		return decimal.Zero
	}
	return cost
}
