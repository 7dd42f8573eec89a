package model

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(productID string, price int64, qty int, opts map[string]string) CartLine {
	return CartLine{ProductID: productID, Name: productID, Price: decimal.NewFromInt(price), Quantity: qty, SelectedOptions: opts}
}

func TestCartAddItemBindsScope(t *testing.T) {
	cart := NewCart("s1", "", "")
	require.NoError(t, cart.AddItem("shop-a", "round-1", line("p1", 100, 1, nil)))
	assert.Equal(t, "shop-a", cart.ShopID)
	assert.Equal(t, "round-1", cart.RoundID)

	// 不同開團不能混在同一個購物車
	err := cart.AddItem("shop-a", "round-2", line("p2", 100, 1, nil))
	assert.ErrorIs(t, err, ErrCartScopeMismatch)
	err = cart.AddItem("shop-b", "round-1", line("p2", 100, 1, nil))
	assert.ErrorIs(t, err, ErrCartScopeMismatch)
	assert.Len(t, cart.Lines, 1)

	cart.Switch("shop-b", "round-9")
	assert.True(t, cart.IsEmpty())
	require.NoError(t, cart.AddItem("shop-b", "round-9", line("p2", 100, 1, nil)))
}

func TestCartMergesSameProductAndOptions(t *testing.T) {
	cart := NewCart("s1", "shop", "round")
	require.NoError(t, cart.AddItem("shop", "round", line("p1", 100, 1, map[string]string{"size": "L", "color": "red"})))
	require.NoError(t, cart.AddItem("shop", "round", line("p1", 100, 2, map[string]string{"color": "red", "size": "L"})))
	require.NoError(t, cart.AddItem("shop", "round", line("p1", 100, 1, map[string]string{"size": "M"})))

	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, 4, cart.TotalQuantity())
	assert.True(t, decimal.NewFromInt(400).Equal(cart.Subtotal()))
}

func TestCartRejectsInvalidLines(t *testing.T) {
	cart := NewCart("s1", "", "")
	assert.ErrorIs(t, cart.AddItem("shop", "round", line("p1", 100, 0, nil)), ErrInvalidQuantity)
	assert.ErrorIs(t, cart.AddItem("shop", "round", line("p1", -1, 1, nil)), ErrInvalidPrice)
	assert.True(t, cart.IsEmpty())
	assert.Empty(t, cart.ShopID)
}

func TestCartQuantityUpperBound(t *testing.T) {
	cart := NewCart("s1", "", "")
	assert.ErrorIs(t, cart.AddItem("shop", "round", line("p1", 1, math.MaxInt, nil)), ErrInvalidQuantity)
	assert.ErrorIs(t, cart.AddItem("shop", "round", line("p1", 1, MaxLineQuantity+1, nil)), ErrInvalidQuantity)
	assert.True(t, cart.IsEmpty())

	// 合併後超過上限時保留原數量
	require.NoError(t, cart.AddItem("shop", "round", line("p1", 1, MaxLineQuantity, nil)))
	assert.ErrorIs(t, cart.AddItem("shop", "round", line("p1", 1, 1, nil)), ErrInvalidQuantity)
	assert.Equal(t, MaxLineQuantity, cart.Lines[0].Quantity)

	assert.ErrorIs(t, cart.SetQuantity("p1", MaxLineQuantity+1), ErrInvalidQuantity)
	assert.ErrorIs(t, (CartLine{ProductID: "p2", Quantity: math.MaxInt}).Validate(), ErrInvalidQuantity)
}

func TestCartSetQuantityAndRemove(t *testing.T) {
	cart := NewCart("s1", "shop", "round")
	require.NoError(t, cart.AddItem("shop", "round", line("p1", 50, 1, nil)))
	require.NoError(t, cart.AddItem("shop", "round", line("p2", 30, 1, nil)))

	require.NoError(t, cart.SetQuantity("p1", 5))
	assert.Equal(t, 6, cart.TotalQuantity())

	require.NoError(t, cart.RemoveItem("p2"))
	assert.Len(t, cart.Lines, 1)
	assert.ErrorIs(t, cart.RemoveItem("p2"), ErrCartLineNotFound)

	summary := cart.Summary()
	assert.Equal(t, 5, summary.TotalQuantity)
	assert.True(t, decimal.NewFromInt(250).Equal(summary.Subtotal))
}
