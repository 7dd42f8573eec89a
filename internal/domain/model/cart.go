package model

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrCartScopeMismatch = errors.New("cart belongs to another shop or round")
	ErrCartLineNotFound  = errors.New("cart line not found")
	ErrInvalidQuantity   = errors.New("quantity out of range")
	ErrInvalidPrice      = errors.New("price must not be negative")
)

// MaxLineQuantity 單列數量上限，合併後也不可超過
const MaxLineQuantity = 10000

// CartLine 加入購物車當下的價格快照，結帳時以此價格計算
type CartLine struct {
	ProductID       string            `json:"product_id"`
	Name            string            `json:"name"`
	Price           decimal.Decimal   `json:"price"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}

// Key 相同商品且相同選項視為同一列
func (l CartLine) Key() string {
	if len(l.SelectedOptions) == 0 {
		return l.ProductID
	}
	keys := make([]string, 0, len(l.SelectedOptions))
	for k := range l.SelectedOptions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(l.ProductID)
	for _, k := range keys {
		sb.WriteString("|")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(l.SelectedOptions[k])
	}
	return sb.String()
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l CartLine) Validate() error {
	if l.Quantity <= 0 || l.Quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if l.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// Cart 以 session 為範圍的購物車，只屬於一個商家的一個開團
// 切換商家或開團必須明確呼叫 Switch，AddItem 不會默默清空
type Cart struct {
	SessionID string     `json:"session_id,omitempty"`
	ShopID    string     `json:"shop_id"`
	RoundID   string     `json:"round_id"`
	Lines     []CartLine `json:"lines"`
}

func NewCart(sessionID, shopID, roundID string) *Cart {
	return &Cart{SessionID: sessionID, ShopID: shopID, RoundID: roundID}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// AddItem 空購物車會綁定到傳入的 shop/round
// 非空購物車的 shop/round 不同時回傳 ErrCartScopeMismatch
func (c *Cart) AddItem(shopID, roundID string, line CartLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	if c.IsEmpty() {
		c.ShopID = shopID
		c.RoundID = roundID
	} else if c.ShopID != shopID || c.RoundID != roundID {
		return ErrCartScopeMismatch
	}

	key := line.Key()
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			if c.Lines[i].Quantity > MaxLineQuantity-line.Quantity {
				return ErrInvalidQuantity
			}
			c.Lines[i].Quantity += line.Quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// SetQuantity quantity <= 0 等同移除
func (c *Cart) SetQuantity(key string, quantity int) error {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			if quantity <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return nil
			}
			if quantity > MaxLineQuantity {
				return ErrInvalidQuantity
			}
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrCartLineNotFound
}

func (c *Cart) RemoveItem(key string) error {
	return c.SetQuantity(key, 0)
}

// Switch 清空並改綁到新的 shop/round
func (c *Cart) Switch(shopID, roundID string) {
	c.ShopID = shopID
	c.RoundID = roundID
	c.Lines = nil
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (c *Cart) TotalQuantity() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// CartSummary 運費計算只需要的兩個數字
type CartSummary struct {
	Subtotal      decimal.Decimal
	TotalQuantity int
}

func (c *Cart) Summary() CartSummary {
	return CartSummary{Subtotal: c.Subtotal(), TotalQuantity: c.TotalQuantity()}
}
