package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model/event"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/producer"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CustomerInfo struct {
	Name     string
	Phone    string
	LineID   string
	Address  string
	Note     string
	Location *model.GeoPoint
}

// ContactInfo 顧客在商家內的識別，優先使用電話
func (c CustomerInfo) ContactInfo() string {
	if phone := strings.TrimSpace(c.Phone); phone != "" {
		return phone
	}
	return strings.TrimSpace(c.LineID)
}

type CheckoutInput struct {
	Cart     *model.Cart
	Customer CustomerInfo
	ShopID   string
	RoundID  string
	// 前端算好的運費，只作為比對用
	ClientShippingCost *decimal.Decimal
}

type CheckoutConfig struct {
	OrderCodeRetry int
	NotifyTimeout  time.Duration
}

// CartStore session 購物車
type CartStore interface {
	Get(ctx context.Context, sessionID string) (*model.Cart, error)
	Update(ctx context.Context, sessionID string, fn func(cart *model.Cart) error) (*model.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

type ICheckoutService interface {
	Submit(ctx context.Context, in CheckoutInput) (*model.Order, error)
	SubmitSessionCart(ctx context.Context, sessionID string, in CheckoutInput) (*model.Order, error)
	PreviewShipping(ctx context.Context, roundID string, cart model.CartSummary) (decimal.Decimal, error)
}

type CheckoutService struct {
	store      db.UnifiedDB
	calculator *ShippingCalculator
	inventory  IInventoryService
	carts      CartStore
	notify     *notificationDispatcher
	newCode    OrderCodeGenerator
	now        func() time.Time
	cfg        CheckoutConfig
	logger     *zerolog.Logger
}

type CheckoutOption func(*CheckoutService)

func WithOrderCodeGenerator(gen OrderCodeGenerator) CheckoutOption {
	return func(s *CheckoutService) {
		s.newCode = gen
	}
}

func WithClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) {
		s.now = now
	}
}

// WithCartStore 啟用 SubmitSessionCart
func WithCartStore(carts CartStore) CheckoutOption {
	return func(s *CheckoutService) {
		s.carts = carts
	}
}

func NewCheckoutService(
	store db.UnifiedDB,
	calculator *ShippingCalculator,
	inventory IInventoryService,
	notifier producer.Notifier,
	cfg CheckoutConfig,
	logger *zerolog.Logger,
	opts ...CheckoutOption,
) *CheckoutService {
	if cfg.OrderCodeRetry <= 0 {
		cfg.OrderCodeRetry = 1
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 5 * time.Second
	}
	s := &CheckoutService{
		store:      store,
		calculator: calculator,
		inventory:  inventory,
		notify:     newNotificationDispatcher(notifier, cfg.NotifyTimeout, logger),
		newCode:    NewOrderCode,
		now:        time.Now,
		cfg:        cfg,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit 將購物車轉成訂單
// 開團檢查、庫存檢查、顧客 upsert、訂單與明細寫入在同一個交易內
// 通知在 commit 之後非同步送出，失敗不影響結果
func (s *CheckoutService) Submit(ctx context.Context, in CheckoutInput) (*model.Order, error) {
	if err := validateCheckoutInput(in); err != nil {
		return nil, err
	}

	var (
		result *checkoutResult
		err    error
	)
	for attempt := 1; attempt <= s.cfg.OrderCodeRetry; attempt++ {
		result, err = s.submitOnce(ctx, in)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrPersistence) || !db.IsUniqueViolation(err) {
			return nil, err
		}
		s.logger.Warn().Err(err).Int("attempt", attempt).Msg("order code collision, retrying")
	}
	if err != nil {
		return nil, err
	}

	order := result.order
	s.inventory.Invalidate(ctx, order.RoundID)

	evt := event.NewOrderCreated(result.shop, order, order.Customer)
	s.notify.dispatch("order_created", order.Code, func(ctx context.Context, n producer.Notifier) error {
		return n.NotifyOrderCreated(ctx, evt)
	})

	s.logger.Info().
		Str("order_code", order.Code).
		Str("round_id", order.RoundID).
		Str("grand_total", order.GrandTotal.String()).
		Msg("order created")
	return order, nil
}

// SubmitSessionCart 使用 redis 中的購物車結帳，成功後清空購物車
func (s *CheckoutService) SubmitSessionCart(ctx context.Context, sessionID string, in CheckoutInput) (*model.Order, error) {
	if s.carts == nil {
		return nil, newValidationError("session_id", "session carts are not enabled")
	}
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, persistenceErr(err, "cart")
	}
	in.Cart = cart
	if in.ShopID == "" {
		in.ShopID = cart.ShopID
	}
	if in.RoundID == "" {
		in.RoundID = cart.RoundID
	}

	order, err := s.Submit(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to clear cart after checkout")
	}
	return order, nil
}

// PreviewShipping 與結帳使用同一份設定與計算
func (s *CheckoutService) PreviewShipping(ctx context.Context, roundID string, cart model.CartSummary) (decimal.Decimal, error) {
	round, err := s.store.GetRoundByID(ctx, roundID)
	if err != nil {
		return decimal.Zero, persistenceErr(err, "round")
	}
	shop, err := s.store.GetShopByID(ctx, round.ShopID)
	if err != nil {
		return decimal.Zero, persistenceErr(err, "shop")
	}
	return s.calculator.Cost(round.EffectiveRates(shop), cart), nil
}

type checkoutResult struct {
	order *model.Order
	shop  *model.Shop
}

func (s *CheckoutService) submitOnce(ctx context.Context, in CheckoutInput) (*checkoutResult, error) {
	var result *checkoutResult
	err := s.store.ExecTx(ctx, func(tx db.UnifiedDB) error {
		// 1. 開團檢查
		round, err := tx.GetRoundByIDForShare(ctx, in.RoundID)
		if err != nil {
			if db.IsNotFound(err) {
				return ErrRoundClosed
			}
			return persistenceErr(err, "round")
		}
		if round.ShopID != in.ShopID || !round.AcceptsOrders(s.now()) {
			return ErrRoundClosed
		}

		shop, err := tx.GetShopByID(ctx, round.ShopID)
		if err != nil {
			return persistenceErr(err, "shop")
		}

		products, err := s.checkProducts(ctx, tx, round, in.Cart)
		if err != nil {
			return err
		}

		// 庫存檢查，鎖定後才重新計算已售數量
		if err := s.reserveStock(ctx, tx, round.ID, products, in.Cart); err != nil {
			return err
		}

		// 2. 金額
		summary := in.Cart.Summary()
		shippingCost := s.calculator.Cost(round.EffectiveRates(shop), summary)
		if in.ClientShippingCost != nil && !in.ClientShippingCost.Equal(shippingCost) {
			s.logger.Warn().
				Str("round_id", round.ID).
				Str("client_shipping_cost", in.ClientShippingCost.String()).
				Str("shipping_cost", shippingCost.String()).
				Msg("client shipping cost mismatch, using server value")
		}

		// 3. 顧客
		customer, err := tx.UpsertCustomer(ctx, &model.Customer{
			ID:          uuid.NewString(),
			ShopID:      shop.ID,
			ContactInfo: in.Customer.ContactInfo(),
			Name:        strings.TrimSpace(in.Customer.Name),
			Phone:       strings.TrimSpace(in.Customer.Phone),
			LineID:      strings.TrimSpace(in.Customer.LineID),
			Address:     strings.TrimSpace(in.Customer.Address),
		})
		if err != nil {
			return persistenceErr(err, "customer")
		}

		// 4. 訂單與明細
		order, err := s.buildOrder(round, customer, products, in, shippingCost)
		if err != nil {
			return err
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return persistenceErr(err, "order")
		}
		order.Customer = customer

		result = &checkoutResult{order: order, shop: shop}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkProducts 購物車中的商品必須屬於同一商家且仍上架
func (s *CheckoutService) checkProducts(ctx context.Context, tx db.UnifiedDB, round *model.Round, cart *model.Cart) (map[string]*model.Product, error) {
	ids := make([]string, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		ids = append(ids, l.ProductID)
	}
	found, err := tx.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, persistenceErr(err, "products")
	}

	products := make(map[string]*model.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		p, ok := products[id]
		if !ok || p.ShopID != round.ShopID || !p.IsAvailable {
			return nil, &productUnavailableError{productID: id}
		}
	}
	return products, nil
}

func (s *CheckoutService) reserveStock(ctx context.Context, tx db.UnifiedDB, roundID string, products map[string]*model.Product, cart *model.Cart) error {
	// 累加到超過上限就停止，避免多列相加溢位
	requested := make(map[string]int)
	for _, l := range cart.Lines {
		limit := products[l.ProductID].LimitPerRound
		if limit == nil {
			continue
		}
		if requested[l.ProductID] <= *limit {
			requested[l.ProductID] += l.Quantity
		}
	}
	if len(requested) == 0 {
		return nil
	}

	limited := make([]string, 0, len(requested))
	for id := range requested {
		limited = append(limited, id)
	}
	sort.Strings(limited)

	if err := tx.LockRoundProducts(ctx, roundID, limited); err != nil {
		return persistenceErr(err, "round product lock")
	}
	sold, err := tx.GetSoldQuantities(ctx, roundID, limited)
	if err != nil {
		return persistenceErr(err, "sold quantities")
	}

	for _, id := range limited {
		remaining := RemainingOf(products[id].LimitPerRound, sold[id])
		if requested[id] > *remaining {
			return &StockExceededError{ProductID: id, Requested: requested[id], Remaining: *remaining}
		}
	}
	return nil
}

// buildOrder 名稱取自商品快照，單價沿用加入購物車時的價格
func (s *CheckoutService) buildOrder(round *model.Round, customer *model.Customer, products map[string]*model.Product, in CheckoutInput, shippingCost decimal.Decimal) (*model.Order, error) {
	code, err := s.newCode(s.now())
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:           uuid.NewString(),
		Code:         code,
		ShopID:       round.ShopID,
		RoundID:      round.ID,
		CustomerID:   customer.ID,
		ShippingCost: shippingCost,
		Discount:     decimal.Zero,
		Status:       model.OrderStatusPending,
		Note:         strings.TrimSpace(in.Customer.Note),
		ShippingAddress: datatypes.NewJSONType(model.ShippingAddress{
			Name:     strings.TrimSpace(in.Customer.Name),
			Phone:    strings.TrimSpace(in.Customer.Phone),
			Address:  strings.TrimSpace(in.Customer.Address),
			Location: in.Customer.Location,
			Note:     strings.TrimSpace(in.Customer.Note),
		}),
		Items: make([]model.OrderItem, 0, len(in.Cart.Lines)),
	}

	total := decimal.Zero
	for _, l := range in.Cart.Lines {
		options := l.SelectedOptions
		if options == nil {
			options = map[string]string{}
		}
		lineTotal := l.LineTotal()
		order.Items = append(order.Items, model.OrderItem{
			ID:              uuid.NewString(),
			OrderID:         order.ID,
			ProductID:       l.ProductID,
			Name:            products[l.ProductID].Name,
			Price:           l.Price,
			Quantity:        l.Quantity,
			SelectedOptions: datatypes.NewJSONType(options),
			TotalPrice:      lineTotal,
		})
		total = total.Add(lineTotal)
	}
	order.TotalAmount = total
	order.RecalculateGrandTotal()
	return order, nil
}

type productUnavailableError struct {
	productID string
}

func (e *productUnavailableError) Error() string {
	return "product " + e.productID + " is unavailable"
}

func (e *productUnavailableError) Unwrap() error {
	return ErrProductUnavailable
}

func validateCheckoutInput(in CheckoutInput) error {
	if in.Cart == nil || in.Cart.IsEmpty() {
		return newValidationError("items", "cart is empty")
	}
	if in.ShopID == "" {
		return newValidationError("shop_id", "required")
	}
	if in.RoundID == "" {
		return newValidationError("round_id", "required")
	}
	if in.Cart.ShopID != "" && (in.Cart.ShopID != in.ShopID || in.Cart.RoundID != in.RoundID) {
		return newValidationError("items", model.ErrCartScopeMismatch.Error())
	}
	for _, l := range in.Cart.Lines {
		if l.ProductID == "" {
			return newValidationError("items.product_id", "required")
		}
		if err := l.Validate(); err != nil {
			return newValidationError("items", err.Error())
		}
	}
	if strings.TrimSpace(in.Customer.Name) == "" {
		return newValidationError("customer.name", "required")
	}
	if in.Customer.ContactInfo() == "" {
		return newValidationError("customer.phone", "phone or line id required")
	}
	return nil
}

var _ ICheckoutService = (*CheckoutService)(nil)

// Wait 等待尚未送出的通知
func (s *CheckoutService) Wait() {
	s.notify.Wait()
}
