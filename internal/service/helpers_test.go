package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/domain/model/event"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db/dbtest"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/redis_repo"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeNotifier struct {
	mu      sync.Mutex
	created []*event.OrderCreated
	changed []*event.OrderStatusChanged
	err     error
}

func (f *fakeNotifier) NotifyOrderCreated(ctx context.Context, evt *event.OrderCreated) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, evt)
	return f.err
}

func (f *fakeNotifier) NotifyOrderStatusChanged(ctx context.Context, evt *event.OrderStatusChanged) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, evt)
	return f.err
}

func (f *fakeNotifier) Close() error { return nil }

func (f *fakeNotifier) createdEvents() []*event.OrderCreated {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*event.OrderCreated(nil), f.created...)
}

func (f *fakeNotifier) changedEvents() []*event.OrderStatusChanged {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*event.OrderStatusChanged(nil), f.changed...)
}

// serviceSuite 每個測試一個全新的 sqlite 與 miniredis
type serviceSuite struct {
	suite.Suite
	ctx          context.Context
	store        *db.UnifiedDBImpl
	mr           *miniredis.Miniredis
	rdb          *redis.Client
	logger       zerolog.Logger
	notifier     *fakeNotifier
	inventory    *InventoryService
	checkout     *CheckoutService
	stateMachine *OrderStateMachine
	carts        *redis_repo.CartRepo
}

func (s *serviceSuite) SetupTest() {
	store, err := dbtest.NewMemoryDB()
	require.NoError(s.T(), err)
	s.setupWithStore(store)
}

func (s *serviceSuite) setupWithStore(store *db.UnifiedDBImpl) {
	s.ctx = context.Background()
	s.store = store

	s.mr = miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.carts = redis_repo.NewCartRepo(s.rdb, time.Hour)

	s.logger = zerolog.Nop()
	s.notifier = &fakeNotifier{}
	s.inventory = NewInventoryService(store, redis_repo.NewAvailabilityRepo(s.rdb, time.Minute), &s.logger)
	s.checkout = NewCheckoutService(store, NewShippingCalculator(DefaultShippingCost), s.inventory, s.notifier,
		CheckoutConfig{OrderCodeRetry: 3, NotifyTimeout: time.Second}, &s.logger, WithCartStore(s.carts))
	s.stateMachine = NewOrderStateMachine(store, s.inventory, s.notifier, time.Second, &s.logger)
}

func (s *serviceSuite) TearDownTest() {
	s.checkout.Wait()
	s.stateMachine.Wait()
	s.rdb.Close()
	if sqlDB, err := s.store.GetDB().DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *serviceSuite) newShop(rates string) *model.Shop {
	var raw []byte
	if rates != "" {
		raw = []byte(rates)
	}
	shop, err := dbtest.NewShop(s.ctx, s.store, raw)
	require.NoError(s.T(), err)
	return shop
}

func (s *serviceSuite) newRound(shopID string) *model.Round {
	round, err := dbtest.NewOpenRound(s.ctx, s.store, shopID)
	require.NoError(s.T(), err)
	return round
}

func (s *serviceSuite) newProduct(shopID string, price int64, limit *int) *model.Product {
	product, err := dbtest.NewProduct(s.ctx, s.store, shopID, price, limit)
	require.NoError(s.T(), err)
	return product
}

func (s *serviceSuite) cartOf(shopID, roundID string, lines ...model.CartLine) *model.Cart {
	cart := model.NewCart("", shopID, roundID)
	for _, l := range lines {
		require.NoError(s.T(), cart.AddItem(shopID, roundID, l))
	}
	return cart
}

func lineOf(p *model.Product, qty int) model.CartLine {
	return model.CartLine{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty}
}

func customer(phone string) CustomerInfo {
	return CustomerInfo{Name: "Somchai", Phone: phone, Address: "99 Sukhumvit Rd"}
}

func (s *serviceSuite) submit(shopID, roundID string, lines ...model.CartLine) (*model.Order, error) {
	return s.checkout.Submit(s.ctx, CheckoutInput{
		Cart:     s.cartOf(shopID, roundID, lines...),
		Customer: customer("0811111111"),
		ShopID:   shopID,
		RoundID:  roundID,
	})
}

// forceStatus 直接改 DB，用來準備各種起始狀態
func (s *serviceSuite) forceStatus(orderID string, status model.OrderStatus) {
	err := s.store.GetDB().Model(&model.Order{}).Where("id = ?", orderID).Update("status", status).Error
	require.NoError(s.T(), err)
}

func (s *serviceSuite) countOrders(roundID string) int64 {
	count, err := s.store.CountOrdersByRoundID(s.ctx, roundID)
	require.NoError(s.T(), err)
	return count
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

var errNotifyDown = errors.New("notifier down")
