package service

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db/dbtest"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// PostgresCheckoutTestSuite 在真正的 postgres 上驗證 FOR SHARE / FOR UPDATE 與狀態 CAS
// 需設定 ROUNDSALE_TEST_POSTGRES_DSN，否則略過
type PostgresCheckoutTestSuite struct {
	serviceSuite
	dsn string
}

func TestPostgresCheckoutTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresCheckoutTestSuite))
}

func (suite *PostgresCheckoutTestSuite) SetupSuite() {
	suite.dsn = os.Getenv(dbtest.PostgresDSNEnv)
	if suite.dsn == "" {
		suite.T().Skipf("%s is not set", dbtest.PostgresDSNEnv)
	}
}

func (suite *PostgresCheckoutTestSuite) SetupTest() {
	store, err := dbtest.NewPostgresDB(suite.dsn)
	require.NoError(suite.T(), err)
	suite.setupWithStore(store)
}

// concurrentSubmit 每個請求使用不同顧客，回傳成功的訂單與所有錯誤
func (suite *PostgresCheckoutTestSuite) concurrentSubmit(shopID, roundID string, quantities []int, product *model.Product) ([]*model.Order, []error) {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		orders []*model.Order
		errs   []error
	)
	start := make(chan struct{})
	for i, qty := range quantities {
		cart := suite.cartOf(shopID, roundID, lineOf(product, qty))
		wg.Add(1)
		go func(i int, cart *model.Cart) {
			defer wg.Done()
			<-start
			order, err := suite.checkout.Submit(suite.ctx, CheckoutInput{
				Cart:     cart,
				Customer: customer(fmt.Sprintf("08%08d", i)),
				ShopID:   shopID,
				RoundID:  roundID,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			orders = append(orders, order)
		}(i, cart)
	}
	close(start)
	wg.Wait()
	return orders, errs
}

func (suite *PostgresCheckoutTestSuite) TestConcurrentCheckoutLastUnit() {
	shop := suite.newShop("")
	round := suite.newRound(shop.ID)
	p := suite.newProduct(shop.ID, 100, dbtest.IntPtr(1))

	orders, errs := suite.concurrentSubmit(shop.ID, round.ID, []int{1, 1, 1, 1, 1, 1, 1, 1}, p)
	suite.Len(orders, 1)
	suite.Len(errs, 7)
	for _, err := range errs {
		suite.ErrorIs(err, ErrStockExceeded)
	}
	suite.Equal(int64(1), suite.countOrders(round.ID))
}

func (suite *PostgresCheckoutTestSuite) TestConcurrentCheckoutNeverOversells() {
	const limit = 5
	shop := suite.newShop("")
	round := suite.newRound(shop.ID)
	p := suite.newProduct(shop.ID, 100, dbtest.IntPtr(limit))

	quantities := make([]int, 12)
	for i := range quantities {
		quantities[i] = i%2 + 1
	}
	orders, errs := suite.concurrentSubmit(shop.ID, round.ID, quantities, p)
	for _, err := range errs {
		suite.ErrorIs(err, ErrStockExceeded)
	}

	accepted := 0
	for _, o := range orders {
		accepted += o.Items[0].Quantity
	}
	suite.LessOrEqual(accepted, limit)

	sold, err := suite.store.GetSoldQuantities(suite.ctx, round.ID, []string{p.ID})
	require.NoError(suite.T(), err)
	suite.Equal(accepted, sold[p.ID])

	remaining, err := suite.inventory.Remaining(suite.ctx, round.ID, p)
	require.NoError(suite.T(), err)
	suite.Equal(limit-accepted, *remaining)
}

// 同一訂單同時多次確認，只有一個寫入者成功
func (suite *PostgresCheckoutTestSuite) TestConcurrentTransitionsOneWins() {
	shop := suite.newShop("")
	round := suite.newRound(shop.ID)
	p := suite.newProduct(shop.ID, 100, nil)
	order, err := suite.submit(shop.ID, round.ID, lineOf(p, 1))
	require.NoError(suite.T(), err)

	results := make([]error, 5)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = suite.stateMachine.Transition(suite.ctx, order.ID, model.OrderStatusConfirmed, TransitionPayload{})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		suite.True(errors.Is(err, ErrInvalidTransition), err)
	}
	suite.Equal(1, succeeded)

	stored, err := suite.store.GetOrderByID(suite.ctx, order.ID)
	require.NoError(suite.T(), err)
	suite.Equal(model.OrderStatusConfirmed, stored.Status)

	suite.stateMachine.Wait()
	suite.Len(suite.notifier.changedEvents(), 1)
}

func (suite *PostgresCheckoutTestSuite) TestCancelReleasesStock() {
	shop := suite.newShop("")
	round := suite.newRound(shop.ID)
	p := suite.newProduct(shop.ID, 100, dbtest.IntPtr(2))

	order, err := suite.submit(shop.ID, round.ID, lineOf(p, 2))
	require.NoError(suite.T(), err)
	_, err = suite.submit(shop.ID, round.ID, lineOf(p, 1))
	suite.ErrorIs(err, ErrStockExceeded)

	_, err = suite.stateMachine.Transition(suite.ctx, order.ID, model.OrderStatusCancelled, TransitionPayload{})
	require.NoError(suite.T(), err)

	orders, errs := suite.concurrentSubmit(shop.ID, round.ID, []int{1, 1, 1}, p)
	suite.Len(orders, 2)
	suite.Len(errs, 1)
}
