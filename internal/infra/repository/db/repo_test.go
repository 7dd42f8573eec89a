package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db/dbtest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/datatypes"
)

var errTestRollback = errors.New("rollback")

type RepoTestSuite struct {
	suite.Suite
	store *db.UnifiedDBImpl
	ctx   context.Context
}

func TestRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RepoTestSuite))
}

// SetupSuite 在測試套件開始前執行
func (suite *RepoTestSuite) SetupSuite() {
	store, err := dbtest.NewMemoryDB()
	require.NoError(suite.T(), err)
	suite.store = store
	suite.ctx = context.Background()
}

// SetupTest 在每個測試前執行
func (suite *RepoTestSuite) SetupTest() {
	dbtest.Truncate(suite.store)
}

func (suite *RepoTestSuite) TearDownSuite() {
	sqlDB, _ := suite.store.GetDB().DB()
	sqlDB.Close()
}

func (suite *RepoTestSuite) newOrder(shopID, roundID, customerID string, status model.OrderStatus, items map[string]int) *model.Order {
	order := &model.Order{
		ID:         uuid.NewString(),
		Code:       uuid.NewString()[:12],
		ShopID:     shopID,
		RoundID:    roundID,
		CustomerID: customerID,
		Status:     status,
	}
	for productID, qty := range items {
		price := decimal.NewFromInt(100)
		total := price.Mul(decimal.NewFromInt(int64(qty)))
		order.Items = append(order.Items, model.OrderItem{
			ID:              uuid.NewString(),
			ProductID:       productID,
			Name:            "item",
			Price:           price,
			Quantity:        qty,
			TotalPrice:      total,
			SelectedOptions: datatypes.NewJSONType(map[string]string{}),
		})
		order.TotalAmount = order.TotalAmount.Add(total)
	}
	order.RecalculateGrandTotal()
	require.NoError(suite.T(), suite.store.CreateOrder(suite.ctx, order))
	return order
}

func (suite *RepoTestSuite) fixture() (*model.Shop, *model.Round, *model.Customer) {
	shop, err := dbtest.NewShop(suite.ctx, suite.store, nil)
	require.NoError(suite.T(), err)
	round, err := dbtest.NewOpenRound(suite.ctx, suite.store, shop.ID)
	require.NoError(suite.T(), err)
	customer, err := suite.store.UpsertCustomer(suite.ctx, &model.Customer{
		ID: uuid.NewString(), ShopID: shop.ID, ContactInfo: "0912000111", Name: "Alice", Phone: "0912000111",
	})
	require.NoError(suite.T(), err)
	return shop, round, customer
}

func (suite *RepoTestSuite) TestUpsertCustomerReusesExisting() {
	shop, _, first := suite.fixture()

	second, err := suite.store.UpsertCustomer(suite.ctx, &model.Customer{
		ID: uuid.NewString(), ShopID: shop.ID, ContactInfo: "0912000111", Name: "Someone Else",
	})
	require.NoError(suite.T(), err)
	suite.Equal(first.ID, second.ID)
	suite.Equal("Alice", second.Name)

	// 不同商家是不同顧客
	other, err := dbtest.NewShop(suite.ctx, suite.store, nil)
	require.NoError(suite.T(), err)
	third, err := suite.store.UpsertCustomer(suite.ctx, &model.Customer{
		ID: uuid.NewString(), ShopID: other.ID, ContactInfo: "0912000111", Name: "Alice",
	})
	require.NoError(suite.T(), err)
	suite.NotEqual(first.ID, third.ID)
}

func (suite *RepoTestSuite) TestCreateOrderWithItems() {
	shop, round, customer := suite.fixture()
	order := suite.newOrder(shop.ID, round.ID, customer.ID, model.OrderStatusPending, map[string]int{"p1": 2, "p2": 1})

	got, err := suite.store.GetOrderByCode(suite.ctx, order.Code)
	require.NoError(suite.T(), err)
	suite.Len(got.Items, 2)
	suite.Require().NotNil(got.Customer)
	suite.Equal(customer.ID, got.Customer.ID)
	suite.True(decimal.NewFromInt(300).Equal(got.GrandTotal))
}

func (suite *RepoTestSuite) TestDuplicateOrderCodeIsUniqueViolation() {
	shop, round, customer := suite.fixture()
	order := suite.newOrder(shop.ID, round.ID, customer.ID, model.OrderStatusPending, map[string]int{"p1": 1})

	dup := &model.Order{ID: uuid.NewString(), Code: order.Code, ShopID: shop.ID, RoundID: round.ID, CustomerID: customer.ID, Status: model.OrderStatusPending}
	err := suite.store.CreateOrder(suite.ctx, dup)
	suite.Error(err)
	suite.True(db.IsUniqueViolation(err))
}

func (suite *RepoTestSuite) TestSoldQuantitiesExcludeCancelled() {
	shop, round, customer := suite.fixture()
	suite.newOrder(shop.ID, round.ID, customer.ID, model.OrderStatusPending, map[string]int{"p1": 2, "p2": 1})
	suite.newOrder(shop.ID, round.ID, customer.ID, model.OrderStatusConfirmed, map[string]int{"p1": 3})
	suite.newOrder(shop.ID, round.ID, customer.ID, model.OrderStatusCancelled, map[string]int{"p1": 10})

	sold, err := suite.store.GetSoldQuantities(suite.ctx, round.ID, []string{"p1", "p2", "p3"})
	require.NoError(suite.T(), err)
	suite.Equal(5, sold["p1"])
	suite.Equal(1, sold["p2"])
	suite.Equal(0, sold["p3"])

	summary, err := suite.store.GetRoundSalesSummary(suite.ctx, round.ID)
	require.NoError(suite.T(), err)
	suite.Require().Len(summary, 2)
	suite.Equal("p1", summary[0].ProductID)
	suite.Equal(5, summary[0].Sold)
	suite.True(decimal.NewFromInt(500).Equal(summary[0].Revenue))
}

func (suite *RepoTestSuite) TestUpdateOrderStatusCompareAndSwap() {
	shop, round, customer := suite.fixture()
	order := suite.newOrder(shop.ID, round.ID, customer.ID, model.OrderStatusConfirmed, map[string]int{"p1": 1})

	ok, err := suite.store.UpdateOrderStatus(suite.ctx, order.ID, model.OrderStatusConfirmed, model.OrderStatusShipped,
		map[string]any{"tracking_code": "TH123"})
	require.NoError(suite.T(), err)
	suite.True(ok)

	// 第二個寫入者看到的狀態已經不是 CONFIRMED
	ok, err = suite.store.UpdateOrderStatus(suite.ctx, order.ID, model.OrderStatusConfirmed, model.OrderStatusCancelled, nil)
	require.NoError(suite.T(), err)
	suite.False(ok)

	got, err := suite.store.GetOrderByID(suite.ctx, order.ID)
	require.NoError(suite.T(), err)
	suite.Equal(model.OrderStatusShipped, got.Status)
	suite.Equal("TH123", got.TrackingCode)
}

func (suite *RepoTestSuite) TestLockRoundProductsIsIdempotent() {
	_, round, _ := suite.fixture()
	err := suite.store.ExecTx(suite.ctx, func(tx db.UnifiedDB) error {
		if err := tx.LockRoundProducts(suite.ctx, round.ID, []string{"b", "a", "b"}); err != nil {
			return err
		}
		return tx.LockRoundProducts(suite.ctx, round.ID, []string{"a"})
	})
	require.NoError(suite.T(), err)

	var count int64
	require.NoError(suite.T(), suite.store.GetDB().Model(&model.RoundProductLock{}).Where("round_id = ?", round.ID).Count(&count).Error)
	suite.Equal(int64(2), count)
}

func (suite *RepoTestSuite) TestExecTxRollsBack() {
	shop, round, customer := suite.fixture()
	err := suite.store.ExecTx(suite.ctx, func(tx db.UnifiedDB) error {
		order := &model.Order{ID: uuid.NewString(), Code: "ROLLBACK", ShopID: shop.ID, RoundID: round.ID, CustomerID: customer.ID, Status: model.OrderStatusPending}
		if err := tx.CreateOrder(suite.ctx, order); err != nil {
			return err
		}
		return errTestRollback
	})
	suite.ErrorIs(err, errTestRollback)

	_, err = suite.store.GetOrderByCode(suite.ctx, "ROLLBACK")
	suite.True(db.IsNotFound(err))
}

func (suite *RepoTestSuite) TestDeleteRoundAndCount() {
	shop, round, customer := suite.fixture()
	count, err := suite.store.CountOrdersByRoundID(suite.ctx, round.ID)
	require.NoError(suite.T(), err)
	suite.Zero(count)

	suite.newOrder(shop.ID, round.ID, customer.ID, model.OrderStatusPending, map[string]int{"p1": 1})
	count, err = suite.store.CountOrdersByRoundID(suite.ctx, round.ID)
	require.NoError(suite.T(), err)
	suite.Equal(int64(1), count)

	empty, err := dbtest.NewOpenRound(suite.ctx, suite.store, shop.ID)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.store.DeleteRound(suite.ctx, empty.ID))
	_, err = suite.store.GetRoundByID(suite.ctx, empty.ID)
	suite.True(db.IsNotFound(err))
}

func (suite *RepoTestSuite) TestListProductsOnlyAvailable() {
	shop, _, _ := suite.fixture()
	p1, err := dbtest.NewProduct(suite.ctx, suite.store, shop.ID, 100, nil)
	require.NoError(suite.T(), err)
	p2, err := dbtest.NewProduct(suite.ctx, suite.store, shop.ID, 200, dbtest.IntPtr(3))
	require.NoError(suite.T(), err)

	p2.IsAvailable = false
	require.NoError(suite.T(), suite.store.UpdateProduct(suite.ctx, p2))

	all, err := suite.store.ListProductsByShopID(suite.ctx, shop.ID, false)
	require.NoError(suite.T(), err)
	suite.Len(all, 2)

	available, err := suite.store.ListProductsByShopID(suite.ctx, shop.ID, true)
	require.NoError(suite.T(), err)
	suite.Require().Len(available, 1)
	suite.Equal(p1.ID, available[0].ID)
}
