package service

import (
	"testing"
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db/dbtest"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RoundServiceTestSuite struct {
	serviceSuite
	rounds *RoundService
}

func TestRoundServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RoundServiceTestSuite))
}

func (suite *RoundServiceTestSuite) SetupTest() {
	suite.serviceSuite.SetupTest()
	suite.rounds = NewRoundService(suite.store, &suite.logger)
}

func (suite *RoundServiceTestSuite) TestCreateRoundValidation() {
	shop := suite.newShop("")
	now := time.Now()

	_, err := suite.rounds.CreateRound(suite.ctx, shop.ID, CreateRoundInput{Name: "r", OpensAt: now, ClosesAt: now})
	suite.ErrorIs(err, ErrValidation)

	_, err = suite.rounds.CreateRound(suite.ctx, shop.ID, CreateRoundInput{Name: "r", OpensAt: now, ClosesAt: now.Add(time.Hour), ShippingRates: []byte(`{"mode":"BOAT"}`)})
	suite.ErrorIs(err, ErrValidation)

	_, err = suite.rounds.CreateRound(suite.ctx, "missing", CreateRoundInput{Name: "r", OpensAt: now, ClosesAt: now.Add(time.Hour)})
	suite.ErrorIs(err, ErrNotFound)

	round, err := suite.rounds.CreateRound(suite.ctx, shop.ID, CreateRoundInput{Name: " Mango week ", OpensAt: now, ClosesAt: now.Add(time.Hour)})
	require.NoError(suite.T(), err)
	suite.Equal(model.RoundStatusOpen, round.Status)
	suite.Equal("Mango week", round.Name)

	rounds, err := suite.rounds.ListRounds(suite.ctx, shop.ID)
	require.NoError(suite.T(), err)
	suite.Len(rounds, 1)
}

func (suite *RoundServiceTestSuite) TestStatusLifecycle() {
	shop := suite.newShop("")
	round := suite.newRound(shop.ID)

	got, err := suite.rounds.UpdateStatus(suite.ctx, round.ID, model.RoundStatusClosed)
	require.NoError(suite.T(), err)
	suite.Equal(model.RoundStatusClosed, got.Status)

	got, err = suite.rounds.UpdateStatus(suite.ctx, round.ID, model.RoundStatusOpen)
	require.NoError(suite.T(), err)
	suite.Equal(model.RoundStatusOpen, got.Status)

	_, err = suite.rounds.UpdateStatus(suite.ctx, round.ID, model.RoundStatusFulfilled)
	require.NoError(suite.T(), err)

	// FULFILLED 為終態
	_, err = suite.rounds.UpdateStatus(suite.ctx, round.ID, model.RoundStatusOpen)
	suite.ErrorIs(err, ErrInvalidRoundStatus)
	_, err = suite.rounds.UpdateStatus(suite.ctx, round.ID, "ARCHIVED")
	suite.ErrorIs(err, ErrValidation)

	stored, err := suite.rounds.GetRound(suite.ctx, round.ID)
	require.NoError(suite.T(), err)
	suite.Equal(model.RoundStatusFulfilled, stored.Status)
}

func (suite *RoundServiceTestSuite) TestDeleteOnlyWithoutOrders() {
	shop := suite.newShop("")
	empty := suite.newRound(shop.ID)
	busy := suite.newRound(shop.ID)
	p := suite.newProduct(shop.ID, 100, dbtest.IntPtr(10))

	order, err := suite.submit(shop.ID, busy.ID, lineOf(p, 1))
	require.NoError(suite.T(), err)

	// 已取消的訂單也算
	_, err = suite.stateMachine.Transition(suite.ctx, order.ID, model.OrderStatusCancelled, TransitionPayload{})
	require.NoError(suite.T(), err)
	suite.ErrorIs(suite.rounds.DeleteRound(suite.ctx, busy.ID), ErrRoundHasOrders)

	require.NoError(suite.T(), suite.rounds.DeleteRound(suite.ctx, empty.ID))
	_, err = suite.rounds.GetRound(suite.ctx, empty.ID)
	suite.ErrorIs(err, ErrNotFound)
	suite.ErrorIs(suite.rounds.DeleteRound(suite.ctx, empty.ID), ErrNotFound)
}

func (suite *RoundServiceTestSuite) TestSalesSummary() {
	shop := suite.newShop("")
	round := suite.newRound(shop.ID)
	a := suite.newProduct(shop.ID, 100, nil)
	b := suite.newProduct(shop.ID, 40, nil)

	_, err := suite.submit(shop.ID, round.ID, lineOf(a, 2), lineOf(b, 1))
	require.NoError(suite.T(), err)
	cancelled, err := suite.submit(shop.ID, round.ID, lineOf(a, 5))
	require.NoError(suite.T(), err)
	_, err = suite.stateMachine.Transition(suite.ctx, cancelled.ID, model.OrderStatusCancelled, TransitionPayload{})
	require.NoError(suite.T(), err)

	sales, err := suite.rounds.SalesSummary(suite.ctx, round.ID)
	require.NoError(suite.T(), err)
	suite.Require().Len(sales, 2)

	byID := map[string]model.ProductSales{}
	for _, s := range sales {
		byID[s.ProductID] = s
	}
	suite.Equal(2, byID[a.ID].Sold)
	suite.True(dec(200).Equal(byID[a.ID].Revenue))
	suite.Equal(a.Name, byID[a.ID].Name)
	suite.Equal(1, byID[b.ID].Sold)
}
