// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
package perpetual_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type marketState struct {
	Global                *types.GlobalPosition `json:"global"`
	Positions             []*types.Position     `json:"positions"`
	LiquidationFund       *num.Int              `json:"liquidation_fund"`
	ProtocolFee           *num.Uint             `json:"protocol_fee"`
	LiquidityPnLGrowthX96 *num.Int              `json:"liquidity_pnl_growth_x96"`
}

func units(n uint64) *num.Uint {
	return num.UintZero().Mul(num.NewUint(n), num.MustUintFromString("1000000000000000000", 10))
}

// loadMarket restores a market with 100 units long and 50 units short, all
// held by alice and bob.
func loadMarket(t *testing.T, te *testEngine) {
	t.Helper()
	g := types.NewGlobalPosition()
	g.LongSize = units(100)
	g.ShortSize = units(50)
	g.MaxSize = units(1_000_000)
	g.MaxSizePerPosition = units(100_000)
	g.LastFundingSettleTime = t0.Unix()

	alice := types.NewPosition("alice", types.SideLong)
	alice.Margin = units(10_000)
	alice.Size = units(100)
	alice.EntryPriceX96 = priceX96(2000, 1)
	alice.EntryTime = t0.Unix()

	bob := types.NewPosition("bob", types.SideShort)
	bob.Margin = units(10_000)
	bob.Size = units(50)
	bob.EntryPriceX96 = priceX96(2000, 1)
	bob.EntryTime = t0.Unix()

	state, err := json.Marshal(marketState{
		Global:                g,
		Positions:             []*types.Position{alice, bob},
		LiquidationFund:       num.IntZero(),
		ProtocolFee:           num.UintZero(),
		LiquidityPnLGrowthX96: num.IntZero(),
	})
	require.NoError(t, err)
	require.NoError(t, te.LoadState(context.Background(), testMarket, state))
}

func TestSettleFunding(t *testing.T) {
	t.Run("longs pay an hour of funding", testSettleFundingLongsPay)
	t.Run("settling twice at the same time is a no-op", testSettleFundingIdempotent)
	t.Run("no liquidity only moves the clock", testSettleFundingNoLiquidity)
	t.Run("no open interest only moves the clock", testSettleFundingNoSize)
	t.Run("funding fee is applied on the next increase", testFundingFeeAppliedOnIncrease)
	t.Run("a failed operation discards the settlement", testFailedOperationDiscardsSettlement)
	t.Run("settle every market", testSettleFundingAll)
}

func expectFundingInputs(te *testEngine) {
	te.pool.EXPECT().Liquidity(gomock.Any(), testMarket).Return(units(1_000_000), nil).Times(1)
	te.priceFeed.EXPECT().IndexPrice(gomock.Any(), testMarket, types.SideLong).Return(priceX96(2000, 1), nil).Times(1)
	te.priceImpact.EXPECT().PriceState(gomock.Any(), testMarket).Return(num.IntZero(), priceX96(1, 1), nil).Times(1)
}

func testSettleFundingLongsPay(t *testing.T) {
	te := getTestEngine(t)
	loadMarket(t, te)
	te.now = t0.Add(time.Hour)
	expectFundingInputs(te)

	require.NoError(t, te.SettleFunding(context.Background(), testMarket))

	g, err := te.GetGlobalPosition(testMarket)
	require.NoError(t, err)
	assert.Equal(t, te.now.Unix(), g.LastFundingSettleTime)
	assert.Equal(t, "-4357548938284538568437198894", g.LongFundingRateGrowthX96.String())
	assert.Equal(t, "1188422437713965062318596004", g.ShortFundingRateGrowthX96.String())

	fee, err := te.GetProtocolFee(testMarket)
	require.NoError(t, err)
	assert.Equal(t, "1750000000000000001", fee.String())

	growth, err := te.GetLiquidityPnLGrowthX96(testMarket)
	require.NoError(t, err)
	assert.Equal(t, "237684487542793012859860", growth.String())

	require.Len(t, te.events, 3)
	protocol := te.events[0].(*events.ProtocolFeeIncreased)
	assert.Equal(t, "1750000000000000001", protocol.ProtocolFeeIncreased().Amount.String())
	assert.Equal(t, "1750000000000000001", protocol.ProtocolFeeIncreased().Total.String())
	pool := te.events[1].(*events.PoolPnLGrowthIncreasedByFunding)
	assert.Equal(t, "3000000000000000001", pool.PoolPnLGrowthIncreasedByFunding().LiquidityFee.String())
	settled := te.events[2].(*events.FundingSettled)
	assert.Equal(t, te.now.Unix(), settled.FundingSettled().SettleTime)
	assert.Equal(t, g.LongFundingRateGrowthX96.String(), settled.FundingSettled().LongFundingRateGrowthX96.String())
}

func testSettleFundingIdempotent(t *testing.T) {
	te := getTestEngine(t)
	loadMarket(t, te)
	te.now = t0.Add(time.Hour)
	expectFundingInputs(te)
	require.NoError(t, te.SettleFunding(context.Background(), testMarket))
	before, err := te.GetGlobalPosition(testMarket)
	require.NoError(t, err)
	te.events = nil

	// no collaborator is called again
	require.NoError(t, te.SettleFunding(context.Background(), testMarket))
	after, err := te.GetGlobalPosition(testMarket)
	require.NoError(t, err)
	assert.Equal(t, before.LongFundingRateGrowthX96.String(), after.LongFundingRateGrowthX96.String())
	assert.Equal(t, before.ShortFundingRateGrowthX96.String(), after.ShortFundingRateGrowthX96.String())

	require.Len(t, te.events, 1)
	settled := te.events[0].(*events.FundingSettled)
	assert.Equal(t, te.now.Unix(), settled.FundingSettled().SettleTime)
}

func testSettleFundingNoLiquidity(t *testing.T) {
	te := getTestEngine(t)
	loadMarket(t, te)
	te.now = t0.Add(time.Hour)
	te.pool.EXPECT().Liquidity(gomock.Any(), testMarket).Return(num.UintZero(), nil).Times(1)

	require.NoError(t, te.SettleFunding(context.Background(), testMarket))
	g, err := te.GetGlobalPosition(testMarket)
	require.NoError(t, err)
	assert.Equal(t, te.now.Unix(), g.LastFundingSettleTime)
	assert.True(t, g.LongFundingRateGrowthX96.IsZero())
	assert.True(t, g.ShortFundingRateGrowthX96.IsZero())
	assert.Equal(t, []events.Type{events.FundingSettledEvent}, te.eventTypes())
}

func testSettleFundingNoSize(t *testing.T) {
	te := getTestEngine(t)
	require.NoError(t, te.CreateMarket(context.Background(), testMarket))
	te.now = t0.Add(time.Hour)
	te.pool.EXPECT().Liquidity(gomock.Any(), testMarket).Return(units(1_000_000), nil).Times(1)

	require.NoError(t, te.SettleFunding(context.Background(), testMarket))
	g, err := te.GetGlobalPosition(testMarket)
	require.NoError(t, err)
	assert.Equal(t, te.now.Unix(), g.LastFundingSettleTime)
	fee, err := te.GetProtocolFee(testMarket)
	require.NoError(t, err)
	assert.True(t, fee.IsZero())
}

func testFundingFeeAppliedOnIncrease(t *testing.T) {
	te := getTestEngine(t)
	loadMarket(t, te)
	te.now = t0.Add(time.Hour)
	expectFundingInputs(te)

	// margin only: no quote, the settlement happens inside the operation
	te.pool.EXPECT().Liquidity(gomock.Any(), testMarket).Return(units(1_000_000), nil).Times(1)
	te.priceFeed.EXPECT().DecreaseIndexPrice(gomock.Any(), testMarket, types.SideLong).Return(priceX96(2000, 1), nil).Times(1)
	require.NoError(t, te.Increase(context.Background(), testMarket, "alice", types.SideLong, units(1), num.UintZero()))

	pos, err := te.GetPosition(testMarket, "alice", types.SideLong)
	require.NoError(t, err)
	// 10,000 + 1 units minus 5.5 units of funding, rounded against alice
	assert.Equal(t, "9995499999999999999998", pos.Margin.String())
	assert.Equal(t, "-4357548938284538568437198894", pos.EntryFundingRateGrowthX96.String())

	inc := te.lastEvent().(*events.PositionIncreased)
	assert.Equal(t, "-5500000000000000002", inc.PositionIncreased().FundingFee.String())
	assert.Equal(t, []events.Type{
		events.ProtocolFeeIncreasedEvent,
		events.PoolPnLGrowthIncreasedByFundingEvent,
		events.FundingSettledEvent,
		events.PositionIncreasedEvent,
	}, te.eventTypes())
}

func testFailedOperationDiscardsSettlement(t *testing.T) {
	te := getTestEngine(t)
	loadMarket(t, te)
	te.now = t0.Add(time.Hour)
	expectFundingInputs(te)

	_, err := te.Decrease(context.Background(), testMarket, "alice", types.SideLong, num.UintZero(), units(101), "alice")
	require.ErrorIs(t, err, types.ErrInsufficientSizeToDecrease)

	g, err := te.GetGlobalPosition(testMarket)
	require.NoError(t, err)
	assert.Equal(t, t0.Unix(), g.LastFundingSettleTime)
	assert.True(t, g.LongFundingRateGrowthX96.IsZero())
	assert.Empty(t, te.events)
}

func testSettleFundingAll(t *testing.T) {
	te := getTestEngine(t)
	ctx := context.Background()
	require.NoError(t, te.CreateMarket(ctx, "a"))
	require.NoError(t, te.CreateMarket(ctx, "b"))
	te.now = t0.Add(time.Minute)
	te.pool.EXPECT().Liquidity(gomock.Any(), gomock.Any()).Return(num.UintZero(), nil).Times(2)

	require.NoError(t, te.SettleFundingAll(ctx))
	for _, id := range []string{"a", "b"} {
		g, err := te.GetGlobalPosition(id)
		require.NoError(t, err)
		assert.Equal(t, te.now.Unix(), g.LastFundingSettleTime)
	}
}
