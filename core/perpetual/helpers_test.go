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
	"sync"
	"testing"
	"time"

	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/core/perpetual"
	"code.vegaprotocol.io/perps/core/perpetual/mocks"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
	"code.vegaprotocol.io/perps/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

const testMarket = "ETH-PERP"

var t0 = time.Unix(1_700_000_000, 0)

type testEngine struct {
	*perpetual.Engine
	ctrl        *gomock.Controller
	broker      *mocks.MockBroker
	timeService *mocks.MockTimeService
	priceFeed   *mocks.MockPriceFeed
	priceImpact *mocks.MockPriceImpact
	pool        *mocks.MockLiquidityPool
	configs     *mocks.MockConfigProvider

	now     time.Time
	baseCfg types.MarketBaseConfig
	feeCfg  types.MarketFeeRateConfig

	mu     sync.Mutex
	events []events.Event
}

func baseConfig() types.MarketBaseConfig {
	return types.MarketBaseConfig{
		MinMarginPerPosition:          num.NewUint(10),
		MaxLeveragePerPosition:        10,
		LiquidationFeeRatePerPosition: 1_000_000,
		LiquidationExecutionFee:       num.NewUint(5),
		MaxPositionLiquidity:          num.NewUint(1_000_000),
		MaxPositionValueRate:          100_000_000,
		MaxSizeRatePerPosition:        10_000_000,
		MinProfitDuration:             60,
	}
}

func feeConfig() types.MarketFeeRateConfig {
	return types.MarketFeeRateConfig{
		ProtocolFundingFeeRate:  16000,
		FundingCoeff:            100_000_000,
		ProtocolFundingCoeff:    75_000_000,
		InterestRate:            10000,
		FundingBuffer:           50000,
		LiquidityFundingFeeRate: 50_000_000,
	}
}

// priceX96 returns n/d in Q64.96.
func priceX96(n, d uint64) *num.Uint {
	return num.UintMulDiv(num.NewUint(n), num.Q96(), num.NewUint(d))
}

func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	te := &testEngine{
		ctrl:        ctrl,
		broker:      mocks.NewMockBroker(ctrl),
		timeService: mocks.NewMockTimeService(ctrl),
		priceFeed:   mocks.NewMockPriceFeed(ctrl),
		priceImpact: mocks.NewMockPriceImpact(ctrl),
		pool:        mocks.NewMockLiquidityPool(ctrl),
		configs:     mocks.NewMockConfigProvider(ctrl),
		now:         t0,
		baseCfg:     baseConfig(),
		feeCfg:      feeConfig(),
	}

	te.timeService.EXPECT().GetTimeNow().DoAndReturn(func() time.Time { return te.now }).AnyTimes()
	te.broker.EXPECT().SendBatch(gomock.Any()).Do(func(evts []events.Event) {
		te.mu.Lock()
		defer te.mu.Unlock()
		te.events = append(te.events, evts...)
	}).AnyTimes()
	te.configs.EXPECT().MarketBaseConfig(gomock.Any()).DoAndReturn(func(string) (types.MarketBaseConfig, error) {
		return te.baseCfg.Clone(), nil
	}).AnyTimes()
	te.configs.EXPECT().MarketFeeRateConfig(gomock.Any()).DoAndReturn(func(string) (types.MarketFeeRateConfig, error) {
		return te.feeCfg, nil
	}).AnyTimes()

	te.Engine = perpetual.New(
		logging.NewTestLogger(),
		perpetual.NewDefaultConfig(),
		te.broker,
		te.timeService,
		te.priceFeed,
		te.priceImpact,
		te.pool,
		te.configs,
	)
	return te
}

// getTestEngineWithMarket creates the market and sets its caps from a pool
// of 1,000,000 at an index price of 1. That is a max size of 1,000,000 and
// 100,000 per position.
func getTestEngineWithMarket(t *testing.T) *testEngine {
	t.Helper()
	te := getTestEngine(t)
	require.NoError(t, te.CreateMarket(context.Background(), testMarket))
	te.updateCaps(t, num.NewUint(1_000_000), priceX96(1, 1))
	te.events = nil
	return te
}

func (te *testEngine) updateCaps(t *testing.T, liquidity, indexPrice *num.Uint) {
	t.Helper()
	te.pool.EXPECT().Liquidity(gomock.Any(), testMarket).Return(liquidity, nil).Times(1)
	te.priceFeed.EXPECT().IndexPrice(gomock.Any(), testMarket, types.SideLong).Return(indexPrice, nil).Times(1)
	require.NoError(t, te.UpdateSizeCaps(context.Background(), testMarket))
}

// expectTrade expects a quote of size on side followed by its application.
func (te *testEngine) expectTrade(side types.Side, size, indexPrice, tradePrice *num.Uint, liquidation bool) {
	te.pool.EXPECT().NetSize(gomock.Any(), testMarket).Return(types.SideShort, num.UintZero(), nil).Times(1)
	te.priceImpact.EXPECT().TradePrice(gomock.Any(), testMarket, side, size, indexPrice, liquidation).Return(tradePrice, nil).Times(1)
	te.priceImpact.EXPECT().ApplyTrade(gomock.Any(), testMarket, types.Trade{
		Side:          side,
		Size:          size,
		IndexPriceX96: indexPrice,
		PriceX96:      tradePrice,
		Liquidation:   liquidation,
		NetSide:       types.SideShort,
		NetSize:       num.UintZero(),
	}).Return(nil).Times(1)
}

// expectQuote expects a quote that is never applied.
func (te *testEngine) expectQuote(side types.Side, size, indexPrice, tradePrice *num.Uint, liquidation bool) {
	te.pool.EXPECT().NetSize(gomock.Any(), testMarket).Return(types.SideShort, num.UintZero(), nil).Times(1)
	te.priceImpact.EXPECT().TradePrice(gomock.Any(), testMarket, side, size, indexPrice, liquidation).Return(tradePrice, nil).Times(1)
}

// open opens a position at price with the index and decrease index price at price.
func (te *testEngine) open(t *testing.T, account string, side types.Side, margin, size, price *num.Uint) {
	t.Helper()
	te.pool.EXPECT().Liquidity(gomock.Any(), testMarket).Return(num.NewUint(1_000_000), nil).Times(1)
	te.priceFeed.EXPECT().IndexPrice(gomock.Any(), testMarket, side).Return(price, nil).Times(1)
	te.priceFeed.EXPECT().DecreaseIndexPrice(gomock.Any(), testMarket, side).Return(price, nil).Times(1)
	te.expectTrade(side, size, price, price, false)
	require.NoError(t, te.Increase(context.Background(), testMarket, account, side, margin, size))
}

// eventTypes returns the types of the captured events and resets them.
func (te *testEngine) eventTypes() []events.Type {
	out := make([]events.Type, 0, len(te.events))
	for _, e := range te.events {
		out = append(out, e.Type())
	}
	te.events = nil
	return out
}

func (te *testEngine) lastEvent() events.Event {
	if len(te.events) == 0 {
		return nil
	}
	return te.events[len(te.events)-1]
}
