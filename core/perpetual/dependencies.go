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
package perpetual

import (
	"context"
	"time"

	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.vegaprotocol.io/perps/core/perpetual PriceFeed,PriceImpact,LiquidityPool,ConfigProvider,TimeService,Broker

// PriceFeed provides index prices. IndexPrice is the price a position of
// the side opens at, DecreaseIndexPrice the price it closes at.
type PriceFeed interface {
	IndexPrice(ctx context.Context, market string, side types.Side) (*num.Uint, error)
	DecreaseIndexPrice(ctx context.Context, market string, side types.Side) (*num.Uint, error)
}

// PriceImpact is the price curve of a market. TradePrice only quotes.
// ApplyTrade moves the curve and settles the pool's unrealised pnl at the
// trade price. It either does both or nothing.
type PriceImpact interface {
	TradePrice(ctx context.Context, market string, side types.Side, sizeDelta, indexPriceX96 *num.Uint, liquidation bool) (*num.Uint, error)
	ApplyTrade(ctx context.Context, market string, trade types.Trade) error
	PriceState(ctx context.Context, market string) (premiumRateX96 *num.Int, basisIndexPriceX96 *num.Uint, err error)
}

// LiquidityPool is the counterparty of every trade.
type LiquidityPool interface {
	Liquidity(ctx context.Context, market string) (*num.Uint, error)
	NetSize(ctx context.Context, market string) (types.Side, *num.Uint, error)
}

// ConfigProvider returns validated market configs.
type ConfigProvider interface {
	MarketBaseConfig(market string) (types.MarketBaseConfig, error)
	MarketFeeRateConfig(market string) (types.MarketFeeRateConfig, error)
}

// TimeService provides the current block time.
type TimeService interface {
	GetTimeNow() time.Time
}

// Broker sends events.
type Broker interface {
	Send(event events.Event)
	SendBatch(events []events.Event)
}
