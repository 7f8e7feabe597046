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

package events

import (
	"context"

	"code.vegaprotocol.io/perps/libs/num"
)

type FundingSettledPayload struct {
	MarketID                  string   `json:"market_id"`
	LongFundingRateGrowthX96  *num.Int `json:"long_funding_rate_growth_x96"`
	ShortFundingRateGrowthX96 *num.Int `json:"short_funding_rate_growth_x96"`
	SettleTime                int64    `json:"settle_time"`
}

type FundingSettled struct {
	*Base
	p FundingSettledPayload
}

func NewFundingSettledEvent(ctx context.Context, p FundingSettledPayload) *FundingSettled {
	return &FundingSettled{
		Base: newBase(ctx, FundingSettledEvent, p.MarketID),
		p:    p,
	}
}

func (e FundingSettled) FundingSettled() FundingSettledPayload {
	return e.p
}

func (e FundingSettled) Payload() interface{} {
	return e.p
}

type ProtocolFeeIncreasedPayload struct {
	MarketID string    `json:"market_id"`
	Amount   *num.Uint `json:"amount"`
	Total    *num.Uint `json:"total"`
}

type ProtocolFeeIncreased struct {
	*Base
	p ProtocolFeeIncreasedPayload
}

func NewProtocolFeeIncreasedEvent(ctx context.Context, p ProtocolFeeIncreasedPayload) *ProtocolFeeIncreased {
	return &ProtocolFeeIncreased{
		Base: newBase(ctx, ProtocolFeeIncreasedEvent, p.MarketID),
		p:    p,
	}
}

func (e ProtocolFeeIncreased) ProtocolFeeIncreased() ProtocolFeeIncreasedPayload {
	return e.p
}

func (e ProtocolFeeIncreased) Payload() interface{} {
	return e.p
}

type PoolPnLGrowthIncreasedByFundingPayload struct {
	MarketID       string    `json:"market_id"`
	LiquidityFee   *num.Uint `json:"liquidity_fee"`
	GrowthDeltaX96 *num.Uint `json:"growth_delta_x96"`
	GrowthAfterX96 *num.Int  `json:"growth_after_x96"`
}

type PoolPnLGrowthIncreasedByFunding struct {
	*Base
	p PoolPnLGrowthIncreasedByFundingPayload
}

func NewPoolPnLGrowthIncreasedByFundingEvent(ctx context.Context, p PoolPnLGrowthIncreasedByFundingPayload) *PoolPnLGrowthIncreasedByFunding {
	return &PoolPnLGrowthIncreasedByFunding{
		Base: newBase(ctx, PoolPnLGrowthIncreasedByFundingEvent, p.MarketID),
		p:    p,
	}
}

func (e PoolPnLGrowthIncreasedByFunding) PoolPnLGrowthIncreasedByFunding() PoolPnLGrowthIncreasedByFundingPayload {
	return e.p
}

func (e PoolPnLGrowthIncreasedByFunding) Payload() interface{} {
	return e.p
}

type GlobalSizeCapsChangedPayload struct {
	MarketID           string    `json:"market_id"`
	MaxSize            *num.Uint `json:"max_size"`
	MaxSizePerPosition *num.Uint `json:"max_size_per_position"`
}

type GlobalSizeCapsChanged struct {
	*Base
	p GlobalSizeCapsChangedPayload
}

func NewGlobalSizeCapsChangedEvent(ctx context.Context, p GlobalSizeCapsChangedPayload) *GlobalSizeCapsChanged {
	return &GlobalSizeCapsChanged{
		Base: newBase(ctx, GlobalSizeCapsChangedEvent, p.MarketID),
		p:    p,
	}
}

func (e GlobalSizeCapsChanged) GlobalSizeCapsChanged() GlobalSizeCapsChangedPayload {
	return e.p
}

func (e GlobalSizeCapsChanged) Payload() interface{} {
	return e.p
}
