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

	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/core/funding"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/logging"

	"github.com/pkg/errors"
)

// settleFunding accrues funding into p up to now. When the market was
// already settled at now nothing changes and FundingSettled is only sent if
// emitNoop is set.
func (e *Engine) settleFunding(ctx context.Context, m *marketState, p *pending, now int64, emitNoop bool) error {
	g := p.global
	if now <= g.LastFundingSettleTime {
		if emitNoop {
			p.emit(fundingSettledEvent(ctx, m.id, g))
		}
		return nil
	}
	timeDelta := uint64(now - g.LastFundingSettleTime)

	liquidity, err := e.pool.Liquidity(ctx, m.id)
	if err != nil {
		return errors.Wrap(err, "failed to get pool liquidity")
	}
	if liquidity.IsZero() || g.TotalSize().IsZero() {
		g.LastFundingSettleTime = now
		p.emit(fundingSettledEvent(ctx, m.id, g))
		return nil
	}

	cfg, err := e.configs.MarketFeeRateConfig(m.id)
	if err != nil {
		return errors.Wrap(err, "failed to get market fee rate config")
	}
	indexPrice, err := e.priceFeed.IndexPrice(ctx, m.id, types.SideLong)
	if err != nil {
		return errors.Wrap(err, "failed to get index price")
	}
	premium, basisIndexPrice, err := e.priceImpact.PriceState(ctx, m.id)
	if err != nil {
		return errors.Wrap(err, "failed to get price state")
	}

	s := funding.CalculateSettlement(funding.SettlementInput{
		Config:               cfg,
		LongSize:             g.LongSize,
		ShortSize:            g.ShortSize,
		IndexPriceX96:        indexPrice,
		ActualPremiumRateX96: funding.CalculateActualPremiumRateX96(premium, basisIndexPrice, indexPrice),
		Liquidity:            liquidity,
		TimeDelta:            timeDelta,
	})

	if !s.ProtocolFee.IsZero() {
		p.protocolFee.Add(p.protocolFee, s.ProtocolFee)
		p.emit(events.NewProtocolFeeIncreasedEvent(ctx, events.ProtocolFeeIncreasedPayload{
			MarketID: m.id,
			Amount:   s.ProtocolFee,
			Total:    p.protocolFee.Clone(),
		}))
	}
	if !s.LiquidityFee.IsZero() {
		p.liquidityPnLGrowthX96.AddUint(s.LiquidityPnLGrowthDeltaX96)
		p.emit(events.NewPoolPnLGrowthIncreasedByFundingEvent(ctx, events.PoolPnLGrowthIncreasedByFundingPayload{
			MarketID:       m.id,
			LiquidityFee:   s.LiquidityFee,
			GrowthDeltaX96: s.LiquidityPnLGrowthDeltaX96,
			GrowthAfterX96: p.liquidityPnLGrowthX96.Clone(),
		}))
	}

	g.LongFundingRateGrowthX96.Add(s.LongGrowthDeltaX96)
	g.ShortFundingRateGrowthX96.Add(s.ShortGrowthDeltaX96)
	g.LastFundingSettleTime = now
	p.fundingTimeDelta = timeDelta
	p.emit(fundingSettledEvent(ctx, m.id, g))

	if e.log.IsDebug() {
		e.log.Debug("funding settled",
			logging.MarketID(m.id),
			logging.Uint64("time-delta", timeDelta),
			logging.BigInt("base-rate-x96", s.BaseRateX96),
			logging.BigUint("paid-funding-fee", s.PaidFundingFee),
			logging.BigUint("received-funding-fee", s.ReceivedFundingFee),
			logging.BigUint("protocol-fee", s.ProtocolFee),
			logging.BigUint("liquidity-fee", s.LiquidityFee),
		)
	}
	return nil
}

func fundingSettledEvent(ctx context.Context, market string, g *types.GlobalPosition) events.Event {
	return events.NewFundingSettledEvent(ctx, events.FundingSettledPayload{
		MarketID:                  market,
		LongFundingRateGrowthX96:  g.LongFundingRateGrowthX96.Clone(),
		ShortFundingRateGrowthX96: g.ShortFundingRateGrowthX96.Clone(),
		SettleTime:                g.LastFundingSettleTime,
	})
}
