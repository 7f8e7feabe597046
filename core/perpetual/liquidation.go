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
	"code.vegaprotocol.io/perps/core/risk"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
	"code.vegaprotocol.io/perps/logging"

	"github.com/pkg/errors"
)

func (e *Engine) liquidate(
	ctx context.Context,
	m *marketState,
	p *pending,
	account string,
	side types.Side,
	feeReceiver string,
) (*num.Uint, error) {
	pos, ok := m.position(account, side)
	if !ok {
		return nil, types.ErrPositionNotFound
	}
	cfg, err := e.configs.MarketBaseConfig(m.id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get market base config")
	}
	indexPrice, err := e.priceFeed.DecreaseIndexPrice(ctx, m.id, side)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get decrease index price")
	}

	g := p.global
	requiredFundingFee := risk.CalculateFundingFee(g.FundingRateGrowthX96(side), pos.EntryFundingRateGrowthX96, pos.Size)
	if err := risk.ValidateMarginRate(risk.MarginRateParams{
		Side:                    side,
		Margin:                  num.IntFromUint(pos.Margin, true).Add(requiredFundingFee),
		Size:                    pos.Size,
		EntryPriceX96:           pos.EntryPriceX96,
		ReferencePriceX96:       indexPrice,
		LiquidationFeeRate:      cfg.LiquidationFeeRatePerPosition,
		LiquidationExecutionFee: cfg.LiquidationExecutionFee,
	}, true); err != nil {
		return nil, err
	}

	liquidationPrice, adjustedFundingFee := risk.CalculateLiquidationPriceX96(risk.LiquidationPriceParams{
		Side:                    side,
		Margin:                  pos.Margin,
		Size:                    pos.Size,
		EntryPriceX96:           pos.EntryPriceX96,
		RequiredFundingFee:      requiredFundingFee,
		LiquidationFeeRate:      cfg.LiquidationFeeRatePerPosition,
		LiquidationExecutionFee: cfg.LiquidationExecutionFee,
	})

	tr, err := e.quoteTrade(ctx, m.id, side.Flip(), pos.Size, indexPrice, true)
	if err != nil {
		return nil, err
	}

	liquidationFee := risk.CalculateLiquidationFee(pos.Size, pos.EntryPriceX96, cfg.LiquidationFeeRatePerPosition)
	shortfall := risk.CalculateFundingShortfall(requiredFundingFee, adjustedFundingFee, g.Size(side.Flip()))
	fundDelta := risk.CalculateLiquidationFundDelta(side, pos.Size, liquidationPrice, tr.PriceX96, liquidationFee, shortfall)

	if err := e.applyTrade(ctx, m.id, tr); err != nil {
		return nil, err
	}

	p.liquidationFund.Add(fundDelta)
	if shortfall.OppositeGrowthDeltaX96 != nil {
		g.FundingRateGrowthX96(side.Flip()).Add(shortfall.OppositeGrowthDeltaX96)
	}
	g.DecreaseSize(side, pos.Size)

	p.emit(events.NewPositionLiquidatedEvent(ctx, events.PositionLiquidatedPayload{
		MarketID:                m.id,
		Account:                 account,
		Side:                    side,
		Size:                    pos.Size.Clone(),
		Margin:                  pos.Margin.Clone(),
		IndexPriceX96:           indexPrice.Clone(),
		TradePriceX96:           tr.PriceX96.Clone(),
		LiquidationPriceX96:     liquidationPrice,
		RequiredFundingFee:      requiredFundingFee,
		FundingFee:              adjustedFundingFee,
		LiquidationFee:          liquidationFee,
		LiquidationExecutionFee: cfg.LiquidationExecutionFee.Clone(),
		LiquidationFundDelta:    fundDelta,
		FeeReceiver:             feeReceiver,
	}))

	e.log.Info("position liquidated",
		logging.MarketID(m.id),
		logging.PartyID(account),
		logging.Side(side),
		logging.PriceX96("liquidation-price", liquidationPrice),
		logging.PriceX96("trade-price", tr.PriceX96),
		logging.BigInt("liquidation-fund-delta", fundDelta),
	)

	pos.Size = num.UintZero()
	pos.Margin = num.UintZero()
	p.setPosition(pos)
	return cfg.LiquidationExecutionFee.Clone(), nil
}
