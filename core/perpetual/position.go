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

	"github.com/pkg/errors"
)

// quoteTrade prices a trade against the pool. Nothing moves until the
// operation passed validation and the trade is applied.
func (e *Engine) quoteTrade(ctx context.Context, market string, side types.Side, size, indexPriceX96 *num.Uint, liquidation bool) (*types.Trade, error) {
	netSide, netSize, err := e.pool.NetSize(ctx, market)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool net size")
	}
	price, err := e.priceImpact.TradePrice(ctx, market, side, size, indexPriceX96, liquidation)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get trade price")
	}
	return &types.Trade{
		Side:          side,
		Size:          size,
		IndexPriceX96: indexPriceX96,
		PriceX96:      price,
		Liquidation:   liquidation,
		NetSide:       netSide,
		NetSize:       netSize,
	}, nil
}

func (e *Engine) applyTrade(ctx context.Context, market string, t *types.Trade) error {
	if err := e.priceImpact.ApplyTrade(ctx, market, *t); err != nil {
		return errors.Wrap(err, "failed to apply trade")
	}
	return nil
}

// headroom returns how much can be added to used before reaching limit,
// zero when used is already at or past it.
func headroom(limit *num.Uint, used ...*num.Uint) *num.Uint {
	total := num.UintZero()
	for _, u := range used {
		if _, overflow := total.AddOverflow(total, u); overflow {
			return num.UintZero()
		}
	}
	h, underflow := num.UintZero().SubOverflow(limit, total)
	if underflow {
		return num.UintZero()
	}
	return h
}

func (e *Engine) increase(
	ctx context.Context,
	m *marketState,
	p *pending,
	now int64,
	account string,
	side types.Side,
	marginDelta, sizeDelta *num.Uint,
) error {
	cfg, err := e.configs.MarketBaseConfig(m.id)
	if err != nil {
		return errors.Wrap(err, "failed to get market base config")
	}

	pos, exists := m.position(account, side)
	if !exists {
		if sizeDelta.IsZero() {
			return types.ErrPositionNotFound
		}
		if marginDelta.LT(cfg.MinMarginPerPosition) {
			return types.ErrMarginBelowMinimum
		}
		pos = types.NewPosition(account, side)
		pos.EntryTime = now
	}
	if sum, overflow := num.UintZero().AddOverflow(pos.Margin, marginDelta); overflow || sum.GT(num.MaxUint128()) {
		return types.ErrMarginTooLarge
	}

	liquidity, err := e.pool.Liquidity(ctx, m.id)
	if err != nil {
		return errors.Wrap(err, "failed to get pool liquidity")
	}
	if liquidity.IsZero() {
		return types.ErrInsufficientGlobalLiquidity
	}

	g := p.global
	tradePrice := num.UintZero()
	var tr *types.Trade
	if !sizeDelta.IsZero() {
		if sizeDelta.GT(headroom(g.MaxSizePerPosition, pos.Size)) {
			return types.ErrSizeExceedsMaxSizePerPosition
		}
		if sizeDelta.GT(headroom(g.MaxSize, g.LongSize, g.ShortSize)) {
			return types.ErrSizeExceedsMaxSize
		}
		indexPrice, err := e.priceFeed.IndexPrice(ctx, m.id, side)
		if err != nil {
			return errors.Wrap(err, "failed to get index price")
		}
		if tr, err = e.quoteTrade(ctx, m.id, side, sizeDelta, indexPrice, false); err != nil {
			return err
		}
		tradePrice = tr.PriceX96
	}
	// bounded by the per position cap
	sizeAfter := num.Sum(pos.Size, sizeDelta)

	growth := g.FundingRateGrowthX96(side)
	fundingFee := num.IntZero()
	if exists {
		fundingFee = risk.CalculateFundingFee(growth, pos.EntryFundingRateGrowthX96, pos.Size)
	}
	marginAfter := num.IntFromUint(pos.Margin, true).AddUint(marginDelta).Add(fundingFee)
	entryPriceAfter := risk.CalculateNextEntryPriceX96(side, pos.Size, pos.EntryPriceX96, sizeDelta, tradePrice)

	referencePrice, err := e.priceFeed.DecreaseIndexPrice(ctx, m.id, side)
	if err != nil {
		return errors.Wrap(err, "failed to get decrease index price")
	}
	if err := risk.ValidateMarginRate(risk.MarginRateParams{
		Side:                    side,
		Margin:                  marginAfter,
		Size:                    sizeAfter,
		EntryPriceX96:           entryPriceAfter,
		ReferencePriceX96:       referencePrice,
		LiquidationFeeRate:      cfg.LiquidationFeeRatePerPosition,
		LiquidationExecutionFee: cfg.LiquidationExecutionFee,
	}, false); err != nil {
		return err
	}
	if !sizeDelta.IsZero() {
		if err := risk.ValidateLeverage(marginAfter.U, sizeAfter, entryPriceAfter, cfg.MaxLeveragePerPosition); err != nil {
			return err
		}
	}

	if tr != nil {
		if err := e.applyTrade(ctx, m.id, tr); err != nil {
			return err
		}
	}

	g.IncreaseSize(side, sizeDelta)
	pos.Margin = marginAfter.U.Clone()
	pos.Size = sizeAfter
	pos.EntryPriceX96 = entryPriceAfter
	pos.EntryFundingRateGrowthX96 = growth.Clone()
	p.setPosition(pos)
	p.emit(events.NewPositionIncreasedEvent(ctx, events.PositionIncreasedPayload{
		MarketID:           m.id,
		Account:            account,
		Side:               side,
		MarginDelta:        marginDelta.Clone(),
		MarginAfter:        pos.Margin.Clone(),
		SizeDelta:          sizeDelta.Clone(),
		SizeAfter:          sizeAfter.Clone(),
		TradePriceX96:      tradePrice.Clone(),
		EntryPriceAfterX96: entryPriceAfter.Clone(),
		FundingFee:         fundingFee,
	}))
	return nil
}

func (e *Engine) decrease(
	ctx context.Context,
	m *marketState,
	p *pending,
	now int64,
	account string,
	side types.Side,
	marginDelta, sizeDelta *num.Uint,
	receiver string,
) (*num.Uint, error) {
	pos, ok := m.position(account, side)
	if !ok {
		return nil, types.ErrPositionNotFound
	}
	if sizeDelta.GT(pos.Size) {
		return nil, types.ErrInsufficientSizeToDecrease
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
	var (
		tr          *types.Trade
		byEntry     events.Event
		tradePrice  = num.UintZero()
		realizedPnL = num.IntZero()
	)
	if !sizeDelta.IsZero() {
		// closing a side trades against the other side of the curve
		if tr, err = e.quoteTrade(ctx, m.id, side.Flip(), sizeDelta, indexPrice, false); err != nil {
			return nil, err
		}
		tradePrice = tr.PriceX96
		if now-pos.EntryTime < cfg.MinProfitDuration &&
			risk.CalculateUnrealizedPnL(side, sizeDelta, pos.EntryPriceX96, tradePrice).IsPositive() {
			byEntry = events.NewPositionDecreasedByEntryPriceEvent(ctx, events.PositionDecreasedByEntryPricePayload{
				MarketID:      m.id,
				Account:       account,
				Side:          side,
				EntryPriceX96: pos.EntryPriceX96.Clone(),
				TradePriceX96: tradePrice.Clone(),
			})
			tradePrice = pos.EntryPriceX96.Clone()
		}
		realizedPnL = risk.CalculateUnrealizedPnL(side, sizeDelta, pos.EntryPriceX96, tradePrice)
	}

	growth := g.FundingRateGrowthX96(side)
	fundingFee := risk.CalculateFundingFee(growth, pos.EntryFundingRateGrowthX96, pos.Size)
	marginAfter := num.IntFromUint(pos.Margin, true).AddSum(realizedPnL, fundingFee).SubUint(marginDelta)
	if marginAfter.IsNegative() {
		return nil, types.ErrInsufficientMargin
	}

	sizeAfter := num.UintZero().Sub(pos.Size, sizeDelta)
	amountOut := marginDelta.Clone()
	if !sizeAfter.IsZero() {
		if err := risk.ValidateMarginRate(risk.MarginRateParams{
			Side:                    side,
			Margin:                  marginAfter,
			Size:                    sizeAfter,
			EntryPriceX96:           pos.EntryPriceX96,
			ReferencePriceX96:       indexPrice,
			LiquidationFeeRate:      cfg.LiquidationFeeRatePerPosition,
			LiquidationExecutionFee: cfg.LiquidationExecutionFee,
		}, false); err != nil {
			return nil, err
		}
		if !marginDelta.IsZero() {
			if err := risk.ValidateLeverage(marginAfter.U, sizeAfter, pos.EntryPriceX96, cfg.MaxLeveragePerPosition); err != nil {
				return nil, err
			}
		}
		pos.Margin = marginAfter.U.Clone()
	} else {
		// a full close refunds everything that is left
		amountOut.Add(amountOut, marginAfter.U)
		pos.Margin = num.UintZero()
	}

	if tr != nil {
		if err := e.applyTrade(ctx, m.id, tr); err != nil {
			return nil, err
		}
	}

	g.DecreaseSize(side, sizeDelta)
	pos.Size = sizeAfter
	pos.EntryFundingRateGrowthX96 = growth.Clone()
	p.setPosition(pos)
	p.emit(events.NewPositionDecreasedEvent(ctx, events.PositionDecreasedPayload{
		MarketID:      m.id,
		Account:       account,
		Side:          side,
		MarginDelta:   marginDelta.Clone(),
		MarginAfter:   pos.Margin.Clone(),
		SizeDelta:     sizeDelta.Clone(),
		SizeAfter:     sizeAfter.Clone(),
		TradePriceX96: tradePrice,
		RealizedPnL:   realizedPnL,
		FundingFee:    fundingFee,
		Receiver:      receiver,
		AmountOut:     amountOut.Clone(),
	}))
	if byEntry != nil {
		p.emit(byEntry)
	}
	return amountOut, nil
}
