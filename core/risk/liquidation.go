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

package risk

import (
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
)

// LiquidationPriceParams are the inputs of the liquidation price solver.
type LiquidationPriceParams struct {
	Side                    types.Side
	Margin                  *num.Uint
	Size                    *num.Uint
	EntryPriceX96           *num.Uint
	RequiredFundingFee      *num.Int
	LiquidationFeeRate      uint64
	LiquidationExecutionFee *num.Uint
}

// CalculateLiquidationPriceX96 returns the price at which margin plus the
// funding fee is exhausted net of the liquidation and execution fees, and the
// funding fee that price was solved with.
//
// The required funding fee is used when margin + fee covers the execution fee
// and the resulting price lies strictly beyond the entry price in the losing
// direction. Otherwise the funding fee is dropped and the price is solved
// from the margin alone.
func CalculateLiquidationPriceX96(p LiquidationPriceParams) (*num.Uint, *num.Int) {
	available := num.IntFromUint(p.Margin, true).Add(p.RequiredFundingFee)
	if available.GTE(num.IntFromUint(p.LiquidationExecutionFee, true)) {
		price := solveLiquidationPriceX96(p, p.RequiredFundingFee)
		if isAcceptableLiquidationPriceX96(p.Side, price, p.EntryPriceX96) {
			return price, p.RequiredFundingFee.Clone()
		}
	}
	return solveLiquidationPriceX96(p, num.IntZero()), num.IntZero()
}

// solveLiquidationPriceX96 finds P such that
// margin + fundingFee + pnl(P) = liquidationFee + executionFee.
func solveLiquidationPriceX96(p LiquidationPriceParams, fundingFee *num.Int) *num.Uint {
	if p.Size.IsZero() {
		return p.EntryPriceX96.Clone()
	}
	buffer := num.IntFromUint(p.Margin, true).
		Add(fundingFee).
		SubUint(CalculateLiquidationFee(p.Size, p.EntryPriceX96, p.LiquidationFeeRate)).
		SubUint(p.LiquidationExecutionFee)

	// a long loses when the price goes down, a short when it goes up
	priceMovesDown := p.Side.IsLong() == buffer.IsPositive()
	// longs round the price up and shorts round it down, in both cases the
	// distance to entry is floored when moving toward the loss and ceiled otherwise
	delta := num.UintMulDiv(buffer.U, num.Q96(), p.Size)
	if buffer.IsNegative() {
		delta = num.UintMulDivRoundingUp(buffer.U, num.Q96(), p.Size)
	}

	if priceMovesDown {
		if delta.GTE(p.EntryPriceX96) {
			return num.UintZero()
		}
		return num.UintZero().Sub(p.EntryPriceX96, delta)
	}
	return num.UintZero().Add(p.EntryPriceX96, delta)
}

func isAcceptableLiquidationPriceX96(side types.Side, priceX96, entryPriceX96 *num.Uint) bool {
	if side.IsLong() {
		return priceX96.LT(entryPriceX96)
	}
	return priceX96.GT(entryPriceX96)
}

// FundingShortfall describes how the funding fee the liquidated position did
// not settle is absorbed.
type FundingShortfall struct {
	// Insufficient is adjusted - required funding fee.
	Insufficient *num.Int
	// OppositeGrowthDeltaX96 is added to the opposite side growth when that
	// side holds size, nil otherwise.
	OppositeGrowthDeltaX96 *num.Int
	// FundDelta is what the liquidation fund absorbs when nobody holds the
	// opposite side.
	FundDelta *num.Int
}

// CalculateFundingShortfall splits adjusted - required between the opposite
// side growth and the liquidation fund. The opposite side is charged with
// rounding against it.
func CalculateFundingShortfall(requiredFundingFee, adjustedFundingFee *num.Int, oppositeSize *num.Uint) FundingShortfall {
	insufficient := adjustedFundingFee.Clone().Sub(requiredFundingFee)
	res := FundingShortfall{
		Insufficient: insufficient,
		FundDelta:    num.IntZero(),
	}
	if insufficient.IsZero() {
		return res
	}
	if oppositeSize.IsZero() {
		res.FundDelta = insufficient.Neg()
		return res
	}
	res.OppositeGrowthDeltaX96 = num.IntMulDivFloor(insufficient.Neg(), num.Q96(), oppositeSize)
	return res
}

// CalculateLiquidationFundDelta returns liquidation fee + shortfall fund delta
// + pnl of closing at tradePriceX96 a position valued at liquidationPriceX96.
func CalculateLiquidationFundDelta(
	side types.Side,
	size, liquidationPriceX96, tradePriceX96 *num.Uint,
	liquidationFee *num.Uint,
	shortfall FundingShortfall,
) *num.Int {
	pnl := CalculateUnrealizedPnL(side, size, liquidationPriceX96, tradePriceX96)
	return num.IntFromUint(liquidationFee, true).AddSum(shortfall.FundDelta, pnl)
}
