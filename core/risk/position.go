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

// Package risk holds the pure position arithmetic shared by the position
// lifecycle and the liquidation flow. Every rounding choice favours the
// protocol over the trader.
package risk

import (
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
)

// CalculateLiquidity returns the value of size at priceX96, rounded up.
func CalculateLiquidity(size, priceX96 *num.Uint) *num.Uint {
	return num.UintMulDivRoundingUp(size, priceX96, num.Q96())
}

// CalculateNextEntryPriceX96 returns the size weighted entry price after
// sizeDelta is added at tradePriceX96. Longs round up, shorts round down.
func CalculateNextEntryPriceX96(
	side types.Side,
	sizeBefore, entryPriceBeforeX96 *num.Uint,
	sizeDelta, tradePriceX96 *num.Uint,
) *num.Uint {
	switch {
	case sizeBefore.IsZero() && sizeDelta.IsZero():
		return num.UintZero()
	case sizeBefore.IsZero():
		return tradePriceX96.Clone()
	case sizeDelta.IsZero():
		return entryPriceBeforeX96.Clone()
	}

	sizeAfter := num.Sum(sizeBefore, sizeDelta)

	// (a*b + c*d) / s without a 512 bit sum: split each product into
	// quotient and remainder so only remainders are added together.
	q := num.Sum(
		num.UintMulDiv(sizeBefore, entryPriceBeforeX96, sizeAfter),
		num.UintMulDiv(sizeDelta, tradePriceX96, sizeAfter),
	)
	rem := num.Sum(
		num.UintMulMod(sizeBefore, entryPriceBeforeX96, sizeAfter),
		num.UintMulMod(sizeDelta, tradePriceX96, sizeAfter),
	)
	q.Add(q, num.UintZero().Div(rem, sizeAfter))
	if side.IsLong() && !num.UintZero().Mod(rem, sizeAfter).IsZero() {
		q.Add(q, num.NewUint(1))
	}
	return q
}

// CalculateUnrealizedPnL returns the PnL of size acquired at entryPriceX96 if
// it was closed at priceX96. A profit is rounded down, a loss is rounded up
// in magnitude.
func CalculateUnrealizedPnL(side types.Side, size, entryPriceX96, priceX96 *num.Uint) *num.Int {
	delta, priceAboveEntry := num.UintZero().Delta(entryPriceX96, priceX96)
	if delta.IsZero() {
		return num.IntZero()
	}
	if side.IsLong() == priceAboveEntry {
		return num.IntFromUint(num.UintMulDiv(size, delta, num.Q96()), true)
	}
	return num.IntFromUint(num.UintMulDivRoundingUp(size, delta, num.Q96()), false)
}

// CalculateFundingFee returns the funding accrued by size since the position
// took its growth snapshot. A positive value is owed to the position.
// The result is rounded toward negative infinity.
func CalculateFundingFee(globalGrowthX96, entryGrowthX96 *num.Int, size *num.Uint) *num.Int {
	delta := globalGrowthX96.Clone().Sub(entryGrowthX96)
	return num.IntMulDivFloor(delta, size, num.Q96())
}
