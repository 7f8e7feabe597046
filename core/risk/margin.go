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

// MarginRateParams are the inputs of the maintenance margin predicate.
type MarginRateParams struct {
	Side                    types.Side
	Margin                  *num.Int
	Size                    *num.Uint
	EntryPriceX96           *num.Uint
	ReferencePriceX96       *num.Uint
	LiquidationFeeRate      uint64
	LiquidationExecutionFee *num.Uint
}

// CalculateLiquidationFee returns ceil(size * entry * rate / (Q96 * 1e8)).
func CalculateLiquidationFee(size, entryPriceX96 *num.Uint, liquidationFeeRate uint64) *num.Uint {
	sizeRate := num.UintZero().Mul(size, num.NewUint(liquidationFeeRate))
	return num.UintMulDivRoundingUp(sizeRate, entryPriceX96, num.UintZero().Mul(num.Q96(), num.BasisPointsDivisor()))
}

// CalculateMaintenanceMargin is the liquidation fee plus the execution fee.
func CalculateMaintenanceMargin(size, entryPriceX96 *num.Uint, liquidationFeeRate uint64, executionFee *num.Uint) *num.Uint {
	return CalculateLiquidationFee(size, entryPriceX96, liquidationFeeRate).AddSum(executionFee)
}

// IsLiquidatable is true when margin or margin+pnl is not positive, or when
// the maintenance margin is not strictly covered by margin+pnl.
func IsLiquidatable(margin, unrealizedPnL *num.Int, maintenanceMargin *num.Uint) bool {
	if !margin.IsPositive() {
		return true
	}
	equity := margin.Clone().Add(unrealizedPnL)
	if !equity.IsPositive() {
		return true
	}
	return !equity.GTUint(maintenanceMargin)
}

// IsLiquidatablePosition evaluates IsLiquidatable for the given parameters.
func IsLiquidatablePosition(p MarginRateParams) bool {
	pnl := CalculateUnrealizedPnL(p.Side, p.Size, p.EntryPriceX96, p.ReferencePriceX96)
	mm := CalculateMaintenanceMargin(p.Size, p.EntryPriceX96, p.LiquidationFeeRate, p.LiquidationExecutionFee)
	return IsLiquidatable(p.Margin, pnl, mm)
}

// ValidateMarginRate checks the maintenance margin in one of two directions.
// For an adjustment it fails with ErrMarginRateTooHigh if the position would
// be liquidatable. For a liquidation it fails with ErrMarginRateTooLow if the
// position is healthy.
func ValidateMarginRate(p MarginRateParams, liquidation bool) error {
	liquidatable := IsLiquidatablePosition(p)
	if liquidation {
		if !liquidatable {
			return types.ErrMarginRateTooLow
		}
		return nil
	}
	if liquidatable {
		return types.ErrMarginRateTooHigh
	}
	return nil
}

// ValidateLeverage fails with ErrLeverageTooHigh if the value of the position
// exceeds margin * maxLeverage.
func ValidateLeverage(margin *num.Uint, size, entryPriceX96 *num.Uint, maxLeverage uint64) error {
	liquidity := CalculateLiquidity(size, entryPriceX96)
	if liquidity.GT(num.UintZero().Mul(margin, num.NewUint(maxLeverage))) {
		return types.ErrLeverageTooHigh
	}
	return nil
}
