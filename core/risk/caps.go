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

// CalculateSizeCaps returns the aggregate and per position size limits for
// the given pool liquidity. A zero index price leaves no capacity.
func CalculateSizeCaps(liquidity, indexPriceX96 *num.Uint, cfg types.MarketBaseConfig) (maxSize, maxSizePerPosition *num.Uint) {
	if indexPriceX96.IsZero() || liquidity.IsZero() {
		return num.UintZero(), num.UintZero()
	}
	capped := num.Min(liquidity, cfg.MaxPositionLiquidity)
	rateX96 := num.UintZero().Mul(num.NewUint(cfg.MaxPositionValueRate), num.Q96())
	maxSize = num.UintMulDiv(capped, rateX96, num.UintZero().Mul(num.BasisPointsDivisor(), indexPriceX96))
	maxSizePerPosition = num.UintMulDiv(maxSize, num.NewUint(cfg.MaxSizeRatePerPosition), num.BasisPointsDivisor())
	return maxSize, maxSizePerPosition
}
