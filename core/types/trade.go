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
package types

import "code.vegaprotocol.io/perps/libs/num"

// Trade is a quoted trade of a position against the pool. Applying it moves
// the price curve and settles the pool's unrealised pnl on its net position
// from before the trade, in one step.
type Trade struct {
	Side          Side
	Size          *num.Uint
	IndexPriceX96 *num.Uint
	PriceX96      *num.Uint
	Liquidation   bool
	// pool net position before the trade
	NetSide Side
	NetSize *num.Uint
}
