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

import (
	"code.vegaprotocol.io/perps/libs/num"
)

// PositionKey identifies a position within a market.
type PositionKey struct {
	Account string
	Side    Side
}

// Less orders keys by account then side.
func (k PositionKey) Less(o PositionKey) bool {
	if k.Account != o.Account {
		return k.Account < o.Account
	}
	return k.Side < o.Side
}

// Position is the margin position of one account on one side of a market.
// A position only exists while its size is not zero.
type Position struct {
	Account                   string
	Side                      Side
	Margin                    *num.Uint
	Size                      *num.Uint
	EntryPriceX96             *num.Uint
	EntryFundingRateGrowthX96 *num.Int
	// EntryTime is a unix timestamp in seconds.
	EntryTime int64
}

// NewPosition returns an empty position for the key.
func NewPosition(account string, side Side) *Position {
	return &Position{
		Account:                   account,
		Side:                      side,
		Margin:                    num.UintZero(),
		Size:                      num.UintZero(),
		EntryPriceX96:             num.UintZero(),
		EntryFundingRateGrowthX96: num.IntZero(),
	}
}

func (p *Position) Key() PositionKey {
	return PositionKey{Account: p.Account, Side: p.Side}
}

func (p *Position) IsEmpty() bool {
	return p.Size.IsZero()
}

func (p Position) Clone() *Position {
	return &Position{
		Account:                   p.Account,
		Side:                      p.Side,
		Margin:                    p.Margin.Clone(),
		Size:                      p.Size.Clone(),
		EntryPriceX96:             p.EntryPriceX96.Clone(),
		EntryFundingRateGrowthX96: p.EntryFundingRateGrowthX96.Clone(),
		EntryTime:                 p.EntryTime,
	}
}

// GlobalPosition is the aggregate exposure of a market.
type GlobalPosition struct {
	LongSize                  *num.Uint
	ShortSize                 *num.Uint
	MaxSize                   *num.Uint
	MaxSizePerPosition        *num.Uint
	LongFundingRateGrowthX96  *num.Int
	ShortFundingRateGrowthX96 *num.Int
	// LastFundingSettleTime is a unix timestamp in seconds.
	LastFundingSettleTime int64
}

func NewGlobalPosition() *GlobalPosition {
	return &GlobalPosition{
		LongSize:                  num.UintZero(),
		ShortSize:                 num.UintZero(),
		MaxSize:                   num.UintZero(),
		MaxSizePerPosition:        num.UintZero(),
		LongFundingRateGrowthX96:  num.IntZero(),
		ShortFundingRateGrowthX96: num.IntZero(),
	}
}

func (g GlobalPosition) Clone() *GlobalPosition {
	return &GlobalPosition{
		LongSize:                  g.LongSize.Clone(),
		ShortSize:                 g.ShortSize.Clone(),
		MaxSize:                   g.MaxSize.Clone(),
		MaxSizePerPosition:        g.MaxSizePerPosition.Clone(),
		LongFundingRateGrowthX96:  g.LongFundingRateGrowthX96.Clone(),
		ShortFundingRateGrowthX96: g.ShortFundingRateGrowthX96.Clone(),
		LastFundingSettleTime:     g.LastFundingSettleTime,
	}
}

// Size returns the aggregate size of a side, the value is shared.
func (g *GlobalPosition) Size(side Side) *num.Uint {
	if side.IsLong() {
		return g.LongSize
	}
	return g.ShortSize
}

// TotalSize returns long + short.
func (g *GlobalPosition) TotalSize() *num.Uint {
	return num.Sum(g.LongSize, g.ShortSize)
}

// FundingRateGrowthX96 returns the cumulative funding growth of a side, the value is shared.
func (g *GlobalPosition) FundingRateGrowthX96(side Side) *num.Int {
	if side.IsLong() {
		return g.LongFundingRateGrowthX96
	}
	return g.ShortFundingRateGrowthX96
}

func (g *GlobalPosition) SetFundingRateGrowthX96(side Side, v *num.Int) {
	if side.IsLong() {
		g.LongFundingRateGrowthX96 = v
		return
	}
	g.ShortFundingRateGrowthX96 = v
}

// IncreaseSize adds delta to the aggregate size of a side.
func (g *GlobalPosition) IncreaseSize(side Side, delta *num.Uint) {
	size := g.Size(side)
	size.Add(size, delta)
}

// DecreaseSize removes delta from the aggregate size of a side. Decreases are
// always bounded by earlier increases, an underflow panics.
func (g *GlobalPosition) DecreaseSize(side Side, delta *num.Uint) {
	size := g.Size(side)
	size.Sub(size, delta)
}
