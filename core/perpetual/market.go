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
	"sync"

	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"

	"github.com/google/btree"
)

const positionsDegree = 32

func positionLess(a, b *types.Position) bool {
	return a.Key().Less(b.Key())
}

// marketState is the whole mutable state of one market. mu is held for the
// duration of every operation on the market.
type marketState struct {
	id string
	mu sync.Mutex

	global                *types.GlobalPosition
	positions             *btree.BTreeG[*types.Position]
	liquidationFund       *num.Int
	protocolFee           *num.Uint
	liquidityPnLGrowthX96 *num.Int
}

func newMarketState(id string, now int64) *marketState {
	global := types.NewGlobalPosition()
	global.LastFundingSettleTime = now
	return &marketState{
		id:                    id,
		global:                global,
		positions:             btree.NewG(positionsDegree, positionLess),
		liquidationFund:       num.IntZero(),
		protocolFee:           num.UintZero(),
		liquidityPnLGrowthX96: num.IntZero(),
	}
}

// position returns a copy of the stored position.
func (m *marketState) position(account string, side types.Side) (*types.Position, bool) {
	p, ok := m.positions.Get(&types.Position{Account: account, Side: side})
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// begin starts a set of changes on a copy of the market state.
func (m *marketState) begin() *pending {
	return &pending{
		global:                m.global.Clone(),
		liquidationFund:       m.liquidationFund.Clone(),
		protocolFee:           m.protocolFee.Clone(),
		liquidityPnLGrowthX96: m.liquidityPnLGrowthX96.Clone(),
	}
}

// commit writes the pending changes and returns the events they produced.
func (m *marketState) commit(p *pending) []events.Event {
	m.global = p.global
	m.liquidationFund = p.liquidationFund
	m.protocolFee = p.protocolFee
	m.liquidityPnLGrowthX96 = p.liquidityPnLGrowthX96
	for _, pos := range p.positions {
		if pos.IsEmpty() {
			m.positions.Delete(pos)
			continue
		}
		m.positions.ReplaceOrInsert(pos)
	}
	return p.evts
}

// pending is the post-state of an operation. Nothing reaches the market
// until it is committed, a rejected operation simply drops it.
type pending struct {
	global                *types.GlobalPosition
	liquidationFund       *num.Int
	protocolFee           *num.Uint
	liquidityPnLGrowthX96 *num.Int
	// empty positions are deleted on commit
	positions []*types.Position
	evts      []events.Event
	// fundingTimeDelta is the time covered by a funding settlement that
	// moved the accumulators, zero otherwise.
	fundingTimeDelta uint64
}

func (p *pending) setPosition(pos *types.Position) {
	p.positions = append(p.positions, pos)
}

func (p *pending) emit(evts ...events.Event) {
	p.evts = append(p.evts, evts...)
}
