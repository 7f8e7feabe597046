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
package sim

import (
	"context"
	"errors"
	"sync"

	"code.vegaprotocol.io/perps/core/risk"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
)

var (
	ErrInsufficientDepth = errors.New("trade exceeds the pool depth")
	// ErrStaleTrade is returned when the pool moved between the quote and
	// the application of a trade.
	ErrStaleTrade = errors.New("pool net position changed since the trade was quoted")
)

type poolMarket struct {
	liquidity *num.Uint
	// net is the position of the pool, positive when it is long
	net *num.Int
	// impactRate moves the trade price away from the index, in 1e-8 per
	// unit of size
	impactRate uint64
	basisX96   *num.Uint
	// markX96 is the price the net position was last settled at
	markX96 *num.Uint
	pnl     *num.Int
	settled int
}

// Pool is an in-memory liquidity pool with a linear price impact curve. It
// takes the other side of every trade and acts as the price impact
// collaborator as well.
type Pool struct {
	mu      sync.RWMutex
	markets map[string]*poolMarket
}

func NewPool() *Pool {
	return &Pool{
		markets: map[string]*poolMarket{},
	}
}

func (p *Pool) market(id string) *poolMarket {
	m, ok := p.markets[id]
	if !ok {
		m = &poolMarket{
			liquidity: num.UintZero(),
			net:       num.IntZero(),
			basisX96:  num.UintZero(),
			markX96:   num.UintZero(),
			pnl:       num.IntZero(),
		}
		p.markets[id] = m
	}
	return m
}

func (p *Pool) SetLiquidity(market string, liquidity *num.Uint) {
	p.mu.Lock()
	p.market(market).liquidity = liquidity.Clone()
	p.mu.Unlock()
}

func (p *Pool) SetImpactRate(market string, rate uint64) {
	p.mu.Lock()
	p.market(market).impactRate = rate
	p.mu.Unlock()
}

func (p *Pool) Liquidity(_ context.Context, market string) (*num.Uint, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if m, ok := p.markets[market]; ok {
		return m.liquidity.Clone(), nil
	}
	return num.UintZero(), nil
}

func (p *Pool) NetSize(_ context.Context, market string) (types.Side, *num.Uint, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	side, size := p.netSize(market)
	return side, size, nil
}

func (p *Pool) netSize(market string) (types.Side, *num.Uint) {
	m, ok := p.markets[market]
	if !ok || m.net.IsZero() {
		return types.SideLong, num.UintZero()
	}
	if m.net.IsNegative() {
		return types.SideShort, m.net.Abs()
	}
	return types.SideLong, m.net.Abs()
}

// TradePrice quotes the index price moved by the impact of the size.
func (p *Pool) TradePrice(_ context.Context, market string, side types.Side, sizeDelta, indexPriceX96 *num.Uint, _ bool) (*num.Uint, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var rate uint64
	if m, ok := p.markets[market]; ok {
		rate = m.impactRate
	}
	return quote(side, sizeDelta, indexPriceX96, rate)
}

// ApplyTrade settles the pnl of the pool's net position at the trade price
// and then moves the net position against the trader. Nothing changes when
// it fails.
func (p *Pool) ApplyTrade(_ context.Context, market string, trade types.Trade) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	netSide, netSize := p.netSize(market)
	if !netSize.EQ(trade.NetSize) || (!netSize.IsZero() && netSide != trade.NetSide) {
		return ErrStaleTrade
	}
	m := p.market(market)
	if _, err := quote(trade.Side, trade.Size, trade.IndexPriceX96, m.impactRate); err != nil {
		return err
	}

	m.pnl.Add(risk.CalculateUnrealizedPnL(netSide, netSize, m.markX96, trade.PriceX96))
	m.markX96 = trade.PriceX96.Clone()
	m.settled++

	if trade.Side.IsLong() {
		m.net.SubUint(trade.Size)
	} else {
		m.net.AddUint(trade.Size)
	}
	m.basisX96 = trade.IndexPriceX96.Clone()
	return nil
}

// PriceState reports a premium proportional to the imbalance of the pool.
// Longs pay while the pool is short.
func (p *Pool) PriceState(_ context.Context, market string) (*num.Int, *num.Uint, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.markets[market]
	if !ok {
		return num.IntZero(), num.UintZero(), nil
	}
	magnitude := num.UintZero().Mul(m.net.Abs(), num.NewUint(m.impactRate))
	premium := num.UintMulDiv(magnitude, num.Q96(), num.BasisPointsDivisor())
	return num.IntFromUint(premium, m.net.IsNegative() || m.net.IsZero()), m.basisX96.Clone(), nil
}

// NetPosition returns the signed net position of the pool.
func (p *Pool) NetPosition(market string) *num.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if m, ok := p.markets[market]; ok {
		return m.net.Clone()
	}
	return num.IntZero()
}

// RealizedPnL returns the pnl the pool settled on its net position so far.
func (p *Pool) RealizedPnL(market string) *num.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if m, ok := p.markets[market]; ok {
		return m.pnl.Clone()
	}
	return num.IntZero()
}

// Settlements returns how many times the pool pnl was settled.
func (p *Pool) Settlements(market string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if m, ok := p.markets[market]; ok {
		return m.settled
	}
	return 0
}

func quote(side types.Side, size, indexPriceX96 *num.Uint, rate uint64) (*num.Uint, error) {
	if rate == 0 || size.IsZero() {
		return indexPriceX96.Clone(), nil
	}
	impact := num.UintMulDiv(indexPriceX96, num.UintZero().Mul(size, num.NewUint(rate)), num.BasisPointsDivisor())
	if side.IsLong() {
		return num.UintZero().Add(indexPriceX96, impact), nil
	}
	if impact.GTE(indexPriceX96) {
		return nil, ErrInsufficientDepth
	}
	return num.UintZero().Sub(indexPriceX96, impact), nil
}
