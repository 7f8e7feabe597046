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
	"fmt"
	"sync"

	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
)

var ErrNoIndexPrice = errors.New("no index price")

// PriceFeed is an oracle with a fixed index price per market. A spread can
// be set so positions close on a worse price than they open.
type PriceFeed struct {
	mu     sync.RWMutex
	prices map[string]*num.Uint
	spread map[string]*num.Uint
}

func NewPriceFeed() *PriceFeed {
	return &PriceFeed{
		prices: map[string]*num.Uint{},
		spread: map[string]*num.Uint{},
	}
}

// SetIndexPrice sets the Q64.96 index price of the market.
func (p *PriceFeed) SetIndexPrice(market string, priceX96 *num.Uint) {
	p.mu.Lock()
	p.prices[market] = priceX96.Clone()
	p.mu.Unlock()
}

// SetSpread sets the Q64.96 distance between the open and close prices.
func (p *PriceFeed) SetSpread(market string, spreadX96 *num.Uint) {
	p.mu.Lock()
	p.spread[market] = spreadX96.Clone()
	p.mu.Unlock()
}

// IndexPrice quotes longs above and shorts below the index by half the spread.
func (p *PriceFeed) IndexPrice(_ context.Context, market string, side types.Side) (*num.Uint, error) {
	return p.quote(market, side)
}

// DecreaseIndexPrice quotes on the opposite side of IndexPrice.
func (p *PriceFeed) DecreaseIndexPrice(_ context.Context, market string, side types.Side) (*num.Uint, error) {
	return p.quote(market, side.Flip())
}

func (p *PriceFeed) quote(market string, side types.Side) (*num.Uint, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	price, ok := p.prices[market]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoIndexPrice, market)
	}
	spread, ok := p.spread[market]
	if !ok || spread.IsZero() {
		return price.Clone(), nil
	}
	half := num.UintZero().Div(spread, num.NewUint(2))
	if side.IsLong() {
		return num.UintZero().Add(price, half), nil
	}
	if half.GTE(price) {
		return num.UintZero(), nil
	}
	return num.UintZero().Sub(price, half), nil
}
