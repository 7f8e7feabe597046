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
	"encoding/json"

	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
	"code.vegaprotocol.io/perps/logging"

	"github.com/pkg/errors"
)

const snapshotNamespace = "perpetual"

type marketSnapshot struct {
	Global                *types.GlobalPosition `json:"global"`
	Positions             []*types.Position     `json:"positions"`
	LiquidationFund       *num.Int              `json:"liquidation_fund"`
	ProtocolFee           *num.Uint             `json:"protocol_fee"`
	LiquidityPnLGrowthX96 *num.Int              `json:"liquidity_pnl_growth_x96"`
}

func (e *Engine) Namespace() string {
	return snapshotNamespace
}

// Keys returns one key per market.
func (e *Engine) Keys() []string {
	return e.Markets()
}

// GetState serialises a market, positions are ordered by account then side.
func (e *Engine) GetState(key string) ([]byte, error) {
	m, err := e.getMarket(key)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := marketSnapshot{
		Global:                m.global.Clone(),
		Positions:             make([]*types.Position, 0, m.positions.Len()),
		LiquidationFund:       m.liquidationFund.Clone(),
		ProtocolFee:           m.protocolFee.Clone(),
		LiquidityPnLGrowthX96: m.liquidityPnLGrowthX96.Clone(),
	}
	m.positions.Ascend(func(p *types.Position) bool {
		snap.Positions = append(snap.Positions, p.Clone())
		return true
	})
	return json.Marshal(snap)
}

// LoadState replaces the state of a market, creating it if needed.
func (e *Engine) LoadState(_ context.Context, key string, state []byte) error {
	snap := marketSnapshot{}
	if err := json.Unmarshal(state, &snap); err != nil {
		return errors.Wrapf(err, "could not decode market %s", key)
	}
	if err := snap.validate(); err != nil {
		return errors.Wrapf(err, "invalid snapshot for market %s", key)
	}

	m := newMarketState(key, snap.Global.LastFundingSettleTime)
	m.global = snap.Global
	m.liquidationFund = snap.LiquidationFund
	m.protocolFee = snap.ProtocolFee
	m.liquidityPnLGrowthX96 = snap.LiquidityPnLGrowthX96
	for _, p := range snap.Positions {
		m.positions.ReplaceOrInsert(p)
	}

	e.mu.Lock()
	e.markets[key] = m
	e.mu.Unlock()

	e.log.Info("market restored from snapshot",
		logging.MarketID(key),
		logging.Int("positions", len(snap.Positions)),
	)
	return nil
}

// validate rejects a snapshot the engine could not operate on: missing
// values, empty or duplicated positions, margins wider than 128 bits and
// side totals that do not match the positions.
func (s *marketSnapshot) validate() error {
	if s.Global == nil || s.LiquidationFund == nil || s.ProtocolFee == nil || s.LiquidityPnLGrowthX96 == nil {
		return errors.New("incomplete market state")
	}
	g := s.Global
	if g.LongSize == nil || g.ShortSize == nil || g.MaxSize == nil || g.MaxSizePerPosition == nil ||
		g.LongFundingRateGrowthX96 == nil || g.ShortFundingRateGrowthX96 == nil {
		return errors.New("incomplete global position")
	}

	var (
		seen  = make(map[types.PositionKey]struct{}, len(s.Positions))
		long  = num.UintZero()
		short = num.UintZero()
	)
	for _, p := range s.Positions {
		if p == nil {
			return errors.New("null position")
		}
		if p.Margin == nil || p.Size == nil || p.EntryPriceX96 == nil || p.EntryFundingRateGrowthX96 == nil {
			return errors.Errorf("incomplete position %s/%s", p.Account, p.Side)
		}
		if !p.Side.Valid() || p.IsEmpty() {
			return errors.Errorf("invalid position %s/%s", p.Account, p.Side)
		}
		if p.Margin.GT(num.MaxUint128()) {
			return errors.Errorf("position %s/%s: %v", p.Account, p.Side, types.ErrMarginTooLarge)
		}
		if _, ok := seen[p.Key()]; ok {
			return errors.Errorf("duplicate position %s/%s", p.Account, p.Side)
		}
		seen[p.Key()] = struct{}{}

		total := long
		if p.Side.IsShort() {
			total = short
		}
		if _, overflow := total.AddOverflow(total, p.Size); overflow {
			return errors.Errorf("%s size overflows", p.Side)
		}
	}
	if !long.EQ(g.LongSize) || !short.EQ(g.ShortSize) {
		return errors.Errorf("global sizes %s/%s do not match the positions %s/%s", g.LongSize, g.ShortSize, long, short)
	}
	return nil
}
