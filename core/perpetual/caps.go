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

	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/core/risk"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/logging"

	"github.com/pkg/errors"
)

// UpdateSizeCaps recomputes the size limits of a market from the pool
// liquidity and the index price.
func (e *Engine) UpdateSizeCaps(ctx context.Context, market string) error {
	m, err := e.getMarket(market)
	if err != nil {
		return err
	}
	cfg, err := e.configs.MarketBaseConfig(market)
	if err != nil {
		return errors.Wrap(err, "failed to get market base config")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	liquidity, err := e.pool.Liquidity(ctx, market)
	if err != nil {
		return errors.Wrap(err, "failed to get pool liquidity")
	}
	indexPrice, err := e.priceFeed.IndexPrice(ctx, market, types.SideLong)
	if err != nil {
		return errors.Wrap(err, "failed to get index price")
	}

	maxSize, maxSizePerPosition := risk.CalculateSizeCaps(liquidity, indexPrice, cfg)
	p := m.begin()
	p.global.MaxSize = maxSize
	p.global.MaxSizePerPosition = maxSizePerPosition
	p.emit(events.NewGlobalSizeCapsChangedEvent(ctx, events.GlobalSizeCapsChangedPayload{
		MarketID:           market,
		MaxSize:            maxSize.Clone(),
		MaxSizePerPosition: maxSizePerPosition.Clone(),
	}))
	e.commit(m, p)

	e.log.Debug("size caps updated",
		logging.MarketID(market),
		logging.BigUint("max-size", maxSize),
		logging.BigUint("max-size-per-position", maxSizePerPosition),
	)
	return nil
}

// OnLiquidityChanged is called by the pool whenever its liquidity moves.
func (e *Engine) OnLiquidityChanged(ctx context.Context, market string) error {
	return e.UpdateSizeCaps(ctx, market)
}

// OnConfigChanged recomputes the size caps of every market after the market
// configs were reloaded.
func (e *Engine) OnConfigChanged(ctx context.Context) error {
	return e.forEachMarket(ctx, e.UpdateSizeCaps)
}
