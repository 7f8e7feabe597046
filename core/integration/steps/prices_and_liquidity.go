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

package steps

import (
	"context"
	"time"

	"code.vegaprotocol.io/perps/core/perpetual"
	"code.vegaprotocol.io/perps/core/sim"

	"github.com/cucumber/godog"
)

func TheIndexPricesAre(feed *sim.PriceFeed, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{"market", "price"}, []string{"spread"}) {
		feed.SetIndexPrice(r.MustStr("market"), r.MustPriceX96("price"))
		if r.HasColumn("spread") {
			feed.SetSpread(r.MustStr("market"), r.MustPriceX96("spread"))
		}
	}
	return nil
}

// ThePoolLiquidityIs sets the pool liquidity and lets the engine refresh
// the size caps of the market.
func ThePoolLiquidityIs(engine *perpetual.Engine, pool *sim.Pool, table *godog.Table) error {
	ctx := context.Background()
	for _, r := range StrictParseTable(table, []string{"market", "liquidity"}, nil) {
		pool.SetLiquidity(r.MustStr("market"), r.MustUint("liquidity"))
		if err := engine.OnLiquidityChanged(ctx, r.MustStr("market")); err != nil {
			return err
		}
	}
	return nil
}

func TheTimeMovesAhead(ts *sim.Clock, raw string) error {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	ts.Advance(d)
	return nil
}

func FundingIsSettledFor(engine *perpetual.Engine, market string) error {
	return engine.SettleFunding(context.Background(), market)
}
