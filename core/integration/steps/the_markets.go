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
	"fmt"
	"strconv"
	"strings"

	"code.vegaprotocol.io/perps/config"
	"code.vegaprotocol.io/perps/core/perpetual"
	"code.vegaprotocol.io/perps/core/sim"

	"github.com/BurntSushi/toml"
	"github.com/cucumber/godog"
)

// TheMarketDefaults overrides the market parameters used by every market
// created afterwards. Values are written as they would be in the
// configuration file.
func TheMarketDefaults(cfg *config.Config, table *godog.Table) error {
	var doc strings.Builder
	doc.WriteString("[market_defaults]\n")
	for _, r := range StrictParseTable(table, []string{"name", "value"}, nil) {
		value := r.MustStr("value")
		// small integers stay bare so they can fill integer fields
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			value = strconv.Quote(value)
		}
		fmt.Fprintf(&doc, "%s = %s\n", r.MustStr("name"), value)
	}
	if _, err := toml.Decode(doc.String(), cfg); err != nil {
		return fmt.Errorf("invalid market defaults: %w", err)
	}
	return nil
}

func TheMarkets(
	engine *perpetual.Engine,
	store *config.MarketStore,
	cfg *config.Config,
	feed *sim.PriceFeed,
	pool *sim.Pool,
	table *godog.Table,
) error {
	ctx := context.Background()
	for _, r := range parseMarketsTable(table) {
		row := marketRow{row: r}
		cfg.Markets = append(cfg.Markets, config.MarketConfig{ID: row.ID()})
		if err := store.Update(*cfg); err != nil {
			return err
		}
		if r.HasColumn("index price") {
			feed.SetIndexPrice(row.ID(), r.MustPriceX96("index price"))
		}
		if r.HasColumn("impact rate") {
			pool.SetImpactRate(row.ID(), r.MustUint("impact rate").Uint64())
		}
		if err := engine.CreateMarket(ctx, row.ID()); err != nil {
			return err
		}
		if r.HasColumn("liquidity") {
			pool.SetLiquidity(row.ID(), r.MustUint("liquidity"))
			if err := engine.OnLiquidityChanged(ctx, row.ID()); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseMarketsTable(table *godog.Table) []RowWrapper {
	return StrictParseTable(table, []string{
		"id",
	}, []string{
		"index price",
		"impact rate",
		"liquidity",
	})
}

type marketRow struct {
	row RowWrapper
}

func (r marketRow) ID() string {
	return r.row.MustStr("id")
}
