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
	"errors"
	"fmt"

	"code.vegaprotocol.io/perps/core/perpetual"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"

	"github.com/cucumber/godog"
)

// ThePositionsShouldBe compares positions field by field. A size of 0
// means the position must not exist.
func ThePositionsShouldBe(engine *perpetual.Engine, table *godog.Table) error {
	ctx := context.Background()
	for _, r := range StrictParseTable(table, []string{
		"party", "market", "side", "size",
	}, []string{"margin", "entry price", "unrealized pnl"}) {
		row := positionChangeRow{row: r}
		pos, err := engine.GetPosition(row.Market(), row.Party(), row.Side())
		if r.MustUint("size").IsZero() {
			if !errors.Is(err, types.ErrPositionNotFound) {
				return fmt.Errorf("position %q should not exist", row.Reference())
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("couldn't get position %q: %w", row.Reference(), err)
		}

		expected := map[string]string{"size": r.MustUint("size").String()}
		got := map[string]string{"size": pos.Size.String()}
		if r.HasColumn("margin") {
			expected["margin"] = r.MustUint("margin").String()
			got["margin"] = pos.Margin.String()
		}
		if r.HasColumn("entry price") {
			expected["entry price"] = r.MustPriceX96("entry price").String()
			got["entry price"] = pos.EntryPriceX96.String()
		}
		if r.HasColumn("unrealized pnl") {
			pnl, err := engine.UnrealizedPnL(ctx, row.Market(), row.Party(), row.Side())
			if err != nil {
				return err
			}
			expected["unrealized pnl"] = r.MustInt("unrealized pnl").String()
			got["unrealized pnl"] = pnl.String()
		}
		for k, v := range expected {
			if got[k] != v {
				return formatDiff(fmt.Sprintf("invalid position %q", row.Reference()), expected, got)
			}
		}
	}
	return nil
}

func TheMarketStateShouldBe(engine *perpetual.Engine, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{"market"}, []string{
		"long size", "short size", "liquidation fund", "protocol fee",
	}) {
		market := r.MustStr("market")
		g, err := engine.GetGlobalPosition(market)
		if err != nil {
			return err
		}
		fund, err := engine.GetLiquidationFund(market)
		if err != nil {
			return err
		}
		fee, err := engine.GetProtocolFee(market)
		if err != nil {
			return err
		}

		actual := map[string]string{
			"long size":        g.Size(types.SideLong).String(),
			"short size":       g.Size(types.SideShort).String(),
			"liquidation fund": fund.String(),
			"protocol fee":     fee.String(),
		}
		expected := map[string]string{}
		got := map[string]string{}
		for name := range actual {
			if !r.HasColumn(name) {
				continue
			}
			if name == "liquidation fund" {
				expected[name] = r.MustInt(name).String()
			} else {
				expected[name] = r.MustUint(name).String()
			}
			got[name] = actual[name]
		}
		for k, v := range expected {
			if got[k] != v {
				return formatDiff(fmt.Sprintf("invalid state for market %q", market), expected, got)
			}
		}
	}
	return nil
}

// normalise keeps the comparison independent of how numbers are written.
func normalise(raw string) string {
	if i, failed := num.IntFromString(raw); !failed {
		return i.String()
	}
	return raw
}
