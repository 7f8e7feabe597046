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

	"code.vegaprotocol.io/perps/core/perpetual"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"

	"github.com/cucumber/godog"
)

func PartiesIncreaseTheFollowingPositions(engine *perpetual.Engine, table *godog.Table) error {
	ctx := context.Background()
	for _, r := range StrictParseTable(table, []string{
		"party", "market", "side", "margin", "size",
	}, []string{"error"}) {
		row := positionChangeRow{row: r}
		err := engine.Increase(ctx, row.Market(), row.Party(), row.Side(), r.MustUint("margin"), r.MustUint("size"))
		if err := checkExpectedError(row, err); err != nil {
			return err
		}
	}
	return nil
}

func PartiesDecreaseTheFollowingPositions(engine *perpetual.Engine, table *godog.Table) error {
	ctx := context.Background()
	for _, r := range StrictParseTable(table, []string{
		"party", "market", "side", "margin", "size",
	}, []string{"receiver", "amount out", "error"}) {
		row := positionChangeRow{row: r}
		receiver := row.Party()
		if r.HasColumn("receiver") {
			receiver = r.MustStr("receiver")
		}
		out, err := engine.Decrease(ctx, row.Market(), row.Party(), row.Side(), r.MustUint("margin"), r.MustUint("size"), receiver)
		if err := checkExpectedError(row, err); err != nil {
			return err
		}
		if err == nil && r.HasColumn("amount out") {
			if err := checkAmount(row, "amount out", r.MustUint("amount out"), out); err != nil {
				return err
			}
		}
	}
	return nil
}

func PartiesAreLiquidated(engine *perpetual.Engine, table *godog.Table) error {
	ctx := context.Background()
	for _, r := range StrictParseTable(table, []string{
		"party", "market", "side", "fee receiver",
	}, []string{"execution fee", "error"}) {
		row := positionChangeRow{row: r}
		fee, err := engine.Liquidate(ctx, row.Market(), row.Party(), row.Side(), r.MustStr("fee receiver"))
		if err := checkExpectedError(row, err); err != nil {
			return err
		}
		if err == nil && r.HasColumn("execution fee") {
			if err := checkAmount(row, "execution fee", r.MustUint("execution fee"), fee); err != nil {
				return err
			}
		}
	}
	return nil
}

// PartiesCloseOrAreLiquidated closes every position in full, falling back
// to a liquidation when the close is rejected.
func PartiesCloseOrAreLiquidated(engine *perpetual.Engine, table *godog.Table) error {
	ctx := context.Background()
	for _, r := range StrictParseTable(table, []string{
		"party", "market", "side", "receiver", "outcome",
	}, []string{"amount", "error"}) {
		row := positionChangeRow{row: r}
		res, err := engine.ClosePositionOrLiquidate(ctx, row.Market(), row.Party(), row.Side(), r.MustStr("receiver"))
		if err := checkExpectedError(row, err); err != nil {
			return err
		}
		if err != nil {
			continue
		}
		outcome := "closed"
		if res.Liquidated {
			outcome = "liquidated"
		}
		if outcome != r.MustStr("outcome") {
			return formatDiff(fmt.Sprintf("unexpected outcome for %q", row.Reference()),
				map[string]string{"outcome": r.MustStr("outcome")},
				map[string]string{"outcome": outcome},
			)
		}
		if r.HasColumn("amount") {
			if err := checkAmount(row, "amount", r.MustUint("amount"), res.Amount); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkAmount(row positionChangeRow, name string, expected, got *num.Uint) error {
	if got != nil && expected.EQ(got) {
		return nil
	}
	gotStr := "nil"
	if got != nil {
		gotStr = got.String()
	}
	return formatDiff(fmt.Sprintf("unexpected %s for %q", name, row.Reference()),
		map[string]string{name: expected.String()},
		map[string]string{name: gotStr},
	)
}

type positionChangeRow struct {
	row RowWrapper
}

func (r positionChangeRow) Party() string {
	return r.row.MustStr("party")
}

func (r positionChangeRow) Market() string {
	return r.row.MustStr("market")
}

func (r positionChangeRow) Side() types.Side {
	return r.row.MustSide("side")
}

func (r positionChangeRow) Error() string {
	return r.row.Str("error")
}

func (r positionChangeRow) ExpectError() bool {
	return r.row.HasColumn("error")
}

func (r positionChangeRow) Reference() string {
	return fmt.Sprintf("%s/%s/%s", r.Market(), r.Party(), r.row.Str("side"))
}
