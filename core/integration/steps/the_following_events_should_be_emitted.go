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
	"encoding/json"
	"fmt"

	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/core/integration/stubs"

	"github.com/cucumber/godog"
)

type partyEvent interface {
	IsParty(id string) bool
}

// TheFollowingEventsShouldBeEmitted looks for each row in the events sent
// so far. Extra columns are matched against the JSON payload.
func TheFollowingEventsShouldBeEmitted(broker *stubs.BrokerStub, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{"type", "market"}, []string{
		"party", "long funding rate growth x96", "short funding rate growth x96",
		"amount", "total", "liquidity fee", "amount out",
	}) {
		t, ok := events.TryFromString(r.MustStr("type"))
		if !ok {
			return fmt.Errorf("unknown event type %q", r.MustStr("type"))
		}
		matched := false
		for _, e := range broker.GetEvents(*t) {
			if e.MarketID() != r.MustStr("market") {
				continue
			}
			if r.HasColumn("party") {
				pe, ok := e.(partyEvent)
				if !ok || !pe.IsParty(r.MustStr("party")) {
					continue
				}
			}
			if payloadMatches(e, r) {
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("no %s event found for market %q matching %v", t, r.MustStr("market"), r.values)
		}
	}
	return nil
}

var payloadColumns = map[string]string{
	"long funding rate growth x96":  "long_funding_rate_growth_x96",
	"short funding rate growth x96": "short_funding_rate_growth_x96",
	"amount":                        "amount",
	"total":                         "total",
	"liquidity fee":                 "liquidity_fee",
	"amount out":                    "amount_out",
}

func payloadMatches(e events.Event, r RowWrapper) bool {
	buf, err := json.Marshal(e.Payload())
	if err != nil {
		return false
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(buf, &fields); err != nil {
		return false
	}
	for column, key := range payloadColumns {
		if !r.HasColumn(column) {
			continue
		}
		if normalise(fmt.Sprint(fields[key])) != normalise(r.MustStr(column)) {
			return false
		}
	}
	return true
}

func TheNumberOfEventsShouldBe(broker *stubs.BrokerStub, rawType string, count int) error {
	t, ok := events.TryFromString(rawType)
	if !ok {
		return fmt.Errorf("unknown event type %q", rawType)
	}
	if got := len(broker.GetEvents(*t)); got != count {
		return fmt.Errorf("expected %d %s events, got %d", count, t, got)
	}
	return nil
}
