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
package main

import (
	"bytes"
	"context"
	"testing"

	"code.vegaprotocol.io/perps/config"
	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/core/integration/stubs"
	"code.vegaprotocol.io/perps/core/perpetual"
	"code.vegaprotocol.io/perps/core/sim"
	"code.vegaprotocol.io/perps/core/snapshot"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/logging"
	"code.vegaprotocol.io/perps/paths"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketDefaults = `
[market_defaults]
min_margin_per_position = "10"
max_leverage_per_position = 10
liquidation_fee_rate_per_position = "1%"
liquidation_execution_fee = "5"
max_position_liquidity = "1000000"
max_position_value_rate = "100%"
max_size_rate_per_position = "10%"
`

const closeAndLiquidate = `
start_time = 2023-11-15T00:00:00Z

[[markets]]
id = "ETH"
index_price = "1"
liquidity = "1000000"

[[steps]]
action = "increase"
market = "ETH"
account = "alice"
side = "long"
margin = "100"
size = "500"

[[steps]]
action = "increase"
market = "ETH"
account = "bob"
side = "short"
margin = "100"
size = "200"

[[steps]]
action = "increase"
market = "ETH"
account = "carol"
side = "long"
margin = "5"
size = "10"
expect_error = "margin below minimum per position"

[[steps]]
action = "price"
market = "ETH"
price = "1.5"

[[steps]]
action = "decrease"
market = "ETH"
account = "alice"
side = "long"
size = "500"
receiver = "alice"

[[steps]]
action = "liquidate"
market = "ETH"
account = "bob"
side = "short"
receiver = "keeper"

[[steps]]
action = "advance"
duration = "1h"

[[steps]]
action = "settle"

[[steps]]
action = "snapshot"
`

func TestParseScenario(t *testing.T) {
	t.Run("a valid scenario is decoded", testParseValidScenario)
	t.Run("every invalid step is reported", testParseInvalidSteps)
	t.Run("markets must be declared once with a price", testParseInvalidMarkets)
}

func testParseValidScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(closeAndLiquidate))
	require.NoError(t, err)
	require.Len(t, sc.Markets, 1)
	require.Len(t, sc.Steps, 9)

	m := sc.Markets[0]
	assert.Equal(t, "ETH", m.ID)
	assert.Equal(t, "79228162514264337593543950336", m.IndexPrice.X96.String())
	assert.Equal(t, "1000000", m.Liquidity.String())
	assert.Nil(t, m.Spread.X96)

	assert.Equal(t, types.SideShort, sc.Steps[1].Side)
	assert.Equal(t, "118842243771396506390315925504", sc.Steps[3].Price.X96.String())
	assert.Equal(t, "advance 1h0m0s", sc.Steps[6].String())
	assert.Equal(t, "increase ETH alice/long", sc.Steps[0].String())
	assert.Equal(t, 2023, sc.StartTime.Year())
}

func testParseInvalidSteps(t *testing.T) {
	buf := `
[[markets]]
id = "ETH"
index_price = "1"

[[steps]]
action = "teleport"

[[steps]]
action = "increase"
market = "ETH"
account = "alice"
side = "long"

[[steps]]
action = "price"
market = "BTC"
price = "3"
`
	_, err := ParseScenario([]byte(buf))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "steps[1]: margin")
	assert.Contains(t, err.Error(), "steps[1]: size")
	assert.Contains(t, err.Error(), `market "BTC" is not declared`)
}

func testParseInvalidMarkets(t *testing.T) {
	_, err := ParseScenario([]byte(`start_time = 2023-11-15T00:00:00Z`))
	assert.ErrorIs(t, err, ErrNoMarkets)

	buf := `
[[markets]]
id = "ETH"
index_price = "1"

[[markets]]
id = "ETH"

[[markets]]
index_price = "2"
`
	_, err = ParseScenario([]byte(buf))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate market "ETH"`)
	assert.Contains(t, err.Error(), "markets[1].index_price")
	assert.Contains(t, err.Error(), "markets[2].id")

	_, err = ParseScenario([]byte("[[markets]]\nid = \"ETH\"\nindex_price = \"abc\"\n"))
	assert.Error(t, err)
}

func TestCheckOutcome(t *testing.T) {
	assert.NoError(t, checkOutcome("", nil))
	assert.Equal(t, types.ErrPositionNotFound, checkOutcome("", types.ErrPositionNotFound))
	assert.NoError(t, checkOutcome("not found", types.ErrPositionNotFound))
	assert.ErrorIs(t, checkOutcome("not found", nil), ErrUnexpectedError)
	assert.ErrorIs(t, checkOutcome("leverage", types.ErrPositionNotFound), ErrUnexpectedError)
}

func TestWithScenarioMarkets(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Markets = []config.MarketConfig{{ID: "ETH", MaxLeveragePerPosition: 5}}
	sc := &Scenario{Markets: []ScenarioMarket{{ID: "ETH"}, {ID: "BTC"}}}

	got := withScenarioMarkets(cfg, sc)
	require.Len(t, got.Markets, 2)
	assert.Equal(t, uint64(5), got.Markets[0].MaxLeveragePerPosition)
	assert.Equal(t, "BTC", got.Markets[1].ID)
	// the input is left alone
	assert.Len(t, cfg.Markets, 1)
}

type testRunner struct {
	*runner
	broker *stubs.BrokerStub
	out    *bytes.Buffer
}

func getTestRunner(t *testing.T, sc *Scenario) *testRunner {
	t.Helper()
	color.NoColor = true

	cfg, err := config.Decode([]byte(marketDefaults))
	require.NoError(t, err)
	store, err := config.NewMarketStore(withScenarioMarkets(cfg, sc))
	require.NoError(t, err)

	log := logging.NewTestLogger()
	broker := stubs.NewBrokerStub()
	timeService := sim.NewClock()
	feed := sim.NewPriceFeed()
	pool := sim.NewPool()
	engine := perpetual.New(log, perpetual.NewDefaultConfig(), broker, timeService, feed, pool, pool, store)

	snap, err := snapshot.NewEngine(paths.New(t.TempDir()), snapshot.NewTestConfig(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = snap.Close() })
	require.NoError(t, snap.AddProviders(engine))

	out := &bytes.Buffer{}
	return &testRunner{
		runner: &runner{
			log:    log,
			engine: engine,
			time:   timeService,
			feed:   feed,
			pool:   pool,
			snap:   snap,
			out:    out,
		},
		broker: broker,
		out:    out,
	}
}

func TestReplay(t *testing.T) {
	ctx := context.Background()
	sc, err := ParseScenario([]byte(closeAndLiquidate))
	require.NoError(t, err)

	r := getTestRunner(t, sc)
	require.NoError(t, r.setup(ctx, sc))
	rep := r.run(ctx, sc)

	assert.Equal(t, Report{Steps: 9, Failed: 0}, rep, r.out.String())
	assert.Contains(t, r.out.String(), "amount out 350")
	assert.Contains(t, r.out.String(), "execution fee 5")
	assert.Contains(t, r.out.String(), "2023-11-15T01:00:00Z")
	assert.Contains(t, r.out.String(), "hash ")

	_, err = r.engine.GetPosition("ETH", "alice", types.SideLong)
	assert.ErrorIs(t, err, types.ErrPositionNotFound)
	assert.Len(t, r.broker.GetEvents(events.PositionIncreasedEvent), 2)
	assert.Len(t, r.broker.GetEvents(events.PositionLiquidatedEvent), 1)
	assert.Len(t, r.broker.GetFundingSettledEvents(), 1)

	require.NoError(t, r.summary())
	assert.Contains(t, r.out.String(), "ETH: liquidation fund")
}

func TestReplayReportsUnexpectedOutcomes(t *testing.T) {
	ctx := context.Background()
	sc, err := ParseScenario([]byte(`
[[markets]]
id = "ETH"
index_price = "1"
liquidity = "1000000"

[[steps]]
action = "decrease"
market = "ETH"
account = "alice"
side = "long"
size = "1"
receiver = "alice"

[[steps]]
action = "increase"
market = "ETH"
account = "alice"
side = "long"
margin = "100"
size = "500"
expect_error = "leverage too high"
`))
	require.NoError(t, err)

	r := getTestRunner(t, sc)
	r.snap = nil
	require.NoError(t, r.setup(ctx, sc))
	rep := r.run(ctx, sc)

	assert.Equal(t, Report{Steps: 2, Failed: 2}, rep)
	assert.Contains(t, r.out.String(), "position not found")
	assert.Contains(t, r.out.String(), "step did not fail as expected")

	_, err = r.apply(ctx, Step{Action: actionSnapshot})
	assert.ErrorIs(t, err, ErrNoSnapshotStore)
}
