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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"code.vegaprotocol.io/perps/config"
	"code.vegaprotocol.io/perps/config/encoding"
	"code.vegaprotocol.io/perps/paths"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketsTOML = `
[market_defaults]
min_margin_per_position = "1000"
max_leverage_per_position = 20
liquidation_fee_rate_per_position = "0.2%"
liquidation_execution_fee = "5"
max_position_liquidity = "1000000"
max_position_value_rate = "100%"
max_size_rate_per_position = "10%"
min_profit_duration = "1m"
protocol_funding_fee_rate = "0.016%"
funding_coeff = "100%"
protocol_funding_coeff = "75%"
interest_rate = "0.01%"
funding_buffer = "0.05%"
liquidity_funding_fee_rate = "50%"

[[markets]]
id = "ETH-USD"

[[markets]]
id = "BTC-USD"
max_leverage_per_position = 50
min_margin_per_position = "2000"
interest_rate = 20000
`

func TestConfig(t *testing.T) {
	t.Run("default config survives an encode decode cycle", testDefaultRoundTrip)
	t.Run("markets inherit the defaults", testMarketDefaults)
	t.Run("an explicit zero is not replaced by the default", testMarketExplicitZero)
	t.Run("markets must have unique ids", testDuplicateMarkets)
	t.Run("markets must have an id", testMissingMarketID)
	t.Run("invalid markets are rejected", testInvalidMarket)
	t.Run("config file is written once", testEnsureConfigFile)
}

func testDefaultRoundTrip(t *testing.T) {
	buf, err := config.Encode(config.NewDefaultConfig())
	require.NoError(t, err)

	cfg, err := config.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig().MarketDefaults.BaseConfig(), cfg.MarketDefaults.BaseConfig())
	assert.Equal(t, config.NewDefaultConfig().MarketDefaults.FeeRateConfig(), cfg.MarketDefaults.FeeRateConfig())
	assert.Equal(t, config.NewDefaultConfig().Snapshot, cfg.Snapshot)
	assert.Empty(t, cfg.Markets)
}

func testMarketDefaults(t *testing.T) {
	cfg, err := config.Decode([]byte(marketsTOML))
	require.NoError(t, err)

	markets, err := cfg.ResolvedMarkets()
	require.NoError(t, err)
	require.Len(t, markets, 2)

	eth := markets[0].BaseConfig()
	assert.Equal(t, "ETH-USD", markets[0].ID)
	assert.Equal(t, "1000", eth.MinMarginPerPosition.String())
	assert.Equal(t, uint64(20), eth.MaxLeveragePerPosition)
	assert.Equal(t, uint64(200_000), eth.LiquidationFeeRatePerPosition)
	assert.Equal(t, uint64(10_000_000), eth.MaxSizeRatePerPosition)
	assert.Equal(t, int64(60), eth.MinProfitDuration)

	fees := markets[0].FeeRateConfig()
	assert.Equal(t, uint64(16_000), fees.ProtocolFundingFeeRate)
	assert.Equal(t, uint64(75_000_000), fees.ProtocolFundingCoeff)
	assert.Equal(t, uint64(10_000), fees.InterestRate)

	btc := markets[1].BaseConfig()
	assert.Equal(t, "2000", btc.MinMarginPerPosition.String())
	assert.Equal(t, uint64(50), btc.MaxLeveragePerPosition)
	assert.Equal(t, "5", btc.LiquidationExecutionFee.String())
	assert.Equal(t, uint64(20_000), markets[1].FeeRateConfig().InterestRate)

	// the defaults are not shared with the markets
	eth.MinMarginPerPosition.AddSum(eth.MinMarginPerPosition)
	assert.Equal(t, "1000", cfg.MarketDefaults.MinMarginPerPosition.String())
}

func testMarketExplicitZero(t *testing.T) {
	cfg, err := config.Decode([]byte(marketsTOML + `
[[markets]]
id = "SOL-USD"
interest_rate = 0
funding_buffer = "0%"
protocol_funding_fee_rate = "0"
min_profit_duration = "0s"
`))
	require.NoError(t, err)

	markets, err := cfg.ResolvedMarkets()
	require.NoError(t, err)
	require.Len(t, markets, 3)

	sol := markets[2]
	require.Equal(t, "SOL-USD", sol.ID)
	assert.Zero(t, sol.FeeRateConfig().InterestRate)
	assert.Zero(t, sol.FeeRateConfig().FundingBuffer)
	assert.Zero(t, sol.FeeRateConfig().ProtocolFundingFeeRate)
	assert.Zero(t, sol.BaseConfig().MinProfitDuration)
	// everything left out still comes from the defaults
	assert.Equal(t, uint64(75_000_000), sol.FeeRateConfig().ProtocolFundingCoeff)
	assert.Equal(t, uint64(20), sol.BaseConfig().MaxLeveragePerPosition)

	// a market built in code opts in with the constructors
	cfg.Markets = []config.MarketConfig{
		{ID: "ETH-USD", InterestRate: encoding.NewRate(0), MinProfitDuration: encoding.NewDuration(0)},
		{ID: "BTC-USD"},
	}
	markets, err = cfg.ResolvedMarkets()
	require.NoError(t, err)
	assert.Zero(t, markets[0].FeeRateConfig().InterestRate)
	assert.Zero(t, markets[0].BaseConfig().MinProfitDuration)
	assert.Equal(t, uint64(10_000), markets[1].FeeRateConfig().InterestRate)
	assert.Equal(t, int64(60), markets[1].BaseConfig().MinProfitDuration)
}

func testDuplicateMarkets(t *testing.T) {
	cfg, err := config.Decode([]byte(marketsTOML + "\n[[markets]]\nid = \"ETH-USD\"\n"))
	require.NoError(t, err)

	_, err = cfg.ResolvedMarkets()
	assert.ErrorIs(t, err, config.ErrDuplicateMarket)
}

func testMissingMarketID(t *testing.T) {
	cfg, err := config.Decode([]byte(marketsTOML + "\n[[markets]]\nmax_leverage_per_position = 3\n"))
	require.NoError(t, err)

	_, err = cfg.ResolvedMarkets()
	assert.ErrorIs(t, err, config.ErrMissingMarketID)
}

func testInvalidMarket(t *testing.T) {
	cfg, err := config.Decode([]byte(marketsTOML + "\n[[markets]]\nid = \"SOL-USD\"\nfunding_buffer = \"101%\"\n"))
	require.NoError(t, err)

	_, err = cfg.ResolvedMarkets()
	assert.ErrorContains(t, err, "SOL-USD")

	// execution fee must stay below the minimum margin
	cfg, err = config.Decode([]byte(marketsTOML + "\n[[markets]]\nid = \"SOL-USD\"\nliquidation_execution_fee = \"1000\"\n"))
	require.NoError(t, err)
	_, err = cfg.ResolvedMarkets()
	assert.Error(t, err)

	_, err = config.Decode([]byte("[market_defaults]\ninterest_rate = \"-1%\"\n"))
	assert.Error(t, err)
}

func testEnsureConfigFile(t *testing.T) {
	home := t.TempDir()
	p := paths.New(home)

	path, err := config.EnsureConfigFile(p, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config", "config.toml"), path)

	cfg, err := config.Read(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), cfg.MarketDefaults.MaxLeveragePerPosition)

	// an existing file is left alone
	require.NoError(t, os.WriteFile(path, []byte(marketsTOML), 0o600))
	_, err = config.EnsureConfigFile(p, false)
	require.NoError(t, err)
	cfg, err = config.Read(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Markets, 2)

	_, err = config.EnsureConfigFile(p, true)
	require.NoError(t, err)
	cfg, err = config.Read(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Markets)
	assert.Equal(t, time.Duration(0), cfg.MarketDefaults.MinProfitDuration.Duration)
}

func TestMarketStore(t *testing.T) {
	cfg, err := config.Decode([]byte(marketsTOML))
	require.NoError(t, err)

	store, err := config.NewMarketStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, store.IDs())

	base, err := store.MarketBaseConfig("BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, uint64(50), base.MaxLeveragePerPosition)

	_, err = store.MarketFeeRateConfig("SOL-USD")
	assert.ErrorIs(t, err, config.ErrMarketConfigNotFound)

	// a broken update keeps the previous markets
	bad := cfg
	bad.Markets = append(bad.Markets, config.MarketConfig{ID: "ETH-USD"})
	assert.Error(t, store.Update(bad))
	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, store.IDs())

	bad.Markets = cfg.Markets[:1]
	require.NoError(t, store.Update(bad))
	assert.Equal(t, []string{"ETH-USD"}, store.IDs())
}
