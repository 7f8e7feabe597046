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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"

	"code.vegaprotocol.io/perps/config/encoding"
	"code.vegaprotocol.io/perps/core/broker"
	"code.vegaprotocol.io/perps/core/metrics"
	"code.vegaprotocol.io/perps/core/perpetual"
	"code.vegaprotocol.io/perps/core/snapshot"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
	"code.vegaprotocol.io/perps/logging"
	"code.vegaprotocol.io/perps/paths"

	"github.com/BurntSushi/toml"
	"github.com/imdario/mergo"
)

var (
	ErrDuplicateMarket = errors.New("duplicate market in configuration")
	ErrMissingMarketID = errors.New("market without id in configuration")
)

// Config ties together all other application configuration types.
type Config struct {
	Logging   logging.Config   `group:"Logging" namespace:"logging"`
	Perpetual perpetual.Config `group:"Perpetual" namespace:"perpetual"`
	Broker    broker.Config    `group:"Broker" namespace:"broker"`
	Metrics   metrics.Config   `group:"Metrics" namespace:"metrics"`
	Snapshot  snapshot.Config  `group:"Snapshot" namespace:"snapshot"`

	// MarketDefaults fills in every field a market leaves unset.
	MarketDefaults MarketConfig   `toml:"market_defaults"`
	Markets        []MarketConfig `toml:"markets"`
}

// MarketConfig is the on-disk form of a market's base and funding
// parameters. Amounts are decimal strings, rates accept percentages.
// A rate or duration written in the file is kept even at zero, amounts and
// the max leverage are inherited when left out or zero.
type MarketConfig struct {
	ID string `toml:"id,omitempty"`

	MinMarginPerPosition          *num.Uint         `toml:"min_margin_per_position,omitempty"`
	MaxLeveragePerPosition        uint64            `toml:"max_leverage_per_position,omitempty"`
	LiquidationFeeRatePerPosition encoding.Rate     `toml:"liquidation_fee_rate_per_position"`
	LiquidationExecutionFee       *num.Uint         `toml:"liquidation_execution_fee,omitempty"`
	MaxPositionLiquidity          *num.Uint         `toml:"max_position_liquidity,omitempty"`
	MaxPositionValueRate          encoding.Rate     `toml:"max_position_value_rate"`
	MaxSizeRatePerPosition        encoding.Rate     `toml:"max_size_rate_per_position"`
	MinProfitDuration             encoding.Duration `toml:"min_profit_duration"`

	ProtocolFundingFeeRate  encoding.Rate `toml:"protocol_funding_fee_rate"`
	FundingCoeff            encoding.Rate `toml:"funding_coeff"`
	ProtocolFundingCoeff    encoding.Rate `toml:"protocol_funding_coeff"`
	InterestRate            encoding.Rate `toml:"interest_rate"`
	FundingBuffer           encoding.Rate `toml:"funding_buffer"`
	LiquidityFundingFeeRate encoding.Rate `toml:"liquidity_funding_fee_rate"`
}

// NewDefaultConfig returns a set of default configs for all packages.
func NewDefaultConfig() Config {
	return Config{
		Logging:        logging.NewDefaultConfig(),
		Perpetual:      perpetual.NewDefaultConfig(),
		Broker:         broker.NewDefaultConfig(),
		Metrics:        metrics.NewDefaultConfig(),
		Snapshot:       snapshot.NewDefaultConfig(),
		MarketDefaults: NewDefaultMarketConfig(),
	}
}

// NewDefaultMarketConfig mirrors the parameters of the reference deployment,
// amounts are in 1e18 units.
func NewDefaultMarketConfig() MarketConfig {
	return MarketConfig{
		MinMarginPerPosition:          num.MustUintFromString("10000000000000000000", 10),
		MaxLeveragePerPosition:        100,
		LiquidationFeeRatePerPosition: encoding.Rate{Value: 200_000},
		LiquidationExecutionFee:       num.MustUintFromString("600000000000000000", 10),
		MaxPositionLiquidity:          num.MustUintFromString("1000000000000000000000000", 10),
		MaxPositionValueRate:          encoding.Rate{Value: 100_000_000},
		MaxSizeRatePerPosition:        encoding.Rate{Value: 10_000_000},
		MinProfitDuration:             encoding.Duration{Duration: 0},
		ProtocolFundingFeeRate:        encoding.Rate{Value: 16_000},
		FundingCoeff:                  encoding.Rate{Value: 100_000_000},
		ProtocolFundingCoeff:          encoding.Rate{Value: 75_000_000},
		InterestRate:                  encoding.Rate{Value: 10_000},
		FundingBuffer:                 encoding.Rate{Value: 50_000},
		LiquidityFundingFeeRate:       encoding.Rate{Value: 50_000_000},
	}
}

func (m MarketConfig) BaseConfig() types.MarketBaseConfig {
	return types.MarketBaseConfig{
		MinMarginPerPosition:          cloneUint(m.MinMarginPerPosition),
		MaxLeveragePerPosition:        m.MaxLeveragePerPosition,
		LiquidationFeeRatePerPosition: m.LiquidationFeeRatePerPosition.Get(),
		LiquidationExecutionFee:       cloneUint(m.LiquidationExecutionFee),
		MaxPositionLiquidity:          cloneUint(m.MaxPositionLiquidity),
		MaxPositionValueRate:          m.MaxPositionValueRate.Get(),
		MaxSizeRatePerPosition:        m.MaxSizeRatePerPosition.Get(),
		MinProfitDuration:             int64(m.MinProfitDuration.Get().Seconds()),
	}
}

func (m MarketConfig) FeeRateConfig() types.MarketFeeRateConfig {
	return types.MarketFeeRateConfig{
		ProtocolFundingFeeRate:  m.ProtocolFundingFeeRate.Get(),
		FundingCoeff:            m.FundingCoeff.Get(),
		ProtocolFundingCoeff:    m.ProtocolFundingCoeff.Get(),
		InterestRate:            m.InterestRate.Get(),
		FundingBuffer:           m.FundingBuffer.Get(),
		LiquidityFundingFeeRate: m.LiquidityFundingFeeRate.Get(),
	}
}

// ResolvedMarkets returns the configured markets with the defaults merged
// in. Every market is validated.
func (c Config) ResolvedMarkets() ([]MarketConfig, error) {
	seen := make(map[string]struct{}, len(c.Markets))
	out := make([]MarketConfig, 0, len(c.Markets))
	for _, m := range c.Markets {
		if m.ID == "" {
			return nil, ErrMissingMarketID
		}
		if _, ok := seen[m.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMarket, m.ID)
		}
		seen[m.ID] = struct{}{}

		if err := mergo.Merge(&m, c.MarketDefaults, mergo.WithTransformers(explicitValues{})); err != nil {
			return nil, fmt.Errorf("couldn't merge market defaults for %s: %w", m.ID, err)
		}
		if err := m.BaseConfig().Validate(); err != nil {
			return nil, fmt.Errorf("invalid base config for market %s: %w", m.ID, err)
		}
		if err := m.FeeRateConfig().Validate(); err != nil {
			return nil, fmt.Errorf("invalid fee rate config for market %s: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Decode parses a TOML document on top of the default configuration.
func Decode(buf []byte) (Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return Config{}, fmt.Errorf("couldn't decode configuration: %w", err)
	}
	return cfg, nil
}

// Read loads the configuration stored at path.
func Read(path string) (Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("couldn't read configuration file: %w", err)
	}
	return Decode(buf)
}

// Encode renders the configuration as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("couldn't encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// EnsureConfigFile writes the default configuration under the home
// directory unless one exists or overwrite is set. It returns the path.
func EnsureConfigFile(p paths.Paths, overwrite bool) (string, error) {
	path, err := p.CreateConfigPathFor(paths.ConfigFile)
	if err != nil {
		return "", fmt.Errorf("couldn't get path for %s: %w", paths.ConfigFile, err)
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return path, nil
	}
	buf, err := Encode(NewDefaultConfig())
	if err != nil {
		return "", err
	}
	if err := paths.WriteFile(path, buf); err != nil {
		return "", err
	}
	return path, nil
}

// explicitValues keeps the rates and durations a market sets, zero
// included. mergo would otherwise treat a zero as unset.
type explicitValues struct{}

func (explicitValues) Transformer(typ reflect.Type) func(dst, src reflect.Value) error {
	switch typ {
	case reflect.TypeOf(encoding.Rate{}):
		return func(dst, src reflect.Value) error {
			if dst.CanSet() && !dst.Interface().(encoding.Rate).IsSet() {
				dst.Set(src)
			}
			return nil
		}
	case reflect.TypeOf(encoding.Duration{}):
		return func(dst, src reflect.Value) error {
			if dst.CanSet() && !dst.Interface().(encoding.Duration).IsSet() {
				dst.Set(src)
			}
			return nil
		}
	}
	return nil
}

func cloneUint(u *num.Uint) *num.Uint {
	if u == nil {
		return nil
	}
	return u.Clone()
}
