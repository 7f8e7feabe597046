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

package types

import (
	"fmt"

	lerrors "code.vegaprotocol.io/perps/core/libs/errors"
	"code.vegaprotocol.io/perps/libs/num"
)

// MarketBaseConfig holds the position limits of a market. Rates are expressed
// in units of 1/num.BasisPointsDivisorUint64.
type MarketBaseConfig struct {
	MinMarginPerPosition          *num.Uint
	MaxLeveragePerPosition        uint64
	LiquidationFeeRatePerPosition uint64
	LiquidationExecutionFee       *num.Uint
	MaxPositionLiquidity          *num.Uint
	MaxPositionValueRate          uint64
	MaxSizeRatePerPosition        uint64
	// MinProfitDuration is in seconds.
	MinProfitDuration int64
}

// MarketFeeRateConfig holds the funding parameters of a market.
type MarketFeeRateConfig struct {
	ProtocolFundingFeeRate  uint64
	FundingCoeff            uint64
	ProtocolFundingCoeff    uint64
	InterestRate            uint64
	FundingBuffer           uint64
	LiquidityFundingFeeRate uint64
}

func (c MarketBaseConfig) Clone() MarketBaseConfig {
	cpy := c
	cpy.MinMarginPerPosition = cloneOrZero(c.MinMarginPerPosition)
	cpy.LiquidationExecutionFee = cloneOrZero(c.LiquidationExecutionFee)
	cpy.MaxPositionLiquidity = cloneOrZero(c.MaxPositionLiquidity)
	return cpy
}

// Validate checks the ranges the engine relies on. The engine itself never
// calls it, configs are expected to be validated when they are loaded.
func (c MarketBaseConfig) Validate() error {
	errs := lerrors.NewCumulatedErrors()
	if c.MinMarginPerPosition == nil || c.LiquidationExecutionFee == nil || c.MaxPositionLiquidity == nil {
		errs.Add(fmt.Errorf("%w: missing amount", ErrInvalidMarketBaseConfig))
		return errs
	}
	if c.MaxLeveragePerPosition == 0 {
		errs.Add(ErrMaxLeveragePerPositionIsZero)
	}
	if c.LiquidationFeeRatePerPosition > num.BasisPointsDivisorUint64 {
		errs.Addf("liquidation_fee_rate_per_position", ErrRateExceedsBasisPointsDivisor)
	}
	if c.MaxPositionValueRate == 0 {
		errs.Add(ErrMaxPositionValueRateIsZero)
	}
	if c.MaxSizeRatePerPosition > num.BasisPointsDivisorUint64 {
		errs.Addf("max_size_rate_per_position", ErrRateExceedsBasisPointsDivisor)
	}
	if c.MinProfitDuration < 0 {
		errs.Add(fmt.Errorf("%w: negative min profit duration", ErrInvalidMarketBaseConfig))
	}
	if c.MinMarginPerPosition.LTE(c.LiquidationExecutionFee) {
		errs.Add(fmt.Errorf("%w: min margin per position must exceed the liquidation execution fee", ErrInvalidMarketBaseConfig))
	}
	return errs.ErrorOrNil()
}

func (c MarketFeeRateConfig) Validate() error {
	errs := lerrors.NewCumulatedErrors()
	for name, rate := range map[string]uint64{
		"protocol_funding_fee_rate":  c.ProtocolFundingFeeRate,
		"funding_coeff":              c.FundingCoeff,
		"interest_rate":              c.InterestRate,
		"funding_buffer":             c.FundingBuffer,
		"liquidity_funding_fee_rate": c.LiquidityFundingFeeRate,
	} {
		if rate > num.BasisPointsDivisorUint64 {
			errs.Addf(name, ErrRateExceedsBasisPointsDivisor)
		}
	}
	if c.ProtocolFundingCoeff > num.BasisPointsDivisorUint64 {
		errs.Add(ErrProtocolFundingCoeffOutOfRange)
	}
	return errs.ErrorOrNil()
}

func cloneOrZero(u *num.Uint) *num.Uint {
	if u == nil {
		return num.UintZero()
	}
	return u.Clone()
}
