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

package funding

import (
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
)

var (
	// 1e8 * 8h * 1e8
	protocolRateDivisor = num.UintZero().Mul(
		num.UintZero().Mul(num.BasisPointsDivisor(), num.NewUint(num.FundingReferencePeriodSeconds)),
		num.BasisPointsDivisor(),
	)
	referencePeriod = num.NewUint(num.FundingReferencePeriodSeconds)
)

// CalculateActualPremiumRateX96 expresses the curve premium, quoted against
// the curve basis index price, against the current index price.
func CalculateActualPremiumRateX96(premiumRateX96 *num.Int, basisIndexPriceX96, indexPriceX96 *num.Uint) *num.Int {
	if premiumRateX96.IsZero() || basisIndexPriceX96.IsZero() || indexPriceX96.IsZero() {
		return num.IntZero()
	}
	magnitude := num.UintMulDiv(premiumRateX96.U, basisIndexPriceX96, indexPriceX96)
	return num.IntFromUint(magnitude, !premiumRateX96.IsNegative())
}

// CalculateBaseRateX96 returns the funding rate for timeDelta seconds. A
// positive rate means longs pay shorts.
//
// The 8h rate is premium*fundingCoeff + clamp(interest - premium*fundingCoeff, ±buffer).
func CalculateBaseRateX96(cfg types.MarketFeeRateConfig, actualPremiumRateX96 *num.Int, timeDelta uint64) *num.Int {
	var (
		premium  = num.IntMulDivFloor(actualPremiumRateX96, num.NewUint(cfg.FundingCoeff), num.BasisPointsDivisor())
		interest = num.IntFromUint(num.UintMulDiv(num.NewUint(cfg.InterestRate), num.Q96(), num.BasisPointsDivisor()), true)
		buffer   = num.UintMulDiv(num.NewUint(cfg.FundingBuffer), num.Q96(), num.BasisPointsDivisor())
	)

	diff := interest.Sub(premium)
	if diff.U.GT(buffer) {
		diff = num.IntFromUint(buffer, !diff.IsNegative())
	}
	rate := premium.Clone().Add(diff)
	return num.IntMulDivFloor(rate, num.NewUint(timeDelta), referencePeriod)
}

// CalculateFundingRateX96 returns the protocol funding rate charged to each
// side for timeDelta seconds. The side paying the base rate bears
// ProtocolFundingCoeff of ProtocolFundingFeeRate, the other side the rest.
// Both values are in [0, 2^146] for any timeDelta.
func CalculateFundingRateX96(cfg types.MarketFeeRateConfig, longsPay bool, timeDelta uint64) (long, short *num.Uint) {
	if timeDelta == 0 {
		return num.UintZero(), num.UintZero()
	}
	payerCoeff := cfg.ProtocolFundingCoeff
	receiverCoeff := num.BasisPointsDivisorUint64 - payerCoeff

	rate := func(coeff uint64) *num.Uint {
		x := num.UintZero().Mul(num.Q96(), num.NewUint(cfg.ProtocolFundingFeeRate))
		x.Mul(x, num.NewUint(coeff))
		return num.UintMulDivRoundingUp(x, num.NewUint(timeDelta), protocolRateDivisor)
	}

	if longsPay {
		return rate(payerCoeff), rate(receiverCoeff)
	}
	return rate(receiverCoeff), rate(payerCoeff)
}
