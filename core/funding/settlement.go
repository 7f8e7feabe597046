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
	"code.vegaprotocol.io/perps/core/risk"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
)

// SettlementInput is everything a funding settlement reads.
type SettlementInput struct {
	Config               types.MarketFeeRateConfig
	LongSize             *num.Uint
	ShortSize            *num.Uint
	IndexPriceX96        *num.Uint
	ActualPremiumRateX96 *num.Int
	Liquidity            *num.Uint
	TimeDelta            uint64
}

// Settlement is the outcome of one funding settlement, the caller applies it.
type Settlement struct {
	BaseRateX96         *num.Int
	LongFundingRateX96  *num.Uint
	ShortFundingRateX96 *num.Uint

	// ProtocolFee is the part of the protocol funding fee kept by the protocol.
	ProtocolFee *num.Uint
	// LiquidityFee is the liquidity share of the protocol funding fee plus
	// whatever the paying side paid in excess of what the receiving side gets.
	LiquidityFee *num.Uint

	PaidFundingFee     *num.Uint
	ReceivedFundingFee *num.Uint

	LongGrowthDeltaX96         *num.Int
	ShortGrowthDeltaX96        *num.Int
	LiquidityPnLGrowthDeltaX96 *num.Uint
}

// LongsPay reports whether longs are the paying side.
func (s Settlement) LongsPay() bool {
	return !s.BaseRateX96.IsNegative()
}

// CalculateSettlement computes the funding transfers between longs, shorts,
// the protocol and the liquidity pool. Liquidity must not be zero.
func CalculateSettlement(in SettlementInput) Settlement {
	base := CalculateBaseRateX96(in.Config, in.ActualPremiumRateX96, in.TimeDelta)
	longsPay := !base.IsNegative()
	longRate, shortRate := CalculateFundingRateX96(in.Config, longsPay, in.TimeDelta)

	longProtocolFee := protocolFundingFee(in.LongSize, in.IndexPriceX96, longRate)
	shortProtocolFee := protocolFundingFee(in.ShortSize, in.IndexPriceX96, shortRate)
	totalProtocolFee := num.Sum(longProtocolFee, shortProtocolFee)

	liquidityFee := num.UintMulDiv(totalProtocolFee, num.NewUint(in.Config.LiquidityFundingFeeRate), num.BasisPointsDivisor())
	protocolFee := num.UintZero().Sub(totalProtocolFee, liquidityFee)

	paidSize, receivedSize := in.LongSize, in.ShortSize
	if !longsPay {
		paidSize, receivedSize = in.ShortSize, in.LongSize
	}
	paidFee := num.UintMulDivRoundingUp(risk.CalculateLiquidity(paidSize, in.IndexPriceX96), base.U, num.Q96())
	receivedFee := paidFee.Clone()
	if paidSize.GT(receivedSize) {
		receivedFee = num.UintMulDiv(paidFee, receivedSize, paidSize)
		liquidityFee.Add(liquidityFee, num.UintZero().Sub(paidFee, receivedFee))
	}

	paidNet := num.IntFromUint(paidFee, false)
	receivedNet := num.IntFromUint(receivedFee, true)
	longNet, shortNet := paidNet, receivedNet
	if !longsPay {
		longNet, shortNet = receivedNet, paidNet
	}
	longNet.SubUint(longProtocolFee)
	shortNet.SubUint(shortProtocolFee)

	return Settlement{
		BaseRateX96:                base,
		LongFundingRateX96:         longRate,
		ShortFundingRateX96:        shortRate,
		ProtocolFee:                protocolFee,
		LiquidityFee:               liquidityFee,
		PaidFundingFee:             paidFee,
		ReceivedFundingFee:         receivedFee,
		LongGrowthDeltaX96:         growthDelta(longNet, in.LongSize),
		ShortGrowthDeltaX96:        growthDelta(shortNet, in.ShortSize),
		LiquidityPnLGrowthDeltaX96: num.UintMulDiv(liquidityFee, num.Q96(), in.Liquidity),
	}
}

func protocolFundingFee(size, indexPriceX96, rateX96 *num.Uint) *num.Uint {
	if size.IsZero() || rateX96.IsZero() {
		return num.UintZero()
	}
	return num.UintMulDivRoundingUp(risk.CalculateLiquidity(size, indexPriceX96), rateX96, num.Q96())
}

func growthDelta(netFee *num.Int, size *num.Uint) *num.Int {
	if size.IsZero() || netFee.IsZero() {
		return num.IntZero()
	}
	return num.IntMulDivFloor(netFee, num.Q96(), size)
}
