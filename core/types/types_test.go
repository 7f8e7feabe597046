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

package types_test

import (
	"errors"
	"testing"

	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSide(t *testing.T) {
	assert.Equal(t, types.SideShort, types.SideLong.Flip())
	assert.Equal(t, types.SideLong, types.SideShort.Flip())
	assert.Equal(t, types.SideUnspecified, types.SideUnspecified.Flip())
	assert.False(t, types.SideUnspecified.Valid())

	s, err := types.SideFromString(" Short ")
	require.NoError(t, err)
	assert.Equal(t, types.SideShort, s)

	_, err = types.SideFromString("up")
	assert.ErrorIs(t, err, types.ErrInvalidSide)
}

func TestGlobalPositionSizes(t *testing.T) {
	g := types.NewGlobalPosition()
	g.IncreaseSize(types.SideLong, num.NewUint(10))
	g.IncreaseSize(types.SideShort, num.NewUint(4))
	g.DecreaseSize(types.SideLong, num.NewUint(3))

	assert.Equal(t, uint64(7), g.LongSize.Uint64())
	assert.Equal(t, uint64(4), g.ShortSize.Uint64())
	assert.Equal(t, uint64(11), g.TotalSize().Uint64())

	cpy := g.Clone()
	cpy.IncreaseSize(types.SideLong, num.NewUint(1))
	assert.Equal(t, uint64(7), g.LongSize.Uint64())

	assert.Panics(t, func() {
		g.DecreaseSize(types.SideShort, num.NewUint(5))
	})
}

func TestPositionKeyOrdering(t *testing.T) {
	a := types.PositionKey{Account: "a", Side: types.SideShort}
	b := types.PositionKey{Account: "b", Side: types.SideLong}
	c := types.PositionKey{Account: "b", Side: types.SideShort}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(b))
}

func TestConfigValidation(t *testing.T) {
	base := types.MarketBaseConfig{
		MinMarginPerPosition:          num.NewUint(10_000),
		MaxLeveragePerPosition:        100,
		LiquidationFeeRatePerPosition: 400_000,
		LiquidationExecutionFee:       num.NewUint(600),
		MaxPositionLiquidity:          num.NewUint(1_000_000_000),
		MaxPositionValueRate:          200_000_000,
		MaxSizeRatePerPosition:        10_000_000,
		MinProfitDuration:             600,
	}
	require.NoError(t, base.Validate())

	bad := base.Clone()
	bad.MaxLeveragePerPosition = 0
	bad.MaxSizeRatePerPosition = num.BasisPointsDivisorUint64 + 1
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMaxLeveragePerPositionIsZero))
	assert.True(t, errors.Is(err, types.ErrRateExceedsBasisPointsDivisor))

	fees := types.MarketFeeRateConfig{
		ProtocolFundingFeeRate:  16000,
		FundingCoeff:            100_000_000,
		ProtocolFundingCoeff:    75_000_000,
		InterestRate:            10000,
		FundingBuffer:           50000,
		LiquidityFundingFeeRate: 50_000_000,
	}
	require.NoError(t, fees.Validate())
	fees.ProtocolFundingCoeff = num.BasisPointsDivisorUint64 + 1
	assert.ErrorIs(t, fees.Validate(), types.ErrProtocolFundingCoeffOutOfRange)
}
