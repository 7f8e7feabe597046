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

package num_test

import (
	"math/big"
	"testing"

	"code.vegaprotocol.io/perps/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint256Constructors(t *testing.T) {
	var expected uint64 = 42

	t.Run("test from uint64", func(t *testing.T) {
		n := num.NewUint(expected)
		assert.Equal(t, expected, n.Uint64())
	})

	t.Run("test from string", func(t *testing.T) {
		n, failed := num.UintFromString("42", 10)
		assert.False(t, failed)
		assert.Equal(t, expected, n.Uint64())
	})

	t.Run("test from big", func(t *testing.T) {
		n, failed := num.UintFromBig(big.NewInt(int64(expected)))
		assert.False(t, failed)
		assert.Equal(t, expected, n.Uint64())
	})

	t.Run("negative big overflows", func(t *testing.T) {
		_, failed := num.UintFromBig(big.NewInt(-1))
		assert.True(t, failed)
	})
}

func TestUint256Clone(t *testing.T) {
	var (
		first  = num.NewUint(42)
		second = first.Clone()
	)

	// changing the clone must not change the original
	second.Add(second, num.NewUint(42))

	assert.Equal(t, uint64(42), first.Uint64())
	assert.Equal(t, uint64(84), second.Uint64())
}

func TestUint256CheckedArithmetic(t *testing.T) {
	max := num.MustUintFromString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)

	assert.PanicsWithValue(t, num.ErrUintOverflow, func() {
		num.UintZero().Add(max, num.NewUint(1))
	})
	assert.PanicsWithValue(t, num.ErrUintOverflow, func() {
		num.UintZero().Sub(num.NewUint(1), num.NewUint(2))
	})
	assert.PanicsWithValue(t, num.ErrUintOverflow, func() {
		num.UintZero().Mul(max, num.NewUint(2))
	})
	assert.Panics(t, func() {
		num.UintZero().Div(num.NewUint(1), num.UintZero())
	})

	d, neg := num.UintZero().Delta(num.NewUint(1), num.NewUint(3))
	assert.True(t, neg)
	assert.Equal(t, uint64(2), d.Uint64())
}

func TestMulDiv(t *testing.T) {
	t.Run("floor and ceil differ only with a remainder", func(t *testing.T) {
		assert.Equal(t, "3", num.UintMulDiv(num.NewUint(7), num.NewUint(3), num.NewUint(7)).String())
		assert.Equal(t, "3", num.UintMulDivRoundingUp(num.NewUint(7), num.NewUint(3), num.NewUint(7)).String())
		assert.Equal(t, "2", num.UintMulDiv(num.NewUint(5), num.NewUint(1), num.NewUint(2)).String())
		assert.Equal(t, "3", num.UintMulDivRoundingUp(num.NewUint(5), num.NewUint(1), num.NewUint(2)).String())
	})

	t.Run("intermediate product wider than 256 bits", func(t *testing.T) {
		x := num.UintZero().Lsh(num.NewUint(1), 200)
		y := num.UintZero().Lsh(num.NewUint(1), 100)
		d := num.UintZero().Lsh(num.NewUint(1), 150)
		got := num.UintMulDiv(x, y, d)
		assert.Equal(t, num.UintZero().Lsh(num.NewUint(1), 150).String(), got.String())
	})

	t.Run("result overflow panics", func(t *testing.T) {
		x := num.UintZero().Lsh(num.NewUint(1), 200)
		assert.PanicsWithValue(t, num.ErrUintOverflow, func() {
			num.UintMulDiv(x, x, num.NewUint(1))
		})
	})

	t.Run("zero divisor panics", func(t *testing.T) {
		assert.Panics(t, func() {
			num.UintMulDiv(num.NewUint(1), num.NewUint(1), num.UintZero())
		})
	})

	t.Run("signed rounding goes toward negative infinity", func(t *testing.T) {
		assert.Equal(t, "-3", num.IntMulDivFloor(num.NewInt(-5), num.NewUint(1), num.NewUint(2)).String())
		assert.Equal(t, "2", num.IntMulDivFloor(num.NewInt(5), num.NewUint(1), num.NewUint(2)).String())
		assert.Equal(t, "-2", num.IntMulDivCeil(num.NewInt(-5), num.NewUint(1), num.NewUint(2)).String())
		assert.Equal(t, "3", num.IntMulDivCeil(num.NewInt(5), num.NewUint(1), num.NewUint(2)).String())
	})
}

func TestX96Conversions(t *testing.T) {
	price, failed := num.DecimalToX96(num.MustDecimalFromString("1500.5"))
	require.False(t, failed)
	assert.Equal(t, "1500.5", num.X96ToDecimal(price).String())
	assert.Equal(t, num.Q96().String(), num.MustUintFromString("79228162514264337593543950336", 10).String())
	assert.Equal(t, "340282366920938463463374607431768211455", num.MaxUint128().String())
	assert.Equal(t, 128, num.MaxUint128().BitLen())

	_, failed = num.DecimalToX96(num.MustDecimalFromString("-1"))
	assert.True(t, failed)
}

func TestUintText(t *testing.T) {
	var u num.Uint
	require.NoError(t, u.UnmarshalText([]byte("123456789012345678901234567890")))
	out, err := u.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", string(out))
	assert.Error(t, u.UnmarshalText([]byte("-1")))
}
