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

package num

import (
	"github.com/holiman/uint256"
)

const (
	// BasisPointsDivisorUint64 is the value representing 100% for ratio configuration fields.
	BasisPointsDivisorUint64 uint64 = 100_000_000
	// FundingReferencePeriodSeconds is the period a funding rate is quoted for (8h).
	FundingReferencePeriodSeconds uint64 = 8 * 60 * 60
)

var (
	q96 = NewUint(1).Lsh(NewUint(1), 96)
	q64 = NewUint(1).Lsh(NewUint(1), 64)
	bps = NewUint(BasisPointsDivisorUint64)

	maxUint128 = NewUint(0).Sub(NewUint(1).Lsh(NewUint(1), 128), NewUint(1))
)

// Q96 returns 2^96, the scaling factor of Q64.96 prices and Q96.96 growth values.
func Q96() *Uint { return q96.Clone() }

// Q64 returns 2^64.
func Q64() *Uint { return q64.Clone() }

// MaxUint128 returns 2^128 - 1, the widest margin a position can hold.
func MaxUint128() *Uint { return maxUint128.Clone() }

// BasisPointsDivisor returns 1e8 as a Uint.
func BasisPointsDivisor() *Uint { return bps.Clone() }

// UintMulDiv returns floor(x * y / d), the product is computed on 512 bits.
// A zero divisor or a result wider than 256 bits panics.
func UintMulDiv(x, y, d *Uint) *Uint {
	if d.IsZero() {
		panic("num: division by zero")
	}
	z, overflow := new(uint256.Int).MulDivOverflow(&x.u, &y.u, &d.u)
	if overflow {
		panic(ErrUintOverflow)
	}
	return &Uint{*z}
}

// UintMulDivRoundingUp returns ceil(x * y / d) under the same rules as UintMulDiv.
func UintMulDivRoundingUp(x, y, d *Uint) *Uint {
	z := UintMulDiv(x, y, d)
	rem := new(uint256.Int).MulMod(&x.u, &y.u, &d.u)
	if !rem.IsZero() {
		z.Add(z, NewUint(1))
	}
	return z
}

// UintDivRoundingUp returns ceil(x / d).
func UintDivRoundingUp(x, d *Uint) *Uint {
	z := UintZero().Div(x, d)
	if !UintZero().Mod(x, d).IsZero() {
		z.Add(z, NewUint(1))
	}
	return z
}

// IntMulDivFloor returns x * y / d rounded toward negative infinity.
func IntMulDivFloor(x *Int, y, d *Uint) *Int {
	if x.IsNegative() {
		return IntFromUint(UintMulDivRoundingUp(x.U, y, d), false)
	}
	return IntFromUint(UintMulDiv(x.U, y, d), true)
}

// IntMulDivCeil returns x * y / d rounded toward positive infinity.
func IntMulDivCeil(x *Int, y, d *Uint) *Int {
	if x.IsNegative() {
		return IntFromUint(UintMulDiv(x.U, y, d), false)
	}
	return IntFromUint(UintMulDivRoundingUp(x.U, y, d), true)
}

// UintMulMod returns (x * y) mod d, the product is computed on 512 bits.
func UintMulMod(x, y, d *Uint) *Uint {
	if d.IsZero() {
		panic("num: division by zero")
	}
	return &Uint{*new(uint256.Int).MulMod(&x.u, &y.u, &d.u)}
}
