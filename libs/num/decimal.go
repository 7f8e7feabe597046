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
	"github.com/shopspring/decimal"
)

// Decimal is only used for display and for parsing human readable inputs,
// no settlement computation goes through it.
type Decimal = decimal.Decimal

var dq96 = decimal.NewFromBigInt(q96.BigInt(), 0)

func DecimalZero() Decimal {
	return decimal.Zero
}

func DecimalFromString(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

func MustDecimalFromString(s string) Decimal {
	d, err := DecimalFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func DecimalFromUint(u *Uint) Decimal {
	return decimal.NewFromBigInt(u.BigInt(), 0)
}

func DecimalFromInt(i *Int) Decimal {
	return decimal.NewFromBigInt(i.BigInt(), 0)
}

func (u Uint) ToDecimal() Decimal {
	return DecimalFromUint(&u)
}

// X96ToDecimal converts a Q64.96 value into its decimal representation.
func X96ToDecimal(u *Uint) Decimal {
	return DecimalFromUint(u).DivRound(dq96, 18)
}

// IntX96ToDecimal converts a signed Q96.96 value into its decimal representation.
func IntX96ToDecimal(i *Int) Decimal {
	return DecimalFromInt(i).DivRound(dq96, 18)
}

// DecimalToX96 converts a non negative decimal into a Q64.96 value, truncating
// anything below 2^-96. The returned bool is true if the value could not be represented.
func DecimalToX96(d Decimal) (*Uint, bool) {
	if d.IsNegative() {
		return UintZero(), true
	}
	return UintFromBig(d.Mul(dq96).Floor().BigInt())
}

// UintFromDecimal truncates a decimal into a Uint.
func UintFromDecimal(d Decimal) (*Uint, bool) {
	return UintFromBig(d.BigInt())
}
