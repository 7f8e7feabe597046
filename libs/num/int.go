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
	"fmt"
	"math/big"
	"strings"
)

// Int a wrapper to a signed big int.
type Int struct {
	// The unsigned version of the integer
	U *Uint
	// The sign of the integer true = positive, false = negative
	s bool
}

// NewInt creates a new Int with the value of the
// int64 passed as a parameter.
func NewInt(val int64) *Int {
	if val < 0 {
		return &Int{
			U: NewUint(uint64(-val)),
			s: false,
		}
	}
	return &Int{
		U: NewUint(uint64(val)),
		s: true,
	}
}

// IntZero returns a new Int set to 0.
func IntZero() *Int {
	return NewInt(0)
}

// IntFromUint creates a new Int with the value of the
// uint passed as a parameter. The Uint is copied.
func IntFromUint(u *Uint, s bool) *Int {
	return (&Int{
		U: u.Clone(),
		s: s,
	}).normalise()
}

// IntFromString parses a base 10 signed integer.
func IntFromString(str string) (*Int, bool) {
	s := true
	if strings.HasPrefix(str, "-") {
		s = false
		str = str[1:]
	}
	u, failed := UintFromString(str, 10)
	if failed {
		return IntZero(), true
	}
	return IntFromUint(u, s), false
}

// MustIntFromString is IntFromString for literals known to be valid.
func MustIntFromString(str string) *Int {
	i, failed := IntFromString(str)
	if failed {
		panic(fmt.Sprintf("num: invalid int literal %q", str))
	}
	return i
}

// zero is always stored as positive so EQ and the sign predicates agree.
func (i *Int) normalise() *Int {
	if i.U.IsZero() {
		i.s = true
	}
	return i
}

// IsNegative tests if the stored value is negative
// true if < 0
// false if >= 0.
func (i *Int) IsNegative() bool {
	return !i.s && !i.U.IsZero()
}

// IsPositive tests if the stored value is positive
// true if > 0
// false if <= 0.
func (i *Int) IsPositive() bool {
	return i.s && !i.U.IsZero()
}

// IsZero tests if the stored value is zero
// true if == 0.
func (i *Int) IsZero() bool {
	return i.U.IsZero()
}

// FlipSign changes the sign of the number from - to + and back again.
func (i *Int) FlipSign() *Int {
	i.s = !i.s
	return i.normalise()
}

// Clone creates a copy of the object so nothing is shared.
func (i Int) Clone() *Int {
	return &Int{
		U: i.U.Clone(),
		s: i.s,
	}
}

// Abs returns a copy of the magnitude.
func (i *Int) Abs() *Uint {
	return i.U.Clone()
}

// Set copies a into i.
func (i *Int) Set(a *Int) *Int {
	i.U = a.U.Clone()
	i.s = a.s
	return i
}

// GT returns if i > o.
func (i *Int) GT(o *Int) bool {
	if i.IsNegative() {
		if o.IsPositive() || o.IsZero() {
			return false
		}
		return i.U.LT(o.U)
	}
	if o.IsNegative() {
		return true
	}
	return i.U.GT(o.U)
}

// LT returns if i < o.
func (i *Int) LT(o *Int) bool {
	return o.GT(i)
}

// GTE returns if i >= o.
func (i *Int) GTE(o *Int) bool {
	return !i.LT(o)
}

// LTE returns if i <= o.
func (i *Int) LTE(o *Int) bool {
	return !i.GT(o)
}

// EQ returns if i == o.
func (i *Int) EQ(o *Int) bool {
	return i.s == o.s && i.U.EQ(o.U)
}

// GTUint returns if i > o where o is unsigned.
func (i *Int) GTUint(o *Uint) bool {
	return i.s && i.U.GT(o)
}

// Add will add the passed in value to the base value
// i = i + a.
func (i *Int) Add(a *Int) *Int {
	if i.s == a.s {
		i.U.Add(i.U, a.U)
		return i.normalise()
	}
	// signs differ, the larger magnitude wins the sign
	if i.U.GTE(a.U) {
		i.U.Sub(i.U, a.U)
	} else {
		i.U = UintZero().Sub(a.U, i.U)
		i.s = a.s
	}
	return i.normalise()
}

// AddSum adds all of the parameters to i
// i = i + a + b + c.
func (i *Int) AddSum(vals ...*Int) *Int {
	for _, x := range vals {
		i.Add(x)
	}
	return i
}

// Sub will subtract the passed in value from the base value
// i = i - a.
func (i *Int) Sub(a *Int) *Int {
	return i.Add(a.Clone().FlipSign())
}

// AddUint adds an unsigned value to i.
func (i *Int) AddUint(u *Uint) *Int {
	return i.Add(IntFromUint(u, true))
}

// SubUint subtracts an unsigned value from i.
func (i *Int) SubUint(u *Uint) *Int {
	return i.Add(IntFromUint(u, false))
}

// Mul will multiply the passed in value to the base value
// i = i * m.
func (i *Int) Mul(m *Int) *Int {
	i.U.Mul(i.U, m.U)
	i.s = i.s == m.s
	return i.normalise()
}

// Neg returns a negated copy of i.
func (i *Int) Neg() *Int {
	return i.Clone().FlipSign()
}

// Sign returns -1, 0 or 1.
func (i *Int) Sign() int {
	switch {
	case i.IsZero():
		return 0
	case i.s:
		return 1
	default:
		return -1
	}
}

// BigInt returns the value as a big.Int.
func (i *Int) BigInt() *big.Int {
	b := i.U.BigInt()
	if !i.s {
		b.Neg(b)
	}
	return b
}

// String returns a string version of the number.
func (i Int) String() string {
	if i.U == nil {
		return "0"
	}
	if i.IsNegative() {
		return "-" + i.U.String()
	}
	return i.U.String()
}

// MarshalText implements encoding.TextMarshaler.
func (i Int) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Int) UnmarshalText(text []byte) error {
	v, failed := IntFromString(string(text))
	if failed {
		return fmt.Errorf("invalid int256 value: %q", string(text))
	}
	i.U, i.s = v.U, v.s
	return nil
}
