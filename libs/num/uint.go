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
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrUintOverflow is raised (as a panic value) by the checked operations
// when a result does not fit in 256 bits.
var ErrUintOverflow = errors.New("num: uint256 overflow")

// Uint A wrapper for a big unsigned int.
type Uint struct {
	u uint256.Int
}

// NewUint creates a new Uint with the value of the
// uint64 passed as a parameter.
func NewUint(val uint64) *Uint {
	return &Uint{*uint256.NewInt(val)}
}

// UintZero returns a new Uint set to 0.
func UintZero() *Uint {
	return NewUint(0)
}

// Min returns the smallest of the 2 numbers.
func Min(a, b *Uint) *Uint {
	if a.LT(b) {
		return a
	}
	return b
}

// Max returns the largest of the 2 numbers.
func Max(a, b *Uint) *Uint {
	if a.GT(b) {
		return a
	}
	return b
}

// UintFromBig construct a new Uint with a big.Int
// returns true if overflow happened.
func UintFromBig(b *big.Int) (*Uint, bool) {
	if b.Sign() < 0 {
		return UintZero(), true
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return UintZero(), true
	}
	return &Uint{*u}, false
}

// UintFromString created a new Uint from a string
// interpreted using the given base.
// Will return true if an error/overflow happened.
func UintFromString(str string, base int) (*Uint, bool) {
	b, ok := big.NewInt(0).SetString(str, base)
	if !ok {
		return UintZero(), true
	}
	return UintFromBig(b)
}

// MustUintFromString is UintFromString for literals known to be valid.
func MustUintFromString(str string, base int) *Uint {
	u, failed := UintFromString(str, base)
	if failed {
		panic(fmt.Sprintf("num: invalid uint literal %q", str))
	}
	return u
}

// Sum just removes the need to write num.UintZero().AddSum(x, y, z)
// so you can write num.Sum(x, y, z) instead, equivalent to x + y + z.
func Sum(vals ...*Uint) *Uint {
	return UintZero().AddSum(vals...)
}

func (z *Uint) Set(oth *Uint) *Uint {
	z.u.Set(&oth.u)
	return z
}

func (z *Uint) SetUint64(val uint64) *Uint {
	z.u.SetUint64(val)
	return z
}

func (z Uint) Uint64() uint64 {
	return z.u.Uint64()
}

// IsUint64 reports whether the value fits in a uint64.
func (z Uint) IsUint64() bool {
	return z.u.IsUint64()
}

func (z Uint) BigInt() *big.Int {
	return z.u.ToBig()
}

// BitLen returns the number of bits required to represent z.
func (z Uint) BitLen() int {
	return z.u.BitLen()
}

// Add will add x and y then store the result into z.
// The addition is checked, a 256 bit overflow panics.
func (z *Uint) Add(x, y *Uint) *Uint {
	if _, overflow := z.u.AddOverflow(&x.u, &y.u); overflow {
		panic(ErrUintOverflow)
	}
	return z
}

// AddSum adds multiple values at the same time to a given uint
// so x.AddSum(y, z) is equivalent to x + y + z.
func (z *Uint) AddSum(vals ...*Uint) *Uint {
	for _, x := range vals {
		z.Add(z, x)
	}
	return z
}

// AddOverflow adds x and y into z, the returned bool is true
// if the operation overflowed.
func (z *Uint) AddOverflow(x, y *Uint) (*Uint, bool) {
	_, ok := z.u.AddOverflow(&x.u, &y.u)
	return z, ok
}

// Sub will subtract y from x then store the result into z.
// An underflow panics, callers that expect one must use Delta or SubOverflow.
func (z *Uint) Sub(x, y *Uint) *Uint {
	if _, underflow := z.u.SubOverflow(&x.u, &y.u); underflow {
		panic(ErrUintOverflow)
	}
	return z
}

// SubOverflow subtracts y from x into z, the returned bool is true
// if the operation underflowed.
func (z *Uint) SubOverflow(x, y *Uint) (*Uint, bool) {
	_, ok := z.u.SubOverflow(&x.u, &y.u)
	return z, ok
}

// Delta will subtract y from x and store the result
// unless x-y overflowed, in which case the returned bool is true
// and the result of y - x is set instead.
func (z *Uint) Delta(x, y *Uint) (*Uint, bool) {
	if y.GT(x) {
		_ = z.Sub(y, x)
		return z, true
	}
	_ = z.Sub(x, y)
	return z, false
}

// Mul will multiply x and y then store the result into z.
// The multiplication is checked, a 256 bit overflow panics.
func (z *Uint) Mul(x, y *Uint) *Uint {
	if _, overflow := z.u.MulOverflow(&x.u, &y.u); overflow {
		panic(ErrUintOverflow)
	}
	return z
}

// Div will divide x by y then store the result into z (floor).
// Division by zero panics.
func (z *Uint) Div(x, y *Uint) *Uint {
	if y.IsZero() {
		panic("num: division by zero")
	}
	z.u.Div(&x.u, &y.u)
	return z
}

// Mod sets z to x mod y.
func (z *Uint) Mod(x, y *Uint) *Uint {
	if y.IsZero() {
		panic("num: division by zero")
	}
	z.u.Mod(&x.u, &y.u)
	return z
}

// Lsh sets z to x << n.
func (z *Uint) Lsh(x *Uint, n uint) *Uint {
	z.u.Lsh(&x.u, n)
	return z
}

// LT with check if the value stored in u is
// lesser than oth.
func (u Uint) LT(oth *Uint) bool {
	return u.u.Lt(&oth.u)
}

func (u Uint) LTUint64(oth uint64) bool {
	return u.u.LtUint64(oth)
}

func (u Uint) LTE(oth *Uint) bool {
	return !u.u.Gt(&oth.u)
}

func (u Uint) EQ(oth *Uint) bool {
	return u.u.Eq(&oth.u)
}

func (u Uint) EQUint64(oth uint64) bool {
	return u.u.Eq(uint256.NewInt(oth))
}

func (u Uint) NEQ(oth *Uint) bool {
	return !u.u.Eq(&oth.u)
}

func (u Uint) GT(oth *Uint) bool {
	return u.u.Gt(&oth.u)
}

func (u Uint) GTUint64(oth uint64) bool {
	return u.u.GtUint64(oth)
}

func (u Uint) GTE(oth *Uint) bool {
	return !u.u.Lt(&oth.u)
}

// IsZero return whether u == 0 or not.
func (u Uint) IsZero() bool {
	return u.u.IsZero()
}

// Copy create a copy of the uint
// this is the equivalent to:
// z = x.
func (z *Uint) Copy(x *Uint) *Uint {
	z.u = x.u
	return z
}

// Clone create copy of this value.
func (z Uint) Clone() *Uint {
	return &Uint{z.u}
}

// Hex returns the hexadecimal representation
// of the stored value.
func (u Uint) Hex() string {
	return u.u.Hex()
}

// String returns the stored value as a base 10 string.
func (u Uint) String() string {
	return u.u.ToBig().String()
}

// Format implement fmt.Formatter.
func (u Uint) Format(s fmt.State, ch rune) {
	u.u.Format(s, ch)
}

// Bytes return the internal representation
// of the Uint as [32]bytes, BigEndian encoded.
func (u Uint) Bytes() [32]byte {
	return u.u.Bytes32()
}

// MarshalText implements encoding.TextMarshaler, values are written in base 10.
func (u Uint) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Uint) UnmarshalText(text []byte) error {
	v, failed := UintFromString(string(text), 10)
	if failed {
		return fmt.Errorf("invalid uint256 value: %q", string(text))
	}
	u.u = v.u
	return nil
}
