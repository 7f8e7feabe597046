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

package encoding

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"code.vegaprotocol.io/perps/logging"

	"github.com/shopspring/decimal"
)

// Duration is a wrapper over an actual duration so we can represent
// them as string in the toml configuration.
type Duration struct {
	time.Duration
	set bool
}

// NewDuration returns a duration that counts as explicitly set, even at zero.
func NewDuration(d time.Duration) Duration {
	return Duration{Duration: d, set: true}
}

// Get returns the stored duration.
func (d *Duration) Get() time.Duration {
	return d.Duration
}

// IsSet tells whether the duration was decoded or built with NewDuration.
func (d Duration) IsSet() bool {
	return d.set
}

// UnmarshalText unmarshal a duration from bytes.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration, d.set = v, true
	return nil
}

func (d *Duration) UnmarshalFlag(s string) error {
	return d.UnmarshalText([]byte(s))
}

// MarshalText marshal a duration into bytes.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogLevel is wrapper over the actual log level
// so they can be specified as strings in the toml configuration.
type LogLevel struct {
	logging.Level
}

// Get return the store value.
func (l *LogLevel) Get() logging.Level {
	return l.Level
}

// UnmarshalText unmarshal a loglevel from bytes.
func (l *LogLevel) UnmarshalText(text []byte) error {
	var err error
	l.Level, err = logging.ParseLevel(string(text))
	return err
}

func (l *LogLevel) UnmarshalFlag(s string) error {
	return l.UnmarshalText([]byte(s))
}

// MarshalText marshal a loglevel into bytes.
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

type Bool bool

func (b *Bool) UnmarshalFlag(s string) error {
	switch s {
	case "true":
		*b = true
	case "false":
		*b = false
	default:
		return fmt.Errorf("only `true' and `false' are valid values, not `%s'", s)
	}
	return nil
}

// Rate is a ratio expressed in units of 1e-8, the value 100_000_000 is 100%.
// It reads either a raw integer or a percentage such as "0.016%".
type Rate struct {
	Value uint64
	set   bool
}

// NewRate returns a rate that counts as explicitly set, even at zero.
func NewRate(v uint64) Rate {
	return Rate{Value: v, set: true}
}

// Get returns the stored ratio.
func (r *Rate) Get() uint64 {
	return r.Value
}

// IsSet tells whether the rate was decoded or built with NewRate. A zero
// rate that is set is kept when defaults are merged in.
func (r Rate) IsSet() bool {
	return r.set
}

func (r *Rate) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		d, err := decimal.NewFromString(strings.TrimSpace(pct))
		if err != nil {
			return fmt.Errorf("invalid rate %q: %w", s, err)
		}
		scaled := d.Mul(decimal.NewFromInt(1_000_000))
		if scaled.IsNegative() || !scaled.Equal(scaled.Truncate(0)) {
			return fmt.Errorf("invalid rate %q: must be a non negative multiple of 0.000001%%", s)
		}
		r.Value, r.set = uint64(scaled.IntPart()), true
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid rate %q: %w", s, err)
	}
	r.Value, r.set = v, true
	return nil
}

func (r *Rate) UnmarshalFlag(s string) error {
	return r.UnmarshalText([]byte(s))
}

func (r Rate) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatUint(r.Value, 10)), nil
}
