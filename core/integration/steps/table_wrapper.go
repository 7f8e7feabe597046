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

package steps

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"

	"github.com/cucumber/godog"
)

// StrictParseTable parses the table and panics if a required column is
// missing or an unknown column is present.
func StrictParseTable(dt *godog.Table, required, optional []string) []RowWrapper {
	if len(dt.Rows) == 0 {
		panic("table is empty")
	}
	header := dt.Rows[0]
	known := map[string]struct{}{}
	for _, c := range append(append([]string{}, required...), optional...) {
		known[c] = struct{}{}
	}
	present := map[string]struct{}{}
	for _, cell := range header.Cells {
		if _, ok := known[cell.Value]; !ok {
			panic(fmt.Errorf("unknown column %q", cell.Value))
		}
		present[cell.Value] = struct{}{}
	}
	for _, c := range required {
		if _, ok := present[c]; !ok {
			panic(fmt.Errorf("missing required column %q", c))
		}
	}

	out := make([]RowWrapper, 0, len(dt.Rows)-1)
	for _, row := range dt.Rows[1:] {
		wrapper := RowWrapper{values: map[string]string{}}
		for i := range row.Cells {
			// an empty cell is the same as a missing column
			if row.Cells[i].Value == "" {
				continue
			}
			wrapper.values[header.Cells[i].Value] = row.Cells[i].Value
		}
		out = append(out, wrapper)
	}
	return out
}

type RowWrapper struct {
	values map[string]string
}

func (r RowWrapper) HasColumn(name string) bool {
	_, ok := r.values[name]
	return ok
}

func (r RowWrapper) Str(name string) string {
	return r.values[name]
}

func (r RowWrapper) MustStr(name string) string {
	v, ok := r.values[name]
	if !ok {
		panic(fmt.Errorf("column %q not found", name))
	}
	return v
}

func (r RowWrapper) MustUint(name string) *num.Uint {
	v, overflow := num.UintFromString(r.MustStr(name), 10)
	if overflow {
		panic(fmt.Errorf("invalid unsigned integer %q for column %q", r.values[name], name))
	}
	return v
}

func (r RowWrapper) MustInt(name string) *num.Int {
	v, failed := num.IntFromString(r.MustStr(name))
	if failed {
		panic(fmt.Errorf("invalid integer %q for column %q", r.values[name], name))
	}
	return v
}

// MustPriceX96 reads a human readable price such as "1.5" as Q64.96.
func (r RowWrapper) MustPriceX96(name string) *num.Uint {
	d, err := num.DecimalFromString(r.MustStr(name))
	if err != nil {
		panic(fmt.Errorf("invalid price for column %q: %w", name, err))
	}
	v, overflow := num.DecimalToX96(d)
	if overflow {
		panic(fmt.Errorf("price %q for column %q does not fit Q64.96", r.values[name], name))
	}
	return v
}

func (r RowWrapper) MustSide(name string) types.Side {
	s, err := types.SideFromString(r.MustStr(name))
	if err != nil {
		panic(fmt.Errorf("invalid side for column %q: %w", name, err))
	}
	return s
}

func (r RowWrapper) MustDuration(name string) time.Duration {
	d, err := time.ParseDuration(r.MustStr(name))
	if err != nil {
		panic(fmt.Errorf("invalid duration for column %q: %w", name, err))
	}
	return d
}

// ErroneousRow is a row carrying an optional expected error.
type ErroneousRow interface {
	ExpectError() bool
	Error() string
	Reference() string
}

func checkExpectedError(row ErroneousRow, returnedErr error) error {
	if row.ExpectError() && returnedErr == nil {
		return fmt.Errorf("action on %q should have failed with %q", row.Reference(), row.Error())
	}
	if row.ExpectError() {
		if row.Error() != "" && !strings.Contains(returnedErr.Error(), row.Error()) {
			return formatDiff(fmt.Sprintf("unexpected error for %q", row.Reference()),
				map[string]string{"error": row.Error()},
				map[string]string{"error": returnedErr.Error()},
			)
		}
		return nil
	}
	if returnedErr != nil {
		return fmt.Errorf("action on %q has failed: %w", row.Reference(), returnedErr)
	}
	return nil
}

func formatDiff(msg string, expected, got map[string]string) error {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	b.WriteString("\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: expected %s, got %s\n", k, expected[k], got[k])
	}
	return fmt.Errorf("%s", b.String())
}
