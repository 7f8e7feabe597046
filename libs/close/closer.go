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

package close

import (
	"fmt"
	"sync"

	lerrors "code.vegaprotocol.io/perps/core/libs/errors"
)

// Closer releases resources in the reverse order they were registered.
type Closer struct {
	mu       sync.Mutex
	closeFns []namedCloser
}

type namedCloser struct {
	name string
	fn   func() error
}

func NewCloser() *Closer {
	return &Closer{}
}

// Add registers a resource, name is only used in errors.
func (c *Closer) Add(name string, closeFn func() error) {
	c.mu.Lock()
	c.closeFns = append(c.closeFns, namedCloser{name: name, fn: closeFn})
	c.mu.Unlock()
}

// CloseAll closes everything, newest first, and reports every failure.
// The closer can be reused afterward.
func (c *Closer) CloseAll() error {
	c.mu.Lock()
	fns := c.closeFns
	c.closeFns = nil
	c.mu.Unlock()

	errs := lerrors.NewCumulatedErrors()
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i].fn(); err != nil {
			errs.Add(fmt.Errorf("couldn't close %s: %w", fns[i].name, err))
		}
	}
	return errs.ErrorOrNil()
}
