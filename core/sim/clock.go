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
// Package sim holds the in-memory collaborators the engine runs against
// outside a chain: a hand moved clock, a fixed price oracle and a pool with
// a linear price impact curve. The replay command and the feature tests
// both drive the engine through them.
package sim

import (
	"context"
	"sync"
	"time"

	vgcontext "code.vegaprotocol.io/perps/libs/context"
	vgcrypto "code.vegaprotocol.io/perps/libs/crypto"
)

// Clock is only moved by hand.
type Clock struct {
	mu          sync.RWMutex
	now         time.Time
	subscribers []func(context.Context, time.Time)
}

func NewClock() *Clock {
	startTime, _ := time.Parse("2006-01-02T15:04:05Z", "2023-11-14T22:13:20Z")
	return &Clock{
		now: startTime,
	}
}

func (c *Clock) GetTimeNow() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// SetTime moves the clock and notifies the subscribers. The clock never
// goes backward.
func (c *Clock) SetTime(newNow time.Time) {
	c.mu.Lock()
	if newNow.Before(c.now) {
		newNow = c.now
	}
	c.now = newNow
	subscribers := append([]func(context.Context, time.Time){}, c.subscribers...)
	c.mu.Unlock()

	ctx := vgcontext.WithTraceID(context.Background(), vgcrypto.HashToHex([]byte(newNow.String())))
	for _, subscriber := range subscribers {
		subscriber(ctx, newNow)
	}
}

func (c *Clock) Advance(d time.Duration) {
	c.SetTime(c.GetTimeNow().Add(d))
}

func (c *Clock) NotifyOnTick(scbs ...func(context.Context, time.Time)) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, scbs...)
	c.mu.Unlock()
}
