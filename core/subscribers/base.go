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
package subscribers

import (
	"context"
	"sync"
	"time"

	"code.vegaprotocol.io/perps/core/events"
)

// Base implements the broker bookkeeping of a subscriber. Acking
// subscribers are pushed to directly, the others read batches from C.
type Base struct {
	ctx   context.Context
	cfunc context.CancelFunc

	mu      sync.Mutex
	sCh     chan struct{}
	ch      chan []events.Event
	ack     bool
	running bool
	id      int
}

func NewBase(ctx context.Context, buf int, ack bool) *Base {
	ctx, cfunc := context.WithCancel(ctx)
	b := &Base{
		ctx:     ctx,
		cfunc:   cfunc,
		sCh:     make(chan struct{}),
		ch:      make(chan []events.Event, buf),
		ack:     ack,
		running: !ack, // assume the implementation will start a routine asap
	}
	if b.ack {
		go b.cleanup()
	}
	return b
}

func (b *Base) cleanup() {
	<-b.ctx.Done()
	b.Halt()
}

// Ack returns whether or not this is a synchronous/async subscriber.
func (b *Base) Ack() bool {
	return b.ack
}

// Pause the current subscriber will not receive events from the channel.
func (b *Base) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		b.running = false
		close(b.sCh)
	}
}

// Resume unpauses the subscriber.
func (b *Base) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		b.sCh = make(chan struct{})
		b.running = true
	}
}

func (b *Base) isRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// C returns the event channel for optional subscribers.
func (b *Base) C() chan<- []events.Event {
	return b.ch
}

// Closed indicates to the broker that the subscriber is closed for business.
func (b *Base) Closed() <-chan struct{} {
	return b.ctx.Done()
}

// Skip lets the broker know that the subscriber is not receiving events.
func (b *Base) Skip() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sCh
}

// Halt is called on shutdown, this closes the open channels.
func (b *Base) Halt() {
	defer func() {
		if !b.ack {
			// a send may be in flight between the select and the close
			time.Sleep(20 * time.Millisecond)
		}
		close(b.ch)
	}()
	b.cfunc()
	b.Pause()
}

// SetID set the ID (exposed only to broker).
func (b *Base) SetID(id int) {
	b.id = id
}

// ID returns the subscriber ID.
func (b *Base) ID() int {
	return b.id
}
