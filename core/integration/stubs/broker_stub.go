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

package stubs

import (
	"sync"

	"code.vegaprotocol.io/perps/core/events"
)

// BrokerStub keeps every event it receives, in order.
type BrokerStub struct {
	mu   sync.Mutex
	seq  uint64
	data []events.Event
}

func NewBrokerStub() *BrokerStub {
	return &BrokerStub{}
}

func (b *BrokerStub) Send(e events.Event) {
	b.mu.Lock()
	b.seq++
	e.SetSequenceID(b.seq)
	b.data = append(b.data, e)
	b.mu.Unlock()
}

func (b *BrokerStub) SendBatch(evts []events.Event) {
	for _, e := range evts {
		b.Send(e)
	}
}

// GetAllEvents returns a copy of everything sent so far.
func (b *BrokerStub) GetAllEvents() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event{}, b.data...)
}

func (b *BrokerStub) GetEvents(t events.Type) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []events.Event{}
	for _, e := range b.data {
		if t == events.All || e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

func (b *BrokerStub) GetFundingSettledEvents() []events.FundingSettled {
	evts := b.GetEvents(events.FundingSettledEvent)
	out := make([]events.FundingSettled, 0, len(evts))
	for _, e := range evts {
		switch et := e.(type) {
		case *events.FundingSettled:
			out = append(out, *et)
		case events.FundingSettled:
			out = append(out, et)
		}
	}
	return out
}

func (b *BrokerStub) GetLiquidationEvents() []events.PositionLiquidated {
	evts := b.GetEvents(events.PositionLiquidatedEvent)
	out := make([]events.PositionLiquidated, 0, len(evts))
	for _, e := range evts {
		switch et := e.(type) {
		case *events.PositionLiquidated:
			out = append(out, *et)
		case events.PositionLiquidated:
			out = append(out, et)
		}
	}
	return out
}

// Reset drops the recorded events.
func (b *BrokerStub) Reset() {
	b.mu.Lock()
	b.data = nil
	b.mu.Unlock()
}
