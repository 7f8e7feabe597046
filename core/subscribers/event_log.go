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
	"encoding/json"
	"io"
	"sync"

	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/logging"
)

// Record is one line of the event log.
type Record struct {
	Sequence uint64      `json:"seq"`
	Type     string      `json:"type"`
	MarketID string      `json:"market_id"`
	TraceID  string      `json:"trace_id"`
	Payload  interface{} `json:"payload"`
}

// EventLog writes every event it receives as a JSON line and counts them
// per type.
type EventLog struct {
	*Base
	log *logging.Logger

	mu     sync.Mutex
	enc    *json.Encoder
	counts map[events.Type]uint64
	err    error
}

func NewEventLog(ctx context.Context, w io.Writer, log *logging.Logger, ack bool) *EventLog {
	l := &EventLog{
		Base:   NewBase(ctx, 10, ack),
		log:    log,
		enc:    json.NewEncoder(w),
		counts: map[events.Type]uint64{},
	}
	if l.isRunning() {
		go l.loop(ctx)
	}
	return l
}

func (l *EventLog) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Halt()
			return
		case evts, ok := <-l.ch:
			if !ok {
				return
			}
			if l.isRunning() {
				l.Push(evts...)
			}
		}
	}
}

func (l *EventLog) Push(evts ...events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range evts {
		l.counts[e.Type()]++
		if l.err != nil {
			continue
		}
		err := l.enc.Encode(Record{
			Sequence: e.Sequence(),
			Type:     e.Type().String(),
			MarketID: e.MarketID(),
			TraceID:  e.TraceID(),
			Payload:  e.Payload(),
		})
		if err != nil {
			// stop writing after the first failure, the count goes on
			l.err = err
			l.log.Error("could not write event", logging.Error(err))
		}
	}
}

func (l *EventLog) Types() []events.Type {
	return []events.Type{events.All}
}

// Counts returns the number of events received per type.
func (l *EventLog) Counts() map[events.Type]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	cpy := make(map[events.Type]uint64, len(l.counts))
	for k, v := range l.counts {
		cpy[k] = v
	}
	return cpy
}

// Err returns the first write error.
func (l *EventLog) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
