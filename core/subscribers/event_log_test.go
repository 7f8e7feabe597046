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
package subscribers_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"code.vegaprotocol.io/perps/core/broker"
	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/core/subscribers"
	"code.vegaprotocol.io/perps/libs/num"
	"code.vegaprotocol.io/perps/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fundingEvent(ctx context.Context, market string, ts int64) events.Event {
	return events.NewFundingSettledEvent(ctx, events.FundingSettledPayload{
		MarketID:                  market,
		LongFundingRateGrowthX96:  num.NewInt(-5),
		ShortFundingRateGrowthX96: num.NewInt(3),
		SettleTime:                ts,
	})
}

func TestEventLog(t *testing.T) {
	t.Run("acking log receives events in order", testEventLogAck)
	t.Run("channel log receives events", testEventLogChannel)
	t.Run("write errors are kept", testEventLogWriteError)
}

func testEventLogAck(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buf := &bytes.Buffer{}
	b := broker.New(ctx, logging.NewTestLogger(), broker.NewDefaultConfig())
	l := subscribers.NewEventLog(ctx, buf, logging.NewTestLogger(), true)
	b.SubscribeBatch(l)

	b.SendBatch([]events.Event{
		fundingEvent(ctx, "a", 1),
		events.NewProtocolFeeIncreasedEvent(ctx, events.ProtocolFeeIncreasedPayload{
			MarketID: "a",
			Amount:   num.NewUint(2),
			Total:    num.NewUint(2),
		}),
	})
	b.Send(fundingEvent(ctx, "b", 2))

	records := []subscribers.Record{}
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		r := subscribers.Record{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		records = append(records, r)
	}
	require.Len(t, records, 3)
	assert.Equal(t, uint64(1), records[0].Sequence)
	assert.Equal(t, "FundingSettledEvent", records[0].Type)
	assert.Equal(t, "a", records[0].MarketID)
	assert.NotEmpty(t, records[0].TraceID)
	assert.Equal(t, "ProtocolFeeIncreasedEvent", records[1].Type)
	assert.Equal(t, uint64(3), records[2].Sequence)
	assert.Equal(t, "b", records[2].MarketID)

	payload := records[0].Payload.(map[string]interface{})
	assert.Equal(t, "-5", payload["long_funding_rate_growth_x96"])

	counts := l.Counts()
	assert.Equal(t, uint64(2), counts[events.FundingSettledEvent])
	assert.Equal(t, uint64(1), counts[events.ProtocolFeeIncreasedEvent])
	assert.NoError(t, l.Err())
}

func testEventLogChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buf := &bytes.Buffer{}
	b := broker.New(ctx, logging.NewTestLogger(), broker.NewDefaultConfig())
	l := subscribers.NewEventLog(ctx, buf, logging.NewTestLogger(), false)
	b.SubscribeBatch(l)

	b.Send(fundingEvent(ctx, "a", 1))
	assert.Eventually(t, func() bool {
		return l.Counts()[events.FundingSettledEvent] == 1
	}, time.Second, 5*time.Millisecond)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func testEventLogWriteError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := subscribers.NewEventLog(ctx, failingWriter{}, logging.NewTestLogger(), true)
	l.Push(fundingEvent(ctx, "a", 1), fundingEvent(ctx, "a", 2))
	assert.EqualError(t, l.Err(), "disk full")
	assert.Equal(t, uint64(2), l.Counts()[events.FundingSettledEvent])
}
