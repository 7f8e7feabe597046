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
package broker_test

import (
	"context"
	"testing"
	"time"

	"code.vegaprotocol.io/perps/core/broker"
	"code.vegaprotocol.io/perps/core/broker/mocks"
	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/libs/num"
	"code.vegaprotocol.io/perps/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokerTst struct {
	*broker.Broker
	cfunc context.CancelFunc
	ctx   context.Context
	ctrl  *gomock.Controller
}

func getBroker(t *testing.T) *brokerTst {
	t.Helper()
	ctx, cfunc := context.WithCancel(context.Background())
	ctrl := gomock.NewController(t)
	return &brokerTst{
		Broker: broker.New(ctx, logging.NewTestLogger(), broker.NewDefaultConfig()),
		cfunc:  cfunc,
		ctx:    ctx,
		ctrl:   ctrl,
	}
}

func (b *brokerTst) Finish() {
	b.cfunc()
	b.ctrl.Finish()
}

func (b *brokerTst) feeEvent() events.Event {
	return events.NewProtocolFeeIncreasedEvent(b.ctx, events.ProtocolFeeIncreasedPayload{
		MarketID: "ETH-PERP",
		Amount:   num.NewUint(10),
		Total:    num.NewUint(10),
	})
}

func (b *brokerTst) capsEvent() events.Event {
	return events.NewGlobalSizeCapsChangedEvent(b.ctx, events.GlobalSizeCapsChangedPayload{
		MarketID:           "ETH-PERP",
		MaxSize:            num.NewUint(100),
		MaxSizePerPosition: num.NewUint(10),
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("Subscribe and unsubscribe required - success", testSubUnsubSuccess)
	t.Run("Subscribe reuses keys", testSubReuseKey)
	t.Run("Unsubscribe automatically if subscriber is closed", testAutoUnsubscribe)
}

func TestSendEvent(t *testing.T) {
	t.Run("Acking subscribers receive events in order", testAckingSubscriberOrder)
	t.Run("Send only to typed subscriber", testEventTypeSubscription)
	t.Run("Skip subscriber based on channel state", testSubscriberSkip)
	t.Run("Optional subscribers receive through their channel", testOptionalSubscriberChannel)
	t.Run("Sequence numbers follow batch order", testSendBatchSequence)
}

func testSubUnsubSuccess(t *testing.T) {
	broker := getBroker(t)
	defer broker.Finish()
	sub := mocks.NewMockSubscriber(broker.ctrl)
	reqSub := mocks.NewMockSubscriber(broker.ctrl)
	// subscribe + unsubscribe -> 2 calls
	sub.EXPECT().Types().Times(2).Return(nil)
	sub.EXPECT().Ack().Times(1).Return(false)
	reqSub.EXPECT().Types().Times(2).Return(nil)
	reqSub.EXPECT().Ack().Times(1).Return(true)
	k1 := broker.Subscribe(sub)
	k2 := broker.Subscribe(reqSub)
	assert.NotZero(t, k1)
	assert.NotZero(t, k2)
	assert.NotEqual(t, k1, k2)
	broker.Unsubscribe(k1)
	broker.Unsubscribe(k2)
	// no calls to subs expected once they are unsubscribed
	broker.Send(broker.feeEvent())
}

func testSubReuseKey(t *testing.T) {
	broker := getBroker(t)
	defer broker.Finish()
	sub := mocks.NewMockSubscriber(broker.ctrl)
	sub.EXPECT().Types().Times(4).Return(nil)
	sub.EXPECT().Ack().Times(2).Return(true)
	k1 := broker.Subscribe(sub)
	broker.Unsubscribe(k1)
	k2 := broker.Subscribe(sub)
	assert.Equal(t, k1, k2)
	broker.Unsubscribe(k2)
}

func testAutoUnsubscribe(t *testing.T) {
	broker := getBroker(t)
	defer broker.Finish()
	sub := mocks.NewMockSubscriber(broker.ctrl)
	closed := make(chan struct{})
	close(closed)
	sub.EXPECT().Types().AnyTimes().Return(nil)
	sub.EXPECT().Ack().Times(1).Return(true)
	sub.EXPECT().Skip().AnyTimes().Return(make(chan struct{}))
	sub.EXPECT().Closed().AnyTimes().Return(closed)
	k := broker.Subscribe(sub)
	broker.Send(broker.feeEvent())
	// the key was released, a new subscriber gets it back
	other := mocks.NewMockSubscriber(broker.ctrl)
	other.EXPECT().Types().AnyTimes().Return(nil)
	other.EXPECT().Ack().Times(1).Return(true)
	assert.Equal(t, k, broker.Subscribe(other))
}

func testAckingSubscriberOrder(t *testing.T) {
	broker := getBroker(t)
	defer broker.Finish()
	sub := mocks.NewMockSubscriber(broker.ctrl)
	sub.EXPECT().Types().AnyTimes().Return(nil)
	sub.EXPECT().Ack().Times(1).Return(true)
	sub.EXPECT().Skip().AnyTimes().Return(make(chan struct{}))
	sub.EXPECT().Closed().AnyTimes().Return(make(chan struct{}))
	first, second := broker.feeEvent(), broker.capsEvent()
	gomock.InOrder(
		sub.EXPECT().Push(first).Times(1),
		sub.EXPECT().Push(second).Times(1),
	)
	broker.Subscribe(sub)
	broker.Send(first)
	broker.Send(second)
	assert.Equal(t, uint64(1), first.Sequence())
	assert.Equal(t, uint64(2), second.Sequence())
}

func testEventTypeSubscription(t *testing.T) {
	broker := getBroker(t)
	defer broker.Finish()
	sub := mocks.NewMockSubscriber(broker.ctrl)
	sub.EXPECT().Types().AnyTimes().Return([]events.Type{events.GlobalSizeCapsChangedEvent})
	sub.EXPECT().Ack().Times(1).Return(true)
	sub.EXPECT().Skip().AnyTimes().Return(make(chan struct{}))
	sub.EXPECT().Closed().AnyTimes().Return(make(chan struct{}))
	caps := broker.capsEvent()
	sub.EXPECT().Push(caps).Times(1)
	broker.Subscribe(sub)
	broker.Send(broker.feeEvent())
	broker.Send(caps)
}

func testSubscriberSkip(t *testing.T) {
	broker := getBroker(t)
	defer broker.Finish()
	sub := mocks.NewMockSubscriber(broker.ctrl)
	skip := make(chan struct{})
	close(skip)
	sub.EXPECT().Types().AnyTimes().Return(nil)
	sub.EXPECT().Ack().Times(1).Return(true)
	sub.EXPECT().Skip().AnyTimes().Return(skip)
	sub.EXPECT().Closed().AnyTimes().Return(make(chan struct{}))
	sub.EXPECT().Push(gomock.Any()).Times(0)
	broker.Subscribe(sub)
	broker.Send(broker.feeEvent())
}

func testOptionalSubscriberChannel(t *testing.T) {
	broker := getBroker(t)
	defer broker.Finish()
	sub := mocks.NewMockSubscriber(broker.ctrl)
	ch := make(chan []events.Event, 1)
	sub.EXPECT().Types().AnyTimes().Return(nil)
	sub.EXPECT().Ack().Times(1).Return(false)
	sub.EXPECT().Skip().AnyTimes().Return(make(chan struct{}))
	sub.EXPECT().Closed().AnyTimes().Return(make(chan struct{}))
	sub.EXPECT().C().AnyTimes().Return(ch)
	broker.Subscribe(sub)
	e := broker.feeEvent()
	broker.Send(e)
	select {
	case got := <-ch:
		require.Len(t, got, 1)
		assert.Equal(t, e, got[0])
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func testSendBatchSequence(t *testing.T) {
	broker := getBroker(t)
	defer broker.Finish()
	evts := []events.Event{broker.feeEvent(), broker.capsEvent(), broker.feeEvent()}
	broker.SendBatch(evts)
	for i, e := range evts {
		assert.Equal(t, uint64(i+1), e.Sequence())
	}
	assert.Equal(t, uint64(3), broker.Sequence())
}
