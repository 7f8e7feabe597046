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

package stubs_test

import (
	"context"
	"testing"

	"code.vegaprotocol.io/perps/core/events"
	"code.vegaprotocol.io/perps/core/integration/stubs"

	"github.com/stretchr/testify/assert"
)

func TestBrokerStub(t *testing.T) {
	b := stubs.NewBrokerStub()
	ctx := context.Background()
	b.SendBatch([]events.Event{
		events.NewFundingSettledEvent(ctx, events.FundingSettledPayload{MarketID: "m"}),
		events.NewProtocolFeeIncreasedEvent(ctx, events.ProtocolFeeIncreasedPayload{MarketID: "m"}),
	})

	assert.Len(t, b.GetAllEvents(), 2)
	assert.Len(t, b.GetFundingSettledEvents(), 1)
	assert.Equal(t, uint64(2), b.GetAllEvents()[1].Sequence())

	b.Reset()
	assert.Empty(t, b.GetAllEvents())
}
