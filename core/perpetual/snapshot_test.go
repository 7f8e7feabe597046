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
package perpetual_test

import (
	"context"
	"encoding/json"
	"testing"

	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	te := getTestEngineWithMarket(t)
	te.open(t, "alice", types.SideLong, num.NewUint(1070), num.NewUint(4096), priceX96(1, 1))
	te.open(t, "bob", types.SideShort, num.NewUint(500), num.NewUint(1000), priceX96(1, 1))

	assert.Equal(t, "perpetual", te.Namespace())
	assert.Equal(t, []string{testMarket}, te.Keys())

	state, err := te.GetState(testMarket)
	require.NoError(t, err)

	restored := getTestEngine(t)
	require.NoError(t, restored.LoadState(context.Background(), testMarket, state))
	assert.Equal(t, []string{testMarket}, restored.Markets())

	want, err := te.Positions(testMarket)
	require.NoError(t, err)
	got, err := restored.Positions(testMarket)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Key(), got[i].Key())
		assert.Equal(t, want[i].Margin.String(), got[i].Margin.String())
		assert.Equal(t, want[i].Size.String(), got[i].Size.String())
		assert.Equal(t, want[i].EntryPriceX96.String(), got[i].EntryPriceX96.String())
		assert.Equal(t, want[i].EntryFundingRateGrowthX96.String(), got[i].EntryFundingRateGrowthX96.String())
		assert.Equal(t, want[i].EntryTime, got[i].EntryTime)
	}

	wantG, err := te.GetGlobalPosition(testMarket)
	require.NoError(t, err)
	gotG, err := restored.GetGlobalPosition(testMarket)
	require.NoError(t, err)
	assert.Equal(t, wantG.LongSize.String(), gotG.LongSize.String())
	assert.Equal(t, wantG.ShortSize.String(), gotG.ShortSize.String())
	assert.Equal(t, wantG.MaxSize.String(), gotG.MaxSize.String())
	assert.Equal(t, wantG.LastFundingSettleTime, gotG.LastFundingSettleTime)

	// the serialised state is stable
	again, err := restored.GetState(testMarket)
	require.NoError(t, err)
	assert.JSONEq(t, string(state), string(again))
}

func TestLoadStateRejectsInvalidState(t *testing.T) {
	te := getTestEngine(t)
	assert.Error(t, te.LoadState(context.Background(), testMarket, []byte("{")))
	assert.Error(t, te.LoadState(context.Background(), testMarket, []byte(`{"global":null}`)))
	assert.Empty(t, te.Markets())

	_, err := te.GetState("nope")
	assert.Error(t, err)
}

func validMarketState() marketState {
	g := types.NewGlobalPosition()
	g.LongSize = num.NewUint(4096)
	g.ShortSize = num.NewUint(100)
	g.MaxSize = num.NewUint(1_000_000)
	g.MaxSizePerPosition = num.NewUint(100_000)

	alice := types.NewPosition("alice", types.SideLong)
	alice.Margin = num.NewUint(1070)
	alice.Size = num.NewUint(4096)
	alice.EntryPriceX96 = priceX96(1, 1)

	bob := types.NewPosition("bob", types.SideShort)
	bob.Margin = num.NewUint(1000)
	bob.Size = num.NewUint(100)
	bob.EntryPriceX96 = priceX96(1, 1)

	return marketState{
		Global:                g,
		Positions:             []*types.Position{alice, bob},
		LiquidationFund:       num.IntZero(),
		ProtocolFee:           num.UintZero(),
		LiquidityPnLGrowthX96: num.IntZero(),
	}
}

func TestLoadStateRejectsCorruptState(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *marketState)
	}{
		{"missing long size", func(s *marketState) { s.Global.LongSize = nil }},
		{"missing short size", func(s *marketState) { s.Global.ShortSize = nil }},
		{"missing max size", func(s *marketState) { s.Global.MaxSize = nil }},
		{"missing max size per position", func(s *marketState) { s.Global.MaxSizePerPosition = nil }},
		{"missing long funding growth", func(s *marketState) { s.Global.LongFundingRateGrowthX96 = nil }},
		{"missing short funding growth", func(s *marketState) { s.Global.ShortFundingRateGrowthX96 = nil }},
		{"missing liquidation fund", func(s *marketState) { s.LiquidationFund = nil }},
		{"null position", func(s *marketState) { s.Positions = append(s.Positions, nil) }},
		{"missing margin", func(s *marketState) { s.Positions[0].Margin = nil }},
		{"missing size", func(s *marketState) { s.Positions[0].Size = nil }},
		{"missing entry price", func(s *marketState) { s.Positions[0].EntryPriceX96 = nil }},
		{"missing entry funding growth", func(s *marketState) { s.Positions[1].EntryFundingRateGrowthX96 = nil }},
		{"margin wider than 128 bits", func(s *marketState) {
			s.Positions[0].Margin = num.UintZero().Add(num.MaxUint128(), num.NewUint(1))
		}},
		{"duplicate position", func(s *marketState) {
			s.Positions = append(s.Positions, s.Positions[0].Clone())
			s.Global.LongSize = num.NewUint(8192)
		}},
		{"global size does not match the positions", func(s *marketState) { s.Global.ShortSize = num.NewUint(99) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			te := getTestEngine(t)
			state := validMarketState()
			tc.mutate(&state)
			raw, err := json.Marshal(state)
			require.NoError(t, err)

			require.NotPanics(t, func() {
				assert.Error(t, te.LoadState(context.Background(), testMarket, raw))
			})
			assert.Empty(t, te.Markets())
		})
	}

	t.Run("the unmodified state loads", func(t *testing.T) {
		te := getTestEngine(t)
		raw, err := json.Marshal(validMarketState())
		require.NoError(t, err)
		require.NoError(t, te.LoadState(context.Background(), testMarket, raw))
		assert.Equal(t, []string{testMarket}, te.Markets())
	})
}
