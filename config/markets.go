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

package config

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"code.vegaprotocol.io/perps/core/types"
)

var ErrMarketConfigNotFound = errors.New("no configuration for market")

// MarketStore serves the resolved market parameters to the engine. It is
// swapped as a whole when the configuration file changes.
type MarketStore struct {
	mu      sync.RWMutex
	markets map[string]MarketConfig
}

func NewMarketStore(cfg Config) (*MarketStore, error) {
	s := &MarketStore{}
	if err := s.Update(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the known markets. On error the previous set is kept.
func (s *MarketStore) Update(cfg Config) error {
	resolved, err := cfg.ResolvedMarkets()
	if err != nil {
		return err
	}
	markets := make(map[string]MarketConfig, len(resolved))
	for _, m := range resolved {
		markets[m.ID] = m
	}

	s.mu.Lock()
	s.markets = markets
	s.mu.Unlock()
	return nil
}

// IDs returns the configured market IDs in order.
func (s *MarketStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.markets))
	for id := range s.markets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *MarketStore) MarketBaseConfig(market string) (types.MarketBaseConfig, error) {
	m, err := s.get(market)
	if err != nil {
		return types.MarketBaseConfig{}, err
	}
	return m.BaseConfig(), nil
}

func (s *MarketStore) MarketFeeRateConfig(market string) (types.MarketFeeRateConfig, error) {
	m, err := s.get(market)
	if err != nil {
		return types.MarketFeeRateConfig{}, err
	}
	return m.FeeRateConfig(), nil
}

func (s *MarketStore) get(market string) (MarketConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markets[market]
	if !ok {
		return MarketConfig{}, fmt.Errorf("%w: %s", ErrMarketConfigNotFound, market)
	}
	return m, nil
}
