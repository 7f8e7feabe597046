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

package core_test

import (
	"code.vegaprotocol.io/perps/config"
	"code.vegaprotocol.io/perps/core/integration/stubs"
	"code.vegaprotocol.io/perps/core/perpetual"
	"code.vegaprotocol.io/perps/core/sim"
	"code.vegaprotocol.io/perps/logging"
)

var execsetup *perpsTestSetup

type perpsTestSetup struct {
	log         *logging.Logger
	cfg         config.Config
	timeService *sim.Clock
	broker      *stubs.BrokerStub
	priceFeed   *sim.PriceFeed
	pool        *sim.Pool
	markets     *config.MarketStore
	engine      *perpetual.Engine
}

func newPerpsTestSetup() *perpsTestSetup {
	s := &perpsTestSetup{
		log:         logging.NewTestLogger(),
		cfg:         config.NewDefaultConfig(),
		timeService: sim.NewClock(),
		broker:      stubs.NewBrokerStub(),
		priceFeed:   sim.NewPriceFeed(),
		pool:        sim.NewPool(),
	}
	// no markets yet, this cannot fail
	s.markets, _ = config.NewMarketStore(s.cfg)
	s.engine = perpetual.New(
		s.log,
		s.cfg.Perpetual,
		s.broker,
		s.timeService,
		s.priceFeed,
		s.pool,
		s.pool,
		s.markets,
	)
	return s
}
