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
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"code.vegaprotocol.io/perps/config"
	"code.vegaprotocol.io/perps/core/broker"
	"code.vegaprotocol.io/perps/core/metrics"
	"code.vegaprotocol.io/perps/core/perpetual"
	"code.vegaprotocol.io/perps/core/sim"
	"code.vegaprotocol.io/perps/core/snapshot"
	"code.vegaprotocol.io/perps/core/subscribers"
	vgclose "code.vegaprotocol.io/perps/libs/close"
	vgio "code.vegaprotocol.io/perps/libs/io"
	"code.vegaprotocol.io/perps/logging"
	"code.vegaprotocol.io/perps/paths"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
)

var ErrScenarioFailed = errors.New("scenario failed")

type ReplayCmd struct {
	config.HomeFlag

	Scenario string `short:"s" long:"scenario" required:"true" description:"Path to the TOML scenario to replay"`
	EventLog string `long:"event-log" description:"File the events are written to, \"-\" for stdout. Defaults to a new file under the state home"`
	Restore  bool   `long:"restore" description:"Load the markets from the last snapshot before replaying"`
	Watch    bool   `long:"watch" description:"Reload the market configuration when the file changes"`
	NoColor  bool   `long:"no-color" description:"Disable coloured output"`
}

var replayCmd ReplayCmd

func (opts *ReplayCmd) Execute(_ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	perpsPaths := paths.New(opts.Home)
	cfgPath, err := config.EnsureConfigFile(perpsPaths, false)
	if err != nil {
		return err
	}
	cfg, err := config.Read(cfgPath)
	if err != nil {
		return err
	}

	logger := logging.NewLoggerFromConfig(cfg.Logging)
	defer logger.AtExit()

	color.NoColor = opts.NoColor || !(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	sc, err := ReadScenario(opts.Scenario)
	if err != nil {
		return err
	}

	store, err := config.NewMarketStore(withScenarioMarkets(cfg, sc))
	if err != nil {
		return err
	}

	closer := vgclose.NewCloser()
	defer func() {
		if err := closer.CloseAll(); err != nil {
			logger.Error("couldn't release every resource", logging.Error(err))
		}
	}()

	srv, err := metrics.Start(cfg.Metrics)
	if err != nil {
		return err
	}
	if srv != nil {
		closer.Add("metrics", srv.Close)
		logger.Info("metrics exposed", logging.Int("port", cfg.Metrics.Port))
	}

	w, err := opts.eventLogWriter(perpsPaths, closer)
	if err != nil {
		return err
	}
	counter := vgio.NewCountWriter(w)
	evtLog := subscribers.NewEventLog(ctx, counter, logger, true)
	evtBroker := broker.New(ctx, logger, cfg.Broker)
	evtBroker.Subscribe(evtLog)

	timeService := sim.NewClock()
	feed := sim.NewPriceFeed()
	pool := sim.NewPool()
	engine := perpetual.New(logger, cfg.Perpetual, evtBroker, timeService, feed, pool, pool, store)

	snap, err := snapshot.NewEngine(perpsPaths, cfg.Snapshot, logger)
	if err != nil {
		return fmt.Errorf("couldn't open the snapshot database: %w", err)
	}
	closer.Add("snapshot", snap.Close)
	if err := snap.AddProviders(engine); err != nil {
		return err
	}
	if opts.Restore {
		if _, err := snap.Restore(ctx); err != nil {
			return fmt.Errorf("couldn't restore the snapshot: %w", err)
		}
	}

	if opts.Watch {
		watcher, err := config.NewFromFile(ctx, logger, cfgPath)
		if err != nil {
			return err
		}
		watcher.OnConfigUpdate(func(c config.Config) {
			if err := store.Update(withScenarioMarkets(c, sc)); err != nil {
				logger.Error("couldn't update the market configuration", logging.Error(err))
				return
			}
			engine.ReloadConf(c.Perpetual)
			evtBroker.ReloadConf(c.Broker)
			snap.ReloadConf(c.Snapshot)
			if err := engine.OnConfigChanged(ctx); err != nil {
				logger.Error("couldn't apply the market configuration", logging.Error(err))
			}
		})
		timeService.NotifyOnTick(watcher.OnTimeUpdate)
	}

	r := &runner{
		log:    logger,
		engine: engine,
		time:   timeService,
		feed:   feed,
		pool:   pool,
		snap:   snap,
		out:    os.Stdout,
	}
	if err := r.setup(ctx, sc); err != nil {
		return err
	}
	rep := r.run(ctx, sc)
	if err := r.summary(); err != nil {
		return err
	}

	if err := evtLog.Err(); err != nil {
		return fmt.Errorf("couldn't write the event log: %w", err)
	}
	logger.Info("scenario replayed",
		logging.Int("steps", rep.Steps),
		logging.Int("failed", rep.Failed),
		logging.Uint64("events", counter.Writes()),
		logging.Int64("bytes", counter.Count()),
	)
	if rep.Failed > 0 {
		return fmt.Errorf("%w: %d of %d steps", ErrScenarioFailed, rep.Failed, rep.Steps)
	}
	return nil
}

func (opts *ReplayCmd) eventLogWriter(perpsPaths paths.Paths, closer *vgclose.Closer) (io.Writer, error) {
	if opts.EventLog == "-" {
		return os.Stdout, nil
	}
	path := opts.EventLog
	if path == "" {
		dir, err := perpsPaths.CreateStateDirFor(paths.EventLogStateHome)
		if err != nil {
			return nil, fmt.Errorf("couldn't create the event log directory: %w", err)
		}
		path = filepath.Join(dir, time.Now().UTC().Format("20060102T150405")+".jsonl")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't create the event log: %w", err)
	}
	closer.Add("event log", f.Close)
	return f, nil
}

// withScenarioMarkets adds the markets the configuration misses, they run
// with the market defaults.
func withScenarioMarkets(cfg config.Config, sc *Scenario) config.Config {
	known := map[string]struct{}{}
	for _, m := range cfg.Markets {
		known[m.ID] = struct{}{}
	}
	markets := append([]config.MarketConfig{}, cfg.Markets...)
	for _, m := range sc.Markets {
		if _, ok := known[m.ID]; !ok {
			markets = append(markets, config.MarketConfig{ID: m.ID})
		}
	}
	cfg.Markets = markets
	return cfg
}

func Replay(ctx context.Context, parser *flags.Parser) error {
	replayCmd = ReplayCmd{}

	short := "Replays a scenario"
	long := "Run the operations of a TOML scenario against an engine backed by a simulated price feed and liquidity pool"

	_, err := parser.AddCommand("replay", short, long, &replayCmd)
	return err
}
