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
	"strings"
	"time"

	"code.vegaprotocol.io/perps/config/encoding"
	lerrors "code.vegaprotocol.io/perps/core/libs/errors"
	"code.vegaprotocol.io/perps/core/perpetual"
	"code.vegaprotocol.io/perps/core/sim"
	"code.vegaprotocol.io/perps/core/snapshot"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
	"code.vegaprotocol.io/perps/logging"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
)

var (
	purple = color.New(color.FgMagenta).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrMissingField    = errors.New("missing field")
	ErrNoMarkets       = errors.New("scenario has no market")
	ErrNoSnapshotStore = errors.New("snapshots are not enabled")
	ErrUnexpectedError = errors.New("step did not fail as expected")
)

const (
	actionIncrease  = "increase"
	actionDecrease  = "decrease"
	actionLiquidate = "liquidate"
	actionClose     = "close"
	actionSettle    = "settle"
	actionAdvance   = "advance"
	actionPrice     = "price"
	actionLiquidity = "liquidity"
	actionSnapshot  = "snapshot"
)

// Price is a decimal price stored as Q64.96.
type Price struct {
	X96 *num.Uint
}

func (p *Price) UnmarshalText(text []byte) error {
	d, err := num.DecimalFromString(string(text))
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", text, err)
	}
	v, overflow := num.DecimalToX96(d)
	if overflow {
		return fmt.Errorf("price %q does not fit Q64.96", text)
	}
	p.X96 = v
	return nil
}

func (p Price) MarshalText() ([]byte, error) {
	if p.X96 == nil {
		return []byte("0"), nil
	}
	return []byte(num.X96ToDecimal(p.X96).String()), nil
}

// Scenario is a list of operations replayed against a fresh engine.
type Scenario struct {
	StartTime time.Time        `toml:"start_time"`
	Markets   []ScenarioMarket `toml:"markets"`
	Steps     []Step           `toml:"steps"`
}

// ScenarioMarket sets the initial state of the simulated price feed and pool.
type ScenarioMarket struct {
	ID         string    `toml:"id"`
	IndexPrice Price     `toml:"index_price"`
	Spread     Price     `toml:"spread"`
	Liquidity  *num.Uint `toml:"liquidity"`
	ImpactRate uint64    `toml:"impact_rate"`
}

type Step struct {
	Action    string            `toml:"action"`
	Market    string            `toml:"market"`
	Account   string            `toml:"account"`
	Side      types.Side        `toml:"side"`
	Margin    *num.Uint         `toml:"margin"`
	Size      *num.Uint         `toml:"size"`
	Receiver  string            `toml:"receiver"`
	Price     Price             `toml:"price"`
	Liquidity *num.Uint         `toml:"liquidity"`
	Duration  encoding.Duration `toml:"duration"`
	// ExpectError is a substring of the error the step must fail with.
	ExpectError string `toml:"expect_error"`
}

func (s Step) String() string {
	switch s.Action {
	case actionIncrease, actionDecrease, actionLiquidate, actionClose:
		return fmt.Sprintf("%s %s %s/%s", s.Action, s.Market, s.Account, s.Side)
	case actionAdvance:
		return fmt.Sprintf("%s %s", s.Action, s.Duration.Get())
	default:
		return strings.TrimSpace(s.Action + " " + s.Market)
	}
}

// ReadScenario loads and validates the scenario stored at path.
func ReadScenario(path string) (*Scenario, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read scenario: %w", err)
	}
	return ParseScenario(buf)
}

// ParseScenario decodes a TOML scenario and reports every invalid market and
// step at once.
func ParseScenario(buf []byte) (*Scenario, error) {
	sc := &Scenario{}
	if _, err := toml.Decode(string(buf), sc); err != nil {
		return nil, fmt.Errorf("couldn't decode scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *Scenario) validate() error {
	errs := lerrors.NewCumulatedErrors()
	if len(sc.Markets) == 0 {
		errs.Add(ErrNoMarkets)
	}

	markets := map[string]struct{}{}
	for i, m := range sc.Markets {
		field := fmt.Sprintf("markets[%d]", i)
		if m.ID == "" {
			errs.Addf(field+".id", ErrMissingField)
			continue
		}
		if _, ok := markets[m.ID]; ok {
			errs.Addf(field+".id", fmt.Errorf("duplicate market %q", m.ID))
		}
		markets[m.ID] = struct{}{}
		if m.IndexPrice.X96 == nil || m.IndexPrice.X96.IsZero() {
			errs.Addf(field+".index_price", ErrMissingField)
		}
	}

	for i, s := range sc.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		for _, err := range s.validate() {
			errs.Addf(field, err)
		}
		if s.Market == "" {
			continue
		}
		if _, ok := markets[s.Market]; !ok {
			errs.Addf(field+".market", fmt.Errorf("market %q is not declared", s.Market))
		}
	}
	return errs.ErrorOrNil()
}

func (s Step) validate() []error {
	var errs []error
	require := func(ok bool, name string) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s: %w", name, ErrMissingField))
		}
	}

	position := func() {
		require(s.Market != "", "market")
		require(s.Account != "", "account")
		require(s.Side.Valid(), "side")
	}

	switch s.Action {
	case actionIncrease:
		position()
		require(s.Margin != nil, "margin")
		require(s.Size != nil, "size")
	case actionDecrease:
		position()
		require(s.Size != nil, "size")
		require(s.Receiver != "", "receiver")
	case actionLiquidate, actionClose:
		position()
		require(s.Receiver != "", "receiver")
	case actionSettle, actionSnapshot:
	case actionAdvance:
		require(s.Duration.Get() > 0, "duration")
	case actionPrice:
		require(s.Market != "", "market")
		require(s.Price.X96 != nil && !s.Price.X96.IsZero(), "price")
	case actionLiquidity:
		require(s.Market != "", "market")
		require(s.Liquidity != nil, "liquidity")
	default:
		errs = append(errs, fmt.Errorf("%w %q", ErrUnknownAction, s.Action))
	}
	return errs
}

// Report summarises a replay.
type Report struct {
	Steps  int
	Failed int
}

type runner struct {
	log    *logging.Logger
	engine *perpetual.Engine
	time   *sim.Clock
	feed   *sim.PriceFeed
	pool   *sim.Pool
	// nil when snapshots are disabled
	snap *snapshot.Engine
	out  io.Writer
}

// setup seeds the simulated collaborators and opens the markets. Markets
// restored from a snapshot are kept as they are.
func (r *runner) setup(ctx context.Context, sc *Scenario) error {
	if !sc.StartTime.IsZero() {
		r.time.SetTime(sc.StartTime)
	}
	for _, m := range sc.Markets {
		r.feed.SetIndexPrice(m.ID, m.IndexPrice.X96)
		if m.Spread.X96 != nil {
			r.feed.SetSpread(m.ID, m.Spread.X96)
		}
		if m.Liquidity != nil {
			r.pool.SetLiquidity(m.ID, m.Liquidity)
		}
		r.pool.SetImpactRate(m.ID, m.ImpactRate)

		err := r.engine.CreateMarket(ctx, m.ID)
		if err != nil && !errors.Is(err, perpetual.ErrMarketAlreadyExists) {
			return err
		}
		if err := r.engine.UpdateSizeCaps(ctx, m.ID); err != nil {
			return fmt.Errorf("couldn't set the size caps of %s: %w", m.ID, err)
		}
	}
	return nil
}

// run applies every step. A step fails when its outcome differs from the
// expected error, the replay goes on either way.
func (r *runner) run(ctx context.Context, sc *Scenario) Report {
	rep := Report{}
	for i, s := range sc.Steps {
		rep.Steps++
		result, err := r.apply(ctx, s)
		status := green("OK")
		if err = checkOutcome(s.ExpectError, err); err != nil {
			rep.Failed++
			status = red("FAILED")
			result = err.Error()
			r.log.Debug("step failed",
				logging.Int("step", i),
				logging.String("action", s.Action),
				logging.Error(err),
			)
		}
		fmt.Fprintf(r.out, "%3d %s: %s", i, purple(s.String()), status)
		if result != "" {
			fmt.Fprintf(r.out, " (%s)", result)
		}
		fmt.Fprintln(r.out)
	}
	return rep
}

func checkOutcome(expected string, err error) error {
	if expected == "" {
		return err
	}
	if err == nil {
		return fmt.Errorf("%w: want %q", ErrUnexpectedError, expected)
	}
	if !strings.Contains(err.Error(), expected) {
		return fmt.Errorf("%w: want %q, got %q", ErrUnexpectedError, expected, err.Error())
	}
	return nil
}

func (r *runner) apply(ctx context.Context, s Step) (string, error) {
	switch s.Action {
	case actionIncrease:
		return "", r.engine.Increase(ctx, s.Market, s.Account, s.Side, s.Margin, s.Size)
	case actionDecrease:
		margin := s.Margin
		if margin == nil {
			margin = num.UintZero()
		}
		out, err := r.engine.Decrease(ctx, s.Market, s.Account, s.Side, margin, s.Size, s.Receiver)
		if err != nil {
			return "", err
		}
		return "amount out " + out.String(), nil
	case actionLiquidate:
		fee, err := r.engine.Liquidate(ctx, s.Market, s.Account, s.Side, s.Receiver)
		if err != nil {
			return "", err
		}
		return "execution fee " + fee.String(), nil
	case actionClose:
		outcome, err := r.engine.ClosePositionOrLiquidate(ctx, s.Market, s.Account, s.Side, s.Receiver)
		if err != nil {
			return "", err
		}
		if outcome.Liquidated {
			return fmt.Sprintf("liquidated after %v, execution fee %s", outcome.CloseErr, outcome.Amount), nil
		}
		return "closed, amount out " + outcome.Amount.String(), nil
	case actionSettle:
		if s.Market == "" {
			return "", r.engine.SettleFundingAll(ctx)
		}
		return "", r.engine.SettleFunding(ctx, s.Market)
	case actionAdvance:
		r.time.Advance(s.Duration.Get())
		return r.time.GetTimeNow().UTC().Format(time.RFC3339), nil
	case actionPrice:
		r.feed.SetIndexPrice(s.Market, s.Price.X96)
		return "", nil
	case actionLiquidity:
		r.pool.SetLiquidity(s.Market, s.Liquidity)
		return "", r.engine.OnLiquidityChanged(ctx, s.Market)
	case actionSnapshot:
		if r.snap == nil {
			return "", ErrNoSnapshotStore
		}
		hash, err := r.snap.Snapshot(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("hash %x", hash), nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownAction, s.Action)
}

// summary prints the state of every market.
func (r *runner) summary() error {
	for _, market := range r.engine.Markets() {
		fund, err := r.engine.GetLiquidationFund(market)
		if err != nil {
			return err
		}
		fee, err := r.engine.GetProtocolFee(market)
		if err != nil {
			return err
		}
		positions, err := r.engine.Positions(market)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "%s: liquidation fund %s, protocol fee %s, %d positions\n",
			purple(market), fund, fee, len(positions))
		for _, p := range positions {
			fmt.Fprintf(r.out, "  %s/%s size %s margin %s entry %s\n",
				p.Account, p.Side, p.Size, p.Margin, num.X96ToDecimal(p.EntryPriceX96))
		}
	}
	return nil
}
