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
package perpetual

import (
	"context"
	"sort"
	"sync"

	"code.vegaprotocol.io/perps/core/metrics"
	"code.vegaprotocol.io/perps/core/risk"
	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
	"code.vegaprotocol.io/perps/logging"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMarketNotFound      = errors.New("market not found")
	ErrMarketAlreadyExists = errors.New("market already exists")
)

// Engine settles the positions and funding of perpetual markets. Operations
// on one market are serialised, different markets run concurrently.
type Engine struct {
	log *logging.Logger
	cfg Config

	broker      Broker
	timeService TimeService
	priceFeed   PriceFeed
	priceImpact PriceImpact
	pool        LiquidityPool
	configs     ConfigProvider

	emitNoopFunding *atomic.Bool

	// guards the registry only, market state is guarded by marketState.mu
	mu      sync.RWMutex
	markets map[string]*marketState
}

// New instantiates a new perpetual engine.
func New(
	log *logging.Logger,
	cfg Config,
	broker Broker,
	timeService TimeService,
	priceFeed PriceFeed,
	priceImpact PriceImpact,
	pool LiquidityPool,
	configs ConfigProvider,
) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		log:             log,
		cfg:             cfg,
		broker:          broker,
		timeService:     timeService,
		priceFeed:       priceFeed,
		priceImpact:     priceImpact,
		pool:            pool,
		configs:         configs,
		emitNoopFunding: atomic.NewBool(bool(cfg.EmitNoopFunding)),
		markets:         map[string]*marketState{},
	}
}

// ReloadConf updates the internal configuration.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevelString()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}
	e.emitNoopFunding.Store(bool(cfg.EmitNoopFunding))
}

// CreateMarket registers an empty market. Funding accrues from now on and the
// size caps stay at zero until UpdateSizeCaps runs.
func (e *Engine) CreateMarket(ctx context.Context, market string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.markets[market]; ok {
		return ErrMarketAlreadyExists
	}
	e.markets[market] = newMarketState(market, e.timeService.GetTimeNow().Unix())
	e.log.Info("market created", logging.MarketID(market))
	return nil
}

// Markets returns the sorted market IDs.
func (e *Engine) Markets() []string {
	e.mu.RLock()
	ids := maps.Keys(e.markets)
	e.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (e *Engine) getMarket(market string) (*marketState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.markets[market]
	if !ok {
		return nil, ErrMarketNotFound
	}
	return m, nil
}

func (e *Engine) commit(m *marketState, p *pending) {
	evts := m.commit(p)
	if p.fundingTimeDelta > 0 {
		metrics.FundingSettled(m.id, p.fundingTimeDelta)
	}
	metrics.LiquidationFundSet(m.id, num.DecimalFromInt(m.liquidationFund).InexactFloat64())
	metrics.ProtocolFeeSet(m.id, num.DecimalFromUint(m.protocolFee).InexactFloat64())
	if len(evts) > 0 {
		e.broker.SendBatch(evts)
	}
}

func (e *Engine) rejected(market, op string, err error, fields ...logging.Field) {
	metrics.RejectionCounterInc(market, op, err)
	if e.log.IsDebug() {
		e.log.Debug(op+" rejected", append(fields, logging.MarketID(market), logging.Error(err))...)
	}
}

// Increase opens a position or adds margin and size to it.
func (e *Engine) Increase(ctx context.Context, market, account string, side types.Side, marginDelta, sizeDelta *num.Uint) error {
	defer metrics.NewTimeCounter(market, namedLogger, "Increase").EngineTimeCounterAdd()
	if !side.Valid() {
		return types.ErrInvalidSide
	}
	m, err := e.getMarket(market)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := e.timeService.GetTimeNow().Unix()
	p := m.begin()
	if err := e.settleFunding(ctx, m, p, now, e.emitNoopFunding.Load()); err != nil {
		return err
	}
	if err := e.increase(ctx, m, p, now, account, side, marginDelta, sizeDelta); err != nil {
		e.rejected(market, "increase", err, logging.PartyID(account), logging.Side(side))
		return err
	}
	e.commit(m, p)
	metrics.PositionCounterInc(market, "increase")
	return nil
}

// Decrease withdraws margin and closes size of a position, the returned
// amount is owed to the receiver. Closing the full size refunds the
// remaining margin as well.
func (e *Engine) Decrease(ctx context.Context, market, account string, side types.Side, marginDelta, sizeDelta *num.Uint, receiver string) (*num.Uint, error) {
	defer metrics.NewTimeCounter(market, namedLogger, "Decrease").EngineTimeCounterAdd()
	if !side.Valid() {
		return nil, types.ErrInvalidSide
	}
	m, err := e.getMarket(market)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := e.timeService.GetTimeNow().Unix()
	p := m.begin()
	if err := e.settleFunding(ctx, m, p, now, e.emitNoopFunding.Load()); err != nil {
		return nil, err
	}
	out, err := e.decrease(ctx, m, p, now, account, side, marginDelta, sizeDelta, receiver)
	if err != nil {
		e.rejected(market, "decrease", err, logging.PartyID(account), logging.Side(side))
		return nil, err
	}
	e.commit(m, p)
	metrics.PositionCounterInc(market, "decrease")
	return out, nil
}

// Liquidate force closes an unhealthy position, the returned liquidation
// execution fee is owed to the fee receiver.
func (e *Engine) Liquidate(ctx context.Context, market, account string, side types.Side, feeReceiver string) (*num.Uint, error) {
	defer metrics.NewTimeCounter(market, namedLogger, "Liquidate").EngineTimeCounterAdd()
	if !side.Valid() {
		return nil, types.ErrInvalidSide
	}
	m, err := e.getMarket(market)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := e.timeService.GetTimeNow().Unix()
	p := m.begin()
	if err := e.settleFunding(ctx, m, p, now, e.emitNoopFunding.Load()); err != nil {
		return nil, err
	}
	fee, err := e.liquidate(ctx, m, p, account, side, feeReceiver)
	if err != nil {
		e.rejected(market, "liquidate", err, logging.PartyID(account), logging.Side(side))
		return nil, err
	}
	e.commit(m, p)
	metrics.PositionCounterInc(market, "liquidate")
	return fee, nil
}

// CloseOutcome tells which of the two paths ClosePositionOrLiquidate took.
type CloseOutcome struct {
	Liquidated bool
	// Amount is the refund owed to the receiver after a close, or the
	// execution fee owed to it after a liquidation.
	Amount *num.Uint
	// CloseErr is the rejection of the close attempt when the position was
	// liquidated instead.
	CloseErr error
}

// ClosePositionOrLiquidate closes the whole position and, if the close is
// rejected, liquidates it. Both attempts run under the same market lock.
func (e *Engine) ClosePositionOrLiquidate(ctx context.Context, market, account string, side types.Side, receiver string) (CloseOutcome, error) {
	defer metrics.NewTimeCounter(market, namedLogger, "ClosePositionOrLiquidate").EngineTimeCounterAdd()
	if !side.Valid() {
		return CloseOutcome{}, types.ErrInvalidSide
	}
	m, err := e.getMarket(market)
	if err != nil {
		return CloseOutcome{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.position(account, side)
	if !ok {
		return CloseOutcome{}, types.ErrPositionNotFound
	}

	now := e.timeService.GetTimeNow().Unix()
	p := m.begin()
	if err := e.settleFunding(ctx, m, p, now, e.emitNoopFunding.Load()); err != nil {
		return CloseOutcome{}, err
	}
	out, closeErr := e.decrease(ctx, m, p, now, account, side, num.UintZero(), pos.Size, receiver)
	if closeErr == nil {
		e.commit(m, p)
		metrics.PositionCounterInc(market, "decrease")
		return CloseOutcome{Amount: out}, nil
	}

	e.log.Debug("close rejected, liquidating",
		logging.MarketID(market),
		logging.PartyID(account),
		logging.Side(side),
		logging.Error(closeErr),
	)
	fee, err := e.liquidate(ctx, m, p, account, side, receiver)
	if err != nil {
		e.rejected(market, "liquidate", err, logging.PartyID(account), logging.Side(side))
		return CloseOutcome{CloseErr: closeErr}, err
	}
	e.commit(m, p)
	metrics.PositionCounterInc(market, "liquidate")
	return CloseOutcome{Liquidated: true, Amount: fee, CloseErr: closeErr}, nil
}

// SettleFunding settles the funding of a market up to now. Settling twice
// at the same time changes nothing but still sends FundingSettled.
func (e *Engine) SettleFunding(ctx context.Context, market string) error {
	defer metrics.NewTimeCounter(market, namedLogger, "SettleFunding").EngineTimeCounterAdd()
	m, err := e.getMarket(market)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.begin()
	if err := e.settleFunding(ctx, m, p, e.timeService.GetTimeNow().Unix(), true); err != nil {
		return err
	}
	e.commit(m, p)
	return nil
}

// SettleFundingAll settles every market concurrently.
func (e *Engine) SettleFundingAll(ctx context.Context) error {
	return e.forEachMarket(ctx, e.SettleFunding)
}

// GetPosition returns a copy of a position.
func (e *Engine) GetPosition(market, account string, side types.Side) (*types.Position, error) {
	m, err := e.getMarket(market)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.position(account, side)
	if !ok {
		return nil, types.ErrPositionNotFound
	}
	return pos, nil
}

// Positions returns copies of every position of a market ordered by account then side.
func (e *Engine) Positions(market string) ([]*types.Position, error) {
	m, err := e.getMarket(market)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Position, 0, m.positions.Len())
	m.positions.Ascend(func(p *types.Position) bool {
		out = append(out, p.Clone())
		return true
	})
	return out, nil
}

func (e *Engine) GetGlobalPosition(market string) (*types.GlobalPosition, error) {
	m, err := e.getMarket(market)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.global.Clone(), nil
}

func (e *Engine) GetLiquidationFund(market string) (*num.Int, error) {
	m, err := e.getMarket(market)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liquidationFund.Clone(), nil
}

func (e *Engine) GetProtocolFee(market string) (*num.Uint, error) {
	m, err := e.getMarket(market)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.protocolFee.Clone(), nil
}

func (e *Engine) GetLiquidityPnLGrowthX96(market string) (*num.Int, error) {
	m, err := e.getMarket(market)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liquidityPnLGrowthX96.Clone(), nil
}

// UnrealizedPnL returns the PnL of a position if it was closed at the
// current decrease index price.
func (e *Engine) UnrealizedPnL(ctx context.Context, market, account string, side types.Side) (*num.Int, error) {
	m, err := e.getMarket(market)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.position(account, side)
	if !ok {
		return nil, types.ErrPositionNotFound
	}
	price, err := e.priceFeed.DecreaseIndexPrice(ctx, market, side)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get decrease index price")
	}
	return risk.CalculateUnrealizedPnL(side, pos.Size, pos.EntryPriceX96, price), nil
}

// LiquidationPrice returns the price at which a position would be
// liquidated given the funding accrued so far.
func (e *Engine) LiquidationPrice(market, account string, side types.Side) (*num.Uint, error) {
	m, err := e.getMarket(market)
	if err != nil {
		return nil, err
	}
	cfg, err := e.configs.MarketBaseConfig(market)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get market base config")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.position(account, side)
	if !ok {
		return nil, types.ErrPositionNotFound
	}
	required := risk.CalculateFundingFee(m.global.FundingRateGrowthX96(side), pos.EntryFundingRateGrowthX96, pos.Size)
	price, _ := risk.CalculateLiquidationPriceX96(risk.LiquidationPriceParams{
		Side:                    side,
		Margin:                  pos.Margin,
		Size:                    pos.Size,
		EntryPriceX96:           pos.EntryPriceX96,
		RequiredFundingFee:      required,
		LiquidationFeeRate:      cfg.LiquidationFeeRatePerPosition,
		LiquidationExecutionFee: cfg.LiquidationExecutionFee,
	})
	return price, nil
}

// forEachMarket runs fn for every market concurrently, the first error
// cancels the context of the others.
func (e *Engine) forEachMarket(ctx context.Context, fn func(ctx context.Context, market string) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range e.Markets() {
		id := id
		g.Go(func() error {
			return fn(gctx, id)
		})
	}
	return g.Wait()
}
