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

package events

import (
	"context"

	"code.vegaprotocol.io/perps/core/types"
	"code.vegaprotocol.io/perps/libs/num"
)

type PositionIncreasedPayload struct {
	MarketID           string     `json:"market_id"`
	Account            string     `json:"account"`
	Side               types.Side `json:"side"`
	MarginDelta        *num.Uint  `json:"margin_delta"`
	MarginAfter        *num.Uint  `json:"margin_after"`
	SizeDelta          *num.Uint  `json:"size_delta"`
	SizeAfter          *num.Uint  `json:"size_after"`
	TradePriceX96      *num.Uint  `json:"trade_price_x96"`
	EntryPriceAfterX96 *num.Uint  `json:"entry_price_after_x96"`
	FundingFee         *num.Int   `json:"funding_fee"`
}

type PositionIncreased struct {
	*Base
	p PositionIncreasedPayload
}

func NewPositionIncreasedEvent(ctx context.Context, p PositionIncreasedPayload) *PositionIncreased {
	return &PositionIncreased{
		Base: newBase(ctx, PositionIncreasedEvent, p.MarketID),
		p:    p,
	}
}

func (e PositionIncreased) IsParty(id string) bool {
	return e.p.Account == id
}

func (e PositionIncreased) PositionIncreased() PositionIncreasedPayload {
	return e.p
}

func (e PositionIncreased) Payload() interface{} {
	return e.p
}

type PositionDecreasedPayload struct {
	MarketID      string     `json:"market_id"`
	Account       string     `json:"account"`
	Side          types.Side `json:"side"`
	MarginDelta   *num.Uint  `json:"margin_delta"`
	MarginAfter   *num.Uint  `json:"margin_after"`
	SizeDelta     *num.Uint  `json:"size_delta"`
	SizeAfter     *num.Uint  `json:"size_after"`
	TradePriceX96 *num.Uint  `json:"trade_price_x96"`
	RealizedPnL   *num.Int   `json:"realized_pnl"`
	FundingFee    *num.Int   `json:"funding_fee"`
	Receiver      string     `json:"receiver"`
	// AmountOut is what was transferred to the receiver.
	AmountOut *num.Uint `json:"amount_out"`
}

type PositionDecreased struct {
	*Base
	p PositionDecreasedPayload
}

func NewPositionDecreasedEvent(ctx context.Context, p PositionDecreasedPayload) *PositionDecreased {
	return &PositionDecreased{
		Base: newBase(ctx, PositionDecreasedEvent, p.MarketID),
		p:    p,
	}
}

func (e PositionDecreased) IsParty(id string) bool {
	return e.p.Account == id || e.p.Receiver == id
}

func (e PositionDecreased) PositionDecreased() PositionDecreasedPayload {
	return e.p
}

func (e PositionDecreased) Payload() interface{} {
	return e.p
}

// PositionDecreasedByEntryPricePayload is sent when a profitable decrease
// within the minimum profit duration was settled at the entry price.
type PositionDecreasedByEntryPricePayload struct {
	MarketID      string     `json:"market_id"`
	Account       string     `json:"account"`
	Side          types.Side `json:"side"`
	EntryPriceX96 *num.Uint  `json:"entry_price_x96"`
	TradePriceX96 *num.Uint  `json:"trade_price_x96"`
}

type PositionDecreasedByEntryPrice struct {
	*Base
	p PositionDecreasedByEntryPricePayload
}

func NewPositionDecreasedByEntryPriceEvent(ctx context.Context, p PositionDecreasedByEntryPricePayload) *PositionDecreasedByEntryPrice {
	return &PositionDecreasedByEntryPrice{
		Base: newBase(ctx, PositionDecreasedByEntryPriceEvent, p.MarketID),
		p:    p,
	}
}

func (e PositionDecreasedByEntryPrice) IsParty(id string) bool {
	return e.p.Account == id
}

func (e PositionDecreasedByEntryPrice) PositionDecreasedByEntryPrice() PositionDecreasedByEntryPricePayload {
	return e.p
}

func (e PositionDecreasedByEntryPrice) Payload() interface{} {
	return e.p
}

type PositionLiquidatedPayload struct {
	MarketID                string     `json:"market_id"`
	Account                 string     `json:"account"`
	Side                    types.Side `json:"side"`
	Size                    *num.Uint  `json:"size"`
	Margin                  *num.Uint  `json:"margin"`
	IndexPriceX96           *num.Uint  `json:"index_price_x96"`
	TradePriceX96           *num.Uint  `json:"trade_price_x96"`
	LiquidationPriceX96     *num.Uint  `json:"liquidation_price_x96"`
	RequiredFundingFee      *num.Int   `json:"required_funding_fee"`
	FundingFee              *num.Int   `json:"funding_fee"`
	LiquidationFee          *num.Uint  `json:"liquidation_fee"`
	LiquidationExecutionFee *num.Uint  `json:"liquidation_execution_fee"`
	LiquidationFundDelta    *num.Int   `json:"liquidation_fund_delta"`
	FeeReceiver             string     `json:"fee_receiver"`
}

type PositionLiquidated struct {
	*Base
	p PositionLiquidatedPayload
}

func NewPositionLiquidatedEvent(ctx context.Context, p PositionLiquidatedPayload) *PositionLiquidated {
	return &PositionLiquidated{
		Base: newBase(ctx, PositionLiquidatedEvent, p.MarketID),
		p:    p,
	}
}

func (e PositionLiquidated) IsParty(id string) bool {
	return e.p.Account == id || e.p.FeeReceiver == id
}

func (e PositionLiquidated) PositionLiquidated() PositionLiquidatedPayload {
	return e.p
}

func (e PositionLiquidated) Payload() interface{} {
	return e.p
}
