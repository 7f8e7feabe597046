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

package types

import "errors"

// Rejections returned by position and liquidation operations. None of them
// leave a partial state change behind.
var (
	ErrInvalidSide                    = errors.New("invalid side")
	ErrPositionNotFound               = errors.New("position not found")
	ErrInsufficientSizeToDecrease     = errors.New("insufficient size to decrease")
	ErrInsufficientGlobalLiquidity    = errors.New("insufficient global liquidity")
	ErrSizeExceedsMaxSizePerPosition  = errors.New("size exceeds max size per position")
	ErrSizeExceedsMaxSize             = errors.New("size exceeds max size")
	ErrInsufficientMargin             = errors.New("insufficient margin")
	ErrMarginRateTooHigh              = errors.New("margin rate too high")
	ErrMarginRateTooLow               = errors.New("margin rate too low")
	ErrLeverageTooHigh                = errors.New("leverage too high")
	ErrMarginBelowMinimum             = errors.New("margin below minimum per position")
	ErrMarginTooLarge                 = errors.New("margin exceeds 128 bits")
	ErrInvalidMarketBaseConfig        = errors.New("invalid market base config")
	ErrInvalidMarketFeeRateConfig     = errors.New("invalid market fee rate config")
	ErrRateExceedsBasisPointsDivisor  = errors.New("rate exceeds 100%")
	ErrMaxLeveragePerPositionIsZero   = errors.New("max leverage per position is zero")
	ErrMaxPositionValueRateIsZero     = errors.New("max position value rate is zero")
	ErrProtocolFundingCoeffOutOfRange = errors.New("protocol funding coeff out of range")
)
