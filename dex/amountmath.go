// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"math/big"

	"github.com/holiman/uint256"
)

// GetAmount0Delta computes the amount of token0 required to cover a
// position of size liquidity between two sqrt-prices:
// liquidity * (sqrt(upper) - sqrt(lower)) / (sqrt(upper) * sqrt(lower)).
func GetAmount0Delta(sqrtPriceAX96, sqrtPriceBX96 *UInt256, liquidity *UInt256, roundUp bool) (*UInt256, error) {
	lower, upper := sqrtPriceAX96, sqrtPriceBX96
	if lower.Cmp(upper) > 0 {
		lower, upper = upper, lower
	}
	if lower.IsZero() {
		return nil, ErrCalculationOverflow
	}

	numerator1 := new(UInt256).Lsh(liquidity, 96)
	numerator2 := new(UInt256).Sub(upper, lower)

	if roundUp {
		inner, err := MulDivRoundingUp(numerator1, numerator2, upper)
		if err != nil {
			return nil, err
		}
		return DivRoundingUp(inner, lower), nil
	}
	inner, err := MulDiv(numerator1, numerator2, upper)
	if err != nil {
		return nil, err
	}
	return new(UInt256).Div(inner, lower), nil
}

// GetAmount1Delta computes the amount of token1 required to cover a
// position of size liquidity between two sqrt-prices:
// liquidity * (sqrt(upper) - sqrt(lower)).
func GetAmount1Delta(sqrtPriceAX96, sqrtPriceBX96 *UInt256, liquidity *UInt256, roundUp bool) (*UInt256, error) {
	numerator := AbsDiff(sqrtPriceAX96, sqrtPriceBX96)
	if roundUp {
		return MulDivRoundingUp(liquidity, numerator, Q96)
	}
	return MulDiv(liquidity, numerator, Q96)
}

// GetAmount0DeltaSigned is the signed helper used while applying a
// position's liquidity delta to the pool's running reserves.
func GetAmount0DeltaSigned(sqrtPriceAX96, sqrtPriceBX96 *UInt256, liquidityDelta *Int256) (*Int256, error) {
	if liquidityDelta.Sign() < 0 {
		absLiq, overflow := uint256.FromBig(new(big.Int).Neg(liquidityDelta))
		if overflow {
			return nil, ErrLiquidityOverflow
		}
		amt, err := GetAmount0Delta(sqrtPriceAX96, sqrtPriceBX96, absLiq, false)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Neg(amt.ToBig()), nil
	}
	absLiq, overflow := uint256.FromBig(liquidityDelta)
	if overflow {
		return nil, ErrLiquidityOverflow
	}
	amt, err := GetAmount0Delta(sqrtPriceAX96, sqrtPriceBX96, absLiq, true)
	if err != nil {
		return nil, err
	}
	return amt.ToBig(), nil
}

// GetAmount1DeltaSigned is the signed token1 counterpart to
// GetAmount0DeltaSigned.
func GetAmount1DeltaSigned(sqrtPriceAX96, sqrtPriceBX96 *UInt256, liquidityDelta *Int256) (*Int256, error) {
	if liquidityDelta.Sign() < 0 {
		absLiq, overflow := uint256.FromBig(new(big.Int).Neg(liquidityDelta))
		if overflow {
			return nil, ErrLiquidityOverflow
		}
		amt, err := GetAmount1Delta(sqrtPriceAX96, sqrtPriceBX96, absLiq, false)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Neg(amt.ToBig()), nil
	}
	absLiq, overflow := uint256.FromBig(liquidityDelta)
	if overflow {
		return nil, ErrLiquidityOverflow
	}
	amt, err := GetAmount1Delta(sqrtPriceAX96, sqrtPriceBX96, absLiq, true)
	if err != nil {
		return nil, err
	}
	return amt.ToBig(), nil
}

// GetLiquidityForAmount0 computes the liquidity obtainable for a given
// amount of token0 over a price range.
func GetLiquidityForAmount0(sqrtPriceAX96, sqrtPriceBX96, amount0 *UInt256) (*UInt256, error) {
	lower, upper := sqrtPriceAX96, sqrtPriceBX96
	if lower.Cmp(upper) > 0 {
		lower, upper = upper, lower
	}
	if lower.Cmp(upper) == 0 {
		return nil, ErrInvalidTick
	}
	intermediate, err := MulDiv(lower, upper, Q96)
	if err != nil {
		return nil, err
	}
	return MulDiv(amount0, intermediate, new(UInt256).Sub(upper, lower))
}

// GetLiquidityForAmount1 computes the liquidity obtainable for a given
// amount of token1 over a price range.
func GetLiquidityForAmount1(sqrtPriceAX96, sqrtPriceBX96, amount1 *UInt256) (*UInt256, error) {
	lower, upper := sqrtPriceAX96, sqrtPriceBX96
	if lower.Cmp(upper) > 0 {
		lower, upper = upper, lower
	}
	if lower.Cmp(upper) == 0 {
		return nil, ErrInvalidTick
	}
	return MulDiv(amount1, Q96, new(UInt256).Sub(upper, lower))
}

// GetLiquidityForAmounts computes the maximum liquidity obtainable given
// amounts of both tokens, the current price, and a target range,
// selecting among the three-region formula depending on whether the
// current price sits below, inside, or above the range.
func GetLiquidityForAmounts(sqrtPriceX96, sqrtPriceAX96, sqrtPriceBX96, amount0, amount1 *UInt256) (*UInt256, error) {
	lower, upper := sqrtPriceAX96, sqrtPriceBX96
	if lower.Cmp(upper) > 0 {
		lower, upper = upper, lower
	}
	if lower.Cmp(upper) == 0 {
		return nil, ErrInvalidTick
	}

	switch {
	case sqrtPriceX96.Cmp(lower) <= 0:
		return GetLiquidityForAmount0(lower, upper, amount0)
	case sqrtPriceX96.Cmp(upper) < 0:
		liq0, err := GetLiquidityForAmount0(sqrtPriceX96, upper, amount0)
		if err != nil {
			return nil, err
		}
		liq1, err := GetLiquidityForAmount1(lower, sqrtPriceX96, amount1)
		if err != nil {
			return nil, err
		}
		if liq0.Cmp(liq1) < 0 {
			return liq0, nil
		}
		return liq1, nil
	default:
		return GetLiquidityForAmount1(lower, upper, amount1)
	}
}

// GetNextSqrtPriceFromAmount0RoundingUp computes the sqrt-price reached
// after adding (or removing) amount of token0 at constant liquidity,
// rounding the result up so a caller computing amount_in never
// undercharges.
func GetNextSqrtPriceFromAmount0RoundingUp(sqrtPriceX96 *UInt256, liquidity *UInt256, amount *UInt256, add bool) (*UInt256, error) {
	if amount.IsZero() {
		return new(UInt256).Set(sqrtPriceX96), nil
	}
	numerator1 := new(UInt256).Lsh(liquidity, 96)

	if add {
		product, overflow := new(UInt256).MulOverflow(amount, sqrtPriceX96)
		if !overflow {
			denominator, overflow := new(UInt256).AddOverflow(numerator1, product)
			if !overflow {
				return MulDivRoundingUp(numerator1, sqrtPriceX96, denominator)
			}
		}
		// Fallback path avoiding the overflow-prone numerator1+product
		// form, matching the reference's div-then-add reformulation.
		denom, err := divRoundingUpChecked(numerator1, sqrtPriceX96)
		if err != nil {
			return nil, err
		}
		denom2, overflow := new(UInt256).AddOverflow(denom, amount)
		if overflow {
			return nil, ErrCalculationOverflow
		}
		return MulDivRoundingUp(numerator1, sqrtPriceX96, denom2)
	}

	product, overflow := new(UInt256).MulOverflow(amount, sqrtPriceX96)
	if overflow || numerator1.Cmp(product) <= 0 {
		return nil, ErrCalculationOverflow
	}
	denominator := new(UInt256).Sub(numerator1, product)
	result, err := MulDivRoundingUp(numerator1, sqrtPriceX96, denominator)
	if err != nil {
		return nil, err
	}
	if result.Cmp(MaxSqrtRatio) > 0 || result.IsZero() {
		return nil, ErrCalculationOverflow
	}
	return result, nil
}

func divRoundingUpChecked(x, y *UInt256) (*UInt256, error) {
	if y.IsZero() {
		return nil, ErrCalculationOverflow
	}
	return DivRoundingUp(x, y), nil
}

// GetNextSqrtPriceFromAmount1RoundingDown is the token1-side counterpart
// to GetNextSqrtPriceFromAmount0RoundingUp.
func GetNextSqrtPriceFromAmount1RoundingDown(sqrtPriceX96 *UInt256, liquidity *UInt256, amount *UInt256, add bool) (*UInt256, error) {
	if add {
		quotient, err := MulDiv(amount, Q96, liquidity)
		if err != nil {
			return nil, err
		}
		sum, overflow := new(UInt256).AddOverflow(sqrtPriceX96, quotient)
		if overflow {
			return nil, ErrCalculationOverflow
		}
		return sum, nil
	}

	quotient, err := MulDivRoundingUp(amount, Q96, liquidity)
	if err != nil {
		return nil, err
	}
	if sqrtPriceX96.Cmp(quotient) <= 0 {
		return nil, ErrCalculationOverflow
	}
	return new(UInt256).Sub(sqrtPriceX96, quotient), nil
}

// GetNextSqrtPriceFromInput dispatches to the amount0/amount1 variant
// appropriate for an exact-input step.
func GetNextSqrtPriceFromInput(sqrtPriceX96, liquidity, amountIn *UInt256, zeroForOne bool) (*UInt256, error) {
	if zeroForOne {
		return GetNextSqrtPriceFromAmount0RoundingUp(sqrtPriceX96, liquidity, amountIn, true)
	}
	return GetNextSqrtPriceFromAmount1RoundingDown(sqrtPriceX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput dispatches to the amount0/amount1 variant
// appropriate for an exact-output step. Note the roles swap relative to
// GetNextSqrtPriceFromInput: selling token0 consumes token1 liquidity on
// the output side.
func GetNextSqrtPriceFromOutput(sqrtPriceX96, liquidity, amountOut *UInt256, zeroForOne bool) (*UInt256, error) {
	if zeroForOne {
		return GetNextSqrtPriceFromAmount1RoundingDown(sqrtPriceX96, liquidity, amountOut, false)
	}
	return GetNextSqrtPriceFromAmount0RoundingUp(sqrtPriceX96, liquidity, amountOut, false)
}
