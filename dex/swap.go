// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"math/big"

	"github.com/holiman/uint256"
)

// feeDenominator is the scale LP fees and protocol-fee fractions are
// expressed against: a fee tier of 3000 means 3000/1e6 = 0.3%.
var feeDenominator = newUint64(1_000_000)

func newUint64(v uint64) *UInt256 {
	return new(UInt256).SetUint64(v)
}

func uint256FromBig(b *big.Int) (*UInt256, bool) {
	return uint256.FromBig(b)
}

// maxSwapSteps bounds a single swap's tick-crossing loop, guarding
// against runaway iteration on a pool with unreasonably dense ticks.
const maxSwapSteps = 512

// stepComputation is the per-tick-crossing result of one call to
// ComputeSwapStep.
type stepComputation struct {
	SqrtPriceNextX96 *UInt256
	AmountIn         *UInt256
	AmountOut        *UInt256
	FeeAmount        *UInt256
}

// ComputeSwapStep advances the price from sqrtPriceCurrentX96 toward
// sqrtPriceTargetX96 by as much as amountRemaining allows at the given
// liquidity and fee tier, stopping early if the target bound is reached
// first. amountRemaining is signed: non-negative means exact-input
// (amountRemaining is the input budget), negative means exact-output
// (its magnitude is the output budget).
func ComputeSwapStep(sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity *UInt256, amountRemaining *Int256, feePips uint32) (*stepComputation, error) {
	zeroForOne := sqrtPriceCurrentX96.Cmp(sqrtPriceTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0
	feePipsU := newUint64(uint64(feePips))

	var sqrtPriceNextX96 *UInt256

	if exactIn {
		remainingU, overflow := uint256FromBig(amountRemaining)
		if overflow {
			return nil, ErrAmountOverflow
		}
		feeComplement := new(UInt256).Sub(feeDenominator, feePipsU)
		remainingLessFee, err := MulDiv(remainingU, feeComplement, feeDenominator)
		if err != nil {
			return nil, err
		}

		var amountInAtTarget *UInt256
		if zeroForOne {
			amountInAtTarget, err = GetAmount0Delta(sqrtPriceTargetX96, sqrtPriceCurrentX96, liquidity, true)
		} else {
			amountInAtTarget, err = GetAmount1Delta(sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity, true)
		}
		if err != nil {
			return nil, err
		}

		if remainingLessFee.Cmp(amountInAtTarget) >= 0 {
			sqrtPriceNextX96 = sqrtPriceTargetX96
		} else {
			sqrtPriceNextX96, err = GetNextSqrtPriceFromInput(sqrtPriceCurrentX96, liquidity, remainingLessFee, zeroForOne)
			if err != nil {
				return nil, err
			}
		}
	} else {
		remainingU, overflow := uint256FromBig(new(big.Int).Neg(amountRemaining))
		if overflow {
			return nil, ErrAmountOverflow
		}

		var amountOutAtTarget *UInt256
		var err error
		if zeroForOne {
			amountOutAtTarget, err = GetAmount1Delta(sqrtPriceTargetX96, sqrtPriceCurrentX96, liquidity, false)
		} else {
			amountOutAtTarget, err = GetAmount0Delta(sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity, false)
		}
		if err != nil {
			return nil, err
		}

		if remainingU.Cmp(amountOutAtTarget) >= 0 {
			sqrtPriceNextX96 = sqrtPriceTargetX96
		} else {
			sqrtPriceNextX96, err = GetNextSqrtPriceFromOutput(sqrtPriceCurrentX96, liquidity, remainingU, zeroForOne)
			if err != nil {
				return nil, err
			}
		}
	}

	reachedTarget := sqrtPriceNextX96.Cmp(sqrtPriceTargetX96) == 0

	var amountIn, amountOut *UInt256
	var err error
	if zeroForOne {
		amountIn, err = GetAmount0Delta(sqrtPriceNextX96, sqrtPriceCurrentX96, liquidity, true)
		if err != nil {
			return nil, err
		}
		amountOut, err = GetAmount1Delta(sqrtPriceNextX96, sqrtPriceCurrentX96, liquidity, false)
		if err != nil {
			return nil, err
		}
	} else {
		amountIn, err = GetAmount1Delta(sqrtPriceCurrentX96, sqrtPriceNextX96, liquidity, true)
		if err != nil {
			return nil, err
		}
		amountOut, err = GetAmount0Delta(sqrtPriceCurrentX96, sqrtPriceNextX96, liquidity, false)
		if err != nil {
			return nil, err
		}
	}

	if !exactIn {
		remainingU, _ := uint256FromBig(new(big.Int).Neg(amountRemaining))
		if amountOut.Cmp(remainingU) > 0 {
			amountOut = remainingU
		}
	}

	var feeAmount *UInt256
	if exactIn && !reachedTarget {
		remainingU, _ := uint256FromBig(amountRemaining)
		feeAmount = new(UInt256).Sub(remainingU, amountIn)
	} else {
		feeComplement := new(UInt256).Sub(feeDenominator, feePipsU)
		feeAmount, err = MulDivRoundingUp(amountIn, feePipsU, feeComplement)
		if err != nil {
			return nil, err
		}
	}

	return &stepComputation{
		SqrtPriceNextX96: sqrtPriceNextX96,
		AmountIn:         amountIn,
		AmountOut:        amountOut,
		FeeAmount:        feeAmount,
	}, nil
}

// SwapParams describes a single-pool swap request, already resolved to
// a concrete PoolId and direction.
type SwapParams struct {
	PoolID            PoolId
	ZeroForOne        bool
	AmountSpecified   *Int256 // positive: exact-input; negative: exact-output
	SqrtPriceLimitX96 *UInt256
}

// SwapResult reports the outcome of executing a swap against a single
// pool: the signed reserve deltas and the final price/tick/liquidity.
type SwapResult struct {
	Delta            BalanceDelta
	SqrtPriceX96     *UInt256
	Tick             int32
	Liquidity        *UInt256
	ProtocolFeeDelta *UInt256 // accrued in the input token
}

// ExecuteSwap runs the tick-by-tick swap loop against pool/ticks,
// mutating both in place, and returns the resulting balance delta. It
// is used both for real execution and, by a caller that discards the
// mutated clone afterward, for read-only quoting.
func ExecuteSwap(pool *PoolState, ticks *tickTable, params SwapParams) (*SwapResult, error) {
	zeroForOne := params.ZeroForOne
	exactIn := params.AmountSpecified.Sign() >= 0

	if zeroForOne {
		if params.SqrtPriceLimitX96.Cmp(pool.SqrtPriceX96) >= 0 || params.SqrtPriceLimitX96.Cmp(MinSqrtRatio) <= 0 {
			return nil, ErrPriceLimitOutOfBounds
		}
	} else {
		if params.SqrtPriceLimitX96.Cmp(pool.SqrtPriceX96) <= 0 || params.SqrtPriceLimitX96.Cmp(MaxSqrtRatio) >= 0 {
			return nil, ErrPriceLimitOutOfBounds
		}
	}

	amountRemaining := new(big.Int).Set(params.AmountSpecified)
	amountCalculated := new(big.Int)

	sqrtPriceX96 := new(UInt256).Set(pool.SqrtPriceX96)
	tick := pool.Tick
	liquidity := new(UInt256).Set(pool.Liquidity)

	feeGrowthGlobal0X128 := new(UInt256).Set(pool.FeeGrowthGlobal0X128)
	feeGrowthGlobal1X128 := new(UInt256).Set(pool.FeeGrowthGlobal1X128)

	protocolFeeDelta := new(UInt256)
	totalFeeAmount := new(UInt256)

	steps := 0
	for amountRemaining.Sign() != 0 && sqrtPriceX96.Cmp(params.SqrtPriceLimitX96) != 0 {
		steps++
		if steps > maxSwapSteps {
			return nil, ErrCalculationOverflow
		}

		nextTick, initialized := ticks.NextInitializedTick(tick, pool.TickSpacing, zeroForOne)
		if liquidity.Sign() == 0 && !initialized {
			// No liquidity to trade with here, and the bitmap ran off
			// the grid without finding another initialized tick ahead:
			// there is nothing further to cross into in this direction.
			return nil, ErrNoInRangeLiquidity
		}
		if nextTick < MinTick {
			nextTick = MinTick
		}
		if nextTick > MaxTick {
			nextTick = MaxTick
		}

		sqrtPriceNextX96, err := GetSqrtRatioAtTick(nextTick)
		if err != nil {
			return nil, err
		}

		target := sqrtPriceNextX96
		if zeroForOne && sqrtPriceNextX96.Cmp(params.SqrtPriceLimitX96) < 0 {
			target = params.SqrtPriceLimitX96
		} else if !zeroForOne && sqrtPriceNextX96.Cmp(params.SqrtPriceLimitX96) > 0 {
			target = params.SqrtPriceLimitX96
		}

		step, err := ComputeSwapStep(sqrtPriceX96, target, liquidity, amountRemaining, params.PoolID.Fee)
		if err != nil {
			return nil, err
		}

		if exactIn {
			spent := new(big.Int).Add(step.AmountIn.ToBig(), step.FeeAmount.ToBig())
			amountRemaining.Sub(amountRemaining, spent)
			amountCalculated.Sub(amountCalculated, step.AmountOut.ToBig())
		} else {
			amountRemaining.Add(amountRemaining, step.AmountOut.ToBig())
			owed := new(big.Int).Add(step.AmountIn.ToBig(), step.FeeAmount.ToBig())
			amountCalculated.Add(amountCalculated, owed)
		}

		totalFeeAmount = new(UInt256).Add(totalFeeAmount, step.FeeAmount)

		lpFeeAmount := step.FeeAmount
		if pool.ProtocolFeeFraction > 0 {
			cut := new(UInt256).Div(step.FeeAmount, newUint64(uint64(pool.ProtocolFeeFraction)))
			protocolFeeDelta.Add(protocolFeeDelta, cut)
			lpFeeAmount = new(UInt256).Sub(step.FeeAmount, cut)
		}

		if liquidity.Sign() > 0 {
			growth, err := MulDiv(lpFeeAmount, Q128, liquidity)
			if err != nil {
				return nil, err
			}
			if zeroForOne {
				feeGrowthGlobal0X128 = new(UInt256).Add(feeGrowthGlobal0X128, growth)
			} else {
				feeGrowthGlobal1X128 = new(UInt256).Add(feeGrowthGlobal1X128, growth)
			}
		}

		if step.SqrtPriceNextX96.Cmp(sqrtPriceNextX96) == 0 {
			if initialized {
				liquidityNet, err := ticks.Cross(nextTick, feeGrowthGlobal0X128, feeGrowthGlobal1X128)
				if err != nil {
					return nil, err
				}
				if zeroForOne {
					liquidityNet = new(big.Int).Neg(liquidityNet)
				}
				liquidity, err = AddDelta(liquidity, liquidityNet)
				if err != nil {
					return nil, err
				}
			}
			if zeroForOne {
				tick = nextTick - 1
			} else {
				tick = nextTick
			}
		} else {
			tick, err = GetTickAtSqrtRatio(step.SqrtPriceNextX96)
			if err != nil {
				return nil, err
			}
		}
		sqrtPriceX96 = step.SqrtPriceNextX96
	}

	pool.SqrtPriceX96 = sqrtPriceX96
	pool.Tick = tick
	pool.Liquidity = liquidity
	pool.FeeGrowthGlobal0X128 = feeGrowthGlobal0X128
	pool.FeeGrowthGlobal1X128 = feeGrowthGlobal1X128
	if zeroForOne {
		pool.ProtocolFeesOwed0 = new(UInt256).Add(pool.ProtocolFeesOwed0, protocolFeeDelta)
	} else {
		pool.ProtocolFeesOwed1 = new(UInt256).Add(pool.ProtocolFeesOwed1, protocolFeeDelta)
	}

	delta := newBalanceDelta()
	amountInTotal := new(big.Int).Sub(params.AmountSpecified, amountRemaining)
	if exactIn {
		if zeroForOne {
			delta.Amount0, delta.Amount1 = amountInTotal, amountCalculated
		} else {
			delta.Amount1, delta.Amount0 = amountInTotal, amountCalculated
		}
	} else {
		if zeroForOne {
			delta.Amount0, delta.Amount1 = amountCalculated, amountInTotal
		} else {
			delta.Amount1, delta.Amount0 = amountCalculated, amountInTotal
		}
	}

	pool.Reserves0 = addSigned(pool.Reserves0, delta.Amount0)
	pool.Reserves1 = addSigned(pool.Reserves1, delta.Amount1)

	amountInU, overflow := uint256FromBig(amountInTotal)
	if overflow {
		return nil, ErrAmountOverflow
	}
	if zeroForOne {
		pool.SwapVolume0AllTime = new(UInt256).Add(pool.SwapVolume0AllTime, amountInU)
		pool.GeneratedSwapFee0 = new(UInt256).Add(pool.GeneratedSwapFee0, totalFeeAmount)
	} else {
		pool.SwapVolume1AllTime = new(UInt256).Add(pool.SwapVolume1AllTime, amountInU)
		pool.GeneratedSwapFee1 = new(UInt256).Add(pool.GeneratedSwapFee1, totalFeeAmount)
	}

	return &SwapResult{
		Delta:            delta,
		SqrtPriceX96:     sqrtPriceX96,
		Tick:             tick,
		Liquidity:        liquidity,
		ProtocolFeeDelta: protocolFeeDelta,
	}, nil
}

// addSigned adds a signed delta to an unsigned running total, clamping
// at zero: callers validate that a negative delta never exceeds the
// total it's applied to, but bookkeeping here stays defensive.
func addSigned(total *UInt256, delta *Int256) *UInt256 {
	if delta.Sign() >= 0 {
		d, overflow := uint256FromBig(delta)
		if overflow {
			return total
		}
		return new(UInt256).Add(total, d)
	}
	abs := new(big.Int).Neg(delta)
	d, overflow := uint256FromBig(abs)
	if overflow || d.Cmp(total) > 0 {
		return new(UInt256)
	}
	return new(UInt256).Sub(total, d)
}
