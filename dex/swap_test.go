// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestComputeSwapStepExactInOneForZeroCapPartial(t *testing.T) {
	priceCurrent := sqrtPrice1To1
	priceTarget := sqrtPrice121To100
	liquidity := oneEther
	amountIn := big.NewInt(1_000_000)

	step, err := ComputeSwapStep(priceCurrent, priceTarget, liquidity, amountIn, 600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.SqrtPriceNextX96.Cmp(priceTarget) == 0 {
		t.Fatalf("a tiny amountIn relative to the price gap should not reach the target")
	}
	spent := new(big.Int).Add(step.AmountIn.ToBig(), step.FeeAmount.ToBig())
	if spent.Cmp(amountIn) > 0 {
		t.Fatalf("amountIn+fee must never exceed the budget: spent %s > %s", spent, amountIn)
	}
}

func TestComputeSwapStepExactInReachesTargetWhenBudgetLarge(t *testing.T) {
	priceCurrent := sqrtPrice1To1
	priceTarget := sqrtPrice121To100
	liquidity := oneEther
	amountIn := mustUint256FromDecimal("100000000000000000000").ToBig() // 100 ether, far more than needed

	step, err := ComputeSwapStep(priceCurrent, priceTarget, liquidity, amountIn, 600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.SqrtPriceNextX96.Cmp(priceTarget) != 0 {
		t.Fatalf("a large budget should drive the price all the way to target")
	}
}

func TestComputeSwapStepExactOutCapPartial(t *testing.T) {
	priceCurrent := sqrtPrice121To100
	priceTarget := sqrtPrice1To1
	liquidity := oneEther
	amountOut := new(big.Int).Neg(big.NewInt(1000))

	step, err := ComputeSwapStep(priceCurrent, priceTarget, liquidity, amountOut, 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.AmountOut.Cmp(uint256.NewInt(1000)) > 0 {
		t.Fatalf("exact-output amountOut must not exceed the requested magnitude: got %s", step.AmountOut)
	}
}

func TestComputeSwapStepZeroFeeChargesNothing(t *testing.T) {
	step, err := ComputeSwapStep(sqrtPrice1To1, sqrtPrice121To100, oneEther, big.NewInt(1000), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.FeeAmount.IsZero() {
		t.Fatalf("a zero fee tier must charge no fee, got %s", step.FeeAmount)
	}
}

func newTestPool(t *testing.T, liquidity *UInt256, fee uint32) (*PoolState, *tickTable) {
	t.Helper()
	spacing, ok := TickSpacingForFee(fee)
	if !ok {
		t.Fatalf("unsupported fee tier %d", fee)
	}
	pool := NewPoolState(sqrtPrice1To1, 0, spacing)
	pool.Liquidity = new(UInt256).Set(liquidity)
	ticks := newTickTable()

	lower, upper := int32(-887220), int32(887220)
	if _, err := ticks.Update(lower, spacing, liquidity.ToBig(), false, pool.FeeGrowthGlobal0X128, pool.FeeGrowthGlobal1X128, pool.Tick, pool.MaxLiquidityPerTick); err != nil {
		t.Fatalf("seeding lower tick: %v", err)
	}
	if _, err := ticks.Update(upper, spacing, liquidity.ToBig(), true, pool.FeeGrowthGlobal0X128, pool.FeeGrowthGlobal1X128, pool.Tick, pool.MaxLiquidityPerTick); err != nil {
		t.Fatalf("seeding upper tick: %v", err)
	}
	return pool, ticks
}

func TestExecuteSwapExactInZeroForOneMovesPriceDown(t *testing.T) {
	pool, ticks := newTestPool(t, oneEther, Fee3000)
	startPrice := new(UInt256).Set(pool.SqrtPriceX96)

	result, err := ExecuteSwap(pool, ticks, SwapParams{
		PoolID:            PoolId{Fee: Fee3000},
		ZeroForOne:        true,
		AmountSpecified:   big.NewInt(1_000_000),
		SqrtPriceLimitX96: new(UInt256).AddUint64(MinSqrtRatio, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SqrtPriceX96.Cmp(startPrice) >= 0 {
		t.Fatalf("selling token0 must decrease the price")
	}
	if result.Delta.Amount0.Sign() <= 0 {
		t.Fatalf("zeroForOne exact-input must owe a positive amount of token0, got %s", result.Delta.Amount0)
	}
	if result.Delta.Amount1.Sign() >= 0 {
		t.Fatalf("zeroForOne exact-input must return a negative amount of token1, got %s", result.Delta.Amount1)
	}
	if pool.GeneratedSwapFee0.IsZero() {
		t.Fatalf("a nonzero-fee swap must accrue a nonzero fee")
	}
}

func TestExecuteSwapExactOutOneForZero(t *testing.T) {
	pool, ticks := newTestPool(t, oneEther, Fee3000)

	result, err := ExecuteSwap(pool, ticks, SwapParams{
		PoolID:            PoolId{Fee: Fee3000},
		ZeroForOne:        false,
		AmountSpecified:   new(big.Int).Neg(big.NewInt(1_000_000)),
		SqrtPriceLimitX96: new(UInt256).Sub(MaxSqrtRatio, uint256.NewInt(1)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Delta.Amount0.Sign() >= 0 {
		t.Fatalf("oneForZero exact-output must return a negative amount of token0, got %s", result.Delta.Amount0)
	}
	if result.Delta.Amount1.Sign() <= 0 {
		t.Fatalf("oneForZero exact-output must owe a positive amount of token1, got %s", result.Delta.Amount1)
	}
	if absBigInt(result.Delta.Amount0).Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("exact-output must deliver exactly the requested amount, got %s", result.Delta.Amount0)
	}
}

func TestExecuteSwapRejectsPriceLimitOnWrongSide(t *testing.T) {
	pool, ticks := newTestPool(t, oneEther, Fee3000)
	_, err := ExecuteSwap(pool, ticks, SwapParams{
		PoolID:            PoolId{Fee: Fee3000},
		ZeroForOne:        true,
		AmountSpecified:   big.NewInt(1000),
		SqrtPriceLimitX96: new(UInt256).AddUint64(pool.SqrtPriceX96, 1), // above current price while selling token0
	})
	if err != ErrPriceLimitOutOfBounds {
		t.Fatalf("expected ErrPriceLimitOutOfBounds, got %v", err)
	}
}

func TestExecuteSwapEmptyPoolFailsWithNoInRangeLiquidity(t *testing.T) {
	// With no initialized ticks and no in-range liquidity, the swap loop
	// finds no tick to cross before the representable grid's edge, so it
	// fails with ErrNoInRangeLiquidity and leaves the pool untouched
	// rather than looping.
	spacing, _ := TickSpacingForFee(Fee3000)
	pool := NewPoolState(sqrtPrice1To1, 0, spacing)
	ticks := newTickTable()
	limit := new(UInt256).AddUint64(MinSqrtRatio, 1)

	result, err := ExecuteSwap(pool, ticks, SwapParams{
		PoolID:            PoolId{Fee: Fee3000},
		ZeroForOne:        true,
		AmountSpecified:   big.NewInt(1000),
		SqrtPriceLimitX96: limit,
	})
	if err != ErrNoInRangeLiquidity {
		t.Fatalf("expected ErrNoInRangeLiquidity, got %v", err)
	}
	if result != nil {
		t.Fatalf("a failed swap should return no result, got %+v", result)
	}
	if pool.SqrtPriceX96.Cmp(sqrtPrice1To1) != 0 || pool.Tick != 0 {
		t.Fatalf("a failed swap should leave the pool untouched: price %s, tick %d", pool.SqrtPriceX96, pool.Tick)
	}
}

func TestQuoteSingleDoesNotMutatePool(t *testing.T) {
	pool, ticks := newTestPool(t, oneEther, Fee3000)
	before := pool.Clone()

	_, err := QuoteSingle(pool, ticks, SwapParams{
		PoolID:            PoolId{Fee: Fee3000},
		ZeroForOne:        true,
		AmountSpecified:   big.NewInt(1_000_000),
		SqrtPriceLimitX96: new(UInt256).AddUint64(MinSqrtRatio, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.SqrtPriceX96.Cmp(before.SqrtPriceX96) != 0 || pool.Tick != before.Tick || pool.Liquidity.Cmp(before.Liquidity) != 0 {
		t.Fatalf("QuoteSingle must not mutate the live pool state")
	}
}
