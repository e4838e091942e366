// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import "math/big"

// checkTicks validates a position's tick range: both bounds must be
// aligned to the pool's spacing, within [MinTick, MaxTick], and lower
// strictly below upper.
func checkTicks(tickLower, tickUpper, tickSpacing int32) error {
	if tickLower >= tickUpper {
		return ErrInvalidTick
	}
	if tickLower < MinTick || tickUpper > MaxTick {
		return ErrInvalidTick
	}
	if tickLower%tickSpacing != 0 || tickUpper%tickSpacing != 0 {
		return ErrTickNotAlignedWithSpacing
	}
	return nil
}

// modifyPosition applies a signed liquidity delta to the position
// identified by key, updating both tick boundaries' bookkeeping, the
// pool's in-range liquidity (if the position's range currently
// straddles the pool's tick), and the position's accrued fees. It
// returns the signed token0/token1 amounts the caller owes the pool
// (positive) or is owed by it (negative).
func modifyPosition(pool *PoolState, ticks *tickTable, positions *positionTable, key PositionKey, liquidityDelta *Int256) (BalanceDelta, error) {
	if err := checkTicks(key.TickLower, key.TickUpper, pool.TickSpacing); err != nil {
		return BalanceDelta{}, err
	}

	if liquidityDelta.Sign() != 0 {
		_, err := ticks.Update(key.TickLower, pool.TickSpacing, liquidityDelta, false, pool.FeeGrowthGlobal0X128, pool.FeeGrowthGlobal1X128, pool.Tick, pool.MaxLiquidityPerTick)
		if err != nil {
			return BalanceDelta{}, err
		}
		if _, err := ticks.Update(key.TickUpper, pool.TickSpacing, liquidityDelta, true, pool.FeeGrowthGlobal0X128, pool.FeeGrowthGlobal1X128, pool.Tick, pool.MaxLiquidityPerTick); err != nil {
			return BalanceDelta{}, err
		}
	}

	feeGrowthInside0, feeGrowthInside1 := ticks.GetFeeGrowthInside(key.TickLower, key.TickUpper, pool.Tick, pool.FeeGrowthGlobal0X128, pool.FeeGrowthGlobal1X128)

	position := positions.GetOrCreate(key)
	if err := accrueFees(position, feeGrowthInside0, feeGrowthInside1); err != nil {
		return BalanceDelta{}, err
	}

	if liquidityDelta.Sign() != 0 {
		newLiquidity, err := AddDelta(position.Liquidity, liquidityDelta)
		if err != nil {
			return BalanceDelta{}, err
		}
		position.Liquidity = newLiquidity
	}
	positions.Set(position)

	delta := newBalanceDelta()
	sqrtLower, err := GetSqrtRatioAtTick(key.TickLower)
	if err != nil {
		return BalanceDelta{}, err
	}
	sqrtUpper, err := GetSqrtRatioAtTick(key.TickUpper)
	if err != nil {
		return BalanceDelta{}, err
	}

	switch {
	case pool.Tick < key.TickLower:
		amt0, err := GetAmount0DeltaSigned(sqrtLower, sqrtUpper, liquidityDelta)
		if err != nil {
			return BalanceDelta{}, err
		}
		delta.Amount0 = amt0
	case pool.Tick < key.TickUpper:
		amt0, err := GetAmount0DeltaSigned(pool.SqrtPriceX96, sqrtUpper, liquidityDelta)
		if err != nil {
			return BalanceDelta{}, err
		}
		amt1, err := GetAmount1DeltaSigned(sqrtLower, pool.SqrtPriceX96, liquidityDelta)
		if err != nil {
			return BalanceDelta{}, err
		}
		delta.Amount0, delta.Amount1 = amt0, amt1

		newLiquidity, err := AddDelta(pool.Liquidity, liquidityDelta)
		if err != nil {
			return BalanceDelta{}, err
		}
		pool.Liquidity = newLiquidity
	default:
		amt1, err := GetAmount1DeltaSigned(sqrtLower, sqrtUpper, liquidityDelta)
		if err != nil {
			return BalanceDelta{}, err
		}
		delta.Amount1 = amt1
	}

	return delta, nil
}

// accrueFees folds newly earned fees into position's owed balances,
// given the fee growth accrued inside its range since the last touch.
func accrueFees(position *Position, feeGrowthInside0, feeGrowthInside1 *UInt256) error {
	if position.Liquidity.Sign() > 0 {
		growth0 := new(UInt256).Sub(feeGrowthInside0, position.FeeGrowthInside0LastX128)
		owed0, err := MulDiv(growth0, position.Liquidity, Q128)
		if err != nil {
			return err
		}
		position.FeesOwed0 = new(UInt256).Add(position.FeesOwed0, owed0)

		growth1 := new(UInt256).Sub(feeGrowthInside1, position.FeeGrowthInside1LastX128)
		owed1, err := MulDiv(growth1, position.Liquidity, Q128)
		if err != nil {
			return err
		}
		position.FeesOwed1 = new(UInt256).Add(position.FeesOwed1, owed1)
	}
	position.FeeGrowthInside0LastX128 = new(UInt256).Set(feeGrowthInside0)
	position.FeeGrowthInside1LastX128 = new(UInt256).Set(feeGrowthInside1)
	return nil
}

// MintParams describes a request to open a position by specifying desired token amounts; the liquidity obtainable from them
// at the pool's current price is computed internally.
type MintParams struct {
	Owner         TokenID
	PoolID        PoolId
	TickLower     int32
	TickUpper     int32
	Amount0Desired *UInt256
	Amount1Desired *UInt256
	Amount0Min     *UInt256
	Amount1Min     *UInt256
}

// MintResult reports the liquidity minted and the token amounts the
// caller actually owes the pool.
type MintResult struct {
	Liquidity *UInt256
	Delta     BalanceDelta
}

// Mint opens a position, sizing its liquidity from the caller's desired
// amounts. It fails with ErrPositionAlreadyExists if the position
// already holds liquidity (a zero-liquidity entry is reused;
// IncreaseLiquidity adds to an existing position), and with
// ErrSlippageFailed if either amount actually required is below the
// caller's minimum.
func Mint(pool *PoolState, ticks *tickTable, positions *positionTable, params MintParams) (*MintResult, error) {
	if err := checkTicks(params.TickLower, params.TickUpper, pool.TickSpacing); err != nil {
		return nil, err
	}

	sqrtLower, err := GetSqrtRatioAtTick(params.TickLower)
	if err != nil {
		return nil, err
	}
	sqrtUpper, err := GetSqrtRatioAtTick(params.TickUpper)
	if err != nil {
		return nil, err
	}

	liquidity, err := GetLiquidityForAmounts(pool.SqrtPriceX96, sqrtLower, sqrtUpper, params.Amount0Desired, params.Amount1Desired)
	if err != nil {
		return nil, err
	}
	if liquidity.IsZero() {
		return nil, ErrInvalidLiquidity
	}

	key := PositionKey{Owner: params.Owner, Pool: params.PoolID, TickLower: params.TickLower, TickUpper: params.TickUpper}
	if existing, ok := positions.Get(key); ok && existing.Liquidity.Sign() > 0 {
		return nil, ErrPositionAlreadyExists
	}
	delta, err := modifyPosition(pool, ticks, positions, key, liquidity.ToBig())
	if err != nil {
		return nil, err
	}

	if delta.Amount0.Cmp(params.Amount0Min.ToBig()) < 0 || delta.Amount1.Cmp(params.Amount1Min.ToBig()) < 0 {
		return nil, ErrSlippageFailed
	}

	return &MintResult{Liquidity: liquidity, Delta: delta}, nil
}

// IncreaseLiquidity adds liquidityDelta to an existing position.
func IncreaseLiquidity(pool *PoolState, ticks *tickTable, positions *positionTable, key PositionKey, liquidityDelta *UInt256, amount0Min, amount1Min *UInt256) (BalanceDelta, error) {
	if _, ok := positions.Get(key); !ok {
		return BalanceDelta{}, ErrPositionNotFound
	}
	delta, err := modifyPosition(pool, ticks, positions, key, liquidityDelta.ToBig())
	if err != nil {
		return BalanceDelta{}, err
	}
	if delta.Amount0.Cmp(amount0Min.ToBig()) < 0 || delta.Amount1.Cmp(amount1Min.ToBig()) < 0 {
		return BalanceDelta{}, ErrSlippageFailed
	}
	return delta, nil
}

// DecreaseLiquidity removes liquidityDelta from an existing position,
// crediting the position's owed balances with the withdrawn amounts
// rather than returning them directly, matching the lazy-settlement
// pattern throughout; the caller settles them out of the owed balances
// (State.DecreaseLiquidity moves them to the owner's internal balance
// and withdraws them).
func DecreaseLiquidity(pool *PoolState, ticks *tickTable, positions *positionTable, key PositionKey, liquidityDelta *UInt256, amount0Min, amount1Min *UInt256) (BalanceDelta, error) {
	position, ok := positions.Get(key)
	if !ok {
		return BalanceDelta{}, ErrPositionNotFound
	}
	if liquidityDelta.Cmp(position.Liquidity) > 0 {
		return BalanceDelta{}, ErrLiquidityUnderflow
	}

	negated := new(big.Int).Neg(liquidityDelta.ToBig())
	delta, err := modifyPosition(pool, ticks, positions, key, negated)
	if err != nil {
		return BalanceDelta{}, err
	}

	// delta is negative in both legs (pool pays out); owed balances are
	// unsigned, so fold in the absolute value.
	owed0, overflow := uint256FromBig(new(big.Int).Neg(delta.Amount0))
	if overflow {
		return BalanceDelta{}, ErrAmountOverflow
	}
	owed1, overflow := uint256FromBig(new(big.Int).Neg(delta.Amount1))
	if overflow {
		return BalanceDelta{}, ErrAmountOverflow
	}
	position.FeesOwed0 = new(UInt256).Add(position.FeesOwed0, owed0)
	position.FeesOwed1 = new(UInt256).Add(position.FeesOwed1, owed1)
	positions.Set(position)

	if owed0.Cmp(amount0Min) < 0 || owed1.Cmp(amount1Min) < 0 {
		return BalanceDelta{}, ErrSlippageFailed
	}
	return delta, nil
}

// CollectFees pays out up to (amount0Requested, amount1Requested) of a
// position's owed balances, capping at what is actually available, and
// leaves the remainder owed for a future call.
func CollectFees(positions *positionTable, key PositionKey, amount0Requested, amount1Requested *UInt256) (*UInt256, *UInt256, error) {
	position, ok := positions.Get(key)
	if !ok {
		return nil, nil, ErrPositionNotFound
	}
	if position.FeesOwed0.IsZero() && position.FeesOwed1.IsZero() {
		return nil, nil, ErrNoFeeToCollect
	}

	amount0 := amount0Requested
	if amount0.Cmp(position.FeesOwed0) > 0 {
		amount0 = position.FeesOwed0
	}
	amount1 := amount1Requested
	if amount1.Cmp(position.FeesOwed1) > 0 {
		amount1 = position.FeesOwed1
	}

	position.FeesOwed0 = new(UInt256).Sub(position.FeesOwed0, amount0)
	position.FeesOwed1 = new(UInt256).Sub(position.FeesOwed1, amount1)
	positions.Set(position)

	return amount0, amount1, nil
}

// Burn removes a fully-drained position from the table, failing with
// ErrPositionNotFound if it doesn't exist and leaving it untouched if
// it still carries liquidity or unclaimed fees.
func Burn(positions *positionTable, key PositionKey) error {
	position, ok := positions.Get(key)
	if !ok {
		return ErrPositionNotFound
	}
	if !position.IsEmpty() {
		return ErrInvalidLiquidity
	}
	positions.Delete(key)
	return nil
}
