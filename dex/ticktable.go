// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import "math/big"

// tickTable is the per-pool index of initialized ticks: a sparse map
// from tick index to its accrued bookkeeping, plus the bitmap used to
// jump between initialized ticks without scanning every integer tick.
type tickTable struct {
	ticks  map[int32]*TickInfo
	bitmap *tickBitmap
}

func newTickTable() *tickTable {
	return &tickTable{
		ticks:  make(map[int32]*TickInfo),
		bitmap: newTickBitmap(),
	}
}

func (tt *tickTable) clone() *tickTable {
	c := &tickTable{
		ticks:  make(map[int32]*TickInfo, len(tt.ticks)),
		bitmap: newTickBitmap(),
	}
	for tick, info := range tt.ticks {
		cp := *info
		cp.LiquidityGross = new(UInt256).Set(info.LiquidityGross)
		cp.LiquidityNet = new(big.Int).Set(info.LiquidityNet)
		cp.FeeGrowthOutside0X128 = new(UInt256).Set(info.FeeGrowthOutside0X128)
		cp.FeeGrowthOutside1X128 = new(UInt256).Set(info.FeeGrowthOutside1X128)
		c.ticks[tick] = &cp
	}
	for wp, word := range tt.bitmap.words {
		c.bitmap.words[wp] = word
	}
	return c
}

// Update applies a liquidity delta to tick's bookkeeping, initializing
// the tick if it is new and flipping it out of the bitmap (and out of
// the table) if the update drains its liquidity_gross back to zero. The
// upper flag negates the sign convention for the upper bound of a
// range: liquidity added to the upper tick reduces liquidity available
// when crossing rightward.
func (tt *tickTable) Update(tick int32, tickSpacing int32, liquidityDelta *Int256, upper bool, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *UInt256, currentTick int32, maxLiquidityPerTick *UInt256) (flipped bool, err error) {
	info, exists := tt.ticks[tick]
	if !exists {
		info = newTickInfo()
		if tick <= currentTick {
			info.FeeGrowthOutside0X128 = new(UInt256).Set(feeGrowthGlobal0X128)
			info.FeeGrowthOutside1X128 = new(UInt256).Set(feeGrowthGlobal1X128)
		}
	}

	liquidityGrossBefore := info.LiquidityGross
	liquidityGrossAfter, err := AddDelta(liquidityGrossBefore, liquidityDelta)
	if err != nil {
		return false, err
	}
	if liquidityGrossAfter.Cmp(maxLiquidityPerTick) > 0 {
		return false, ErrLiquidityOverflow
	}

	flipped = liquidityGrossBefore.IsZero() != liquidityGrossAfter.IsZero()
	info.LiquidityGross = liquidityGrossAfter

	net := new(big.Int).Set(info.LiquidityNet)
	if upper {
		net.Sub(net, liquidityDelta)
	} else {
		net.Add(net, liquidityDelta)
	}
	info.LiquidityNet = net

	if !exists {
		tt.ticks[tick] = info
	}
	if flipped {
		tt.bitmap.flip(tick, tickSpacing)
	}
	if info.LiquidityGross.IsZero() && exists {
		delete(tt.ticks, tick)
	}
	return flipped, nil
}

// Cross flips the running fee-growth-outside accumulators for tick as
// the pool's price moves through it, and returns the signed liquidity
// delta to apply to the pool's in-range liquidity.
func (tt *tickTable) Cross(tick int32, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *UInt256) (*Int256, error) {
	info, ok := tt.ticks[tick]
	if !ok {
		return new(big.Int), nil
	}
	info.FeeGrowthOutside0X128 = new(UInt256).Sub(feeGrowthGlobal0X128, info.FeeGrowthOutside0X128)
	info.FeeGrowthOutside1X128 = new(UInt256).Sub(feeGrowthGlobal1X128, info.FeeGrowthOutside1X128)
	return info.LiquidityNet, nil
}

// GetFeeGrowthInside computes the fee growth accrued strictly inside
// [tickLower, tickUpper] given the pool's current tick and global
// accumulators, by subtracting the growth below and above the range
// from the global total.
func (tt *tickTable) GetFeeGrowthInside(tickLower, tickUpper, currentTick int32, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *UInt256) (*UInt256, *UInt256) {
	lower := tt.ticks[tickLower]
	upper := tt.ticks[tickUpper]

	var feeGrowthBelow0, feeGrowthBelow1 *UInt256
	if lower == nil {
		feeGrowthBelow0, feeGrowthBelow1 = new(UInt256), new(UInt256)
	} else if currentTick >= tickLower {
		feeGrowthBelow0 = new(UInt256).Set(lower.FeeGrowthOutside0X128)
		feeGrowthBelow1 = new(UInt256).Set(lower.FeeGrowthOutside1X128)
	} else {
		feeGrowthBelow0 = new(UInt256).Sub(feeGrowthGlobal0X128, lower.FeeGrowthOutside0X128)
		feeGrowthBelow1 = new(UInt256).Sub(feeGrowthGlobal1X128, lower.FeeGrowthOutside1X128)
	}

	var feeGrowthAbove0, feeGrowthAbove1 *UInt256
	if upper == nil {
		feeGrowthAbove0, feeGrowthAbove1 = new(UInt256), new(UInt256)
	} else if currentTick < tickUpper {
		feeGrowthAbove0 = new(UInt256).Set(upper.FeeGrowthOutside0X128)
		feeGrowthAbove1 = new(UInt256).Set(upper.FeeGrowthOutside1X128)
	} else {
		feeGrowthAbove0 = new(UInt256).Sub(feeGrowthGlobal0X128, upper.FeeGrowthOutside0X128)
		feeGrowthAbove1 = new(UInt256).Sub(feeGrowthGlobal1X128, upper.FeeGrowthOutside1X128)
	}

	inside0 := new(UInt256).Sub(feeGrowthGlobal0X128, feeGrowthBelow0)
	inside0.Sub(inside0, feeGrowthAbove0)
	inside1 := new(UInt256).Sub(feeGrowthGlobal1X128, feeGrowthBelow1)
	inside1.Sub(inside1, feeGrowthAbove1)
	return inside0, inside1
}

// NextInitializedTick delegates to the bitmap, searching for the next
// initialized tick starting from tick in the given direction.
func (tt *tickTable) NextInitializedTick(tick, tickSpacing int32, lte bool) (int32, bool) {
	return tt.bitmap.nextInitialized(tick, tickSpacing, lte)
}

// SetTick installs info at tick directly, flipping it into the bitmap.
// Used to reconstruct a table from a previously captured ActiveTicks
// listing rather than from a sequence of liquidity deltas.
func (tt *tickTable) SetTick(tick int32, tickSpacing int32, info *TickInfo) {
	tt.ticks[tick] = info
	tt.bitmap.flip(tick, tickSpacing)
}

// IsInitialized reports whether tick carries a TickInfo entry.
func (tt *tickTable) IsInitialized(tick, tickSpacing int32) bool {
	return tt.bitmap.isInitialized(tick, tickSpacing)
}

// Get returns the TickInfo for tick, or nil if uninitialized.
func (tt *tickTable) Get(tick int32) *TickInfo {
	return tt.ticks[tick]
}

// ActiveTick pairs an initialized tick index with its bookkeeping.
type ActiveTick struct {
	Tick int32
	Info *TickInfo
}

// ActiveTicks returns every initialized tick in this table, in no
// particular order; callers that need a stable order sort by Tick.
func (tt *tickTable) ActiveTicks() []ActiveTick {
	out := make([]ActiveTick, 0, len(tt.ticks))
	for tick, info := range tt.ticks {
		out = append(out, ActiveTick{Tick: tick, Info: info})
	}
	return out
}
