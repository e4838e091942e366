// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Tick bounds. Sqrt-price bounds are the images of these ticks under
// GetSqrtRatioAtTick, reproduced here as literal constants (rather than
// computed) so MinSqrtRatio/MaxSqrtRatio are available before the first
// call into the bit-shift chain below.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

var (
	MinSqrtRatio = uint256.NewInt(4295128739)
	MaxSqrtRatio = mustUint256FromDecimal("1461446703485210103287273052203988822378723970342")
)

func mustUint256FromDecimal(s string) *UInt256 {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("dex: invalid decimal constant " + s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		panic("dex: constant does not fit in 256 bits: " + s)
	}
	return v
}

// bitRatioConstants are the 20 precomputed Q128.128 magic constants for
// 1/sqrt(1.0001^(2^i)), i = 0..19, used to build 1/sqrt(1.0001^|tick|)
// as a product chain keyed off the bits of |tick| (inverted afterwards
// for positive ticks). These are the same
// constants every concentrated-liquidity implementation uses so that
// tick<->price agrees bit-for-bit across languages.
var bitRatioConstants = [20]string{
	"0xfffcb933bd6fad37aa2d162d1a594001",
	"0xfff97272373d413259a46990580e213a",
	"0xfff2e50f5f656932ef12357cf3c7fdcc",
	"0xffe5caca7e10e4e61c3624eaa0941cd0",
	"0xffcb9843d60f6159c9db58835c926644",
	"0xff973b41fa98c081472e6896dfb254c0",
	"0xff2ea16466c96a3843ec78b326b52861",
	"0xfe5dee046a99a2a811c461f1969c3053",
	"0xfcbe86c7900a88aedcffc83b479aa3a4",
	"0xf987a7253ac413176f2b074cf7815e54",
	"0xf3392b0822b70005940c7a398e4b70f3",
	"0xe7159475a2c29b7443b29c7fa6e889d9",
	"0xd097f3bdfd2022b8845ad8f792aa5825",
	"0xa9f746462d870fdf8a65dc1f90e061e5",
	"0x70d869a156d2a1b890bb3df62baf32f7",
	"0x31be135f97d08fd981231505542fcfa6",
	"0x9aa508b5b7a84e1c677de54f3e99bc9",
	"0x5d6af8dedb81196699c329225ee604",
	"0x2216e584f5fa1ea926041bedfe98",
	"0x48a170391f7dc42444e8fa2",
}

var bitRatios [20]*UInt256

func init() {
	for i, s := range bitRatioConstants {
		b, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			panic("dex: bad bit-ratio constant")
		}
		v, overflow := uint256.FromBig(b)
		if overflow {
			panic("dex: bit-ratio constant overflow")
		}
		bitRatios[i] = v
	}
}

var maxUint256 = new(UInt256).Not(new(UInt256))

// GetSqrtRatioAtTick computes sqrt(1.0001^tick) * 2^96, the Q64.96
// sqrt-price at a tick index. Fails with ErrInvalidTick outside
// [MinTick, MaxTick].
func GetSqrtRatioAtTick(tick int32) (*UInt256, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrInvalidTick
	}

	absTick := tick
	if tick < 0 {
		absTick = -tick
	}

	var ratio *UInt256
	if absTick&0x1 != 0 {
		ratio = mustUint256FromHex("0xfffcb933bd6fad37aa2d162d1a594001")
	} else {
		ratio = mustUint256FromHex("0x100000000000000000000000000000000")
	}

	for i := 1; i < 20; i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio = mulShift(ratio, bitRatios[i])
		}
	}

	if tick > 0 {
		ratio = new(UInt256).Div(maxUint256, ratio)
	}

	sqrtPriceX96 := new(UInt256).Rsh(ratio, 32)
	if !new(UInt256).And(ratio, uint256.NewInt(0xFFFFFFFF)).IsZero() {
		sqrtPriceX96 = new(UInt256).AddUint64(sqrtPriceX96, 1)
	}
	return sqrtPriceX96, nil
}

func mulShift(a, b *UInt256) *UInt256 {
	result, overflow := new(UInt256).MulDivOverflow(a, b, new(UInt256).Lsh(uint256.NewInt(1), 128))
	if overflow {
		// The product chain is bounded by construction (|tick| <=
		// MaxTick); this would indicate a corrupted constant table.
		panic("dex: tick-math constant product overflowed 256 bits")
	}
	return result
}

func mustUint256FromHex(s string) *UInt256 {
	b, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		panic("dex: invalid hex constant " + s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		panic("dex: hex constant overflow: " + s)
	}
	return v
}

// GetTickAtSqrtRatio returns the largest tick whose sqrt-price is <= the
// given sqrt-price, by binary search over GetSqrtRatioAtTick. Fails with
// ErrPriceLimitOutOfBounds outside [MinSqrtRatio, MaxSqrtRatio).
func GetTickAtSqrtRatio(sqrtPriceX96 *UInt256) (int32, error) {
	if sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, ErrPriceLimitOutOfBounds
	}

	lo, hi := MinTick, MaxTick
	for lo < hi {
		mid := lo + (hi-lo)/2
		// Bias the midpoint down on ties so the loop converges to the
		// largest tick with ratio <= target, matching integer
		// division's floor behavior for negative ranges.
		if mid < lo {
			mid = lo
		}
		ratio, err := GetSqrtRatioAtTick(mid)
		if err != nil {
			return 0, err
		}
		switch ratio.Cmp(sqrtPriceX96) {
		case 0:
			return mid, nil
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}

	ratio, err := GetSqrtRatioAtTick(lo)
	if err != nil {
		return 0, err
	}
	if ratio.Cmp(sqrtPriceX96) > 0 {
		lo--
	}
	return lo, nil
}

// TickSpacingToMaxLiquidityPerTick returns the maximum liquidity_gross a
// single tick may carry for a given spacing, derived by spreading
// MaxUint128 evenly across every initializable tick.
func TickSpacingToMaxLiquidityPerTick(tickSpacing int32) *UInt256 {
	minTick := (MinTick / tickSpacing) * tickSpacing
	maxTick := (MaxTick / tickSpacing) * tickSpacing
	numTicks := (maxTick-minTick)/tickSpacing + 1

	maxUint128 := new(UInt256).Sub(new(UInt256).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
	return new(UInt256).Div(maxUint128, uint256.NewInt(uint64(numTicks)))
}
