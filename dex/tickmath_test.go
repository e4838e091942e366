// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"testing"

	"github.com/holiman/uint256"
)

func mustDecimal(t *testing.T, s string) *UInt256 {
	t.Helper()
	v := mustUint256FromDecimal(s)
	return v
}

func TestGetSqrtRatioAtTickZero(t *testing.T) {
	got, err := GetSqrtRatioAtTick(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := mustDecimal(t, "79228162514264337593543950336") // 2^96
	if got.Cmp(want) != 0 {
		t.Fatalf("GetSqrtRatioAtTick(0) = %s, want %s", got, want)
	}
}

func TestGetSqrtRatioAtTickBounds(t *testing.T) {
	lo, err := GetSqrtRatioAtTick(MinTick)
	if err != nil {
		t.Fatalf("unexpected error at MinTick: %v", err)
	}
	if lo.Cmp(MinSqrtRatio) != 0 {
		t.Fatalf("GetSqrtRatioAtTick(MinTick) = %s, want MinSqrtRatio %s", lo, MinSqrtRatio)
	}

	hi, err := GetSqrtRatioAtTick(MaxTick)
	if err != nil {
		t.Fatalf("unexpected error at MaxTick: %v", err)
	}
	if hi.Cmp(MaxSqrtRatio) != 0 {
		t.Fatalf("GetSqrtRatioAtTick(MaxTick) = %s, want MaxSqrtRatio %s", hi, MaxSqrtRatio)
	}
}

func TestGetSqrtRatioAtTickOutOfRange(t *testing.T) {
	if _, err := GetSqrtRatioAtTick(MaxTick + 1); err != ErrInvalidTick {
		t.Fatalf("expected ErrInvalidTick, got %v", err)
	}
	if _, err := GetSqrtRatioAtTick(MinTick - 1); err != ErrInvalidTick {
		t.Fatalf("expected ErrInvalidTick, got %v", err)
	}
}

func TestGetTickAtSqrtRatioRoundTrip(t *testing.T) {
	for _, tick := range []int32{MinTick, -887271, -10000, -1, 0, 1, 10000, 887271, MaxTick - 1} {
		ratio, err := GetSqrtRatioAtTick(tick)
		if err != nil {
			t.Fatalf("GetSqrtRatioAtTick(%d): %v", tick, err)
		}
		if ratio.Cmp(MaxSqrtRatio) >= 0 {
			continue
		}
		got, err := GetTickAtSqrtRatio(ratio)
		if err != nil {
			t.Fatalf("GetTickAtSqrtRatio round-trip for tick %d: %v", tick, err)
		}
		if got != tick {
			t.Fatalf("round-trip tick mismatch: started at %d, got %d", tick, got)
		}
	}
}

func TestGetTickAtSqrtRatio121Over100(t *testing.T) {
	// sqrt(1.21) * 2^96, the classic Uniswap v3 fixture: price 1.21 sits
	// between ticks 1906 and 1907 under the 1.0001^tick grid
	// (ln 1.21 / ln 1.0001 ~= 1906.3), so the floor tick is 1906.
	ratio := mustDecimal(t, "87150978765690771352898345369")
	tick, err := GetTickAtSqrtRatio(ratio)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick != 1906 {
		t.Fatalf("GetTickAtSqrtRatio(sqrt(1.21)) = %d, want 1906", tick)
	}
}

func TestGetTickAtSqrtRatioOutOfBounds(t *testing.T) {
	if _, err := GetTickAtSqrtRatio(new(UInt256).Sub(MinSqrtRatio, uint256.NewInt(1))); err != ErrPriceLimitOutOfBounds {
		t.Fatalf("expected ErrPriceLimitOutOfBounds below MinSqrtRatio, got %v", err)
	}
	if _, err := GetTickAtSqrtRatio(MaxSqrtRatio); err != ErrPriceLimitOutOfBounds {
		t.Fatalf("expected ErrPriceLimitOutOfBounds at MaxSqrtRatio, got %v", err)
	}
}

func TestTickSpacingToMaxLiquidityPerTick(t *testing.T) {
	max1 := TickSpacingToMaxLiquidityPerTick(1)
	max60 := TickSpacingToMaxLiquidityPerTick(60)
	if max1.Cmp(max60) >= 0 {
		t.Fatalf("a finer tick spacing should permit less liquidity per tick than a coarser one")
	}
	if max1.IsZero() || max60.IsZero() {
		t.Fatalf("max liquidity per tick must be positive")
	}
}
