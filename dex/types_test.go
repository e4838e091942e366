// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import "testing"

func TestNewPoolIdCanonicalizesOrder(t *testing.T) {
	forward, err := NewPoolId(tokenX, tokenY, Fee3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	backward, err := NewPoolId(tokenY, tokenX, Fee3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if forward != backward {
		t.Fatalf("NewPoolId must canonicalize token order regardless of argument order")
	}
	if forward.Token0 != tokenX {
		t.Fatalf("token0 should be the byte-lexicographically smaller address")
	}
}

func TestNewPoolIdRejectsIdenticalTokens(t *testing.T) {
	if _, err := NewPoolId(tokenX, tokenX, Fee3000); err != ErrDuplicatedTokens {
		t.Fatalf("expected ErrDuplicatedTokens, got %v", err)
	}
}

func TestPoolIdDistinctFeesHashDifferently(t *testing.T) {
	a, _ := NewPoolId(tokenX, tokenY, Fee500)
	b, _ := NewPoolId(tokenX, tokenY, Fee3000)
	if a.ID() == b.ID() {
		t.Fatalf("two pools over the same tokens but different fee tiers must hash to distinct ids")
	}
}

func TestTickSpacingForFeeUnsupportedTier(t *testing.T) {
	if _, ok := TickSpacingForFee(12345); ok {
		t.Fatalf("an unsupported fee tier must report ok=false")
	}
}

func TestPositionKeyIDDistinguishesRanges(t *testing.T) {
	pool, _ := NewPoolId(tokenX, tokenY, Fee3000)
	k1 := PositionKey{Owner: alice, Pool: pool, TickLower: -60, TickUpper: 60}
	k2 := PositionKey{Owner: alice, Pool: pool, TickLower: -120, TickUpper: 120}
	if k1.ID() == k2.ID() {
		t.Fatalf("distinct tick ranges for the same owner/pool must hash to distinct ids")
	}
}

func TestPoolStateCloneIsIndependent(t *testing.T) {
	pool := NewPoolState(sqrtPrice1To1, 0, 60)
	clone := pool.Clone()
	clone.Liquidity.SetUint64(999)
	if pool.Liquidity.Sign() != 0 {
		t.Fatalf("mutating a clone's liquidity must not affect the original")
	}
}
