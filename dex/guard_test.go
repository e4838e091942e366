// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import "testing"

func TestPrincipalGuardAcquirePrincipalExclusive(t *testing.T) {
	g := NewPrincipalGuard()

	release, err := g.AcquirePrincipal(userA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.AcquirePrincipal(userA); err != ErrLockedPrincipal {
		t.Fatalf("expected ErrLockedPrincipal while already held, got %v", err)
	}
	release()

	if _, err := g.AcquirePrincipal(userA); err != nil {
		t.Fatalf("releasing should free the principal up again, got %v", err)
	}
}

func TestPrincipalGuardReleaseIsIdempotent(t *testing.T) {
	g := NewPrincipalGuard()
	release, err := g.AcquirePrincipal(userA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	release()
	release() // must not panic or double-free another caller's lock

	if _, err := g.AcquirePrincipal(userA); err != nil {
		t.Fatalf("unexpected error re-acquiring after double release: %v", err)
	}
}

func TestPrincipalGuardAcquireSwapDisjointPoolsConcurrent(t *testing.T) {
	g := NewPrincipalGuard()
	poolX := PoolId{Fee: Fee500}
	poolY := PoolId{Fee: Fee3000}

	releaseA, err := g.AcquireSwap(tokenA, []PoolId{poolX})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer releaseA()

	releaseB, err := g.AcquireSwap(userA, []PoolId{poolY})
	if err != nil {
		t.Fatalf("a swap over a disjoint pool set by a different caller should be allowed concurrently, got %v", err)
	}
	releaseB()
}

func TestPrincipalGuardAcquireSwapOverlappingPoolBlocks(t *testing.T) {
	g := NewPrincipalGuard()
	pool := PoolId{Fee: Fee500}

	release, err := g.AcquireSwap(tokenA, []PoolId{pool})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	if _, err := g.AcquireSwap(userA, []PoolId{pool}); err != ErrLockedPrincipal {
		t.Fatalf("a swap touching a pool already in flight must be rejected, got %v", err)
	}
}

func TestPrincipalGuardAcquireSwapSamePrincipalBlocked(t *testing.T) {
	g := NewPrincipalGuard()
	pool := PoolId{Fee: Fee500}

	release, err := g.AcquirePrincipal(tokenA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	if _, err := g.AcquireSwap(tokenA, []PoolId{pool}); err != ErrLockedPrincipal {
		t.Fatalf("a caller with an operation already in flight cannot start a swap, got %v", err)
	}
}

func TestPrincipalGuardAcquireSwapSamePrincipalDisjointPoolsConcurrent(t *testing.T) {
	g := NewPrincipalGuard()
	poolX := PoolId{Fee: Fee500}
	poolY := PoolId{Fee: Fee3000}

	release1, err := g.AcquireSwap(tokenA, []PoolId{poolX})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release1()

	release2, err := g.AcquireSwap(tokenA, []PoolId{poolY})
	if err != nil {
		t.Fatalf("the same principal should be able to run two swaps concurrently over disjoint pools, got %v", err)
	}
	defer release2()

	if _, err := g.AcquirePrincipal(tokenA); err != ErrLockedPrincipal {
		t.Fatalf("a non-swap operation must still wait for every in-flight swap from the same principal, got %v", err)
	}
}

func TestPrincipalGuardAcquireSwapSamePrincipalOverlappingPoolBlocked(t *testing.T) {
	g := NewPrincipalGuard()
	pool := PoolId{Fee: Fee500}

	release, err := g.AcquireSwap(tokenA, []PoolId{pool})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	if _, err := g.AcquireSwap(tokenA, []PoolId{pool}); err != ErrLockedPrincipal {
		t.Fatalf("two swaps from the same principal over the same pool must still serialize, got %v", err)
	}
}
