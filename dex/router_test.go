// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"testing"

	"github.com/holiman/uint256"
)

// twoHopRoute builds X/Y and Y/Z pools, each seeded with a wide
// straddling liquidity range, for exercising multi-hop routing.
func twoHopRoute(t *testing.T) (poolXY, poolYZ RoutePool, path []PathKey) {
	t.Helper()
	pXY, tXY := newTestPool(t, oneEther, Fee3000)
	pYZ, tYZ := newTestPool(t, oneEther, Fee3000)

	path = []PathKey{
		{Fee: Fee3000, IntermediaryToken: tokenY},
		{Fee: Fee3000, IntermediaryToken: tokenZ},
	}
	return RoutePool{Pool: pXY, Ticks: tXY}, RoutePool{Pool: pYZ, Ticks: tYZ}, path
}

func TestResolvePathRejectsTooShort(t *testing.T) {
	if _, err := resolvePath(tokenX, nil); err != ErrPathLengthTooSmall {
		t.Fatalf("expected ErrPathLengthTooSmall, got %v", err)
	}
}

func TestResolvePathRejectsTooLong(t *testing.T) {
	path := make([]PathKey, maxPathHops+1)
	for i := range path {
		path[i] = PathKey{Fee: Fee3000, IntermediaryToken: tokenY}
	}
	if _, err := resolvePath(tokenX, path); err != ErrPathLengthTooBig {
		t.Fatalf("expected ErrPathLengthTooBig, got %v", err)
	}
}

func TestResolvePathRejectsDuplicatePool(t *testing.T) {
	// tokenX -> tokenY -> tokenX revisits the same X/Y pool twice.
	path := []PathKey{
		{Fee: Fee3000, IntermediaryToken: tokenY},
		{Fee: Fee3000, IntermediaryToken: tokenX},
	}
	if _, err := resolvePath(tokenX, path); err != ErrPathDuplicated {
		t.Fatalf("expected ErrPathDuplicated, got %v", err)
	}
}

func TestResolvePathDirectionsAlternate(t *testing.T) {
	path := []PathKey{
		{Fee: Fee3000, IntermediaryToken: tokenY},
		{Fee: Fee3000, IntermediaryToken: tokenZ},
	}
	hops, err := resolvePath(tokenX, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hops) != 2 {
		t.Fatalf("expected 2 resolved hops, got %d", len(hops))
	}
}

func TestRouteExactInputChainsHopOutputToNextInput(t *testing.T) {
	poolXY, poolYZ, path := twoHopRoute(t)
	amountIn := uint256.NewInt(100_000)

	finalOut, results, err := RouteExactInput(tokenX, amountIn, []RoutePool{poolXY, poolYZ}, path, []*UInt256{nil, nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 hop results, got %d", len(results))
	}
	if finalOut.IsZero() {
		t.Fatalf("a nonzero input should produce a nonzero final output")
	}

	hop0Out := absOrZero(results[0].Delta.Amount1)
	hop1In := absOrZero(results[1].Delta.Amount0)
	if hop0Out.Cmp(hop1In) != 0 {
		t.Fatalf("hop 0's output must equal hop 1's input: %s != %s", hop0Out, hop1In)
	}
}

func TestRouteExactOutputChainsBackward(t *testing.T) {
	poolXY, poolYZ, path := twoHopRoute(t)
	amountOut := uint256.NewInt(100_000)

	finalIn, results, err := RouteExactOutput(tokenX, amountOut, []RoutePool{poolXY, poolYZ}, path, []*UInt256{nil, nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finalIn.IsZero() {
		t.Fatalf("a nonzero desired output should require a nonzero input")
	}

	gotOut := absOrZero(results[1].Delta.Amount1)
	if gotOut.Cmp(amountOut) != 0 {
		t.Fatalf("the last hop must deliver exactly the requested output: got %s, want %s", gotOut, amountOut)
	}

	hop1In := absOrZero(results[1].Delta.Amount0)
	hop0Out := absOrZero(results[0].Delta.Amount1)
	if hop1In.Cmp(hop0Out) != 0 {
		t.Fatalf("hop 1's required input must equal hop 0's output: %s != %s", hop1In, hop0Out)
	}
}

func TestRouteExactInputMismatchedPoolCount(t *testing.T) {
	poolXY, _, path := twoHopRoute(t)
	_, _, err := RouteExactInput(tokenX, uint256.NewInt(1000), []RoutePool{poolXY}, path, []*UInt256{nil, nil})
	if err != ErrInvalidPathLength {
		t.Fatalf("expected ErrInvalidPathLength, got %v", err)
	}
}

func TestQuoteExactInputDoesNotMutatePools(t *testing.T) {
	poolXY, poolYZ, path := twoHopRoute(t)
	beforeXY := poolXY.Pool.Clone()

	_, _, err := QuoteExactInput(tokenX, uint256.NewInt(100_000), []RoutePool{poolXY, poolYZ}, path, []*UInt256{nil, nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if poolXY.Pool.SqrtPriceX96.Cmp(beforeXY.SqrtPriceX96) != 0 {
		t.Fatalf("QuoteExactInput must not mutate the live pools")
	}
}
