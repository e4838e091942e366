// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

const (
	minPathHops = 2
	maxPathHops = 4
)

// RoutePool is the narrow view of pool state the router needs per hop:
// the pool itself and its tick table, resolved ahead of execution so
// the router never has to reach back into a table by PoolId mid-loop.
type RoutePool struct {
	Pool  *PoolState
	Ticks *tickTable
}

// resolvedHop is one hop of a path fully resolved against a starting
// token: which pool it traverses and in which direction.
type resolvedHop struct {
	PoolID     PoolId
	ZeroForOne bool
}

// resolvePath walks path forward from tokenIn, resolving each hop's
// pool identity and swap direction, and rejects a path that is too
// short, too long, or visits the same pool twice.
func resolvePath(tokenIn TokenID, path []PathKey) ([]resolvedHop, error) {
	if len(path) < minPathHops {
		return nil, ErrPathLengthTooSmall
	}
	if len(path) > maxPathHops {
		return nil, ErrPathLengthTooBig
	}

	seen := make(map[common.Hash]struct{}, len(path))
	hops := make([]resolvedHop, len(path))
	current := tokenIn
	for i, hop := range path {
		poolID, zeroForOne, err := hop.ZeroForOneTo(current)
		if err != nil {
			return nil, err
		}
		key := poolID.ID()
		if _, dup := seen[key]; dup {
			return nil, ErrPathDuplicated
		}
		seen[key] = struct{}{}
		hops[i] = resolvedHop{PoolID: poolID, ZeroForOne: zeroForOne}
		current = hop.IntermediaryToken
	}
	return hops, nil
}

// DefaultPriceLimit returns the permissive sqrt-price limit a caller
// gets when it does not name one of its own: one unit inside the
// protocol's absolute min/max sqrt ratio in the direction of travel,
// so the swap can move the price arbitrarily far without tripping the
// bounds check a caller-supplied limit of exactly Min/MaxSqrtRatio
// would.
func DefaultPriceLimit(zeroForOne bool) *UInt256 {
	if zeroForOne {
		return new(UInt256).AddUint64(MinSqrtRatio, 1)
	}
	return new(UInt256).Sub(MaxSqrtRatio, new(UInt256).SetUint64(1))
}

func defaultPriceLimit(zeroForOne bool) *UInt256 {
	return DefaultPriceLimit(zeroForOne)
}

// RouteExactInput executes a multi-hop exact-input swap forward along
// path, feeding each hop's output into the next hop's input, and
// returns the final output amount together with every pool's result in
// traversal order.
func RouteExactInput(tokenIn TokenID, amountIn *UInt256, pools []RoutePool, path []PathKey, sqrtPriceLimits []*UInt256) (*UInt256, []*SwapResult, error) {
	hops, err := resolvePath(tokenIn, path)
	if err != nil {
		return nil, nil, err
	}
	if len(pools) != len(hops) {
		return nil, nil, ErrInvalidPathLength
	}

	results := make([]*SwapResult, len(hops))
	amount := new(big.Int).Set(amountIn.ToBig())

	for i, hop := range hops {
		limit := sqrtPriceLimits[i]
		if limit == nil {
			limit = defaultPriceLimit(hop.ZeroForOne)
		}

		result, err := ExecuteSwap(pools[i].Pool, pools[i].Ticks, SwapParams{
			PoolID:            hop.PoolID,
			ZeroForOne:        hop.ZeroForOne,
			AmountSpecified:   amount,
			SqrtPriceLimitX96: limit,
		})
		if err != nil {
			return nil, nil, err
		}
		results[i] = result

		outAmount := result.Delta.Amount1
		if !hop.ZeroForOne {
			outAmount = result.Delta.Amount0
		}
		amount = new(big.Int).Neg(outAmount)
	}

	finalOut, overflow := uint256FromBig(amount)
	if overflow {
		return nil, nil, ErrAmountOverflow
	}
	return finalOut, results, nil
}

// RouteExactOutput executes a multi-hop exact-output swap: path is
// still specified forward (tokenIn to tokenOut), but hops execute
// back-to-front since the desired amount is pinned at the last hop's
// output and each hop's required input becomes the prior hop's desired
// output.
func RouteExactOutput(tokenIn TokenID, amountOut *UInt256, pools []RoutePool, path []PathKey, sqrtPriceLimits []*UInt256) (*UInt256, []*SwapResult, error) {
	hops, err := resolvePath(tokenIn, path)
	if err != nil {
		return nil, nil, err
	}
	if len(pools) != len(hops) {
		return nil, nil, ErrInvalidPathLength
	}

	results := make([]*SwapResult, len(hops))
	wantOut := new(big.Int).Set(amountOut.ToBig())

	for i := len(hops) - 1; i >= 0; i-- {
		hop := hops[i]
		limit := sqrtPriceLimits[i]
		if limit == nil {
			limit = defaultPriceLimit(hop.ZeroForOne)
		}

		result, err := ExecuteSwap(pools[i].Pool, pools[i].Ticks, SwapParams{
			PoolID:            hop.PoolID,
			ZeroForOne:        hop.ZeroForOne,
			AmountSpecified:   new(big.Int).Neg(wantOut),
			SqrtPriceLimitX96: limit,
		})
		if err != nil {
			return nil, nil, err
		}
		results[i] = result

		inAmount := result.Delta.Amount0
		if !hop.ZeroForOne {
			inAmount = result.Delta.Amount1
		}
		wantOut = inAmount
	}

	finalIn, overflow := uint256FromBig(wantOut)
	if overflow {
		return nil, nil, ErrAmountOverflow
	}
	return finalIn, results, nil
}
