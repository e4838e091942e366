// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

// QuoteSingle reports the outcome of a single-pool swap without
// mutating pool or ticks, by running the same execution path against
// throwaway clones.
func QuoteSingle(pool *PoolState, ticks *tickTable, params SwapParams) (*SwapResult, error) {
	return ExecuteSwap(pool.Clone(), ticks.clone(), params)
}

// QuoteExactInput reports the outcome of a multi-hop exact-input route
// without mutating any pool, cloning every pool/tick pair up front.
func QuoteExactInput(tokenIn TokenID, amountIn *UInt256, pools []RoutePool, path []PathKey, sqrtPriceLimits []*UInt256) (*UInt256, []*SwapResult, error) {
	return RouteExactInput(tokenIn, amountIn, cloneRoutePools(pools), path, sqrtPriceLimits)
}

// QuoteExactOutput is the exact-output counterpart to QuoteExactInput.
func QuoteExactOutput(tokenIn TokenID, amountOut *UInt256, pools []RoutePool, path []PathKey, sqrtPriceLimits []*UInt256) (*UInt256, []*SwapResult, error) {
	return RouteExactOutput(tokenIn, amountOut, cloneRoutePools(pools), path, sqrtPriceLimits)
}

func cloneRoutePools(pools []RoutePool) []RoutePool {
	out := make([]RoutePool, len(pools))
	for i, p := range pools {
		out[i] = RoutePool{Pool: p.Pool.Clone(), Ticks: p.Ticks.clone()}
	}
	return out
}
