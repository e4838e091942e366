// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"context"
	"math/big"
)

// CreatePool registers a new pool at the given initial price, deriving
// its tick spacing from the fee tier and its starting tick from the
// price. Fails with ErrPoolAlreadyExists if the (token pair, fee)
// combination is already registered.
func (s *State) CreatePool(creator TokenID, tokenA, tokenB TokenID, fee uint32, sqrtPriceX96 *UInt256) (PoolId, error) {
	release, err := s.Guard.AcquirePrincipal(creator)
	if err != nil {
		return PoolId{}, err
	}
	defer release()

	tickSpacing, ok := TickSpacingForFee(fee)
	if !ok {
		return PoolId{}, ErrInvalidPoolFee
	}
	poolID, err := NewPoolId(tokenA, tokenB, fee)
	if err != nil {
		return PoolId{}, err
	}
	if sqrtPriceX96.Cmp(MinSqrtRatio) <= 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return PoolId{}, ErrInvalidSqrtPriceX96
	}
	tick, err := GetTickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return PoolId{}, err
	}

	state := NewPoolState(sqrtPriceX96, tick, tickSpacing)
	if err := s.Pools.Create(poolID, state); err != nil {
		return PoolId{}, err
	}

	s.Events.EmitCreatedPool(CreatedPoolPayload{PoolID: poolID, SqrtPriceX96: sqrtPriceX96, Tick: tick})
	return poolID, nil
}

// Deposit pulls amount of token from user into this core's custody and
// credits it to their internal balance, to be spent by a later mint or
// swap in the same or a subsequent operation.
func (s *State) Deposit(ctx context.Context, user, token TokenID, amount *UInt256) error {
	release, err := s.Guard.AcquirePrincipal(user)
	if err != nil {
		return err
	}
	defer release()

	return s.Balances.Deposit(ctx, user, token, amount)
}

// Withdraw debits user's internal balance by amount and pushes it back
// out to them via the external ledger.
func (s *State) Withdraw(ctx context.Context, user, token TokenID, amount *UInt256) error {
	release, err := s.Guard.AcquirePrincipal(user)
	if err != nil {
		return err
	}
	defer release()

	return s.Balances.Withdraw(ctx, user, token, amount)
}

// getPool resolves a pool and its tick table, or ErrPoolNotInitialized.
func (s *State) getPool(poolID PoolId) (*PoolState, *tickTable, error) {
	pool, ok := s.Pools.Get(poolID)
	if !ok {
		return nil, nil, ErrPoolNotInitialized
	}
	// Refresh the pool's recorded transfer fees from whatever the
	// ledger most recently disclosed for each side, so they stay
	// current without needing every deposit/withdraw call site to
	// know which pool its token belongs to.
	pool.Token0TransferFee = s.Balances.TransferFeeOf(poolID.Token0)
	pool.Token1TransferFee = s.Balances.TransferFeeOf(poolID.Token1)
	return pool, s.Pools.Ticks(poolID), nil
}

// debitPairOrRestore debits amount0 of token0 and amount1 of token1
// from owner's internal balance, restoring the pool/position snapshot
// and reversing any partial debit if either leg fails.
func (s *State) debitPairOrRestore(snap *Snapshot, owner TokenID, poolID PoolId, amount0, amount1 *UInt256) error {
	if err := s.Balances.DebitInternal(owner, poolID.Token0, amount0); err != nil {
		s.Restore(snap)
		return &DepositError{Reason: err}
	}
	if err := s.Balances.DebitInternal(owner, poolID.Token1, amount1); err != nil {
		s.Balances.CreditInternal(owner, poolID.Token0, amount0)
		s.Restore(snap)
		return &DepositError{Reason: err}
	}
	return nil
}

func absOrZero(v *Int256) *UInt256 {
	u, overflow := uint256FromBig(absBigInt(v))
	if overflow {
		return new(UInt256)
	}
	return u
}

// MintPosition opens a position sized from desired token amounts (failing
// with ErrPositionAlreadyExists if one already holds liquidity there),
// debiting the caller's internal balance for whatever amounts
// the mint actually required.
func (s *State) MintPosition(owner TokenID, params MintParams) (*MintResult, error) {
	release, err := s.Guard.AcquirePrincipal(owner)
	if err != nil {
		return nil, err
	}
	defer release()

	pool, ticks, err := s.getPool(params.PoolID)
	if err != nil {
		return nil, err
	}

	snap := s.Snapshot()
	params.Owner = owner
	result, err := Mint(pool, ticks, s.Positions, params)
	if err != nil {
		s.Restore(snap)
		return nil, err
	}

	if err := s.debitPairOrRestore(snap, owner, params.PoolID, absOrZero(result.Delta.Amount0), absOrZero(result.Delta.Amount1)); err != nil {
		return nil, err
	}

	s.Events.EmitMintedPosition(MintedPositionPayload{
		Owner: owner, PoolID: params.PoolID, TickLower: params.TickLower, TickUpper: params.TickUpper,
		Liquidity: result.Liquidity, Delta: result.Delta,
	})
	return result, nil
}

// IncreaseLiquidity adds liquidity to an existing position.
func (s *State) IncreaseLiquidity(owner TokenID, key PositionKey, liquidityDelta, amount0Min, amount1Min *UInt256) (BalanceDelta, error) {
	release, err := s.Guard.AcquirePrincipal(owner)
	if err != nil {
		return BalanceDelta{}, err
	}
	defer release()

	pool, ticks, err := s.getPool(key.Pool)
	if err != nil {
		return BalanceDelta{}, err
	}

	snap := s.Snapshot()
	delta, err := IncreaseLiquidity(pool, ticks, s.Positions, key, liquidityDelta, amount0Min, amount1Min)
	if err != nil {
		s.Restore(snap)
		return BalanceDelta{}, err
	}

	if err := s.debitPairOrRestore(snap, owner, key.Pool, absOrZero(delta.Amount0), absOrZero(delta.Amount1)); err != nil {
		return BalanceDelta{}, err
	}

	s.Events.EmitIncreasedLiquidity(IncreasedLiquidityPayload{
		Owner: owner, PoolID: key.Pool, TickLower: key.TickLower, TickUpper: key.TickUpper,
		Liquidity: liquidityDelta, Delta: delta,
	})
	return delta, nil
}

// DecreaseLiquidity removes liquidity from a position and withdraws the
// resulting amounts directly to the owner's external account.
func (s *State) DecreaseLiquidity(ctx context.Context, owner TokenID, key PositionKey, liquidityDelta, amount0Min, amount1Min *UInt256) (BalanceDelta, error) {
	release, err := s.Guard.AcquirePrincipal(owner)
	if err != nil {
		return BalanceDelta{}, err
	}
	defer release()

	pool, ticks, err := s.getPool(key.Pool)
	if err != nil {
		return BalanceDelta{}, err
	}

	snap := s.Snapshot()
	delta, err := DecreaseLiquidity(pool, ticks, s.Positions, key, liquidityDelta, amount0Min, amount1Min)
	if err != nil {
		s.Restore(snap)
		return BalanceDelta{}, err
	}

	amount0, amount1 := absOrZero(delta.Amount0), absOrZero(delta.Amount1)
	// DecreaseLiquidity parked the removed amounts in the position's owed
	// balances; move exactly those amounts to the owner's internal
	// balance so the withdrawals below have something to push out.
	if position, ok := s.Positions.Get(key); ok {
		position.FeesOwed0 = new(UInt256).Sub(position.FeesOwed0, amount0)
		position.FeesOwed1 = new(UInt256).Sub(position.FeesOwed1, amount1)
		s.Positions.Set(position)
	}
	s.Balances.CreditInternal(owner, key.Pool.Token0, amount0)
	s.Balances.CreditInternal(owner, key.Pool.Token1, amount1)
	if err := s.Balances.Withdraw(ctx, owner, key.Pool.Token0, amount0); err != nil {
		return delta, &WithdrawalFailedError{Op: "decrease_liquidity", Reason: err}
	}
	if err := s.Balances.Withdraw(ctx, owner, key.Pool.Token1, amount1); err != nil {
		return delta, &WithdrawalFailedError{Op: "decrease_liquidity", Reason: err}
	}

	s.Events.EmitDecreasedLiquidity(DecreasedLiquidityPayload{
		Owner: owner, PoolID: key.Pool, TickLower: key.TickLower, TickUpper: key.TickUpper,
		Liquidity: liquidityDelta, Delta: delta,
	})
	return delta, nil
}

// CollectFees pays out up to the requested fee amounts owed to key's
// position directly to owner's external account.
func (s *State) CollectFees(ctx context.Context, owner TokenID, key PositionKey, amount0Requested, amount1Requested *UInt256) (*UInt256, *UInt256, error) {
	release, err := s.Guard.AcquirePrincipal(owner)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	amount0, amount1, err := CollectFees(s.Positions, key, amount0Requested, amount1Requested)
	if err != nil {
		return nil, nil, err
	}

	s.Balances.CreditInternal(owner, key.Pool.Token0, amount0)
	s.Balances.CreditInternal(owner, key.Pool.Token1, amount1)
	if err := s.Balances.Withdraw(ctx, owner, key.Pool.Token0, amount0); err != nil {
		return nil, nil, &WithdrawalFailedError{Op: "collect_fees", Reason: err}
	}
	if err := s.Balances.Withdraw(ctx, owner, key.Pool.Token1, amount1); err != nil {
		return nil, nil, &WithdrawalFailedError{Op: "collect_fees", Reason: err}
	}

	s.Events.EmitCollectedFees(CollectedFeesPayload{
		Owner: owner, PoolID: key.Pool, TickLower: key.TickLower, TickUpper: key.TickUpper,
		Amount0: amount0, Amount1: amount1,
	})
	return amount0, amount1, nil
}

// BurnPosition removes a fully-drained position from the table.
func (s *State) BurnPosition(owner TokenID, key PositionKey) error {
	release, err := s.Guard.AcquirePrincipal(owner)
	if err != nil {
		return err
	}
	defer release()

	if err := Burn(s.Positions, key); err != nil {
		return err
	}

	s.Events.EmitBurntPosition(BurntPositionPayload{Owner: owner, PoolID: key.Pool, TickLower: key.TickLower, TickUpper: key.TickUpper})
	return nil
}

// SwapRequest is a single-pool swap, including the economic guard the
// caller wants enforced on the side of the trade not pinned by
// AmountSpecified's sign.
type SwapRequest struct {
	Trader            TokenID
	PoolID            PoolId
	ZeroForOne        bool
	AmountSpecified   *Int256
	SqrtPriceLimitX96 *UInt256
	AmountOutMin      *UInt256 // checked when AmountSpecified is exact-input
	AmountInMax       *UInt256 // checked when AmountSpecified is exact-output
}

// Swap executes a single-pool swap: deposits the input token from the
// trader's external account, runs the swap against live pool state,
// and pushes the output back out. If the swap fails after the deposit
// has already moved funds into custody, the deposit is refunded; if
// that refund itself fails, the caller is told as much via
// SwapFailedRefunded rather than having the failure masked.
func (s *State) Swap(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	release, err := s.Guard.AcquireSwap(req.Trader, []PoolId{req.PoolID})
	if err != nil {
		return nil, err
	}
	defer release()

	pool, ticks, err := s.getPool(req.PoolID)
	if err != nil {
		return nil, err
	}

	tokenIn, tokenOut := req.PoolID.Token1, req.PoolID.Token0
	if req.ZeroForOne {
		tokenIn, tokenOut = req.PoolID.Token0, req.PoolID.Token1
	}

	params := SwapParams{
		PoolID:            req.PoolID,
		ZeroForOne:        req.ZeroForOne,
		AmountSpecified:   req.AmountSpecified,
		SqrtPriceLimitX96: req.SqrtPriceLimitX96,
	}

	exactIn := req.AmountSpecified.Sign() >= 0
	var depositAmount *UInt256
	if exactIn {
		depositAmount, _ = uint256FromBig(req.AmountSpecified)
	} else {
		quote, err := QuoteSingle(pool, ticks, params)
		if err != nil {
			return nil, err
		}
		inLeg := quote.Delta.Amount0
		if !req.ZeroForOne {
			inLeg = quote.Delta.Amount1
		}
		depositAmount = absOrZero(inLeg)
		if req.AmountInMax != nil && depositAmount.Cmp(req.AmountInMax) > 0 {
			return nil, ErrTooMuchRequested
		}
	}

	if err := s.Balances.Deposit(ctx, req.Trader, tokenIn, depositAmount); err != nil {
		return nil, err
	}

	snap := s.Snapshot()
	result, err := ExecuteSwap(pool, ticks, params)
	if err != nil {
		s.Restore(snap)
		if werr := s.Balances.Withdraw(ctx, req.Trader, tokenIn, depositAmount); werr != nil {
			return nil, &SwapFailedRefunded{FailedReason: err, RefundAmount: depositAmount, RefundError: werr}
		}
		return nil, &SwapFailedRefunded{FailedReason: err, RefundAmount: depositAmount}
	}

	outLeg := result.Delta.Amount1
	if !req.ZeroForOne {
		outLeg = result.Delta.Amount0
	}
	outputAmount := absOrZero(outLeg)
	inLeg := result.Delta.Amount0
	if !req.ZeroForOne {
		inLeg = result.Delta.Amount1
	}
	var failed error = ErrTooLittleReceived
	if !exactIn || req.AmountOutMin == nil || outputAmount.Cmp(req.AmountOutMin) >= 0 {
		failed = s.Balances.DebitInternal(req.Trader, tokenIn, absOrZero(inLeg))
	}
	if failed != nil {
		s.Restore(snap)
		if werr := s.Balances.Withdraw(ctx, req.Trader, tokenIn, depositAmount); werr != nil {
			return nil, &SwapFailedRefunded{FailedReason: failed, RefundAmount: depositAmount, RefundError: werr}
		}
		return nil, &SwapFailedRefunded{FailedReason: failed, RefundAmount: depositAmount}
	}

	s.Balances.CreditInternal(req.Trader, tokenOut, outputAmount)
	if err := s.Balances.Withdraw(ctx, req.Trader, tokenOut, outputAmount); err != nil {
		return result, &FailedToWithdraw{AmountIn: depositAmount, AmountOut: outputAmount, Reason: err}
	}

	s.Events.EmitSwap(SwapPayload{
		Sender: req.Trader, Path: []PoolId{req.PoolID}, ZeroForOne: []bool{req.ZeroForOne},
		Delta: result.Delta, SqrtPriceX96After: []*UInt256{result.SqrtPriceX96}, TickAfter: []int32{result.Tick},
		ExactInput: exactIn,
	})
	return result, nil
}

// MultiHopSwapRequest is a swap routed forward across two to four pools
// along path, starting from tokenIn. AmountSpecified is signed: a
// non-negative value is the exact input budget; a negative value's
// magnitude is the exact output desired. SqrtPriceLimits is indexed
// per-hop in path order; a nil entry falls back to the direction's
// default limit.
type MultiHopSwapRequest struct {
	Trader          TokenID
	TokenIn         TokenID
	Path            []PathKey
	AmountSpecified *Int256
	SqrtPriceLimits []*UInt256
	AmountOutMin    *UInt256 // checked when AmountSpecified is exact-input
	AmountInMax     *UInt256 // checked when AmountSpecified is exact-output
}

// RouteSwap executes a multi-hop swap across path, deposit-then-commit
// like a single-pool Swap: the input is deposited up front, every hop
// is staged against a pre-swap snapshot of every pool touched, and a
// failure partway through rolls the whole route back and refunds the
// deposit rather than leaving earlier hops' effects applied.
func (s *State) RouteSwap(ctx context.Context, req MultiHopSwapRequest) (*UInt256, []*SwapResult, error) {
	hops, err := resolvePath(req.TokenIn, req.Path)
	if err != nil {
		return nil, nil, err
	}

	poolIDs := make([]PoolId, len(hops))
	routePools := make([]RoutePool, len(hops))
	for i, hop := range hops {
		pool, ticks, err := s.getPool(hop.PoolID)
		if err != nil {
			return nil, nil, err
		}
		poolIDs[i] = hop.PoolID
		routePools[i] = RoutePool{Pool: pool, Ticks: ticks}
	}

	release, err := s.Guard.AcquireSwap(req.Trader, poolIDs)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	tokenOut := req.Path[len(req.Path)-1].IntermediaryToken
	exactIn := req.AmountSpecified.Sign() >= 0

	limits := req.SqrtPriceLimits
	if limits == nil {
		limits = make([]*UInt256, len(hops))
	}

	var depositAmount *UInt256
	if exactIn {
		depositAmount, _ = uint256FromBig(req.AmountSpecified)
	} else {
		amountOut, overflow := uint256FromBig(new(big.Int).Neg(req.AmountSpecified))
		if overflow {
			return nil, nil, ErrAmountOverflow
		}
		quotedIn, _, err := QuoteExactOutput(req.TokenIn, amountOut, routePools, req.Path, limits)
		if err != nil {
			return nil, nil, err
		}
		depositAmount = quotedIn
		if req.AmountInMax != nil && depositAmount.Cmp(req.AmountInMax) > 0 {
			return nil, nil, ErrTooMuchRequested
		}
	}

	if err := s.Balances.Deposit(ctx, req.Trader, req.TokenIn, depositAmount); err != nil {
		return nil, nil, err
	}

	snap := s.Snapshot()

	var results []*SwapResult
	if exactIn {
		amountIn, _ := uint256FromBig(req.AmountSpecified)
		_, results, err = RouteExactInput(req.TokenIn, amountIn, routePools, req.Path, limits)
	} else {
		amountOut, _ := uint256FromBig(new(big.Int).Neg(req.AmountSpecified))
		_, results, err = RouteExactOutput(req.TokenIn, amountOut, routePools, req.Path, limits)
	}
	if err != nil {
		s.Restore(snap)
		if werr := s.Balances.Withdraw(ctx, req.Trader, req.TokenIn, depositAmount); werr != nil {
			return nil, nil, &SwapFailedRefunded{FailedReason: err, RefundAmount: depositAmount, RefundError: werr}
		}
		return nil, nil, &SwapFailedRefunded{FailedReason: err, RefundAmount: depositAmount}
	}

	lastHop := hops[len(hops)-1]
	outLeg := results[len(results)-1].Delta.Amount1
	if !lastHop.ZeroForOne {
		outLeg = results[len(results)-1].Delta.Amount0
	}
	outputAmount := absOrZero(outLeg)
	inLeg := results[0].Delta.Amount0
	if !hops[0].ZeroForOne {
		inLeg = results[0].Delta.Amount1
	}
	var failed error = ErrTooLittleReceived
	if !exactIn || req.AmountOutMin == nil || outputAmount.Cmp(req.AmountOutMin) >= 0 {
		failed = s.Balances.DebitInternal(req.Trader, req.TokenIn, absOrZero(inLeg))
	}
	if failed != nil {
		s.Restore(snap)
		if werr := s.Balances.Withdraw(ctx, req.Trader, req.TokenIn, depositAmount); werr != nil {
			return nil, nil, &SwapFailedRefunded{FailedReason: failed, RefundAmount: depositAmount, RefundError: werr}
		}
		return nil, nil, &SwapFailedRefunded{FailedReason: failed, RefundAmount: depositAmount}
	}

	s.Balances.CreditInternal(req.Trader, tokenOut, outputAmount)
	if err := s.Balances.Withdraw(ctx, req.Trader, tokenOut, outputAmount); err != nil {
		return outputAmount, results, &FailedToWithdraw{AmountIn: depositAmount, AmountOut: outputAmount, Reason: err}
	}

	zeroForOne := make([]bool, len(hops))
	for i, hop := range hops {
		zeroForOne[i] = hop.ZeroForOne
	}
	sqrtAfter := make([]*UInt256, len(results))
	tickAfter := make([]int32, len(results))
	for i, r := range results {
		sqrtAfter[i] = r.SqrtPriceX96
		tickAfter[i] = r.Tick
	}
	// Delta is left zero here: with more than two tokens in play, a
	// single (Amount0, Amount1) pair can't represent a multi-hop
	// route's net effect the way it does for a single pool. The
	// per-hop SwapResult.Delta values are available to the immediate
	// caller via RouteSwap's return; Path/ZeroForOne/SqrtPriceX96After
	// reconstruct the rest.
	s.Events.EmitSwap(SwapPayload{
		Sender: req.Trader, Path: poolIDs, ZeroForOne: zeroForOne,
		Delta: newBalanceDelta(), SqrtPriceX96After: sqrtAfter, TickAfter: tickAfter,
		ExactInput: exactIn,
	})
	return outputAmount, results, nil
}

// RouteQuote reports the outcome of a multi-hop swap without mutating
// any pool, reusing the exact same math RouteSwap would run.
func (s *State) RouteQuote(tokenIn TokenID, path []PathKey, amountSpecified *Int256, sqrtPriceLimits []*UInt256) (*UInt256, []*SwapResult, error) {
	hops, err := resolvePath(tokenIn, path)
	if err != nil {
		return nil, nil, err
	}
	routePools := make([]RoutePool, len(hops))
	for i, hop := range hops {
		pool, ticks, err := s.getPool(hop.PoolID)
		if err != nil {
			return nil, nil, err
		}
		routePools[i] = RoutePool{Pool: pool, Ticks: ticks}
	}
	limits := sqrtPriceLimits
	if limits == nil {
		limits = make([]*UInt256, len(hops))
	}
	if amountSpecified.Sign() >= 0 {
		amountIn, overflow := uint256FromBig(amountSpecified)
		if overflow {
			return nil, nil, ErrAmountOverflow
		}
		return QuoteExactInput(tokenIn, amountIn, routePools, path, limits)
	}
	amountOut, overflow := uint256FromBig(new(big.Int).Neg(amountSpecified))
	if overflow {
		return nil, nil, ErrAmountOverflow
	}
	return QuoteExactOutput(tokenIn, amountOut, routePools, path, limits)
}

// Quote reports the outcome of a single-pool swap without mutating
// state, reusing the exact same math the real swap would run.
func (s *State) Quote(poolID PoolId, zeroForOne bool, amountSpecified *Int256, sqrtPriceLimitX96 *UInt256) (*SwapResult, error) {
	pool, ticks, err := s.getPool(poolID)
	if err != nil {
		return nil, err
	}
	return QuoteSingle(pool, ticks, SwapParams{
		PoolID:            poolID,
		ZeroForOne:        zeroForOne,
		AmountSpecified:   amountSpecified,
		SqrtPriceLimitX96: sqrtPriceLimitX96,
	})
}

// Pool returns a read-only view of a pool's current state.
func (s *State) Pool(poolID PoolId) (*PoolState, error) {
	pool, ok := s.Pools.Get(poolID)
	if !ok {
		return nil, ErrPoolNotInitialized
	}
	return pool, nil
}

// Position returns a read-only view of a position's current state.
func (s *State) Position(key PositionKey) (*Position, error) {
	p, ok := s.Positions.Get(key)
	if !ok {
		return nil, ErrPositionNotFound
	}
	return p, nil
}

// AllPools returns every registered pool's identity and current state.
func (s *State) AllPools() []PoolRecord {
	return s.Pools.All()
}

// PositionsByOwner returns every open position belonging to owner.
func (s *State) PositionsByOwner(owner TokenID) []*Position {
	return s.Positions.ByOwner(owner)
}

// ActiveTicks returns every initialized tick of poolID's tick table.
func (s *State) ActiveTicks(poolID PoolId) ([]ActiveTick, error) {
	if _, ok := s.Pools.Get(poolID); !ok {
		return nil, ErrPoolNotInitialized
	}
	return s.Pools.Ticks(poolID).ActiveTicks(), nil
}

// PoolHistorySnapshot is this core's contribution to a history bucket
// aggregator: the running reserve, volume, fee, liquidity and price
// aggregates a bucket would need, as they stand right now. Bucket
// rollover and retention are out of scope; this is not itself a ring
// of historical buckets.
type PoolHistorySnapshot struct {
	PoolID             PoolId
	Reserves0          *UInt256
	Reserves1          *UInt256
	SwapVolume0AllTime *UInt256
	SwapVolume1AllTime *UInt256
	GeneratedSwapFee0  *UInt256
	GeneratedSwapFee1  *UInt256
	Liquidity          *UInt256
	SqrtPriceX96       *UInt256
	Tick               int32
}

// PoolHistory returns poolID's current running aggregates.
func (s *State) PoolHistory(poolID PoolId) (*PoolHistorySnapshot, error) {
	pool, ok := s.Pools.Get(poolID)
	if !ok {
		return nil, ErrPoolNotInitialized
	}
	return &PoolHistorySnapshot{
		PoolID:             poolID,
		Reserves0:          pool.Reserves0,
		Reserves1:          pool.Reserves1,
		SwapVolume0AllTime: pool.SwapVolume0AllTime,
		SwapVolume1AllTime: pool.SwapVolume1AllTime,
		GeneratedSwapFee0:  pool.GeneratedSwapFee0,
		GeneratedSwapFee1:  pool.GeneratedSwapFee1,
		Liquidity:          pool.Liquidity,
		SqrtPriceX96:       pool.SqrtPriceX96,
		Tick:               pool.Tick,
	}, nil
}

// UserBalance returns user's internal credit balance for token.
func (s *State) UserBalance(user, token TokenID) *UInt256 {
	return s.Balances.BalanceOf(user, token)
}

// UserBalances returns every nonzero internal credit balance held by
// user.
func (s *State) UserBalances(user TokenID) []Balance {
	return s.Balances.BalancesOf(user)
}
