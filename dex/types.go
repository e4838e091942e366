// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dex implements the core of a concentrated-liquidity automated
// market maker: pool state, tick-indexed liquidity accounting, the swap
// execution engine, and the position lifecycle. The external token
// ledger, host runtime, and request-authentication surface are treated
// as collaborators consumed through narrow interfaces, never imported.
package dex

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// Int256 is the signed counterpart to UInt256, used for liquidity deltas
// and balance deltas. holiman/uint256 is unsigned-only, so signed
// quantities fall back to math/big the way the original source's
// ethnum::I256 is only reached for for signed deltas and nothing else.
type Int256 = big.Int

// UInt256 is the arbitrary-precision natural number type used for every
// token amount, liquidity quantity, and fee-growth accumulator. Aliased
// rather than wrapped so the rest of the package can call uint256.Int's
// methods directly.
type UInt256 = uint256.Int

// TokenID is an opaque principal identifying a fungible token at the
// external ledger. The distilled interface leaves token identity
// unspecified beyond "opaque principal"; this core concretizes it as a
// 20-byte address, the same representation pool/position keys hash.
type TokenID = common.Address

// Fee tiers, in hundredths of a bip (1e-6). Each tier fixes a tick
// spacing; only ticks whose index is a multiple of their pool's spacing
// may be initialized.
const (
	Fee100   uint32 = 100
	Fee500   uint32 = 500
	Fee1000  uint32 = 1000
	Fee3000  uint32 = 3000
	Fee10000 uint32 = 10000
)

// TickSpacingForFee returns the tick spacing mandated for a fee tier, and
// false if the tier is not one of the five supported tiers.
func TickSpacingForFee(fee uint32) (int32, bool) {
	switch fee {
	case Fee100:
		return 1, true
	case Fee500:
		return 10, true
	case Fee1000:
		return 20, true
	case Fee3000:
		return 60, true
	case Fee10000:
		return 200, true
	default:
		return 0, false
	}
}

// PoolId canonically identifies a pool by its two tokens (ordered
// token0 < token1 by byte-lexicographic address order) and fee tier.
type PoolId struct {
	Token0 TokenID
	Token1 TokenID
	Fee    uint32
}

// NewPoolId canonicalizes a pair of tokens into a PoolId, swapping them
// into (token0, token1) order if necessary. Returns ErrDuplicatedTokens
// if the two tokens are identical.
func NewPoolId(tokenA, tokenB TokenID, fee uint32) (PoolId, error) {
	if tokenA == tokenB {
		return PoolId{}, ErrDuplicatedTokens
	}
	if bytes.Compare(tokenA.Bytes(), tokenB.Bytes()) < 0 {
		return PoolId{Token0: tokenA, Token1: tokenB, Fee: fee}, nil
	}
	return PoolId{Token0: tokenB, Token1: tokenA, Fee: fee}, nil
}

// ID returns the content-addressed digest identifying this pool, used as
// the map key throughout the tick/pool/position tables.
func (p PoolId) ID() common.Hash {
	h := blake3.New()
	h.Write(p.Token0.Bytes())
	h.Write(p.Token1.Bytes())
	var feeBytes [4]byte
	feeBytes[0] = byte(p.Fee >> 24)
	feeBytes[1] = byte(p.Fee >> 16)
	feeBytes[2] = byte(p.Fee >> 8)
	feeBytes[3] = byte(p.Fee)
	h.Write(feeBytes[:])
	return common.BytesToHash(h.Sum(nil))
}

func (p PoolId) String() string {
	return fmt.Sprintf("Pool(%s/%s@%d)", p.Token0.Hex(), p.Token1.Hex(), p.Fee)
}

// PoolState is the mutable record of a single pool's price, liquidity,
// and accumulated fees. Ticks and positions reference it by PoolId, not
// by pointer, so the whole table tree stays serialization-friendly.
type PoolState struct {
	SqrtPriceX96 *UInt256 // Q64.96
	Tick         int32

	Liquidity *UInt256 // U128 range, stored widened

	FeeGrowthGlobal0X128 *UInt256
	FeeGrowthGlobal1X128 *UInt256

	ProtocolFeeFraction uint8 // 0 disables; otherwise 1/N of the LP fee
	ProtocolFeesOwed0   *UInt256
	ProtocolFeesOwed1   *UInt256

	// Token{0,1}TransferFee mirror the external ledger's last-disclosed
	// fixed transfer fee for each side, refreshed on every access via
	// State.getPool so a caller inspecting PoolState sees current
	// values without querying BalanceLedger directly.
	Token0TransferFee *UInt256
	Token1TransferFee *UInt256

	TickSpacing          int32
	MaxLiquidityPerTick  *UInt256

	Reserves0 *UInt256
	Reserves1 *UInt256

	SwapVolume0AllTime *UInt256
	SwapVolume1AllTime *UInt256
	GeneratedSwapFee0  *UInt256
	GeneratedSwapFee1  *UInt256
}

// NewPoolState builds the zero-liquidity state a freshly created pool
// starts in, at the given initial price.
func NewPoolState(sqrtPriceX96 *UInt256, tick int32, tickSpacing int32) *PoolState {
	maxLiq := TickSpacingToMaxLiquidityPerTick(tickSpacing)
	return &PoolState{
		SqrtPriceX96:         new(UInt256).Set(sqrtPriceX96),
		Tick:                 tick,
		Liquidity:            new(UInt256),
		FeeGrowthGlobal0X128: new(UInt256),
		FeeGrowthGlobal1X128: new(UInt256),
		ProtocolFeesOwed0:    new(UInt256),
		ProtocolFeesOwed1:    new(UInt256),
		Token0TransferFee:    new(UInt256),
		Token1TransferFee:    new(UInt256),
		TickSpacing:          tickSpacing,
		MaxLiquidityPerTick:  maxLiq,
		Reserves0:            new(UInt256),
		Reserves1:            new(UInt256),
		SwapVolume0AllTime:   new(UInt256),
		SwapVolume1AllTime:   new(UInt256),
		GeneratedSwapFee0:    new(UInt256),
		GeneratedSwapFee1:    new(UInt256),
	}
}

// Clone deep-copies a PoolState so callers can snapshot it before a
// speculative mutation (the orchestrator's rollback path, §4.9).
func (p *PoolState) Clone() *PoolState {
	c := *p
	c.SqrtPriceX96 = new(UInt256).Set(p.SqrtPriceX96)
	c.Liquidity = new(UInt256).Set(p.Liquidity)
	c.FeeGrowthGlobal0X128 = new(UInt256).Set(p.FeeGrowthGlobal0X128)
	c.FeeGrowthGlobal1X128 = new(UInt256).Set(p.FeeGrowthGlobal1X128)
	c.ProtocolFeesOwed0 = new(UInt256).Set(p.ProtocolFeesOwed0)
	c.ProtocolFeesOwed1 = new(UInt256).Set(p.ProtocolFeesOwed1)
	c.Token0TransferFee = new(UInt256).Set(p.Token0TransferFee)
	c.Token1TransferFee = new(UInt256).Set(p.Token1TransferFee)
	c.MaxLiquidityPerTick = new(UInt256).Set(p.MaxLiquidityPerTick)
	c.Reserves0 = new(UInt256).Set(p.Reserves0)
	c.Reserves1 = new(UInt256).Set(p.Reserves1)
	c.SwapVolume0AllTime = new(UInt256).Set(p.SwapVolume0AllTime)
	c.SwapVolume1AllTime = new(UInt256).Set(p.SwapVolume1AllTime)
	c.GeneratedSwapFee0 = new(UInt256).Set(p.GeneratedSwapFee0)
	c.GeneratedSwapFee1 = new(UInt256).Set(p.GeneratedSwapFee1)
	return &c
}

// TickInfo is the per-tick bookkeeping kept only for initialized ticks.
type TickInfo struct {
	LiquidityGross *UInt256 // U128
	LiquidityNet   *Int256  // signed i128, widened for headroom

	FeeGrowthOutside0X128 *UInt256
	FeeGrowthOutside1X128 *UInt256
}

func newTickInfo() *TickInfo {
	return &TickInfo{
		LiquidityGross:        new(UInt256),
		LiquidityNet:          new(big.Int),
		FeeGrowthOutside0X128: new(UInt256),
		FeeGrowthOutside1X128: new(UInt256),
	}
}

// PositionKey identifies a position by its owner, pool, and tick range.
type PositionKey struct {
	Owner     TokenID
	Pool      PoolId
	TickLower int32
	TickUpper int32
}

// ID returns the content-addressed digest used as the position table's
// map key, the same pattern PoolId.ID uses.
func (k PositionKey) ID() common.Hash {
	h := blake3.New()
	h.Write(k.Owner.Bytes())
	poolID := k.Pool.ID()
	h.Write(poolID[:])
	writeInt32(h, k.TickLower)
	writeInt32(h, k.TickUpper)
	return common.BytesToHash(h.Sum(nil))
}

func writeInt32(h *blake3.Hasher, v int32) {
	var b [4]byte
	u := uint32(v)
	b[0], b[1], b[2], b[3] = byte(u>>24), byte(u>>16), byte(u>>8), byte(u)
	h.Write(b[:])
}

// Position is the mutable record of a single liquidity position.
type Position struct {
	Key PositionKey

	Liquidity *UInt256 // U128

	FeeGrowthInside0LastX128 *UInt256
	FeeGrowthInside1LastX128 *UInt256

	FeesOwed0 *UInt256
	FeesOwed1 *UInt256
}

func newPosition(key PositionKey) *Position {
	return &Position{
		Key:                      key,
		Liquidity:                new(UInt256),
		FeeGrowthInside0LastX128: new(UInt256),
		FeeGrowthInside1LastX128: new(UInt256),
		FeesOwed0:                new(UInt256),
		FeesOwed1:                new(UInt256),
	}
}

// IsEmpty reports whether a position carries no liquidity and no owed
// fees, the condition under which burn removes it from the table.
func (p *Position) IsEmpty() bool {
	return p.Liquidity.IsZero() && p.FeesOwed0.IsZero() && p.FeesOwed1.IsZero()
}

// Balance is an external-facing (token, amount) pair, used as the
// argument to withdraw and as a read-only projection of user_balance.
type Balance struct {
	Token  TokenID
	Amount *UInt256
}

// PathKey is one hop of a multi-hop swap path: the fee tier of the pool
// to traverse next, and the token reached by traversing it.
type PathKey struct {
	Fee                uint32
	IntermediaryToken TokenID
}

// ZeroForOneTo resolves the pool and swap direction for traversing this
// hop starting from tokenIn, mirroring the canonical (pool_id,
// zero_for_one) derivation used by every hop in a path.
func (k PathKey) ZeroForOneTo(tokenIn TokenID) (PoolId, bool, error) {
	poolID, err := NewPoolId(tokenIn, k.IntermediaryToken, k.Fee)
	if err != nil {
		return PoolId{}, false, err
	}
	zeroForOne := tokenIn == poolID.Token0
	return poolID, zeroForOne, nil
}

// SwapDirection distinguishes exact-input from exact-output swaps.
type SwapDirection uint8

const (
	ExactInput SwapDirection = iota
	ExactOutput
)

// BalanceDelta is the signed change to a pool's token0/token1 reserves
// produced by a single operation: positive means the pool received the
// token, negative means it paid it out.
type BalanceDelta struct {
	Amount0 *Int256
	Amount1 *Int256
}

func newBalanceDelta() BalanceDelta {
	return BalanceDelta{Amount0: new(big.Int), Amount1: new(big.Int)}
}
