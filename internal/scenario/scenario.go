// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scenario drives a dex.State through a scripted sequence of
// operations described by a JSON file, the way an integration harness
// would exercise the core end to end without a real chain underneath
// it.
package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/Appic-Solutions/appic-dex/dex"
	"github.com/Appic-Solutions/appic-dex/internal/vault"
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap"
)

// Seed credits a principal's external balance before any operation
// runs, so a later deposit has something to pull from.
type Seed struct {
	Owner  string `json:"owner"`
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// PathHop is one hop of a route_swap/route_quote operation's path,
// mirroring dex.PathKey with JSON-friendly fields.
type PathHop struct {
	Fee               uint32 `json:"fee"`
	IntermediaryToken string `json:"intermediary_token"`
}

// Operation is one step of a scenario. Only the fields relevant to
// its Type are read; the rest are ignored.
type Operation struct {
	Type string `json:"type"`

	Creator string `json:"creator"`
	Owner   string `json:"owner"`
	Trader  string `json:"trader"`
	User    string `json:"user"`

	Token0  string `json:"token0"`
	Token1  string `json:"token1"`
	Token   string `json:"token"`
	TokenIn string `json:"token_in"`
	Fee     uint32 `json:"fee"`

	SqrtPriceX96      string   `json:"sqrt_price_x96"`
	SqrtPriceLimitX96 string   `json:"sqrt_price_limit_x96"`
	SqrtPriceLimits   []string `json:"sqrt_price_limits"`

	TickLower int32 `json:"tick_lower"`
	TickUpper int32 `json:"tick_upper"`

	Amount          string    `json:"amount"`
	Amount0Desired  string    `json:"amount0_desired"`
	Amount1Desired  string    `json:"amount1_desired"`
	Amount0Min      string    `json:"amount0_min"`
	Amount1Min      string    `json:"amount1_min"`
	LiquidityDelta  string    `json:"liquidity_delta"`
	Amount0Req      string    `json:"amount0_requested"`
	Amount1Req      string    `json:"amount1_requested"`
	ZeroForOne      bool      `json:"zero_for_one"`
	AmountSpecified string    `json:"amount_specified"`
	AmountOutMin    string    `json:"amount_out_min"`
	AmountInMax     string    `json:"amount_in_max"`
	Path            []PathHop `json:"path"`

	Start  uint64 `json:"start"`
	Length uint64 `json:"length"`
}

// Script is the top-level shape of a scenario file.
type Script struct {
	Seeds      []Seed      `json:"seed"`
	Operations []Operation `json:"operations"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var script Script
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &script, nil
}

func addr(s string) dex.TokenID {
	return common.HexToAddress(s)
}

func u256(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}

func pathFrom(hops []PathHop) []dex.PathKey {
	path := make([]dex.PathKey, len(hops))
	for i, h := range hops {
		path[i] = dex.PathKey{Fee: h.Fee, IntermediaryToken: addr(h.IntermediaryToken)}
	}
	return path
}

func priceLimitsFrom(raw []string, hops int) ([]*uint256.Int, error) {
	limits := make([]*uint256.Int, hops)
	for i, s := range raw {
		if i >= hops || s == "" {
			continue
		}
		v, err := u256(s)
		if err != nil {
			return nil, err
		}
		limits[i] = v
	}
	return limits, nil
}

func signed(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("parse signed amount %q", s)
	}
	return v, nil
}

// Run executes every operation in script against a fresh State
// wired to an in-memory vault, logging each step's outcome.
func Run(ctx context.Context, script *Script, logger *zap.Logger) error {
	v := vault.New()
	for _, seed := range script.Seeds {
		amount, err := u256(seed.Amount)
		if err != nil {
			return err
		}
		v.Seed(addr(seed.Owner), addr(seed.Token), amount)
		logger.Info("seeded balance", zap.String("owner", seed.Owner), zap.String("token", seed.Token), zap.String("amount", seed.Amount))
	}

	state := dex.NewState(v)

	for i, op := range script.Operations {
		if err := runOne(ctx, state, op, logger); err != nil {
			return fmt.Errorf("operation %d (%s): %w", i, op.Type, err)
		}
	}
	return nil
}

func runOne(ctx context.Context, state *dex.State, op Operation, logger *zap.Logger) error {
	switch op.Type {
	case "create_pool":
		sqrtPrice, err := u256(op.SqrtPriceX96)
		if err != nil {
			return err
		}
		poolID, err := state.CreatePool(addr(op.Creator), addr(op.Token0), addr(op.Token1), op.Fee, sqrtPrice)
		if err != nil {
			return err
		}
		logger.Info("created pool", zap.String("id", poolID.ID().Hex()), zap.Uint32("fee", op.Fee))

	case "deposit":
		amount, err := u256(op.Amount)
		if err != nil {
			return err
		}
		if err := state.Deposit(ctx, addr(op.User), addr(op.Token), amount); err != nil {
			return err
		}
		logger.Info("deposited", zap.String("user", op.User), zap.String("token", op.Token), zap.String("amount", op.Amount))

	case "withdraw":
		amount, err := u256(op.Amount)
		if err != nil {
			return err
		}
		if err := state.Withdraw(ctx, addr(op.User), addr(op.Token), amount); err != nil {
			return err
		}
		logger.Info("withdrew", zap.String("user", op.User), zap.String("token", op.Token), zap.String("amount", op.Amount))

	case "mint":
		poolID, err := dex.NewPoolId(addr(op.Token0), addr(op.Token1), op.Fee)
		if err != nil {
			return err
		}
		amt0, err := u256(op.Amount0Desired)
		if err != nil {
			return err
		}
		amt1, err := u256(op.Amount1Desired)
		if err != nil {
			return err
		}
		min0, err := u256(op.Amount0Min)
		if err != nil {
			return err
		}
		min1, err := u256(op.Amount1Min)
		if err != nil {
			return err
		}
		result, err := state.MintPosition(addr(op.Owner), dex.MintParams{
			PoolID: poolID, TickLower: op.TickLower, TickUpper: op.TickUpper,
			Amount0Desired: amt0, Amount1Desired: amt1, Amount0Min: min0, Amount1Min: min1,
		})
		if err != nil {
			return err
		}
		logger.Info("minted position", zap.String("owner", op.Owner), zap.String("liquidity", result.Liquidity.Dec()))

	case "decrease_liquidity":
		poolID, err := dex.NewPoolId(addr(op.Token0), addr(op.Token1), op.Fee)
		if err != nil {
			return err
		}
		liq, err := u256(op.LiquidityDelta)
		if err != nil {
			return err
		}
		min0, err := u256(op.Amount0Min)
		if err != nil {
			return err
		}
		min1, err := u256(op.Amount1Min)
		if err != nil {
			return err
		}
		key := dex.PositionKey{Owner: addr(op.Owner), Pool: poolID, TickLower: op.TickLower, TickUpper: op.TickUpper}
		delta, err := state.DecreaseLiquidity(ctx, addr(op.Owner), key, liq, min0, min1)
		if err != nil {
			return err
		}
		logger.Info("decreased liquidity", zap.String("owner", op.Owner), zap.String("amount0", delta.Amount0.String()), zap.String("amount1", delta.Amount1.String()))

	case "collect_fees":
		poolID, err := dex.NewPoolId(addr(op.Token0), addr(op.Token1), op.Fee)
		if err != nil {
			return err
		}
		req0, err := u256(op.Amount0Req)
		if err != nil {
			return err
		}
		req1, err := u256(op.Amount1Req)
		if err != nil {
			return err
		}
		key := dex.PositionKey{Owner: addr(op.Owner), Pool: poolID, TickLower: op.TickLower, TickUpper: op.TickUpper}
		amount0, amount1, err := state.CollectFees(ctx, addr(op.Owner), key, req0, req1)
		if err != nil {
			return err
		}
		logger.Info("collected fees", zap.String("owner", op.Owner), zap.String("amount0", amount0.Dec()), zap.String("amount1", amount1.Dec()))

	case "burn":
		poolID, err := dex.NewPoolId(addr(op.Token0), addr(op.Token1), op.Fee)
		if err != nil {
			return err
		}
		key := dex.PositionKey{Owner: addr(op.Owner), Pool: poolID, TickLower: op.TickLower, TickUpper: op.TickUpper}
		if err := state.BurnPosition(addr(op.Owner), key); err != nil {
			return err
		}
		logger.Info("burnt position", zap.String("owner", op.Owner))

	case "swap":
		poolID, err := dex.NewPoolId(addr(op.Token0), addr(op.Token1), op.Fee)
		if err != nil {
			return err
		}
		amountSpecified, err := signed(op.AmountSpecified)
		if err != nil {
			return err
		}
		limit, err := u256(op.SqrtPriceLimitX96)
		if err != nil {
			return err
		}
		outMin, err := u256(op.AmountOutMin)
		if err != nil {
			return err
		}
		inMax, err := u256(op.AmountInMax)
		if err != nil {
			return err
		}
		result, err := state.Swap(ctx, dex.SwapRequest{
			Trader: addr(op.Trader), PoolID: poolID, ZeroForOne: op.ZeroForOne,
			AmountSpecified: amountSpecified, SqrtPriceLimitX96: limit,
			AmountOutMin: outMin, AmountInMax: inMax,
		})
		if err != nil {
			return err
		}
		logger.Info("swapped", zap.String("trader", op.Trader), zap.String("amount0", result.Delta.Amount0.String()), zap.String("amount1", result.Delta.Amount1.String()), zap.Int32("tick_after", result.Tick))

	case "quote":
		poolID, err := dex.NewPoolId(addr(op.Token0), addr(op.Token1), op.Fee)
		if err != nil {
			return err
		}
		amountSpecified, err := signed(op.AmountSpecified)
		if err != nil {
			return err
		}
		limit, err := u256(op.SqrtPriceLimitX96)
		if err != nil {
			return err
		}
		result, err := state.Quote(poolID, op.ZeroForOne, amountSpecified, limit)
		if err != nil {
			return err
		}
		logger.Info("quoted", zap.String("amount0", result.Delta.Amount0.String()), zap.String("amount1", result.Delta.Amount1.String()))

	case "route_swap":
		path := pathFrom(op.Path)
		amountSpecified, err := signed(op.AmountSpecified)
		if err != nil {
			return err
		}
		limits, err := priceLimitsFrom(op.SqrtPriceLimits, len(path))
		if err != nil {
			return err
		}
		outMin, err := u256(op.AmountOutMin)
		if err != nil {
			return err
		}
		inMax, err := u256(op.AmountInMax)
		if err != nil {
			return err
		}
		outputAmount, results, err := state.RouteSwap(ctx, dex.MultiHopSwapRequest{
			Trader: addr(op.Trader), TokenIn: addr(op.TokenIn), Path: path,
			AmountSpecified: amountSpecified, SqrtPriceLimits: limits,
			AmountOutMin: outMin, AmountInMax: inMax,
		})
		if err != nil {
			return err
		}
		logger.Info("routed swap", zap.String("trader", op.Trader), zap.Int("hops", len(results)), zap.String("amount_out", outputAmount.Dec()))

	case "route_quote":
		path := pathFrom(op.Path)
		amountSpecified, err := signed(op.AmountSpecified)
		if err != nil {
			return err
		}
		limits, err := priceLimitsFrom(op.SqrtPriceLimits, len(path))
		if err != nil {
			return err
		}
		amountOut, results, err := state.RouteQuote(addr(op.TokenIn), path, amountSpecified, limits)
		if err != nil {
			return err
		}
		logger.Info("route quoted", zap.Int("hops", len(results)), zap.String("amount_out", amountOut.Dec()))

	case "events":
		events, total := state.Events.Since(op.Start, op.Length)
		logger.Info("events", zap.Uint64("start", op.Start), zap.Int("returned", len(events)), zap.Uint64("total", total))

	case "pools":
		for _, rec := range state.AllPools() {
			logger.Info("pool", zap.String("id", rec.ID.ID().Hex()), zap.String("sqrt_price_x96", rec.State.SqrtPriceX96.Dec()), zap.Int32("tick", rec.State.Tick))
		}

	case "positions":
		for _, p := range state.PositionsByOwner(addr(op.Owner)) {
			logger.Info("position", zap.String("owner", op.Owner), zap.String("pool", p.Key.Pool.ID().Hex()),
				zap.Int32("tick_lower", p.Key.TickLower), zap.Int32("tick_upper", p.Key.TickUpper), zap.String("liquidity", p.Liquidity.Dec()))
		}

	default:
		return fmt.Errorf("unknown operation type %q", op.Type)
	}
	return nil
}
