// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Appic-Solutions/appic-dex/dex"
	"github.com/Appic-Solutions/appic-dex/internal/config"
	"github.com/Appic-Solutions/appic-dex/internal/logging"
	"github.com/Appic-Solutions/appic-dex/internal/scenario"
	"github.com/Appic-Solutions/appic-dex/internal/snapshot"
	"github.com/Appic-Solutions/appic-dex/internal/vault"
)

func main() {
	root := &cobra.Command{
		Use:          "ammcore",
		Short:        "Concentrated-liquidity AMM core runner",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("snapshot", "", "path to the on-disk session snapshot (default ammcore.snapshot)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Uint32("protocol-fee-fraction", 0, "default protocol fee fraction applied to pools created without an explicit override")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario file against a fresh in-memory core",
		RunE:  runScenario,
	}
	runCmd.Flags().String("scenario", "", "scenario JSON file describing pools, deposits, and operations")
	root.AddCommand(runCmd)

	root.AddCommand(createPoolCmd(), depositCmd(), mintCmd(), swapCmd(), quoteCmd(), poolsCmd(), positionsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// session opens the logger and the persisted dex.State for a single
// subcommand invocation: one process-lifetime State, carried across
// separate CLI invocations via a gob-encoded snapshot file (§4.10's
// Config.SnapshotPath) rather than a real chain or durable store.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	vault  *vault.Vault
	state  *dex.State
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dump, err := snapshot.Load(cfg.SnapshotPath)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	v := vault.New()
	state, err := dex.LoadDump(dump, v)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}

	return &session{cfg: cfg, logger: logger, vault: v, state: state}, nil
}

// close persists state back to the snapshot file and flushes the
// logger. Called on every exit path, including after a failed
// operation, so partial progress made before the failure is not lost.
func (s *session) close() error {
	defer s.logger.Sync()
	if err := snapshot.Save(s.cfg.SnapshotPath, s.state.Dump()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// withSession opens a session, runs fn against it, and always persists
// the result before returning — fn's own error takes precedence over a
// save failure, since a failed operation's error is more actionable.
func withSession(cmd *cobra.Command, fn func(*session) error) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	err = fn(sess)
	if cerr := sess.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func runScenario(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.ScenarioFile == "" {
		return fmt.Errorf("scenario file is required")
	}

	script, err := scenario.Load(cfg.ScenarioFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("scenario start", zap.String("file", cfg.ScenarioFile), zap.Int("operations", len(script.Operations)))
	if err := scenario.Run(ctx, script, logger); err != nil {
		logger.Error("scenario failed", zap.Error(err))
		return err
	}
	logger.Info("scenario complete")
	return nil
}

func parseU256(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}

// findPool resolves --pool, which names a pool by its content-addressed
// ID hex digest (as printed by the pools subcommand), against every
// pool currently known to state.
func findPool(state *dex.State, poolHex string) (dex.PoolId, error) {
	target := common.HexToHash(poolHex)
	for _, rec := range state.AllPools() {
		if rec.ID.ID() == target {
			return rec.ID, nil
		}
	}
	return dex.PoolId{}, fmt.Errorf("no pool with id %s", poolHex)
}

func createPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Create a new pool at an initial price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(sess *session) error {
				token0, _ := cmd.Flags().GetString("token0")
				token1, _ := cmd.Flags().GetString("token1")
				fee, _ := cmd.Flags().GetUint32("fee")
				sqrtPriceStr, _ := cmd.Flags().GetString("sqrt-price")
				sqrtPrice, err := parseU256(sqrtPriceStr)
				if err != nil {
					return err
				}

				// create-pool names no creator principal of its own;
				// the guard only needs a distinct admission slot, not
				// an identity with any further significance here.
				poolID, err := sess.state.CreatePool(dex.CoreAccount, common.HexToAddress(token0), common.HexToAddress(token1), fee, sqrtPrice)
				if err != nil {
					return err
				}
				if pool, ok := sess.state.Pools.Get(poolID); ok {
					pool.ProtocolFeeFraction = sess.cfg.DefaultProtocolFeeFraction
				}
				sess.logger.Info("created pool", zap.String("id", poolID.ID().Hex()), zap.Uint32("fee", fee))
				return nil
			})
		},
	}
	cmd.Flags().String("token0", "", "first token address")
	cmd.Flags().String("token1", "", "second token address")
	cmd.Flags().Uint32("fee", 0, "fee tier")
	cmd.Flags().String("sqrt-price", "", "initial sqrt price, Q64.96")
	return cmd
}

func depositCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Fund and deposit tokens into the core's internal balance ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(sess *session) error {
				user, _ := cmd.Flags().GetString("user")
				token, _ := cmd.Flags().GetString("token")
				amountStr, _ := cmd.Flags().GetString("amount")
				amount, err := parseU256(amountStr)
				if err != nil {
					return err
				}

				userAddr, tokenAddr := common.HexToAddress(user), common.HexToAddress(token)
				// No chain backs this CLI: the operator's deposit is
				// itself the source of funds, so it seeds the vault it
				// is about to pull from rather than requiring a
				// separate faucet step.
				sess.vault.Seed(userAddr, tokenAddr, amount)
				if err := sess.state.Deposit(context.Background(), userAddr, tokenAddr, amount); err != nil {
					return err
				}
				sess.logger.Info("deposited", zap.String("user", user), zap.String("token", token), zap.String("amount", amountStr))
				return nil
			})
		},
	}
	cmd.Flags().String("user", "", "depositing principal")
	cmd.Flags().String("token", "", "token address")
	cmd.Flags().String("amount", "", "amount to deposit")
	return cmd
}

func mintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Open a new position (fails if one already holds liquidity in that range)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(sess *session) error {
				user, _ := cmd.Flags().GetString("user")
				poolHex, _ := cmd.Flags().GetString("pool")
				lower, _ := cmd.Flags().GetInt32("lower")
				upper, _ := cmd.Flags().GetInt32("upper")
				amount0Str, _ := cmd.Flags().GetString("amount0-max")
				amount1Str, _ := cmd.Flags().GetString("amount1-max")

				poolID, err := findPool(sess.state, poolHex)
				if err != nil {
					return err
				}
				amount0, err := parseU256(amount0Str)
				if err != nil {
					return err
				}
				amount1, err := parseU256(amount1Str)
				if err != nil {
					return err
				}

				result, err := sess.state.MintPosition(common.HexToAddress(user), dex.MintParams{
					PoolID:         poolID,
					TickLower:      lower,
					TickUpper:      upper,
					Amount0Desired: amount0,
					Amount1Desired: amount1,
					Amount0Min:     new(uint256.Int),
					Amount1Min:     new(uint256.Int),
				})
				if err != nil {
					return err
				}
				sess.logger.Info("minted position", zap.String("user", user), zap.String("liquidity", result.Liquidity.Dec()))
				return nil
			})
		},
	}
	cmd.Flags().String("user", "", "position owner")
	cmd.Flags().String("pool", "", "pool id, as printed by the pools subcommand")
	cmd.Flags().Int32("lower", 0, "lower tick bound")
	cmd.Flags().Int32("upper", 0, "upper tick bound")
	cmd.Flags().String("amount0-max", "0", "maximum token0 to contribute")
	cmd.Flags().String("amount1-max", "0", "maximum token1 to contribute")
	return cmd
}

func swapArgs(cmd *cobra.Command) (*big.Int, bool, error) {
	amountStr, _ := cmd.Flags().GetString("amount")
	exactOutput, _ := cmd.Flags().GetBool("exact-output")
	amount, err := parseU256(amountStr)
	if err != nil {
		return nil, false, err
	}
	signedAmount := amount.ToBig()
	if exactOutput {
		signedAmount.Neg(signedAmount)
	}
	return signedAmount, exactOutput, nil
}

func swapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Execute a swap against a single pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(sess *session) error {
				user, _ := cmd.Flags().GetString("user")
				poolHex, _ := cmd.Flags().GetString("pool")
				zeroForOne, _ := cmd.Flags().GetBool("zero-for-one")
				minStr, _ := cmd.Flags().GetString("amount-minimum")
				maxStr, _ := cmd.Flags().GetString("amount-maximum")

				poolID, err := findPool(sess.state, poolHex)
				if err != nil {
					return err
				}
				signedAmount, exactOutput, err := swapArgs(cmd)
				if err != nil {
					return err
				}
				outMin, err := parseU256(minStr)
				if err != nil {
					return err
				}
				inMax, err := parseU256(maxStr)
				if err != nil {
					return err
				}
				if !exactOutput {
					inMax = new(uint256.Int)
				} else {
					outMin = new(uint256.Int)
				}

				result, err := sess.state.Swap(context.Background(), dex.SwapRequest{
					Trader:            common.HexToAddress(user),
					PoolID:            poolID,
					ZeroForOne:        zeroForOne,
					AmountSpecified:   signedAmount,
					SqrtPriceLimitX96: dex.DefaultPriceLimit(zeroForOne),
					AmountOutMin:      outMin,
					AmountInMax:       inMax,
				})
				if err != nil {
					return err
				}
				sess.logger.Info("swapped", zap.String("user", user),
					zap.String("amount0", result.Delta.Amount0.String()), zap.String("amount1", result.Delta.Amount1.String()),
					zap.Int32("tick_after", result.Tick))
				return nil
			})
		},
	}
	cmd.Flags().String("user", "", "trading principal")
	cmd.Flags().String("pool", "", "pool id, as printed by the pools subcommand")
	cmd.Flags().Bool("zero-for-one", true, "trade token0 for token1")
	cmd.Flags().String("amount", "", "exact input amount, or exact output amount with --exact-output")
	cmd.Flags().String("amount-minimum", "0", "minimum amount out accepted (exact-input only)")
	cmd.Flags().String("amount-maximum", "0", "maximum amount in accepted (exact-output only)")
	cmd.Flags().Bool("exact-output", false, "treat --amount as the exact output desired, rather than the exact input offered")
	return cmd
}

func quoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Report the outcome of a swap without mutating pool state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(sess *session) error {
				poolHex, _ := cmd.Flags().GetString("pool")
				zeroForOne, _ := cmd.Flags().GetBool("zero-for-one")

				poolID, err := findPool(sess.state, poolHex)
				if err != nil {
					return err
				}
				signedAmount, _, err := swapArgs(cmd)
				if err != nil {
					return err
				}

				result, err := sess.state.Quote(poolID, zeroForOne, signedAmount, dex.DefaultPriceLimit(zeroForOne))
				if err != nil {
					return err
				}
				sess.logger.Info("quoted", zap.String("amount0", result.Delta.Amount0.String()), zap.String("amount1", result.Delta.Amount1.String()),
					zap.Int32("tick_after", result.Tick))
				return nil
			})
		},
	}
	cmd.Flags().String("pool", "", "pool id, as printed by the pools subcommand")
	cmd.Flags().Bool("zero-for-one", true, "trade token0 for token1")
	cmd.Flags().String("amount", "", "exact input amount, or exact output amount with --exact-output")
	cmd.Flags().String("amount-minimum", "0", "unused by quote, accepted for flag parity with swap")
	cmd.Flags().String("amount-maximum", "0", "unused by quote, accepted for flag parity with swap")
	cmd.Flags().Bool("exact-output", false, "treat --amount as the exact output desired, rather than the exact input offered")
	return cmd
}

func poolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List every pool in the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(sess *session) error {
				for _, rec := range sess.state.AllPools() {
					sess.logger.Info("pool", zap.String("id", rec.ID.ID().Hex()),
						zap.String("token0", rec.ID.Token0.Hex()), zap.String("token1", rec.ID.Token1.Hex()), zap.Uint32("fee", rec.ID.Fee),
						zap.String("sqrt_price_x96", rec.State.SqrtPriceX96.Dec()), zap.Int32("tick", rec.State.Tick), zap.String("liquidity", rec.State.Liquidity.Dec()))
				}
				return nil
			})
		},
	}
}

func positionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List every open position belonging to an owner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(sess *session) error {
				owner, _ := cmd.Flags().GetString("owner")
				for _, p := range sess.state.PositionsByOwner(common.HexToAddress(owner)) {
					sess.logger.Info("position", zap.String("owner", owner), zap.String("pool", p.Key.Pool.ID().Hex()),
						zap.Int32("tick_lower", p.Key.TickLower), zap.Int32("tick_upper", p.Key.TickUpper), zap.String("liquidity", p.Liquidity.Dec()))
				}
				return nil
			})
		},
	}
	cmd.Flags().String("owner", "", "position owner")
	return cmd
}
