// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vault provides an in-memory dex.TokenLedger, standing in for
// the real custody contract or chain account this core would normally
// pull deposits from and push withdrawals to.
package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/Appic-Solutions/appic-dex/dex"
	"github.com/holiman/uint256"
)

// Vault is a book-keeping TokenLedger backed by an in-memory balance
// table. Seed credits a principal's external balance so a scenario
// can fund its first deposit; TransferFrom/Transfer then move funds
// between a principal and the vault's own custody account as the
// core core pulls deposits in and pushes withdrawals out.
type Vault struct {
	mu       sync.Mutex
	balances map[dex.TokenID]map[dex.TokenID]*uint256.Int // owner -> token -> balance
}

// New returns an empty Vault.
func New() *Vault {
	return &Vault{balances: make(map[dex.TokenID]map[dex.TokenID]*uint256.Int)}
}

// Seed credits owner's external balance of token by amount, without
// going through TransferFrom. Used to fund a scenario's starting
// state before any deposit is made.
func (v *Vault) Seed(owner, token dex.TokenID, amount *uint256.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.credit(owner, token, amount)
}

// BalanceOf reports owner's current external balance of token.
func (v *Vault) BalanceOf(owner, token dex.TokenID) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(uint256.Int).Set(v.balanceOf(owner, token))
}

func (v *Vault) balanceOf(owner, token dex.TokenID) *uint256.Int {
	byToken, ok := v.balances[owner]
	if !ok {
		return new(uint256.Int)
	}
	bal, ok := byToken[token]
	if !ok {
		return new(uint256.Int)
	}
	return bal
}

func (v *Vault) credit(owner, token dex.TokenID, amount *uint256.Int) {
	byToken, ok := v.balances[owner]
	if !ok {
		byToken = make(map[dex.TokenID]*uint256.Int)
		v.balances[owner] = byToken
	}
	bal := v.balanceOf(owner, token)
	byToken[token] = new(uint256.Int).Add(bal, amount)
}

// TransferFrom pulls amount of token from from into to, implementing
// dex.TokenLedger. to is always dex.CoreAccount in practice, but the
// vault honors whatever destination it is given. The vault itself
// charges no transfer fee, so fee is always zero.
func (v *Vault) TransferFrom(ctx context.Context, token, from, to dex.TokenID, amount *uint256.Int) (*uint256.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	bal := v.balanceOf(from, token)
	if bal.Cmp(amount) < 0 {
		return nil, fmt.Errorf("vault: %s has insufficient external balance of %s", from.Hex(), token.Hex())
	}
	byToken := v.balances[from]
	byToken[token] = new(uint256.Int).Sub(bal, amount)
	v.credit(to, token, amount)
	return new(uint256.Int), nil
}

// Transfer pushes amount of token from the vault's own custody
// (dex.CoreAccount) to to, implementing dex.TokenLedger.
func (v *Vault) Transfer(ctx context.Context, token, to dex.TokenID, amount *uint256.Int) (*uint256.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	bal := v.balanceOf(dex.CoreAccount, token)
	if bal.Cmp(amount) < 0 {
		return nil, fmt.Errorf("vault: custody account is short %s by %s", token.Hex(), new(uint256.Int).Sub(amount, bal))
	}
	byToken := v.balances[dex.CoreAccount]
	byToken[token] = new(uint256.Int).Sub(bal, amount)
	v.credit(to, token, amount)
	return new(uint256.Int), nil
}
