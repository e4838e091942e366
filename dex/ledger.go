// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"context"
	"fmt"
)

// TokenLedger is the external ledger this core pulls deposits from and
// pushes withdrawals to. Implementations typically wrap a ledger/ICRC-
// style transfer interface; this package never imports one directly.
// Both methods disclose the transfer fee the ledger actually charged
// (zero for a fee-free token), since a fixed, out-of-band transfer fee
// is the one fee-on-transfer behavior this core accounts for.
type TokenLedger interface {
	// TransferFrom pulls amount of token from from into to, mirroring
	// an ERC20-style transferFrom/allowance check. to is always this
	// core's own custody identity, CoreAccount.
	TransferFrom(ctx context.Context, token, from, to TokenID, amount *UInt256) (fee *UInt256, err error)
	// Transfer pushes amount of token from this core's custody to to.
	Transfer(ctx context.Context, token, to TokenID, amount *UInt256) (fee *UInt256, err error)
}

// CoreAccount is the principal a TokenLedger implementation should
// treat as this core's own custody: the destination BalanceLedger
// passes as TransferFrom's to, and the implicit source of a Transfer.
var CoreAccount TokenID

// balanceKey identifies one (user, token) slot in the internal ledger.
type balanceKey struct {
	User  TokenID
	Token TokenID
}

func (k balanceKey) String() string {
	return fmt.Sprintf("%s/%s", k.User.Hex(), k.Token.Hex())
}

// BalanceLedger tracks internal credit balances per (user, token),
// separate from the external TokenLedger's own accounting: a deposit
// pulls funds into this core's custody and credits an internal
// balance; a withdraw debits that balance and pushes funds back out.
// Pool reserves are tracked independently on PoolState and are never
// read from here.
type BalanceLedger struct {
	balances map[balanceKey]*UInt256
	fees     map[TokenID]*UInt256 // last-observed external transfer fee, per token
	external TokenLedger
}

// NewBalanceLedger wires a BalanceLedger to the external token ledger
// it pulls deposits from and pushes withdrawals to.
func NewBalanceLedger(external TokenLedger) *BalanceLedger {
	return &BalanceLedger{
		balances: make(map[balanceKey]*UInt256),
		fees:     make(map[TokenID]*UInt256),
		external: external,
	}
}

// TransferFeeOf reports the most recently observed external transfer
// fee for token, or zero if the ledger has never moved that token yet.
func (l *BalanceLedger) TransferFeeOf(token TokenID) *UInt256 {
	fee, ok := l.fees[token]
	if !ok {
		return new(UInt256)
	}
	return new(UInt256).Set(fee)
}

func (l *BalanceLedger) observeFee(token TokenID, fee *UInt256) {
	if fee == nil {
		return
	}
	l.fees[token] = new(UInt256).Set(fee)
}

// netOfFee returns amount minus fee, floored at zero rather than
// wrapping if the disclosed fee exceeds the amount it was charged on.
func netOfFee(amount, fee *UInt256) *UInt256 {
	if fee == nil || fee.IsZero() {
		return new(UInt256).Set(amount)
	}
	if fee.Cmp(amount) >= 0 {
		return new(UInt256)
	}
	return new(UInt256).Sub(amount, fee)
}

func (l *BalanceLedger) balanceOf(user, token TokenID) *UInt256 {
	key := balanceKey{User: user, Token: token}
	bal, ok := l.balances[key]
	if !ok {
		return new(UInt256)
	}
	return bal
}

// BalanceOf returns user's internal credit balance for token.
func (l *BalanceLedger) BalanceOf(user, token TokenID) *UInt256 {
	return new(UInt256).Set(l.balanceOf(user, token))
}

// BalancesOf returns every nonzero internal credit balance held by
// user, in no particular order; callers that need a stable order sort
// by Token.
func (l *BalanceLedger) BalancesOf(user TokenID) []Balance {
	out := make([]Balance, 0)
	for key, bal := range l.balances {
		if key.User == user && bal.Sign() > 0 {
			out = append(out, Balance{Token: key.Token, Amount: new(UInt256).Set(bal)})
		}
	}
	return out
}

// All returns every nonzero internal credit balance in the ledger,
// across every user, in no particular order.
func (l *BalanceLedger) All() []UserBalance {
	out := make([]UserBalance, 0)
	for key, bal := range l.balances {
		if bal.Sign() > 0 {
			out = append(out, UserBalance{User: key.User, Token: key.Token, Amount: new(UInt256).Set(bal)})
		}
	}
	return out
}

// UserBalance pairs a (user, token) pair with an internal credit
// balance, returned from whole-ledger enumeration.
type UserBalance struct {
	User   TokenID
	Token  TokenID
	Amount *UInt256
}

func (l *BalanceLedger) credit(user, token TokenID, amount *UInt256) {
	key := balanceKey{User: user, Token: token}
	l.balances[key] = new(UInt256).Add(l.balanceOf(user, token), amount)
}

func (l *BalanceLedger) debit(user, token TokenID, amount *UInt256) error {
	current := l.balanceOf(user, token)
	if current.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	key := balanceKey{User: user, Token: token}
	l.balances[key] = new(UInt256).Sub(current, amount)
	return nil
}

// Deposit pulls amount of token from user via the external ledger and
// credits user's internal balance with amount minus whatever transfer
// fee the ledger disclosed for the pull. Wrapped in a DepositError on
// failure so callers can distinguish an external-transfer failure from
// every other kind of error along the operation path.
func (l *BalanceLedger) Deposit(ctx context.Context, user, token TokenID, amount *UInt256) error {
	if amount.IsZero() {
		return nil
	}
	fee, err := l.external.TransferFrom(ctx, token, user, CoreAccount, amount)
	if err != nil {
		return &DepositError{Reason: err}
	}
	l.observeFee(token, fee)
	l.credit(user, token, netOfFee(amount, fee))
	return nil
}

// Withdraw debits user's internal balance by the full amount and
// pushes amount minus the last-observed transfer fee for token back
// out via the external ledger, so the fee the ledger charges on the
// way out is absorbed rather than billed twice. If the external
// transfer fails after the debit has already been decided, the
// balance is restored before returning so a failed withdrawal never
// silently burns funds.
func (l *BalanceLedger) Withdraw(ctx context.Context, user, token TokenID, amount *UInt256) error {
	if amount.IsZero() {
		return nil
	}
	if err := l.debit(user, token, amount); err != nil {
		return err
	}
	pushAmount := netOfFee(amount, l.TransferFeeOf(token))
	fee, err := l.external.Transfer(ctx, token, user, pushAmount)
	if err != nil {
		l.credit(user, token, amount)
		return &WithdrawError{Reason: err}
	}
	l.observeFee(token, fee)
	return nil
}

// CreditInternal adds amount to user's internal balance without moving
// funds through the external ledger, used when a swap or decrease
// settles by book-entry against a caller who is about to withdraw in
// the same operation.
func (l *BalanceLedger) CreditInternal(user, token TokenID, amount *UInt256) {
	if amount.IsZero() {
		return
	}
	l.credit(user, token, amount)
}

// DebitInternal is the book-entry counterpart to CreditInternal.
func (l *BalanceLedger) DebitInternal(user, token TokenID, amount *UInt256) error {
	if amount.IsZero() {
		return nil
	}
	return l.debit(user, token, amount)
}
