// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"sync"

	"github.com/luxfi/geth/common"
)

// PrincipalGuard enforces that a given caller has at most one
// non-swap operation in flight at a time. Swaps get a narrower rule:
// a principal may have several swaps in flight concurrently, each
// tagged with its own orchestrator-assigned sequence number, as long
// as no two of them touch an overlapping set of pools. A swap's pools
// are claimed against every other in-flight swap, from any principal;
// non-swap operations claim no pools. A swap still excludes a non-swap
// operation from the same principal, so a mint or withdraw never races
// a swap's own balance movements.
type PrincipalGuard struct {
	mu          sync.Mutex
	principals  map[TokenID]struct{}
	pools       map[common.Hash]struct{}
	swapSeqs    map[TokenID]map[uint64]struct{}
	nextSwapSeq uint64
}

// NewPrincipalGuard builds an empty guard.
func NewPrincipalGuard() *PrincipalGuard {
	return &PrincipalGuard{
		principals: make(map[TokenID]struct{}),
		pools:      make(map[common.Hash]struct{}),
		swapSeqs:   make(map[TokenID]map[uint64]struct{}),
	}
}

// release is returned by every Acquire* call. Callers must defer it
// immediately after a successful acquisition so the lock is released
// on every exit path, including a panic unwinding through the defer.
type release func()

// AcquirePrincipal locks out any other operation from the same caller
// until the release is called, failing with ErrLockedPrincipal if the
// caller already has one in flight.
func (g *PrincipalGuard) AcquirePrincipal(principal TokenID) (release, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, locked := g.principals[principal]; locked {
		return nil, ErrLockedPrincipal
	}
	if len(g.swapSeqs[principal]) > 0 {
		return nil, ErrLockedPrincipal
	}
	g.principals[principal] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.principals, principal)
		})
	}, nil
}

// AcquireSwap admits a swap from principal touching poolIDs, tagging
// it with a fresh orchestrator-assigned sequence number. It fails with
// ErrLockedPrincipal if principal has a non-swap operation in flight,
// or if any of poolIDs is already claimed by another in-flight swap
// (from any principal) — but a second, third, ... concurrent swap from
// the same principal is admitted so long as its pool set is disjoint
// from every other swap currently in flight.
func (g *PrincipalGuard) AcquireSwap(principal TokenID, poolIDs []PoolId) (release, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, locked := g.principals[principal]; locked {
		return nil, ErrLockedPrincipal
	}

	keys := make([]common.Hash, len(poolIDs))
	for i, id := range poolIDs {
		key := id.ID()
		if _, busy := g.pools[key]; busy {
			return nil, ErrLockedPrincipal
		}
		keys[i] = key
	}

	g.nextSwapSeq++
	seq := g.nextSwapSeq
	seqs, ok := g.swapSeqs[principal]
	if !ok {
		seqs = make(map[uint64]struct{})
		g.swapSeqs[principal] = seqs
	}
	seqs[seq] = struct{}{}
	for _, key := range keys {
		g.pools[key] = struct{}{}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.swapSeqs[principal], seq)
			if len(g.swapSeqs[principal]) == 0 {
				delete(g.swapSeqs, principal)
			}
			for _, key := range keys {
				delete(g.pools, key)
			}
		})
	}, nil
}
