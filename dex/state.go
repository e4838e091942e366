// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

// State wires together every table this core maintains: pools and
// their ticks, positions, the internal balance ledger, the principal
// guard, and the event log. Orchestrator methods are defined on State.
type State struct {
	Pools     *poolTable
	Positions *positionTable
	Balances  *BalanceLedger
	Guard     *PrincipalGuard
	Events    *EventLog
}

// NewState wires a fresh State around the given external token ledger.
func NewState(external TokenLedger) *State {
	return &State{
		Pools:     newPoolTable(),
		Positions: newPositionTable(),
		Balances:  NewBalanceLedger(external),
		Guard:     NewPrincipalGuard(),
		Events:    NewEventLog(),
	}
}

// Snapshot is a point-in-time deep copy of pool and position state,
// taken before a speculative mutation so it can be restored if a later
// step in the same operation fails. The balance ledger and event log
// are not part of a snapshot: every caller that needs to undo a ledger
// mutation does so explicitly (refunding a deposit, re-crediting a
// debit), since those mutations cross the external-ledger boundary and
// cannot be rolled back by swapping a pointer.
type Snapshot struct {
	pools     *poolTable
	positions *positionTable
}

// Snapshot captures the current pool and position tables.
func (s *State) Snapshot() *Snapshot {
	return &Snapshot{
		pools:     s.Pools.clone(),
		positions: s.Positions.clone(),
	}
}

// Restore replaces the live pool and position tables with a
// previously captured snapshot, discarding any mutation made since.
func (s *State) Restore(snap *Snapshot) {
	s.Pools = snap.pools
	s.Positions = snap.positions
}
