// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

// StateDump is a self-contained, gob-encodable capture of every pool,
// tick, position, and internal balance this core holds, used by an
// operator tool to carry one process-lifetime session across separate
// CLI invocations. The principal guard and event log are deliberately
// left out: a freshly started process holds no swap admissions, and
// replaying the event log on load would re-mint sequence numbers that
// were already committed by whatever process wrote the dump.
type StateDump struct {
	Pools     []PoolDump
	Positions []*Position
	Balances  []UserBalance
}

// PoolDump pairs a pool's identity and running state with its tick
// table, the unit PoolRecord doesn't carry since ticks live in a
// separate, unexported table keyed the same way.
type PoolDump struct {
	ID    PoolId
	State *PoolState
	Ticks []ActiveTick
}

// Dump captures every pool, position, and balance currently held.
func (s *State) Dump() StateDump {
	recs := s.Pools.All()
	pools := make([]PoolDump, len(recs))
	for i, rec := range recs {
		pools[i] = PoolDump{ID: rec.ID, State: rec.State.Clone(), Ticks: s.Pools.Ticks(rec.ID).ActiveTicks()}
	}
	return StateDump{
		Pools:     pools,
		Positions: s.Positions.All(),
		Balances:  s.Balances.All(),
	}
}

// LoadDump rebuilds a State from a previously captured dump, wired to
// external as its token ledger. Guard admissions start empty and the
// event log starts empty, as documented on StateDump.
func LoadDump(dump StateDump, external TokenLedger) (*State, error) {
	s := NewState(external)
	for _, pd := range dump.Pools {
		if err := s.Pools.Create(pd.ID, pd.State); err != nil {
			return nil, err
		}
		ticks := s.Pools.Ticks(pd.ID)
		for _, at := range pd.Ticks {
			ticks.SetTick(at.Tick, pd.State.TickSpacing, at.Info)
		}
	}
	for _, p := range dump.Positions {
		s.Positions.Set(p)
	}
	for _, ub := range dump.Balances {
		s.Balances.credit(ub.User, ub.Token, ub.Amount)
	}
	return s, nil
}
