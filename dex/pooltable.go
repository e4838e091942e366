// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import "github.com/luxfi/geth/common"

// poolTable indexes every pool's state and tick table by PoolId digest.
// ids retains the plain PoolId behind each digest so the table can be
// enumerated without reversing the hash.
type poolTable struct {
	pools map[common.Hash]*PoolState
	ticks map[common.Hash]*tickTable
	ids   map[common.Hash]PoolId
}

func newPoolTable() *poolTable {
	return &poolTable{
		pools: make(map[common.Hash]*PoolState),
		ticks: make(map[common.Hash]*tickTable),
		ids:   make(map[common.Hash]PoolId),
	}
}

func (pt *poolTable) Get(id PoolId) (*PoolState, bool) {
	p, ok := pt.pools[id.ID()]
	return p, ok
}

func (pt *poolTable) Ticks(id PoolId) *tickTable {
	return pt.ticks[id.ID()]
}

// Create registers a brand-new pool, failing with ErrPoolAlreadyExists
// if one is already keyed under this PoolId.
func (pt *poolTable) Create(id PoolId, state *PoolState) error {
	key := id.ID()
	if _, exists := pt.pools[key]; exists {
		return ErrPoolAlreadyExists
	}
	pt.pools[key] = state
	pt.ticks[key] = newTickTable()
	pt.ids[key] = id
	return nil
}

// PoolRecord pairs a pool's identity with its current state, returned
// from table enumeration where the content-addressed digest alone isn't
// useful to a caller.
type PoolRecord struct {
	ID    PoolId
	State *PoolState
}

// All returns every registered pool's identity and current state, in no
// particular order; callers that need a stable order sort by PoolId.
func (pt *poolTable) All() []PoolRecord {
	out := make([]PoolRecord, 0, len(pt.pools))
	for key, state := range pt.pools {
		out = append(out, PoolRecord{ID: pt.ids[key], State: state})
	}
	return out
}

func (pt *poolTable) clone() *poolTable {
	c := newPoolTable()
	for k, p := range pt.pools {
		c.pools[k] = p.Clone()
	}
	for k, t := range pt.ticks {
		c.ticks[k] = t.clone()
	}
	for k, id := range pt.ids {
		c.ids[k] = id
	}
	return c
}
