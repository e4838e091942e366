// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import "github.com/luxfi/geth/common"

// positionTable indexes every open position by its content-addressed
// PositionKey digest.
type positionTable struct {
	positions map[common.Hash]*Position
}

func newPositionTable() *positionTable {
	return &positionTable{positions: make(map[common.Hash]*Position)}
}

func (pt *positionTable) Get(key PositionKey) (*Position, bool) {
	p, ok := pt.positions[key.ID()]
	return p, ok
}

// GetOrCreate returns the existing position for key, or a fresh
// zero-liquidity one if none exists yet.
func (pt *positionTable) GetOrCreate(key PositionKey) *Position {
	id := key.ID()
	if p, ok := pt.positions[id]; ok {
		return p
	}
	p := newPosition(key)
	pt.positions[id] = p
	return p
}

func (pt *positionTable) Set(p *Position) {
	pt.positions[p.Key.ID()] = p
}

func (pt *positionTable) Delete(key PositionKey) {
	delete(pt.positions, key.ID())
}

// ByOwner returns every open position keyed to owner, in no particular
// order; callers that need a stable order sort by Pool/TickLower.
func (pt *positionTable) ByOwner(owner TokenID) []*Position {
	out := make([]*Position, 0)
	for _, p := range pt.positions {
		if p.Key.Owner == owner {
			out = append(out, p)
		}
	}
	return out
}

// All returns every open position in the table, in no particular
// order; callers that need a stable order sort by Owner/Pool/TickLower.
func (pt *positionTable) All() []*Position {
	out := make([]*Position, 0, len(pt.positions))
	for _, p := range pt.positions {
		out = append(out, p)
	}
	return out
}

func (pt *positionTable) clone() *positionTable {
	c := newPositionTable()
	for k, p := range pt.positions {
		cp := *p
		cp.Liquidity = new(UInt256).Set(p.Liquidity)
		cp.FeeGrowthInside0LastX128 = new(UInt256).Set(p.FeeGrowthInside0LastX128)
		cp.FeeGrowthInside1LastX128 = new(UInt256).Set(p.FeeGrowthInside1LastX128)
		cp.FeesOwed0 = new(UInt256).Set(p.FeesOwed0)
		cp.FeesOwed1 = new(UInt256).Set(p.FeesOwed1)
		c.positions[k] = &cp
	}
	return c
}
