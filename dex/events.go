// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import "sync"

// EventKind tags the variant payload carried by an Event.
type EventKind uint8

const (
	EventCreatedPool EventKind = iota
	EventMintedPosition
	EventIncreasedLiquidity
	EventDecreasedLiquidity
	EventBurntPosition
	EventCollectedFees
	EventSwap
)

// CreatedPoolPayload records a pool's creation.
type CreatedPoolPayload struct {
	PoolID       PoolId
	SqrtPriceX96 *UInt256
	Tick         int32
}

// MintedPositionPayload records a fresh position's opening.
type MintedPositionPayload struct {
	Owner     TokenID
	PoolID    PoolId
	TickLower int32
	TickUpper int32
	Liquidity *UInt256
	Delta     BalanceDelta
}

// IncreasedLiquidityPayload records liquidity added to a position.
type IncreasedLiquidityPayload struct {
	Owner     TokenID
	PoolID    PoolId
	TickLower int32
	TickUpper int32
	Liquidity *UInt256
	Delta     BalanceDelta
}

// DecreasedLiquidityPayload records liquidity removed from a position.
type DecreasedLiquidityPayload struct {
	Owner     TokenID
	PoolID    PoolId
	TickLower int32
	TickUpper int32
	Liquidity *UInt256
	Delta     BalanceDelta
}

// BurntPositionPayload records a fully-drained position's removal.
type BurntPositionPayload struct {
	Owner     TokenID
	PoolID    PoolId
	TickLower int32
	TickUpper int32
}

// CollectedFeesPayload records a fee withdrawal against a position.
type CollectedFeesPayload struct {
	Owner     TokenID
	PoolID    PoolId
	TickLower int32
	TickUpper int32
	Amount0   *UInt256
	Amount1   *UInt256
}

// SwapPayload records a completed swap, single-pool or multi-hop.
// ExactInput distinguishes the exact-input and exact-output variants;
// len(Path) > 1 distinguishes a multi-hop route from a single-pool swap.
type SwapPayload struct {
	Sender            TokenID
	Path              []PoolId
	ZeroForOne        []bool
	Delta             BalanceDelta
	SqrtPriceX96After []*UInt256
	TickAfter         []int32
	ExactInput        bool
}

// Event is one append-only log entry. Exactly one of the payload fields
// matching Kind is populated; the rest are nil.
type Event struct {
	Seq  uint64
	Kind EventKind

	CreatedPool        *CreatedPoolPayload
	MintedPosition     *MintedPositionPayload
	IncreasedLiquidity *IncreasedLiquidityPayload
	DecreasedLiquidity *DecreasedLiquidityPayload
	BurntPosition      *BurntPositionPayload
	CollectedFees      *CollectedFeesPayload
	Swap               *SwapPayload
}

// EventLog is an append-only, monotonically-ordered record of every
// state-changing operation the core has completed.
type EventLog struct {
	mu     sync.Mutex
	events []Event
	next   uint64
}

// NewEventLog builds an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) append(ev Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	ev.Seq = l.next
	l.next++
	l.events = append(l.events, ev)
	return ev
}

func (l *EventLog) EmitCreatedPool(p CreatedPoolPayload) Event {
	return l.append(Event{Kind: EventCreatedPool, CreatedPool: &p})
}

func (l *EventLog) EmitMintedPosition(p MintedPositionPayload) Event {
	return l.append(Event{Kind: EventMintedPosition, MintedPosition: &p})
}

func (l *EventLog) EmitIncreasedLiquidity(p IncreasedLiquidityPayload) Event {
	return l.append(Event{Kind: EventIncreasedLiquidity, IncreasedLiquidity: &p})
}

func (l *EventLog) EmitDecreasedLiquidity(p DecreasedLiquidityPayload) Event {
	return l.append(Event{Kind: EventDecreasedLiquidity, DecreasedLiquidity: &p})
}

func (l *EventLog) EmitBurntPosition(p BurntPositionPayload) Event {
	return l.append(Event{Kind: EventBurntPosition, BurntPosition: &p})
}

func (l *EventLog) EmitCollectedFees(p CollectedFeesPayload) Event {
	return l.append(Event{Kind: EventCollectedFees, CollectedFees: &p})
}

func (l *EventLog) EmitSwap(p SwapPayload) Event {
	return l.append(Event{Kind: EventSwap, Swap: &p})
}

// Since returns up to length events starting at Seq == start, in order,
// together with the log's current total count. length == 0 means
// unbounded: every event from start to the end of the log.
func (l *EventLog) Since(start, length uint64) ([]Event, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := l.next
	if start >= total {
		return nil, total
	}
	end := total
	if length != 0 && start+length < total {
		end = start + length
	}
	out := make([]Event, end-start)
	copy(out, l.events[start:end])
	return out, total
}

// Len reports the number of events appended so far.
func (l *EventLog) Len() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.next
}
