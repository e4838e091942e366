// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import "testing"

func TestTickBitmapFlipAndIsInitialized(t *testing.T) {
	tb := newTickBitmap()
	const spacing = int32(60)

	if tb.isInitialized(120, spacing) {
		t.Fatalf("a fresh bitmap should report nothing initialized")
	}
	tb.flip(120, spacing)
	if !tb.isInitialized(120, spacing) {
		t.Fatalf("flip should mark the tick initialized")
	}
	tb.flip(120, spacing)
	if tb.isInitialized(120, spacing) {
		t.Fatalf("flipping twice should clear the tick")
	}
}

func TestTickBitmapNextInitializedRight(t *testing.T) {
	tb := newTickBitmap()
	const spacing = int32(60)
	tb.flip(60, spacing)
	tb.flip(600, spacing)

	next, found := tb.nextInitialized(0, spacing, false)
	if !found || next != 60 {
		t.Fatalf("nextInitialized(0, right) = (%d, %v), want (60, true)", next, found)
	}

	next, found = tb.nextInitialized(60, spacing, false)
	if !found || next != 600 {
		t.Fatalf("nextInitialized(60, right) = (%d, %v), want (600, true)", next, found)
	}
}

func TestTickBitmapNextInitializedLeft(t *testing.T) {
	tb := newTickBitmap()
	const spacing = int32(60)
	tb.flip(60, spacing)
	tb.flip(600, spacing)

	next, found := tb.nextInitialized(600, spacing, true)
	if !found || next != 600 {
		t.Fatalf("nextInitialized(600, left, inclusive) = (%d, %v), want (600, true)", next, found)
	}

	next, found = tb.nextInitialized(599, spacing, true)
	if !found || next != 60 {
		t.Fatalf("nextInitialized(599, left) = (%d, %v), want (60, true)", next, found)
	}
}

func TestTickBitmapNextInitializedNegativeTicks(t *testing.T) {
	tb := newTickBitmap()
	const spacing = int32(60)
	tb.flip(-600, spacing)
	tb.flip(-60, spacing)

	next, found := tb.nextInitialized(0, spacing, true)
	if !found || next != -60 {
		t.Fatalf("nextInitialized(0, left) = (%d, %v), want (-60, true)", next, found)
	}

	next, found = tb.nextInitialized(-61, spacing, false)
	if !found || next != -60 {
		t.Fatalf("nextInitialized(-61, right) = (%d, %v), want (-60, true)", next, found)
	}
}

func TestTickBitmapRunsOffGridReportsNotFound(t *testing.T) {
	tb := newTickBitmap()
	const spacing = int32(60)
	tb.flip(60, spacing)

	_, found := tb.nextInitialized(1000, spacing, false)
	if found {
		t.Fatalf("searching right of the only initialized tick should report not found")
	}
	_, found = tb.nextInitialized(-1000, spacing, true)
	if found {
		t.Fatalf("searching left of the only initialized tick should report not found")
	}
}
