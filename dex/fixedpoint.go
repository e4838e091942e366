// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Q96 and Q128 are the fixed-point scaling factors for Q64.96 sqrt-prices
// and Q128.128 fee-growth accumulators, respectively.
var (
	Q96  = new(UInt256).Lsh(uint256.NewInt(1), 96)
	Q128 = new(UInt256).Lsh(uint256.NewInt(1), 128)
)

// MulDiv computes floor(a*b/denominator) over a full 512-bit intermediate
// product, failing with CalculationOverflow if denominator is zero or the
// quotient does not fit back into 256 bits.
func MulDiv(a, b, denominator *UInt256) (*UInt256, error) {
	if denominator.IsZero() {
		return nil, ErrCalculationOverflow
	}
	z, overflow := new(UInt256).MulDivOverflow(a, b, denominator)
	if overflow {
		return nil, ErrCalculationOverflow
	}
	return z, nil
}

// MulDivRoundingUp computes ceil(a*b/denominator), failing under the same
// conditions as MulDiv.
func MulDivRoundingUp(a, b, denominator *UInt256) (*UInt256, error) {
	result, err := MulDiv(a, b, denominator)
	if err != nil {
		return nil, err
	}
	// Recover the remainder of the 512-bit product mod denominator: if
	// the product divides evenly, result is already exact.
	rem := mulModFull(a, b, denominator)
	if !rem.IsZero() {
		one := uint256.NewInt(1)
		sum, overflow := new(UInt256).AddOverflow(result, one)
		if overflow {
			return nil, ErrCalculationOverflow
		}
		return sum, nil
	}
	return result, nil
}

// mulModFull returns (a*b) mod m computed over a 512-bit intermediate
// product, via uint256's own MulMod rather than a math/big round trip.
func mulModFull(a, b, m *UInt256) *UInt256 {
	return new(UInt256).MulMod(a, b, m)
}

// DivRoundingUp returns ceil(x/y), matching the reference's convention of
// returning 0 on division by zero (checked externally by every caller
// that cares, mirroring the original source).
func DivRoundingUp(x, y *UInt256) *UInt256 {
	if y.IsZero() {
		return new(UInt256)
	}
	q, r := new(UInt256), new(UInt256)
	q.DivMod(x, y, r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q
}

// Sqrt returns floor(sqrt(x)).
func Sqrt(x *UInt256) *UInt256 {
	return new(UInt256).Sqrt(x)
}

// AbsDiff returns |a - b| without relying on signed arithmetic, by
// subtracting the smaller operand from the larger.
func AbsDiff(a, b *UInt256) *UInt256 {
	if a.Cmp(b) >= 0 {
		return new(UInt256).Sub(a, b)
	}
	return new(UInt256).Sub(b, a)
}

// absBigInt returns |v| as a new big.Int, leaving v untouched.
func absBigInt(v *big.Int) *big.Int {
	return new(big.Int).Abs(v)
}

// AddDelta adds a signed liquidity delta y to x, failing with
// ErrLiquidityOverflow / ErrLiquidityUnderflow rather than wrapping.
func AddDelta(x *UInt256, y *Int256) (*UInt256, error) {
	if y.Sign() >= 0 {
		yU, overflow := uint256.FromBig(y)
		if overflow {
			return nil, ErrLiquidityOverflow
		}
		sum, overflow := new(UInt256).AddOverflow(x, yU)
		if overflow {
			return nil, ErrLiquidityOverflow
		}
		return sum, nil
	}
	abs := new(big.Int).Neg(y)
	absU, overflow := uint256.FromBig(abs)
	if overflow {
		return nil, ErrLiquidityUnderflow
	}
	if absU.Cmp(x) > 0 {
		return nil, ErrLiquidityUnderflow
	}
	return new(UInt256).Sub(x, absU), nil
}
