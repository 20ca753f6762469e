// Package fixedpoint provides the integer arithmetic used by all pricing
// math. Every reserve and payment quantity is an unsigned 64-bit integer in
// the smallest on-chain unit (octas for the payment asset, whole tokens for
// the creator asset). Division is integer floor division to mirror the
// contract exactly; products that can exceed 64 bits are widened to 128 bits
// and narrowed back with an explicit overflow check. No floating point.
package fixedpoint

import (
	"errors"
	"math/big"
	"math/bits"

	bin "github.com/gagliardetto/binary"
	"github.com/shopspring/decimal"
)

// OctasPerAPT is the number of octas in one unit of the payment asset.
const OctasPerAPT = 100_000_000

var (
	ErrOverflow       = errors.New("fixedpoint: arithmetic overflow")
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
)

// Add64 returns a+b, failing on wraparound.
func Add64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub64 returns a-b, failing if b > a.
func Sub64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}

// Mul64 returns a*b, failing if the product does not fit 64 bits.
func Mul64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// MulDiv returns floor(a*b/denom) through a 128-bit intermediate.
func MulDiv(a, b, denom uint64) (uint64, error) {
	if denom == 0 {
		return 0, ErrDivisionByZero
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= denom {
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, denom)
	return q, nil
}

// MulDivUp returns ceil(a*b/denom) through a 128-bit intermediate.
func MulDivUp(a, b, denom uint64) (uint64, error) {
	if denom == 0 {
		return 0, ErrDivisionByZero
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= denom {
		return 0, ErrOverflow
	}
	q, r := bits.Div64(hi, lo, denom)
	if r != 0 {
		if q == ^uint64(0) {
			return 0, ErrOverflow
		}
		q++
	}
	return q, nil
}

// Uint128 is the widened carrier for reserve products such as the curve
// constant k, which does not fit 64 bits for realistic launch parameters.
type Uint128 bin.Uint128

// U128From64 widens v.
func U128From64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// U128Mul returns the full 128-bit product a*b.
func U128Mul(a, b uint64) Uint128 {
	hi, lo := bits.Mul64(a, b)
	return Uint128{Lo: lo, Hi: hi}
}

// Div returns floor(u/d) narrowed to 64 bits. It fails with ErrOverflow if
// the quotient does not fit and ErrDivisionByZero if d is zero.
func (u Uint128) Div(d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	if u.Hi >= d {
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(u.Hi, u.Lo, d)
	return q, nil
}

// DivUp returns ceil(u/d) narrowed to 64 bits.
func (u Uint128) DivUp(d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	if u.Hi >= d {
		return 0, ErrOverflow
	}
	q, r := bits.Div64(u.Hi, u.Lo, d)
	if r != 0 {
		if q == ^uint64(0) {
			return 0, ErrOverflow
		}
		q++
	}
	return q, nil
}

// Cmp compares u and v, returning -1, 0 or +1.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.Hi < v.Hi:
		return -1
	case u.Hi > v.Hi:
		return 1
	case u.Lo < v.Lo:
		return -1
	case u.Lo > v.Lo:
		return 1
	}
	return 0
}

// IsZero reports whether u is zero.
func (u Uint128) IsZero() bool {
	return u.Lo == 0 && u.Hi == 0
}

// Uint64 narrows u, failing if the value does not fit.
func (u Uint128) Uint64() (uint64, error) {
	if u.Hi != 0 {
		return 0, ErrOverflow
	}
	return u.Lo, nil
}

// Big converts u to a big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

// Bin converts u to the wire representation used by borsh encoders.
func (u Uint128) Bin() bin.Uint128 {
	return bin.Uint128(u)
}

// Sqrt returns the floor integer square root of u. The result always fits
// 64 bits.
func Sqrt(u Uint128) uint64 {
	return new(big.Int).Sqrt(u.Big()).Uint64()
}

// ToAPT converts octas to a display decimal in whole payment-asset units.
// Display only; reserve math never goes through decimal.
func ToAPT(octas uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(octas), -8)
}
