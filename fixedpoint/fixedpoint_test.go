package fixedpoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckedArithmetic(t *testing.T) {
	sum, err := Add64(1, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(3), sum)

	_, err = Add64(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrOverflow)

	diff, err := Sub64(10, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(6), diff)

	_, err = Sub64(4, 10)
	require.ErrorIs(t, err, ErrOverflow)

	prod, err := Mul64(1_000_000, 1_000_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000_000_000), prod)

	_, err = Mul64(math.MaxUint64, 2)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestMulDiv(t *testing.T) {
	q, err := MulDiv(10, 3, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(7), q, "floor division")

	q, err = MulDivUp(10, 3, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(8), q, "ceil division")

	// Intermediate product exceeds 64 bits but the quotient fits.
	q, err = MulDiv(math.MaxUint64, 1000, 10_000)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64/10), q)

	_, err = MulDiv(1, 1, 0)
	require.ErrorIs(t, err, ErrDivisionByZero)

	// Quotient does not fit 64 bits.
	_, err = MulDiv(math.MaxUint64, 2, 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestUint128(t *testing.T) {
	k := U128Mul(1_000_000, 1_000_000_000)
	require.Equal(t, "1000000000000000", k.Big().String())

	q, err := k.Div(999_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_001_001_001), q)

	up, err := k.DivUp(999_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_001_001_002), up)

	exact, err := k.DivUp(1_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000), exact, "ceil of an exact quotient")

	_, err = k.Div(0)
	require.ErrorIs(t, err, ErrDivisionByZero)

	wide := U128Mul(math.MaxUint64, math.MaxUint64)
	_, err = wide.Div(1)
	require.ErrorIs(t, err, ErrOverflow)

	require.Equal(t, 1, wide.Cmp(k))
	require.Equal(t, -1, k.Cmp(wide))
	require.Equal(t, 0, k.Cmp(U128Mul(1_000_000, 1_000_000_000)))
	require.True(t, Uint128{}.IsZero())

	narrow, err := U128From64(42).Uint64()
	require.NoError(t, err)
	require.Equal(t, uint64(42), narrow)
	_, err = wide.Uint64()
	require.ErrorIs(t, err, ErrOverflow)
}

func TestSqrt(t *testing.T) {
	require.Equal(t, uint64(0), Sqrt(U128From64(0)))
	require.Equal(t, uint64(1), Sqrt(U128From64(1)))
	require.Equal(t, uint64(31_622_776), Sqrt(U128Mul(1_000_000, 1_000_000_000)))
	require.Equal(t, uint64(1_000_000), Sqrt(U128Mul(1_000_000, 1_000_000)))
}

func TestToAPT(t *testing.T) {
	require.Equal(t, "0.00001", ToAPT(1000).String())
	require.Equal(t, "1", ToAPT(OctasPerAPT).String())
	require.Equal(t, "0.01001001", ToAPT(1_001_001).String())
}
