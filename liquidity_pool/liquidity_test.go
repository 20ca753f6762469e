package liquidity_pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddLiquidityProportional(t *testing.T) {
	pool := migratedPool(t)

	// A 10% deposit at the current ratio mints 10% of the LP supply,
	// floored.
	res, err := AddLiquidity(pool, 100_000, 100_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(3_162_277), res.LiquidityTokens)
	require.Equal(t, uint64(1_100_000), res.NewPool.TokenReserve)
	require.Equal(t, uint64(1_100_000_000), res.NewPool.AlgoReserve)
	require.Equal(t, uint64(34_785_053), res.NewPool.TotalLiquidity)
	require.Equal(t, "1210000000000000", res.NewPool.K.Big().String())
	require.Equal(t, pool.CurrentPrice().String(), res.NewPool.CurrentPrice().String())
}

func TestAddLiquidityOffRatio(t *testing.T) {
	pool := migratedPool(t)

	// Ten times too few octas for the tokens supplied: credit follows the
	// under-supplied side.
	res, err := AddLiquidity(pool, 100_000, 10_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(316_227), res.LiquidityTokens)

	// Same deposit the other way around mints the same credit.
	res2, err := AddLiquidity(pool, 10_000, 100_000_000)
	require.NoError(t, err)
	require.Equal(t, res.LiquidityTokens, res2.LiquidityTokens)
}

func TestAddLiquidityErrors(t *testing.T) {
	pool := migratedPool(t)

	_, err := AddLiquidity(pool, 0, 100)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = AddLiquidity(pool, 100, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRemoveLiquidity(t *testing.T) {
	pool := migratedPool(t)

	res, err := RemoveLiquidity(pool, pool.TotalLiquidity/2)
	require.NoError(t, err)
	require.Equal(t, uint64(500_000), res.TokenAmount)
	require.Equal(t, uint64(500_000_000), res.AlgoAmount)
	require.Equal(t, pool.TotalLiquidity/2, res.NewPool.TotalLiquidity)
	require.Equal(t, uint64(500_000), res.NewPool.TokenReserve)
	require.Equal(t, uint64(500_000_000), res.NewPool.AlgoReserve)

	// Burning the rest empties the pool.
	res, err = RemoveLiquidity(res.NewPool, res.NewPool.TotalLiquidity)
	require.NoError(t, err)
	require.Equal(t, uint64(0), res.NewPool.TokenReserve)
	require.Equal(t, uint64(0), res.NewPool.AlgoReserve)
	require.Equal(t, uint64(0), res.NewPool.TotalLiquidity)
	require.True(t, res.NewPool.K.IsZero())
	require.True(t, res.NewPool.CurrentPrice().IsZero())
}

func TestRemoveLiquidityErrors(t *testing.T) {
	pool := migratedPool(t)

	_, err := RemoveLiquidity(pool, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = RemoveLiquidity(pool, pool.TotalLiquidity+1)
	require.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestAddThenRemoveNeverProfits(t *testing.T) {
	pool := migratedPool(t)

	res, err := AddLiquidity(pool, 33_333, 33_333_333)
	require.NoError(t, err)
	out, err := RemoveLiquidity(res.NewPool, res.LiquidityTokens)
	require.NoError(t, err)
	require.LessOrEqual(t, out.TokenAmount, uint64(33_333))
	require.LessOrEqual(t, out.AlgoAmount, uint64(33_333_333))
}
