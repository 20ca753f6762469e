package liquidity_pool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photon-social/photon-go/fixedpoint"
)

func TestSwapAlgoForTokens(t *testing.T) {
	pool := migratedPool(t)

	// 1 APT in against a 10 APT reserve, 1% slippage tolerance.
	res, err := SwapAlgoForTokens(pool, 100_000_000, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(89_999), res.AmountOut)
	require.Equal(t, uint64(1_100_000_000), res.NewPool.AlgoReserve)
	require.Equal(t, uint64(909_091), res.NewPool.TokenReserve)
	require.Equal(t, pool.K, res.NewPool.K, "K is constant across swaps")
	require.Equal(t, pool.TotalLiquidity, res.NewPool.TotalLiquidity)
	require.True(t, res.PriceImpact.IsPositive())

	est, err := EstimateSwap(pool, 100_000_000, DirectionAlgoToTokens)
	require.NoError(t, err)
	require.Equal(t, uint64(90_909), est.OutputAmount)
	require.LessOrEqual(t, res.AmountOut, est.OutputAmount)
	require.True(t, est.NewPrice.GreaterThan(pool.CurrentPrice()))
}

func TestSwapTokensForAlgo(t *testing.T) {
	pool := migratedPool(t)

	res, err := SwapTokensForAlgo(pool, 100_000, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(90_909_090), res.AmountOut)
	require.Equal(t, uint64(1_100_000), res.NewPool.TokenReserve)
	require.Equal(t, uint64(909_090_910), res.NewPool.AlgoReserve)
	require.Equal(t, pool.K, res.NewPool.K)
	require.True(t, res.PriceImpact.IsNegative())

	est, err := EstimateSwap(pool, 100_000, DirectionTokensToAlgo)
	require.NoError(t, err)
	require.Equal(t, res.AmountOut, est.OutputAmount, "zero tolerance matches the estimate")
	require.True(t, est.NewPrice.LessThan(pool.CurrentPrice()))
}

func TestSwapRoundingFavorsPool(t *testing.T) {
	pool := migratedPool(t)

	// The product of the post-swap reserves never drops below K.
	for _, in := range []uint64{1234, 999_999, 123_456_789} {
		est, err := EstimateSwap(pool, in, DirectionAlgoToTokens)
		require.NoError(t, err)
		product := fixedpoint.U128Mul(pool.TokenReserve-est.OutputAmount, pool.AlgoReserve+in)
		require.GreaterOrEqual(t, product.Cmp(pool.K), 0)
	}
}

func TestSwapErrors(t *testing.T) {
	pool := migratedPool(t)

	_, err := SwapAlgoForTokens(pool, 0, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)

	// Dust input buys no whole token.
	_, err = SwapAlgoForTokens(pool, 1, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)

	// Slippage tolerance beyond 100% is rejected.
	_, err = SwapAlgoForTokens(pool, 100_000_000, 10_001)
	require.ErrorIs(t, err, ErrInvalidAmount)

	// An input that dwarfs K would drain the token reserve entirely.
	tiny, err := Initialize(10, 10)
	require.NoError(t, err)
	_, err = SwapAlgoForTokens(tiny, 1000, 0)
	require.ErrorIs(t, err, ErrReserveExhausted)
}
