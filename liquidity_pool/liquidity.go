package liquidity_pool

import (
	"github.com/photon-social/photon-go/fixedpoint"
)

// AddResult is the outcome of a liquidity deposit.
type AddResult struct {
	LiquidityTokens uint64
	NewPool         Pool
}

// RemoveResult is the outcome of a liquidity withdrawal.
type RemoveResult struct {
	TokenAmount uint64
	AlgoAmount  uint64 // octas
	NewPool     Pool
}

// AddLiquidity mints LP tokens proportional to the smaller of the two
// deposit ratios. A depositor who supplies off the current ratio is
// credited only for the under-supplied side; the excess on the other side
// is a donation to the pool. The ratio is never silently corrected.
func AddLiquidity(pool Pool, tokenAmount, algoAmount uint64) (AddResult, error) {
	if tokenAmount == 0 || algoAmount == 0 {
		return AddResult{}, ErrInvalidAmount
	}
	tokenCredit, err := fixedpoint.MulDiv(tokenAmount, pool.TotalLiquidity, pool.TokenReserve)
	if err != nil {
		return AddResult{}, err
	}
	algoCredit, err := fixedpoint.MulDiv(algoAmount, pool.TotalLiquidity, pool.AlgoReserve)
	if err != nil {
		return AddResult{}, err
	}
	minted := min(tokenCredit, algoCredit)
	if minted == 0 {
		return AddResult{}, ErrInvalidAmount
	}

	newTokenReserve, err := fixedpoint.Add64(pool.TokenReserve, tokenAmount)
	if err != nil {
		return AddResult{}, err
	}
	newAlgoReserve, err := fixedpoint.Add64(pool.AlgoReserve, algoAmount)
	if err != nil {
		return AddResult{}, err
	}
	totalLiquidity, err := fixedpoint.Add64(pool.TotalLiquidity, minted)
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{
		LiquidityTokens: minted,
		NewPool: Pool{
			TokenReserve:   newTokenReserve,
			AlgoReserve:    newAlgoReserve,
			TotalLiquidity: totalLiquidity,
			K:              fixedpoint.U128Mul(newTokenReserve, newAlgoReserve),
		},
	}, nil
}

// RemoveLiquidity burns LP tokens and pays out the proportional slice of
// both reserves, floored. Burning the full supply empties the pool.
func RemoveLiquidity(pool Pool, liquidityTokens uint64) (RemoveResult, error) {
	if liquidityTokens == 0 {
		return RemoveResult{}, ErrInvalidAmount
	}
	if liquidityTokens > pool.TotalLiquidity {
		return RemoveResult{}, ErrInsufficientLiquidity
	}
	tokenAmount, err := fixedpoint.MulDiv(pool.TokenReserve, liquidityTokens, pool.TotalLiquidity)
	if err != nil {
		return RemoveResult{}, err
	}
	algoAmount, err := fixedpoint.MulDiv(pool.AlgoReserve, liquidityTokens, pool.TotalLiquidity)
	if err != nil {
		return RemoveResult{}, err
	}

	newTokenReserve := pool.TokenReserve - tokenAmount
	newAlgoReserve := pool.AlgoReserve - algoAmount
	return RemoveResult{
		TokenAmount: tokenAmount,
		AlgoAmount:  algoAmount,
		NewPool: Pool{
			TokenReserve:   newTokenReserve,
			AlgoReserve:    newAlgoReserve,
			TotalLiquidity: pool.TotalLiquidity - liquidityTokens,
			K:              fixedpoint.U128Mul(newTokenReserve, newAlgoReserve),
		},
	}, nil
}
