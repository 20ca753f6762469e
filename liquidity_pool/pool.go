// Package liquidity_pool implements the constant-product AMM a token trades
// on after it graduates from the bonding curve. Unlike the curve, both
// reserves here are real deposited funds. The engine is pure: every
// operation returns a new Pool and leaves its input untouched.
package liquidity_pool

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/photon-social/photon-go/fixedpoint"
)

var (
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrReserveExhausted      = errors.New("swap would drain a pool reserve")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
)

const bpsDenominator = 10_000

// Pool holds the AMM reserves. K is constant across swaps and recomputed
// only when liquidity is added or removed.
type Pool struct {
	TokenReserve   uint64 // tokens
	AlgoReserve    uint64 // octas
	TotalLiquidity uint64 // LP share units
	K              fixedpoint.Uint128
}

// Position is one provider's claim on the pool.
type Position struct {
	LiquidityTokens uint64
	TokenAmount     uint64
	AlgoAmount      uint64 // octas
	Share           decimal.Decimal // percentage of the pool
}

// Initialize creates the pool at migration. The initial LP supply is the
// floor square root of the reserve product.
func Initialize(tokenAmount, algoAmount uint64) (Pool, error) {
	if tokenAmount == 0 || algoAmount == 0 {
		return Pool{}, ErrInvalidAmount
	}
	k := fixedpoint.U128Mul(tokenAmount, algoAmount)
	return Pool{
		TokenReserve:   tokenAmount,
		AlgoReserve:    algoAmount,
		TotalLiquidity: fixedpoint.Sqrt(k),
		K:              k,
	}, nil
}

// CurrentPrice is the pool's spot price in octas per token, as a display
// decimal.
func (p Pool) CurrentPrice() decimal.Decimal {
	if p.TokenReserve == 0 {
		return decimal.Zero
	}
	return decimal.NewFromUint64(p.AlgoReserve).Div(decimal.NewFromUint64(p.TokenReserve))
}

// CalculatePosition values a holding of LP tokens against the current
// reserves.
func (p Pool) CalculatePosition(liquidityTokens uint64) (Position, error) {
	if liquidityTokens > p.TotalLiquidity {
		return Position{}, ErrInsufficientLiquidity
	}
	tokenAmount, err := fixedpoint.MulDiv(p.TokenReserve, liquidityTokens, p.TotalLiquidity)
	if err != nil {
		return Position{}, err
	}
	algoAmount, err := fixedpoint.MulDiv(p.AlgoReserve, liquidityTokens, p.TotalLiquidity)
	if err != nil {
		return Position{}, err
	}
	share := decimal.NewFromUint64(liquidityTokens).
		Div(decimal.NewFromUint64(p.TotalLiquidity)).
		Mul(decimal.NewFromInt(100))
	return Position{
		LiquidityTokens: liquidityTokens,
		TokenAmount:     tokenAmount,
		AlgoAmount:      algoAmount,
		Share:           share,
	}, nil
}

// OptimalAlgoForTokens returns the octas deposit that matches tokenAmount
// at the current reserve ratio, so an add mints full credit on both sides.
func (p Pool) OptimalAlgoForTokens(tokenAmount uint64) (uint64, error) {
	if tokenAmount == 0 {
		return 0, ErrInvalidAmount
	}
	return fixedpoint.MulDiv(tokenAmount, p.AlgoReserve, p.TokenReserve)
}
