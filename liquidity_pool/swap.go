package liquidity_pool

import (
	"github.com/shopspring/decimal"

	"github.com/photon-social/photon-go/fixedpoint"
)

// Direction selects which reserve a swap feeds.
type Direction uint8

const (
	DirectionAlgoToTokens Direction = iota // buying tokens with octas
	DirectionTokensToAlgo                  // selling tokens for octas
)

// SwapResult carries the minimum acceptable output after the slippage
// tolerance is applied. Callers must treat AmountOut as a floor; it is
// never more than the unreduced constant-product figure.
type SwapResult struct {
	AmountOut   uint64
	PriceImpact decimal.Decimal
	NewPool     Pool
}

// EstimateResult is the zero-slippage preview used for display.
type EstimateResult struct {
	OutputAmount uint64
	PriceImpact  decimal.Decimal
	NewPrice     decimal.Decimal
}

// SwapTokensForAlgo sells tokenAmount tokens into the pool. The kept
// reserve is rounded up so the pool keeps every rounding remainder; K is
// unchanged across the swap.
func SwapTokensForAlgo(pool Pool, tokenAmount uint64, slippageBps uint64) (SwapResult, error) {
	out, newPool, err := swap(pool, tokenAmount, DirectionTokensToAlgo)
	if err != nil {
		return SwapResult{}, err
	}
	minOut, err := applySlippage(out, slippageBps)
	if err != nil {
		return SwapResult{}, err
	}
	return SwapResult{
		AmountOut:   minOut,
		PriceImpact: priceImpact(pool, newPool),
		NewPool:     newPool,
	}, nil
}

// SwapAlgoForTokens buys tokens with algoAmount octas.
func SwapAlgoForTokens(pool Pool, algoAmount uint64, slippageBps uint64) (SwapResult, error) {
	out, newPool, err := swap(pool, algoAmount, DirectionAlgoToTokens)
	if err != nil {
		return SwapResult{}, err
	}
	minOut, err := applySlippage(out, slippageBps)
	if err != nil {
		return SwapResult{}, err
	}
	return SwapResult{
		AmountOut:   minOut,
		PriceImpact: priceImpact(pool, newPool),
		NewPool:     newPool,
	}, nil
}

// EstimateSwap previews a swap without a slippage reduction.
func EstimateSwap(pool Pool, inputAmount uint64, direction Direction) (EstimateResult, error) {
	out, newPool, err := swap(pool, inputAmount, direction)
	if err != nil {
		return EstimateResult{}, err
	}
	return EstimateResult{
		OutputAmount: out,
		PriceImpact:  priceImpact(pool, newPool),
		NewPrice:     newPool.CurrentPrice(),
	}, nil
}

func swap(pool Pool, amountIn uint64, direction Direction) (uint64, Pool, error) {
	if amountIn == 0 {
		return 0, Pool{}, ErrInvalidAmount
	}
	inReserve, outReserve := pool.AlgoReserve, pool.TokenReserve
	if direction == DirectionTokensToAlgo {
		inReserve, outReserve = pool.TokenReserve, pool.AlgoReserve
	}

	newInReserve, err := fixedpoint.Add64(inReserve, amountIn)
	if err != nil {
		return 0, Pool{}, err
	}
	// Floor of zero means the input alone exceeds k and the swap would
	// take the entire opposite reserve.
	floorOut, err := pool.K.Div(newInReserve)
	if err != nil {
		return 0, Pool{}, err
	}
	if floorOut == 0 {
		return 0, Pool{}, ErrReserveExhausted
	}
	newOutReserve, err := pool.K.DivUp(newInReserve)
	if err != nil {
		return 0, Pool{}, err
	}
	if newOutReserve >= outReserve {
		return 0, Pool{}, ErrInvalidAmount
	}
	out := outReserve - newOutReserve

	newPool := pool
	if direction == DirectionTokensToAlgo {
		newPool.TokenReserve = newInReserve
		newPool.AlgoReserve = newOutReserve
	} else {
		newPool.AlgoReserve = newInReserve
		newPool.TokenReserve = newOutReserve
	}
	return out, newPool, nil
}

func applySlippage(out uint64, slippageBps uint64) (uint64, error) {
	if slippageBps > bpsDenominator {
		return 0, ErrInvalidAmount
	}
	return fixedpoint.MulDiv(out, bpsDenominator-slippageBps, bpsDenominator)
}

func priceImpact(before, after Pool) decimal.Decimal {
	oldPrice := before.CurrentPrice()
	if oldPrice.IsZero() {
		return decimal.Zero
	}
	return after.CurrentPrice().Sub(oldPrice).Div(oldPrice).Mul(decimal.NewFromInt(100))
}
