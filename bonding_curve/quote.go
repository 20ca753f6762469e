package bonding_curve

import (
	"github.com/photon-social/photon-go/fixedpoint"
)

// QuoteBuy prices a purchase of tokenAmount tokens. The tokens leave the
// virtual token reserve and the cost is whatever algo amount restores the
// constant product, floored the way the contract floors it.
func QuoteBuy(cfg CurveConfig, state CurveState, tokenAmount uint64) (Quote, error) {
	if state.Phase != PhaseActive {
		return Quote{}, ErrCurveMigrated
	}
	if tokenAmount == 0 {
		return Quote{}, ErrInvalidAmount
	}
	if state.TokenSupply >= cfg.VirtualTokenReserve {
		return Quote{}, ErrInsufficientVirtualReserve
	}

	tokenReserve := cfg.VirtualTokenReserve - state.TokenSupply
	if tokenAmount >= tokenReserve {
		return Quote{}, ErrInsufficientVirtualReserve
	}
	newTokenReserve := tokenReserve - tokenAmount

	algoReserve, err := fixedpoint.Add64(cfg.VirtualAlgoReserve, state.AlgoReserve)
	if err != nil {
		return Quote{}, err
	}
	newAlgoReserve, err := cfg.K.Div(newTokenReserve)
	if err != nil {
		return Quote{}, err
	}
	if newAlgoReserve <= algoReserve {
		return Quote{}, ErrNegativeCost
	}
	cost := newAlgoReserve - algoReserve

	newState := CurveState{
		TokenSupply: state.TokenSupply + tokenAmount,
		AlgoReserve: state.AlgoReserve + cost,
		Phase:       state.Phase,
	}
	newPrice := newAlgoReserve / newTokenReserve
	return Quote{
		Side:        SideBuy,
		TokenAmount: tokenAmount,
		AmountOctas: cost,
		NewPrice:    newPrice,
		PriceImpact: PriceImpact(algoReserve/tokenReserve, newPrice),
		NewState:    newState,
		Snapshot:    state,
	}, nil
}

// QuoteSell prices a sale of tokenAmount tokens back into the curve. It is
// the exact inverse of QuoteBuy up to floor rounding; rounding always
// favors the contract, never the trader.
func QuoteSell(cfg CurveConfig, state CurveState, tokenAmount uint64) (Quote, error) {
	if state.Phase != PhaseActive {
		return Quote{}, ErrCurveMigrated
	}
	if tokenAmount == 0 {
		return Quote{}, ErrInvalidAmount
	}
	if tokenAmount > state.TokenSupply {
		return Quote{}, ErrInsufficientSupply
	}

	tokenReserve := cfg.VirtualTokenReserve - state.TokenSupply
	newTokenReserve, err := fixedpoint.Add64(tokenReserve, tokenAmount)
	if err != nil {
		return Quote{}, err
	}
	algoReserve, err := fixedpoint.Add64(cfg.VirtualAlgoReserve, state.AlgoReserve)
	if err != nil {
		return Quote{}, err
	}
	newAlgoReserve, err := cfg.K.Div(newTokenReserve)
	if err != nil {
		return Quote{}, err
	}
	if newAlgoReserve > algoReserve {
		return Quote{}, ErrNegativeCost
	}
	proceeds := algoReserve - newAlgoReserve

	newState := CurveState{
		TokenSupply: state.TokenSupply - tokenAmount,
		AlgoReserve: state.AlgoReserve - proceeds,
		Phase:       state.Phase,
	}
	newPrice := newAlgoReserve / newTokenReserve
	var oldPrice uint64
	if tokenReserve > 0 {
		oldPrice = algoReserve / tokenReserve
	}
	return Quote{
		Side:        SideSell,
		TokenAmount: tokenAmount,
		AmountOctas: proceeds,
		NewPrice:    newPrice,
		PriceImpact: PriceImpact(oldPrice, newPrice),
		NewState:    newState,
		Snapshot:    state,
	}, nil
}

// QuoteTokensForPayment is the inverse direction of QuoteBuy: it answers
// how many whole tokens a given octas payment mints. The new token reserve
// is rounded up so the trader never receives more than the exact solution.
func QuoteTokensForPayment(cfg CurveConfig, state CurveState, paymentOctas uint64) (Quote, error) {
	if state.Phase != PhaseActive {
		return Quote{}, ErrCurveMigrated
	}
	if paymentOctas == 0 {
		return Quote{}, ErrInvalidAmount
	}
	if state.TokenSupply >= cfg.VirtualTokenReserve {
		return Quote{}, ErrInsufficientVirtualReserve
	}

	tokenReserve := cfg.VirtualTokenReserve - state.TokenSupply
	algoReserve, err := fixedpoint.Add64(cfg.VirtualAlgoReserve, state.AlgoReserve)
	if err != nil {
		return Quote{}, err
	}
	newAlgoReserve, err := fixedpoint.Add64(algoReserve, paymentOctas)
	if err != nil {
		return Quote{}, err
	}
	newTokenReserve, err := cfg.K.DivUp(newAlgoReserve)
	if err != nil {
		return Quote{}, err
	}
	if newTokenReserve >= tokenReserve {
		// Payment too small to mint a whole token.
		return Quote{}, ErrInvalidAmount
	}
	tokenAmount := tokenReserve - newTokenReserve

	newState := CurveState{
		TokenSupply: state.TokenSupply + tokenAmount,
		AlgoReserve: state.AlgoReserve + paymentOctas,
		Phase:       state.Phase,
	}
	newPrice := newAlgoReserve / newTokenReserve
	return Quote{
		Side:        SideBuy,
		TokenAmount: tokenAmount,
		AmountOctas: paymentOctas,
		NewPrice:    newPrice,
		PriceImpact: PriceImpact(algoReserve/tokenReserve, newPrice),
		NewState:    newState,
		Snapshot:    state,
	}, nil
}

// QuotePaymentForTokens returns the octas proceeds for selling tokenAmount
// tokens. Alias of QuoteSell for sell-by-token-amount callers.
func QuotePaymentForTokens(cfg CurveConfig, state CurveState, tokenAmount uint64) (Quote, error) {
	return QuoteSell(cfg, state, tokenAmount)
}

// SamplePriceCurve returns steps+1 evenly spaced (supply, price, marketCap)
// points for visualization. It is purely a function of the config, not of
// any mutable state. maxSupply must stay below the virtual token reserve.
func SamplePriceCurve(cfg CurveConfig, maxSupply, steps uint64) ([]CurvePoint, error) {
	if steps == 0 {
		return nil, ErrInvalidAmount
	}
	if maxSupply >= cfg.VirtualTokenReserve {
		return nil, ErrInsufficientVirtualReserve
	}

	points := make([]CurvePoint, 0, steps+1)
	for i := uint64(0); i <= steps; i++ {
		supply, err := fixedpoint.MulDiv(maxSupply, i, steps)
		if err != nil {
			return nil, err
		}
		tokenReserve := cfg.VirtualTokenReserve - supply
		algoReserve, err := cfg.K.Div(tokenReserve)
		if err != nil {
			return nil, err
		}
		price := algoReserve / tokenReserve
		points = append(points, CurvePoint{
			Supply:    supply,
			Price:     price,
			MarketCap: fixedpoint.U128Mul(supply, price),
		})
	}
	return points, nil
}
