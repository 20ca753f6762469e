// Package bonding_curve prices primary token issuance on a virtual
// constant-product curve. The curve holds x*y = k over the combined
// virtual+real reserves: buying tokens removes them from the virtual token
// reserve and adds the payment to the algo reserve, so the marginal price
// rises with cumulative supply. All quote functions are pure; the mutable
// authoritative state lives on chain and callers hold a possibly-stale copy.
package bonding_curve

import (
	"github.com/shopspring/decimal"

	"github.com/photon-social/photon-go/fixedpoint"
)

// Phase is the lifecycle of a curve-issued token. Transitions are one-way:
// ACTIVE -> MIGRATING -> POOLED.
type Phase uint8

const (
	PhaseActive Phase = iota
	PhaseMigrating
	PhasePooled
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseMigrating:
		return "migrating"
	case PhasePooled:
		return "pooled"
	}
	return "unknown"
}

// CurveConfig is created once at token launch and never changes. K is the
// constant product of the two virtual reserves and holds for the lifetime
// of the config.
type CurveConfig struct {
	InitialPrice        uint64 // octas per token at zero supply
	VirtualTokenReserve uint64 // tokens
	VirtualAlgoReserve  uint64 // octas
	K                   fixedpoint.Uint128
}

// NewCurveConfig derives the virtual reserves from the launch price so that
// VirtualAlgoReserve / VirtualTokenReserve == initialPrice at construction.
func NewCurveConfig(initialPrice, virtualTokenReserve uint64) (CurveConfig, error) {
	if initialPrice == 0 || virtualTokenReserve == 0 {
		return CurveConfig{}, ErrInvalidAmount
	}
	virtualAlgoReserve, err := fixedpoint.Mul64(initialPrice, virtualTokenReserve)
	if err != nil {
		return CurveConfig{}, err
	}
	return CurveConfig{
		InitialPrice:        initialPrice,
		VirtualTokenReserve: virtualTokenReserve,
		VirtualAlgoReserve:  virtualAlgoReserve,
		K:                   fixedpoint.U128Mul(virtualTokenReserve, virtualAlgoReserve),
	}, nil
}

// CurveState is the client's cached copy of the on-chain curve state. It is
// mutated only by accepted trades and superseded once the token migrates.
type CurveState struct {
	TokenSupply uint64 // cumulative tokens issued
	AlgoReserve uint64 // cumulative real payment collected, octas
	Phase       Phase
}

// NewCurveState returns the state a token starts with at initialization.
func NewCurveState() CurveState {
	return CurveState{Phase: PhaseActive}
}

// CurrentPrice is floor((virtualAlgo+algo) / (virtualToken-supply)) in
// octas per token. It fails with fixedpoint.ErrDivisionByZero once the
// virtual token reserve is fully depleted.
func (s CurveState) CurrentPrice(cfg CurveConfig) (uint64, error) {
	if s.TokenSupply >= cfg.VirtualTokenReserve {
		return 0, fixedpoint.ErrDivisionByZero
	}
	algoReserve, err := fixedpoint.Add64(cfg.VirtualAlgoReserve, s.AlgoReserve)
	if err != nil {
		return 0, err
	}
	return algoReserve / (cfg.VirtualTokenReserve - s.TokenSupply), nil
}

// MarketCap is tokenSupply * currentPrice in octas, widened to 128 bits.
func (s CurveState) MarketCap(cfg CurveConfig) (fixedpoint.Uint128, error) {
	price, err := s.CurrentPrice(cfg)
	if err != nil {
		return fixedpoint.Uint128{}, err
	}
	return fixedpoint.U128Mul(s.TokenSupply, price), nil
}

// Side distinguishes buy quotes from sell quotes.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// Quote is the result of a single pricing call. It is never persisted; the
// snapshot it was computed against must be re-validated before submission.
type Quote struct {
	Side        Side
	TokenAmount uint64
	AmountOctas uint64 // cost for buys, proceeds for sells
	NewPrice    uint64 // octas per token after the trade
	PriceImpact decimal.Decimal
	NewState    CurveState
	Snapshot    CurveState // state the quote was computed against
}

// CurvePoint is one sample of the price curve, used for visualization.
type CurvePoint struct {
	Supply    uint64
	Price     uint64
	MarketCap fixedpoint.Uint128
}

// PriceImpact returns (newPrice-oldPrice)/oldPrice as a percentage.
// Display only.
func PriceImpact(oldPrice, newPrice uint64) decimal.Decimal {
	if oldPrice == 0 {
		return decimal.Zero
	}
	oldD := decimal.NewFromUint64(oldPrice)
	return decimal.NewFromUint64(newPrice).Sub(oldD).Div(oldD).Mul(decimal.NewFromInt(100))
}
