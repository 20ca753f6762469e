package bonding_curve

import (
	"github.com/photon-social/photon-go/fixedpoint"
)

const bpsDenominator = 10_000

// MigrationPlan is the slice of the curve's real reserves that seeds the
// post-migration liquidity pool.
type MigrationPlan struct {
	TokenAmount uint64
	AlgoAmount  uint64 // octas
}

// ShouldMigrate reports whether the token has graduated: market cap at or
// above the threshold. A depleted curve cannot be priced and never
// graduates through this path.
func ShouldMigrate(cfg CurveConfig, state CurveState, thresholdMarketCap uint64) bool {
	marketCap, err := state.MarketCap(cfg)
	if err != nil {
		return false
	}
	return marketCap.Cmp(fixedpoint.U128From64(thresholdMarketCap)) >= 0
}

// PlanMigration computes the liquidityRatioBps fraction of the real (not
// virtual) reserves to move into the new pool.
func PlanMigration(state CurveState, liquidityRatioBps uint64) (MigrationPlan, error) {
	if liquidityRatioBps == 0 || liquidityRatioBps > bpsDenominator {
		return MigrationPlan{}, ErrInvalidAmount
	}
	tokenAmount, err := fixedpoint.MulDiv(state.TokenSupply, liquidityRatioBps, bpsDenominator)
	if err != nil {
		return MigrationPlan{}, err
	}
	algoAmount, err := fixedpoint.MulDiv(state.AlgoReserve, liquidityRatioBps, bpsDenominator)
	if err != nil {
		return MigrationPlan{}, err
	}
	return MigrationPlan{TokenAmount: tokenAmount, AlgoAmount: algoAmount}, nil
}

// BeginMigration freezes the curve. Quotes fail from this point on; there
// is no path back to ACTIVE.
func BeginMigration(state *CurveState) error {
	if state.Phase != PhaseActive {
		return ErrCurveMigrated
	}
	state.Phase = PhaseMigrating
	return nil
}

// CompleteMigration marks the terminal POOLED phase once the liquidity pool
// exists on chain.
func CompleteMigration(state *CurveState) error {
	if state.Phase != PhaseMigrating {
		return ErrNotMigrating
	}
	state.Phase = PhasePooled
	return nil
}
