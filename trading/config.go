package trading

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Policy holds the trade-safety knobs. The safety factor and supply margin
// absorb floor-rounding drift between the client's estimate and the
// contract's exact integer arithmetic; they are policy parameters, not
// derived constants, and can be tightened once the contract's worst-case
// rounding bound is established analytically.
type Policy struct {
	// SafetyFactorBps reduces the effective payment before submission.
	SafetyFactorBps uint64 `mapstructure:"safety_factor_bps"`
	// PriceToleranceBps bounds how far a revalidated quote may drift from
	// the one the user saw.
	PriceToleranceBps uint64 `mapstructure:"price_tolerance_bps"`
	// SupplyMarginTokens is kept clear of the total-supply ceiling.
	SupplyMarginTokens uint64 `mapstructure:"supply_margin_tokens"`
	// MinNotionalOctas is the contract's minimum indivisible trade size.
	MinNotionalOctas uint64 `mapstructure:"min_notional_octas"`
	// MinOutputBps sets the contract-enforced slippage floor.
	MinOutputBps uint64 `mapstructure:"min_output_bps"`
	// MaxQuoteAge forces a re-quote for anything older.
	MaxQuoteAge time.Duration `mapstructure:"max_quote_age"`
	// ConfirmAttempts / ConfirmInterval bound confirmation polling.
	ConfirmAttempts int           `mapstructure:"confirm_attempts"`
	ConfirmInterval time.Duration `mapstructure:"confirm_interval"`
}

const (
	DefaultSafetyFactorBps    = 10 // 0.1%
	DefaultPriceToleranceBps  = 10
	DefaultSupplyMarginTokens = 1
	DefaultMinNotionalOctas   = 1000
	DefaultMinOutputBps       = 9000 // 90% of expected output
	DefaultConfirmAttempts    = 30
)

// DefaultPolicy returns the policy used when no configuration file is
// present.
func DefaultPolicy() Policy {
	return Policy{
		SafetyFactorBps:    DefaultSafetyFactorBps,
		PriceToleranceBps:  DefaultPriceToleranceBps,
		SupplyMarginTokens: DefaultSupplyMarginTokens,
		MinNotionalOctas:   DefaultMinNotionalOctas,
		MinOutputBps:       DefaultMinOutputBps,
		MaxQuoteAge:        30 * time.Second,
		ConfirmAttempts:    DefaultConfirmAttempts,
		ConfirmInterval:    time.Second,
	}
}

// LoadPolicy reads the policy from a config file, filling gaps with
// defaults.
func LoadPolicy(path string) (Policy, error) {
	v := viper.New()
	v.SetConfigFile(path)

	def := DefaultPolicy()
	v.SetDefault("safety_factor_bps", def.SafetyFactorBps)
	v.SetDefault("price_tolerance_bps", def.PriceToleranceBps)
	v.SetDefault("supply_margin_tokens", def.SupplyMarginTokens)
	v.SetDefault("min_notional_octas", def.MinNotionalOctas)
	v.SetDefault("min_output_bps", def.MinOutputBps)
	v.SetDefault("max_quote_age", def.MaxQuoteAge)
	v.SetDefault("confirm_attempts", def.ConfirmAttempts)
	v.SetDefault("confirm_interval", def.ConfirmInterval)

	if err := v.ReadInConfig(); err != nil {
		return Policy{}, err
	}
	var p Policy
	if err := v.Unmarshal(&p); err != nil {
		return Policy{}, err
	}
	return p, validatePolicy(p)
}

func validatePolicy(p Policy) error {
	if p.SafetyFactorBps >= 10_000 || p.PriceToleranceBps >= 10_000 {
		return errors.New("bps parameters must be below 10000")
	}
	if p.MinOutputBps == 0 || p.MinOutputBps > 10_000 {
		return errors.New("min_output_bps must be in (0, 10000]")
	}
	if p.ConfirmAttempts <= 0 || p.ConfirmInterval <= 0 {
		return errors.New("confirmation polling parameters must be positive")
	}
	return nil
}
