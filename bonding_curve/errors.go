package bonding_curve

import "errors"

var (
	// ErrInvalidAmount rejects zero or unrepresentable trade amounts.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInsufficientVirtualReserve means the buy would deplete the virtual
	// token reserve.
	ErrInsufficientVirtualReserve = errors.New("insufficient virtual token reserve")

	// ErrInsufficientSupply means the sell exceeds the tokens issued so far.
	ErrInsufficientSupply = errors.New("sell amount exceeds token supply")

	// ErrNegativeCost indicates a broken curve invariant, not a user error.
	ErrNegativeCost = errors.New("curve invariant violated: non-positive cost")

	// ErrCurveMigrated rejects trades on a token that has graduated to a
	// liquidity pool.
	ErrCurveMigrated = errors.New("bonding curve is no longer active")

	// ErrNotMigrating rejects CompleteMigration outside the MIGRATING phase.
	ErrNotMigrating = errors.New("token is not migrating")
)
