// Package ledger talks to the authoritative on-chain state. The chain is an
// externally-owned, concurrently-mutated resource: every read is a
// point-in-time snapshot with no consistency guarantee relative to any
// other read, and nothing here takes a lock on it. Callers defend
// themselves with re-validation plus the contract-enforced MinOutput bound.
package ledger

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrConfirmationIndeterminate means confirmation polling timed out.
	// The transaction may still land; callers must re-query supply and
	// reserve before deciding whether to resubmit.
	ErrConfirmationIndeterminate = errors.New("transaction confirmation timed out; outcome unknown")

	// ErrTransactionFailed means the chain executed and rejected the
	// transaction.
	ErrTransactionFailed = errors.New("transaction failed on chain")
)

// TxID identifies a submitted transaction.
type TxID string

// TxInfo is the confirmed execution result of a transaction.
type TxInfo struct {
	Hash     TxID
	Success  bool
	VMStatus string
	Version  uint64
}

// SubmissionRequest is the payload a validated trade submits. PaymentOctas
// is already safety-adjusted and MinOutput is the slippage floor the
// contract enforces atomically.
type SubmissionRequest struct {
	Signer       string
	Creator      string
	TokenID      string
	Function     string // entry function name, e.g. "buy_tokens"
	TokenAmount  uint64
	PaymentOctas uint64
	MinOutput    uint64
}

// Ledger is the single explicit contract a chain client must implement.
// Reads are idempotent and may be retried; SubmitTrade is never
// auto-retried since a timed-out submission may have succeeded.
type Ledger interface {
	GetCurrentSupply(ctx context.Context, creator, tokenID string) (uint64, error)
	GetReserve(ctx context.Context, creator, tokenID string) (uint64, error)
	GetTotalSupplyCeiling(ctx context.Context, creator, tokenID string) (uint64, error)
	SubmitTrade(ctx context.Context, req *SubmissionRequest) (TxID, error)
	WaitForTransaction(ctx context.Context, tx TxID) (*TxInfo, error)
}

// Snapshot is one point-in-time view of a token's curve state. The three
// reads are independent; each may be stale relative to the others.
type Snapshot struct {
	Supply    uint64
	Reserve   uint64 // octas
	Ceiling   uint64
	FetchedAt time.Time
}

// FetchSnapshot issues the three reads concurrently.
func FetchSnapshot(ctx context.Context, l Ledger, creator, tokenID string) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Supply, err = l.GetCurrentSupply(gctx, creator, tokenID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Reserve, err = l.GetReserve(gctx, creator, tokenID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Ceiling, err = l.GetTotalSupplyCeiling(gctx, creator, tokenID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.FetchedAt = time.Now()
	return snap, nil
}
