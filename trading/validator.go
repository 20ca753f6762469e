// Package trading guards the gap between showing a user a quote and
// submitting the trade. The on-chain state may move in that gap: any other
// party can trade the same token between the client's snapshot and its
// submission. Nothing can lock the chain, so the validator re-derives the
// quote from a fresh snapshot, rejects on divergence, and attaches a
// contract-enforced MinOutput floor as the only synchronized defense.
package trading

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/photon-social/photon-go/bonding_curve"
	"github.com/photon-social/photon-go/fixedpoint"
	"github.com/photon-social/photon-go/ledger"
)

// TradeState tracks one trade attempt through the safety protocol.
type TradeState uint8

const (
	StateQuoted TradeState = iota
	StateValidating
	StateAccepted
	StateRejected
)

func (s TradeState) String() string {
	switch s {
	case StateQuoted:
		return "quoted"
	case StateValidating:
		return "validating"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}

// RejectionReason classifies why a confirmed quote was refused after the
// user already saw it.
type RejectionReason uint8

const (
	ReasonStalePrice RejectionReason = iota
	ReasonSupplyExhausted
	ReasonBelowMinimum
	ReasonQuoteExpired
)

func (r RejectionReason) String() string {
	switch r {
	case ReasonStalePrice:
		return "stale_price"
	case ReasonSupplyExhausted:
		return "supply_exhausted"
	case ReasonBelowMinimum:
		return "below_minimum"
	case ReasonQuoteExpired:
		return "quote_expired"
	}
	return "unknown"
}

// Rejection is distinct from quote errors: it happens after the user saw a
// price, so the UI must say the price moved rather than silently resubmit.
type Rejection struct {
	Reason RejectionReason
	Detail string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("trade rejected (%s): %s", r.Reason, r.Detail)
}

// Quote is a priced trade plus the moment it was computed, for staleness
// checks.
type Quote struct {
	bonding_curve.Quote
	CreatedAt time.Time
}

// Validator runs the pre-submission safety protocol. It reads the ledger
// and never mutates anything.
type Validator struct {
	ledger  ledger.Ledger
	config  bonding_curve.CurveConfig
	policy  Policy
	creator string
	tokenID string
	logger  *zap.Logger
}

// NewValidator builds a validator for one token.
func NewValidator(l ledger.Ledger, cfg bonding_curve.CurveConfig, policy Policy, creator, tokenID string, logger *zap.Logger) *Validator {
	return &Validator{
		ledger:  l,
		config:  cfg,
		policy:  policy,
		creator: creator,
		tokenID: tokenID,
		logger:  logger.Named("validator"),
	}
}

// ValidateAndBuildSubmission re-fetches the ledger state, re-derives the
// expected on-chain outcome and either returns the submission request or a
// Rejection. QUOTED -> VALIDATING -> {ACCEPTED, REJECTED}.
func (v *Validator) ValidateAndBuildSubmission(ctx context.Context, q Quote) (*ledger.SubmissionRequest, error) {
	v.logger.Debug("validating trade",
		zap.String("state", StateValidating.String()),
		zap.String("side", q.Side.String()),
		zap.Uint64("token_amount", q.TokenAmount),
		zap.Uint64("quoted_octas", q.AmountOctas))

	if v.policy.MaxQuoteAge > 0 && time.Since(q.CreatedAt) > v.policy.MaxQuoteAge {
		return nil, v.reject(ReasonQuoteExpired,
			fmt.Sprintf("quote is %s old", time.Since(q.CreatedAt).Round(time.Second)))
	}

	snap, err := ledger.FetchSnapshot(ctx, v.ledger, v.creator, v.tokenID)
	if err != nil {
		return nil, fmt.Errorf("fetch ledger snapshot: %w", err)
	}

	fresh := bonding_curve.CurveState{
		TokenSupply: snap.Supply,
		AlgoReserve: snap.Reserve,
		Phase:       bonding_curve.PhaseActive,
	}

	if q.Side == bonding_curve.SideBuy {
		// Integer margin against the ceiling: the client's estimate and
		// the contract's arithmetic may round a token apart.
		needed := snap.Supply + q.TokenAmount + v.policy.SupplyMarginTokens
		if needed < snap.Supply || needed > snap.Ceiling {
			return nil, v.reject(ReasonSupplyExhausted,
				fmt.Sprintf("supply %d + %d tokens breaches ceiling %d", snap.Supply, q.TokenAmount, snap.Ceiling))
		}
	}

	var recomputed bonding_curve.Quote
	if q.Side == bonding_curve.SideBuy {
		recomputed, err = bonding_curve.QuoteBuy(v.config, fresh, q.TokenAmount)
	} else {
		recomputed, err = bonding_curve.QuoteSell(v.config, fresh, q.TokenAmount)
	}
	if err != nil {
		return nil, v.reject(ReasonStalePrice,
			fmt.Sprintf("quote no longer computable against live state: %v", err))
	}

	tolerance, err := fixedpoint.MulDiv(q.AmountOctas, v.policy.PriceToleranceBps, 10_000)
	if err != nil {
		return nil, err
	}
	if diff := absDiff(recomputed.AmountOctas, q.AmountOctas); diff > tolerance {
		return nil, v.reject(ReasonStalePrice,
			fmt.Sprintf("price moved %d octas against a tolerance of %d", diff, tolerance))
	}

	if recomputed.AmountOctas < v.policy.MinNotionalOctas {
		return nil, v.reject(ReasonBelowMinimum,
			fmt.Sprintf("%d octas is below the %d octas minimum", recomputed.AmountOctas, v.policy.MinNotionalOctas))
	}

	req, err := v.buildSubmission(q, recomputed)
	if err != nil {
		return nil, err
	}
	v.logger.Info("trade accepted",
		zap.String("state", StateAccepted.String()),
		zap.String("side", q.Side.String()),
		zap.Uint64("payment_octas", req.PaymentOctas),
		zap.Uint64("min_output", req.MinOutput))
	return req, nil
}

func (v *Validator) buildSubmission(q Quote, recomputed bonding_curve.Quote) (*ledger.SubmissionRequest, error) {
	req := &ledger.SubmissionRequest{
		Creator:     v.creator,
		TokenID:     v.tokenID,
		TokenAmount: q.TokenAmount,
	}
	if q.Side == bonding_curve.SideBuy {
		// Shave the safety factor off the payment so client-side floor
		// rounding can never overdraw the buyer.
		adjusted, err := fixedpoint.MulDiv(recomputed.AmountOctas, 10_000-v.policy.SafetyFactorBps, 10_000)
		if err != nil {
			return nil, err
		}
		minOut, err := fixedpoint.MulDiv(q.TokenAmount, v.policy.MinOutputBps, 10_000)
		if err != nil {
			return nil, err
		}
		req.Function = "buy_tokens"
		req.PaymentOctas = adjusted
		req.MinOutput = minOut
		return req, nil
	}
	minOut, err := fixedpoint.MulDiv(recomputed.AmountOctas, v.policy.MinOutputBps, 10_000)
	if err != nil {
		return nil, err
	}
	req.Function = "sell_tokens"
	req.PaymentOctas = recomputed.AmountOctas
	req.MinOutput = minOut
	return req, nil
}

func (v *Validator) reject(reason RejectionReason, detail string) error {
	v.logger.Warn("trade rejected",
		zap.String("state", StateRejected.String()),
		zap.String("reason", reason.String()),
		zap.String("detail", detail))
	return &Rejection{Reason: reason, Detail: detail}
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
