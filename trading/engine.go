package trading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/photon-social/photon-go/bonding_curve"
	"github.com/photon-social/photon-go/ledger"
)

// Engine is the quote consumer's entry point for one token: it prices
// trades against a cached curve state, runs the safety protocol on
// submission and refreshes the cache from the ledger, which stays the
// source of truth after confirmation.
type Engine struct {
	config  bonding_curve.CurveConfig
	ledger  ledger.Ledger
	policy  Policy
	creator string
	tokenID string
	signer  string

	validator  *Validator
	serializer *Serializer
	logger     *zap.Logger

	mu    sync.RWMutex
	state bonding_curve.CurveState
}

// NewEngine wires the engine for a signer session. The serializer lives
// and dies with it.
func NewEngine(cfg bonding_curve.CurveConfig, l ledger.Ledger, policy Policy, creator, tokenID, signer string, logger *zap.Logger) *Engine {
	return &Engine{
		config:     cfg,
		ledger:     l,
		policy:     policy,
		creator:    creator,
		tokenID:    tokenID,
		signer:     signer,
		validator:  NewValidator(l, cfg, policy, creator, tokenID, logger),
		serializer: NewSerializer(signer, logger),
		logger:     logger.Named("trading"),
		state:      bonding_curve.NewCurveState(),
	}
}

// State returns the cached, possibly-stale curve state.
func (e *Engine) State() bonding_curve.CurveState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// RefreshState replaces the cached state with a fresh ledger snapshot.
func (e *Engine) RefreshState(ctx context.Context) error {
	snap, err := ledger.FetchSnapshot(ctx, e.ledger, e.creator, e.tokenID)
	if err != nil {
		return fmt.Errorf("refresh curve state: %w", err)
	}
	e.mu.Lock()
	e.state.TokenSupply = snap.Supply
	e.state.AlgoReserve = snap.Reserve
	e.mu.Unlock()
	return nil
}

// Quote prices a trade by token amount against the cached state.
func (e *Engine) Quote(side bonding_curve.Side, tokenAmount uint64) (Quote, error) {
	state := e.State()
	var (
		q   bonding_curve.Quote
		err error
	)
	if side == bonding_curve.SideBuy {
		q, err = bonding_curve.QuoteBuy(e.config, state, tokenAmount)
	} else {
		q, err = bonding_curve.QuoteSell(e.config, state, tokenAmount)
	}
	if err != nil {
		return Quote{}, err
	}
	return Quote{Quote: q, CreatedAt: time.Now()}, nil
}

// QuoteBySpend prices a buy by octas spend rather than token amount.
func (e *Engine) QuoteBySpend(paymentOctas uint64) (Quote, error) {
	q, err := bonding_curve.QuoteTokensForPayment(e.config, e.State(), paymentOctas)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Quote: q, CreatedAt: time.Now()}, nil
}

// Trade validates the quote, waits its turn in the signer's queue, submits
// and awaits confirmation. An indeterminate confirmation is returned
// as-is with the transaction id: the trade may still land, and the caller
// must re-query rather than resubmit blindly.
func (e *Engine) Trade(ctx context.Context, q Quote) (ledger.TxID, error) {
	req, err := e.validator.ValidateAndBuildSubmission(ctx, q)
	if err != nil {
		return "", err
	}
	req.Signer = e.signer

	var txID ledger.TxID
	err = e.serializer.Do(ctx, func(ctx context.Context) error {
		id, err := e.ledger.SubmitTrade(ctx, req)
		if err != nil {
			return err
		}
		txID = id
		_, err = e.ledger.WaitForTransaction(ctx, id)
		return err
	})

	if err != nil && !errors.Is(err, ledger.ErrConfirmationIndeterminate) {
		return txID, err
	}
	confirmErr := err

	// The ledger is authoritative from here; pull the post-trade state.
	if refreshErr := e.RefreshState(ctx); refreshErr != nil {
		e.logger.Warn("state refresh after trade failed",
			zap.String("tx", string(txID)),
			zap.Error(refreshErr))
	}
	return txID, confirmErr
}
