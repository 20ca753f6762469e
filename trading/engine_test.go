package trading

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/photon-social/photon-go/bonding_curve"
	"github.com/photon-social/photon-go/ledger"
)

func newTestEngine(t *testing.T, fake *fakeLedger) *Engine {
	t.Helper()
	return NewEngine(launchConfig(t), fake, DefaultPolicy(), "creator", "token", "signer", zap.NewNop())
}

func TestEngineTrade(t *testing.T) {
	fake := &fakeLedger{ceiling: 1_000_000}
	// The chain applies the trade; subsequent reads see the new state.
	fake.onSubmit = func(req *ledger.SubmissionRequest) {
		fake.supply += req.TokenAmount
		fake.reserve += 1_001_001
	}
	e := newTestEngine(t, fake)

	q, err := e.Quote(bonding_curve.SideBuy, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_001_001), q.AmountOctas)

	txID, err := e.Trade(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, ledger.TxID("0xabc"), txID)

	subs := fake.submissions()
	require.Len(t, subs, 1)
	require.Equal(t, "signer", subs[0].Signer)
	require.Equal(t, "buy_tokens", subs[0].Function)
	require.Equal(t, uint64(999_999), subs[0].PaymentOctas)

	// The cache reflects the post-trade ledger, not the local estimate.
	state := e.State()
	require.Equal(t, uint64(1000), state.TokenSupply)
	require.Equal(t, uint64(1_001_001), state.AlgoReserve)
}

func TestEngineTradeRejectedNeverSubmits(t *testing.T) {
	fake := &fakeLedger{supply: 50_000, reserve: 52_631_578, ceiling: 1_000_000}
	e := newTestEngine(t, fake)

	// Quote against the stale zero-supply cache.
	q, err := e.Quote(bonding_curve.SideBuy, 1000)
	require.NoError(t, err)

	_, err = e.Trade(context.Background(), q)
	requireRejected(t, err, ReasonStalePrice)
	require.Empty(t, fake.submissions())
}

func TestEngineTradeIndeterminateConfirmation(t *testing.T) {
	fake := &fakeLedger{ceiling: 1_000_000, waitErr: ledger.ErrConfirmationIndeterminate}
	e := newTestEngine(t, fake)

	q, err := e.Quote(bonding_curve.SideBuy, 1000)
	require.NoError(t, err)

	txID, err := e.Trade(context.Background(), q)
	require.ErrorIs(t, err, ledger.ErrConfirmationIndeterminate)
	require.Equal(t, ledger.TxID("0xabc"), txID, "the id is returned so the caller can re-query")
}

func TestEngineRefreshState(t *testing.T) {
	fake := &fakeLedger{supply: 123, reserve: 456_789, ceiling: 1_000_000}
	e := newTestEngine(t, fake)
	require.Equal(t, uint64(0), e.State().TokenSupply)

	require.NoError(t, e.RefreshState(context.Background()))
	state := e.State()
	require.Equal(t, uint64(123), state.TokenSupply)
	require.Equal(t, uint64(456_789), state.AlgoReserve)
	require.Equal(t, bonding_curve.PhaseActive, state.Phase)
}

func TestEngineQuoteBySpend(t *testing.T) {
	e := newTestEngine(t, &fakeLedger{ceiling: 1_000_000})

	q, err := e.QuoteBySpend(1_001_001)
	require.NoError(t, err)
	require.Equal(t, bonding_curve.SideBuy, q.Side)
	require.Equal(t, uint64(999), q.TokenAmount)
	require.False(t, q.CreatedAt.IsZero())

	_, err = e.QuoteBySpend(0)
	require.ErrorIs(t, err, bonding_curve.ErrInvalidAmount)
}
