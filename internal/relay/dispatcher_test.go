package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/protocol"
)

type fakeSubmitter struct {
	name  string
	sig   solana.Signature
	err   error
	delay time.Duration
	tip   solana.PublicKey
}

func (f *fakeSubmitter) Name() string { return f.name }

func (f *fakeSubmitter) TipAccount() (solana.PublicKey, bool) {
	return f.tip, !f.tip.IsZero()
}

func (f *fakeSubmitter) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return solana.Signature{}, ctx.Err()
		}
	}
	return f.sig, f.err
}

func newSig(b byte) solana.Signature {
	var sig solana.Signature
	sig[0] = b
	return sig
}

func TestSubmitFirstSuccessWins(t *testing.T) {
	fast := &fakeSubmitter{name: "fast", sig: newSig(1)}
	slow := &fakeSubmitter{name: "slow", sig: newSig(2), delay: 500 * time.Millisecond}

	d, err := NewDispatcher([]Submitter{slow, fast}, time.Second, zap.NewNop())
	require.NoError(t, err)

	receipt, err := d.Submit(context.Background(), &solana.Transaction{})
	require.NoError(t, err)
	assert.Equal(t, "fast", receipt.Relay)
	assert.Equal(t, newSig(1), receipt.Signature)
}

func TestSubmitSurvivesFailures(t *testing.T) {
	failing := &fakeSubmitter{name: "failing", err: errors.New("boom")}
	ok := &fakeSubmitter{name: "ok", sig: newSig(3), delay: 20 * time.Millisecond}

	d, err := NewDispatcher([]Submitter{failing, ok}, time.Second, zap.NewNop())
	require.NoError(t, err)

	receipt, err := d.Submit(context.Background(), &solana.Transaction{})
	require.NoError(t, err)
	assert.Equal(t, "ok", receipt.Relay)
}

func TestSubmitAllFail(t *testing.T) {
	a := &fakeSubmitter{name: "a", err: errors.New("rate limited")}
	b := &fakeSubmitter{name: "b", err: errors.New("timeout")}

	d, err := NewDispatcher([]Submitter{a, b}, time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = d.Submit(context.Background(), &solana.Transaction{})
	require.Error(t, err)
	assert.True(t, IsAllRelaysFailed(err))

	var agg *AllRelaysFailedError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Failures, 2)
	assert.Contains(t, agg.Failures, "a")
	assert.Contains(t, agg.Failures, "b")
}

func TestSubmitContextCanceled(t *testing.T) {
	slow := &fakeSubmitter{name: "slow", sig: newSig(4), delay: time.Second}

	d, err := NewDispatcher([]Submitter{slow}, 2*time.Second, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = d.Submit(ctx, &solana.Transaction{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTipRoutesOrder(t *testing.T) {
	tipA := solana.NewWallet().PublicKey()
	tipB := solana.NewWallet().PublicKey()

	d, err := NewDispatcher([]Submitter{
		&fakeSubmitter{name: "a", tip: tipA},
		&fakeSubmitter{name: "plain"},
		&fakeSubmitter{name: "b", tip: tipB},
	}, time.Second, zap.NewNop())
	require.NoError(t, err)

	routes := d.TipRoutes()
	require.Len(t, routes, 2)
	assert.Equal(t, "a", routes[0].Relay)
	assert.Equal(t, tipA, routes[0].Account)
	assert.Equal(t, "b", routes[1].Relay)
	assert.Equal(t, tipB, routes[1].Account)
	assert.Equal(t, 3, d.RelayCount())
}

func TestNewDispatcherRequiresRelays(t *testing.T) {
	_, err := NewDispatcher(nil, time.Second, zap.NewNop())
	assert.True(t, protocol.IsValidationError(err))
}
