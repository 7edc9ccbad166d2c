package bonk

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/codec"
	"github.com/solanastream/tradekit/internal/dex"
	"github.com/solanastream/tradekit/internal/protocol"
	"github.com/solanastream/tradekit/internal/wallet"
)

func newTestWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.New(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	return w
}

func testSnapshot() *PoolSnapshot {
	return &PoolSnapshot{
		PoolState:      solana.NewWallet().PublicKey(),
		BaseVault:      solana.NewWallet().PublicKey(),
		QuoteVault:     solana.NewWallet().PublicKey(),
		VirtualBase:    1_073_000_000_000_000,
		VirtualQuote:   30_000_000_000,
		RealBase:       100_000_000_000,
		RealQuote:      2_500_000_000,
		ProtocolFeeBps: DefaultProtocolFeeBps,
		PlatformFeeBps: DefaultPlatformFeeBps,
		ShareFeeBps:    DefaultShareFeeBps,
	}
}

func TestQuoteBuyUsesEffectiveReserves(t *testing.T) {
	a := New(zap.NewNop())
	snap := testSnapshot()

	quote, err := a.QuoteBuy(snap, 1_000_000, 100)
	require.NoError(t, err)

	netIn := dex.DeductFeeBps(1_000_000, snap.TotalFeeBps())
	expected := dex.ConstantProductOut(
		snap.VirtualQuote+snap.RealQuote,
		snap.VirtualBase-snap.RealBase,
		netIn)
	assert.Equal(t, expected, quote.ExpectedOut)
	assert.Equal(t, dex.ApplySlippageDown(expected, 100), quote.MinOut)
}

func TestQuoteSellDeductsFeeFromOutput(t *testing.T) {
	a := New(zap.NewNop())
	snap := testSnapshot()

	quote, err := a.QuoteSell(snap, 50_000_000_000, 200)
	require.NoError(t, err)

	gross := dex.ConstantProductOut(
		snap.VirtualBase-snap.RealBase,
		snap.VirtualQuote+snap.RealQuote,
		50_000_000_000)
	expected := dex.DeductFeeBps(gross, snap.TotalFeeBps())
	assert.Equal(t, expected, quote.ExpectedOut)
	assert.Equal(t, dex.ApplySlippageDown(expected, 200), quote.MinOut)
}

func TestQuoteExhaustedPool(t *testing.T) {
	a := New(zap.NewNop())
	snap := testSnapshot()
	snap.RealBase = snap.VirtualBase

	_, err := a.QuoteBuy(snap, 1_000_000, 100)
	assert.True(t, protocol.IsValidationError(err))
}

func TestQuoteDustAmounts(t *testing.T) {
	a := New(zap.NewNop())
	snap := testSnapshot()

	// One token sells for zero lamports.
	_, err := a.QuoteSell(snap, 1, 100)
	assert.True(t, protocol.IsValidationError(err))

	// One lamport nets to zero input after the fee schedule.
	_, err = a.QuoteBuy(snap, 1, 100)
	assert.True(t, protocol.IsValidationError(err))
}

func TestSnapshotFromEvent(t *testing.T) {
	a := New(zap.NewNop())
	pool := solana.NewWallet().PublicKey()

	snap, err := a.SnapshotFromEvent(&codec.BonkTradeEvent{
		PoolState:      pool,
		VirtualBase:    1_000_000_000_000_000,
		VirtualQuote:   28_000_000_000,
		RealBaseAfter:  50_000_000_000,
		RealQuoteAfter: 1_200_000_000,
	})
	require.NoError(t, err)

	ps, ok := snap.(*PoolSnapshot)
	require.True(t, ok)
	assert.Equal(t, pool, ps.PoolState)
	assert.Equal(t, uint64(50_000_000_000), ps.RealBase)
	assert.Equal(t, protocol.TagBonk, snap.Venue())
	// Vaults are absent in events; the builder derives them on demand.
	assert.True(t, ps.BaseVault.IsZero())
}

func TestSnapshotFromEventWrongKind(t *testing.T) {
	a := New(zap.NewNop())

	_, err := a.SnapshotFromEvent(&codec.BonkPoolCreateEvent{})
	assert.True(t, protocol.IsValidationError(err))
}

func TestBuildBuyInstructions(t *testing.T) {
	a := New(zap.NewNop())
	snap := testSnapshot()
	w := newTestWallet(t)
	mint := solana.NewWallet().PublicKey()

	quote, err := a.QuoteBuy(snap, 1_000_000, 100)
	require.NoError(t, err)

	instructions, err := a.BuildBuyInstructions(dex.BuildParams{
		Wallet:   w,
		Mint:     mint,
		Snapshot: snap,
		Quote:    quote,
	})
	require.NoError(t, err)

	// Two ATA creates, transfer, sync, swap, close.
	require.Len(t, instructions, 6)

	swap := instructions[4]
	assert.Equal(t, protocol.BonkProgramID, swap.ProgramID())
	assert.Len(t, swap.Accounts(), 15)

	data, err := swap.Data()
	require.NoError(t, err)
	require.Len(t, data, 32)
	assert.Equal(t, buyExactInDiscriminator, data[:8])
}

func TestBuildSellDerivesMissingVaults(t *testing.T) {
	a := New(zap.NewNop())
	w := newTestWallet(t)
	mint := solana.NewWallet().PublicKey()

	snap := testSnapshot()
	snap.BaseVault = solana.PublicKey{}
	snap.QuoteVault = solana.PublicKey{}

	quote, err := a.QuoteSell(snap, 1_000_000, 100)
	require.NoError(t, err)

	instructions, err := a.BuildSellInstructions(dex.BuildParams{
		Wallet:   w,
		Mint:     mint,
		Snapshot: snap,
		Quote:    quote,
	})
	require.NoError(t, err)
	require.Len(t, instructions, 3)

	expectedBase, err := DeriveVault(snap.PoolState, mint)
	require.NoError(t, err)

	accounts := instructions[1].Accounts()
	require.Len(t, accounts, 15)
	assert.Equal(t, expectedBase, accounts[7].PublicKey)
}
