package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/dex"
	"github.com/solanastream/tradekit/internal/dex/pumpfun"
	"github.com/solanastream/tradekit/internal/protocol"
	"github.com/solanastream/tradekit/internal/relay"
	"github.com/solanastream/tradekit/internal/types"
	"github.com/solanastream/tradekit/internal/wallet"
)

var computeBudgetProgram = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

type fakeReader struct {
	mu               sync.Mutex
	accountInfoCalls int
	blockhash        solana.Hash
	balance          uint64
}

func (r *fakeReader) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	r.mu.Lock()
	r.accountInfoCalls++
	r.mu.Unlock()
	return nil, nil
}

func (r *fakeReader) GetAccountDataInto(ctx context.Context, pubkey solana.PublicKey, out interface{}) error {
	return nil
}

func (r *fakeReader) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	return r.blockhash, nil
}

func (r *fakeReader) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	return r.balance, nil
}

type captureSubmitter struct {
	mu  sync.Mutex
	tx  *solana.Transaction
	tip solana.PublicKey
}

func (s *captureSubmitter) Name() string { return "capture" }

func (s *captureSubmitter) TipAccount() (solana.PublicKey, bool) {
	return s.tip, !s.tip.IsZero()
}

func (s *captureSubmitter) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	s.mu.Lock()
	s.tx = tx
	s.mu.Unlock()
	return tx.Signatures[0], nil
}

func (s *captureSubmitter) captured() *solana.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx
}

func testCurveSnapshot(t *testing.T, mint solana.PublicKey) dex.Snapshot {
	t.Helper()
	bondingCurve, err := pumpfun.DeriveBondingCurve(mint)
	require.NoError(t, err)
	return &pumpfun.CurveSnapshot{
		Mint:         mint,
		BondingCurve: bondingCurve,
		State: pumpfun.CurveState{
			VirtualTokenReserves: 1_073_000_000_000_000,
			VirtualSolReserves:   30_000_000_000,
			Creator:              solana.NewWallet().PublicKey(),
		},
	}
}

func newTestEngine(t *testing.T, submitter relay.Submitter, tips []uint64, reader *fakeReader) (*Engine, *wallet.Wallet) {
	t.Helper()
	w, err := wallet.New(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)

	registry := dex.NewRegistry(zap.NewNop())
	require.NoError(t, registry.Register(pumpfun.New(zap.NewNop())))

	dispatcher, err := relay.NewDispatcher([]relay.Submitter{submitter}, time.Second, zap.NewNop())
	require.NoError(t, err)

	eng := New(w, reader, registry, dispatcher, Config{
		ComputeUnits:           200_000,
		UnitPriceMicroLamports: 5_000,
		TipLamports:            tips,
	}, zap.NewNop())
	return eng, w
}

func TestBuyBuildsSingleSignedTransaction(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	tip := solana.NewWallet().PublicKey()
	submitter := &captureSubmitter{tip: tip}
	reader := &fakeReader{}

	eng, w := newTestEngine(t, submitter, []uint64{100_000}, reader)

	var blockhash solana.Hash
	blockhash[0] = 7

	result, err := eng.Buy(context.Background(), Order{
		Protocol:        protocol.TagPumpFun,
		Mint:            mint,
		Amount:          1_000_000,
		SlippageBps:     100,
		Snapshot:        testCurveSnapshot(t, mint),
		RecentBlockhash: blockhash,
	})
	require.NoError(t, err)

	tx := submitter.captured()
	require.NotNil(t, tx)

	// Snapshot and blockhash came from the order, so the chain was
	// never touched.
	assert.Equal(t, 0, reader.accountInfoCalls)
	assert.Equal(t, blockhash, tx.Message.RecentBlockhash)

	// Compute budget first, then ATA create and swap, tip transfer
	// last.
	instructions := tx.Message.Instructions
	require.Len(t, instructions, 5)

	firstProgram, err := tx.Message.Program(instructions[0].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, computeBudgetProgram, firstProgram)

	lastProgram, err := tx.Message.Program(instructions[len(instructions)-1].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, lastProgram)

	// Signed exactly once by the payer.
	require.Len(t, tx.Signatures, 1)
	assert.False(t, tx.Signatures[0].IsZero())
	payer, err := tx.Message.Account(0)
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey, payer)

	assert.Equal(t, result.Signature, tx.Signatures[0])
	assert.Equal(t, "capture", result.Relay)
	require.NotNil(t, result.Quote)
	assert.Equal(t, uint64(1_000_000), result.Quote.AmountIn)

	stages := make([]string, 0, len(result.Timings))
	for _, st := range result.Timings {
		stages = append(stages, st.Stage)
	}
	assert.Equal(t, []string{"quote", "build", "sign", "submit"}, stages)
}

func TestBuyUsesNamedPriorityProfile(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	submitter := &captureSubmitter{}
	reader := &fakeReader{}

	w, err := wallet.New(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)

	registry := dex.NewRegistry(zap.NewNop())
	require.NoError(t, registry.Register(pumpfun.New(zap.NewNop())))

	dispatcher, err := relay.NewDispatcher([]relay.Submitter{submitter}, time.Second, zap.NewNop())
	require.NoError(t, err)

	eng := New(w, reader, registry, dispatcher, Config{PriorityLevel: types.PriorityExtreme}, zap.NewNop())

	_, err = eng.Buy(context.Background(), Order{
		Protocol:    protocol.TagPumpFun,
		Mint:        mint,
		Amount:      1_000_000,
		SlippageBps: 100,
		Snapshot:    testCurveSnapshot(t, mint),
	})
	require.NoError(t, err)

	tx := submitter.captured()
	require.NotNil(t, tx)

	// The extreme profile prepends limit, price and heap frame ahead of
	// the ATA create and swap.
	instructions := tx.Message.Instructions
	require.Len(t, instructions, 5)
	for i := 0; i < 3; i++ {
		prog, err := tx.Message.Program(instructions[i].ProgramIDIndex)
		require.NoError(t, err)
		assert.Equal(t, computeBudgetProgram, prog)
	}
}

func TestBuyTipCountMismatch(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	submitter := &captureSubmitter{tip: solana.NewWallet().PublicKey()}

	eng, _ := newTestEngine(t, submitter, nil, &fakeReader{})

	_, err := eng.Buy(context.Background(), Order{
		Protocol:    protocol.TagPumpFun,
		Mint:        mint,
		Amount:      1_000_000,
		SlippageBps: 100,
		Snapshot:    testCurveSnapshot(t, mint),
	})
	assert.True(t, protocol.IsValidationError(err))
}

func TestBuyRejectsForeignSnapshotVenue(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	submitter := &captureSubmitter{}

	eng, _ := newTestEngine(t, submitter, nil, &fakeReader{})

	_, err := eng.Buy(context.Background(), Order{
		Protocol:    protocol.TagBonk,
		Mint:        mint,
		Amount:      1_000_000,
		SlippageBps: 100,
		Snapshot:    testCurveSnapshot(t, mint),
	})
	assert.True(t, protocol.IsValidationError(err))
}

func TestValidateOrder(t *testing.T) {
	eng, _ := newTestEngine(t, &captureSubmitter{}, nil, &fakeReader{})

	_, err := eng.Buy(context.Background(), Order{Protocol: "unknown", Mint: solana.NewWallet().PublicKey(), Amount: 1, SlippageBps: 1})
	assert.True(t, protocol.IsValidationError(err))

	_, err = eng.Buy(context.Background(), Order{Protocol: protocol.TagPumpFun, Amount: 1, SlippageBps: 1})
	assert.True(t, protocol.IsValidationError(err))

	_, err = eng.Buy(context.Background(), Order{Protocol: protocol.TagPumpFun, Mint: solana.NewWallet().PublicKey(), Amount: 0, SlippageBps: 1})
	assert.True(t, protocol.IsValidationError(err))
}

func TestSellPercent(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	submitter := &captureSubmitter{}
	reader := &fakeReader{balance: 1_000_000}

	eng, _ := newTestEngine(t, submitter, nil, reader)

	result, err := eng.SellPercent(context.Background(), Order{
		Protocol:    protocol.TagPumpFun,
		Mint:        mint,
		SlippageBps: 100,
		Snapshot:    testCurveSnapshot(t, mint),
	}, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), result.Quote.AmountIn)
}

func TestSellPercentValidation(t *testing.T) {
	eng, _ := newTestEngine(t, &captureSubmitter{}, nil, &fakeReader{balance: 100})

	_, err := eng.SellPercent(context.Background(), Order{}, 0)
	assert.True(t, protocol.IsValidationError(err))

	_, err = eng.SellPercent(context.Background(), Order{}, 150)
	assert.True(t, protocol.IsValidationError(err))
}

func TestSellPercentNoBalance(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	eng, _ := newTestEngine(t, &captureSubmitter{}, nil, &fakeReader{balance: 0})

	_, err := eng.SellPercent(context.Background(), Order{
		Protocol:    protocol.TagPumpFun,
		Mint:        mint,
		SlippageBps: 100,
	}, 100)
	assert.True(t, protocol.IsValidationError(err))
}
