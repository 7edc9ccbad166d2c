// =============================
// File: internal/dex/pumpswap/adapter.go
// =============================
package pumpswap

import (
	"bytes"
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solanastream/tradekit/internal/chain"
	"github.com/solanastream/tradekit/internal/codec"
	"github.com/solanastream/tradekit/internal/dex"
	"github.com/solanastream/tradekit/internal/protocol"
)

// Adapter prices and builds AMM pool trades.
type Adapter struct {
	logger *zap.Logger
}

// New creates the AMM adapter.
func New(logger *zap.Logger) *Adapter {
	return &Adapter{logger: logger.Named("pumpswap")}
}

func (a *Adapter) Name() string { return "PumpSwap" }

func (a *Adapter) Tag() protocol.Tag { return protocol.TagPumpSwap }

// QuoteBuy prices lamports into base tokens over the pool reserves,
// deducting the combined swap fee from the input.
func (a *Adapter) QuoteBuy(snap dex.Snapshot, lamportsIn, slippageBps uint64) (*dex.Quote, error) {
	ps, err := a.poolSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if err := dex.ValidateTradeParams(lamportsIn, slippageBps); err != nil {
		return nil, err
	}
	if ps.BaseReserves == 0 || ps.QuoteReserves == 0 {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "pool has zero reserves"}
	}

	netIn := dex.DeductFeeBps(lamportsIn, ps.TotalFeeBps())
	expected := dex.ConstantProductOut(ps.QuoteReserves, ps.BaseReserves, netIn)
	if expected == 0 {
		return nil, &protocol.ValidationError{Field: "amount", Reason: "implied token output is zero"}
	}
	minOut := dex.ApplySlippageDown(expected, slippageBps)

	a.logger.Debug("Pool buy quote",
		zap.Uint64("lamports_in", lamportsIn),
		zap.Uint64("net_in", netIn),
		zap.Uint64("expected_tokens", expected),
		zap.Uint64("min_tokens_out", minOut))

	return &dex.Quote{AmountIn: lamportsIn, ExpectedOut: expected, MinOut: minOut}, nil
}

// QuoteSell prices base tokens into lamports, deducting the combined
// swap fee from the output.
func (a *Adapter) QuoteSell(snap dex.Snapshot, tokensIn, slippageBps uint64) (*dex.Quote, error) {
	ps, err := a.poolSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if err := dex.ValidateTradeParams(tokensIn, slippageBps); err != nil {
		return nil, err
	}
	if ps.BaseReserves == 0 || ps.QuoteReserves == 0 {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "pool has zero reserves"}
	}

	raw := dex.ConstantProductOut(ps.BaseReserves, ps.QuoteReserves, tokensIn)
	expected := dex.DeductFeeBps(raw, ps.TotalFeeBps())
	if expected == 0 {
		return nil, &protocol.ValidationError{Field: "amount", Reason: "implied lamport output is zero"}
	}
	minOut := dex.ApplySlippageDown(expected, slippageBps)

	return &dex.Quote{AmountIn: tokensIn, ExpectedOut: expected, MinOut: minOut}, nil
}

// FetchSnapshot reads the canonical pool account and both vault
// balances from chain.
func (a *Adapter) FetchSnapshot(ctx context.Context, reader chain.Reader, mint solana.PublicKey) (dex.Snapshot, error) {
	pool, err := DeriveCanonicalPool(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive pool address: %w", err)
	}

	result, err := reader.GetAccountInfo(ctx, pool)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("pool account not found at %s", pool)
	}

	data := result.Value.Data.GetBinary()
	if len(data) <= 8 || !bytes.Equal(data[:8], poolAccountDiscriminator[:]) {
		return nil, &protocol.DecodeError{Program: protocol.PumpSwapProgramID,
			Reason: fmt.Sprintf("account %s is not a pool", pool)}
	}

	var account PoolAccount
	if err := bin.NewBorshDecoder(data[8:]).Decode(&account); err != nil {
		return nil, &protocol.DecodeError{Program: protocol.PumpSwapProgramID, Reason: "pool account state", Err: err}
	}

	var baseReserves, quoteReserves uint64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		baseReserves, err = reader.GetTokenAccountBalance(gctx, account.PoolBaseTokenAccount, rpc.CommitmentProcessed)
		return err
	})
	g.Go(func() error {
		var err error
		quoteReserves, err = reader.GetTokenAccountBalance(gctx, account.PoolQuoteTokenAccount, rpc.CommitmentProcessed)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch pool reserves: %w", err)
	}

	return &PoolSnapshot{
		Pool:              pool,
		BaseReserves:      baseReserves,
		QuoteReserves:     quoteReserves,
		LpFeeBps:          DefaultLpFeeBps,
		ProtocolFeeBps:    DefaultProtocolFeeBps,
		CoinCreatorFeeBps: DefaultCoinCreatorFeeBps,
		CoinCreator:       account.CoinCreator,
	}, nil
}

// SnapshotFromEvent derives a snapshot from a decoded swap event; the
// event carries the post-trade reserves and the live fee schedule.
func (a *Adapter) SnapshotFromEvent(ev codec.Event) (dex.Snapshot, error) {
	switch e := ev.(type) {
	case *codec.PumpSwapBuyEvent:
		return &PoolSnapshot{
			Pool:              e.Pool,
			BaseReserves:      e.PoolBaseTokenReserves,
			QuoteReserves:     e.PoolQuoteTokenReserves,
			LpFeeBps:          e.LpFeeBasisPoints,
			ProtocolFeeBps:    e.ProtocolFeeBasisPoints,
			CoinCreatorFeeBps: e.CoinCreatorFeeBasisPoints,
			CoinCreator:       e.CoinCreator,
		}, nil
	case *codec.PumpSwapSellEvent:
		return &PoolSnapshot{
			Pool:              e.Pool,
			BaseReserves:      e.PoolBaseTokenReserves,
			QuoteReserves:     e.PoolQuoteTokenReserves,
			LpFeeBps:          e.LpFeeBasisPoints,
			ProtocolFeeBps:    e.ProtocolFeeBasisPoints,
			CoinCreatorFeeBps: e.CoinCreatorFeeBasisPoints,
			CoinCreator:       e.CoinCreator,
		}, nil
	}
	return nil, &protocol.ValidationError{Field: "event", Reason: fmt.Sprintf("cannot derive pool snapshot from %s/%s", ev.Protocol(), ev.Kind())}
}

// BuildBuyInstructions wraps SOL, swaps quote into base, and unwraps
// the leftover.
func (a *Adapter) BuildBuyInstructions(p dex.BuildParams) ([]solana.Instruction, error) {
	acc, err := a.resolveAccounts(p)
	if err != nil {
		return nil, err
	}
	owner := p.Wallet.PublicKey

	instructions := []solana.Instruction{
		p.Wallet.CreateATAIdempotentInstruction(owner, owner, p.Mint),
		p.Wallet.CreateATAIdempotentInstruction(owner, owner, protocol.WSOLMint),
	}
	instructions = append(instructions, wrapSOLInstructions(owner, acc.UserQuoteTokenAccount, p.Quote.AmountIn)...)
	instructions = append(instructions, buildSwapInstruction(acc, true, p.Quote.MinOut, p.Quote.AmountIn))
	instructions = append(instructions, closeAccountInstruction(acc.UserQuoteTokenAccount, owner))
	return instructions, nil
}

// BuildSellInstructions swaps base into quote and unwraps the wSOL
// proceeds.
func (a *Adapter) BuildSellInstructions(p dex.BuildParams) ([]solana.Instruction, error) {
	acc, err := a.resolveAccounts(p)
	if err != nil {
		return nil, err
	}
	owner := p.Wallet.PublicKey

	instructions := []solana.Instruction{
		p.Wallet.CreateATAIdempotentInstruction(owner, owner, protocol.WSOLMint),
		buildSwapInstruction(acc, false, p.Quote.AmountIn, p.Quote.MinOut),
		closeAccountInstruction(acc.UserQuoteTokenAccount, owner),
	}
	return instructions, nil
}

func (a *Adapter) resolveAccounts(p dex.BuildParams) (swapAccounts, error) {
	ps, err := a.poolSnapshot(p.Snapshot)
	if err != nil {
		return swapAccounts{}, err
	}

	globalConfig, err := DeriveGlobalConfig()
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to derive global config: %w", err)
	}
	eventAuthority, err := DeriveEventAuthority()
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to derive event authority: %w", err)
	}

	userBase, err := p.Wallet.GetATA(p.Mint)
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to get base token account: %w", err)
	}
	userQuote, err := p.Wallet.GetATA(protocol.WSOLMint)
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to get quote token account: %w", err)
	}

	poolBase, poolQuote, err := PoolVaults(ps.Pool, p.Mint)
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to derive pool vaults: %w", err)
	}

	feeRecipientATA, _, err := solana.FindAssociatedTokenAddress(ProtocolFeeRecipient, protocol.WSOLMint)
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to derive fee recipient token account: %w", err)
	}

	creatorVaultAuthority, creatorVaultATA, err := DeriveCoinCreatorVault(ps.CoinCreator)
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to derive creator vault: %w", err)
	}

	return swapAccounts{
		Pool:                             ps.Pool,
		User:                             p.Wallet.PublicKey,
		GlobalConfig:                     globalConfig,
		BaseMint:                         p.Mint,
		UserBaseTokenAccount:             userBase,
		UserQuoteTokenAccount:            userQuote,
		PoolBaseTokenAccount:             poolBase,
		PoolQuoteTokenAccount:            poolQuote,
		ProtocolFeeRecipientTokenAccount: feeRecipientATA,
		EventAuthority:                   eventAuthority,
		CoinCreatorVaultATA:              creatorVaultATA,
		CoinCreatorVaultAuthority:        creatorVaultAuthority,
	}, nil
}

func (a *Adapter) poolSnapshot(snap dex.Snapshot) (*PoolSnapshot, error) {
	ps, ok := snap.(*PoolSnapshot)
	if !ok || ps == nil {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "pool snapshot required"}
	}
	return ps, nil
}
