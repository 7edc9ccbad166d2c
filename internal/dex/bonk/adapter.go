// =============================
// File: internal/dex/bonk/adapter.go
// =============================
package bonk

import (
	"bytes"
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/chain"
	"github.com/solanastream/tradekit/internal/codec"
	"github.com/solanastream/tradekit/internal/dex"
	"github.com/solanastream/tradekit/internal/protocol"
)

// Adapter prices and builds launchpad trades.
type Adapter struct {
	logger *zap.Logger
}

// New creates the launchpad adapter.
func New(logger *zap.Logger) *Adapter {
	return &Adapter{logger: logger.Named("bonk")}
}

func (a *Adapter) Name() string { return "Bonk Launchpad" }

func (a *Adapter) Tag() protocol.Tag { return protocol.TagBonk }

// QuoteBuy prices lamports into base tokens. Fees come off the input
// before the curve formula.
func (a *Adapter) QuoteBuy(snap dex.Snapshot, lamportsIn, slippageBps uint64) (*dex.Quote, error) {
	ps, err := a.poolSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if err := dex.ValidateTradeParams(lamportsIn, slippageBps); err != nil {
		return nil, err
	}
	if ps.VirtualBase <= ps.RealBase {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "pool base side is exhausted"}
	}

	netIn := dex.DeductFeeBps(lamportsIn, ps.TotalFeeBps())
	expected := dex.ConstantProductOut(ps.VirtualQuote+ps.RealQuote, ps.VirtualBase-ps.RealBase, netIn)
	if expected == 0 {
		return nil, &protocol.ValidationError{Field: "amount", Reason: "implied token output is zero"}
	}
	minOut := dex.ApplySlippageDown(expected, slippageBps)

	a.logger.Debug("Launchpad buy quote",
		zap.Uint64("lamports_in", lamportsIn),
		zap.Uint64("net_in", netIn),
		zap.Uint64("expected_tokens", expected),
		zap.Uint64("min_tokens_out", minOut))

	return &dex.Quote{AmountIn: lamportsIn, ExpectedOut: expected, MinOut: minOut}, nil
}

// QuoteSell prices base tokens into lamports. Fees come off the output
// after the curve formula.
func (a *Adapter) QuoteSell(snap dex.Snapshot, tokensIn, slippageBps uint64) (*dex.Quote, error) {
	ps, err := a.poolSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if err := dex.ValidateTradeParams(tokensIn, slippageBps); err != nil {
		return nil, err
	}
	if ps.VirtualBase <= ps.RealBase {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "pool base side is exhausted"}
	}

	gross := dex.ConstantProductOut(ps.VirtualBase-ps.RealBase, ps.VirtualQuote+ps.RealQuote, tokensIn)
	expected := dex.DeductFeeBps(gross, ps.TotalFeeBps())
	if expected == 0 {
		return nil, &protocol.ValidationError{Field: "amount", Reason: "implied lamport output is zero"}
	}
	minOut := dex.ApplySlippageDown(expected, slippageBps)

	return &dex.Quote{AmountIn: tokensIn, ExpectedOut: expected, MinOut: minOut}, nil
}

// FetchSnapshot reads the pool state account from chain.
func (a *Adapter) FetchSnapshot(ctx context.Context, reader chain.Reader, mint solana.PublicKey) (dex.Snapshot, error) {
	pool, err := DerivePool(mint, protocol.WSOLMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive pool state: %w", err)
	}

	result, err := reader.GetAccountInfo(ctx, pool)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("pool state account not found at %s", pool)
	}

	data := result.Value.Data.GetBinary()
	if len(data) <= 8 || !bytes.Equal(data[:8], poolAccountDiscriminator[:]) {
		return nil, &protocol.DecodeError{Program: protocol.BonkProgramID,
			Reason: fmt.Sprintf("account %s is not a pool state", pool)}
	}

	var account PoolAccount
	if err := bin.NewBorshDecoder(data[8:]).Decode(&account); err != nil {
		return nil, &protocol.DecodeError{Program: protocol.BonkProgramID, Reason: "pool state", Err: err}
	}

	return &PoolSnapshot{
		PoolState:      pool,
		BaseVault:      account.BaseVault,
		QuoteVault:     account.QuoteVault,
		VirtualBase:    account.VirtualBase,
		VirtualQuote:   account.VirtualQuote,
		RealBase:       account.RealBase,
		RealQuote:      account.RealQuote,
		ProtocolFeeBps: DefaultProtocolFeeBps,
		PlatformFeeBps: DefaultPlatformFeeBps,
		ShareFeeBps:    DefaultShareFeeBps,
	}, nil
}

// SnapshotFromEvent derives a snapshot from a decoded launchpad trade.
func (a *Adapter) SnapshotFromEvent(ev codec.Event) (dex.Snapshot, error) {
	trade, ok := ev.(*codec.BonkTradeEvent)
	if !ok {
		return nil, &protocol.ValidationError{Field: "event", Reason: fmt.Sprintf("cannot derive pool snapshot from %s/%s", ev.Protocol(), ev.Kind())}
	}

	return &PoolSnapshot{
		PoolState:      trade.PoolState,
		VirtualBase:    trade.VirtualBase,
		VirtualQuote:   trade.VirtualQuote,
		RealBase:       trade.RealBaseAfter,
		RealQuote:      trade.RealQuoteAfter,
		ProtocolFeeBps: DefaultProtocolFeeBps,
		PlatformFeeBps: DefaultPlatformFeeBps,
		ShareFeeBps:    DefaultShareFeeBps,
	}, nil
}

// BuildBuyInstructions wraps SOL, buys exact-in, and unwraps the
// leftover.
func (a *Adapter) BuildBuyInstructions(p dex.BuildParams) ([]solana.Instruction, error) {
	acc, err := a.resolveAccounts(p)
	if err != nil {
		return nil, err
	}
	ps, _ := p.Snapshot.(*PoolSnapshot)
	owner := p.Wallet.PublicKey

	instructions := []solana.Instruction{
		p.Wallet.CreateATAIdempotentInstruction(owner, owner, p.Mint),
		p.Wallet.CreateATAIdempotentInstruction(owner, owner, protocol.WSOLMint),
	}
	instructions = append(instructions, wrapSOLInstructions(owner, acc.UserQuoteToken, p.Quote.AmountIn)...)
	instructions = append(instructions, buildExactInInstruction(acc, true, p.Quote.AmountIn, p.Quote.MinOut, ps.ShareFeeBps))
	instructions = append(instructions, closeAccountInstruction(acc.UserQuoteToken, owner))
	return instructions, nil
}

// BuildSellInstructions sells exact-in and unwraps the wSOL proceeds.
func (a *Adapter) BuildSellInstructions(p dex.BuildParams) ([]solana.Instruction, error) {
	acc, err := a.resolveAccounts(p)
	if err != nil {
		return nil, err
	}
	ps, _ := p.Snapshot.(*PoolSnapshot)
	owner := p.Wallet.PublicKey

	instructions := []solana.Instruction{
		p.Wallet.CreateATAIdempotentInstruction(owner, owner, protocol.WSOLMint),
		buildExactInInstruction(acc, false, p.Quote.AmountIn, p.Quote.MinOut, ps.ShareFeeBps),
		closeAccountInstruction(acc.UserQuoteToken, owner),
	}
	return instructions, nil
}

func (a *Adapter) resolveAccounts(p dex.BuildParams) (swapAccounts, error) {
	ps, err := a.poolSnapshot(p.Snapshot)
	if err != nil {
		return swapAccounts{}, err
	}

	authority, err := DeriveAuthority()
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to derive authority: %w", err)
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

	// Event-derived snapshots do not carry vault addresses.
	baseVault, quoteVault := ps.BaseVault, ps.QuoteVault
	if baseVault.IsZero() {
		if baseVault, err = DeriveVault(ps.PoolState, p.Mint); err != nil {
			return swapAccounts{}, fmt.Errorf("failed to derive base vault: %w", err)
		}
	}
	if quoteVault.IsZero() {
		if quoteVault, err = DeriveVault(ps.PoolState, protocol.WSOLMint); err != nil {
			return swapAccounts{}, fmt.Errorf("failed to derive quote vault: %w", err)
		}
	}

	return swapAccounts{
		Payer:          p.Wallet.PublicKey,
		Authority:      authority,
		PoolState:      ps.PoolState,
		UserBaseToken:  userBase,
		UserQuoteToken: userQuote,
		BaseVault:      baseVault,
		QuoteVault:     quoteVault,
		BaseMint:       p.Mint,
		EventAuthority: eventAuthority,
	}, nil
}

func (a *Adapter) poolSnapshot(snap dex.Snapshot) (*PoolSnapshot, error) {
	ps, ok := snap.(*PoolSnapshot)
	if !ok || ps == nil {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "launchpad pool snapshot required"}
	}
	return ps, nil
}
