// ==============================================
// File: internal/dex/pumpfun/adapter.go
// ==============================================
package pumpfun

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/chain"
	"github.com/solanastream/tradekit/internal/codec"
	"github.com/solanastream/tradekit/internal/dex"
	"github.com/solanastream/tradekit/internal/protocol"
)

const snapshotFetchMaxElapsed = 5 * time.Second

// Adapter prices and builds bonding-curve trades.
type Adapter struct {
	logger *zap.Logger
}

// New creates the bonding-curve adapter.
func New(logger *zap.Logger) *Adapter {
	return &Adapter{logger: logger.Named("pumpfun")}
}

func (a *Adapter) Name() string { return "Pump.fun" }

func (a *Adapter) Tag() protocol.Tag { return protocol.TagPumpFun }

// QuoteBuy prices lamports into tokens over the virtual reserves.
func (a *Adapter) QuoteBuy(snap dex.Snapshot, lamportsIn, slippageBps uint64) (*dex.Quote, error) {
	cs, err := a.curveSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if err := dex.ValidateTradeParams(lamportsIn, slippageBps); err != nil {
		return nil, err
	}
	if cs.State.VirtualSolReserves == 0 || cs.State.VirtualTokenReserves == 0 {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "curve has zero virtual reserves"}
	}
	if cs.State.Complete {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "curve is complete, token has graduated"}
	}

	expected := dex.ConstantProductOut(cs.State.VirtualSolReserves, cs.State.VirtualTokenReserves, lamportsIn)
	if expected == 0 {
		return nil, &protocol.ValidationError{Field: "amount", Reason: "implied token output is zero"}
	}
	minOut := dex.ApplySlippageDown(expected, slippageBps)

	a.logger.Debug("Curve buy quote",
		zap.Uint64("lamports_in", lamportsIn),
		zap.Uint64("expected_tokens", expected),
		zap.Uint64("min_tokens_out", minOut))

	return &dex.Quote{AmountIn: lamportsIn, ExpectedOut: expected, MinOut: minOut}, nil
}

// QuoteSell prices tokens into lamports over the virtual reserves.
func (a *Adapter) QuoteSell(snap dex.Snapshot, tokensIn, slippageBps uint64) (*dex.Quote, error) {
	cs, err := a.curveSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if err := dex.ValidateTradeParams(tokensIn, slippageBps); err != nil {
		return nil, err
	}
	if cs.State.VirtualSolReserves == 0 || cs.State.VirtualTokenReserves == 0 {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "curve has zero virtual reserves"}
	}
	if cs.State.Complete {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "curve is complete, token has graduated"}
	}

	expected := dex.ConstantProductOut(cs.State.VirtualTokenReserves, cs.State.VirtualSolReserves, tokensIn)
	if expected == 0 {
		return nil, &protocol.ValidationError{Field: "amount", Reason: "implied lamport output is zero"}
	}
	minOut := dex.ApplySlippageDown(expected, slippageBps)

	return &dex.Quote{AmountIn: tokensIn, ExpectedOut: expected, MinOut: minOut}, nil
}

// FetchSnapshot reads the bonding curve account from chain.
func (a *Adapter) FetchSnapshot(ctx context.Context, reader chain.Reader, mint solana.PublicKey) (dex.Snapshot, error) {
	bondingCurve, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive bonding curve: %w", err)
	}

	op := func() (*CurveSnapshot, error) {
		result, err := reader.GetAccountInfo(ctx, bondingCurve)
		if err != nil {
			return nil, err
		}
		if result == nil || result.Value == nil {
			return nil, backoff.Permanent(fmt.Errorf("bonding curve account not found at %s", bondingCurve))
		}

		data := result.Value.Data.GetBinary()
		if len(data) <= 8 {
			return nil, backoff.Permanent(&protocol.DecodeError{
				Program: protocol.PumpFunProgramID,
				Reason:  fmt.Sprintf("curve account too short: %d bytes", len(data)),
			})
		}

		var state CurveState
		if err := bin.NewBorshDecoder(data[8:]).Decode(&state); err != nil {
			return nil, backoff.Permanent(&protocol.DecodeError{
				Program: protocol.PumpFunProgramID, Reason: "curve account state", Err: err,
			})
		}
		return &CurveSnapshot{Mint: mint, BondingCurve: bondingCurve, State: state}, nil
	}

	snap, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(snapshotFetchMaxElapsed))
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// SnapshotFromEvent derives a snapshot from a decoded curve trade so
// the hot path can skip the account fetch.
func (a *Adapter) SnapshotFromEvent(ev codec.Event) (dex.Snapshot, error) {
	trade, ok := ev.(*codec.PumpFunTradeEvent)
	if !ok {
		return nil, &protocol.ValidationError{Field: "event", Reason: fmt.Sprintf("cannot derive curve snapshot from %s/%s", ev.Protocol(), ev.Kind())}
	}

	bondingCurve, err := DeriveBondingCurve(trade.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive bonding curve: %w", err)
	}

	return &CurveSnapshot{
		Mint:         trade.Mint,
		BondingCurve: bondingCurve,
		State: CurveState{
			VirtualTokenReserves: trade.VirtualTokenReserves,
			VirtualSolReserves:   trade.VirtualSolReserves,
			RealTokenReserves:    trade.RealTokenReserves,
			RealSolReserves:      trade.RealSolReserves,
		},
	}, nil
}

// BuildBuyInstructions emits the ATA creation and curve buy.
func (a *Adapter) BuildBuyInstructions(p dex.BuildParams) ([]solana.Instruction, error) {
	acc, err := a.resolveAccounts(p)
	if err != nil {
		return nil, err
	}

	createATA := p.Wallet.CreateATAIdempotentInstruction(p.Wallet.PublicKey, p.Wallet.PublicKey, p.Mint)
	buy := buildBuyInstruction(acc, p.Quote.MinOut, p.Quote.AmountIn)
	return []solana.Instruction{createATA, buy}, nil
}

// BuildSellInstructions emits the curve sell.
func (a *Adapter) BuildSellInstructions(p dex.BuildParams) ([]solana.Instruction, error) {
	acc, err := a.resolveAccounts(p)
	if err != nil {
		return nil, err
	}

	sell := buildSellInstruction(acc, p.Quote.AmountIn, p.Quote.MinOut)
	return []solana.Instruction{sell}, nil
}

func (a *Adapter) resolveAccounts(p dex.BuildParams) (swapAccounts, error) {
	cs, err := a.curveSnapshot(p.Snapshot)
	if err != nil {
		return swapAccounts{}, err
	}

	associatedCurve, err := AssociatedBondingCurve(cs.BondingCurve, p.Mint)
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}
	associatedUser, err := p.Wallet.GetATA(p.Mint)
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to get associated token account: %w", err)
	}

	creator := p.Creator
	if creator.IsZero() {
		creator = cs.State.Creator
	}
	creatorVault, err := DeriveCreatorVault(creator)
	if err != nil {
		return swapAccounts{}, fmt.Errorf("failed to derive creator vault: %w", err)
	}

	return swapAccounts{
		Mint:                   p.Mint,
		BondingCurve:           cs.BondingCurve,
		AssociatedBondingCurve: associatedCurve,
		AssociatedUser:         associatedUser,
		User:                   p.Wallet.PublicKey,
		CreatorVault:           creatorVault,
	}, nil
}

func (a *Adapter) curveSnapshot(snap dex.Snapshot) (*CurveSnapshot, error) {
	cs, ok := snap.(*CurveSnapshot)
	if !ok || cs == nil {
		return nil, &protocol.ValidationError{Field: "snapshot", Reason: "bonding curve snapshot required"}
	}
	return cs, nil
}
