// =============================
// File: internal/dex/dex.go
// =============================
package dex

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/solanastream/tradekit/internal/chain"
	"github.com/solanastream/tradekit/internal/codec"
	"github.com/solanastream/tradekit/internal/protocol"
	"github.com/solanastream/tradekit/internal/wallet"
)

// Snapshot is an immutable view of venue pricing state, either fetched
// from chain or derived from a decoded trade event.
type Snapshot interface {
	Venue() protocol.Tag
}

// Quote is the priced side of a trade before it is built.
type Quote struct {
	AmountIn    uint64 // lamports on buys, tokens on sells
	ExpectedOut uint64 // tokens on buys, lamports on sells
	MinOut      uint64 // ExpectedOut scaled down by the slippage tolerance
}

// BuildParams carries everything an adapter needs to emit swap
// instructions.
type BuildParams struct {
	Wallet   *wallet.Wallet
	Mint     solana.PublicKey
	Creator  solana.PublicKey
	Snapshot Snapshot
	Quote    *Quote
}

// Adapter prices and builds trades for one venue.
type Adapter interface {
	Name() string
	Tag() protocol.Tag

	QuoteBuy(snap Snapshot, lamportsIn, slippageBps uint64) (*Quote, error)
	QuoteSell(snap Snapshot, tokensIn, slippageBps uint64) (*Quote, error)

	FetchSnapshot(ctx context.Context, reader chain.Reader, mint solana.PublicKey) (Snapshot, error)
	SnapshotFromEvent(ev codec.Event) (Snapshot, error)

	BuildBuyInstructions(p BuildParams) ([]solana.Instruction, error)
	BuildSellInstructions(p BuildParams) ([]solana.Instruction, error)
}
