// =============================
// File: internal/engine/engine.go
// =============================
package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/chain"
	"github.com/solanastream/tradekit/internal/dex"
	"github.com/solanastream/tradekit/internal/protocol"
	"github.com/solanastream/tradekit/internal/relay"
	"github.com/solanastream/tradekit/internal/types"
	"github.com/solanastream/tradekit/internal/wallet"
)

// Config sets the priority-fee profile and the per-relay tips the
// engine attaches to every trade.
type Config struct {
	// PriorityLevel selects a named compute-budget profile; when set it
	// overrides the explicit values below.
	PriorityLevel          types.PriorityLevel
	ComputeUnits           uint32
	UnitPriceMicroLamports uint64
	// TipLamports must match the dispatcher's tip-taking relays, in
	// order.
	TipLamports []uint64
}

// Order describes one trade. Amount is lamports in on buys and tokens
// in on sells. Snapshot and RecentBlockhash are optional; when set
// they take precedence over a chain fetch.
type Order struct {
	Protocol        protocol.Tag
	Mint            solana.PublicKey
	Creator         solana.PublicKey
	Amount          uint64
	SlippageBps     uint64
	Snapshot        dex.Snapshot
	RecentBlockhash solana.Hash
}

// Result reports a landed trade.
type Result struct {
	Signature solana.Signature
	Relay     string
	Quote     *dex.Quote
	Timings   []StageTiming
}

// Engine turns orders into signed transactions and races them across
// the relay set.
type Engine struct {
	wallet     *wallet.Wallet
	reader     chain.Reader
	registry   *dex.Registry
	dispatcher *relay.Dispatcher
	priority   *types.PriorityManager
	cfg        Config
	logger     *zap.Logger
}

// New wires an engine. The tip amounts in cfg are validated against
// the dispatcher's tip-taking relays on every trade.
func New(w *wallet.Wallet, reader chain.Reader, registry *dex.Registry, dispatcher *relay.Dispatcher, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		wallet:     w,
		reader:     reader,
		registry:   registry,
		dispatcher: dispatcher,
		priority:   types.NewPriorityManager(logger),
		cfg:        cfg,
		logger:     logger.Named("engine"),
	}
}

// Buy spends order.Amount lamports on the venue's token.
func (e *Engine) Buy(ctx context.Context, order Order) (*Result, error) {
	return e.execute(ctx, order, protocol.DirectionBuy)
}

// Sell swaps order.Amount tokens back into lamports.
func (e *Engine) Sell(ctx context.Context, order Order) (*Result, error) {
	return e.execute(ctx, order, protocol.DirectionSell)
}

// SellPercent reads the wallet's token balance and sells the given
// percentage of it.
func (e *Engine) SellPercent(ctx context.Context, order Order, percent float64) (*Result, error) {
	if percent <= 0 || percent > 100 {
		return nil, &protocol.ValidationError{Field: "percent", Reason: fmt.Sprintf("must be in (0, 100], got %f", percent)}
	}

	ata, err := e.wallet.GetATA(order.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token account: %w", err)
	}
	balance, err := e.reader.GetTokenAccountBalance(ctx, ata, rpc.CommitmentProcessed)
	if err != nil {
		return nil, err
	}
	if balance == 0 {
		return nil, &protocol.ValidationError{Field: "balance", Reason: "no tokens to sell"}
	}

	amount := uint64(float64(balance) * percent / 100.0)
	if amount == 0 {
		amount = 1
	}

	e.logger.Info("Selling balance percentage",
		zap.Uint64("balance", balance),
		zap.Float64("percent", percent),
		zap.Uint64("amount", amount))

	order.Amount = amount
	return e.execute(ctx, order, protocol.DirectionSell)
}

func (e *Engine) execute(ctx context.Context, order Order, dir protocol.Direction) (*Result, error) {
	if err := e.validateOrder(order); err != nil {
		return nil, err
	}

	timer := newStageTimer("quote", e.logger)

	adapter, err := e.registry.Get(order.Protocol)
	if err != nil {
		return nil, err
	}

	// A caller-supplied snapshot always wins over a chain fetch.
	snap := order.Snapshot
	if snap == nil {
		snap, err = adapter.FetchSnapshot(ctx, e.reader, order.Mint)
		if err != nil {
			return nil, err
		}
	} else if snap.Venue() != order.Protocol {
		return nil, &protocol.ValidationError{Field: "snapshot",
			Reason: fmt.Sprintf("snapshot venue %s does not match order venue %s", snap.Venue(), order.Protocol)}
	}

	var quote *dex.Quote
	if dir == protocol.DirectionBuy {
		quote, err = adapter.QuoteBuy(snap, order.Amount, order.SlippageBps)
	} else {
		quote, err = adapter.QuoteSell(snap, order.Amount, order.SlippageBps)
	}
	if err != nil {
		return nil, err
	}

	timer.next("build")

	buildParams := dex.BuildParams{
		Wallet:   e.wallet,
		Mint:     order.Mint,
		Creator:  order.Creator,
		Snapshot: snap,
		Quote:    quote,
	}
	var venueInstructions []solana.Instruction
	if dir == protocol.DirectionBuy {
		venueInstructions, err = adapter.BuildBuyInstructions(buildParams)
	} else {
		venueInstructions, err = adapter.BuildSellInstructions(buildParams)
	}
	if err != nil {
		return nil, err
	}

	instructions, err := e.priorityInstructions()
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, venueInstructions...)

	tipInstructions, err := e.tipInstructions()
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, tipInstructions...)

	blockhash := order.RecentBlockhash
	if blockhash.IsZero() {
		blockhash, err = e.reader.GetRecentBlockhash(ctx)
		if err != nil {
			return nil, err
		}
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(e.wallet.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	timer.next("sign")

	// Signed exactly once; the dispatcher reuses the payload untouched.
	if err := e.wallet.SignTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	timer.next("submit")

	receipt, err := e.dispatcher.Submit(ctx, tx)
	if err != nil {
		return nil, protocol.ClassifySubmitError(err, order.SlippageBps, order.Amount)
	}

	e.logger.Info("Trade executed",
		zap.String("direction", dir.String()),
		zap.String("venue", string(order.Protocol)),
		zap.String("mint", order.Mint.String()),
		zap.Uint64("amount_in", quote.AmountIn),
		zap.Uint64("min_out", quote.MinOut),
		zap.String("signature", receipt.Signature.String()),
		zap.String("relay", receipt.Relay))

	return &Result{
		Signature: receipt.Signature,
		Relay:     receipt.Relay,
		Quote:     quote,
		Timings:   timer.finish(),
	}, nil
}

// priorityInstructions resolves the compute-budget set, preferring a
// named profile over the explicit values.
func (e *Engine) priorityInstructions() ([]solana.Instruction, error) {
	if e.cfg.PriorityLevel != "" {
		return e.priority.CreatePriorityInstructions(e.cfg.PriorityLevel)
	}
	return e.priority.CreateCustomPriorityInstructions(e.cfg.UnitPriceMicroLamports, e.cfg.ComputeUnits)
}

// tipInstructions builds one transfer per tip-taking relay so the
// single payload satisfies every landing service at once.
func (e *Engine) tipInstructions() ([]solana.Instruction, error) {
	routes := e.dispatcher.TipRoutes()
	if len(routes) != len(e.cfg.TipLamports) {
		return nil, &protocol.ValidationError{Field: "tip_lamports",
			Reason: fmt.Sprintf("%d tip amounts configured for %d tip-taking relays", len(e.cfg.TipLamports), len(routes))}
	}

	instructions := make([]solana.Instruction, 0, len(routes))
	for i, route := range routes {
		instructions = append(instructions,
			system.NewTransferInstruction(e.cfg.TipLamports[i], e.wallet.PublicKey, route.Account).Build())
	}
	return instructions, nil
}

func (e *Engine) validateOrder(order Order) error {
	if !order.Protocol.Valid() {
		return &protocol.ValidationError{Field: "protocol", Reason: fmt.Sprintf("unknown venue %q", order.Protocol)}
	}
	if order.Mint.IsZero() {
		return &protocol.ValidationError{Field: "mint", Reason: "must be set"}
	}
	return dex.ValidateTradeParams(order.Amount, order.SlippageBps)
}
