// =============================
// File: cmd/trader/main.go
// =============================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/app"
	"github.com/solanastream/tradekit/internal/config"
	"github.com/solanastream/tradekit/internal/engine"
	"github.com/solanastream/tradekit/internal/logger"
	"github.com/solanastream/tradekit/internal/protocol"
)

func main() {
	var (
		configPath = flag.String("config", "configs/config.json", "path to config file")
		action     = flag.String("action", "", "buy, sell or sell-percent")
		venue      = flag.String("venue", "pumpfun", "venue tag: pumpfun, pumpswap or bonk")
		mint       = flag.String("mint", "", "token mint address")
		creator    = flag.String("creator", "", "token creator address (optional)")
		amount     = flag.Uint64("amount", 0, "lamports in on buys, tokens in on sells")
		slippage   = flag.Uint64("slippage-bps", 0, "slippage tolerance in basis points (0 uses config)")
		percent    = flag.Float64("percent", 100, "balance percentage for sell-percent")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.DebugLogging)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("Signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	runner, err := app.NewRunner(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize", zap.Error(err))
	}
	defer runner.Close()

	if err := run(ctx, runner, cfg, *action, *venue, *mint, *creator, *amount, *slippage, *percent, log); err != nil {
		log.Fatal("Trade failed", zap.Error(err))
	}
}

func run(ctx context.Context, runner *app.Runner, cfg *config.Config, action, venue, mint, creator string, amount, slippage uint64, percent float64, log *zap.Logger) error {
	tag, err := protocol.ParseTag(venue)
	if err != nil {
		return err
	}
	mintPk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return fmt.Errorf("bad mint: %w", err)
	}

	var creatorPk solana.PublicKey
	if creator != "" {
		creatorPk, err = solana.PublicKeyFromBase58(creator)
		if err != nil {
			return fmt.Errorf("bad creator: %w", err)
		}
	}

	if slippage == 0 {
		slippage = cfg.SlippageBps
	}

	order := engine.Order{
		Protocol:    tag,
		Mint:        mintPk,
		Creator:     creatorPk,
		Amount:      amount,
		SlippageBps: slippage,
	}

	var result *engine.Result
	switch action {
	case "buy":
		result, err = runner.Engine().Buy(ctx, order)
	case "sell":
		result, err = runner.Engine().Sell(ctx, order)
	case "sell-percent":
		result, err = runner.Engine().SellPercent(ctx, order, percent)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		return err
	}

	log.Info("Done",
		zap.String("signature", result.Signature.String()),
		zap.String("relay", result.Relay),
		zap.Uint64("amount_in", result.Quote.AmountIn),
		zap.Uint64("min_out", result.Quote.MinOut))
	return nil
}
