// =============================
// File: internal/app/runner.go
// =============================
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solanastream/tradekit/internal/chain"
	"github.com/solanastream/tradekit/internal/codec"
	"github.com/solanastream/tradekit/internal/config"
	"github.com/solanastream/tradekit/internal/dex"
	"github.com/solanastream/tradekit/internal/dex/bonk"
	"github.com/solanastream/tradekit/internal/dex/pumpfun"
	"github.com/solanastream/tradekit/internal/dex/pumpswap"
	"github.com/solanastream/tradekit/internal/engine"
	"github.com/solanastream/tradekit/internal/relay"
	"github.com/solanastream/tradekit/internal/stream"
	"github.com/solanastream/tradekit/internal/types"
	"github.com/solanastream/tradekit/internal/wallet"
)

// Runner wires configuration into a ready-to-trade engine and owns the
// lifecycle of every component it creates.
type Runner struct {
	logger     *zap.Logger
	cfg        *config.Config
	wallet     *wallet.Wallet
	chain      *chain.Client
	registry   *dex.Registry
	codecs     *codec.Registry
	dispatcher *relay.Dispatcher
	engine     *engine.Engine
	shutdown   *shutdownHandler
}

// NewRunner builds every component from config. The chain client
// validates its RPC endpoints during construction, so a bad config
// fails here rather than on the first trade.
func NewRunner(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	w, err := wallet.New(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCList, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RPC pool: %w", err)
	}

	registry := dex.NewRegistry(logger)
	for _, a := range []dex.Adapter{pumpfun.New(logger), pumpswap.New(logger), bonk.New(logger)} {
		if err := registry.Register(a); err != nil {
			return nil, err
		}
	}

	shutdown := newShutdownHandler(logger, 15*time.Second)

	submitters, err := buildRelays(ctx, cfg, shutdown, logger)
	if err != nil {
		return nil, err
	}

	dispatcher, err := relay.NewDispatcher(submitters, time.Duration(cfg.SubmitTimeoutMs)*time.Millisecond, logger)
	if err != nil {
		return nil, err
	}

	eng := engine.New(w, chainClient, registry, dispatcher, engine.Config{
		PriorityLevel:          types.PriorityLevel(cfg.PriorityLevel),
		ComputeUnits:           cfg.ComputeUnits,
		UnitPriceMicroLamports: cfg.UnitPriceMicroLamports,
		TipLamports:            cfg.TipLamports(),
	}, logger)

	return &Runner{
		logger:     logger.Named("runner"),
		cfg:        cfg,
		wallet:     w,
		chain:      chainClient,
		registry:   registry,
		codecs:     codec.NewDefaultRegistry(logger),
		dispatcher: dispatcher,
		engine:     eng,
		shutdown:   shutdown,
	}, nil
}

func buildRelays(ctx context.Context, cfg *config.Config, shutdown *shutdownHandler, logger *zap.Logger) ([]relay.Submitter, error) {
	var submitters []relay.Submitter
	for i, rc := range cfg.Relays {
		name := rc.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", rc.Kind, i)
		}

		switch rc.Kind {
		case config.RelayKindRPC:
			submitters = append(submitters, relay.NewRPCRelay(name, rc.Endpoint, int(rc.RPS), logger))

		case config.RelayKindQueryToken, config.RelayKindHeaderKey:
			tipAccounts := make([]solana.PublicKey, 0, len(rc.TipAccounts))
			for _, s := range rc.TipAccounts {
				pk, err := solana.PublicKeyFromBase58(s)
				if err != nil {
					return nil, fmt.Errorf("relay %s: bad tip account %q: %w", name, s, err)
				}
				tipAccounts = append(tipAccounts, pk)
			}
			mode := relay.AuthQueryToken
			if rc.Kind == config.RelayKindHeaderKey {
				mode = relay.AuthHeaderKey
			}
			submitters = append(submitters, relay.NewBearerRelay(name, rc.Endpoint, rc.AuthToken, mode, tipAccounts, logger))

		case config.RelayKindBlockEngine:
			be := relay.NewBlockEngineRelay(name, rc.Endpoint, logger)
			if err := be.RefreshTipAccounts(ctx); err != nil {
				logger.Warn("Tip account refresh failed, using fallback set",
					zap.String("relay", name),
					zap.Error(err))
			}
			submitters = append(submitters, be)

		case config.RelayKindGRPC:
			gr, err := relay.NewGRPCRelay(name, rc.Endpoint, rc.Method, logger)
			if err != nil {
				return nil, err
			}
			shutdown.add("relay_"+name, gr)
			submitters = append(submitters, gr)

		default:
			return nil, fmt.Errorf("unknown relay kind %q", rc.Kind)
		}
	}
	return submitters, nil
}

// Engine exposes the trade engine.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

// Codecs exposes the event decoder registry.
func (r *Runner) Codecs() *codec.Registry {
	return r.codecs
}

// Watch runs the stream pipeline until the context is canceled or a
// client dies. Either source may be nil; at least one is required.
func (r *Runner) Watch(ctx context.Context, confirmed, fragment stream.Source, handler stream.EventHandler, filter *codec.Filter) error {
	if confirmed == nil && fragment == nil {
		return fmt.Errorf("no stream sources configured")
	}

	opts := stream.Options{
		Filter:              filter,
		ReconnectMaxElapsed: time.Duration(r.cfg.ReconnectMaxElapsedSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if confirmed != nil {
		h := stream.NewConfirmedClient(confirmed, r.codecs, handler, opts, r.logger).Start(gctx)
		r.shutdown.addFunc("stream_confirmed", h.Close)
		g.Go(func() error {
			<-h.Done()
			return h.Err()
		})
	}
	if fragment != nil {
		h := stream.NewFragmentClient(fragment, r.codecs, handler, opts, r.logger).Start(gctx)
		r.shutdown.addFunc("stream_fragment", h.Close)
		g.Go(func() error {
			<-h.Done()
			return h.Err()
		})
	}

	return g.Wait()
}

// Close tears down relays, streams and the logger-owned resources.
func (r *Runner) Close() {
	r.shutdown.shutdown()
}
