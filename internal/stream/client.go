// =============================
// File: internal/stream/client.go
// =============================
package stream

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/codec"
)

const defaultReconnectElapsed = 2 * time.Minute

// Options tunes a stream client. A nil Filter admits every event.
type Options struct {
	Filter *codec.Filter
	// ReconnectMaxElapsed bounds the total time spent retrying one
	// reconnect before the loop gives up.
	ReconnectMaxElapsed time.Duration
	// DedupeCapacity sizes the recent-signature ring on the fragment
	// client. Ignored by the confirmed client.
	DedupeCapacity int
}

type client struct {
	source     Source
	registry   *codec.Registry
	filter     *codec.Filter
	handler    EventHandler
	confirmed  bool
	dedupe     *signatureRing
	maxElapsed time.Duration
	logger     *zap.Logger
}

func (c *client) start(ctx context.Context) *Handle {
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{}), source: c.source}

	go func() {
		defer close(h.done)
		h.err = c.run(runCtx)
	}()
	return h
}

// run reconnects and receives until the context is canceled or a
// reconnect cycle exhausts its backoff budget.
func (c *client) run(ctx context.Context) error {
	for {
		if err := c.connect(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		err := c.receive(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("Stream dropped, reconnecting", zap.Error(err))
	}
}

func (c *client) connect(ctx context.Context) error {
	maxElapsed := c.maxElapsed
	if maxElapsed <= 0 {
		maxElapsed = defaultReconnectElapsed
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := c.source.Connect(ctx); err != nil {
			c.logger.Debug("Connect attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	if err != nil {
		return err
	}

	c.logger.Info("Stream connected", zap.Int("attempts", attempt))
	return nil
}

func (c *client) receive(ctx context.Context) error {
	for {
		upd, err := c.source.Recv(ctx)
		if err != nil {
			return err
		}
		if upd == nil {
			continue
		}
		if c.dedupe != nil && !c.dedupe.add(upd.Signature) {
			continue
		}
		// Foreign-program payloads are dropped before any decoding.
		if !c.filter.MatchProgram(upd.ProgramID) {
			continue
		}

		payloads := upd.Payloads
		if len(payloads) == 0 {
			payloads = codec.ExtractLogPayloads(upd.Logs)
		}

		for _, ev := range c.registry.DecodeAll(upd.ProgramID, payloads) {
			if !c.filter.Match(ev) {
				continue
			}
			c.handler(ctx, Update{
				Event:     ev,
				Slot:      upd.Slot,
				Signature: upd.Signature,
				Confirmed: c.confirmed,
			})
		}
	}
}
