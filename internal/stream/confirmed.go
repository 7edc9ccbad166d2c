// =============================
// File: internal/stream/confirmed.go
// =============================
package stream

import (
	"context"

	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/codec"
)

// ConfirmedClient consumes a confirmed-transaction feed. Every update
// it dispatches has landed on chain.
type ConfirmedClient struct {
	inner *client
}

// NewConfirmedClient wraps a source whose updates are already
// confirmed. The handler sees every decoded event that passes the
// filter.
func NewConfirmedClient(source Source, registry *codec.Registry, handler EventHandler, opts Options, logger *zap.Logger) *ConfirmedClient {
	return &ConfirmedClient{inner: &client{
		source:     source,
		registry:   registry,
		filter:     opts.Filter,
		handler:    handler,
		confirmed:  true,
		maxElapsed: opts.ReconnectMaxElapsed,
		logger:     logger.Named("stream_confirmed"),
	}}
}

// Start connects and begins dispatching in a background goroutine.
func (c *ConfirmedClient) Start(ctx context.Context) *Handle {
	return c.inner.start(ctx)
}
