// =============================
// File: internal/stream/fragment.go
// =============================
package stream

import (
	"context"

	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/codec"
)

// FragmentClient consumes a pre-confirmation fragment feed. Updates
// arrive before the cluster votes on them, so they are dispatched as
// speculative and the same transaction may appear in several shreds.
type FragmentClient struct {
	inner *client
}

// NewFragmentClient wraps a fragment source. Repeated signatures are
// suppressed through a bounded recent-signature ring.
func NewFragmentClient(source Source, registry *codec.Registry, handler EventHandler, opts Options, logger *zap.Logger) *FragmentClient {
	return &FragmentClient{inner: &client{
		source:     source,
		registry:   registry,
		filter:     opts.Filter,
		handler:    handler,
		confirmed:  false,
		dedupe:     newSignatureRing(opts.DedupeCapacity),
		maxElapsed: opts.ReconnectMaxElapsed,
		logger:     logger.Named("stream_fragment"),
	}}
}

// Start connects and begins dispatching in a background goroutine.
func (c *FragmentClient) Start(ctx context.Context) *Handle {
	return c.inner.start(ctx)
}
