// =============================
// File: internal/stream/stream.go
// =============================
package stream

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/solanastream/tradekit/internal/codec"
)

// RawUpdate is one transaction's worth of stream data before decoding.
// Payloads carries pre-extracted event bytes; when empty, Logs is
// scanned for "Program data:" lines instead.
type RawUpdate struct {
	Slot      uint64
	Signature solana.Signature
	ProgramID solana.PublicKey
	Payloads  [][]byte
	Logs      []string
}

// Source is a wire transport delivering raw updates. Implementations
// wrap a gRPC or websocket subscription; the clients in this package
// own reconnection, decoding and dispatch.
type Source interface {
	Connect(ctx context.Context) error
	Recv(ctx context.Context) (*RawUpdate, error)
	Close() error
}

// Update is one decoded event with its stream metadata. Confirmed is
// false for fragment-feed updates, which may never land.
type Update struct {
	Event     codec.Event
	Slot      uint64
	Signature solana.Signature
	Confirmed bool
}

// EventHandler receives every decoded event that passes the filter.
// Handlers run on the receive goroutine; slow handlers stall the feed.
type EventHandler func(ctx context.Context, u Update)

// Handle controls a running stream client.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	source Source
	err    error
}

// Close stops the receive loop and closes the underlying source.
func (h *Handle) Close() error {
	h.cancel()
	<-h.done
	return h.source.Close()
}

// Err returns the terminal error of the receive loop, if any. Only
// meaningful after Close or after Done is closed.
func (h *Handle) Err() error {
	return h.err
}

// Done is closed when the receive loop exits.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
