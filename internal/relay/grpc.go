// =============================
// File: internal/relay/grpc.go
// =============================
package relay

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/solanastream/tradekit/internal/protocol"
)

// rawCodec passes pre-serialized frames through the gRPC transport
// untouched. The landing service owns the message schema; we only
// hand it wire bytes.
type rawCodec struct{}

func (rawCodec) Marshal(v interface{}) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("rawCodec: expected []byte, got %T", v)
	}
	return b, nil
}

func (rawCodec) Unmarshal(data []byte, v interface{}) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("rawCodec: expected *[]byte, got %T", v)
	}
	*b = data
	return nil
}

func (rawCodec) Name() string { return "raw-bytes" }

// GRPCRelay submits serialized transactions over a unary gRPC method.
type GRPCRelay struct {
	name   string
	target string
	method string
	conn   *grpc.ClientConn
	logger *zap.Logger
}

// NewGRPCRelay dials a plaintext gRPC landing service. method is the
// full method path, e.g. "/searcher.SearcherService/SendTransaction".
func NewGRPCRelay(name, target, method string, logger *zap.Logger) (*GRPCRelay, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, &protocol.NetworkError{Endpoint: target, Op: "dial", Err: err}
	}
	return &GRPCRelay{
		name:   name,
		target: target,
		method: method,
		conn:   conn,
		logger: logger.Named("relay_grpc"),
	}, nil
}

func (r *GRPCRelay) Name() string { return r.name }

// TipAccount reports that the gRPC relay takes no tips.
func (r *GRPCRelay) TipAccount() (solana.PublicKey, bool) {
	return solana.PublicKey{}, false
}

// Submit invokes the configured method with the raw transaction.
func (r *GRPCRelay) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	payload, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	var resp []byte
	err = r.conn.Invoke(ctx, r.method, payload, &resp, grpc.ForceCodec(rawCodec{}))
	if err != nil {
		return solana.Signature{}, &protocol.NetworkError{Endpoint: r.target, Op: "invoke", Err: err}
	}

	if len(tx.Signatures) == 0 {
		return solana.Signature{}, fmt.Errorf("transaction has no signature")
	}

	r.logger.Debug("Transaction submitted",
		zap.String("relay", r.name),
		zap.String("signature", tx.Signatures[0].String()))
	return tx.Signatures[0], nil
}

// Close tears down the client connection.
func (r *GRPCRelay) Close() error {
	return r.conn.Close()
}
