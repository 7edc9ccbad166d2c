// =============================
// File: internal/relay/rpc.go
// =============================
package relay

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/solanastream/tradekit/internal/protocol"
)

// RPCRelay submits through a plain RPC node. A rate limiter keeps
// bursts inside the node's request budget.
type RPCRelay struct {
	name     string
	endpoint string
	client   *rpc.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewRPCRelay creates an RPC relay capped at rps requests per second.
func NewRPCRelay(name, endpoint string, rps int, logger *zap.Logger) *RPCRelay {
	if rps <= 0 {
		rps = 10
	}
	return &RPCRelay{
		name:     name,
		endpoint: endpoint,
		client:   rpc.New(endpoint),
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
		logger:   logger.Named("relay_rpc"),
	}
}

func (r *RPCRelay) Name() string { return r.name }

// TipAccount reports that plain RPC takes no tips.
func (r *RPCRelay) TipAccount() (solana.PublicKey, bool) {
	return solana.PublicKey{}, false
}

// Submit sends the signed transaction with preflight skipped.
func (r *RPCRelay) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return solana.Signature{}, err
	}

	sig, err := r.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return solana.Signature{}, &protocol.NetworkError{Endpoint: r.endpoint, Op: "sendTransaction", Err: err}
	}

	r.logger.Debug("Transaction submitted",
		zap.String("relay", r.name),
		zap.String("signature", sig.String()))
	return sig, nil
}
