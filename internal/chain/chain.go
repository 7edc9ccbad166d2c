// =============================
// File: internal/chain/chain.go
// =============================
package chain

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	defaultTimeout = 10 * time.Second
	maxRetries     = 3
	retryDelay     = 200 * time.Millisecond
)

// Reader is the read-side chain access used by adapters and the trade
// engine. Tests substitute a fake.
type Reader interface {
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetAccountDataInto(ctx context.Context, pubkey solana.PublicKey, out interface{}) error
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
}

// endpoint is one RPC node in the pool.
type endpoint struct {
	client *rpc.Client
	url    string

	mu     sync.Mutex
	active bool
}

func (e *endpoint) isActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *endpoint) setActive(active bool) {
	e.mu.Lock()
	e.active = active
	e.mu.Unlock()
}
