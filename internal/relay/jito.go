// =============================
// File: internal/relay/jito.go
// =============================
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/protocol"
)

const blockEngineSubmitTimeout = 5 * time.Second

// Fallback tip accounts used when the block engine cannot be asked.
var defaultBlockEngineTipAccounts = []solana.PublicKey{
	solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"),
	solana.MustPublicKeyFromBase58("HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe"),
	solana.MustPublicKeyFromBase58("Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY"),
	solana.MustPublicKeyFromBase58("ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49"),
	solana.MustPublicKeyFromBase58("DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh"),
	solana.MustPublicKeyFromBase58("ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt"),
	solana.MustPublicKeyFromBase58("DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL"),
	solana.MustPublicKeyFromBase58("3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT"),
}

// BlockEngineRelay submits through a bundle-capable block engine.
type BlockEngineRelay struct {
	name     string
	endpoint string
	client   *http.Client
	logger   *zap.Logger

	mu          sync.RWMutex
	tipAccounts []solana.PublicKey
}

// NewBlockEngineRelay creates a block engine relay with the static tip
// account fallback.
func NewBlockEngineRelay(name, endpoint string, logger *zap.Logger) *BlockEngineRelay {
	return &BlockEngineRelay{
		name:        name,
		endpoint:    endpoint,
		client:      &http.Client{Timeout: blockEngineSubmitTimeout},
		logger:      logger.Named("relay_blockengine"),
		tipAccounts: defaultBlockEngineTipAccounts,
	}
}

func (r *BlockEngineRelay) Name() string { return r.name }

// TipAccount picks one of the engine's tip accounts at random.
func (r *BlockEngineRelay) TipAccount() (solana.PublicKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.tipAccounts) == 0 {
		return solana.PublicKey{}, false
	}
	return r.tipAccounts[rand.Intn(len(r.tipAccounts))], true
}

// RefreshTipAccounts asks the block engine for its current tip
// accounts, keeping the fallback on failure.
func (r *BlockEngineRelay) RefreshTipAccounts(ctx context.Context) error {
	body, err := json.Marshal(rpcRequest{Jsonrpc: "2.0", ID: 1, Method: "getTipAccounts", Params: []interface{}{}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/api/v1/bundles", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return &protocol.NetworkError{Endpoint: r.endpoint, Op: "getTipAccounts", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &protocol.NetworkError{Endpoint: r.endpoint, Op: "getTipAccounts", Err: err}
	}

	var parsed struct {
		Result []string `json:"result"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Result) == 0 {
		return fmt.Errorf("malformed getTipAccounts response: %s", raw)
	}

	accounts := make([]solana.PublicKey, 0, len(parsed.Result))
	for _, s := range parsed.Result {
		pk, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			continue
		}
		accounts = append(accounts, pk)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("no usable tip accounts in response")
	}

	r.mu.Lock()
	r.tipAccounts = accounts
	r.mu.Unlock()

	r.logger.Debug("Tip accounts refreshed", zap.Int("count", len(accounts)))
	return nil
}

// Submit posts the signed transaction to the block engine.
func (r *BlockEngineRelay) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	encoded, err := encodeTransaction(tx)
	if err != nil {
		return solana.Signature{}, err
	}

	body, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "sendTransaction",
		Params: []interface{}{
			encoded,
			map[string]interface{}{"encoding": "base64"},
		},
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/api/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return solana.Signature{}, &protocol.NetworkError{Endpoint: r.endpoint, Op: "sendTransaction", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return solana.Signature{}, &protocol.NetworkError{Endpoint: r.endpoint, Op: "sendTransaction", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return solana.Signature{}, &protocol.NetworkError{Endpoint: r.endpoint, Op: "sendTransaction",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, raw)}
	}

	var parsed rpcResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return solana.Signature{}, &protocol.NetworkError{Endpoint: r.endpoint, Op: "sendTransaction",
			Err: fmt.Errorf("malformed response: %w", err)}
	}
	if parsed.Error != nil {
		return solana.Signature{}, &protocol.NetworkError{Endpoint: r.endpoint, Op: "sendTransaction",
			Err: fmt.Errorf("block engine error %d: %s", parsed.Error.Code, parsed.Error.Message)}
	}

	sig, err := solana.SignatureFromBase58(parsed.Result)
	if err != nil {
		if len(tx.Signatures) > 0 {
			return tx.Signatures[0], nil
		}
		return solana.Signature{}, fmt.Errorf("block engine returned unparseable signature: %w", err)
	}
	return sig, nil
}
