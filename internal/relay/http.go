// =============================
// File: internal/relay/http.go
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
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/protocol"
)

// AuthMode selects how a bearer relay expects its credential.
type AuthMode string

const (
	// AuthQueryToken appends the token as a URL query parameter.
	AuthQueryToken AuthMode = "query"
	// AuthHeaderKey sends the token in an api-key header.
	AuthHeaderKey AuthMode = "header"
)

const httpSubmitTimeout = 5 * time.Second

// rpcRequest is a minimal JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// BearerRelay submits through a token-authenticated landing service
// speaking JSON-RPC sendTransaction.
type BearerRelay struct {
	name        string
	endpoint    string
	authToken   string
	authMode    AuthMode
	tipAccounts []solana.PublicKey
	client      *http.Client
	logger      *zap.Logger
}

// NewBearerRelay creates a bearer-token HTTP relay.
func NewBearerRelay(name, endpoint, authToken string, mode AuthMode, tipAccounts []solana.PublicKey, logger *zap.Logger) *BearerRelay {
	return &BearerRelay{
		name:        name,
		endpoint:    endpoint,
		authToken:   authToken,
		authMode:    mode,
		tipAccounts: tipAccounts,
		client:      &http.Client{Timeout: httpSubmitTimeout},
		logger:      logger.Named("relay_http"),
	}
}

func (r *BearerRelay) Name() string { return r.name }

// TipAccount picks one of the relay's tip accounts at random.
func (r *BearerRelay) TipAccount() (solana.PublicKey, bool) {
	if len(r.tipAccounts) == 0 {
		return solana.PublicKey{}, false
	}
	return r.tipAccounts[rand.Intn(len(r.tipAccounts))], true
}

// Submit posts the signed transaction as base64 JSON-RPC.
func (r *BearerRelay) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
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
			map[string]interface{}{"encoding": "base64", "skipPreflight": true},
		},
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := r.endpoint
	if r.authMode == AuthQueryToken {
		url = r.endpoint + "/?c=" + r.authToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.authMode == AuthHeaderKey {
		req.Header.Set("api-key", r.authToken)
	}

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
			Err: fmt.Errorf("relay error %d: %s", parsed.Error.Code, parsed.Error.Message)}
	}

	sig, err := solana.SignatureFromBase58(parsed.Result)
	if err != nil {
		// The relay accepted the payload; fall back to our own signature.
		if len(tx.Signatures) > 0 {
			return tx.Signatures[0], nil
		}
		return solana.Signature{}, fmt.Errorf("relay returned unparseable signature: %w", err)
	}

	r.logger.Debug("Transaction submitted",
		zap.String("relay", r.name),
		zap.String("signature", sig.String()))
	return sig, nil
}
