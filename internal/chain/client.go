// =============================
// File: internal/chain/client.go
// =============================
package chain

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Client is a round-robin pool over several RPC nodes. Nodes that fail
// are flagged inactive and skipped until the pool is rebuilt.
type Client struct {
	endpoints []*endpoint
	logger    *zap.Logger

	mu        sync.Mutex
	currIndex int
}

// NewClient builds a pool from the given RPC URLs and verifies at
// least one node answers.
func NewClient(ctx context.Context, rpcURLs []string, logger *zap.Logger) (*Client, error) {
	if len(rpcURLs) == 0 {
		return nil, errors.New("empty RPC URL list")
	}

	var endpoints []*endpoint
	for _, urlStr := range rpcURLs {
		if _, err := url.Parse(urlStr); err != nil {
			logger.Warn("Invalid RPC URL", zap.String("url", urlStr), zap.Error(err))
			continue
		}
		endpoints = append(endpoints, &endpoint{
			client: rpc.New(urlStr),
			url:    urlStr,
			active: true,
		})
	}
	if len(endpoints) == 0 {
		return nil, errors.New("no valid RPC URLs provided")
	}

	c := &Client{endpoints: endpoints, logger: logger.Named("chain")}
	if err := c.validateConnections(ctx); err != nil {
		return nil, fmt.Errorf("failed to validate connections: %w", err)
	}
	return c, nil
}

func (c *Client) testConnection(ctx context.Context, ep *endpoint) error {
	version, err := ep.client.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	if _, err := ep.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized); err != nil {
		return fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	c.logger.Debug("Successfully connected to RPC",
		zap.String("url", ep.url),
		zap.String("solana_core", version.SolanaCore))
	return nil
}

func (c *Client) validateConnections(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, ep := range c.endpoints {
		wg.Add(1)
		go func(ep *endpoint) {
			defer wg.Done()

			var lastErr error
			for attempt := 0; attempt < maxRetries; attempt++ {
				if err := c.testConnection(ctx, ep); err != nil {
					lastErr = err
					time.Sleep(retryDelay)
					continue
				}
				return
			}
			c.logger.Warn("RPC node flagged inactive",
				zap.String("url", ep.url), zap.Error(lastErr))
			ep.setActive(false)
		}(ep)
	}
	wg.Wait()

	if !c.hasActiveEndpoints() {
		return errors.New("no active RPC connections available")
	}
	return nil
}

// GetAccountInfo fetches raw account data at confirmed commitment.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		ep := c.nextEndpoint()
		if ep == nil {
			return nil, errors.New("no active RPC clients available")
		}

		result, err := ep.client.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			lastErr = err
			ep.setActive(false)
			continue
		}
		return result, nil
	}
	return nil, &protocol.NetworkError{Op: "getAccountInfo", Endpoint: pubkey.String(),
		Err: fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)}
}

// GetAccountDataInto fetches an account and borsh-decodes its data.
func (c *Client) GetAccountDataInto(ctx context.Context, pubkey solana.PublicKey, out interface{}) error {
	result, err := c.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return err
	}
	if result == nil || result.Value == nil {
		return fmt.Errorf("account %s not found", pubkey)
	}
	data := result.Value.Data.GetBinary()
	if err := bin.NewBorshDecoder(data).Decode(out); err != nil {
		return &protocol.DecodeError{Reason: fmt.Sprintf("account %s state", pubkey), Err: err}
	}
	return nil
}

// GetRecentBlockhash returns the latest finalized blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		ep := c.nextEndpoint()
		if ep == nil {
			return solana.Hash{}, errors.New("no active RPC clients available")
		}

		result, err := ep.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		if err != nil {
			lastErr = err
			ep.setActive(false)
			continue
		}
		return result.Value.Blockhash, nil
	}
	return solana.Hash{}, &protocol.NetworkError{Op: "getLatestBlockhash",
		Err: fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)}
}

// GetTokenAccountBalance returns the raw token balance of an account.
// Falls back from the requested commitment to confirmed on failure.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	ep := c.nextEndpoint()
	if ep == nil {
		return 0, errors.New("no active RPC clients available")
	}

	result, err := ep.client.GetTokenAccountBalance(ctx, account, commitment)
	if err != nil && commitment == rpc.CommitmentProcessed {
		c.logger.Debug("Retrying balance at confirmed commitment",
			zap.String("account", account.String()), zap.Error(err))
		result, err = ep.client.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
	}
	if err != nil {
		return 0, &protocol.NetworkError{Op: "getTokenAccountBalance", Endpoint: account.String(), Err: err}
	}
	if result == nil || result.Value == nil || result.Value.Amount == "" {
		return 0, fmt.Errorf("no token balance found for %s", account)
	}

	balance, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token balance: %w", err)
	}
	return balance, nil
}

func (c *Client) hasActiveEndpoints() bool {
	for _, ep := range c.endpoints {
		if ep.isActive() {
			return true
		}
	}
	return false
}

func (c *Client) nextEndpoint() *endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()

	initialIndex := c.currIndex
	for {
		c.currIndex = (c.currIndex + 1) % len(c.endpoints)
		if c.endpoints[c.currIndex].isActive() {
			return c.endpoints[c.currIndex]
		}
		if c.currIndex == initialIndex {
			return nil
		}
	}
}
