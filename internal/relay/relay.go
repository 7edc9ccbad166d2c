// =============================
// File: internal/relay/relay.go
// =============================
package relay

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Submitter pushes an already-signed transaction to one landing
// service. Implementations never mutate the payload.
type Submitter interface {
	Name() string
	Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// TipAccount returns the account a tip transfer must target for
	// this relay to prioritize the transaction, if it takes tips.
	TipAccount() (solana.PublicKey, bool)
}

// TipRoute pairs a tip-taking relay with its chosen tip account.
type TipRoute struct {
	Relay   string
	Account solana.PublicKey
}

// AllRelaysFailedError aggregates per-relay submission failures when
// no relay landed the transaction.
type AllRelaysFailedError struct {
	Failures map[string]error
}

func (e *AllRelaysFailedError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("all %d relays failed:", len(e.Failures)))
	for _, name := range names {
		sb.WriteString(fmt.Sprintf(" %s: %v;", name, e.Failures[name]))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// IsAllRelaysFailed reports whether err is a full dispatch failure.
func IsAllRelaysFailed(err error) bool {
	_, ok := err.(*AllRelaysFailedError)
	return ok
}

// encodeTransaction serializes a signed transaction to base64 wire
// format.
func encodeTransaction(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
