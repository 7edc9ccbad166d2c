// =============================
// File: internal/protocol/errors.go
// =============================
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Solana program error markers for exceeded slippage.
const (
	SlippageExceededCode    = "0x1774"
	SlippageExceededCodeInt = 6004
)

// ValidationError reports a caller-supplied parameter that cannot be used.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is a parameter validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DecodeError reports a payload that could not be classified or decoded.
// The codec boundary swallows these; they never abort a stream.
type DecodeError struct {
	Program solana.PublicKey
	Reason  string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Program, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Program, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is a codec classification failure.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// NetworkError reports a failed exchange with a remote endpoint.
type NetworkError struct {
	Endpoint string
	Op       string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// SlippageExceededError reports a trade rejected by the venue program
// because the price moved past the configured tolerance.
type SlippageExceededError struct {
	SlippageBps uint64
	Amount      uint64
	Err         error
}

func (e *SlippageExceededError) Error() string {
	return fmt.Sprintf("slippage exceeded: price moved past %d bps tolerance (amount %d): %v",
		e.SlippageBps, e.Amount, e.Err)
}

func (e *SlippageExceededError) Unwrap() error { return e.Err }

// IsSlippageExceededError matches both our typed error and the raw
// program error text returned by RPC nodes.
func IsSlippageExceededError(err error) bool {
	if err == nil {
		return false
	}
	var se *SlippageExceededError
	if errors.As(err, &se) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "ExceededSlippage") ||
		strings.Contains(msg, SlippageExceededCode) ||
		strings.Contains(msg, strconv.Itoa(SlippageExceededCodeInt))
}

// ClassifySubmitError wraps raw submission errors into the taxonomy.
func ClassifySubmitError(err error, slippageBps, amount uint64) error {
	if err == nil {
		return nil
	}
	if IsSlippageExceededError(err) {
		return &SlippageExceededError{SlippageBps: slippageBps, Amount: amount, Err: err}
	}
	return err
}
