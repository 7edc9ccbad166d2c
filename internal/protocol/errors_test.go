package protocol

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	assert.True(t, IsValidationError(err))
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidationError(errors.New("plain")))
	assert.Contains(t, err.Error(), "amount")
}

func TestNetworkErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &NetworkError{Endpoint: "https://rpc.example", Op: "sendTransaction", Err: inner}

	assert.True(t, IsNetworkError(err))
	assert.ErrorIs(t, err, inner)
}

func TestIsSlippageExceededError(t *testing.T) {
	assert.False(t, IsSlippageExceededError(nil))
	assert.False(t, IsSlippageExceededError(errors.New("blockhash not found")))

	// Typed error.
	assert.True(t, IsSlippageExceededError(&SlippageExceededError{SlippageBps: 100}))

	// Raw program error shapes seen from RPC nodes.
	assert.True(t, IsSlippageExceededError(errors.New("custom program error: 0x1774")))
	assert.True(t, IsSlippageExceededError(errors.New("Error Code: ExceededSlippage")))
	assert.True(t, IsSlippageExceededError(errors.New("custom program error: 6004")))
}

func TestClassifySubmitError(t *testing.T) {
	assert.NoError(t, ClassifySubmitError(nil, 100, 1_000))

	raw := errors.New("custom program error: 0x1774")
	err := ClassifySubmitError(raw, 100, 1_000)

	var se *SlippageExceededError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, uint64(100), se.SlippageBps)
	assert.Equal(t, uint64(1_000), se.Amount)
	assert.ErrorIs(t, err, raw)

	other := errors.New("node is behind")
	assert.Equal(t, other, ClassifySubmitError(other, 100, 1_000))
}

func TestTagHelpers(t *testing.T) {
	assert.True(t, TagPumpFun.Valid())
	assert.False(t, Tag("raydium").Valid())

	tag, err := ParseTag("bonk")
	require.NoError(t, err)
	assert.Equal(t, TagBonk, tag)

	_, err = ParseTag("unknown")
	assert.True(t, IsValidationError(err))

	assert.Equal(t, PumpFunProgramID, ProgramID(TagPumpFun))

	got, ok := TagForProgram(BonkProgramID)
	assert.True(t, ok)
	assert.Equal(t, TagBonk, got)

	_, ok = TagForProgram(WSOLMint)
	assert.False(t, ok)
}
