// =============================
// File: internal/protocol/protocol.go
// =============================
package protocol

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Tag identifies a supported trading venue.
type Tag string

const (
	TagPumpFun  Tag = "pumpfun"
	TagPumpSwap Tag = "pumpswap"
	TagBonk     Tag = "bonk"
)

// Direction of a trade.
type Direction int

const (
	DirectionBuy Direction = iota
	DirectionSell
)

func (d Direction) String() string {
	if d == DirectionBuy {
		return "buy"
	}
	return "sell"
}

// On-chain program addresses for each venue.
var (
	PumpFunProgramID  = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	PumpSwapProgramID = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")
	BonkProgramID     = solana.MustPublicKeyFromBase58("LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj")

	WSOLMint                 = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

var allTags = []Tag{TagPumpFun, TagPumpSwap, TagBonk}

// Tags returns every supported venue tag.
func Tags() []Tag {
	out := make([]Tag, len(allTags))
	copy(out, allTags)
	return out
}

// Valid reports whether the tag names a supported venue.
func (t Tag) Valid() bool {
	switch t {
	case TagPumpFun, TagPumpSwap, TagBonk:
		return true
	}
	return false
}

// ParseTag converts a config string into a Tag.
func ParseTag(s string) (Tag, error) {
	t := Tag(s)
	if !t.Valid() {
		return "", &ValidationError{Field: "protocol", Reason: fmt.Sprintf("unknown venue %q", s)}
	}
	return t, nil
}

// ProgramID returns the on-chain program address for a venue.
func ProgramID(t Tag) solana.PublicKey {
	switch t {
	case TagPumpFun:
		return PumpFunProgramID
	case TagPumpSwap:
		return PumpSwapProgramID
	case TagBonk:
		return BonkProgramID
	}
	return solana.PublicKey{}
}

// TagForProgram maps an on-chain program address back to its venue tag.
func TagForProgram(program solana.PublicKey) (Tag, bool) {
	switch {
	case program.Equals(PumpFunProgramID):
		return TagPumpFun, true
	case program.Equals(PumpSwapProgramID):
		return TagPumpSwap, true
	case program.Equals(BonkProgramID):
		return TagBonk, true
	}
	return "", false
}
