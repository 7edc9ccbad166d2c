// ==============================================
// File: internal/dex/pumpfun/curve.go
// ==============================================
package pumpfun

import (
	"github.com/gagliardetto/solana-go"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Bonding curve account discriminator from the IDL.
var curveAccountDiscriminator = [8]byte{23, 183, 248, 55, 96, 216, 172, 96}

// Well-known program accounts.
var (
	GlobalAccount  = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
	FeeRecipient   = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
	EventAuthority = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
)

// CurveState is the on-chain bonding curve account body.
type CurveState struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey
}

// CurveSnapshot is the pricing view of one bonding curve.
type CurveSnapshot struct {
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	State        CurveState
}

// Venue implements dex.Snapshot.
func (s *CurveSnapshot) Venue() protocol.Tag { return protocol.TagPumpFun }

// DeriveBondingCurve derives the curve PDA for a mint.
func DeriveBondingCurve(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("bonding-curve"), mint.Bytes()},
		protocol.PumpFunProgramID,
	)
	return addr, err
}

// DeriveCreatorVault derives the creator fee vault PDA.
func DeriveCreatorVault(creator solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("creator-vault"), creator.Bytes()},
		protocol.PumpFunProgramID,
	)
	return addr, err
}

// AssociatedBondingCurve is the curve's token account for the mint.
func AssociatedBondingCurve(bondingCurve, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(bondingCurve, mint)
	return ata, err
}
