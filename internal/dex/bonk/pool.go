// =============================
// File: internal/dex/bonk/pool.go
// =============================
package bonk

import (
	"github.com/gagliardetto/solana-go"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Pool state account discriminator from the IDL.
var poolAccountDiscriminator = [8]byte{247, 237, 227, 245, 215, 195, 222, 70}

// Default launchpad fees in basis points.
const (
	DefaultProtocolFeeBps = 25
	DefaultPlatformFeeBps = 100
	DefaultShareFeeBps    = 0
)

// Shared program configuration accounts.
var (
	GlobalConfig   = solana.MustPublicKeyFromBase58("6s1xP3hpbAfFoNtUNF8mfHsjr2Bd97JxFJRWLbL6aHuX")
	PlatformConfig = solana.MustPublicKeyFromBase58("FfYek5vEz23cMkWsdJwG2oa6EphsvXSHrGpdALN4g6W1")
)

// PoolAccount is the on-chain launchpad pool state body, truncated to
// the curve fields the trading path reads.
type PoolAccount struct {
	Epoch         uint64
	AuthBump      uint8
	Status        uint8
	BaseDecimals  uint8
	QuoteDecimals uint8
	MigrateType   uint8
	Supply        uint64
	TotalBaseSell uint64
	VirtualBase   uint64
	VirtualQuote  uint64
	RealBase      uint64
	RealQuote     uint64
	BaseMint      solana.PublicKey
	QuoteMint     solana.PublicKey
	BaseVault     solana.PublicKey
	QuoteVault    solana.PublicKey
	Creator       solana.PublicKey
}

// PoolSnapshot is the pricing view of one launchpad pool.
type PoolSnapshot struct {
	PoolState      solana.PublicKey
	BaseVault      solana.PublicKey
	QuoteVault     solana.PublicKey
	VirtualBase    uint64
	VirtualQuote   uint64
	RealBase       uint64
	RealQuote      uint64
	ProtocolFeeBps uint64
	PlatformFeeBps uint64
	ShareFeeBps    uint64
}

// Venue implements dex.Snapshot.
func (s *PoolSnapshot) Venue() protocol.Tag { return protocol.TagBonk }

// TotalFeeBps is the combined launchpad fee charged on the quote leg.
func (s *PoolSnapshot) TotalFeeBps() uint64 {
	return s.ProtocolFeeBps + s.PlatformFeeBps + s.ShareFeeBps
}

// DeriveAuthority derives the vault authority PDA.
func DeriveAuthority() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("vault_auth_seed")},
		protocol.BonkProgramID,
	)
	return addr, err
}

// DerivePool derives the pool state PDA for a base/quote pair.
func DerivePool(baseMint, quoteMint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("pool"), baseMint.Bytes(), quoteMint.Bytes()},
		protocol.BonkProgramID,
	)
	return addr, err
}

// DeriveVault derives a pool vault PDA for one mint.
func DeriveVault(pool, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("pool_vault"), pool.Bytes(), mint.Bytes()},
		protocol.BonkProgramID,
	)
	return addr, err
}

// DeriveEventAuthority derives the anchor event authority PDA.
func DeriveEventAuthority() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("__event_authority")},
		protocol.BonkProgramID,
	)
	return addr, err
}
