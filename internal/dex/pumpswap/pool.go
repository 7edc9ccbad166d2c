// =============================
// File: internal/dex/pumpswap/pool.go
// =============================
package pumpswap

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Pool account discriminator from the IDL.
var poolAccountDiscriminator = [8]byte{241, 154, 109, 4, 17, 177, 109, 188}

// Default pool fees in basis points, used when a snapshot is built
// without a fee-carrying event.
const (
	DefaultLpFeeBps          = 20
	DefaultProtocolFeeBps    = 5
	DefaultCoinCreatorFeeBps = 5
)

// canonicalPoolIndex is the index the migration path uses for pools it
// creates.
const canonicalPoolIndex uint16 = 0

// ProtocolFeeRecipient receives the protocol share of every swap.
var ProtocolFeeRecipient = solana.MustPublicKeyFromBase58("62qc2CNXwrYqQScmEdiZFFAnJR262PxWEuNQtxfafNgV")

// PoolAccount is the on-chain pool account body.
type PoolAccount struct {
	PoolBump              uint8
	Index                 uint16
	Creator               solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	LpMint                solana.PublicKey
	PoolBaseTokenAccount  solana.PublicKey
	PoolQuoteTokenAccount solana.PublicKey
	LpSupply              uint64
	CoinCreator           solana.PublicKey
}

// PoolSnapshot is the pricing view of one AMM pool.
type PoolSnapshot struct {
	Pool              solana.PublicKey
	BaseReserves      uint64
	QuoteReserves     uint64
	LpFeeBps          uint64
	ProtocolFeeBps    uint64
	CoinCreatorFeeBps uint64
	CoinCreator       solana.PublicKey
}

// Venue implements dex.Snapshot.
func (s *PoolSnapshot) Venue() protocol.Tag { return protocol.TagPumpSwap }

// TotalFeeBps is the combined swap fee.
func (s *PoolSnapshot) TotalFeeBps() uint64 {
	return s.LpFeeBps + s.ProtocolFeeBps + s.CoinCreatorFeeBps
}

// DeriveCanonicalPool derives the pool address the migration path
// creates for a graduated mint.
func DeriveCanonicalPool(mint solana.PublicKey) (solana.PublicKey, error) {
	poolAuthority, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("pool-authority"), mint.Bytes()},
		protocol.PumpFunProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, err
	}

	indexBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(indexBytes, canonicalPoolIndex)

	pool, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("pool"), indexBytes, poolAuthority.Bytes(), mint.Bytes(), protocol.WSOLMint.Bytes()},
		protocol.PumpSwapProgramID,
	)
	return pool, err
}

// DeriveGlobalConfig derives the program's global config PDA.
func DeriveGlobalConfig() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("global_config")},
		protocol.PumpSwapProgramID,
	)
	return addr, err
}

// DeriveEventAuthority derives the anchor event authority PDA.
func DeriveEventAuthority() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("__event_authority")},
		protocol.PumpSwapProgramID,
	)
	return addr, err
}

// DeriveCoinCreatorVault derives the creator fee vault authority and
// its wSOL token account.
func DeriveCoinCreatorVault(coinCreator solana.PublicKey) (authority, vaultATA solana.PublicKey, err error) {
	authority, _, err = solana.FindProgramAddress(
		[][]byte{[]byte("creator_vault"), coinCreator.Bytes()},
		protocol.PumpSwapProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	vaultATA, _, err = solana.FindAssociatedTokenAddress(authority, protocol.WSOLMint)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return authority, vaultATA, nil
}

// PoolVaults derives the pool's base and quote token accounts.
func PoolVaults(pool, baseMint solana.PublicKey) (baseVault, quoteVault solana.PublicKey, err error) {
	baseVault, _, err = solana.FindAssociatedTokenAddress(pool, baseMint)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	quoteVault, _, err = solana.FindAssociatedTokenAddress(pool, protocol.WSOLMint)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return baseVault, quoteVault, nil
}
