// =============================
// File: internal/dex/pumpswap/instructions.go
// =============================
package pumpswap

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Instruction discriminators extracted from the IDL.
var (
	buyDiscriminator  = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	sellDiscriminator = []byte{51, 230, 133, 164, 1, 127, 131, 173}
)

// Token program opcodes used for wSOL handling.
const (
	tokenOpCloseAccount = 9
	tokenOpSyncNative   = 17
)

// swapAccounts is the resolved account set for one pool swap.
type swapAccounts struct {
	Pool                             solana.PublicKey
	User                             solana.PublicKey
	GlobalConfig                     solana.PublicKey
	BaseMint                         solana.PublicKey
	UserBaseTokenAccount             solana.PublicKey
	UserQuoteTokenAccount            solana.PublicKey
	PoolBaseTokenAccount             solana.PublicKey
	PoolQuoteTokenAccount            solana.PublicKey
	ProtocolFeeRecipientTokenAccount solana.PublicKey
	EventAuthority                   solana.PublicKey
	CoinCreatorVaultATA              solana.PublicKey
	CoinCreatorVaultAuthority        solana.PublicKey
}

// buildSwapInstruction builds a pool buy or sell.
// For buys: amount1 = baseAmountOut, amount2 = maxQuoteAmountIn.
// For sells: amount1 = baseAmountIn, amount2 = minQuoteAmountOut.
func buildSwapInstruction(acc swapAccounts, isBuy bool, amount1, amount2 uint64) solana.Instruction {
	data := make([]byte, 8+8+8)
	if isBuy {
		copy(data[0:8], buyDiscriminator)
	} else {
		copy(data[0:8], sellDiscriminator)
	}
	binary.LittleEndian.PutUint64(data[8:16], amount1)
	binary.LittleEndian.PutUint64(data[16:24], amount2)

	// Account list must be in the exact order expected by the program.
	metas := []*solana.AccountMeta{
		solana.NewAccountMeta(acc.Pool, false, false),
		solana.NewAccountMeta(acc.User, true, true),
		solana.NewAccountMeta(acc.GlobalConfig, false, false),
		solana.NewAccountMeta(acc.BaseMint, false, false),
		solana.NewAccountMeta(protocol.WSOLMint, false, false),
		solana.NewAccountMeta(acc.UserBaseTokenAccount, true, false),
		solana.NewAccountMeta(acc.UserQuoteTokenAccount, true, false),
		solana.NewAccountMeta(acc.PoolBaseTokenAccount, true, false),
		solana.NewAccountMeta(acc.PoolQuoteTokenAccount, true, false),
		solana.NewAccountMeta(ProtocolFeeRecipient, false, false),
		solana.NewAccountMeta(acc.ProtocolFeeRecipientTokenAccount, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(protocol.AssociatedTokenProgramID, false, false),
		solana.NewAccountMeta(acc.EventAuthority, false, false),
		solana.NewAccountMeta(protocol.PumpSwapProgramID, false, false),
		solana.NewAccountMeta(acc.CoinCreatorVaultATA, true, false),
		solana.NewAccountMeta(acc.CoinCreatorVaultAuthority, false, false),
	}

	return solana.NewInstruction(protocol.PumpSwapProgramID, metas, data)
}

// wrapSOLInstructions funds and syncs the user's wSOL account so the
// pool can pull quote tokens from it.
func wrapSOLInstructions(owner, wsolATA solana.PublicKey, lamports uint64) []solana.Instruction {
	transfer := system.NewTransferInstruction(lamports, owner, wsolATA).Build()

	sync := solana.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: wsolATA, IsSigner: false, IsWritable: true},
		},
		[]byte{tokenOpSyncNative},
	)

	return []solana.Instruction{transfer, sync}
}

// closeAccountInstruction unwraps wSOL back to the owner.
func closeAccountInstruction(account, owner solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: account, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: false},
		},
		[]byte{tokenOpCloseAccount},
	)
}
