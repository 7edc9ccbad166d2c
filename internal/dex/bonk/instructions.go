// =============================
// File: internal/dex/bonk/instructions.go
// =============================
package bonk

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Instruction discriminators extracted from the IDL.
var (
	buyExactInDiscriminator  = []byte{250, 234, 13, 123, 213, 156, 19, 236}
	sellExactInDiscriminator = []byte{149, 39, 222, 155, 211, 124, 152, 26}
)

const (
	tokenOpCloseAccount = 9
	tokenOpSyncNative   = 17
)

// swapAccounts is the resolved account set for one launchpad trade.
type swapAccounts struct {
	Payer          solana.PublicKey
	Authority      solana.PublicKey
	PoolState      solana.PublicKey
	UserBaseToken  solana.PublicKey
	UserQuoteToken solana.PublicKey
	BaseVault      solana.PublicKey
	QuoteVault     solana.PublicKey
	BaseMint       solana.PublicKey
	EventAuthority solana.PublicKey
}

// buildExactInInstruction builds a buy_exact_in or sell_exact_in.
// amountIn and minimumOut follow the trade direction; shareFeeRate is
// forwarded to the program in basis points.
func buildExactInInstruction(acc swapAccounts, isBuy bool, amountIn, minimumOut, shareFeeRate uint64) solana.Instruction {
	data := make([]byte, 8+8+8+8)
	if isBuy {
		copy(data[0:8], buyExactInDiscriminator)
	} else {
		copy(data[0:8], sellExactInDiscriminator)
	}
	binary.LittleEndian.PutUint64(data[8:16], amountIn)
	binary.LittleEndian.PutUint64(data[16:24], minimumOut)
	binary.LittleEndian.PutUint64(data[24:32], shareFeeRate)

	// Account list must be in the exact order expected by the program.
	metas := []*solana.AccountMeta{
		{PublicKey: acc.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: acc.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: GlobalConfig, IsSigner: false, IsWritable: false},
		{PublicKey: PlatformConfig, IsSigner: false, IsWritable: false},
		{PublicKey: acc.PoolState, IsSigner: false, IsWritable: true},
		{PublicKey: acc.UserBaseToken, IsSigner: false, IsWritable: true},
		{PublicKey: acc.UserQuoteToken, IsSigner: false, IsWritable: true},
		{PublicKey: acc.BaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: acc.QuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: acc.BaseMint, IsSigner: false, IsWritable: false},
		{PublicKey: protocol.WSOLMint, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: acc.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: protocol.BonkProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(protocol.BonkProgramID, metas, data)
}

// wrapSOLInstructions funds and syncs the user's wSOL account.
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
