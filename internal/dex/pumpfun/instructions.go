// ==============================================
// File: internal/dex/pumpfun/instructions.go
// ==============================================
package pumpfun

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Instruction discriminators extracted from the IDL.
var (
	buyDiscriminator  = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	sellDiscriminator = []byte{51, 230, 133, 164, 1, 127, 131, 173}
)

// swapAccounts is the resolved account set for one curve trade.
type swapAccounts struct {
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	AssociatedUser         solana.PublicKey
	User                   solana.PublicKey
	CreatorVault           solana.PublicKey
}

// buildBuyInstruction builds a curve buy. amount is the minimum token
// output accepted, maxSolCost the lamports spent.
func buildBuyInstruction(acc swapAccounts, amount, maxSolCost uint64) solana.Instruction {
	data := make([]byte, 8+8+8)
	copy(data[0:8], buyDiscriminator)
	binary.LittleEndian.PutUint64(data[8:16], amount)
	binary.LittleEndian.PutUint64(data[16:24], maxSolCost)

	// Account list must be in the exact order expected by the program.
	metas := []*solana.AccountMeta{
		{PublicKey: GlobalAccount, IsSigner: false, IsWritable: false},
		{PublicKey: FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: acc.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: acc.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: acc.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: acc.AssociatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: acc.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: acc.CreatorVault, IsSigner: false, IsWritable: true},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: protocol.PumpFunProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(protocol.PumpFunProgramID, metas, data)
}

// buildSellInstruction builds a curve sell. amount is the token input,
// minSolOutput the lamport floor accepted.
func buildSellInstruction(acc swapAccounts, amount, minSolOutput uint64) solana.Instruction {
	data := make([]byte, 8+8+8)
	copy(data[0:8], sellDiscriminator)
	binary.LittleEndian.PutUint64(data[8:16], amount)
	binary.LittleEndian.PutUint64(data[16:24], minSolOutput)

	// Account list must be in the exact order expected by the program.
	metas := []*solana.AccountMeta{
		{PublicKey: GlobalAccount, IsSigner: false, IsWritable: false},
		{PublicKey: FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: acc.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: acc.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: acc.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: acc.AssociatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: acc.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: acc.CreatorVault, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: protocol.PumpFunProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(protocol.PumpFunProgramID, metas, data)
}
