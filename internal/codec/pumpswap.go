// =============================
// File: internal/codec/pumpswap.go
// =============================
package codec

import (
	"github.com/gagliardetto/solana-go"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Event discriminators emitted by the AMM program.
var (
	PumpSwapBuyDiscriminator        = Discriminator{103, 244, 82, 31, 44, 245, 119, 119}
	PumpSwapSellDiscriminator       = Discriminator{62, 47, 55, 10, 165, 3, 220, 42}
	PumpSwapCreatePoolDiscriminator = Discriminator{177, 49, 12, 210, 160, 118, 167, 116}
	PumpSwapDepositDiscriminator    = Discriminator{120, 248, 61, 83, 31, 142, 107, 144}
	PumpSwapWithdrawDiscriminator   = Discriminator{22, 9, 133, 26, 160, 44, 71, 192}
)

// PumpSwapBuyEvent carries the pool reserves and fee breakdown for a
// quote-in, base-out swap.
type PumpSwapBuyEvent struct {
	Timestamp                        int64
	BaseAmountOut                    uint64
	MaxQuoteAmountIn                 uint64
	UserBaseTokenReserves            uint64
	UserQuoteTokenReserves           uint64
	PoolBaseTokenReserves            uint64
	PoolQuoteTokenReserves           uint64
	QuoteAmountIn                    uint64
	LpFeeBasisPoints                 uint64
	LpFee                            uint64
	ProtocolFeeBasisPoints           uint64
	ProtocolFee                      uint64
	QuoteAmountInWithLpFee           uint64
	UserQuoteAmountIn                uint64
	Pool                             solana.PublicKey
	User                             solana.PublicKey
	UserBaseTokenAccount             solana.PublicKey
	UserQuoteTokenAccount            solana.PublicKey
	ProtocolFeeRecipient             solana.PublicKey
	ProtocolFeeRecipientTokenAccount solana.PublicKey
	CoinCreator                      solana.PublicKey
	CoinCreatorFeeBasisPoints        uint64
	CoinCreatorFee                   uint64
}

func (e *PumpSwapBuyEvent) Protocol() protocol.Tag { return protocol.TagPumpSwap }
func (e *PumpSwapBuyEvent) Kind() Kind             { return KindBuy }

func (e *PumpSwapBuyEvent) EventAccounts() []solana.PublicKey {
	return []solana.PublicKey{e.Pool, e.User, e.CoinCreator}
}

// PumpSwapSellEvent mirrors the buy event for base-in, quote-out swaps.
type PumpSwapSellEvent struct {
	Timestamp                        int64
	BaseAmountIn                     uint64
	MinQuoteAmountOut                uint64
	UserBaseTokenReserves            uint64
	UserQuoteTokenReserves           uint64
	PoolBaseTokenReserves            uint64
	PoolQuoteTokenReserves           uint64
	QuoteAmountOut                   uint64
	LpFeeBasisPoints                 uint64
	LpFee                            uint64
	ProtocolFeeBasisPoints           uint64
	ProtocolFee                      uint64
	QuoteAmountOutWithoutLpFee       uint64
	UserQuoteAmountOut               uint64
	Pool                             solana.PublicKey
	User                             solana.PublicKey
	UserBaseTokenAccount             solana.PublicKey
	UserQuoteTokenAccount            solana.PublicKey
	ProtocolFeeRecipient             solana.PublicKey
	ProtocolFeeRecipientTokenAccount solana.PublicKey
	CoinCreator                      solana.PublicKey
	CoinCreatorFeeBasisPoints        uint64
	CoinCreatorFee                   uint64
}

func (e *PumpSwapSellEvent) Protocol() protocol.Tag { return protocol.TagPumpSwap }
func (e *PumpSwapSellEvent) Kind() Kind             { return KindSell }

func (e *PumpSwapSellEvent) EventAccounts() []solana.PublicKey {
	return []solana.PublicKey{e.Pool, e.User, e.CoinCreator}
}

// PumpSwapCreatePoolEvent is emitted when a new pool is initialized.
type PumpSwapCreatePoolEvent struct {
	Timestamp             int64
	Index                 uint16
	Creator               solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	BaseMintDecimals      uint8
	QuoteMintDecimals     uint8
	BaseAmountIn          uint64
	QuoteAmountIn         uint64
	PoolBaseAmount        uint64
	PoolQuoteAmount       uint64
	MinimumLiquidity      uint64
	InitialLiquidity      uint64
	LpTokenAmountOut      uint64
	PoolBump              uint8
	Pool                  solana.PublicKey
	LpMint                solana.PublicKey
	UserBaseTokenAccount  solana.PublicKey
	UserQuoteTokenAccount solana.PublicKey
}

func (e *PumpSwapCreatePoolEvent) Protocol() protocol.Tag { return protocol.TagPumpSwap }
func (e *PumpSwapCreatePoolEvent) Kind() Kind             { return KindCreatePool }

func (e *PumpSwapCreatePoolEvent) EventAccounts() []solana.PublicKey {
	return []solana.PublicKey{e.Pool, e.Creator, e.BaseMint, e.QuoteMint}
}

// PumpSwapDepositEvent is emitted on liquidity adds.
type PumpSwapDepositEvent struct {
	Timestamp              int64
	LpTokenAmountOut       uint64
	MaxBaseAmountIn        uint64
	MaxQuoteAmountIn       uint64
	UserBaseTokenReserves  uint64
	UserQuoteTokenReserves uint64
	PoolBaseTokenReserves  uint64
	PoolQuoteTokenReserves uint64
	BaseAmountIn           uint64
	QuoteAmountIn          uint64
	LpMintSupply           uint64
	Pool                   solana.PublicKey
	User                   solana.PublicKey
	UserBaseTokenAccount   solana.PublicKey
	UserQuoteTokenAccount  solana.PublicKey
	UserPoolTokenAccount   solana.PublicKey
}

func (e *PumpSwapDepositEvent) Protocol() protocol.Tag { return protocol.TagPumpSwap }
func (e *PumpSwapDepositEvent) Kind() Kind             { return KindDeposit }

func (e *PumpSwapDepositEvent) EventAccounts() []solana.PublicKey {
	return []solana.PublicKey{e.Pool, e.User}
}

// PumpSwapWithdrawEvent is emitted on liquidity removals.
type PumpSwapWithdrawEvent struct {
	Timestamp              int64
	LpTokenAmountIn        uint64
	MinBaseAmountOut       uint64
	MinQuoteAmountOut      uint64
	UserBaseTokenReserves  uint64
	UserQuoteTokenReserves uint64
	PoolBaseTokenReserves  uint64
	PoolQuoteTokenReserves uint64
	BaseAmountOut          uint64
	QuoteAmountOut         uint64
	LpMintSupply           uint64
	Pool                   solana.PublicKey
	User                   solana.PublicKey
	UserBaseTokenAccount   solana.PublicKey
	UserQuoteTokenAccount  solana.PublicKey
	UserPoolTokenAccount   solana.PublicKey
}

func (e *PumpSwapWithdrawEvent) Protocol() protocol.Tag { return protocol.TagPumpSwap }
func (e *PumpSwapWithdrawEvent) Kind() Kind             { return KindWithdraw }

func (e *PumpSwapWithdrawEvent) EventAccounts() []solana.PublicKey {
	return []solana.PublicKey{e.Pool, e.User}
}

func registerPumpSwapEvents(r *Registry) {
	program := protocol.PumpSwapProgramID
	_ = r.Register(program, PumpSwapBuyDiscriminator, func(data []byte) (Event, error) {
		return decodeBorsh(program, data, new(PumpSwapBuyEvent))
	})
	_ = r.Register(program, PumpSwapSellDiscriminator, func(data []byte) (Event, error) {
		return decodeBorsh(program, data, new(PumpSwapSellEvent))
	})
	_ = r.Register(program, PumpSwapCreatePoolDiscriminator, func(data []byte) (Event, error) {
		return decodeBorsh(program, data, new(PumpSwapCreatePoolEvent))
	})
	_ = r.Register(program, PumpSwapDepositDiscriminator, func(data []byte) (Event, error) {
		return decodeBorsh(program, data, new(PumpSwapDepositEvent))
	})
	_ = r.Register(program, PumpSwapWithdrawDiscriminator, func(data []byte) (Event, error) {
		return decodeBorsh(program, data, new(PumpSwapWithdrawEvent))
	})
}
