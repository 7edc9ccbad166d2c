// =============================
// File: internal/codec/bonk.go
// =============================
package codec

import (
	"github.com/gagliardetto/solana-go"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Event discriminators emitted by the launchpad program.
var (
	BonkTradeDiscriminator      = Discriminator{77, 12, 205, 163, 230, 44, 91, 8}
	BonkPoolCreateDiscriminator = Discriminator{25, 94, 180, 7, 66, 132, 219, 151}
)

// BonkTradeDirection distinguishes quote-in buys from base-in sells.
type BonkTradeDirection uint8

const (
	BonkTradeBuy  BonkTradeDirection = 0
	BonkTradeSell BonkTradeDirection = 1
)

// BonkPoolStatus is the launchpad pool lifecycle state.
type BonkPoolStatus uint8

const (
	BonkPoolFunding BonkPoolStatus = 0
	BonkPoolMigrate BonkPoolStatus = 1
	BonkPoolTrade   BonkPoolStatus = 2
)

// BonkTradeEvent carries pre- and post-trade reserves plus the fee
// breakdown charged on the input amount.
type BonkTradeEvent struct {
	PoolState       solana.PublicKey
	TotalBaseSell   uint64
	VirtualBase     uint64
	VirtualQuote    uint64
	RealBaseBefore  uint64
	RealQuoteBefore uint64
	RealBaseAfter   uint64
	RealQuoteAfter  uint64
	AmountIn        uint64
	AmountOut       uint64
	ProtocolFee     uint64
	PlatformFee     uint64
	ShareFee        uint64
	TradeDirection  BonkTradeDirection
	PoolStatus      BonkPoolStatus
}

func (e *BonkTradeEvent) Protocol() protocol.Tag { return protocol.TagBonk }
func (e *BonkTradeEvent) Kind() Kind             { return KindTrade }

func (e *BonkTradeEvent) EventAccounts() []solana.PublicKey {
	return []solana.PublicKey{e.PoolState}
}

// BonkPoolCreateEvent is emitted when a launchpad pool is opened.
type BonkPoolCreateEvent struct {
	PoolState    solana.PublicKey
	Creator      solana.PublicKey
	Config       solana.PublicKey
	BaseMint     solana.PublicKey
	BaseDecimals uint8
	BaseName     string
	BaseSymbol   string
	BaseURI      string
}

func (e *BonkPoolCreateEvent) Protocol() protocol.Tag { return protocol.TagBonk }
func (e *BonkPoolCreateEvent) Kind() Kind             { return KindCreatePool }

func (e *BonkPoolCreateEvent) EventAccounts() []solana.PublicKey {
	return []solana.PublicKey{e.PoolState, e.Creator, e.BaseMint}
}

func registerBonkEvents(r *Registry) {
	program := protocol.BonkProgramID
	_ = r.Register(program, BonkTradeDiscriminator, func(data []byte) (Event, error) {
		return decodeBorsh(program, data, new(BonkTradeEvent))
	})
	_ = r.Register(program, BonkPoolCreateDiscriminator, func(data []byte) (Event, error) {
		return decodeBorsh(program, data, new(BonkPoolCreateEvent))
	})
}
