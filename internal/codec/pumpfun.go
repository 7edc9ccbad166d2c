// =============================
// File: internal/codec/pumpfun.go
// =============================
package codec

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Event discriminators emitted by the bonding-curve program.
var (
	PumpFunCreateDiscriminator   = Discriminator{27, 114, 169, 77, 222, 235, 99, 118}
	PumpFunTradeDiscriminator    = Discriminator{189, 219, 127, 211, 78, 230, 97, 238}
	PumpFunCompleteDiscriminator = Discriminator{95, 114, 97, 156, 212, 46, 152, 8}
)

// PumpFunCreateEvent is emitted when a new token and bonding curve are
// created.
type PumpFunCreateEvent struct {
	Name         string
	Symbol       string
	URI          string
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	User         solana.PublicKey
	Creator      solana.PublicKey
}

func (e *PumpFunCreateEvent) Protocol() protocol.Tag { return protocol.TagPumpFun }
func (e *PumpFunCreateEvent) Kind() Kind             { return KindCreate }

func (e *PumpFunCreateEvent) EventAccounts() []solana.PublicKey {
	return []solana.PublicKey{e.Mint, e.BondingCurve, e.User, e.Creator}
}

// PumpFunTradeEvent is emitted on every curve buy or sell and carries
// the post-trade virtual reserves.
type PumpFunTradeEvent struct {
	Mint                 solana.PublicKey
	SolAmount            uint64
	TokenAmount          uint64
	IsBuy                bool
	User                 solana.PublicKey
	Timestamp            int64
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	RealSolReserves      uint64
	RealTokenReserves    uint64
}

func (e *PumpFunTradeEvent) Protocol() protocol.Tag { return protocol.TagPumpFun }

func (e *PumpFunTradeEvent) Kind() Kind { return KindTrade }

func (e *PumpFunTradeEvent) EventAccounts() []solana.PublicKey {
	return []solana.PublicKey{e.Mint, e.User}
}

// IsDevTrade reports whether the trade was made by the token creator.
func (e *PumpFunTradeEvent) IsDevTrade(creator solana.PublicKey) bool {
	return e.User.Equals(creator)
}

// PumpFunCompleteEvent is emitted when a curve graduates.
type PumpFunCompleteEvent struct {
	User         solana.PublicKey
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	Timestamp    int64
}

func (e *PumpFunCompleteEvent) Protocol() protocol.Tag { return protocol.TagPumpFun }
func (e *PumpFunCompleteEvent) Kind() Kind             { return KindComplete }

func (e *PumpFunCompleteEvent) EventAccounts() []solana.PublicKey {
	return []solana.PublicKey{e.Mint, e.BondingCurve, e.User}
}

func registerPumpFunEvents(r *Registry) {
	program := protocol.PumpFunProgramID
	_ = r.Register(program, PumpFunCreateDiscriminator, func(data []byte) (Event, error) {
		ev := new(PumpFunCreateEvent)
		return decodeBorsh(program, data, ev)
	})
	_ = r.Register(program, PumpFunTradeDiscriminator, func(data []byte) (Event, error) {
		ev := new(PumpFunTradeEvent)
		return decodeBorsh(program, data, ev)
	})
	_ = r.Register(program, PumpFunCompleteDiscriminator, func(data []byte) (Event, error) {
		ev := new(PumpFunCompleteEvent)
		return decodeBorsh(program, data, ev)
	})
}

// decodeBorsh decodes a borsh-encoded event body into ev.
func decodeBorsh[T Event](program solana.PublicKey, data []byte, ev T) (Event, error) {
	dec := bin.NewBorshDecoder(data)
	if err := dec.Decode(ev); err != nil {
		return nil, &protocol.DecodeError{Program: program, Reason: "truncated event payload", Err: err}
	}
	return ev, nil
}
