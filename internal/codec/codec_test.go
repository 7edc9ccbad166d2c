package codec

import (
	"bytes"
	"encoding/base64"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/protocol"
)

// encodeEvent builds a wire payload: discriminator followed by the
// borsh-encoded body.
func encodeEvent(t *testing.T, disc Discriminator, ev interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(disc[:])
	require.NoError(t, bin.NewBorshEncoder(&buf).Encode(ev))
	return buf.Bytes()
}

func TestDecodeTradeEvent(t *testing.T) {
	r := NewDefaultRegistry(zap.NewNop())

	want := &PumpFunTradeEvent{
		Mint:                 solana.NewWallet().PublicKey(),
		SolAmount:            1_000_000,
		TokenAmount:          35_000_000_000,
		IsBuy:                true,
		User:                 solana.NewWallet().PublicKey(),
		Timestamp:            1_718_000_000,
		VirtualSolReserves:   30_001_000_000,
		VirtualTokenReserves: 1_072_965_000_000_000,
		RealSolReserves:      1_000_000,
		RealTokenReserves:    793_065_000_000_000,
	}

	payload := encodeEvent(t, PumpFunTradeDiscriminator, want)
	ev, err := r.Decode(protocol.PumpFunProgramID, payload)
	require.NoError(t, err)

	got, ok := ev.(*PumpFunTradeEvent)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, protocol.TagPumpFun, got.Protocol())
	assert.Equal(t, KindTrade, got.Kind())
}

func TestDecodeUnknownDiscriminator(t *testing.T) {
	r := NewDefaultRegistry(zap.NewNop())

	_, err := r.Decode(protocol.PumpFunProgramID, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.True(t, protocol.IsDecodeError(err))
}

func TestDecodeShortPayload(t *testing.T) {
	r := NewDefaultRegistry(zap.NewNop())

	_, err := r.Decode(protocol.PumpFunProgramID, []byte{1, 2, 3})
	assert.True(t, protocol.IsDecodeError(err))
}

func TestDecodeWrongProgram(t *testing.T) {
	r := NewDefaultRegistry(zap.NewNop())

	payload := encodeEvent(t, PumpFunTradeDiscriminator, &PumpFunTradeEvent{})
	_, err := r.Decode(solana.NewWallet().PublicKey(), payload)
	assert.True(t, protocol.IsDecodeError(err))
}

func TestDecodeAllSkipsUndecodable(t *testing.T) {
	r := NewDefaultRegistry(zap.NewNop())

	good := encodeEvent(t, PumpFunTradeDiscriminator, &PumpFunTradeEvent{SolAmount: 42})
	bad := []byte{9, 9, 9, 9, 9, 9, 9, 9, 0}
	short := []byte{1}

	events := r.DecodeAll(protocol.PumpFunProgramID, [][]byte{bad, good, short})
	require.Len(t, events, 1)
	assert.Equal(t, uint64(42), events[0].(*PumpFunTradeEvent).SolAmount)
}

func TestDecodeBonkTradeEvent(t *testing.T) {
	r := NewDefaultRegistry(zap.NewNop())

	want := &BonkTradeEvent{
		PoolState:      solana.NewWallet().PublicKey(),
		TotalBaseSell:  793_100_000_000_000,
		VirtualBase:    1_073_000_000_000_000,
		VirtualQuote:   30_000_000_000,
		RealBaseAfter:  35_000_000_000,
		RealQuoteAfter: 1_000_000,
		AmountIn:       1_000_000,
		AmountOut:      35_000_000_000,
		ProtocolFee:    2_500,
		PlatformFee:    10_000,
		TradeDirection: BonkTradeBuy,
		PoolStatus:     BonkPoolTrade,
	}

	payload := encodeEvent(t, BonkTradeDiscriminator, want)
	ev, err := r.Decode(protocol.BonkProgramID, payload)
	require.NoError(t, err)

	got, ok := ev.(*BonkTradeEvent)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, protocol.TagBonk, got.Protocol())
}

func TestDecodePumpSwapSellEvent(t *testing.T) {
	r := NewDefaultRegistry(zap.NewNop())

	want := &PumpSwapSellEvent{
		Timestamp:                 1_718_000_000,
		BaseAmountIn:              5_000_000_000,
		PoolBaseTokenReserves:     2_000_000_000_000,
		PoolQuoteTokenReserves:    80_000_000_000,
		LpFeeBasisPoints:          20,
		ProtocolFeeBasisPoints:    5,
		Pool:                      solana.NewWallet().PublicKey(),
		User:                      solana.NewWallet().PublicKey(),
		CoinCreator:               solana.NewWallet().PublicKey(),
		CoinCreatorFeeBasisPoints: 5,
	}

	payload := encodeEvent(t, PumpSwapSellDiscriminator, want)
	ev, err := r.Decode(protocol.PumpSwapProgramID, payload)
	require.NoError(t, err)

	got, ok := ev.(*PumpSwapSellEvent)
	require.True(t, ok)
	assert.Equal(t, want.Pool, got.Pool)
	assert.Equal(t, want.LpFeeBasisPoints, got.LpFeeBasisPoints)
	assert.Equal(t, want.CoinCreator, got.CoinCreator)
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	disc := Discriminator{1, 2, 3, 4, 5, 6, 7, 8}
	program := solana.NewWallet().PublicKey()

	fn := func(data []byte) (Event, error) { return &PumpFunTradeEvent{}, nil }
	require.NoError(t, r.Register(program, disc, fn))
	assert.Error(t, r.Register(program, disc, fn))
}

func TestExtractLogPayloads(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	logs := []string{
		"Program 6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P invoke [1]",
		"Program data: " + base64.StdEncoding.EncodeToString(payload),
		"Program data: not-base64!!!",
		"Program log: Instruction: Buy",
	}

	payloads := ExtractLogPayloads(logs)
	require.Len(t, payloads, 1)
	assert.Equal(t, payload, payloads[0])
}

func TestFilterByProtocol(t *testing.T) {
	f := NewFilter(protocol.TagPumpFun)

	assert.True(t, f.Match(&PumpFunTradeEvent{}))
	assert.False(t, f.Match(&BonkTradeEvent{}))
}

func TestFilterByAccount(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	f := NewFilter(protocol.TagPumpFun).WatchAccount(mint)

	assert.True(t, f.Match(&PumpFunTradeEvent{Mint: mint}))
	assert.False(t, f.Match(&PumpFunTradeEvent{Mint: solana.NewWallet().PublicKey()}))
}

func TestNilFilterMatchesEverything(t *testing.T) {
	var f *Filter
	assert.True(t, f.Match(&BonkTradeEvent{}))
}

func TestEmptyFilterAdmitsEveryVenue(t *testing.T) {
	f := NewFilter()
	assert.True(t, f.Match(&PumpFunTradeEvent{}))
	assert.True(t, f.Match(&BonkTradeEvent{}))
}

func TestFilterMatchProgram(t *testing.T) {
	f := NewFilter(protocol.TagPumpFun)

	assert.True(t, f.MatchProgram(protocol.PumpFunProgramID))
	assert.False(t, f.MatchProgram(protocol.BonkProgramID))
	// Programs outside the venue set can never produce a matching event.
	assert.False(t, f.MatchProgram(protocol.WSOLMint))

	var nilFilter *Filter
	assert.True(t, nilFilter.MatchProgram(protocol.BonkProgramID))
	assert.True(t, NewFilter().MatchProgram(protocol.BonkProgramID))
}
