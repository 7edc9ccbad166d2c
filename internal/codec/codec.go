// =============================
// File: internal/codec/codec.go
// =============================
package codec

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/protocol"
)

// logDataPrefix marks emitted event payloads inside program logs.
const logDataPrefix = "Program data: "

// Kind names the shape of a decoded event.
type Kind string

const (
	KindCreate     Kind = "create"
	KindTrade      Kind = "trade"
	KindComplete   Kind = "complete"
	KindBuy        Kind = "buy"
	KindSell       Kind = "sell"
	KindCreatePool Kind = "create_pool"
	KindDeposit    Kind = "deposit"
	KindWithdraw   Kind = "withdraw"
)

// Event is a decoded venue event.
type Event interface {
	Protocol() protocol.Tag
	Kind() Kind
}

// accountCarrier is implemented by events that can be matched against
// an account allowlist.
type accountCarrier interface {
	EventAccounts() []solana.PublicKey
}

// Discriminator is the 8-byte prefix identifying an event layout.
type Discriminator [8]byte

// DecodeFunc decodes an event payload with the discriminator already
// stripped.
type DecodeFunc func(data []byte) (Event, error)

// Registry maps (program, discriminator) pairs to decoders.
type Registry struct {
	mu        sync.RWMutex
	byProgram map[solana.PublicKey]map[Discriminator]DecodeFunc
	logger    *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		byProgram: make(map[solana.PublicKey]map[Discriminator]DecodeFunc),
		logger:    logger.Named("codec"),
	}
}

// NewDefaultRegistry creates a registry with every supported venue
// event family registered.
func NewDefaultRegistry(logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	registerPumpFunEvents(r)
	registerPumpSwapEvents(r)
	registerBonkEvents(r)
	return r
}

// Register adds a decoder for one event layout.
func (r *Registry) Register(program solana.PublicKey, disc Discriminator, fn DecodeFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byDisc, ok := r.byProgram[program]
	if !ok {
		byDisc = make(map[Discriminator]DecodeFunc)
		r.byProgram[program] = byDisc
	}
	if _, exists := byDisc[disc]; exists {
		return fmt.Errorf("discriminator %x already registered for program %s", disc, program)
	}
	byDisc[disc] = fn
	return nil
}

// Decode classifies and decodes a single payload.
func (r *Registry) Decode(program solana.PublicKey, data []byte) (Event, error) {
	if len(data) < 8 {
		return nil, &protocol.DecodeError{Program: program, Reason: fmt.Sprintf("payload too short: %d bytes", len(data))}
	}

	var disc Discriminator
	copy(disc[:], data[:8])

	r.mu.RLock()
	byDisc, ok := r.byProgram[program]
	var fn DecodeFunc
	if ok {
		fn = byDisc[disc]
	}
	r.mu.RUnlock()

	if fn == nil {
		return nil, &protocol.DecodeError{Program: program, Reason: fmt.Sprintf("unknown discriminator %x", disc)}
	}
	return fn(data[8:])
}

// DecodeAll decodes every payload it can and skips the rest. Payloads
// that fail to classify are counted and logged at debug; they never
// abort the caller.
func (r *Registry) DecodeAll(program solana.PublicKey, payloads [][]byte) []Event {
	var events []Event
	skipped := 0
	for _, p := range payloads {
		ev, err := r.Decode(program, p)
		if err != nil {
			skipped++
			continue
		}
		events = append(events, ev)
	}
	if skipped > 0 {
		r.logger.Debug("Skipped undecodable payloads",
			zap.String("program", program.String()),
			zap.Int("skipped", skipped),
			zap.Int("decoded", len(events)))
	}
	return events
}

// ExtractLogPayloads pulls base64 event payloads out of program log
// lines. Malformed lines are skipped.
func ExtractLogPayloads(logs []string) [][]byte {
	var payloads [][]byte
	for _, line := range logs {
		rest, ok := strings.CutPrefix(line, logDataPrefix)
		if !ok {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			continue
		}
		payloads = append(payloads, raw)
	}
	return payloads
}

// Filter restricts decoded events to a set of venues and, optionally,
// to events touching a set of accounts.
type Filter struct {
	Protocols map[protocol.Tag]bool
	Accounts  map[solana.PublicKey]bool
}

// NewFilter builds a filter for the given venues. An empty tag list
// admits every venue.
func NewFilter(tags ...protocol.Tag) *Filter {
	f := &Filter{Protocols: make(map[protocol.Tag]bool), Accounts: make(map[solana.PublicKey]bool)}
	for _, t := range tags {
		f.Protocols[t] = true
	}
	return f
}

// WatchAccount adds an account to the allowlist.
func (f *Filter) WatchAccount(acc solana.PublicKey) *Filter {
	f.Accounts[acc] = true
	return f
}

// MatchProgram reports whether any event from the program can pass the
// filter, so callers can drop foreign payloads without decoding them.
func (f *Filter) MatchProgram(program solana.PublicKey) bool {
	if f == nil || len(f.Protocols) == 0 {
		return true
	}
	tag, ok := protocol.TagForProgram(program)
	if !ok {
		return false
	}
	return f.Protocols[tag]
}

// Match reports whether the event passes the filter.
func (f *Filter) Match(ev Event) bool {
	if f == nil {
		return true
	}
	if len(f.Protocols) > 0 && !f.Protocols[ev.Protocol()] {
		return false
	}
	if len(f.Accounts) == 0 {
		return true
	}
	carrier, ok := ev.(accountCarrier)
	if !ok {
		return false
	}
	for _, acc := range carrier.EventAccounts() {
		if f.Accounts[acc] {
			return true
		}
	}
	return false
}
