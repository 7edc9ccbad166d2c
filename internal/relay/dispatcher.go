// =============================
// File: internal/relay/dispatcher.go
// =============================
package relay

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/protocol"
)

const defaultSubmitTimeout = 8 * time.Second

// Receipt reports which relay landed the transaction first.
type Receipt struct {
	Signature solana.Signature
	Relay     string
	Elapsed   time.Duration
}

// Dispatcher races one signed payload across every configured relay.
type Dispatcher struct {
	submitters []Submitter
	timeout    time.Duration
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher. timeout bounds each relay's
// individual attempt; zero uses the default.
func NewDispatcher(submitters []Submitter, timeout time.Duration, logger *zap.Logger) (*Dispatcher, error) {
	if len(submitters) == 0 {
		return nil, &protocol.ValidationError{Field: "relays", Reason: "at least one relay required"}
	}
	if timeout <= 0 {
		timeout = defaultSubmitTimeout
	}
	return &Dispatcher{
		submitters: submitters,
		timeout:    timeout,
		logger:     logger.Named("dispatcher"),
	}, nil
}

// TipRoutes returns the tip account of every tip-taking relay, in
// registration order. The transaction builder funds each of them so
// the single payload satisfies all relays at once.
func (d *Dispatcher) TipRoutes() []TipRoute {
	var routes []TipRoute
	for _, s := range d.submitters {
		if account, ok := s.TipAccount(); ok {
			routes = append(routes, TipRoute{Relay: s.Name(), Account: account})
		}
	}
	return routes
}

// RelayCount returns the number of configured relays.
func (d *Dispatcher) RelayCount() int {
	return len(d.submitters)
}

type submitResult struct {
	relay string
	sig   solana.Signature
	err   error
}

// Submit fans the signed transaction out to every relay at once. The
// first success wins and cancels the stragglers; if every relay fails
// the per-relay errors are aggregated.
func (d *Dispatcher) Submit(ctx context.Context, tx *solana.Transaction) (*Receipt, error) {
	start := time.Now()

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan submitResult, len(d.submitters))
	for _, s := range d.submitters {
		go func(s Submitter) {
			attemptCtx, attemptCancel := context.WithTimeout(raceCtx, d.timeout)
			defer attemptCancel()

			sig, err := s.Submit(attemptCtx, tx)
			results <- submitResult{relay: s.Name(), sig: sig, err: err}
		}(s)
	}

	failures := make(map[string]error, len(d.submitters))
	for range d.submitters {
		select {
		case res := <-results:
			if res.err == nil {
				cancel()
				elapsed := time.Since(start)
				d.logger.Info("Transaction landed",
					zap.String("relay", res.relay),
					zap.String("signature", res.sig.String()),
					zap.Duration("elapsed", elapsed))
				return &Receipt{Signature: res.sig, Relay: res.relay, Elapsed: elapsed}, nil
			}
			failures[res.relay] = res.err
			d.logger.Debug("Relay attempt failed",
				zap.String("relay", res.relay),
				zap.Error(res.err))
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.logger.Warn("All relays failed", zap.Int("relays", len(failures)))
	return nil, &AllRelaysFailedError{Failures: failures}
}
