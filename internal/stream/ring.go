// =============================
// File: internal/stream/ring.go
// =============================
package stream

import (
	"github.com/gagliardetto/solana-go"
)

// signatureRing is a bounded set of recently seen signatures. The
// fragment feed repeats transactions across shreds, so the first
// sighting wins and the rest are dropped.
type signatureRing struct {
	seen  map[solana.Signature]struct{}
	order []solana.Signature
	next  int
}

func newSignatureRing(capacity int) *signatureRing {
	if capacity <= 0 {
		capacity = 1024
	}
	return &signatureRing{
		seen:  make(map[solana.Signature]struct{}, capacity),
		order: make([]solana.Signature, capacity),
	}
}

// add records the signature and reports whether it was new. When the
// ring is full the oldest entry is evicted.
func (r *signatureRing) add(sig solana.Signature) bool {
	if _, ok := r.seen[sig]; ok {
		return false
	}

	old := r.order[r.next]
	if !old.IsZero() {
		delete(r.seen, old)
	}
	r.order[r.next] = sig
	r.next = (r.next + 1) % len(r.order)
	r.seen[sig] = struct{}{}
	return true
}
