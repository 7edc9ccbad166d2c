// =============================
// File: internal/dex/registry.go
// =============================
package dex

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/solanastream/tradekit/internal/protocol"
)

// Registry manages venue adapter registrations keyed by tag.
type Registry struct {
	mu       sync.RWMutex
	adapters map[protocol.Tag]Adapter
	logger   *zap.Logger
}

// NewRegistry creates an empty adapter registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		adapters: make(map[protocol.Tag]Adapter),
		logger:   logger.Named("dex_registry"),
	}
}

// Register adds an adapter to the registry.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag := a.Tag()
	if _, exists := r.adapters[tag]; exists {
		return fmt.Errorf("adapter for %s already registered", tag)
	}
	r.adapters[tag] = a

	r.logger.Info("Adapter registered",
		zap.String("venue", string(tag)),
		zap.String("name", a.Name()))
	return nil
}

// Get retrieves an adapter by venue tag.
func (r *Registry) Get(tag protocol.Tag) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.adapters[tag]
	if !exists {
		return nil, &protocol.ValidationError{Field: "protocol", Reason: fmt.Sprintf("no adapter for venue %q", tag)}
	}
	return a, nil
}

// List returns all registered venue tags.
func (r *Registry) List() []protocol.Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]protocol.Tag, 0, len(r.adapters))
	for tag := range r.adapters {
		tags = append(tags, tag)
	}
	return tags
}
