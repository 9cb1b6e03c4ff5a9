// Package sources provides clients for searching academic paper databases.
//
// Each database (arXiv, PubMed, OpenAlex, Semantic Scholar, CORE) implements
// the Adapter interface, allowing the research pipeline to fan out across
// sources concurrently with a unified API.
package sources

import (
	"context"
	"sync"

	"github.com/brilliance/research-service/internal/domain"
)

// Adapter is implemented by every paper source client.
type Adapter interface {
	// Search queries the source for papers matching the query, returning at
	// most maxResults papers. Implementations respect context cancellation,
	// apply their own rate limiting, and map responses to domain.Paper with
	// defaults applied.
	Search(ctx context.Context, query string, maxResults int) ([]*domain.Paper, error)

	// SourceType returns the type identifier for this source.
	SourceType() domain.SourceType

	// Name returns a human-readable name used in logs and metrics.
	Name() string

	// IsEnabled reports whether the source can be searched. A source may be
	// disabled by configuration or a missing API key.
	IsEnabled() bool
}

// Registry holds the configured adapters and answers which of them should
// take part in a given search. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters map[domain.SourceType]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[domain.SourceType]Adapter),
	}
}

// Register adds an adapter, replacing any previous adapter of the same type.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.SourceType()] = a
}

// Get returns the adapter for the given source type, or nil.
func (r *Registry) Get(t domain.SourceType) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[t]
}

// Enabled returns all enabled adapters.
func (r *Registry) Enabled() []Adapter {
	return r.Select(nil)
}

// Select returns the enabled adapters matching the requested source types.
// A nil or empty request selects every enabled adapter. Unknown types are
// skipped.
func (r *Registry) Select(types []domain.SourceType) []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(types) == 0 {
		adapters := make([]Adapter, 0, len(r.adapters))
		for _, a := range r.adapters {
			if a.IsEnabled() {
				adapters = append(adapters, a)
			}
		}
		return adapters
	}

	adapters := make([]Adapter, 0, len(types))
	for _, t := range types {
		if a, ok := r.adapters[t]; ok && a.IsEnabled() {
			adapters = append(adapters, a)
		}
	}
	return adapters
}
