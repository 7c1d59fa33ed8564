package collab

import (
	"sync"

	"github.com/funvibe/typegen/internal/typenode"
)

// Resolver memoizes TypeSource.LookupTypes per module so concurrent
// first-access attempts serialize into a single populate and every
// later access sees the same immutable Registry.
type Resolver struct {
	Source Source

	mu    sync.Mutex
	ready map[string]*registryEntry
}

type registryEntry struct {
	once sync.Once
	reg  *typenode.Registry
	err  error
}

// NewResolver wraps src with per-module registry memoization.
func NewResolver(src Source) *Resolver {
	return &Resolver{Source: src, ready: make(map[string]*registryEntry)}
}

// Registry returns the (possibly cached) typenode.Registry for
// module, populating it on first access via Source.LookupTypes.
func (r *Resolver) Registry(module string) (*typenode.Registry, error) {
	r.mu.Lock()
	entry, ok := r.ready[module]
	if !ok {
		entry = &registryEntry{}
		r.ready[module] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		defs, err := r.Source.LookupTypes(module)
		if err != nil {
			entry.err = err
			return
		}
		entry.reg = typenode.NewRegistry(module, defs)
	})
	return entry.reg, entry.err
}

// IsProtocol delegates to the underlying Source.
func (r *Resolver) IsProtocol(module, name string) (bool, error) {
	return r.Source.IsProtocol(module, name)
}

// LookupSpecs delegates to the underlying Source.
func (r *Resolver) LookupSpecs(module, name string, arity int) ([]Signature, error) {
	return r.Source.LookupSpecs(module, name, arity)
}
