package typenode

import "sync"

// Def is a named, parameterized type definition: @type Name(params) ::
// Body. Owned by the normalizer's pre-normalization registry.
type Def struct {
	Name   string
	Params []string
	Body   Node
}

// arity is the number of type parameters Def declares.
func (d *Def) arity() int { return len(d.Params) }

type defKey struct {
	name  string
	arity int
}

// Registry is an immutable-after-populated mapping from name/arity to
// Def, scoped to a single module. At most one definition exists per
// (name, arity) pair.
type Registry struct {
	Module string

	mu   sync.RWMutex
	defs map[defKey]*Def
}

// NewRegistry builds a Registry for module from a flat list of
// definitions. At most one Def may exist per (name, arity); later
// duplicates in defs silently win, matching last-definition-wins
// module reloading semantics.
func NewRegistry(module string, defs []*Def) *Registry {
	r := &Registry{Module: module, defs: make(map[defKey]*Def, len(defs))}
	for _, d := range defs {
		r.defs[defKey{d.Name, d.arity()}] = d
	}
	return r
}

// Lookup finds the Def with the given name and parameter arity.
func (r *Registry) Lookup(name string, arity int) (*Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[defKey{name, arity}]
	return d, ok
}

// HasAnyArity reports whether some definition exists for name,
// regardless of arity — used to distinguish UnknownType from
// WrongArity.
func (r *Registry) HasAnyArity(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k := range r.defs {
		if k.name == name {
			return true
		}
	}
	return false
}
