// Package registry provides concrete internal/collab.Source backends:
// an in-process map (MemorySource), a runtime .proto-file source
// (ProtoSource), a sqlite-backed wrapper that records a per-module
// population marker and campaign history (CachingSource),
// and a gRPC transport (GRPCSource).
package registry

import (
	"sync"

	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/typenode"
)

// MemorySource is a plain in-process map from module to its type
// definitions and specs. It is the default used by tests and by any
// caller that already has its type definitions in-process (e.g. parsed
// once at startup).
type MemorySource struct {
	mu        sync.RWMutex
	types     map[string][]*typenode.Def
	specs     map[specKey][]collab.Signature
	protocols map[string]bool
}

type specKey struct {
	module string
	name   string
	arity  int
}

// NewMemorySource builds an empty MemorySource ready for AddModule /
// AddSpec / MarkProtocol calls.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		types:     make(map[string][]*typenode.Def),
		specs:     make(map[specKey][]collab.Signature),
		protocols: make(map[string]bool),
	}
}

// AddModule registers module's complete set of type definitions,
// replacing any previously registered set for that module.
func (s *MemorySource) AddModule(module string, defs []*typenode.Def) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[module] = defs
}

// AddSpec appends one overload signature for module:name/arity.
func (s *MemorySource) AddSpec(module, name string, arity int, sig collab.Signature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := specKey{module, name, arity}
	s.specs[k] = append(s.specs[k], sig)
}

// MarkProtocol records module:name as a protocol/interface type for
// IsProtocol's decision procedure.
func (s *MemorySource) MarkProtocol(module, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocols[module+":"+name] = true
}

func (s *MemorySource) LookupTypes(module string) ([]*typenode.Def, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	defs, ok := s.types[module]
	if !ok {
		return nil, &typenode.UnknownModuleError{Module: module}
	}
	return defs, nil
}

func (s *MemorySource) LookupSpecs(module, name string, arity int) ([]collab.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sigs, ok := s.specs[specKey{module, name, arity}]
	if !ok || len(sigs) == 0 {
		return nil, &typenode.MissingSpecError{Name: name, Arity: arity}
	}
	return sigs, nil
}

// IsProtocol reports a name registered via MarkProtocol, or — the
// convention used for definitions sourced automatically — any type
// whose body is literally typenode.Any{} and whose name ends in
// "Protocol".
func (s *MemorySource) IsProtocol(module, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.protocols[module+":"+name] {
		return true, nil
	}
	if !hasProtocolSuffix(name) {
		return false, nil
	}
	for _, d := range s.types[module] {
		if d.Name != name {
			continue
		}
		if _, ok := d.Body.(typenode.Any); ok {
			return true, nil
		}
	}
	return false, nil
}

// SoleModuleName returns the one module name registered via AddModule,
// for callers (e.g. cmd/typegen) that load a single-module file and
// don't want to repeat its name on the command line. Returns "" if
// zero or more than one module is registered.
func (s *MemorySource) SoleModuleName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.types) != 1 {
		return ""
	}
	for m := range s.types {
		return m
	}
	return ""
}

func hasProtocolSuffix(name string) bool {
	const suffix = "Protocol"
	return len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix
}

var _ collab.Source = (*MemorySource)(nil)
