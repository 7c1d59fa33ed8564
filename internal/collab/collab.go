// Package collab declares the external collaborator interfaces — the
// type registry and protocol-predicate boundaries the core
// (normalize/genbuild/valbuild/speccheck) depends on but does not
// implement. internal/registry provides concrete implementations; this
// package exists so the core can depend on the interface without
// importing any particular backend (sqlite, gRPC, protobuf, ...).
package collab

import "github.com/funvibe/typegen/internal/typenode"

// Signature is one overload of a function-like callable's type
// signature, as returned by LookupSpecs. Constraints carries the bound
// type of each declared type variable; occurrences of a constrained
// Var in ArgTypes/ReturnType are substituted with its bound before
// normalization.
type Signature struct {
	ArgTypes    []typenode.Node
	ReturnType  typenode.Node
	Constraints map[string]typenode.Node
}

// TypeSource is the lookup_types collaborator operation.
type TypeSource interface {
	// LookupTypes returns every named type definition of module.
	// Implementations return *typenode.UnknownModuleError when module
	// cannot be located.
	LookupTypes(module string) ([]*typenode.Def, error)
}

// SpecSource is the lookup_specs collaborator operation.
type SpecSource interface {
	// LookupSpecs returns every overload's signature for
	// module:name/arity. Implementations return
	// *typenode.MissingSpecError when none exist.
	LookupSpecs(module, name string, arity int) ([]Signature, error)
}

// ProtocolChecker is the is_protocol collaborator operation.
type ProtocolChecker interface {
	IsProtocol(module, name string) (bool, error)
}

// Source bundles the three collaborator roles a single backend
// typically provides together (a registry.MemorySource,
// registry.ProtoSource, registry.CachingSource, or registry.GRPCSource
// each implement all three).
type Source interface {
	TypeSource
	SpecSource
	ProtocolChecker
}
