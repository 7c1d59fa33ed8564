// Package typegen is the public surface of the module: FromType,
// ValidatorForType, FromTypeWithValidator and Validate, a thin facade
// over internal/normalize, internal/genbuild, internal/valbuild and
// internal/speccheck.
package typegen

import (
	"github.com/leanovate/gopter"

	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/genbuild"
	"github.com/funvibe/typegen/internal/normalize"
	"github.com/funvibe/typegen/internal/speccheck"
	"github.com/funvibe/typegen/internal/typenode"
	"github.com/funvibe/typegen/internal/valbuild"
)

// ArgSpec is the re-exported caller language for type arguments.
// Build one with the Arg* constructors below.
type ArgSpec = typenode.ArgSpec

func ArgBuiltin(name string) ArgSpec { return typenode.ArgBuiltin{Name: name} }
func ArgLiteral(v any) ArgSpec       { return typenode.ArgLiteral{Value: v} }
func ArgContainer(kind string, sub ...ArgSpec) ArgSpec {
	return typenode.ArgContainer{Kind: kind, Sub: sub}
}
func ArgUserType(name string, sub ...ArgSpec) ArgSpec {
	return typenode.ArgUserType{Name: name, Sub: sub}
}
func ArgRemoteType(module, name string, sub ...ArgSpec) ArgSpec {
	return typenode.ArgRemoteType{Module: module, Name: name, Sub: sub}
}
func ArgOpaqueGen(g any) ArgSpec                  { return typenode.ArgOpaqueGen{Gen: g} }
func ArgOpaqueValidator(fn func(any) bool) ArgSpec { return typenode.ArgOpaqueValidator{Fn: fn} }
func ArgOpaquePair(g any, fn func(any) bool) ArgSpec {
	return typenode.ArgOpaquePair{Gen: g, Fn: fn}
}

// GeneratorHandle is an opaque value generator over a normalized
// type, plus enough of gopter's sampling surface to draw values
// without a caller having to import gopter itself.
type GeneratorHandle struct {
	gen genbuild.Gen
}

// Sample draws one value at the given generation size (gopter's size
// parameter; larger sizes bias toward larger/deeper values). The
// second return is false only if the underlying generator produced no
// value (gopter.GenResult's own failure case, not a typegen error).
func (h GeneratorHandle) Sample(size int) (any, bool) {
	params := gopter.DefaultGenParameters()
	if size < 1 {
		size = 1
	}
	params.MaxSize = size
	return h.gen(params).Retrieve()
}

// Gen exposes the underlying gopter.Gen for callers that want to
// compose it with other gopter combinators directly (e.g. to build a
// property test over this type without going through speccheck).
func (h GeneratorHandle) Gen() gopter.Gen { return h.gen }

// ValidatorHandle is an opaque, total, side-effect-free membership
// predicate.
type ValidatorHandle struct {
	pred valbuild.Predicate
}

// Check reports whether v inhabits the type this handle was built
// from. It returns for every input and never panics.
func (h ValidatorHandle) Check(v any) bool { return h.pred(v) }

// Source bundles the collaborator interfaces every operation here
// needs; internal/registry provides concrete backends.
type Source = collab.Source

// FromType builds a GeneratorHandle for module:name(args).
func FromType(src Source, module, name string, args []ArgSpec) (GeneratorHandle, error) {
	reg, resolver, err := prepare(src, module)
	if err != nil {
		return GeneratorHandle{}, err
	}
	res, err := normalize.Run(reg, name, args)
	if err != nil {
		return GeneratorHandle{}, err
	}
	g, err := genbuild.Build(res, resolver)
	if err != nil {
		return GeneratorHandle{}, err
	}
	return GeneratorHandle{gen: g}, nil
}

// ValidatorForType builds a ValidatorHandle for module:name(args).
func ValidatorForType(src Source, module, name string, args []ArgSpec) (ValidatorHandle, error) {
	reg, resolver, err := prepare(src, module)
	if err != nil {
		return ValidatorHandle{}, err
	}
	res, err := normalize.Run(reg, name, args)
	if err != nil {
		return ValidatorHandle{}, err
	}
	p, err := valbuild.Build(res, resolver)
	if err != nil {
		return ValidatorHandle{}, err
	}
	return ValidatorHandle{pred: p}, nil
}

// FromTypeWithValidator builds both a GeneratorHandle and a
// ValidatorHandle for module:name(args) in one normalization pass.
// args may themselves be coupled (GeneratorHandle, ValidatorHandle)
// pairs (wrapped with Pair below) rather than plain ArgSpecs.
func FromTypeWithValidator(src Source, module, name string, args []ArgSpec) (GeneratorHandle, ValidatorHandle, error) {
	reg, resolver, err := prepare(src, module)
	if err != nil {
		return GeneratorHandle{}, ValidatorHandle{}, err
	}
	res, err := normalize.Run(reg, name, args)
	if err != nil {
		return GeneratorHandle{}, ValidatorHandle{}, err
	}
	g, err := genbuild.Build(res, resolver)
	if err != nil {
		return GeneratorHandle{}, ValidatorHandle{}, err
	}
	p, err := valbuild.Build(res, resolver)
	if err != nil {
		return GeneratorHandle{}, ValidatorHandle{}, err
	}
	return GeneratorHandle{gen: g}, ValidatorHandle{pred: p}, nil
}

// Pair couples a previously built GeneratorHandle and ValidatorHandle
// into a single ArgSpec, the only way to pass a position that needs
// both a generator and a validator — a bare handle passed alone never
// implies the other.
func Pair(g GeneratorHandle, v ValidatorHandle) ArgSpec {
	return typenode.ArgOpaquePair{Gen: g.gen, Fn: v.pred}
}

func prepare(src Source, module string) (*typenode.Registry, *collab.Resolver, error) {
	resolver := collab.NewResolver(src)
	reg, err := resolver.Registry(module)
	if err != nil {
		return nil, nil, err
	}
	return reg, resolver, nil
}

// Callable is re-exported for callers building the fn argument to
// Validate.
type Callable = speccheck.Callable

// ValidateOptions re-exports speccheck.Options.
type ValidateOptions = speccheck.Options

// ValidateResult re-exports speccheck.Result.
type ValidateResult = speccheck.Result

// Validate builds the argument generators and return validator for
// every overload of module:name/arity and drives a bounded randomized
// campaign against fn.
func Validate(src Source, module, name string, arity int, fn Callable, opts ValidateOptions) (*ValidateResult, error) {
	reg, resolver, err := prepare(src, module)
	if err != nil {
		return nil, err
	}
	return speccheck.Validate(src, resolver, reg, module, name, arity, fn, opts)
}
