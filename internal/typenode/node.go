// Package typenode is the canonical algebraic representation of a
// structural type: the tagged-variant tree that the normalizer,
// generator builder, and validator builder all share.
package typenode

import (
	"fmt"
	"strings"
)

// Node is the interface every type-AST variant implements. The
// unexported marker method keeps the variant set closed to this
// package.
type Node interface {
	String() string
	node()
}

// --- universal / empty ---

// Any is the universal top type: every value inhabits it.
type Any struct{}

func (Any) node()          {}
func (Any) String() string { return "any" }

// None is the empty type: no value inhabits it.
type None struct{}

func (None) node()          {}
func (None) String() string { return "none" }

// --- atoms ---

type Atom struct{}

func (Atom) node()          {}
func (Atom) String() string { return "atom" }

// AtomLit is a singleton symbolic literal, e.g. :ok.
type AtomLit struct{ Value string }

func (AtomLit) node()            {}
func (a AtomLit) String() string { return ":" + a.Value }

// --- integers ---

type Int struct{}

func (Int) node()          {}
func (Int) String() string { return "int" }

type PosInt struct{}

func (PosInt) node()          {}
func (PosInt) String() string { return "pos_int" }

type NegInt struct{}

func (NegInt) node()          {}
func (NegInt) String() string { return "neg_int" }

type NonNegInt struct{}

func (NonNegInt) node()          {}
func (NonNegInt) String() string { return "non_neg_int" }

// IntLit is a singleton integer literal.
type IntLit struct{ Value int64 }

func (IntLit) node()            {}
func (l IntLit) String() string { return fmt.Sprintf("%d", l.Value) }

// Range is an inclusive integer range [Lo, Hi].
type Range struct{ Lo, Hi int64 }

func (Range) node()            {}
func (r Range) String() string { return fmt.Sprintf("%d..%d", r.Lo, r.Hi) }

type Float struct{}

func (Float) node()          {}
func (Float) String() string { return "float" }

type Bool struct{}

func (Bool) node()          {}
func (Bool) String() string { return "boolean" }

type Byte struct{}

func (Byte) node()          {}
func (Byte) String() string { return "byte" }

type Char struct{}

func (Char) node()          {}
func (Char) String() string { return "char" }

type Arity struct{}

func (Arity) node()          {}
func (Arity) String() string { return "arity" }

// --- bit/byte sequences ---

type Bitstring struct{}

func (Bitstring) node()          {}
func (Bitstring) String() string { return "bitstring" }

type Binary struct{}

func (Binary) node()          {}
func (Binary) String() string { return "binary" }

// BinaryPattern generates/validates bit sequences whose length is
// Size + k·Unit for some k ≥ 0 when Unit > 0, or exactly Size bits
// when Unit is zero (the empty bitstring when both are zero).
type BinaryPattern struct{ Size, Unit int }

func (BinaryPattern) node() {}
func (b BinaryPattern) String() string {
	return fmt.Sprintf("<<_:%d, _:_*%d>>", b.Size, b.Unit)
}

// Ref is an opaque identity token; has no structural content.
type Ref struct{}

func (Ref) node()          {}
func (Ref) String() string { return "reference" }

// Pid is a process handle. It names a runtime object that cannot be
// fabricated from structure alone, so both builders refuse it.
type Pid struct{}

func (Pid) node()          {}
func (Pid) String() string { return "pid" }

// Port is an OS port handle; refused by both builders like Pid.
type Port struct{}

func (Port) node()          {}
func (Port) String() string { return "port" }

// Fun is a function-literal type. Callables have no generation
// semantics without a runtime evaluator, so both builders refuse it.
type Fun struct{}

func (Fun) node()          {}
func (Fun) String() string { return "fun" }

// --- sequences ---

// Nil is the empty ordered sequence.
type Nil struct{}

func (Nil) node()          {}
func (Nil) String() string { return "[]" }

type List struct{ Elem Node }

func (List) node()          {}
func (l List) String() string { return fmt.Sprintf("list(%s)", l.Elem) }

type NonemptyList struct{ Elem Node }

func (NonemptyList) node() {}
func (l NonemptyList) String() string {
	return fmt.Sprintf("nonempty_list(%s)", l.Elem)
}

// ImproperList is a chain [Head, Head, ... | Tail] with no proper
// termination guaranteed.
type ImproperList struct{ Head, Tail Node }

func (ImproperList) node() {}
func (l ImproperList) String() string {
	return fmt.Sprintf("improper_list(%s, %s)", l.Head, l.Tail)
}

type NonemptyImproperList struct{ Head, Tail Node }

func (NonemptyImproperList) node() {}
func (l NonemptyImproperList) String() string {
	return fmt.Sprintf("nonempty_improper_list(%s, %s)", l.Head, l.Tail)
}

// MaybeImproperList accepts either a proper or improper termination.
type MaybeImproperList struct{ Head, Tail Node }

func (MaybeImproperList) node() {}
func (l MaybeImproperList) String() string {
	return fmt.Sprintf("maybe_improper_list(%s, %s)", l.Head, l.Tail)
}

type NonemptyMaybeImproperList struct{ Head, Tail Node }

func (NonemptyMaybeImproperList) node() {}
func (l NonemptyMaybeImproperList) String() string {
	return fmt.Sprintf("nonempty_maybe_improper_list(%s, %s)", l.Head, l.Tail)
}

// --- tuples ---

type Tuple struct{ Elems []Node }

func (Tuple) node() {}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// TupleAny matches any tuple of any arity.
type TupleAny struct{}

func (TupleAny) node()          {}
func (TupleAny) String() string { return "tuple()" }

// --- maps ---

type Map struct{ Fields []MapField }

func (Map) node() {}
func (m Map) String() string {
	parts := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		parts[i] = f.String()
	}
	return "%{" + strings.Join(parts, ", ") + "}"
}

// MapAny matches any map, regardless of contents.
type MapAny struct{}

func (MapAny) node()          {}
func (MapAny) String() string { return "map()" }

// EmptyMap matches only the empty map.
type EmptyMap struct{}

func (EmptyMap) node()          {}
func (EmptyMap) String() string { return "%{}" }

// --- unions ---

// Union is a flat (never nested) sum of two-or-more alternatives.
type Union struct{ Alts []Node }

func (Union) node() {}
func (u Union) String() string {
	parts := make([]string, len(u.Alts))
	for i, a := range u.Alts {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}

// --- references ---

// UserRef refers to another definition in the same module, or (after
// normalization) stands as a self-reference marker when Name equals
// the definition currently being built.
type UserRef struct {
	Name string
	Args []Node
}

func (UserRef) node() {}
func (u UserRef) String() string {
	if len(u.Args) == 0 {
		return u.Name
	}
	parts := make([]string, len(u.Args))
	for i, a := range u.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", u.Name, strings.Join(parts, ", "))
}

// RemoteRef refers to a definition in a different module.
type RemoteRef struct {
	Module string
	Name   string
	Args   []Node
}

func (RemoteRef) node() {}
func (r RemoteRef) String() string {
	parts := make([]string, len(r.Args))
	for i, a := range r.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s.%s(%s)", r.Module, r.Name, strings.Join(parts, ", "))
}

// Var is a type-parameter placeholder; none remain after parameter
// substitution.
type Var struct{ Name string }

func (Var) node()          {}
func (v Var) String() string { return v.Name }

// --- convenience aliases with fixed meanings ---

type Charlist struct{}

func (Charlist) node()          {}
func (Charlist) String() string { return "charlist" }

type NonemptyCharlist struct{}

func (NonemptyCharlist) node()          {}
func (NonemptyCharlist) String() string { return "nonempty_charlist" }

type Iolist struct{}

func (Iolist) node()          {}
func (Iolist) String() string { return "iolist" }

type Iodata struct{}

func (Iodata) node()          {}
func (Iodata) String() string { return "iodata" }

type Mfa struct{}

func (Mfa) node()          {}
func (Mfa) String() string { return "mfa" }

type ModuleName struct{}

func (ModuleName) node()          {}
func (ModuleName) String() string { return "module" }

type NodeName struct{}

func (NodeName) node()          {}
func (NodeName) String() string { return "node" }

type Number struct{}

func (Number) node()          {}
func (Number) String() string { return "number" }

type Timeout struct{}

func (Timeout) node()          {}
func (Timeout) String() string { return "timeout" }

type String struct{}

func (String) node()          {}
func (String) String() string { return "string" }

type NonemptyString struct{}

func (NonemptyString) node()          {}
func (NonemptyString) String() string { return "nonempty_string" }

// --- opaque externally-supplied leaves ---

// OpaqueGen wraps a caller-supplied generator. Gen is asserted to the
// combinator library's generator type by internal/genbuild; typenode
// itself has no dependency on the combinator library.
type OpaqueGen struct{ Gen any }

func (OpaqueGen) node()          {}
func (OpaqueGen) String() string { return "opaque_generator" }

// OpaqueValidator wraps a caller-supplied predicate.
type OpaqueValidator struct{ Fn func(any) bool }

func (OpaqueValidator) node()          {}
func (OpaqueValidator) String() string { return "opaque_validator" }

// OpaquePair couples a caller-supplied generator and its matching
// validator into a single argument position. A bare OpaqueGen never
// implies a matching validator, so the generator and validator
// builders each read the half of this node they need from the same
// normalized tree.
type OpaquePair struct {
	Gen any
	Fn  func(any) bool
}

func (OpaquePair) node()          {}
func (OpaquePair) String() string { return "opaque_pair" }
