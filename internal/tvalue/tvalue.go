// Package tvalue is the shared runtime-value vocabulary that
// internal/genbuild produces and internal/valbuild/internal/speccheck
// consume, so a value drawn from a generator for a given Node is
// always recognized by the validator built from the same Node. Plain
// Go types cover integers (int64), floats (float64), binaries ([]byte)
// and proper lists ([]any); booleans are the atoms true and false, and
// strings are charlists. The handful of shapes Go has no native type
// for — atoms,
// improper-list tails, opaque references, module-function-arity
// triples — get small dedicated types here.
package tvalue

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Atom is an Erlang-style atom value: an interned symbolic name.
type Atom string

// Tuple is a fixed-arity ordered value. It is distinct from []any so a
// validator can tell a tuple from a list: the two never satisfy each
// other's membership predicates.
type Tuple struct{ Elems []any }

func (t Tuple) String() string {
	out := "{"
	for i, e := range t.Elems {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%v", e)
	}
	return out + "}"
}

// ImproperPair is the runtime shape of an improper-list cell: a Head
// and a Tail that is not itself required to be a proper list.
type ImproperPair struct {
	Head any
	Tail any
}

func (p ImproperPair) String() string {
	return fmt.Sprintf("[%v | %v]", p.Head, p.Tail)
}

// Ref is an opaque identity token: comparable, otherwise featureless.
// Backed by a real UUID so distinct Refs are always distinct and a
// Ref survives round-tripping through a map key or set.
type Ref struct{ id uuid.UUID }

// NewRef mints a fresh, globally unique Ref.
func NewRef() Ref { return Ref{id: uuid.New()} }

func (r Ref) String() string { return r.id.String() }

// Mfa is a {module, function, arity} triple.
type Mfa struct {
	Module   Atom
	Function Atom
	Arity    int
}

func (m Mfa) String() string {
	return fmt.Sprintf("%s:%s/%d", m.Module, m.Function, m.Arity)
}

// Bits is a bit-level binary: Data holds ⌈Len/8⌉ bytes, only the
// low Len bits of which are meaningful. A bit sequence need not span a
// whole number of bytes.
type Bits struct {
	Data []byte
	Len  int
}

func (b Bits) String() string { return fmt.Sprintf("<<%d bits>>", b.Len) }

// Encode serializes b to a wire form the bit length can be re-derived
// from without trusting Len: a 4-byte big-endian bit-length header
// followed by Data.
func (b Bits) Encode() []byte {
	out := make([]byte, 4+len(b.Data))
	binary.BigEndian.PutUint32(out, uint32(b.Len))
	copy(out[4:], b.Data)
	return out
}

// DecodeBits parses the wire form Encode produces.
func DecodeBits(wire []byte) (Bits, bool) {
	if len(wire) < 4 {
		return Bits{}, false
	}
	bitLen := binary.BigEndian.Uint32(wire[:4])
	return Bits{Data: wire[4:], Len: int(bitLen)}, true
}
