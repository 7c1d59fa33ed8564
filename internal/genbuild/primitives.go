package genbuild

import (
	"github.com/leanovate/gopter"

	"github.com/funvibe/typegen/internal/tvalue"
)

// atomPool biases the atom generator toward a small, readable
// vocabulary instead of only opaque random strings.
var atomPool = []any{
	tvalue.Atom("ok"), tvalue.Atom("error"), tvalue.Atom("nil"),
	tvalue.Atom("true"), tvalue.Atom("false"), tvalue.Atom("undefined"),
	tvalue.Atom("a"), tvalue.Atom("b"), tvalue.Atom("foo"), tvalue.Atom("bar"),
}

// atomGen draws mostly pool atoms, with an occasional fresh
// alphabetic name.
func atomGen() Gen {
	return frequency(map[int]Gen{
		4: oneOf(constantsOf(atomPool)...),
		1: mapG(asciiStringG(), func(v any) any {
			s := v.(string)
			if s == "" {
				s = "a"
			}
			return tvalue.Atom(s)
		}),
	})
}

func constantsOf(vs []any) []Gen {
	gens := make([]Gen, len(vs))
	for i, v := range vs {
		gens[i] = constant(v)
	}
	return gens
}

func intGen() Gen       { return intRange(-1<<32, 1<<32) }
func posIntGen() Gen    { return intRange(1, 1<<32) }
func negIntGen() Gen    { return intRange(-1<<32, -1) }
func nonNegIntGen() Gen { return intRange(0, 1<<32) }
func arityGen() Gen     { return intRange(0, 255) }

// boolGen draws native Go bools for internal plumbing (e.g. the
// presence coin-flip of an optional map field).
func boolGen() Gen {
	return oneOf(constant(true), constant(false))
}

// boolValueGen draws the boolean type's inhabitants, which are the
// atoms true and false.
func boolValueGen() Gen {
	return oneOf(constant(tvalue.Atom("true")), constant(tvalue.Atom("false")))
}

func byteValueGen() Gen { return byteG() }
func charValueGen() Gen { return runeG() }

func binaryGen() Gen {
	return bind(nonNegIntGen(), func(n any) Gen {
		return bytesOf(int(n.(int64) % 64))
	})
}

// bitstringGen draws an arbitrary-length bit sequence.
func bitstringGen() Gen {
	return bind(nonNegIntGen(), func(n any) Gen {
		bitLen := int(n.(int64) % 256)
		return mapG(bytesOf((bitLen+7)/8), func(v any) any {
			return tvalue.Bits{Data: v.([]byte), Len: bitLen}
		})
	})
}

// binaryPatternGen draws a bit sequence of size + k*unit bits for a
// random non-negative k; with unit zero the length is exactly size.
func binaryPatternGen(size, unit int) Gen {
	if unit <= 0 {
		return mapG(bytesOf((size+7)/8), func(v any) any {
			return tvalue.Bits{Data: v.([]byte), Len: size}
		})
	}
	return bind(intRange(0, 64), func(n any) Gen {
		bitLen := size + int(n.(int64))*unit
		return mapG(bytesOf((bitLen+7)/8), func(v any) any {
			return tvalue.Bits{Data: v.([]byte), Len: bitLen}
		})
	})
}

// timeoutGen draws a non-negative integer nine times out of ten,
// :infinity the rest.
func timeoutGen() Gen {
	return frequency(map[int]Gen{
		9: nonNegIntGen(),
		1: constant(tvalue.Atom("infinity")),
	})
}

func numberGen() Gen {
	return oneOf(intGen(), floatG())
}

// Strings are character lists: the string generators reuse the
// charlist shapes so the two spellings of the same type agree.
func stringGen() Gen         { return listOf(charValueGen(), 0) }
func nonemptyStringGen() Gen { return listOf(charValueGen(), 1) }

func refGen() Gen {
	raw := gopter.Gen(func(params *gopter.GenParameters) *gopter.GenResult {
		return gopter.NewGenResult(tvalue.NewRef(), gopter.NoShrinker)
	})
	return asAny(raw)
}

func moduleNameGen() Gen { return atomGen() }
func nodeNameGen() Gen   { return atomGen() }

func mfaGen() Gen {
	return bind(atomGen(), func(m any) Gen {
		return bind(atomGen(), func(f any) Gen {
			return mapG(arityGen(), func(a any) any {
				return tvalue.Mfa{Module: m.(tvalue.Atom), Function: f.(tvalue.Atom), Arity: int(a.(int64))}
			})
		})
	})
}
