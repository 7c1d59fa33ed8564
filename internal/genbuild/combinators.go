// Package genbuild implements the generator builder: folding a
// normalized typenode.Node into a github.com/leanovate/gopter value
// generator.
//
// combinators.go holds the wrappers over the gopter API (constant,
// oneOf, frequency, mapG, bind, tupleOf, listOf, improperListOf, mapOf,
// fixedMap, scale, tree) that the rest of the package builds on. The
// one other direct gopter use is refGen in primitives.go, which builds
// its gopter.Gen and GenResult by hand.
package genbuild

import (
	"math"
	"reflect"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"

	"github.com/funvibe/typegen/internal/tvalue"
)

// Gen is the value-generator type handed back to callers as part of a
// GeneratorHandle.
type Gen = gopter.Gen

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// asAny erases a generator's concrete result type to any, so every
// wrapper here produces a uniformly interface-typed stream and slices,
// maps and tuples built from mixed element generators stay assignable.
func asAny(g gopter.Gen) Gen {
	return g.Map(func(v any) any { return v })
}

func constant(v any) Gen { return asAny(gen.Const(v)) }

func oneOf(gens ...Gen) Gen {
	if len(gens) == 1 {
		return gens[0]
	}
	return gen.OneGenOf(gens...)
}

// frequency biases among alternatives by integer weight.
func frequency(weighted map[int]Gen) Gen {
	return gen.Frequency(weighted)
}

func mapG(g Gen, f func(any) any) Gen {
	return g.Map(f)
}

func bind(g Gen, f func(any) Gen) Gen {
	return g.FlatMap(func(v any) gopter.Gen { return f(v) }, anyType)
}

// tupleOf zips the element generators into a fixed-arity tvalue.Tuple.
func tupleOf(gens ...Gen) Gen {
	if len(gens) == 0 {
		return constant(tvalue.Tuple{})
	}
	return asAny(gopter.CombineGens(gens...).Map(func(vs []any) any {
		out := make([]any, len(vs))
		copy(out, vs)
		return tvalue.Tuple{Elems: out}
	}))
}

// listOf draws a variable-length []any of elem values with at least
// min elements. The minimum is met by drawing min elements outright
// rather than sieving, so the generator is total at every size.
func listOf(elem Gen, min int) Gen {
	tail := asAny(gen.SliceOf(elem).Map(func(v []any) any { return v }))
	if min <= 0 {
		return tail
	}
	required := asAny(gen.SliceOfN(min, elem).Map(func(v []any) any { return v }))
	return asAny(gopter.CombineGens(required, tail).Map(func(vs []any) any {
		head := vs[0].([]any)
		rest := vs[1].([]any)
		out := make([]any, 0, len(head)+len(rest))
		out = append(out, head...)
		out = append(out, rest...)
		return out
	}))
}

// improperListOf draws a chain of at least minHeads head values
// terminated by a tail value, as a tvalue.ImproperPair.
func improperListOf(head, tail Gen, minHeads int) Gen {
	heads := listOf(head, minHeads)
	return bind(heads, func(hv any) Gen {
		return mapG(tail, func(tv any) any {
			return tvalue.ImproperPair{Head: hv, Tail: tv}
		})
	})
}

// mapOf draws a map[any]any with at least min entries; like listOf,
// the minimum is drawn outright instead of sieved.
func mapOf(key, value Gen, min int) Gen {
	base := asAny(gen.MapOf(key, value).Map(func(m map[any]any) any { return m }))
	if min <= 0 {
		return base
	}
	return asAny(gopter.CombineGens(key, value, base).Map(func(vs []any) any {
		m := vs[2].(map[any]any)
		out := make(map[any]any, len(m)+1)
		for k, v := range m {
			out[k] = v
		}
		out[vs[0]] = vs[1]
		return out
	}))
}

// fixedMap draws one value per named field into a map[any]any keyed by
// atom.
func fixedMap(fields map[string]Gen) Gen {
	names := make([]string, 0, len(fields))
	gens := make([]Gen, 0, len(fields))
	for name, g := range fields {
		names = append(names, name)
		gens = append(gens, g)
	}
	if len(gens) == 0 {
		return constant(map[any]any{})
	}
	return asAny(gopter.CombineGens(gens...).Map(func(vs []any) any {
		out := make(map[any]any, len(names))
		for i, name := range names {
			out[tvalue.Atom(name)] = vs[i]
		}
		return out
	}))
}

// scale resizes the generation-size parameter seen by g, used to keep
// open-arity tuple and map contents small (√size) and to drive tree's
// depth-bounded unfolding.
func scale(g Gen, f func(size int) int) Gen {
	return func(params *gopter.GenParameters) *gopter.GenResult {
		return g(withSize(params, f(params.MaxSize)))
	}
}

func withSize(params *gopter.GenParameters, size int) *gopter.GenParameters {
	if size < 1 {
		size = 1
	}
	scaled := *params
	scaled.MaxSize = size
	return &scaled
}

// intRange draws an inclusive int64 range.
func intRange(lo, hi int64) Gen {
	return asAny(gen.Int64Range(lo, hi).Map(func(v int64) any { return v }))
}

// floatG draws a float64 of gopter's default distribution.
func floatG() Gen {
	return asAny(gen.Float64().Map(func(v float64) any { return v }))
}

// byteG draws a single byte value in [0, 255].
func byteG() Gen { return intRange(0, 255) }

// runeG draws a single code point, uniformly from 0x20..0x2FFF only.
func runeG() Gen { return intRange(0x20, 0x2FFF) }

// asciiStringG draws a (possibly empty) alphabetic string.
func asciiStringG() Gen {
	return asAny(gen.AlphaString().Map(func(v string) any { return v }))
}

// bytesOf draws a []byte of exactly n bytes.
func bytesOf(n int) Gen {
	return asAny(gen.SliceOfN(n, gen.UInt8Range(0, 255)).Map(func(bs []uint8) any {
		out := make([]byte, len(bs))
		copy(out, bs)
		return out
	}))
}

const maxTreeDepth = 8

// tree builds a recursive, depth-bounded generator: start from base,
// and apply grow to it a number of times derived from the current size
// parameter, so every draw terminates while still growing with size.
// Each level sees a √-shrunk size, keeping the total node count of a
// draw roughly linear in the size parameter rather than exponential in
// the depth.
func tree(base Gen, grow func(prev Gen) Gen) Gen {
	return func(params *gopter.GenParameters) *gopter.GenResult {
		depth := params.MaxSize / 4
		if depth > maxTreeDepth {
			depth = maxTreeDepth
		}
		g := base
		for i := 0; i < depth; i++ {
			g = grow(scale(g, shrinkSize))
		}
		return g(params)
	}
}

func shrinkSize(size int) int {
	if size <= 1 {
		return 1
	}
	return int(math.Sqrt(float64(size)))
}
