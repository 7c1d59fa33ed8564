package genbuild

import (
	"fmt"
	"math"

	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/normalize"
	"github.com/funvibe/typegen/internal/tvalue"
	"github.com/funvibe/typegen/internal/typenode"
)

// buildCtx threads the remote-reference resolver and the current
// recursion placeholder through the structural fold. selfGen is only
// set while folding inside a recursive definition's growth step; a
// UserRef naming selfName is resolved to *selfGen rather than being
// re-expanded (it was left unexpanded by the normalizer for exactly
// this purpose).
type buildCtx struct {
	resolver *collab.Resolver
	selfName string
	selfGen  *Gen
}

// Build folds a normalize.Result into a value generator. resolver may
// be nil only when res is known to contain no RemoteRef node.
func Build(res *normalize.Result, resolver *collab.Resolver) (Gen, error) {
	ctx := &buildCtx{resolver: resolver, selfName: res.SelfName}

	if !res.Recursive {
		return fold(res.Root, ctx)
	}

	if res.UnionRecursion {
		leafGens := make([]Gen, 0, len(res.Leaves))
		for _, leaf := range res.Leaves {
			g, err := fold(leaf, ctx)
			if err != nil {
				return nil, err
			}
			leafGens = append(leafGens, g)
		}
		leafGen := oneOf(leafGens...)

		grow := func(prev Gen) Gen {
			alts := make([]Gen, 0, len(res.Nodes)+1)
			alts = append(alts, leafGen)
			grownCtx := &buildCtx{resolver: resolver, selfName: res.SelfName, selfGen: &prev}
			for _, n := range res.Nodes {
				g, err := fold(n, grownCtx)
				if err != nil {
					continue
				}
				alts = append(alts, g)
			}
			return oneOf(alts...)
		}
		return tree(leafGen, grow), nil
	}

	base, err := fold(res.BaseRewrite, ctx)
	if err != nil {
		return nil, err
	}
	grow := func(prev Gen) Gen {
		grownCtx := &buildCtx{resolver: resolver, selfName: res.SelfName, selfGen: &prev}
		g, err := fold(res.Root, grownCtx)
		if err != nil {
			return base
		}
		return g
	}
	return tree(base, grow), nil
}

// fold is the structural recursion: one Gen per Node shape.
func fold(n typenode.Node, ctx *buildCtx) (Gen, error) {
	switch t := n.(type) {

	case typenode.Any:
		return anyValueGen(), nil
	case typenode.None:
		return nil, &typenode.NoInhabitantsError{Type: "none"}

	case typenode.Atom:
		return atomGen(), nil
	case typenode.AtomLit:
		return constant(tvalue.Atom(t.Value)), nil

	case typenode.Int:
		return intGen(), nil
	case typenode.PosInt:
		return posIntGen(), nil
	case typenode.NegInt:
		return negIntGen(), nil
	case typenode.NonNegInt:
		return nonNegIntGen(), nil
	case typenode.IntLit:
		return constant(t.Value), nil
	case typenode.Range:
		return intRange(t.Lo, t.Hi), nil

	case typenode.Float:
		return floatG(), nil
	case typenode.Bool:
		return boolValueGen(), nil
	case typenode.Byte:
		return byteValueGen(), nil
	case typenode.Char:
		return charValueGen(), nil
	case typenode.Arity:
		return arityGen(), nil

	case typenode.Bitstring:
		return bitstringGen(), nil
	case typenode.Binary:
		return binaryGen(), nil
	case typenode.BinaryPattern:
		return binaryPatternGen(t.Size, t.Unit), nil

	case typenode.Ref:
		return refGen(), nil

	case typenode.Pid:
		return nil, &typenode.UnsupportedError{Type: "pid"}
	case typenode.Port:
		return nil, &typenode.UnsupportedError{Type: "port"}
	case typenode.Fun:
		return nil, &typenode.UnsupportedError{Type: "fun"}

	case typenode.Nil:
		return constant([]any{}), nil
	case typenode.List:
		elem, err := fold(t.Elem, ctx)
		if err != nil {
			return nil, err
		}
		return listOf(elem, 0), nil
	case typenode.NonemptyList:
		elem, err := fold(t.Elem, ctx)
		if err != nil {
			return nil, err
		}
		return listOf(elem, 1), nil

	case typenode.ImproperList:
		return foldImproperChain(t.Head, t.Tail, 0, ctx)
	case typenode.NonemptyImproperList:
		return foldImproperChain(t.Head, t.Tail, 1, ctx)
	case typenode.MaybeImproperList:
		return foldMaybeImproper(t.Head, t.Tail, 0, ctx)
	case typenode.NonemptyMaybeImproperList:
		return foldMaybeImproper(t.Head, t.Tail, 1, ctx)

	case typenode.Tuple:
		elemGens := make([]Gen, len(t.Elems))
		for i, e := range t.Elems {
			g, err := fold(e, ctx)
			if err != nil {
				return nil, err
			}
			elemGens[i] = g
		}
		return tupleOf(elemGens...), nil
	case typenode.TupleAny:
		contents := mapG(listOf(anyValueGen(), 0), func(v any) any {
			return tvalue.Tuple{Elems: v.([]any)}
		})
		return scale(contents, sqrtSize), nil

	case typenode.Map:
		return mapFieldsGen(t.Fields, ctx)
	case typenode.MapAny:
		return scale(mapAnyGen(), sqrtSize), nil
	case typenode.EmptyMap:
		return constant(map[any]any{}), nil

	case typenode.Union:
		alts := make([]Gen, len(t.Alts))
		for i, a := range t.Alts {
			g, err := fold(a, ctx)
			if err != nil {
				return nil, err
			}
			alts[i] = g
		}
		return oneOf(alts...), nil

	case typenode.UserRef:
		if t.Name == ctx.selfName && ctx.selfGen != nil {
			return *ctx.selfGen, nil
		}
		return nil, &typenode.BadArgumentError{Message: fmt.Sprintf("unexpanded reference to %s in generator builder", t.Name)}

	case typenode.RemoteRef:
		return foldRemoteRef(t, ctx)

	case typenode.Charlist:
		return listOf(charValueGen(), 0), nil
	case typenode.NonemptyCharlist:
		return listOf(charValueGen(), 1), nil
	case typenode.Iolist:
		return listOf(oneOf(byteValueGen(), binaryGen()), 0), nil
	case typenode.Iodata:
		return oneOf(binaryGen(), listOf(oneOf(byteValueGen(), binaryGen()), 0)), nil

	case typenode.Mfa:
		return mfaGen(), nil
	case typenode.ModuleName:
		return moduleNameGen(), nil
	case typenode.NodeName:
		return nodeNameGen(), nil
	case typenode.Number:
		return numberGen(), nil
	case typenode.Timeout:
		return timeoutGen(), nil
	case typenode.String:
		return stringGen(), nil
	case typenode.NonemptyString:
		return nonemptyStringGen(), nil

	case typenode.OpaqueGen:
		g, ok := t.Gen.(Gen)
		if !ok {
			return nil, &typenode.BadArgumentError{Message: "opaque generator argument is not a generator"}
		}
		return g, nil

	case typenode.OpaquePair:
		g, ok := t.Gen.(Gen)
		if !ok {
			return nil, &typenode.BadArgumentError{Message: "opaque pair's generator half is not a generator"}
		}
		return g, nil

	case typenode.OpaqueValidator:
		return nil, &typenode.BadArgumentError{Message: "a bare opaque validator was passed where a generator is required; pass a coupled generator/validator pair instead"}

	case typenode.Var:
		return nil, &typenode.BadArgumentError{Message: fmt.Sprintf("unsubstituted type parameter %s reached the generator builder", t.Name)}

	default:
		return nil, &typenode.UnsupportedError{Type: n.String()}
	}
}

func sqrtSize(size int) int {
	if size < 1 {
		return 1
	}
	return int(math.Sqrt(float64(size))) + 1
}

func foldImproperChain(head, tail typenode.Node, minHeads int, ctx *buildCtx) (Gen, error) {
	h, err := fold(head, ctx)
	if err != nil {
		return nil, err
	}
	tl, err := fold(tail, ctx)
	if err != nil {
		return nil, err
	}
	return improperListOf(h, tl, minHeads), nil
}

func foldMaybeImproper(head, tail typenode.Node, minHeads int, ctx *buildCtx) (Gen, error) {
	h, err := fold(head, ctx)
	if err != nil {
		return nil, err
	}
	proper := listOf(h, minHeads)
	improper, err := foldImproperChain(head, tail, minHeads, ctx)
	if err != nil {
		return nil, err
	}
	return oneOf(proper, improper), nil
}

func foldRemoteRef(r typenode.RemoteRef, ctx *buildCtx) (Gen, error) {
	if ctx.resolver == nil {
		return nil, &typenode.UnknownModuleError{Module: r.Module}
	}
	isProto, err := ctx.resolver.IsProtocol(r.Module, r.Name)
	if err != nil {
		return nil, err
	}
	if isProto {
		return nil, &typenode.ProtocolError{Module: r.Module, Name: r.Name}
	}
	reg, err := ctx.resolver.Registry(r.Module)
	if err != nil {
		return nil, err
	}
	res, err := normalize.Normalize(reg, r.Name, r.Args)
	if err != nil {
		return nil, err
	}
	return Build(res, ctx.resolver)
}

// mapFieldsGen draws each field's contribution independently and
// left-merges later contributions into earlier ones, so an earlier
// required field's keys survive any collision.
func mapFieldsGen(fields []typenode.MapField, ctx *buildCtx) (Gen, error) {
	g := constant(map[any]any{})
	for _, f := range fields {
		contribution, err := fieldContributionGen(f, ctx)
		if err != nil {
			return nil, err
		}
		g = bind(g, func(acc any) Gen {
			return mapG(contribution, func(c any) any {
				merged := make(map[any]any, len(acc.(map[any]any))+len(c.(map[any]any)))
				for k, v := range c.(map[any]any) {
					merged[k] = v
				}
				for k, v := range acc.(map[any]any) {
					merged[k] = v
				}
				return merged
			})
		})
	}
	return g, nil
}

func fieldContributionGen(f typenode.MapField, ctx *buildCtx) (Gen, error) {
	valGen, err := fold(f.Value, ctx)
	if err != nil {
		return nil, err
	}

	if f.IsLiteralKey() {
		key := f.Key.(typenode.AtomLit).Value
		present := fixedMap(map[string]Gen{key: valGen})
		if f.Kind == typenode.Optional {
			return bind(boolGen(), func(p any) Gen {
				if p.(bool) {
					return present
				}
				return constant(map[any]any{})
			}), nil
		}
		return present, nil
	}

	keyGen, err := fold(f.Key, ctx)
	if err != nil {
		return nil, err
	}
	min := 0
	if f.Kind == typenode.Required {
		min = 1
	}
	return mapOf(keyGen, valGen, min), nil
}

func mapAnyGen() Gen {
	entry := tupleOf(atomGen(), anyValueGen())
	return mapG(listOf(entry, 0), func(v any) any {
		out := make(map[any]any)
		for _, e := range v.([]any) {
			pair := e.(tvalue.Tuple)
			out[pair.Elems[0]] = pair.Elems[1]
		}
		return out
	})
}

// anyValueGen is the bounded, non-recursive universe of values the
// universal type and the open-arity tuple and map shapes draw their
// contents from — deep enough to exercise every consumer-visible shape
// without risking the unbounded recursion a fully structural universal
// generator would invite.
func anyValueGen() Gen {
	return oneOf(
		intGen(),
		floatG(),
		boolValueGen(),
		atomGen(),
		binaryGen(),
		constant([]any{}),
	)
}
