// Package valbuild implements the validator builder: folding a
// normalized typenode.Node into a pure func(any) bool membership
// predicate. A validator never blocks and never calls into a
// generator — the two builders share only the tvalue runtime-value
// vocabulary and the normalizer's Result shape.
package valbuild

import (
	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/normalize"
	"github.com/funvibe/typegen/internal/tvalue"
	"github.com/funvibe/typegen/internal/typenode"
)

// Predicate is the validator's output shape.
type Predicate = func(any) bool

type buildCtx struct {
	resolver *collab.Resolver
	selfName string
	selfPred *Predicate
}

// Build folds a normalize.Result into a Predicate. resolver may be
// nil only when res is known to contain no RemoteRef node.
func Build(res *normalize.Result, resolver *collab.Resolver) (Predicate, error) {
	ctx := &buildCtx{resolver: resolver, selfName: res.SelfName}

	if !res.Recursive {
		return fold(res.Root, ctx)
	}

	if res.UnionRecursion {
		leafPreds := make([]Predicate, 0, len(res.Leaves))
		for _, leaf := range res.Leaves {
			p, err := fold(leaf, ctx)
			if err != nil {
				return nil, err
			}
			leafPreds = append(leafPreds, p)
		}

		// Fixed point: the recursive alternatives are folded against a
		// predicate cell that is filled in afterwards, so a
		// self-reference routes back into the whole predicate at call
		// time.
		var self Predicate
		nodePreds := make([]Predicate, 0, len(res.Nodes))
		grownCtx := &buildCtx{resolver: resolver, selfName: res.SelfName, selfPred: &self}
		for _, n := range res.Nodes {
			p, err := fold(n, grownCtx)
			if err != nil {
				return nil, err
			}
			nodePreds = append(nodePreds, p)
		}
		self = func(v any) bool {
			for _, p := range leafPreds {
				if p(v) {
					return true
				}
			}
			for _, p := range nodePreds {
				if p(v) {
					return true
				}
			}
			return false
		}
		return self, nil
	}

	var self Predicate
	grownCtx := &buildCtx{resolver: resolver, selfName: res.SelfName, selfPred: &self}
	rootPred, err := fold(res.Root, grownCtx)
	if err != nil {
		return nil, err
	}
	self = rootPred
	return self, nil
}

func fold(n typenode.Node, ctx *buildCtx) (Predicate, error) {
	switch t := n.(type) {

	case typenode.Any:
		return func(any) bool { return true }, nil
	case typenode.None:
		return func(any) bool { return false }, nil

	case typenode.Atom:
		return func(v any) bool { _, ok := v.(tvalue.Atom); return ok }, nil
	case typenode.AtomLit:
		want := tvalue.Atom(t.Value)
		return func(v any) bool { a, ok := v.(tvalue.Atom); return ok && a == want }, nil

	case typenode.Int:
		return isInt, nil
	case typenode.PosInt:
		return intWhere(func(i int64) bool { return i > 0 }), nil
	case typenode.NegInt:
		return intWhere(func(i int64) bool { return i < 0 }), nil
	case typenode.NonNegInt:
		return intWhere(func(i int64) bool { return i >= 0 }), nil
	case typenode.IntLit:
		want := t.Value
		return intWhere(func(i int64) bool { return i == want }), nil
	case typenode.Range:
		lo, hi := t.Lo, t.Hi
		return intWhere(func(i int64) bool { return i >= lo && i <= hi }), nil

	case typenode.Float:
		return func(v any) bool { _, ok := v.(float64); return ok }, nil
	// Booleans are the atoms true and false.
	case typenode.Bool:
		return func(v any) bool {
			a, ok := v.(tvalue.Atom)
			return ok && (a == "true" || a == "false")
		}, nil
	case typenode.Byte:
		return intWhere(func(i int64) bool { return i >= 0 && i <= 255 }), nil
	case typenode.Char:
		return charPred, nil
	case typenode.Arity:
		return intWhere(func(i int64) bool { return i >= 0 && i <= 255 }), nil

	case typenode.Bitstring:
		return func(v any) bool { _, ok := v.(tvalue.Bits); return ok }, nil
	case typenode.Binary:
		return func(v any) bool {
			if b, ok := v.(tvalue.Bits); ok {
				return b.Len%8 == 0
			}
			_, ok := v.([]byte)
			return ok
		}, nil
	case typenode.BinaryPattern:
		size, unit := t.Size, t.Unit
		return func(v any) bool {
			b, ok := v.(tvalue.Bits)
			if !ok {
				return false
			}
			if unit <= 0 {
				return b.Len == size
			}
			return b.Len >= size && (b.Len-size)%unit == 0
		}, nil

	case typenode.Ref:
		return func(v any) bool { _, ok := v.(tvalue.Ref); return ok }, nil

	case typenode.Pid:
		return nil, &typenode.UnsupportedError{Type: "pid"}
	case typenode.Port:
		return nil, &typenode.UnsupportedError{Type: "port"}
	case typenode.Fun:
		return nil, &typenode.UnsupportedError{Type: "fun"}

	case typenode.Nil:
		return func(v any) bool {
			s, ok := v.([]any)
			return ok && len(s) == 0
		}, nil
	case typenode.List:
		elem, err := fold(t.Elem, ctx)
		if err != nil {
			return nil, err
		}
		return listWhere(elem, 0), nil
	case typenode.NonemptyList:
		elem, err := fold(t.Elem, ctx)
		if err != nil {
			return nil, err
		}
		return listWhere(elem, 1), nil

	case typenode.ImproperList:
		return foldImproperChain(t.Head, t.Tail, 0, false, ctx)
	case typenode.NonemptyImproperList:
		return foldImproperChain(t.Head, t.Tail, 1, false, ctx)
	case typenode.MaybeImproperList:
		return foldImproperChain(t.Head, t.Tail, 0, true, ctx)
	case typenode.NonemptyMaybeImproperList:
		return foldImproperChain(t.Head, t.Tail, 1, true, ctx)

	case typenode.Tuple:
		elemPreds := make([]Predicate, len(t.Elems))
		for i, e := range t.Elems {
			p, err := fold(e, ctx)
			if err != nil {
				return nil, err
			}
			elemPreds[i] = p
		}
		return func(v any) bool {
			tup, ok := v.(tvalue.Tuple)
			if !ok || len(tup.Elems) != len(elemPreds) {
				return false
			}
			for i, p := range elemPreds {
				if !p(tup.Elems[i]) {
					return false
				}
			}
			return true
		}, nil
	case typenode.TupleAny:
		return func(v any) bool { _, ok := v.(tvalue.Tuple); return ok }, nil

	case typenode.Map:
		return foldMap(t.Fields, ctx)
	case typenode.MapAny:
		return func(v any) bool { _, ok := v.(map[any]any); return ok }, nil
	case typenode.EmptyMap:
		return func(v any) bool {
			m, ok := v.(map[any]any)
			return ok && len(m) == 0
		}, nil

	case typenode.Union:
		preds := make([]Predicate, len(t.Alts))
		for i, a := range t.Alts {
			p, err := fold(a, ctx)
			if err != nil {
				return nil, err
			}
			preds[i] = p
		}
		return func(v any) bool {
			for _, p := range preds {
				if p(v) {
					return true
				}
			}
			return false
		}, nil

	case typenode.UserRef:
		if t.Name == ctx.selfName && ctx.selfPred != nil {
			sp := ctx.selfPred
			return func(v any) bool { return (*sp)(v) }, nil
		}
		return nil, &typenode.BadArgumentError{Message: "unexpanded reference to " + t.Name + " in validator builder"}

	case typenode.RemoteRef:
		return foldRemoteRef(t, ctx)

	case typenode.Charlist:
		return listWhere(charPred, 0), nil
	case typenode.NonemptyCharlist:
		return listWhere(charPred, 1), nil
	case typenode.Iolist:
		return iolistPred, nil
	case typenode.Iodata:
		return func(v any) bool {
			if b, ok := v.(tvalue.Bits); ok {
				return b.Len%8 == 0
			}
			return iolistPred(v)
		}, nil

	case typenode.Mfa:
		return func(v any) bool { _, ok := v.(tvalue.Mfa); return ok }, nil
	case typenode.ModuleName:
		return func(v any) bool { _, ok := v.(tvalue.Atom); return ok }, nil
	case typenode.NodeName:
		return nodeNamePred, nil
	case typenode.Number:
		return func(v any) bool {
			switch v.(type) {
			case int64, float64:
				return true
			default:
				return false
			}
		}, nil
	case typenode.Timeout:
		return func(v any) bool {
			if a, ok := v.(tvalue.Atom); ok {
				return a == "infinity"
			}
			i, ok := v.(int64)
			return ok && i >= 0
		}, nil

	// Strings are character lists, so the string predicates are the
	// charlist predicates.
	case typenode.String:
		return listWhere(charPred, 0), nil
	case typenode.NonemptyString:
		return listWhere(charPred, 1), nil

	case typenode.OpaqueValidator:
		if t.Fn == nil {
			return nil, &typenode.BadArgumentError{Message: "opaque validator argument has a nil predicate"}
		}
		return t.Fn, nil

	case typenode.OpaquePair:
		if t.Fn == nil {
			return nil, &typenode.BadArgumentError{Message: "opaque pair's validator half is a nil predicate"}
		}
		return t.Fn, nil

	case typenode.OpaqueGen:
		return nil, &typenode.BadArgumentError{Message: "a bare opaque generator was passed where a validator is required; pass a coupled generator/validator pair instead"}

	case typenode.Var:
		return nil, &typenode.BadArgumentError{Message: "unsubstituted type parameter " + t.Name + " reached the validator builder"}

	default:
		return nil, &typenode.UnsupportedError{Type: n.String()}
	}
}

func isInt(v any) bool { _, ok := v.(int64); return ok }

func intWhere(pred func(int64) bool) Predicate {
	return func(v any) bool {
		i, ok := v.(int64)
		return ok && pred(i)
	}
}

func listWhere(elem Predicate, min int) Predicate {
	return func(v any) bool {
		s, ok := v.([]any)
		if !ok || len(s) < min {
			return false
		}
		for _, e := range s {
			if !elem(e) {
				return false
			}
		}
		return true
	}
}

var charPred = intWhere(func(i int64) bool { return i >= 0 && i <= 0x10FFFF })

// iolistPred is the inductive io-list membership check: the empty
// list, a binary, or a list whose elements are bytes, binaries or
// io-lists themselves.
func iolistPred(v any) bool {
	switch x := v.(type) {
	case []byte:
		return true
	case []any:
		for _, e := range x {
			if i, ok := e.(int64); ok {
				if i < 0 || i > 255 {
					return false
				}
				continue
			}
			if !iolistPred(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func nodeNamePred(v any) bool {
	_, ok := v.(tvalue.Atom)
	return ok
}

// foldImproperChain validates the improper-list families: a head run
// satisfying the head predicate ending in a terminator satisfying the
// tail predicate, or (when allowProper is set) a plain proper list of
// head values.
func foldImproperChain(head, tail typenode.Node, minHeads int, allowProper bool, ctx *buildCtx) (Predicate, error) {
	h, err := fold(head, ctx)
	if err != nil {
		return nil, err
	}
	tl, err := fold(tail, ctx)
	if err != nil {
		return nil, err
	}
	return func(v any) bool {
		if allowProper {
			if s, ok := v.([]any); ok {
				if len(s) < minHeads {
					return false
				}
				for _, e := range s {
					if !h(e) {
						return false
					}
				}
				return true
			}
		}
		p, ok := v.(tvalue.ImproperPair)
		if !ok {
			return false
		}
		heads, ok := p.Head.([]any)
		if !ok || len(heads) < minHeads {
			return false
		}
		for _, e := range heads {
			if !h(e) {
				return false
			}
		}
		return tl(p.Tail)
	}, nil
}

// foldMap partitions the fields into exact (literal-key) and general
// (open-key) ones. Exact fields claim their key: a key matched by an
// exact field is removed from consideration before the general fields
// are checked, so an open field never re-validates a literal entry.
func foldMap(fields []typenode.MapField, ctx *buildCtx) (Predicate, error) {
	type compiled struct {
		literal  bool
		key      tvalue.Atom
		keyPred  Predicate
		valPred  Predicate
		required bool
	}
	compiledFields := make([]compiled, 0, len(fields))
	claimed := make(map[tvalue.Atom]bool)
	for _, f := range fields {
		valPred, err := fold(f.Value, ctx)
		if err != nil {
			return nil, err
		}
		if f.IsLiteralKey() {
			key := tvalue.Atom(f.Key.(typenode.AtomLit).Value)
			claimed[key] = true
			compiledFields = append(compiledFields, compiled{
				literal:  true,
				key:      key,
				valPred:  valPred,
				required: f.Kind == typenode.Required,
			})
			continue
		}
		keyPred, err := fold(f.Key, ctx)
		if err != nil {
			return nil, err
		}
		compiledFields = append(compiledFields, compiled{
			keyPred:  keyPred,
			valPred:  valPred,
			required: f.Kind == typenode.Required,
		})
	}

	return func(v any) bool {
		m, ok := v.(map[any]any)
		if !ok {
			return false
		}
		for _, f := range compiledFields {
			if f.literal {
				val, present := m[f.key]
				if !present {
					if f.required {
						return false
					}
					continue
				}
				if !f.valPred(val) {
					return false
				}
				continue
			}

			matched := false
			for k, val := range m {
				if a, ok := k.(tvalue.Atom); ok && claimed[a] {
					continue
				}
				if !f.keyPred(k) {
					continue
				}
				matched = true
				if !f.valPred(val) {
					return false
				}
			}
			if f.required && !matched {
				return false
			}
		}
		return true
	}, nil
}

func foldRemoteRef(r typenode.RemoteRef, ctx *buildCtx) (Predicate, error) {
	if ctx.resolver == nil {
		return nil, &typenode.UnknownModuleError{Module: r.Module}
	}
	isProto, err := ctx.resolver.IsProtocol(r.Module, r.Name)
	if err != nil {
		return nil, err
	}
	if isProto {
		return protocolFallback(), nil
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

// protocolFallback accepts anything: a protocol type's membership
// depends on an implementer set the registry doesn't enumerate, so the
// validator degrades to the universal predicate rather than failing
// closed. The generator builder has no symmetric escape hatch — it
// must produce a concrete value — so it still refuses protocol types.
func protocolFallback() Predicate {
	return func(any) bool { return true }
}
