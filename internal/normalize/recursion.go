package normalize

import "github.com/funvibe/typegen/internal/typenode"

// Result is what Normalize hands to internal/genbuild and
// internal/valbuild: the normalized root plus, when the definition is
// recursive, enough structure for both builders to construct the same
// depth-bounded recursive encoding.
type Result struct {
	Root Node

	Recursive      bool
	UnionRecursion bool

	// Union recursion: Root split into the alternatives without a
	// self-reference (Leaves) and the ones with one (Nodes).
	Leaves []Node
	Nodes  []Node

	// Non-union recursion: Root with the self-recursive branch
	// pruned to a non-recursive base case.
	BaseRewrite Node

	// SelfName is the definition name a UserRef(SelfName, _) inside
	// Root/Nodes/BaseRewrite refers back to.
	SelfName string
}

// Node is an alias kept local to this package for readability; it is
// exactly typenode.Node.
type Node = typenode.Node

// Normalize runs the full pipeline for one named definition:
// definition selection, parameter substitution, user-type inlining,
// and recursion detection. Argument rewriting is the caller's
// responsibility — args arrive already rewritten via RewriteArg.
func Normalize(reg *typenode.Registry, name string, args []typenode.Node) (*Result, error) {
	def, ok := reg.Lookup(name, len(args))
	if !ok {
		if reg.HasAnyArity(name) {
			return nil, &typenode.WrongArityError{Name: name, Wanted: -1, Got: len(args)}
		}
		return nil, &typenode.UnknownTypeError{Module: reg.Module, Name: name}
	}

	body, err := Instantiate(def, args)
	if err != nil {
		return nil, err
	}

	inlined, err := Inline(body, reg, name)
	if err != nil {
		return nil, err
	}

	return resultFromInlined(inlined, name)
}

// resultFromInlined applies the recursion-detection rules to an
// already-inlined tree, shared by Normalize (a named definition's
// instantiated body) and NormalizeTree (a bare type expression with no
// enclosing definition).
func resultFromInlined(inlined typenode.Node, label string) (*Result, error) {
	if !typenode.ContainsUserRef(inlined, label) {
		return &Result{Root: inlined, SelfName: label}, nil
	}

	if u, ok := inlined.(typenode.Union); ok {
		var leaves, nodes []typenode.Node
		for _, alt := range u.Alts {
			if typenode.ContainsUserRef(alt, label) {
				nodes = append(nodes, alt)
			} else {
				leaves = append(leaves, alt)
			}
		}
		if len(leaves) == 0 {
			return nil, &typenode.InfiniteTypeError{Name: label}
		}
		return &Result{
			Root:           inlined,
			Recursive:      true,
			UnionRecursion: true,
			Leaves:         leaves,
			Nodes:          nodes,
			SelfName:       label,
		}, nil
	}

	base := RewriteBaseCase(inlined, label)
	if typenode.ContainsUserRef(base, label) {
		return nil, &typenode.InfiniteTypeError{Name: label}
	}
	return &Result{
		Root:        inlined,
		Recursive:   true,
		BaseRewrite: base,
		SelfName:    label,
	}, nil
}

// RewriteBaseCase prunes self-recursion from n to produce a
// non-recursive base case: a list whose element type contains the
// self-reference becomes Nil, a Map drops every Optional field whose
// key or value contains it, an improper list whose tail contains it
// terminates properly instead, and other wrappers recurse into their
// children, leaving primitive nodes intact.
func RewriteBaseCase(n typenode.Node, name string) typenode.Node {
	switch t := n.(type) {
	case typenode.List:
		if typenode.ContainsUserRef(t.Elem, name) {
			return typenode.Nil{}
		}
		return typenode.List{Elem: RewriteBaseCase(t.Elem, name)}

	case typenode.NonemptyList:
		if typenode.ContainsUserRef(t.Elem, name) {
			return typenode.Nil{}
		}
		return typenode.NonemptyList{Elem: RewriteBaseCase(t.Elem, name)}

	case typenode.ImproperList:
		return rewriteImproperBase(t.Head, t.Tail, name, func(h, tl typenode.Node) typenode.Node {
			return typenode.ImproperList{Head: h, Tail: tl}
		})
	case typenode.NonemptyImproperList:
		return rewriteImproperBase(t.Head, t.Tail, name, func(h, tl typenode.Node) typenode.Node {
			return typenode.NonemptyImproperList{Head: h, Tail: tl}
		})
	case typenode.MaybeImproperList:
		return rewriteImproperBase(t.Head, t.Tail, name, func(h, tl typenode.Node) typenode.Node {
			return typenode.MaybeImproperList{Head: h, Tail: tl}
		})
	case typenode.NonemptyMaybeImproperList:
		return rewriteImproperBase(t.Head, t.Tail, name, func(h, tl typenode.Node) typenode.Node {
			return typenode.NonemptyMaybeImproperList{Head: h, Tail: tl}
		})

	case typenode.Tuple:
		elems := make([]typenode.Node, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = RewriteBaseCase(e, name)
		}
		return typenode.Tuple{Elems: elems}

	case typenode.Map:
		var fields []typenode.MapField
		for _, f := range t.Fields {
			if f.Kind == typenode.Optional && (typenode.ContainsUserRef(f.Key, name) || typenode.ContainsUserRef(f.Value, name)) {
				continue
			}
			fields = append(fields, typenode.MapField{
				Kind:  f.Kind,
				Key:   RewriteBaseCase(f.Key, name),
				Value: RewriteBaseCase(f.Value, name),
			})
		}
		return typenode.Map{Fields: fields}

	case typenode.Union:
		alts := make([]typenode.Node, len(t.Alts))
		for i, a := range t.Alts {
			alts[i] = RewriteBaseCase(a, name)
		}
		return typenode.NormalizeUnion(alts)

	default:
		return n
	}
}

func rewriteImproperBase(head, tail typenode.Node, name string, rebuild func(h, t typenode.Node) typenode.Node) typenode.Node {
	if typenode.ContainsUserRef(tail, name) && !typenode.ContainsUserRef(head, name) {
		return rebuild(head, typenode.Nil{})
	}
	return rebuild(RewriteBaseCase(head, name), RewriteBaseCase(tail, name))
}
