package normalize

import "github.com/funvibe/typegen/internal/typenode"

// maxInlineDepth bounds mutual user-type inlining (A refers to B
// refers to A), so a mutually-recursive pair of aliases fails with
// InfiniteTypeError instead of looping forever. Direct self-recursion
// is detected by name and never reaches this bound.
const maxInlineDepth = 64

// Inline replaces every UserRef(n, args) inside body with the body of
// the referenced definition (itself parameter-substituted), except
// where n equals rootName — that occurrence is retained as the
// self-reference marker the recursion engine keys on. RemoteRef nodes
// are left untouched; they are resolved later, by internal/genbuild
// and internal/valbuild re-entering the pipeline through the registry
// collaborator.
func Inline(body typenode.Node, reg *typenode.Registry, rootName string) (typenode.Node, error) {
	return inline(body, reg, rootName, 0)
}

func inline(n typenode.Node, reg *typenode.Registry, rootName string, depth int) (typenode.Node, error) {
	if depth > maxInlineDepth {
		return nil, &typenode.InfiniteTypeError{Name: rootName}
	}

	switch t := n.(type) {
	case typenode.UserRef:
		args, err := inlineAll(t.Args, reg, rootName, depth)
		if err != nil {
			return nil, err
		}
		if t.Name == rootName {
			return typenode.UserRef{Name: t.Name, Args: args}, nil
		}
		def, ok := reg.Lookup(t.Name, len(args))
		if !ok {
			if reg.HasAnyArity(t.Name) {
				return nil, &typenode.WrongArityError{Name: t.Name, Wanted: -1, Got: len(args)}
			}
			return nil, &typenode.UnknownTypeError{Module: reg.Module, Name: t.Name}
		}
		bound, err := Instantiate(def, args)
		if err != nil {
			return nil, err
		}
		return inline(bound, reg, rootName, depth+1)

	case typenode.Union:
		alts, err := inlineAll(t.Alts, reg, rootName, depth)
		if err != nil {
			return nil, err
		}
		return typenode.NormalizeUnion(alts), nil

	case typenode.List:
		elem, err := inline(t.Elem, reg, rootName, depth)
		if err != nil {
			return nil, err
		}
		return typenode.List{Elem: elem}, nil

	case typenode.NonemptyList:
		elem, err := inline(t.Elem, reg, rootName, depth)
		if err != nil {
			return nil, err
		}
		return typenode.NonemptyList{Elem: elem}, nil

	case typenode.ImproperList:
		h, tl, err := inlinePair(t.Head, t.Tail, reg, rootName, depth)
		if err != nil {
			return nil, err
		}
		return typenode.ImproperList{Head: h, Tail: tl}, nil

	case typenode.NonemptyImproperList:
		h, tl, err := inlinePair(t.Head, t.Tail, reg, rootName, depth)
		if err != nil {
			return nil, err
		}
		return typenode.NonemptyImproperList{Head: h, Tail: tl}, nil

	case typenode.MaybeImproperList:
		h, tl, err := inlinePair(t.Head, t.Tail, reg, rootName, depth)
		if err != nil {
			return nil, err
		}
		return typenode.MaybeImproperList{Head: h, Tail: tl}, nil

	case typenode.NonemptyMaybeImproperList:
		h, tl, err := inlinePair(t.Head, t.Tail, reg, rootName, depth)
		if err != nil {
			return nil, err
		}
		return typenode.NonemptyMaybeImproperList{Head: h, Tail: tl}, nil

	case typenode.Tuple:
		elems, err := inlineAll(t.Elems, reg, rootName, depth)
		if err != nil {
			return nil, err
		}
		return typenode.Tuple{Elems: elems}, nil

	case typenode.Map:
		fields := make([]typenode.MapField, len(t.Fields))
		for i, f := range t.Fields {
			k, err := inline(f.Key, reg, rootName, depth)
			if err != nil {
				return nil, err
			}
			v, err := inline(f.Value, reg, rootName, depth)
			if err != nil {
				return nil, err
			}
			fields[i] = typenode.MapField{Kind: f.Kind, Key: k, Value: v}
		}
		return typenode.Map{Fields: fields}, nil

	default:
		// Primitive nodes and RemoteRef have no children to inline.
		return n, nil
	}
}

func inlineAll(nodes []typenode.Node, reg *typenode.Registry, rootName string, depth int) ([]typenode.Node, error) {
	out := make([]typenode.Node, len(nodes))
	for i, n := range nodes {
		v, err := inline(n, reg, rootName, depth)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func inlinePair(h, t typenode.Node, reg *typenode.Registry, rootName string, depth int) (typenode.Node, typenode.Node, error) {
	hi, err := inline(h, reg, rootName, depth)
	if err != nil {
		return nil, nil, err
	}
	ti, err := inline(t, reg, rootName, depth)
	if err != nil {
		return nil, nil, err
	}
	return hi, ti, nil
}
