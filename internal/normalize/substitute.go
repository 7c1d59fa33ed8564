package normalize

import "github.com/funvibe/typegen/internal/typenode"

// Subst maps a type-parameter name to the Node bound to it.
type Subst map[string]typenode.Node

// Instantiate binds def's parameters to args (already rewritten to
// Node form) and returns def.Body with every Var replaced. Free
// variables must be exhausted exactly: a parameter-count mismatch or a
// Var left unbound after substitution is an ArityMismatchError.
func Instantiate(def *typenode.Def, args []typenode.Node) (typenode.Node, error) {
	if len(args) != len(def.Params) {
		return nil, &typenode.ArityMismatchError{Message: "parameter count does not match argument count"}
	}
	subst := make(Subst, len(args))
	for i, p := range def.Params {
		subst[p] = args[i]
	}
	body := Substitute(def.Body, subst)
	if name, ok := freeVar(body); ok {
		return nil, &typenode.ArityMismatchError{Message: "type variable " + name + " is not bound by any parameter of " + def.Name}
	}
	return body, nil
}

// Substitute walks n, replacing every Var whose name is bound in
// subst. Unbound Vars are left in place for Instantiate's free-variable
// check to report. No cycle guard is needed: a type argument can never
// structurally contain the very Var it is being bound to.
func Substitute(n typenode.Node, subst Subst) typenode.Node {
	switch t := n.(type) {
	case typenode.Var:
		if r, ok := subst[t.Name]; ok {
			return r
		}
		return t
	case typenode.Union:
		return typenode.NormalizeUnion(substituteAll(t.Alts, subst))
	case typenode.List:
		return typenode.List{Elem: Substitute(t.Elem, subst)}
	case typenode.NonemptyList:
		return typenode.NonemptyList{Elem: Substitute(t.Elem, subst)}
	case typenode.ImproperList:
		return typenode.ImproperList{Head: Substitute(t.Head, subst), Tail: Substitute(t.Tail, subst)}
	case typenode.NonemptyImproperList:
		return typenode.NonemptyImproperList{Head: Substitute(t.Head, subst), Tail: Substitute(t.Tail, subst)}
	case typenode.MaybeImproperList:
		return typenode.MaybeImproperList{Head: Substitute(t.Head, subst), Tail: Substitute(t.Tail, subst)}
	case typenode.NonemptyMaybeImproperList:
		return typenode.NonemptyMaybeImproperList{Head: Substitute(t.Head, subst), Tail: Substitute(t.Tail, subst)}
	case typenode.Tuple:
		return typenode.Tuple{Elems: substituteAll(t.Elems, subst)}
	case typenode.Map:
		fields := make([]typenode.MapField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = typenode.MapField{Kind: f.Kind, Key: Substitute(f.Key, subst), Value: Substitute(f.Value, subst)}
		}
		return typenode.Map{Fields: fields}
	case typenode.UserRef:
		return typenode.UserRef{Name: t.Name, Args: substituteAll(t.Args, subst)}
	case typenode.RemoteRef:
		return typenode.RemoteRef{Module: t.Module, Name: t.Name, Args: substituteAll(t.Args, subst)}
	default:
		return t
	}
}

func substituteAll(nodes []typenode.Node, subst Subst) []typenode.Node {
	out := make([]typenode.Node, len(nodes))
	for i, n := range nodes {
		out[i] = Substitute(n, subst)
	}
	return out
}

// freeVar reports the name of the first Var found in n, left-to-right
// depth-first.
func freeVar(n typenode.Node) (string, bool) {
	switch t := n.(type) {
	case typenode.Var:
		return t.Name, true
	case typenode.Union:
		return freeVarAll(t.Alts)
	case typenode.List:
		return freeVar(t.Elem)
	case typenode.NonemptyList:
		return freeVar(t.Elem)
	case typenode.ImproperList:
		return freeVarPair(t.Head, t.Tail)
	case typenode.NonemptyImproperList:
		return freeVarPair(t.Head, t.Tail)
	case typenode.MaybeImproperList:
		return freeVarPair(t.Head, t.Tail)
	case typenode.NonemptyMaybeImproperList:
		return freeVarPair(t.Head, t.Tail)
	case typenode.Tuple:
		return freeVarAll(t.Elems)
	case typenode.Map:
		for _, f := range t.Fields {
			if name, ok := freeVarPair(f.Key, f.Value); ok {
				return name, true
			}
		}
		return "", false
	case typenode.UserRef:
		return freeVarAll(t.Args)
	case typenode.RemoteRef:
		return freeVarAll(t.Args)
	default:
		return "", false
	}
}

func freeVarAll(nodes []typenode.Node) (string, bool) {
	for _, n := range nodes {
		if name, ok := freeVar(n); ok {
			return name, true
		}
	}
	return "", false
}

func freeVarPair(a, b typenode.Node) (string, bool) {
	if name, ok := freeVar(a); ok {
		return name, true
	}
	return freeVar(b)
}
