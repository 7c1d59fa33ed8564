package typenode

import "sort"

// NormalizeUnion flattens nested unions, drops duplicates (compared by
// String()), sorts for deterministic comparison, and collapses a
// single remaining alternative down to a bare Node instead of a
// one-element Union.
func NormalizeUnion(alts []Node) Node {
	flat := make([]Node, 0, len(alts))
	for _, a := range alts {
		if u, ok := a.(Union); ok {
			flat = append(flat, u.Alts...)
		} else {
			flat = append(flat, a)
		}
	}

	seen := make(map[string]bool, len(flat))
	unique := make([]Node, 0, len(flat))
	for _, a := range flat {
		s := a.String()
		if !seen[s] {
			seen[s] = true
			unique = append(unique, a)
		}
	}

	if len(unique) == 1 {
		return unique[0]
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})

	return Union{Alts: unique}
}

// ContainsUserRef reports whether n structurally contains a UserRef
// naming target anywhere in its tree (used by the normalizer's
// recursion detector).
func ContainsUserRef(n Node, target string) bool {
	switch t := n.(type) {
	case UserRef:
		return t.Name == target || containsAny(t.Args, target)
	case Union:
		return containsAny(t.Alts, target)
	case List:
		return ContainsUserRef(t.Elem, target)
	case NonemptyList:
		return ContainsUserRef(t.Elem, target)
	case ImproperList:
		return ContainsUserRef(t.Head, target) || ContainsUserRef(t.Tail, target)
	case NonemptyImproperList:
		return ContainsUserRef(t.Head, target) || ContainsUserRef(t.Tail, target)
	case MaybeImproperList:
		return ContainsUserRef(t.Head, target) || ContainsUserRef(t.Tail, target)
	case NonemptyMaybeImproperList:
		return ContainsUserRef(t.Head, target) || ContainsUserRef(t.Tail, target)
	case Tuple:
		return containsAny(t.Elems, target)
	case Map:
		for _, f := range t.Fields {
			if ContainsUserRef(f.Key, target) || ContainsUserRef(f.Value, target) {
				return true
			}
		}
		return false
	case RemoteRef:
		return containsAny(t.Args, target)
	default:
		return false
	}
}

func containsAny(nodes []Node, target string) bool {
	for _, n := range nodes {
		if ContainsUserRef(n, target) {
			return true
		}
	}
	return false
}
