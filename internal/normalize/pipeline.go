package normalize

import "github.com/funvibe/typegen/internal/typenode"

// Run is the full normalizer entry point: rewrite the caller-language
// args, then normalize name/args against reg. This is what
// pkg/typegen's public operations call before handing the Result to
// internal/genbuild / internal/valbuild.
func Run(reg *typenode.Registry, name string, args []typenode.ArgSpec) (*Result, error) {
	nodes := make([]typenode.Node, len(args))
	for i, a := range args {
		n, err := RewriteArg(a)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return Normalize(reg, name, nodes)
}

// NormalizeTree runs inlining and recursion detection over a type
// expression that is already a concrete Node tree rather than a named
// definition's body — the shape internal/speccheck's overload
// signatures arrive in, where there is no enclosing definition name or
// parameter list to Instantiate against.
func NormalizeTree(reg *typenode.Registry, n typenode.Node, label string) (*Result, error) {
	inlined, err := Inline(n, reg, label)
	if err != nil {
		return nil, err
	}
	return resultFromInlined(inlined, label)
}
