// Package normalize turns a raw type reference into a canonical,
// recursion-aware AST: argument rewriting, definition selection,
// parameter substitution, user-type inlining, and recursion detection,
// producing a typenode.Node ready for internal/genbuild and
// internal/valbuild to fold.
package normalize

import (
	"fmt"

	"github.com/funvibe/typegen/internal/typenode"
)

var builtinByName = map[string]typenode.Node{
	"any":                       typenode.Any{},
	"term":                      typenode.Any{},
	"none":                      typenode.None{},
	"no_return":                 typenode.None{},
	"atom":                      typenode.Atom{},
	"int":                       typenode.Int{},
	"integer":                   typenode.Int{},
	"pos_int":                   typenode.PosInt{},
	"neg_int":                   typenode.NegInt{},
	"non_neg_int":               typenode.NonNegInt{},
	"float":                     typenode.Float{},
	"bool":                      typenode.Bool{},
	"boolean":                   typenode.Bool{},
	"byte":                      typenode.Byte{},
	"char":                      typenode.Char{},
	"arity":                     typenode.Arity{},
	"bitstring":                 typenode.Bitstring{},
	"binary":                    typenode.Binary{},
	"reference":                 typenode.Ref{},
	"nil":                       typenode.Nil{},
	"pid":                       typenode.Pid{},
	"port":                      typenode.Port{},
	"fun":                       typenode.Fun{},
	"function":                  typenode.Fun{},
	"tuple":                     typenode.TupleAny{},
	"map":                       typenode.MapAny{},
	"charlist":                  typenode.Charlist{},
	"nonempty_charlist":         typenode.NonemptyCharlist{},
	"iolist":                    typenode.Iolist{},
	"iodata":                    typenode.Iodata{},
	"mfa":                       typenode.Mfa{},
	"module":                    typenode.ModuleName{},
	"node":                      typenode.NodeName{},
	"number":                    typenode.Number{},
	"timeout":                   typenode.Timeout{},
	"string":                    typenode.String{},
	"nonempty_string":           typenode.NonemptyString{},
}

// RewriteArg translates one element of the caller language into a
// well-formed typenode.Node. Every shape it does not cover yields a
// BadArgumentError.
func RewriteArg(a typenode.ArgSpec) (typenode.Node, error) {
	switch v := a.(type) {
	case typenode.ArgBuiltin:
		if n, ok := builtinByName[v.Name]; ok {
			return n, nil
		}
		return nil, &typenode.BadArgumentError{Message: fmt.Sprintf("unknown built-in type %q", v.Name)}

	case typenode.ArgLiteral:
		return literalNode(v.Value)

	case typenode.ArgContainer:
		return rewriteContainer(v)

	case typenode.ArgMap:
		fields := make([]typenode.MapField, len(v.Fields))
		for i, f := range v.Fields {
			k, err := RewriteArg(f.Key)
			if err != nil {
				return nil, err
			}
			val, err := RewriteArg(f.Value)
			if err != nil {
				return nil, err
			}
			kind := typenode.Required
			if f.Optional {
				kind = typenode.Optional
			}
			fields[i] = typenode.MapField{Kind: kind, Key: k, Value: val}
		}
		return typenode.Map{Fields: fields}, nil

	case typenode.ArgUserType:
		sub, err := rewriteAll(v.Sub)
		if err != nil {
			return nil, err
		}
		return typenode.UserRef{Name: v.Name, Args: sub}, nil

	case typenode.ArgRemoteType:
		sub, err := rewriteAll(v.Sub)
		if err != nil {
			return nil, err
		}
		return typenode.RemoteRef{Module: v.Module, Name: v.Name, Args: sub}, nil

	case typenode.ArgOpaqueGen:
		return typenode.OpaqueGen{Gen: v.Gen}, nil

	case typenode.ArgOpaqueValidator:
		return typenode.OpaqueValidator{Fn: v.Fn}, nil

	case typenode.ArgOpaquePair:
		return typenode.OpaquePair{Gen: v.Gen, Fn: v.Fn}, nil

	default:
		return nil, &typenode.BadArgumentError{Message: fmt.Sprintf("unsupported argument shape %T", a)}
	}
}

func rewriteAll(specs []typenode.ArgSpec) ([]typenode.Node, error) {
	out := make([]typenode.Node, len(specs))
	for i, s := range specs {
		n, err := RewriteArg(s)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func rewriteContainer(v typenode.ArgContainer) (typenode.Node, error) {
	sub, err := rewriteAll(v.Sub)
	if err != nil {
		return nil, err
	}
	switch v.Kind {
	case "list":
		elem, err := requireOne(v.Kind, sub)
		if err != nil {
			return nil, err
		}
		return typenode.List{Elem: elem}, nil
	case "nonempty_list":
		elem, err := requireOne(v.Kind, sub)
		if err != nil {
			return nil, err
		}
		return typenode.NonemptyList{Elem: elem}, nil
	case "tuple":
		return typenode.Tuple{Elems: sub}, nil
	case "improper_list":
		h, t, err := requireTwo(v.Kind, sub)
		if err != nil {
			return nil, err
		}
		return typenode.ImproperList{Head: h, Tail: t}, nil
	case "nonempty_improper_list":
		h, t, err := requireTwo(v.Kind, sub)
		if err != nil {
			return nil, err
		}
		return typenode.NonemptyImproperList{Head: h, Tail: t}, nil
	case "maybe_improper_list":
		h, t, err := requireTwo(v.Kind, sub)
		if err != nil {
			return nil, err
		}
		return typenode.MaybeImproperList{Head: h, Tail: t}, nil
	case "nonempty_maybe_improper_list":
		h, t, err := requireTwo(v.Kind, sub)
		if err != nil {
			return nil, err
		}
		return typenode.NonemptyMaybeImproperList{Head: h, Tail: t}, nil
	case "union":
		if len(sub) == 0 {
			return nil, &typenode.BadArgumentError{Message: "union container needs at least one alternative"}
		}
		return typenode.NormalizeUnion(sub), nil
	default:
		return nil, &typenode.BadArgumentError{Message: fmt.Sprintf("unknown container kind %q", v.Kind)}
	}
}

func requireOne(kind string, sub []typenode.Node) (typenode.Node, error) {
	if len(sub) != 1 {
		return nil, &typenode.BadArgumentError{Message: fmt.Sprintf("container %q takes exactly one subargument, got %d", kind, len(sub))}
	}
	return sub[0], nil
}

func requireTwo(kind string, sub []typenode.Node) (typenode.Node, typenode.Node, error) {
	if len(sub) != 2 {
		return nil, nil, &typenode.BadArgumentError{Message: fmt.Sprintf("container %q takes exactly two subarguments, got %d", kind, len(sub))}
	}
	return sub[0], sub[1], nil
}

func literalNode(v any) (typenode.Node, error) {
	switch x := v.(type) {
	case string:
		return typenode.AtomLit{Value: x}, nil
	case int:
		return typenode.IntLit{Value: int64(x)}, nil
	case int64:
		return typenode.IntLit{Value: x}, nil
	case bool:
		return typenode.AtomLit{Value: fmt.Sprintf("%t", x)}, nil
	default:
		return nil, &typenode.BadArgumentError{Message: fmt.Sprintf("unsupported literal value %T", v)}
	}
}
