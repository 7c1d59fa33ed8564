package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/typenode"
)

// yamlModule is the on-disk shape cmd/typegen's -module flag points
// at: a hand-authored description of one module's type definitions,
// function signatures, and protocol markers.
type yamlModule struct {
	Module    string        `yaml:"module"`
	Types     []yamlTypeDef `yaml:"types"`
	Specs     []yamlSpec    `yaml:"specs"`
	Protocols []string      `yaml:"protocols"`
}

type yamlTypeDef struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params"`
	Body   yamlNode `yaml:"body"`
}

// yamlSpec is one overload of a function signature: its argument
// types, return type, and the bounds of any declared type variables.
type yamlSpec struct {
	Name        string              `yaml:"name"`
	Args        []yamlNode          `yaml:"args"`
	Return      yamlNode            `yaml:"return"`
	Constraints map[string]yamlNode `yaml:"constraints"`
}

// yamlNode mirrors grpcsource.go's wireNode shape (one field set
// covering every variant a hand-authored module file plausibly needs),
// decoded from YAML instead of the JSON a remote registry sends over
// the wire.
type yamlNode struct {
	Kind   string      `yaml:"kind"`
	Value  any         `yaml:"value,omitempty"`
	Lo     int64       `yaml:"lo,omitempty"`
	Hi     int64       `yaml:"hi,omitempty"`
	Size   int         `yaml:"size,omitempty"`
	Unit   int         `yaml:"unit,omitempty"`
	Elem   *yamlNode   `yaml:"elem,omitempty"`
	Head   *yamlNode   `yaml:"head,omitempty"`
	Tail   *yamlNode   `yaml:"tail,omitempty"`
	Elems  []yamlNode  `yaml:"elems,omitempty"`
	Alts   []yamlNode  `yaml:"alts,omitempty"`
	Fields []yamlField `yaml:"fields,omitempty"`
	Name   string      `yaml:"name,omitempty"`
	Module string      `yaml:"module,omitempty"`
	Args   []yamlNode  `yaml:"args,omitempty"`
}

type yamlField struct {
	Kind  string   `yaml:"kind"` // "required" | "optional"
	Key   yamlNode `yaml:"key"`
	Value yamlNode `yaml:"value"`
}

// LoadYAMLModule reads path and registers its module's type
// definitions, specs, and protocol markers into dst.
func LoadYAMLModule(dst *MemorySource, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read module file %s: %w", path, err)
	}
	var m yamlModule
	if err := yaml.Unmarshal(content, &m); err != nil {
		return fmt.Errorf("parse module file %s: %w", path, err)
	}

	defs := make([]*typenode.Def, 0, len(m.Types))
	for _, t := range m.Types {
		body, err := yamlToNode(&t.Body)
		if err != nil {
			return fmt.Errorf("module %s, type %s: %w", m.Module, t.Name, err)
		}
		defs = append(defs, &typenode.Def{Name: t.Name, Params: t.Params, Body: body})
	}
	dst.AddModule(m.Module, defs)

	for _, s := range m.Specs {
		sig, err := yamlToSignature(&s)
		if err != nil {
			return fmt.Errorf("module %s, spec %s: %w", m.Module, s.Name, err)
		}
		dst.AddSpec(m.Module, s.Name, len(s.Args), sig)
	}

	for _, p := range m.Protocols {
		dst.MarkProtocol(m.Module, p)
	}
	return nil
}

func yamlToSignature(s *yamlSpec) (collab.Signature, error) {
	args := make([]typenode.Node, len(s.Args))
	for i := range s.Args {
		n, err := yamlToNode(&s.Args[i])
		if err != nil {
			return collab.Signature{}, err
		}
		args[i] = n
	}
	ret, err := yamlToNode(&s.Return)
	if err != nil {
		return collab.Signature{}, err
	}
	var constraints map[string]typenode.Node
	if len(s.Constraints) > 0 {
		constraints = make(map[string]typenode.Node, len(s.Constraints))
		for name, c := range s.Constraints {
			bound, err := yamlToNode(&c)
			if err != nil {
				return collab.Signature{}, err
			}
			constraints[name] = bound
		}
	}
	return collab.Signature{ArgTypes: args, ReturnType: ret, Constraints: constraints}, nil
}

func yamlToNode(n *yamlNode) (typenode.Node, error) {
	if n == nil {
		return typenode.Any{}, nil
	}
	switch n.Kind {
	case "", "any", "term":
		return typenode.Any{}, nil
	case "none", "no_return":
		return typenode.None{}, nil
	case "atom":
		return typenode.Atom{}, nil
	case "atom_lit":
		return typenode.AtomLit{Value: fmt.Sprintf("%v", n.Value)}, nil
	case "int":
		return typenode.Int{}, nil
	case "pos_int":
		return typenode.PosInt{}, nil
	case "neg_int":
		return typenode.NegInt{}, nil
	case "non_neg_int":
		return typenode.NonNegInt{}, nil
	case "int_lit":
		return typenode.IntLit{Value: toInt64(n.Value)}, nil
	case "range":
		return typenode.Range{Lo: n.Lo, Hi: n.Hi}, nil
	case "float":
		return typenode.Float{}, nil
	case "bool", "boolean":
		return typenode.Bool{}, nil
	case "byte":
		return typenode.Byte{}, nil
	case "char":
		return typenode.Char{}, nil
	case "arity":
		return typenode.Arity{}, nil
	case "bitstring":
		return typenode.Bitstring{}, nil
	case "binary":
		return typenode.Binary{}, nil
	case "binary_pattern":
		return typenode.BinaryPattern{Size: n.Size, Unit: n.Unit}, nil
	case "reference":
		return typenode.Ref{}, nil
	case "pid":
		return typenode.Pid{}, nil
	case "port":
		return typenode.Port{}, nil
	case "fun", "function":
		return typenode.Fun{}, nil
	case "nil":
		return typenode.Nil{}, nil
	case "list":
		elem, err := yamlToNode(n.Elem)
		if err != nil {
			return nil, err
		}
		return typenode.List{Elem: elem}, nil
	case "nonempty_list":
		elem, err := yamlToNode(n.Elem)
		if err != nil {
			return nil, err
		}
		return typenode.NonemptyList{Elem: elem}, nil
	case "improper_list":
		h, t, err := yamlToPair(n)
		if err != nil {
			return nil, err
		}
		return typenode.ImproperList{Head: h, Tail: t}, nil
	case "nonempty_improper_list":
		h, t, err := yamlToPair(n)
		if err != nil {
			return nil, err
		}
		return typenode.NonemptyImproperList{Head: h, Tail: t}, nil
	case "maybe_improper_list":
		h, t, err := yamlToPair(n)
		if err != nil {
			return nil, err
		}
		return typenode.MaybeImproperList{Head: h, Tail: t}, nil
	case "nonempty_maybe_improper_list":
		h, t, err := yamlToPair(n)
		if err != nil {
			return nil, err
		}
		return typenode.NonemptyMaybeImproperList{Head: h, Tail: t}, nil
	case "tuple":
		elems, err := yamlToNodes(n.Elems)
		if err != nil {
			return nil, err
		}
		return typenode.Tuple{Elems: elems}, nil
	case "tuple_any":
		return typenode.TupleAny{}, nil
	case "map":
		fields := make([]typenode.MapField, len(n.Fields))
		for i, f := range n.Fields {
			key, err := yamlToNode(&f.Key)
			if err != nil {
				return nil, err
			}
			val, err := yamlToNode(&f.Value)
			if err != nil {
				return nil, err
			}
			kind := typenode.Required
			if f.Kind == "optional" {
				kind = typenode.Optional
			}
			fields[i] = typenode.MapField{Kind: kind, Key: key, Value: val}
		}
		return typenode.Map{Fields: fields}, nil
	case "map_any":
		return typenode.MapAny{}, nil
	case "empty_map":
		return typenode.EmptyMap{}, nil
	case "union":
		alts, err := yamlToNodes(n.Alts)
		if err != nil {
			return nil, err
		}
		return typenode.NormalizeUnion(alts), nil
	case "user_ref":
		args, err := yamlToNodes(n.Args)
		if err != nil {
			return nil, err
		}
		return typenode.UserRef{Name: n.Name, Args: args}, nil
	case "remote_ref":
		args, err := yamlToNodes(n.Args)
		if err != nil {
			return nil, err
		}
		return typenode.RemoteRef{Module: n.Module, Name: n.Name, Args: args}, nil
	case "var":
		return typenode.Var{Name: n.Name}, nil
	case "charlist":
		return typenode.Charlist{}, nil
	case "nonempty_charlist":
		return typenode.NonemptyCharlist{}, nil
	case "iolist":
		return typenode.Iolist{}, nil
	case "iodata":
		return typenode.Iodata{}, nil
	case "mfa":
		return typenode.Mfa{}, nil
	case "module":
		return typenode.ModuleName{}, nil
	case "node":
		return typenode.NodeName{}, nil
	case "number":
		return typenode.Number{}, nil
	case "timeout":
		return typenode.Timeout{}, nil
	case "string":
		return typenode.String{}, nil
	case "nonempty_string":
		return typenode.NonemptyString{}, nil
	default:
		return nil, fmt.Errorf("unknown type node kind %q", n.Kind)
	}
}

func yamlToPair(n *yamlNode) (typenode.Node, typenode.Node, error) {
	h, err := yamlToNode(n.Head)
	if err != nil {
		return nil, nil, err
	}
	t, err := yamlToNode(n.Tail)
	if err != nil {
		return nil, nil, err
	}
	return h, t, nil
}

func yamlToNodes(ns []yamlNode) ([]typenode.Node, error) {
	out := make([]typenode.Node, len(ns))
	for i := range ns {
		n, err := yamlToNode(&ns[i])
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int64:
		return x
	case float64:
		return int64(x)
	default:
		return 0
	}
}
