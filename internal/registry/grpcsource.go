package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/typenode"
)

// registrySchema is the wire .proto for the gRPC-backed registry
// collaborator, parsed once at runtime with protoparse — no protoc
// build step. A definition's Node tree is carried as a JSON string
// field (nodeToJSON/nodeFromJSON below) rather than one message per
// variant, keeping the wire schema small while still routing every
// lookup through real dynamic protobuf messages end to end.
const registrySchema = `
syntax = "proto3";
package typegen.registry;

message LookupTypesRequest { string module = 1; }
message TypeDefWire {
	string name = 1;
	repeated string params = 2;
	string body_json = 3;
}
message LookupTypesResponse { repeated TypeDefWire defs = 1; }

message LookupSpecsRequest { string module = 1; string name = 2; int32 arity = 3; }
message SignatureWire { repeated string arg_types_json = 1; string return_type_json = 2; }
message LookupSpecsResponse { repeated SignatureWire signatures = 1; }

message IsProtocolRequest { string module = 1; string name = 2; }
message IsProtocolResponse { bool is_protocol = 1; }

service TypeRegistry {
	rpc LookupTypes(LookupTypesRequest) returns (LookupTypesResponse);
	rpc LookupSpecs(LookupSpecsRequest) returns (LookupSpecsResponse);
	rpc IsProtocol(IsProtocolRequest) returns (IsProtocolResponse);
}
`

// GRPCSource implements collab.Source over a google.golang.org/grpc
// channel, building dynamic messages from registrySchema's descriptors
// per call — dynamic.Message implements proto.Message, so
// grpc.ClientConn.Invoke carries it without generated stubs. This
// gives RemoteRef a concrete cross-process resolution path.
type GRPCSource struct {
	conn *grpc.ClientConn

	lookupTypesIn, lookupTypesOut *desc.MessageDescriptor
	lookupSpecsIn, lookupSpecsOut *desc.MessageDescriptor
	isProtocolIn, isProtocolOut   *desc.MessageDescriptor
}

// DialGRPCSource connects to target (insecure transport) and parses
// registrySchema.
func DialGRPCSource(target string) (*GRPCSource, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{"typegen_registry.proto": registrySchema}),
	}
	fds, err := parser.ParseFiles("typegen_registry.proto")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("parse registry schema: %w", err)
	}
	fd := fds[0]

	md := func(name string) *desc.MessageDescriptor {
		return fd.FindMessage("typegen.registry." + name)
	}

	return &GRPCSource{
		conn:          conn,
		lookupTypesIn: md("LookupTypesRequest"), lookupTypesOut: md("LookupTypesResponse"),
		lookupSpecsIn: md("LookupSpecsRequest"), lookupSpecsOut: md("LookupSpecsResponse"),
		isProtocolIn: md("IsProtocolRequest"), isProtocolOut: md("IsProtocolResponse"),
	}, nil
}

func (s *GRPCSource) Close() error { return s.conn.Close() }

func (s *GRPCSource) LookupTypes(module string) ([]*typenode.Def, error) {
	req := dynamic.NewMessage(s.lookupTypesIn)
	req.SetFieldByName("module", module)
	resp := dynamic.NewMessage(s.lookupTypesOut)

	if err := s.conn.Invoke(context.Background(), "/typegen.registry.TypeRegistry/LookupTypes", req, resp); err != nil {
		return nil, fmt.Errorf("LookupTypes %s: %w", module, err)
	}

	rawDefs, err := resp.TryGetFieldByName("defs")
	if err != nil {
		return nil, err
	}
	wires, _ := rawDefs.([]interface{})
	defs := make([]*typenode.Def, 0, len(wires))
	for _, w := range wires {
		wm := w.(*dynamic.Message)
		name, _ := wm.TryGetFieldByName("name")
		paramsRaw, _ := wm.TryGetFieldByName("params")
		bodyJSON, _ := wm.TryGetFieldByName("body_json")

		params := make([]string, 0)
		if ps, ok := paramsRaw.([]interface{}); ok {
			for _, p := range ps {
				params = append(params, p.(string))
			}
		}
		body, err := nodeFromJSON([]byte(bodyJSON.(string)))
		if err != nil {
			return nil, fmt.Errorf("decode body for %s: %w", name, err)
		}
		defs = append(defs, &typenode.Def{Name: name.(string), Params: params, Body: body})
	}
	return defs, nil
}

func (s *GRPCSource) LookupSpecs(module, name string, arity int) ([]collab.Signature, error) {
	req := dynamic.NewMessage(s.lookupSpecsIn)
	req.SetFieldByName("module", module)
	req.SetFieldByName("name", name)
	req.SetFieldByName("arity", int32(arity))
	resp := dynamic.NewMessage(s.lookupSpecsOut)

	if err := s.conn.Invoke(context.Background(), "/typegen.registry.TypeRegistry/LookupSpecs", req, resp); err != nil {
		return nil, fmt.Errorf("LookupSpecs %s:%s/%d: %w", module, name, arity, err)
	}

	rawSigs, _ := resp.TryGetFieldByName("signatures")
	wires, _ := rawSigs.([]interface{})
	if len(wires) == 0 {
		return nil, &typenode.MissingSpecError{Name: name, Arity: arity}
	}
	sigs := make([]collab.Signature, 0, len(wires))
	for _, w := range wires {
		wm := w.(*dynamic.Message)
		argsRaw, _ := wm.TryGetFieldByName("arg_types_json")
		retRaw, _ := wm.TryGetFieldByName("return_type_json")

		argTypes := make([]typenode.Node, 0)
		if as, ok := argsRaw.([]interface{}); ok {
			for _, a := range as {
				n, err := nodeFromJSON([]byte(a.(string)))
				if err != nil {
					return nil, err
				}
				argTypes = append(argTypes, n)
			}
		}
		retType, err := nodeFromJSON([]byte(retRaw.(string)))
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, collab.Signature{ArgTypes: argTypes, ReturnType: retType})
	}
	return sigs, nil
}

func (s *GRPCSource) IsProtocol(module, name string) (bool, error) {
	req := dynamic.NewMessage(s.isProtocolIn)
	req.SetFieldByName("module", module)
	req.SetFieldByName("name", name)
	resp := dynamic.NewMessage(s.isProtocolOut)

	if err := s.conn.Invoke(context.Background(), "/typegen.registry.TypeRegistry/IsProtocol", req, resp); err != nil {
		return false, fmt.Errorf("IsProtocol %s:%s: %w", module, name, err)
	}
	v, _ := resp.TryGetFieldByName("is_protocol")
	b, _ := v.(bool)
	return b, nil
}

// --- JSON codec for typenode.Node, used as the payload inside
// TypeDefWire.body_json / SignatureWire's *_json fields. It encodes
// any, none, atom, atom literals, int, float, bool, int literals,
// ranges, binary patterns, binary, string, list, nonempty list, tuple,
// map, union and user/remote references; every other variant
// (including opaque handles) is encoded as "any".

type wireNode struct {
	Kind   string      `json:"kind"`
	Value  any         `json:"value,omitempty"`
	Lo     int64       `json:"lo,omitempty"`
	Hi     int64       `json:"hi,omitempty"`
	Size   int         `json:"size,omitempty"`
	Unit   int         `json:"unit,omitempty"`
	Elem   *wireNode   `json:"elem,omitempty"`
	Head   *wireNode   `json:"head,omitempty"`
	Tail   *wireNode   `json:"tail,omitempty"`
	Elems  []*wireNode `json:"elems,omitempty"`
	Alts   []*wireNode `json:"alts,omitempty"`
	Name   string      `json:"name,omitempty"`
	Module string      `json:"module,omitempty"`
	Args   []*wireNode `json:"args,omitempty"`
}

func nodeToJSON(n typenode.Node) ([]byte, error) {
	return json.Marshal(toWire(n))
}

func toWire(n typenode.Node) *wireNode {
	switch t := n.(type) {
	case typenode.Any:
		return &wireNode{Kind: "any"}
	case typenode.None:
		return &wireNode{Kind: "none"}
	case typenode.Atom:
		return &wireNode{Kind: "atom"}
	case typenode.AtomLit:
		return &wireNode{Kind: "atom_lit", Value: t.Value}
	case typenode.Int:
		return &wireNode{Kind: "int"}
	case typenode.Float:
		return &wireNode{Kind: "float"}
	case typenode.Bool:
		return &wireNode{Kind: "bool"}
	case typenode.IntLit:
		return &wireNode{Kind: "int_lit", Value: t.Value}
	case typenode.Range:
		return &wireNode{Kind: "range", Lo: t.Lo, Hi: t.Hi}
	case typenode.BinaryPattern:
		return &wireNode{Kind: "binary_pattern", Size: t.Size, Unit: t.Unit}
	case typenode.Binary:
		return &wireNode{Kind: "binary"}
	case typenode.String:
		return &wireNode{Kind: "string"}
	case typenode.List:
		return &wireNode{Kind: "list", Elem: toWire(t.Elem)}
	case typenode.NonemptyList:
		return &wireNode{Kind: "nonempty_list", Elem: toWire(t.Elem)}
	case typenode.Tuple:
		elems := make([]*wireNode, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = toWire(e)
		}
		return &wireNode{Kind: "tuple", Elems: elems}
	case typenode.Map:
		elems := make([]*wireNode, len(t.Fields))
		for i, f := range t.Fields {
			kind := "required"
			if f.Kind == typenode.Optional {
				kind = "optional"
			}
			elems[i] = &wireNode{Kind: kind, Head: toWire(f.Key), Tail: toWire(f.Value)}
		}
		return &wireNode{Kind: "map", Elems: elems}
	case typenode.Union:
		alts := make([]*wireNode, len(t.Alts))
		for i, a := range t.Alts {
			alts[i] = toWire(a)
		}
		return &wireNode{Kind: "union", Alts: alts}
	case typenode.UserRef:
		args := make([]*wireNode, len(t.Args))
		for i, a := range t.Args {
			args[i] = toWire(a)
		}
		return &wireNode{Kind: "user_ref", Name: t.Name, Args: args}
	case typenode.RemoteRef:
		args := make([]*wireNode, len(t.Args))
		for i, a := range t.Args {
			args[i] = toWire(a)
		}
		return &wireNode{Kind: "remote_ref", Module: t.Module, Name: t.Name, Args: args}
	default:
		return &wireNode{Kind: "any"}
	}
}

func nodeFromJSON(b []byte) (typenode.Node, error) {
	var w wireNode
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	return fromWire(&w)
}

func fromWire(w *wireNode) (typenode.Node, error) {
	if w == nil {
		return typenode.Any{}, nil
	}
	switch w.Kind {
	case "any":
		return typenode.Any{}, nil
	case "none":
		return typenode.None{}, nil
	case "atom":
		return typenode.Atom{}, nil
	case "atom_lit":
		return typenode.AtomLit{Value: fmt.Sprintf("%v", w.Value)}, nil
	case "int":
		return typenode.Int{}, nil
	case "float":
		return typenode.Float{}, nil
	case "bool":
		return typenode.Bool{}, nil
	case "int_lit":
		f, _ := w.Value.(float64)
		return typenode.IntLit{Value: int64(f)}, nil
	case "range":
		return typenode.Range{Lo: w.Lo, Hi: w.Hi}, nil
	case "binary_pattern":
		return typenode.BinaryPattern{Size: w.Size, Unit: w.Unit}, nil
	case "binary":
		return typenode.Binary{}, nil
	case "string":
		return typenode.String{}, nil
	case "list":
		elem, err := fromWire(w.Elem)
		if err != nil {
			return nil, err
		}
		return typenode.List{Elem: elem}, nil
	case "nonempty_list":
		elem, err := fromWire(w.Elem)
		if err != nil {
			return nil, err
		}
		return typenode.NonemptyList{Elem: elem}, nil
	case "tuple":
		elems, err := fromWireAll(w.Elems)
		if err != nil {
			return nil, err
		}
		return typenode.Tuple{Elems: elems}, nil
	case "map":
		fields := make([]typenode.MapField, len(w.Elems))
		for i, e := range w.Elems {
			key, err := fromWire(e.Head)
			if err != nil {
				return nil, err
			}
			val, err := fromWire(e.Tail)
			if err != nil {
				return nil, err
			}
			kind := typenode.Required
			if e.Kind == "optional" {
				kind = typenode.Optional
			}
			fields[i] = typenode.MapField{Kind: kind, Key: key, Value: val}
		}
		return typenode.Map{Fields: fields}, nil
	case "union":
		alts, err := fromWireAll(w.Alts)
		if err != nil {
			return nil, err
		}
		return typenode.NormalizeUnion(alts), nil
	case "user_ref":
		args, err := fromWireAll(w.Args)
		if err != nil {
			return nil, err
		}
		return typenode.UserRef{Name: w.Name, Args: args}, nil
	case "remote_ref":
		args, err := fromWireAll(w.Args)
		if err != nil {
			return nil, err
		}
		return typenode.RemoteRef{Module: w.Module, Name: w.Name, Args: args}, nil
	default:
		return typenode.Any{}, nil
	}
}

func fromWireAll(ws []*wireNode) ([]typenode.Node, error) {
	out := make([]typenode.Node, len(ws))
	for i, w := range ws {
		n, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

var _ collab.Source = (*GRPCSource)(nil)
