package registry

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/typenode"
)

// ProtoSource discovers type definitions by parsing .proto files at
// runtime with protoparse — no protoc step. Each message descriptor
// becomes a Map definition treating the message as a struct: one
// required literal-keyed field per message field, in declaration
// order. ProtoSource has no specs of its own — LookupSpecs always
// returns MissingSpecError; pair it with a collab.SpecSource (e.g.
// MemorySource) for a complete collab.Source if specs are needed.
type ProtoSource struct {
	ImportPaths []string

	files map[string]*desc.FileDescriptor
}

// NewProtoSource builds a ProtoSource that resolves imports relative
// to importPaths (current directory if empty, matching
// protoparse.Parser's own default).
func NewProtoSource(importPaths ...string) *ProtoSource {
	if len(importPaths) == 0 {
		importPaths = []string{"."}
	}
	return &ProtoSource{ImportPaths: importPaths, files: make(map[string]*desc.FileDescriptor)}
}

// LoadFile parses path (and its transitive imports) and registers
// every message it defines as module's type definitions.
func (s *ProtoSource) LoadFile(module, path string) error {
	parser := protoparse.Parser{ImportPaths: s.ImportPaths}
	fds, err := parser.ParseFiles(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for _, fd := range fds {
		s.files[module] = fd
	}
	return nil
}

func (s *ProtoSource) LookupTypes(module string) ([]*typenode.Def, error) {
	fd, ok := s.files[module]
	if !ok {
		return nil, &typenode.UnknownModuleError{Module: module}
	}
	defs := make([]*typenode.Def, 0, len(fd.GetMessageTypes()))
	for _, md := range fd.GetMessageTypes() {
		defs = append(defs, messageToDef(md))
	}
	return defs, nil
}

func (s *ProtoSource) LookupSpecs(module, name string, arity int) ([]collab.Signature, error) {
	return nil, &typenode.MissingSpecError{Name: name, Arity: arity}
}

func (s *ProtoSource) IsProtocol(module, name string) (bool, error) { return false, nil }

// messageToDef converts one protobuf message descriptor into a Map
// definition whose required literal keys are the message's field
// names.
func messageToDef(md *desc.MessageDescriptor) *typenode.Def {
	fields := make([]typenode.MapField, 0, len(md.GetFields()))
	for _, fd := range md.GetFields() {
		fields = append(fields, typenode.MapField{
			Kind:  typenode.Required,
			Key:   typenode.AtomLit{Value: fd.GetName()},
			Value: protoFieldType(fd),
		})
	}
	return &typenode.Def{Name: md.GetName(), Body: typenode.Map{Fields: fields}}
}

// protoFieldType maps one protobuf field's declared type to a Node.
func protoFieldType(fd *desc.FieldDescriptor) typenode.Node {
	var base typenode.Node
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32, descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		base = typenode.Int{}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32, descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_UINT64, descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		base = typenode.NonNegInt{}
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		base = typenode.Float{}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		base = typenode.Bool{}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		base = typenode.String{}
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		base = typenode.Binary{}
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		base = messageToDef(fd.GetMessageType()).Body
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		base = enumFieldType(fd)
	default:
		base = typenode.Any{}
	}
	if fd.IsRepeated() {
		return typenode.List{Elem: base}
	}
	return base
}

func enumFieldType(fd *desc.FieldDescriptor) typenode.Node {
	values := fd.GetEnumType().GetValues()
	alts := make([]typenode.Node, len(values))
	for i, v := range values {
		alts[i] = typenode.AtomLit{Value: v.GetName()}
	}
	return typenode.NormalizeUnion(alts)
}

var _ collab.Source = (*ProtoSource)(nil)
