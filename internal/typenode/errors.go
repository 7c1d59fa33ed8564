package typenode

import "fmt"

// Each failure kind is its own typed struct carrying a human-readable
// message, never a bare errors.New string, so callers can type-switch
// or errors.As on the kind.

// UnknownModuleError: no such module (raised by the registry collaborator).
type UnknownModuleError struct{ Module string }

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("unknown module: %s", e.Module)
}

// UnknownTypeError: no definition with that name in the module.
type UnknownTypeError struct {
	Module, Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %s/%s", e.Module, e.Name)
}

// WrongArityError: a definition with that name exists but not at the
// requested parameter count.
type WrongArityError struct {
	Name          string
	Wanted, Got   int
}

func (e *WrongArityError) Error() string {
	return fmt.Sprintf("type %s expects %d argument(s), got %d", e.Name, e.Wanted, e.Got)
}

// ArityMismatchError: parameter substitution could not exhaust free
// variables exactly.
type ArityMismatchError struct{ Message string }

func (e *ArityMismatchError) Error() string { return e.Message }

// BadArgumentError: the caller's ArgSpec was a shape rewriting does
// not cover.
type BadArgumentError struct{ Message string }

func (e *BadArgumentError) Error() string { return e.Message }

// NoInhabitantsError: None / NoReturn was requested of the generator
// builder.
type NoInhabitantsError struct{ Type string }

func (e *NoInhabitantsError) Error() string {
	return fmt.Sprintf("type %s has no inhabitants", e.Type)
}

// UnsupportedError: Pid / Port / function-literal types were
// requested of the generator builder.
type UnsupportedError struct{ Type string }

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("type %s is not supported", e.Type)
}

// ProtocolError: a remote reference resolved to a protocol/interface
// type, which cannot be sampled without knowing implementers.
type ProtocolError struct{ Module, Name string }

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s.%s is a protocol type and cannot be generated", e.Module, e.Name)
}

// InfiniteTypeError: a recursive definition has no base case.
type InfiniteTypeError struct{ Name string }

func (e *InfiniteTypeError) Error() string {
	return fmt.Sprintf("type %s recurses with no base case", e.Name)
}

// MissingSpecError: no signatures for (name, arity) in the spec
// checker.
type MissingSpecError struct {
	Name  string
	Arity int
}

func (e *MissingSpecError) Error() string {
	return fmt.Sprintf("no spec for %s/%d", e.Name, e.Arity)
}
