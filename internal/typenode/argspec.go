package typenode

// ArgSpec is the caller language for type arguments: a closed sum
// type so a type-safe caller can build a type-argument tree without
// reflection.
type ArgSpec interface {
	argSpec()
}

// ArgBuiltin names a built-in type by its atom name, e.g. "int",
// "atom", "boolean".
type ArgBuiltin struct{ Name string }

func (ArgBuiltin) argSpec() {}

// ArgLiteral is {literal, value}: an atom, integer, float, or boolean
// Go value to be wrapped as the matching singleton Node.
type ArgLiteral struct{ Value any }

func (ArgLiteral) argSpec() {}

// ArgContainer is {Kind, [subargs]}: Kind names a structural wrapper
// such as "list", "nonempty_list", "tuple", "improper_list",
// "maybe_improper_list", etc.
type ArgContainer struct {
	Kind string
	Sub  []ArgSpec
}

func (ArgContainer) argSpec() {}

// ArgMapFieldSpec is one entry of an ArgMap.
type ArgMapFieldSpec struct {
	Key      ArgSpec
	Value    ArgSpec
	Optional bool
}

// ArgMap is {map, fields}: a literal map-type description.
type ArgMap struct{ Fields []ArgMapFieldSpec }

func (ArgMap) argSpec() {}

// ArgUserType is {user_type, name} or {user_type, {name, subargs}}.
type ArgUserType struct {
	Name string
	Sub  []ArgSpec
}

func (ArgUserType) argSpec() {}

// ArgRemoteType is {remote_type, {module, name}} or {remote_type,
// {module, name, subargs}}.
type ArgRemoteType struct {
	Module string
	Name   string
	Sub    []ArgSpec
}

func (ArgRemoteType) argSpec() {}

// ArgOpaqueGen is a pre-built generator handed in directly as a type
// argument. Gen is asserted by internal/genbuild.
type ArgOpaqueGen struct{ Gen any }

func (ArgOpaqueGen) argSpec() {}

// ArgOpaqueValidator is a pre-built predicate handed in directly as a
// type argument.
type ArgOpaqueValidator struct{ Fn func(any) bool }

func (ArgOpaqueValidator) argSpec() {}

// ArgOpaquePair couples a generator and its matching validator, the
// only ArgSpec shape FromTypeWithValidator accepts for an opaque
// argument: a bare generator never implies a matching validator.
type ArgOpaquePair struct {
	Gen any
	Fn  func(any) bool
}

func (ArgOpaquePair) argSpec() {}
