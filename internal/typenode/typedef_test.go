package typenode

import "testing"

func TestRegistryLookupByNameAndArity(t *testing.T) {
	defs := []*Def{
		{Name: "pair", Params: []string{"a", "b"}, Body: TupleAny{}},
		{Name: "pair", Params: nil, Body: Int{}},
	}
	reg := NewRegistry("m", defs)

	d, ok := reg.Lookup("pair", 2)
	if !ok || d.Body.String() != (TupleAny{}).String() {
		t.Fatalf("expected pair/2 to resolve to the two-param def, got %#v, ok=%v", d, ok)
	}

	d0, ok := reg.Lookup("pair", 0)
	if !ok || d0.Body.String() != (Int{}).String() {
		t.Fatalf("expected pair/0 to resolve to the zero-param def, got %#v, ok=%v", d0, ok)
	}

	if !reg.HasAnyArity("pair") {
		t.Fatal("expected HasAnyArity(pair) to be true")
	}
	if reg.HasAnyArity("nope") {
		t.Fatal("expected HasAnyArity(nope) to be false")
	}
}

func TestRegistryLastDefinitionWinsOnDuplicateArity(t *testing.T) {
	defs := []*Def{
		{Name: "t", Params: nil, Body: Int{}},
		{Name: "t", Params: nil, Body: Atom{}},
	}
	reg := NewRegistry("m", defs)
	d, ok := reg.Lookup("t", 0)
	if !ok {
		t.Fatal("expected t/0 to resolve")
	}
	if d.Body.String() != (Atom{}).String() {
		t.Fatalf("expected the later duplicate definition to win, got %v", d.Body)
	}
}

func TestRegistryUnknownNameNotFound(t *testing.T) {
	reg := NewRegistry("m", nil)
	if _, ok := reg.Lookup("missing", 0); ok {
		t.Fatal("expected Lookup on an empty registry to report not-found")
	}
	if reg.HasAnyArity("missing") {
		t.Fatal("expected HasAnyArity on an empty registry to be false")
	}
}
