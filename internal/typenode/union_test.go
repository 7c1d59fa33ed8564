package typenode

import "testing"

func TestNormalizeUnionFlattensNestedUnions(t *testing.T) {
	u := NormalizeUnion([]Node{
		Int{},
		Union{Alts: []Node{Atom{}, Bool{}}},
	})
	got, ok := u.(Union)
	if !ok {
		t.Fatalf("expected Union, got %T", u)
	}
	if len(got.Alts) != 3 {
		t.Fatalf("expected 3 flattened alternatives, got %d: %v", len(got.Alts), got)
	}
}

func TestNormalizeUnionDropsDuplicates(t *testing.T) {
	u := NormalizeUnion([]Node{Int{}, Int{}, Atom{}})
	got, ok := u.(Union)
	if !ok {
		t.Fatalf("expected Union, got %T", u)
	}
	if len(got.Alts) != 2 {
		t.Fatalf("expected duplicates collapsed to 2 alternatives, got %d: %v", len(got.Alts), got)
	}
}

func TestNormalizeUnionCollapsesSingleton(t *testing.T) {
	u := NormalizeUnion([]Node{Int{}, Int{}})
	if _, ok := u.(Union); ok {
		t.Fatalf("expected a bare Node, got a Union: %v", u)
	}
	if u.String() != (Int{}).String() {
		t.Fatalf("expected collapsed singleton to equal Int{}, got %v", u)
	}
}

func TestNormalizeUnionIsOrderIndependent(t *testing.T) {
	a := NormalizeUnion([]Node{Int{}, Atom{}, Bool{}})
	b := NormalizeUnion([]Node{Bool{}, Int{}, Atom{}})
	if a.String() != b.String() {
		t.Fatalf("expected order-independent result, got %q vs %q", a, b)
	}
}

func TestContainsUserRefFindsSelfReferenceInsideList(t *testing.T) {
	n := List{Elem: UserRef{Name: "tree"}}
	if !ContainsUserRef(n, "tree") {
		t.Fatal("expected ContainsUserRef to find the self-reference nested in List.Elem")
	}
	if ContainsUserRef(n, "other") {
		t.Fatal("expected ContainsUserRef to report false for an unrelated name")
	}
}

func TestContainsUserRefWalksTupleAndMap(t *testing.T) {
	tup := Tuple{Elems: []Node{Int{}, UserRef{Name: "self"}}}
	if !ContainsUserRef(tup, "self") {
		t.Fatal("expected ContainsUserRef to walk into Tuple.Elems")
	}

	m := Map{Fields: []MapField{
		{Kind: Required, Key: AtomLit{Value: "next"}, Value: UserRef{Name: "self"}},
	}}
	if !ContainsUserRef(m, "self") {
		t.Fatal("expected ContainsUserRef to walk into Map field values")
	}
}
