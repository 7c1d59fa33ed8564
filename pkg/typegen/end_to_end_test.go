package typegen

import (
	"testing"

	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/registry"
	"github.com/funvibe/typegen/internal/tvalue"
	"github.com/funvibe/typegen/internal/typenode"
)

func atomIntTupleSource() Source {
	src := registry.NewMemorySource()
	src.AddModule("m", []*typenode.Def{
		{Name: "t", Body: typenode.Tuple{Elems: []typenode.Node{typenode.Atom{}, typenode.Int{}}}},
	})
	return src
}

func TestTupleTypeDrawsAndValidates(t *testing.T) {
	src := atomIntTupleSource()

	gen, err := FromType(src, "m", "t", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	val, err := ValidatorForType(src, "m", "t", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		v, ok := gen.Sample(10)
		if !ok {
			t.Fatalf("generator produced no value on draw %d", i)
		}
		tup, ok := v.(tvalue.Tuple)
		if !ok || len(tup.Elems) != 2 {
			t.Fatalf("expected a 2-tuple, got %#v", v)
		}
		if _, ok := tup.Elems[0].(tvalue.Atom); !ok {
			t.Fatalf("expected an atom first component, got %#v", tup.Elems[0])
		}
		if _, ok := tup.Elems[1].(int64); !ok {
			t.Fatalf("expected an integer second component, got %#v", tup.Elems[1])
		}
	}

	if !val.Check(tvalue.Tuple{Elems: []any{tvalue.Atom("a"), int64(1)}}) {
		t.Fatal("expected {:a, 1} to validate")
	}
	if val.Check(tvalue.Tuple{Elems: []any{int64(1), tvalue.Atom("a")}}) {
		t.Fatal("expected {1, :a} to be rejected: components in the wrong order")
	}
	if val.Check(tvalue.Tuple{Elems: []any{tvalue.Atom("a")}}) {
		t.Fatal("expected {:a} to be rejected: wrong arity")
	}
	if val.Check([]any{tvalue.Atom("a"), int64(1)}) {
		t.Fatal("expected a list to be rejected where a tuple is demanded")
	}
}

func TestRangeTypeBounds(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", []*typenode.Def{
		{Name: "r", Body: typenode.Range{Lo: 0, Hi: 10}},
	})

	val, err := ValidatorForType(src, "m", "r", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range []int64{0, 5, 10} {
		if !val.Check(v) {
			t.Fatalf("expected %d to be within 0..10", v)
		}
	}
	if val.Check(int64(-1)) || val.Check(int64(11)) {
		t.Fatal("expected out-of-range integers to be rejected")
	}
	if val.Check(3.0) {
		t.Fatal("expected a float to be rejected by an integer range")
	}
	if val.Check("hi") {
		t.Fatal("expected a non-numeric value to be rejected")
	}
}

func TestRecursiveUnionDrawsFiniteValues(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", []*typenode.Def{
		{Name: "tt", Body: typenode.Union{Alts: []typenode.Node{
			typenode.Nil{},
			typenode.Tuple{Elems: []typenode.Node{typenode.Int{}, typenode.UserRef{Name: "tt"}}},
		}}},
	})

	gen, err := FromType(src, "m", "tt", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	val, err := ValidatorForType(src, "m", "tt", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for size := 1; size <= 40; size += 3 {
		v, ok := gen.Sample(size)
		if !ok {
			t.Fatalf("generator produced no value at size %d", size)
		}
		if !val.Check(v) {
			t.Fatalf("drawn value %#v at size %d did not validate against its own type", v, size)
		}
	}

	nilV := []any{}
	one := tvalue.Tuple{Elems: []any{int64(1), nilV}}
	two := tvalue.Tuple{Elems: []any{int64(1), tvalue.Tuple{Elems: []any{int64(2), nilV}}}}
	for _, v := range []any{any(nilV), any(one), any(two)} {
		if !val.Check(v) {
			t.Fatalf("expected %#v to validate", v)
		}
	}
	if val.Check(tvalue.Tuple{Elems: []any{int64(1), tvalue.Atom("x")}}) {
		t.Fatal("expected a tuple with a non-member tail to be rejected")
	}
}

func TestParametricAliasBindsArguments(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", []*typenode.Def{
		{Name: "dict", Params: []string{"k", "v"}, Body: typenode.List{
			Elem: typenode.Tuple{Elems: []typenode.Node{typenode.Var{Name: "k"}, typenode.Var{Name: "v"}}},
		}},
	})

	args := []ArgSpec{ArgBuiltin("atom"), ArgBuiltin("int")}
	gen, err := FromType(src, "m", "dict", args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	val, err := ValidatorForType(src, "m", "dict", args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		v, ok := gen.Sample(15)
		if !ok {
			t.Fatal("generator produced no value")
		}
		pairs, ok := v.([]any)
		if !ok {
			t.Fatalf("expected a list, got %#v", v)
		}
		for _, p := range pairs {
			tup, ok := p.(tvalue.Tuple)
			if !ok || len(tup.Elems) != 2 {
				t.Fatalf("expected each element to be a 2-tuple, got %#v", p)
			}
			if _, ok := tup.Elems[0].(tvalue.Atom); !ok {
				t.Fatalf("expected an atom key, got %#v", tup.Elems[0])
			}
			if _, ok := tup.Elems[1].(int64); !ok {
				t.Fatalf("expected an integer value, got %#v", tup.Elems[1])
			}
		}
		if !val.Check(v) {
			t.Fatalf("drawn value %#v did not validate against its own type", v)
		}
	}

	bad := []any{tvalue.Tuple{Elems: []any{int64(1), tvalue.Atom("x")}}}
	if val.Check(bad) {
		t.Fatal("expected a pair with swapped component types to be rejected")
	}
}

func TestMapWithLiteralAndOpenFields(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", []*typenode.Def{
		{Name: "opts", Body: typenode.Map{Fields: []typenode.MapField{
			{Kind: typenode.Required, Key: typenode.AtomLit{Value: "key"}, Value: typenode.Int{}},
			{Kind: typenode.Optional, Key: typenode.Float{}, Value: typenode.Int{}},
		}}},
	})

	gen, val, err := FromTypeWithValidator(src, "m", "opts", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		v, ok := gen.Sample(10)
		if !ok {
			t.Fatal("generator produced no value")
		}
		if !val.Check(v) {
			t.Fatalf("drawn value %#v did not validate against its own type", v)
		}
		m := v.(map[any]any)
		if _, present := m[tvalue.Atom("key")]; !present {
			t.Fatalf("expected the required literal key to be present in every draw, got %#v", m)
		}
	}

	if val.Check(map[any]any{}) {
		t.Fatal("expected an empty map to be rejected: the required literal key is missing")
	}
	good := map[any]any{tvalue.Atom("key"): int64(1), 1.5: int64(2)}
	if !val.Check(good) {
		t.Fatal("expected a map with the literal key and a well-typed open entry to validate")
	}
	bad := map[any]any{tvalue.Atom("key"): tvalue.Atom("oops")}
	if val.Check(bad) {
		t.Fatal("expected a literal key with a non-integer value to be rejected")
	}
}

func TestValidateFlagsWrongReturn(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", nil)
	src.AddSpec("m", "f", 1, collab.Signature{
		ArgTypes:   []typenode.Node{typenode.Int{}},
		ReturnType: typenode.Int{},
	})

	wrong := func(args []any) (any, error) { return tvalue.Atom("foo"), nil }

	res, err := Validate(src, "m", "f", 1, wrong, ValidateOptions{MinSuccessfulTests: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK {
		t.Fatal("expected a callable returning :foo against an integer return type to fail")
	}
	if len(res.Outcomes) != 1 || res.Outcomes[0].OK {
		t.Fatalf("expected the single overload to carry the failure, got %+v", res.Outcomes)
	}
}

// Building an alias and its expansion yields validators that agree.
func TestAliasAndExpansionValidatorsAgree(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", []*typenode.Def{
		{Name: "s", Body: typenode.String{}},
		{Name: "cl", Body: typenode.List{Elem: typenode.Char{}}},
	})

	aliasVal, err := ValidatorForType(src, "m", "s", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expandedVal, err := ValidatorForType(src, "m", "cl", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	candidates := []any{
		[]any{},
		[]any{int64(104), int64(105)},
		[]any{int64(-1)},
		[]any{tvalue.Atom("x")},
		"hi",
		int64(7),
	}
	for _, c := range candidates {
		if aliasVal.Check(c) != expandedVal.Check(c) {
			t.Fatalf("alias and expansion disagree on %#v", c)
		}
	}

	aliasGen, err := FromType(src, "m", "s", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		v, ok := aliasGen.Sample(10)
		if !ok {
			t.Fatal("generator produced no value")
		}
		if !expandedVal.Check(v) {
			t.Fatalf("value %#v drawn from the alias fails the expansion's validator", v)
		}
	}
}

// Union alternatives generate and validate the same set regardless of
// declaration order or nesting.
func TestUnionOrderAndNestingAreCanonical(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", []*typenode.Def{
		{Name: "ab", Body: typenode.Union{Alts: []typenode.Node{typenode.Atom{}, typenode.Int{}}}},
		{Name: "ba", Body: typenode.Union{Alts: []typenode.Node{typenode.Int{}, typenode.Atom{}}}},
		{Name: "nested", Body: typenode.Union{Alts: []typenode.Node{
			typenode.Union{Alts: []typenode.Node{typenode.Atom{}, typenode.Int{}}},
			typenode.Bool{},
		}}},
		{Name: "flat", Body: typenode.Union{Alts: []typenode.Node{
			typenode.Atom{}, typenode.Int{}, typenode.Bool{},
		}}},
	})

	check := func(a, b string) {
		va, err := ValidatorForType(src, "m", a, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		vb, err := ValidatorForType(src, "m", b, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ga, err := FromType(src, "m", a, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 0; i < 20; i++ {
			v, ok := ga.Sample(10)
			if !ok {
				t.Fatal("generator produced no value")
			}
			if !vb.Check(v) {
				t.Fatalf("value %#v from %s fails %s's validator", v, a, b)
			}
			if !va.Check(v) {
				t.Fatalf("value %#v from %s fails its own validator", v, a)
			}
		}
	}
	check("ab", "ba")
	check("ba", "ab")
	check("nested", "flat")
	check("flat", "nested")
}
