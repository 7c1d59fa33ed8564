package valbuild

import (
	"testing"

	"github.com/funvibe/typegen/internal/tvalue"
	"github.com/funvibe/typegen/internal/typenode"
)

func TestFoldAnyAcceptsEverything(t *testing.T) {
	p, err := fold(typenode.Any{}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range []any{1, "x", true, nil, tvalue.Atom("ok")} {
		if !p(v) {
			t.Fatalf("expected any() to accept %#v", v)
		}
	}
}

func TestFoldNoneRejectsEverything(t *testing.T) {
	p, err := fold(typenode.None{}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p(1) || p(nil) {
		t.Fatal("expected none() to reject every value")
	}
}

func TestFoldRangeChecksBounds(t *testing.T) {
	p, err := fold(typenode.Range{Lo: 3, Hi: 5}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p(int64(4)) {
		t.Fatal("expected 4 to be within 3..5")
	}
	if p(int64(6)) {
		t.Fatal("expected 6 to be outside 3..5")
	}
	if p("4") {
		t.Fatal("expected a non-integer value to be rejected regardless of its printed form")
	}
}

func TestFoldAtomLitMatchesExactValueOnly(t *testing.T) {
	p, err := fold(typenode.AtomLit{Value: "ok"}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p(tvalue.Atom("ok")) {
		t.Fatal("expected :ok to match")
	}
	if p(tvalue.Atom("error")) {
		t.Fatal("expected :error not to match :ok's literal")
	}
}

func TestFoldOpaquePairUsesValidatorHalf(t *testing.T) {
	n := typenode.OpaquePair{
		Gen: nil,
		Fn:  func(v any) bool { return v == "wired" },
	}
	p, err := fold(n, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p("wired") {
		t.Fatal("expected the opaque pair's validator half to be used")
	}
	if p("other") {
		t.Fatal("expected the opaque pair's validator half to reject a non-matching value")
	}
}

func TestFoldOpaqueGenIsBadArgumentForAValidator(t *testing.T) {
	_, err := fold(typenode.OpaqueGen{Gen: "anything"}, &buildCtx{})
	if _, ok := err.(*typenode.BadArgumentError); !ok {
		t.Fatalf("expected *typenode.BadArgumentError, got %#v", err)
	}
}

func TestFoldMapRequiresLiteralKeyPresence(t *testing.T) {
	n := typenode.Map{Fields: []typenode.MapField{
		{Kind: typenode.Required, Key: typenode.AtomLit{Value: "status"}, Value: typenode.Atom{}},
	}}
	p, err := fold(n, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	present := map[any]any{tvalue.Atom("status"): tvalue.Atom("ok")}
	if !p(present) {
		t.Fatal("expected a map with the required literal key present to validate")
	}
	if p(map[any]any{}) {
		t.Fatal("expected a map missing the required literal key to be rejected")
	}
}

func TestFoldTupleRejectsListShape(t *testing.T) {
	n := typenode.Tuple{Elems: []typenode.Node{typenode.Int{}, typenode.Int{}}}
	p, err := fold(n, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p(tvalue.Tuple{Elems: []any{int64(1), int64(2)}}) {
		t.Fatal("expected a well-typed 2-tuple to validate")
	}
	if p([]any{int64(1), int64(2)}) {
		t.Fatal("expected a list to be rejected where a tuple is demanded")
	}
	if p(tvalue.Tuple{Elems: []any{int64(1)}}) {
		t.Fatal("expected a 1-tuple to be rejected at arity 2")
	}
}

func TestFoldBinaryPatternLengths(t *testing.T) {
	p, err := fold(typenode.BinaryPattern{Size: 2, Unit: 3}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p(tvalue.Bits{Data: []byte{0}, Len: 2}) || !p(tvalue.Bits{Data: []byte{0}, Len: 5}) {
		t.Fatal("expected bit lengths 2 and 5 to satisfy size 2, unit 3")
	}
	if p(tvalue.Bits{Data: []byte{0}, Len: 3}) {
		t.Fatal("expected bit length 3 to be rejected for size 2, unit 3")
	}

	exact, err := fold(typenode.BinaryPattern{Size: 4, Unit: 0}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exact(tvalue.Bits{Data: []byte{0}, Len: 4}) {
		t.Fatal("expected the exact bit length to validate when the unit is zero")
	}
	if exact(tvalue.Bits{Data: []byte{0}, Len: 8}) || exact(tvalue.Bits{Len: 0}) {
		t.Fatal("expected any other bit length to be rejected when the unit is zero")
	}

	empty, err := fold(typenode.BinaryPattern{Size: 0, Unit: 0}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !empty(tvalue.Bits{Len: 0}) {
		t.Fatal("expected the empty bitstring to validate a zero/zero pattern")
	}
	if empty(tvalue.Bits{Data: []byte{1}, Len: 1}) {
		t.Fatal("expected a non-empty bitstring to be rejected by a zero/zero pattern")
	}
}

func TestFoldStringIsCharlist(t *testing.T) {
	s, err := fold(typenode.String{}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cl, err := fold(typenode.Charlist{}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	candidates := []any{
		[]any{},
		[]any{int64(104), int64(105)},
		[]any{int64(-1)},
		"hi",
		int64(3),
	}
	for _, c := range candidates {
		if s(c) != cl(c) {
			t.Fatalf("string and charlist predicates disagree on %#v", c)
		}
	}
	if s("hi") {
		t.Fatal("expected a native string value to be rejected: strings are character lists")
	}
}

func TestFoldImproperListFamilies(t *testing.T) {
	maybe, err := fold(typenode.MaybeImproperList{Head: typenode.Int{}, Tail: typenode.Atom{}}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !maybe([]any{int64(1), int64(2)}) {
		t.Fatal("expected a proper list of heads to validate a maybe-improper type")
	}
	if !maybe(tvalue.ImproperPair{Head: []any{int64(1)}, Tail: tvalue.Atom("end")}) {
		t.Fatal("expected an improper chain with a well-typed terminator to validate")
	}
	if maybe(tvalue.ImproperPair{Head: []any{int64(1)}, Tail: 2.5}) {
		t.Fatal("expected a terminator of the wrong type to be rejected")
	}

	nonempty, err := fold(typenode.NonemptyImproperList{Head: typenode.Int{}, Tail: typenode.Atom{}}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nonempty([]any{int64(1)}) {
		t.Fatal("expected a proper list to be rejected by a strictly improper type")
	}
	if nonempty(tvalue.ImproperPair{Head: []any{}, Tail: tvalue.Atom("end")}) {
		t.Fatal("expected an empty head run to be rejected by a nonempty improper type")
	}
	if !nonempty(tvalue.ImproperPair{Head: []any{int64(1)}, Tail: tvalue.Atom("end")}) {
		t.Fatal("expected a one-head improper chain to validate")
	}
}

func TestFoldMapOpenFieldSkipsLiteralClaimedKeys(t *testing.T) {
	n := typenode.Map{Fields: []typenode.MapField{
		{Kind: typenode.Required, Key: typenode.AtomLit{Value: "key"}, Value: typenode.Int{}},
		{Kind: typenode.Optional, Key: typenode.Atom{}, Value: typenode.Float{}},
	}}
	p, err := fold(n, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The literal entry has an integer value; the open atom-keyed field
	// demands floats, but must not re-check the claimed key.
	if !p(map[any]any{tvalue.Atom("key"): int64(1)}) {
		t.Fatal("expected the literal entry to be exempt from the open field's value type")
	}
	if !p(map[any]any{tvalue.Atom("key"): int64(1), tvalue.Atom("other"): 2.5}) {
		t.Fatal("expected a well-typed open entry alongside the literal one to validate")
	}
	if p(map[any]any{tvalue.Atom("key"): int64(1), tvalue.Atom("other"): int64(2)}) {
		t.Fatal("expected a mistyped open entry to be rejected")
	}
}

func TestFoldIolist(t *testing.T) {
	p, err := fold(typenode.Iolist{}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p([]any{}) || !p([]any{int64(104), []byte("ello"), []any{int64(33)}}) {
		t.Fatal("expected nested byte/binary/io-list elements to validate")
	}
	if p([]any{int64(300)}) {
		t.Fatal("expected an out-of-byte-range element to be rejected")
	}
	if p(tvalue.Atom("x")) {
		t.Fatal("expected a non-list, non-binary value to be rejected")
	}
}

func TestFoldPidIsUnsupported(t *testing.T) {
	_, err := fold(typenode.Pid{}, &buildCtx{})
	if _, ok := err.(*typenode.UnsupportedError); !ok {
		t.Fatalf("expected *typenode.UnsupportedError, got %#v", err)
	}
	_, err = fold(typenode.Fun{}, &buildCtx{})
	if _, ok := err.(*typenode.UnsupportedError); !ok {
		t.Fatalf("expected *typenode.UnsupportedError, got %#v", err)
	}
}

func TestFoldBoolMatchesTheAtomUnion(t *testing.T) {
	b, err := fold(typenode.Bool{}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := fold(typenode.Union{Alts: []typenode.Node{
		typenode.AtomLit{Value: "true"},
		typenode.AtomLit{Value: "false"},
	}}, &buildCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	candidates := []any{
		tvalue.Atom("true"), tvalue.Atom("false"), tvalue.Atom("ok"),
		true, int64(1), nil,
	}
	for _, c := range candidates {
		if b(c) != u(c) {
			t.Fatalf("boolean and its atom-union expansion disagree on %#v", c)
		}
	}
	if !b(tvalue.Atom("true")) {
		t.Fatal("expected the atom true to be a boolean")
	}
}
