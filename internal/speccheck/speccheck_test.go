package speccheck

import (
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/registry"
	"github.com/funvibe/typegen/internal/typenode"
)

func doubleSource() *registry.MemorySource {
	src := registry.NewMemorySource()
	src.AddModule("m", nil)
	src.AddSpec("m", "double", 1, collab.Signature{
		ArgTypes:   []typenode.Node{typenode.Int{}},
		ReturnType: typenode.Int{},
	})
	return src
}

func TestValidatePassesForACorrectCallable(t *testing.T) {
	src := doubleSource()
	resolver := collab.NewResolver(src)
	reg, err := resolver.Registry("m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	double := func(args []any) (any, error) {
		return args[0].(int64) * 2, nil
	}

	res, err := Validate(src, resolver, reg, "m", "double", 1, double, Options{MinSuccessfulTests: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected a correct doubling callable to pass, got %+v", res.Outcomes)
	}
}

func TestValidateFailsForAWrongCallable(t *testing.T) {
	src := doubleSource()
	resolver := collab.NewResolver(src)
	reg, err := resolver.Registry("m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Returns a float where an int is demanded: the return validator
	// should reject every draw.
	broken := func(args []any) (any, error) {
		return 3.14, nil
	}

	res, err := Validate(src, resolver, reg, "m", "double", 1, broken, Options{MinSuccessfulTests: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK {
		t.Fatal("expected a callable returning the wrong shape to fail the campaign")
	}
}

func TestValidateAbsorbsCallableErrors(t *testing.T) {
	src := doubleSource()
	resolver := collab.NewResolver(src)
	reg, _ := resolver.Registry("m")

	alwaysErrors := func(args []any) (any, error) {
		return nil, fmt.Errorf("boom")
	}

	res, err := Validate(src, resolver, reg, "m", "double", 1, alwaysErrors, Options{MinSuccessfulTests: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatal("expected a callable that always raises to pass: an exception never fails the property")
	}
}

func TestValidateMissingSpec(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", nil)
	resolver := collab.NewResolver(src)
	reg, _ := resolver.Registry("m")

	_, err := Validate(src, resolver, reg, "m", "nope", 1, func([]any) (any, error) { return nil, nil }, Options{})
	if _, ok := err.(*typenode.MissingSpecError); !ok {
		t.Fatalf("expected *typenode.MissingSpecError, got %#v", err)
	}
}

// NoReturn-compatible specs (e.g. a function spec'd to always raise)
// must pass whether the callable panics/errors or returns normally.
func TestValidateNoReturnAcceptsNormalReturn(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", nil)
	src.AddSpec("m", "crashes", 0, collab.Signature{ReturnType: typenode.None{}})
	resolver := collab.NewResolver(src)
	reg, _ := resolver.Registry("m")

	returnsNormally := func([]any) (any, error) { return "surprise", nil }

	res, err := Validate(src, resolver, reg, "m", "crashes", 0, returnsNormally, Options{MinSuccessfulTests: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatal("expected a NoReturn spec to accept a callable that happens to return normally")
	}
}

func TestValidateAndRecordWritesHistory(t *testing.T) {
	src := doubleSource()
	cache, err := registry.OpenCachingSource(src, ":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cache.Close()

	resolver := collab.NewResolver(src)
	reg, _ := resolver.Registry("m")

	double := func(args []any) (any, error) { return args[0].(int64) * 2, nil }

	_, err = ValidateAndRecord(src, resolver, reg, "m", "double", 1, double, Options{MinSuccessfulTests: 10}, cache, "2026-07-29T00:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, found, err := cache.LastCampaignOK("m", "double", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected a recorded campaign run to be found")
	}
	if !ok {
		t.Fatal("expected the recorded run to be marked ok")
	}
}

func TestReportStringIncludesStatus(t *testing.T) {
	res := &Result{
		OK: false,
		Outcomes: []Outcome{
			{OK: false, Meta: Meta{Iterations: 3, FailureReason: "return value failed the spec's return-type validator", CounterExample: []any{int64(1)}}},
		},
	}
	out := ReportString("m", "double", 1, res)
	if !strings.Contains(out, "FAILED") {
		t.Fatalf("expected the report to mention FAILED, got %q", out)
	}
	if !strings.Contains(out, "counter-example") {
		t.Fatalf("expected the report to include the counter-example, got %q", out)
	}
}

func TestValidateBindsConstrainedTypeVariables(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", nil)
	src.AddSpec("m", "id", 1, collab.Signature{
		ArgTypes:    []typenode.Node{typenode.Var{Name: "x"}},
		ReturnType:  typenode.Var{Name: "x"},
		Constraints: map[string]typenode.Node{"x": typenode.Int{}},
	})
	resolver := collab.NewResolver(src)
	reg, _ := resolver.Registry("m")

	identity := func(args []any) (any, error) { return args[0], nil }

	res, err := Validate(src, resolver, reg, "m", "id", 1, identity, Options{MinSuccessfulTests: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatal("expected a bounded-variable identity spec to pass once the bound is substituted")
	}
}

func TestValidateAggregatesAcrossOverloads(t *testing.T) {
	src := registry.NewMemorySource()
	src.AddModule("m", nil)
	src.AddSpec("m", "mixed", 1, collab.Signature{
		ArgTypes:   []typenode.Node{typenode.Int{}},
		ReturnType: typenode.Int{},
	})
	src.AddSpec("m", "mixed", 1, collab.Signature{
		ArgTypes:   []typenode.Node{typenode.Int{}},
		ReturnType: typenode.Float{},
	})
	resolver := collab.NewResolver(src)
	reg, _ := resolver.Registry("m")

	// Satisfies the first overload's return type but never the second.
	intOnly := func(args []any) (any, error) { return args[0], nil }

	res, err := Validate(src, resolver, reg, "m", "mixed", 1, intOnly, Options{MinSuccessfulTests: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK {
		t.Fatal("expected the aggregate to fail when any overload fails")
	}
	if len(res.Outcomes) != 2 {
		t.Fatalf("expected one outcome per overload, got %d", len(res.Outcomes))
	}
	if !res.Outcomes[0].OK || res.Outcomes[1].OK {
		t.Fatalf("expected the first overload to pass and the second to fail, got %+v", res.Outcomes)
	}
}

func TestValidateSeededPhaseCatchesFailureDeterministically(t *testing.T) {
	src := doubleSource()
	resolver := collab.NewResolver(src)
	reg, _ := resolver.Registry("m")

	broken := func(args []any) (any, error) { return 3.14, nil }

	res, err := Validate(src, resolver, reg, "m", "double", 1, broken, Options{MinSuccessfulTests: 20, SeedCount: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK {
		t.Fatal("expected the broken callable to fail")
	}
	meta := res.Outcomes[0].Meta
	if !strings.Contains(meta.FailureReason, "fixed seed") {
		t.Fatalf("expected the failure to be caught in the fixed-seed phase, got %q", meta.FailureReason)
	}
	if meta.Iterations != 1 {
		t.Fatalf("expected the very first seeded draw to fail, got %d iterations", meta.Iterations)
	}
}

func TestValidateSeededPhasePrecedesRandomDraws(t *testing.T) {
	src := doubleSource()
	resolver := collab.NewResolver(src)
	reg, _ := resolver.Registry("m")

	double := func(args []any) (any, error) { return args[0].(int64) * 2, nil }

	res, err := Validate(src, resolver, reg, "m", "double", 1, double, Options{MinSuccessfulTests: 10, SeedCount: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected a correct callable to pass, got %+v", res.Outcomes)
	}
	if res.Outcomes[0].Meta.Iterations < 15 {
		t.Fatalf("expected at least the 5 seeded draws plus 10 random ones, got %d", res.Outcomes[0].Meta.Iterations)
	}

	// A negative SeedCount disables the fixed-seed phase entirely.
	res, err = Validate(src, resolver, reg, "m", "double", 1, double, Options{MinSuccessfulTests: 10, SeedCount: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected a correct callable to pass without seeds, got %+v", res.Outcomes)
	}
}
