package formula

import (
	"errors"
	"testing"

	"tally/grid"
)

func mustParse(t *testing.T, body string) *Formula {
	t.Helper()
	f, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", body, err)
	}
	return f
}

func noRefs(t *testing.T) Resolver {
	t.Helper()
	return func(pos grid.Position) (float64, error) {
		t.Fatalf("unexpected reference to %v", pos)
		return 0, nil
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	cases := []struct {
		body string
		want float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10-4-3", 3},
		{"10-(4-3)", 9},
		{"8/2/2", 2},
		{"-3+5", 2},
		{"+3", 3},
		{"2*-3", -6},
		{"1.5*4", 6},
		{"0.5+0.25", 0.75},
	}
	for _, tc := range cases {
		f := mustParse(t, tc.body)
		got, err := f.Evaluate(noRefs(t))
		if err != nil {
			t.Fatalf("Evaluate(%q) failed: %v", tc.body, err)
		}
		if got != tc.want {
			t.Fatalf("Evaluate(%q) = %g, want %g", tc.body, got, tc.want)
		}
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	for _, body := range []string{"1/0", "1/(2-2)", "-1/0"} {
		f := mustParse(t, body)
		_, err := f.Evaluate(noRefs(t))
		var fe grid.FormulaError
		if !errors.As(err, &fe) || fe.Category != grid.ErrDiv0 {
			t.Fatalf("Evaluate(%q) error = %v, want #DIV/0!", body, err)
		}
	}
}

func TestEvaluateResolvesReferences(t *testing.T) {
	values := map[grid.Position]float64{
		grid.FromString("A1"): 5,
		grid.FromString("B2"): 2.5,
	}
	resolve := func(pos grid.Position) (float64, error) {
		return values[pos], nil
	}
	f := mustParse(t, "A1*2+B2")
	got, err := f.Evaluate(resolve)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got != 12.5 {
		t.Fatalf("Evaluate = %g, want 12.5", got)
	}
}

func TestEvaluateInvalidReference(t *testing.T) {
	f := mustParse(t, "ZZZZ1+1")
	_, err := f.Evaluate(noRefs(t))
	var fe grid.FormulaError
	if !errors.As(err, &fe) || fe.Category != grid.ErrRef {
		t.Fatalf("error = %v, want #REF!", err)
	}
}

func TestEvaluateResolverErrorPropagates(t *testing.T) {
	resolve := func(pos grid.Position) (float64, error) {
		return 0, grid.FormulaError{Category: grid.ErrValue}
	}
	f := mustParse(t, "1+A1")
	_, err := f.Evaluate(resolve)
	var fe grid.FormulaError
	if !errors.As(err, &fe) || fe.Category != grid.ErrValue {
		t.Fatalf("error = %v, want #VALUE!", err)
	}
}

func TestReferencedCells(t *testing.T) {
	f := mustParse(t, "B1+A1*B1+ZZZZ1+A1")
	refs := f.ReferencedCells()
	want := []grid.Position{grid.FromString("B1"), grid.FromString("A1")}
	if len(refs) != len(want) {
		t.Fatalf("got %d referenced cells (%v), want %d", len(refs), refs, len(want))
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("referenced cell %d = %v, want %v", i, refs[i], want[i])
		}
	}
	if raw := f.ReferenceList(); len(raw) != 5 {
		t.Fatalf("raw reference list has %d entries, want 5", len(raw))
	}
}

func TestHasRefs(t *testing.T) {
	if mustParse(t, "1+2").HasRefs() {
		t.Fatalf("constant formula reports references")
	}
	if !mustParse(t, "ZZZZ1").HasRefs() {
		t.Fatalf("reference-bearing formula reports none")
	}
}

func TestParseFailure(t *testing.T) {
	_, err := Parse("1+")
	if err == nil {
		t.Fatalf("Parse should have failed")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if pe.Detailed() == "" {
		t.Fatalf("expected detailed error output")
	}
}

func TestCanonicalExpression(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"(1+2)*3", "(1+2)*3"},
		{"1+(2*3)", "1+2*3"},
		{"1/0", "1/0"},
	}
	for _, tc := range cases {
		if got := mustParse(t, tc.body).Expression(); got != tc.want {
			t.Fatalf("Expression(%q) = %q, want %q", tc.body, got, tc.want)
		}
	}
}
