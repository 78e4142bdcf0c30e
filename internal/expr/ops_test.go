package expr_test

import (
	"testing"

	"github.com/dtlc-lang/dtlc/internal/expr"
)

// A down-value rule head like `f(?x)` must be represented with a *Variable
// in pattern position: MatchPattern binds a Variable to whatever it meets,
// but an Unknown can never occupy pattern position at all (regression test
// for a lowering bug where rule heads were built from Unknowns instead).
func TestMatchPatternVariableBinds(t *testing.T) {
	x := &expr.Variable{Name: "x"}
	five := &expr.Number{Value: 5}

	out, ok := expr.MatchPattern(x, five)
	if !ok {
		t.Fatalf("expected Variable pattern to match, got ok=false")
	}
	if out[x] != expr.Expression(five) {
		t.Fatalf("expected x bound to 5, got %#v", out[x])
	}
}

func TestMatchPatternUnknownNeverMatches(t *testing.T) {
	u := &expr.Unknown{}
	five := &expr.Number{Value: 5}

	if _, ok := expr.MatchPattern(u, five); ok {
		t.Fatalf("expected an Unknown in pattern position to always fail the match")
	}
}

func TestMatchPatternCallShape(t *testing.T) {
	f := expr.NewSymbol("f", 0)
	x := &expr.Variable{Name: "x"}
	pattern := &expr.Call{Fn: f, Arg: x, Color: 0}
	call := &expr.Call{Fn: f, Arg: &expr.Number{Value: 5}, Color: 0}

	out, ok := expr.MatchPattern(pattern, call)
	if !ok {
		t.Fatalf("expected f(?x) to match f(5)")
	}
	n, ok := out[x].(*expr.Number)
	if !ok || n.Value != 5 {
		t.Fatalf("expected x bound to 5, got %#v", out[x])
	}
}

func TestMatchPatternSameVariableMustRepeat(t *testing.T) {
	x := &expr.Variable{Name: "x"}
	five := &expr.Number{Value: 5}
	six := &expr.Number{Value: 6}
	f := expr.NewSymbol("f", 0)

	// f(?x, ?x) as Call(Call(f, x), x) — second occurrence must match the
	// first binding, not rebind.
	pattern := &expr.Call{Fn: &expr.Call{Fn: f, Arg: x, Color: 0}, Arg: x, Color: 0}

	matching := &expr.Call{Fn: &expr.Call{Fn: f, Arg: five, Color: 0}, Arg: five, Color: 0}
	if _, ok := expr.MatchPattern(pattern, matching); !ok {
		t.Fatalf("expected repeated pattern variable with equal values to match")
	}

	mismatching := &expr.Call{Fn: &expr.Call{Fn: f, Arg: five, Color: 0}, Arg: six, Color: 0}
	if _, ok := expr.MatchPattern(pattern, mismatching); ok {
		t.Fatalf("expected repeated pattern variable with differing values to fail")
	}
}

func TestSameQAlphaRenamesBinders(t *testing.T) {
	a := &expr.Variable{Name: "a"}
	b := &expr.Variable{Name: "b"}
	lamA := &expr.Lambda{Arg: a, Body: a, Color: 0}
	lamB := &expr.Lambda{Arg: b, Body: b, Color: 0}

	if !expr.SameQ(lamA, lamB) {
		t.Fatalf("expected \\a a and \\b b to be alpha-equivalent")
	}
}

func TestResolveFollowsUnknownChain(t *testing.T) {
	inner := &expr.Number{Value: 1}
	u2 := &expr.Unknown{Value: inner}
	u1 := &expr.Unknown{Value: u2}

	if got := expr.Resolve(u1); got != expr.Expression(inner) {
		t.Fatalf("expected Resolve to follow the chain to %#v, got %#v", inner, got)
	}
}
