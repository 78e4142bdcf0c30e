package stringify_test

import (
	"testing"

	"github.com/dtlc-lang/dtlc/internal/expr"
	"github.com/dtlc-lang/dtlc/internal/stringify"
)

// TestStringifyScenario1 checks the exact round-trippable rendering for
// `id: (T: Type(0)) -> T -> T = \T \x x`.
func TestStringifyScenario1(t *testing.T) {
	u := expr.NewUniverse()
	typeOf0 := &expr.Call{Fn: u.Type, Arg: &expr.Number{Value: 0, IsLevel: true}}

	tVar := &expr.Variable{Name: "T"}
	fnType := &expr.FnType{
		InputType: typeOf0,
		Arg:       tVar,
		OutputType: &expr.FnType{
			InputType:  tVar,
			OutputType: tVar,
		},
	}
	if got, want := stringify.Stringify(fnType), "(T: Type(0)) -> T -> T"; got != want {
		t.Fatalf("fn-type: got %q, want %q", got, want)
	}

	xVar := &expr.Variable{Name: "x"}
	lambda := &expr.Lambda{
		Arg: tVar,
		Body: &expr.Lambda{
			Arg:  xVar,
			Body: xVar,
		},
	}
	if got, want := stringify.Stringify(lambda), `\T \x x`; got != want {
		t.Fatalf("lambda: got %q, want %q", got, want)
	}
}

func TestStringifyErasedCallAndFnType(t *testing.T) {
	f := expr.NewSymbol("f", 0)
	call := &expr.Call{Fn: f, Arg: &expr.Number{Value: 1}, Color: 1}
	if got, want := stringify.Stringify(call), "f[1]"; got != want {
		t.Fatalf("erased call: got %q, want %q", got, want)
	}

	tVar := &expr.Variable{Name: "T"}
	ft := &expr.FnType{InputType: f, Arg: tVar, OutputType: tVar, Color: 1}
	if got, want := stringify.Stringify(ft), "[T: f] -> T"; got != want {
		t.Fatalf("erased fn-type: got %q, want %q", got, want)
	}
}

func TestStringifyQualifiedSymbolName(t *testing.T) {
	u := expr.NewUniverse()
	// u.Level hangs off u.Builtin (not directly off root), so the
	// qualified name carries the "builtin" segment too.
	if got, want := stringify.Stringify(u.Succ), "builtin.Level.succ"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStringifyUnresolvedUnknown(t *testing.T) {
	unknown := &expr.Unknown{}
	got := stringify.Stringify(unknown)
	if got != "?u0" {
		t.Fatalf("unresolved Unknown: got %q, want ?u0", got)
	}
}
