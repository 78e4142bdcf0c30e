package lower_test

import (
	"testing"

	"github.com/dtlc-lang/dtlc/internal/hir"
	"github.com/dtlc-lang/dtlc/internal/lexer"
	"github.com/dtlc-lang/dtlc/internal/lower"
	"github.com/dtlc-lang/dtlc/internal/parser"
)

func lowerSource(t *testing.T, src string) *hir.Array {
	t.Helper()
	stream := lexer.NewStream(lexer.New(src, "<test>"))
	p := parser.New(stream, "<test>")
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	l := lower.New("<test>")
	l.Lower(mod)
	if errs := l.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected lowering errors: %v", errs)
	}
	return l.Array()
}

// TestLowerRuleHeadUsesVariableNotUnknown is a regression test: rule-head
// patterns (`?x`) must lower to KVariable registers, never KUnknown ones,
// since expr.MatchPattern's matchInto rejects any Unknown in pattern
// position outright.
func TestLowerRuleHeadUsesVariableNotUnknown(t *testing.T) {
	arr := lowerSource(t, "f(?x) = x;")

	var sawPatternCall, sawKUnknownAsPatternArg bool
	for i := 0; i < arr.Len(); i++ {
		reg := arr.At(hir.Ref(i))
		if reg.Kind != hir.KCall || !reg.CallIsPattern {
			continue
		}
		sawPatternCall = true
		argReg := arr.At(reg.CallArg)
		if argReg.Kind == hir.KUnknown {
			sawKUnknownAsPatternArg = true
		}
		if argReg.Kind != hir.KVariable {
			t.Fatalf("rule-head pattern argument: want KVariable, got %v", argReg.Kind)
		}
	}
	if !sawPatternCall {
		t.Fatalf("expected at least one CallIsPattern register for f(?x)")
	}
	if sawKUnknownAsPatternArg {
		t.Fatalf("rule-head pattern argument must never be a KUnknown register")
	}
}

// TestLowerNumberLitAlwaysIsLevel documents that every integer literal
// lowers with IsLevel set, since the grammar has no distinct level-literal
// token.
func TestLowerNumberLitAlwaysIsLevel(t *testing.T) {
	arr := lowerSource(t, "Level.max(0, 2);")
	found := 0
	for i := 0; i < arr.Len(); i++ {
		reg := arr.At(hir.Ref(i))
		if reg.Kind == hir.KNumber {
			found++
			if !reg.IsLevel {
				t.Fatalf("number literal %d: want IsLevel true", reg.NumberValue)
			}
		}
	}
	if found != 2 {
		t.Fatalf("want 2 number literals, found %d", found)
	}
}

// TestLowerAnnotatedLambdaThreadsArgType covers scenario 6's
// `\(x: Level) Level.succ(x)`: the lambda's argument type must be lowered
// and threaded onto both the KVariable and the KLambda registers.
func TestLowerAnnotatedLambdaThreadsArgType(t *testing.T) {
	arr := lowerSource(t, `(\(x: Level) Level.succ(x))(3);`)

	var sawLambdaWithArgType bool
	for i := 0; i < arr.Len(); i++ {
		reg := arr.At(hir.Ref(i))
		if reg.Kind != hir.KLambda {
			continue
		}
		if reg.LambdaArgType == hir.NoRef {
			continue
		}
		sawLambdaWithArgType = true
		varReg := arr.At(reg.LambdaArg)
		if varReg.VariableType != reg.LambdaArgType {
			t.Fatalf("lambda's bound variable must share the lambda's ArgType ref")
		}
	}
	if !sawLambdaWithArgType {
		t.Fatalf("expected a KLambda register with a non-NoRef LambdaArgType")
	}
}
