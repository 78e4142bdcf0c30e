// Package unit runs six end-to-end elaboration scenarios through the full
// lex/parse/lower/elaborate pipeline.
package unit

import (
	"testing"

	"github.com/dtlc-lang/dtlc/internal/config"
	"github.com/dtlc-lang/dtlc/internal/diagnostics"
	"github.com/dtlc-lang/dtlc/internal/elaborate"
	"github.com/dtlc-lang/dtlc/internal/expr"
	"github.com/dtlc-lang/dtlc/internal/lexer"
	"github.com/dtlc-lang/dtlc/internal/lower"
	"github.com/dtlc-lang/dtlc/internal/parser"
	"github.com/dtlc-lang/dtlc/internal/pipeline"
	"github.com/dtlc-lang/dtlc/internal/stringify"
)

func run(t *testing.T, src string) *pipeline.PipelineContext {
	t.Helper()
	ctx := pipeline.NewPipelineContext(src, "<test>", false)
	pl := pipeline.New(&lexer.Processor{}, &parser.Processor{}, &lower.Processor{}, &elaborate.Processor{})
	return pl.Run(ctx)
}

func namedDecl(ctx *pipeline.PipelineContext, name string) *expr.Symbol {
	if ctx.ModuleRoot == nil {
		return nil
	}
	return ctx.ModuleRoot.SubSymbols[name]
}

// Scenario 1: id: (T: Type(0)) -> T -> T = \T \x x
func TestScenario1Identity(t *testing.T) {
	ctx := run(t, `id: (T: Type(0)) -> T -> T = \T \x x;`)
	if len(ctx.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", ctx.Diagnostics)
	}
	id := namedDecl(ctx, "id")
	if id == nil || id.Value == nil || id.Type == nil {
		t.Fatalf("want id resolved with a value and a type, got %#v", id)
	}
	if got, want := stringify.Stringify(id.Type), "(T: Type(0)) -> T -> T"; got != want {
		t.Fatalf("id.type: got %q, want %q", got, want)
	}
	if got, want := stringify.Stringify(id.Value), `\T \x x`; got != want {
		t.Fatalf("id.value: got %q, want %q", got, want)
	}
}

// Scenario 2: const: [T: Type(0)] -> [U: Type(0)] -> T -> U -> T = \x \_ x
// Both erased parameters are inferred and the elaborated value is a lambda
// of depth 4 (two synthesized erased binders wrapping the user's two).
func TestScenario2ConstWithErasedInference(t *testing.T) {
	ctx := run(t, `const: [T: Type(0)] -> [U: Type(0)] -> T -> U -> T = \x \_ x;`)
	if len(ctx.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", ctx.Diagnostics)
	}
	c := namedDecl(ctx, "const")
	if c == nil || c.Value == nil {
		t.Fatalf("want const resolved, got %#v", c)
	}
	depth := 0
	cur := c.Value
	for {
		lam, ok := expr.Resolve(cur).(*expr.Lambda)
		if !ok {
			break
		}
		depth++
		cur = lam.Body
	}
	if depth != 4 {
		t.Fatalf("want a lambda of depth 4, got depth %d (%s)", depth, stringify.Stringify(c.Value))
	}
}

// Scenario 3: f(?x) = x, then f(5) reduces to 5.
func TestScenario3DownValueRule(t *testing.T) {
	ctx := run(t, "f(?x) = x;\nf(5);")
	if len(ctx.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", ctx.Diagnostics)
	}
	if len(ctx.TopLevelResults) != 1 {
		t.Fatalf("want 1 top-level result, got %d", len(ctx.TopLevelResults))
	}
	res := ctx.TopLevelResults[0]
	n, ok := expr.Resolve(res.Value).(*expr.Number)
	if !ok || n.Value != 5 {
		t.Fatalf("f(5): want 5, got %s", stringify.Stringify(res.Value))
	}
}

// Scenario 4: Level.max(0, 2) reduces to the level literal 2.
func TestScenario4LevelMax(t *testing.T) {
	ctx := run(t, "Level.max(0, 2);")
	if len(ctx.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", ctx.Diagnostics)
	}
	res := ctx.TopLevelResults[0]
	n, ok := expr.Resolve(res.Value).(*expr.Number)
	if !ok || !n.IsLevel || n.Value != 2 {
		t.Fatalf("Level.max(0, 2): want level 2, got %s", stringify.Stringify(res.Value))
	}
}

// Scenario 5: T: Type(0); v: T; w: T; eq: v === w — distinct rigid symbols
// never unify, so the Equal constraint is left unresolved.
func TestScenario5UnresolvedEquivalence(t *testing.T) {
	ctx := run(t, "T: Type(0);\nv: T;\nw: T;\neq: v === w;")
	if len(ctx.Diagnostics) == 0 {
		t.Fatalf("want an UnresolvedConstraint diagnostic, got none")
	}
	found := false
	for _, d := range ctx.Diagnostics {
		if d.Code == diagnostics.ErrE001 {
			found = true
		}
	}
	if !found {
		t.Fatalf("want an UnresolvedConstraint diagnostic among %v", ctx.Diagnostics)
	}
}

// Scenario 6: (\(x: Level) Level.succ(x))(3) normalizes to the level 4.
func TestScenario6AnnotatedLambdaApplication(t *testing.T) {
	ctx := run(t, `(\(x: Level) Level.succ(x))(3);`)
	if len(ctx.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", ctx.Diagnostics)
	}
	res := ctx.TopLevelResults[0]
	n, ok := expr.Resolve(res.Value).(*expr.Number)
	if !ok || !n.IsLevel || n.Value != 4 {
		t.Fatalf("want level 4, got %s", stringify.Stringify(res.Value))
	}
}

func TestMain(m *testing.M) {
	config.IsTestMode = true
	m.Run()
}
