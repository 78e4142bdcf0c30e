package parser_test

import (
	"testing"

	"github.com/dtlc-lang/dtlc/internal/ast"
	"github.com/dtlc-lang/dtlc/internal/lexer"
	"github.com/dtlc-lang/dtlc/internal/parser"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	stream := lexer.NewStream(lexer.New(src, "<test>"))
	p := parser.New(stream, "<test>")
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return mod
}

func TestParseSimpleDecl(t *testing.T) {
	mod := parseModule(t, `id: (T: Type(0)) -> T -> T = \T \x x;`)
	if len(mod.Decls) != 1 {
		t.Fatalf("want 1 decl, got %d", len(mod.Decls))
	}
	decl, ok := mod.Decls[0].(*ast.ModuleDecl)
	if !ok {
		t.Fatalf("want *ast.ModuleDecl, got %T", mod.Decls[0])
	}
	if ident, ok := decl.Lhs.(*ast.Identifier); !ok || ident.Name != "id" {
		t.Fatalf("want Lhs identifier \"id\", got %#v", decl.Lhs)
	}
	if decl.Type == nil || decl.Rhs == nil {
		t.Fatalf("want both Type and Rhs set, got Type=%#v Rhs=%#v", decl.Type, decl.Rhs)
	}
	if _, ok := decl.Type.(*ast.FnType); !ok {
		t.Fatalf("want Type to be *ast.FnType, got %T", decl.Type)
	}
}

// TestParseRuleHead covers a down-value rule head: `f(?x) = x;`.
func TestParseRuleHead(t *testing.T) {
	mod := parseModule(t, `f(?x) = x;`)
	decl := mod.Decls[0].(*ast.ModuleDecl)
	call, ok := decl.Lhs.(*ast.Call)
	if !ok {
		t.Fatalf("want Lhs to be *ast.Call (rule head), got %T", decl.Lhs)
	}
	if _, ok := call.Fn.(*ast.Identifier); !ok {
		t.Fatalf("want call.Fn to be *ast.Identifier, got %T", call.Fn)
	}
	pat, ok := call.Arg.(*ast.Pattern)
	if !ok || pat.Name != "x" {
		t.Fatalf("want call.Arg to be Pattern(x), got %#v", call.Arg)
	}
}

// TestParseCommaCallSugar covers `Level.max(0, 2)`: comma-separated
// arguments desugar to curried calls.
func TestParseCommaCallSugar(t *testing.T) {
	mod := parseModule(t, `Level.max(0, 2);`)
	stmt, ok := mod.Decls[0].(*ast.ExprStatement)
	if !ok {
		t.Fatalf("want *ast.ExprStatement, got %T", mod.Decls[0])
	}
	outer, ok := stmt.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("want outer *ast.Call, got %T", stmt.Expr)
	}
	outerArg, ok := outer.Arg.(*ast.NumberLit)
	if !ok || outerArg.Value != 2 {
		t.Fatalf("want outer arg 2, got %#v", outer.Arg)
	}
	inner, ok := outer.Fn.(*ast.Call)
	if !ok {
		t.Fatalf("want inner *ast.Call (curried), got %T", outer.Fn)
	}
	innerArg, ok := inner.Arg.(*ast.NumberLit)
	if !ok || innerArg.Value != 0 {
		t.Fatalf("want inner arg 0, got %#v", inner.Arg)
	}
	member, ok := inner.Fn.(*ast.MemberAccess)
	if !ok || member.Name != "max" {
		t.Fatalf("want Level.max member access, got %#v", inner.Fn)
	}
}

// TestParseAnnotatedLambda covers an annotated lambda argument:
// `\(x: Level) Level.succ(x)`.
func TestParseAnnotatedLambda(t *testing.T) {
	mod := parseModule(t, `(\(x: Level) Level.succ(x))(3);`)
	stmt := mod.Decls[0].(*ast.ExprStatement)
	outer, ok := stmt.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("want *ast.Call applying the lambda to 3, got %T", stmt.Expr)
	}
	if n, ok := outer.Arg.(*ast.NumberLit); !ok || n.Value != 3 {
		t.Fatalf("want arg 3, got %#v", outer.Arg)
	}
	lam, ok := outer.Fn.(*ast.Lambda)
	if !ok {
		t.Fatalf("want *ast.Lambda, got %T", outer.Fn)
	}
	if lam.ArgName != "x" {
		t.Fatalf("want ArgName x, got %q", lam.ArgName)
	}
	if ident, ok := lam.ArgType.(*ast.Identifier); !ok || ident.Name != "Level" {
		t.Fatalf("want ArgType Level, got %#v", lam.ArgType)
	}
}

// TestParseEquivSugar covers the `===` propositional-equality sugar:
// `eq: v === w;`.
func TestParseEquivSugar(t *testing.T) {
	mod := parseModule(t, `eq: v === w;`)
	decl := mod.Decls[0].(*ast.ModuleDecl)
	eq, ok := decl.Type.(*ast.EquivExpr)
	if !ok {
		t.Fatalf("want *ast.EquivExpr, got %T", decl.Type)
	}
	if lhs, ok := eq.Lhs.(*ast.Identifier); !ok || lhs.Name != "v" {
		t.Fatalf("want Lhs v, got %#v", eq.Lhs)
	}
	if rhs, ok := eq.Rhs.(*ast.Identifier); !ok || rhs.Name != "w" {
		t.Fatalf("want Rhs w, got %#v", eq.Rhs)
	}
}

// TestParseBareEqDoesNotProduceEquiv documents the scenario-5 surface-syntax
// resolution: a single `=` in type position is an ordinary assignment, not
// the `===` sugar, and produces no EquivExpr.
func TestParseBareEqDoesNotProduceEquiv(t *testing.T) {
	mod := parseModule(t, `eq: v = w;`)
	decl := mod.Decls[0].(*ast.ModuleDecl)
	if _, ok := decl.Type.(*ast.EquivExpr); ok {
		t.Fatalf("bare '=' must not parse as EquivExpr")
	}
	if decl.Rhs == nil {
		t.Fatalf("bare '=' after the colon belongs to the next decl field; want ModuleDecl.Rhs set")
	}
}

func TestParseErasedBinderFnType(t *testing.T) {
	mod := parseModule(t, `const: [T: Type(0)] -> [U: Type(0)] -> T -> U -> T = \x \_ x;`)
	decl := mod.Decls[0].(*ast.ModuleDecl)
	ft, ok := decl.Type.(*ast.FnType)
	if !ok || !ft.Erased || ft.ArgName != "T" {
		t.Fatalf("want erased [T: Type(0)] -> ..., got %#v", decl.Type)
	}
}
