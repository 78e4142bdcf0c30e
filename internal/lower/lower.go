// Package lower translates an *ast.Module into an HIR register array.
package lower

import (
	"github.com/dtlc-lang/dtlc/internal/ast"
	"github.com/dtlc-lang/dtlc/internal/diagnostics"
	"github.com/dtlc-lang/dtlc/internal/expr"
	"github.com/dtlc-lang/dtlc/internal/hir"
	"github.com/dtlc-lang/dtlc/internal/token"
)

// Lowerer walks one module's declarations into one HIR Array.
type Lowerer struct {
	arr     *hir.Array
	file    string
	scope   map[string]hir.Ref // top-level symbol name -> KSymbol ref
	vars    map[string]hir.Ref // lexical variable name -> KVariable ref
	errs    []*diagnostics.Diagnostic
	rootRef hir.Ref

	// TopLevelExprs holds, in source order, the HIR refs of bare
	// expression statements.
	TopLevelExprs []hir.Ref
}

// New returns a Lowerer for a single source file.
func New(file string) *Lowerer {
	l := &Lowerer{arr: &hir.Array{}, file: file, scope: map[string]hir.Ref{}, vars: map[string]hir.Ref{}}
	l.rootRef = l.arr.Append(hir.Register{Kind: hir.KRoot})
	return l
}

func (l *Lowerer) Array() *hir.Array                { return l.arr }
func (l *Lowerer) Errors() []*diagnostics.Diagnostic { return l.errs }

// Lower lowers every declaration of mod, in two passes: the first
// pre-registers every top-level symbol name so forward references resolve
// regardless of declaration order, the second lowers bodies.
func (l *Lowerer) Lower(mod *ast.Module) {
	for _, d := range mod.Decls {
		decl, ok := d.(*ast.ModuleDecl)
		if !ok {
			continue
		}
		name, _, isRule := unwindHead(decl.Lhs)
		if name == "" {
			continue
		}
		l.ensureSymbol(name, isRule)
	}
	for _, d := range mod.Decls {
		switch n := d.(type) {
		case *ast.ModuleDecl:
			l.lowerDecl(n)
		case *ast.ExprStatement:
			ref := l.lowerExpr(n.Expr)
			l.TopLevelExprs = append(l.TopLevelExprs, ref)
		}
	}
}

func (l *Lowerer) ensureSymbol(name string, isRule bool) hir.Ref {
	if ref, ok := l.scope[name]; ok {
		return ref
	}
	flags := expr.AllowDefType | expr.AllowAssignment
	if isRule {
		flags = expr.AllowDownValue | expr.AllowUpValue
	}
	ref := l.arr.Append(hir.Register{Kind: hir.KSymbol, SymbolName: name, SymbolParent: hir.NoRef, SymbolFlags: flags})
	l.scope[name] = ref
	return ref
}

func (l *Lowerer) lowerDecl(n *ast.ModuleDecl) {
	name, pats, isRule := unwindHead(n.Lhs)
	if name == "" {
		l.err(diagnostics.ErrW002, n.Lhs.Range().Start, "declaration head must be an identifier")
		return
	}
	symRef := l.scope[name]

	if isRule {
		if n.Rhs == nil {
			l.err(diagnostics.ErrW002, n.Pos.Start, "rule declaration requires a right-hand side")
			return
		}
		lhsRef, restore := l.lowerRuleHead(symRef, pats)
		rhsRef := l.lowerExpr(n.Rhs)
		restore()
		l.arr.Append(hir.Register{Kind: hir.KSymbolRule, RuleSymbol: symRef, RuleLhs: lhsRef, RuleRhs: rhsRef})
		return
	}

	if n.Type != nil {
		var typeRef hir.Ref
		if eq, ok := n.Type.(*ast.EquivExpr); ok {
			typeRef = l.lowerEquiv(eq)
		} else {
			typeRef = l.lowerExpr(n.Type)
		}
		l.arr.Append(hir.Register{Kind: hir.KSymbolType, TypeSymbol: symRef, TypeValue: typeRef})
	}
	if n.Rhs != nil {
		rhsRef := l.lowerExpr(n.Rhs)
		l.arr.Append(hir.Register{Kind: hir.KSymbolAssign, AssignSymbol: symRef, AssignValue: rhsRef})
	}
}

// unwindHead splits a declaration's LHS into its base identifier and, if
// it is a curried chain of Pattern applications (a rule head like
// `f(?x) = x`), the patterns in left-to-right source order.
func unwindHead(n ast.Node) (name string, pats []*ast.Pattern, isRule bool) {
	cur := n
	var collected []*ast.Pattern
	for {
		call, ok := cur.(*ast.Call)
		if !ok {
			break
		}
		pat, ok := call.Arg.(*ast.Pattern)
		if !ok {
			return "", nil, false
		}
		collected = append(collected, pat)
		cur = call.Fn
	}
	ident, ok := cur.(*ast.Identifier)
	if !ok {
		return "", nil, false
	}
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return ident.Name, collected, len(collected) > 0
}

// lowerRuleHead builds the pattern-match LHS `sym(pat1)(pat2)...` as a Call
// chain over fresh KVariable registers — MatchPattern only binds *Variable
// nodes (an Unknown in pattern position always fails the match) — and binds
// each pattern's name into scope so the rule's RHS can refer to it. The
// caller must invoke the returned restore func after lowering the RHS.
func (l *Lowerer) lowerRuleHead(symRef hir.Ref, pats []*ast.Pattern) (hir.Ref, func()) {
	cur := symRef
	var restores []func()
	for _, pat := range pats {
		varRef := l.arr.Append(hir.Register{Kind: hir.KVariable, VariableName: pat.Name, VariableType: hir.NoRef, Range: pat.Pos.Start})
		restores = append(restores, l.pushVar(pat.Name, varRef))
		cur = l.arr.Append(hir.Register{Kind: hir.KCall, CallFn: cur, CallArg: varRef, Color: 0, CallIsPattern: true, Range: pat.Pos.Start})
	}
	return cur, func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}
}

func (l *Lowerer) lowerEquiv(eq *ast.EquivExpr) hir.Ref {
	eqRef := l.arr.Append(hir.Register{Kind: hir.KNameRef, NameRefName: "Equal", Range: eq.Pos.Start})
	e1 := l.lowerExpr(eq.Lhs)
	call1 := l.arr.Append(hir.Register{Kind: hir.KCall, CallFn: eqRef, CallArg: e1, Color: 0, Range: eq.Pos.Start})
	e2 := l.lowerExpr(eq.Rhs)
	return l.arr.Append(hir.Register{Kind: hir.KCall, CallFn: call1, CallArg: e2, Color: 0, Range: eq.Pos.Start})
}

func (l *Lowerer) lowerExpr(n ast.Node) hir.Ref {
	switch x := n.(type) {
	case *ast.Identifier:
		return l.lowerIdentifier(x)
	case *ast.NumberLit:
		// The grammar has no distinct level-literal token, so every
		// integer literal lowers as a universe level, including literals
		// that are not Level.max/Level.succ arguments.
		return l.arr.Append(hir.Register{Kind: hir.KNumber, NumberValue: x.Value, IsLevel: true, Range: x.Pos.Start})
	case *ast.StringLit:
		return l.arr.Append(hir.Register{Kind: hir.KString, StringValue: x.Value, Range: x.Pos.Start})
	case *ast.FnType:
		return l.lowerFnType(x)
	case *ast.Lambda:
		return l.lowerLambda(x)
	case *ast.Call:
		return l.lowerCall(x)
	case *ast.MemberAccess:
		return l.lowerMemberAccess(x)
	case *ast.Pattern:
		l.err(diagnostics.ErrW003, x.Pos.Start, x.Name)
		return l.arr.Append(hir.Register{Kind: hir.KUnknown, UnknownType: hir.NoRef, UnknownIsPattern: false, Range: x.Pos.Start})
	default:
		return l.arr.Append(hir.Register{Kind: hir.KUnknown, UnknownType: hir.NoRef})
	}
}

func (l *Lowerer) lowerIdentifier(x *ast.Identifier) hir.Ref {
	if ref, ok := l.vars[x.Name]; ok {
		return ref
	}
	if ref, ok := l.scope[x.Name]; ok {
		return ref
	}
	// Neither a bound variable nor an already-declared top-level symbol:
	// could be a forward reference or an ambient builtin alias. Both
	// resolve later, against the full symbol table.
	return l.arr.Append(hir.Register{Kind: hir.KNameRef, NameRefName: x.Name, Range: x.Pos.Start})
}

func (l *Lowerer) lowerFnType(x *ast.FnType) hir.Ref {
	inputRef := l.lowerExpr(x.ArgType)
	argRef := hir.NoRef
	var restore func()
	if x.ArgName != "" {
		varRef := l.arr.Append(hir.Register{Kind: hir.KVariable, VariableName: x.ArgName, VariableType: inputRef, Range: x.Pos.Start})
		argRef = varRef
		restore = l.pushVar(x.ArgName, varRef)
	}
	color := 0
	if x.Erased {
		color = 1
	}
	outputRef := l.lowerExpr(x.Output)
	if restore != nil {
		restore()
	}
	return l.arr.Append(hir.Register{Kind: hir.KFnType, FnTypeInput: inputRef, FnTypeArg: argRef, FnTypeOutput: outputRef, Color: color, Range: x.Pos.Start})
}

func (l *Lowerer) lowerLambda(x *ast.Lambda) hir.Ref {
	argRef := hir.NoRef
	argTypeRef := hir.NoRef
	var restore func()
	if x.ArgType != nil {
		argTypeRef = l.lowerExpr(x.ArgType)
	}
	if x.ArgName != "" {
		varRef := l.arr.Append(hir.Register{Kind: hir.KVariable, VariableName: x.ArgName, VariableType: argTypeRef, Range: x.Pos.Start})
		argRef = varRef
		restore = l.pushVar(x.ArgName, varRef)
	}
	bodyRef := l.lowerExpr(x.Body)
	if restore != nil {
		restore()
	}
	return l.arr.Append(hir.Register{Kind: hir.KLambda, LambdaArg: argRef, LambdaArgType: argTypeRef, LambdaBody: bodyRef, Range: x.Pos.Start})
}

func (l *Lowerer) lowerCall(x *ast.Call) hir.Ref {
	fnRef := l.lowerExpr(x.Fn)
	argRef := l.lowerExpr(x.Arg)
	return l.arr.Append(hir.Register{Kind: hir.KCall, CallFn: fnRef, CallArg: argRef, Color: x.Color, Range: x.Pos.Start})
}

func (l *Lowerer) lowerMemberAccess(x *ast.MemberAccess) hir.Ref {
	lhsRef := l.lowerExpr(x.Lhs)
	return l.arr.Append(hir.Register{Kind: hir.KMemberAccess, MemberLhs: lhsRef, MemberName: x.Name, Range: x.Pos.Start})
}

func (l *Lowerer) pushVar(name string, ref hir.Ref) func() {
	old, had := l.vars[name]
	l.vars[name] = ref
	return func() {
		if had {
			l.vars[name] = old
		} else {
			delete(l.vars, name)
		}
	}
}

func (l *Lowerer) err(code diagnostics.ErrorCode, tok token.Token, args ...interface{}) {
	l.errs = append(l.errs, diagnostics.New(diagnostics.PhaseLower, code, tok, args...).WithFile(l.file))
}
