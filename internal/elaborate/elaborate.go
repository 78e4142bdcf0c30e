// Package elaborate resolves a lowered HIR register array against the
// builtin universe and its own constraint solver until a fixed point (spec
// §4.5): every register alternately polled for UNCHANGED/CHANGED/DONE,
// interleaved with running the constraint solver to its own fixed point,
// until a full outer sweep makes no progress at all.
package elaborate

import (
	"github.com/dtlc-lang/dtlc/internal/config"
	"github.com/dtlc-lang/dtlc/internal/constraints"
	"github.com/dtlc-lang/dtlc/internal/diagnostics"
	"github.com/dtlc-lang/dtlc/internal/expr"
	"github.com/dtlc-lang/dtlc/internal/hir"
	"github.com/dtlc-lang/dtlc/internal/stringify"
)

// Elaborator owns one module's resolution state: the register cache, the
// user symbol tree, and the constraint solver backing it.
type Elaborator struct {
	Universe   *expr.Universe
	ModuleRoot *expr.Symbol
	Solver     *constraints.Solver

	arr      *hir.Array
	resolved map[hir.Ref]expr.Expression
	symbols  map[hir.Ref]*expr.Symbol
	done     map[hir.Ref]bool
	unknowns []*expr.Unknown
	aliases  map[string]*expr.Symbol

	diags []*diagnostics.Diagnostic
}

// New builds an Elaborator over the builtin universe, with a fresh "main"
// module symbol for top-level user declarations to live under.
func New(u *expr.Universe) *Elaborator {
	e := &Elaborator{
		Universe:   u,
		ModuleRoot: u.Root.Child("main", 0),
		Solver:     constraints.New(u),
		resolved:   make(map[hir.Ref]expr.Expression),
		symbols:    make(map[hir.Ref]*expr.Symbol),
		done:       make(map[hir.Ref]bool),
	}
	e.aliases = map[string]*expr.Symbol{
		config.TypeSymbolName:    u.Type,
		config.BuiltinSymbolName: u.Builtin,
		config.LevelSymbolName:   u.Level,
		config.NumberSymbolName:  u.Number,
		config.StringSymbolName: u.String,
		config.UntypedSymbolName: u.Untyped,
		config.ErrorTypeName:     u.ErrorType,
		config.VoidSymbolName:    u.VoidType,
		config.UnitSymbolName:    u.Unit,
		config.EqualSymbolName:   u.Equal,
	}
	return e
}

// Run resolves arr to a fixed point and returns every diagnostic raised
// (unresolved names, failed constraints, uninferred metavariables).
func (e *Elaborator) Run(arr *hir.Array) []*diagnostics.Diagnostic {
	e.arr = arr
	for {
		hirProgress := e.pollAll()
		solverProgress := e.Solver.Evaluate()
		if !hirProgress && !solverProgress {
			break
		}
	}
	e.reportUnresolved()
	e.reportFailedConstraints()
	e.reportUninferred()
	return e.diags
}

// Resolved returns the fully-resolved Expression for ref, or nil if it
// never reached DONE.
func (e *Elaborator) Resolved(ref hir.Ref) expr.Expression {
	return e.resolved[ref]
}

// Reduce normalizes v through the solver's evaluator (β/δ/η plus rules).
func (e *Elaborator) Reduce(v expr.Expression) expr.Expression {
	if v == nil {
		return nil
	}
	return e.Solver.Eval.Reduce(v)
}

// TypeOf asks the type solver for v's type.
func (e *Elaborator) TypeOf(v expr.Expression) expr.Expression {
	if v == nil {
		return nil
	}
	return e.Solver.GetType(v)
}

func (e *Elaborator) pollAll() bool {
	progress := false
	for i := 0; i < e.arr.Len(); i++ {
		ref := hir.Ref(i)
		if e.done[ref] {
			continue
		}
		switch e.poll(ref) {
		case actionDone:
			e.done[ref] = true
			progress = true
		case actionChanged:
			progress = true
		}
	}
	return progress
}

type action int

const (
	actionUnchanged action = iota
	actionChanged
	actionDone
)

func (e *Elaborator) poll(ref hir.Ref) action {
	reg := e.arr.At(ref)
	switch reg.Kind {
	case hir.KRoot:
		return actionDone

	case hir.KNumber:
		e.resolved[ref] = &expr.Number{Value: reg.NumberValue, IsLevel: reg.IsLevel}
		return actionDone

	case hir.KString:
		e.resolved[ref] = &expr.String{Value: reg.StringValue}
		return actionDone

	case hir.KSymbol:
		sym := e.symbols[ref]
		if sym == nil {
			sym = e.ModuleRoot.Child(reg.SymbolName, reg.SymbolFlags)
			e.symbols[ref] = sym
			e.resolved[ref] = sym
			return actionDone
		}
		return actionDone

	case hir.KSymbolType:
		sym := e.symbols[reg.TypeSymbol]
		typeExpr, ok := e.resolved[reg.TypeValue]
		if sym == nil || !ok {
			return actionUnchanged
		}
		if !sym.Flags.Has(expr.AllowDefType) {
			e.diags = append(e.diags, diagnostics.New(diagnostics.PhaseElaborate, diagnostics.ErrE003, reg.Range, sym.Name, "a type declaration"))
			return actionDone
		}
		// Normalizing here (rather than storing the raw expression) forces
		// any Equal application embedded in the declared type (the `===`
		// sugar) to fire its constraint-posting side effect immediately.
		sym.Type = e.Solver.Eval.Reduce(typeExpr)
		// Force the type's own type to be computed, so a structured
		// declared type (an FnType) posts its universe-level constraint
		// (see typesolver's *expr.FnType case) instead of sitting
		// uncomputed until something else happens to demand it.
		e.TypeOf(sym.Type)
		return actionDone

	case hir.KSymbolAssign:
		sym := e.symbols[reg.AssignSymbol]
		val, ok := e.resolved[reg.AssignValue]
		if sym == nil || !ok {
			return actionUnchanged
		}
		if !sym.Flags.Has(expr.AllowAssignment) {
			e.diags = append(e.diags, diagnostics.New(diagnostics.PhaseElaborate, diagnostics.ErrE003, reg.Range, sym.Name, "an assignment"))
			return actionDone
		}
		if sym.Type != nil {
			val = wrapErasedLambdas(val, sym.Type)
			propagateDeclaredType(val, sym.Type)
		}
		sym.Value = e.Solver.Eval.Reduce(val)
		if sym.Type != nil {
			e.Solver.AddEqualConstraint(sym.Type, e.TypeOf(sym.Value))
		}
		return actionDone

	case hir.KSymbolRule:
		sym := e.symbols[reg.RuleSymbol]
		lhs, lok := e.resolved[reg.RuleLhs]
		rhs, rok := e.resolved[reg.RuleRhs]
		if sym == nil || !lok || !rok {
			return actionUnchanged
		}
		rule := expr.Rule{Lhs: lhs, Rhs: rhs}
		if reg.RuleIsUpValue {
			sym.UpValues = append(sym.UpValues, rule)
		} else {
			sym.DownValues = append(sym.DownValues, rule)
		}
		return actionDone

	case hir.KUnknown:
		if u, ok := e.resolved[ref].(*expr.Unknown); ok {
			if reg.UnknownType == hir.NoRef || u.Type != nil {
				return actionDone
			}
			if t, ok := e.resolved[reg.UnknownType]; ok {
				u.Type = t
				return actionDone
			}
			return actionUnchanged
		}
		u := &expr.Unknown{IsPattern: reg.UnknownIsPattern}
		e.resolved[ref] = u
		e.unknowns = append(e.unknowns, u)
		if reg.UnknownType == hir.NoRef {
			return actionDone
		}
		return actionChanged

	case hir.KVariable:
		v, ok := e.resolved[ref].(*expr.Variable)
		if !ok {
			v = &expr.Variable{Name: reg.VariableName}
			e.resolved[ref] = v
			if reg.VariableType == hir.NoRef {
				return actionDone
			}
			if t, ok := e.resolved[reg.VariableType]; ok {
				v.DefaultType = t
				return actionDone
			}
			return actionChanged
		}
		if v.DefaultType != nil || reg.VariableType == hir.NoRef {
			return actionDone
		}
		if t, ok := e.resolved[reg.VariableType]; ok {
			v.DefaultType = t
			return actionDone
		}
		return actionUnchanged

	case hir.KFnType:
		input, iok := e.resolved[reg.FnTypeInput]
		if !iok {
			return actionUnchanged
		}
		var argVar *expr.Variable
		if reg.FnTypeArg != hir.NoRef {
			v, ok := e.resolved[reg.FnTypeArg].(*expr.Variable)
			if !ok {
				return actionUnchanged
			}
			argVar = v
		}
		output, ook := e.resolved[reg.FnTypeOutput]
		if !ook {
			return actionUnchanged
		}
		e.resolved[ref] = &expr.FnType{InputType: input, Arg: argVar, OutputType: output, Color: reg.Color}
		return actionDone

	case hir.KLambda:
		var argVar *expr.Variable
		if reg.LambdaArg != hir.NoRef {
			v, ok := e.resolved[reg.LambdaArg].(*expr.Variable)
			if !ok {
				return actionUnchanged
			}
			argVar = v
		}
		body, bok := e.resolved[reg.LambdaBody]
		if !bok {
			return actionUnchanged
		}
		var argType expr.Expression
		if reg.LambdaArgType != hir.NoRef {
			t, ok := e.resolved[reg.LambdaArgType]
			if !ok {
				return actionUnchanged
			}
			argType = t
		}
		e.resolved[ref] = &expr.Lambda{Arg: argVar, ArgType: argType, Body: body, Color: reg.Color}
		return actionDone

	case hir.KCall:
		fn, fok := e.resolved[reg.CallFn]
		arg, aok := e.resolved[reg.CallArg]
		if !fok || !aok {
			return actionUnchanged
		}
		fn = e.coerceErasedColor(fn, reg.Color)
		// A rule-head pattern call (`f(?x) = ...`) binds a fresh Variable
		// structurally; it isn't an applied expression with an expected
		// argument type to check or propagate.
		if ft, ok := expr.Resolve(e.TypeOf(fn)).(*expr.FnType); ok && !reg.CallIsPattern {
			if hole, isHole := expr.Resolve(arg).(*expr.Unknown); isHole && hole.Value == nil {
				// arg has no value of its own yet: propagate the expected
				// type into the hole directly instead of posting a
				// constraint against it.
				if hole.Type == nil {
					hole.Type = ft.InputType
				}
			} else {
				e.Solver.AddEqualConstraint(e.TypeOf(arg), ft.InputType)
			}
		}
		e.resolved[ref] = &expr.Call{Fn: fn, Arg: arg, Color: reg.Color}
		return actionDone

	case hir.KMemberAccess:
		lhs, ok := e.resolved[reg.MemberLhs]
		if !ok {
			return actionUnchanged
		}
		sym, ok := expr.Resolve(lhs).(*expr.Symbol)
		if !ok {
			// lhs resolved to a non-symbol: member access is meaningless.
			e.diags = append(e.diags, diagnostics.New(diagnostics.PhaseElaborate, diagnostics.ErrW001, reg.Range, "."+reg.MemberName))
			e.resolved[ref] = lhs
			return actionDone
		}
		child, ok := sym.SubSymbols[reg.MemberName]
		if !ok {
			e.diags = append(e.diags, diagnostics.New(diagnostics.PhaseElaborate, diagnostics.ErrW001, reg.Range, sym.Name+"."+reg.MemberName))
			e.resolved[ref] = sym
			return actionDone
		}
		e.resolved[ref] = child
		return actionDone

	case hir.KNameRef:
		if alias, ok := e.aliases[reg.NameRefName]; ok {
			e.resolved[ref] = alias
			return actionDone
		}
		if sym, ok := e.ModuleRoot.SubSymbols[reg.NameRefName]; ok {
			e.resolved[ref] = sym
			return actionDone
		}
		return actionUnchanged

	default:
		return actionDone
	}
}

// coerceErasedColor auto-inserts a fresh erased (Color 1) application for
// every leading erased binder in fn's inferred type that the caller didn't
// supply.
func (e *Elaborator) coerceErasedColor(fn expr.Expression, callColor int) expr.Expression {
	if callColor != 0 {
		return fn
	}
	for {
		ft, ok := expr.Resolve(e.TypeOf(fn)).(*expr.FnType)
		if !ok || ft.Color != 1 {
			return fn
		}
		hole := e.Solver.NewUnknown()
		fn = &expr.Call{Fn: fn, Arg: hole, Color: 1}
	}
}

// wrapErasedLambdas wraps value in a synthetic erased Lambda for every
// leading Color-1 binder of declaredType that value itself doesn't already
// supply a Lambda for (a user source lambda is always Color 0). A value
// written for `[T: Type(0)] -> [U: Type(0)] -> T -> U -> T` with only the
// two explicit non-erased parameters gets two synthetic outer binders
// inserted, for a combined lambda depth of 4.
func wrapErasedLambdas(value expr.Expression, declaredType expr.Expression) expr.Expression {
	ft, ok := expr.Resolve(declaredType).(*expr.FnType)
	if !ok || ft.Color != 1 {
		return value
	}
	inner := wrapErasedLambdas(value, ft.OutputType)
	return &expr.Lambda{Arg: ft.Arg, ArgType: ft.InputType, Body: inner, Color: 1}
}

// propagateDeclaredType checks an unannotated lambda literal against a
// declared Pi-type in lock-step, filling in each binder's type from the
// signature instead of leaving it for typesolver to (fail to) infer from
// the body alone. Without this, reconciling a bare "\x \y y"-style value
// against its declared type would compare the declared binder types
// against holes that never resolve.
func propagateDeclaredType(value expr.Expression, declaredType expr.Expression) {
	lam, ok := expr.Resolve(value).(*expr.Lambda)
	if !ok {
		return
	}
	ft, ok := expr.Resolve(declaredType).(*expr.FnType)
	if !ok {
		return
	}
	if lam.ArgType == nil {
		lam.ArgType = ft.InputType
	}
	if lam.Arg != nil && lam.Arg.DefaultType == nil {
		lam.Arg.DefaultType = ft.InputType
	}
	rest := ft.OutputType
	if ft.Arg != nil && lam.Arg != nil {
		if r, ok := expr.ReplaceScopeVariables(ft.OutputType, map[*expr.Variable]expr.Expression{ft.Arg: lam.Arg}, nil); ok {
			rest = r
		}
	}
	propagateDeclaredType(lam.Body, rest)
}

func (e *Elaborator) reportUnresolved() {
	for i := 0; i < e.arr.Len(); i++ {
		ref := hir.Ref(i)
		if e.done[ref] {
			continue
		}
		reg := e.arr.At(ref)
		if reg.Kind == hir.KNameRef {
			e.diags = append(e.diags, diagnostics.New(diagnostics.PhaseElaborate, diagnostics.ErrW001, reg.Range, reg.NameRefName))
		}
	}
}

func (e *Elaborator) reportFailedConstraints() {
	for _, c := range e.Solver.Errored() {
		e.diags = append(e.diags, diagnostics.UnresolvedConstraint(c.String()))
	}
	for _, c := range e.Solver.Active() {
		e.diags = append(e.diags, diagnostics.UnresolvedConstraint(c.String()))
	}
}

func (e *Elaborator) reportUninferred() {
	for _, u := range e.unknowns {
		if u.Value == nil {
			name := u.DisplayName
			if name == "" {
				name = stringify.Stringify(u)
			}
			e.diags = append(e.diags, diagnostics.Uninferred(name))
		}
	}
}
