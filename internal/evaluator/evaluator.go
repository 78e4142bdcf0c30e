// Package evaluator reduces expressions to head normal form via
// δ-expansion, β-reduction, built-in primitives, and user rewrite rules.
package evaluator

import "github.com/dtlc-lang/dtlc/internal/expr"

// Evaluator normalizes expressions under three independently toggleable
// reductions, all on by default.
type Evaluator struct {
	Universe *expr.Universe

	OwnValue     bool // unfold Symbol.Value
	DownValue    bool // apply rewrite rules / builtin primitives
	ExpandLambda bool // β-reduce

	// PostEqualFunc lets a built-in primitive (the `===` sugar's Equal
	// symbol) post an Equal constraint as a side effect. The constraint
	// solver wires this to its own AddEqualConstraint when it constructs
	// the Evaluator it drives (internal/constraints).
	PostEqualFunc func(e1, e2 expr.Expression)
}

// New returns an Evaluator with all three toggles on.
func New(u *expr.Universe) *Evaluator {
	return &Evaluator{Universe: u, OwnValue: true, DownValue: true, ExpandLambda: true}
}

// PostEqual implements expr.Reducer.
func (ev *Evaluator) PostEqual(e1, e2 expr.Expression) {
	if ev.PostEqualFunc != nil {
		ev.PostEqualFunc(e1, e2)
	}
}

// Reduce implements expr.Reducer and is the evaluator's public entry point.
func (ev *Evaluator) Reduce(e expr.Expression) expr.Expression {
	switch x := e.(type) {
	case *expr.Symbol:
		if ev.OwnValue && x.Value != nil {
			return ev.Reduce(x.Value)
		}
		return x
	case *expr.Unknown:
		if x.Value != nil {
			return ev.Reduce(x.Value)
		}
		return x
	case *expr.Variable:
		return x
	case *expr.Number, *expr.String:
		return e
	case *expr.FnType:
		return &expr.FnType{
			InputType:  ev.Reduce(x.InputType),
			Arg:        x.Arg,
			OutputType: ev.Reduce(x.OutputType),
			Color:      x.Color,
		}
	case *expr.Lambda:
		return ev.reduceLambda(x)
	case *expr.Call:
		return ev.reduceCall(x)
	default:
		return e
	}
}

func (ev *Evaluator) reduceLambda(l *expr.Lambda) expr.Expression {
	body := ev.Reduce(l.Body)
	// η-reduction: only as evaluation post-processing, never during
	// substitution.
	if l.Arg != nil {
		if call, ok := expr.Resolve(body).(*expr.Call); ok && expr.CanUseEtaReduction(call) {
			if v, ok := expr.Resolve(call.Arg).(*expr.Variable); ok && v == l.Arg {
				return call.Fn
			}
		}
	}
	return &expr.Lambda{Arg: l.Arg, ArgType: l.ArgType, Body: body, Color: l.Color}
}

// reduceCall unwinds the Fn-chain of nested Calls explicitly before
// reducing, so a deeply right-nested call chain does not recurse the Go
// stack one frame per application.
func (ev *Evaluator) reduceCall(c *expr.Call) expr.Expression {
	var frames []*expr.Call
	cur := expr.Expression(c)
	for {
		call, ok := expr.Resolve(cur).(*expr.Call)
		if !ok {
			break
		}
		frames = append(frames, call)
		cur = call.Fn
	}
	head := ev.Reduce(cur)
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		arg := ev.Reduce(f.Arg)
		head = ev.applyOne(head, arg, f.Color)
	}
	return head
}

func (ev *Evaluator) applyOne(head, arg expr.Expression, color int) expr.Expression {
	if lam, ok := expr.Resolve(head).(*expr.Lambda); ok && ev.ExpandLambda {
		if lam.Arg == nil {
			return ev.Reduce(lam.Body)
		}
		reps := map[*expr.Variable]expr.Expression{lam.Arg: arg}
		body, ok := expr.ReplaceScopeVariables(lam.Body, reps, nil)
		if ok {
			return ev.Reduce(body)
		}
		return &expr.Call{Fn: head, Arg: arg, Color: color}
	}

	call := &expr.Call{Fn: head, Arg: arg, Color: color}
	if !ev.DownValue {
		return call
	}
	sym, ok := headSymbol(call)
	if !ok {
		return call
	}
	if sym.Eval != nil {
		if v, ok := sym.Eval(call, ev); ok {
			return ev.Reduce(v)
		}
	}
	if v, ok := ev.tryRules(call, sym); ok {
		return ev.Reduce(v)
	}
	return call
}

// tryRules tries up-values of the argument's head symbol first, then
// down-values of the call's head symbol, in declaration order; the first
// pattern match wins.
func (ev *Evaluator) tryRules(call *expr.Call, headSym *expr.Symbol) (expr.Expression, bool) {
	var rules []expr.Rule
	if argSym, ok := headSymbol(call.Arg); ok {
		rules = append(rules, argSym.UpValues...)
	}
	rules = append(rules, headSym.DownValues...)
	for _, rule := range rules {
		reps, ok := expr.MatchPattern(rule.Lhs, call)
		if !ok {
			continue
		}
		rhs, ok := expr.ReplaceScopeVariables(rule.Rhs, reps, nil)
		if ok {
			return rhs, true
		}
	}
	return nil, false
}

func headSymbol(e expr.Expression) (*expr.Symbol, bool) {
	e = expr.Resolve(e)
	for {
		switch x := e.(type) {
		case *expr.Symbol:
			return x, true
		case *expr.Call:
			e = expr.Resolve(x.Fn)
		default:
			return nil, false
		}
	}
}
