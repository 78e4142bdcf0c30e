package constraints

import (
	"github.com/dtlc-lang/dtlc/internal/evaluator"
	"github.com/dtlc-lang/dtlc/internal/expr"
	"github.com/dtlc-lang/dtlc/internal/typesolver"
)

// Tracer receives constraint-solver events for the -v trace. Both methods
// are no-ops when Solver.Trace is nil.
type Tracer interface {
	ConstraintAdded(c *Constraint)
	UnknownResolved(u *expr.Unknown, value expr.Expression)
}

// Solver owns the active/errored constraint lists and the Unknown set
// mentioned by active constraints.
type Solver struct {
	Universe *expr.Universe
	Types    *typesolver.Solver
	Eval     *evaluator.Evaluator
	Trace    Tracer

	active   []*Constraint
	errored  []*Constraint
	unknowns map[*expr.Unknown]struct{}
}

// New builds a Solver wired to its own Evaluator and type solver, with the
// evaluator's Equal-builtin side channel routed back into AddEqualConstraint.
func New(u *expr.Universe) *Solver {
	s := &Solver{
		Universe: u,
		Types:    typesolver.New(u),
		unknowns: make(map[*expr.Unknown]struct{}),
	}
	s.Eval = evaluator.New(u)
	s.Eval.PostEqualFunc = s.AddEqualConstraint
	return s
}

// --- expr.ConstraintPoster / typesolver.ConstraintSink ---

func (s *Solver) NewUnknown() *expr.Unknown {
	u := &expr.Unknown{}
	s.unknowns[u] = struct{}{}
	return u
}

func (s *Solver) PostEqualWithReplace(target, source *expr.Unknown, replaces map[*expr.Variable]expr.Expression) {
	s.add(&Constraint{Kind: KindEqualWithReplace, Target: target, Source: source, Replaces: replaces})
}

func (s *Solver) PostFnTypeType(target *expr.Unknown, t1, t2 expr.Expression) {
	s.add(&Constraint{Kind: KindFnTypeType, Target: target, Type1: t1, Type2: t2})
}

func (s *Solver) PostTypeof(target, source *expr.Unknown) {
	s.add(&Constraint{Kind: KindTypeof, Target: target, Source: source})
}

// --- public API ---

// GetType delegates to the type solver, with this Solver as its sink.
func (s *Solver) GetType(e expr.Expression) expr.Expression {
	return s.Types.TypeOf(e, s)
}

// AddEqualConstraint queues Equal(e1, e2).
func (s *Solver) AddEqualConstraint(e1, e2 expr.Expression) {
	s.add(&Constraint{Kind: KindEqual, E1: e1, E2: e2})
}

func (s *Solver) add(c *Constraint) {
	s.active = append(s.active, c)
	if s.Trace != nil {
		s.Trace.ConstraintAdded(c)
	}
}

// Active returns the constraints still pending (for outer-loop progress
// checks and, once the overall fixed point is reached, UnresolvedConstraint
// diagnostics).
func (s *Solver) Active() []*Constraint { return s.active }

// Errored returns constraints the solver proved inconsistent.
func (s *Solver) Errored() []*Constraint { return s.errored }

// Evaluate runs passes over the active queue until a full sweep makes no
// progress, then returns whether any progress was made at all. The HIR
// solver calls this once per outer iteration.
func (s *Solver) Evaluate() bool {
	overall := false
	for {
		queue := s.active
		s.active = nil
		progress := false
		for _, c := range queue {
			done, changed := s.step(c)
			if changed {
				progress = true
			}
			if !done {
				s.active = append(s.active, c)
			}
		}
		if !progress {
			break
		}
		overall = true
	}
	return overall
}

func (s *Solver) fail(c *Constraint) {
	s.errored = append(s.errored, c)
}

func (s *Solver) setUnknown(u *expr.Unknown, value expr.Expression) bool {
	if u.Value != nil {
		// Already resolved: never overwrite, reconcile instead.
		s.AddEqualConstraint(u.Value, value)
		return true
	}
	if occursIn(u, value) {
		return false
	}
	u.Value = value
	if u.Type != nil {
		s.AddEqualConstraint(u.Type, s.Types.TypeOf(value, s))
	}
	if s.Trace != nil {
		s.Trace.UnknownResolved(u, value)
	}
	return true
}

func occursIn(u *expr.Unknown, e expr.Expression) bool {
	switch x := e.(type) {
	case *expr.Unknown:
		if x == u {
			return true
		}
		if x.Value != nil {
			return occursIn(u, x.Value)
		}
		return false
	case *expr.Call:
		return occursIn(u, x.Fn) || occursIn(u, x.Arg)
	case *expr.FnType:
		return occursIn(u, x.InputType) || occursIn(u, x.OutputType)
	case *expr.Lambda:
		return (x.ArgType != nil && occursIn(u, x.ArgType)) || occursIn(u, x.Body)
	default:
		return false
	}
}

// step dispatches on constraint kind, returning (done, changed).
func (s *Solver) step(c *Constraint) (bool, bool) {
	switch c.Kind {
	case KindEqual:
		return s.stepEqual(c)
	case KindFnTypeType:
		return s.stepFnTypeType(c)
	case KindTypeof:
		return s.stepTypeof(c)
	case KindEqualWithReplace:
		return s.stepEqualWithReplace(c)
	default:
		return true, false
	}
}

func (s *Solver) stepTypeof(c *Constraint) (bool, bool) {
	if c.Source.Value == nil {
		return false, false
	}
	return s.assignOrFail(c, c.Target, s.Types.TypeOf(c.Source.Value, s))
}

func (s *Solver) stepFnTypeType(c *Constraint) (bool, bool) {
	t1 := expr.Resolve(s.Eval.Reduce(c.Type1))
	t2 := expr.Resolve(s.Eval.Reduce(c.Type2))
	call1, ok1 := t1.(*expr.Call)
	call2, ok2 := t2.(*expr.Call)
	if !ok1 || !ok2 {
		return false, false
	}
	sym1, ok1 := expr.Resolve(call1.Fn).(*expr.Symbol)
	sym2, ok2 := expr.Resolve(call2.Fn).(*expr.Symbol)
	if !ok1 || !ok2 || sym1 != s.Universe.Type || sym2 != s.Universe.Type {
		return false, false
	}
	n1, ok1 := expr.Resolve(call1.Arg).(*expr.Number)
	n2, ok2 := expr.Resolve(call2.Arg).(*expr.Number)
	if !ok1 || !ok2 {
		return false, false
	}
	level := n1.Value
	if n2.Value > level {
		level = n2.Value
	}
	universe := &expr.Call{Fn: s.Universe.Type, Arg: &expr.Number{Value: level, IsLevel: true}}
	return s.assignOrFail(c, c.Target, universe)
}

func (s *Solver) stepEqualWithReplace(c *Constraint) (bool, bool) {
	if c.Source.Value == nil {
		return false, false
	}
	r, ok := expr.ReplaceScopeVariables(c.Source.Value, c.Replaces, s)
	if !ok {
		return false, false
	}
	return s.assignOrFail(c, c.Target, r)
}

func (s *Solver) stepEqual(c *Constraint) (bool, bool) {
	e1 := s.Eval.Reduce(c.E1)
	e2 := s.Eval.Reduce(c.E2)
	changed := !sameNode(e1, c.E1) || !sameNode(e2, c.E2)
	c.E1, c.E2 = e1, e2

	u1, isU1 := expr.Resolve(e1).(*expr.Unknown)
	u2, isU2 := expr.Resolve(e2).(*expr.Unknown)
	u1Unset := isU1 && u1.Value == nil
	u2Unset := isU2 && u2.Value == nil

	switch {
	case u1Unset && !u2Unset:
		return s.assignOrFail(c, u1, e2)
	case u2Unset && !u1Unset:
		return s.assignOrFail(c, u2, e1)
	case u1Unset && u2Unset:
		target, other := u1, e2
		if u1.IsPattern && !u2.IsPattern {
			target, other = u2, e1
		}
		return s.assignOrFail(c, target, other)
	}

	switch x1 := expr.Resolve(e1).(type) {
	case *expr.Number:
		if x2, ok := expr.Resolve(e2).(*expr.Number); ok {
			if x1.IsLevel == x2.IsLevel && x1.Value == x2.Value {
				return true, changed
			}
			s.fail(c)
			return true, changed
		}
	case *expr.String:
		if x2, ok := expr.Resolve(e2).(*expr.String); ok {
			if x1.Value == x2.Value {
				return true, changed
			}
			s.fail(c)
			return true, changed
		}
	case *expr.Call:
		if x2, ok := expr.Resolve(e2).(*expr.Call); ok {
			if done, chg, matched := s.stepCallCall(c, x1, x2); matched {
				return done, chg || changed
			}
		}
		if etaChanged := s.tryEtaRewrite(x1, e2); etaChanged {
			return true, true
		}
	case *expr.FnType:
		if x2, ok := expr.Resolve(e2).(*expr.FnType); ok {
			return s.stepFnTypeFnType(x1, x2), true
		}
	case *expr.Lambda:
		if x2, ok := expr.Resolve(e2).(*expr.Lambda); ok {
			return s.stepLambdaLambda(x1, x2), true
		}
	}
	if x2, ok := expr.Resolve(e2).(*expr.Call); ok {
		if etaChanged := s.tryEtaRewrite(x2, e1); etaChanged {
			return true, true
		}
	}

	if expr.SameQ(e1, e2) {
		return true, changed
	}
	if !changed {
		return false, false
	}
	return false, changed
}

func (s *Solver) assign(target *expr.Unknown, other expr.Expression) bool {
	return s.setUnknown(target, other)
}

// assignOrFail assigns target := other, or moves c to the errored list when
// the occurs check rejects it (e.g. u === f(u)). Either way the constraint
// is done: left unassigned and requeued forever would report progress
// every sweep without ever converging.
func (s *Solver) assignOrFail(c *Constraint, target *expr.Unknown, other expr.Expression) (bool, bool) {
	if s.assign(target, other) {
		return true, true
	}
	s.fail(c)
	return true, true
}

// stepCallCall decomposes Call(f, a) === Call(g, b) into f===g plus
// a===b when f and g have the same rigid head; matched=false means the
// caller should fall through to the generic handling below.
func (s *Solver) stepCallCall(c *Constraint, x1, x2 *expr.Call) (done, changed, matched bool) {
	if sym1, ok := expr.Resolve(x1.Fn).(*expr.Symbol); ok {
		if sym2, ok := expr.Resolve(x2.Fn).(*expr.Symbol); ok {
			if sym1 != sym2 {
				s.fail(c)
				return true, false, true
			}
			if sym1.Flags.Has(expr.AllowAssignment) || sym1.Flags.Has(expr.AllowDownValue) {
				return false, false, false
			}
			s.AddEqualConstraint(x1.Arg, x2.Arg)
			if sym1 != s.Universe.Type { // Type's own type is generic; skip
				s.AddEqualConstraint(s.GetType(x1), s.GetType(x2))
			}
			return true, true, true
		}
	}
	if v1, ok := expr.Resolve(x1.Fn).(*expr.Variable); ok {
		if v2, ok := expr.Resolve(x2.Fn).(*expr.Variable); ok {
			if v1 != v2 {
				s.fail(c)
				return true, false, true
			}
			s.AddEqualConstraint(x1.Arg, x2.Arg)
			return true, true, true
		}
	}
	fn1, ok1 := expr.Resolve(x1.Fn).(*expr.Call)
	fn2, ok2 := expr.Resolve(x2.Fn).(*expr.Call)
	if ok1 && ok2 {
		h1, h2 := expr.Resolve(fn1.Fn), expr.Resolve(fn2.Fn)
		for cc, ok := h1.(*expr.Call); ok; cc, ok = h1.(*expr.Call) {
			h1 = expr.Resolve(cc.Fn)
		}
		for cc, ok := h2.(*expr.Call); ok; cc, ok = h2.(*expr.Call) {
			h2 = expr.Resolve(cc.Fn)
		}
		if sym, ok := h1.(*expr.Symbol); ok && h1 == h2 && !sym.Flags.Has(expr.AllowAssignment) && !sym.Flags.Has(expr.AllowDownValue) {
			s.AddEqualConstraint(x1.Fn, x2.Fn)
			s.AddEqualConstraint(x1.Arg, x2.Arg)
			return true, true, true
		}
	}
	return false, false, false
}

// tryEtaRewrite eta-expands the non-Call side of an equality when call is
// eta-reducible, so the two sides can be compared structurally.
func (s *Solver) tryEtaRewrite(call *expr.Call, other expr.Expression) bool {
	if !expr.CanUseEtaReduction(call) {
		return false
	}
	v, ok := expr.Resolve(call.Arg).(*expr.Variable)
	if !ok {
		return false
	}
	lam := expr.MakeLambda(&expr.Call{Fn: other, Arg: v, Color: call.Color}, v, v.DefaultType, call.Color)
	s.AddEqualConstraint(call.Fn, lam)
	return true
}

func (s *Solver) stepFnTypeFnType(x1, x2 *expr.FnType) bool {
	if x1.InputType != nil && x2.InputType != nil {
		s.AddEqualConstraint(x1.InputType, x2.InputType)
	}
	shared := &expr.Variable{Name: "_", DefaultType: x1.InputType}
	out2 := renameBinder(x2.OutputType, x2.Arg, shared)
	out1 := renameBinder(x1.OutputType, x1.Arg, shared)
	s.AddEqualConstraint(out1, out2)
	return true
}

func (s *Solver) stepLambdaLambda(x1, x2 *expr.Lambda) bool {
	if x1.ArgType != nil && x2.ArgType != nil {
		s.AddEqualConstraint(x1.ArgType, x2.ArgType)
	}
	shared := &expr.Variable{Name: "_", DefaultType: x1.ArgType}
	body2 := renameBinder(x2.Body, x2.Arg, shared)
	body1 := renameBinder(x1.Body, x1.Arg, shared)
	s.AddEqualConstraint(body1, body2)
	return true
}

func renameBinder(e expr.Expression, from, to *expr.Variable) expr.Expression {
	if from == nil {
		return e
	}
	r, ok := expr.ReplaceScopeVariables(e, map[*expr.Variable]expr.Expression{from: to}, nil)
	if !ok {
		return e
	}
	return r
}

func sameNode(a, b expr.Expression) bool {
	return a == b
}
