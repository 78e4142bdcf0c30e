// Package typesolver computes the type of any expression, memoized by
// expression identity.
package typesolver

import "github.com/dtlc-lang/dtlc/internal/expr"

// ConstraintSink is the surface the type solver needs from the constraint
// solver: fresh unknowns, substitution (via the embedded
// expr.ConstraintPoster), and the two constraint kinds typeOf can post.
// constraints.Solver implements this without typesolver importing it,
// breaking the Equal<->Typeof dependency cycle.
type ConstraintSink interface {
	expr.ConstraintPoster
	PostFnTypeType(target *expr.Unknown, t1, t2 expr.Expression)
	PostTypeof(target, source *expr.Unknown)
}

// Solver computes and caches types.
type Solver struct {
	Universe *expr.Universe
	cache    map[expr.Expression]expr.Expression
}

// New returns a Solver bootstrapped with u's fixed builtin symbols.
func New(u *expr.Universe) *Solver {
	return &Solver{Universe: u, cache: make(map[expr.Expression]expr.Expression)}
}

// TypeOf returns e's type, computing and caching it on first access.
func (s *Solver) TypeOf(e expr.Expression, sink ConstraintSink) expr.Expression {
	if t, ok := s.cache[e]; ok {
		return t
	}
	t := s.computeType(e, sink)
	s.cache[e] = t
	return t
}

func (s *Solver) computeType(e expr.Expression, sink ConstraintSink) expr.Expression {
	switch x := e.(type) {
	case *expr.Number:
		if x.IsLevel {
			return s.Universe.Level
		}
		return s.Universe.Number
	case *expr.String:
		return s.Universe.String
	case *expr.Symbol:
		if x.Type != nil {
			return x.Type
		}
		return s.Universe.Untyped
	case *expr.Variable:
		return x.DefaultType
	case *expr.FnType:
		target := sink.NewUnknown()
		t1 := s.TypeOf(x.InputType, sink)
		t2 := s.TypeOf(x.OutputType, sink)
		sink.PostFnTypeType(target, t1, t2)
		return target
	case *expr.Lambda:
		return &expr.FnType{
			InputType:  x.ArgType,
			Arg:        x.Arg,
			OutputType: s.TypeOf(x.Body, sink),
			Color:      x.Color,
		}
	case *expr.Call:
		// Type(i) : Type(i+1): the universe hierarchy's successor rule.
		// Type itself carries no .Type field for the generic function-call
		// case below to find, so it needs its own rule here.
		if fn, ok := expr.Resolve(x.Fn).(*expr.Symbol); ok && fn == s.Universe.Type {
			if n, ok := expr.Resolve(x.Arg).(*expr.Number); ok && n.IsLevel {
				return &expr.Call{Fn: s.Universe.Type, Arg: &expr.Number{Value: n.Value + 1, IsLevel: true}}
			}
		}
		fnType, ok := expr.Resolve(s.TypeOf(x.Fn, sink)).(*expr.FnType)
		if !ok {
			return s.Universe.ErrorType
		}
		if fnType.Arg == nil {
			return fnType.OutputType
		}
		out, ok := expr.ReplaceScopeVariables(fnType.OutputType, map[*expr.Variable]expr.Expression{fnType.Arg: x.Arg}, sink)
		if !ok {
			return s.Universe.ErrorType
		}
		return out
	case *expr.Unknown:
		if x.Value != nil {
			return s.TypeOf(x.Value, sink)
		}
		if x.Type != nil {
			return x.Type
		}
		target := sink.NewUnknown()
		sink.PostTypeof(target, x)
		return target
	default:
		return s.Universe.ErrorType
	}
}
