package expr

// ConstraintPoster is the minimal surface the constraint solver exposes to
// expr's substitution routine, so expr never imports the solver package.
type ConstraintPoster interface {
	NewUnknown() *Unknown
	PostEqualWithReplace(target, source *Unknown, replaces map[*Variable]Expression)
}

// SameQ is structural equality modulo α-renaming of binders, transparently
// unwrapping resolved Unknowns. Two Unknowns are equal only if they are the
// same node; two Variables or Symbols only by identity.
func SameQ(a, b Expression) bool {
	return sameQAlpha(Resolve(a), Resolve(b), nil)
}

type varPair struct{ a, b *Variable }

func sameQAlpha(a, b Expression, binders []varPair) bool {
	a, b = Resolve(a), Resolve(b)
	switch x := a.(type) {
	case *Symbol:
		y, ok := b.(*Symbol)
		return ok && x == y
	case *Variable:
		y, ok := b.(*Variable)
		if !ok {
			return false
		}
		for _, p := range binders {
			if p.a == x {
				return p.b == y
			}
		}
		return x == y
	case *Unknown:
		y, ok := b.(*Unknown)
		return ok && x == y
	case *Number:
		y, ok := b.(*Number)
		return ok && x.IsLevel == y.IsLevel && x.Value == y.Value
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Call:
		y, ok := b.(*Call)
		return ok && x.Color == y.Color && sameQAlpha(x.Fn, y.Fn, binders) && sameQAlpha(x.Arg, y.Arg, binders)
	case *FnType:
		y, ok := b.(*FnType)
		if !ok || x.Color != y.Color {
			return false
		}
		if !sameQAlpha(x.InputType, y.InputType, binders) {
			return false
		}
		nb := binders
		if x.Arg != nil && y.Arg != nil {
			nb = append(append([]varPair{}, binders...), varPair{x.Arg, y.Arg})
		} else if x.Arg != nil || y.Arg != nil {
			return false
		}
		return sameQAlpha(x.OutputType, y.OutputType, nb)
	case *Lambda:
		y, ok := b.(*Lambda)
		if !ok || x.Color != y.Color {
			return false
		}
		nb := binders
		if x.Arg != nil && y.Arg != nil {
			nb = append(append([]varPair{}, binders...), varPair{x.Arg, y.Arg})
		} else if x.Arg != nil || y.Arg != nil {
			return false
		}
		return sameQAlpha(x.Body, y.Body, nb)
	default:
		return false
	}
}

// ReplaceScopeVariables substitutes every free occurrence of each Variable
// key in reps with its replacement. When descending under a
// binder that shadows a key, that key is dropped for the recursive call.
// When an Unknown excludes a key still present in reps, the substitution
// cannot commit immediately: with a solver, it posts EqualWithReplace and
// returns a fresh Unknown; without one, it returns the Unknown unresolved
// ("cannot rename") and ok=false.
func ReplaceScopeVariables(e Expression, reps map[*Variable]Expression, solver ConstraintPoster) (Expression, bool) {
	if len(reps) == 0 {
		return e, true
	}
	e = Resolve(e)
	switch x := e.(type) {
	case *Symbol, *Number, *String:
		return e, true
	case *Variable:
		if r, ok := reps[x]; ok {
			return r, true
		}
		return x, true
	case *Unknown:
		blocked := false
		for v := range reps {
			if x.Excludes(v) {
				blocked = true
				break
			}
		}
		if !blocked {
			return x, true
		}
		if solver == nil {
			return x, false
		}
		fresh := solver.NewUnknown()
		solver.PostEqualWithReplace(fresh, x, reps)
		return fresh, true
	case *Call:
		fn, ok := ReplaceScopeVariables(x.Fn, reps, solver)
		if !ok {
			return nil, false
		}
		arg, ok := ReplaceScopeVariables(x.Arg, reps, solver)
		if !ok {
			return nil, false
		}
		return &Call{Fn: fn, Arg: arg, Color: x.Color}, true
	case *FnType:
		in, ok := ReplaceScopeVariables(x.InputType, reps, solver)
		if !ok {
			return nil, false
		}
		inner := reps
		if x.Arg != nil {
			inner = withoutKey(reps, x.Arg)
			markExcluded(x.Arg, inner, solver)
		}
		out, ok := ReplaceScopeVariables(x.OutputType, inner, solver)
		if !ok {
			return nil, false
		}
		return &FnType{InputType: in, Arg: x.Arg, OutputType: out, Color: x.Color}, true
	case *Lambda:
		var argType Expression
		if x.ArgType != nil {
			var ok bool
			argType, ok = ReplaceScopeVariables(x.ArgType, reps, solver)
			if !ok {
				return nil, false
			}
		}
		inner := reps
		if x.Arg != nil {
			inner = withoutKey(reps, x.Arg)
			markExcluded(x.Arg, inner, solver)
		}
		body, ok := ReplaceScopeVariables(x.Body, inner, solver)
		if !ok {
			return nil, false
		}
		return &Lambda{Arg: x.Arg, ArgType: argType, Body: body, Color: x.Color}, true
	default:
		return e, true
	}
}

func withoutKey(reps map[*Variable]Expression, key *Variable) map[*Variable]Expression {
	out := make(map[*Variable]Expression, len(reps))
	for k, v := range reps {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// markExcluded marks v into the exclusion set of every Unknown appearing in
// the values being substituted in, so later capture is forbidden: entering
// a binder marks v into the excludedVariables of every Unknown appearing
// inside the replacement currently being constructed.
func markExcluded(v *Variable, reps map[*Variable]Expression, solver ConstraintPoster) {
	for _, val := range reps {
		collectUnknowns(val, func(u *Unknown) { u.Exclude(v) })
	}
}

func collectUnknowns(e Expression, f func(*Unknown)) {
	switch x := e.(type) {
	case *Unknown:
		f(x)
		if x.Value != nil {
			collectUnknowns(x.Value, f)
		}
	case *Call:
		collectUnknowns(x.Fn, f)
		collectUnknowns(x.Arg, f)
	case *FnType:
		collectUnknowns(x.InputType, f)
		collectUnknowns(x.OutputType, f)
	case *Lambda:
		if x.ArgType != nil {
			collectUnknowns(x.ArgType, f)
		}
		collectUnknowns(x.Body, f)
	}
}

// MatchPattern yields a Variable->Expression map, or ok=false if the
// expression does not match the pattern shape. An Unknown in the pattern
// aborts the match.
func MatchPattern(pattern, e Expression) (map[*Variable]Expression, bool) {
	out := make(map[*Variable]Expression)
	if matchInto(pattern, e, out) {
		return out, true
	}
	return nil, false
}

func matchInto(pattern, e Expression, out map[*Variable]Expression) bool {
	pattern, e = Resolve(pattern), Resolve(e)
	switch p := pattern.(type) {
	case *Unknown:
		return false
	case *Variable:
		if existing, ok := out[p]; ok {
			return SameQ(existing, e)
		}
		out[p] = e
		return true
	case *Symbol:
		s, ok := e.(*Symbol)
		return ok && s == p
	case *Number:
		n, ok := e.(*Number)
		return ok && n.IsLevel == p.IsLevel && n.Value == p.Value
	case *String:
		s, ok := e.(*String)
		return ok && s.Value == p.Value
	case *Call:
		c, ok := e.(*Call)
		return ok && c.Color == p.Color && matchInto(p.Fn, c.Fn, out) && matchInto(p.Arg, c.Arg, out)
	case *FnType:
		f, ok := e.(*FnType)
		return ok && f.Color == p.Color && matchInto(p.InputType, f.InputType, out) && matchInto(p.OutputType, f.OutputType, out)
	case *Lambda:
		l, ok := e.(*Lambda)
		return ok && l.Color == p.Color && matchInto(p.Body, l.Body, out)
	default:
		return false
	}
}

// CanUseEtaReduction reports whether call.Arg is a Variable that does not
// appear free in call.Fn, checked through Unknown exclusion sets as well.
func CanUseEtaReduction(call *Call) bool {
	v, ok := Resolve(call.Arg).(*Variable)
	if !ok {
		return false
	}
	return !freeInExpr(call.Fn, v)
}

func freeInExpr(e Expression, v *Variable) bool {
	e = Resolve(e)
	switch x := e.(type) {
	case *Variable:
		return x == v
	case *Unknown:
		return !x.Excludes(v)
	case *Call:
		return freeInExpr(x.Fn, v) || freeInExpr(x.Arg, v)
	case *FnType:
		if x.Arg == v {
			return freeInExpr(x.InputType, v)
		}
		return freeInExpr(x.InputType, v) || freeInExpr(x.OutputType, v)
	case *Lambda:
		if x.Arg == v {
			if x.ArgType != nil {
				return freeInExpr(x.ArgType, v)
			}
			return false
		}
		argFree := x.ArgType != nil && freeInExpr(x.ArgType, v)
		return argFree || freeInExpr(x.Body, v)
	default:
		return false
	}
}

// MakeLambda builds λarg:argType. body with the given color, used by the
// constraint solver's η-contraction shortcut.
func MakeLambda(body Expression, arg *Variable, argType Expression, color int) *Lambda {
	return &Lambda{Arg: arg, ArgType: argType, Body: body, Color: color}
}
