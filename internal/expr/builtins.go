package expr

import "github.com/dtlc-lang/dtlc/internal/config"

// Universe bundles the fixed built-in symbols created once at startup and
// never mutated again.
type Universe struct {
	Root      *Symbol
	Builtin   *Symbol
	Type      *Symbol
	Level     *Symbol
	Succ      *Symbol
	Max       *Symbol
	Number    *Symbol
	String    *Symbol
	Untyped   *Symbol
	ErrorType *Symbol

	// VoidType and VoidValue are two distinct symbols both named "void"
	// (the unit type and the unit value), kept with distinct identities
	// and identical display names. SubSymbols["void"] resolves
	// first-writer-wins; VoidType wins since it is registered first here.
	VoidType  *Symbol
	VoidValue *Symbol

	Unit *Symbol

	// Equal backs the `===` equivalence sugar. It carries no static type
	// of its own, so the type solver types it as Untyped.
	Equal *Symbol
}

// NewUniverse constructs the fixed built-in symbol tree.
func NewUniverse() *Universe {
	u := &Universe{}
	u.Root = NewSymbol(config.RootSymbolName, 0)
	u.Builtin = u.Root.Child(config.BuiltinSymbolName, 0)
	u.Type = u.Root.Child(config.TypeSymbolName, 0)

	u.Level = u.Builtin.Child(config.LevelSymbolName, 0)
	u.Succ = u.Level.Child(config.SuccSymbolName, 0)
	u.Max = u.Level.Child(config.MaxSymbolName, 0)

	u.Number = u.Builtin.Child(config.NumberSymbolName, 0)
	u.String = u.Builtin.Child(config.StringSymbolName, 0)
	u.Untyped = u.Builtin.Child(config.UntypedSymbolName, 0)
	u.ErrorType = u.Builtin.Child(config.ErrorTypeName, 0)

	u.VoidType = u.Builtin.Child(config.VoidSymbolName, 0) // first writer wins in SubSymbols
	u.VoidValue = NewSymbol(config.VoidSymbolName, 0)
	u.VoidValue.Parent = u.Builtin

	u.Unit = u.Builtin.Child(config.UnitSymbolName, 0)

	u.Equal = u.Builtin.Child(config.EqualSymbolName, 0)

	u.wirePrimitives()
	return u
}

func (u *Universe) wirePrimitives() {
	// Level.succ(n) = n+1 on literal levels.
	u.Succ.Eval = func(call *Call, r Reducer) (Expression, bool) {
		n, ok := Resolve(r.Reduce(call.Arg)).(*Number)
		if !ok || !n.IsLevel {
			return nil, false
		}
		return &Number{Value: n.Value + 1, IsLevel: true}, true
	}

	// Level.max(a,b): commutative, associative, idempotent; max(0,x)=x.
	u.Max.Eval = func(call *Call, r Reducer) (Expression, bool) {
		inner, ok := Resolve(call.Fn).(*Call)
		if !ok {
			return nil, false
		}
		a, ok1 := Resolve(r.Reduce(inner.Arg)).(*Number)
		b, ok2 := Resolve(r.Reduce(call.Arg)).(*Number)
		if !ok1 || !ok2 || !a.IsLevel || !b.IsLevel {
			return nil, false
		}
		if a.Value > b.Value {
			return &Number{Value: a.Value, IsLevel: true}, true
		}
		return &Number{Value: b.Value, IsLevel: true}, true
	}

	// Equal(e1)(e2): once applied to two arguments, posts an Equal(e1,e2)
	// constraint as a side effect and evaluates to the void value.
	u.Equal.Eval = func(call *Call, r Reducer) (Expression, bool) {
		outer, ok := Resolve(call.Fn).(*Call)
		if !ok {
			return nil, false
		}
		e2 := call.Arg
		e1 := outer.Arg
		r.PostEqual(e1, e2)
		return u.VoidValue, true
	}
}
