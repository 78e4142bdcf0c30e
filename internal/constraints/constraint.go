// Package constraints implements the constraint solver: a queue of
// equality and metavariable-resolution constraints run to a fixed point,
// the only component allowed to write Unknown.Value.
package constraints

import (
	"github.com/dtlc-lang/dtlc/internal/expr"
	"github.com/dtlc-lang/dtlc/internal/stringify"
)

// Kind discriminates the four constraint shapes.
type Kind int

const (
	KindEqual Kind = iota
	KindEqualWithReplace
	KindFnTypeType
	KindTypeof
)

// Constraint is the closed sum type. Only the fields relevant to Kind are
// meaningful.
type Constraint struct {
	Kind Kind

	// Equal
	E1, E2 expr.Expression

	// EqualWithReplace / Typeof: Target, Source. FnTypeType: Target only.
	Target *expr.Unknown
	Source *expr.Unknown

	// EqualWithReplace
	Replaces map[*expr.Variable]expr.Expression

	// FnTypeType
	Type1, Type2 expr.Expression
}

func (c *Constraint) String() string {
	switch c.Kind {
	case KindEqual:
		return stringify.Stringify(c.E1) + " === " + stringify.Stringify(c.E2)
	case KindEqualWithReplace:
		return "EqualWithReplace(" + stringify.Stringify(c.Target) + ", " + stringify.Stringify(c.Source) + ")"
	case KindFnTypeType:
		return "FnTypeType(" + stringify.Stringify(c.Type1) + ", " + stringify.Stringify(c.Type2) + ")"
	case KindTypeof:
		return "Typeof(" + stringify.Stringify(c.Target) + ", " + stringify.Stringify(c.Source) + ")"
	default:
		return "Constraint(?)"
	}
}
