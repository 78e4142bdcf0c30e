// Package hir is the append-only register array HIR lowering emits and the
// HIR solver resolves.
package hir

import (
	"github.com/dtlc-lang/dtlc/internal/expr"
	"github.com/dtlc-lang/dtlc/internal/token"
)

// Ref is an index into the register array. A register may reference any
// other index regardless of declaration order; the solver tolerates
// arbitrary dependency order.
type Ref int

// Kind discriminates the register shapes.
type Kind int

const (
	KRoot Kind = iota
	KExpr
	KNumber
	KString
	KLambda
	KCall
	KFnType
	KMemberAccess
	KSymbol
	KSymbolType
	KSymbolAssign
	KSymbolRule
	KUnknown
	KVariable

	// KNameRef resolves an unqualified surface identifier that is neither
	// a lexical variable nor an already-known user symbol at lowering
	// time: a forward reference to a user top-level symbol, or one of the
	// ambient builtin aliases (Type, builtin, Level, number, string,
	// untyped, error-type, void, unit, Equal), including unqualified
	// member-style uses like `Level.max`.
	KNameRef
)

// Register is one tagged-union entry. Only the fields relevant to Kind are
// meaningful; all Ref fields may point to a lower or a forward index.
type Register struct {
	Kind  Kind
	Range token.Token // source position, best-effort

	// KExpr
	ExprValue expr.Expression

	// KNumber
	NumberValue int64
	IsLevel     bool

	// KString
	StringValue string

	// KLambda
	LambdaArg     Ref // -1 if absent
	LambdaArgType Ref // -1 if absent
	LambdaBody    Ref
	Color         int

	// KCall
	CallFn        Ref
	CallArg       Ref
	CallIsPattern bool

	// KFnType
	FnTypeInput  Ref
	FnTypeArg    Ref // -1 if absent
	FnTypeOutput Ref

	// KMemberAccess
	MemberLhs  Ref
	MemberName string

	// KSymbol
	SymbolName   string
	SymbolParent Ref // -1 for the implicit root
	SymbolFlags  expr.Flags

	// KSymbolType
	TypeSymbol Ref
	TypeValue  Ref

	// KSymbolAssign
	AssignSymbol Ref
	AssignValue  Ref

	// KSymbolRule
	RuleSymbol   Ref
	RuleLhs      Ref
	RuleRhs      Ref
	RuleIsUpValue bool

	// KUnknown
	UnknownType     Ref // -1 if absent
	UnknownIsPattern bool

	// KVariable
	VariableName string
	VariableType Ref // -1 if absent

	// KNameRef
	NameRefName string
}

// NoRef marks an absent optional register reference.
const NoRef Ref = -1

// Array is the append-only register list produced by internal/lower.
type Array struct {
	regs []Register
}

// Append adds r and returns its index.
func (a *Array) Append(r Register) Ref {
	a.regs = append(a.regs, r)
	return Ref(len(a.regs) - 1)
}

// Len reports the number of registers.
func (a *Array) Len() int { return len(a.regs) }

// At returns the register at ref.
func (a *Array) At(ref Ref) Register { return a.regs[ref] }
