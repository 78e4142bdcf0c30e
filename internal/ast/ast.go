// Package ast defines the syntax tree nodes the parser builds and HIR
// lowering consumes. The out-of-scope surface keywords (struct, enum,
// inductive, if, while, defer, var, let, break, continue, return) are
// recognized by the lexer but never produce a node — the parser reports
// them as having no prefix parse rule rather than silently dropping them.
package ast

import "github.com/dtlc-lang/dtlc/internal/token"

// Range is a source span, inclusive of both endpoints.
type Range struct {
	Start, End token.Token
}

// Node is any AST node.
type Node interface {
	Range() Range
}

// Identifier is a bare name reference.
type Identifier struct {
	Name string
	Pos  Range
}

func (n *Identifier) Range() Range { return n.Pos }

// NumberLit is an integer literal.
type NumberLit struct {
	Value int64
	Pos   Range
}

func (n *NumberLit) Range() Range { return n.Pos }

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
	Pos   Range
}

func (n *StringLit) Range() Range { return n.Pos }

// FnType is `(name: inputType) -> output`, `[name: inputType] -> output`, or
// the non-binding `inputType -> output`. Erased marks bracket color 1.
type FnType struct {
	ArgName string // "" when the arrow is non-dependent
	ArgType Node
	Erased  bool
	Output  Node
	Pos     Range
}

func (n *FnType) Range() Range { return n.Pos }

// Lambda is `\name body`; ArgName is "" for `\_ body` (non-binding).
type Lambda struct {
	ArgName string
	ArgType Node // optional explicit annotation: `\(x: T) body`
	Body    Node
	Pos     Range
}

func (n *Lambda) Range() Range { return n.Pos }

// Call is `fn(arg)` (Color 0) or `fn[arg]` (Color 1, erased).
type Call struct {
	Fn    Node
	Arg   Node
	Color int
	Pos   Range
}

func (n *Call) Range() Range { return n.Pos }

// MemberAccess is `lhs.name`.
type MemberAccess struct {
	Lhs  Node
	Name string
	Pos  Range
}

func (n *MemberAccess) Range() Range { return n.Pos }

// Pattern is `?name` (or bare `?` for an anonymous pattern variable), valid
// only in a rule head's argument position.
type Pattern struct {
	Name string
	Pos  Range
}

func (n *Pattern) Range() Range { return n.Pos }

// ModuleDecl is `name [: type] [= rhs] ;` — a symbol declaration,
// definition, or rewrite-rule head (when Lhs is itself a Call over
// Patterns; Lhs carries the full declared head shape rather than just a
// bare name so rule heads like `f(?x)` fit the same node).
type ModuleDecl struct {
	Lhs  Node // Identifier or Call(Identifier, Pattern...) for a rule head
	Type Node // optional
	Rhs  Node // optional
	Pos  Range
}

func (n *ModuleDecl) Range() Range { return n.Pos }

// ExprStatement is a bare top-level expression, reduced and printed
// directly instead of being hung off a named symbol.
type ExprStatement struct {
	Expr Node
	Pos  Range
}

func (n *ExprStatement) Range() Range { return n.Pos }

// Module is the root: an ordered list of declarations and expression
// statements.
type Module struct {
	Name  string
	Decls []Node
	Pos   Range
}

func (n *Module) Range() Range { return n.Pos }

// VariableRef is `variable(name, type?)`: an explicit bound-variable
// reference. The parser never builds this node and internal/lower does not
// lower it.
type VariableRef struct {
	Name string
	Type Node
	Pos  Range
}

func (n *VariableRef) Range() Range { return n.Pos }

// EquivExpr is the surface form of the `===` propositional-equality
// sugar: `e1 === e2`, valid only in a ModuleDecl's Type position.
type EquivExpr struct {
	Lhs, Rhs Node
	Pos      Range
}

func (n *EquivExpr) Range() Range { return n.Pos }
