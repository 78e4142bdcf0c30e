// Package prettyprinter renders an *ast.Module as an indented tree, a
// readable dump of what the parser built, printed by the CLI's --ast-tree flag.
package prettyprinter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dtlc-lang/dtlc/internal/ast"
)

// TreePrinter accumulates an indented tree view of one or more AST nodes.
type TreePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

func (p *TreePrinter) String() string {
	return p.buf.String()
}

func (p *TreePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *TreePrinter) writeIndent() {
	p.write(strings.Repeat("  ", p.indent))
}

func (p *TreePrinter) line(format string, args ...interface{}) {
	p.writeIndent()
	p.write(fmt.Sprintf(format, args...))
	p.write("\n")
}

func (p *TreePrinter) nested(f func()) {
	p.indent++
	f()
	p.indent--
}

// PrintModule renders mod's declarations in source order.
func (p *TreePrinter) PrintModule(mod *ast.Module) {
	p.line("Module: %s", mod.Name)
	p.nested(func() {
		for _, d := range mod.Decls {
			p.Print(d)
		}
	})
}

// Print dispatches on n's concrete type and writes one indented subtree.
func (p *TreePrinter) Print(n ast.Node) {
	switch x := n.(type) {
	case *ast.ModuleDecl:
		p.line("Decl:")
		p.nested(func() {
			p.line("Lhs:")
			p.nested(func() { p.Print(x.Lhs) })
			if x.Type != nil {
				p.line("Type:")
				p.nested(func() { p.Print(x.Type) })
			}
			if x.Rhs != nil {
				p.line("Rhs:")
				p.nested(func() { p.Print(x.Rhs) })
			}
		})
	case *ast.ExprStatement:
		p.line("ExprStatement:")
		p.nested(func() { p.Print(x.Expr) })
	case *ast.Identifier:
		p.line("Identifier: %s", x.Name)
	case *ast.NumberLit:
		p.line("NumberLit: %d", x.Value)
	case *ast.StringLit:
		p.line("StringLit: %q", x.Value)
	case *ast.FnType:
		color := 0
		if x.Erased {
			color = 1
		}
		p.line("FnType: arg=%q color=%d", x.ArgName, color)
		p.nested(func() {
			p.line("Input:")
			p.nested(func() { p.Print(x.ArgType) })
			p.line("Output:")
			p.nested(func() { p.Print(x.Output) })
		})
	case *ast.Lambda:
		p.line("Lambda: arg=%q", x.ArgName)
		p.nested(func() {
			if x.ArgType != nil {
				p.line("ArgType:")
				p.nested(func() { p.Print(x.ArgType) })
			}
			p.line("Body:")
			p.nested(func() { p.Print(x.Body) })
		})
	case *ast.Call:
		p.line("Call: color=%d", x.Color)
		p.nested(func() {
			p.line("Fn:")
			p.nested(func() { p.Print(x.Fn) })
			p.line("Arg:")
			p.nested(func() { p.Print(x.Arg) })
		})
	case *ast.MemberAccess:
		p.line("MemberAccess: .%s", x.Name)
		p.nested(func() { p.Print(x.Lhs) })
	case *ast.Pattern:
		p.line("Pattern: ?%s", x.Name)
	case *ast.VariableRef:
		p.line("VariableRef: %s", x.Name)
		if x.Type != nil {
			p.nested(func() { p.Print(x.Type) })
		}
	case *ast.EquivExpr:
		p.line("EquivExpr:")
		p.nested(func() {
			p.line("Lhs:")
			p.nested(func() { p.Print(x.Lhs) })
			p.line("Rhs:")
			p.nested(func() { p.Print(x.Rhs) })
		})
	default:
		p.line("<unknown node>")
	}
}
