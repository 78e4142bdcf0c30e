// Package stringify is the deterministic pretty-printer over the
// expression graph, used only for diagnostics and tracing (never for
// semantics).
package stringify

import (
	"fmt"
	"strings"

	"github.com/dtlc-lang/dtlc/internal/config"
	"github.com/dtlc-lang/dtlc/internal/expr"
)

// namer assigns stable per-call display names to Unknowns and unnamed
// Variables, so the same node always prints the same way within one call.
type namer struct {
	unknownIDs  map[*expr.Unknown]int
	variableIDs map[*expr.Variable]int
}

func newNamer() *namer {
	return &namer{unknownIDs: make(map[*expr.Unknown]int), variableIDs: make(map[*expr.Variable]int)}
}

func (n *namer) unknown(u *expr.Unknown) string {
	if config.IsTestMode {
		return "?u?"
	}
	id, ok := n.unknownIDs[u]
	if !ok {
		id = len(n.unknownIDs)
		n.unknownIDs[u] = id
	}
	return fmt.Sprintf("?u%d", id)
}

func (n *namer) variable(v *expr.Variable) string {
	if v.Name != "" && v.Name != "_" {
		return v.Name
	}
	if config.IsTestMode {
		return "v?"
	}
	id, ok := n.variableIDs[v]
	if !ok {
		id = len(n.variableIDs)
		n.variableIDs[v] = id
	}
	return fmt.Sprintf("v%d", id)
}

// Stringify renders e as surface syntax. A lambda's argument type
// annotation is not printed, so `\(x: T) x` renders as `\x x` and does not
// re-parse to the same AST shape.
func Stringify(e expr.Expression) string {
	var b strings.Builder
	newNamer().write(&b, e, 0)
	return b.String()
}

// precedence levels, loosest to tightest.
const (
	precTop = iota
	precArrow
	precApply
	precAtom
)

func (n *namer) write(b *strings.Builder, e expr.Expression, prec int) {
	switch x := e.(type) {
	case *expr.Symbol:
		b.WriteString(n.qualifiedName(x))
	case *expr.Variable:
		b.WriteString(n.variable(x))
	case *expr.Unknown:
		if x.Value != nil {
			n.write(b, x.Value, prec)
			return
		}
		b.WriteString(n.unknown(x))
	case *expr.Number:
		fmt.Fprintf(b, "%d", x.Value)
	case *expr.String:
		fmt.Fprintf(b, "%q", x.Value)
	case *expr.Call:
		n.writeCall(b, x, prec)
	case *expr.FnType:
		n.writeFnType(b, x, prec)
	case *expr.Lambda:
		n.writeLambda(b, x, prec)
	default:
		b.WriteString("<?>")
	}
}

func (n *namer) qualifiedName(s *expr.Symbol) string {
	if s.Parent == nil || s.Parent.Name == "root" {
		return s.Name
	}
	return n.qualifiedName(s.Parent) + "." + s.Name
}

func (n *namer) writeCall(b *strings.Builder, c *expr.Call, prec int) {
	open := prec > precApply
	if open {
		b.WriteByte('(')
	}
	n.write(b, c.Fn, precApply)
	if c.Color == 1 {
		b.WriteByte('[')
		n.write(b, c.Arg, precTop)
		b.WriteByte(']')
	} else {
		b.WriteByte('(')
		n.write(b, c.Arg, precTop)
		b.WriteByte(')')
	}
	if open {
		b.WriteByte(')')
	}
}

func (n *namer) writeFnType(b *strings.Builder, f *expr.FnType, prec int) {
	open := prec > precArrow
	if open {
		b.WriteByte('(')
	}
	openBracket, closeBracket := byte('('), byte(')')
	if f.Color == 1 {
		openBracket, closeBracket = '[', ']'
	}
	if f.Arg != nil {
		b.WriteByte(openBracket)
		b.WriteString(n.variable(f.Arg))
		b.WriteString(": ")
		n.write(b, f.InputType, precTop)
		b.WriteByte(closeBracket)
	} else {
		n.write(b, f.InputType, precApply)
	}
	b.WriteString(" -> ")
	n.write(b, f.OutputType, precArrow)
	if open {
		b.WriteByte(')')
	}
}

func (n *namer) writeLambda(b *strings.Builder, l *expr.Lambda, prec int) {
	open := prec > precTop
	if open {
		b.WriteByte('(')
	}
	b.WriteByte('\\')
	if l.Arg != nil {
		b.WriteString(n.variable(l.Arg))
	} else {
		b.WriteByte('_')
	}
	b.WriteByte(' ')
	n.write(b, l.Body, precTop)
	if open {
		b.WriteByte(')')
	}
}
