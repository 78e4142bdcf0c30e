// Package parser is a recursive-descent parser over dtlc's grammar:
// module declarations, the four expression forms (fn-type, lambda, call,
// member-access), patterns, and the `===` equivalence sugar.
package parser

import (
	"github.com/dtlc-lang/dtlc/internal/ast"
	"github.com/dtlc-lang/dtlc/internal/diagnostics"
	"github.com/dtlc-lang/dtlc/internal/lexer"
	"github.com/dtlc-lang/dtlc/internal/token"
)

// Parser consumes a lexer.Stream and produces an *ast.Module.
type Parser struct {
	ts   *lexer.Stream
	cur  token.Token
	file string
	errs []*diagnostics.Diagnostic
}

// New returns a Parser positioned at the stream's first token.
func New(ts *lexer.Stream, file string) *Parser {
	p := &Parser{ts: ts, file: file}
	p.cur = ts.Next()
	return p
}

// Errors returns parse diagnostics collected so far.
func (p *Parser) Errors() []*diagnostics.Diagnostic { return p.errs }

func (p *Parser) advance() token.Token {
	t := p.cur
	p.cur = p.ts.Next()
	return t
}

// peek returns the token n positions after cur (peek(1) is the token
// immediately following cur).
func (p *Parser) peek(n int) token.Token {
	toks := p.ts.Peek(n)
	if len(toks) < n {
		return token.Token{Type: token.EOF}
	}
	return toks[n-1]
}

func (p *Parser) expect(t token.Type) token.Token {
	if p.cur.Type != t {
		p.errorHere(diagnostics.ErrP001, string(t), p.cur.Lexeme)
		return p.cur
	}
	return p.advance()
}

func (p *Parser) errorHere(code diagnostics.ErrorCode, args ...interface{}) {
	p.errs = append(p.errs, diagnostics.New(diagnostics.PhaseParser, code, p.cur, args...).WithFile(p.file))
}

// ParseModule parses the whole token stream into a Module of top-level
// declarations and bare expression statements.
func (p *Parser) ParseModule() *ast.Module {
	start := p.cur
	mod := &ast.Module{Name: "main"}
	for p.cur.Type != token.EOF {
		if p.startsDecl() {
			mod.Decls = append(mod.Decls, p.parseDecl())
		} else {
			mod.Decls = append(mod.Decls, p.parseExprStatement())
		}
	}
	mod.Pos = ast.Range{Start: start, End: p.cur}
	return mod
}

// startsDecl reports whether the parser is looking at a declaration head:
// `name :`, `name =`, or `name(?pat`.
func (p *Parser) startsDecl() bool {
	if p.cur.Type != token.IDENT {
		return false
	}
	switch p.peek(1).Type {
	case token.COLON, token.EQ:
		return true
	case token.LPAREN:
		return p.peek(2).Type == token.QUESTION
	}
	return false
}

func (p *Parser) parseDecl() ast.Node {
	startTok := p.cur
	nameTok := p.advance()
	var lhs ast.Node = &ast.Identifier{Name: nameTok.Lexeme, Pos: ast.Range{Start: nameTok, End: nameTok}}

	for p.cur.Type == token.LPAREN {
		p.advance()
		pat := p.parsePattern()
		closeTok := p.cur
		p.expect(token.RPAREN)
		lhs = &ast.Call{Fn: lhs, Arg: pat, Color: 0, Pos: ast.Range{Start: nameTok, End: closeTok}}
	}

	var typ ast.Node
	if p.cur.Type == token.COLON {
		p.advance()
		typ = p.parseType()
	}

	var rhs ast.Node
	if p.cur.Type == token.EQ {
		p.advance()
		rhs = p.parseExpr()
	}

	endTok := p.cur
	p.expect(token.SEMICOLON)
	if typ == nil && rhs == nil {
		p.errs = append(p.errs, diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrP001, startTok, "':' or '='", endTok.Lexeme).WithFile(p.file))
	}
	return &ast.ModuleDecl{Lhs: lhs, Type: typ, Rhs: rhs, Pos: ast.Range{Start: startTok, End: endTok}}
}

func (p *Parser) parseExprStatement() ast.Node {
	start := p.cur
	e := p.parseExpr()
	end := p.cur
	p.expect(token.SEMICOLON)
	return &ast.ExprStatement{Expr: e, Pos: ast.Range{Start: start, End: end}}
}

// parseType parses an expression, or the `e1 === e2` equivalence sugar
// (only valid in declaration-type position).
func (p *Parser) parseType() ast.Node {
	start := p.cur
	left := p.parseExpr()
	if p.cur.Type == token.EQUIV {
		p.advance()
		right := p.parseExpr()
		return &ast.EquivExpr{Lhs: left, Rhs: right, Pos: ast.Range{Start: start, End: p.cur}}
	}
	return left
}

func (p *Parser) parseExpr() ast.Node {
	return p.parseArrow()
}

func (p *Parser) parseArrow() ast.Node {
	if binder := p.tryParseBinderFnType(); binder != nil {
		return binder
	}
	left := p.parsePrimaryPostfix()
	if p.cur.Type == token.ARROW {
		p.advance()
		right := p.parseArrow()
		return &ast.FnType{ArgType: left, Output: right, Pos: ast.Range{Start: left.Range().Start, End: right.Range().End}}
	}
	return left
}

// tryParseBinderFnType recognizes the dependent fn-type forms
// `(name: type) -> out` and `[name: type] -> out`.
func (p *Parser) tryParseBinderFnType() ast.Node {
	erased := false
	switch {
	case p.cur.Type == token.LPAREN && p.peek(1).Type == token.IDENT && p.peek(2).Type == token.COLON:
	case p.cur.Type == token.LBRACKET && p.peek(1).Type == token.IDENT && p.peek(2).Type == token.COLON:
		erased = true
	default:
		return nil
	}
	startTok := p.cur
	closeTok := token.RPAREN
	if erased {
		closeTok = token.RBRACKET
	}
	p.advance() // ( or [
	nameTok := p.advance()
	p.advance() // :
	ty := p.parseExpr()
	p.expect(closeTok)
	p.expect(token.ARROW)
	out := p.parseArrow()
	return &ast.FnType{ArgName: nameTok.Lexeme, ArgType: ty, Erased: erased, Output: out, Pos: ast.Range{Start: startTok, End: out.Range().End}}
}

func (p *Parser) parsePrimaryPostfix() ast.Node {
	node := p.parsePrimary()
	for {
		switch p.cur.Type {
		case token.DOT:
			p.advance()
			nameTok := p.advance()
			node = &ast.MemberAccess{Lhs: node, Name: nameTok.Lexeme, Pos: ast.Range{Start: node.Range().Start, End: nameTok}}
		case token.LPAREN:
			p.advance()
			args := []ast.Node{p.parseExpr()}
			for p.cur.Type == token.COMMA {
				p.advance()
				args = append(args, p.parseExpr())
			}
			closeTok := p.cur
			p.expect(token.RPAREN)
			// `f(a, b, c)` is curry sugar for `f(a)(b)(c)` (every other call
			// form in this grammar is already single-argument).
			for _, arg := range args {
				node = &ast.Call{Fn: node, Arg: arg, Color: 0, Pos: ast.Range{Start: node.Range().Start, End: closeTok}}
			}
		case token.LBRACKET:
			p.advance()
			arg := p.parseExpr()
			closeTok := p.cur
			p.expect(token.RBRACKET)
			node = &ast.Call{Fn: node, Arg: arg, Color: 1, Pos: ast.Range{Start: node.Range().Start, End: closeTok}}
		default:
			return node
		}
	}
}

func (p *Parser) parsePrimary() ast.Node {
	tok := p.cur
	switch tok.Type {
	case token.IDENT:
		p.advance()
		return &ast.Identifier{Name: tok.Lexeme, Pos: ast.Range{Start: tok, End: tok}}
	case token.INT:
		p.advance()
		v, _ := tok.Literal.(int64)
		return &ast.NumberLit{Value: v, Pos: ast.Range{Start: tok, End: tok}}
	case token.STRING:
		p.advance()
		s, _ := tok.Literal.(string)
		return &ast.StringLit{Value: s, Pos: ast.Range{Start: tok, End: tok}}
	case token.QUESTION:
		return p.parsePattern()
	case token.BACKSLASH:
		p.advance()
		argName := ""
		var argType ast.Node
		if p.cur.Type == token.LPAREN && p.peek(1).Type == token.IDENT && p.peek(2).Type == token.COLON {
			// `\(x: T) body` — annotated argument.
			p.advance() // (
			argName = p.advance().Lexeme
			p.advance() // :
			argType = p.parseExpr()
			p.expect(token.RPAREN)
		} else if p.cur.Type == token.IDENT {
			argName = p.cur.Lexeme
			if argName == "_" {
				argName = ""
			}
			p.advance()
		}
		body := p.parseArrow()
		return &ast.Lambda{ArgName: argName, ArgType: argType, Body: body, Pos: ast.Range{Start: tok, End: body.Range().End}}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr()
		p.expect(token.RPAREN)
		return inner
	default:
		p.errorHere(diagnostics.ErrP004, tok.Lexeme)
		p.advance()
		return &ast.Identifier{Name: "<error>", Pos: ast.Range{Start: tok, End: tok}}
	}
}

func (p *Parser) parsePattern() ast.Node {
	tok := p.advance() // QUESTION
	name := ""
	if p.cur.Type == token.IDENT {
		name = p.cur.Lexeme
		p.advance()
	}
	return &ast.Pattern{Name: name, Pos: ast.Range{Start: tok, End: tok}}
}
