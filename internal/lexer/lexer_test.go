package lexer_test

import (
	"testing"

	"github.com/dtlc-lang/dtlc/internal/lexer"
	"github.com/dtlc-lang/dtlc/internal/token"
)

func tokenize(src string) []token.Token {
	l := lexer.New(src, "<test>")
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestLexerPunctuationAndSpecialForms(t *testing.T) {
	toks := tokenize(`f(?x) = x; -> \ \\ === == =`)
	var got []token.Type
	for _, tok := range toks {
		got = append(got, tok.Type)
	}
	want := []token.Type{
		token.IDENT, token.LPAREN, token.QUESTION, token.IDENT, token.RPAREN,
		token.EQ, token.IDENT, token.SEMICOLON,
		token.ARROW, token.BACKSLASH, token.DBACKSLASH, token.EQUIV, token.EQEQ, token.EQ,
		token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("token count: got %d (%v), want %d (%v)", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexerNumberAndString(t *testing.T) {
	toks := tokenize(`42 "hi there"`)
	if toks[0].Type != token.INT || toks[0].Literal.(int64) != 42 {
		t.Fatalf("want INT 42, got %#v", toks[0])
	}
	if toks[1].Type != token.STRING || toks[1].Literal.(string) != "hi there" {
		t.Fatalf("want STRING \"hi there\", got %#v", toks[1])
	}
}

func TestLexerCommentsAndWhitespaceSkipped(t *testing.T) {
	toks := tokenize("a # a line comment\n  b")
	if len(toks) != 3 { // a, b, EOF
		t.Fatalf("want 3 tokens (a, b, EOF), got %d: %v", len(toks), toks)
	}
	if toks[0].Lexeme != "a" || toks[1].Lexeme != "b" {
		t.Fatalf("want a, b; got %q, %q", toks[0].Lexeme, toks[1].Lexeme)
	}
}

func TestLexerKeywordVsIdent(t *testing.T) {
	toks := tokenize("if x")
	if toks[0].Type != token.IF {
		t.Fatalf("want IF, got %s", toks[0].Type)
	}
	if toks[1].Type != token.IDENT {
		t.Fatalf("want IDENT, got %s", toks[1].Type)
	}
}

func TestLexerIllegalRune(t *testing.T) {
	l := lexer.New("$", "<test>")
	tok := l.Next()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("want ILLEGAL, got %s", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("want 1 lexer diagnostic, got %d", len(l.Errors()))
	}
}
