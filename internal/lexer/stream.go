package lexer

import "github.com/dtlc-lang/dtlc/internal/token"

// Stream buffers tokens from a Lexer so the parser can look ahead without
// re-scanning, satisfying pipeline.TokenStream.
type Stream struct {
	lex  *Lexer
	buf  []token.Token
	done bool
}

// NewStream returns a Stream drawing tokens from lex.
func NewStream(lex *Lexer) *Stream {
	return &Stream{lex: lex}
}

func (s *Stream) fill(n int) {
	for !s.done && len(s.buf) < n {
		t := s.lex.Next()
		s.buf = append(s.buf, t)
		if t.Type == token.EOF {
			s.done = true
		}
	}
}

// Next consumes and returns the next token.
func (s *Stream) Next() token.Token {
	s.fill(1)
	if len(s.buf) == 0 {
		return token.Token{Type: token.EOF}
	}
	t := s.buf[0]
	s.buf = s.buf[1:]
	return t
}

// Peek returns up to n tokens without consuming them.
func (s *Stream) Peek(n int) []token.Token {
	s.fill(n)
	if n > len(s.buf) {
		n = len(s.buf)
	}
	out := make([]token.Token, n)
	copy(out, s.buf[:n])
	return out
}
