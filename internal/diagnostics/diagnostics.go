// Package diagnostics defines the closed set of errors the pipeline can
// report, phase-tagged by stage (lexer, parser, lower, elaborate).
package diagnostics

import (
	"fmt"

	"github.com/dtlc-lang/dtlc/internal/token"
)

// Phase identifies which pipeline stage raised a diagnostic.
type Phase string

const (
	PhaseLexer     Phase = "lexer"
	PhaseParser    Phase = "parser"
	PhaseLower     Phase = "lower"
	PhaseElaborate Phase = "elaborate"
)

type ErrorCode string

const (
	// Lexer
	ErrL001 ErrorCode = "L001" // invalid character

	// Parser
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // could not parse integer literal
	ErrP003 ErrorCode = "P003" // unterminated string literal
	ErrP004 ErrorCode = "P004" // no prefix parse rule for token
	ErrP005 ErrorCode = "P005" // expected closing token
	ErrP006 ErrorCode = "P006" // invalid pattern position

	// Lower (AST -> HIR)
	ErrW001 ErrorCode = "W001" // undefined identifier
	ErrW002 ErrorCode = "W002" // invalid declaration shape
	ErrW003 ErrorCode = "W003" // pattern used outside a rule head

	// Elaborate
	ErrE001 ErrorCode = "E001" // UnresolvedConstraint(c)
	ErrE002 ErrorCode = "E002" // Uninferred(unknown)
	ErrE003 ErrorCode = "E003" // symbol's flags forbid this definition
)

var errorTemplates = map[ErrorCode]string{
	ErrL001: "invalid character: '%s'",
	ErrP001: "unexpected token: expected %s, got '%s'",
	ErrP002: "could not parse '%s' as an integer",
	ErrP003: "unterminated string literal",
	ErrP004: "no prefix parse rule for '%s'",
	ErrP005: "expected '%s', got '%s' instead",
	ErrP006: "pattern '%s' is only valid in a rule head",
	ErrW001: "undefined identifier: '%s'",
	ErrW002: "invalid declaration shape: %s",
	ErrW003: "pattern '%s' used outside a rule head",
	ErrE001: "UnresolvedConstraint(%s)",
	ErrE002: "Uninferred(%s)",
	ErrE003: "'%s' does not allow %s",
}

// Diagnostic is the single record type for every error the pipeline
// produces: parse errors, lowering errors, and the two elaboration
// diagnostics (UnresolvedConstraint and Uninferred).
type Diagnostic struct {
	Code  ErrorCode
	Phase Phase
	Args  []interface{}
	Token token.Token
	File  string
}

func (d *Diagnostic) Error() string {
	template, ok := errorTemplates[d.Code]
	if !ok {
		return fmt.Sprintf("unknown error code: %s", d.Code)
	}
	message := fmt.Sprintf(template, d.Args...)

	prefix := ""
	if d.File != "" {
		prefix = fmt.Sprintf("%s: ", d.File)
	}
	phaseStr := ""
	if d.Phase != "" {
		phaseStr = fmt.Sprintf("[%s] ", d.Phase)
	}
	if d.Token.Line > 0 {
		return fmt.Sprintf("%s%serror at %d:%d [%s]: %s", prefix, phaseStr, d.Token.Line, d.Token.Column, d.Code, message)
	}
	return fmt.Sprintf("%s%serror [%s]: %s", prefix, phaseStr, d.Code, message)
}

// New creates a phase-tagged diagnostic at tok with the given template args.
func New(phase Phase, code ErrorCode, tok token.Token, args ...interface{}) *Diagnostic {
	return &Diagnostic{Code: code, Phase: phase, Token: tok, Args: args}
}

// WithFile sets the diagnostic's source file and returns it, for chaining
// at the call site.
func (d *Diagnostic) WithFile(file string) *Diagnostic {
	d.File = file
	return d
}

// UnresolvedConstraint reports a constraint that never reached DONE by the
// time the outer elaboration loop hit a fixed point.
func UnresolvedConstraint(description string) *Diagnostic {
	return &Diagnostic{Code: ErrE001, Phase: PhaseElaborate, Args: []interface{}{description}}
}

// Uninferred reports an Unknown that was never assigned a value.
func Uninferred(unknownDisplayName string) *Diagnostic {
	return &Diagnostic{Code: ErrE002, Phase: PhaseElaborate, Args: []interface{}{unknownDisplayName}}
}
