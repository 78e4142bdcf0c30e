package parser

import (
	"github.com/dtlc-lang/dtlc/internal/diagnostics"
	"github.com/dtlc-lang/dtlc/internal/lexer"
	"github.com/dtlc-lang/dtlc/internal/pipeline"
	"github.com/dtlc-lang/dtlc/internal/token"
)

// Processor is the pipeline's parsing stage: it consumes the token stream
// into an *ast.Module.
type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	stream, ok := ctx.TokenStream.(*lexer.Stream)
	if !ok {
		ctx.Diagnostics = append(ctx.Diagnostics,
			diagnostics.New(diagnostics.PhaseParser, diagnostics.ErrP001, token.Token{}, "<stream>", "nil token stream").WithFile(ctx.FilePath))
		return ctx
	}

	p := New(stream, ctx.FilePath)
	ctx.AstRoot = p.ParseModule()
	ctx.Diagnostics = append(ctx.Diagnostics, p.Errors()...)
	ctx.Log("parse", "built AST for "+ctx.FilePath)
	return ctx
}

var _ pipeline.Processor = (*Processor)(nil)
