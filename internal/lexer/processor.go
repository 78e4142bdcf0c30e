package lexer

import "github.com/dtlc-lang/dtlc/internal/pipeline"

// Processor is the pipeline's lexing stage: it wraps the source text in a
// Lexer and Stream and hands the stream on for parsing.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	lex := New(ctx.SourceCode, ctx.FilePath)
	ctx.TokenStream = NewStream(lex)
	ctx.Log("lex", "tokenized "+ctx.FilePath)
	return ctx
}

var _ pipeline.Processor = (*Processor)(nil)
var _ pipeline.TokenStream = (*Stream)(nil)
