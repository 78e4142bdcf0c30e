package lower

import "github.com/dtlc-lang/dtlc/internal/pipeline"

// Processor is the pipeline's lowering stage: it walks ctx.AstRoot into an
// HIR register array.
type Processor struct{}

func (lp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}
	l := New(ctx.FilePath)
	l.Lower(ctx.AstRoot)
	ctx.HIR = l.Array()
	ctx.Diagnostics = append(ctx.Diagnostics, l.Errors()...)
	for _, ref := range l.TopLevelExprs {
		ctx.TopLevelResults = append(ctx.TopLevelResults, pipeline.TopLevelResult{Ref: ref})
	}
	ctx.Log("lower", "emitted HIR for "+ctx.FilePath)
	return ctx
}

var _ pipeline.Processor = (*Processor)(nil)
