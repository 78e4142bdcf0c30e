package pipeline

// Pipeline is an ordered sequence of processing stages (lex, parse, lower,
// elaborate).
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline from stages, run in argument order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order. A stage that records a diagnostic
// does not stop the pipeline: later stages are expected to degrade
// gracefully (e.g. the elaborator still runs over a partially-lowered
// module) so a single source file can report every error it contains in
// one pass.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
