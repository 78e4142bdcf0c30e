package elaborate

import (
	"fmt"

	"github.com/dtlc-lang/dtlc/internal/constraints"
	"github.com/dtlc-lang/dtlc/internal/expr"
	"github.com/dtlc-lang/dtlc/internal/pipeline"
	"github.com/dtlc-lang/dtlc/internal/stringify"
)

// Processor is the pipeline's elaboration stage: it resolves ctx.HIR
// against a fresh Elaborator and fills in ctx.TopLevelResults.
type Processor struct{}

// ctxTracer adapts PipelineContext.Log into a constraints.Tracer for the -v
// trace.
type ctxTracer struct{ ctx *pipeline.PipelineContext }

func (t ctxTracer) ConstraintAdded(c *constraints.Constraint) {
	t.ctx.Log("constraint-added", c.String())
}

func (t ctxTracer) UnknownResolved(u *expr.Unknown, value expr.Expression) {
	t.ctx.Log("unknown-resolved", fmt.Sprintf("%s := %s", stringify.Stringify(u), stringify.Stringify(value)))
}

func (ep *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.HIR == nil {
		return ctx
	}
	universe := expr.NewUniverse()
	e := New(universe)
	if ctx.Verbose {
		e.Solver.Trace = ctxTracer{ctx: ctx}
	}

	diags := e.Run(ctx.HIR)
	ctx.Diagnostics = append(ctx.Diagnostics, diags...)
	ctx.Universe = universe
	ctx.Solver = e.Solver
	ctx.ModuleRoot = e.ModuleRoot

	for i := range ctx.TopLevelResults {
		ref := ctx.TopLevelResults[i].Ref
		val := e.Resolved(ref)
		if val == nil {
			continue
		}
		reduced := e.Reduce(val)
		ctx.TopLevelResults[i].Value = reduced
		ctx.TopLevelResults[i].Type = e.TypeOf(reduced)
	}
	ctx.Log("elaborate", fmt.Sprintf("resolved %d/%d registers", countDone(e), ctx.HIR.Len()))
	return ctx
}

func countDone(e *Elaborator) int {
	n := 0
	for _, ok := range e.done {
		if ok {
			n++
		}
	}
	return n
}

var _ pipeline.Processor = (*Processor)(nil)
