package pipeline

import (
	"github.com/google/uuid"

	"github.com/dtlc-lang/dtlc/internal/ast"
	"github.com/dtlc-lang/dtlc/internal/constraints"
	"github.com/dtlc-lang/dtlc/internal/diagnostics"
	"github.com/dtlc-lang/dtlc/internal/expr"
	"github.com/dtlc-lang/dtlc/internal/hir"
)

// TopLevelResult is one bare top-level expression statement's elaborated
// value and type, printed as a pair per statement.
type TopLevelResult struct {
	Ref   hir.Ref
	Value expr.Expression
	Type  expr.Expression
}

// TraceEntry is one line of the verbose elaboration trace, structured so
// it can be dumped as YAML with the --trace-yaml flag.
type TraceEntry struct {
	Step   string `yaml:"step"`
	Detail string `yaml:"detail,omitempty"`
}

// PipelineContext holds all data passed between pipeline stages: source
// text through lexing, parsing, lowering, and elaboration, plus the
// diagnostics and trace accumulated along the way.
type PipelineContext struct {
	RunID      string // uuid, stamped once per run for trace correlation
	SourceCode string
	FilePath   string

	TokenStream TokenStream
	AstRoot     *ast.Module
	HIR         *hir.Array

	Universe   *expr.Universe
	Solver     *constraints.Solver
	ModuleRoot *expr.Symbol // "main", parent of every named top-level declaration

	TopLevelResults []TopLevelResult
	Diagnostics     []*diagnostics.Diagnostic

	Verbose bool
	Trace   []TraceEntry
}

// NewPipelineContext creates and initializes a new PipelineContext for one
// source file.
func NewPipelineContext(source, filePath string, verbose bool) *PipelineContext {
	return &PipelineContext{
		RunID:      uuid.NewString(),
		SourceCode: source,
		FilePath:   filePath,
		Verbose:    verbose,
	}
}

// Log appends a trace entry if verbose tracing is enabled.
func (c *PipelineContext) Log(step, detail string) {
	if !c.Verbose {
		return
	}
	c.Trace = append(c.Trace, TraceEntry{Step: step, Detail: detail})
}

// Failed returns true once any diagnostic has been recorded.
func (c *PipelineContext) Failed() bool {
	return len(c.Diagnostics) > 0
}
