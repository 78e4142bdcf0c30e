// Package config holds process-wide switches and the reserved name table
// shared by every stage of the pipeline.
package config

// SourceFileExt is the recognized extension for dtlc source files.
const SourceFileExt = ".dt"

// Verbose enables the -v trace: every constraint addition, every Unknown
// resolution and a summary line per stage are logged.
var Verbose = false

// IsTestMode normalizes auto-generated Unknown/display names (e.g. "?u3"
// becomes "?u?") so stringifier output is deterministic across runs. Tests
// set this; production runs leave it false so -v traces show real ids.
var IsTestMode = false

// TraceFormat selects how the -v trace is rendered: "text" (default) or
// "yaml" for a structured dump.
var TraceFormat = "text"

// Reserved builtin symbol names. These names may not be redeclared by
// user SYMBOL registers at the same scope.
const (
	RootSymbolName    = "root"
	BuiltinSymbolName = "builtin"
	TypeSymbolName    = "Type"
	LevelSymbolName   = "Level"
	SuccSymbolName    = "succ"
	MaxSymbolName     = "max"
	NumberSymbolName  = "number"
	StringSymbolName  = "string"
	UntypedSymbolName = "untyped"
	ErrorTypeName     = "error-type"
	VoidSymbolName    = "void"
	UnitSymbolName    = "unit"
	EqualSymbolName   = "Equal"
)
