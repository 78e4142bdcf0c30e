// Command dtlc runs the elaborator over a single source file: lexing,
// parsing, lowering to HIR, and elaborating against the builtin universe,
// then prints each top-level expression's value and type and any
// diagnostics raised along the way.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/dtlc-lang/dtlc/internal/config"
	"github.com/dtlc-lang/dtlc/internal/elaborate"
	"github.com/dtlc-lang/dtlc/internal/expr"
	"github.com/dtlc-lang/dtlc/internal/lexer"
	"github.com/dtlc-lang/dtlc/internal/lower"
	"github.com/dtlc-lang/dtlc/internal/parser"
	"github.com/dtlc-lang/dtlc/internal/pipeline"
	"github.com/dtlc-lang/dtlc/internal/prettyprinter"
	"github.com/dtlc-lang/dtlc/internal/stringify"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	verbose := false
	traceYAML := false
	astTree := false
	var path string
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-v", "--verbose":
			verbose = true
		case "--trace-yaml":
			verbose = true
			traceYAML = true
		case "--ast-tree":
			astTree = true
		default:
			path = arg
		}
	}
	config.Verbose = verbose
	if traceYAML {
		config.TraceFormat = "yaml"
	}

	source, filePath, err := readSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dtlc: %s\n", err)
		os.Exit(1)
	}

	ctx := pipeline.NewPipelineContext(source, filePath, verbose)
	pl := pipeline.New(
		&lexer.Processor{},
		&parser.Processor{},
		&lower.Processor{},
		&elaborate.Processor{},
	)
	ctx = pl.Run(ctx)

	if astTree && ctx.AstRoot != nil {
		tp := prettyprinter.NewTreePrinter()
		tp.PrintModule(ctx.AstRoot)
		fmt.Fprint(os.Stderr, tp.String())
	}

	for _, res := range ctx.TopLevelResults {
		if res.Value == nil {
			continue
		}
		printResult(res)
	}
	if ctx.ModuleRoot != nil {
		printNamedDecls(ctx.ModuleRoot)
	}

	if verbose {
		printTrace(ctx)
	}

	if len(ctx.Diagnostics) > 0 {
		for _, d := range ctx.Diagnostics {
			fmt.Fprintln(os.Stderr, colorError(d.Error()))
		}
		os.Exit(1)
	}
}

func printResult(res pipeline.TopLevelResult) {
	value := stringify.Stringify(res.Value)
	if res.Type == nil {
		fmt.Println(value)
		return
	}
	fmt.Printf("%s : %s\n", value, stringify.Stringify(res.Type))
}

// printNamedDecls prints every named top-level declaration hung off root,
// sorted by name for stable output.
func printNamedDecls(root *expr.Symbol) {
	names := make([]string, 0, len(root.SubSymbols))
	for name := range root.SubSymbols {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sym := root.SubSymbols[name]
		if sym.Value == nil {
			continue
		}
		if sym.Type == nil {
			fmt.Printf("%s = %s\n", name, stringify.Stringify(sym.Value))
			continue
		}
		fmt.Printf("%s = %s : %s\n", name, stringify.Stringify(sym.Value), stringify.Stringify(sym.Type))
	}
}

func printTrace(ctx *pipeline.PipelineContext) {
	if config.TraceFormat == "yaml" {
		out, err := yaml.Marshal(struct {
			RunID string                    `yaml:"run_id"`
			Trace []pipeline.TraceEntry     `yaml:"trace"`
		}{RunID: ctx.RunID, Trace: ctx.Trace})
		if err != nil {
			fmt.Fprintf(os.Stderr, "dtlc: could not render trace: %s\n", err)
			return
		}
		fmt.Fprintln(os.Stderr, string(out))
		return
	}
	for _, entry := range ctx.Trace {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", colorTrace("[trace]"), entry.Step, entry.Detail)
	}
}

// colorTrace and colorError dim/color output only when stderr is an
// interactive terminal (spec's ambient CLI texture).
func colorTrace(s string) string {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return s
	}
	return "\x1b[2m" + s + "\x1b[0m"
}

func colorError(s string) string {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func readSource(path string) (source, filePath string, err error) {
	if path == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", "", fmt.Errorf("usage: dtlc [-v] <file>%s, or pipe source on stdin", config.SourceFileExt)
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(data), path, nil
}
