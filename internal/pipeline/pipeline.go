// Package pipeline runs the seven compiler stages over one file — file
// ingestion, lexical analysis, syntactic analysis, symbol discovery,
// reference resolution, semantic analysis, structural validation — and
// accretes a single Output across them, short-circuiting as soon as a
// stage reports a fatal diagnostic (§4.11, §6).
//
// Grounded on the teacher's core/pipeline.go Pipeline.Apply: an ordered
// sequence of named steps, each appending to a shared result and able to
// abort the remaining steps on failure, kept here with ESP's seven
// stages standing in for morfx's parse/resolve/select/plan/apply steps.
package pipeline

import (
	"time"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/lexer"
	"github.com/espsec/espc/internal/parser"
	"github.com/espsec/espc/internal/resolve"
	"github.com/espsec/espc/internal/semantic"
	"github.com/espsec/espc/internal/symbols"
	"github.com/espsec/espc/internal/validate"
)

// Status summarizes where a file's pipeline run landed.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial" // warnings only, no fatal diagnostics
	StatusError   Status = "error"   // a fatal diagnostic aborted the run
)

// Stats carries lightweight per-run metrics (§6 report shape).
type Stats struct {
	BytesProcessed int
	Duration       time.Duration
	Stage          string // last stage attempted
}

// Output is the accreted result of running every stage over one file
// (§6's `PipelineOutput{ast_tree, symbols}` bundle, extended with the
// resolved executable tree and accumulated diagnostics needed by
// execution and reporting).
type Output struct {
	File        string
	Status      Status
	Stats       Stats
	Diagnostics []diag.Diagnostic
	AST         *ast.EspFile
	Symbols     *symbols.Table
	Tree        *resolve.Tree
}

func (o *Output) fatal() bool {
	for _, d := range o.Diagnostics {
		if d.Code.Fatal() {
			return true
		}
	}
	return false
}

func (o *Output) add(ds []diag.Diagnostic) {
	o.Diagnostics = append(o.Diagnostics, ds...)
}

// Run drives the full seven-stage pipeline over src, read from path.
// contracts is consulted during reference resolution (object binding) and
// semantic/structural validation. tabWidth is an optional trailing
// argument forwarded to the lexer's column decoder (ESP_LEX_TAB_WIDTH,
// §6 "Configuration").
func Run(path string, src []byte, contracts *contract.Registry, tabWidth ...int) *Output {
	start := time.Now()
	out := &Output{File: path, Status: StatusSuccess, Stats: Stats{BytesProcessed: len(src)}}

	// Stage 1+2: file ingestion is the caller's responsibility (it
	// supplies src); lexical analysis tokenizes it.
	out.Stats.Stage = "lex"
	l := lexer.New(path, src, tabWidth...)
	toks, lexErr := l.Tokenize()
	if lexErr != nil {
		out.add([]diag.Diagnostic{{
			Code: lexErr.Code, Kind: diag.LexError, Severity: diag.SeverityError,
			File: path, Span: lexErr.Span, Message: lexErr.Message,
		}})
		out.Status = StatusError
		out.Stats.Duration = time.Since(start)
		return out
	}

	// Stage 3: syntactic analysis.
	out.Stats.Stage = "parse"
	p := parser.New(path, toks, l.SourceMap())
	file, parseDiags := p.ParseFile()
	out.add(parseDiags)
	out.AST = file
	if out.fatal() {
		out.Status = StatusError
		out.Stats.Duration = time.Since(start)
		return out
	}

	// Stage 4: symbol discovery.
	out.Stats.Stage = "symbols"
	table, symDiags := symbols.Discover(file)
	out.add(symDiags)
	out.Symbols = table
	if out.fatal() {
		out.Status = StatusError
		out.Stats.Duration = time.Since(start)
		return out
	}

	// Stage 5: reference resolution.
	out.Stats.Stage = "resolve"
	ctx := resolve.NewContext(file, table)
	for _, d := range file.Declarations {
		switch decl := d.(type) {
		case *ast.VariableDecl:
			ctx.ResolveVariable(decl.Name)
		}
	}
	resolveSets(ctx, file)
	tree, treeDiags := resolve.Build(file, ctx, contracts)
	out.add(treeDiags)
	out.Tree = tree
	if out.fatal() {
		out.Status = StatusError
		out.Stats.Duration = time.Since(start)
		return out
	}

	// Stage 6: semantic analysis.
	out.Stats.Stage = "semantic"
	out.add(semantic.Check(path, tree, contracts))
	if out.fatal() {
		out.Status = StatusError
		out.Stats.Duration = time.Since(start)
		return out
	}

	// Stage 7: structural validation.
	out.Stats.Stage = "validate"
	out.add(validate.Check(path, file, tree, contracts))
	if out.fatal() {
		out.Status = StatusError
	} else if len(out.Diagnostics) > 0 {
		out.Status = StatusPartial
	}

	out.Stats.Duration = time.Since(start)
	return out
}

func resolveSets(ctx *resolve.Context, file *ast.EspFile) {
	for _, d := range file.Declarations {
		if decl, ok := d.(*ast.SetDecl); ok {
			ctx.ResolveSet(decl.Name)
		}
	}
}
