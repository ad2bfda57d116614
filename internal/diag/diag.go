// Package diag implements the coded event taxonomy and the cargo-style,
// per-file grouped diagnostic collector every pipeline stage reports
// through (§4.11, §7). It never reads from the logging service — logging
// and diagnostics are kept distinct concerns on purpose.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/espsec/espc/internal/span"
)

// Kind names the error taxonomy of §7. It is not a Go type name collision
// with anything in the pipeline on purpose: each stage tags the Kind it
// owns onto every Diagnostic it emits.
type Kind string

const (
	LexError        Kind = "LexError"
	SyntaxError     Kind = "SyntaxError"
	SymbolError     Kind = "SymbolError"
	ResolutionError Kind = "ResolutionError"
	SemanticError   Kind = "SemanticError"
	StructuralError Kind = "StructuralError"
	ContractError   Kind = "ContractError"
	CollectionError Kind = "CollectionError"
	ExecutionError  Kind = "ExecutionError"
)

// Severity classifies a Diagnostic for display and for fatal-threshold
// checks.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Code is a numeric tag partitioned into success/warning/error ranges
// (§4.11). Ranges: 0-999 success/info, 1000-1999 warning, 2000+ error.
type Code int

const (
	CodeOK Code = 0

	CodeUnreachedOptionalField Code = 1000

	CodeLexUnterminatedString Code = 2000
	CodeLexInvalidEscape      Code = 2001
	CodeLexStrayCharacter     Code = 2002

	CodeSyntaxUnexpectedToken Code = 2100
	CodeSyntaxRecovered       Code = 2101

	CodeSymbolDuplicateName Code = 2200
	CodeSymbolUnknownRef    Code = 2201

	CodeResolutionCycle          Code = 2300
	CodeResolutionUnresolvable   Code = 2301
	CodeResolutionDivideByZero   Code = 2302
	CodeResolutionCoercionFailed Code = 2303

	CodeSemanticOperationNotSupported Code = 2400
	CodeSemanticMalformedFieldPath    Code = 2401

	CodeStructuralWrongKind      Code = 2500
	CodeStructuralOrphanRef      Code = 2501
	CodeStructuralDuplicateField Code = 2502

	CodeContractFieldMissing     Code = 2600
	CodeContractOperationNotAllowed Code = 2601
	CodeContractUnknownCtn       Code = 2602

	CodeCollectionTimeout Code = 2700
	CodeCollectionIO      Code = 2701
	CodeCollectionBadExit Code = 2702

	CodeExecutionInvalidRegex    Code = 2800
	CodeExecutionOverflow        Code = 2801
	CodeExecutionMissingField    Code = 2802
)

// FatalThreshold is the lowest fatal Code: a diagnostic at or above it is
// fatal for its file and short-circuits the remaining pipeline stages (§4.11).
const FatalThreshold = 2000

// Fatal reports whether code is at or above the fatal threshold.
func (c Code) Fatal() bool { return c >= FatalThreshold }

// Diagnostic is one user-visible event: `{code, severity, file, span,
// message, hints[]}` (§7).
type Diagnostic struct {
	Code     Code
	Kind     Kind
	Severity Severity
	File     string
	Span     span.Span
	Message  string
	Hints    []string
}

// Error satisfies the error interface so a Diagnostic can be threaded
// through ordinary Go error-handling paths as well as the Collector.
func (d Diagnostic) Error() string { return d.String() }

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: [%s] %s: %s", d.Span, d.Severity, d.Kind, d.Message)
	for _, h := range d.Hints {
		s += "\n  = hint: " + h
	}
	return s
}

// Collector accumulates diagnostics from every stage behind a single
// mutex, then renders them grouped per file in deterministic path order
// (§5 "the error collector uses a single mutex-guarded accumulator";
// §5 "the batch reporter merges events in deterministic file-path order").
type Collector struct {
	mu    sync.Mutex
	byFile map[string][]Diagnostic
}

// NewCollector returns an empty Collector ready for concurrent use.
func NewCollector() *Collector {
	return &Collector{byFile: make(map[string][]Diagnostic)}
}

// Add records one diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byFile[d.File] = append(c.byFile[d.File], d)
}

// HasFatal reports whether any recorded diagnostic for file is fatal.
func (c *Collector) HasFatal(file string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.byFile[file] {
		if d.Code.Fatal() {
			return true
		}
	}
	return false
}

// HasAnyFatal reports whether any recorded diagnostic, across all files,
// is fatal.
func (c *Collector) HasAnyFatal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ds := range c.byFile {
		for _, d := range ds {
			if d.Code.Fatal() {
				return true
			}
		}
	}
	return false
}

// ForFile returns a copy of the diagnostics recorded for file, in
// emission order.
func (c *Collector) ForFile(file string) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.byFile[file]))
	copy(out, c.byFile[file])
	return out
}

// Files returns the set of files with at least one recorded diagnostic,
// sorted lexicographically — the deterministic order the batch reporter
// renders in, independent of completion order (§5).
func (c *Collector) Files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.byFile))
	for f := range c.byFile {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Render produces the cargo-style grouped text rendering across every
// file, in deterministic order.
func (c *Collector) Render() string {
	var out string
	for _, f := range c.Files() {
		out += fmt.Sprintf("── %s ──\n", f)
		for _, d := range c.ForFile(f) {
			out += d.String() + "\n"
		}
	}
	return out
}
