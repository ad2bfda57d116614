// Package symbols implements symbol discovery (§4.3): one linear pass over
// the AST that populates a table of declared names, in declaration order,
// rejecting duplicates within the file's single scope.
package symbols

import (
	"fmt"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/span"
)

// Kind mirrors ast.DeclKind but lives in this package so callers that only
// need the symbol table don't have to import ast for the enum too.
type Kind string

const (
	KindVariable  Kind = "variable"
	KindSet       Kind = "set"
	KindObject    Kind = "object"
	KindState     Kind = "state"
	KindCriterion Kind = "criterion"
)

func kindOf(d ast.Decl) Kind {
	switch d.Kind() {
	case ast.DeclVariable:
		return KindVariable
	case ast.DeclSet:
		return KindSet
	case ast.DeclObject:
		return KindObject
	case ast.DeclState:
		return KindState
	case ast.DeclCriterion:
		return KindCriterion
	default:
		return ""
	}
}

// Symbol is one entry in the table: `name -> {kind, declaration-span,
// scope}` (§3). ESP has a single file-wide scope (no cross-file linking,
// §1 Non-goals), so Scope is reserved for forward compatibility but is
// always "file" today.
type Symbol struct {
	Name  string
	Kind  Kind
	Decl  ast.Decl
	Span  span.Span
	Scope string
}

// Table is the populated symbol table for one file.
type Table struct {
	order  []string
	byName map[string]Symbol
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{byName: make(map[string]Symbol)}
}

// Lookup returns the symbol registered under name, if any.
func (t *Table) Lookup(name string) (Symbol, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// Names returns every registered name in declaration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of registered symbols.
func (t *Table) Len() int { return len(t.order) }

func (t *Table) insert(sym Symbol) {
	t.byName[sym.Name] = sym
	t.order = append(t.order, sym.Name)
}

// Discover walks file.Declarations in order, populating a Table. Duplicate
// names within the file are reported as SymbolError diagnostics citing
// both the original and the offending span (§4.3); the first declaration
// of a duplicated name wins the table entry, so later stages resolve
// against a stable symbol.
func Discover(file *ast.EspFile) (*Table, []diag.Diagnostic) {
	table := NewTable()
	var diags []diag.Diagnostic

	for _, decl := range file.Declarations {
		name := decl.DeclName()
		if existing, ok := table.Lookup(name); ok {
			diags = append(diags, diag.Diagnostic{
				Code:     diag.CodeSymbolDuplicateName,
				Kind:     diag.SymbolError,
				Severity: diag.SeverityError,
				File:     file.Path,
				Span:     decl.DeclSpan(),
				Message: fmt.Sprintf(
					"%q is already declared as a %s at %s",
					name, existing.Kind, existing.Span,
				),
			})
			continue
		}
		table.insert(Symbol{
			Name: name, Kind: kindOf(decl), Decl: decl,
			Span: decl.DeclSpan(), Scope: "file",
		})
	}
	return table, diags
}
