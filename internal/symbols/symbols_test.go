package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/span"
	"github.com/espsec/espc/internal/types"
)

func TestDiscover_PopulatesTableInDeclarationOrder(t *testing.T) {
	file := &ast.EspFile{
		Declarations: []ast.Decl{
			&ast.VariableDecl{Name: "a", DataType: types.TypeInt},
			&ast.VariableDecl{Name: "b", DataType: types.TypeInt},
		},
	}

	table, diags := Discover(file)
	assert.Empty(t, diags)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"a", "b"}, table.Names())

	sym, ok := table.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, KindVariable, sym.Kind)
	assert.Equal(t, "file", sym.Scope)
}

func TestDiscover_DuplicateNameReportsDiagnosticAndKeepsFirst(t *testing.T) {
	first := &ast.VariableDecl{Name: "x", DataType: types.TypeInt, Span: span.Span{Start: span.Position{Line: 1}}}
	second := &ast.VariableDecl{Name: "x", DataType: types.TypeString, Span: span.Span{Start: span.Position{Line: 5}}}
	file := &ast.EspFile{Declarations: []ast.Decl{first, second}}

	table, diags := Discover(file)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeSymbolDuplicateName, diags[0].Code)
	assert.Equal(t, diag.SeverityError, diags[0].Severity)

	assert.Equal(t, 1, table.Len())
	sym, ok := table.Lookup("x")
	require.True(t, ok)
	assert.Same(t, first, sym.Decl)
}

func TestDiscover_EmptyFileYieldsEmptyTable(t *testing.T) {
	file := &ast.EspFile{Declarations: []ast.Decl{}}
	table, diags := Discover(file)
	assert.Empty(t, diags)
	assert.Equal(t, 0, table.Len())
}
