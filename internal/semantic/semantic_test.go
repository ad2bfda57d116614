package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/lexer"
	"github.com/espsec/espc/internal/parser"
	"github.com/espsec/espc/internal/resolve"
	"github.com/espsec/espc/internal/symbols"
	"github.com/espsec/espc/internal/types"
)

const fixtureKind = "fixture_kind"

func fixtureContracts() *contract.Registry {
	reg := contract.NewRegistry()
	reg.Register(contract.Contract{
		Kind:         fixtureKind,
		ObjectFields: map[string]types.DataType{"path": types.TypeString},
		StateFields: map[string]contract.StateField{
			"name": {DataType: types.TypeString, AllowedOps: []types.Operation{types.OpEquals, types.OpContains}},
		},
	})
	return reg
}

func buildTree(t *testing.T, src string) (*ast.EspFile, *resolve.Tree) {
	t.Helper()
	l := lexer.New("t.esp", []byte(src))
	toks, lexErr := l.Tokenize()
	require.Nil(t, lexErr)
	p := parser.New("t.esp", toks, l.SourceMap())
	file, diags := p.ParseFile()
	require.Empty(t, diags)
	table, symDiags := symbols.Discover(file)
	require.Empty(t, symDiags)
	ctx := resolve.NewContext(file, table)
	tree, _ := resolve.Build(file, ctx, fixtureContracts())
	return file, tree
}

func TestCheck_OperationNotSupportedForStringField(t *testing.T) {
	src := `
object o {
	module: "fixture_kind"
	parameter path = "/etc/x"
	select name
}

state s {
	field name greater_than "zzz"
}

criterion c {
	object_ref: o
	state_ref: s
	join: all
}
`
	_, tree := buildTree(t, src)
	diags := Check("t.esp", tree, fixtureContracts())
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeSemanticOperationNotSupported, diags[0].Code)
}

func TestCheck_AllowedOperationProducesNoDiagnostic(t *testing.T) {
	src := `
object o {
	module: "fixture_kind"
	parameter path = "/etc/x"
	select name
}

state s {
	field name equals "x"
}

criterion c {
	object_ref: o
	state_ref: s
	join: all
}
`
	_, tree := buildTree(t, src)
	diags := Check("t.esp", tree, fixtureContracts())
	assert.Empty(t, diags)
}
