package validate

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

func fixtureContracts() *contract.Registry {
	reg := contract.NewRegistry()
	reg.Register(contract.Contract{
		Kind: "fixture_kind",
		ObjectFields: map[string]types.DataType{
			"path": types.TypeString,
			"mode": types.TypeString,
		},
		StateFields: map[string]contract.StateField{
			"name": {DataType: types.TypeString, AllowedOps: []types.Operation{types.OpEquals}},
		},
	})
	return reg
}

func buildAll(t *testing.T, src string) (*ast.EspFile, *resolve.Tree) {
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

func TestCheck_MissingRequiredContractField(t *testing.T) {
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
	file, tree := buildAll(t, src)
	diags := Check("t.esp", file, tree, fixtureContracts())
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeContractFieldMissing, diags[0].Code)
	assert.Contains(t, diags[0].Message, "mode")
}

func TestCheck_OrphanObjectRef(t *testing.T) {
	src := `
state s {
	field name equals "x"
}

criterion c {
	object_ref: ghost
	state_ref: s
	join: all
}
`
	file, tree := buildAll(t, src)
	diags := Check("t.esp", file, tree, fixtureContracts())
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.CodeStructuralOrphanRef, diags[0].Code)
}

func TestCheck_DuplicateStateField(t *testing.T) {
	src := `
state s {
	field name equals "x"
	field name equals "y"
}
`
	file, _ := buildAll(t, src)
	diags := checkDuplicateStateFields("t.esp", file)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeStructuralDuplicateField, diags[0].Code)
}
