package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/lexer"
)

func parse(t *testing.T, src string) (*ast.EspFile, []error) {
	t.Helper()
	l := lexer.New("t.esp", []byte(src))
	toks, lexErr := l.Tokenize()
	require.Nil(t, lexErr)
	p := New("t.esp", toks, l.SourceMap())
	file, diags := p.ParseFile()
	errs := make([]error, len(diags))
	for i, d := range diags {
		errs[i] = d
	}
	return file, errs
}

func TestParseFile_VariableAndSet(t *testing.T) {
	src := `
variable threshold : int = 5
set shells = ["/bin/bash", "/bin/sh"]
`
	file, errs := parse(t, src)
	require.Empty(t, errs)
	require.Len(t, file.Declarations, 2)

	v := file.Declarations[0].(*ast.VariableDecl)
	assert.Equal(t, "threshold", v.Name)

	s := file.Declarations[1].(*ast.SetDecl)
	lit := s.Expr.(*ast.SetLiteral)
	assert.Equal(t, []string{"/bin/bash", "/bin/sh"}, lit.Elements)
}

func TestParseFile_ObjectStateCriterion(t *testing.T) {
	src := `
object sshd_config {
	module: "file_metadata"
	parameter path = "/etc/ssh/sshd_config"
	select mode
	select owner
}

state sshd_state {
	field mode equals "0644"
	field owner equals "root"
}

criterion ssh_perms_check {
	object_ref: sshd_config
	state_ref: sshd_state
	join: all
	exists
	severity: "high"
}
`
	file, errs := parse(t, src)
	require.Empty(t, errs)
	require.Len(t, file.Declarations, 3)

	obj := file.Declarations[0].(*ast.ObjectDecl)
	require.Len(t, obj.Elements, 4)
	assert.Equal(t, ast.ElementModule, obj.Elements[0].ElementKind())

	crit := file.Declarations[2].(*ast.CriterionDecl)
	assert.Equal(t, "sshd_config", crit.ObjectRef)
	assert.Equal(t, "sshd_state", crit.StateRef)
	require.NotNil(t, crit.Existence)
	assert.Equal(t, "high", crit.Severity)
}

func TestParseFile_RuntimeOpPrecedence(t *testing.T) {
	file, errs := parse(t, `variable total : int = a + b * c`)
	require.Empty(t, errs)
	v := file.Declarations[0].(*ast.VariableDecl)
	top := v.Init.(*ast.RuntimeOp)
	assert.Equal(t, "add", string(top.Op))
	_, rightIsMul := top.Right.(*ast.RuntimeOp)
	assert.True(t, rightIsMul)
}

func TestParseFile_MetadataMustBeFirst(t *testing.T) {
	src := `
variable x : int = 1
metadata {
	author: "team"
}
`
	_, errs := parse(t, src)
	require.NotEmpty(t, errs)
}

func TestParseFile_SyntaxErrorRecoversAtNextDecl(t *testing.T) {
	src := `
variable broken : int =
variable fine : int = 2
`
	file, errs := parse(t, src)
	require.NotEmpty(t, errs, "first declaration is malformed")
	require.Len(t, file.Declarations, 1, "parser recovers and still parses the well-formed declaration")
	v := file.Declarations[0].(*ast.VariableDecl)
	assert.Equal(t, "fine", v.Name)
}

func TestParseFile_CycleSourceParsesFine(t *testing.T) {
	// S1 from the testable-property scenarios: the cycle itself is a
	// resolution-stage concern, not a parse error.
	src := `
variable a : int = b + 1
variable b : int = a + 1
`
	_, errs := parse(t, src)
	require.Empty(t, errs)
}
