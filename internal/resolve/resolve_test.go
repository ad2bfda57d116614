package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/lexer"
	"github.com/espsec/espc/internal/parser"
	"github.com/espsec/espc/internal/symbols"
)

func build(t *testing.T, src string) *Context {
	t.Helper()
	l := lexer.New("t.esp", []byte(src))
	toks, lexErr := l.Tokenize()
	require.Nil(t, lexErr)
	p := parser.New("t.esp", toks, l.SourceMap())
	file, diags := p.ParseFile()
	require.Empty(t, diags)
	table, symDiags := symbols.Discover(file)
	require.Empty(t, symDiags)
	return NewContext(file, table)
}

func TestResolveVariable_Cycle(t *testing.T) {
	ctx := build(t, `
variable a : int = b + 1
variable b : int = a + 1
`)
	_, ok := ctx.ResolveVariable("a")
	assert.False(t, ok)
	require.NotEmpty(t, ctx.Diagnostics())
	msg := ctx.Diagnostics()[0].Message
	assert.True(t, strings.Contains(msg, "[a, b, a]"), msg)
}

func TestResolveVariable_ArithmeticChain(t *testing.T) {
	ctx := build(t, `
variable base : int = 10
variable doubled : int = base + base
`)
	v, ok := ctx.ResolveVariable("doubled")
	require.True(t, ok)
	assert.Equal(t, int64(20), v.Int)
}

func TestResolveVariable_DivideByZero(t *testing.T) {
	ctx := build(t, `
variable zero : int = 0
variable bad : int = 10 / zero
`)
	_, ok := ctx.ResolveVariable("bad")
	assert.False(t, ok)
	require.NotEmpty(t, ctx.Diagnostics())
	assert.Contains(t, ctx.Diagnostics()[0].Message, "division by zero")
}

func TestResolveVariable_CoercesLiteralToDeclaredType(t *testing.T) {
	ctx := build(t, `variable v : version = "1.2.3"`)
	v, ok := ctx.ResolveVariable("v")
	require.True(t, ok)
	assert.Equal(t, "1.2.3", v.Str)
}

func TestResolveSet_UnionPreservesStableFirstSeenOrder(t *testing.T) {
	ctx := build(t, `
set s1 = ["c", "a", "b"]
set s2 = ["b", "d"]
set s3 = s1 union s2
`)
	elems, ok := ctx.ResolveSet("s3")
	require.True(t, ok)
	assert.Equal(t, []string{"c", "a", "b", "d"}, elems)
}

func TestResolveSet_IntersectionPreservesLeftOrder(t *testing.T) {
	ctx := build(t, `
set s1 = ["c", "a", "b"]
set s2 = ["b", "c"]
set s3 = s1 intersection s2
`)
	elems, ok := ctx.ResolveSet("s3")
	require.True(t, ok)
	assert.Equal(t, []string{"c", "b"}, elems)
}

func TestResolveSet_DifferencePreservesLeftOrder(t *testing.T) {
	ctx := build(t, `
set s1 = ["c", "a", "b"]
set s2 = ["a"]
set s3 = s1 difference s2
`)
	elems, ok := ctx.ResolveSet("s3")
	require.True(t, ok)
	assert.Equal(t, []string{"c", "b"}, elems)
}

func TestResolveVariable_UnknownReference(t *testing.T) {
	ctx := build(t, `variable v : int = missing_var + 1`)
	_, ok := ctx.ResolveVariable("v")
	assert.False(t, ok)
	require.NotEmpty(t, ctx.Diagnostics())
	assert.Equal(t, "missing_var", extractUnknownName(t, ctx))
}

func extractUnknownName(t *testing.T, ctx *Context) string {
	t.Helper()
	for _, d := range ctx.Diagnostics() {
		if strings.Contains(d.Message, "undeclared name") {
			return strings.TrimSuffix(strings.TrimPrefix(d.Message, `reference to undeclared name "`), `"`)
		}
	}
	return ""
}
