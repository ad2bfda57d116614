package fieldpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ClassifiesComponents(t *testing.T) {
	p, err := Parse("items.0.name")
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.Equal(t, Name, p[0].Kind)
	assert.Equal(t, "items", p[0].Name)
	assert.Equal(t, Index, p[1].Kind)
	assert.Equal(t, 0, p[1].Index)
	assert.Equal(t, Name, p[2].Kind)
	assert.Equal(t, "items.0.name", p.String())
}

func TestParse_Wildcard(t *testing.T) {
	p, err := Parse("items.*.name")
	require.NoError(t, err)
	assert.Equal(t, Wildcard, p[1].Kind)
	assert.Equal(t, "*", p[1].String())
}

func TestParse_RejectsEmptyPath(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)
}

func TestParse_RejectsEmptyComponent(t *testing.T) {
	_, err := Parse("a..b")
	assert.Error(t, err)
}

func TestParse_RejectsMixedWildcardSyntax(t *testing.T) {
	_, err := Parse("3*")
	assert.Error(t, err)
}

func TestParse_RejectsNameStartingWithDigit(t *testing.T) {
	_, err := Parse("3abc")
	assert.Error(t, err)
}

func TestMatches_WildcardMatchesAnyComponent(t *testing.T) {
	pattern, err := Parse("items.*.name")
	require.NoError(t, err)

	concrete, err := Parse("items.0.name")
	require.NoError(t, err)
	assert.True(t, Matches(pattern, concrete))

	concrete2, err := Parse("items.widget.name")
	require.NoError(t, err)
	assert.True(t, Matches(pattern, concrete2))
}

func TestMatches_IndexMustMatchExactly(t *testing.T) {
	pattern, err := Parse("items.0")
	require.NoError(t, err)
	concrete, err := Parse("items.1")
	require.NoError(t, err)
	assert.False(t, Matches(pattern, concrete))
}

func TestMatches_DifferentLengthNeverMatches(t *testing.T) {
	pattern, err := Parse("items.name")
	require.NoError(t, err)
	concrete, err := Parse("items")
	require.NoError(t, err)
	assert.False(t, Matches(pattern, concrete))
}

func TestSet_AddDeduplicatesAndPreservesOrder(t *testing.T) {
	s, err := NewSet("a.b", "c.d", "a.b")
	require.NoError(t, err)
	assert.Len(t, s.Paths(), 2)
	assert.Equal(t, "a.b", s.Paths()[0].String())
	assert.Equal(t, "c.d", s.Paths()[1].String())
}

func TestSet_Contains(t *testing.T) {
	s, err := NewSet("items.*.name")
	require.NoError(t, err)

	concrete, err := Parse("items.0.name")
	require.NoError(t, err)
	assert.True(t, s.Contains(concrete))

	other, err := Parse("items.0.value")
	require.NoError(t, err)
	assert.False(t, s.Contains(other))
}
