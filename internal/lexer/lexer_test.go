package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenize_DeclarationSkeleton(t *testing.T) {
	src := `variable port : int = 22`
	l := New("t.esp", []byte(src))
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, []token.Kind{
		token.KwVariable, token.Ident, token.Colon, token.KwInt,
		token.Equals, token.IntLit, token.EOF,
	}, kinds(toks))
}

func TestTokenize_ElidesCommentsAndWhitespace(t *testing.T) {
	src := "# a comment\nvariable x : int = 1 // trailing\n"
	l := New("t.esp", []byte(src))
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, []token.Kind{
		token.KwVariable, token.Ident, token.Colon, token.KwInt,
		token.Equals, token.IntLit, token.EOF,
	}, kinds(toks))
	assert.Equal(t, 2, l.Metrics().Comments)
}

func TestTokenize_FloatVsInt(t *testing.T) {
	l := New("t.esp", []byte(`1 1.5 1e3 1.5e-2`))
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, []token.Kind{
		token.IntLit, token.FloatLit, token.FloatLit, token.FloatLit, token.EOF,
	}, kinds(toks))
}

func TestTokenize_StringEscapes(t *testing.T) {
	l := New("t.esp", []byte(`"line\nend"`))
	toks, err := l.Tokenize()
	require.Nil(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "line\nend", toks[0].Literal)
}

func TestTokenize_UnterminatedString(t *testing.T) {
	l := New("t.esp", []byte(`"unterminated`))
	_, err := l.Tokenize()
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "unterminated")
}

func TestTokenize_InvalidEscape(t *testing.T) {
	l := New("t.esp", []byte(`"bad \q escape"`))
	_, err := l.Tokenize()
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "invalid escape")
}

func TestTokenize_StrayCharacter(t *testing.T) {
	l := New("t.esp", []byte(`variable x @ int`))
	_, err := l.Tokenize()
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "stray character")
}

func TestTokenize_KeywordsAreCaseSensitive(t *testing.T) {
	l := New("t.esp", []byte(`Variable`))
	toks, err := l.Tokenize()
	require.Nil(t, err)
	assert.Equal(t, token.Ident, toks[0].Kind)
}

func TestTokenize_SpansAreByteAccurate(t *testing.T) {
	l := New("t.esp", []byte("variable x"))
	toks, err := l.Tokenize()
	require.Nil(t, err)
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, 0, toks[0].Span.Start.Offset)
	assert.Equal(t, 8, toks[0].Span.End.Offset)
	assert.Equal(t, 9, toks[1].Span.Start.Offset)
}
