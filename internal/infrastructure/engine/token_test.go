package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenizeSimpleWords(t *testing.T) {
	tokens, err := Tokenize("git log --oneline")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff([]string{"git", "log", "--oneline"}, texts(tokens)))
}

func TestTokenizeSingleQuotesAreLiteral(t *testing.T) {
	t.Setenv("JARVISH_TEST_VAR", "expanded")

	tokens, err := Tokenize(`echo '$JARVISH_TEST_VAR'`)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "$JARVISH_TEST_VAR", tokens[1].Text)
	assert.True(t, tokens[1].Quoted)
}

func TestTokenizeDoubleQuotesInterpolate(t *testing.T) {
	t.Setenv("JARVISH_TEST_VAR", "world")

	tokens, err := Tokenize(`echo "hello $JARVISH_TEST_VAR"`)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "hello world", tokens[1].Text)
}

func TestTokenizeDoubleQuotesPreserveWhitespace(t *testing.T) {
	tokens, err := Tokenize(`echo "two  spaces"`)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "two  spaces", tokens[1].Text)
}

func TestTokenizeBackslashEscapes(t *testing.T) {
	tokens, err := Tokenize(`echo hello\ world`)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "hello world", tokens[1].Text)
}

func TestTokenizeUnterminatedQuoteIsError(t *testing.T) {
	_, err := Tokenize(`echo 'oops`)
	require.Error(t, err)

	_, err = Tokenize(`echo "oops`)
	require.Error(t, err)
}

func TestTokenizeBracedVariable(t *testing.T) {
	t.Setenv("JARVISH_TEST_VAR", "/home/user")

	tokens, err := Tokenize("cat ${JARVISH_TEST_VAR}/file")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "/home/user/file", tokens[1].Text)
}

func TestTokenizeUndefinedVariableIsEmpty(t *testing.T) {
	tokens, err := Tokenize("echo ${JARVISH_DEFINITELY_UNSET_VAR}x")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "x", tokens[1].Text)
}

func TestTokenizeLoneDollarStaysLiteral(t *testing.T) {
	tokens, err := Tokenize("echo $")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "$", tokens[1].Text)
}

func TestTokenizeTildeAtTokenStart(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tokens, err := Tokenize("cd ~")
	require.NoError(t, err)
	assert.Equal(t, "/home/tester", tokens[1].Text)

	tokens, err = Tokenize("cat ~/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/notes.txt", tokens[1].Text)
}

func TestTokenizeTildeMidTokenDoesNotExpand(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tokens, err := Tokenize("echo a~b")
	require.NoError(t, err)
	assert.Equal(t, "a~b", tokens[1].Text)
}

func TestTokenizeQuotedTildeDoesNotExpand(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tokens, err := Tokenize(`echo '~'`)
	require.NoError(t, err)
	assert.Equal(t, "~", tokens[1].Text)
}

func TestTokenizeQuotedPipeIsNotAnOperator(t *testing.T) {
	tokens, err := Tokenize(`echo "|"`)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "|", tokens[1].Text)
	assert.True(t, tokens[1].Quoted)
	assert.False(t, isOperator(tokens[1], "|"))
}
