package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/jarvish/internal/domain"
)

func bare(words ...string) []Token {
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{Text: w}
	}
	return tokens
}

func TestParseSingleCommand(t *testing.T) {
	p, err := ParsePipeline(bare("git", "log", "--oneline"))
	require.NoError(t, err)
	want := domain.Pipeline{Commands: []domain.SimpleCommand{
		{Name: "git", Args: []string{"log", "--oneline"}},
	}}
	assert.Empty(t, cmp.Diff(want, p))
}

func TestParseTwoCommandsPiped(t *testing.T) {
	p, err := ParsePipeline(bare("echo", "hello", "|", "cat"))
	require.NoError(t, err)
	require.Len(t, p.Commands, 2)
	assert.Equal(t, "echo", p.Commands[0].Name)
	assert.Equal(t, []string{"hello"}, p.Commands[0].Args)
	assert.Equal(t, "cat", p.Commands[1].Name)
}

func TestParseThreeCommandsPiped(t *testing.T) {
	p, err := ParsePipeline(bare("cat", "f.txt", "|", "grep", "error", "|", "wc", "-l"))
	require.NoError(t, err)
	require.Len(t, p.Commands, 3)
	assert.Equal(t, "grep", p.Commands[1].Name)
	assert.Equal(t, []string{"error"}, p.Commands[1].Args)
}

func TestParseRedirections(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
		kind   domain.RedirectKind
		target string
	}{
		{"overwrite", bare("echo", "hi", ">", "out.txt"), domain.RedirectStdoutOverwrite, "out.txt"},
		{"append", bare("echo", "hi", ">>", "out.txt"), domain.RedirectStdoutAppend, "out.txt"},
		{"stdin", bare("cat", "<", "in.txt"), domain.RedirectStdinFrom, "in.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePipeline(tt.tokens)
			require.NoError(t, err)
			require.Len(t, p.Commands[0].Redirects, 1)
			assert.Equal(t, tt.kind, p.Commands[0].Redirects[0].Kind)
			assert.Equal(t, tt.target, p.Commands[0].Redirects[0].Target)
		})
	}
}

func TestParseRedirectOnFinalPipelineStage(t *testing.T) {
	p, err := ParsePipeline(bare("echo", "hi", "|", "cat", ">", "out.txt"))
	require.NoError(t, err)
	require.Len(t, p.Commands, 2)
	assert.Empty(t, p.Commands[0].Redirects)
	require.Len(t, p.Commands[1].Redirects, 1)
}

func TestParsePipelineErrors(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
	}{
		{"empty", nil},
		{"leading pipe", bare("|", "head")},
		{"trailing pipe", bare("ls", "|")},
		{"double pipe segment", bare("ls", "|", "|", "head")},
		{"redirect without target", bare("echo", "hi", ">")},
		{"append without target", bare("echo", "hi", ">>")},
		{"two consecutive operators", bare("echo", ">", ">", "f")},
		{"only redirect", bare(">", "f")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePipeline(tt.tokens)
			assert.Error(t, err)
		})
	}
}

func TestParseCommandListConnectors(t *testing.T) {
	list, err := ParseCommandList(bare("make", "build", "&&", "echo", "ok", "||", "echo", "failed", ";", "date"))
	require.NoError(t, err)
	assert.Equal(t, "make", list.First.Commands[0].Name)
	require.Len(t, list.Rest, 3)
	assert.Equal(t, domain.ConnectorAnd, list.Rest[0].Connector)
	assert.Equal(t, domain.ConnectorOr, list.Rest[1].Connector)
	assert.Equal(t, domain.ConnectorSemi, list.Rest[2].Connector)
	assert.Equal(t, "date", list.Rest[2].Pipeline.Commands[0].Name)
}

func TestParseCommandListWithPipe(t *testing.T) {
	list, err := ParseCommandList(bare("echo", "hello", "|", "cat", "&&", "echo", "done"))
	require.NoError(t, err)
	assert.Len(t, list.First.Commands, 2)
	require.Len(t, list.Rest, 1)
	assert.Equal(t, domain.ConnectorAnd, list.Rest[0].Connector)
}

func TestParseCommandListErrors(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
	}{
		{"leading and", bare("&&", "echo")},
		{"trailing and", bare("echo", "&&")},
		{"leading or", bare("||", "echo")},
		{"trailing semi", bare("echo", "hello", ";")},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommandList(tt.tokens)
			assert.Error(t, err)
		})
	}
}

func TestParseQuotedOperatorIsArgument(t *testing.T) {
	tokens := []Token{{Text: "echo"}, {Text: "|", Quoted: true}}
	p, err := ParsePipeline(tokens)
	require.NoError(t, err)
	require.Len(t, p.Commands, 1)
	assert.Equal(t, []string{"|"}, p.Commands[0].Args)
}
