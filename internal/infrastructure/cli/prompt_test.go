package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/jarvish/internal/domain"
)

func TestBuildPromptShowsFailureMarker(t *testing.T) {
	p := BuildPrompt(domain.PromptConfig{}, 127)
	assert.Contains(t, p, "[127]")
	assert.Contains(t, p, "> ")
}

func TestBuildPromptCleanAfterSuccess(t *testing.T) {
	p := BuildPrompt(domain.PromptConfig{}, 0)
	assert.NotContains(t, p, "[")
}

func TestBuildPromptNerdFontGlyph(t *testing.T) {
	p := BuildPrompt(domain.PromptConfig{NerdFont: true}, 0)
	assert.Contains(t, p, "❯")
}

func TestBuildPromptHomeIsTilde(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Setenv("HOME", cwd)

	p := BuildPrompt(domain.PromptConfig{}, 0)
	assert.Contains(t, p, "~")
}
