package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandAliasSingleToken(t *testing.T) {
	aliases := map[string]string{"g": "git"}

	line, ok := ExpandAlias("g", aliases)
	assert.True(t, ok)
	assert.Equal(t, "git", line)
}

func TestExpandAliasWithArgs(t *testing.T) {
	aliases := map[string]string{"g": "git"}

	line, ok := ExpandAlias("g status", aliases)
	assert.True(t, ok)
	assert.Equal(t, "git status", line)
}

func TestExpandAliasMultiWordValue(t *testing.T) {
	aliases := map[string]string{"ll": "ls -la"}

	line, ok := ExpandAlias("ll /tmp", aliases)
	assert.True(t, ok)
	assert.Equal(t, "ls -la /tmp", line)
}

func TestExpandAliasNoMatch(t *testing.T) {
	aliases := map[string]string{"g": "git"}

	line, ok := ExpandAlias("echo hello", aliases)
	assert.False(t, ok)
	assert.Equal(t, "echo hello", line)
}

func TestExpandAliasAppliesOnce(t *testing.T) {
	// Single-pass expansion: the replacement's own first word is not
	// looked up again.
	aliases := map[string]string{"ll": "ls -la", "ls": "ls --color"}

	line, ok := ExpandAlias("ll", aliases)
	assert.True(t, ok)
	assert.Equal(t, "ls -la", line)
}

func TestExpandAliasEmptyTable(t *testing.T) {
	_, ok := ExpandAlias("g status", nil)
	assert.False(t, ok)
}

func TestExpandValueEnvAndTilde(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("JARVISH_TEST_PATH", "/usr/local/bin")

	assert.Equal(t, "/usr/local/bin:extra", ExpandValue("$JARVISH_TEST_PATH:extra"))
	assert.Equal(t, "/home/tester/bin", ExpandValue("~/bin"))
	assert.Equal(t, "/usr/local/bin", ExpandValue("${JARVISH_TEST_PATH}"))
}
