package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/doeshing/jarvish/internal/domain"
)

type stubLoader struct {
	cfg  domain.Config
	err  error
	path string
}

func (s *stubLoader) Load() (domain.Config, error) { return s.cfg, s.err }
func (s *stubLoader) Path() string                 { return s.path }

type stubHistory struct {
	records []domain.CommandRecord
}

func (s *stubHistory) Record(string, domain.CommandResult) error { return nil }
func (s *stubHistory) Recent(n int) ([]domain.CommandRecord, error) {
	if n > len(s.records) {
		n = len(s.records)
	}
	return s.records[:n], nil
}
func (s *stubHistory) ByID(int64) (domain.CommandRecord, error) { return domain.CommandRecord{}, nil }
func (s *stubHistory) LoadOutput(string) (string, error)        { return "", nil }

func testBuiltins(t *testing.T) *Builtins {
	t.Helper()
	return NewBuiltins(&stubLoader{cfg: domain.DefaultConfig()}, &stubHistory{}, zap.NewNop())
}

// chdir moves into dir for the duration of the test and restores after.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestCdAndCwd(t *testing.T) {
	b := testBuiltins(t)
	tmp := t.TempDir()
	chdir(t, tmp)

	res, ok := b.Dispatch("cd", []string{"/tmp"})
	require.True(t, ok)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, os.Getenv("PWD"), mustGetwd(t))

	res, ok = b.Dispatch("cwd", nil)
	require.True(t, ok)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, mustGetwd(t)+"\n", res.Stdout)
}

func mustGetwd(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return dir
}

func TestCdNoArgsGoesHome(t *testing.T) {
	b := testBuiltins(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, t.TempDir())

	res, _ := b.Dispatch("cd", nil)
	assert.Equal(t, 0, res.ExitCode)
	got, _ := filepath.EvalSymlinks(mustGetwd(t))
	want, _ := filepath.EvalSymlinks(home)
	assert.Equal(t, want, got)
}

func TestCdNonexistentFails(t *testing.T) {
	b := testBuiltins(t)

	res, _ := b.Dispatch("cd", []string{"/nonexistent_path_that_does_not_exist"})
	assert.NotEqual(t, 0, res.ExitCode)
	assert.Contains(t, res.Stderr, "cd:")
}

func TestExit(t *testing.T) {
	b := testBuiltins(t)

	res, _ := b.Dispatch("exit", nil)
	assert.Equal(t, domain.ActionExit, res.Action)
	assert.Equal(t, 0, res.ExitCode)

	res, _ = b.Dispatch("exit", []string{"3"})
	assert.Equal(t, domain.ActionExit, res.Action)
	assert.Equal(t, 3, res.ExitCode)

	res, _ = b.Dispatch("exit", []string{"999"})
	assert.Equal(t, 255, res.ExitCode)

	res, _ = b.Dispatch("exit", []string{"nope"})
	assert.Equal(t, 2, res.ExitCode)
	assert.Contains(t, res.Stderr, "numeric argument required")
}

func TestExportAndUnset(t *testing.T) {
	b := testBuiltins(t)

	res, _ := b.Dispatch("export", []string{"JARVISH_EXPORT_TEST=value1"})
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "value1", os.Getenv("JARVISH_EXPORT_TEST"))

	res, _ = b.Dispatch("unset", []string{"JARVISH_EXPORT_TEST"})
	assert.Equal(t, 0, res.ExitCode)
	_, present := os.LookupEnv("JARVISH_EXPORT_TEST")
	assert.False(t, present)
}

func TestExportExpandsReferences(t *testing.T) {
	b := testBuiltins(t)
	t.Setenv("JARVISH_BASE", "/opt/bin")

	b.Dispatch("export", []string{"JARVISH_DERIVED=$JARVISH_BASE:extra"})
	t.Cleanup(func() { os.Unsetenv("JARVISH_DERIVED") })
	assert.Equal(t, "/opt/bin:extra", os.Getenv("JARVISH_DERIVED"))
}

func TestAliasLifecycle(t *testing.T) {
	b := testBuiltins(t)

	res, _ := b.Dispatch("alias", []string{"g=git"})
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "git", b.Aliases()["g"])

	res, _ = b.Dispatch("alias", nil)
	assert.Contains(t, res.Stdout, "alias g='git'")

	res, _ = b.Dispatch("alias", []string{"g"})
	assert.Contains(t, res.Stdout, "alias g='git'")

	res, _ = b.Dispatch("unalias", []string{"g"})
	assert.Equal(t, 0, res.ExitCode)
	assert.Empty(t, b.Aliases())

	res, _ = b.Dispatch("unalias", []string{"g"})
	assert.Equal(t, 1, res.ExitCode)
}

func TestTrueFalse(t *testing.T) {
	b := testBuiltins(t)

	res, _ := b.Dispatch("true", nil)
	assert.Equal(t, 0, res.ExitCode)
	res, _ = b.Dispatch("false", nil)
	assert.Equal(t, 1, res.ExitCode)
}

func TestHistoryBuiltinLists(t *testing.T) {
	history := &stubHistory{records: []domain.CommandRecord{
		{ID: 2, Command: "cargo build", ExitCode: 101},
		{ID: 1, Command: "echo hi", ExitCode: 0},
	}}
	b := NewBuiltins(&stubLoader{}, history, zap.NewNop())

	res, _ := b.Dispatch("history", nil)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "echo hi")
	assert.Contains(t, res.Stdout, "cargo build")
}

func TestHistoryUnavailable(t *testing.T) {
	b := NewBuiltins(&stubLoader{}, nil, zap.NewNop())

	res, _ := b.Dispatch("history", nil)
	assert.Equal(t, 1, res.ExitCode)
}

func TestWhichAndType(t *testing.T) {
	b := testBuiltins(t)

	res, _ := b.Dispatch("which", []string{"cd"})
	assert.Contains(t, res.Stdout, "shell builtin")

	res, _ = b.Dispatch("which", []string{"ls"})
	assert.Contains(t, res.Stdout, "/ls")

	res, _ = b.Dispatch("which", []string{"xyzzy_nonexistent_command_12345"})
	assert.Equal(t, 1, res.ExitCode)

	b.SetAliases(map[string]string{"ll": "ls -la"})
	res, _ = b.Dispatch("type", []string{"ll", "cd", "ls"})
	assert.Contains(t, res.Stdout, "ll is aliased to `ls -la'")
	assert.Contains(t, res.Stdout, "cd is a shell builtin")
	assert.Contains(t, res.Stdout, "ls is /")
}

func TestSourceReloadsConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Alias = map[string]string{"g": "git"}
	cfg.Export = map[string]string{"JARVISH_SOURCED": "yes"}
	loader := &stubLoader{cfg: cfg, path: "/tmp/config.toml"}
	b := NewBuiltins(loader, nil, zap.NewNop())

	var reloaded *domain.Config
	b.SetReloadHook(func(c domain.Config) { reloaded = &c })

	res, _ := b.Dispatch("source", nil)
	t.Cleanup(func() { os.Unsetenv("JARVISH_SOURCED") })
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "git", b.Aliases()["g"])
	assert.Equal(t, "yes", os.Getenv("JARVISH_SOURCED"))
	require.NotNil(t, reloaded)
}

func TestDispatchUnknownCommand(t *testing.T) {
	b := testBuiltins(t)

	_, ok := b.Dispatch("ls", nil)
	assert.False(t, ok)
}
