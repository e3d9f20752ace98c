package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelly/internal/completion"
	"shelly/internal/shell"
	"shelly/internal/testutils"
)

type cliResult struct {
	executor *testutils.RecordingExecutor
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	err      error
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	res := cliResult{
		executor: &testutils.RecordingExecutor{},
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}
	cmd := newRootCmd(
		shell.WithTerminal(&testutils.FakeTerminal{}),
		shell.WithExecutor(res.executor),
		shell.WithStdin(strings.NewReader(stdin)),
		shell.WithStdout(res.stdout),
		shell.WithStderr(res.stderr),
	)
	cmd.SetOut(res.stdout)
	cmd.SetErr(res.stderr)
	cmd.SetArgs(args)
	res.err = cmd.Execute()
	return res
}

func TestCLI_ForwardsLinesToPrefix(t *testing.T) {
	res := runCLI(t, "status\n\\quit\n", "--no-config", "git")

	require.NoError(t, res.err)
	assert.Equal(t, []string{"git status "}, res.executor.Commands)
	assert.Equal(t, "Bye.\n", res.stdout.String())
}

func TestCLI_ArgumentsAfterPrefixBelongToIt(t *testing.T) {
	res := runCLI(t, "-3\n", "--no-config", "git", "log", "--oneline")

	require.NoError(t, res.err)
	assert.Equal(t, []string{"git log --oneline -3 "}, res.executor.Commands)
}

func TestCLI_RequiresPrefix(t *testing.T) {
	res := runCLI(t, "", "--no-config")

	assert.ErrorIs(t, res.err, shell.ErrUnconfiguredPrefix)
	assert.Empty(t, res.executor.Commands)
}

func TestCLI_FlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelly.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prefix: make\nsuffix: -j4\nquote_input: true\n"), 0644))

	res := runCLI(t, "all\n", "--config", path, "--suffix", "-k", "--quote=false")

	require.NoError(t, res.err)
	assert.Equal(t, []string{"make all -k"}, res.executor.Commands)
	assert.Contains(t, res.stdout.String(), "Loading config from "+path+"...")
}

func TestCLI_PositionalPrefixOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelly.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prefix: make\nsuffix: -j4\n"), 0644))

	res := runCLI(t, "test\n", "--config", path, "go")

	require.NoError(t, res.err)
	assert.Equal(t, []string{"go test -j4"}, res.executor.Commands)
}

func TestCLI_DefaultConfigInHome(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	home := os.Getenv("HOME")
	require.NoError(t, os.WriteFile(filepath.Join(home, ".shellyrc"), []byte("prefix: ls\n"), 0644))

	executor := &testutils.RecordingExecutor{}
	var stdout bytes.Buffer
	cmd := newRootCmd(
		shell.WithTerminal(&testutils.FakeTerminal{}),
		shell.WithExecutor(executor),
		shell.WithStdin(strings.NewReader("-la\n")),
		shell.WithStdout(&stdout),
	)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"ls -la "}, executor.Commands)
	assert.Contains(t, stdout.String(), "Loading config from "+filepath.Join(home, ".shellyrc"))
}

func TestCLI_EnvironmentVariables(t *testing.T) {
	t.Setenv("SHELLY_SUFFIX", "--from-env")

	res := runCLI(t, "y\n", "--no-config", "x")

	require.NoError(t, res.err)
	assert.Equal(t, []string{"x y --from-env"}, res.executor.Commands)
}

func TestCLI_ShellEscapeFlags(t *testing.T) {
	res := runCLI(t, "!ls\n", "--no-config", "--no-shell-escape", "echo")
	require.NoError(t, res.err)
	assert.Equal(t, []string{"echo !ls "}, res.executor.Commands)

	res = runCLI(t, "%pwd\n!ls\n", "--no-config", "--escape", "%", "echo")
	require.NoError(t, res.err)
	assert.Equal(t, []string{"pwd", "echo !ls "}, res.executor.Commands)
}

func TestCLI_UnknownCompletionPolicy(t *testing.T) {
	res := runCLI(t, "", "--no-config", "--completion", "sometimes", "git")

	assert.ErrorIs(t, res.err, completion.ErrUnknownPolicy)
}

func TestCLI_Version(t *testing.T) {
	res := runCLI(t, "", "version")

	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout.String(), "shelly v"))
	assert.Empty(t, res.executor.Commands)
}
