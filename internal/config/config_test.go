package config

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelly/internal/commands"
	"shelly/internal/completion"
	"shelly/internal/linereader"
	"shelly/internal/shell"
	"shelly/internal/testutils"
)

func newInterpreter(t *testing.T, fs afero.Fs, lines ...string) (*shell.Interpreter, *testutils.RecordingExecutor, *bytes.Buffer) {
	t.Helper()
	executor := &testutils.RecordingExecutor{}
	var stdout bytes.Buffer
	reader := testutils.NewScriptedReader(lines...)
	in := shell.New(
		shell.WithFilesystem(fs),
		shell.WithTerminal(&testutils.FakeTerminal{}),
		shell.WithExecutor(executor),
		shell.WithStdout(&stdout),
		shell.WithStderr(&bytes.Buffer{}),
		shell.WithReaderFactory(func(*shell.Interpreter, bool) (linereader.Reader, error) {
			return reader, nil
		}),
	)
	in.SetConfigLoader(Load)
	return in, executor, &stdout
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func TestLoad_AppliesSettings(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/home/dev/.shellyrc", `
prefix: git
suffix: --no-pager
quote_input: true
prompt: "git> "
continuation_prompt: "...> "
history_file: .shelly_history
`)
	in, _, stdout := newInterpreter(t, fs)

	require.NoError(t, in.LoadConfig("/home/dev/.shellyrc"))

	assert.Equal(t, "Loading config from /home/dev/.shellyrc...\n", stdout.String())
	assert.Equal(t, "git", in.Prefix())
	assert.Equal(t, "--no-pager", in.Suffix())
	assert.True(t, in.QuoteInput())
	assert.Equal(t, "git> ", in.Prompt(false))
	assert.Equal(t, "...> ", in.Prompt(true))
	assert.Equal(t, "/home/dev/.shelly_history", in.HistoryFile())
}

func TestLoad_StaticPrompt(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/etc/shelly.yaml", `prompt: "$ "`)
	in, _, _ := newInterpreter(t, fs)

	require.NoError(t, in.LoadConfig("/etc/shelly.yaml"))

	assert.Equal(t, "$ ", in.Prompt(false))
	assert.Equal(t, "$ ", in.Prompt(true))
}

func TestLoad_JSONByExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cfg/shelly.json", `{"prefix": "kubectl", "suffix": "-n dev"}`)
	in, _, _ := newInterpreter(t, fs)

	require.NoError(t, in.LoadConfig("/cfg/shelly.json"))

	assert.Equal(t, "kubectl", in.Prefix())
	assert.Equal(t, "-n dev", in.Suffix())
}

func TestLoad_MalformedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/home/dev/.shellyrc", "prefix: [unterminated")
	in, _, _ := newInterpreter(t, fs)

	err := in.LoadConfig("/home/dev/.shellyrc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/home/dev/.shellyrc")
	assert.Equal(t, "", in.Prefix())
}

func TestLoad_Commands(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/home/dev/.shellyrc", `
prefix: make
commands:
  - name: deploy
    description: Deploys to an environment
    usage: "\\deploy ENV"
    run: ./deploy.sh
`)
	in, executor, _ := newInterpreter(t, fs, `\deploy prod`, `\de`)
	require.NoError(t, in.LoadConfig("/home/dev/.shellyrc"))

	cmd, ok := in.Registry().Lookup("deploy")
	require.True(t, ok)
	assert.Equal(t, "Deploys to an environment", cmd.Description)
	assert.Equal(t, `\deploy ENV`, cmd.Usage)

	require.NoError(t, in.Run(context.Background()))
	assert.Equal(t, []string{"./deploy.sh prod", "./deploy.sh"}, executor.Commands)
}

func TestLoad_InvalidCommand(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "bad name",
			content: "commands:\n  - name: \"two words\"\n    run: ls\n",
			wantErr: commands.ErrInvalidName,
		},
		{
			name:    "nothing to run",
			content: "commands:\n  - name: empty\n",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "duplicate of built-in",
			content: "commands:\n  - name: help\n    run: man\n",
			wantErr: commands.ErrDuplicateCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFile(t, fs, "/rc", tt.content)
			in, _, _ := newInterpreter(t, fs)

			err := in.LoadConfig("/rc")

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_ShellEscape(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantMarker string
		wantOn     bool
	}{
		{name: "default", content: "prefix: x", wantMarker: "!", wantOn: true},
		{name: "disabled", content: "shell_escape: false", wantMarker: "", wantOn: false},
		{name: "enabled", content: "shell_escape: true", wantMarker: "!", wantOn: true},
		{name: "custom marker", content: `shell_escape: "$"`, wantMarker: "$", wantOn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFile(t, fs, "/rc", tt.content)
			in, _, _ := newInterpreter(t, fs)

			require.NoError(t, in.LoadConfig("/rc"))

			marker, on := in.ShellEscape()
			assert.Equal(t, tt.wantOn, on)
			if tt.wantOn {
				assert.Equal(t, tt.wantMarker, marker)
			}
		})
	}
}

func TestLoad_ShellEscapeWrongType(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/rc", "shell_escape: [1, 2]")
	in, _, _ := newInterpreter(t, fs)

	assert.ErrorIs(t, in.LoadConfig("/rc"), ErrInvalidValue)
}

func TestLoad_Completion(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/rc", `
completion: only
completions: [status, stash, commit]
`)
	in, _, _ := newInterpreter(t, fs)

	require.NoError(t, in.LoadConfig("/rc"))

	c := in.Completer()
	assert.Equal(t, completion.Only, c.Policy())
	assert.Equal(t, []string{"status", "stash"}, c.Complete("st"))
	assert.Empty(t, c.Complete("x"))
}

func TestLoad_CompletionWordsKeepPolicy(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/rc", "completions: [alpha]")
	in, _, _ := newInterpreter(t, fs)

	require.NoError(t, in.LoadConfig("/rc"))

	c := in.Completer()
	assert.Equal(t, completion.Filenames, c.Policy())
	assert.Equal(t, []string{"alpha"}, c.Custom("al"))
}

func TestLoad_UnknownCompletionPolicy(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/rc", "completion: sometimes")
	in, _, _ := newInterpreter(t, fs)

	assert.ErrorIs(t, in.LoadConfig("/rc"), completion.ErrUnknownPolicy)
}

func TestLoad_EnvFile(t *testing.T) {
	const fresh = "SHELLY_CONFIG_TEST_FRESH"
	const kept = "SHELLY_CONFIG_TEST_KEPT"
	t.Setenv(kept, "from-environment")
	t.Cleanup(func() { _ = os.Unsetenv(fresh) })

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/home/dev/.shelly.env", fresh+"=loaded\n"+kept+"=ignored\n")
	writeFile(t, fs, "/home/dev/.shellyrc", "env_file: .shelly.env")
	in, _, _ := newInterpreter(t, fs)

	require.NoError(t, in.LoadConfig("/home/dev/.shellyrc"))

	assert.Equal(t, "loaded", os.Getenv(fresh))
	assert.Equal(t, "from-environment", os.Getenv(kept))
}

func TestLoad_MissingEnvFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/rc", "env_file: /nowhere.env")
	in, _, _ := newInterpreter(t, fs)

	err := in.LoadConfig("/rc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nowhere.env")
}

func TestWordList(t *testing.T) {
	words := []string{"push", "pull", "fetch"}
	fn := WordList(words)
	words[0] = "changed"

	assert.Equal(t, []string{"push", "pull"}, fn("pu"))
	assert.Equal(t, []string{"push", "pull", "fetch"}, fn(""))
	assert.Equal(t, []string{}, fn("z"))
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	path, err := DefaultPath()

	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.shellyrc", path)
}
