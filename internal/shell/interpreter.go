// Package shell provides the Shelly interpreter: it owns the configuration and the
// command registry, and drives the read-dispatch loop until exit or end of input.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"shelly/internal/commands"
	"shelly/internal/commands/builtin"
	"shelly/internal/completion"
	"shelly/internal/dispatch"
	"shelly/internal/execution"
	"shelly/internal/linereader"
	"shelly/internal/logger"
	"shelly/internal/terminal"
)

var (
	// ErrUnconfiguredPrefix is returned by Run when no prefix has been set.
	ErrUnconfiguredPrefix = errors.New("must set a prefix before running the interpreter")
	// ErrConfigLocked is returned when commands are added after the first run started.
	ErrConfigLocked = errors.New("configuration is locked once the interpreter has run")
)

// Farewell is printed when the loop ends gracefully.
const Farewell = "Bye."

// SessionEnv names the variable carrying the run's session id into every command.
const SessionEnv = "SHELLY_SESSION"

// ConfigLoader evaluates a configuration file against the interpreter. It is called
// at most once per interpreter.
type ConfigLoader func(path string, in *Interpreter) error

// Interpreter wraps an external program in an interactive line-dispatch loop.
type Interpreter struct {
	registry *commands.Registry
	index    *commands.Index
	sigil    string

	prefix       string
	suffix       string
	prompt       linereader.PromptFunc
	quoteInput   bool
	policy       completion.Policy
	completeFunc completion.Func
	escapeMarker string
	shellEscape  bool
	historyFile  string
	configLoader ConfigLoader

	fs        afero.Fs
	terminal  terminal.Terminal
	executor  execution.Executor
	newReader ReaderFactory
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer

	exitRequested bool
	running       bool
	started       bool
	configLoaded  bool
	runCtx        context.Context
	session       string

	logger *log.Logger
}

// New creates an interpreter with the built-in \quit and \help commands registered.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		sigil:        dispatch.DefaultSigil,
		policy:       completion.Filenames,
		escapeMarker: dispatch.DefaultEscapeMarker,
		shellEscape:  true,
		fs:           afero.NewOsFs(),
		newReader:    defaultReaderFactory,
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		logger:       logger.NewStyledLogger("Shell"),
	}
	for _, opt := range opts {
		opt(in)
	}

	if in.registry == nil {
		in.registry = commands.NewRegistry()
	}
	if in.terminal == nil {
		in.terminal = terminal.Stdin()
	}
	if in.executor == nil {
		executor := execution.NewShellExecutor()
		executor.Stdin = in.stdin
		executor.Stdout = in.stdout
		executor.Stderr = in.stderr
		in.executor = executor
	}

	for _, cmd := range builtin.Commands(in.sigil) {
		if _, taken := in.registry.Lookup(cmd.Name); taken {
			continue
		}
		if err := in.registry.Register(cmd); err != nil {
			in.logger.Warn("Failed to register built-in command", "command", cmd.Name, "error", err)
		}
	}

	return in
}

// AddCommand registers a special command. It fails once the interpreter has run.
func (in *Interpreter) AddCommand(cmd *commands.Command) error {
	if in.started {
		return ErrConfigLocked
	}
	return in.registry.Register(cmd)
}

// locked reports, and logs, an attempt to change a setting after the first run.
func (in *Interpreter) locked(setting string) bool {
	if in.started {
		in.logger.Warn("Ignoring configuration change after run", "setting", setting)
	}
	return in.started
}

// SetPrefix sets the command the input lines are forwarded to. Required.
func (in *Interpreter) SetPrefix(prefix string) {
	if !in.locked("prefix") {
		in.prefix = prefix
	}
}

// SetSuffix sets the text appended after every forwarded line.
func (in *Interpreter) SetSuffix(suffix string) {
	if !in.locked("suffix") {
		in.suffix = suffix
	}
}

// SetPrompt sets the prompt function. A nil prompt restores the default.
func (in *Interpreter) SetPrompt(prompt linereader.PromptFunc) {
	if !in.locked("prompt") {
		in.prompt = prompt
	}
}

// SetStaticPrompt uses the same prompt text for first and continuation lines.
func (in *Interpreter) SetStaticPrompt(prompt string) {
	in.SetPrompt(func(bool) string { return prompt })
}

// SetQuoteInput controls whether forwarded lines are wrapped in double quotes.
func (in *Interpreter) SetQuoteInput(quote bool) {
	if !in.locked("quote_input") {
		in.quoteInput = quote
	}
}

// SetCompletion sets the completion policy and the custom candidate source.
func (in *Interpreter) SetCompletion(policy completion.Policy, fn completion.Func) {
	if !in.locked("completion") {
		in.policy = policy
		in.completeFunc = fn
	}
}

// SetCompletionPolicy changes the completion policy and keeps the custom source.
func (in *Interpreter) SetCompletionPolicy(policy completion.Policy) {
	if !in.locked("completion") {
		in.policy = policy
	}
}

// SetShellEscape enables the shell escape with marker; an empty marker disables it.
func (in *Interpreter) SetShellEscape(marker string) {
	if !in.locked("shell_escape") {
		in.escapeMarker = marker
		in.shellEscape = marker != ""
	}
}

// DisableShellEscape turns the shell escape off.
func (in *Interpreter) DisableShellEscape() {
	in.SetShellEscape("")
}

// SetHistoryFile sets where the interactive reader persists history.
func (in *Interpreter) SetHistoryFile(path string) {
	if !in.locked("history_file") {
		in.historyFile = path
	}
}

// SetConfigLoader sets the function LoadConfig evaluates configuration files with.
func (in *Interpreter) SetConfigLoader(loader ConfigLoader) {
	if !in.locked("config_loader") {
		in.configLoader = loader
	}
}

// Prefix returns the configured prefix.
func (in *Interpreter) Prefix() string { return in.prefix }

// Suffix returns the configured suffix.
func (in *Interpreter) Suffix() string { return in.suffix }

// QuoteInput reports whether forwarded lines are quoted.
func (in *Interpreter) QuoteInput() bool { return in.quoteInput }

// HistoryFile returns the configured history file.
func (in *Interpreter) HistoryFile() string { return in.historyFile }

// Filesystem returns the filesystem used for completion and config lookup.
func (in *Interpreter) Filesystem() afero.Fs { return in.fs }

// Running reports whether the loop is active.
func (in *Interpreter) Running() bool { return in.running }

// Session returns the id of the current or most recent run, empty before the first.
func (in *Interpreter) Session() string { return in.session }

// ExitRequested reports whether \quit (or RequestExit) was called during this run.
func (in *Interpreter) ExitRequested() bool { return in.exitRequested }

// Prompt renders the prompt for the given continuation state. The default is
// "[Shelly: PREFIX]> " and "[Shelly: PREFIX]| " while continuing.
func (in *Interpreter) Prompt(continuation bool) string {
	if in.prompt != nil {
		return in.prompt(continuation)
	}
	marker := ">"
	if continuation {
		marker = "|"
	}
	return fmt.Sprintf("[Shelly: %s]%s ", in.prefix, marker)
}

// Completer returns a completer for the current completion settings.
func (in *Interpreter) Completer() *completion.Completer {
	return completion.NewCompleter(in.policy, in.completeFunc, in.fs)
}

// RequestExit asks the loop to stop before reading the next line.
func (in *Interpreter) RequestExit() {
	in.exitRequested = true
}

// Registry implements commands.Shell.
func (in *Interpreter) Registry() *commands.Registry { return in.registry }

// Index implements commands.Shell. It is rebuilt every time Run starts.
func (in *Interpreter) Index() *commands.Index {
	if in.index == nil {
		in.index = commands.BuildIndex(in.registry.Names())
	}
	return in.index
}

// Sigil implements commands.Shell.
func (in *Interpreter) Sigil() string { return in.sigil }

// ShellEscape implements commands.Shell.
func (in *Interpreter) ShellEscape() (string, bool) {
	return in.escapeMarker, in.shellEscape && in.escapeMarker != ""
}

// Exec implements commands.Shell, running command on the default shell.
func (in *Interpreter) Exec(command string) (int, error) {
	ctx := in.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	return in.executor.Execute(ctx, command)
}

// Stdout implements commands.Shell.
func (in *Interpreter) Stdout() io.Writer { return in.stdout }

// Stderr implements commands.Shell.
func (in *Interpreter) Stderr() io.Writer { return in.stderr }

var _ commands.Shell = (*Interpreter)(nil)

// LoadConfig evaluates path with the configured loader. Only the first call does
// anything, whether or not it succeeds; a missing file is not an error.
func (in *Interpreter) LoadConfig(path string) error {
	if in.configLoaded {
		return nil
	}
	in.configLoaded = true

	if _, err := in.fs.Stat(path); err != nil {
		if os.IsNotExist(err) {
			in.logger.Debug("No config file", "path", path)
			return nil
		}
		return fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	fmt.Fprintf(in.stdout, "Loading config from %s...\n", path)
	if in.configLoader == nil {
		in.logger.Warn("Config file found but no loader configured", "path", path)
		return nil
	}
	if err := in.configLoader(path, in); err != nil {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return nil
}

// Run drives the read-dispatch loop until \quit, end of input, a command error or
// cancellation of ctx. Calling Run while it is already running does nothing.
// Terminal state is restored on every exit path.
func (in *Interpreter) Run(ctx context.Context) error {
	if in.running {
		return nil
	}
	if in.prefix == "" {
		return ErrUnconfiguredPrefix
	}

	in.running = true
	in.started = true
	in.exitRequested = false
	in.index = commands.BuildIndex(in.registry.Names())

	session := uuid.NewString()
	in.session = session
	ctx = execution.WithEnv(ctx, SessionEnv+"="+session)
	in.runCtx = ctx

	interactive := in.terminal.IsInteractive()
	in.logger.Debug("Starting session", "session", session, "command", in.prefix, "interactive", interactive)

	restore, err := in.terminal.Save()
	if err != nil {
		in.logger.Warn("Failed to save terminal state", "error", err)
	}
	defer func() {
		if restore != nil {
			if err := restore(); err != nil {
				in.logger.Warn("Failed to restore terminal state", "error", err)
			}
		}
		in.running = false
		in.exitRequested = false
		in.runCtx = nil
		in.logger.Debug("Session finished", "session", session)
	}()

	if interactive {
		// The terminal delivers Ctrl+C to the whole foreground group; the child
		// handles it, the shell keeps running.
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		defer signal.Stop(signals)
	}

	reader, err := in.newReader(in, interactive)
	if err != nil {
		return err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			in.logger.Debug("Failed to close line reader", "error", err)
		}
	}()

	engine := dispatch.NewEngine(in.dispatchConfig(), in, in.executor)
	return in.loop(ctx, reader, engine)
}

func (in *Interpreter) loop(ctx context.Context, reader linereader.Reader, engine *dispatch.Engine) error {
	for !in.exitRequested {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := reader.ReadLine(engine.Continuing())
		if errors.Is(err, linereader.ErrInterrupt) {
			engine.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if err := engine.Feed(ctx, line); err != nil {
			fmt.Fprintln(in.stdout)
			return err
		}
	}

	fmt.Fprintln(in.stdout, Farewell)
	return nil
}

func (in *Interpreter) dispatchConfig() dispatch.Config {
	marker, escape := in.ShellEscape()
	return dispatch.Config{
		Sigil:        in.sigil,
		EscapeMarker: marker,
		ShellEscape:  escape,
		Prefix:       in.prefix,
		Suffix:       in.suffix,
		QuoteInput:   in.quoteInput,
	}
}

func defaultReaderFactory(in *Interpreter, interactive bool) (linereader.Reader, error) {
	if !interactive {
		return linereader.NewPlain(in.stdin), nil
	}

	cfg := linereader.Config{
		Prompt:      in.Prompt,
		HistoryFile: in.historyFile,
		Stdout:      in.stdout,
		Stderr:      in.stderr,
	}
	if completer := in.Completer(); completer.Enabled() {
		var ac readline.AutoCompleter = completer
		cfg.Completer = ac
	}
	if in.stdin != io.Reader(os.Stdin) {
		cfg.Stdin = io.NopCloser(in.stdin)
	}
	return linereader.NewInteractive(cfg)
}
