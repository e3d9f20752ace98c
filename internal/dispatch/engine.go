package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"shelly/internal/commands"
	"shelly/internal/execution"
	"shelly/internal/logger"
)

// ErrUnknownCommand marks a special command the abbreviation index cannot resolve.
// It is reported to the user and never ends the loop.
var ErrUnknownCommand = errors.New("unknown special command")

// State is the engine's position in assembling a logical line.
type State int

const (
	// AwaitingLine means no partial line is buffered.
	AwaitingLine State = iota
	// ContinuingLine means a continuation is in progress.
	ContinuingLine
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case AwaitingLine:
		return "AwaitingLine"
	case ContinuingLine:
		return "ContinuingLine"
	default:
		return "Unknown"
	}
}

// Engine buffers input lines and dispatches each completed logical line.
type Engine struct {
	config   Config
	shell    commands.Shell
	executor execution.Executor
	pending  string
	logger   *log.Logger
}

// NewEngine creates an engine dispatching special commands through sh and shell
// work through executor.
func NewEngine(cfg Config, sh commands.Shell, executor execution.Executor) *Engine {
	return &Engine{
		config:   cfg,
		shell:    sh,
		executor: executor,
		logger:   logger.NewStyledLogger("Dispatch"),
	}
}

// State returns ContinuingLine while a partial line is buffered.
func (e *Engine) State() State {
	if e.pending != "" {
		return ContinuingLine
	}
	return AwaitingLine
}

// Continuing reports whether the next read continues a buffered line.
func (e *Engine) Continuing() bool {
	return e.State() == ContinuingLine
}

// Pending returns the buffered partial line.
func (e *Engine) Pending() string {
	return e.pending
}

// Reset discards any buffered partial line.
func (e *Engine) Reset() {
	e.pending = ""
}

// Feed appends line to the buffer, with no separator, and dispatches the result
// unless it ends in a continuation marker. Errors from command bodies are returned
// wrapped; unknown commands and failing shell commands are reported and swallowed.
func (e *Engine) Feed(ctx context.Context, line string) error {
	buffer := e.pending + line
	action := Classify(buffer, e.config)

	if action.Kind == KindContinuation {
		e.pending = action.Text
		e.logger.Debug("Awaiting continuation", "line", action.Text)
		return nil
	}

	e.pending = ""
	e.logger.Debug("Dispatching line", "kind", action.Kind, "line", buffer)

	switch action.Kind {
	case KindSpecial:
		return e.runSpecial(action)
	case KindShellEscape:
		if action.Command == "" {
			return nil
		}
		return e.execute(ctx, action.Command)
	default:
		return e.execute(ctx, action.Command)
	}
}

func (e *Engine) runSpecial(action Action) error {
	name, ok := e.shell.Index().Resolve(action.Name)
	var cmd *commands.Command
	if ok {
		cmd, ok = e.shell.Registry().Lookup(name)
	}
	if !ok {
		err := fmt.Errorf("%w '%s'", ErrUnknownCommand, action.Name)
		e.logger.Debug("Special command not resolved", "error", err)
		fmt.Fprintf(e.shell.Stderr(), "Unknown special command '%s'\n", action.Name)
		return nil
	}

	e.logger.Debug("Running special command", "command", cmd.Name, "line", action.Args)
	if err := cmd.Run(e.shell, action.Args); err != nil {
		return fmt.Errorf("command %s: %w", cmd.Name, err)
	}
	return nil
}

func (e *Engine) execute(ctx context.Context, command string) error {
	status, err := e.executor.Execute(ctx, command)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		e.logger.Debug("Shell command failed to start", "command", command, "error", err)
		fmt.Fprintf(e.shell.Stderr(), "shelly: %v\n", err)
		return nil
	}
	if status != 0 {
		e.logger.Debug("Shell command exited", "command", command, "status", status)
	}
	return nil
}
