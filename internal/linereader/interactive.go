package linereader

import (
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// Config configures an interactive reader.
type Config struct {
	Prompt PromptFunc
	// Completer is nil when completion is disabled.
	Completer   readline.AutoCompleter
	HistoryFile string

	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer
}

// Interactive reads lines through readline, redrawing the prompt before every line.
type Interactive struct {
	rl     *readline.Instance
	prompt PromptFunc
	stdout io.Writer
}

// NewInteractive creates a readline-backed reader.
func NewInteractive(cfg Config) (*Interactive, error) {
	prompt := cfg.Prompt
	if prompt == nil {
		prompt = func(bool) string { return "> " }
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt(false),
		AutoComplete:    cfg.Completer,
		HistoryFile:     cfg.HistoryFile,
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		Stdin:           cfg.Stdin,
		Stdout:          cfg.Stdout,
		Stderr:          cfg.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize line editor: %w", err)
	}

	return &Interactive{
		rl:     rl,
		prompt: prompt,
		stdout: rl.Stdout(),
	}, nil
}

// ReadLine shows the prompt for the current continuation state and reads a line.
// Ctrl+C yields ErrInterrupt and Ctrl+D on an empty line yields io.EOF.
func (i *Interactive) ReadLine(continuation bool) (string, error) {
	i.rl.SetPrompt(i.prompt(continuation))

	line, err := i.rl.Readline()
	switch {
	case err == nil:
		return line, nil
	case errors.Is(err, readline.ErrInterrupt):
		return "", ErrInterrupt
	case errors.Is(err, io.EOF):
		// Readline leaves the cursor after the prompt.
		fmt.Fprintln(i.stdout)
		return "", io.EOF
	default:
		return "", err
	}
}

// Close releases the terminal and flushes history.
func (i *Interactive) Close() error {
	return i.rl.Close()
}
