package shell

import (
	"io"

	"github.com/spf13/afero"

	"shelly/internal/commands"
	"shelly/internal/execution"
	"shelly/internal/linereader"
	"shelly/internal/terminal"
)

// Option is a functional option for configuring Interpreter instances.
type Option func(*Interpreter)

// ReaderFactory creates the line source for a run. interactive reports whether
// standard input is a terminal.
type ReaderFactory func(in *Interpreter, interactive bool) (linereader.Reader, error)

// WithRegistry makes the interpreter dispatch from a registry built by the host.
// Built-in commands are added only under names the registry does not already use.
func WithRegistry(registry *commands.Registry) Option {
	return func(in *Interpreter) {
		if registry != nil {
			in.registry = registry
		}
	}
}

// WithSigil changes the marker that introduces special commands. Default is "\".
func WithSigil(sigil string) Option {
	return func(in *Interpreter) {
		if sigil != "" {
			in.sigil = sigil
		}
	}
}

// WithExecutor replaces the default shell executor.
func WithExecutor(executor execution.Executor) Option {
	return func(in *Interpreter) {
		if executor != nil {
			in.executor = executor
		}
	}
}

// WithTerminal replaces the terminal attached to standard input.
func WithTerminal(t terminal.Terminal) Option {
	return func(in *Interpreter) {
		if t != nil {
			in.terminal = t
		}
	}
}

// WithFilesystem sets the filesystem used for completion and config lookup.
func WithFilesystem(fs afero.Fs) Option {
	return func(in *Interpreter) {
		if fs != nil {
			in.fs = fs
		}
	}
}

// WithStdin sets the stream the plain reader reads from.
func WithStdin(r io.Reader) Option {
	return func(in *Interpreter) {
		if r != nil {
			in.stdin = r
		}
	}
}

// WithStdout sets where the interpreter and its commands print.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) {
		if w != nil {
			in.stdout = w
		}
	}
}

// WithStderr sets where diagnostics such as unknown commands are printed.
func WithStderr(w io.Writer) Option {
	return func(in *Interpreter) {
		if w != nil {
			in.stderr = w
		}
	}
}

// WithReaderFactory replaces how the line source is chosen and created.
func WithReaderFactory(factory ReaderFactory) Option {
	return func(in *Interpreter) {
		if factory != nil {
			in.newReader = factory
		}
	}
}
