// Package commands provides the special-command model for Shelly: the Command type,
// an insertion-ordered Registry and the abbreviation Index built from it.
package commands

import "io"

// Shell is the view of the running interpreter handed to command bodies.
type Shell interface {
	// RequestExit asks the read loop to stop before the next line is read.
	RequestExit()
	// Registry returns the registry the interpreter dispatches from.
	Registry() *Registry
	// Index returns the abbreviation index built for the current run.
	Index() *Index
	// Sigil returns the marker that introduces special commands, e.g. "\".
	Sigil() string
	// ShellEscape returns the shell-escape marker and whether the feature is enabled.
	ShellEscape() (marker string, enabled bool)
	// Exec runs command verbatim on the default shell, inheriting the terminal.
	Exec(command string) (int, error)
	Stdout() io.Writer
	Stderr() io.Writer
}

// Body is the callback behind a special command. It receives everything after the
// command name (leading whitespace removed) as args.
type Body func(sh Shell, args string) error

// Command is a named special command. Commands are immutable once registered.
type Command struct {
	Name        string
	Description string
	Usage       string
	Body        Body
}

// New creates a command. An empty usage falls back to the description.
func New(name, description, usage string, body Body) *Command {
	if usage == "" {
		usage = description
	}
	return &Command{
		Name:        name,
		Description: description,
		Usage:       usage,
		Body:        body,
	}
}

// Run invokes the command body. A command without a body does nothing.
func (c *Command) Run(sh Shell, args string) error {
	if c.Body == nil {
		return nil
	}
	return c.Body(sh, args)
}
