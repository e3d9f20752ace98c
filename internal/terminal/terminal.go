// Package terminal detects whether the shell talks to an interactive terminal and
// saves and restores the terminal mode around a session.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// Terminal is the terminal-mode collaborator of the interpreter.
type Terminal interface {
	// IsInteractive reports whether input comes from a terminal.
	IsInteractive() bool
	// Save captures the current terminal mode and returns a func restoring it.
	Save() (restore func() error, err error)
}

// FileTerminal is a Terminal backed by a file descriptor, normally stdin.
type FileTerminal struct {
	fd int
}

// New returns a terminal for f.
func New(f *os.File) *FileTerminal {
	return &FileTerminal{fd: int(f.Fd())}
}

// Stdin returns the terminal attached to the process's standard input.
func Stdin() *FileTerminal {
	return New(os.Stdin)
}

// IsInteractive reports whether the descriptor is a terminal.
func (t *FileTerminal) IsInteractive() bool {
	return term.IsTerminal(t.fd)
}

// Save captures the terminal state. On a non-terminal it returns a no-op restore.
func (t *FileTerminal) Save() (func() error, error) {
	if !t.IsInteractive() {
		return func() error { return nil }, nil
	}
	state, err := term.GetState(t.fd)
	if err != nil {
		return func() error { return nil }, err
	}
	return func() error {
		return term.Restore(t.fd, state)
	}, nil
}
