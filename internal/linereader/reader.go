// Package linereader supplies input lines to the interpreter: a readline-backed source
// with prompts, history and completion for terminals, and a plain line-at-a-time
// source for everything else.
package linereader

import (
	"bufio"
	"errors"
	"io"
)

// ErrInterrupt is returned when the user interrupts the current line (Ctrl+C).
var ErrInterrupt = errors.New("line interrupted")

// PromptFunc renders the prompt; continuation is true while a logical line is
// still being assembled.
type PromptFunc func(continuation bool) string

// Reader yields one input line per call and io.EOF once input is exhausted.
type Reader interface {
	ReadLine(continuation bool) (string, error)
	Close() error
}

// maxLineSize bounds a single input line for the plain reader.
const maxLineSize = 1024 * 1024

// Plain reads newline-terminated lines from a stream without prompting.
type Plain struct {
	scanner *bufio.Scanner
}

// NewPlain creates a plain reader over r.
func NewPlain(r io.Reader) *Plain {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Plain{scanner: scanner}
}

// ReadLine returns the next line with its line terminator removed.
func (p *Plain) ReadLine(_ bool) (string, error) {
	if p.scanner.Scan() {
		return p.scanner.Text(), nil
	}
	if err := p.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close implements Reader. The underlying stream is owned by the caller.
func (p *Plain) Close() error {
	return nil
}
