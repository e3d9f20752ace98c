package testutils

import (
	"io"
)

// ScriptedReader implements linereader.Reader over a fixed list of lines. It records
// the continuation flag of every read and returns io.EOF once the lines run out.
type ScriptedReader struct {
	Lines []string
	// Errors maps a read index to an error returned instead of the line at that index.
	Errors map[int]error

	Continuations []bool
	Closed        bool
	reads         int
	next          int
}

// NewScriptedReader creates a reader yielding lines in order.
func NewScriptedReader(lines ...string) *ScriptedReader {
	return &ScriptedReader{Lines: lines}
}

// ReadLine implements linereader.Reader.
func (s *ScriptedReader) ReadLine(continuation bool) (string, error) {
	s.Continuations = append(s.Continuations, continuation)
	read := s.reads
	s.reads++

	if err, ok := s.Errors[read]; ok {
		return "", err
	}
	if s.next >= len(s.Lines) {
		return "", io.EOF
	}
	line := s.Lines[s.next]
	s.next++
	return line, nil
}

// Reads returns how many times ReadLine was called.
func (s *ScriptedReader) Reads() int {
	return s.reads
}

// Close implements linereader.Reader.
func (s *ScriptedReader) Close() error {
	s.Closed = true
	return nil
}

// FakeTerminal implements terminal.Terminal and counts saves and restores.
type FakeTerminal struct {
	Interactive bool
	SaveErr     error
	Saves       int
	Restores    int
}

// IsInteractive implements terminal.Terminal.
func (f *FakeTerminal) IsInteractive() bool {
	return f.Interactive
}

// Save implements terminal.Terminal.
func (f *FakeTerminal) Save() (func() error, error) {
	f.Saves++
	if f.SaveErr != nil {
		return nil, f.SaveErr
	}
	return func() error {
		f.Restores++
		return nil
	}, nil
}
