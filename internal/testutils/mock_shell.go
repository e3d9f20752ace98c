// Package testutils provides shared fakes for Shelly package tests.
package testutils

import (
	"bytes"
	"io"

	"shelly/internal/commands"
)

// MockShell implements commands.Shell for testing command bodies in isolation.
type MockShell struct {
	registry *commands.Registry
	index    *commands.Index

	SigilValue   string
	EscapeMarker string
	EscapeOn     bool

	ExitRequested bool
	Executed      []string
	ExecStatus    int
	ExecError     error

	Out bytes.Buffer
	Err bytes.Buffer
}

// NewMockShell creates a mock shell over registry with a freshly built index,
// the default "\" sigil and the "!" shell escape enabled.
func NewMockShell(registry *commands.Registry) *MockShell {
	if registry == nil {
		registry = commands.NewRegistry()
	}
	return &MockShell{
		registry:     registry,
		index:        commands.BuildIndex(registry.Names()),
		SigilValue:   `\`,
		EscapeMarker: "!",
		EscapeOn:     true,
	}
}

// Reindex rebuilds the abbreviation index after further registrations.
func (m *MockShell) Reindex() {
	m.index = commands.BuildIndex(m.registry.Names())
}

// RequestExit implements commands.Shell.
func (m *MockShell) RequestExit() { m.ExitRequested = true }

// Registry implements commands.Shell.
func (m *MockShell) Registry() *commands.Registry { return m.registry }

// Index implements commands.Shell.
func (m *MockShell) Index() *commands.Index { return m.index }

// Sigil implements commands.Shell.
func (m *MockShell) Sigil() string { return m.SigilValue }

// ShellEscape implements commands.Shell.
func (m *MockShell) ShellEscape() (string, bool) { return m.EscapeMarker, m.EscapeOn }

// Exec implements commands.Shell by recording the command.
func (m *MockShell) Exec(command string) (int, error) {
	m.Executed = append(m.Executed, command)
	return m.ExecStatus, m.ExecError
}

// Stdout implements commands.Shell.
func (m *MockShell) Stdout() io.Writer { return &m.Out }

// Stderr implements commands.Shell.
func (m *MockShell) Stderr() io.Writer { return &m.Err }

var _ commands.Shell = (*MockShell)(nil)
