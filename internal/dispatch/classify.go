// Package dispatch implements Shelly's line-processing state machine: it buffers
// continuation lines and routes every completed line to a special command, the
// shell escape or the wrapped program.
package dispatch

import (
	"strings"

	"shelly/internal/commands"
)

// DefaultSigil introduces special commands.
const DefaultSigil = `\`

// DefaultEscapeMarker introduces shell-escape lines.
const DefaultEscapeMarker = "!"

// continuationMarker at the end of a line joins it with the next one.
const continuationMarker = `\`

// Kind is the classification of a buffered line.
type Kind int

const (
	// KindContinuation means more input is needed before dispatching.
	KindContinuation Kind = iota
	// KindSpecial names a special command.
	KindSpecial
	// KindShellEscape runs the rest of the line on the default shell.
	KindShellEscape
	// KindPassThrough forwards the line to the wrapped program.
	KindPassThrough
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindContinuation:
		return "Continuation"
	case KindSpecial:
		return "Special"
	case KindShellEscape:
		return "ShellEscape"
	case KindPassThrough:
		return "PassThrough"
	default:
		return "Unknown"
	}
}

// Config holds the syntax and invocation settings the engine dispatches with.
type Config struct {
	// Sigil introduces special commands. Empty means DefaultSigil.
	Sigil string
	// EscapeMarker introduces shell-escape lines when ShellEscape is set.
	EscapeMarker string
	ShellEscape  bool

	Prefix     string
	Suffix     string
	QuoteInput bool
}

func (c Config) sigil() string {
	if c.Sigil == "" {
		return DefaultSigil
	}
	return c.Sigil
}

// Action is what a buffered line asks the engine to do.
type Action struct {
	Kind Kind
	// Text is the buffer with the continuation marker removed (KindContinuation).
	Text string
	// Name is the command token as typed, before abbreviation lookup (KindSpecial).
	Name string
	// Args is everything after the command name and its trailing whitespace (KindSpecial).
	Args string
	// Command is the string to run on the default shell (KindShellEscape, KindPassThrough).
	Command string
}

// Classify decides what buffer means, checking in priority order: continuation,
// special command, shell escape, pass-through.
func Classify(buffer string, cfg Config) Action {
	if text, ok := strings.CutSuffix(buffer, continuationMarker); ok {
		return Action{Kind: KindContinuation, Text: text}
	}

	if name, args, ok := parseSpecial(buffer, cfg.sigil()); ok {
		return Action{Kind: KindSpecial, Name: name, Args: args}
	}

	if cfg.ShellEscape && cfg.EscapeMarker != "" {
		if rest, ok := strings.CutPrefix(buffer, cfg.EscapeMarker); ok {
			return Action{Kind: KindShellEscape, Command: strings.TrimSpace(rest)}
		}
	}

	return Action{
		Kind:    KindPassThrough,
		Command: Invocation(cfg.Prefix, buffer, cfg.Suffix, cfg.QuoteInput),
	}
}

// Invocation builds the pass-through command: prefix, the (optionally quoted) line
// and suffix, separated by single spaces.
func Invocation(prefix, line, suffix string, quote bool) string {
	if quote {
		line = `"` + line + `"`
	}
	return prefix + " " + line + " " + suffix
}

// parseSpecial matches <sigil><name><optional whitespace><rest>, where name is the
// longest run of ASCII letters and digits following the sigil.
func parseSpecial(buffer, sigil string) (name, args string, ok bool) {
	rest, found := strings.CutPrefix(buffer, sigil)
	if !found {
		return "", "", false
	}

	end := 0
	for end < len(rest) && commands.IsNameByte(rest[end]) {
		end++
	}
	if end == 0 {
		return "", "", false
	}

	return rest[:end], strings.TrimLeft(rest[end:], " \t\r\n\f\v"), true
}
