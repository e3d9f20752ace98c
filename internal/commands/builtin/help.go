package builtin

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shelly/internal/commands"
)

var headingStyle = lipgloss.NewStyle().Bold(true)

// Help returns the \help command. Without an argument it lists every registered
// command; with one it describes that command (abbreviations accepted) or the
// shell-escape feature.
func Help(sigil string) *commands.Command {
	return commands.New(
		"help",
		"Prints a listing of available special commands or describes a specific command",
		sigil+"help [COMMAND]",
		func(sh commands.Shell, args string) error {
			topic := strings.TrimSpace(args)
			if topic == "" {
				listCommands(sh)
				return nil
			}
			describe(sh, topic)
			return nil
		},
	)
}

func listCommands(sh commands.Shell) {
	out := sh.Stdout()
	sigil := sh.Sigil()
	marker, escape := sh.ShellEscape()

	width := 0
	for cmd := range sh.Registry().Each() {
		width = max(width, len(sigil)+len(cmd.Name))
	}
	if escape {
		width = max(width, len(marker))
	}

	fmt.Fprintln(out, headingStyle.Render("Available commands:"))
	for cmd := range sh.Registry().Each() {
		line := fmt.Sprintf("  %-*s  %s", width, sigil+cmd.Name, cmd.Description)
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
	if escape {
		fmt.Fprintf(out, "  %-*s  %s\n", width, marker, "Runs a command verbatim on your default shell")
	}
}

func describe(sh commands.Shell, topic string) {
	out := sh.Stdout()
	sigil := sh.Sigil()

	if marker, escape := sh.ShellEscape(); escape && topic == marker {
		fmt.Fprintln(out, headingStyle.Render(marker))
		fmt.Fprintln(out, "Aliases: (none)")
		fmt.Fprintf(out, "Usage: %sCOMMAND\n", marker)
		fmt.Fprintln(out, "Runs COMMAND verbatim on your default shell.")
		return
	}

	token := strings.TrimPrefix(topic, sigil)
	name, ok := sh.Index().Resolve(token)
	if !ok {
		fmt.Fprintf(sh.Stderr(), "Unknown command '%s'\n", topic)
		return
	}
	cmd, ok := sh.Registry().Lookup(name)
	if !ok {
		fmt.Fprintf(sh.Stderr(), "Unknown command '%s'\n", topic)
		return
	}

	fmt.Fprintln(out, headingStyle.Render(sigil+cmd.Name))
	fmt.Fprintf(out, "Aliases: %s\n", strings.Join(sh.Index().Aliases(cmd.Name), ", "))
	fmt.Fprintf(out, "Usage: %s\n", cmd.Usage)
	if cmd.Description != "" {
		fmt.Fprintln(out, cmd.Description)
	}
}
