// Package builtin provides the special commands every Shelly interpreter starts with.
package builtin

import "shelly/internal/commands"

// Quit returns the \quit command, which asks the interpreter to stop reading input.
func Quit(sigil string) *commands.Command {
	return commands.New(
		"quit",
		"Exits the interpreter",
		sigil+"quit",
		func(sh commands.Shell, _ string) error {
			sh.RequestExit()
			return nil
		},
	)
}

// Commands returns the built-in commands in the order they are registered.
func Commands(sigil string) []*commands.Command {
	return []*commands.Command{
		Quit(sigil),
		Help(sigil),
	}
}
