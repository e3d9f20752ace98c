package commands

import (
	"errors"
	"fmt"
	"iter"
	"sync"
)

var (
	// ErrInvalidName is returned when a command name is not strictly alphanumeric.
	ErrInvalidName = errors.New("command names must be alphanumeric")
	// ErrDuplicateCommand is returned when a command name is already registered.
	ErrDuplicateCommand = errors.New("command already registered")
)

// Registry manages special-command registration and lookup.
// Commands are kept in registration order for listings.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	order    []*Command
}

// NewRegistry creates a new command registry with an empty command map.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
	}
}

// Register adds a command to the registry. It fails with ErrInvalidName when the name
// does not match [A-Za-z0-9]+ and with ErrDuplicateCommand when the name is taken.
// A failed registration leaves the registry unchanged.
func (r *Registry) Register(cmd *Command) error {
	if cmd == nil {
		return fmt.Errorf("%w (given: nil command)", ErrInvalidName)
	}
	if !ValidName(cmd.Name) {
		return fmt.Errorf("%w (given: '%s')", ErrInvalidName, cmd.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("%w: '%s'", ErrDuplicateCommand, cmd.Name)
	}

	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd)
	return nil
}

// Lookup retrieves a command by its exact name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, exists := r.commands[name]
	return cmd, exists
}

// All returns the registered commands in registration order.
// The returned slice is a copy and can be safely modified.
func (r *Registry) All() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]*Command, len(r.order))
	copy(commands, r.order)
	return commands
}

// Each yields the registered commands in registration order. The sequence can be
// ranged over any number of times.
func (r *Registry) Each() iter.Seq[*Command] {
	return func(yield func(*Command) bool) {
		for _, cmd := range r.All() {
			if !yield(cmd) {
				return
			}
		}
	}
}

// Names returns the registered command names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	for i, cmd := range r.order {
		names[i] = cmd.Name
	}
	return names
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ValidName reports whether name is a non-empty run of ASCII letters and digits.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !IsNameByte(name[i]) {
			return false
		}
	}
	return true
}

// IsNameByte reports whether b may appear in a command name.
func IsNameByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
