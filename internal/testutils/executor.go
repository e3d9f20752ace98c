package testutils

import (
	"context"
	"errors"

	"shelly/internal/execution"
)

// RecordingExecutor implements execution.Executor by recording commands instead of
// running them.
type RecordingExecutor struct {
	Commands []string
	// Envs holds the extra environment each command was run with.
	Envs   [][]string
	Status int
	Err      error
}

// Execute records command and returns the configured status and error.
func (r *RecordingExecutor) Execute(ctx context.Context, command string) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	r.Commands = append(r.Commands, command)
	r.Envs = append(r.Envs, execution.EnvFromContext(ctx))
	return r.Status, r.Err
}

// ErrShellMissing is a convenient start failure for executor tests.
var ErrShellMissing = errors.New("shell not found")
