// Package execution runs command strings on the host's default shell with the
// controlling terminal's standard streams attached.
package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

type envKey struct{}

// WithEnv returns a copy of ctx carrying extra KEY=VALUE pairs for commands run with it.
func WithEnv(ctx context.Context, env ...string) context.Context {
	merged := append(EnvFromContext(ctx), env...)
	return context.WithValue(ctx, envKey{}, merged)
}

// EnvFromContext returns the pairs added with WithEnv.
func EnvFromContext(ctx context.Context) []string {
	env, _ := ctx.Value(envKey{}).([]string)
	return append([]string(nil), env...)
}

// Executor runs a command string and reports its exit status.
type Executor interface {
	Execute(ctx context.Context, command string) (int, error)
}

// ShellExecutor runs commands through "/bin/sh -c" ("cmd /C" on Windows).
type ShellExecutor struct {
	shell string
	flag  string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewShellExecutor creates an executor bound to the process's standard streams.
func NewShellExecutor() *ShellExecutor {
	shell, flag := DefaultShell()
	return &ShellExecutor{
		shell:  shell,
		flag:   flag,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// DefaultShell returns the shell binary and the flag that makes it run a string.
func DefaultShell() (shell, flag string) {
	if runtime.GOOS == "windows" {
		if comspec := os.Getenv("COMSPEC"); comspec != "" {
			return comspec, "/C"
		}
		return "cmd", "/C"
	}
	return "/bin/sh", "-c"
}

// Execute runs command to completion with the process environment plus any pairs
// attached to ctx by WithEnv. A non-zero exit status is returned with a nil
// error; an error means the shell could not be started or waited for. The context is
// only consulted before starting: a running command is never interrupted from here.
func (e *ShellExecutor) Execute(ctx context.Context, command string) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}

	cmd := exec.Command(e.shell, e.flag, command)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if env := EnvFromContext(ctx); len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run %q: %w", command, err)
}
