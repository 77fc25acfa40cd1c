// Package shell runs external commands such as package registry clients and installers.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// WaitDelay bounds how long output pipes are drained after a command exits or its context ends,
// so a grandchild holding stdout open cannot outlive the caller's deadline.
const WaitDelay = time.Second

// ErrNotFound is returned when the executable cannot be resolved.
var ErrNotFound = errors.New("executable not found")

// Result is the captured outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs external commands.
type Runner interface {
	// Output runs the command to completion and captures its output.
	// A non-zero exit status is not an error; inspect Result.ExitCode.
	Output(ctx context.Context, name string, args ...string) (Result, error)

	// Stream runs the command with its output attached to w, for long-running installers.
	Stream(ctx context.Context, w io.Writer, name string, args ...string) error
}

// LookPathFunc resolves an executable name to a path, in the manner of exec.LookPath.
type LookPathFunc func(file string) (string, error)

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

var _ Runner = (*ExecRunner)(nil)

// Output implements Runner.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = WaitDelay

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("'%s' did not finish: %w", commandLine(name, args), ctx.Err())
	case errors.Is(err, exec.ErrWaitDelay):
		// The command exited cleanly but left a child attached to its output.
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	case errors.Is(err, exec.ErrNotFound):
		return res, fmt.Errorf("%w: %s", ErrNotFound, name)
	default:
		return res, fmt.Errorf("failed to run '%s': %w", commandLine(name, args), err)
	}
}

// Stream implements Runner.
func (ExecRunner) Stream(ctx context.Context, w io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = w
	cmd.Stderr = w
	cmd.WaitDelay = WaitDelay

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("'%s' failed: %w", commandLine(name, args), err)
	}

	return nil
}

// FirstLine returns the first line of s without surrounding whitespace.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i != -1 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
