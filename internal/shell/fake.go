package shell

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Fake is a Runner which replays canned results keyed by command line, e.g. 'npm view pkg version'.
// Commands without a canned result fail with ErrNotFound.
type Fake struct {
	Results map[string]Result
	Errors  map[string]error

	// Calls records every command line run, in order.
	Calls []string

	mu sync.Mutex
}

var _ Runner = (*Fake)(nil)

// Output implements Runner.
func (f *Fake) Output(ctx context.Context, name string, args ...string) (Result, error) {
	line := commandLine(name, args)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, line)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err, ok := f.Errors[line]; ok {
		return Result{}, err
	}
	if res, ok := f.Results[line]; ok {
		return res, nil
	}

	return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Stream implements Runner, writing the canned stdout to w.
func (f *Fake) Stream(ctx context.Context, w io.Writer, name string, args ...string) error {
	res, err := f.Output(ctx, name, args...)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, res.Stdout); err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("'%s' failed: exit status %d", commandLine(name, args), res.ExitCode)
	}
	return nil
}

// LookPath returns a LookPathFunc which only resolves the given executables.
func LookPath(found ...string) LookPathFunc {
	return func(file string) (string, error) {
		for _, f := range found {
			if f == file {
				return "/usr/bin/" + strings.TrimPrefix(file, "/"), nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, file)
	}
}
