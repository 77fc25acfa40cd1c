package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

func TestMain(m *testing.M) {
	term.DisableColor()
	os.Exit(m.Run())
}

type newCmdFunc func(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error)

// workspace is a fake home and project directory holding configuration files.
type workspace struct {
	locs    platform.Locations
	backups string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()

	root := t.TempDir()
	return &workspace{
		locs:    platform.DefaultLocations(filepath.Join(root, "home"), filepath.Join(root, "project")),
		backups: filepath.Join(root, "backups"),
	}
}

func (w *workspace) location(t *testing.T, p platform.Platform) platform.Location {
	t.Helper()

	loc, ok := w.locs.Lookup(p)
	require.True(t, ok)
	return loc
}

// write stores content as the configuration file of p, returning its path.
func (w *workspace) write(t *testing.T, p platform.Platform, content string) string {
	t.Helper()

	path := w.location(t, p).Path
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (w *workspace) read(t *testing.T, p platform.Platform) string {
	t.Helper()

	data, err := os.ReadFile(w.location(t, p).Path)
	require.NoError(t, err)
	return string(data)
}

func (w *workspace) options(extra ...cmdopts.CmdOption) []cmdopts.CmdOption {
	clock := func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC) }

	return append([]cmdopts.CmdOption{
		cmdopts.WithLocations(w.locs),
		cmdopts.WithBackupDir(w.backups),
		cmdopts.WithClock(clock),
	}, extra...)
}

type result struct {
	stdout string
	stderr string
	err    error
}

// execute builds a command with fn and runs it with args, feeding it stdin.
func execute(t *testing.T, fn newCmdFunc, opts []cmdopts.CmdOption, stdin string, args ...string) result {
	t.Helper()

	base := &internalcmd.BaseCmd{Logger: hclog.NewNullLogger()}
	c, err := fn(base, opts...)
	require.NoError(t, err)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	c.SetOut(stdout)
	c.SetErr(stderr)
	c.SetIn(strings.NewReader(stdin))
	c.SetArgs(args)

	err = c.Execute()

	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
