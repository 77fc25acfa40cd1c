package cmd

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/shell"
)

func depsRunner(found map[string]string) *shell.Fake {
	f := &shell.Fake{Results: map[string]shell.Result{}}
	for name, v := range found {
		f.Results[name+" --version"] = shell.Result{Stdout: v + "\n"}
	}
	return f
}

// installOnStream makes tools report versions once an install command has been streamed.
type installOnStream struct {
	*shell.Fake
	installs map[string]string
}

func (r *installOnStream) Stream(ctx context.Context, w io.Writer, name string, args ...string) error {
	if err := r.Fake.Stream(ctx, w, name, args...); err != nil {
		return err
	}
	for tool, v := range r.installs {
		r.Results[tool+" --version"] = shell.Result{Stdout: v + "\n"}
	}
	return nil
}

func TestDeps_CheckOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		found           map[string]string
		expectedOutputs []string
		expectedError   error
	}{
		{
			name: "all required present",
			found: map[string]string{
				"node": "v22.1.0",
				"npm":  "10.7.0",
				"npx":  "10.7.0",
			},
			expectedOutputs: []string{
				"MCP Dependency Installer",
				"Node.js Ecosystem:",
				"v22.1.0",
				"Optional",
			},
		},
		{
			name:  "node missing",
			found: map[string]string{"brew": "Homebrew 4.3.0"},
			expectedOutputs: []string{
				"Missing",
				"Homebrew 4.3.0",
			},
			expectedError: healerrors.ErrMissingDependencies,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			runner := depsRunner(tc.found)
			res := execute(t, NewDepsCmd, []cmdopts.CmdOption{cmdopts.WithRunner(runner)}, "", "--check-only")
			if tc.expectedError != nil {
				require.ErrorIs(t, res.err, tc.expectedError)
			} else {
				require.NoError(t, res.err)
			}

			for _, expected := range tc.expectedOutputs {
				require.Contains(t, res.stdout, expected)
			}

			// Checking never installs anything.
			for _, call := range runner.Calls {
				require.NotContains(t, call, "install")
			}
		})
	}
}

func TestDeps_DeclineInstall(t *testing.T) {
	t.Parallel()

	runner := depsRunner(map[string]string{"brew": "Homebrew 4.3.0"})

	res := execute(t, NewDepsCmd, []cmdopts.CmdOption{cmdopts.WithRunner(runner)}, "n\n")
	require.ErrorIs(t, res.err, healerrors.ErrMissingDependencies)
	require.Contains(t, res.err.Error(), "node, npm, npx")
	require.Contains(t, res.stdout, "Install Node.js via Homebrew?")
	require.Contains(t, res.stdout, "Please install the missing dependencies")
	require.NotContains(t, runner.Calls, "brew install node")
}

func TestDeps_InstallNode(t *testing.T) {
	t.Parallel()

	runner := depsRunner(map[string]string{"brew": "Homebrew 4.3.0", "python3": "Python 3.12.4", "uv": "uv 0.4.0", "uvx": "uv 0.4.0"})
	runner.Results["brew install node"] = shell.Result{Stdout: "==> Pouring node\n"}

	// Once brew has run, node, npm and npx report versions.
	installed := map[string]string{"node": "v22.1.0", "npm": "10.7.0", "npx": "10.7.0"}
	stream := &installOnStream{Fake: runner, installs: installed}

	res := execute(t, NewDepsCmd, []cmdopts.CmdOption{cmdopts.WithRunner(stream)}, "y\n")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "==> Pouring node")
	require.Contains(t, res.stdout, "✓ Node.js installed successfully!")
	require.Contains(t, res.stdout, "Setup complete!")
	require.Contains(t, runner.Calls, "brew install node")
}

func TestDeps_Cancelled(t *testing.T) {
	t.Parallel()

	runner := depsRunner(map[string]string{"brew": "Homebrew 4.3.0"})

	res := execute(t, NewDepsCmd, []cmdopts.CmdOption{cmdopts.WithRunner(runner)}, "")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Operation cancelled by user")
}
