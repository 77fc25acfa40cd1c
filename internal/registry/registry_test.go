package registry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/ailevelup-ai/heal-mcp/internal/packages"
	"github.com/ailevelup-ai/heal-mcp/internal/shell"
)

type memCache struct {
	entries map[string]string
	puts    int
}

func (m *memCache) Get(key string) (string, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *memCache) Put(key string, version string) error {
	m.entries[key] = version
	m.puts++
	return nil
}

type blockingSource struct{}

func (blockingSource) Ecosystem() packages.Ecosystem {
	return packages.NPM
}

func (blockingSource) Latest(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newTestFetcher(t *testing.T, runner shell.Runner, opt ...Option) *Fetcher {
	t.Helper()

	f, err := NewFetcher(hclog.NewNullLogger(), []Source{NewNPM(runner), NewPyPI(runner)}, opt...)
	require.NoError(t, err)

	return f
}

func TestFetcher_Latest(t *testing.T) {
	t.Parallel()

	runner := &shell.Fake{
		Results: map[string]shell.Result{
			"npm view @scope/pkg version":       {Stdout: "1.4.0\n"},
			"npm view missing version":          {Stderr: "npm ERR! 404 Not Found\n", ExitCode: 1},
			"pip index versions mcp-server-git": {Stdout: "mcp-server-git (2025.1.14)\nAvailable versions: 2025.1.14\n"},
			"pip index versions odd":            {Stdout: "WARNING: something\nodd (1.0)\n"},
		},
	}

	tests := []struct {
		name     string
		pkg      packages.Package
		expected string
		ok       bool
	}{
		{
			name:     "npm",
			pkg:      packages.Package{Name: "@scope/pkg", Ecosystem: packages.NPM},
			expected: "1.4.0",
			ok:       true,
		},
		{
			name: "npm non-zero exit",
			pkg:  packages.Package{Name: "missing", Ecosystem: packages.NPM},
		},
		{
			name:     "pypi first line",
			pkg:      packages.Package{Name: "mcp-server-git", Ecosystem: packages.PyPI},
			expected: "2025.1.14",
			ok:       true,
		},
		{
			name: "pypi version not on first line",
			pkg:  packages.Package{Name: "odd", Ecosystem: packages.PyPI},
		},
		{
			name: "missing executable",
			pkg:  packages.Package{Name: "unknown", Ecosystem: packages.PyPI},
		},
		{
			name: "local is never looked up",
			pkg:  packages.Package{Ecosystem: packages.Local},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var diag bytes.Buffer
			f := newTestFetcher(t, runner, WithDiagnostics(&diag))

			v, ok := f.Latest(context.Background(), tc.pkg)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.expected, v)

			if !tc.ok && tc.pkg.Remote() {
				require.Contains(t, diag.String(), "Error checking "+string(tc.pkg.Ecosystem)+" package "+tc.pkg.Name)
			}
		})
	}
}

func TestFetcher_Timeout(t *testing.T) {
	t.Parallel()

	var diag bytes.Buffer
	f, err := NewFetcher(
		hclog.NewNullLogger(),
		[]Source{blockingSource{}},
		WithTimeout(20*time.Millisecond),
		WithDiagnostics(&diag),
	)
	require.NoError(t, err)

	start := time.Now()
	_, ok := f.Latest(context.Background(), packages.Package{Name: "slow", Ecosystem: packages.NPM})
	require.False(t, ok)
	require.Less(t, time.Since(start), 5*time.Second)
	require.Contains(t, diag.String(), "deadline exceeded")
}

func TestFetcher_Cache(t *testing.T) {
	t.Parallel()

	runner := &shell.Fake{
		Results: map[string]shell.Result{
			"npm view pkg version": {Stdout: "3.0.0\n"},
		},
	}
	c := &memCache{entries: map[string]string{"npm::cached": "9.9.9"}}
	f := newTestFetcher(t, runner, WithCache(c))

	v, ok := f.Latest(context.Background(), packages.Package{Name: "cached", Ecosystem: packages.NPM})
	require.True(t, ok)
	require.Equal(t, "9.9.9", v)
	require.Empty(t, runner.Calls)

	v, ok = f.Latest(context.Background(), packages.Package{Name: "pkg", Ecosystem: packages.NPM})
	require.True(t, ok)
	require.Equal(t, "3.0.0", v)
	require.Equal(t, "3.0.0", c.entries["npm::pkg"])

	_, ok = f.Latest(context.Background(), packages.Package{Name: "absent", Ecosystem: packages.NPM})
	require.False(t, ok)
	require.Equal(t, 1, c.puts)
}

func TestNewFetcher_DuplicateSource(t *testing.T) {
	t.Parallel()

	runner := &shell.Fake{}
	_, err := NewFetcher(hclog.NewNullLogger(), []Source{NewNPM(runner), NewNPM(runner)})
	require.ErrorContains(t, err, "duplicate source for ecosystem: npm")
}
