package version

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/ailevelup-ai/heal-mcp/internal/packages"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
)

type fakeLookup map[string]string

func (f fakeLookup) Latest(_ context.Context, pkg packages.Package) (string, bool) {
	v, ok := f[pkg.Name]
	return v, ok
}

func TestChecker_Check(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".claude.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "mcpServers": {
    "github": {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-github@0.6.2"]},
    "latest": {"command": "npx", "args": ["-y", "@scope/latest@latest"]},
    "local": {"command": "npm", "args": ["start"]},
    "missing": {"command": "uvx", "args": ["gone-tool==1.0"]},
    "broken": "not-an-object"
  },
  "projects": {
    "/work/app": {"mcpServers": {"time": {"command": "uvx", "args": ["mcp-server-time==2.0.0"]}}}
  }
}`), 0o644))

	lookup := fakeLookup{
		"@modelcontextprotocol/server-github": "2025.4.8",
		"@scope/latest":                       "3.1.0",
		"mcp-server-time":                     "1.9.0",
	}
	progress := &bytes.Buffer{}
	c := NewChecker(hclog.NewNullLogger(), lookup, progress)

	loc := platform.Location{Platform: platform.ClaudeCode, Label: "Claude Code (User)", Path: path, Layout: platform.LayoutProjects}
	rep, err := c.Check(context.Background(), loc)
	require.NoError(t, err)
	require.Equal(t, platform.ClaudeCode, rep.Platform)
	require.Len(t, rep.Servers, 5)

	byName := map[string]ServerReport{}
	for _, r := range rep.Servers {
		byName[r.Server] = r
	}

	require.Equal(t, StatusOutdated, byName["github"].Status)
	require.Equal(t, "0.6.2", byName["github"].Current)
	require.Equal(t, "2025.4.8", byName["github"].Latest)
	require.True(t, byName["github"].UpdateAvailable())

	require.Equal(t, StatusLatestTag, byName["latest"].Status)
	require.Equal(t, packages.LatestTag, byName["latest"].Current)
	require.Equal(t, "3.1.0", byName["latest"].Latest)

	require.Equal(t, StatusLocal, byName["local"].Status)
	require.Empty(t, byName["local"].Package)

	require.Equal(t, StatusCheckFailed, byName["missing"].Status)
	require.Equal(t, "1.0", byName["missing"].Current)

	require.Equal(t, StatusAhead, byName["time"].Status)
	require.Equal(t, "/work/app", byName["time"].Scope)

	require.NotEmpty(t, progress.String())

	s := Summarize([]Report{rep})
	require.Equal(t, Summary{UpToDate: 1, Outdated: 1, Local: 1, CheckFailed: 1, Other: 1}, s)
}

func TestChecker_Check_MissingFile(t *testing.T) {
	t.Parallel()

	c := NewChecker(hclog.NewNullLogger(), fakeLookup{}, nil)
	_, err := c.Check(context.Background(), platform.Location{Path: filepath.Join(t.TempDir(), "absent.json")})
	require.Error(t, err)
}
