package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/shell"
)

func newTestValidator(t *testing.T, opt ...Option) *Validator {
	t.Helper()

	opts := append([]Option{WithLookPath(shell.LookPath("my-server")), WithGOOS("darwin")}, opt...)
	v, err := NewValidator(hclog.NewNullLogger(), opts...)
	require.NoError(t, err)

	return v
}

func load(t *testing.T, content string, layout platform.Layout) *config.Document {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := config.Load(path, layout)
	require.NoError(t, err)

	return doc
}

func TestStructure_MissingServers(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t)
	doc := load(t, `{"globalShortcut": "Cmd+Space"}`, platform.LayoutFlat)

	require.Equal(t, []string{"Missing 'mcpServers' root key"}, v.Structure(doc))
	require.Empty(t, v.Warnings(doc))
}

func TestStructure_WellFormed(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t)
	doc := load(t, `{"mcpServers": {"github": {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-github"], "env": {"GITHUB_TOKEN": "${GITHUB_TOKEN}"}}}}`, platform.LayoutFlat)

	require.Empty(t, v.Structure(doc))
	require.Empty(t, v.Warnings(doc))
}

func TestStructure_Defects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "servers not an object",
			content:  `{"mcpServers": ["a"]}`,
			expected: []string{"'mcpServers' must be an object/dictionary"},
		},
		{
			name:     "entry not an object",
			content:  `{"mcpServers": {"a": "npx"}}`,
			expected: []string{"Server 'a': configuration must be an object"},
		},
		{
			name:     "missing command",
			content:  `{"mcpServers": {"a": {"args": []}}}`,
			expected: []string{"Server 'a': missing required 'command' field"},
		},
		{
			name:    "wrong container shapes",
			content: `{"mcpServers": {"a": {"command": "node", "args": "x.js", "env": ["K=V"]}}}`,
			expected: []string{
				"Server 'a': 'args' must be an array",
				"Server 'a': 'env' must be an object",
			},
		},
		{
			name:     "command not a string",
			content:  `{"mcpServers": {"a": {"command": 42}}}`,
			expected: []string{"Server 'a': 'command' must be a string"},
		},
		{
			name:    "every entry is checked",
			content: `{"mcpServers": {"b": {}, "a": 1}}`,
			expected: []string{
				"Server 'a': configuration must be an object",
				"Server 'b': missing required 'command' field",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			v := newTestValidator(t)
			require.Equal(t, tc.expected, v.Structure(load(t, tc.content, platform.LayoutFlat)))
		})
	}
}

func TestStructure_ProjectsLayout(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t)
	content := `{
  "projects": {
    "/work/app": {"mcpServers": {"db": {"args": []}}},
    "/work/empty": {}
  }
}`

	require.Equal(t,
		[]string{"project '/work/app': Server 'db': missing required 'command' field"},
		v.Structure(load(t, content, platform.LayoutProjects)),
	)

	// Without the projects layout only the root mapping counts.
	require.Equal(t,
		[]string{"Missing 'mcpServers' root key"},
		v.Structure(load(t, content, platform.LayoutFlat)),
	)
}

func TestWarnings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		goos     string
		content  string
		expected []string
	}{
		{
			name:    "npx without -y",
			content: `{"mcpServers": {"fs": {"command": "npx", "args": ["@modelcontextprotocol/server-filesystem"]}}}`,
			expected: []string{
				"Server 'fs': npx without -y flag may prompt for installation",
			},
		},
		{
			name:    "npx on windows",
			goos:    "windows",
			content: `{"mcpServers": {"fs": {"command": "npx", "args": ["-y", "pkg"]}}}`,
			expected: []string{
				"Server 'fs': Windows detected with npx command. Consider wrapping with cmd: 'command': 'cmd', 'args': ['/c', 'npx', ...]",
			},
		},
		{
			name:    "uvx with scoped package",
			content: `{"mcpServers": {"u": {"command": "uvx", "args": ["@scope/tool"]}}}`,
			expected: []string{
				"Server 'u': uvx with scoped package '@scope/tool' may fail. Consider using npx instead",
			},
		},
		{
			name:    "short env values",
			content: `{"mcpServers": {"e": {"command": "node", "env": {"B": "abc", "A": "", "C": "${TOKEN}", "D": "a-long-enough-value"}}}}`,
			expected: []string{
				"Server 'e': env variable 'B' looks suspicious. Ensure it's not a hardcoded secret",
			},
		},
		{
			name:    "command not found",
			content: `{"mcpServers": {"x": {"command": "missing-binary"}, "y": {"command": "my-server"}}}`,
			expected: []string{
				"Server 'x': command 'missing-binary' not found in PATH",
			},
		},
		{
			name:     "broken entries are skipped",
			content:  `{"mcpServers": {"x": "npx", "y": {"args": ["-y"]}}}`,
			expected: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			goos := tc.goos
			if goos == "" {
				goos = "linux"
			}
			v := newTestValidator(t, WithGOOS(goos))
			require.Equal(t, tc.expected, v.Warnings(load(t, tc.content, platform.LayoutFlat)))
		})
	}
}

func TestCommandExists_File(t *testing.T) {
	t.Parallel()

	script := filepath.Join(t.TempDir(), "server.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755))

	v := newTestValidator(t)
	require.True(t, v.CommandExists(script))
	require.True(t, v.CommandExists("docker"))
	require.True(t, v.CommandExists("my-server"))
	require.False(t, v.CommandExists(filepath.Dir(script)))
}

func TestSuspiciousEnvValue(t *testing.T) {
	t.Parallel()

	require.True(t, SuspiciousEnvValue("secret"))
	require.True(t, SuspiciousEnvValue("ééééééééé"))
	require.False(t, SuspiciousEnvValue("éééééééééé"))
	require.False(t, SuspiciousEnvValue(""))
	require.False(t, SuspiciousEnvValue("${X}"))
}

func TestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"mcpServers": {"b": {"command": "node"}, "a": {"command": "uvx", "args": ["t"]}}}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("{\n  \"mcpServers\": {,\n}"), 0o644))

	v := newTestValidator(t)

	res := v.File(platform.Location{Label: "Cursor (Global)", Path: good, Layout: platform.LayoutFlat})
	require.True(t, res.OK())
	require.Equal(t, "Valid JSON syntax", res.Message)
	require.Equal(t, []string{"a", "b"}, res.Servers)

	res = v.File(platform.Location{Label: "Claude Desktop", Path: bad, Layout: platform.LayoutFlat})
	require.False(t, res.Valid)
	require.False(t, res.OK())
	require.Contains(t, res.Message, "JSON syntax error at line 2")

	failed := Failed([]Result{{Valid: true}, {Valid: false}, {Valid: true, Defects: []string{"x"}}})
	require.Len(t, failed, 2)
}

func TestWithLookPath_Nil(t *testing.T) {
	t.Parallel()

	_, err := NewValidator(hclog.NewNullLogger(), WithLookPath(nil))
	require.Error(t, err)
}
