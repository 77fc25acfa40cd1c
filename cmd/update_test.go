package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ailevelup-ai/heal-mcp/internal/platform"
)

const updateConfig = `{
  "mcpServers": {
    "github": {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-github"]},
    "custom": {"command": "node", "args": ["server.js"]}
  }
}`

func TestUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		args            []string
		expectedOutputs []string
		expectWritten   bool
	}{
		{
			name: "dry run",
			args: []string{"--dry-run"},
			expectedOutputs: []string{
				"Dry run: no files will be changed",
				"→ @modelcontextprotocol/server-github@2025.4.8",
				"1 server would be updated",
			},
		},
		{
			name: "writes changes",
			expectedOutputs: []string{
				"🔄 MCP Server Updater",
				"✓ Updated 1 server",
				"Backups saved to:",
				"Next steps:",
			},
			expectWritten: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ws := newWorkspace(t)
			ws.write(t, platform.ClaudeDesktop, updateConfig)

			res := execute(t, NewUpdateCmd, ws.options(), "", tc.args...)
			require.NoError(t, res.err)

			for _, expected := range tc.expectedOutputs {
				require.Contains(t, res.stdout, expected)
			}

			content := ws.read(t, platform.ClaudeDesktop)
			if !tc.expectWritten {
				require.Equal(t, updateConfig, content)
				require.NoDirExists(t, ws.backups)
				return
			}

			require.Contains(t, content, "@modelcontextprotocol/server-github@2025.4.8")
			require.Contains(t, content, "server.js")

			entries, err := os.ReadDir(ws.backups)
			require.NoError(t, err)
			require.Len(t, entries, 1)
		})
	}
}

func TestUpdate_AlreadyCurrent(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	ws.write(t, platform.ClaudeDesktop, updateConfig)

	first := execute(t, NewUpdateCmd, ws.options(), "")
	require.NoError(t, first.err)
	updated := ws.read(t, platform.ClaudeDesktop)

	second := execute(t, NewUpdateCmd, ws.options(), "")
	require.NoError(t, second.err)
	require.Contains(t, second.stdout, "✓ All servers already match the catalogue")
	require.Equal(t, updated, ws.read(t, platform.ClaudeDesktop))
}

func TestUpdate_Catalogue(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	ws.write(t, platform.Cursor, `{"mcpServers": {"time": {"command": "uvx", "args": ["mcp-server-time@2025.1.1"]}}}`)

	catalogue := filepath.Join(t.TempDir(), "catalogue.toml")
	require.NoError(t, os.WriteFile(catalogue, []byte("[cursor.time]\nnew = \"mcp-server-time@2025.8.1\"\n"), 0o644))

	res := execute(t, NewUpdateCmd, ws.options(), "", "--catalogue", catalogue)
	require.NoError(t, res.err)
	require.Contains(t, ws.read(t, platform.Cursor), "mcp-server-time@2025.8.1")
}

func TestUpdate_BadCatalogue(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)

	catalogue := filepath.Join(t.TempDir(), "catalogue.toml")
	require.NoError(t, os.WriteFile(catalogue, []byte("[nowhere.time]\nnew = \"x\"\n"), 0o644))

	res := execute(t, NewUpdateCmd, ws.options(), "", "--catalogue", catalogue)
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "invalid update catalogue")
}
