package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
)

const repairConfig = `{"mcpServers": {"github": {"command": "npx", "args": ["@modelcontextprotocol/server-github"]}}}`

func TestRepair_Platform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		stdin           string
		expectedOutputs []string
		expectFixed     bool
	}{
		{
			name:  "apply fix",
			stdin: "y\n",
			expectedOutputs: []string{
				"🔧 Interactive MCP Server Repair Tool",
				"Issues found:",
				"Server: github",
				"Backup saved to:",
				"✓ Fix applied successfully",
				"Repair session complete!",
			},
			expectFixed: true,
		},
		{
			name:  "skip fix",
			stdin: "n\n",
			expectedOutputs: []string{
				"Fix skipped",
				"Repair session complete!",
			},
		},
		{
			name:  "input closed",
			stdin: "",
			expectedOutputs: []string{
				"Operation cancelled by user",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ws := newWorkspace(t)
			ws.write(t, platform.Cursor, repairConfig)

			res := execute(t, NewRepairCmd, ws.options(), tc.stdin, "--platform", "cursor")
			require.NoError(t, res.err)

			for _, expected := range tc.expectedOutputs {
				require.Contains(t, res.stdout, expected)
			}

			content := ws.read(t, platform.Cursor)
			if !tc.expectFixed {
				require.Equal(t, repairConfig, content)
				require.NoDirExists(t, ws.backups)
				return
			}

			require.Contains(t, content, `"-y"`)
			entries, err := os.ReadDir(ws.backups)
			require.NoError(t, err)
			require.Len(t, entries, 1)
		})
	}
}

func TestRepair_NoIssues(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	ws.write(t, platform.ClaudeDesktop, `{"mcpServers": {"time": {"command": "uvx", "args": ["mcp-server-time"]}}}`)

	res := execute(t, NewRepairCmd, ws.options(), "", "--platform", "claude-desktop")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "✓ No issues found! Configuration looks good.")
}

func TestRepair_UnknownPlatform(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)

	res := execute(t, NewRepairCmd, ws.options(), "", "--platform", "vscode")
	require.ErrorIs(t, res.err, healerrors.ErrUnknownPlatform)
}

func TestRepair_Menu(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	ws.write(t, platform.Cursor, repairConfig)

	// Repair the missing Claude Desktop file, then Cursor declining the fix, then view backups and exit.
	res := execute(t, NewRepairCmd, ws.options(), "1\n3\nn\n4\n0\n")
	require.NoError(t, res.err)

	for _, expected := range []string{
		"  1. Repair Claude Desktop configuration",
		"  2. Repair Claude Code (User) configuration",
		"  3. Repair Cursor (Global) configuration",
		"  4. View/Restore backups",
		"  0. Exit",
		"Configuration file not found:",
		"Fix skipped",
		"No backups found",
		"Goodbye!",
	} {
		require.Contains(t, res.stdout, expected)
	}
}

func TestRepair_Menu_CancelKeepsEarlierFailures(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	ws.write(t, platform.Cursor, repairConfig)
	require.NoError(t, os.WriteFile(ws.backups, []byte("not a directory"), 0o644))

	// Apply the Cursor fix, which cannot be backed up, then close input at the menu.
	res := execute(t, NewRepairCmd, ws.options(), "3\ny\n")
	require.Error(t, res.err)
	require.ErrorContains(t, res.err, "backup failed")
	require.NotErrorIs(t, res.err, healerrors.ErrCancelled)

	require.Contains(t, res.stdout, "✗ Fix failed:")
	require.Contains(t, res.stdout, "Operation cancelled by user")
	require.Equal(t, repairConfig, ws.read(t, platform.Cursor))
}
