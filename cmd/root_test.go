package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	"github.com/ailevelup-ai/heal-mcp/internal/flags"
)

// resetGlobalFlags restores the package level flag values once the test is done.
func resetGlobalFlags(t *testing.T) {
	t.Helper()

	home, backupDir, logPath, logLevel, noColor := flags.HomeDir, flags.BackupDir, flags.LogPath, flags.LogLevel, flags.NoColor
	t.Cleanup(func() {
		flags.HomeDir, flags.BackupDir, flags.LogPath, flags.LogLevel, flags.NoColor = home, backupDir, logPath, logLevel, noColor
	})
}

func TestRootCmd_Subcommands(t *testing.T) {
	resetGlobalFlags(t)

	c, err := NewRootCmd(&internalcmd.BaseCmd{Logger: hclog.NewNullLogger()})
	require.NoError(t, err)

	var names []string
	for _, sub := range c.Commands() {
		names = append(names, sub.Name())
	}
	require.Subset(t, names, []string{"validate", "versions", "health", "update", "repair", "migrate", "deps", "backups"})

	for _, name := range []string{flags.FlagNameHome, flags.FlagNameBackupDir, flags.FlagNameLogPath, flags.FlagNameLogLevel, flags.FlagNameNoColor} {
		require.NotNil(t, c.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_HomeAndLogFlags(t *testing.T) {
	resetGlobalFlags(t)

	home := t.TempDir()
	config := filepath.Join(home, ".cursor", "mcp.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(config), 0o755))
	require.NoError(t, os.WriteFile(config, []byte(`{"mcpServers": {"time": {"command": "uvx", "args": ["mcp-server-time"]}}}`), 0o644))
	logPath := filepath.Join(t.TempDir(), "heal-mcp.log")

	base := &internalcmd.BaseCmd{Logger: hclog.NewNullLogger()}
	c, err := NewRootCmd(base)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	c.SetOut(out)
	c.SetErr(out)
	c.SetArgs([]string{"validate", "--home", home, "--log-path", logPath, "--log-level", "debug", "--no-color"})

	require.NoError(t, c.Execute())
	require.Contains(t, out.String(), "Platform: Cursor (Global)")
	require.Contains(t, out.String(), config)
	require.FileExists(t, logPath)
	require.True(t, base.Logger.IsDebug())
}

func TestRootCmd_Version(t *testing.T) {
	resetGlobalFlags(t)

	c, err := NewRootCmd(&internalcmd.BaseCmd{Logger: hclog.NewNullLogger()})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	c.SetOut(out)
	c.SetArgs([]string{"--version"})

	require.NoError(t, c.Execute())
	require.Contains(t, out.String(), appVersion)
}

func TestGetLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		expected string
	}{
		{in: "debug", expected: "debug"},
		{in: " WARN ", expected: "warn"},
		{in: "off", expected: "off"},
		{in: "verbose", expected: flags.DefaultLogLevel},
		{in: "", expected: flags.DefaultLogLevel},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.expected, getLogLevel(tc.in))
		})
	}
}
