package printer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ailevelup-ai/heal-mcp/internal/backup"
	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	"github.com/ailevelup-ai/heal-mcp/internal/deps"
	"github.com/ailevelup-ai/heal-mcp/internal/health"
	"github.com/ailevelup-ai/heal-mcp/internal/migrate"
	"github.com/ailevelup-ai/heal-mcp/internal/packages"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
	"github.com/ailevelup-ai/heal-mcp/internal/validate"
	"github.com/ailevelup-ai/heal-mcp/internal/version"
)

func TestMain(m *testing.M) {
	term.DisableColor()
	os.Exit(m.Run())
}

func TestSnapshotPrinter(t *testing.T) {
	t.Parallel()

	p := &SnapshotPrinter{}
	buf := &bytes.Buffer{}
	h := output.NewTextHandler[backup.Snapshot](buf, p)

	snapshots := []backup.Snapshot{
		{Metadata: backup.Metadata{OriginalPath: "/home/a/.cursor/mcp.json", BackupTime: "20250601_093000", Platform: "cursor"}},
		{Metadata: backup.Metadata{OriginalPath: "/home/a/.claude.json", BackupTime: "20250531_120000", Platform: "claude-code"}},
	}
	require.NoError(t, h.HandleResults(snapshots...))

	expected := "   1. cursor                20250601_093000  /home/a/.cursor/mcp.json\n" +
		"   2. claude-code           20250531_120000  /home/a/.claude.json\n"
	require.Equal(t, expected, buf.String())
}

func TestListingPrinter(t *testing.T) {
	t.Parallel()

	p := &ListingPrinter{}
	buf := &bytes.Buffer{}

	require.NoError(t, p.Item(buf, migrate.Listing{
		Label:   "Cursor (Global)",
		Path:    "/home/a/.cursor/mcp.json",
		Servers: []string{"github", "time"},
	}))
	require.NoError(t, p.Item(buf, migrate.Listing{
		Label: "Claude Desktop",
		Path:  "/home/a/claude_desktop_config.json",
		Err:   errors.New("invalid JSON"),
	}))

	expected := "\nCURSOR (GLOBAL) (2 servers):\n" +
		"  /home/a/.cursor/mcp.json\n" +
		"  • github\n" +
		"  • time\n" +
		"\nCLAUDE DESKTOP:\n" +
		"  ✗ Could not read /home/a/claude_desktop_config.json: invalid JSON\n"
	require.Equal(t, expected, buf.String())
}

func TestValidationPrinter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   validate.Result
		contains []string
		excludes []string
	}{
		{
			name: "syntax error",
			result: validate.Result{
				Platform: "Cursor (Global)",
				Path:     "/home/a/.cursor/mcp.json",
				Message:  "Invalid JSON: unexpected end of JSON input",
			},
			contains: []string{"Platform: Cursor (Global)", "✗ Invalid JSON: unexpected end of JSON input"},
			excludes: []string{"Servers configured"},
		},
		{
			name: "defects and warnings",
			result: validate.Result{
				Platform: "Claude Desktop",
				Valid:    true,
				Message:  "Valid JSON syntax",
				Defects:  []string{"Server 'x': missing required 'command' field"},
				Warnings: []string{"Server 'y': npx without -y flag may prompt for installation"},
				Servers:  []string{"x", "y"},
			},
			contains: []string{
				"✓ Valid JSON syntax",
				"✗ Configuration issues found:",
				"  • Server 'x': missing required 'command' field",
				"⚠ Warnings:",
				"Servers configured: 2",
			},
			excludes: []string{"Configuration structure is valid"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			require.NoError(t, (&ValidationPrinter{}).Item(buf, tc.result))

			for _, s := range tc.contains {
				require.Contains(t, buf.String(), s)
			}
			for _, s := range tc.excludes {
				require.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestVersionsPrinter(t *testing.T) {
	t.Parallel()

	report := version.Report{
		Label: "Claude Desktop",
		Path:  "/home/a/claude_desktop_config.json",
		Servers: []version.ServerReport{
			{Server: "github", Package: "@modelcontextprotocol/server-github", Ecosystem: packages.NPM, Current: "0.5.0", Latest: "0.6.2", Status: version.StatusOutdated},
			{Server: "time", Scope: "/work/app", Package: "mcp-server-time", Ecosystem: packages.PyPI, Current: "latest", Latest: "2025.8.1", Status: version.StatusLatestTag},
			{Server: "local", Command: "node", Status: version.StatusLocal},
		},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, (&VersionsPrinter{}).Item(buf, report))

	out := buf.String()
	require.Contains(t, out, "📦 CLAUDE DESKTOP")
	require.Contains(t, out, "Servers found: 3")
	require.Contains(t, out, "⚠️  UPDATE AVAILABLE")
	require.Contains(t, out, "    Project: /work/app")
	require.Contains(t, out, "    Version: @latest (currently 2025.8.1)")
	require.Contains(t, out, "    Command: node")

	buf.Reset()
	PrintVersionSummary(buf, []version.Report{report})
	out = buf.String()
	require.Contains(t, out, "✓ Up to date: 1 servers")
	require.Contains(t, out, "⚠ Updates available: 1 servers")
	require.Contains(t, out, "• Local/Custom: 1 servers")
	require.Contains(t, out, "  • github (Claude Desktop)\n    0.5.0 → 0.6.2\n")
}

func TestHealthPrinter(t *testing.T) {
	t.Parallel()

	report := health.Report{
		Dependencies: deps.Report{
			{Tool: deps.Tool{Name: deps.ToolNode, Label: "Node.js", Required: true}, Version: "v22.1.0"},
			{Tool: deps.Tool{Name: deps.ToolPython3, Label: "Python 3"}},
			{Tool: deps.Tool{Name: deps.ToolUVX, Label: "uvx"}},
		},
		Platforms: []health.PlatformHealth{
			{
				Label: "Cursor (Global)",
				Servers: []health.ServerHealth{
					{Name: "time", ConfigValid: true, CommandExists: true, Probe: &health.ProbeResult{Status: health.ProbeOK, Tools: 1, Latency: 41600 * time.Microsecond}},
					{Name: "github", ConfigValid: true, Errors: []string{"npx not found"}},
				},
			},
			{Label: "Claude Desktop", Path: "/home/a/claude_desktop_config.json", Error: "invalid JSON"},
		},
	}
	report.Totals = health.Count(report.Servers())

	buf := &bytes.Buffer{}
	require.NoError(t, (&HealthPrinter{}).Item(buf, report))
	out := buf.String()

	for _, s := range []string{
		"  Node.js:  ✓ v22.1.0",
		"  Python 3: ✗ Not found",
		"  uvx:      ○ Optional",
		"CURSOR (GLOBAL):",
		"  Total: 2 servers | 1 healthy | 1 failed",
		"     MCP: Responding (1 tool, 42ms)",
		"       • npx not found",
		"  ✗ Could not read /home/a/claude_desktop_config.json: invalid JSON",
		"  Healthy: 1 (50%)",
		"  Failed: 1 (50%)",
		"  • Run: heal-mcp repair",
	} {
		require.Contains(t, out, s)
	}
	require.NotContains(t, out, "Warnings:")
}

func TestHealthPrinter_NoServers(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	require.NoError(t, (&HealthPrinter{}).Item(buf, health.Report{}))
	require.Contains(t, buf.String(), "No MCP servers found in any configuration")
	require.NotContains(t, buf.String(), "Overall Summary")
}

func TestHooks(t *testing.T) {
	t.Parallel()

	p := &ListingPrinter{}
	buf := &bytes.Buffer{}

	// Unset hooks write nothing.
	p.Header(buf, 1)
	p.Footer(buf, 1)
	require.Empty(t, buf.String())

	p.SetHeader(func(w io.Writer, count int) { _, _ = fmt.Fprintf(w, "head %d\n", count) })
	p.SetFooter(func(w io.Writer, count int) { _, _ = fmt.Fprintf(w, "foot %d\n", count) })
	p.Header(buf, 2)
	p.Footer(buf, 2)
	require.Equal(t, "head 2\nfoot 2\n", buf.String())
}
