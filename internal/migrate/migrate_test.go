package migrate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
)

type answers struct {
	replies []bool
	asked   int
}

func (a *answers) Confirm(context.Context, string) (bool, error) {
	a.asked++
	if len(a.replies) == 0 {
		return false, healerrors.ErrCancelled
	}
	r := a.replies[0]
	a.replies = a.replies[1:]
	return r, nil
}

type recordingBackups struct {
	paths []string
}

func (b *recordingBackups) Create(path string) (string, error) {
	b.paths = append(b.paths, path)
	return path + ".bak", nil
}

type fixture struct {
	src     platform.Location
	dst     platform.Location
	backups *recordingBackups
	answers *answers
	m       *Migrator
}

func newFixture(t *testing.T, src string, dst string, replies ...bool) *fixture {
	t.Helper()

	dir := t.TempDir()
	f := &fixture{
		src:     platform.Location{Platform: platform.ClaudeDesktop, Path: filepath.Join(dir, "desktop.json"), Layout: platform.LayoutFlat},
		dst:     platform.Location{Platform: platform.Cursor, Path: filepath.Join(dir, "cursor", "mcp.json"), Layout: platform.LayoutFlat},
		backups: &recordingBackups{},
		answers: &answers{replies: replies},
	}
	if src != "" {
		require.NoError(t, os.WriteFile(f.src.Path, []byte(src), 0o644))
	}
	if dst != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(f.dst.Path), 0o755))
		require.NoError(t, os.WriteFile(f.dst.Path, []byte(dst), 0o644))
	}
	f.m = NewMigrator(hclog.NewNullLogger(), f.backups, f.answers, &bytes.Buffer{})

	return f
}

func servers(t *testing.T, loc platform.Location) map[string]any {
	t.Helper()

	doc, err := config.Load(loc.Path, loc.Layout)
	require.NoError(t, err)
	s, ok := doc.Servers()
	require.True(t, ok)

	return s
}

const source = `{"mcpServers": {
  "github": {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-github"], "env": {"TOKEN": "abc"}},
  "time": {"command": "uvx", "args": ["mcp-server-time"]}
}}`

func TestCopy_NewDestination(t *testing.T) {
	t.Parallel()

	f := newFixture(t, source, "")

	require.NoError(t, f.m.Copy(context.Background(), f.src, f.dst, "github"))
	require.Empty(t, f.backups.paths)
	require.Zero(t, f.answers.asked)

	got := servers(t, f.dst)
	require.Equal(t, servers(t, f.src)["github"], got["github"])
	require.Len(t, servers(t, f.src), 2)
}

func TestCopy_ExistingDestination(t *testing.T) {
	t.Parallel()

	f := newFixture(t, source, `{"mcpServers": {}}`)
	require.NoError(t, f.m.Copy(context.Background(), f.src, f.dst, "github"))

	entry, ok := config.EntryFrom("github", servers(t, f.dst)["github"])
	require.True(t, ok)
	require.Equal(t, "abc", entry.Env["TOKEN"])
	require.Equal(t, []string{f.dst.Path}, f.backups.paths)
}

func TestCopy_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, source, "")
	err := f.m.Copy(context.Background(), f.src, f.dst, "absent")
	require.ErrorIs(t, err, healerrors.ErrServerNotFound)

	_, statErr := os.Stat(f.dst.Path)
	require.True(t, os.IsNotExist(statErr))
}

func TestCopy_MissingSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", "")
	err := f.m.Copy(context.Background(), f.src, f.dst, "github")
	require.ErrorIs(t, err, healerrors.ErrServerNotFound)
}

func TestCopy_OverwriteDeclined(t *testing.T) {
	t.Parallel()

	dst := `{"mcpServers": {"github": {"command": "node"}}}`
	f := newFixture(t, source, dst, false)

	err := f.m.Copy(context.Background(), f.src, f.dst, "github")
	require.ErrorIs(t, err, healerrors.ErrOverwriteDeclined)
	require.Equal(t, 1, f.answers.asked)
	require.Empty(t, f.backups.paths)

	data, err := os.ReadFile(f.dst.Path)
	require.NoError(t, err)
	require.Equal(t, dst, string(data))
}

func TestCopy_OverwriteConfirmed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, source, `{"theme": "dark", "mcpServers": {"github": {"command": "node"}}}`, true)

	require.NoError(t, f.m.Copy(context.Background(), f.src, f.dst, "github"))

	entry, _ := config.EntryFrom("github", servers(t, f.dst)["github"])
	require.Equal(t, "npx", entry.Command)

	doc, err := config.Load(f.dst.Path, f.dst.Layout)
	require.NoError(t, err)
	require.Equal(t, "dark", doc.Root()["theme"])
}

func TestCopy_MalformedDestination(t *testing.T) {
	t.Parallel()

	dst := `{"mcpServers": {`
	f := newFixture(t, source, dst)

	err := f.m.Copy(context.Background(), f.src, f.dst, "github")
	require.ErrorIs(t, err, config.ErrInvalidJSON)

	data, err := os.ReadFile(f.dst.Path)
	require.NoError(t, err)
	require.Equal(t, dst, string(data))
}

func TestCopy_SameLocation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, source, "")
	require.ErrorIs(t, f.m.Copy(context.Background(), f.src, f.src, "github"), ErrSameLocation)
}

func TestMove(t *testing.T) {
	t.Parallel()

	f := newFixture(t, source, `{"mcpServers": {}}`)

	require.NoError(t, f.m.Move(context.Background(), f.src, f.dst, "time"))
	require.Contains(t, servers(t, f.dst), "time")
	require.NotContains(t, servers(t, f.src), "time")
	require.Contains(t, servers(t, f.src), "github")
	require.Equal(t, []string{f.dst.Path, f.src.Path}, f.backups.paths)
}

func TestMove_DeclinedLeavesSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t, source, `{"mcpServers": {"time": {"command": "node"}}}`, false)

	err := f.m.Move(context.Background(), f.src, f.dst, "time")
	require.ErrorIs(t, err, healerrors.ErrOverwriteDeclined)
	require.Contains(t, servers(t, f.src), "time")
}

func TestSyncAll(t *testing.T) {
	t.Parallel()

	f := newFixture(t, source, `{"mcpServers": {"time": {"command": "node"}, "local": {"command": "node"}}}`, true)

	n, err := f.m.SyncAll(context.Background(), f.src, f.dst)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 1, f.answers.asked)

	got := servers(t, f.dst)
	require.Len(t, got, 3)
	entry, _ := config.EntryFrom("time", got["time"])
	require.Equal(t, "uvx", entry.Command)
}

func TestSyncAll_Declined(t *testing.T) {
	t.Parallel()

	f := newFixture(t, source, "", false)

	_, err := f.m.SyncAll(context.Background(), f.src, f.dst)
	require.ErrorIs(t, err, ErrSyncDeclined)

	_, statErr := os.Stat(f.dst.Path)
	require.True(t, os.IsNotExist(statErr))
}

func TestSyncAll_EmptySource(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `{"mcpServers": {}}`, "")

	_, err := f.m.SyncAll(context.Background(), f.src, f.dst)
	require.ErrorIs(t, err, healerrors.ErrNoServers)
	require.Zero(t, f.answers.asked)
}

func TestListAll(t *testing.T) {
	t.Parallel()

	f := newFixture(t, source, `{"mcpServers": [`)
	empty := platform.Location{Platform: platform.ClaudeCode, Path: filepath.Join(t.TempDir(), "absent.json")}

	listings := f.m.ListAll(platform.Locations{f.src, empty, f.dst})
	require.Len(t, listings, 2)

	require.Equal(t, platform.ClaudeDesktop, listings[0].Platform)
	require.Equal(t, []string{"github", "time"}, listings[0].Servers)
	require.NoError(t, listings[0].Err)

	require.Equal(t, platform.Cursor, listings[1].Platform)
	require.Error(t, listings[1].Err)
}
