// Package platform describes the AI-assistant tools whose MCP configuration files heal-mcp works with,
// and where each of them keeps its configuration.
package platform

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/files"
)

// Platform identifies a host tool (and scope) that stores MCP server configuration.
type Platform string

const (
	// ClaudeDesktop is the Claude Desktop application.
	ClaudeDesktop Platform = "claude-desktop"

	// Cursor is the Cursor editor's global configuration.
	Cursor Platform = "cursor"

	// ClaudeCode is Claude Code's user-scoped configuration, which also nests per-project servers.
	ClaudeCode Platform = "claude-code"

	// ClaudeCodeProject is a Claude Code project configuration in the working directory.
	ClaudeCodeProject Platform = "claude-code-project"

	// CursorProject is a Cursor project configuration in the working directory.
	CursorProject Platform = "cursor-project"

	// Unknown is used for paths which cannot be attributed to any platform.
	Unknown Platform = "unknown"
)

// Layout describes where servers mappings live inside a configuration document.
type Layout string

const (
	// LayoutFlat documents keep servers under the root 'mcpServers' key only.
	LayoutFlat Layout = "flat"

	// LayoutProjects documents may also keep servers under 'projects.<path>.mcpServers'.
	LayoutProjects Layout = "projects"
)

// Location is a known configuration file for a platform.
type Location struct {
	Platform Platform
	Label    string
	Path     string
	Layout   Layout
}

// Locations is an ordered set of known configuration files.
type Locations []Location

// DefaultLocations returns the well-known configuration paths, derived from the given home and working directories.
// The first three entries are the global (home directory) configurations.
func DefaultLocations(home string, cwd string) Locations {
	return Locations{
		{
			Platform: ClaudeDesktop,
			Label:    "Claude Desktop",
			Path:     filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json"),
			Layout:   LayoutFlat,
		},
		{
			Platform: ClaudeCode,
			Label:    "Claude Code (User)",
			Path:     filepath.Join(home, ".claude.json"),
			Layout:   LayoutProjects,
		},
		{
			Platform: Cursor,
			Label:    "Cursor (Global)",
			Path:     filepath.Join(home, ".cursor", "mcp.json"),
			Layout:   LayoutFlat,
		},
		{
			Platform: ClaudeCodeProject,
			Label:    "Claude Code (Project)",
			Path:     filepath.Join(cwd, ".mcp.json"),
			Layout:   LayoutFlat,
		},
		{
			Platform: CursorProject,
			Label:    "Cursor (Project)",
			Path:     filepath.Join(cwd, ".cursor", "mcp.json"),
			Layout:   LayoutFlat,
		},
	}
}

// Existing returns the locations whose configuration file is present on disk.
func (l Locations) Existing() Locations {
	var found Locations
	for _, loc := range l {
		if files.Exists(loc.Path) {
			found = append(found, loc)
		}
	}
	return found
}

// Global returns the locations which live in the home directory (not project scoped).
func (l Locations) Global() Locations {
	var global Locations
	for _, loc := range l {
		switch loc.Platform {
		case ClaudeDesktop, Cursor, ClaudeCode:
			global = append(global, loc)
		}
	}
	return global
}

// Lookup returns the location configured for the platform.
func (l Locations) Lookup(p Platform) (Location, bool) {
	idx := slices.IndexFunc(l, func(loc Location) bool { return loc.Platform == p })
	if idx == -1 {
		return Location{}, false
	}
	return l[idx], true
}

// Platforms returns the platform of each location, in order.
func (l Locations) Platforms() []Platform {
	out := make([]Platform, 0, len(l))
	for _, loc := range l {
		out = append(out, loc.Platform)
	}
	return out
}

// Parse converts a string into a known Platform.
func Parse(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ClaudeDesktop, Cursor, ClaudeCode, ClaudeCodeProject, CursorProject:
		return p, nil
	}
	return Unknown, fmt.Errorf("%w '%s'", healerrors.ErrUnknownPlatform, s)
}

// Infer attributes a configuration path to a platform by well-known path fragments.
// Anything unrecognised is Unknown.
func Infer(path string) Platform {
	p := filepath.ToSlash(path)
	switch {
	case strings.Contains(p, "Claude/claude_desktop_config"):
		return ClaudeDesktop
	case strings.Contains(p, ".cursor"):
		return Cursor
	case strings.Contains(p, ".claude.json"):
		return ClaudeCode
	default:
		return Unknown
	}
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return string(p)
}
