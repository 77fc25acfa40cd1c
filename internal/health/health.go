// Package health summarises the state of every configured MCP server: whether its entry is usable,
// whether its command can be found and, optionally, whether it answers over MCP.
package health

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
	"github.com/ailevelup-ai/heal-mcp/internal/files"
	"github.com/ailevelup-ai/heal-mcp/internal/packages"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/shell"
)

const (
	StatusHealthy Status = "healthy"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

// Status is the overall state of a server.
type Status string

// runtimes are launchers whose absence means the server cannot start at all.
var runtimes = []packages.Launcher{packages.NPX, packages.UVX, packages.Node, packages.Python3}

// ServerHealth is the assessment of one server entry.
type ServerHealth struct {
	Name          string            `json:"name" yaml:"name"`
	Platform      platform.Platform `json:"platform" yaml:"platform"`
	Label         string            `json:"label" yaml:"label"`
	Scope         string            `json:"scope,omitempty" yaml:"scope,omitempty"`
	Command       string            `json:"command,omitempty" yaml:"command,omitempty"`
	ConfigValid   bool              `json:"configValid" yaml:"configValid"`
	CommandExists bool              `json:"commandExists" yaml:"commandExists"`
	Errors        []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings      []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Probe is set when the server was launched and queried.
	Probe *ProbeResult `json:"probe,omitempty" yaml:"probe,omitempty"`
}

// Status returns failed when there are errors, healthy when the entry is valid, its command exists
// and nothing was flagged, and warning otherwise.
// A probe that did not succeed counts as an error.
func (s ServerHealth) Status() Status {
	switch {
	case len(s.Errors) > 0 || (s.Probe != nil && s.Probe.Status != ProbeOK):
		return StatusFailed
	case s.ConfigValid && s.CommandExists && len(s.Warnings) == 0:
		return StatusHealthy
	default:
		return StatusWarning
	}
}

// Analyze assesses every server in doc, in document order.
func Analyze(doc *config.Document, loc platform.Location, lookPath shell.LookPathFunc) []ServerHealth {
	var out []ServerHealth

	for _, set := range doc.ServerSets() {
		servers, ok := set.Entries()
		if !ok {
			continue
		}
		for _, name := range set.Names() {
			h := analyzeEntry(name, servers[name], lookPath)
			h.Platform, h.Label, h.Scope = loc.Platform, loc.Label, set.Scope
			out = append(out, h)
		}
	}

	return out
}

func analyzeEntry(name string, raw any, lookPath shell.LookPathFunc) ServerHealth {
	h := ServerHealth{Name: name}

	entry, ok := config.EntryFrom(name, raw)
	if !ok {
		h.Errors = append(h.Errors, "Configuration must be an object")
		return h
	}

	h.Command = entry.Command
	if entry.HasCommand {
		h.ConfigValid = true
	} else {
		h.Errors = append(h.Errors, "Missing 'command' field")
	}

	if entry.Command != "" {
		h.CommandExists = commandExists(entry.Command, lookPath)
		if !h.CommandExists {
			if slices.Contains(runtimes, packages.Launcher(entry.Command)) {
				h.Errors = append(h.Errors, fmt.Sprintf("%s not found", entry.Command))
			} else {
				h.Warnings = append(h.Warnings, fmt.Sprintf("Command '%s' not found in PATH", entry.Command))
			}
		}
	}

	for _, key := range entry.EnvKeys() {
		if entry.Env[key] == "" {
			h.Warnings = append(h.Warnings, fmt.Sprintf("Environment variable '%s' is empty", key))
		}
	}

	if entry.Command == string(packages.NPX) && !packages.HasYesFlag(entry.Args) {
		h.Warnings = append(h.Warnings, "Consider adding '-y' flag to npx command")
	}

	return h
}

// commandExists reports whether command is a file on disk or resolves through lookPath.
func commandExists(command string, lookPath shell.LookPathFunc) bool {
	if filepath.IsAbs(command) || filepath.Base(command) != command {
		if files.Exists(command) {
			return true
		}
	}
	_, err := lookPath(command)
	return err == nil
}

// Totals counts servers by status.
type Totals struct {
	Total   int `json:"total" yaml:"total"`
	Healthy int `json:"healthy" yaml:"healthy"`
	Warning int `json:"warning" yaml:"warning"`
	Failed  int `json:"failed" yaml:"failed"`
}

// Count totals servers by status.
func Count(servers []ServerHealth) Totals {
	t := Totals{Total: len(servers)}
	for _, s := range servers {
		switch s.Status() {
		case StatusHealthy:
			t.Healthy++
		case StatusWarning:
			t.Warning++
		case StatusFailed:
			t.Failed++
		}
	}
	return t
}

// Percent returns n as a whole percentage of the total, rounded down.
func (t Totals) Percent(n int) int {
	if t.Total == 0 {
		return 0
	}
	return n * 100 / t.Total
}
