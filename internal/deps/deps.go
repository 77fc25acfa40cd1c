// Package deps checks for the runtimes MCP servers are launched with, and offers to install missing ones.
package deps

import (
	"context"
	"slices"

	"github.com/ailevelup-ai/heal-mcp/internal/shell"
)

// Group collects related tools for display.
type Group string

const (
	NodeJS          Group = "Node.js Ecosystem"
	Python          Group = "Python Ecosystem"
	PackageManagers Group = "Package Managers"
)

// Groups returns the groups in display order.
func Groups() []Group {
	return []Group{NodeJS, Python, PackageManagers}
}

// Tool is an executable that MCP servers depend on.
type Tool struct {
	// Name is the executable, e.g. 'npx'.
	Name string `json:"name" yaml:"name"`

	// Label is the display name, e.g. 'Node.js'.
	Label string `json:"label" yaml:"label"`

	Group Group `json:"group" yaml:"group"`

	// Required tools are needed by most MCP servers.
	Required bool `json:"required" yaml:"required"`
}

const (
	ToolNode    = "node"
	ToolNPM     = "npm"
	ToolNPX     = "npx"
	ToolPython3 = "python3"
	ToolPip3    = "pip3"
	ToolUV      = "uv"
	ToolUVX     = "uvx"
	ToolBrew    = "brew"
)

// Tools returns every tool that is checked, in display order.
func Tools() []Tool {
	return []Tool{
		{Name: ToolNode, Label: "Node.js", Group: NodeJS, Required: true},
		{Name: ToolNPM, Label: "npm", Group: NodeJS, Required: true},
		{Name: ToolNPX, Label: "npx", Group: NodeJS, Required: true},
		{Name: ToolPython3, Label: "Python 3", Group: Python},
		{Name: ToolPip3, Label: "pip3", Group: Python},
		{Name: ToolUV, Label: "uv", Group: Python},
		{Name: ToolUVX, Label: "uvx", Group: Python},
		{Name: ToolBrew, Label: "Homebrew", Group: PackageManagers},
	}
}

// Finding is the result of checking one tool.
type Finding struct {
	Tool `yaml:",inline"`

	// Version is the first line printed by '<tool> --version', empty when the tool is missing.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Found reports whether the tool ran successfully.
func (f Finding) Found() bool {
	return f.Version != ""
}

// Report is the outcome of checking a set of tools.
type Report []Finding

// Lookup returns the finding for the named tool.
func (r Report) Lookup(name string) (Finding, bool) {
	idx := slices.IndexFunc(r, func(f Finding) bool { return f.Name == name })
	if idx == -1 {
		return Finding{}, false
	}
	return r[idx], true
}

// Found reports whether the named tool was found.
func (r Report) Found(name string) bool {
	f, ok := r.Lookup(name)
	return ok && f.Found()
}

// MissingRequired returns the names of required tools that were not found.
func (r Report) MissingRequired() []string {
	var missing []string
	for _, f := range r {
		if f.Required && !f.Found() {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// InGroup returns the findings belonging to g, in order.
func (r Report) InGroup(g Group) Report {
	var out Report
	for _, f := range r {
		if f.Group == g {
			out = append(out, f)
		}
	}
	return out
}

// Check runs '<tool> --version' for each tool.
// A tool is found when it runs and exits zero; its version is the first line of output.
func Check(ctx context.Context, runner shell.Runner, tools []Tool) Report {
	report := make(Report, 0, len(tools))
	for _, t := range tools {
		report = append(report, Finding{Tool: t, Version: version(ctx, runner, t.Name)})
	}
	return report
}

func version(ctx context.Context, runner shell.Runner, name string) string {
	res, err := runner.Output(ctx, name, "--version")
	if err != nil || res.ExitCode != 0 {
		return ""
	}

	v := shell.FirstLine(res.Stdout)
	if v == "" {
		// Older Python releases print their version to stderr.
		v = shell.FirstLine(res.Stderr)
	}
	if v == "" {
		v = "installed"
	}

	return v
}
