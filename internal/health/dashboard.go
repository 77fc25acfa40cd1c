package health

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
	"github.com/ailevelup-ai/heal-mcp/internal/deps"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/shell"
)

// PlatformHealth is the assessment of one configuration file.
type PlatformHealth struct {
	Platform platform.Platform `json:"platform" yaml:"platform"`
	Label    string            `json:"label" yaml:"label"`
	Path     string            `json:"path" yaml:"path"`
	Servers  []ServerHealth    `json:"servers" yaml:"servers"`

	// Error is set when the file could not be read.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the whole dashboard.
type Report struct {
	Dependencies deps.Report      `json:"dependencies" yaml:"dependencies"`
	Platforms    []PlatformHealth `json:"platforms" yaml:"platforms"`
	Totals       Totals           `json:"totals" yaml:"totals"`
}

// Servers returns every assessed server across platforms.
func (r Report) Servers() []ServerHealth {
	var all []ServerHealth
	for _, p := range r.Platforms {
		all = append(all, p.Servers...)
	}
	return all
}

// DependencyTools are the runtimes shown at the top of the dashboard.
func DependencyTools() []deps.Tool {
	var out []deps.Tool
	for _, t := range deps.Tools() {
		switch t.Name {
		case deps.ToolNode, deps.ToolPython3, deps.ToolNPX, deps.ToolUVX:
			out = append(out, t)
		}
	}
	return out
}

// Dashboard builds health reports.
type Dashboard struct {
	logger   hclog.Logger
	runner   shell.Runner
	lookPath shell.LookPathFunc
	prober   Prober
}

// NewDashboard returns a Dashboard. When prober is nil servers are not launched.
func NewDashboard(logger hclog.Logger, runner shell.Runner, lookPath shell.LookPathFunc, prober Prober) *Dashboard {
	return &Dashboard{
		logger:   logger.Named("health"),
		runner:   runner,
		lookPath: lookPath,
		prober:   prober,
	}
}

// Build checks system dependencies and assesses the servers of every location whose file exists.
func (d *Dashboard) Build(ctx context.Context, locs platform.Locations) Report {
	report := Report{Dependencies: deps.Check(ctx, d.runner, DependencyTools())}

	for _, loc := range locs.Existing() {
		ph := PlatformHealth{Platform: loc.Platform, Label: loc.Label, Path: loc.Path}

		doc, err := config.Load(loc.Path, loc.Layout)
		if err != nil {
			d.logger.Warn("Skipping unreadable configuration", "path", loc.Path, "error", err)
			ph.Error = err.Error()
			report.Platforms = append(report.Platforms, ph)
			continue
		}

		ph.Servers = Analyze(doc, loc, d.lookPath)
		if d.prober != nil {
			d.probe(ctx, doc, ph.Servers)
		}

		report.Platforms = append(report.Platforms, ph)
	}

	report.Totals = Count(report.Servers())

	return report
}

// probe launches each server whose command exists.
func (d *Dashboard) probe(ctx context.Context, doc *config.Document, servers []ServerHealth) {
	for i := range servers {
		s := &servers[i]
		if !s.ConfigValid || !s.CommandExists {
			continue
		}

		set, ok := doc.ServerSet(s.Scope)
		if !ok {
			continue
		}
		entry, ok := config.EntryFrom(s.Name, set[s.Name])
		if !ok {
			continue
		}

		res := d.prober.Probe(ctx, entry)
		s.Probe = &res
	}
}
