package printer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	"github.com/ailevelup-ai/heal-mcp/internal/deps"
	"github.com/ailevelup-ai/heal-mcp/internal/health"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

const dashboardWidth = 80

var _ output.Printer[health.Report] = (*HealthPrinter)(nil)

// HealthPrinter prints the health dashboard.
type HealthPrinter struct {
	hooks[health.Report]
}

func (p *HealthPrinter) Item(w io.Writer, r health.Report) error {
	_, _ = term.Heading.Fprintf(w, "\n%s\n", strings.Repeat("=", dashboardWidth))
	_, _ = term.Heading.Fprintln(w, "🏥 MCP Health Dashboard")
	_, _ = term.Heading.Fprintf(w, "%s\n\n", strings.Repeat("=", dashboardWidth))

	printDependencies(w, r.Dependencies)

	if len(r.Servers()) == 0 {
		for _, ph := range r.Platforms {
			if ph.Error != "" {
				printPlatformHealth(w, ph)
			}
		}
		_, _ = term.Warning.Fprintf(w, "No MCP servers found in any configuration\n\n")
		return nil
	}

	for _, ph := range r.Platforms {
		printPlatformHealth(w, ph)
	}

	printOverall(w, r.Totals)

	return nil
}

func printDependencies(w io.Writer, report deps.Report) {
	_, _ = term.Bold.Fprintln(w, "System Dependencies:")

	for _, f := range report {
		label := term.PadRight(f.Label+":", 9)
		switch {
		case f.Found():
			_, _ = fmt.Fprintf(w, "  %s %s %s\n", label, term.Success.Sprint("✓"), f.Version)
		case f.Name == deps.ToolUVX:
			_, _ = fmt.Fprintf(w, "  %s %s Optional\n", label, term.Warning.Sprint("○"))
		default:
			_, _ = fmt.Fprintf(w, "  %s %s Not found\n", label, term.Failure.Sprint("✗"))
		}
	}

	_, _ = fmt.Fprintln(w)
}

func printPlatformHealth(w io.Writer, ph health.PlatformHealth) {
	_, _ = term.Accent.Fprintf(w, "%s:\n", strings.ToUpper(ph.Label))
	_, _ = term.Accent.Fprintln(w, strings.Repeat("─", dashboardWidth))

	if ph.Error != "" {
		_, _ = term.Failure.Fprintf(w, "  ✗ Could not read %s: %s\n\n", ph.Path, ph.Error)
		return
	}

	t := health.Count(ph.Servers)
	_, _ = fmt.Fprintf(w, "  Total: %d servers | %s", t.Total, term.Success.Sprintf("%d healthy", t.Healthy))
	if t.Warning > 0 {
		_, _ = fmt.Fprintf(w, " | %s", term.Warning.Sprintf("%d warnings", t.Warning))
	}
	if t.Failed > 0 {
		_, _ = fmt.Fprintf(w, " | %s", term.Failure.Sprintf("%d failed", t.Failed))
	}
	_, _ = fmt.Fprint(w, "\n\n")

	for _, s := range ph.Servers {
		printServerHealth(w, s)
	}
	_, _ = fmt.Fprintln(w)
}

func printServerHealth(w io.Writer, s health.ServerHealth) {
	icon, text := statusDisplay(s.Status())
	_, _ = fmt.Fprintf(w, "  %s %s\n", icon, term.Bold.Sprint(s.Name))
	if s.Scope != "" {
		_, _ = fmt.Fprintf(w, "     Project: %s\n", s.Scope)
	}
	_, _ = fmt.Fprintf(w, "     Status: %s\n", text)

	if s.ConfigValid {
		_, _ = fmt.Fprintf(w, "     Config: %s\n", term.Success.Sprint("Valid"))
	} else {
		_, _ = fmt.Fprintf(w, "     Config: %s\n", term.Failure.Sprint("Invalid"))
	}

	if s.CommandExists {
		_, _ = fmt.Fprintf(w, "     Command: %s\n", term.Success.Sprint("Available"))
	} else {
		_, _ = fmt.Fprintf(w, "     Command: %s\n", term.Failure.Sprint("Not found"))
	}

	if p := s.Probe; p != nil {
		switch p.Status {
		case health.ProbeOK:
			_, _ = fmt.Fprintf(w, "     MCP: %s (%d tool%s, %s)\n",
				term.Success.Sprint("Responding"), p.Tools, term.Plural(p.Tools), p.Latency.Round(time.Millisecond))
		default:
			_, _ = fmt.Fprintf(w, "     MCP: %s\n", term.Failure.Sprintf("%s: %s", p.Status, p.Error))
		}
	}

	if len(s.Errors) > 0 {
		_, _ = fmt.Fprintf(w, "     %s\n", term.Failure.Sprint("Errors:"))
		for _, e := range s.Errors {
			_, _ = fmt.Fprintf(w, "       • %s\n", e)
		}
	}

	if len(s.Warnings) > 0 {
		_, _ = fmt.Fprintf(w, "     %s\n", term.Warning.Sprint("Warnings:"))
		for _, warning := range s.Warnings {
			_, _ = fmt.Fprintf(w, "       • %s\n", warning)
		}
	}

	_, _ = fmt.Fprintln(w)
}

func statusDisplay(s health.Status) (string, string) {
	switch s {
	case health.StatusHealthy:
		return term.Success.Sprint("●"), term.Success.Sprint("Healthy")
	case health.StatusWarning:
		return term.Warning.Sprint("●"), term.Warning.Sprint("Warning")
	default:
		return term.Failure.Sprint("●"), term.Failure.Sprint("Failed")
	}
}

func printOverall(w io.Writer, t health.Totals) {
	_, _ = term.Bold.Fprintln(w, strings.Repeat("─", dashboardWidth))
	_, _ = term.Bold.Fprintln(w, "Overall Summary:")
	_, _ = fmt.Fprintf(w, "  Total servers: %d\n", t.Total)
	_, _ = term.Success.Fprintf(w, "  Healthy: %d (%d%%)\n", t.Healthy, t.Percent(t.Healthy))
	if t.Warning > 0 {
		_, _ = term.Warning.Fprintf(w, "  Warnings: %d (%d%%)\n", t.Warning, t.Percent(t.Warning))
	}
	if t.Failed > 0 {
		_, _ = term.Failure.Fprintf(w, "  Failed: %d (%d%%)\n", t.Failed, t.Percent(t.Failed))
	}

	_, _ = term.Bold.Fprintln(w, "\nRecommendations:")
	switch {
	case t.Failed > 0:
		_, _ = fmt.Fprintf(w, "  • Run: %s\n", term.Accent.Sprint("heal-mcp repair"))
	case t.Warning > 0:
		_, _ = fmt.Fprintln(w, "  • Review warnings and consider updating configurations")
	default:
		_, _ = fmt.Fprintf(w, "  • %s\n", term.Success.Sprint("All systems operational!"))
	}
	_, _ = fmt.Fprintln(w)
}
