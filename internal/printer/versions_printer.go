package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
	"github.com/ailevelup-ai/heal-mcp/internal/version"
)

var _ output.Printer[version.Report] = (*VersionsPrinter)(nil)

// VersionsPrinter prints the version state of each server in one configuration file.
type VersionsPrinter struct {
	hooks[version.Report]
}

func (p *VersionsPrinter) Item(w io.Writer, r version.Report) error {
	_, _ = term.Heading.Fprintf(w, "\n📦 %s\n", strings.ToUpper(r.Label))
	_, _ = fmt.Fprintf(w, "Config: %s\n", r.Path)
	_, _ = fmt.Fprintf(w, "Servers found: %d\n\n", len(r.Servers))

	for _, s := range r.Servers {
		printServerVersion(w, s)
		_, _ = fmt.Fprintln(w)
	}

	return nil
}

func printServerVersion(w io.Writer, s version.ServerReport) {
	_, _ = fmt.Fprintf(w, "  • %s\n", term.Bold.Sprint(s.Server))
	if s.Scope != "" {
		_, _ = fmt.Fprintf(w, "    Project: %s\n", s.Scope)
	}

	if s.Status == version.StatusLocal {
		_, _ = fmt.Fprintln(w, "    Type: Local/Custom")
		_, _ = fmt.Fprintf(w, "    Command: %s\n", s.Command)
		return
	}

	_, _ = fmt.Fprintf(w, "    Package: %s\n", s.Package)
	_, _ = fmt.Fprintf(w, "    Type: %s\n", s.Ecosystem)

	switch s.Status {
	case version.StatusLatestTag:
		_, _ = fmt.Fprintf(w, "    Version: %s (currently %s)\n", term.Success.Sprint("@latest"), s.Latest)
	case version.StatusUpToDate:
		_, _ = fmt.Fprintf(w, "    Version: %s ✓\n", term.Success.Sprint(s.Current))
	case version.StatusOutdated:
		_, _ = fmt.Fprintf(w, "    Current: %s\n", term.Warning.Sprint(s.Current))
		_, _ = fmt.Fprintf(w, "    Latest:  %s\n", term.Success.Sprint(s.Latest))
		_, _ = term.Warning.Fprintln(w, "    ⚠️  UPDATE AVAILABLE")
	case version.StatusCheckFailed:
		_, _ = fmt.Fprintf(w, "    Version: %s\n", s.Current)
		_, _ = term.Failure.Fprintln(w, "    ❌ Could not check latest version")
	default:
		_, _ = fmt.Fprintf(w, "    Version: %s\n", s.Current)
		_, _ = fmt.Fprintf(w, "    Latest: %s\n", s.Latest)
	}
}

// PrintVersionSummary writes the totals across reports followed by the servers with updates available.
func PrintVersionSummary(w io.Writer, reports []version.Report) {
	sum := version.Summarize(reports)

	_, _ = fmt.Fprintln(w)
	term.Rule(w, "=")
	_, _ = term.Bold.Fprintln(w, "📊 SUMMARY")
	term.Rule(w, "=")
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "%s %d servers\n", term.Success.Sprint("✓ Up to date:"), sum.UpToDate)
	_, _ = fmt.Fprintf(w, "%s %d servers\n", term.Warning.Sprint("⚠ Updates available:"), sum.Outdated)
	_, _ = fmt.Fprintf(w, "%s %d servers\n", term.Info.Sprint("• Local/Custom:"), sum.Local)
	_, _ = fmt.Fprintf(w, "%s %d servers\n", term.Failure.Sprint("✗ Check failed:"), sum.CheckFailed)

	if sum.Outdated > 0 {
		_, _ = term.Bold.Fprintln(w, "\nUpdates Available:")
		for _, rep := range reports {
			for _, s := range rep.Servers {
				if !s.UpdateAvailable() {
					continue
				}
				_, _ = fmt.Fprintf(w, "  • %s (%s)\n", s.Server, rep.Label)
				_, _ = fmt.Fprintf(w, "    %s → %s\n", s.Current, s.Latest)
			}
		}
	}

	_, _ = fmt.Fprintln(w)
}
