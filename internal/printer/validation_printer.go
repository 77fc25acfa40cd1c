package printer

import (
	"fmt"
	"io"

	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
	"github.com/ailevelup-ai/heal-mcp/internal/validate"
)

var _ output.Printer[validate.Result] = (*ValidationPrinter)(nil)

// ValidationPrinter prints the outcome of validating one configuration file.
type ValidationPrinter struct {
	hooks[validate.Result]
}

func (p *ValidationPrinter) Item(w io.Writer, r validate.Result) error {
	_, _ = fmt.Fprintln(w)
	term.Rule(w, "=")
	_, _ = term.Heading.Fprintf(w, "Platform: %s\n", r.Platform)
	_, _ = term.Bold.Fprintf(w, "Config: %s\n", r.Path)
	term.Rule(w, "=")

	if !r.Valid {
		_, _ = term.Failure.Fprintf(w, "✗ %s\n", r.Message)
		return nil
	}
	_, _ = term.Success.Fprintf(w, "✓ %s\n", r.Message)

	if len(r.Defects) == 0 {
		_, _ = term.Success.Fprintln(w, "✓ Configuration structure is valid")
	} else {
		_, _ = term.Failure.Fprintln(w, "✗ Configuration issues found:")
		for _, d := range r.Defects {
			_, _ = term.Failure.Fprintf(w, "  • %s\n", d)
		}
	}

	if len(r.Warnings) > 0 {
		_, _ = term.Warning.Fprintln(w, "⚠ Warnings:")
		for _, warning := range r.Warnings {
			_, _ = term.Warning.Fprintf(w, "  • %s\n", warning)
		}
	}

	if len(r.Servers) > 0 {
		_, _ = term.Bold.Fprintf(w, "\nServers configured: %d\n", len(r.Servers))
		for _, name := range r.Servers {
			_, _ = fmt.Fprintf(w, "  • %s\n", name)
		}
	}

	return nil
}
