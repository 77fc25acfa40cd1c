package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	"github.com/ailevelup-ai/heal-mcp/internal/migrate"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

var _ output.Printer[migrate.Listing] = (*ListingPrinter)(nil)

// ListingPrinter prints the servers configured for a platform.
type ListingPrinter struct {
	hooks[migrate.Listing]
}

func (p *ListingPrinter) Item(w io.Writer, l migrate.Listing) error {
	if l.Err != nil {
		_, _ = term.Heading.Fprintf(w, "\n%s:\n", strings.ToUpper(l.Label))
		_, _ = term.Failure.Fprintf(w, "  ✗ Could not read %s: %s\n", l.Path, l.Err)
		return nil
	}

	_, _ = term.Heading.Fprintf(w, "\n%s (%d server%s):\n", strings.ToUpper(l.Label), len(l.Servers), term.Plural(len(l.Servers)))
	_, _ = fmt.Fprintf(w, "  %s\n", l.Path)
	for _, name := range l.Servers {
		_, _ = fmt.Fprintf(w, "  • %s\n", name)
	}

	return nil
}
