package printer

import (
	"fmt"
	"io"

	"github.com/ailevelup-ai/heal-mcp/internal/backup"
	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

var _ output.Printer[backup.Snapshot] = (*SnapshotPrinter)(nil)

// SnapshotPrinter prints one numbered line per stored backup.
type SnapshotPrinter struct {
	hooks[backup.Snapshot]

	n int
}

func (p *SnapshotPrinter) Item(w io.Writer, s backup.Snapshot) error {
	p.n++
	_, _ = fmt.Fprintf(w, "  %2d. %s  %s  %s\n",
		p.n,
		term.Bold.Sprint(term.PadRight(s.Platform, 20)),
		term.Accent.Sprint(s.BackupTime),
		s.OriginalPath,
	)
	return nil
}
